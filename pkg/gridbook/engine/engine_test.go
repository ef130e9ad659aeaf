package engine

import (
	"strings"
	"testing"

	"github.com/gridbook/gridbook-go/pkg/gridbook/models"
)

const taskDoc = "- feature: A\n  status: TODO\n- feature: B\n  status: DONE\n"

const ledgerDoc = `- item: rent
  amount: 100
  total: ""
- item: food
  amount: 20
  total: ""
- item: fuel
  amount: 3
  total: ""
`

// fakeClipboard is an in-memory Clipboard provider.
type fakeClipboard struct {
	text     string
	readErr  error
	writeErr error
}

func (f *fakeClipboard) ReadAll() (string, error) {
	if f.readErr != nil {
		return "", f.readErr
	}
	return f.text, nil
}

func (f *fakeClipboard) WriteAll(text string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.text = text
	return nil
}

func newTestEngine(t *testing.T, doc string) (*Engine, *fakeClipboard) {
	t.Helper()
	clip := &fakeClipboard{}
	e := New(Options{Clipboard: clip})
	if doc != "" {
		if err := e.LoadDocument(doc); err != nil {
			t.Fatalf("LoadDocument failed: %v", err)
		}
	}
	return e, clip
}

func TestLoadDocumentDerivesColumns(t *testing.T) {
	e, _ := newTestEngine(t, taskDoc)

	sheet := e.ActiveSheet()
	if sheet.Name != "Sheet 1" {
		t.Errorf("sheet name = %q, want \"Sheet 1\"", sheet.Name)
	}
	if e.RowCount() != 2 {
		t.Fatalf("rows = %d, want 2", e.RowCount())
	}
	cols := e.Columns()
	if len(cols) != 2 || cols[0] != "feature" || cols[1] != "status" {
		t.Errorf("columns = %v, want [feature status]", cols)
	}

	out, err := e.SerializeDocument()
	if err != nil {
		t.Fatalf("SerializeDocument failed: %v", err)
	}
	if !strings.HasSuffix(out, "\n") || strings.HasSuffix(out, "\n\n") {
		t.Errorf("serialized document must end with one newline: %q", out)
	}
}

func TestLoadDocumentFailureKeepsState(t *testing.T) {
	e, _ := newTestEngine(t, taskDoc)
	if err := e.LoadDocument("not: a: sequence"); err == nil {
		t.Fatal("expected parse error")
	}
	if e.RowCount() != 2 {
		t.Errorf("rows = %d after failed load, want untouched 2", e.RowCount())
	}
}

func TestInsertAndDeleteRow(t *testing.T) {
	e, _ := newTestEngine(t, taskDoc)

	e.InsertRow(1)
	if e.RowCount() != 3 {
		t.Fatalf("rows = %d, want 3", e.RowCount())
	}
	// The inserted row carries the full column set, empty.
	if v := e.ActiveSheet().Rows[1].Value("feature"); v != "" {
		t.Errorf("inserted row feature = %q, want empty", v)
	}
	if !e.ActiveSheet().Rows[1].Has("status") {
		t.Error("inserted row missing status key")
	}

	e.DeleteRow(1)
	if e.RowCount() != 2 {
		t.Fatalf("rows = %d, want 2", e.RowCount())
	}
	if v := e.ActiveSheet().Rows[1].Value("feature"); v != "B" {
		t.Errorf("row 1 feature = %q, want B", v)
	}
}

func TestDeleteRowClampsSelection(t *testing.T) {
	e, _ := newTestEngine(t, taskDoc)
	e.Select(0, 0)
	e.ExtendTo(1, 1)

	e.DeleteRow(1)
	sel, ok := e.Selection()
	if !ok {
		t.Fatal("selection dropped")
	}
	if sel.EndRow != 0 {
		t.Errorf("selection end row = %d, want clamped to 0", sel.EndRow)
	}
}

func TestMoveRow(t *testing.T) {
	e, _ := newTestEngine(t, taskDoc)
	e.MoveRow(0, 1)
	if v := e.ActiveSheet().Rows[0].Value("feature"); v != "B" {
		t.Errorf("row 0 feature = %q, want B", v)
	}
	if v := e.ActiveSheet().Rows[1].Value("feature"); v != "A" {
		t.Errorf("row 1 feature = %q, want A", v)
	}
}

func TestColumnEdits(t *testing.T) {
	e, _ := newTestEngine(t, taskDoc)

	e.InsertColumn(1, "owner")
	cols := e.Columns()
	if len(cols) != 3 || cols[1] != "owner" {
		t.Fatalf("columns = %v, want owner at index 1", cols)
	}

	e.MoveColumn(1, 2)
	cols = e.Columns()
	if cols[2] != "owner" {
		t.Errorf("columns = %v, want owner at index 2", cols)
	}

	e.DeleteColumn(2)
	cols = e.Columns()
	if len(cols) != 2 || cols[0] != "feature" || cols[1] != "status" {
		t.Errorf("columns = %v, want [feature status]", cols)
	}
}

func TestInsertDuplicateColumnIsNotice(t *testing.T) {
	e, _ := newTestEngine(t, taskDoc)
	e.InsertColumn(0, "status")
	if len(e.Columns()) != 2 {
		t.Errorf("columns = %v, duplicate insert must not change shape", e.Columns())
	}
	if e.Notice() == "" {
		t.Error("expected a notice for duplicate column")
	}
}

func TestEditLifecycle(t *testing.T) {
	e, _ := newTestEngine(t, taskDoc)

	e.StartEdit(0, 1)
	if _, ok := e.Editing(); !ok {
		t.Fatal("edit mode not open")
	}
	if e.Draft() != "TODO" {
		t.Errorf("draft = %q, want TODO", e.Draft())
	}

	e.CancelEdit()
	if _, ok := e.Editing(); ok {
		t.Fatal("cancel left edit mode open")
	}
	if v := e.ActiveSheet().Rows[0].Value("status"); v != "TODO" {
		t.Errorf("status = %q after cancel, want TODO", v)
	}

	e.StartEdit(0, 1)
	e.CommitEdit("DOING")
	if v := e.ActiveSheet().Rows[0].Value("status"); v != "DOING" {
		t.Errorf("status = %q after commit, want DOING", v)
	}
	if _, ok := e.Editing(); ok {
		t.Error("commit left edit mode open")
	}
}

func TestCommitEditClearsFunction(t *testing.T) {
	e, _ := newTestEngine(t, ledgerDoc)
	totalCol := 2

	e.Select(0, totalCol)
	e.ApplyFunction("sum", models.FunctionArgs{Key: "amount"})
	if e.ActiveSheet().Rows[0].Cell("total").Function == nil {
		t.Fatal("function descriptor not set")
	}

	e.StartEdit(0, totalCol)
	e.CommitEdit("handwritten")
	cell := e.ActiveSheet().Rows[0].Cell("total")
	if cell.Function != nil {
		t.Error("manual edit must clear the function descriptor")
	}
	if cell.Value != "handwritten" {
		t.Errorf("value = %q, want handwritten", cell.Value)
	}
}

func TestApplyBulk(t *testing.T) {
	e, _ := newTestEngine(t, taskDoc)
	e.Select(0, 1)
	e.ExtendTo(1, 1)

	e.ApplyBulk("X")
	for row := 0; row < 2; row++ {
		if v := e.ActiveSheet().Rows[row].Value("status"); v != "X" {
			t.Errorf("row %d status = %q, want X", row, v)
		}
	}
	// Untouched column keeps its values.
	if v := e.ActiveSheet().Rows[0].Value("feature"); v != "A" {
		t.Errorf("feature = %q, want A", v)
	}
}

func TestApplyFunctionUnknownIsNoticeNotError(t *testing.T) {
	e, _ := newTestEngine(t, taskDoc)
	e.Select(0, 0)
	e.ApplyFunction("no-such-fn", models.FunctionArgs{})
	if e.Notice() == "" {
		t.Error("expected a notice for unknown function")
	}
	if e.ActiveSheet().Rows[0].Cell("feature").Function != nil {
		t.Error("apply of unknown function must be a no-op")
	}
}

func TestDisplayValueRecomputesLazily(t *testing.T) {
	e, _ := newTestEngine(t, ledgerDoc)
	totalCol := 2

	e.Select(0, totalCol)
	e.ApplyFunction("sum", models.FunctionArgs{Key: "amount"})

	if v := e.DisplayValue(0, totalCol); v != "123" {
		t.Errorf("sum = %q, want 123", v)
	}

	// Changing a dependency is reflected on the next read; no cached value.
	e.StartEdit(1, 1)
	e.CommitEdit("200")
	if v := e.DisplayValue(0, totalCol); v != "303" {
		t.Errorf("sum after edit = %q, want 303", v)
	}

	// The stored cell keeps no computed value.
	if stored := e.ActiveSheet().Rows[0].Cell("total").Value; stored != "" {
		t.Errorf("stored value = %q, want empty (not cached)", stored)
	}
}

func TestNoticeReadClears(t *testing.T) {
	e, _ := newTestEngine(t, taskDoc)
	e.ApplyBulk("X") // nothing selected
	if e.Notice() == "" {
		t.Fatal("expected notice")
	}
	if e.Notice() != "" {
		t.Error("notice must clear on read")
	}
}

func TestSheetManagement(t *testing.T) {
	e, _ := newTestEngine(t, taskDoc)
	e.AddSheet("Extra")
	if e.ActiveIndex() != 1 || e.ActiveSheet().Name != "Extra" {
		t.Fatalf("active = %d (%s), want new sheet", e.ActiveIndex(), e.ActiveSheet().Name)
	}

	e.SelectSheet(99)
	if e.ActiveIndex() != 1 {
		t.Errorf("active = %d, want clamped 1", e.ActiveIndex())
	}

	e.DeleteSheet(1)
	if e.ActiveIndex() != 0 {
		t.Errorf("active = %d after delete, want clamped 0", e.ActiveIndex())
	}

	// The last sheet never disappears; delete replaces it with a fresh one.
	e.DeleteSheet(0)
	if len(e.Sheets()) != 1 {
		t.Fatalf("sheets = %d, want 1", len(e.Sheets()))
	}
	if e.RowCount() != 0 {
		t.Errorf("replacement sheet has %d rows, want 0", e.RowCount())
	}
}

func TestParseBrokerDiscardsSuperseded(t *testing.T) {
	e, _ := newTestEngine(t, "")
	var b ParseBroker

	first := b.Submit(taskDoc)
	second := b.Submit(ledgerDoc)

	res1 := <-first
	if e.ApplyParseResult(&b, res1) {
		t.Error("superseded parse result must be discarded")
	}

	res2 := <-second
	if !e.ApplyParseResult(&b, res2) {
		t.Fatal("latest parse result must apply")
	}
	if len(e.Columns()) != 3 {
		t.Errorf("columns = %v, want the ledger document's 3", e.Columns())
	}
}

func TestParseBrokerErrorBecomesNotice(t *testing.T) {
	e, _ := newTestEngine(t, "")
	var b ParseBroker

	res := <-b.Submit("scalar")
	if res.Err == nil {
		t.Fatal("expected parse error")
	}
	if e.ApplyParseResult(&b, res) {
		t.Error("errored result must not apply")
	}
	if e.Notice() == "" {
		t.Error("expected notice from parse failure")
	}
}
