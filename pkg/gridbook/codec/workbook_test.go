package codec

import (
	"errors"
	"strings"
	"testing"

	"github.com/gridbook/gridbook-go/pkg/gridbook/models"
)

func TestParseLegacyFlatDocument(t *testing.T) {
	text := "- feature: A\n  status: TODO\n- feature: B\n  status: DONE\n"

	sheets, err := ParseWorkbook(text)
	if err != nil {
		t.Fatalf("ParseWorkbook failed: %v", err)
	}
	if len(sheets) != 1 {
		t.Fatalf("got %d sheets, want 1", len(sheets))
	}
	sheet := sheets[0]
	if sheet.Name != "Sheet 1" {
		t.Errorf("sheet name = %q, want \"Sheet 1\"", sheet.Name)
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(sheet.Rows))
	}
	cols := sheet.Columns()
	if len(cols) != 2 || cols[0] != "feature" || cols[1] != "status" {
		t.Errorf("columns = %v, want [feature status]", cols)
	}
	if v := sheet.Rows[0].Value("status"); v != "TODO" {
		t.Errorf("row 0 status = %q, want TODO", v)
	}
	if v := sheet.Rows[1].Value("feature"); v != "B" {
		t.Errorf("row 1 feature = %q, want B", v)
	}
}

func TestParseNamedSheets(t *testing.T) {
	text := `- name: Budget
  rows:
    - item: rent
      amount: 1200
- name: ""
  rows: []
`
	sheets, err := ParseWorkbook(text)
	if err != nil {
		t.Fatalf("ParseWorkbook failed: %v", err)
	}
	if len(sheets) != 2 {
		t.Fatalf("got %d sheets, want 2", len(sheets))
	}
	if sheets[0].Name != "Budget" {
		t.Errorf("sheet 0 name = %q, want Budget", sheets[0].Name)
	}
	// Blank name falls back to the positional default.
	if sheets[1].Name != "Sheet 2" {
		t.Errorf("sheet 1 name = %q, want \"Sheet 2\"", sheets[1].Name)
	}
	if v := sheets[0].Rows[0].Value("amount"); v != "1200" {
		t.Errorf("amount = %q, want 1200", v)
	}
}

func TestParseNormalizesNullAndNonScalar(t *testing.T) {
	text := "- a: null\n  b: {x: 1}\n  c: [1, 2]\n"

	sheets, err := ParseWorkbook(text)
	if err != nil {
		t.Fatalf("ParseWorkbook failed: %v", err)
	}
	row := sheets[0].Rows[0]
	if v := row.Value("a"); v != "" {
		t.Errorf("null cell = %q, want empty", v)
	}
	if v := row.Value("b"); v != `{"x":1}` {
		t.Errorf("mapping cell = %q, want compact JSON", v)
	}
	if v := row.Value("c"); v != "[1,2]" {
		t.Errorf("sequence cell = %q, want compact JSON", v)
	}
}

func TestParseRejectsNonSequenceRoot(t *testing.T) {
	for _, text := range []string{"name: x\n", "42\n", ""} {
		_, err := ParseWorkbook(text)
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Errorf("ParseWorkbook(%q) error = %v, want FormatError", text, err)
		}
	}
}

func TestParseEmptySequence(t *testing.T) {
	sheets, err := ParseWorkbook("[]\n")
	if err != nil {
		t.Fatalf("ParseWorkbook failed: %v", err)
	}
	if len(sheets) != 0 {
		t.Errorf("got %d sheets, want 0", len(sheets))
	}
}

func TestSerializeEmptyWorkbook(t *testing.T) {
	text, err := SerializeWorkbook(nil)
	if err != nil {
		t.Fatalf("SerializeWorkbook failed: %v", err)
	}
	if text != "[]\n" {
		t.Errorf("empty workbook = %q, want \"[]\\n\"", text)
	}
}

func TestSerializeEmitsFullKeySet(t *testing.T) {
	sheet := models.NewSheet("Tasks", 0)
	r1 := models.NewRow()
	r1.SetValue("feature", "A")
	r1.SetValue("status", "TODO")
	r2 := models.NewRow()
	r2.SetValue("feature", "B")
	sheet.Rows = append(sheet.Rows, r1, r2)

	text, err := SerializeWorkbook([]*models.Sheet{sheet})
	if err != nil {
		t.Fatalf("SerializeWorkbook failed: %v", err)
	}
	if !strings.HasSuffix(text, "\n") || strings.HasSuffix(text, "\n\n") {
		t.Errorf("output must end with exactly one newline: %q", text)
	}

	// Row 2 lacks a status cell in memory; the emitted record still carries
	// the key with an empty value.
	reparsed, err := ParseWorkbook(text)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	row := reparsed[0].Rows[1]
	if !row.Has("status") {
		t.Error("serialized row missing status key")
	}
	if v := row.Value("status"); v != "" {
		t.Errorf("filled-in status = %q, want empty", v)
	}
}

func TestRoundTripKeepsNullLikeStrings(t *testing.T) {
	text := "- item: \"null\"\n  note: \"~\"\n  label: \"NULL\"\n"
	sheets, err := ParseWorkbook(text)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	out, err := SerializeWorkbook(sheets)
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}
	again, err := ParseWorkbook(out)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}

	row := again[0].Rows[0]
	for key, want := range map[string]string{"item": "null", "note": "~", "label": "NULL"} {
		if v := row.Value(key); v != want {
			t.Errorf("%s = %q after round trip, want %q", key, v, want)
		}
	}
}

func TestWorkbookRoundTrip(t *testing.T) {
	text := "- feature: A\n  status: TODO\n- feature: B\n  status: DONE\n"
	sheets, err := ParseWorkbook(text)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	out, err := SerializeWorkbook(sheets)
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}
	again, err := ParseWorkbook(out)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}

	if len(again) != len(sheets) {
		t.Fatalf("sheet count changed: %d -> %d", len(sheets), len(again))
	}
	for si, sheet := range sheets {
		got := again[si]
		if got.Name != sheet.Name {
			t.Errorf("sheet %d name %q -> %q", si, sheet.Name, got.Name)
		}
		if len(got.Rows) != len(sheet.Rows) {
			t.Fatalf("sheet %d row count %d -> %d", si, len(sheet.Rows), len(got.Rows))
		}
		for ri, row := range sheet.Rows {
			for _, key := range row.Keys {
				if want, have := row.Value(key), got.Rows[ri].Value(key); want != have {
					t.Errorf("sheet %d row %d %s: %q -> %q", si, ri, key, want, have)
				}
			}
		}
	}
}
