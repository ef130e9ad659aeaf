// Package engine coordinates the spreadsheet state: the active sheet's rows
// and derived columns, the current selection, fill and editing state, and
// every editing operation the UI layer drives. Operations never throw past
// this boundary; failures surface as pending notices. Structural edits are
// computed as whole-state transformations on a deep copy and swapped in, so
// an aborted edit leaves no partial mutation visible.
package engine

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/tiendc/go-deepcopy"

	"github.com/gridbook/gridbook-go/pkg/gridbook/codec"
	"github.com/gridbook/gridbook-go/pkg/gridbook/models"
	"github.com/gridbook/gridbook-go/pkg/gridbook/registry"
	"github.com/gridbook/gridbook-go/pkg/gridbook/selection"
)

// Options configures an Engine.
type Options struct {
	// Registry supplies cell functions. Nil gets a fresh registry with the
	// builtins installed.
	Registry *registry.Registry
	// Clipboard is the system clipboard provider. Nil uses the real one.
	Clipboard Clipboard
	// FillPolicy is the fill-drag tie-break policy. Nil means vertical
	// extension wins.
	FillPolicy selection.TiebreakPolicy
	// Logger receives operation logs. Nil discards.
	Logger *log.Logger
}

// Engine is the spreadsheet state coordinator.
type Engine struct {
	sheets []*models.Sheet
	active int

	sel      *selection.Range
	anchor   models.CellPosition
	fillDrag *selection.Range
	editing  *models.CellPosition
	draft    string

	notice string

	registry   *registry.Registry
	clip       Clipboard
	fillPolicy selection.TiebreakPolicy
	logger     *log.Logger
}

// New creates an engine holding a single empty default sheet.
func New(opts Options) *Engine {
	reg := opts.Registry
	if reg == nil {
		reg = registry.New()
		registry.RegisterBuiltins(reg)
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = SystemClipboard()
	}
	policy := opts.FillPolicy
	if policy == nil {
		policy = selection.VerticalFirst
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{
		sheets:     []*models.Sheet{models.NewSheet("", 0)},
		registry:   reg,
		clip:       clip,
		fillPolicy: policy,
		logger:     logger,
	}
}

// NewDocument discards the current workbook and starts over with one empty
// default sheet.
func (e *Engine) NewDocument() {
	e.sheets = []*models.Sheet{models.NewSheet("", 0)}
	e.active = 0
	e.resetTransient()
}

// LoadDocument parses document text and replaces the workbook wholesale on
// success. A parse failure leaves the current workbook untouched and
// propagates the typed error for the caller to render.
func (e *Engine) LoadDocument(text string) error {
	sheets, err := codec.ParseWorkbook(text)
	if err != nil {
		return err
	}
	if len(sheets) == 0 {
		sheets = []*models.Sheet{models.NewSheet("", 0)}
	}
	e.sheets = sheets
	e.active = 0
	e.resetTransient()
	e.logger.Debug("document loaded", "sheets", len(sheets))
	return nil
}

// SerializeDocument renders the workbook back to document text.
func (e *Engine) SerializeDocument() (string, error) {
	return codec.SerializeWorkbook(e.sheets)
}

// Sheets returns the workbook's sheet sequence.
func (e *Engine) Sheets() []*models.Sheet {
	return e.sheets
}

// ActiveSheet returns the active sheet.
func (e *Engine) ActiveSheet() *models.Sheet {
	return e.sheets[e.active]
}

// ActiveIndex returns the active sheet index.
func (e *Engine) ActiveIndex() int {
	return e.active
}

// SelectSheet activates the sheet at index, clamping out-of-bounds values.
func (e *Engine) SelectSheet(index int) {
	e.active = clampIndex(index, len(e.sheets))
	e.resetTransient()
}

// AddSheet appends a sheet and activates it.
func (e *Engine) AddSheet(name string) {
	e.sheets = append(e.sheets, models.NewSheet(name, len(e.sheets)))
	e.active = len(e.sheets) - 1
	e.resetTransient()
}

// DeleteSheet removes the sheet at index, keeping at least one sheet and
// clamping the active index.
func (e *Engine) DeleteSheet(index int) {
	if index < 0 || index >= len(e.sheets) {
		return
	}
	if len(e.sheets) == 1 {
		e.sheets = []*models.Sheet{models.NewSheet("", 0)}
	} else {
		e.sheets = append(e.sheets[:index], e.sheets[index+1:]...)
	}
	e.active = clampIndex(e.active, len(e.sheets))
	e.resetTransient()
}

// Columns returns the active sheet's derived column list.
func (e *Engine) Columns() []string {
	return e.ActiveSheet().Columns()
}

// RowCount returns the active sheet's row count.
func (e *Engine) RowCount() int {
	return len(e.ActiveSheet().Rows)
}

// columnKey maps a column index to its key on the active sheet.
func (e *Engine) columnKey(col int) (string, bool) {
	cols := e.Columns()
	if col < 0 || col >= len(cols) {
		return "", false
	}
	return cols[col], true
}

// DisplayValue derives the display value of a cell at read time. A cell
// with a function descriptor recomputes from its dependencies on every
// call; nothing is cached on the cell, so the result always reflects the
// latest dependency values. Style side effects from the function are
// applied to the cell's overrides.
func (e *Engine) DisplayValue(row, col int) string {
	key, ok := e.columnKey(col)
	if !ok {
		return ""
	}
	cell := e.ActiveSheet().Cell(row, key)
	if cell == nil {
		return ""
	}
	if cell.Function == nil {
		return cell.Value
	}
	res, found := e.registry.Evaluate(e.context(), *cell.Function, registry.Target{Row: row, Key: key})
	if !found {
		return cell.Value
	}
	if res.Style != nil {
		if res.Style.Background != "" {
			cell.Background = res.Style.Background
		}
		if res.Style.TextColor != "" {
			cell.TextColor = res.Style.TextColor
		}
	}
	return res.Value
}

// Notice returns and clears the pending user-visible message.
func (e *Engine) Notice() string {
	n := e.notice
	e.notice = ""
	return n
}

func (e *Engine) setNotice(msg string) {
	e.notice = msg
}

// resetTransient clears selection, fill, and editing state.
func (e *Engine) resetTransient() {
	e.sel = nil
	e.fillDrag = nil
	e.editing = nil
	e.draft = ""
}

// clampState restricts selection and editing state to the current grid
// bounds after a structural change. Ranges clamp rather than error; an
// empty grid drops them entirely.
func (e *Engine) clampState() {
	rows, cols := e.RowCount(), len(e.Columns())
	if rows == 0 || cols == 0 {
		e.resetTransient()
		return
	}
	if e.sel != nil {
		clamped := selection.Clamp(*e.sel, rows, cols)
		e.sel = &clamped
	}
	e.anchor.Row = clampIndex(e.anchor.Row, rows)
	e.anchor.Col = clampIndex(e.anchor.Col, cols)
	if e.fillDrag != nil {
		clamped := selection.Clamp(*e.fillDrag, rows, cols)
		e.fillDrag = &clamped
	}
	if e.editing != nil && (e.editing.Row >= rows || e.editing.Col >= cols) {
		e.editing = nil
		e.draft = ""
	}
}

// mutateSheet runs fn against a deep copy of the active sheet and swaps the
// copy in only when fn succeeds, then re-clamps dependent state.
func (e *Engine) mutateSheet(fn func(sheet *models.Sheet) error) error {
	next, err := cloneSheet(e.ActiveSheet())
	if err != nil {
		return err
	}
	if err := fn(next); err != nil {
		return err
	}
	e.sheets[e.active] = next
	e.clampState()
	return nil
}

func cloneSheet(s *models.Sheet) (*models.Sheet, error) {
	var out models.Sheet
	if err := deepcopy.Copy(&out, s); err != nil {
		return nil, err
	}
	return &out, nil
}

// context returns the grid-access capability handed to function handlers.
func (e *Engine) context() registry.Context {
	return &gridContext{engine: e}
}

// gridContext resolves cell reads for function handlers. Cross-sheet
// references resolve against the named sheet's own rows and columns; it
// reads stored values, never display values, so a function cell referencing
// another function cell cannot recurse.
type gridContext struct {
	engine *Engine
}

func (g *gridContext) sheet(name string) *models.Sheet {
	if name == "" {
		return g.engine.ActiveSheet()
	}
	for _, s := range g.engine.sheets {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (g *gridContext) CellValue(sheetName string, row int, key string) (string, bool) {
	sheet := g.sheet(sheetName)
	if sheet == nil || row < 0 || row >= len(sheet.Rows) {
		return "", false
	}
	if !sheet.Rows[row].Has(key) {
		return "", false
	}
	return sheet.Rows[row].Value(key), true
}

func (g *gridContext) RowCount(sheetName string) int {
	sheet := g.sheet(sheetName)
	if sheet == nil {
		return 0
	}
	return len(sheet.Rows)
}

func (g *gridContext) Columns(sheetName string) []string {
	sheet := g.sheet(sheetName)
	if sheet == nil {
		return nil
	}
	return sheet.Columns()
}

func clampIndex(i, count int) int {
	if count <= 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= count {
		return count - 1
	}
	return i
}
