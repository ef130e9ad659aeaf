package engine

import (
	"github.com/atotto/clipboard"

	"github.com/gridbook/gridbook-go/pkg/gridbook/codec"
	"github.com/gridbook/gridbook-go/pkg/gridbook/models"
	"github.com/gridbook/gridbook-go/pkg/gridbook/selection"
)

// Clipboard abstracts the system clipboard so the engine never performs
// I/O itself.
type Clipboard interface {
	// ReadAll returns the clipboard text.
	ReadAll() (string, error)
	// WriteAll replaces the clipboard text.
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error) { return clipboard.ReadAll() }

func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// SystemClipboard returns the real system clipboard provider.
func SystemClipboard() Clipboard {
	return systemClipboard{}
}

// Select makes (row, col) the single selected cell and the anchor for
// subsequent range extension.
func (e *Engine) Select(row, col int) {
	rows, cols := e.RowCount(), len(e.Columns())
	if rows == 0 || cols == 0 {
		return
	}
	row, col = clampIndex(row, rows), clampIndex(col, cols)
	e.anchor = models.CellPosition{Row: row, Col: col}
	r := selection.Cell(row, col)
	e.sel = &r
}

// ExtendTo grows the selection from the anchor toward (row, col), as a
// shift-click or pointer drag does. The result is always normalized.
func (e *Engine) ExtendTo(row, col int) {
	rows, cols := e.RowCount(), len(e.Columns())
	if rows == 0 || cols == 0 {
		return
	}
	row, col = clampIndex(row, rows), clampIndex(col, cols)
	r := selection.Extend(e.anchor.Row, e.anchor.Col, row, col)
	e.sel = &r
}

// SelectRow selects the whole row, as a row header click does.
func (e *Engine) SelectRow(row int) {
	rows, cols := e.RowCount(), len(e.Columns())
	if rows == 0 || cols == 0 {
		return
	}
	row = clampIndex(row, rows)
	e.anchor = models.CellPosition{Row: row}
	r := selection.Normalize(selection.Range{StartRow: row, EndRow: row, EndCol: cols - 1})
	e.sel = &r
}

// SelectColumn selects the whole column, as a column header click does.
func (e *Engine) SelectColumn(col int) {
	rows, cols := e.RowCount(), len(e.Columns())
	if rows == 0 || cols == 0 {
		return
	}
	col = clampIndex(col, cols)
	e.anchor = models.CellPosition{Col: col}
	r := selection.Normalize(selection.Range{StartCol: col, EndRow: rows - 1, EndCol: col})
	e.sel = &r
}

// ClearSelection drops the selection, as Escape does.
func (e *Engine) ClearSelection() {
	e.sel = nil
	e.fillDrag = nil
}

// Selection returns the current normalized selection.
func (e *Engine) Selection() (selection.Range, bool) {
	if e.sel == nil {
		return selection.Range{}, false
	}
	return *e.sel, true
}

// Anchor returns the active cell the selection grew from.
func (e *Engine) Anchor() models.CellPosition {
	return e.anchor
}

// MoveCursor shifts the active cell by (dRow, dCol), collapsing the
// selection to the new single cell; keyboard navigation.
func (e *Engine) MoveCursor(dRow, dCol int) {
	e.Select(e.anchor.Row+dRow, e.anchor.Col+dCol)
}

// BeginFill starts tracking a fill-drag from the current selection's fill
// handle.
func (e *Engine) BeginFill() {
	sel, ok := e.Selection()
	if !ok {
		return
	}
	drag := sel
	e.fillDrag = &drag
}

// UpdateFill extends the fill preview toward the pointer cell, keeping the
// base selection inside the preview rectangle.
func (e *Engine) UpdateFill(row, col int) {
	sel, ok := e.Selection()
	if !ok || e.fillDrag == nil {
		return
	}
	rows, cols := e.RowCount(), len(e.Columns())
	row, col = clampIndex(row, rows), clampIndex(col, cols)
	drag := sel
	if row < drag.StartRow {
		drag.StartRow = row
	} else if row > drag.EndRow {
		drag.EndRow = row
	}
	if col < drag.StartCol {
		drag.StartCol = col
	} else if col > drag.EndCol {
		drag.EndCol = col
	}
	e.fillDrag = &drag
}

// FillPreview returns the transient fill-drag range.
func (e *Engine) FillPreview() (selection.Range, bool) {
	if e.fillDrag == nil {
		return selection.Range{}, false
	}
	return *e.fillDrag, true
}

// CommitFill writes the fill value into every target cell per the active
// tie-break policy, extends the selection over the drag, and clears drag
// state.
func (e *Engine) CommitFill() {
	sel, ok := e.Selection()
	if !ok || e.fillDrag == nil {
		return
	}
	drag := *e.fillDrag
	targets := selection.FillTargets(sel, drag, e.fillPolicy)
	cols := e.Columns()
	e.mutate(func(sheet *models.Sheet) error {
		for _, tg := range targets {
			if tg.Row >= len(sheet.Rows) || tg.Col >= len(cols) {
				continue
			}
			src := sheet.Rows[tg.SrcRow].Value(cols[tg.SrcCol])
			writeValue(sheet.Rows[tg.Row], cols[tg.Col], src)
		}
		return nil
	})
	e.fillDrag = nil
	if len(targets) > 0 {
		e.sel = &drag
	}
}

// Copy serializes the current selection (or the single active cell) to the
// clipboard. Success and failure both surface as notices; Copy never
// returns an error to the caller.
func (e *Engine) Copy() {
	var matrix [][]string
	if sel, ok := e.Selection(); ok {
		for row := sel.StartRow; row <= sel.EndRow; row++ {
			var line []string
			for col := sel.StartCol; col <= sel.EndCol; col++ {
				line = append(line, e.DisplayValue(row, col))
			}
			matrix = append(matrix, line)
		}
	} else {
		matrix = [][]string{{e.DisplayValue(e.anchor.Row, e.anchor.Col)}}
	}
	if err := e.clip.WriteAll(codec.EncodeMatrix(matrix)); err != nil {
		e.setNotice("copy failed: " + err.Error())
		return
	}
	e.setNotice("copied")
}

// Paste reads the clipboard, parses it as a matrix, and writes it into the
// sheet anchored at the active cell. Rows grow as needed to fit the block;
// columns are not auto-created, so cells pasted past the last column are
// dropped.
func (e *Engine) Paste() {
	text, err := e.clip.ReadAll()
	if err != nil {
		e.setNotice("paste failed: " + err.Error())
		return
	}
	matrix := codec.DecodeMatrix(text)
	if len(matrix) == 0 {
		return
	}
	cols := e.Columns()
	origin := e.anchor
	e.mutate(func(sheet *models.Sheet) error {
		for len(sheet.Rows) < origin.Row+len(matrix) {
			row := models.NewRow()
			for _, col := range cols {
				row.SetValue(col, "")
			}
			sheet.Rows = append(sheet.Rows, row)
		}
		for ri, line := range matrix {
			for ci, value := range line {
				col := origin.Col + ci
				if col >= len(cols) {
					break
				}
				writeValue(sheet.Rows[origin.Row+ri], cols[col], value)
			}
		}
		return nil
	})
}
