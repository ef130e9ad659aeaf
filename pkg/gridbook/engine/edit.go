package engine

import (
	"fmt"

	"github.com/gridbook/gridbook-go/pkg/gridbook/models"
	"github.com/gridbook/gridbook-go/pkg/gridbook/selection"
)

// AddRow appends an empty row carrying the sheet's current column set.
func (e *Engine) AddRow() {
	e.InsertRow(e.RowCount())
}

// InsertRow inserts an empty row at the given index, clamped to
// [0, rowCount].
func (e *Engine) InsertRow(at int) {
	e.mutate(func(sheet *models.Sheet) error {
		if at < 0 {
			at = 0
		}
		if at > len(sheet.Rows) {
			at = len(sheet.Rows)
		}
		row := models.NewRow()
		for _, col := range sheet.Columns() {
			row.SetValue(col, "")
		}
		sheet.Rows = append(sheet.Rows[:at], append([]*models.Row{row}, sheet.Rows[at:]...)...)
		return nil
	})
}

// DeleteRow removes the row at the given index. Selection and editing state
// shrink to the new bounds.
func (e *Engine) DeleteRow(at int) {
	e.mutate(func(sheet *models.Sheet) error {
		if at < 0 || at >= len(sheet.Rows) {
			return fmt.Errorf("row %d out of range", at)
		}
		sheet.Rows = append(sheet.Rows[:at], sheet.Rows[at+1:]...)
		return nil
	})
}

// MoveRow moves the row at from to position to.
func (e *Engine) MoveRow(from, to int) {
	e.mutate(func(sheet *models.Sheet) error {
		n := len(sheet.Rows)
		if from < 0 || from >= n || to < 0 || to >= n {
			return fmt.Errorf("move %d -> %d out of range", from, to)
		}
		row := sheet.Rows[from]
		rest := append(sheet.Rows[:from:from], sheet.Rows[from+1:]...)
		sheet.Rows = append(rest[:to:to], append([]*models.Row{row}, rest[to:]...)...)
		return nil
	})
}

// AddColumn appends a column with the given key to every row. A sheet with
// no rows gains one so the column materializes.
func (e *Engine) AddColumn(key string) {
	e.InsertColumn(len(e.Columns()), key)
}

// InsertColumn inserts a column key at the given position in the derived
// column list, clamped to [0, columnCount].
func (e *Engine) InsertColumn(at int, key string) {
	if key == "" {
		e.setNotice("column name must not be empty")
		return
	}
	e.mutate(func(sheet *models.Sheet) error {
		cols := sheet.Columns()
		for _, c := range cols {
			if c == key {
				return fmt.Errorf("column %q already exists", key)
			}
		}
		if at < 0 {
			at = 0
		}
		if at > len(cols) {
			at = len(cols)
		}
		next := append(cols[:at:at], append([]string{key}, cols[at:]...)...)
		if len(sheet.Rows) == 0 {
			sheet.Rows = append(sheet.Rows, models.NewRow())
		}
		reorderRows(sheet, next)
		return nil
	})
}

// DeleteColumn removes the column at the given index from every row.
func (e *Engine) DeleteColumn(at int) {
	e.mutate(func(sheet *models.Sheet) error {
		cols := sheet.Columns()
		if at < 0 || at >= len(cols) {
			return fmt.Errorf("column %d out of range", at)
		}
		key := cols[at]
		for _, row := range sheet.Rows {
			row.Delete(key)
		}
		return nil
	})
}

// MoveColumn moves the column at from to position to in the derived order.
func (e *Engine) MoveColumn(from, to int) {
	e.mutate(func(sheet *models.Sheet) error {
		cols := sheet.Columns()
		n := len(cols)
		if from < 0 || from >= n || to < 0 || to >= n {
			return fmt.Errorf("move %d -> %d out of range", from, to)
		}
		key := cols[from]
		rest := append(cols[:from:from], cols[from+1:]...)
		next := append(rest[:to:to], append([]string{key}, rest[to:]...)...)
		reorderRows(sheet, next)
		return nil
	})
}

// reorderRows rebuilds every row with the given column order, filling
// missing cells with empty values. Row key order is what the derived column
// list is computed from, so this pins the new order.
func reorderRows(sheet *models.Sheet, cols []string) {
	for i, row := range sheet.Rows {
		next := models.NewRow()
		for _, col := range cols {
			if cell := row.Cell(col); cell != nil {
				next.Set(col, cell)
			} else {
				next.SetValue(col, "")
			}
		}
		sheet.Rows[i] = next
	}
}

// mutate wraps mutateSheet, degrading failures to a notice so structural
// edits never throw past the coordinator.
func (e *Engine) mutate(fn func(sheet *models.Sheet) error) {
	if err := e.mutateSheet(fn); err != nil {
		e.setNotice(err.Error())
	}
}

// StartEdit opens edit mode on exactly one cell, replacing any previous
// editing state.
func (e *Engine) StartEdit(row, col int) {
	key, ok := e.columnKey(col)
	if !ok || row < 0 || row >= e.RowCount() {
		return
	}
	e.editing = &models.CellPosition{Row: row, Col: col}
	e.draft = e.ActiveSheet().Rows[row].Value(key)
}

// Editing returns the cell currently in edit mode.
func (e *Engine) Editing() (models.CellPosition, bool) {
	if e.editing == nil {
		return models.CellPosition{}, false
	}
	return *e.editing, true
}

// Draft returns the in-progress edit text.
func (e *Engine) Draft() string {
	return e.draft
}

// SetDraft updates the in-progress edit text.
func (e *Engine) SetDraft(text string) {
	if e.editing != nil {
		e.draft = text
	}
}

// CommitEdit writes the given value into the editing cell and leaves edit
// mode. A cell carrying a function descriptor loses it: a manual edit
// supersedes the computed value.
func (e *Engine) CommitEdit(value string) {
	if e.editing == nil {
		return
	}
	pos := *e.editing
	key, ok := e.columnKey(pos.Col)
	if !ok {
		e.editing = nil
		return
	}
	e.mutate(func(sheet *models.Sheet) error {
		if pos.Row >= len(sheet.Rows) {
			return fmt.Errorf("row %d out of range", pos.Row)
		}
		writeValue(sheet.Rows[pos.Row], key, value)
		return nil
	})
	e.editing = nil
	e.draft = ""
}

// CancelEdit discards the draft and restores the prior value.
func (e *Engine) CancelEdit() {
	e.editing = nil
	e.draft = ""
}

// ApplyBulk writes one literal value into every cell of the current
// selection.
func (e *Engine) ApplyBulk(value string) {
	sel, ok := e.Selection()
	if !ok {
		e.setNotice("nothing selected")
		return
	}
	cols := e.Columns()
	e.mutate(func(sheet *models.Sheet) error {
		for row, col := range selection.Cells(sel) {
			if row >= len(sheet.Rows) || col >= len(cols) {
				continue
			}
			writeValue(sheet.Rows[row], cols[col], value)
		}
		return nil
	})
}

// ApplyFunction sets the function descriptor on every cell of the current
// selection. An unknown function id is a no-op that surfaces a notice; the
// session never crashes over a user-driven apply.
func (e *Engine) ApplyFunction(name string, args models.FunctionArgs) {
	if _, ok := e.registry.Lookup(name); !ok {
		e.setNotice(fmt.Sprintf("unknown function %q", name))
		return
	}
	sel, ok := e.Selection()
	if !ok {
		e.setNotice("nothing selected")
		return
	}
	cols := e.Columns()
	e.mutate(func(sheet *models.Sheet) error {
		for row, col := range selection.Cells(sel) {
			if row >= len(sheet.Rows) || col >= len(cols) {
				continue
			}
			cell := sheet.Rows[row].Cell(cols[col])
			if cell == nil {
				cell = &models.Cell{}
				sheet.Rows[row].Set(cols[col], cell)
			}
			cell.Function = &models.FunctionRef{Name: name, Args: args}
		}
		return nil
	})
}

// ClearFunction removes the function descriptor from every cell of the
// current selection, leaving values and styles in place.
func (e *Engine) ClearFunction() {
	sel, ok := e.Selection()
	if !ok {
		return
	}
	cols := e.Columns()
	e.mutate(func(sheet *models.Sheet) error {
		for row, col := range selection.Cells(sel) {
			if row >= len(sheet.Rows) || col >= len(cols) {
				continue
			}
			if cell := sheet.Rows[row].Cell(cols[col]); cell != nil {
				cell.Function = nil
			}
		}
		return nil
	})
}

// writeValue stores a literal value, clearing any function descriptor so
// the manual write wins.
func writeValue(row *models.Row, key, value string) {
	if cell := row.Cell(key); cell != nil {
		cell.Value = value
		cell.Function = nil
		return
	}
	row.SetValue(key, value)
}
