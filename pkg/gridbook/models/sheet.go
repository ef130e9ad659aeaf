package models

import "fmt"

// Sheet is one named table of rows sharing a derived column set.
type Sheet struct {
	// Name is the sheet display name.
	Name string `json:"name" yaml:"name"`
	// Rows is the ordered row sequence.
	Rows []*Row `json:"rows" yaml:"rows"`
}

// DefaultSheetName returns the fallback name for the sheet at the given
// zero-based position ("Sheet 1" for position 0).
func DefaultSheetName(pos int) string {
	return fmt.Sprintf("Sheet %d", pos+1)
}

// NewSheet creates an empty sheet, substituting the default name for a
// blank one.
func NewSheet(name string, pos int) *Sheet {
	if name == "" {
		name = DefaultSheetName(pos)
	}
	return &Sheet{Name: name}
}

// Columns derives the sheet's column list: the union of all row keys in
// first-seen order. Recompute after any operation that changes row shape.
func (s *Sheet) Columns() []string {
	var cols []string
	seen := make(map[string]struct{})
	for _, row := range s.Rows {
		for _, key := range row.Keys {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			cols = append(cols, key)
		}
	}
	return cols
}

// Cell returns the cell at the given row index and column key, or nil when
// the row is out of bounds or the key absent.
func (s *Sheet) Cell(row int, key string) *Cell {
	if row < 0 || row >= len(s.Rows) {
		return nil
	}
	return s.Rows[row].Cell(key)
}
