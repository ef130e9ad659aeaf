package models

// Row is an ordered mapping from column key to cell. Key order is insertion
// order, which drives the sheet's derived column list. Mutate only through
// Set and Delete so Keys and Cells stay consistent.
type Row struct {
	// Keys lists the row's column keys in first-seen order.
	Keys []string `json:"keys" yaml:"keys"`
	// Cells maps column key to cell.
	Cells map[string]*Cell `json:"cells" yaml:"cells"`
}

// NewRow creates an empty row.
func NewRow() *Row {
	return &Row{Cells: make(map[string]*Cell)}
}

// Set stores a cell under key, appending the key on first use.
func (r *Row) Set(key string, cell *Cell) {
	if r.Cells == nil {
		r.Cells = make(map[string]*Cell)
	}
	if _, ok := r.Cells[key]; !ok {
		r.Keys = append(r.Keys, key)
	}
	r.Cells[key] = cell
}

// SetValue stores a plain value cell under key, replacing any function
// descriptor or style previously held there.
func (r *Row) SetValue(key, value string) {
	r.Set(key, &Cell{Value: value})
}

// Cell returns the cell stored under key, or nil.
func (r *Row) Cell(key string) *Cell {
	if r.Cells == nil {
		return nil
	}
	return r.Cells[key]
}

// Value returns the stored value under key, or "" when absent.
func (r *Row) Value(key string) string {
	if c := r.Cell(key); c != nil {
		return c.Value
	}
	return ""
}

// Has reports whether the row holds a cell under key.
func (r *Row) Has(key string) bool {
	if r.Cells == nil {
		return false
	}
	_, ok := r.Cells[key]
	return ok
}

// Delete removes the cell under key, keeping Keys in order.
func (r *Row) Delete(key string) {
	if r.Cells == nil {
		return
	}
	if _, ok := r.Cells[key]; !ok {
		return
	}
	delete(r.Cells, key)
	for i, k := range r.Keys {
		if k == key {
			r.Keys = append(r.Keys[:i], r.Keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of cells in the row.
func (r *Row) Len() int {
	return len(r.Cells)
}
