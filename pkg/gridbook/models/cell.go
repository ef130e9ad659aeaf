// Package models defines the data structures of the gridbook engine.
package models

// Cell holds a single grid cell: its display value plus optional
// computed-function descriptor and presentational overrides.
type Cell struct {
	// Value is the display value. For cells carrying a Function it is
	// engine-owned output and is recomputed at read time.
	Value string `json:"value" yaml:"value"`
	// Function, when present, names the registered function that produces
	// this cell's value. A manual edit clears it.
	Function *FunctionRef `json:"fn,omitempty" yaml:"fn,omitempty"`
	// TextColor is an optional text color override (e.g. "#ff0000").
	TextColor string `json:"text_color,omitempty" yaml:"text_color,omitempty"`
	// Background is an optional background color override.
	Background string `json:"background,omitempty" yaml:"background,omitempty"`
}

// FunctionRef binds a cell to a registered function and its arguments.
type FunctionRef struct {
	// Name is the registry id of the function.
	Name string `json:"name" yaml:"name"`
	// Args selects the input range or cells the function reads.
	Args FunctionArgs `json:"args,omitempty" yaml:"args,omitempty"`
}

// FunctionArgs selects the inputs of a cell function. Either Cells is set,
// or a column selection (Key plus optional Rows bounds) is used. Expression
// is consumed by expression-evaluating functions only.
type FunctionArgs struct {
	// Key is the target column key. Empty means the destination cell's
	// own column.
	Key string `json:"key,omitempty" yaml:"key,omitempty"`
	// Rows optionally bounds the row span read from the target column.
	Rows *RowSpan `json:"rows,omitempty" yaml:"rows,omitempty"`
	// Cells is an explicit list of cell references, overriding Key/Rows.
	Cells []CellRef `json:"cells,omitempty" yaml:"cells,omitempty"`
	// Expression is an optional expression source for expression functions.
	Expression string `json:"expr,omitempty" yaml:"expr,omitempty"`
}

// RowSpan bounds a row index range. Nil bounds mean "unbounded" on that side.
type RowSpan struct {
	// Start is the first row index (inclusive, zero-based).
	Start *int `json:"start,omitempty" yaml:"start,omitempty"`
	// End is the last row index (inclusive, zero-based).
	End *int `json:"end,omitempty" yaml:"end,omitempty"`
}

// CellRef addresses a single cell, optionally on another sheet.
type CellRef struct {
	// Sheet is the sheet name. Empty means the active sheet.
	Sheet string `json:"sheet,omitempty" yaml:"sheet,omitempty"`
	// Row is the zero-based row index on the referenced sheet.
	Row int `json:"row" yaml:"row"`
	// Key is the column key on the referenced sheet.
	Key string `json:"key" yaml:"key"`
}

// CellPosition addresses a cell by zero-based row and derived-column index.
type CellPosition struct {
	// Row is the zero-based row index.
	Row int `json:"row" yaml:"row"`
	// Col is the zero-based index into the sheet's derived column list.
	Col int `json:"col" yaml:"col"`
}
