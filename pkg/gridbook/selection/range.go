// Package selection provides pure range geometry over a row/column grid:
// normalization, containment, iteration, extension, and fill-target
// computation. Nothing here holds mutable state.
package selection

import "iter"

// Range is a rectangular cell-index selection. Stored form is normalized:
// StartRow <= EndRow and StartCol <= EndCol. A single cell is the degenerate
// range where start equals end on both axes.
type Range struct {
	// StartRow is the top row index (inclusive).
	StartRow int `json:"start_row"`
	// StartCol is the left column index (inclusive).
	StartCol int `json:"start_col"`
	// EndRow is the bottom row index (inclusive).
	EndRow int `json:"end_row"`
	// EndCol is the right column index (inclusive).
	EndCol int `json:"end_col"`
}

// Cell returns the degenerate range covering a single cell.
func Cell(row, col int) Range {
	return Range{StartRow: row, StartCol: col, EndRow: row, EndCol: col}
}

// Normalize swaps start/end per axis so start <= end holds on both.
func Normalize(r Range) Range {
	if r.StartRow > r.EndRow {
		r.StartRow, r.EndRow = r.EndRow, r.StartRow
	}
	if r.StartCol > r.EndCol {
		r.StartCol, r.EndCol = r.EndCol, r.StartCol
	}
	return r
}

// Contains reports whether the normalized range covers (row, col).
func (r Range) Contains(row, col int) bool {
	n := Normalize(r)
	return row >= n.StartRow && row <= n.EndRow && col >= n.StartCol && col <= n.EndCol
}

// Rows returns the row extent of the normalized range.
func (r Range) Rows() int {
	n := Normalize(r)
	return n.EndRow - n.StartRow + 1
}

// Cols returns the column extent of the normalized range.
func (r Range) Cols() int {
	n := Normalize(r)
	return n.EndCol - n.StartCol + 1
}

// Cells returns a restartable row-major iterator over all (row, col) pairs
// in the range.
func Cells(r Range) iter.Seq2[int, int] {
	n := Normalize(r)
	return func(yield func(int, int) bool) {
		for row := n.StartRow; row <= n.EndRow; row++ {
			for col := n.StartCol; col <= n.EndCol; col++ {
				if !yield(row, col) {
					return
				}
			}
		}
	}
}

// Extend builds the normalized range spanning the anchor corner and the
// pointer cell. Both shift-click range selection and fill-drag preview use
// this: the anchor corner stays fixed while the opposite corner tracks the
// pointer.
func Extend(anchorRow, anchorCol, pointerRow, pointerCol int) Range {
	return Normalize(Range{
		StartRow: anchorRow,
		StartCol: anchorCol,
		EndRow:   pointerRow,
		EndCol:   pointerCol,
	})
}

// Clamp restricts the range to [0, rows-1] x [0, cols-1]. A grid with no
// rows or columns clamps everything to the origin cell.
func Clamp(r Range, rows, cols int) Range {
	n := Normalize(r)
	n.StartRow = clampIndex(n.StartRow, rows)
	n.EndRow = clampIndex(n.EndRow, rows)
	n.StartCol = clampIndex(n.StartCol, cols)
	n.EndCol = clampIndex(n.EndCol, cols)
	return n
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
