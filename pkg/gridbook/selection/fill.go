package selection

// Axis identifies the direction a fill-drag replicates along.
type Axis int

const (
	// AxisNone means the drag adds no cells beyond the base.
	AxisNone Axis = iota
	// AxisVertical replicates the base's edge row downward or upward.
	AxisVertical
	// AxisHorizontal replicates the base's edge column rightward or leftward.
	AxisHorizontal
)

// TiebreakPolicy decides which axis a fill-drag follows when the drag
// rectangle extends past the base on both axes at once.
type TiebreakPolicy func(base, drag Range) Axis

// VerticalFirst prefers vertical extension over horizontal when the drag
// grows in both directions simultaneously.
func VerticalFirst(base, drag Range) Axis {
	b, d := Normalize(base), Normalize(drag)
	if d.StartRow < b.StartRow || d.EndRow > b.EndRow {
		return AxisVertical
	}
	if d.StartCol < b.StartCol || d.EndCol > b.EndCol {
		return AxisHorizontal
	}
	return AxisNone
}

// LargerDeltaFirst picks the axis with the greater extension beyond the
// base, falling back to vertical on an exact tie.
func LargerDeltaFirst(base, drag Range) Axis {
	b, d := Normalize(base), Normalize(drag)
	dv := max(b.StartRow-d.StartRow, d.EndRow-b.EndRow)
	dh := max(b.StartCol-d.StartCol, d.EndCol-b.EndCol)
	if dv <= 0 && dh <= 0 {
		return AxisNone
	}
	if dh > dv {
		return AxisHorizontal
	}
	return AxisVertical
}

// Target is one fill destination paired with the base edge cell whose value
// it receives.
type Target struct {
	// Row is the destination row index.
	Row int
	// Col is the destination column index.
	Col int
	// SrcRow is the source row index on the base's nearest edge.
	SrcRow int
	// SrcCol is the source column index on the base's nearest edge.
	SrcCol int
}

// FillTargets computes the cells inside drag but outside base that a
// committed fill writes, in row-major order. A vertical fill replicates the
// base's nearest edge row per column; a horizontal fill replicates the
// nearest edge column per row. The drag is clipped to the base's span on the
// non-fill axis, so a rectangle extending both ways fills only along the
// axis the policy picks.
func FillTargets(base, drag Range, policy TiebreakPolicy) []Target {
	if policy == nil {
		policy = VerticalFirst
	}
	b, d := Normalize(base), Normalize(drag)
	var targets []Target
	switch policy(b, d) {
	case AxisVertical:
		for row := d.StartRow; row <= d.EndRow; row++ {
			if row >= b.StartRow && row <= b.EndRow {
				continue
			}
			src := b.StartRow
			if row > b.EndRow {
				src = b.EndRow
			}
			for col := b.StartCol; col <= b.EndCol; col++ {
				targets = append(targets, Target{Row: row, Col: col, SrcRow: src, SrcCol: col})
			}
		}
	case AxisHorizontal:
		for row := b.StartRow; row <= b.EndRow; row++ {
			for col := d.StartCol; col <= d.EndCol; col++ {
				if col >= b.StartCol && col <= b.EndCol {
					continue
				}
				src := b.StartCol
				if col > b.EndCol {
					src = b.EndCol
				}
				targets = append(targets, Target{Row: row, Col: col, SrcRow: row, SrcCol: src})
			}
		}
	}
	return targets
}
