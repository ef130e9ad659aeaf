package codec

import "strings"

// EncodeMatrix renders a 2-D string matrix as clipboard interchange text:
// tab-separated columns, newline-separated rows. A cell containing a tab,
// newline, or double quote is wrapped in double quotes with inner quotes
// doubled; all other cells are emitted as-is. A row whose only cell is empty
// encodes as a quoted empty field, since a bare empty row would vanish under
// the decoder's trailing-newline rule.
func EncodeMatrix(matrix [][]string) string {
	rows := make([]string, len(matrix))
	for i, row := range matrix {
		if len(row) == 1 && row[0] == "" {
			rows[i] = `""`
			continue
		}
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = encodeCell(cell)
		}
		rows[i] = strings.Join(cells, "\t")
	}
	return strings.Join(rows, "\n")
}

func encodeCell(cell string) string {
	if !strings.ContainsAny(cell, "\t\n\"") {
		return cell
	}
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

// DecodeMatrix parses clipboard interchange text into a 2-D string matrix.
// A quoted field spanning embedded newlines is a single logical cell, so
// this is a quote-aware tokenizer rather than a split on newline and tab.
// Empty input decodes to a nil matrix; a single trailing newline terminates
// the last row without adding an empty one.
func DecodeMatrix(text string) [][]string {
	if text == "" {
		return nil
	}
	var matrix [][]string
	var row []string
	i, n := 0, len(text)
	for {
		field, next := scanField(text, i)
		row = append(row, field)
		if next >= n {
			matrix = append(matrix, row)
			return matrix
		}
		switch text[next] {
		case '\t':
			i = next + 1
		case '\n':
			matrix = append(matrix, row)
			row = nil
			i = next + 1
			if i >= n {
				return matrix
			}
		}
	}
}

// scanField reads one field starting at i and returns it with the index of
// the delimiter (tab or newline) that ended it, or len(text) at the end of
// input.
func scanField(text string, i int) (string, int) {
	n := len(text)
	if i < n && text[i] == '"' {
		var b strings.Builder
		i++
		for i < n {
			if text[i] == '"' {
				if i+1 < n && text[i+1] == '"' {
					b.WriteByte('"')
					i += 2
					continue
				}
				i++
				break
			}
			b.WriteByte(text[i])
			i++
		}
		// Anything between the closing quote and the next delimiter is
		// taken literally.
		for i < n && text[i] != '\t' && text[i] != '\n' {
			b.WriteByte(text[i])
			i++
		}
		return b.String(), i
	}
	start := i
	for i < n && text[i] != '\t' && text[i] != '\n' {
		i++
	}
	return text[start:i], i
}
