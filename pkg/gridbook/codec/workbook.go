// Package codec converts between external text formats and the in-memory
// workbook model: the YAML document format, the clipboard interchange
// format, and XLSX. All functions are pure over their inputs; the package
// performs no I/O beyond the readers and writers it is handed.
package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gridbook/gridbook-go/pkg/gridbook/models"
)

// ParseWorkbook parses document text into sheets. Two root shapes are
// accepted: a legacy flat sequence of row records, which becomes one sheet
// named "Sheet 1", and a sequence of {name, rows} records. A root that is
// not a sequence fails with FormatError.
func ParseWorkbook(text string) ([]*models.Sheet, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, &FormatError{Reason: "invalid document", Err: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &FormatError{Reason: "document root must be a sequence"}
	}
	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, &FormatError{Reason: "document root must be a sequence"}
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	if isSheetRecord(root.Content[0]) {
		sheets := make([]*models.Sheet, 0, len(root.Content))
		for i, node := range root.Content {
			sheet, err := parseSheetRecord(node, i)
			if err != nil {
				return nil, err
			}
			sheets = append(sheets, sheet)
		}
		return sheets, nil
	}

	// Legacy flat shape: the whole sequence is one implicit sheet.
	sheet := models.NewSheet("", 0)
	for _, node := range root.Content {
		row, err := parseRowRecord(node)
		if err != nil {
			return nil, err
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return []*models.Sheet{sheet}, nil
}

// isSheetRecord reports whether a sequence element carries the {name, rows}
// shape rather than being a plain row record.
func isSheetRecord(node *yaml.Node) bool {
	if node.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if k := node.Content[i].Value; k == "name" || k == "rows" {
			return true
		}
	}
	return false
}

func parseSheetRecord(node *yaml.Node, pos int) (*models.Sheet, error) {
	if node.Kind != yaml.MappingNode {
		return nil, &FormatError{Reason: fmt.Sprintf("sheet record %d must be a mapping", pos)}
	}
	sheet := &models.Sheet{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "name":
			sheet.Name = strings.TrimSpace(val.Value)
		case "rows":
			if val.Kind == yaml.SequenceNode {
				for _, rowNode := range val.Content {
					row, err := parseRowRecord(rowNode)
					if err != nil {
						return nil, err
					}
					sheet.Rows = append(sheet.Rows, row)
				}
			}
		}
	}
	if sheet.Name == "" {
		sheet.Name = models.DefaultSheetName(pos)
	}
	return sheet, nil
}

func parseRowRecord(node *yaml.Node) (*models.Row, error) {
	if node.Kind != yaml.MappingNode {
		return nil, &FormatError{Reason: "row record must be a mapping"}
	}
	row := models.NewRow()
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		row.SetValue(key.Value, scalarValue(val))
	}
	return row, nil
}

// scalarValue normalizes a cell value node: null becomes the empty string
// and non-scalar values are stringified through compact JSON rather than
// dropped.
func scalarValue(node *yaml.Node) string {
	switch {
	case node.Tag == "!!null":
		return ""
	case node.Kind == yaml.ScalarNode:
		return node.Value
	default:
		var v any
		if err := node.Decode(&v); err != nil {
			return ""
		}
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// SerializeWorkbook renders sheets back to document text. Every row is
// emitted with the sheet's full column set in first-seen order, missing
// cells as empty strings. The output always ends with exactly one trailing
// newline; an empty workbook serializes to "[]\n".
func SerializeWorkbook(sheets []*models.Sheet) (string, error) {
	if len(sheets) == 0 {
		return "[]\n", nil
	}

	root := &yaml.Node{Kind: yaml.SequenceNode}
	for i, sheet := range sheets {
		name := sheet.Name
		if name == "" {
			name = models.DefaultSheetName(i)
		}
		rows := &yaml.Node{Kind: yaml.SequenceNode}
		cols := sheet.Columns()
		for _, row := range sheet.Rows {
			rowNode := &yaml.Node{Kind: yaml.MappingNode}
			for _, col := range cols {
				rowNode.Content = append(rowNode.Content,
					scalarNode(col), scalarNode(row.Value(col)))
			}
			rows.Content = append(rows.Content, rowNode)
		}
		sheetNode := &yaml.Node{Kind: yaml.MappingNode}
		sheetNode.Content = append(sheetNode.Content,
			scalarNode("name"), scalarNode(name),
			scalarNode("rows"), rows)
		root.Content = append(root.Content, sheetNode)
	}

	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// scalarNode builds a string scalar, forcing the !!str tag when the plain
// form would resolve to !!null on re-parse and collapse to "".
func scalarNode(value string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Value: value}
	if isNullLiteral(value) {
		n.Tag = "!!str"
	}
	return n
}

// isNullLiteral reports whether a plain scalar with this text resolves to
// YAML null.
func isNullLiteral(value string) bool {
	switch value {
	case "", "~", "null", "Null", "NULL":
		return true
	}
	return false
}
