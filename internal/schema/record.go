package schema

import (
	"fmt"
	"strconv"
)

// Record is one validated experiment. Keys are the verbatim field and
// evidence column names; values are string, float64 or nil.
type Record map[string]any

// CSVRow stringifies the record in canonical column order. Null values
// become empty cells.
func (r Record) CSVRow() []string {
	cols := Columns()
	row := make([]string, len(cols))
	for i, col := range cols {
		row[i] = cellString(r[col])
	}
	return row
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
