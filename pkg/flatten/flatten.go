// Package flatten turns nested JSON objects into flat records whose column
// names are the dot-joined paths of the nested keys, and assembles those
// records into a table.
//
// Rules:
//   - an object value is walked recursively, its keys prefixed with the
//     parent path and the separator
//   - an empty object contributes no columns
//   - arrays are not expanded; they are kept as a single value
//   - the table's columns are the union of all record columns in first-seen order
package flatten

import (
	"strconv"

	gojson "github.com/goccy/go-json"

	jsonutil "github.com/ajitpratap0/carflow/pkg/json"
	"github.com/ajitpratap0/carflow/pkg/models"
)

// DefaultSeparator joins nested key names
const DefaultSeparator = "."

// Record flattens obj into a record
func Record(obj jsonutil.Object, sep string) *models.Record {
	if sep == "" {
		sep = DefaultSeparator
	}
	rec := models.NewRecord(len(obj))
	walk(rec, "", obj, sep)
	return rec
}

func walk(rec *models.Record, prefix string, obj jsonutil.Object, sep string) {
	for _, m := range obj {
		name := m.Key
		if prefix != "" {
			name = prefix + sep + m.Key
		}
		if nested, ok := m.Value.(jsonutil.Object); ok {
			walk(rec, name, nested, sep)
			continue
		}
		rec.Set(name, m.Value)
	}
}

// Table builds a table from records. Columns appear in the order they are
// first seen across all records; cells a record lacks are left empty.
func Table(records []*models.Record) *models.Table {
	var columns []string
	position := make(map[string]int)
	for _, rec := range records {
		for _, f := range rec.Fields {
			if _, ok := position[f.Name]; !ok {
				position[f.Name] = len(columns)
				columns = append(columns, f.Name)
			}
		}
	}

	tbl := models.NewTable(columns)
	tbl.Rows = make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(columns))
		for _, f := range rec.Fields {
			row[position[f.Name]] = Render(f.Value)
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl
}

// Render converts a decoded JSON value to its cell text. Values are written
// as they appeared in the document, without coercion: numbers keep their
// literal text, null is empty and arrays are compact JSON. Booleans are
// written True and False.
func Render(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case gojson.Number:
		return v.String()
	case bool:
		if v {
			return "True"
		}
		return "False"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		b, err := jsonutil.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
