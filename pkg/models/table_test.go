package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_SetKeepsFirstPosition(t *testing.T) {
	r := NewRecord(2)
	r.Set("a", 1)
	r.Set("b", 2)
	r.Set("a", 3)

	assert.Equal(t, []string{"a", "b"}, r.Names())
	v, ok := r.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, 2, r.Len())
}

func TestTable_DropColumns(t *testing.T) {
	tbl := &Table{
		Columns: []string{"a", "image", "b"},
		Rows:    [][]string{{"1", "x.png", "2"}, {"3", "", "4"}},
	}

	tbl.DropColumns("image", "absent")

	assert.Equal(t, []string{"a", "b"}, tbl.Columns)
	assert.Equal(t, [][]string{{"1", "2"}, {"3", "4"}}, tbl.Rows)
}

func TestTable_ColumnAndSetColumn(t *testing.T) {
	tbl := &Table{
		Columns: []string{"manufacturer"},
		Rows:    [][]string{{"Ford Shelby"}, {"Toyota"}},
	}

	vals, err := tbl.Column("manufacturer")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ford Shelby", "Toyota"}, vals)

	// Column returns a copy
	vals[0] = "changed"
	assert.Equal(t, "Ford Shelby", tbl.Rows[0][0])

	require.NoError(t, tbl.SetColumn("manufacturer", []string{"Ford", "Toyota"}))
	assert.Equal(t, "Ford", tbl.Rows[0][0])

	_, err = tbl.Column("color")
	assert.EqualError(t, err, `column "color" not found`)
	assert.Error(t, tbl.SetColumn("manufacturer", []string{"only one"}))
}
