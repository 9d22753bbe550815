// Package models provides the data structures that flow through carflow
// pipelines: flattened records and the tabular dataset built from them.
package models

// Field is one flattened column/value pair of a Record
type Field struct {
	Name  string
	Value interface{}
}

// Record is a single entity with its fields flattened to column names,
// kept in first-seen order.
type Record struct {
	Fields []Field
	index  map[string]int
}

// NewRecord creates an empty record with room for n fields
func NewRecord(n int) *Record {
	return &Record{
		Fields: make([]Field, 0, n),
		index:  make(map[string]int, n),
	}
}

// Set stores value under name. An existing field keeps its position.
func (r *Record) Set(name string, value interface{}) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[name]; ok {
		r.Fields[i].Value = value
		return
	}
	r.index[name] = len(r.Fields)
	r.Fields = append(r.Fields, Field{Name: name, Value: value})
}

// Get returns the value stored under name
func (r *Record) Get(name string) (interface{}, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.Fields[i].Value, true
}

// Names returns the field names in order
func (r *Record) Names() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

// Len returns the number of fields
func (r *Record) Len() int {
	return len(r.Fields)
}
