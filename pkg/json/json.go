// Package json provides JSON decoding that keeps object key order, built on
// goccy/go-json. Column order in carflow is "first seen in the document", so
// decoding into map[string]interface{} is not an option.
package json

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	gojson "github.com/goccy/go-json"
)

// Member is one key/value pair of an Object
type Member struct {
	Key   string
	Value interface{}
}

// Object is a JSON object with its members in document order. A key that
// appears twice keeps its first position and its last value.
type Object []Member

// Get returns the value stored under key
func (o Object) Get(key string) (interface{}, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Keys returns the member names in order
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}

// MarshalJSON encodes the object with its members in order
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := gojson.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := Marshal(m.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ErrSyntax is returned by DecodeOrdered when the input is not valid JSON
var ErrSyntax = errors.New("invalid JSON")

// NewDecoder returns a goccy decoder configured the way carflow reads
// documents: numbers are kept as Number so their original text survives.
func NewDecoder(r io.Reader) *gojson.Decoder {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()
	return dec
}

// Valid reports whether data is a single well-formed JSON value
func Valid(data []byte) bool {
	return gojson.Valid(data)
}

// DecodeOrdered decodes a single JSON value. Objects become Object, arrays
// become []interface{}, numbers become gojson.Number, and the remaining
// scalars map to string, bool and nil.
func DecodeOrdered(data []byte) (interface{}, error) {
	if !Valid(data) {
		return nil, ErrSyntax
	}

	dec := NewDecoder(bytes.NewReader(data))
	v, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return v, nil
}

func decodeValue(dec *gojson.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case gojson.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", rune(t))
		}
	case float64:
		// decoders that ignore UseNumber for tokens
		return gojson.Number(strconv.FormatFloat(t, 'f', -1, 64)), nil
	default:
		return t, nil
	}
}

func decodeObject(dec *gojson.Decoder) (Object, error) {
	obj := Object{}
	index := make(map[string]int)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}

		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}

		if i, seen := index[key]; seen {
			obj[i].Value = val
			continue
		}
		index[key] = len(obj)
		obj = append(obj, Member{Key: key, Value: val})
	}

	// closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArray(dec *gojson.Decoder) ([]interface{}, error) {
	arr := []interface{}{}
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
	}

	// closing ']'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

// Marshal encodes values produced by DecodeOrdered back to compact JSON,
// keeping object member order.
func Marshal(v interface{}) ([]byte, error) {
	switch t := v.(type) {
	case Object:
		return t.MarshalJSON()
	case []interface{}:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := Marshal(elem)
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case gojson.Number:
		return []byte(t.String()), nil
	default:
		return gojson.Marshal(v)
	}
}
