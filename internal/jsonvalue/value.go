// Package jsonvalue is the decoded JSON value model consumed by the row
// adaptor. Values form a closed set of variants; object members keep the
// order they were read in.
package jsonvalue

import (
	"bytes"
	"math/big"
	"strconv"

	json "github.com/goccy/go-json"
)

// Kind identifies the variant of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a decoded JSON node. The variants are Null, Bool, Number,
// String, Array and Object; no other type implements Value.
type Value interface {
	Kind() Kind
	// Text is the canonical textual form: strings are returned raw,
	// everything else as JSON.
	Text() string
	isValue()
}

// Null is the JSON null literal.
type Null struct{}

// Bool is a JSON boolean.
type Bool bool

// Number keeps the JSON number literal as read so that no precision is
// lost before the target column type is known.
type Number string

// String is a JSON string.
type String string

// Array is an ordered JSON array.
type Array []Value

// Member is a single key/value pair of an Object.
type Member struct {
	Key   string
	Value Value
}

// Object is a JSON object. Members are kept in source order.
type Object []Member

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Number) Kind() Kind { return KindNumber }
func (String) Kind() Kind { return KindString }
func (Array) Kind() Kind  { return KindArray }
func (Object) Kind() Kind { return KindObject }

func (Null) isValue()   {}
func (Bool) isValue()   {}
func (Number) isValue() {}
func (String) isValue() {}
func (Array) isValue()  {}
func (Object) isValue() {}

func (Null) Text() string { return "null" }

func (b Bool) Text() string { return strconv.FormatBool(bool(b)) }

func (n Number) Text() string { return string(n) }

func (s String) Text() string { return string(s) }

func (a Array) Text() string {
	b, _ := a.MarshalJSON()
	return string(b)
}

func (o Object) Text() string {
	b, _ := o.MarshalJSON()
	return string(b)
}

// Int64 truncates n toward zero. ok is false when the integral part does
// not fit in an int64.
func (n Number) Int64() (int64, bool) {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return i, true
	}
	f, _, err := big.ParseFloat(string(n), 10, 256, big.ToZero)
	if err != nil || f.IsInf() {
		return 0, false
	}
	// |f| < 2^exp; anything at or beyond 2^64 cannot fit
	if f.MantExp(nil) > 64 {
		return 0, false
	}
	i, _ := f.Int(nil)
	if !i.IsInt64() {
		return 0, false
	}
	return i.Int64(), true
}

// Float64 returns the nearest float64. Literals beyond the float64 range
// become ±Inf.
func (n Number) Float64() float64 {
	f, _ := strconv.ParseFloat(string(n), 64)
	return f
}

// Get returns the value of the first member named key.
func (o Object) Get(key string) (Value, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// ── JSON encoding ──────────────────────────────────────────

func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

func (n Number) MarshalJSON() ([]byte, error) { return []byte(n), nil }

func (a Array) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := marshalValue(v)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		b, err := marshalValue(m.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalValue(v Value) ([]byte, error) {
	switch x := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case Bool:
		return json.Marshal(bool(x))
	case Number:
		return x.MarshalJSON()
	case String:
		return json.Marshal(string(x))
	case Array:
		return x.MarshalJSON()
	case Object:
		return x.MarshalJSON()
	}
	return []byte("null"), nil
}
