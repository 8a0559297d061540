package adaptor

import (
	"jsonadaptor/internal/jsonvalue"
)

// ── Record ─────────────────────────────────────────────────
// Intermediate form between the JSON tree and a row: dotted paths mapped
// to scalars or to array groups still waiting to be expanded.

// FlatValue is either a scalar JSON value or an array group.
type FlatValue struct {
	Scalar jsonvalue.Value
	Group  ArrayGroup
}

// IsGroup reports whether v holds an array group.
func (v FlatValue) IsGroup() bool { return v.Scalar == nil }

// ArrayGroup is the flattened form of a JSON array: one sub-record per
// element, in element order, sharing the array's path.
type ArrayGroup []Record

// Record maps paths to flat values and remembers insertion order.
type Record struct {
	keys   []string
	values map[string]FlatValue
}

// NewRecord returns an empty record.
func NewRecord() Record {
	return Record{values: make(map[string]FlatValue)}
}

// Len is the number of entries.
func (r Record) Len() int { return len(r.keys) }

// Keys returns the paths in insertion order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Get returns the value stored at path.
func (r Record) Get(path string) (FlatValue, bool) {
	v, ok := r.values[path]
	return v, ok
}

// Set stores v at path. An existing path keeps its position.
func (r *Record) Set(path string, v FlatValue) {
	if r.values == nil {
		r.values = make(map[string]FlatValue)
	}
	if _, ok := r.values[path]; !ok {
		r.keys = append(r.keys, path)
	}
	r.values[path] = v
}

// SetScalar stores a scalar at path.
func (r *Record) SetScalar(path string, v jsonvalue.Value) {
	r.Set(path, FlatValue{Scalar: v})
}

// SetGroup stores an array group at path.
func (r *Record) SetGroup(path string, g ArrayGroup) {
	r.Set(path, FlatValue{Group: g})
}

// Delete removes path if present.
func (r *Record) Delete(path string) {
	if _, ok := r.values[path]; !ok {
		return
	}
	delete(r.values, path)
	for i, k := range r.keys {
		if k == path {
			r.keys = append(r.keys[:i:i], r.keys[i+1:]...)
			break
		}
	}
}

// Merge copies every entry of other into r, overwriting on collision.
func (r *Record) Merge(other Record) {
	for _, k := range other.keys {
		r.Set(k, other.values[k])
	}
}

// Clone returns a shallow copy. Array groups are shared, which is safe
// because groups are never mutated after flattening.
func (r Record) Clone() Record {
	c := Record{
		keys:   make([]string, len(r.keys), len(r.keys)+1),
		values: make(map[string]FlatValue, len(r.values)),
	}
	copy(c.keys, r.keys)
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

// firstGroup returns the first entry, in insertion order, holding an
// array group.
func (r Record) firstGroup() (string, ArrayGroup, bool) {
	for _, k := range r.keys {
		if v := r.values[k]; v.IsGroup() {
			return k, v.Group, true
		}
	}
	return "", nil, false
}
