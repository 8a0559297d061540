// Package mapping binds schema columns to the dotted JSON paths they are
// filled from.
package mapping

import (
	"fmt"
	"sort"

	"jsonadaptor/internal/adaptor"
)

// Entry binds one column to a JSON path. Type is only needed by sinks
// that cannot report their own column types.
type Entry struct {
	Column string             `yaml:"name"`
	Path   string             `yaml:"path"`
	Type   adaptor.ColumnType `yaml:"type,omitempty"`
}

// Mapping is an ordered set of column bindings. It implements
// adaptor.Mapping.
type Mapping struct {
	entries []Entry
	index   map[string]int
}

// New returns an empty Mapping.
func New() *Mapping {
	return &Mapping{index: make(map[string]int)}
}

// Add binds column to path. Binding the same column twice replaces the
// earlier entry in place.
func (m *Mapping) Add(column, path string, typ adaptor.ColumnType) {
	e := Entry{Column: column, Path: path, Type: typ}
	if i, ok := m.index[column]; ok {
		m.entries[i] = e
		return
	}
	m.index[column] = len(m.entries)
	m.entries = append(m.entries, e)
}

// SetType records the declared type of an already bound column.
func (m *Mapping) SetType(column string, typ adaptor.ColumnType) error {
	i, ok := m.index[column]
	if !ok {
		return &adaptor.ConfigError{Msg: fmt.Sprintf("type given for unmapped column %q", column)}
	}
	m.entries[i].Type = typ
	return nil
}

// Len returns the number of bound columns.
func (m *Mapping) Len() int { return len(m.entries) }

// Entries returns a copy of the bindings in declaration order.
func (m *Mapping) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *Mapping) Path(column string) (string, bool) {
	i, ok := m.index[column]
	if !ok {
		return "", false
	}
	return m.entries[i].Path, true
}

func (m *Mapping) Paths() []string {
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Path)
	}
	sort.Strings(out)
	return out
}

// Validate reports a configuration error for an empty mapping, a blank
// column name or a blank path.
func (m *Mapping) Validate() error {
	if len(m.entries) == 0 {
		return &adaptor.ConfigError{Msg: "no column mappings specified"}
	}
	for _, e := range m.entries {
		if e.Column == "" {
			return &adaptor.ConfigError{Msg: fmt.Sprintf("column mapping for path %q has no column name", e.Path)}
		}
		if e.Path == "" {
			return &adaptor.ConfigError{Msg: fmt.Sprintf("column %q has an empty JSON path", e.Column)}
		}
	}
	return nil
}

// Columns returns the declared schema in declaration order, for sinks
// that cannot introspect their columns. Columns without a declared type
// default to VARSTRING.
func (m *Mapping) Columns() []adaptor.Column {
	out := make([]adaptor.Column, len(m.entries))
	for i, e := range m.entries {
		typ := e.Type
		if typ == adaptor.TypeUnknown {
			typ = adaptor.TypeVarString
		}
		out[i] = adaptor.Column{Name: e.Column, Type: typ}
	}
	return out
}
