// Package adaptor decodes JSON documents into fixed-width typed rows.
//
// A document is flattened into dotted-path keys, keys no column refers to
// are dropped, every JSON array fans out into one row per element, and
// each column's value is coerced into its declared type:
//
//	a, err := adaptor.New(columns, mapping)
//	rows, err := a.Decode(doc)
//
// Decoding is all-or-nothing per document: the first value that cannot be
// coerced fails the whole call and no rows are returned.
package adaptor

import (
	"fmt"
	"sort"

	"jsonadaptor/internal/jsonvalue"
)

// Mapping resolves the JSON path configured for a column.
type Mapping interface {
	// Path returns the path bound to column, if any.
	Path(column string) (string, bool)
	// Paths returns every configured path.
	Paths() []string
}

// PathMap is a Mapping backed by a plain map of column name to path.
type PathMap map[string]string

func (m PathMap) Path(column string) (string, bool) {
	p, ok := m[column]
	return p, ok
}

func (m PathMap) Paths() []string {
	out := make([]string, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Option configures an Adaptor.
type Option func(*Adaptor)

// WithDateFactory replaces EpochDates for temporal columns.
func WithDateFactory(f DateFactory) Option {
	return func(a *Adaptor) {
		if f != nil {
			a.coerce.dates = f
		}
	}
}

// WithSymmetricInt32 also enforces the lower INT32 bound of -2147483648.
// By default only the upper bound is checked.
func WithSymmetricInt32() Option {
	return func(a *Adaptor) { a.coerce.symmetricInt32 = true }
}

// Adaptor converts JSON documents into rows for a fixed schema. It is
// safe for concurrent use.
type Adaptor struct {
	columns []boundColumn
	filter  *keyFilter
	coerce  coercer
}

// New builds an Adaptor for columns, resolving each column's path through
// m. A mapping without any path is a configuration error.
func New(columns []Column, m Mapping, opts ...Option) (*Adaptor, error) {
	if m == nil {
		return nil, &ConfigError{Msg: "no column mappings specified"}
	}
	paths := m.Paths()
	if len(paths) == 0 {
		return nil, &ConfigError{Msg: "no column mappings specified"}
	}
	for _, p := range paths {
		if p == "" {
			return nil, &ConfigError{Msg: "column mapping with an empty JSON path"}
		}
	}

	bound := make([]boundColumn, len(columns))
	for i, col := range columns {
		p, ok := m.Path(col.Name)
		bound[i] = boundColumn{Column: col, path: p, mapped: ok}
	}

	a := &Adaptor{
		columns: bound,
		filter:  newKeyFilter(paths),
		coerce:  coercer{dates: EpochDates},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Columns returns the schema in row order.
func (a *Adaptor) Columns() []Column {
	out := make([]Column, len(a.columns))
	for i, c := range a.columns {
		out[i] = c.Column
	}
	return out
}

// Decode converts one document into rows, in unfold order. A nil or null
// document yields no rows.
func (a *Adaptor) Decode(doc jsonvalue.Value) ([]Row, error) {
	if doc == nil {
		return []Row{}, nil
	}
	switch v := doc.(type) {
	case jsonvalue.Null:
		return []Row{}, nil
	case jsonvalue.Object:
		return a.decodeObject(v)
	default:
		return nil, fmt.Errorf("%w: got %s", ErrNotObject, doc.Kind())
	}
}

func (a *Adaptor) decodeObject(obj jsonvalue.Object) ([]Row, error) {
	rec := Flatten(obj, "")
	a.filter.apply(&rec)

	records := Unfold(rec)
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		row, err := a.coerce.row(r, a.columns)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
