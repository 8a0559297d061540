package etl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	json "github.com/goccy/go-json"

	"jsonadaptor/internal/adaptor"
	"jsonadaptor/internal/dbclient"
)

// ── Destination ────────────────────────────────────────────
// A Destination stores decoded rows. It also owns the target schema:
// the engine asks it for the columns before any row is decoded and hands
// them back on every write, so one destination can serve concurrent runs.

// Destination writes rows to a target system.
type Destination interface {
	// Columns returns the target schema. declared is the schema the
	// mapping file describes, for targets that cannot report their own.
	Columns(ctx context.Context, declared []adaptor.Column) ([]adaptor.Column, error)

	// Write stores rows, laid out as columns, atomically and returns how
	// many were written.
	Write(ctx context.Context, columns []adaptor.Column, rows []adaptor.Row) (int, error)
}

// ── SQL Destination ────────────────────────────────────────

// SQLDestination inserts rows into a table through a dbclient.Connector.
// The table's own column types win over the declared ones.
type SQLDestination struct {
	Conn  dbclient.Connector
	Table string
}

func (d *SQLDestination) Columns(ctx context.Context, declared []adaptor.Column) ([]adaptor.Column, error) {
	cols, err := d.Conn.ImportColumns(ctx, d.Table)
	if errors.Is(err, dbclient.ErrNoIntrospection) {
		cols, err = declared, nil
	}
	if err != nil {
		return nil, fmt.Errorf("import columns of %s: %w", d.Table, err)
	}
	return cols, nil
}

func (d *SQLDestination) Write(ctx context.Context, columns []adaptor.Column, rows []adaptor.Row) (int, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("write %s: no columns", d.Table)
	}
	return d.Conn.InsertRows(ctx, d.Table, columns, rows)
}

// ── Mongo Destination ──────────────────────────────────────

// MongoDestination stores one document per row in a collection, using
// the declared schema.
type MongoDestination struct {
	Conn       *dbclient.MongoConnector
	Collection string
}

func (d *MongoDestination) Columns(_ context.Context, declared []adaptor.Column) ([]adaptor.Column, error) {
	if len(declared) == 0 {
		return nil, fmt.Errorf("collection %s: no columns declared", d.Collection)
	}
	return declared, nil
}

func (d *MongoDestination) Write(ctx context.Context, columns []adaptor.Column, rows []adaptor.Row) (int, error) {
	return d.Conn.InsertRows(ctx, d.Collection, columns, rows)
}

// ── Stdout Destination ─────────────────────────────────────

// StdoutDestination prints each row as one JSON object per line, keys in
// column order. Temporal values are printed in their text form.
type StdoutDestination struct {
	W io.Writer

	// mu keeps lines of concurrent runs from interleaving.
	mu sync.Mutex
}

func (d *StdoutDestination) Columns(_ context.Context, declared []adaptor.Column) ([]adaptor.Column, error) {
	return declared, nil
}

func (d *StdoutDestination) Write(_ context.Context, columns []adaptor.Column, rows []adaptor.Row) (int, error) {
	var buf []byte
	for _, row := range rows {
		line, err := encodeRow(columns, row)
		if err != nil {
			return 0, err
		}
		buf = append(buf, line...)
		buf = append(buf, '\n')
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.W.Write(buf); err != nil {
		return 0, fmt.Errorf("write rows: %w", err)
	}
	return len(rows), nil
}

func encodeRow(columns []adaptor.Column, row adaptor.Row) ([]byte, error) {
	buf := []byte{'{'}
	for i, col := range columns {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(col.Name)
		if err != nil {
			return nil, err
		}
		var v any
		if i < len(row) {
			v = row[i]
		}
		if t, ok := v.(adaptor.Temporal); ok {
			v = t.String()
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode column %s: %w", col.Name, err)
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	return append(buf, '}'), nil
}
