package dbclient

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"jsonadaptor/internal/adaptor"
)

// sqlConnector is the shared implementation for MySQL, Postgres, and SQLite.
type sqlConnector struct {
	driverName string
	db         *sql.DB
}

// newSQLConnector creates a generic SQL connector.
func newSQLConnector(driverName, dsn string) (*sqlConnector, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)

	return &sqlConnector{driverName: driverName, db: db}, nil
}

func (c *sqlConnector) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return c.db.PingContext(ctx)
}

func (c *sqlConnector) ImportColumns(ctx context.Context, table string) ([]adaptor.Column, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	var (
		cols []adaptor.Column
		err  error
	)
	switch c.driverName {
	case "sqlite":
		cols, err = c.sqliteColumns(ctx, table)
	case "postgres":
		cols, err = c.infoSchemaColumns(ctx,
			`SELECT column_name, data_type FROM information_schema.columns
			 WHERE table_schema = current_schema() AND table_name = $1
			 ORDER BY ordinal_position`, table)
	default:
		cols, err = c.infoSchemaColumns(ctx,
			`SELECT COLUMN_NAME, COLUMN_TYPE FROM INFORMATION_SCHEMA.COLUMNS
			 WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
			 ORDER BY ORDINAL_POSITION`, table)
	}
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %q not found or has no columns", table)
	}
	return cols, nil
}

// sqliteColumns uses PRAGMA table_info.
func (c *sqlConnector) sqliteColumns(ctx context.Context, table string) ([]adaptor.Column, error) {
	rows, err := c.db.QueryContext(ctx, "PRAGMA table_info("+quoteIdent(c.driverName, table)+")")
	if err != nil {
		return nil, fmt.Errorf("table info: %w", err)
	}
	defer rows.Close()

	var cols []adaptor.Column
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dfltValue sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("scan table info: %w", err)
		}
		cols = append(cols, adaptor.Column{Name: name, Type: ColumnTypeForSQL(c.driverName, colType)})
	}
	return cols, rows.Err()
}

// infoSchemaColumns works for MySQL and Postgres via INFORMATION_SCHEMA.
func (c *sqlConnector) infoSchemaColumns(ctx context.Context, query, table string) ([]adaptor.Column, error) {
	rows, err := c.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	defer rows.Close()

	var cols []adaptor.Column
	for rows.Next() {
		var name, colType string
		if err := rows.Scan(&name, &colType); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		cols = append(cols, adaptor.Column{Name: name, Type: ColumnTypeForSQL(c.driverName, colType)})
	}
	return cols, rows.Err()
}

func (c *sqlConnector) InsertRows(ctx context.Context, table string, columns []adaptor.Column, rows []adaptor.Row) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertStatement(c.driverName, table, columns))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("row %d has %d values, want %d", i, len(row), len(columns))
		}
		for j, v := range row {
			args[j] = bindValue(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(rows), nil
}

func (c *sqlConnector) Close() error {
	return c.db.Close()
}

// insertStatement builds a parameterized INSERT for columns.
func insertStatement(driverName, table string, columns []adaptor.Column) string {
	names := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, col := range columns {
		names[i] = quoteIdent(driverName, col.Name)
		if driverName == "postgres" {
			marks[i] = "$" + strconv.Itoa(i+1)
		} else {
			marks[i] = "?"
		}
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(driverName, table), strings.Join(names, ", "), strings.Join(marks, ", "))
}

// quoteIdent quotes a table or column name for driverName.
func quoteIdent(driverName, name string) string {
	if driverName == "mysql" {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// bindValue converts a row slot into a database/sql argument.
func bindValue(v any) any {
	switch x := v.(type) {
	case adaptor.Temporal:
		return x.Time()
	case uint64:
		return int64(x)
	default:
		return v
	}
}
