package dbclient

import (
	"context"
	"errors"
	"fmt"

	"jsonadaptor/internal/adaptor"
	"jsonadaptor/internal/domain"
)

// ErrNoIntrospection is returned by connectors that cannot report the
// column types of a table.
var ErrNoIntrospection = errors.New("column introspection not supported")

// Connector abstracts the import target.
type Connector interface {
	// TestConnection verifies connectivity.
	TestConnection(ctx context.Context) error

	// ImportColumns returns the columns of table in declaration order,
	// typed for the row adaptor.
	ImportColumns(ctx context.Context, table string) ([]adaptor.Column, error)

	// InsertRows writes rows into table. Either all rows are stored or
	// none are.
	InsertRows(ctx context.Context, table string, columns []adaptor.Column, rows []adaptor.Row) (int, error)

	// Close closes the connection.
	Close() error
}

// NewConnector creates a Connector for the given database connection.
func NewConnector(conn *domain.DatabaseConnection, password string) (Connector, error) {
	switch conn.Driver {
	case domain.DatabaseDriverSQLite:
		return newSQLiteConnector(conn)
	case domain.DatabaseDriverMySQL:
		return newSQLConnector("mysql", buildMySQLDSN(conn, password))
	case domain.DatabaseDriverPostgres:
		return newSQLConnector("postgres", buildPostgresDSN(conn, password))
	case domain.DatabaseDriverMongoDB:
		return NewMongoConnector(conn, password)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", conn.Driver)
	}
}
