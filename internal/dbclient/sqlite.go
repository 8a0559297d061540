package dbclient

import (
	"jsonadaptor/internal/domain"

	_ "modernc.org/sqlite"
)

// newSQLiteConnector creates a connector for a SQLite file.
// Opens in WAL mode with busy timeout for concurrent access.
func newSQLiteConnector(conn *domain.DatabaseConnection) (*sqlConnector, error) {
	dsn := conn.Host + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	c, err := newSQLConnector("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite only supports one writer
	c.db.SetMaxOpenConns(1)
	return c, nil
}
