package dbclient

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"jsonadaptor/internal/domain"
)

// buildMySQLDSN constructs a MySQL DSN from a DatabaseConnection.
func buildMySQLDSN(conn *domain.DatabaseConnection, password string) string {
	port := conn.Port
	if port == 0 {
		port = 3306
	}
	cfg := mysql.NewConfig()
	cfg.User = conn.Username
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = conn.Host + ":" + strconv.Itoa(port)
	cfg.DBName = conn.Database
	cfg.ParseTime = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	if conn.SSLMode == "require" {
		cfg.TLSConfig = "true"
	}
	return cfg.FormatDSN()
}

// buildPostgresDSN constructs a key/value Postgres connection string.
func buildPostgresDSN(conn *domain.DatabaseConnection, password string) string {
	port := conn.Port
	if port == 0 {
		port = 5432
	}
	sslMode := conn.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	parts := []string{
		"host=" + pqQuote(conn.Host),
		fmt.Sprintf("port=%d", port),
		"sslmode=" + pqQuote(sslMode),
	}
	if conn.Username != "" {
		parts = append(parts, "user="+pqQuote(conn.Username))
	}
	if password != "" {
		parts = append(parts, "password="+pqQuote(password))
	}
	if conn.Database != "" {
		parts = append(parts, "dbname="+pqQuote(conn.Database))
	}
	return strings.Join(parts, " ")
}

// pqQuote quotes a connection string value when it contains spaces or
// quotes.
func pqQuote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
