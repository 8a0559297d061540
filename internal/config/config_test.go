package config_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsonadaptor/internal/config"
	"jsonadaptor/internal/domain"
)

func TestFromEnv_Defaults(t *testing.T) {
	c, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", c.Driver)
	assert.Equal(t, "json_file", c.Source)
	assert.Equal(t, 5*time.Minute, c.Timeout)
	assert.Equal(t, 500, c.BatchSize)
	assert.Equal(t, slog.LevelInfo, c.Level())
}

func TestFromEnv_Values(t *testing.T) {
	t.Setenv("JSONADAPTOR_MAPPING", "json.ini")
	t.Setenv("JSONADAPTOR_DRIVER", "postgres")
	t.Setenv("JSONADAPTOR_PORT", "6543")
	t.Setenv("JSONADAPTOR_SYMMETRIC_INT32", "true")
	t.Setenv("JSONADAPTOR_TIMEOUT", "30s")
	t.Setenv("JSONADAPTOR_LOG_LEVEL", "debug")

	c, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "json.ini", c.Mapping)
	assert.Equal(t, "postgres", c.Driver)
	assert.Equal(t, 6543, c.Port)
	assert.True(t, c.SymmetricInt32)
	assert.Equal(t, 30*time.Second, c.Timeout)
	assert.Equal(t, slog.LevelDebug, c.Level())
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("JSONADAPTOR_TABLE", "FromEnv")
	t.Setenv("JSONADAPTOR_DSN", "env.db")

	c, err := config.Load("jsonadaptor", []string{
		"-mapping", "json.ini", "-table", "MyTable", "-data-path", "data.items", "-batch-size", "50", "a.json", "b.json",
	}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "data.items", c.DataPath)
	assert.Equal(t, 50, c.BatchSize)

	assert.Equal(t, "MyTable", c.Table)
	assert.Equal(t, "env.db", c.DSN)
	assert.Equal(t, []string{"a.json", "b.json"}, c.Inputs)
}

func TestValidate(t *testing.T) {
	cases := map[string][]string{
		"no mapping":   {"-table", "t", "-dsn", "x.db", "a.json"},
		"no table":     {"-mapping", "m.ini", "-dsn", "x.db", "a.json"},
		"no dsn":       {"-mapping", "m.ini", "-table", "t", "a.json"},
		"no inputs":    {"-mapping", "m.ini", "-table", "t", "-dsn", "x.db"},
		"mongo source": {"-mapping", "m.ini", "-table", "t", "-dsn", "x.db", "-source", "mongodb"},
	}
	for name, args := range cases {
		_, err := config.Load("jsonadaptor", args, io.Discard)
		assert.Error(t, err, name)
	}

	_, err := config.Load("jsonadaptor", []string{"-mapping", "m.ini", "-driver", "stdout", "-watch", "in/"}, io.Discard)
	assert.NoError(t, err)
}

func TestConnection(t *testing.T) {
	c := config.Config{Driver: "mysql", DSN: "db.local", Port: 3307, Database: "imports", User: "loader", Table: "T"}
	conn := c.Connection()

	assert.Equal(t, domain.DatabaseDriverMySQL, conn.Driver)
	assert.Equal(t, "db.local", conn.Host)
	assert.Equal(t, 3307, conn.Port)
	assert.Equal(t, "imports", conn.Database)
	assert.Equal(t, "loader", conn.Username)
}
