package app_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"jsonadaptor/internal/app"
	"jsonadaptor/internal/config"
	"jsonadaptor/internal/storage"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ─────────────────────────────────────────────────────────────
// Jobs
// ─────────────────────────────────────────────────────────────

func TestJobs(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "a.json", `{}`)

	a := app.New(config.Config{Source: "json_file", Mapping: "m.ini", DataPath: "items", Inputs: []string{file, dir}}, nil)
	jobs := a.Jobs()
	require.Len(t, jobs, 2)

	assert.Equal(t, "a.json", jobs[0].Name)
	assert.Equal(t, "json_file", jobs[0].SourceType)
	assert.Equal(t, file, jobs[0].SourceCfg.String("filePath"))
	assert.Equal(t, "items", jobs[0].SourceCfg.String("dataPath"))

	assert.Equal(t, "json_dir", jobs[1].SourceType)
	assert.Equal(t, dir, jobs[1].SourceCfg.String("dirPath"))

	a = app.New(config.Config{Source: "http", Mapping: "m.ini", Inputs: []string{"http://h/people"}}, nil)
	jobs = a.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "http", jobs[0].SourceType)
	assert.Equal(t, "http://h/people", jobs[0].SourceCfg.String("url"))

	a = app.New(config.Config{Source: "mongodb", Mapping: "m.ini", MongoURI: "mongodb://h", MongoCollection: "people"}, nil)
	jobs = a.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "people", jobs[0].Name)
	assert.Equal(t, "mongodb", jobs[0].SourceType)
	assert.Equal(t, "mongodb://h", jobs[0].SourceCfg.String("uri"))
}

// ─────────────────────────────────────────────────────────────
// End to end: JSON file → SQLite table
// ─────────────────────────────────────────────────────────────

func TestApp_ImportIntoSQLite(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "target.db")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE people (name TEXT, telephone INTEGER, born DATE)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	mapping := writeFile(t, dir, "json.ini", "column.name = name\ncolumn.telephone = telephone\ncolumn.born = born\n")
	input := writeFile(t, dir, "people.json", `[
		{"name":"abc","telephone":[123,456],"born":0},
		{"name":"bad","telephone":"x"}
	]`)

	cfg := config.Config{
		Mapping:   mapping,
		Source:    "json_file",
		Driver:    "sqlite",
		DSN:       dbPath,
		Table:     "people",
		RunLog:    filepath.Join(dir, "runs.db"),
		BatchSize: 500,
		Inputs:    []string{input},
	}
	require.NoError(t, cfg.Validate())

	ctx := context.Background()
	a := app.New(cfg, nil)
	require.NoError(t, a.Startup(ctx))
	require.NoError(t, a.Run(ctx))
	a.Shutdown(ctx)

	db, err = sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query(`SELECT name, telephone FROM people ORDER BY telephone`)
	require.NoError(t, err)
	defer rows.Close()
	var got []string
	for rows.Next() {
		var name string
		var tel int64
		require.NoError(t, rows.Scan(&name, &tel))
		got = append(got, name)
		assert.Contains(t, []int64{123, 456}, tel)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"abc", "abc"}, got)

	runDB, err := storage.New(cfg.RunLog)
	require.NoError(t, err)
	defer runDB.Close()
	runs, err := storage.NewRunStore(runDB).ListRuns("people.json", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].DocsRead)
	assert.Equal(t, 1, runs[0].DocsRejected)
	assert.Equal(t, 2, runs[0].RowsWritten)
}

func TestApp_StartupFailsOnMissingTable(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{
		Mapping: writeFile(t, dir, "json.ini", "column.name = name\n"),
		Source:  "json_file",
		Driver:  "sqlite",
		DSN:     filepath.Join(dir, "empty.db"),
		Table:   "people",
		Inputs:  []string{writeFile(t, dir, "p.json", `{"name":"a"}`)},
	}

	ctx := context.Background()
	a := app.New(cfg, nil)
	require.NoError(t, a.Startup(ctx))
	defer a.Shutdown(ctx)

	err := a.Run(ctx)
	assert.ErrorContains(t, err, "not found")
}
