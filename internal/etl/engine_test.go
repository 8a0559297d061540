package etl_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsonadaptor/internal/adaptor"
	"jsonadaptor/internal/domain"
	"jsonadaptor/internal/etl"
	_ "jsonadaptor/internal/etl/sources"
	"jsonadaptor/internal/jsonvalue"
)

// ─────────────────────────────────────────────────────────────
// Test doubles
// ─────────────────────────────────────────────────────────────

// memDestination records written batches in memory.
type memDestination struct {
	cols     []adaptor.Column
	batches  [][]adaptor.Row
	failWith error
}

func (d *memDestination) Columns(_ context.Context, declared []adaptor.Column) ([]adaptor.Column, error) {
	if d.cols == nil {
		return declared, nil
	}
	return d.cols, nil
}

func (d *memDestination) Write(_ context.Context, _ []adaptor.Column, rows []adaptor.Row) (int, error) {
	if d.failWith != nil {
		return 0, d.failWith
	}
	d.batches = append(d.batches, append([]adaptor.Row(nil), rows...))
	return len(rows), nil
}

func (d *memDestination) rows() []adaptor.Row {
	var out []adaptor.Row
	for _, b := range d.batches {
		out = append(out, b...)
	}
	return out
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

var personColumns = []adaptor.Column{
	{Name: "name", Type: adaptor.TypeVarString},
	{Name: "telephone", Type: adaptor.TypeUInt16},
}

func personJob(t *testing.T, data string) *etl.ImportJob {
	t.Helper()
	dir := t.TempDir()
	return &etl.ImportJob{
		Name:        "people",
		SourceType:  "json_file",
		SourceCfg:   etl.SourceConfig{"filePath": writeFile(t, dir, "people.ndjson", data)},
		MappingFile: writeFile(t, dir, "json.ini", "column.name = name\ncolumn.telephone = telephone\n"),
	}
}

// ─────────────────────────────────────────────────────────────
// Engine.Run
// ─────────────────────────────────────────────────────────────

func TestEngine_RunRejectsBadDocuments(t *testing.T) {
	job := personJob(t, `{"name":"abc","telephone":[123,456],"address":["a","b"]}
{"name":"bad","telephone":["x"]}
[1]
{"name":"solo","telephone":7}
`)
	dest := &memDestination{cols: personColumns}
	engine := &etl.Engine{Dest: dest}

	res, err := engine.Run(context.Background(), job)
	require.NoError(t, err)

	assert.Equal(t, domain.RunStatusSuccess, res.Status)
	assert.Equal(t, 4, res.DocsRead)
	assert.Equal(t, 2, res.DocsRejected)
	assert.Equal(t, 3, res.RowsWritten)
	assert.Equal(t, []adaptor.Row{
		{"abc", uint16(123)},
		{"abc", uint16(456)},
		{"solo", uint16(7)},
	}, dest.rows())
}

func TestEngine_RunBatches(t *testing.T) {
	job := personJob(t, `[{"name":"a"},{"name":"b"},{"name":"c"}]`)
	dest := &memDestination{cols: personColumns}
	engine := &etl.Engine{Dest: dest, BatchSize: 2}

	res, err := engine.Run(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, 3, res.DocsRead)
	assert.Equal(t, 3, res.RowsWritten)
	assert.Len(t, dest.batches, 2)
}

func TestEngine_RunUsesDeclaredColumns(t *testing.T) {
	job := personJob(t, `{"name":"abc","telephone":12}`)
	dest := &memDestination{}
	engine := &etl.Engine{Dest: dest}

	_, err := engine.Run(context.Background(), job)
	require.NoError(t, err)
	// without a declared type every column is VARSTRING
	assert.Equal(t, []adaptor.Row{{"abc", "12"}}, dest.rows())
}

func TestEngine_DestinationErrorAborts(t *testing.T) {
	job := personJob(t, `{"name":"abc"}`)
	boom := errors.New("disk full")
	engine := &etl.Engine{Dest: &memDestination{cols: personColumns, failWith: boom}}

	res, err := engine.Run(context.Background(), job)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, domain.RunStatusError, res.Status)
	assert.Contains(t, res.Error, "write")
}

func TestEngine_ConfigErrors(t *testing.T) {
	engine := &etl.Engine{Dest: &memDestination{cols: personColumns}}
	ctx := context.Background()

	job := personJob(t, `{}`)
	job.SourceType = "ftp"
	_, err := engine.Run(ctx, job)
	assert.ErrorContains(t, err, "unknown source type")

	job = personJob(t, `{}`)
	job.MappingFile = filepath.Join(t.TempDir(), "missing.ini")
	_, err = engine.Run(ctx, job)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	job = personJob(t, `{}`)
	delete(job.SourceCfg, "filePath")
	_, err = engine.Run(ctx, job)
	assert.ErrorContains(t, err, "filePath is required")
}

func TestEngine_UnknownColumnTypeAborts(t *testing.T) {
	job := personJob(t, `{"name":"abc","telephone":1}`)
	dest := &memDestination{cols: []adaptor.Column{{Name: "name", Type: adaptor.TypeVarString}, {Name: "telephone"}}}

	_, err := (&etl.Engine{Dest: dest}).Run(context.Background(), job)
	assert.True(t, errors.Is(err, adaptor.ErrConfig))
	assert.Empty(t, dest.rows())
}

func TestEngine_SourceErrorAborts(t *testing.T) {
	job := personJob(t, `{"name":"abc"} {"name":`)
	_, err := (&etl.Engine{Dest: &memDestination{cols: personColumns}}).Run(context.Background(), job)
	assert.ErrorContains(t, err, "read")
}

// ─────────────────────────────────────────────────────────────
// Documents / StdoutDestination
// ─────────────────────────────────────────────────────────────

func TestDocuments_DataPath(t *testing.T) {
	v, err := jsonvalue.Parse([]byte(`{"data":{"items":[{"a":1},{"a":2}]}}`))
	require.NoError(t, err)

	docs, err := etl.Documents("resp", []jsonvalue.Value{v}, "data.items")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "resp#1", docs[0].Origin)
	assert.Equal(t, "resp#2", docs[1].Origin)

	_, err = etl.Documents("resp", []jsonvalue.Value{v}, "data.missing")
	assert.ErrorContains(t, err, "not found")
}

func TestStdoutDestination(t *testing.T) {
	var buf bytes.Buffer
	dest := &etl.StdoutDestination{W: &buf}
	cols := []adaptor.Column{
		{Name: "name", Type: adaptor.TypeVarString},
		{Name: "n", Type: adaptor.TypeUInt8},
		{Name: "day", Type: adaptor.TypeDate},
	}
	_, err := dest.Columns(context.Background(), cols)
	require.NoError(t, err)

	n, err := dest.Write(context.Background(), cols, []adaptor.Row{
		{"abc", uint8(1), adaptor.Temporal{Type: adaptor.TypeDate, Millis: 86400000}},
		{"d", nil, nil},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "{\"name\":\"abc\",\"n\":1,\"day\":\"1970-01-02\"}\n{\"name\":\"d\",\"n\":null,\"day\":null}\n", buf.String())
}

func TestStdoutDestination_ConcurrentRuns(t *testing.T) {
	var buf bytes.Buffer
	dest := &etl.StdoutDestination{W: &buf}
	ctx := context.Background()

	schemas := [][]adaptor.Column{
		{{Name: "a", Type: adaptor.TypeVarString}},
		{{Name: "b", Type: adaptor.TypeVarString}},
	}

	var wg sync.WaitGroup
	for _, declared := range schemas {
		wg.Add(1)
		go func(declared []adaptor.Column) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				cols, err := dest.Columns(ctx, declared)
				if !assert.NoError(t, err) {
					return
				}
				_, err = dest.Write(ctx, cols, []adaptor.Row{{declared[0].Name}})
				assert.NoError(t, err)
			}
		}(declared)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 100)
	for _, line := range lines {
		assert.Contains(t, []string{`{"a":"a"}`, `{"b":"b"}`}, line)
	}
}

func TestListSources(t *testing.T) {
	var types []string
	for _, s := range etl.ListSources() {
		types = append(types, s.Type)
	}
	assert.Equal(t, []string{"http", "json_dir", "json_file", "mongodb"}, types)
}
