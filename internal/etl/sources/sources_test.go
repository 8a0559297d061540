package sources_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsonadaptor/internal/etl"
	"jsonadaptor/internal/etl/sources"
)

// collect drains a source and returns its documents' text and error.
func collect(t *testing.T, typ string, cfg etl.SourceConfig) ([]string, error) {
	t.Helper()
	src, err := etl.GetSource(typ)
	require.NoError(t, err)

	docCh, errCh := src.Read(context.Background(), cfg)
	var out []string
	for d := range docCh {
		out = append(out, d.Value.Text())
	}
	return out, <-errCh
}

// ─────────────────────────────────────────────────────────────
// json_file / json_dir
// ─────────────────────────────────────────────────────────────

func TestJSONFile_Formats(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"object.json": `{"a":1}`,
		"array.json":  `[{"a":1},{"a":2}]`,
		"lines.json":  "{\"a\":1}\n{\"a\":2}\n{\"a\":3}\n",
	}
	want := map[string]int{"object.json": 1, "array.json": 2, "lines.json": 3}

	for name, content := range cases {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		docs, err := collect(t, "json_file", etl.SourceConfig{"filePath": path})
		require.NoError(t, err, name)
		assert.Len(t, docs, want[name], name)
	}
}

func TestJSONFile_MissingFile(t *testing.T) {
	_, err := collect(t, "json_file", etl.SourceConfig{"filePath": filepath.Join(t.TempDir(), "nope.json")})
	assert.ErrorContains(t, err, "open file")
}

func TestJSONDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"), []byte(`{"f":"b"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`[{"f":"a1"},{"f":"a2"}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.txt"), []byte(`{"f":"x"}`), 0o644))

	docs, err := collect(t, "json_dir", etl.SourceConfig{"dirPath": dir})
	require.NoError(t, err)
	assert.Equal(t, []string{`{"f":"a1"}`, `{"f":"a2"}`, `{"f":"b"}`}, docs)

	files, err := sources.MatchFiles(dir, "*.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "skip.txt")}, files)
}

// ─────────────────────────────────────────────────────────────
// http
// ─────────────────────────────────────────────────────────────

func TestHTTP_DataPathAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer t0k" {
			http.Error(w, "denied", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"items":[{"id":1},{"id":2}]}}`))
	}))
	defer srv.Close()

	docs, err := collect(t, "http", etl.SourceConfig{
		"url":      srv.URL,
		"headers":  `{"Authorization":"Bearer t0k"}`,
		"dataPath": "data.items",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{`{"id":1}`, `{"id":2}`}, docs)

	_, err = collect(t, "http", etl.SourceConfig{"url": srv.URL})
	assert.ErrorContains(t, err, "http 401")
}
