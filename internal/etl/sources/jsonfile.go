package sources

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"jsonadaptor/internal/etl"
	"jsonadaptor/internal/jsonvalue"
)

// ── JSON File Source ────────────────────────────────────────
// Reads documents from a local file holding a single object, a top-level
// array of objects, or newline-delimited JSON.

type jsonFileSource struct{}

func init() { etl.RegisterSource(&jsonFileSource{}) }

func (s *jsonFileSource) Spec() etl.SourceSpec {
	return etl.SourceSpec{
		Type:  "json_file",
		Label: "JSON File",
		ConfigFields: []etl.ConfigField{
			{Key: "filePath", Label: "File Path", Type: "file", Required: true, Help: "Path to the JSON or NDJSON file"},
			{Key: "dataPath", Label: "Data Path", Type: "string", Help: "Dot-separated path to the documents (e.g., 'data.items'). Leave empty if the root holds them."},
		},
	}
}

func (s *jsonFileSource) Read(ctx context.Context, cfg etl.SourceConfig) (<-chan etl.Document, <-chan error) {
	out := make(chan etl.Document, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		docs, err := readJSONFile(cfg.String("filePath"), cfg.String("dataPath"))
		if err != nil {
			errCh <- err
			return
		}
		etl.Emit(ctx, out, docs)
	}()

	return out, errCh
}

func readJSONFile(path, dataPath string) ([]etl.Document, error) {
	if path == "" {
		return nil, fmt.Errorf("filePath is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	values, err := readValues(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return etl.Documents(path, values, dataPath)
}

// readValues reads every whitespace-separated JSON value from r.
func readValues(r io.Reader) ([]jsonvalue.Value, error) {
	stream := jsonvalue.NewStream(r)
	var values []jsonvalue.Value
	for {
		v, err := stream.Next()
		if err == io.EOF {
			return values, nil
		}
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
}
