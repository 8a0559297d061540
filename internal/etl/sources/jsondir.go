package sources

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"jsonadaptor/internal/etl"
)

// ── JSON Directory Source ───────────────────────────────────
// Reads every matching file of a directory, in name order.

type jsonDirSource struct{}

func init() { etl.RegisterSource(&jsonDirSource{}) }

func (s *jsonDirSource) Spec() etl.SourceSpec {
	return etl.SourceSpec{
		Type:  "json_dir",
		Label: "JSON Directory",
		ConfigFields: []etl.ConfigField{
			{Key: "dirPath", Label: "Directory", Type: "dir", Required: true},
			{Key: "pattern", Label: "File Pattern", Type: "string", Default: "*.json", Help: "Glob matched against file names"},
			{Key: "dataPath", Label: "Data Path", Type: "string", Help: "Dot-separated path to the documents inside each file"},
		},
	}
}

func (s *jsonDirSource) Read(ctx context.Context, cfg etl.SourceConfig) (<-chan etl.Document, <-chan error) {
	out := make(chan etl.Document, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		files, err := MatchFiles(cfg.String("dirPath"), cfg.String("pattern"))
		if err != nil {
			errCh <- err
			return
		}
		for _, path := range files {
			docs, err := readJSONFile(path, cfg.String("dataPath"))
			if err != nil {
				errCh <- err
				return
			}
			if !etl.Emit(ctx, out, docs) {
				return
			}
		}
	}()

	return out, errCh
}

// MatchFiles lists the files of dir matching pattern ("*.json" when
// empty), sorted by name.
func MatchFiles(dir, pattern string) ([]string, error) {
	if dir == "" {
		return nil, fmt.Errorf("dirPath is required")
	}
	if pattern == "" {
		pattern = "*.json"
	}
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("match %q: %w", pattern, err)
	}
	sort.Strings(files)
	return files, nil
}
