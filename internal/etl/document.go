package etl

import (
	"fmt"
	"strings"

	"jsonadaptor/internal/jsonvalue"
)

// ── Document ───────────────────────────────────────────────
// The unit flowing from a source into the engine: one JSON value that
// decodes into zero or more rows.

// Document is a single decoded JSON document and where it came from.
type Document struct {
	Origin string          `json:"origin"` // e.g. "data/people.json#3"
	Value  jsonvalue.Value `json:"value"`
}

// Documents splits the values read from one input into documents. A
// top-level array holds one document per element; any other value is a
// document by itself. dataPath, when set, first selects a nested value
// of every object by its dotted path.
func Documents(origin string, values []jsonvalue.Value, dataPath string) ([]Document, error) {
	var out []Document
	add := func(v jsonvalue.Value) {
		out = append(out, Document{Origin: fmt.Sprintf("%s#%d", origin, len(out)+1), Value: v})
	}
	for _, v := range values {
		if dataPath != "" {
			nested, err := navigate(v, dataPath)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", origin, err)
			}
			v = nested
		}
		if arr, ok := v.(jsonvalue.Array); ok {
			for _, e := range arr {
				add(e)
			}
			continue
		}
		add(v)
	}
	return out, nil
}

// navigate walks a dot-separated path through nested objects.
func navigate(v jsonvalue.Value, path string) (jsonvalue.Value, error) {
	current := v
	for _, part := range strings.Split(path, ".") {
		obj, ok := current.(jsonvalue.Object)
		if !ok {
			return nil, fmt.Errorf("invalid data path: %q is not inside an object", part)
		}
		next, ok := obj.Get(part)
		if !ok {
			return nil, fmt.Errorf("invalid data path: %q not found", part)
		}
		current = next
	}
	return current, nil
}
