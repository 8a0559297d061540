package sources

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"jsonadaptor/internal/etl"
)

// ── HTTP Source ─────────────────────────────────────────────
// Fetches documents from a REST endpoint. The response body may hold one
// object, an array of objects or newline-delimited JSON.

type httpSource struct {
	client *http.Client
}

func init() { etl.RegisterSource(&httpSource{client: &http.Client{Timeout: 30 * time.Second}}) }

func (s *httpSource) Spec() etl.SourceSpec {
	return etl.SourceSpec{
		Type:  "http",
		Label: "HTTP API",
		ConfigFields: []etl.ConfigField{
			{Key: "url", Label: "URL", Type: "string", Required: true, Help: "Full URL to fetch"},
			{Key: "method", Label: "Method", Type: "select", Options: []string{"GET", "POST"}, Default: "GET"},
			{Key: "headers", Label: "Headers", Type: "textarea", Help: "JSON object of headers (e.g., {\"Authorization\": \"Bearer xxx\"})"},
			{Key: "body", Label: "Body", Type: "textarea", Help: "Request body (for POST)"},
			{Key: "dataPath", Label: "Data Path", Type: "string", Help: "Dot-separated path to the documents in the response (e.g., 'data.items')"},
		},
	}
}

func (s *httpSource) Read(ctx context.Context, cfg etl.SourceConfig) (<-chan etl.Document, <-chan error) {
	out := make(chan etl.Document, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		docs, err := s.fetch(ctx, cfg)
		if err != nil {
			errCh <- err
			return
		}
		etl.Emit(ctx, out, docs)
	}()

	return out, errCh
}

func (s *httpSource) fetch(ctx context.Context, cfg etl.SourceConfig) ([]etl.Document, error) {
	url := cfg.String("url")
	if url == "" {
		return nil, fmt.Errorf("url is required")
	}
	method := strings.ToUpper(cfg.String("method"))
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	if body := cfg.String("body"); body != "" {
		bodyReader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if headers := cfg.String("headers"); headers != "" {
		var h map[string]string
		if err := json.Unmarshal([]byte(headers), &h); err != nil {
			return nil, fmt.Errorf("parse headers: %w", err)
		}
		for k, v := range h {
			req.Header.Set(k, v)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(bytes.TrimSpace(body)))
	}

	values, err := readValues(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	return etl.Documents(url, values, cfg.String("dataPath"))
}
