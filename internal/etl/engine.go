package etl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"jsonadaptor/internal/adaptor"
	"jsonadaptor/internal/domain"
	"jsonadaptor/internal/mapping"
)

// ── ImportJob ──────────────────────────────────────────────
// Orchestrates: source.Read → adaptor.Decode → destination.Write.

// DefaultBatchSize is the number of rows buffered before a write.
const DefaultBatchSize = 500

// ImportJob holds the configuration for a single import.
type ImportJob struct {
	Name        string       `json:"name"`
	SourceType  string       `json:"sourceType"`
	SourceCfg   SourceConfig `json:"sourceConfig"`
	MappingFile string       `json:"mappingFile"`
}

// RunResult is the outcome of running an import job.
type RunResult struct {
	JobName      string           `json:"jobName"`
	Status       domain.RunStatus `json:"status"`
	DocsRead     int              `json:"docsRead"`
	DocsRejected int              `json:"docsRejected"`
	RowsWritten  int              `json:"rowsWritten"`
	Duration     time.Duration    `json:"duration"`
	Error        string           `json:"error,omitempty"`
}

// ── Engine ─────────────────────────────────────────────────

// Engine runs import jobs using the registered sources and a destination.
type Engine struct {
	Dest      Destination
	Options   []adaptor.Option
	BatchSize int
	Logger    *slog.Logger
}

// Run executes an import job end-to-end. A document that cannot be
// decoded is rejected and skipped; its rows are never written. Mapping,
// source and destination failures abort the run, as does a column type
// the adaptor cannot decode into.
func (e *Engine) Run(ctx context.Context, job *ImportJob) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{JobName: job.Name}
	fail := func(stage string, err error) (*RunResult, error) {
		err = fmt.Errorf("%s: %w", stage, err)
		result.Status = domain.RunStatusError
		result.Error = err.Error()
		result.Duration = time.Since(start)
		return result, err
	}

	log := e.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("job", job.Name))

	// 1. Resolve source from registry.
	source, err := GetSource(job.SourceType)
	if err != nil {
		return fail("source", err)
	}
	if err := source.Spec().Validate(job.SourceCfg); err != nil {
		return fail("source", err)
	}

	// 2. Load the mapping and resolve the target schema.
	m, err := mapping.LoadFile(job.MappingFile)
	if err != nil {
		return fail("mapping", err)
	}
	columns, err := e.Dest.Columns(ctx, m.Columns())
	if err != nil {
		return fail("columns", err)
	}
	decoder, err := adaptor.New(columns, m, e.Options...)
	if err != nil {
		return fail("adaptor", err)
	}

	// 3. Read, decode and write in batches.
	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	docCh, errCh := source.Read(readCtx, job.SourceCfg)

	batchSize := e.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	var pending []adaptor.Row
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		n, err := e.Dest.Write(ctx, columns, pending)
		result.RowsWritten += n
		pending = pending[:0]
		return err
	}

	for doc := range docCh {
		result.DocsRead++
		rows, err := decoder.Decode(doc.Value)
		if errors.Is(err, adaptor.ErrConfig) {
			return fail("decode", err)
		}
		if err != nil {
			result.DocsRejected++
			log.Warn("document rejected", slog.String("origin", doc.Origin), slog.Any("err", err))
			continue
		}
		pending = append(pending, rows...)
		if len(pending) >= batchSize {
			if err := flush(); err != nil {
				return fail("write", err)
			}
		}
	}

	// Check for source errors.
	if err := <-errCh; err != nil {
		return fail("read", err)
	}
	if err := ctx.Err(); err != nil {
		return fail("read", err)
	}
	if err := flush(); err != nil {
		return fail("write", err)
	}

	result.Status = domain.RunStatusSuccess
	result.Duration = time.Since(start)
	log.Info("import finished",
		slog.Int("docs", result.DocsRead),
		slog.Int("rejected", result.DocsRejected),
		slog.Int("rows", result.RowsWritten),
		slog.Duration("took", result.Duration))
	return result, nil
}
