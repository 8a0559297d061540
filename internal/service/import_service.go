package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"jsonadaptor/internal/domain"
	"jsonadaptor/internal/etl"
)

// ─────────────────────────────────────────────────────────────
// Import Service: runs, schedules and watches import jobs
// ─────────────────────────────────────────────────────────────

// Trigger names recorded on each run.
const (
	TriggerManual    = "manual"
	TriggerSchedule  = "schedule"
	TriggerFileWatch = "file_watch"
)

// DefaultRunTimeout bounds a single import run.
const DefaultRunTimeout = 5 * time.Minute

// watchDebounce is how long a file must stay quiet before it is imported.
const watchDebounce = 500 * time.Millisecond

// ImportService runs import jobs through an etl.Engine. Runs can be
// started directly, on a cron schedule or when a watched directory
// receives a new file. Every finished run is recorded in the RunStore,
// when one is configured, and announced through the emitter.
type ImportService struct {
	engine      *etl.Engine
	runs        domain.RunStore
	emitter     EventEmitter
	logger      *slog.Logger
	runningJobs runningJobsGuard

	// Timeout bounds each run. Zero means DefaultRunTimeout.
	Timeout time.Duration

	// watcher / cron lifecycle
	mu          sync.Mutex
	watchCancel context.CancelFunc
	watcher     *fsnotify.Watcher
	cronSched   *cron.Cron
}

// NewImportService creates an ImportService. runs may be nil.
func NewImportService(engine *etl.Engine, runs domain.RunStore, emitter EventEmitter) *ImportService {
	logger := engine.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if emitter == nil {
		emitter = LogEmitter{Logger: logger}
	}
	return &ImportService{
		engine:  engine,
		runs:    runs,
		emitter: emitter,
		logger:  logger,
	}
}

// ── Run ────────────────────────────────────────────────────

// RunJob executes job synchronously. A second run of the same job while
// one is in progress fails immediately.
func (s *ImportService) RunJob(ctx context.Context, job *etl.ImportJob, trigger string) (*etl.RunResult, error) {
	if !s.runningJobs.TryLock(job.Name) {
		return nil, fmt.Errorf("job %s is already running", job.Name)
	}
	defer s.runningJobs.Unlock(job.Name)

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultRunTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	result, runErr := s.engine.Run(runCtx, job)

	if s.runs != nil {
		run := &domain.ImportRun{
			JobName:      job.Name,
			Trigger:      trigger,
			StartedAt:    start,
			FinishedAt:   time.Now(),
			Status:       result.Status,
			DocsRead:     result.DocsRead,
			DocsRejected: result.DocsRejected,
			RowsWritten:  result.RowsWritten,
			Error:        result.Error,
		}
		if err := s.runs.CreateRun(run); err != nil {
			s.logger.Error("record run", slog.String("job", job.Name), slog.Any("err", err))
		}
	}

	event := "import:completed"
	if runErr != nil {
		event = "import:failed"
	}
	s.emitter.Emit(ctx, event, result)

	return result, runErr
}

// ListRuns returns the last 50 recorded runs of a job.
func (s *ImportService) ListRuns(jobName string) ([]domain.ImportRun, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.ListRuns(jobName, 50)
}

// ListSources returns the available source descriptors.
func (s *ImportService) ListSources() []etl.SourceSpec {
	return etl.ListSources()
}

// ── Schedule ───────────────────────────────────────────────

// Schedule runs job on a standard five-field cron expression until Stop.
func (s *ImportService) Schedule(ctx context.Context, expr string, job *etl.ImportJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cronSched
	if c == nil {
		c = cron.New()
	}
	_, err := c.AddFunc(expr, func() {
		s.logger.Info("cron: running job", slog.String("job", job.Name))
		if _, err := s.RunJob(ctx, job, TriggerSchedule); err != nil {
			s.logger.Warn("cron: job failed", slog.String("job", job.Name), slog.Any("err", err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", expr, job.Name, err)
	}
	if s.cronSched == nil {
		c.Start()
		s.cronSched = c
	}
	return nil
}

// ── Watch ──────────────────────────────────────────────────

// Watch imports every file in dir whose name matches pattern once it is
// created or written and has been quiet for a short debounce. Each file
// runs as job with the json_file source. An empty pattern means *.json.
func (s *ImportService) Watch(ctx context.Context, job *etl.ImportJob, dir, pattern string) error {
	if pattern == "" {
		pattern = "*.json"
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return fmt.Errorf("watch pattern %q: %w", pattern, err)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("watch dir %q: %w", dir, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return fmt.Errorf("already watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(absDir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch dir %q: %w", absDir, err)
	}
	s.watcher = watcher

	watchCtx, cancel := context.WithCancel(ctx)
	s.watchCancel = cancel

	go s.watchLoop(watchCtx, watcher, job, pattern)

	s.logger.Info("watcher: watching", slog.String("dir", absDir), slog.String("pattern", pattern))
	return nil
}

func (s *ImportService) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, job *etl.ImportJob, pattern string) {
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if ok, _ := filepath.Match(pattern, filepath.Base(event.Name)); !ok {
				continue
			}
			path := event.Name
			if t, exists := timers[path]; exists {
				t.Stop()
			}
			timers[path] = time.AfterFunc(watchDebounce, func() {
				if ctx.Err() != nil {
					return
				}
				fileJob := FileJob(job, path)
				s.logger.Info("watcher: file changed", slog.String("path", path), slog.String("job", fileJob.Name))
				if _, err := s.RunJob(ctx, fileJob, TriggerFileWatch); err != nil {
					s.logger.Warn("watcher: run failed", slog.String("path", path), slog.Any("err", err))
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watcher: error", slog.Any("err", err))
		}
	}
}

// FileJob derives a json_file job for path from job. The derived job is
// named after both, so different files can import concurrently.
func FileJob(job *etl.ImportJob, path string) *etl.ImportJob {
	cfg := etl.SourceConfig{}
	for k, v := range job.SourceCfg {
		cfg[k] = v
	}
	cfg["filePath"] = path
	return &etl.ImportJob{
		Name:        job.Name + ":" + filepath.Base(path),
		SourceType:  "json_file",
		SourceCfg:   cfg,
		MappingFile: job.MappingFile,
	}
}

// ── Lifecycle ──────────────────────────────────────────────

// WaitRunning blocks until all running jobs finish or ctx is cancelled.
// Used for graceful shutdown.
func (s *ImportService) WaitRunning(ctx context.Context) {
	s.runningJobs.WaitAll(ctx)
}

// Stop tears down the watcher and scheduler. It is safe to call twice.
func (s *ImportService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
}
