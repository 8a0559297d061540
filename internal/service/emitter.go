package service

import (
	"context"
	"log/slog"
	"sync"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter: decouples services from their observers
// ─────────────────────────────────────────────────────────────

// EventEmitter receives import lifecycle events such as
// "import:completed" and "import:failed".
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// LogEmitter writes every event as a structured log line.
type LogEmitter struct {
	Logger *slog.Logger
}

func (e LogEmitter) Emit(ctx context.Context, event string, data any) {
	log := e.Logger
	if log == nil {
		log = slog.Default()
	}
	log.InfoContext(ctx, "event", slog.String("event", event), slog.Any("data", data))
}

// MockEmitter is a test-friendly EventEmitter that records all calls.
// It is safe for use from watcher and scheduler goroutines.
type MockEmitter struct {
	mu     sync.Mutex
	events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, EmittedEvent{Event: event, Data: data})
}

// Events returns a copy of the recorded events.
func (m *MockEmitter) Events() []EmittedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]EmittedEvent(nil), m.events...)
}
