package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ai-terminal/internal/model"
)

// SessionSaver persists the whole session collection in one write.
type SessionSaver interface {
	SaveSessions(ctx context.Context, sessions []model.Session) error
}

// persister coalesces bursts of mutations into one whole-collection write.
// Only the most recent snapshot is ever written.
type persister struct {
	saver SessionSaver
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending []model.Session
	dirty   bool
	stopped bool

	// writeMu serialises writes so an older snapshot never lands after a newer one.
	writeMu sync.Mutex
}

func newPersister(saver SessionSaver, delay time.Duration) *persister {
	return &persister{saver: saver, delay: delay}
}

// schedule queues snapshot for writing. It is a no-op after stop.
func (p *persister) schedule(snapshot []model.Session) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		slog.Warn("Dropping session write after close", "sessions", len(snapshot))
		return
	}
	p.pending = snapshot
	p.dirty = true

	if p.delay <= 0 {
		p.mu.Unlock()
		_ = p.flush(context.Background())
		return
	}

	if p.timer == nil {
		p.timer = time.AfterFunc(p.delay, func() {
			_ = p.flush(context.Background())
		})
	} else {
		p.timer.Reset(p.delay)
	}
	p.mu.Unlock()
}

func (p *persister) flush(ctx context.Context) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.mu.Lock()
	if !p.dirty {
		p.mu.Unlock()
		return nil
	}
	snapshot := p.pending
	p.dirty = false
	p.mu.Unlock()

	if err := p.saver.SaveSessions(ctx, snapshot); err != nil {
		slog.ErrorContext(ctx, "Failed to persist sessions", "error", err, "sessions", len(snapshot))
		p.mu.Lock()
		if !p.dirty {
			p.pending = snapshot
			p.dirty = true
		}
		p.mu.Unlock()
		return err
	}
	slog.DebugContext(ctx, "Persisted sessions", "sessions", len(snapshot))
	return nil
}

func (p *persister) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	if p.timer != nil {
		p.timer.Stop()
	}
}
