// Package sync drains the durable offline action queue. Actions replay in
// enqueue order; a connectivity failure halts the pass so later actions never
// overtake earlier ones, while terminal failures and retry exhaustion discard
// the action and keep the queue moving.
package sync

import (
	"context"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/readingkg/readingkg-server/internal/domain"
	"github.com/readingkg/readingkg-server/internal/errors"
	"github.com/readingkg/readingkg-server/internal/store"
)

// Backoff policies.
const (
	BackoffFixed       = "fixed"
	BackoffExponential = "exponential"
)

// BackoffPolicy decides how long a retried action waits before its next
// attempt.
type BackoffPolicy struct {
	Kind string        // "fixed" or "exponential"
	Base time.Duration // delay after the first failure
}

// Delay returns the wait before attempt retryCount+1.
func (p BackoffPolicy) Delay(retryCount int) time.Duration {
	base := p.Base
	if base <= 0 {
		base = 5 * time.Second
	}
	if p.Kind != BackoffExponential {
		return base
	}
	d := base
	for i := 1; i < retryCount; i++ {
		d *= 2
		if d > 5*time.Minute {
			return 5 * time.Minute
		}
	}
	return d
}

// Config tunes the engine.
type Config struct {
	OwnerID    string
	MaxRetries int           // attempts before an action is dropped; default 5
	Interval   time.Duration // periodic drain tick; default 30s
	Backoff    BackoffPolicy
}

func (c Config) withDefaults() Config {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
	if c.Interval <= 0 {
		c.Interval = 30 * time.Second
	}
	return c
}

// Stats summarizes one drain pass.
type Stats struct {
	Applied   int `json:"applied"`   // replayed successfully
	Conflicts int `json:"conflicts"` // already applied; removed as success
	Retried   int `json:"retried"`   // connectivity failure, kept for later
	Discarded int `json:"discarded"` // terminal failure or retry exhaustion
	Remaining int `json:"remaining"` // still queued after the pass
}

// Engine owns the queue drain loop.
type Engine struct {
	queue   store.QueueStore
	applier Applier
	pinger  store.Pinger
	logger  *slog.Logger
	cfg     Config

	mu        gosync.Mutex
	notBefore map[string]time.Time // actionID -> earliest next attempt

	trigger chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
}

// New creates a sync engine. pinger may be nil; the engine then skips the
// connectivity probe and lets the first action's failure classify instead.
func New(queue store.QueueStore, applier Applier, pinger store.Pinger, logger *slog.Logger, cfg Config) *Engine {
	return &Engine{
		queue:     queue,
		applier:   applier,
		pinger:    pinger,
		logger:    logger,
		cfg:       cfg.withDefaults(),
		notBefore: make(map[string]time.Time),
		trigger:   make(chan struct{}, 1),
	}
}

// Start launches the background drain loop. Calling Start twice is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	e.stopCh = make(chan struct{})
	e.doneCh = make(chan struct{})
	go e.loop()

	e.logger.Info("sync engine started",
		"interval", e.cfg.Interval,
		"max_retries", e.cfg.MaxRetries,
	)
}

// Stop halts the loop and waits for the in-flight pass to finish.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return
	}
	e.started = false
	close(e.stopCh)
	done := e.doneCh
	e.mu.Unlock()

	<-done
	e.logger.Info("sync engine stopped")
}

// Notify nudges the loop to drain now, e.g. when connectivity returns.
// Never blocks.
func (e *Engine) Notify() {
	select {
	case e.trigger <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued actions, the offline indicator count.
func (e *Engine) Pending(ctx context.Context) (int, error) {
	return e.queue.CountActions(ctx, e.cfg.OwnerID)
}

func (e *Engine) loop() {
	defer close(e.doneCh)

	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.C:
		case <-e.trigger:
		}

		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.Interval)
		if _, err := e.RunOnce(ctx); err != nil {
			e.logger.Error("drain pass failed", "error", err)
		}
		cancel()
	}
}

// RunOnce drains the queue head-first until it empties, hits a connectivity
// failure, or hits an action still inside its backoff window. Returns the
// pass statistics; the error is reserved for queue access failures.
func (e *Engine) RunOnce(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	if e.pinger != nil {
		if err := e.pinger.Ping(ctx); err != nil {
			e.logger.Debug("skipping drain, store unreachable", "error", err)
			stats.Remaining, _ = e.queue.CountActions(ctx, e.cfg.OwnerID)
			return stats, nil
		}
	}

	actions, err := e.queue.ListActions(ctx, e.cfg.OwnerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	halted := false
	for _, action := range actions {
		if halted {
			stats.Remaining++
			continue
		}
		if wait, ok := e.waitUntil(action.ID); ok && now.Before(wait) {
			// Head still backing off; FIFO forbids skipping past it.
			halted = true
			stats.Remaining++
			continue
		}

		switch err := e.applier.Apply(ctx, action); {
		case err == nil:
			e.finish(ctx, action, stats, false)

		case errors.CodeOf(err) == errors.CodeConflict:
			// The effect already exists; success, not failure.
			e.logger.Debug("action already applied",
				"action_id", action.ID,
				"kind", action.Kind,
			)
			e.finish(ctx, action, stats, true)

		case errors.Retryable(err):
			retry := action.RetryCount + 1
			if retry >= e.cfg.MaxRetries {
				e.logger.Warn("action dropped after retry exhaustion",
					"action_id", action.ID,
					"kind", action.Kind,
					"retries", retry,
					"error", err,
				)
				e.remove(ctx, action.ID)
				stats.Discarded++
				// Connectivity is still gone; later actions wait.
				halted = true
				continue
			}
			if uerr := e.queue.UpdateActionRetry(ctx, action.ID, retry, err.Error()); uerr != nil {
				e.logger.Error("record retry failed", "action_id", action.ID, "error", uerr)
			}
			e.setWaitUntil(action.ID, time.Now().Add(e.cfg.Backoff.Delay(retry)))
			stats.Retried++
			stats.Remaining++
			// Connectivity is gone; later actions would fail the same way.
			halted = true

		default:
			e.logger.Warn("action dropped, terminal failure",
				"action_id", action.ID,
				"kind", action.Kind,
				"error", err,
			)
			e.remove(ctx, action.ID)
			stats.Discarded++
		}
	}

	return stats, nil
}

func (e *Engine) finish(ctx context.Context, action *domain.OfflineAction, stats *Stats, conflict bool) {
	e.remove(ctx, action.ID)
	if conflict {
		stats.Conflicts++
	} else {
		stats.Applied++
	}
}

func (e *Engine) remove(ctx context.Context, actionID string) {
	if err := e.queue.RemoveAction(ctx, actionID); err != nil {
		e.logger.Error("remove action failed", "action_id", actionID, "error", err)
	}
	e.mu.Lock()
	delete(e.notBefore, actionID)
	e.mu.Unlock()
}

func (e *Engine) waitUntil(actionID string) (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.notBefore[actionID]
	return t, ok
}

func (e *Engine) setWaitUntil(actionID string, t time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notBefore[actionID] = t
}
