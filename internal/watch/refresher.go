// Package watch reruns a fetch on a schedule and on demand.
package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// FetchFunc loads fresh data. Errors are logged and do not stop the schedule.
type FetchFunc func(ctx context.Context) error

// Refresher runs a FetchFunc immediately, every interval, and whenever
// Trigger is called. Runs may overlap; whichever finishes last wins.
type Refresher struct {
	cron     *cron.Cron
	fetch    FetchFunc
	logger   zerolog.Logger
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
}

// New creates a refresher. A zero interval disables the schedule so only
// the initial run and triggers fetch.
func New(interval time.Duration, fetch FetchFunc, logger zerolog.Logger) *Refresher {
	return &Refresher{
		cron:     cron.New(),
		fetch:    fetch,
		logger:   logger,
		interval: interval,
	}
}

// Start runs the first fetch in the background and starts the schedule. Runs
// end when ctx is cancelled or Stop is called.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("refresher already started")
	}
	r.started = true
	r.ctx, r.cancel = context.WithCancel(ctx)

	if r.interval > 0 {
		spec := fmt.Sprintf("@every %s", r.interval)
		if _, err := r.cron.AddFunc(spec, func() { r.run("schedule") }); err != nil {
			r.cancel()
			return fmt.Errorf("invalid refresh interval %s: %w", r.interval, err)
		}
		r.cron.Start()
	}

	r.spawn("start")
	return nil
}

// Trigger fetches now, in addition to the schedule
func (r *Refresher) Trigger() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started || r.stopped {
		return
	}
	r.spawn("trigger")
}

// Stop halts the schedule, cancels in-flight fetches and waits for them
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.started || r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.cancel()
	r.mu.Unlock()

	<-r.cron.Stop().Done()
	r.wg.Wait()
}

// spawn must be called with mu held
func (r *Refresher) spawn(reason string) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.fetchOnce(reason)
	}()
}

// run is the cron job. Cron already runs each job on its own goroutine.
func (r *Refresher) run(reason string) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	defer r.wg.Done()
	r.fetchOnce(reason)
}

func (r *Refresher) fetchOnce(reason string) {
	if r.ctx.Err() != nil {
		return
	}

	start := time.Now()
	if err := r.fetch(r.ctx); err != nil {
		if r.ctx.Err() != nil {
			return
		}
		r.logger.Warn().Err(err).Str("reason", reason).Msg("Refresh failed")
		return
	}

	r.logger.Debug().
		Str("reason", reason).
		Dur("duration", time.Since(start)).
		Msg("Refreshed")
}
