package enhance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/weather-fusion-service/internal/domain"
	"github.com/couchcryptid/weather-fusion-service/internal/observability"
)

const (
	DefaultDebounce = 500 * time.Millisecond
	DefaultTimeout  = 10 * time.Second
)

// ErrNotFound is returned when no report has been submitted for a location.
var ErrNotFound = errors.New("no advisory for location")

// Generator sends a prompt to the text-generation proxy and returns the raw reply.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Reporter is the error telemetry sink.
type Reporter interface {
	Report(ctx context.Context, err error, service string, extra map[string]any)
}

// Options tunes the orchestrator.
type Options struct {
	// Debounce delays the network path so rapid successive reports for a
	// location collapse into one call.
	Debounce time.Duration
	// Timeout bounds each cache operation and each proxy call.
	Timeout time.Duration
	Clock   clockwork.Clock
	// OnApply receives every enhanced report. It is called with the
	// location's session locked and must not call back into the Orchestrator.
	OnApply func(domain.FusionReport)
}

// Orchestrator owns one session per location key. Sessions share the cache,
// the generator, and a singleflight group so one fingerprint costs at most
// one network call.
type Orchestrator struct {
	cache    *Cache[Enhancement]
	gen      Generator
	reporter Reporter
	logger   *slog.Logger
	metrics  *observability.Metrics
	opts     Options
	clock    clockwork.Clock

	group singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	sessions map[string]*session
	closed   bool
}

// New creates an Orchestrator. A nil generator disables enhancement: reports
// are still tracked and served by Current, but no cache or network work runs.
func New(cache *Cache[Enhancement], gen Generator, reporter Reporter, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Orchestrator {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		cache:    cache,
		gen:      gen,
		reporter: reporter,
		logger:   logger,
		metrics:  metrics,
		opts:     opts,
		clock:    opts.Clock,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*session),
	}
	if gen != nil {
		metrics.EnhanceEnabled.Set(1)
	} else {
		metrics.EnhanceEnabled.Set(0)
	}
	return o
}

// Begin records report as the current advisory for its location and
// invalidates enhancement work for earlier reports there. Call it before the
// report is published: an enhancement of an older report that completes
// afterwards is discarded instead of landing behind the newer one. Returns
// false if the fingerprint is already in play or the orchestrator is closed.
func (o *Orchestrator) Begin(report domain.FusionReport) bool {
	key := report.Location.Key
	for {
		s, ok := o.session(key)
		if !ok {
			return false
		}
		switch s.begin(report) {
		case beginAccepted:
			return true
		case beginDuplicate:
			o.metrics.Enhancements.WithLabelValues("duplicate").Inc()
			o.logger.Debug("duplicate fingerprint, skipping enhancement", "location", key)
			return false
		}
		// Evicted by a concurrent sweep; retry on a fresh session.
	}
}

// Schedule starts the debounced enhancement of the report last passed to
// Begin for locationKey. It is a no-op if nothing is waiting.
func (o *Orchestrator) Schedule(locationKey string) {
	o.mu.Lock()
	s, ok := o.sessions[locationKey]
	closed := o.closed
	o.mu.Unlock()
	if !ok || closed {
		return
	}
	if s.schedule() && o.gen == nil {
		o.metrics.Enhancements.WithLabelValues("disabled").Inc()
	}
}

// Submit is Begin followed by Schedule, for callers that publish nothing
// in between.
func (o *Orchestrator) Submit(report domain.FusionReport) bool {
	if !o.Begin(report) {
		return false
	}
	o.Schedule(report.Location.Key)
	return true
}

// Current returns the latest advisory for a location, enhanced if an
// enhancement has been applied.
func (o *Orchestrator) Current(locationKey string) (domain.FusionReport, error) {
	o.mu.Lock()
	s, ok := o.sessions[locationKey]
	o.mu.Unlock()
	if !ok {
		return domain.FusionReport{}, fmt.Errorf("%w: %s", ErrNotFound, locationKey)
	}
	r, _ := s.snapshot()
	return r, nil
}

// State returns the session state for a location; StateIdle if unknown.
func (o *Orchestrator) State(locationKey string) State {
	o.mu.Lock()
	s, ok := o.sessions[locationKey]
	o.mu.Unlock()
	if !ok {
		return StateIdle
	}
	_, st := s.snapshot()
	return st
}

// Sweep removes cache entries older than maxAge and forgets locations whose
// advisory has settled and not changed for as long. Returns the number of
// cache entries removed.
func (o *Orchestrator) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	if evicted := o.evictIdle(maxAge); evicted > 0 {
		o.logger.Debug("idle enhancement sessions evicted", "evicted", evicted)
	}
	n, err := o.cache.Sweep(ctx, maxAge)
	o.metrics.CacheSwept.Add(float64(n))
	return n, err
}

// Close stops pending debounces, cancels in-flight calls, and waits for
// outstanding work including cache writes.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	sessions := make([]*session, 0, len(o.sessions))
	for _, s := range o.sessions {
		sessions = append(sessions, s)
	}
	o.mu.Unlock()

	for _, s := range sessions {
		s.stop()
	}
	o.cancel()
	o.wg.Wait()
}

func (o *Orchestrator) session(key string) (*session, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil, false
	}
	s, ok := o.sessions[key]
	if !ok {
		s = newSession(o, key)
		o.sessions[key] = s
		o.metrics.ActiveSessions.Set(float64(len(o.sessions)))
	}
	return s, true
}

func (o *Orchestrator) evictIdle(maxAge time.Duration) int {
	if maxAge <= 0 {
		maxAge = MaxEntryAge
	}
	now := o.clock.Now()

	o.mu.Lock()
	defer o.mu.Unlock()

	evicted := 0
	for key, s := range o.sessions {
		if s.evictIfIdle(now, maxAge) {
			delete(o.sessions, key)
			evicted++
		}
	}
	o.metrics.ActiveSessions.Set(float64(len(o.sessions)))
	return evicted
}

// enter registers a unit of async work. Returns false once closed.
func (o *Orchestrator) enter() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return false
	}
	o.wg.Add(1)
	return true
}

// lookup reads the cache. Errors are reported and treated as a miss.
func (o *Orchestrator) lookup(ctx context.Context, key string) (Enhancement, bool) {
	ctx, cancel := context.WithTimeout(ctx, o.opts.Timeout)
	defer cancel()

	e, ok, err := o.cache.Get(ctx, key)
	switch {
	case err != nil:
		o.metrics.EnhanceCache.WithLabelValues("error").Inc()
		o.logger.Warn("enhancement cache read failed", "error", err, "key", key)
		o.reporter.Report(context.WithoutCancel(ctx), err, "enhance-cache", map[string]any{"key": key})
		return Enhancement{}, false
	case ok:
		o.metrics.EnhanceCache.WithLabelValues("hit").Inc()
		return e, true
	default:
		o.metrics.EnhanceCache.WithLabelValues("miss").Inc()
		return Enhancement{}, false
	}
}

// fetch asks the generator for an enhancement. Concurrent fetches for the
// same key share one call, bound to the first caller's context.
func (o *Orchestrator) fetch(ctx context.Context, key string, report domain.FusionReport) (Enhancement, error) {
	prompt := BuildPrompt(PromptFromReport(report))

	ch := o.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(ctx, o.opts.Timeout)
		defer cancel()

		requestID := uuid.NewString()
		o.logger.Debug("requesting enhancement", "request_id", requestID, "key", key)

		text, err := o.gen.Generate(callCtx, prompt)
		if err != nil {
			return Enhancement{}, fmt.Errorf("generate %s: %w", requestID, err)
		}
		e, err := ParseEnhancement(text)
		if err != nil {
			return Enhancement{}, fmt.Errorf("parse %s: %w", requestID, err)
		}
		return e, nil
	})

	select {
	case <-ctx.Done():
		return Enhancement{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Enhancement{}, res.Err
		}
		return res.Val.(Enhancement), nil
	}
}

// storeAsync writes the cache without blocking the caller. Failures are
// logged only.
func (o *Orchestrator) storeAsync(key string, e Enhancement) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(o.ctx), o.opts.Timeout)
		defer cancel()

		if err := o.cache.Set(ctx, key, e); err != nil {
			o.logger.Warn("enhancement cache write failed", "error", err, "key", key)
		}
	}()
}

func (o *Orchestrator) discardStale(locationKey string) {
	o.metrics.Enhancements.WithLabelValues("stale").Inc()
	o.logger.Debug("discarding stale enhancement", "location", locationKey)
}
