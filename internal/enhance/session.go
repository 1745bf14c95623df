package enhance

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-fusion-service/internal/domain"
)

// State is the lifecycle position of a location's enhancement.
type State int

const (
	StateIdle State = iota
	StateLocalReady
	StateCacheCheck
	StateCacheHit
	StateFetching
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLocalReady:
		return "local_ready"
	case StateCacheCheck:
		return "cache_check"
	case StateCacheHit:
		return "cache_hit"
	case StateFetching:
		return "fetching"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// session tracks the advisory shown for one location. Every accepted report
// bumps the generation; async work captures the generation it started under
// and is dropped if the session has moved on by the time it completes.
type session struct {
	o   *Orchestrator
	key string

	mu         sync.Mutex
	state      State
	generation uint64
	fp         Fingerprint
	report     domain.FusionReport
	timer      clockwork.Timer
	cancel     context.CancelFunc
	pending    bool // begun, not yet scheduled
	updated    time.Time
	evicted    bool
}

func newSession(o *Orchestrator, key string) *session {
	return &session{o: o, key: key}
}

type beginResult int

const (
	beginAccepted beginResult = iota
	beginDuplicate
	beginEvicted
)

// begin makes report the current advisory and invalidates pending or
// in-flight work for older reports. A report whose fingerprint is already
// scheduled or enhanced is a duplicate; one that was begun but never
// scheduled may be begun again.
func (s *session) begin(report domain.FusionReport) beginResult {
	fp := FingerprintOf(report)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.evicted {
		return beginEvicted
	}
	if s.generation > 0 && fp == s.fp && !s.pending {
		return beginDuplicate
	}

	s.generation++
	s.fp = fp
	s.report = report
	s.state = StateLocalReady
	s.pending = true
	s.updated = s.o.clock.Now()
	s.abortLocked()
	return beginAccepted
}

// schedule starts the debounce for the report passed to begin. Returns false
// if nothing was waiting to be scheduled.
func (s *session) schedule() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pending {
		return false
	}
	s.pending = false

	if s.o.gen == nil {
		s.state = StateDone
		return true
	}

	gen := s.generation
	s.timer = s.o.clock.AfterFunc(s.o.opts.Debounce, func() {
		if !s.o.enter() {
			return
		}
		defer s.o.wg.Done()
		s.run(gen)
	})
	return true
}

// evictIfIdle marks the session evicted if its advisory has settled and has
// not changed for longer than maxAge.
func (s *session) evictIfIdle(now time.Time, maxAge time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateDone || s.pending || s.timer != nil || s.cancel != nil {
		return false
	}
	if now.Sub(s.updated) <= maxAge {
		return false
	}
	s.evicted = true
	return true
}

// abortLocked stops a pending debounce and cancels any in-flight call.
func (s *session) abortLocked() {
	if s.timer != nil {
		if s.timer.Stop() {
			s.o.metrics.EnhanceDebounced.Inc()
		}
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *session) run(gen uint64) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(s.o.ctx)
	s.cancel = cancel
	s.timer = nil
	s.state = StateCacheCheck
	fp := s.fp
	report := s.report
	s.mu.Unlock()
	defer cancel()

	key := fp.Key()

	if e, ok := s.o.lookup(ctx, key); ok {
		if s.transition(gen, StateCacheHit) {
			s.apply(gen, e, "cache_hit")
		}
		return
	}

	if !s.transition(gen, StateFetching) {
		return
	}

	e, err := s.o.fetch(ctx, key, report)
	if err != nil {
		s.fail(ctx, gen, key, err)
		return
	}

	s.o.storeAsync(key, e)
	s.apply(gen, e, "generated")
}

// transition moves to next if gen is still current.
func (s *session) transition(gen uint64, next State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.o.discardStale(s.key)
		return false
	}
	s.state = next
	return true
}

// apply overwrites the advisory text and tips if gen is still current. The
// apply hook runs with the session locked so a newer report cannot be
// accepted between the check and the publish.
func (s *session) apply(gen uint64, e Enhancement, outcome string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.o.discardStale(s.key)
		return
	}

	s.report = s.report.WithEnhancement(e.Text, e.Tips)
	s.state = StateDone
	s.cancel = nil
	s.updated = s.o.clock.Now()

	s.o.metrics.Enhancements.WithLabelValues(outcome).Inc()
	s.o.logger.Info("advisory enhanced", "location", s.key, "outcome", outcome)
	if s.o.opts.OnApply != nil {
		s.o.opts.OnApply(s.report)
	}
}

// fail keeps the rules advisory and reports the error, unless the session
// has moved on, in which case the failure is just a cancelled stale call.
func (s *session) fail(ctx context.Context, gen uint64, key string, err error) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.o.discardStale(s.key)
		return
	}
	s.state = StateDone
	s.cancel = nil
	s.updated = s.o.clock.Now()
	s.mu.Unlock()

	if s.o.ctx.Err() != nil {
		return
	}
	s.o.metrics.Enhancements.WithLabelValues("failed").Inc()
	s.o.logger.Warn("advisory enhancement failed, keeping rules advisory",
		"error", err, "location", s.key)
	s.o.reporter.Report(context.WithoutCancel(ctx), err, "enhance", map[string]any{
		"location":    s.key,
		"fingerprint": key,
	})
}

func (s *session) snapshot() (domain.FusionReport, State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report, s.state
}

func (s *session) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abortLocked()
}
