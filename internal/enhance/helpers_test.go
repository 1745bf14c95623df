package enhance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-fusion-service/internal/domain"
	"github.com/couchcryptid/weather-fusion-service/internal/observability"
)

var (
	testStart    = time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	errStoreDown = errors.New("store unavailable")
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory Store with injectable failures.
type memStore struct {
	mu      sync.Mutex
	entries map[string]Entry
	getErr  error
	setErr  error
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]Entry)}
}

func (m *memStore) Get(_ context.Context, key string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	e, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *memStore) Set(_ context.Context, key string, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[key] = e
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memStore) ListEntries(_ context.Context) ([]KeyedEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]KeyedEntry, 0, len(m.entries))
	for k, e := range m.entries {
		out = append(out, KeyedEntry{Key: k, Entry: e})
	}
	return out, nil
}

func (m *memStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

// fakeGenerator records prompts and delegates to fn.
type fakeGenerator struct {
	calls atomic.Int32

	mu      sync.Mutex
	prompts []string
	fn      func(ctx context.Context, prompt string) (string, error)
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls.Add(1)
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	return g.fn(ctx, prompt)
}

func (g *fakeGenerator) lastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.prompts) == 0 {
		return ""
	}
	return g.prompts[len(g.prompts)-1]
}

func replyWith(text string) func(context.Context, string) (string, error) {
	return func(context.Context, string) (string, error) { return text, nil }
}

type fakeReporter struct {
	mu   sync.Mutex
	errs []error
}

func (r *fakeReporter) Report(_ context.Context, err error, _ string, _ map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *fakeReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

type harness struct {
	o        *Orchestrator
	clock    *clockwork.FakeClock
	store    *memStore
	cache    *Cache[Enhancement]
	gen      *fakeGenerator
	reporter *fakeReporter
	metrics  *observability.Metrics
	applied  chan domain.FusionReport
}

func newHarness(t *testing.T, gen *fakeGenerator) *harness {
	t.Helper()

	h := &harness{
		clock:    clockwork.NewFakeClockAt(testStart),
		store:    newMemStore(),
		gen:      gen,
		reporter: &fakeReporter{},
		metrics:  observability.NewMetricsForTesting(),
		applied:  make(chan domain.FusionReport, 8),
	}
	h.cache = NewCache[Enhancement](h.store, time.Hour, h.clock)

	var g Generator
	if gen != nil {
		g = gen
	}
	h.o = New(h.cache, g, h.reporter, discardLogger(), h.metrics, Options{
		Debounce: 500 * time.Millisecond,
		Timeout:  time.Second,
		Clock:    h.clock,
		OnApply:  func(r domain.FusionReport) { h.applied <- r },
	})
	t.Cleanup(h.o.Close)
	return h
}

// fire waits for the pending debounce timer and advances past it.
func (h *harness) fire(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.clock.BlockUntilContext(ctx, 1))
	h.clock.Advance(500 * time.Millisecond)
}

func (h *harness) waitApplied(t *testing.T) domain.FusionReport {
	t.Helper()
	select {
	case r := <-h.applied:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no enhancement applied")
		return domain.FusionReport{}
	}
}

func testReport(key, observedAt, rulesText string) domain.FusionReport {
	return domain.FusionReport{
		Location:   domain.Location{Key: key, Name: "Milano", Lat: 45.4642, Lon: 9.1900},
		Lang:       "en",
		Unit:       domain.UnitCelsius,
		ObservedAt: observedAt,
		Condition:  "Clear sky",
		Conditions: domain.Conditions{Temperature: 18, ApparentTemperature: 17},
		Advisory: domain.AdvisoryResult{
			Text:   rulesText,
			Tips:   []string{"rules tip"},
			Source: domain.SourceRules,
		},
	}
}

func promptHas(prompt, rulesText string) bool {
	return strings.Contains(prompt, "Draft advisory: "+rulesText+"\n")
}
