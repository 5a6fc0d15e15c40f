package archive

import (
	"context"
	"fmt"
	"sync"

	"diderot/internal/core"
	"diderot/internal/logger"
	"diderot/internal/metrics"
)

// State is where a date stands in the regeneration cycle.
type State string

const (
	// StateCached means a stored report is served as is.
	StateCached State = "CACHED"
	// StateMissing means no report is stored and one must be generated.
	StateMissing State = "MISSING"
	// StateForced means a regeneration was requested regardless of storage.
	StateForced State = "FORCED"
)

// Generator produces a fresh report for a date.
type Generator interface {
	Generate(ctx context.Context, date string, force bool) (*core.DailyReport, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, date string, force bool) (*core.DailyReport, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, date string, force bool) (*core.DailyReport, error) {
	return f(ctx, date, force)
}

// Manager serves reports from the archive and generates missing or forced ones.
// Generation for the same date is serialized within the process.
type Manager struct {
	archive *Archive
	gen     Generator
	metrics *metrics.Metrics

	mu    sync.Mutex
	dates map[string]*sync.Mutex
}

// NewManager creates a Manager. m may be nil.
func NewManager(a *Archive, gen Generator, m *metrics.Metrics) *Manager {
	return &Manager{
		archive: a,
		gen:     gen,
		metrics: m,
		dates:   make(map[string]*sync.Mutex),
	}
}

// Archive returns the underlying archive.
func (m *Manager) Archive() *Archive {
	return m.archive
}

// List returns the archived dates, newest first.
func (m *Manager) List() ([]string, error) {
	return m.archive.List()
}

// Lookup reports the state of date without generating anything.
func (m *Manager) Lookup(date string, force bool) (State, *core.DailyReport, error) {
	if err := ValidateDate(date); err != nil {
		return "", nil, err
	}
	if force {
		return StateForced, nil, nil
	}
	report, err := m.archive.Load(date)
	if err != nil {
		return "", nil, err
	}
	if report == nil {
		return StateMissing, nil, nil
	}
	return StateCached, report, nil
}

// Get returns the report for date. A stored report is returned without calling the
// generator unless force is set. Generated reports are saved before returning; a
// failed generation leaves storage untouched. The returned state is the one the
// date was in when the call started.
func (m *Manager) Get(ctx context.Context, date string, force bool) (*core.DailyReport, State, error) {
	if err := ValidateDate(date); err != nil {
		return nil, "", err
	}

	lock := m.lock(date)
	lock.Lock()
	defer lock.Unlock()

	state, report, err := m.Lookup(date, force)
	if err != nil {
		return nil, "", err
	}
	m.metrics.ReportLookup(string(state))
	if state == StateCached {
		logger.Debug("Serving cached report", "date", date)
		return report, state, nil
	}

	logger.Info("Generating report", "date", date, "state", string(state))
	report, err = m.gen.Generate(ctx, date, force)
	if err != nil {
		return nil, state, fmt.Errorf("failed to generate report for %s: %w", date, err)
	}

	if err := m.archive.Save(date, report); err != nil {
		return nil, state, err
	}
	logger.Info("Report saved", "date", date, "path", m.archive.Path(date))
	return report, state, nil
}

func (m *Manager) lock(date string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.dates[date]
	if !ok {
		l = &sync.Mutex{}
		m.dates[date] = l
	}
	return l
}
