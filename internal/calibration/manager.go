package calibration

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"holoquilt/internal/logging"
)

// Set is an immutable, ordered snapshot of detected calibrations.
// A Manager replaces its Set wholesale on every refresh.
type Set struct {
	cals []Calibration
}

// NewSet copies cals into a new snapshot.
func NewSet(cals []Calibration) *Set {
	s := &Set{cals: make([]Calibration, len(cals))}
	copy(s.cals, cals)
	return s
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.cals)
}

// All returns a copy of the calibrations.
func (s *Set) All() []Calibration {
	out := make([]Calibration, s.Len())
	if s != nil {
		copy(out, s.cals)
	}
	return out
}

func (s *Set) IsIndexValid(i int) bool {
	return i >= 0 && i < s.Len()
}

// Get returns the i-th calibration. ok is false when i is out of range, in
// which case the first calibration (or the zero value) is returned.
func (s *Set) Get(i int) (cal Calibration, ok bool) {
	if s.Len() > 0 {
		cal = s.cals[0]
	}
	if !s.IsIndexValid(i) {
		return cal, false
	}
	return s.cals[i], true
}

// FindByName returns the first calibration whose Name matches. When none
// does, it returns false together with the first calibration, so callers
// must check the boolean.
func (s *Set) FindByName(name string) (cal Calibration, found bool) {
	if s.Len() > 0 {
		cal = s.cals[0]
	}
	for i := 0; i < s.Len(); i++ {
		if s.cals[i].Name == name {
			return s.cals[i], true
		}
	}
	return cal, false
}

// Manager holds the current calibration set for a host.
// Refresh is expected from a single goroutine; readers may call from any.
type Manager struct {
	source Source
	logger *zap.SugaredLogger

	current     atomic.Pointer[Set]
	initialized atomic.Bool

	mu        sync.Mutex
	nextID    int
	listeners []listener
}

type listener struct {
	id int
	fn func(*Set)
}

// NewManager returns a manager that has not been refreshed yet.
func NewManager(source Source, logger *zap.SugaredLogger) *Manager {
	return &Manager{
		source: source,
		logger: logging.OrNop(logger),
	}
}

// Refresh queries the source and installs the result as the new set, then
// notifies subscribers. A source error installs an empty set and is
// returned after notification.
func (m *Manager) Refresh(ctx context.Context) error {
	var (
		cals []Calibration
		err  error
	)
	if m.source == nil {
		err = fmt.Errorf("calibration: no source configured")
	} else {
		cals, err = m.source.Calibrations(ctx)
	}
	if err != nil {
		m.logger.Warnw("calibration refresh failed, no displays available", "error", err)
		cals = nil
	}

	set := NewSet(cals)
	m.current.Store(set)
	m.initialized.Store(true)
	m.logger.Debugw("calibrations refreshed", "count", set.Len())

	for _, fn := range m.subscribers() {
		fn(set)
	}
	return err
}

// Subscribe registers fn to run after every refresh with the new set.
// The returned func removes it.
func (m *Manager) Subscribe(fn func(*Set)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners = append(m.listeners, listener{id: id, fn: fn})
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, l := range m.listeners {
			if l.id == id {
				m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

func (m *Manager) subscribers() []func(*Set) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fns := make([]func(*Set), len(m.listeners))
	for i, l := range m.listeners {
		fns[i] = l.fn
	}
	return fns
}

// Snapshot returns the current set. It stays valid and unchanged after
// later refreshes.
func (m *Manager) Snapshot() *Set {
	return m.current.Load()
}

func (m *Manager) Initialized() bool { return m.initialized.Load() }

func (m *Manager) Count() int { return m.Snapshot().Len() }

func (m *Manager) HasAny() bool { return m.Count() > 0 }

func (m *Manager) IsIndexValid(i int) bool {
	return m.Initialized() && m.Snapshot().IsIndexValid(i)
}

// GetByIndex returns the i-th calibration. Out-of-range indices log a
// warning and return the first calibration, or the zero value if there are
// none.
func (m *Manager) GetByIndex(i int) Calibration {
	if !m.Initialized() {
		m.logger.Warnw("calibration manager has not been refreshed yet", "index", i)
		return Calibration{}
	}
	set := m.Snapshot()
	cal, ok := set.Get(i)
	if !ok {
		m.logger.Warnw("calibration index is invalid", "index", i, "count", set.Len())
	}
	return cal
}

// TryGetByIndex is GetByIndex reporting whether the result is usable.
func (m *Manager) TryGetByIndex(i int) (Calibration, bool) {
	cal := m.GetByIndex(i)
	return cal, cal.IsValid()
}

// FindByName looks a calibration up by display name. See Set.FindByName
// for the fallback value returned when nothing matches.
func (m *Manager) FindByName(name string) (Calibration, bool) {
	if !m.Initialized() {
		m.logger.Warnw("calibration manager has not been refreshed yet", "name", name)
		return Calibration{}, false
	}
	return m.Snapshot().FindByName(name)
}
