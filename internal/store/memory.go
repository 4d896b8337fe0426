package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"grindlog/internal/models"
)

// MemoryStore is an in-memory Store used in tests and anywhere a throwaway
// store is useful. Sessions are deep-copied on the way in and out so callers
// cannot mutate stored state by accident.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	plans    map[string]models.Plan
	offDays  map[string]bool
	snapshot []byte // raw JSON, mirrors the durable representation
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*models.Session),
		plans:    make(map[string]models.Plan),
		offDays:  make(map[string]bool),
	}
}

func copySession(s *models.Session) *models.Session {
	dup := *s
	dup.Periods = append([]models.Period(nil), s.Periods...)
	return &dup
}

func (m *MemoryStore) CreateSession(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.ID == "" {
		s.ID = NewULID()
	}
	if _, ok := m.sessions[s.ID]; ok {
		return fmt.Errorf("session %s already exists", s.ID)
	}
	m.sessions[s.ID] = copySession(s)
	return nil
}

func (m *MemoryStore) GetSession(_ context.Context, id string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return copySession(s), nil
}

func (m *MemoryStore) ListSessions(_ context.Context) ([]*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedLocked(), nil
}

func (m *MemoryStore) ListSessionsBetween(_ context.Context, from, to time.Time) ([]*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Session
	for _, s := range m.sortedLocked() {
		if !s.OverallStartTime.Before(from) && s.OverallStartTime.Before(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MemoryStore) sortedLocked() []*models.Session {
	out := make([]*models.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, copySession(s))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OverallStartTime.Equal(out[j].OverallStartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].OverallStartTime.Before(out[j].OverallStartTime)
	})
	return out
}

func (m *MemoryStore) UpdateSession(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.ID]; !ok {
		return fmt.Errorf("session %s: %w", s.ID, ErrNotFound)
	}
	m.sessions[s.ID] = copySession(s)
	return nil
}

func (m *MemoryStore) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) ImportSessions(_ context.Context, candidates []*models.Session) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	added := 0
	for _, s := range candidates {
		if s.ID == "" {
			s.ID = NewULID()
		}
		if _, ok := m.sessions[s.ID]; ok {
			continue // existing record wins
		}
		m.sessions[s.ID] = copySession(s)
		added++
	}
	return added, nil
}

func (m *MemoryStore) SetPlan(_ context.Context, date string, p models.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.IsZero() {
		delete(m.plans, date)
		return nil
	}
	m.plans[date] = p
	return nil
}

func (m *MemoryStore) GetPlan(_ context.Context, date string) (models.Plan, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.plans[date]
	return p, ok, nil
}

func (m *MemoryStore) ListPlans(_ context.Context) (map[string]models.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	plans := make(map[string]models.Plan, len(m.plans))
	for k, v := range m.plans {
		plans[k] = v
	}
	return plans, nil
}

func (m *MemoryStore) SetOffDay(_ context.Context, date string, off bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if off {
		m.offDays[date] = true
	} else {
		delete(m.offDays, date)
	}
	return nil
}

func (m *MemoryStore) IsOffDay(_ context.Context, date string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offDays[date], nil
}

func (m *MemoryStore) ListOffDays(_ context.Context) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	offDays := make(map[string]bool, len(m.offDays))
	for k, v := range m.offDays {
		offDays[k] = v
	}
	return offDays, nil
}

func (m *MemoryStore) PutActiveSession(_ context.Context, a *models.ActiveSession) error {
	snapshot, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = snapshot
	return nil
}

func (m *MemoryStore) GetActiveSession(_ context.Context) (*models.ActiveSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snapshot == nil {
		return nil, ErrNotFound
	}
	a := &models.ActiveSession{}
	if err := json.Unmarshal(m.snapshot, a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if a.OverallStartTime.IsZero() {
		return nil, fmt.Errorf("%w: missing start time", ErrCorruptSnapshot)
	}
	return a, nil
}

func (m *MemoryStore) ClearActiveSession(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = nil
	return nil
}

// CorruptActiveSession overwrites the snapshot with garbage. Test helper for
// exercising recovery from unparseable snapshots.
func (m *MemoryStore) CorruptActiveSession(raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = []byte(raw)
}

func (m *MemoryStore) ReplacePlanning(_ context.Context, plans map[string]models.Plan, offDays map[string]bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.plans = make(map[string]models.Plan)
	m.offDays = make(map[string]bool)
	for date, p := range plans {
		if !p.IsZero() {
			m.plans[date] = p
		}
	}
	for date, off := range offDays {
		if off {
			m.offDays[date] = true
		}
	}
	return nil
}

func (m *MemoryStore) ResetAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions = make(map[string]*models.Session)
	m.plans = make(map[string]models.Plan)
	m.offDays = make(map[string]bool)
	m.snapshot = nil
	return nil
}

func (m *MemoryStore) Migrate(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
