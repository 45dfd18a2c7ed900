package contact

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrymomot/outreach/pkg/schedule"
)

// Memory is an in-process contact store with the same semantics as
// Repository.
type Memory struct {
	mu     sync.RWMutex
	rows   map[int64]Contact
	nextID int64
}

// NewMemory returns a store seeded with contacts. Seeds without an id get one.
func NewMemory(seed ...Contact) *Memory {
	m := &Memory{rows: make(map[int64]Contact)}
	for _, c := range seed {
		if c.ID == 0 {
			m.nextID++
			c.ID = m.nextID
		}
		m.nextID = max(m.nextID, c.ID)
		if c.Status == "" {
			c.Status = StatusNotContacted
		}
		m.rows[c.ID] = c
	}
	return m
}

func (m *Memory) List(_ context.Context, f Filter) ([]Contact, error) {
	return m.filter(func(c Contact) bool {
		if f.Status != "" && c.Status != f.Status {
			return false
		}
		if f.Date != nil && (c.SendDate == nil || *c.SendDate != *f.Date) {
			return false
		}
		if f.Time != nil && (c.SendTime == nil || *c.SendTime != *f.Time) {
			return false
		}
		return true
	}), nil
}

func (m *Memory) ListScheduled(_ context.Context) ([]Contact, error) {
	return m.filter(func(c Contact) bool {
		return !c.Schedule().IsZero()
	}), nil
}

func (m *Memory) ListDue(_ context.Context, today schedule.Date) ([]Contact, error) {
	return m.filter(func(c Contact) bool {
		return c.SendDate == nil || !today.Before(*c.SendDate)
	}), nil
}

func (m *Memory) Get(_ context.Context, id int64) (Contact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.rows[id]
	if !ok {
		return Contact{}, ErrNotFound
	}
	return c, nil
}

func (m *Memory) Create(_ context.Context, c Contact) (Contact, error) {
	c = c.Normalized()
	if c.Status == "" {
		c.Status = StatusNotContacted
	}
	if !c.Status.Valid() {
		return Contact{}, ErrInvalidStatus
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	m.rows[c.ID] = c
	return c, nil
}

func (m *Memory) Update(_ context.Context, id int64, p Patch) (Contact, error) {
	if p.Empty() {
		return Contact{}, ErrEmptyPatch
	}
	if err := p.Validate(); err != nil {
		return Contact{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return Contact{}, ErrNotFound
	}
	c = p.Apply(c).Normalized()
	m.rows[id] = c
	return c, nil
}

func (m *Memory) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *Memory) filter(keep func(Contact) bool) []Contact {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Contact, 0, len(m.rows))
	for _, c := range m.rows {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
