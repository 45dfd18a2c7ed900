package ledger

import (
	"context"
	"sync"
	"time"
)

// Memory keeps the ledger in process. Entries are lost on restart, so it is
// only suitable for tests and dry runs.
type Memory struct {
	mu      sync.RWMutex
	entries []Entry
	last    map[string]time.Time
}

func NewMemory() *Memory {
	return &Memory{last: make(map[string]time.Time)}
}

func (m *Memory) Append(_ context.Context, e Entry) (Entry, error) {
	if err := validate(e); err != nil {
		return Entry{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if n := len(m.entries); n > 0 && e.SentAt.Before(m.entries[n-1].SentAt) {
		e.SentAt = m.entries[n-1].SentAt
	}
	m.entries = append(m.entries, e)

	k := key(e.Recipient, e.Template)
	if e.SentAt.After(m.last[k]) {
		m.last[k] = e.SentAt
	}
	return e, nil
}

func (m *Memory) WasSent(ctx context.Context, recipient, template string) (bool, error) {
	_, ok, err := m.LastSent(ctx, recipient, template)
	return ok, err
}

func (m *Memory) WasSentSince(ctx context.Context, recipient, template string, since time.Time) (bool, error) {
	last, ok, err := m.LastSent(ctx, recipient, template)
	return ok && !last.Before(since), err
}

func (m *Memory) LastSent(_ context.Context, recipient, template string) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.last[key(recipient, template)]
	return t, ok, nil
}

func (m *Memory) List(_ context.Context, limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.entries)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Entry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
