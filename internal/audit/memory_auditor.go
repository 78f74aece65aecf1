package audit

import (
	"slices"
	"sync"

	"github.com/darmiel/attrgate/internal/core"
)

// DefaultCapacity is the number of entries kept by an InMemoryAuditor if none is configured.
const DefaultCapacity = 10_000

var _ core.QueryableAuditor = (*InMemoryAuditor)(nil)

// InMemoryAuditor keeps the most recent audit entries in a ring buffer.
// Once full, every new entry overwrites the oldest one. Nothing is persisted.
type InMemoryAuditor struct {
	mu   sync.Mutex
	ring []core.AuditEntry
	next int // slot the next entry is written to
	size int
}

func NewInMemoryAuditor(capacity int) *InMemoryAuditor {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &InMemoryAuditor{ring: make([]core.AuditEntry, capacity)}
}

func (a *InMemoryAuditor) Log(entry core.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.ring[a.next] = entry
	a.next = (a.next + 1) % len(a.ring)
	if a.size < len(a.ring) {
		a.size++
	}
	return nil
}

// at returns the i-th stored entry, 0 being the oldest. Callers hold mu.
func (a *InMemoryAuditor) at(i int) core.AuditEntry {
	oldest := (a.next - a.size + len(a.ring)) % len(a.ring)
	return a.ring[(oldest+i)%len(a.ring)]
}

// GetRecent returns up to limit of the newest entries, oldest first.
func (a *InMemoryAuditor) GetRecent(limit int) ([]core.AuditEntry, error) {
	return a.Find(nil, limit)
}

// Find returns up to limit of the newest entries matching filter, oldest first.
// A nil filter matches everything, a limit <= 0 returns all matches.
func (a *InMemoryAuditor) Find(filter func(entry core.AuditEntry) bool, limit int) ([]core.AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// walk newest to oldest so the limit keeps the most recent matches
	matches := make([]core.AuditEntry, 0)
	for i := a.size - 1; i >= 0; i-- {
		if limit > 0 && len(matches) == limit {
			break
		}
		if entry := a.at(i); filter == nil || filter(entry) {
			matches = append(matches, entry)
		}
	}
	slices.Reverse(matches)
	return matches, nil
}

func (a *InMemoryAuditor) Close() error {
	return nil
}
