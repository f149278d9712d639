package lease

import (
	"context"
	"sync"
	"time"

	"boxoffice/pkg/clock"
)

type memoryEntry struct {
	holderID  string
	expiresAt time.Time
}

// MemoryManager is an in-process lease store guarded by a mutex. It backs
// tests and single-instance development runs; production uses Redis.
type MemoryManager struct {
	mu      sync.Mutex
	clock   clock.Clock
	leases  map[string]memoryEntry
	indexes map[string]map[string]struct{}
}

// NewMemoryManager creates an in-memory lease manager on the given clock.
func NewMemoryManager(clk clock.Clock) *MemoryManager {
	return &MemoryManager{
		clock:   clk,
		leases:  make(map[string]memoryEntry),
		indexes: make(map[string]map[string]struct{}),
	}
}

// liveHolder returns the current holder of key, expiring lazily.
func (m *MemoryManager) liveHolder(key string) string {
	entry, ok := m.leases[key]
	if !ok {
		return ""
	}
	if !m.clock.Now().Before(entry.expiresAt) {
		delete(m.leases, key)
		return ""
	}
	return entry.holderID
}

func (m *MemoryManager) index(eventID, holderID string) map[string]struct{} {
	key := holderIndexKey(eventID, holderID)
	set, ok := m.indexes[key]
	if !ok {
		set = make(map[string]struct{})
		m.indexes[key] = set
	}
	return set
}

func (m *MemoryManager) Acquire(_ context.Context, eventID, seatKey, holderID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.liveHolder(seatKey)
	if current != "" && current != holderID {
		return &ConflictError{SeatKey: seatKey}
	}

	m.leases[seatKey] = memoryEntry{
		holderID:  holderID,
		expiresAt: m.clock.Now().Add(ttl),
	}
	m.index(eventID, holderID)[seatKey] = struct{}{}
	return nil
}

func (m *MemoryManager) Release(_ context.Context, eventID, seatKey, holderID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.liveHolder(seatKey) != holderID {
		return false, nil
	}

	delete(m.leases, seatKey)
	delete(m.index(eventID, holderID), seatKey)
	return true, nil
}

func (m *MemoryManager) ExtendAll(_ context.Context, eventID string, seatKeys []string, holderID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range seatKeys {
		if m.liveHolder(key) != holderID {
			return &ConflictError{SeatKey: key}
		}
	}

	expiresAt := m.clock.Now().Add(ttl)
	for _, key := range seatKeys {
		m.leases[key] = memoryEntry{holderID: holderID, expiresAt: expiresAt}
	}
	return nil
}

func (m *MemoryManager) Holders(_ context.Context, seatKeys []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	holders := make([]string, len(seatKeys))
	for i, key := range seatKeys {
		holders[i] = m.liveHolder(key)
	}
	return holders, nil
}

func (m *MemoryManager) HolderKeys(_ context.Context, eventID, holderID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var live []string
	for key := range m.index(eventID, holderID) {
		if m.liveHolder(key) == holderID {
			live = append(live, key)
		}
	}
	return live, nil
}
