package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/plateful/backend/internal/models"
	"github.com/plateful/backend/internal/types"
)

type memorySlot struct {
	value      interface{}
	capturedAt time.Time
}

// Memory is the process-local EntryCache. It has no cross-process coherence
// and must be replaced by the Redis variant in a horizontally scaled
// deployment.
type Memory struct {
	mu    sync.RWMutex
	slots map[string]memorySlot

	clock      func() time.Time
	historyTTL time.Duration
	entryTTL   time.Duration
}

// NewMemory creates a memory cache with the default freshness windows.
func NewMemory() *Memory {
	return &Memory{
		slots:      make(map[string]memorySlot),
		clock:      time.Now,
		historyTTL: HistoryTTL,
		entryTTL:   EntryTTL,
	}
}

// NewMemoryWithClock injects the clock and windows, for deterministic tests.
func NewMemoryWithClock(clock func() time.Time, historyTTL, entryTTL time.Duration) *Memory {
	return &Memory{
		slots:      make(map[string]memorySlot),
		clock:      clock,
		historyTTL: historyTTL,
		entryTTL:   entryTTL,
	}
}

func (m *Memory) get(key string, ttl time.Duration) (interface{}, bool) {
	m.mu.RLock()
	slot, ok := m.slots[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if m.clock().Sub(slot.capturedAt) >= ttl {
		// Prune lazily so stale slots do not pile up between writes.
		m.mu.Lock()
		if cur, ok := m.slots[key]; ok && cur.capturedAt.Equal(slot.capturedAt) {
			delete(m.slots, key)
		}
		m.mu.Unlock()
		return nil, false
	}
	return slot.value, true
}

func (m *Memory) put(key string, value interface{}) {
	m.mu.Lock()
	m.slots[key] = memorySlot{value: value, capturedAt: m.clock()}
	m.mu.Unlock()
}

func (m *Memory) GetHistory(_ context.Context, key HistoryKey) (*types.HistoryPage, bool) {
	v, ok := m.get(key.String(), m.historyTTL)
	if !ok {
		return nil, false
	}
	page, ok := v.(*types.HistoryPage)
	return page, ok
}

func (m *Memory) PutHistory(_ context.Context, key HistoryKey, page *types.HistoryPage) {
	m.put(key.String(), page)
}

func (m *Memory) GetEntry(_ context.Context, id uuid.UUID, withImage bool) (*models.FoodEntry, bool) {
	v, ok := m.get(entryKey(id, withImage), m.entryTTL)
	if !ok {
		return nil, false
	}
	entry, ok := v.(*models.FoodEntry)
	return entry, ok
}

func (m *Memory) PutEntry(_ context.Context, id uuid.UUID, withImage bool, entry *models.FoodEntry) {
	m.put(entryKey(id, withImage), entry)
}

func (m *Memory) InvalidateUser(_ context.Context, userID uuid.UUID) {
	prefix := historyPrefix(userID)
	m.mu.Lock()
	for key := range m.slots {
		if strings.HasPrefix(key, prefix) {
			delete(m.slots, key)
		}
	}
	m.mu.Unlock()
}

func (m *Memory) InvalidateEntry(_ context.Context, id uuid.UUID) {
	m.mu.Lock()
	delete(m.slots, entryKey(id, true))
	delete(m.slots, entryKey(id, false))
	m.mu.Unlock()
}
