package cart

import (
	"context"
	"sync"
)

// Slot names double as the field names the lists are stored under.
const (
	SlotActive = "cartItems"
	SlotSaved  = "savedItems"
)

// SlotStore persists serialized lists grouped under one cart key. Load returns only
// the slots that exist; Save writes every given slot in a single operation.
type SlotStore interface {
	Load(ctx context.Context, key string, slots ...string) (map[string][]byte, error)
	Save(ctx context.Context, key string, slots map[string][]byte) error
}

// MemoryStore keeps slots in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, key string, slots ...string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]byte, len(slots))
	stored := m.data[key]
	for _, slot := range slots {
		if blob, ok := stored[slot]; ok {
			out[slot] = append([]byte(nil), blob...)
		}
	}
	return out, nil
}

func (m *MemoryStore) Save(_ context.Context, key string, slots map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.data[key]
	if !ok {
		stored = make(map[string][]byte, len(slots))
		m.data[key] = stored
	}
	for slot, blob := range slots {
		stored[slot] = append([]byte(nil), blob...)
	}
	return nil
}

// Put writes a raw blob, bypassing the engine. Useful for seeding fixtures.
func (m *MemoryStore) Put(key, slot string, blob []byte) {
	_ = m.Save(context.Background(), key, map[string][]byte{slot: blob})
}
