package storage

import (
	"context"
	"sync"
)

// MemoryKV keeps everything in process memory. It backs tests and
// short-lived sessions.
type MemoryKV struct {
	mu   sync.Mutex
	data map[string]map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: map[string]map[string][]byte{}}
}

func (m *MemoryKV) Get(ctx context.Context, tenant, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.data[NormalizeTenant(tenant)][key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemoryKV) Put(ctx context.Context, tenant, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := NormalizeTenant(tenant)
	if m.data[t] == nil {
		m.data[t] = map[string][]byte{}
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.data[t][key] = v
	return nil
}

// PutBatch stores all entries under one lock.
func (m *MemoryKV) PutBatch(ctx context.Context, tenant string, entries map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := NormalizeTenant(tenant)
	if m.data[t] == nil {
		m.data[t] = map[string][]byte{}
	}
	for key, value := range entries {
		v := make([]byte, len(value))
		copy(v, value)
		m.data[t][key] = v
	}
	return nil
}
