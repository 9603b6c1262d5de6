package throttle

import (
	"context"
	"sync"
	"time"
)

type windowEntry struct {
	count     int
	expiresAt time.Time
}

// MemoryThrottle is the single-process fallback used when Redis is absent.
type MemoryThrottle struct {
	mu      sync.Mutex
	windows map[string]*windowEntry
	now     func() time.Time
}

func NewMemoryThrottle() *MemoryThrottle {
	return &MemoryThrottle{
		windows: make(map[string]*windowEntry),
		now:     time.Now,
	}
}

func (m *MemoryThrottle) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.windows[key]
	if !ok || !now.Before(entry.expiresAt) {
		entry = &windowEntry{expiresAt: now.Add(window)}
		m.windows[key] = entry
	}
	entry.count++

	return entry.count <= limit, nil
}

// Sweep drops expired windows so idle keys do not accumulate.
func (m *MemoryThrottle) Sweep() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, entry := range m.windows {
		if !now.Before(entry.expiresAt) {
			delete(m.windows, key)
			removed++
		}
	}
	return removed
}
