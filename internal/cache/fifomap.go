package cache

// fifoMap is a bounded, insertion-ordered map. When full, inserting a new
// key evicts the oldest-inserted entry. Reads never reorder the queue. It
// exists as its own type so the eviction contract is testable in isolation
// from persistence.
type fifoMap struct {
	capacity int
	order    []string
	entries  map[string]Entry
}

func newFIFOMap(capacity int) *fifoMap {
	if capacity <= 0 {
		capacity = 1
	}
	return &fifoMap{
		capacity: capacity,
		entries:  make(map[string]Entry, capacity),
	}
}

func (m *fifoMap) get(key string) (Entry, bool) {
	e, ok := m.entries[key]
	return e, ok
}

// put inserts or replaces an entry and returns the evicted key, if any.
// Replacing an existing key keeps its original insertion position.
func (m *fifoMap) put(key string, e Entry) (evicted string, wasEvicted bool) {
	if _, exists := m.entries[key]; exists {
		m.entries[key] = e
		return "", false
	}

	if len(m.order) >= m.capacity {
		evicted = m.order[0]
		m.order = m.order[1:]
		delete(m.entries, evicted)
		wasEvicted = true
	}

	m.order = append(m.order, key)
	m.entries[key] = e
	return evicted, wasEvicted
}

func (m *fifoMap) len() int { return len(m.order) }

func (m *fifoMap) clear() {
	m.order = nil
	m.entries = make(map[string]Entry, m.capacity)
}
