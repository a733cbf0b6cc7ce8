package memory

import (
	"sort"
	"sync"
)

// Store implements store.Store with in-process maps. Used by tests and for
// ephemeral snapshot stores that never touch disk.
type Store struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{buckets: make(map[string]map[string][]byte)}
}

func (s *Store) Get(bucket, key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.buckets[string(bucket)]
	if !ok {
		return nil, nil
	}
	v, ok := b[string(key)]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *Store) Put(bucket, key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[string(bucket)]
	if !ok {
		b = make(map[string][]byte)
		s.buckets[string(bucket)] = b
	}
	v := make([]byte, len(value))
	copy(v, value)
	b[string(key)] = v
	return nil
}

// ForEach visits keys in sorted order, matching the bolt backend.
func (s *Store) ForEach(bucket []byte, fn func(key, value []byte) error) error {
	s.mu.RLock()
	b := s.buckets[string(bucket)]
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([][2][]byte, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, [2][]byte{[]byte(k), b[k]})
	}
	s.mu.RUnlock()

	for _, p := range pairs {
		if err := fn(p[0], p[1]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}
