package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
)

// MemoryStore keeps objects in a map. Used by tests and local experiments.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	// FailPut makes every Put return an error.
	FailPut bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) Put(ctx context.Context, obj Object) (string, error) {
	if s.FailPut {
		return "", errors.New("memory store: put disabled")
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, obj.Body); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[obj.Key] = buf.Bytes()
	return "memory://" + obj.Key, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Get returns the stored bytes for key.
func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[key]
	return b, ok
}

// Len reports how many objects are stored.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
