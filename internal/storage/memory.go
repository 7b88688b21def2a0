package storage

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory builds an in-process blob store for development and tests.
func NewMemory() BlobStore {
	return &memoryStore{blobs: make(map[string][]byte)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), value...)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func (s *memoryStore) Update(_ context.Context, key string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, found := s.blobs[key]
	next, write, err := fn(append([]byte(nil), cur...), found)
	if err != nil || !write {
		return err
	}
	s.blobs[key] = append([]byte(nil), next...)
	return nil
}
