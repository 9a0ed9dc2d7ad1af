// Package store provides the key-value persistence used by the shop book.
//
// Each key holds a single JSON document, and collections are always written
// wholesale. Two implementations are provided: Dir persists one file per key
// in a data directory, Memory keeps everything in process and is meant for tests.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrInvalidKey is returned for keys that cannot be stored.
var ErrInvalidKey = errors.New("invalid store key")

// Store is a key-value store of JSON documents.
type Store interface {
	// Get decodes the document stored under key into v.
	// It reports false, and leaves v untouched, when the key does not exist.
	Get(key string, v any) (bool, error)
	// Set encodes v and stores it under key, replacing any previous document.
	Set(key string, v any) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
	// Keys returns all stored keys in alphabetical order.
	Keys() ([]string, error)
}

// Memory is an in-memory Store. Its zero value is ready to use.
type Memory struct {
	mu   sync.Mutex
	docs map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory { return &Memory{docs: make(map[string][]byte)} }

func (m *Memory) Get(key string, v any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.docs[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("corrupt document %q: %w", key, err)
	}
	return true, nil
}

func (m *Memory) Set(key string, v any) error {
	if err := checkKey(key); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cannot encode %q: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs == nil {
		m.docs = make(map[string][]byte)
	}
	m.docs[key] = data
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, key)
	return nil
}

func (m *Memory) Keys() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.docs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// Raw returns the stored document for key, used by tests to corrupt or inspect documents.
func (m *Memory) Raw(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.docs[key]
	return data, ok
}

// SetRaw stores data under key without encoding it.
func (m *Memory) SetRaw(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs == nil {
		m.docs = make(map[string][]byte)
	}
	m.docs[key] = data
}

// checkKey rejects keys that would escape the data directory or be unreadable as file names.
func checkKey(key string) error {
	if key == "" || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}
