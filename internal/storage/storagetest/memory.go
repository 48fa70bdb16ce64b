// Package storagetest provides an in-memory storage.Storage for tests.
package storagetest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/altconstitution/site/internal/storage"
)

// Memory is a storage.Storage backed by a map. Set the *Err fields to make
// the matching operation fail.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte

	ListErr   error
	UploadErr error
	RemoveErr error

	Uploads int
	Removes int
}

// NewMemory returns a Memory pre-populated with empty objects at keys.
func NewMemory(keys ...string) *Memory {
	m := &Memory{objects: map[string][]byte{}}
	for _, k := range keys {
		m.objects[k] = nil
	}
	return m
}

// List returns objects directly under folder in key order.
func (m *Memory) List(_ context.Context, folder string) ([]storage.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	prefix := strings.TrimSuffix(folder, "/") + "/"
	var keys []string
	for k := range m.objects {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		name := strings.TrimPrefix(k, prefix)
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]storage.Object, 0, len(keys))
	for _, k := range keys {
		out = append(out, storage.Object{
			Name: strings.TrimPrefix(k, prefix),
			Size: int64(len(m.objects[k])),
		})
	}
	return out, nil
}

// Upload stores the content of reader under key.
func (m *Memory) Upload(_ context.Context, key string, reader io.Reader, _ int64, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Uploads++
	if m.UploadErr != nil {
		return m.UploadErr
	}
	if _, ok := m.objects[key]; ok {
		return fmt.Errorf("put object %q: %w", key, storage.ErrAlreadyExists)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return err
	}
	m.objects[key] = buf.Bytes()
	return nil
}

// Remove deletes keys. Missing keys are ignored, as in S3.
func (m *Memory) Remove(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Removes++
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	for _, k := range keys {
		delete(m.objects, k)
	}
	return nil
}

// PublicURL returns a predictable URL under https://files.test/.
func (m *Memory) PublicURL(key string) string {
	return "https://files.test/" + key
}

// Has reports whether key is stored.
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}
