// Package ordertest provides an in-memory order.Store for tests.
package ordertest

import (
	"context"
	"sort"
	"sync"

	"github.com/altconstitution/site/internal/order"
)

// Memory is an order.Store backed by a map. Set the *Err fields to make the
// matching operation fail.
type Memory struct {
	mu      sync.Mutex
	records map[string][]string

	GetErr    error
	AllErr    error
	UpdateErr error

	Updates int
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{records: map[string][]string{}}
}

// Set seeds a record without counting it as an update.
func (m *Memory) Set(category string, files ...string) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[category] = append([]string{}, files...)
	return m
}

// Get fetches the order for one category.
func (m *Memory) Get(_ context.Context, category string) ([]string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, false, m.GetErr
	}
	files, ok := m.records[category]
	if !ok {
		return nil, false, nil
	}
	return append([]string{}, files...), true, nil
}

// All returns every record sorted by category.
func (m *Memory) All(_ context.Context) ([]order.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AllErr != nil {
		return nil, m.AllErr
	}
	out := make([]order.Record, 0, len(m.records))
	for c, files := range m.records {
		out = append(out, order.Record{Category: c, FileOrder: append([]string{}, files...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

// Update overwrites the order for a category.
func (m *Memory) Update(_ context.Context, category string, files []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updates++
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.records[category] = append([]string{}, files...)
	return nil
}

// Stored returns the current record for category, or nil.
func (m *Memory) Stored(category string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	files, ok := m.records[category]
	if !ok {
		return nil
	}
	return append([]string{}, files...)
}
