package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Document is the whole order file: category name to file order.
type Document map[string][]string

// FileStore keeps every order record in a single JSON document on disk.
// It backs the /api/order fallback endpoints and can replace the database
// store entirely.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a FileStore at path. A missing file is treated as an
// empty document and created on the first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Document returns the full order document.
func (s *FileStore) Document(_ context.Context) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Merge shallow-merges patch into the document: every category present in
// patch replaces the stored entry, all others are left alone.
func (s *FileStore) Merge(_ context.Context, patch Document) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	for category, files := range patch {
		doc[category] = clone(files)
	}
	if err := s.write(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Get fetches the order for one category.
func (s *FileStore) Get(ctx context.Context, category string) ([]string, bool, error) {
	doc, err := s.Document(ctx)
	if err != nil {
		return nil, false, err
	}
	files, ok := doc[category]
	if !ok {
		return nil, false, nil
	}
	return clone(files), true, nil
}

// All returns every record sorted by category.
func (s *FileStore) All(ctx context.Context) ([]Record, error) {
	doc, err := s.Document(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(doc))
	for category, files := range doc {
		records = append(records, Record{Category: category, FileOrder: clone(files)})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Category < records[j].Category })
	return records, nil
}

// Update overwrites the order for a category.
func (s *FileStore) Update(ctx context.Context, category string, fileOrder []string) error {
	_, err := s.Merge(ctx, Document{category: fileOrder})
	return err
}

func (s *FileStore) read() (Document, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read order file: %w", ErrStore, err)
	}
	doc := Document{}
	if len(raw) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse order file: %w", ErrStore, err)
	}
	return doc, nil
}

// write replaces the file atomically via a temp file and rename.
func (s *FileStore) write(doc Document) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode order file: %w", ErrStore, err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create order dir: %w", ErrStore, err)
	}
	tmp, err := os.CreateTemp(dir, ".order-*.json")
	if err != nil {
		return fmt.Errorf("%w: create temp order file: %w", ErrStore, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write order file: %w", ErrStore, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close order file: %w", ErrStore, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: replace order file: %w", ErrStore, err)
	}
	return nil
}
