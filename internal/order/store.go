// Package order owns per-category display order records and the logic that
// merges them with the live contents of a storage folder.
package order

import (
	"context"
	"errors"
)

// ErrStore is wrapped around every backend failure so callers can tell a
// broken store apart from an absent record.
var ErrStore = errors.New("order store")

// Record is the persisted display order of one category.
type Record struct {
	Category  string   `json:"category"`
	FileOrder []string `json:"fileOrder"`
}

// Store persists order records. Implementations must be safe for concurrent use.
//
// Get reports an absent record with ok == false and a nil error; a failed
// read is always an error. Update overwrites the whole order for a category.
type Store interface {
	Get(ctx context.Context, category string) (fileOrder []string, ok bool, err error)
	All(ctx context.Context) ([]Record, error)
	Update(ctx context.Context, category string, fileOrder []string) error
}

// Lookup returns the order stored for category within records, or nil when
// the category has no record.
func Lookup(records []Record, category string) []string {
	for _, r := range records {
		if r.Category == category {
			return r.FileOrder
		}
	}
	return nil
}

func clone(files []string) []string {
	if files == nil {
		return []string{}
	}
	out := make([]string, len(files))
	copy(out, files)
	return out
}
