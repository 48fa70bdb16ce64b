// Package category holds the fixed set of document categories a deployment serves.
package category

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknown is returned when a name is not one of the configured categories.
var ErrUnknown = errors.New("unknown category")

// Defaults are the categories served when no categories file is configured.
var Defaults = []string{"Alternative Constitution", "Explanation", "Listen Up"}

// Set is an ordered, immutable list of category names.
type Set struct {
	names []string
	index map[string]int
}

// New builds a Set, rejecting empty, duplicate, or path-like names.
func New(names []string) (*Set, error) {
	if len(names) == 0 {
		return nil, errors.New("at least one category is required")
	}
	s := &Set{
		names: make([]string, 0, len(names)),
		index: make(map[string]int, len(names)),
	}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, errors.New("category name must not be empty")
		}
		if strings.Contains(n, "/") {
			return nil, fmt.Errorf("category %q must not contain '/'", n)
		}
		if _, dup := s.index[n]; dup {
			return nil, fmt.Errorf("duplicate category %q", n)
		}
		s.index[n] = len(s.names)
		s.names = append(s.names, n)
	}
	return s, nil
}

// MustNew is New for package-level literals and tests.
func MustNew(names ...string) *Set {
	s, err := New(names)
	if err != nil {
		panic(err)
	}
	return s
}

type file struct {
	Categories []string `yaml:"categories"`
}

// Load reads categories from a YAML file of the form:
//
//	categories:
//	  - Alternative Constitution
//	  - Explanation
//
// An empty path yields Defaults.
func Load(path string) (*Set, error) {
	if path == "" {
		return New(Defaults)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories file: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse categories file: %w", err)
	}
	return New(f.Categories)
}

// Names returns a copy of the category names in configured order.
func (s *Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// First returns the first configured category.
func (s *Set) First() string {
	return s.names[0]
}

// Contains reports whether name is a configured category.
func (s *Set) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Validate returns ErrUnknown when name is not configured.
func (s *Set) Validate(name string) error {
	if !s.Contains(name) {
		return fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return nil
}

// Key builds the object key for a file inside a category folder.
func Key(category, filename string) string {
	return category + "/" + filename
}
