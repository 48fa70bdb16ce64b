package editor

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"

	"github.com/altconstitution/site/internal/category"
	"github.com/altconstitution/site/internal/document"
	"github.com/altconstitution/site/internal/viewstate"
)

// Confirm is asked before a file is deleted; returning false cancels.
type Confirm func(filename string) bool

// Always is a Confirm that approves every deletion.
func Always(string) bool { return true }

// Snapshot is a read-only copy of a session for rendering.
type Snapshot struct {
	ID       string   `json:"id"`
	Category string   `json:"category"`
	State    string   `json:"state"`
	Files    []string `json:"files"`
	Error    string   `json:"error,omitempty"`
	Message  string   `json:"message,omitempty"`
}

// Session is one admin's in-memory working copy of a category's order.
// Nothing is persisted except by Upload, Delete, and SaveOrder.
type Session struct {
	id    string
	owner string
	deps  *Service

	mu       sync.Mutex
	category string
	state    viewstate.State[[]string]
	notice   error  // transient failure attached to a Ready state
	message  string // last success message

	// Unix nanoseconds of the last use; read without mu by the expiry sweep.
	lastUsed atomic.Int64
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

func (s *Session) touch() {
	s.lastUsed.Store(s.deps.now().UnixNano())
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:       s.id,
		Category: s.category,
		State:    s.state.Phase().String(),
		Message:  s.message,
	}
	if files, ok := s.state.Data(); ok {
		snap.Files = slices.Clone(files)
		snap.Error = Message(s.notice)
	}
	if s.state.IsFailed() {
		snap.Error = Message(s.state.Err())
	}
	if snap.Files == nil {
		snap.Files = []string{}
	}
	return snap
}

// Load fetches and reconciles the order for the session's category:
// Loading then Ready or Failed.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Session) loadLocked(ctx context.Context) error {
	s.state = viewstate.Loading[[]string]()
	s.notice, s.message = nil, ""
	s.touch()

	files, err := s.deps.lister.Files(ctx, s.category)
	s.state = viewstate.From(files, err)
	if err != nil {
		s.deps.logger.Error("load files", "session", s.id, "category", s.category, "err", err)
	}
	return err
}

// SwitchCategory points the session at another category and reloads it.
func (s *Session) SwitchCategory(ctx context.Context, cat string) error {
	if err := s.deps.categories.Validate(cat); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.category = cat
	return s.loadLocked(ctx)
}

// Upload stores a new PDF as category/name, appends it to the working order,
// and immediately persists the order. A rejected upload leaves the order
// untouched and makes no persistence call.
func (s *Session) Upload(ctx context.Context, name string, content io.ReadSeeker, size int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.readyLocked()
	if err != nil {
		return err
	}

	if err := s.checkUpload(name, content, size); err != nil {
		return s.failLocked(fmt.Errorf("%w: %w", ErrUpload, err))
	}

	key := category.Key(s.category, name)
	if err := s.deps.objects.Upload(ctx, key, content, size, document.ContentType); err != nil {
		s.deps.logger.Error("upload", "session", s.id, "key", key, "err", err)
		return s.failLocked(fmt.Errorf("%w: %w", ErrUpload, err))
	}
	s.deps.logger.Info("uploaded", "session", s.id, "key", key, "bytes", size)

	if !lo.Contains(files, name) {
		files = append(files, name)
	}
	s.state = viewstate.Ready(files)
	return s.persistLocked(ctx, files, "File uploaded successfully.")
}

func (s *Session) checkUpload(name string, content io.ReadSeeker, size int64) error {
	if err := document.CheckName(name); err != nil {
		return err
	}
	if s.deps.maxUpload > 0 && size > s.deps.maxUpload {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrTooLarge, size, s.deps.maxUpload)
	}
	_, err := document.Inspect(content)
	return err
}

// Delete asks confirm, removes category/name from the object store, drops it
// from the working order, and persists the order. A failed removal leaves
// the order untouched.
func (s *Session) Delete(ctx context.Context, name string, confirm Confirm) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.readyLocked()
	if err != nil {
		return err
	}
	if confirm == nil || !confirm(name) {
		return ErrNotConfirmed
	}
	if !lo.Contains(files, name) {
		return s.failLocked(fmt.Errorf("%w: %q is not in %q", ErrDelete, name, s.category))
	}

	key := category.Key(s.category, name)
	if err := s.deps.objects.Remove(ctx, key); err != nil {
		s.deps.logger.Error("delete", "session", s.id, "key", key, "err", err)
		return s.failLocked(fmt.Errorf("%w: %w", ErrDelete, err))
	}
	s.deps.logger.Info("deleted", "session", s.id, "key", key)

	files = lo.Without(files, name)
	s.state = viewstate.Ready(files)
	return s.persistLocked(ctx, files, "File deleted.")
}

// Reorder moves the file at from to index to in the working order only.
func (s *Session) Reorder(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.readyLocked()
	if err != nil {
		return err
	}
	moved, err := Move(files, from, to)
	if err != nil {
		return s.failLocked(err)
	}
	s.state = viewstate.Ready(moved)
	s.notice, s.message = nil, ""
	return nil
}

// SaveOrder writes the working order verbatim for the active category.
func (s *Session) SaveOrder(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.readyLocked()
	if err != nil {
		return err
	}
	return s.persistLocked(ctx, files, "File order saved successfully!")
}

func (s *Session) readyLocked() ([]string, error) {
	s.touch()
	files, ok := s.state.Data()
	if !ok {
		return nil, ErrNotReady
	}
	return slices.Clone(files), nil
}

// Fail records err as the notice shown alongside the current state, for
// failures detected before an operation could run.
func (s *Session) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLocked(err)
}

// failLocked records err as the transient notice; the state stays Ready.
func (s *Session) failLocked(err error) error {
	s.notice, s.message = err, ""
	return err
}

func (s *Session) persistLocked(ctx context.Context, files []string, success string) error {
	if err := s.deps.orders.Update(ctx, s.category, files); err != nil {
		s.deps.logger.Error("save order", "session", s.id, "category", s.category, "err", err)
		return s.failLocked(fmt.Errorf("%w: %w", ErrPersist, err))
	}
	s.deps.logger.Info("order saved", "session", s.id, "category", s.category, "files", len(files))
	s.notice, s.message = nil, success
	return nil
}

// Move returns a copy of files with the element at from moved to index to.
func Move(files []string, from, to int) ([]string, error) {
	if from < 0 || from >= len(files) || to < 0 || to >= len(files) {
		return nil, fmt.Errorf("%w: from %d to %d in %d files", ErrInvalidMove, from, to, len(files))
	}
	out := slices.Clone(files)
	moved := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, moved), nil
}
