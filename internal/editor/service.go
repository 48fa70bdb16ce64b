// Package editor implements the admin's editing sessions: upload, delete,
// drag-and-drop reorder, and explicit save of a category's display order.
package editor

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/altconstitution/site/internal/category"
	"github.com/altconstitution/site/internal/order"
)

// Lister produces the reconciled order of a category.
type Lister interface {
	Files(ctx context.Context, category string) ([]string, error)
}

// ObjectStore is the part of storage.Storage the editor writes to.
type ObjectStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, keys ...string) error
}

// Options configures a Service.
type Options struct {
	MaxUploadBytes int64
	SessionTTL     time.Duration
}

// Service opens and tracks editing sessions.
type Service struct {
	lister     Lister
	objects    ObjectStore
	orders     order.Store
	categories *category.Set
	maxUpload  int64
	ttl        time.Duration
	logger     *log.Logger
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewService creates an editor Service.
func NewService(lister Lister, objects ObjectStore, orders order.Store, categories *category.Set, opts Options, logger *log.Logger) *Service {
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Service{
		lister:     lister,
		objects:    objects,
		orders:     orders,
		categories: categories,
		maxUpload:  opts.MaxUploadBytes,
		ttl:        ttl,
		logger:     logger.WithPrefix("editor"),
		now:        time.Now,
		sessions:   map[string]*Session{},
	}
}

// Categories returns the configured category names.
func (s *Service) Categories() []string {
	return s.categories.Names()
}

// MaxUploadBytes is the upload size limit; zero means unlimited.
func (s *Service) MaxUploadBytes() int64 {
	return s.maxUpload
}

// Open starts a session for owner on cat and loads it. An empty cat opens
// the first configured category. The session is registered even when the
// load fails so the admin can retry.
func (s *Service) Open(ctx context.Context, owner, cat string) (*Session, error) {
	if cat == "" {
		cat = s.categories.First()
	}
	if err := s.categories.Validate(cat); err != nil {
		return nil, err
	}

	sess := &Session{
		id:       uuid.NewString(),
		owner:    owner,
		deps:     s,
		category: cat,
	}
	sess.touch()

	s.mu.Lock()
	s.sweepLocked()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.logger.Debug("session opened", "session", sess.id, "owner", owner, "category", cat)
	_ = sess.Load(ctx)
	return sess, nil
}

// Session returns the live session id belonging to owner.
func (s *Service) Session(id, owner string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || sess.owner != owner || s.expired(sess) {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	return sess, nil
}

// CloseOwner drops every session owned by owner.
func (s *Service) CloseOwner(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.owner == owner {
			delete(s.sessions, id)
		}
	}
}

func (s *Service) sweepLocked() {
	for id, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, id)
		}
	}
}

func (s *Service) expired(sess *Session) bool {
	last := time.Unix(0, sess.lastUsed.Load())
	return s.now().Sub(last) > s.ttl
}
