// Package library serves the public side of the site: reconciled category
// listings and public document URLs.
package library

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/altconstitution/site/internal/category"
	"github.com/altconstitution/site/internal/order"
	"github.com/altconstitution/site/internal/storage"
)

// ErrFetch is returned when a listing or an order record could not be read.
var ErrFetch = errors.New("error fetching files")

// ErrInvalidFile is returned when a file name cannot address an object.
var ErrInvalidFile = errors.New("invalid file name")

// Embedding proxies for the Document Viewer.
const (
	ProxyGoogle = "google"
	ProxyNone   = "none"
)

const googleViewer = "https://docs.google.com/gview"

// ObjectStore is the part of storage.Storage the library reads from.
type ObjectStore interface {
	List(ctx context.Context, folder string) ([]storage.Object, error)
	PublicURL(key string) string
}

// Listing is the reconciled display order of one category.
type Listing struct {
	Category string   `json:"category"`
	Files    []string `json:"files"`
}

// Document is a resolved, viewable file.
type Document struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	EmbedURL string `json:"embedUrl"`
}

// Options configures a Service.
type Options struct {
	IndexFolder string
	Proxy       string
}

// Service reads listings and resolves documents.
type Service struct {
	objects    ObjectStore
	orders     order.Store
	categories *category.Set
	opts       Options
	logger     *log.Logger
}

// NewService creates a library Service.
func NewService(objects ObjectStore, orders order.Store, categories *category.Set, opts Options, logger *log.Logger) *Service {
	return &Service{
		objects:    objects,
		orders:     orders,
		categories: categories,
		opts:       opts,
		logger:     logger.WithPrefix("library"),
	}
}

// Categories returns the configured category names.
func (s *Service) Categories() []string {
	return s.categories.Names()
}

// Files fetches the order record and the live listing of one category and
// reconciles them.
func (s *Service) Files(ctx context.Context, cat string) ([]string, error) {
	if err := s.categories.Validate(cat); err != nil {
		return nil, err
	}

	stored, ok, err := s.orders.Get(ctx, cat)
	if err != nil {
		s.logger.Error("read order record", "category", cat, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if !ok {
		stored = nil
	}

	current, err := s.listNames(ctx, cat)
	if err != nil {
		return nil, err
	}
	return order.Reconcile(stored, current), nil
}

// All lists every category concurrently and joins the results. A failure in
// any category fails the whole batch.
func (s *Service) All(ctx context.Context) ([]Listing, error) {
	records, err := s.orders.All(ctx)
	if err != nil {
		s.logger.Error("read order records", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	names := s.categories.Names()
	listings := make([]Listing, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, cat := range names {
		g.Go(func() error {
			current, err := s.listNames(gctx, cat)
			if err != nil {
				return err
			}
			listings[i] = Listing{
				Category: cat,
				Files:    order.Reconcile(order.Lookup(records, cat), current),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return listings, nil
}

// Resolve builds the public and embeddable URLs for a file. Nothing is
// cached; every call resolves again.
func (s *Service) Resolve(cat, name string) (Document, error) {
	if err := s.categories.Validate(cat); err != nil {
		return Document{}, err
	}
	if err := checkName(name); err != nil {
		return Document{}, err
	}
	publicURL := s.objects.PublicURL(category.Key(cat, name))
	return Document{
		Category: cat,
		Name:     name,
		URL:      publicURL,
		EmbedURL: EmbedURL(publicURL, s.opts.Proxy),
	}, nil
}

// Index returns the landing document: the first file in the index folder,
// embedded natively. ok is false when the folder is empty or not configured.
func (s *Service) Index(ctx context.Context) (doc Document, ok bool, err error) {
	if s.opts.IndexFolder == "" {
		return Document{}, false, nil
	}
	names, err := s.listNames(ctx, s.opts.IndexFolder)
	if err != nil {
		return Document{}, false, err
	}
	if len(names) == 0 {
		return Document{}, false, nil
	}
	publicURL := s.objects.PublicURL(category.Key(s.opts.IndexFolder, names[0]))
	return Document{
		Category: s.opts.IndexFolder,
		Name:     names[0],
		URL:      publicURL,
		EmbedURL: EmbedURL(publicURL, ProxyNone),
	}, true, nil
}

func (s *Service) listNames(ctx context.Context, folder string) ([]string, error) {
	objects, err := s.objects.List(ctx, folder)
	if err != nil {
		s.logger.Error("list folder", "folder", folder, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	names := make([]string, len(objects))
	for i, o := range objects {
		names[i] = o.Name
	}
	return names, nil
}

// EmbedURL returns the URL to place in an iframe. With ProxyGoogle the PDF is
// rendered by the Google Docs viewer; otherwise it is embedded directly with
// the browser toolbar hidden.
func EmbedURL(publicURL, proxy string) string {
	if proxy == ProxyGoogle {
		return googleViewer + "?url=" + url.QueryEscape(publicURL) + "&embedded=true"
	}
	return publicURL + "#toolbar=0"
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidFile, name)
	}
	for _, r := range name {
		if r == '/' || r == '\\' {
			return fmt.Errorf("%w: %q", ErrInvalidFile, name)
		}
	}
	return nil
}
