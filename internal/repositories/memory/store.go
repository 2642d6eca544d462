// Package memory provides mutex-guarded in-process repositories used for local development,
// tests and single-instance deployments seeded from a fixture.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	domain "github.com/absign/storefront/internal/domain"
	"github.com/absign/storefront/internal/repositories"
)

// Error implements repositories.RepositoryError for the in-memory store.
type Error struct {
	op       string
	msg      string
	notFound bool
	conflict bool
}

func (e *Error) Error() string       { return fmt.Sprintf("memory.%s: %s", e.op, e.msg) }
func (e *Error) IsNotFound() bool    { return e.notFound }
func (e *Error) IsConflict() bool    { return e.conflict }
func (e *Error) IsUnavailable() bool { return false }

func notFound(op, what string) error {
	return &Error{op: op, msg: what + " not found", notFound: true}
}

func conflict(op, what string) error {
	return &Error{op: op, msg: what + " already exists", conflict: true}
}

// Option customises the store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store holds every aggregate in maps keyed by natural identifier.
type Store struct {
	mu         sync.RWMutex
	now        func() time.Time
	seo        map[string]domain.SeoEntry
	info       *domain.CompanyInfo
	companies  map[string]domain.Company
	products   map[string]domain.Product
	categories map[string]domain.Category
	suppliers  map[string]domain.Supplier
	contacts   []domain.ContactMessage
	health     repositories.HealthRepository
}

var _ repositories.Registry = (*Store)(nil)

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:        time.Now,
		seo:        make(map[string]domain.SeoEntry),
		companies:  make(map[string]domain.Company),
		products:   make(map[string]domain.Product),
		categories: make(map[string]domain.Category),
		suppliers:  make(map[string]domain.Supplier),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	health, _ := repositories.NewDependencyHealthRepository([]repositories.DependencyCheck{
		{Name: "memory", Check: func(context.Context) error { return nil }},
	})
	s.health = health
	return s
}

func (s *Store) Close(context.Context) error { return nil }

func (s *Store) SeoEntries() repositories.SeoEntryRepository { return seoEntries{s} }
func (s *Store) Company() repositories.CompanyRepository     { return company{s} }
func (s *Store) Catalog() repositories.CatalogRepository     { return catalog{s} }
func (s *Store) Contacts() repositories.ContactRepository    { return contacts{s} }
func (s *Store) Health() repositories.HealthRepository       { return s.health }

// ContactMessages returns a copy of the stored submissions in insertion order.
func (s *Store) ContactMessages() []domain.ContactMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ContactMessage(nil), s.contacts...)
}

type seoEntries struct{ s *Store }

func (r seoEntries) FindBySlug(_ context.Context, slug string, includeDeleted bool) (domain.SeoEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	entry, ok := r.s.seo[slug]
	if !ok || (entry.Deleted() && !includeDeleted) {
		return domain.SeoEntry{}, notFound("seo_entries.find", "seo entry "+slug)
	}
	return cloneEntry(entry), nil
}

func (r seoEntries) List(_ context.Context, filter repositories.SeoEntryListFilter) ([]domain.SeoEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]domain.SeoEntry, 0, len(r.s.seo))
	for _, entry := range r.s.seo {
		switch {
		case filter.OnlyDeleted && !entry.Deleted():
			continue
		case !filter.OnlyDeleted && !filter.IncludeDeleted && entry.Deleted():
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(entry.Slug), search) &&
			!strings.Contains(strings.ToLower(entry.Title), search) {
			continue
		}
		out = append(out, cloneEntry(entry))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (r seoEntries) Save(_ context.Context, previousSlug string, entry domain.SeoEntry) (domain.SeoEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now().UTC()

	if previousSlug == "" {
		previousSlug = entry.Slug
	}
	existing, exists := r.s.seo[previousSlug]
	if previousSlug != entry.Slug {
		if !exists {
			return domain.SeoEntry{}, notFound("seo_entries.save", "seo entry "+previousSlug)
		}
		if _, taken := r.s.seo[entry.Slug]; taken {
			return domain.SeoEntry{}, conflict("seo_entries.save", "seo entry "+entry.Slug)
		}
		delete(r.s.seo, previousSlug)
	}

	entry.CreatedAt = now
	if exists {
		entry.CreatedAt = existing.CreatedAt
		entry.DeletedAt = existing.DeletedAt
	}
	entry.UpdatedAt = now
	r.s.seo[entry.Slug] = cloneEntry(entry)
	return cloneEntry(entry), nil
}

func (r seoEntries) SoftDelete(_ context.Context, slug string, deletedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry, ok := r.s.seo[slug]
	if !ok || entry.Deleted() {
		return notFound("seo_entries.delete", "seo entry "+slug)
	}
	at := deletedAt.UTC()
	entry.DeletedAt = &at
	entry.UpdatedAt = at
	r.s.seo[slug] = entry
	return nil
}

func (r seoEntries) Restore(_ context.Context, slug string, restoredAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry, ok := r.s.seo[slug]
	if !ok || !entry.Deleted() {
		return notFound("seo_entries.restore", "deleted seo entry "+slug)
	}
	entry.DeletedAt = nil
	entry.UpdatedAt = restoredAt.UTC()
	r.s.seo[slug] = entry
	return nil
}

func (r seoEntries) ForceDelete(_ context.Context, slug string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.seo[slug]; !ok {
		return notFound("seo_entries.force_delete", "seo entry "+slug)
	}
	delete(r.s.seo, slug)
	return nil
}

func cloneEntry(entry domain.SeoEntry) domain.SeoEntry {
	entry.ExtraMeta = append([]domain.MetaTag(nil), entry.ExtraMeta...)
	if entry.DeletedAt != nil {
		at := *entry.DeletedAt
		entry.DeletedAt = &at
	}
	return entry
}
