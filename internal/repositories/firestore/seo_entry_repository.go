package firestore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/absign/storefront/internal/domain"
	pfirestore "github.com/absign/storefront/internal/platform/firestore"
	"github.com/absign/storefront/internal/repositories"
)

const seoEntriesCollection = "seoEntries"

// SeoEntryRepository stores SEO entries keyed by slug.
type SeoEntryRepository struct {
	provider *pfirestore.Provider
	base     *pfirestore.BaseRepository[seoEntryDocument]
	now      func() time.Time
}

var _ repositories.SeoEntryRepository = (*SeoEntryRepository)(nil)

// NewSeoEntryRepository constructs the repository.
func NewSeoEntryRepository(provider *pfirestore.Provider) (*SeoEntryRepository, error) {
	if provider == nil {
		return nil, errors.New("seo entry repository: firestore provider is required")
	}
	return &SeoEntryRepository{
		provider: provider,
		base:     pfirestore.NewBaseRepository[seoEntryDocument](provider, seoEntriesCollection),
		now:      time.Now,
	}, nil
}

func (r *SeoEntryRepository) FindBySlug(ctx context.Context, slug string, includeDeleted bool) (domain.SeoEntry, error) {
	doc, err := r.base.Get(ctx, slug)
	if err != nil {
		return domain.SeoEntry{}, err
	}
	entry := doc.Data.toDomain(doc.ID)
	if entry.Deleted() && !includeDeleted {
		return domain.SeoEntry{}, pfirestore.NotFound("seo_entries.find", "seo entry "+slug)
	}
	return entry, nil
}

func (r *SeoEntryRepository) List(ctx context.Context, filter repositories.SeoEntryListFilter) ([]domain.SeoEntry, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.OrderBy(firestore.DocumentID, firestore.Asc)
	})
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	entries := make([]domain.SeoEntry, 0, len(docs))
	for _, doc := range docs {
		entry := doc.Data.toDomain(doc.ID)
		if filter.OnlyDeleted && !entry.Deleted() {
			continue
		}
		if !filter.OnlyDeleted && !filter.IncludeDeleted && entry.Deleted() {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(entry.Slug), search) &&
			!strings.Contains(strings.ToLower(entry.Title), search) {
			continue
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Slug < entries[j].Slug })
	return entries, nil
}

// Save runs in a transaction so a slug change cannot race with another writer claiming the slug.
func (r *SeoEntryRepository) Save(ctx context.Context, previousSlug string, entry domain.SeoEntry) (domain.SeoEntry, error) {
	if previousSlug == "" {
		previousSlug = entry.Slug
	}
	prevRef, err := r.base.DocumentRef(ctx, previousSlug)
	if err != nil {
		return domain.SeoEntry{}, err
	}
	ref, err := r.base.DocumentRef(ctx, entry.Slug)
	if err != nil {
		return domain.SeoEntry{}, err
	}

	now := r.now().UTC()
	var saved domain.SeoEntry
	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, found, err := readSeoEntry(tx, prevRef)
		if err != nil {
			return err
		}
		if previousSlug != entry.Slug {
			if !found {
				return pfirestore.NotFound("seo_entries.save", "seo entry "+previousSlug)
			}
			if _, taken, err := readSeoEntry(tx, ref); err != nil {
				return err
			} else if taken {
				return pfirestore.Conflict("seo_entries.save", "seo entry "+entry.Slug)
			}
		}

		doc := newSeoEntryDocument(entry)
		doc.CreatedAt = now
		if found {
			doc.CreatedAt = existing.CreatedAt
			doc.DeletedAt = existing.DeletedAt
		}
		doc.UpdatedAt = now

		if previousSlug != entry.Slug {
			if err := tx.Delete(prevRef); err != nil {
				return err
			}
			if err := tx.Create(ref, doc); err != nil {
				return err
			}
		} else if err := tx.Set(ref, doc); err != nil {
			return err
		}
		saved = doc.toDomain(entry.Slug)
		return nil
	})
	if err != nil {
		return domain.SeoEntry{}, pfirestore.WrapError("seo_entries.save", err)
	}
	return saved, nil
}

func (r *SeoEntryRepository) SoftDelete(ctx context.Context, slug string, deletedAt time.Time) error {
	return r.setDeleted(ctx, "seo_entries.delete", slug, true, deletedAt.UTC())
}

func (r *SeoEntryRepository) Restore(ctx context.Context, slug string, restoredAt time.Time) error {
	return r.setDeleted(ctx, "seo_entries.restore", slug, false, restoredAt.UTC())
}

func (r *SeoEntryRepository) setDeleted(ctx context.Context, op, slug string, deleted bool, at time.Time) error {
	ref, err := r.base.DocumentRef(ctx, slug)
	if err != nil {
		return err
	}
	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, found, err := readSeoEntry(tx, ref)
		if err != nil {
			return err
		}
		if !found || (doc.DeletedAt != nil) == deleted {
			return pfirestore.NotFound(op, "seo entry "+slug)
		}
		var deletedAt any
		if deleted {
			deletedAt = at
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "deletedAt", Value: deletedAt},
			{Path: "updatedAt", Value: at},
		})
	})
	return pfirestore.WrapError(op, err)
}

func (r *SeoEntryRepository) ForceDelete(ctx context.Context, slug string) error {
	ref, err := r.base.DocumentRef(ctx, slug)
	if err != nil {
		return err
	}
	if _, err := ref.Delete(ctx, firestore.Exists); err != nil {
		return pfirestore.WrapError("seo_entries.force_delete", err)
	}
	return nil
}

func readSeoEntry(tx *firestore.Transaction, ref *firestore.DocumentRef) (seoEntryDocument, bool, error) {
	snap, err := tx.Get(ref)
	if status.Code(err) == codes.NotFound {
		return seoEntryDocument{}, false, nil
	}
	if err != nil {
		return seoEntryDocument{}, false, err
	}
	doc, err := pfirestore.DecodeSnapshot[seoEntryDocument](snap)
	if err != nil {
		return seoEntryDocument{}, false, err
	}
	return doc.Data, true, nil
}

type seoEntryDocument struct {
	Title              string            `firestore:"title,omitempty"`
	Description        string            `firestore:"description,omitempty"`
	CanonicalURL       string            `firestore:"canonicalUrl,omitempty"`
	ExtraMeta          []metaTagDocument `firestore:"extraMeta"`
	OGTitle            string            `firestore:"ogTitle,omitempty"`
	OGDescription      string            `firestore:"ogDescription,omitempty"`
	OGImagePath        string            `firestore:"ogImagePath,omitempty"`
	TwitterTitle       string            `firestore:"twitterTitle,omitempty"`
	TwitterDescription string            `firestore:"twitterDescription,omitempty"`
	TwitterImagePath   string            `firestore:"twitterImagePath,omitempty"`
	CreatedAt          time.Time         `firestore:"createdAt"`
	UpdatedAt          time.Time         `firestore:"updatedAt"`
	DeletedAt          *time.Time        `firestore:"deletedAt"`
}

type metaTagDocument struct {
	Name      string `firestore:"name,omitempty"`
	Property  string `firestore:"property,omitempty"`
	HTTPEquiv string `firestore:"httpEquiv,omitempty"`
	Content   string `firestore:"content"`
}

func newSeoEntryDocument(entry domain.SeoEntry) seoEntryDocument {
	doc := seoEntryDocument{
		Title:              entry.Title,
		Description:        entry.Description,
		CanonicalURL:       entry.CanonicalURL,
		ExtraMeta:          make([]metaTagDocument, 0, len(entry.ExtraMeta)),
		OGTitle:            entry.OGTitle,
		OGDescription:      entry.OGDescription,
		OGImagePath:        entry.OGImagePath,
		TwitterTitle:       entry.TwitterTitle,
		TwitterDescription: entry.TwitterDescription,
		TwitterImagePath:   entry.TwitterImagePath,
	}
	for _, tag := range entry.ExtraMeta {
		doc.ExtraMeta = append(doc.ExtraMeta, metaTagDocument(tag))
	}
	return doc
}

func (d seoEntryDocument) toDomain(slug string) domain.SeoEntry {
	entry := domain.SeoEntry{
		Slug:               slug,
		Title:              d.Title,
		Description:        d.Description,
		CanonicalURL:       d.CanonicalURL,
		OGTitle:            d.OGTitle,
		OGDescription:      d.OGDescription,
		OGImagePath:        d.OGImagePath,
		TwitterTitle:       d.TwitterTitle,
		TwitterDescription: d.TwitterDescription,
		TwitterImagePath:   d.TwitterImagePath,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
	if d.DeletedAt != nil {
		at := d.DeletedAt.UTC()
		entry.DeletedAt = &at
	}
	for _, tag := range d.ExtraMeta {
		entry.ExtraMeta = append(entry.ExtraMeta, domain.MetaTag(tag))
	}
	return entry
}
