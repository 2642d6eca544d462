package firestore

import (
	"testing"
	"time"

	domain "github.com/absign/storefront/internal/domain"
)

func TestConstructorsRequireProvider(t *testing.T) {
	if _, err := NewSeoEntryRepository(nil); err == nil {
		t.Fatal("expected error for nil provider")
	}
	if _, err := NewCompanyRepository(nil); err == nil {
		t.Fatal("expected error for nil provider")
	}
	if _, err := NewCatalogRepository(nil); err == nil {
		t.Fatal("expected error for nil provider")
	}
	if _, err := NewContactRepository(nil); err == nil {
		t.Fatal("expected error for nil provider")
	}
}

func TestSeoEntryDocumentKeepsExtraMetaAndTrash(t *testing.T) {
	deleted := time.Date(2025, time.February, 3, 4, 5, 6, 0, time.FixedZone("JST", 9*3600))
	doc := newSeoEntryDocument(domain.SeoEntry{
		Slug:      "about",
		Title:     "About",
		ExtraMeta: []domain.MetaTag{{Property: "og:type", Content: "website"}},
	})
	doc.DeletedAt = &deleted

	entry := doc.toDomain("about")
	if entry.Slug != "about" || entry.Title != "About" {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if len(entry.ExtraMeta) != 1 || entry.ExtraMeta[0].Property != "og:type" {
		t.Fatalf("expected extra meta preserved, got %+v", entry.ExtraMeta)
	}
	if entry.DeletedAt == nil || entry.DeletedAt.Location() != time.UTC || !entry.DeletedAt.Equal(deleted) {
		t.Fatalf("expected deletedAt normalised to UTC, got %v", entry.DeletedAt)
	}

	empty := newSeoEntryDocument(domain.SeoEntry{Slug: "x"})
	if empty.ExtraMeta == nil {
		t.Fatal("expected extraMeta to be stored as an empty array")
	}
}
