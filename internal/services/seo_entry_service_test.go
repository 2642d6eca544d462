package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	domain "github.com/absign/storefront/internal/domain"
	"github.com/absign/storefront/internal/repositories/memory"
	"github.com/absign/storefront/internal/seoform"
)

func newSeoEntryServiceForTest(t *testing.T, now time.Time) (SeoEntryService, *memory.Store) {
	t.Helper()
	store := memory.NewStore(memory.WithClock(func() time.Time { return now }))
	svc, err := NewSeoEntryService(SeoEntryServiceDeps{
		Repository: store.SeoEntries(),
		Clock:      func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewSeoEntryService: %v", err)
	}
	return svc, store
}

func TestSeoEntryService_SaveDehydratesRows(t *testing.T) {
	now := time.Date(2025, time.March, 4, 10, 0, 0, 0, time.UTC)
	svc, store := newSeoEntryServiceForTest(t, now)
	ctx := context.Background()

	form, err := svc.Save(ctx, SaveSeoEntryCommand{Form: SeoEntryForm{
		Slug:         " about ",
		Title:        "  About us ",
		CanonicalURL: "/about",
		ExtraMeta: []seoform.Row{
			{Attribute: seoform.AttributeProperty, AttributeValue: " og:type ", Content: " website "},
			{Attribute: seoform.AttributeName, AttributeValue: "robots", Content: "  "},
		},
	}})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if form.Slug != "about" || form.Title != "About us" {
		t.Fatalf("expected trimmed form, got %+v", form)
	}

	stored, err := store.SeoEntries().FindBySlug(ctx, "about", false)
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	want := []domain.MetaTag{{Property: "og:type", Content: "website"}}
	if diff := cmp.Diff(want, stored.ExtraMeta); diff != "" {
		t.Fatalf("stored meta mismatch (-want +got):\n%s", diff)
	}

	edit, err := svc.Get(ctx, "about")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	wantRows := []seoform.Row{{Attribute: seoform.AttributeProperty, AttributeValue: "og:type", Content: "website"}}
	if diff := cmp.Diff(wantRows, edit.ExtraMeta); diff != "" {
		t.Fatalf("hydrated rows mismatch (-want +got):\n%s", diff)
	}
}

func TestSeoEntryService_SaveValidates(t *testing.T) {
	svc, _ := newSeoEntryServiceForTest(t, time.Now())

	_, err := svc.Save(context.Background(), SaveSeoEntryCommand{Form: SeoEntryForm{
		Slug:         "Has Spaces",
		Title:        strings.Repeat("t", 256),
		CanonicalURL: "ftp://example.com/x",
		ExtraMeta:    []seoform.Row{{Attribute: "", AttributeValue: "x", Content: "y"}},
	}})
	if !errors.Is(err, ErrSeoEntryInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	wantOrder := []string{"slug", "title", "canonical_url", "extra_meta.0.attribute"}
	if diff := cmp.Diff(wantOrder, verr.Order()); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	if got := verr.Fields()["extra_meta.0.attribute"][0]; got != "The attribute is required." {
		t.Fatalf("unexpected row message %q", got)
	}

	_, err = svc.Save(context.Background(), SaveSeoEntryCommand{Form: SeoEntryForm{Slug: ""}})
	if !errors.As(err, &verr) || verr.Fields()["slug"][0] != "The slug field is required." {
		t.Fatalf("expected slug required, got %v", err)
	}
}

func TestSeoEntryService_SlugRules(t *testing.T) {
	svc, _ := newSeoEntryServiceForTest(t, time.Now())
	ctx := context.Background()

	for _, slug := range []string{"product-01m4ywgesq7t0q49krnrk7yenp", "company-ab-signworks", "legal_v2.1"} {
		if _, err := svc.Save(ctx, SaveSeoEntryCommand{Form: SeoEntryForm{Slug: slug}}); err != nil {
			t.Fatalf("Save %s: %v", slug, err)
		}
	}

	for _, slug := range []string{"products/01M4YWGESQ7T0Q49KRNRK7YENP", "products/p1", "-lead", "Upper"} {
		_, err := svc.Save(ctx, SaveSeoEntryCommand{Form: SeoEntryForm{Slug: slug}})
		var verr *ValidationError
		if !errors.As(err, &verr) || len(verr.Fields()["slug"]) == 0 {
			t.Fatalf("expected slug %q rejected, got %v", slug, err)
		}
	}
}

func TestSeoEntryService_AcceptsAbsoluteCanonical(t *testing.T) {
	svc, _ := newSeoEntryServiceForTest(t, time.Now())
	if _, err := svc.Save(context.Background(), SaveSeoEntryCommand{Form: SeoEntryForm{
		Slug:         "products",
		CanonicalURL: "https://absign.example/products",
	}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func TestSeoEntryService_TrashAndRestore(t *testing.T) {
	now := time.Date(2025, time.March, 4, 10, 0, 0, 0, time.UTC)
	svc, _ := newSeoEntryServiceForTest(t, now)
	ctx := context.Background()

	if _, err := svc.Save(ctx, SaveSeoEntryCommand{Form: SeoEntryForm{Slug: "contact"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := svc.Delete(ctx, "contact"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.GetBySlug(ctx, "contact"); !errors.Is(err, ErrSeoEntryNotFound) {
		t.Fatalf("expected trashed entry hidden, got %v", err)
	}
	edit, err := svc.Get(ctx, "contact")
	if err != nil || edit.DeletedAt == nil || !edit.DeletedAt.Equal(now) {
		t.Fatalf("expected trashed entry in editor, got %+v err=%v", edit, err)
	}

	trashed, err := svc.List(ctx, SeoEntryFilter{Trashed: "only"})
	if err != nil || len(trashed) != 1 {
		t.Fatalf("expected one trashed entry, got %v err=%v", trashed, err)
	}
	live, _ := svc.List(ctx, SeoEntryFilter{})
	if len(live) != 0 {
		t.Fatalf("expected no live entries, got %v", live)
	}

	if err := svc.Restore(ctx, "contact"); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if _, err := svc.GetBySlug(ctx, "contact"); err != nil {
		t.Fatalf("expected restored entry: %v", err)
	}
	if err := svc.Restore(ctx, "contact"); !errors.Is(err, ErrSeoEntryNotFound) {
		t.Fatalf("expected restoring a live entry to miss, got %v", err)
	}
	if err := svc.ForceDelete(ctx, "contact"); err != nil {
		t.Fatalf("ForceDelete: %v", err)
	}
}

func TestSeoEntryService_RenameConflict(t *testing.T) {
	svc, _ := newSeoEntryServiceForTest(t, time.Now())
	ctx := context.Background()
	for _, slug := range []string{"about", "team"} {
		if _, err := svc.Save(ctx, SaveSeoEntryCommand{Form: SeoEntryForm{Slug: slug}}); err != nil {
			t.Fatalf("Save %s: %v", slug, err)
		}
	}
	_, err := svc.Save(ctx, SaveSeoEntryCommand{OriginalSlug: "about", Form: SeoEntryForm{Slug: "team"}})
	if !errors.Is(err, ErrSeoEntryConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestNewSeoEntryServiceRequiresRepository(t *testing.T) {
	if _, err := NewSeoEntryService(SeoEntryServiceDeps{}); !errors.Is(err, ErrSeoEntryRepositoryMissing) {
		t.Fatalf("expected missing repository error, got %v", err)
	}
}
