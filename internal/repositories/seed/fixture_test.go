package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/absign/storefront/internal/repositories/memory"
)

func TestApplyFixtureIntoMemoryStore(t *testing.T) {
	fx, err := LoadFile("testdata/catalog.yaml")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	store := memory.NewStore()
	ctx := context.Background()
	sum, err := Apply(ctx, store, fx)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if sum.Products != 3 || sum.Companies != 2 || sum.SeoEntries != 2 || sum.Categories != 2 || sum.Suppliers != 1 {
		t.Fatalf("unexpected summary %+v", sum)
	}

	info, err := store.Company().Info(ctx)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.SiteName != "AB Sign Supplies" || len(info.Stats) != 3 {
		t.Fatalf("unexpected company info %+v", info)
	}

	profile, err := store.Company().FindProfileBySlug(ctx, "ab-signworks")
	if err != nil {
		t.Fatalf("expected derived slug ab-signworks: %v", err)
	}
	if len(profile.Services) != 2 {
		t.Fatalf("expected services, got %+v", profile.Services)
	}

	led, err := store.Catalog().FindProduct(ctx, "prod-led-3")
	if err != nil {
		t.Fatalf("FindProduct: %v", err)
	}
	if led.CategoryID != "cat-led" || !led.IsActive {
		t.Fatalf("expected category resolved by slug and active default, got %+v", led)
	}
	retired, err := store.Catalog().FindProduct(ctx, "prod-retired")
	if err != nil {
		t.Fatalf("FindProduct: %v", err)
	}
	if retired.IsActive {
		t.Fatal("expected explicit active: false to be kept")
	}

	home, err := store.SeoEntries().FindBySlug(ctx, "homepage", false)
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if len(home.ExtraMeta) != 2 || home.OGImagePath != "seo/home-og.jpg" {
		t.Fatalf("unexpected homepage entry %+v", home)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse(strings.NewReader("products:\n  - name: x\n    colour: red\n"))
	if err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestParseEmptyDocument(t *testing.T) {
	fx, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if fx.Company != nil || len(fx.Products) != 0 {
		t.Fatalf("expected empty fixture, got %+v", fx)
	}
}

func TestApplyGeneratesMissingIDs(t *testing.T) {
	fx := Fixture{Categories: []Category{{Name: "Hardware"}}}
	store := memory.NewStore()
	if _, err := Apply(context.Background(), store, fx); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	categories, err := store.Catalog().ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != 1 || len(categories[0].ID) != 26 || categories[0].Slug != "hardware" {
		t.Fatalf("expected generated ULID and slug, got %+v", categories)
	}
}
