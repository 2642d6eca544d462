package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/absign/storefront/internal/domain"
	"github.com/absign/storefront/internal/platform/pagination"
	"github.com/absign/storefront/internal/repositories/memory"
)

func seedCatalog(t *testing.T) CatalogService {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	for _, c := range []domain.Category{
		{ID: "c2", Name: "Banner Systems"},
		{ID: "c1", Name: "Alpha Displays"},
	} {
		if err := store.Catalog().SaveCategory(ctx, c); err != nil {
			t.Fatalf("SaveCategory: %v", err)
		}
	}
	if err := store.Catalog().SaveSupplier(ctx, domain.Supplier{ID: "s1", Name: "Orafol"}); err != nil {
		t.Fatalf("SaveSupplier: %v", err)
	}
	products := []domain.Product{
		{ID: "p1", Name: "Standard Banner", CategoryID: "c2", IsActive: true, CreatedAt: base},
		{ID: "p2", Name: "Featured Banner Stand", Description: "<p>Portable displays</p>", CategoryID: "c2", SupplierID: "s1", IsActive: true, IsFeatured: true, CreatedAt: base.Add(48 * time.Hour)},
		{ID: "p3", Name: "Inactive Featured", CategoryID: "c1", IsActive: false, IsFeatured: true, CreatedAt: base},
		{ID: "p4", Name: "alpha lightbox", SKU: "LBX-1", CategoryID: "c1", IsActive: true, CreatedAt: base.Add(24 * time.Hour)},
	}
	for _, p := range products {
		if err := store.Catalog().SaveProduct(ctx, p); err != nil {
			t.Fatalf("SaveProduct: %v", err)
		}
	}
	svc, err := NewCatalogService(CatalogServiceDeps{Repository: store.Catalog()})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}
	return svc
}

func productIDs(items []ProductDetail) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestCatalogService_ListProducts(t *testing.T) {
	svc := seedCatalog(t)
	ctx := context.Background()
	yes, no := true, false

	cases := []struct {
		name  string
		query ProductQuery
		want  []string
	}{
		{name: "active by name", query: ProductQuery{}, want: []string{"p4", "p2", "p1"}},
		{name: "newest first", query: ProductQuery{Sort: ProductSortCreatedAt}, want: []string{"p2", "p4", "p1"}},
		{name: "featured and search", query: ProductQuery{Featured: &yes, Search: "BANNER"}, want: []string{"p2"}},
		{name: "not featured", query: ProductQuery{Featured: &no}, want: []string{"p4", "p1"}},
		{name: "search sku", query: ProductQuery{Search: "lbx"}, want: []string{"p4"}},
		{name: "search description", query: ProductQuery{Search: "portable"}, want: []string{"p2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := svc.ListProducts(ctx, tc.query)
			if err != nil {
				t.Fatalf("ListProducts: %v", err)
			}
			got := productIDs(page.Items)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
			}
		})
	}
}

func TestCatalogService_ListProductsPaginates(t *testing.T) {
	svc := seedCatalog(t)
	page, err := svc.ListProducts(context.Background(), ProductQuery{Page: pagination.Params{Page: 2, PerPage: 2}})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if page.Meta.Total != 3 || page.Meta.LastPage != 2 || page.Meta.CurrentPage != 2 || page.Meta.PerPage != 2 {
		t.Fatalf("unexpected meta %+v", page.Meta)
	}
	if ids := productIDs(page.Items); len(ids) != 1 || ids[0] != "p1" {
		t.Fatalf("expected p1 on page 2, got %v", ids)
	}

	defaults, _ := svc.ListProducts(context.Background(), ProductQuery{})
	if defaults.Meta.PerPage != 12 {
		t.Fatalf("expected default per page 12, got %d", defaults.Meta.PerPage)
	}
	capped, _ := svc.ListProducts(context.Background(), ProductQuery{Page: pagination.Params{PerPage: 500}})
	if capped.Meta.PerPage != 50 {
		t.Fatalf("expected per page capped at 50, got %d", capped.Meta.PerPage)
	}
}

func TestCatalogService_GetProduct(t *testing.T) {
	svc := seedCatalog(t)
	product, err := svc.GetProduct(context.Background(), "p2")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if product.CategoryName != "Banner Systems" || product.SupplierName != "Orafol" {
		t.Fatalf("expected names resolved, got %+v", product)
	}
	if _, err := svc.GetProduct(context.Background(), "missing"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCatalogService_ListCategoriesCountsActiveProducts(t *testing.T) {
	svc := seedCatalog(t)
	categories, err := svc.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != 2 || categories[0].Name != "Alpha Displays" || categories[1].Name != "Banner Systems" {
		t.Fatalf("expected categories ordered by name, got %+v", categories)
	}
	if categories[0].ProductsCount != 1 || categories[1].ProductsCount != 2 {
		t.Fatalf("unexpected counts %+v", categories)
	}
}
