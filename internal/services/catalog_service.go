package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	domain "github.com/absign/storefront/internal/domain"
	"github.com/absign/storefront/internal/platform/pagination"
	"github.com/absign/storefront/internal/repositories"
)

// CatalogServiceDeps groups constructor parameters for the catalog service.
type CatalogServiceDeps struct {
	Repository repositories.CatalogRepository
}

type catalogService struct {
	repo repositories.CatalogRepository
}

// ErrCatalogRepositoryMissing signals that the catalog repository dependency is absent.
var ErrCatalogRepositoryMissing = errors.New("catalog service: catalog repository is not configured")

// NewCatalogService constructs the catalog service.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Repository == nil {
		return nil, ErrCatalogRepositoryMissing
	}
	return &catalogService{repo: deps.Repository}, nil
}

// ListProducts returns active products. Search matches name, sku or description case-insensitively;
// results are ordered by name unless created_at (newest first) is requested.
func (s *catalogService) ListProducts(ctx context.Context, query ProductQuery) (ProductPage, error) {
	filter := repositories.ProductFilter{ActiveOnly: true}
	if query.Featured != nil && *query.Featured {
		filter.FeaturedOnly = true
	}
	products, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return ProductPage{}, err
	}

	term := strings.ToLower(strings.TrimSpace(query.Search))
	matched := products[:0:0]
	for _, p := range products {
		if !p.IsActive {
			continue
		}
		if query.Featured != nil && p.IsFeatured != *query.Featured {
			continue
		}
		if term != "" && !containsFold(term, p.Name, p.SKU, p.Description) {
			continue
		}
		matched = append(matched, p)
	}

	if query.Sort == ProductSortCreatedAt {
		sort.SliceStable(matched, func(i, j int) bool {
			if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
				return matched[i].CreatedAt.After(matched[j].CreatedAt)
			}
			return matched[i].ID > matched[j].ID
		})
	} else {
		sort.SliceStable(matched, func(i, j int) bool {
			a, b := strings.ToLower(matched[i].Name), strings.ToLower(matched[j].Name)
			if a != b {
				return a < b
			}
			return matched[i].ID < matched[j].ID
		})
	}

	params := query.Page
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage < 1 {
		params.PerPage = pagination.DefaultPerPage
	}
	params.PerPage = min(params.PerPage, pagination.DefaultMaxPerPage)
	pageItems, meta := pagination.Slice(matched, params)

	names, err := s.lookupNames(ctx)
	if err != nil {
		return ProductPage{}, err
	}
	items := make([]ProductDetail, 0, len(pageItems))
	for _, p := range pageItems {
		items = append(items, names.detail(p))
	}
	return ProductPage{Items: items, Meta: meta}, nil
}

// GetProduct returns a product by id regardless of its active flag.
func (s *catalogService) GetProduct(ctx context.Context, id string) (ProductDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ProductDetail{}, ErrProductNotFound
	}
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return ProductDetail{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		return ProductDetail{}, err
	}
	names, err := s.lookupNames(ctx)
	if err != nil {
		return ProductDetail{}, err
	}
	return names.detail(product), nil
}

// ListCategories returns categories ordered by name with their active product counts.
func (s *catalogService) ListCategories(ctx context.Context) ([]CategorySummary, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.repo.ListProducts(ctx, repositories.ProductFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(categories))
	for _, p := range active {
		counts[p.CategoryID]++
	}

	out := make([]CategorySummary, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategorySummary{Category: c, ProductsCount: counts[c.ID]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

type nameLookup struct {
	categories map[string]string
	suppliers  map[string]string
}

func (s *catalogService) lookupNames(ctx context.Context) (nameLookup, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nameLookup{}, err
	}
	suppliers, err := s.repo.ListSuppliers(ctx)
	if err != nil {
		return nameLookup{}, err
	}
	names := nameLookup{
		categories: make(map[string]string, len(categories)),
		suppliers:  make(map[string]string, len(suppliers)),
	}
	for _, c := range categories {
		names.categories[c.ID] = c.Name
	}
	for _, sup := range suppliers {
		names.suppliers[sup.ID] = sup.Name
	}
	return names, nil
}

func (n nameLookup) detail(p domain.Product) ProductDetail {
	return ProductDetail{
		Product:      p,
		CategoryName: n.categories[p.CategoryID],
		SupplierName: n.suppliers[p.SupplierID],
	}
}

func containsFold(term string, values ...string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}
