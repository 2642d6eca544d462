package firestore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/absign/storefront/internal/domain"
	pfirestore "github.com/absign/storefront/internal/platform/firestore"
	"github.com/absign/storefront/internal/repositories"
)

const (
	productsCollection   = "products"
	categoriesCollection = "categories"
	suppliersCollection  = "suppliers"
)

// CatalogRepository stores products, categories and suppliers in separate collections.
type CatalogRepository struct {
	products   *pfirestore.BaseRepository[productDocument]
	categories *pfirestore.BaseRepository[categoryDocument]
	suppliers  *pfirestore.BaseRepository[supplierDocument]
	now        func() time.Time
}

var _ repositories.CatalogRepository = (*CatalogRepository)(nil)

func NewCatalogRepository(provider *pfirestore.Provider) (*CatalogRepository, error) {
	if provider == nil {
		return nil, errors.New("catalog repository: firestore provider is required")
	}
	return &CatalogRepository{
		products:   pfirestore.NewBaseRepository[productDocument](provider, productsCollection),
		categories: pfirestore.NewBaseRepository[categoryDocument](provider, categoriesCollection),
		suppliers:  pfirestore.NewBaseRepository[supplierDocument](provider, suppliersCollection),
		now:        time.Now,
	}, nil
}

func (r *CatalogRepository) ListProducts(ctx context.Context, filter repositories.ProductFilter) ([]domain.Product, error) {
	docs, err := r.products.Query(ctx, func(q firestore.Query) firestore.Query {
		if filter.ActiveOnly {
			q = q.Where("isActive", "==", true)
		}
		if filter.FeaturedOnly {
			q = q.Where("isFeatured", "==", true)
		}
		if filter.CategoryID != "" {
			q = q.Where("categoryId", "==", filter.CategoryID)
		}
		return q
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.Data.toDomain(doc.ID))
	}
	return out, nil
}

func (r *CatalogRepository) FindProduct(ctx context.Context, id string) (domain.Product, error) {
	doc, err := r.products.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return doc.Data.toDomain(doc.ID), nil
}

func (r *CatalogRepository) SaveProduct(ctx context.Context, p domain.Product) error {
	now := r.now().UTC()
	doc := productDocument{
		Name:        p.Name,
		SKU:         p.SKU,
		Description: p.Description,
		CategoryID:  p.CategoryID,
		SupplierID:  p.SupplierID,
		ImagePath:   p.ImagePath,
		IsActive:    p.IsActive,
		IsFeatured:  p.IsFeatured,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}
	return r.products.Set(ctx, p.ID, doc)
}

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	docs, err := r.categories.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.OrderBy("name", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(docs))
	for _, doc := range docs {
		out = append(out, domain.Category{
			ID:          doc.ID,
			Name:        doc.Data.Name,
			Slug:        doc.Data.Slug,
			Description: doc.Data.Description,
		})
	}
	return out, nil
}

func (r *CatalogRepository) SaveCategory(ctx context.Context, c domain.Category) error {
	return r.categories.Set(ctx, c.ID, categoryDocument{Name: c.Name, Slug: c.Slug, Description: c.Description})
}

func (r *CatalogRepository) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	docs, err := r.suppliers.Query(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Supplier, 0, len(docs))
	for _, doc := range docs {
		out = append(out, domain.Supplier{ID: doc.ID, Name: doc.Data.Name, Website: doc.Data.Website})
	}
	return out, nil
}

func (r *CatalogRepository) SaveSupplier(ctx context.Context, s domain.Supplier) error {
	return r.suppliers.Set(ctx, s.ID, supplierDocument{Name: s.Name, Website: s.Website})
}

type productDocument struct {
	Name        string    `firestore:"name"`
	SKU         string    `firestore:"sku,omitempty"`
	Description string    `firestore:"description,omitempty"`
	CategoryID  string    `firestore:"categoryId,omitempty"`
	SupplierID  string    `firestore:"supplierId,omitempty"`
	ImagePath   string    `firestore:"imagePath,omitempty"`
	IsActive    bool      `firestore:"isActive"`
	IsFeatured  bool      `firestore:"isFeatured"`
	CreatedAt   time.Time `firestore:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt"`
}

func (d productDocument) toDomain(id string) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        d.Name,
		SKU:         d.SKU,
		Description: d.Description,
		CategoryID:  d.CategoryID,
		SupplierID:  d.SupplierID,
		ImagePath:   d.ImagePath,
		IsActive:    d.IsActive,
		IsFeatured:  d.IsFeatured,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type categoryDocument struct {
	Name        string `firestore:"name"`
	Slug        string `firestore:"slug"`
	Description string `firestore:"description,omitempty"`
}

type supplierDocument struct {
	Name    string `firestore:"name"`
	Website string `firestore:"website,omitempty"`
}
