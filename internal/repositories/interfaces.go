package repositories

import (
	"context"
	"errors"
	"time"

	domain "github.com/absign/storefront/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	SeoEntries() SeoEntryRepository
	Company() CompanyRepository
	Catalog() CatalogRepository
	Contacts() ContactRepository
	Health() HealthRepository
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// SeoEntryRepository persists per-slug SEO metadata with soft deletion.
type SeoEntryRepository interface {
	// FindBySlug returns the entry for slug. Soft-deleted entries are reported as not found
	// unless includeDeleted is set.
	FindBySlug(ctx context.Context, slug string, includeDeleted bool) (domain.SeoEntry, error)
	List(ctx context.Context, filter SeoEntryListFilter) ([]domain.SeoEntry, error)
	// Save writes entry. When previousSlug differs from entry.Slug the entry is moved and the
	// new slug must not be taken, including by a soft-deleted entry.
	Save(ctx context.Context, previousSlug string, entry domain.SeoEntry) (domain.SeoEntry, error)
	SoftDelete(ctx context.Context, slug string, deletedAt time.Time) error
	Restore(ctx context.Context, slug string, restoredAt time.Time) error
	ForceDelete(ctx context.Context, slug string) error
}

// SeoEntryListFilter narrows admin listings.
type SeoEntryListFilter struct {
	Search         string
	IncludeDeleted bool
	OnlyDeleted    bool
}

// CompanyRepository stores the site identity and the operating company profiles.
type CompanyRepository interface {
	Info(ctx context.Context) (domain.CompanyInfo, error)
	SaveInfo(ctx context.Context, info domain.CompanyInfo) error
	ListProfiles(ctx context.Context) ([]domain.Company, error)
	FindProfileBySlug(ctx context.Context, slug string) (domain.Company, error)
	SaveProfile(ctx context.Context, company domain.Company) error
}

// CatalogRepository stores products with their categories and suppliers.
type CatalogRepository interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	FindProduct(ctx context.Context, id string) (domain.Product, error)
	SaveProduct(ctx context.Context, product domain.Product) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
	SaveCategory(ctx context.Context, category domain.Category) error
	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
	SaveSupplier(ctx context.Context, supplier domain.Supplier) error
}

// ProductFilter restricts product listings. Text search and ordering are applied by services.
type ProductFilter struct {
	ActiveOnly   bool
	FeaturedOnly bool
	CategoryID   string
}

// ContactRepository stores contact form submissions.
type ContactRepository interface {
	Insert(ctx context.Context, message domain.ContactMessage) error
}

// HealthRepository exposes status of downstream dependencies for health checks.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}

// IsNotFound reports whether err carries a repository not-found categorisation.
func IsNotFound(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

// IsConflict reports whether err carries a repository conflict categorisation.
func IsConflict(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsConflict()
}

// IsUnavailable reports whether err carries a repository unavailable categorisation.
func IsUnavailable(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsUnavailable()
}
