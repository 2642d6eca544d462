package services

import (
	"context"
	"time"

	domain "github.com/absign/storefront/internal/domain"
	"github.com/absign/storefront/internal/platform/pagination"
	"github.com/absign/storefront/internal/seoform"
)

// SeoEntryService serves SEO entries to the storefront and to the admin editor.
type SeoEntryService interface {
	// GetBySlug returns the live entry for slug or ErrSeoEntryNotFound.
	GetBySlug(ctx context.Context, slug string) (domain.SeoEntry, error)
	List(ctx context.Context, filter SeoEntryFilter) ([]SeoEntryForm, error)
	// Get returns the editing shape of an entry, trashed or not.
	Get(ctx context.Context, slug string) (SeoEntryForm, error)
	Save(ctx context.Context, cmd SaveSeoEntryCommand) (SeoEntryForm, error)
	Delete(ctx context.Context, slug string) error
	Restore(ctx context.Context, slug string) error
	ForceDelete(ctx context.Context, slug string) error
}

// SeoEntryFilter narrows admin listings. Trashed is one of "", "with" or "only".
type SeoEntryFilter struct {
	Search  string
	Trashed string
}

// SeoEntryForm is the admin editing shape of an entry with custom meta tags as repeater rows.
type SeoEntryForm struct {
	Slug               string
	Title              string
	Description        string
	CanonicalURL       string
	ExtraMeta          []seoform.Row
	OGTitle            string
	OGDescription      string
	OGImagePath        string
	TwitterTitle       string
	TwitterDescription string
	TwitterImagePath   string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time
}

// SaveSeoEntryCommand creates or updates an entry. OriginalSlug is the slug the entry was
// loaded under; it differs from Form.Slug when the slug is being renamed.
type SaveSeoEntryCommand struct {
	OriginalSlug string
	Form         SeoEntryForm
}

// CatalogService lists the public product catalog.
type CatalogService interface {
	ListProducts(ctx context.Context, query ProductQuery) (ProductPage, error)
	GetProduct(ctx context.Context, id string) (ProductDetail, error)
	ListCategories(ctx context.Context) ([]CategorySummary, error)
}

// ProductSort selects listing order.
type ProductSort string

const (
	ProductSortName      ProductSort = "name"
	ProductSortCreatedAt ProductSort = "created_at"
)

// ProductQuery filters public product listings. Featured nil means either.
type ProductQuery struct {
	Search   string
	Featured *bool
	Sort     ProductSort
	Page     pagination.Params
}

// ProductPage is one page of products.
type ProductPage struct {
	Items []ProductDetail
	Meta  pagination.Meta
}

// ProductDetail is a product with its category and supplier names resolved.
type ProductDetail struct {
	domain.Product
	CategoryName string
	SupplierName string
}

// CategorySummary is a category with the number of active products in it.
type CategorySummary struct {
	domain.Category
	ProductsCount int
}

// CompanyService exposes site identity and company profiles.
type CompanyService interface {
	Info(ctx context.Context) (CompanyInfo, error)
	ListProfiles(ctx context.Context) ([]domain.Company, error)
	GetProfile(ctx context.Context, slug string) (domain.Company, error)
	SaveProfile(ctx context.Context, company domain.Company) (domain.Company, error)
}

// CompanyInfo is the site identity with hero defaults applied.
type CompanyInfo struct {
	domain.CompanyInfo
}

// ContactService records contact form submissions.
type ContactService interface {
	Submit(ctx context.Context, cmd ContactCommand) (domain.ContactMessage, error)
}

// ContactCommand is the raw contact form input.
type ContactCommand struct {
	Name    string
	Email   string
	Phone   string
	Product string
	Message string
}
