package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// CTA is a hero call to action.
type CTA struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// HeroStat is one figure shown in the home page hero.
type HeroStat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Hero is the home page hero block.
type Hero struct {
	Headline     string     `json:"headline"`
	Subheadline  string     `json:"subheadline"`
	PrimaryCTA   CTA        `json:"primary_cta"`
	SecondaryCTA CTA        `json:"secondary_cta"`
	Stats        []HeroStat `json:"stats"`
}

// CompanyInfo is the site identity returned by GET /company.
type CompanyInfo struct {
	SiteName       string `json:"site_name"`
	Tagline        string `json:"tagline"`
	LogoURL        string `json:"logo_url"`
	AboutUs        string `json:"about_us"`
	ContactEmail   string `json:"contact_email"`
	ContactPhone   string `json:"contact_phone"`
	Address        string `json:"address"`
	GoogleMapEmbed string `json:"google_map_embed"`
	Hero           Hero   `json:"hero"`
}

// Product mirrors the product payload.
type Product struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	SKU             string    `json:"sku"`
	Description     string    `json:"description"`
	DescriptionHTML string    `json:"description_html"`
	CategoryID      string    `json:"category_id"`
	CategoryName    string    `json:"category_name"`
	SupplierName    string    `json:"supplier_name"`
	ImageURL        string    `json:"image_url"`
	IsActive        bool      `json:"is_active"`
	IsFeatured      bool      `json:"is_featured"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// LastModified returns the update time, falling back to the creation time.
func (p Product) LastModified() time.Time {
	if !p.UpdatedAt.IsZero() {
		return p.UpdatedAt
	}
	return p.CreatedAt
}

// PageMeta describes one page of a listing.
type PageMeta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// ProductPage is one page of products.
type ProductPage struct {
	Data []Product `json:"data"`
	Meta PageMeta  `json:"meta"`
}

// ProductQuery filters product listings. Zero values are omitted from the request.
type ProductQuery struct {
	Page     int
	PerPage  int
	Search   string
	Featured *bool
	Sort     string
}

func (q ProductQuery) values() url.Values {
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(q.PerPage))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		values.Set("search", s)
	}
	if q.Featured != nil {
		values.Set("featured", strconv.FormatBool(*q.Featured))
	}
	if s := strings.TrimSpace(q.Sort); s != "" {
		values.Set("sort", s)
	}
	return values
}

// Category is a product category with its active product count.
type Category struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	Description   string `json:"description"`
	ProductsCount int    `json:"products_count"`
}

// CompanySummary is one entry of GET /company-profiles.
type CompanySummary struct {
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Tagline   string    `json:"tagline"`
	Summary   string    `json:"summary"`
	LogoURL   string    `json:"logo_url"`
	SortOrder int       `json:"sort_order"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyContact holds a profile's contact details.
type CompanyContact struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Website string `json:"website"`
}

// CompanyService is a service offered by a company profile.
type CompanyService struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CompanyProfile is the detail payload of GET /company-profiles/{slug}.
type CompanyProfile struct {
	CompanySummary
	Overview string           `json:"overview"`
	Contact  CompanyContact   `json:"contact"`
	Services []CompanyService `json:"services"`
}

// Products lists one page of active products.
func (c *Client) Products(ctx context.Context, q ProductQuery) (ProductPage, error) {
	var page ProductPage
	if err := c.getInto(ctx, "products", q.values(), &page); err != nil {
		return ProductPage{}, err
	}
	return page, nil
}

// Product returns one product or ErrNotFound.
func (c *Client) Product(ctx context.Context, id string) (Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Product{}, ErrNotFound
	}
	var product Product
	if err := c.getInto(ctx, "products/"+url.PathEscape(id), nil, &product); err != nil {
		return Product{}, err
	}
	return product, nil
}

// Categories lists product categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var body struct {
		Data []Category `json:"data"`
	}
	if err := c.getInto(ctx, "categories", nil, &body); err != nil {
		return nil, err
	}
	return body.Data, nil
}

// CompanyProfiles lists the group's companies in display order.
func (c *Client) CompanyProfiles(ctx context.Context) ([]CompanySummary, error) {
	var body struct {
		Data []CompanySummary `json:"data"`
	}
	if err := c.getInto(ctx, "company-profiles", nil, &body); err != nil {
		return nil, err
	}
	return body.Data, nil
}

// CompanyProfile returns one company profile or ErrNotFound.
func (c *Client) CompanyProfile(ctx context.Context, slug string) (CompanyProfile, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return CompanyProfile{}, ErrNotFound
	}
	var profile CompanyProfile
	if err := c.getInto(ctx, "company-profiles/"+url.PathEscape(slug), nil, &profile); err != nil {
		return CompanyProfile{}, err
	}
	return profile, nil
}

func (c *Client) getInto(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.get(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("apiclient: decode %s: %w", path, err)
	}
	return nil
}

// ContactForm is a contact form submission.
type ContactForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Product string `json:"product"`
	Message string `json:"message"`
}

// ContactReceipt acknowledges a stored contact message.
type ContactReceipt struct {
	Message string
	ID      string
}

// ValidationError carries the per-field messages of a 422 response.
type ValidationError struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func (e *ValidationError) Error() string {
	return "apiclient: validation failed: " + e.Message
}

// First returns the first message for field, or "".
func (e *ValidationError) First(field string) string {
	if e == nil {
		return ""
	}
	if msgs := e.Errors[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func decodeValidationError(body []byte) error {
	verr := &ValidationError{}
	if err := json.Unmarshal(body, verr); err != nil {
		return &StatusError{Endpoint: "validation", Status: http.StatusUnprocessableEntity, Body: truncate(body)}
	}
	return verr
}

// SubmitContact posts the contact form. Field problems come back as *ValidationError.
func (c *Client) SubmitContact(ctx context.Context, form ContactForm) (ContactReceipt, error) {
	body, err := c.do(ctx, http.MethodPost, "contact", nil, form)
	if err != nil {
		return ContactReceipt{}, err
	}
	var resp struct {
		Message string `json:"message"`
		Data    struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return ContactReceipt{}, fmt.Errorf("apiclient: decode contact: %w", err)
	}
	return ContactReceipt{Message: resp.Message, ID: resp.Data.ID}, nil
}

// IsValidation reports whether err is a *ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
