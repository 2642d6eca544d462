// Package seed loads catalog fixtures from YAML and writes them through the repository interfaces,
// so the same file can populate the in-memory store and Firestore.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	domain "github.com/absign/storefront/internal/domain"
	"github.com/absign/storefront/internal/platform/textutil"
	"github.com/absign/storefront/internal/repositories"
)

// Fixture is the YAML document layout.
type Fixture struct {
	Company    *CompanyInfo `yaml:"company"`
	Companies  []Company    `yaml:"companies"`
	Categories []Category   `yaml:"categories"`
	Suppliers  []Supplier   `yaml:"suppliers"`
	Products   []Product    `yaml:"products"`
	SeoEntries []SeoEntry   `yaml:"seo_entries"`
}

type CompanyInfo struct {
	SiteName        string `yaml:"site_name"`
	Tagline         string `yaml:"tagline"`
	LogoPath        string `yaml:"logo_path"`
	AboutUs         string `yaml:"about_us"`
	ContactEmail    string `yaml:"contact_email"`
	ContactPhone    string `yaml:"contact_phone"`
	Address         string `yaml:"address"`
	GoogleMapEmbed  string `yaml:"google_map_embed"`
	HeroHeadline    string `yaml:"hero_headline"`
	HeroSubheadline string `yaml:"hero_subheadline"`
	PrimaryCTA      Link   `yaml:"primary_cta"`
	SecondaryCTA    Link   `yaml:"secondary_cta"`
	Stats           []Stat `yaml:"stats"`
}

type Link struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

type Stat struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

type Company struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	Slug      string    `yaml:"slug"`
	Tagline   string    `yaml:"tagline"`
	LogoPath  string    `yaml:"logo_path"`
	Summary   string    `yaml:"summary"`
	Overview  string    `yaml:"overview"`
	Email     string    `yaml:"email"`
	Phone     string    `yaml:"phone"`
	Address   string    `yaml:"address"`
	Website   string    `yaml:"website"`
	SortOrder int       `yaml:"sort_order"`
	Services  []Service `yaml:"services"`
}

type Service struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	SortOrder   int    `yaml:"sort_order"`
}

type Category struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

type Supplier struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Website string `yaml:"website"`
}

// Product.Active defaults to true when omitted.
type Product struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	SKU         string    `yaml:"sku"`
	Description string    `yaml:"description"`
	Category    string    `yaml:"category"`
	Supplier    string    `yaml:"supplier"`
	ImagePath   string    `yaml:"image_path"`
	Active      *bool     `yaml:"active"`
	Featured    bool      `yaml:"featured"`
	CreatedAt   time.Time `yaml:"created_at"`
}

type SeoEntry struct {
	Slug         string    `yaml:"slug"`
	Title        string    `yaml:"title"`
	Description  string    `yaml:"description"`
	CanonicalURL string    `yaml:"canonical_url"`
	ExtraMeta    []MetaTag `yaml:"extra_meta"`
	OpenGraph    Social    `yaml:"og"`
	Twitter      Social    `yaml:"twitter"`
}

type MetaTag struct {
	Name      string `yaml:"name"`
	Property  string `yaml:"property"`
	HTTPEquiv string `yaml:"http_equiv"`
	Content   string `yaml:"content"`
}

type Social struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	ImagePath   string `yaml:"image_path"`
}

// LoadFile reads a fixture from path.
func LoadFile(path string) (Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("seed: open fixture: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a fixture, rejecting unknown keys.
func Parse(r io.Reader) (Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var fx Fixture
	if err := dec.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return Fixture{}, fmt.Errorf("seed: decode fixture: %w", err)
	}
	return fx, nil
}

// Summary counts the records written by Apply.
type Summary struct {
	Companies  int
	Categories int
	Suppliers  int
	Products   int
	SeoEntries int
}

// Apply writes the fixture into reg. Missing ids are generated as ULIDs and missing slugs are
// derived from names. Products may reference categories and suppliers by id or slug.
func Apply(ctx context.Context, reg repositories.Registry, fx Fixture) (Summary, error) {
	var sum Summary
	if fx.Company != nil {
		if err := reg.Company().SaveInfo(ctx, fx.Company.toDomain()); err != nil {
			return sum, fmt.Errorf("seed: company info: %w", err)
		}
	}

	for _, c := range fx.Companies {
		if err := reg.Company().SaveProfile(ctx, c.toDomain()); err != nil {
			return sum, fmt.Errorf("seed: company %q: %w", c.Name, err)
		}
		sum.Companies++
	}

	categoryIDs := make(map[string]string)
	for _, c := range fx.Categories {
		category := domain.Category{
			ID:          idOrNew(c.ID),
			Name:        strings.TrimSpace(c.Name),
			Slug:        textutil.FirstNonEmpty(c.Slug, textutil.Slugify(c.Name)),
			Description: c.Description,
		}
		if err := reg.Catalog().SaveCategory(ctx, category); err != nil {
			return sum, fmt.Errorf("seed: category %q: %w", c.Name, err)
		}
		categoryIDs[category.ID] = category.ID
		categoryIDs[category.Slug] = category.ID
		sum.Categories++
	}

	supplierIDs := make(map[string]string)
	for _, s := range fx.Suppliers {
		supplier := domain.Supplier{ID: idOrNew(s.ID), Name: strings.TrimSpace(s.Name), Website: s.Website}
		if err := reg.Catalog().SaveSupplier(ctx, supplier); err != nil {
			return sum, fmt.Errorf("seed: supplier %q: %w", s.Name, err)
		}
		supplierIDs[supplier.ID] = supplier.ID
		supplierIDs[textutil.Slugify(supplier.Name)] = supplier.ID
		sum.Suppliers++
	}

	for _, p := range fx.Products {
		product := domain.Product{
			ID:          idOrNew(p.ID),
			Name:        strings.TrimSpace(p.Name),
			SKU:         strings.TrimSpace(p.SKU),
			Description: p.Description,
			CategoryID:  lookup(categoryIDs, p.Category),
			SupplierID:  lookup(supplierIDs, p.Supplier),
			ImagePath:   p.ImagePath,
			IsActive:    p.Active == nil || *p.Active,
			IsFeatured:  p.Featured,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.CreatedAt,
		}
		if err := reg.Catalog().SaveProduct(ctx, product); err != nil {
			return sum, fmt.Errorf("seed: product %q: %w", p.Name, err)
		}
		sum.Products++
	}

	for _, e := range fx.SeoEntries {
		slug := strings.TrimSpace(e.Slug)
		if slug == "" {
			return sum, errors.New("seed: seo entry without slug")
		}
		if _, err := reg.SeoEntries().Save(ctx, slug, e.toDomain(slug)); err != nil {
			return sum, fmt.Errorf("seed: seo entry %q: %w", slug, err)
		}
		sum.SeoEntries++
	}
	return sum, nil
}

func (c CompanyInfo) toDomain() domain.CompanyInfo {
	info := domain.CompanyInfo{
		SiteName:        c.SiteName,
		Tagline:         c.Tagline,
		LogoPath:        c.LogoPath,
		AboutUs:         c.AboutUs,
		ContactEmail:    c.ContactEmail,
		ContactPhone:    c.ContactPhone,
		Address:         c.Address,
		GoogleMapEmbed:  c.GoogleMapEmbed,
		HeroHeadline:    c.HeroHeadline,
		HeroSubheadline: c.HeroSubheadline,
		PrimaryCTA:      domain.CallToAction{Label: c.PrimaryCTA.Label, URL: c.PrimaryCTA.URL},
		SecondaryCTA:    domain.CallToAction{Label: c.SecondaryCTA.Label, URL: c.SecondaryCTA.URL},
	}
	for _, s := range c.Stats {
		info.Stats = append(info.Stats, domain.HeroStat{Label: s.Label, Value: s.Value})
	}
	return info
}

func (c Company) toDomain() domain.Company {
	company := domain.Company{
		ID:        idOrNew(c.ID),
		Name:      strings.TrimSpace(c.Name),
		Slug:      textutil.FirstNonEmpty(c.Slug, textutil.Slugify(c.Name)),
		Tagline:   c.Tagline,
		LogoPath:  c.LogoPath,
		Summary:   c.Summary,
		Overview:  c.Overview,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Website:   c.Website,
		SortOrder: c.SortOrder,
	}
	for _, s := range c.Services {
		company.Services = append(company.Services, domain.CompanyService{
			Title:       s.Title,
			Description: s.Description,
			SortOrder:   s.SortOrder,
		})
	}
	return company
}

func (e SeoEntry) toDomain(slug string) domain.SeoEntry {
	entry := domain.SeoEntry{
		Slug:               slug,
		Title:              e.Title,
		Description:        e.Description,
		CanonicalURL:       e.CanonicalURL,
		OGTitle:            e.OpenGraph.Title,
		OGDescription:      e.OpenGraph.Description,
		OGImagePath:        e.OpenGraph.ImagePath,
		TwitterTitle:       e.Twitter.Title,
		TwitterDescription: e.Twitter.Description,
		TwitterImagePath:   e.Twitter.ImagePath,
	}
	for _, m := range e.ExtraMeta {
		entry.ExtraMeta = append(entry.ExtraMeta, domain.MetaTag{
			Name:      m.Name,
			Property:  m.Property,
			HTTPEquiv: m.HTTPEquiv,
			Content:   m.Content,
		})
	}
	return entry
}

func idOrNew(id string) string {
	if trimmed := strings.TrimSpace(id); trimmed != "" {
		return trimmed
	}
	return ulid.Make().String()
}

func lookup(ids map[string]string, ref string) string {
	ref = strings.TrimSpace(ref)
	if id, ok := ids[ref]; ok {
		return id
	}
	return ref
}
