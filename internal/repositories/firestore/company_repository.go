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
	siteCollection      = "site"
	companyInfoDocID    = "company"
	companiesCollection = "companies"
)

// CompanyRepository stores the singleton company info document and the company profiles.
type CompanyRepository struct {
	info      *pfirestore.BaseRepository[companyInfoDocument]
	companies *pfirestore.BaseRepository[companyDocument]
	now       func() time.Time
}

var _ repositories.CompanyRepository = (*CompanyRepository)(nil)

func NewCompanyRepository(provider *pfirestore.Provider) (*CompanyRepository, error) {
	if provider == nil {
		return nil, errors.New("company repository: firestore provider is required")
	}
	return &CompanyRepository{
		info:      pfirestore.NewBaseRepository[companyInfoDocument](provider, siteCollection),
		companies: pfirestore.NewBaseRepository[companyDocument](provider, companiesCollection),
		now:       time.Now,
	}, nil
}

func (r *CompanyRepository) Info(ctx context.Context) (domain.CompanyInfo, error) {
	doc, err := r.info.Get(ctx, companyInfoDocID)
	if err != nil {
		return domain.CompanyInfo{}, err
	}
	return doc.Data.toDomain(), nil
}

func (r *CompanyRepository) SaveInfo(ctx context.Context, info domain.CompanyInfo) error {
	doc := companyInfoDocument{
		SiteName:        info.SiteName,
		Tagline:         info.Tagline,
		LogoPath:        info.LogoPath,
		AboutUs:         info.AboutUs,
		ContactEmail:    info.ContactEmail,
		ContactPhone:    info.ContactPhone,
		Address:         info.Address,
		GoogleMapEmbed:  info.GoogleMapEmbed,
		HeroHeadline:    info.HeroHeadline,
		HeroSubheadline: info.HeroSubheadline,
		PrimaryCTA:      ctaDocument(info.PrimaryCTA),
		SecondaryCTA:    ctaDocument(info.SecondaryCTA),
		UpdatedAt:       r.now().UTC(),
	}
	for _, stat := range info.Stats {
		doc.Stats = append(doc.Stats, statDocument(stat))
	}
	return r.info.Set(ctx, companyInfoDocID, doc)
}

func (r *CompanyRepository) ListProfiles(ctx context.Context) ([]domain.Company, error) {
	docs, err := r.companies.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.OrderBy("sortOrder", firestore.Asc).OrderBy("name", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Company, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.Data.toDomain(doc.ID))
	}
	return out, nil
}

func (r *CompanyRepository) FindProfileBySlug(ctx context.Context, slug string) (domain.Company, error) {
	docs, err := r.companies.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("slug", "==", slug).Limit(1)
	})
	if err != nil {
		return domain.Company{}, err
	}
	if len(docs) == 0 {
		return domain.Company{}, pfirestore.NotFound("companies.find", "company "+slug)
	}
	return docs[0].Data.toDomain(docs[0].ID), nil
}

func (r *CompanyRepository) SaveProfile(ctx context.Context, c domain.Company) error {
	clash, err := r.companies.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("slug", "==", c.Slug).Limit(2)
	})
	if err != nil {
		return err
	}
	for _, doc := range clash {
		if doc.ID != c.ID {
			return pfirestore.Conflict("companies.save", "company slug "+c.Slug)
		}
	}

	now := r.now().UTC()
	doc := companyDocument{
		Name:      c.Name,
		Slug:      c.Slug,
		Tagline:   c.Tagline,
		LogoPath:  c.LogoPath,
		Summary:   c.Summary,
		Overview:  c.Overview,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Website:   c.Website,
		SortOrder: c.SortOrder,
		CreatedAt: c.CreatedAt,
		UpdatedAt: now,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	for _, s := range c.Services {
		doc.Services = append(doc.Services, serviceDocument(s))
	}
	return r.companies.Set(ctx, c.ID, doc)
}

type ctaDocument struct {
	Label string `firestore:"label"`
	URL   string `firestore:"url"`
}

type statDocument struct {
	Label string `firestore:"label"`
	Value string `firestore:"value"`
}

type companyInfoDocument struct {
	SiteName        string         `firestore:"siteName"`
	Tagline         string         `firestore:"tagline,omitempty"`
	LogoPath        string         `firestore:"logoPath,omitempty"`
	AboutUs         string         `firestore:"aboutUs,omitempty"`
	ContactEmail    string         `firestore:"contactEmail,omitempty"`
	ContactPhone    string         `firestore:"contactPhone,omitempty"`
	Address         string         `firestore:"address,omitempty"`
	GoogleMapEmbed  string         `firestore:"googleMapEmbed,omitempty"`
	HeroHeadline    string         `firestore:"heroHeadline,omitempty"`
	HeroSubheadline string         `firestore:"heroSubheadline,omitempty"`
	PrimaryCTA      ctaDocument    `firestore:"primaryCta"`
	SecondaryCTA    ctaDocument    `firestore:"secondaryCta"`
	Stats           []statDocument `firestore:"stats"`
	UpdatedAt       time.Time      `firestore:"updatedAt"`
}

func (d companyInfoDocument) toDomain() domain.CompanyInfo {
	info := domain.CompanyInfo{
		SiteName:        d.SiteName,
		Tagline:         d.Tagline,
		LogoPath:        d.LogoPath,
		AboutUs:         d.AboutUs,
		ContactEmail:    d.ContactEmail,
		ContactPhone:    d.ContactPhone,
		Address:         d.Address,
		GoogleMapEmbed:  d.GoogleMapEmbed,
		HeroHeadline:    d.HeroHeadline,
		HeroSubheadline: d.HeroSubheadline,
		PrimaryCTA:      domain.CallToAction(d.PrimaryCTA),
		SecondaryCTA:    domain.CallToAction(d.SecondaryCTA),
		UpdatedAt:       d.UpdatedAt,
	}
	for _, stat := range d.Stats {
		info.Stats = append(info.Stats, domain.HeroStat(stat))
	}
	return info
}

type serviceDocument struct {
	Title       string `firestore:"title"`
	Description string `firestore:"description,omitempty"`
	SortOrder   int    `firestore:"sortOrder"`
}

type companyDocument struct {
	Name      string            `firestore:"name"`
	Slug      string            `firestore:"slug"`
	Tagline   string            `firestore:"tagline,omitempty"`
	LogoPath  string            `firestore:"logoPath,omitempty"`
	Summary   string            `firestore:"summary,omitempty"`
	Overview  string            `firestore:"overview,omitempty"`
	Email     string            `firestore:"email,omitempty"`
	Phone     string            `firestore:"phone,omitempty"`
	Address   string            `firestore:"address,omitempty"`
	Website   string            `firestore:"website,omitempty"`
	SortOrder int               `firestore:"sortOrder"`
	Services  []serviceDocument `firestore:"services"`
	CreatedAt time.Time         `firestore:"createdAt"`
	UpdatedAt time.Time         `firestore:"updatedAt"`
}

func (d companyDocument) toDomain(id string) domain.Company {
	c := domain.Company{
		ID:        id,
		Name:      d.Name,
		Slug:      d.Slug,
		Tagline:   d.Tagline,
		LogoPath:  d.LogoPath,
		Summary:   d.Summary,
		Overview:  d.Overview,
		Email:     d.Email,
		Phone:     d.Phone,
		Address:   d.Address,
		Website:   d.Website,
		SortOrder: d.SortOrder,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for _, s := range d.Services {
		c.Services = append(c.Services, domain.CompanyService(s))
	}
	return c
}
