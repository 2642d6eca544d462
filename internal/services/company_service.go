package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	domain "github.com/absign/storefront/internal/domain"
	"github.com/absign/storefront/internal/platform/textutil"
	"github.com/absign/storefront/internal/repositories"
)

// Hero copy shown when the company info leaves a field blank.
const (
	DefaultHeroHeadline      = "Your Complete Source for Signage Supplies"
	DefaultHeroSubheadline   = "Materials, hardware and expert support for sign professionals."
	DefaultPrimaryCTALabel   = "Shop Products"
	DefaultPrimaryCTAURL     = "/products"
	DefaultSecondaryCTALabel = "Contact Us"
	DefaultSecondaryCTAURL   = "/contact"
)

// CompanyServiceDeps groups constructor parameters for the company service.
type CompanyServiceDeps struct {
	Repository repositories.CompanyRepository
}

type companyService struct {
	repo repositories.CompanyRepository
}

// ErrCompanyRepositoryMissing signals that the company repository dependency is absent.
var ErrCompanyRepositoryMissing = errors.New("company service: company repository is not configured")

// NewCompanyService constructs the company service.
func NewCompanyService(deps CompanyServiceDeps) (CompanyService, error) {
	if deps.Repository == nil {
		return nil, ErrCompanyRepositoryMissing
	}
	return &companyService{repo: deps.Repository}, nil
}

func (s *companyService) Info(ctx context.Context) (CompanyInfo, error) {
	info, err := s.repo.Info(ctx)
	if err != nil {
		if repositories.IsNotFound(err) {
			return CompanyInfo{}, ErrCompanyInfoNotFound
		}
		return CompanyInfo{}, err
	}
	info.HeroHeadline = textutil.FirstNonEmpty(info.HeroHeadline, DefaultHeroHeadline)
	info.HeroSubheadline = textutil.FirstNonEmpty(info.HeroSubheadline, DefaultHeroSubheadline)
	info.PrimaryCTA.Label = textutil.FirstNonEmpty(info.PrimaryCTA.Label, DefaultPrimaryCTALabel)
	info.PrimaryCTA.URL = textutil.FirstNonEmpty(info.PrimaryCTA.URL, DefaultPrimaryCTAURL)
	info.SecondaryCTA.Label = textutil.FirstNonEmpty(info.SecondaryCTA.Label, DefaultSecondaryCTALabel)
	info.SecondaryCTA.URL = textutil.FirstNonEmpty(info.SecondaryCTA.URL, DefaultSecondaryCTAURL)

	stats := info.Stats[:0:0]
	for _, stat := range info.Stats {
		if strings.TrimSpace(stat.Label) != "" || strings.TrimSpace(stat.Value) != "" {
			stats = append(stats, stat)
		}
	}
	info.Stats = stats
	return CompanyInfo{CompanyInfo: info}, nil
}

// ListProfiles orders profiles by sort_order then name.
func (s *companyService) ListProfiles(ctx context.Context) ([]domain.Company, error) {
	companies, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(companies, func(i, j int) bool {
		if companies[i].SortOrder != companies[j].SortOrder {
			return companies[i].SortOrder < companies[j].SortOrder
		}
		return companies[i].Name < companies[j].Name
	})
	return companies, nil
}

// GetProfile returns the profile with its services ordered by sort_order.
func (s *companyService) GetProfile(ctx context.Context, slug string) (domain.Company, error) {
	company, err := s.repo.FindProfileBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if repositories.IsNotFound(err) {
			return domain.Company{}, fmt.Errorf("%w: %s", ErrCompanyNotFound, slug)
		}
		return domain.Company{}, err
	}
	sort.SliceStable(company.Services, func(i, j int) bool {
		return company.Services[i].SortOrder < company.Services[j].SortOrder
	})
	return company, nil
}

// SaveProfile derives the slug from the name when it is blank.
func (s *companyService) SaveProfile(ctx context.Context, company domain.Company) (domain.Company, error) {
	company.Name = strings.TrimSpace(company.Name)
	if company.Name == "" {
		return domain.Company{}, fmt.Errorf("%w: name is required", ErrCompanyInvalidInput)
	}
	company.Slug = textutil.FirstNonEmpty(company.Slug, textutil.Slugify(company.Name))
	if company.Slug == "" {
		return domain.Company{}, fmt.Errorf("%w: name %q does not produce a slug", ErrCompanyInvalidInput, company.Name)
	}
	if strings.TrimSpace(company.ID) == "" {
		company.ID = company.Slug
	}
	if err := s.repo.SaveProfile(ctx, company); err != nil {
		if repositories.IsConflict(err) {
			return domain.Company{}, fmt.Errorf("%w: slug %s already taken", ErrCompanyInvalidInput, company.Slug)
		}
		return domain.Company{}, err
	}
	return company, nil
}
