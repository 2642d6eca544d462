// Package firestore implements the repository interfaces on Cloud Firestore.
package firestore

import (
	"context"
	"fmt"

	pfirestore "github.com/absign/storefront/internal/platform/firestore"
	"github.com/absign/storefront/internal/repositories"
)

// Registry wires every Firestore repository around one shared provider.
type Registry struct {
	provider *pfirestore.Provider
	seo      *SeoEntryRepository
	company  *CompanyRepository
	catalog  *CatalogRepository
	contacts *ContactRepository
	health   repositories.HealthRepository
}

var _ repositories.Registry = (*Registry)(nil)

// NewRegistry builds the repositories. Readiness pings Firestore, plus any extra checks supplied.
func NewRegistry(provider *pfirestore.Provider, extraChecks ...repositories.DependencyCheck) (*Registry, error) {
	seo, err := NewSeoEntryRepository(provider)
	if err != nil {
		return nil, err
	}
	company, err := NewCompanyRepository(provider)
	if err != nil {
		return nil, err
	}
	catalog, err := NewCatalogRepository(provider)
	if err != nil {
		return nil, err
	}
	contacts, err := NewContactRepository(provider)
	if err != nil {
		return nil, err
	}
	checks := append([]repositories.DependencyCheck{{Name: "firestore", Check: provider.Ping}}, extraChecks...)
	health, err := repositories.NewDependencyHealthRepository(checks)
	if err != nil {
		return nil, fmt.Errorf("firestore registry: %w", err)
	}
	return &Registry{
		provider: provider,
		seo:      seo,
		company:  company,
		catalog:  catalog,
		contacts: contacts,
		health:   health,
	}, nil
}

func (r *Registry) Close(context.Context) error { return r.provider.Close() }

func (r *Registry) SeoEntries() repositories.SeoEntryRepository { return r.seo }
func (r *Registry) Company() repositories.CompanyRepository     { return r.company }
func (r *Registry) Catalog() repositories.CatalogRepository     { return r.catalog }
func (r *Registry) Contacts() repositories.ContactRepository    { return r.contacts }
func (r *Registry) Health() repositories.HealthRepository       { return r.health }
