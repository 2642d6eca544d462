package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	domain "github.com/absign/storefront/internal/domain"
	"github.com/absign/storefront/internal/repositories"
)

type company struct{ s *Store }

func (r company) Info(context.Context) (domain.CompanyInfo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.info == nil {
		return domain.CompanyInfo{}, notFound("company.info", "company info")
	}
	info := *r.s.info
	info.Stats = append([]domain.HeroStat(nil), info.Stats...)
	return info, nil
}

func (r company) SaveInfo(_ context.Context, info domain.CompanyInfo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	info.Stats = append([]domain.HeroStat(nil), info.Stats...)
	info.UpdatedAt = stamp(info.UpdatedAt, r.s.now)
	r.s.info = &info
	return nil
}

func (r company) ListProfiles(context.Context) ([]domain.Company, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Company, 0, len(r.s.companies))
	for _, c := range r.s.companies {
		out = append(out, cloneCompany(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (r company) FindProfileBySlug(_ context.Context, slug string) (domain.Company, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.companies[slug]
	if !ok {
		return domain.Company{}, notFound("company.profile", "company "+slug)
	}
	return cloneCompany(c), nil
}

func (r company) SaveProfile(_ context.Context, c domain.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.companies[c.Slug]; ok && existing.ID != c.ID {
		return conflict("company.save", "company slug "+c.Slug)
	}
	for slug, existing := range r.s.companies {
		if existing.ID == c.ID && slug != c.Slug {
			delete(r.s.companies, slug)
		}
	}
	c.CreatedAt = stamp(c.CreatedAt, r.s.now)
	c.UpdatedAt = r.s.now().UTC()
	r.s.companies[c.Slug] = cloneCompany(c)
	return nil
}

func cloneCompany(c domain.Company) domain.Company {
	c.Services = append([]domain.CompanyService(nil), c.Services...)
	return c
}

type catalog struct{ s *Store }

func (r catalog) ListProducts(_ context.Context, filter repositories.ProductFilter) ([]domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if filter.ActiveOnly && !p.IsActive {
			continue
		}
		if filter.FeaturedOnly && !p.IsFeatured {
			continue
		}
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r catalog) FindProduct(_ context.Context, id string) (domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[strings.TrimSpace(id)]
	if !ok {
		return domain.Product{}, notFound("catalog.product", "product "+id)
	}
	return p, nil
}

func (r catalog) SaveProduct(_ context.Context, p domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.CreatedAt = stamp(p.CreatedAt, r.s.now)
	p.UpdatedAt = stamp(p.UpdatedAt, r.s.now)
	r.s.products[p.ID] = p
	return nil
}

func (r catalog) ListCategories(context.Context) ([]domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r catalog) SaveCategory(_ context.Context, c domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.categories[c.ID] = c
	return nil
}

func (r catalog) ListSuppliers(context.Context) ([]domain.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Supplier, 0, len(r.s.suppliers))
	for _, s := range r.s.suppliers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r catalog) SaveSupplier(_ context.Context, s domain.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.suppliers[s.ID] = s
	return nil
}

type contacts struct{ s *Store }

func (r contacts) Insert(_ context.Context, msg domain.ContactMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.contacts {
		if existing.ID == msg.ID {
			return conflict("contacts.insert", "contact message "+msg.ID)
		}
	}
	msg.CreatedAt = stamp(msg.CreatedAt, r.s.now)
	r.s.contacts = append(r.s.contacts, msg)
	return nil
}

func stamp(t time.Time, now func() time.Time) time.Time {
	if t.IsZero() {
		return now().UTC()
	}
	return t
}
