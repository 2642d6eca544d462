package services

import (
	"context"
	"errors"
	"testing"

	domain "github.com/absign/storefront/internal/domain"
	"github.com/absign/storefront/internal/repositories/memory"
)

func TestCompanyService_InfoAppliesHeroDefaults(t *testing.T) {
	store := memory.NewStore()
	svc, err := NewCompanyService(CompanyServiceDeps{Repository: store.Company()})
	if err != nil {
		t.Fatalf("NewCompanyService: %v", err)
	}
	ctx := context.Background()

	if _, err := svc.Info(ctx); !errors.Is(err, ErrCompanyInfoNotFound) {
		t.Fatalf("expected not found before seeding, got %v", err)
	}

	if err := store.Company().SaveInfo(ctx, domain.CompanyInfo{
		SiteName:   "New Brand",
		PrimaryCTA: domain.CallToAction{URL: "/catalog"},
		Stats:      []domain.HeroStat{{Label: "Years", Value: "25"}, {}},
	}); err != nil {
		t.Fatalf("SaveInfo: %v", err)
	}
	info, err := svc.Info(ctx)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.SiteName != "New Brand" || info.Tagline != "" {
		t.Fatalf("unexpected identity %+v", info)
	}
	if info.HeroHeadline != DefaultHeroHeadline || info.PrimaryCTA.Label != DefaultPrimaryCTALabel {
		t.Fatalf("expected hero defaults, got %+v", info.CompanyInfo)
	}
	if info.PrimaryCTA.URL != "/catalog" || info.SecondaryCTA.URL != DefaultSecondaryCTAURL {
		t.Fatalf("unexpected cta urls %+v %+v", info.PrimaryCTA, info.SecondaryCTA)
	}
	if len(info.Stats) != 1 {
		t.Fatalf("expected blank stats dropped, got %+v", info.Stats)
	}
}

func TestCompanyService_ProfilesOrdering(t *testing.T) {
	store := memory.NewStore()
	svc, err := NewCompanyService(CompanyServiceDeps{Repository: store.Company()})
	if err != nil {
		t.Fatalf("NewCompanyService: %v", err)
	}
	ctx := context.Background()

	for _, c := range []domain.Company{
		{Name: "Beta Signage", SortOrder: 1},
		{Name: "Display Pros", SortOrder: 0},
		{Name: "Alpha Lighting", SortOrder: 1, Services: []domain.CompanyService{
			{Title: "Design Consulting", SortOrder: 1},
			{Title: "Installation", SortOrder: 0},
		}},
	} {
		if _, err := svc.SaveProfile(ctx, c); err != nil {
			t.Fatalf("SaveProfile: %v", err)
		}
	}

	profiles, err := svc.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	var names []string
	for _, p := range profiles {
		names = append(names, p.Name)
	}
	want := []string{"Display Pros", "Alpha Lighting", "Beta Signage"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}

	detail, err := svc.GetProfile(ctx, "alpha-lighting")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if detail.Services[0].Title != "Installation" || detail.Services[1].Title != "Design Consulting" {
		t.Fatalf("expected services ordered by sort_order, got %+v", detail.Services)
	}
	if _, err := svc.GetProfile(ctx, "nope"); !errors.Is(err, ErrCompanyNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.SaveProfile(ctx, domain.Company{Name: "  "}); !errors.Is(err, ErrCompanyInvalidInput) {
		t.Fatalf("expected invalid input for blank name, got %v", err)
	}
}
