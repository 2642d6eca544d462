package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/absign/storefront/internal/repositories/memory"
	"github.com/absign/storefront/internal/repositories/seed"
	"github.com/absign/storefront/internal/services"
)

type apiFixture struct {
	router chi.Router
	store  *memory.Store
}

func newAPIFixture(t *testing.T) apiFixture {
	t.Helper()
	now := time.Date(2025, time.May, 2, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := memory.NewStore(memory.WithClock(clock))

	fx, err := seed.LoadFile("../repositories/seed/testdata/catalog.yaml")
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	if _, err := seed.Apply(context.Background(), store, fx); err != nil {
		t.Fatalf("apply fixture: %v", err)
	}

	catalog, err := services.NewCatalogService(services.CatalogServiceDeps{Repository: store.Catalog()})
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}
	company, err := services.NewCompanyService(services.CompanyServiceDeps{Repository: store.Company()})
	if err != nil {
		t.Fatalf("company service: %v", err)
	}
	entries, err := services.NewSeoEntryService(services.SeoEntryServiceDeps{Repository: store.SeoEntries(), Clock: clock})
	if err != nil {
		t.Fatalf("seo service: %v", err)
	}
	contact, err := services.NewContactService(services.ContactServiceDeps{
		Repository: store.Contacts(),
		Clock:      clock,
		IDGen:      func() string { return "01HZCONTACT" },
	})
	if err != nil {
		t.Fatalf("contact service: %v", err)
	}

	public := NewPublicHandlers(
		WithPublicCatalogService(catalog),
		WithPublicCompanyService(company),
		WithPublicSeoEntryService(entries),
		WithPublicContactService(contact),
		WithPublicAssetResolver(NewPublicStorageResolver("https://cdn.test/storage")),
	)
	router := NewRouter(
		WithHealthHandlers(NewHealthHandlers(WithHealthRepository(store.Health()), WithHealthClock(clock))),
		WithPublicRoutes(public.Routes),
		WithAdminRoutes(NewAdminSeoHandlers(entries).Routes),
	)
	return apiFixture{router: router, store: store}
}

func (f apiFixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
	return out
}

func TestRouter_HealthAndNotFound(t *testing.T) {
	f := newAPIFixture(t)

	if rr := f.do(t, http.MethodGet, "/healthz", ""); rr.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", rr.Code)
	}
	rr := f.do(t, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("readyz: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	ready := decodeBody[map[string]any](t, rr)
	if ready["status"] != "ok" {
		t.Fatalf("expected ok readiness, got %v", ready["status"])
	}

	rr = f.do(t, http.MethodGet, "/api/nope", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	errBody := decodeBody[map[string]any](t, rr)
	if errBody["error"] != errorNotFoundCode {
		t.Fatalf("expected %s, got %v", errorNotFoundCode, errBody["error"])
	}
}

func TestPublicHandlers_ListProducts(t *testing.T) {
	f := newAPIFixture(t)

	rr := f.do(t, http.MethodGet, "/api/products", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if cc := rr.Header().Get("Cache-Control"); cc != catalogCacheControl {
		t.Fatalf("unexpected cache-control %q", cc)
	}
	body := decodeBody[productListResponse](t, rr)
	if len(body.Data) != 2 {
		t.Fatalf("expected two active products, got %d", len(body.Data))
	}
	if body.Data[0].SKU != "LED-3C" || body.Data[1].SKU != "OR-651" {
		t.Fatalf("expected name ordering, got %s, %s", body.Data[0].SKU, body.Data[1].SKU)
	}
	vinyl := body.Data[1]
	if vinyl.Description != "Permanent glossy vinyl." {
		t.Fatalf("unexpected plain description %q", vinyl.Description)
	}
	if vinyl.DescriptionHTML != "<p>Permanent <strong>glossy</strong> vinyl.</p>" {
		t.Fatalf("unexpected description html %q", vinyl.DescriptionHTML)
	}
	if vinyl.ImageURL != "https://cdn.test/storage/products/oracal-651.jpg" {
		t.Fatalf("unexpected image url %q", vinyl.ImageURL)
	}
	if vinyl.CategoryName != "Vinyl" || vinyl.SupplierName != "Orafol" {
		t.Fatalf("expected resolved names, got %q / %q", vinyl.CategoryName, vinyl.SupplierName)
	}
	if body.Meta.Total != 2 || body.Meta.LastPage != 1 || body.Meta.PerPage != 12 {
		t.Fatalf("unexpected meta %+v", body.Meta)
	}
	if body.Links.Next != nil || body.Links.Prev != nil {
		t.Fatalf("single page should not link onwards: %+v", body.Links)
	}

	rr = f.do(t, http.MethodGet, "/api/products?featured=1", "")
	body = decodeBody[productListResponse](t, rr)
	if len(body.Data) != 1 || body.Data[0].ID != "prod-651" {
		t.Fatalf("featured filter: got %+v", body.Data)
	}

	rr = f.do(t, http.MethodGet, "/api/products?featured=false", "")
	body = decodeBody[productListResponse](t, rr)
	if len(body.Data) != 1 || body.Data[0].ID != "prod-led-3" {
		t.Fatalf("non-featured filter: got %+v", body.Data)
	}

	rr = f.do(t, http.MethodGet, "/api/products?per_page=1&page=1", "")
	body = decodeBody[productListResponse](t, rr)
	if body.Meta.LastPage != 2 || body.Links.Next == nil || !strings.Contains(*body.Links.Next, "page=2") {
		t.Fatalf("expected link to page 2, got meta %+v links %+v", body.Meta, body.Links)
	}

	if rr := f.do(t, http.MethodGet, "/api/products?page=zero", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid page, got %d", rr.Code)
	}
}

func TestPublicHandlers_ProductAndCategories(t *testing.T) {
	f := newAPIFixture(t)

	rr := f.do(t, http.MethodGet, "/api/products/prod-retired", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("inactive product lookup: expected 200, got %d", rr.Code)
	}
	if p := decodeBody[productPayload](t, rr); p.IsActive {
		t.Fatalf("expected inactive product payload, got %+v", p)
	}

	if rr := f.do(t, http.MethodGet, "/api/products/missing", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}

	rr = f.do(t, http.MethodGet, "/api/categories", "")
	cats := decodeBody[struct {
		Data []categoryPayload `json:"data"`
	}](t, rr)
	if len(cats.Data) != 2 || cats.Data[0].Name != "LED Modules" || cats.Data[0].ProductsCount != 1 {
		t.Fatalf("unexpected categories %+v", cats.Data)
	}
}

func TestPublicHandlers_Company(t *testing.T) {
	f := newAPIFixture(t)

	rr := f.do(t, http.MethodGet, "/api/company", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	info := decodeBody[companyInfoPayload](t, rr)
	if info.SiteName != "AB Sign Supplies" || info.LogoURL != "https://cdn.test/storage/company/logo.png" {
		t.Fatalf("unexpected company info %+v", info)
	}
	if info.Hero.PrimaryCTA.URL != "/products" || len(info.Hero.Stats) != 3 {
		t.Fatalf("unexpected hero %+v", info.Hero)
	}

	rr = f.do(t, http.MethodGet, "/api/company-profiles", "")
	list := decodeBody[struct {
		Data []companySummaryPayload `json:"data"`
	}](t, rr)
	if len(list.Data) != 2 || list.Data[0].Slug != "print-wrap" || list.Data[1].Slug != "ab-signworks" {
		t.Fatalf("unexpected profile ordering %+v", list.Data)
	}
	if list.Data[1].LogoURL != defaultProfileLogoURL {
		t.Fatalf("expected fallback logo, got %q", list.Data[1].LogoURL)
	}

	rr = f.do(t, http.MethodGet, "/api/company-profiles/ab-signworks", "")
	profile := decodeBody[companyProfilePayload](t, rr)
	if len(profile.Services) != 2 || profile.Services[0].Title != "Design" {
		t.Fatalf("expected services ordered by sort order, got %+v", profile.Services)
	}
	if profile.Contact.Email != "works@absign.example" {
		t.Fatalf("unexpected contact %+v", profile.Contact)
	}

	if rr := f.do(t, http.MethodGet, "/api/company-profiles/unknown", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestPublicHandlers_SeoEntry(t *testing.T) {
	f := newAPIFixture(t)

	rr := f.do(t, http.MethodGet, "/api/seo/homepage", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var entry struct {
		Slug      string              `json:"slug"`
		Canonical *string             `json:"canonical_url"`
		Meta      []map[string]string `json:"meta"`
		OpenGraph struct {
			Title    *string `json:"title"`
			ImageURL *string `json:"image_url"`
		} `json:"open_graph"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry.Slug != "homepage" || entry.Canonical != nil {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if len(entry.Meta) != 2 || entry.Meta[0]["name"] != "robots" || entry.Meta[1]["property"] != "og:locale" {
		t.Fatalf("unexpected meta %+v", entry.Meta)
	}
	if _, ok := entry.Meta[0]["property"]; ok {
		t.Fatalf("absent discriminants should be omitted: %+v", entry.Meta[0])
	}
	if entry.OpenGraph.Title != nil || entry.OpenGraph.ImageURL == nil || *entry.OpenGraph.ImageURL != "https://cdn.test/storage/seo/home-og.jpg" {
		t.Fatalf("unexpected open graph block %+v", entry.OpenGraph)
	}

	rr = f.do(t, http.MethodGet, "/api/seo/missing", "")
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != "null" {
		t.Fatalf("expected 200 null, got %d %q", rr.Code, rr.Body.String())
	}
}

func TestPublicHandlers_Contact(t *testing.T) {
	f := newAPIFixture(t)

	rr := f.do(t, http.MethodPost, "/api/contact", `{"email":"nope"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	invalid := decodeBody[struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}](t, rr)
	if invalid.Message != "Please provide your name." {
		t.Fatalf("expected first field message, got %q", invalid.Message)
	}
	for _, field := range []string{"name", "email", "phone", "message"} {
		if len(invalid.Errors[field]) == 0 {
			t.Fatalf("expected error for %s, got %+v", field, invalid.Errors)
		}
	}

	if rr := f.do(t, http.MethodPost, "/api/contact", `{"name":`); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed json, got %d", rr.Code)
	}

	rr = f.do(t, http.MethodPost, "/api/contact", `{"name":"Dana","email":"dana@example.com","phone":"+1 555 010 2200","product":"OR-651","message":"Need 10 rolls."}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	created := decodeBody[struct {
		Message string            `json:"message"`
		Data    map[string]string `json:"data"`
	}](t, rr)
	if created.Message != contactThanksMessage || created.Data["id"] != "01HZCONTACT" {
		t.Fatalf("unexpected response %+v", created)
	}
	if msgs := f.store.ContactMessages(); len(msgs) != 1 || msgs[0].Product != "OR-651" {
		t.Fatalf("expected stored message, got %+v", msgs)
	}
}

func TestAdminSeoHandlers_Lifecycle(t *testing.T) {
	f := newAPIFixture(t)

	body := `{
		"title": "Contact AB Sign Supplies",
		"canonical_url": "/contact",
		"extra_meta": [
			{"attribute": "property", "attribute_value": "og:type", "content": "website"},
			{"attribute": "name", "attribute_value": "robots", "content": ""}
		]
	}`
	rr := f.do(t, http.MethodPut, "/api/admin/seo-entries/contact", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("save: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	saved := decodeBody[seoEntryFormPayload](t, rr)
	if saved.Slug != "contact" || len(saved.ExtraMeta) != 1 || saved.ExtraMeta[0].AttributeValue != "og:type" {
		t.Fatalf("unexpected saved entry %+v", saved)
	}

	rr = f.do(t, http.MethodPut, "/api/admin/seo-entries/contact", `{"slug":"Bad Slug!"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid slug: expected 422, got %d", rr.Code)
	}

	rr = f.do(t, http.MethodPut, "/api/admin/seo-entries/contact", `{"slug":"about"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("rename onto taken slug: expected 409, got %d", rr.Code)
	}

	if rr := f.do(t, http.MethodDelete, "/api/admin/seo-entries/contact", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rr.Code)
	}
	rr = f.do(t, http.MethodGet, "/api/seo/contact", "")
	if strings.TrimSpace(rr.Body.String()) != "null" {
		t.Fatalf("trashed entry should not be public, got %q", rr.Body.String())
	}

	rr = f.do(t, http.MethodGet, "/api/admin/seo-entries?trashed=only", "")
	trashed := decodeBody[struct {
		Data []seoEntryFormPayload `json:"data"`
	}](t, rr)
	if len(trashed.Data) != 1 || trashed.Data[0].DeletedAt == nil {
		t.Fatalf("expected one trashed entry, got %+v", trashed.Data)
	}

	rr = f.do(t, http.MethodPost, "/api/admin/seo-entries/contact/restore", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("restore: expected 200, got %d", rr.Code)
	}
	if restored := decodeBody[seoEntryFormPayload](t, rr); restored.DeletedAt != nil {
		t.Fatalf("expected restored entry, got %+v", restored)
	}

	if rr := f.do(t, http.MethodGet, "/api/admin/seo-entries?trashed=maybe", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown trashed filter, got %d", rr.Code)
	}
	if rr := f.do(t, http.MethodDelete, "/api/admin/seo-entries/contact/force", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("force delete: expected 204, got %d", rr.Code)
	}
	if rr := f.do(t, http.MethodGet, "/api/admin/seo-entries/contact", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after force delete, got %d", rr.Code)
	}
}
