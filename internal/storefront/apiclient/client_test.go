package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/absign/storefront/internal/platform/cache"
)

type fakeAPI struct {
	server *httptest.Server
	hits   map[string]*atomic.Int32
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{hits: map[string]*atomic.Int32{}}
	routes := map[string]func(w http.ResponseWriter, r *http.Request){
		"/api/company": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"site_name":"AB Sign Supplies","logo_url":"https://cdn.test/logo.png","hero":{"headline":"Hi"}}`))
		},
		"/api/seo/about": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"slug":"about","title":"About us","description":null,"canonical_url":"/about","meta":[{"name":"robots","content":"noindex"}],"open_graph":{"title":null,"description":null,"image_url":null},"twitter":{"title":null,"description":null,"image_url":null}}`))
		},
		"/api/seo/missing": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("null"))
		},
		"/api/products": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") == "2" {
				_, _ = w.Write([]byte(`{"data":[{"id":"p3","name":"Third","updated_at":"2025-01-03T00:00:00Z"}],"meta":{"current_page":2,"last_page":2,"per_page":2,"total":3}}`))
				return
			}
			_, _ = w.Write([]byte(`{"data":[{"id":"p1","name":"First"},{"id":"p2","name":"Second","created_at":"2025-01-02T00:00:00Z"}],"meta":{"current_page":1,"last_page":2,"per_page":2,"total":3}}`))
		},
		"/api/contact": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"Please provide your name.","errors":{"name":["Please provide your name."]}}`))
		},
		"/api/broken": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
	}
	for path := range routes {
		api.hits[path] = &atomic.Int32{}
	}
	api.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		api.hits[r.URL.Path].Add(1)
		handler(w, r)
	}))
	t.Cleanup(api.server.Close)
	return api
}

func TestClient_CompanyIsCached(t *testing.T) {
	api := newFakeAPI(t)
	client := New(api.server.URL+"/api", WithCache(cache.NewMemory(), time.Minute))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		company, err := client.Company(ctx)
		require.NoError(t, err)
		require.NotNil(t, company)
		require.Equal(t, "AB Sign Supplies", company.SiteName)
		require.Equal(t, "https://cdn.test/logo.png", company.LogoURL)
	}
	require.EqualValues(t, 1, api.hits["/api/company"].Load())

	info, err := client.CompanyInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, "Hi", info.Hero.Headline)
}

func TestClient_SeoEntry(t *testing.T) {
	api := newFakeAPI(t)
	client := New(api.server.URL + "/api")
	ctx := context.Background()

	entry, err := client.SeoEntry(ctx, "about")
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.Equal(t, "About us", *entry.Title)
	require.Nil(t, entry.Description)
	require.Len(t, entry.Meta, 1)

	entry, err = client.SeoEntry(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, entry)

	entry, err = client.SeoEntry(ctx, "unknown")
	require.NoError(t, err)
	require.Nil(t, entry)

	_, _ = client.SeoEntry(ctx, "missing")
	require.EqualValues(t, 1, api.hits["/api/seo/missing"].Load(), "absent entries are cached too")

	require.NoError(t, client.InvalidateSeoEntry(ctx, "about"))
	_, err = client.SeoEntry(ctx, "about")
	require.NoError(t, err)
	require.EqualValues(t, 2, api.hits["/api/seo/about"].Load())
}

func TestClient_ProductsAndErrors(t *testing.T) {
	api := newFakeAPI(t)
	client := New(api.server.URL + "/api")
	ctx := context.Background()

	page, err := client.Products(ctx, ProductQuery{Page: 2, PerPage: 2})
	require.NoError(t, err)
	require.Equal(t, 2, page.Meta.CurrentPage)
	require.Len(t, page.Data, 1)
	require.Equal(t, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), page.Data[0].LastModified())

	_, err = client.Product(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = client.get(ctx, "broken", nil)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusBadGateway, statusErr.Status)

	_, err = client.SubmitContact(ctx, ContactForm{})
	verr, ok := IsValidation(err)
	require.True(t, ok)
	require.Equal(t, "Please provide your name.", verr.First("name"))
	require.Empty(t, verr.First("email"))
}

func TestClient_NotConfigured(t *testing.T) {
	client := New("")
	_, err := client.Products(context.Background(), ProductQuery{})
	require.ErrorIs(t, err, ErrNotConfigured)
}
