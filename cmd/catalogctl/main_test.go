package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/absign/storefront/internal/handlers"
	"github.com/absign/storefront/internal/repositories/memory"
	"github.com/absign/storefront/internal/repositories/seed"
	"github.com/absign/storefront/internal/services"
)

const fixturePath = "../../internal/repositories/seed/testdata/catalog.yaml"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func newCatalogAPI(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	fx, err := seed.LoadFile(fixturePath)
	require.NoError(t, err)
	_, err = seed.Apply(ctx, store, fx)
	require.NoError(t, err)

	company, err := services.NewCompanyService(services.CompanyServiceDeps{Repository: store.Company()})
	require.NoError(t, err)
	entries, err := services.NewSeoEntryService(services.SeoEntryServiceDeps{Repository: store.SeoEntries()})
	require.NoError(t, err)
	public := handlers.NewPublicHandlers(
		handlers.WithPublicCompanyService(company),
		handlers.WithPublicSeoEntryService(entries),
		handlers.WithPublicAssetResolver(handlers.NewPublicStorageResolver("https://cdn.test/storage")),
	)
	srv := httptest.NewServer(handlers.NewRouter(handlers.WithPublicRoutes(public.Routes)))
	t.Cleanup(srv.Close)
	return srv
}

func TestSeedDryRun(t *testing.T) {
	out, err := execute(t, "seed", "--file", fixturePath, "--dry-run")
	require.NoError(t, err)
	require.Equal(t, "seeded 2 companies, 2 categories, 1 suppliers, 3 products, 2 seo entries\n", out)
}

func TestSeedRequiresFile(t *testing.T) {
	_, err := execute(t, "seed", "--dry-run")
	require.Error(t, err)

	_, err = execute(t, "seed", "--file", "testdata/missing.yaml", "--dry-run")
	require.Error(t, err)
}

func TestSeoResolveUsesStoredEntry(t *testing.T) {
	api := newCatalogAPI(t)

	out, err := execute(t, "seo", "resolve",
		"--api", api.URL+"/api",
		"--site", "https://absign.example",
		"--path", "/about/",
		"--slug", "about",
	)
	require.NoError(t, err)
	require.Contains(t, out, "<title>About AB Sign Supplies</title>")
	require.Contains(t, out, `href="https://absign.example/about"`)
	require.Contains(t, out, `name="twitter:title" content="Meet the team"`)
}

func TestSeoResolveOverrides(t *testing.T) {
	api := newCatalogAPI(t)

	out, err := execute(t, "seo", "resolve",
		"--api", api.URL+"/api",
		"--site", "https://absign.example",
		"--path", "products/prod-651",
		"--title", "Oracal 651",
		"--description", "  ",
	)
	require.NoError(t, err)
	require.Contains(t, out, "<title>Oracal 651</title>")
	require.Contains(t, out, `href="https://absign.example/products/prod-651"`)
	require.NotContains(t, out, `content="  "`)
}

func TestSeoResolveRejectsBadSite(t *testing.T) {
	_, err := execute(t, "seo", "resolve", "--site", "not a url", "--path", "/")
	require.Error(t, err)
}

func writeEnvFile(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line + "\n")
	}
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func TestSeoResolveUsesConfiguredDefaults(t *testing.T) {
	api := newCatalogAPI(t)
	env := writeEnvFile(t,
		"WEB_API_BASE_URL="+api.URL+"/api",
		"WEB_SITE_URL=https://absign.example",
		"WEB_SITE_DESCRIPTION=Sign supplies for professionals.",
	)

	out, err := execute(t, "seo", "resolve", "--env-file", env, "--path", "/contact")
	require.NoError(t, err)
	require.Contains(t, out, `name="description" content="Sign supplies for professionals."`)
	require.Contains(t, out, `href="https://absign.example/contact"`)
}

func TestSeoInspect(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/about" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<!doctype html><html><head>
<title>About AB Sign Supplies</title>
<meta name="description" content="Meet the team">
<meta property="og:image" content="https://cdn.test/seo/about.jpg">
<link rel="canonical" href="https://absign.example/about">
</head><body><h1>About</h1></body></html>`)
	}))
	t.Cleanup(page.Close)

	out, err := execute(t, "seo", "inspect", page.URL+"/about")
	require.NoError(t, err)
	require.Equal(t, "title\tAbout AB Sign Supplies\n"+
		"canonical\thttps://absign.example/about\n"+
		"name:description\tMeet the team\n"+
		"property:og:image\thttps://cdn.test/seo/about.jpg\n", out)

	out, err = execute(t, "seo", "inspect", page.URL+"/about", "--key", "property:og:image")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.test/seo/about.jpg\n", out)

	_, err = execute(t, "seo", "inspect", page.URL+"/about", "--key", "name:robots")
	require.Error(t, err)

	_, err = execute(t, "seo", "inspect", page.URL+"/missing")
	require.Error(t, err)
}

func TestSeoInvalidateRequiresSlugAndCache(t *testing.T) {
	env := writeEnvFile(t, "WEB_CACHE_REDIS_ADDR=")

	_, err := execute(t, "seo", "invalidate", "--env-file", env)
	require.ErrorContains(t, err, "--slug")

	_, err = execute(t, "seo", "invalidate", "--env-file", env, "--slug", "about")
	require.ErrorContains(t, err, "no shared cache")
}

func TestSeoInvalidateDropsSharedEntry(t *testing.T) {
	addr := os.Getenv("STOREFRONT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("STOREFRONT_TEST_REDIS_ADDR not set")
	}
	env := writeEnvFile(t, "WEB_CACHE_KEY_PREFIX=test:"+t.Name()+":")

	out, err := execute(t, "seo", "invalidate", "--env-file", env, "--redis", addr, "--slug", "about", "--slug", "homepage")
	require.NoError(t, err)
	require.Equal(t, "invalidated about\ninvalidated homepage\n", out)
}
