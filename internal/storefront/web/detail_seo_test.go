package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/absign/storefront/internal/handlers"
	"github.com/absign/storefront/internal/repositories/memory"
	"github.com/absign/storefront/internal/seo"
	"github.com/absign/storefront/internal/seoform"
	"github.com/absign/storefront/internal/services"
	"github.com/absign/storefront/internal/storefront/apiclient"
)

func TestDetailPagesResolveEntriesSavedByAdmin(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	entries, err := services.NewSeoEntryService(services.SeoEntryServiceDeps{Repository: store.SeoEntries()})
	require.NoError(t, err)

	const productID = "01M4YWGESQ7T0Q49KRNRK7YENP"
	_, err = entries.Save(ctx, services.SaveSeoEntryCommand{Form: services.SeoEntryForm{
		Slug:         detailSlug(slugProductDetail, productID),
		TwitterTitle: "Oracal 651 on sale",
		CanonicalURL: "/products/" + productID,
		ExtraMeta:    []seoform.Row{{Attribute: seoform.AttributeName, AttributeValue: "robots", Content: "noindex"}},
	}})
	require.NoError(t, err)
	_, err = entries.Save(ctx, services.SaveSeoEntryCommand{Form: services.SeoEntryForm{
		Slug:    detailSlug(slugCompanyDetail, "ab-signworks"),
		OGTitle: "AB Signworks | Fabrication",
	}})
	require.NoError(t, err)

	public := handlers.NewPublicHandlers(handlers.WithPublicSeoEntryService(entries))
	api := httptest.NewServer(handlers.NewRouter(handlers.WithPublicRoutes(public.Routes)))
	t.Cleanup(api.Close)

	catalog := &fakeCatalog{
		products: []apiclient.Product{{ID: productID, Name: "Oracal 651"}},
		profiles: []apiclient.CompanyProfile{{
			CompanySummary: apiclient.CompanySummary{Slug: "ab-signworks", Name: "AB Signworks"},
		}},
	}
	resolver := seo.NewResolver(seo.Site{URL: "https://absign.example"}, apiclient.New(api.URL+"/api"))
	srv, err := New(Deps{Catalog: catalog, Resolver: resolver})
	require.NoError(t, err)
	h := srv.Routes()

	rr, doc := get(t, h, "/products/"+productID)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "Oracal 651", doc.Find("head title").Text())
	require.Equal(t, "Oracal 651 on sale", metaContent(doc, `meta[name="twitter:title"]`))
	require.Equal(t, "noindex", metaContent(doc, `meta[name="robots"]`))
	canonical, _ := doc.Find(`link[rel="canonical"]`).Attr("href")
	require.Equal(t, "https://absign.example/products/"+productID, canonical)

	rr, doc = get(t, h, "/our-companies/ab-signworks")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "AB Signworks | Fabrication", metaContent(doc, `meta[property="og:title"]`))
}
