package seo

import (
	"net/url"

	"github.com/absign/storefront/internal/platform/textutil"
)

const (
	fallbackTitle       = "AB Sign Supplies"
	fallbackDescription = "Your complete source for signage supplies, products, and services."
)

// Site is the storefront's configured identity.
type Site struct {
	URL                string
	DefaultTitle       string
	DefaultDescription string
	DefaultImage       string
}

// DefaultLayer builds the lowest-precedence layer. The title comes from the company site name,
// then the configured title, then a built-in name; the image is the company logo or the
// configured default image; the canonical URL is the request path and query.
func DefaultLayer(site Site, company *Company, requestURL *url.URL) Partial {
	var siteName, logo string
	if company != nil {
		siteName, logo = company.SiteName, company.LogoURL
	}

	layer := Partial{
		Title:        Value(textutil.FirstNonEmpty(siteName, site.DefaultTitle, fallbackTitle)),
		Description:  Value(textutil.FirstNonEmpty(site.DefaultDescription, fallbackDescription)),
		CanonicalURL: Value(requestPath(requestURL)),
	}
	if image := textutil.FirstNonEmpty(logo, site.DefaultImage); image != "" {
		layer.OpenGraph.ImageURL = Value(image)
	}
	return layer
}

func requestPath(u *url.URL) string {
	if u == nil {
		return "/"
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return path
}
