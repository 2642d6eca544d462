package seo

import (
	"net/http"
	"net/url"
	"strings"
)

// RequestURL reconstructs the absolute URL the client requested, honouring the
// X-Forwarded-Proto and X-Forwarded-Host headers set by the load balancer.
func RequestURL(r *http.Request) *url.URL {
	u := *r.URL
	u.Scheme = "http"
	if r.TLS != nil {
		u.Scheme = "https"
	}
	if proto := firstHeaderValue(r.Header.Get("X-Forwarded-Proto")); proto == "http" || proto == "https" {
		u.Scheme = proto
	}
	u.Host = r.Host
	if host := firstHeaderValue(r.Header.Get("X-Forwarded-Host")); host != "" {
		u.Host = host
	}
	return &u
}

func firstHeaderValue(v string) string {
	first, _, _ := strings.Cut(v, ",")
	return strings.ToLower(strings.TrimSpace(first))
}

// SiteOrigin returns scheme://host of the configured site URL, or of requestURL when the
// configured value is empty or not an absolute URL.
func SiteOrigin(configured string, requestURL *url.URL) string {
	if u, err := url.Parse(strings.TrimSpace(configured)); err == nil && u.Scheme != "" && u.Host != "" {
		return u.Scheme + "://" + u.Host
	}
	return requestOrigin(requestURL)
}

func requestOrigin(u *url.URL) string {
	if u == nil || u.Host == "" {
		return ""
	}
	return requestScheme(u) + "://" + u.Host
}

func requestScheme(u *url.URL) string {
	if u == nil || u.Scheme == "" {
		return "http"
	}
	return strings.ToLower(u.Scheme)
}

// CanonicalURL makes value absolute. http(s) URLs are kept, protocol-relative URLs take the
// request scheme, and anything else is a path resolved against siteOrigin (or the request
// origin when siteOrigin is empty). Trailing slashes are removed except for the root path.
// Blank input yields "".
func CanonicalURL(value, siteOrigin string, requestURL *url.URL) string {
	resolved := absoluteURL(value, siteOrigin, requestURL)
	if resolved == "" {
		return ""
	}
	return trimTrailingSlash(resolved)
}

// absoluteURL resolves value like CanonicalURL without touching trailing slashes.
func absoluteURL(value, siteOrigin string, requestURL *url.URL) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	lower := strings.ToLower(v)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return v
	}
	if strings.HasPrefix(v, "//") {
		return requestScheme(requestURL) + ":" + v
	}

	base := siteOrigin
	if base == "" {
		base = requestOrigin(requestURL)
	}
	if !strings.HasPrefix(v, "/") {
		v = "/" + v
	}
	baseURL, err := url.Parse(strings.TrimRight(base, "/") + "/")
	if err != nil {
		return v
	}
	ref, err := url.Parse(v)
	if err != nil {
		return v
	}
	return baseURL.ResolveReference(ref).String()
}

func trimTrailingSlash(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	if u.Path == "" || u.Path == "/" {
		return raw
	}
	trimmed := strings.TrimRight(u.Path, "/")
	if trimmed == "" {
		trimmed = "/"
	}
	u.Path = trimmed
	if u.RawPath != "" {
		u.RawPath = strings.TrimRight(u.RawPath, "/")
	}
	return u.String()
}
