package seo

import (
	"encoding/json"
	"html/template"
)

// JSONLD marshals v for embedding in a <script type="application/ld+json"> element.
// encoding/json escapes <, > and & so the payload cannot close the script early.
func JSONLD(v any) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return template.JS(b)
}

// Organization returns a minimal Organization schema.
func Organization(name, siteURL, logoURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     name,
	}
	if siteURL != "" {
		m["url"] = siteURL
	}
	if logoURL != "" {
		m["logo"] = logoURL
	}
	return m
}

// WebSite returns a WebSite schema with a SearchAction pointing at the product search.
func WebSite(name, siteURL, searchURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
	}
	if siteURL != "" {
		m["url"] = siteURL
	}
	if searchURL != "" {
		m["potentialAction"] = map[string]any{
			"@type":       "SearchAction",
			"target":      searchURL + "{search_term_string}",
			"query-input": "required name=search_term_string",
		}
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// Product returns a product schema; brand is the selling company.
func Product(name, description, pageURL, imageURL, sku, brand string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Product",
		"name":     name,
	}
	if description != "" {
		m["description"] = description
	}
	if pageURL != "" {
		m["url"] = pageURL
	}
	if imageURL != "" {
		m["image"] = imageURL
	}
	if sku != "" {
		m["sku"] = sku
	}
	if brand != "" {
		m["brand"] = map[string]any{"@type": "Brand", "name": brand}
	}
	return m
}

// LocalBusiness describes a company profile with its contact details.
func LocalBusiness(name, pageURL, logoURL, email, phone, address string) map[string]any {
	m := Organization(name, pageURL, logoURL)
	m["@type"] = "LocalBusiness"
	if email != "" {
		m["email"] = email
	}
	if phone != "" {
		m["telephone"] = phone
	}
	if address != "" {
		m["address"] = address
	}
	return m
}
