package pagination

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultPerPage is used when the client omits per_page.
	DefaultPerPage = 12
	// DefaultMaxPerPage caps per_page to prevent unbounded listings.
	DefaultMaxPerPage = 50
)

var (
	ErrInvalidPage    = errors.New("pagination: invalid page")
	ErrInvalidPerPage = errors.New("pagination: invalid per_page")
)

// Params captures page-number pagination parsed from a query string.
type Params struct {
	Page    int
	PerPage int
}

// Options control Parse defaults.
type Options struct {
	DefaultPerPage int
	MaxPerPage     int
}

// Meta describes a page of results in the shape list endpoints return.
type Meta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// Parse reads page and per_page. Values above the cap are clamped rather than rejected;
// non-numeric or non-positive values are errors.
func Parse(values url.Values, opts Options) (Params, error) {
	if opts.DefaultPerPage <= 0 {
		opts.DefaultPerPage = DefaultPerPage
	}
	if opts.MaxPerPage <= 0 {
		opts.MaxPerPage = DefaultMaxPerPage
	}

	params := Params{Page: 1, PerPage: opts.DefaultPerPage}
	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return Params{}, ErrInvalidPage
		}
		params.Page = page
	}
	if raw := strings.TrimSpace(values.Get("per_page")); raw != "" {
		perPage, err := strconv.Atoi(raw)
		if err != nil || perPage < 1 {
			return Params{}, ErrInvalidPerPage
		}
		params.PerPage = min(perPage, opts.MaxPerPage)
	}
	return params, nil
}

// Offset returns the zero-based index of the first item on the page.
func (p Params) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// Slice returns the items of the page along with its Meta.
func Slice[T any](items []T, p Params) ([]T, Meta) {
	total := len(items)
	meta := Meta{CurrentPage: p.Page, PerPage: p.PerPage, Total: total, LastPage: 1}
	if p.PerPage > 0 && total > 0 {
		meta.LastPage = (total + p.PerPage - 1) / p.PerPage
	}
	start := p.Offset()
	if start >= total {
		return []T{}, meta
	}
	end := min(start+p.PerPage, total)
	return items[start:end], meta
}
