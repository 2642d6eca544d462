package pagination

import (
	"errors"
	"net/url"
	"testing"
)

func TestParseDefaultsAndClamp(t *testing.T) {
	params, err := Parse(url.Values{}, Options{})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if params.Page != 1 || params.PerPage != DefaultPerPage {
		t.Fatalf("unexpected defaults %+v", params)
	}

	params, err = Parse(url.Values{"page": {"3"}, "per_page": {"500"}}, Options{})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if params.Page != 3 || params.PerPage != DefaultMaxPerPage {
		t.Fatalf("expected clamped per_page, got %+v", params)
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	if _, err := Parse(url.Values{"page": {"0"}}, Options{}); !errors.Is(err, ErrInvalidPage) {
		t.Fatalf("expected ErrInvalidPage, got %v", err)
	}
	if _, err := Parse(url.Values{"per_page": {"abc"}}, Options{}); !errors.Is(err, ErrInvalidPerPage) {
		t.Fatalf("expected ErrInvalidPerPage, got %v", err)
	}
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, meta := Slice(items, Params{Page: 2, PerPage: 2})
	if len(page) != 2 || page[0] != 3 {
		t.Fatalf("unexpected page %v", page)
	}
	if meta.LastPage != 3 || meta.Total != 5 || meta.CurrentPage != 2 {
		t.Fatalf("unexpected meta %+v", meta)
	}

	page, meta = Slice(items, Params{Page: 9, PerPage: 2})
	if len(page) != 0 || meta.LastPage != 3 {
		t.Fatalf("expected empty page past the end, got %v %+v", page, meta)
	}

	_, meta = Slice([]int{}, Params{Page: 1, PerPage: 12})
	if meta.LastPage != 1 {
		t.Fatalf("expected last page 1 for empty results, got %d", meta.LastPage)
	}
}
