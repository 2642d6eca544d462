package handlers

import (
	"context"
	"testing"
)

func TestPublicStorageResolver(t *testing.T) {
	resolver := NewPublicStorageResolver("https://cdn.example.com/storage/")
	cases := map[string]string{
		"":                              "",
		"products/651.jpg":              "https://cdn.example.com/storage/products/651.jpg",
		"/logos/ab.svg":                 "https://cdn.example.com/storage/logos/ab.svg",
		"https://img.example.org/a.png": "https://img.example.org/a.png",
		"//static.example.org/b.png":    "//static.example.org/b.png",
	}
	for in, want := range cases {
		got, err := resolver.ResolveURL(context.Background(), in)
		if err != nil {
			t.Fatalf("resolve %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("resolve %q: expected %q, got %q", in, want, got)
		}
	}
}
