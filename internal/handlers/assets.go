package handlers

import (
	"context"
	"strings"
)

// AssetURLResolver resolves stored asset paths to publicly reachable URLs.
type AssetURLResolver interface {
	ResolveURL(ctx context.Context, path string) (string, error)
}

// AssetURLResolverFunc adapts a function to the AssetURLResolver interface.
type AssetURLResolverFunc func(ctx context.Context, path string) (string, error)

// ResolveURL implements AssetURLResolver.
func (fn AssetURLResolverFunc) ResolveURL(ctx context.Context, path string) (string, error) {
	if fn == nil {
		return path, nil
	}
	return fn(ctx, path)
}

// NewPublicStorageResolver serves relative paths from baseURL. Absolute and protocol-relative
// URLs are returned untouched.
func NewPublicStorageResolver(baseURL string) AssetURLResolver {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return AssetURLResolverFunc(func(_ context.Context, path string) (string, error) {
		p := strings.TrimSpace(path)
		if p == "" {
			return "", nil
		}
		lower := strings.ToLower(p)
		if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(p, "//") {
			return p, nil
		}
		return base + "/" + strings.TrimLeft(p, "/"), nil
	})
}

func resolveAsset(ctx context.Context, resolver AssetURLResolver, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	if resolver == nil {
		return path, nil
	}
	return resolver.ResolveURL(ctx, path)
}
