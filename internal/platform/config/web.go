package config

import (
	"net/url"
	"strings"
	"time"
)

const (
	defaultWebPort      = "3000"
	defaultSiteImage    = "/favicon.png"
	defaultCacheTTL     = 5 * time.Minute
	defaultAPITimeout   = 8 * time.Second
	defaultRedisDB      = 0
	defaultRedisPrefix  = "storefront:"
	defaultAPIBaseLocal = "http://localhost:8080/api"
)

// WebConfig captures storefront runtime configuration.
type WebConfig struct {
	Server ServerConfig
	Site   SiteConfig
	API    APIClientConfig
	Cache  CacheConfig
}

// SiteConfig holds the public site identity used for canonical URLs and default metadata.
type SiteConfig struct {
	URL                string
	DefaultTitle       string
	DefaultDescription string
	DefaultImage       string
}

// APIClientConfig points the storefront at the catalog API.
type APIClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// CacheConfig controls how API responses are cached by the storefront.
// An empty RedisAddr keeps the cache in process.
type CacheConfig struct {
	TTL       time.Duration
	RedisAddr string
	RedisDB   int
	KeyPrefix string
}

// LoadWeb assembles the storefront configuration using the same precedence rules as Load.
func LoadWeb(opts ...Option) (WebConfig, error) {
	lookup, err := newLookup(opts)
	if err != nil {
		return WebConfig{}, err
	}

	cfg := WebConfig{
		Server: serverConfig(lookup, "WEB", defaultWebPort),
		Site: SiteConfig{
			URL:                strings.TrimRight(stringWithDefault(lookup, "WEB_SITE_URL", ""), "/"),
			DefaultTitle:       stringWithDefault(lookup, "WEB_SITE_TITLE", ""),
			DefaultDescription: stringWithDefault(lookup, "WEB_SITE_DESCRIPTION", ""),
			DefaultImage:       stringWithDefault(lookup, "WEB_SITE_DEFAULT_IMAGE", defaultSiteImage),
		},
		API: APIClientConfig{
			BaseURL: strings.TrimRight(stringWithDefault(lookup, "WEB_API_BASE_URL", defaultAPIBaseLocal), "/"),
			Timeout: durationWithDefault(lookup, "WEB_API_TIMEOUT", defaultAPITimeout),
		},
		Cache: CacheConfig{
			TTL:       durationWithDefault(lookup, "WEB_CACHE_TTL", defaultCacheTTL),
			RedisAddr: stringWithDefault(lookup, "WEB_CACHE_REDIS_ADDR", ""),
			RedisDB:   intWithDefault(lookup, "WEB_CACHE_REDIS_DB", defaultRedisDB),
			KeyPrefix: stringWithDefault(lookup, "WEB_CACHE_KEY_PREFIX", defaultRedisPrefix),
		},
	}

	if err := validateWebConfig(cfg); err != nil {
		return WebConfig{}, err
	}
	return cfg, nil
}

func validateWebConfig(cfg WebConfig) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if !isHTTPURL(cfg.API.BaseURL) {
		missing = append(missing, "API.BaseURL")
	}
	if cfg.Site.URL != "" && !isHTTPURL(cfg.Site.URL) {
		missing = append(missing, "Site.URL")
	}
	if cfg.API.Timeout <= 0 {
		missing = append(missing, "API.Timeout")
	}
	if cfg.Cache.TTL < 0 {
		missing = append(missing, "Cache.TTL")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
