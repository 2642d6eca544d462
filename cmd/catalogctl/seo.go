package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"

	"github.com/absign/storefront/internal/platform/cache"
	"github.com/absign/storefront/internal/platform/config"
	"github.com/absign/storefront/internal/seo"
	"github.com/absign/storefront/internal/storefront/apiclient"
)

type resolveOptions struct {
	envFile     string
	api         string
	site        string
	path        string
	slug        string
	title       string
	description string
	image       string
	timeout     time.Duration
}

func newSeoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seo",
		Short: "Inspect SEO metadata",
	}
	cmd.AddCommand(newResolveCmd(), newInspectCmd(), newInvalidateCmd())
	return cmd
}

func newResolveCmd() *cobra.Command {
	opts := resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the head tags the storefront would render for a page",
		Long: `Resolve a page's metadata against the catalog API the same way the storefront does:
defaults from the storefront configuration (WEB_SITE_*) and the company info, then the stored
entry for --slug, then the overrides given on the command line. Blank overrides are ignored.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file with storefront settings")
	flags.StringVar(&opts.api, "api", "", "catalog API base URL (default WEB_API_BASE_URL)")
	flags.StringVar(&opts.site, "site", "", "public site URL used for canonical links (default WEB_SITE_URL)")
	flags.StringVar(&opts.path, "path", "/", "request path, optionally with a query string")
	flags.StringVar(&opts.slug, "slug", "", "stored entry slug")
	flags.StringVar(&opts.title, "title", "", "title override")
	flags.StringVar(&opts.description, "description", "", "description override")
	flags.StringVar(&opts.image, "image", "", "Open Graph image override")
	flags.DurationVar(&opts.timeout, "timeout", 0, "API request timeout (default WEB_API_TIMEOUT)")
	return cmd
}

func runResolve(cmd *cobra.Command, opts resolveOptions) error {
	cfg, err := config.LoadWeb(config.WithEnvFile(opts.envFile))
	if err != nil {
		return err
	}
	site := seo.Site{
		URL:                firstFlag(opts.site, cfg.Site.URL),
		DefaultTitle:       cfg.Site.DefaultTitle,
		DefaultDescription: cfg.Site.DefaultDescription,
		DefaultImage:       cfg.Site.DefaultImage,
	}
	timeout := cfg.API.Timeout
	if opts.timeout > 0 {
		timeout = opts.timeout
	}

	requestURL, err := resolveRequestURL(site.URL, opts.path)
	if err != nil {
		return err
	}
	client := apiclient.New(firstFlag(opts.api, cfg.API.BaseURL), apiclient.WithTimeout(timeout))
	resolver := seo.NewResolver(site, client)

	page := resolver.Page(cmd.Context(), requestURL, opts.slug, seo.Partial{
		Title:       seo.Optional(opts.title),
		Description: seo.Optional(opts.description),
		OpenGraph:   seo.OpenGraphPartial{ImageURL: seo.Optional(opts.image)},
	})
	fmt.Fprintln(cmd.OutOrStdout(), page.Head().HTML())
	return nil
}

func resolveRequestURL(site, path string) (*url.URL, error) {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid --path %q: %w", path, err)
	}
	if site = strings.TrimSpace(site); site != "" {
		base, err := url.Parse(site)
		if err != nil || base.Host == "" {
			return nil, fmt.Errorf("invalid --site %q", site)
		}
		u.Scheme, u.Host = base.Scheme, base.Host
	}
	return u, nil
}

func firstFlag(flag, fallback string) string {
	if v := strings.TrimSpace(flag); v != "" {
		return v
	}
	return fallback
}

type inspectOptions struct {
	key     string
	timeout time.Duration
}

func newInspectCmd() *cobra.Command {
	opts := inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect URL",
		Short: "Fetch a rendered storefront page and list its head metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.key, "key", "", "print only one meta value, as attr:key (e.g. property:og:image)")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout")
	return cmd
}

func runInspect(cmd *cobra.Command, pageURL string, opts inspectOptions) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return fmt.Errorf("invalid page url %q: %w", pageURL, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s answered %s", pageURL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return err
	}
	markup, err := doc.Find("head").Html()
	if err != nil {
		return err
	}
	head, err := seo.ParseHead(markup)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.key != "" {
		attr, key, ok := strings.Cut(opts.key, ":")
		if !ok || key == "" {
			return fmt.Errorf("invalid --key %q, want attr:key", opts.key)
		}
		content, found := head.Lookup(attr, key)
		if !found {
			return fmt.Errorf("no meta %s=%q on %s", attr, key, pageURL)
		}
		fmt.Fprintln(out, content)
		return nil
	}

	fmt.Fprintf(out, "title\t%s\n", head.Title)
	if head.Canonical != "" {
		fmt.Fprintf(out, "canonical\t%s\n", head.Canonical)
	}
	for _, m := range head.Meta {
		fmt.Fprintf(out, "%s:%s\t%s\n", m.Attr, m.Key, m.Content)
	}
	return nil
}

type invalidateOptions struct {
	envFile string
	redis   string
	slugs   []string
}

func newInvalidateCmd() *cobra.Command {
	opts := invalidateOptions{}
	cmd := &cobra.Command{
		Use:   "invalidate",
		Short: "Drop cached SEO entries from the shared storefront cache",
		Long: `Remove SEO entries from the Redis cache the storefront instances share, so edits made
in the admin show up before the cache TTL expires. Cache settings come from WEB_CACHE_*.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInvalidate(cmd, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file with storefront settings")
	flags.StringVar(&opts.redis, "redis", "", "Redis address (default WEB_CACHE_REDIS_ADDR)")
	flags.StringSliceVar(&opts.slugs, "slug", nil, "entry slug to drop; repeatable")
	return cmd
}

func runInvalidate(cmd *cobra.Command, opts invalidateOptions) error {
	if len(opts.slugs) == 0 {
		return errors.New("at least one --slug is required")
	}
	cfg, err := config.LoadWeb(config.WithEnvFile(opts.envFile))
	if err != nil {
		return err
	}
	addr := firstFlag(opts.redis, cfg.Cache.RedisAddr)
	if addr == "" {
		return errors.New("no shared cache configured: set --redis or WEB_CACHE_REDIS_ADDR")
	}

	ctx := cmd.Context()
	shared, err := cache.NewRedis(ctx, cache.RedisOptions{
		Addr:      addr,
		DB:        cfg.Cache.RedisDB,
		KeyPrefix: cfg.Cache.KeyPrefix,
	})
	if err != nil {
		return err
	}
	defer shared.Close()

	client := apiclient.New(cfg.API.BaseURL, apiclient.WithCache(shared, cfg.Cache.TTL))
	for _, slug := range opts.slugs {
		if err := client.InvalidateSeoEntry(ctx, slug); err != nil {
			return fmt.Errorf("invalidate %s: %w", slug, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "invalidated %s\n", strings.TrimSpace(slug))
	}
	return nil
}
