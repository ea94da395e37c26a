package sni

import (
	"time"

	"github.com/eringen/sni/i18n"
	"github.com/eringen/sni/mempool"
)

// SiteConfig holds all configuration for an sni site.
type SiteConfig struct {
	Name        string // Site name (default "Satoshi Nakamoto Institute")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags

	Addr    string   // Listen address (default ":3000")
	Locales []string // Supported locales, default first (default i18n.DefaultCodes)

	DatabasePath  string // SQLite path (default "data/content.db")
	ContentAPIURL string // Remote content API; replaces the SQLite store when set
	ContentDir    string // Markdown tree read by the importer (default "content/mempool")
	ImagesDir     string // Source header images (default "content/images")
	StaticDir     string // User static assets served under /public (default "public")
	OutDir        string // Static export target (default "dist")

	PostCacheTTL   time.Duration // Post cache TTL (default 5min)
	RequestTimeout time.Duration // Content API timeout (default 10s)

	RateLimit  int           // Requests per window and IP (default 120)
	RateWindow time.Duration // Limiter window (default 1min)

	BuildConcurrency int // Pages rendered in parallel by the exporter (default 8)

	Watch        bool   // Re-import ContentDir on change while serving
	OTelEndpoint string // OTLP/HTTP endpoint; tracing is off when empty
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Satoshi Nakamoto Institute"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.Locales = FilterEmpty(c.Locales); len(c.Locales) == 0 {
		c.Locales = append([]string(nil), i18n.DefaultCodes...)
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/content.db"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content/mempool"
	}
	if c.ImagesDir == "" {
		c.ImagesDir = "content/images"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.OutDir == "" {
		c.OutDir = "dist"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 10 * time.Second
	}
	if c.RateLimit == 0 {
		c.RateLimit = 120
	}
	if c.RateWindow == 0 {
		c.RateWindow = time.Minute
	}
	if c.BuildConcurrency <= 0 {
		c.BuildConcurrency = 8
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithSource serves content from src instead of the configured store or API.
func WithSource(src mempool.Source) Option {
	return func(a *App) {
		a.source = src
	}
}
