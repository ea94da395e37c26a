// Package sni serves and statically exports the localized mempool section of
// a content site: post pages with per-locale alternates, section indexes,
// feeds and a sitemap.
//
// Content comes from any mempool.Source: the SQLite Store filled by the
// importer, or the remote content API through Client.
package sni

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/sni/i18n"
	"github.com/eringen/sni/mempool"
)

// App is the central sni application. It wires together the content source,
// cache, page renderer, handlers and middleware.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *Store // nil unless content is read from SQLite
	Cache   *PostCache
	Locales *i18n.Locales
	Pages   *PostPage

	source       mempool.Source
	limiter      *RequestLimiter
	customRoutes []func(*App)
	ready        bool
}

// New creates a new App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init opens the content source and sets up the cache, page renderer,
// middleware and routes. It is idempotent; Start and Build call it.
func (a *App) Init() error {
	if a.ready {
		return nil
	}

	locales, err := i18n.New(a.Config.Locales)
	if err != nil {
		return fmt.Errorf("sni: %w", err)
	}
	a.Locales = locales

	src := a.source
	if src == nil {
		if a.Config.ContentAPIURL != "" {
			src = NewClient(a.Config.ContentAPIURL, nil, a.Config.RequestTimeout)
		} else {
			store, err := NewStore(a.Config.DatabasePath)
			if err != nil {
				return fmt.Errorf("sni: init store: %w", err)
			}
			a.Store = store
			src = store
		}
	}

	a.Cache = NewPostCache(traceSource(src, nil), a.Config.PostCacheTTL)
	a.Pages = NewPostPage(a.Cache, locales, a.Config, nil)
	a.limiter = NewRequestLimiter(a.Config.RateLimit, a.Config.RateWindow)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.ready = true
	return nil
}

// Start initializes the app and serves HTTP until ctx is done. With
// Config.Watch set and a SQLite store, the content tree is re-imported on
// change.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(); err != nil {
		return err
	}

	if a.Config.Watch && a.Store != nil {
		importer := NewImporter(a.Store, a.Config)
		go func() {
			err := Watch(ctx, a.Config.ContentDir, func() {
				n, err := importer.Import(ctx)
				if err != nil {
					slog.Error("re-import failed", "dir", a.Config.ContentDir, "error", err)
					return
				}
				a.Cache.Invalidate()
				slog.Info("content re-imported", "posts", n)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("content watcher stopped", "error", err)
			}
		}()
	}

	errc := make(chan error, 1)
	go func() {
		errc <- a.Echo.Start(a.Config.Addr)
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.Echo.Shutdown(shutdownCtx)
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded assets are served under /public/ ahead of the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := echo.WrapHandler(http.StripPrefix("/public/", http.FileServer(http.FS(embeddedFS))))
	e.GET("/public/site.css", embeddedHandler)
	e.GET("/public/math.js", embeddedHandler)

	e.Static("/public", a.Config.StaticDir)

	e.GET("/", a.handleRoot)
	e.GET("/healthz", a.handleHealth)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/:locale/mempool", a.handleIndex)
	e.GET("/:locale/mempool/feed.xml", a.handleFeed)
	e.GET("/:locale/mempool/:slug", a.handlePost)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.limiter != nil {
		a.limiter.Close()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
