package sni

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/a-h/templ"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/sni/mempool"
	"github.com/eringen/sni/urls"
)

// BuildStats counts what Build wrote.
type BuildStats struct {
	Posts   int
	Indexes int
	Assets  int
}

// Build renders the site as static files into Config.OutDir: one page per
// static param, an index and feed per locale, the sitemap and the public
// assets. Pages render in parallel; the first error aborts the build.
func (a *App) Build(ctx context.Context) (BuildStats, error) {
	var stats BuildStats
	if err := a.Init(); err != nil {
		return stats, err
	}
	out := a.Config.OutDir

	params, err := a.Pages.StaticParams(ctx)
	if err != nil {
		return stats, fmt.Errorf("build: static params: %w", err)
	}

	var posts, indexes atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Config.BuildConcurrency)

	for _, locale := range a.Locales.Codes() {
		g.Go(func() error {
			dir := filepath.Join(out, locale, "mempool")
			cmp, err := a.Pages.RenderIndex(gctx, locale)
			if err != nil {
				return fmt.Errorf("build: index %s: %w", locale, err)
			}
			if err := writeComponent(gctx, filepath.Join(dir, "index.html"), cmp); err != nil {
				return err
			}
			feed, err := a.feed(gctx, locale)
			if err != nil {
				return fmt.Errorf("build: feed %s: %w", locale, err)
			}
			indexes.Add(1)
			return writeFile(filepath.Join(dir, "feed.xml"), feed)
		})
	}

	for _, p := range params {
		g.Go(func() error {
			dst, err := postPath(out, p)
			if err != nil {
				return err
			}
			cmp, err := a.Pages.Render(gctx, p)
			if err != nil {
				return fmt.Errorf("build: %s/%s: %w", p.Locale, p.Slug, err)
			}
			if err := writeComponent(gctx, dst, cmp); err != nil {
				return err
			}
			posts.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}
	stats.Posts = int(posts.Load())
	stats.Indexes = int(indexes.Load())

	sitemap, err := a.sitemap(ctx)
	if err != nil {
		return stats, fmt.Errorf("build: sitemap: %w", err)
	}
	if err := writeFile(filepath.Join(out, "sitemap.xml"), sitemap); err != nil {
		return stats, err
	}
	if err := writeComponent(ctx, filepath.Join(out, "404.html"), a.Pages.RenderNotFound(a.Locales.Default())); err != nil {
		return stats, err
	}
	if err := writeFile(filepath.Join(out, "index.html"), rootRedirect(a.Locales.Default())); err != nil {
		return stats, err
	}

	embedded, _ := fs.Sub(EmbeddedAssets, "embedded")
	n, err := copyFS(filepath.Join(out, "public"), embedded)
	if err != nil {
		return stats, err
	}
	stats.Assets += n
	if _, err := os.Stat(a.Config.StaticDir); err == nil {
		n, err := copyFS(filepath.Join(out, "public"), os.DirFS(a.Config.StaticDir))
		if err != nil {
			return stats, err
		}
		stats.Assets += n
	}
	return stats, nil
}

// postPath is the output file of a post route. Params become path
// segments, so separators and dot segments are rejected.
func postPath(out string, p mempool.Params) (string, error) {
	for _, seg := range []string{p.Locale, p.Slug} {
		if seg == "" || seg == "." || seg == ".." || strings.ContainsAny(seg, `/\`) {
			return "", fmt.Errorf("build: invalid route %q/%q", p.Locale, p.Slug)
		}
	}
	return filepath.Join(out, p.Locale, "mempool", p.Slug, "index.html"), nil
}

func rootRedirect(locale string) []byte {
	target := urls.For(locale).Mempool.Index
	return []byte(`<!doctype html><html><head><meta charset="utf-8">` +
		`<meta http-equiv="refresh" content="0; url=` + target + `">` +
		`<link rel="canonical" href="` + target + `"></head></html>`)
}

func writeComponent(ctx context.Context, path string, cmp templ.Component) error {
	b, err := renderBytes(ctx, cmp)
	if err != nil {
		return fmt.Errorf("build: render %s: %w", path, err)
	}
	return writeFile(path, b)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("build: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("build: %w", err)
	}
	return nil
}

// copyFS copies every regular file of fsys into dir, overwriting existing
// files, and returns the number of files copied.
func copyFS(dir string, fsys fs.FS) (int, error) {
	n := 0
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		src, err := fsys.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		dst := filepath.Join(dir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		f, err := os.Create(dst)
		if err != nil {
			return err
		}
		if _, err := io.Copy(f, src); err != nil {
			f.Close()
			return err
		}
		n++
		return f.Close()
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return n, fmt.Errorf("build: copy assets: %w", err)
	}
	return n, nil
}
