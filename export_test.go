package sni

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/sni/mempool"
)

// failingPosts lists params but cannot fetch any post.
type failingPosts struct {
	*memSource
}

func (failingPosts) GetPost(context.Context, string, string) (mempool.Post, error) {
	return mempool.Post{}, errUnavailable
}

func TestBuild(t *testing.T) {
	out := t.TempDir()
	app := newTestApp(t, newMemSource(blockFees()...), func(c *SiteConfig) { c.OutDir = out })
	require.NoError(t, os.WriteFile(filepath.Join(app.Config.StaticDir, "robots.txt"), []byte("User-agent: *\n"), 0o644))

	stats, err := app.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Posts)
	assert.Equal(t, 3, stats.Indexes)
	assert.Equal(t, 3, stats.Assets)

	for _, name := range []string{
		"index.html",
		"404.html",
		"sitemap.xml",
		"en/mempool/index.html",
		"en/mempool/feed.xml",
		"fr/mempool/index.html",
		"en/mempool/block-fees/index.html",
		"es/mempool/comisiones-de-bloque/index.html",
		"public/math.js",
		"public/site.css",
		"public/robots.txt",
	} {
		assert.FileExists(t, filepath.Join(out, filepath.FromSlash(name)))
	}

	page, err := os.ReadFile(filepath.Join(out, "en", "mempool", "block-fees", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), `<a href="/es/mempool/comisiones-de-bloque" hreflang="es" lang="es">español</a>`)

	root, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(root), "url=/en/mempool")
}

func TestBuildAbortsOnFetchError(t *testing.T) {
	out := t.TempDir()
	src := failingPosts{newMemSource(blockFees()...)}
	app := newTestApp(t, src, func(c *SiteConfig) { c.OutDir = out })

	_, err := app.Build(context.Background())
	assert.ErrorIs(t, err, errUnavailable)
	assert.NoFileExists(t, filepath.Join(out, "sitemap.xml"))
}

func TestPostPathRejectsTraversal(t *testing.T) {
	for _, p := range []mempool.Params{
		{Locale: "en", Slug: "../etc"},
		{Locale: "en", Slug: ".."},
		{Locale: "", Slug: "x"},
		{Locale: "en", Slug: `a\b`},
	} {
		_, err := postPath("out", p)
		assert.Error(t, err, "%+v", p)
	}
	got, err := postPath("out", mempool.Params{Locale: "en", Slug: "block-fees"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "en", "mempool", "block-fees", "index.html"), got)
}
