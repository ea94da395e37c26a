package sni

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/sni/mempool"
)

const enBlockFees = `---
title: Block Fees
excerpt: Why fees matter
authors:
  - Satoshi Nakamoto
date: 2024-01-15
image: fees.png
original_url: https://bitcointalk.org/index.php?topic=1
original_site: Bitcoin Forum
series: economics
series_index: 2
---
# Fees

A fee of $f_i$ per byte.
`

const esBlockFees = `---
title: Comisiones de bloque
excerpt: Por qué importan las comisiones
slug: comisiones-de-bloque
series_title: Economía
translators:
  - name: Ana Pérez
    url: https://example.com/ana
---
Una comisión por byte.
`

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return root
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 0xf7, G: 0x93, B: 0x1a, A: 0xff})
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func newTestImporter(t *testing.T, files map[string]string) (*Importer, *Store, SiteConfig) {
	t.Helper()
	root := writeTree(t, files)
	cfg := SiteConfig{
		Locales:    []string{"en", "es"},
		ContentDir: filepath.Join(root, "mempool"),
		ImagesDir:  filepath.Join(root, "images"),
		StaticDir:  filepath.Join(root, "public"),
	}
	writePNG(t, filepath.Join(cfg.ImagesDir, "fees.png"), 1600, 800)
	store := setupTestStore(t)
	return NewImporter(store, cfg), store, cfg
}

func TestImporterImport(t *testing.T) {
	im, store, cfg := newTestImporter(t, map[string]string{
		"mempool/block-fees/en.md": enBlockFees,
		"mempool/block-fees/es.md": esBlockFees,
	})
	ctx := context.Background()

	n, err := im.Import(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	en, err := store.GetPost(ctx, "block-fees", "en")
	require.NoError(t, err)
	assert.Equal(t, "Block Fees", en.Title)
	assert.True(t, en.HasMath)
	assert.Contains(t, en.Content, `<span class="language-math math-inline">f_i</span>`)
	assert.Equal(t, []mempool.Author{{Name: "Satoshi Nakamoto", Slug: "satoshi-nakamoto"}}, en.Authors)
	assert.Equal(t, "/public/images/fees.jpg", en.Image)
	assert.Equal(t, "2024-01-15", en.Date)
	assert.Equal(t, 2, en.SeriesIndex)
	require.NotNil(t, en.Series)
	assert.Equal(t, "economics", en.Series.Title)
	assert.Equal(t, []mempool.Translation{{Locale: "es", Title: "Comisiones de bloque", Slug: "comisiones-de-bloque"}}, en.Translations)

	es, err := store.GetPost(ctx, "comisiones-de-bloque", "es")
	require.NoError(t, err)
	assert.False(t, es.HasMath)
	assert.Equal(t, "https://bitcointalk.org/index.php?topic=1", es.OriginalURL)
	assert.Equal(t, "Economía", es.Series.Title)
	assert.Equal(t, []mempool.Translator{{Name: "Ana Pérez", Slug: "ana-perez", URL: "https://example.com/ana"}}, es.Translators)

	f, err := os.Open(filepath.Join(cfg.StaticDir, "images", "fees.jpg"))
	require.NoError(t, err)
	defer f.Close()
	conf, err := jpeg.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 1200, conf.Width)
	assert.Equal(t, 600, conf.Height)
}

func TestImporterSlugDefaultsToPostID(t *testing.T) {
	im, _, _ := newTestImporter(t, map[string]string{
		"mempool/block-fees/en.md": enBlockFees,
	})
	records, err := im.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "block-fees", records[0].Post.Slug)
	assert.Equal(t, "block-fees", records[0].PostID)
}

func TestImporterSkipsUnsupportedLocales(t *testing.T) {
	im, _, _ := newTestImporter(t, map[string]string{
		"mempool/block-fees/en.md": enBlockFees,
		"mempool/block-fees/ja.md": esBlockFees,
		"mempool/.drafts/en.md":    "not a post",
	})
	records, err := im.Load()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestImporterRejectsInvalidFrontMatter(t *testing.T) {
	tests := map[string]map[string]string{
		"missing canonical file": {
			"mempool/block-fees/es.md": esBlockFees,
		},
		"missing title": {
			"mempool/block-fees/en.md": "---\nexcerpt: x\nauthors: [A]\ndate: 2024-01-15\n---\nbody\n",
		},
		"missing canonical excerpt": {
			"mempool/block-fees/en.md": "---\ntitle: T\nauthors: [A]\ndate: 2024-01-15\n---\nbody\n",
		},
		"missing authors": {
			"mempool/block-fees/en.md": "---\ntitle: T\nexcerpt: x\ndate: 2024-01-15\n---\nbody\n",
		},
		"bad date": {
			"mempool/block-fees/en.md": "---\ntitle: T\nexcerpt: x\nauthors: [A]\ndate: 15/01/2024\n---\nbody\n",
		},
		"slug with separator": {
			"mempool/block-fees/en.md": "---\ntitle: T\nexcerpt: x\nslug: a/b\nauthors: [A]\ndate: 2024-01-15\n---\nbody\n",
		},
		"duplicate slug": {
			"mempool/a/en.md": "---\ntitle: T\nexcerpt: x\nslug: same\nauthors: [A]\ndate: 2024-01-15\n---\nbody\n",
			"mempool/b/en.md": "---\ntitle: T\nexcerpt: x\nslug: same\nauthors: [A]\ndate: 2024-01-15\n---\nbody\n",
		},
	}
	for name, files := range tests {
		t.Run(name, func(t *testing.T) {
			im, _, _ := newTestImporter(t, files)
			_, err := im.Load()
			assert.Error(t, err)
		})
	}
}

func TestImporterReplacesContent(t *testing.T) {
	im, store, _ := newTestImporter(t, map[string]string{
		"mempool/block-fees/en.md": enBlockFees,
	})
	ctx := context.Background()
	require.NoError(t, store.SavePost(ctx, "stale", mempool.Post{
		Locale: "en", Title: "Stale", Slug: "stale", Content: "<p/>", Date: "2020-01-01",
	}))

	_, err := im.Import(ctx)
	require.NoError(t, err)
	_, err = store.GetPost(ctx, "stale", "en")
	assert.ErrorIs(t, err, mempool.ErrNotFound)
}

func TestImporterLoadWritesNothing(t *testing.T) {
	root := writeTree(t, map[string]string{
		"mempool/block-fees/en.md": enBlockFees,
		"mempool/block-fees/es.md": esBlockFees,
	})
	cfg := SiteConfig{
		Locales:    []string{"en", "es"},
		ContentDir: filepath.Join(root, "mempool"),
		ImagesDir:  filepath.Join(root, "images"),
		StaticDir:  filepath.Join(root, "public"),
	}
	writePNG(t, filepath.Join(cfg.ImagesDir, "fees.png"), 1600, 800)

	records, err := NewImporter(nil, cfg).Load()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "/public/images/fees.jpg", records[0].Post.Image)

	_, err = os.Stat(cfg.StaticDir)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImporterLoadChecksImageSource(t *testing.T) {
	im, _, _ := newTestImporter(t, map[string]string{
		"mempool/block-fees/en.md": strings.Replace(enBlockFees, "fees.png", "missing.png", 1),
	})
	_, err := im.Load()
	assert.Error(t, err)
}

func TestImporterImportNeedsStore(t *testing.T) {
	_, _, cfg := newTestImporter(t, map[string]string{
		"mempool/block-fees/en.md": enBlockFees,
	})
	_, err := NewImporter(nil, cfg).Import(context.Background())
	assert.Error(t, err)
}

func TestImporterExcerptFallsBackToCanonical(t *testing.T) {
	im, _, _ := newTestImporter(t, map[string]string{
		"mempool/block-fees/en.md": enBlockFees,
		"mempool/block-fees/es.md": strings.Replace(esBlockFees, "excerpt: Por qué importan las comisiones\n", "", 1),
	})
	records, err := im.Load()
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, "Why fees matter", r.Post.Excerpt, r.Post.Locale)
	}
}
