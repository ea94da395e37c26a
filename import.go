package sni

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/eringen/sni/markdown"
	"github.com/eringen/sni/mempool"
)

// postMatter holds the fields shared by every translation of a post. They
// are read from the canonical locale's file only.
type postMatter struct {
	Authors            []string `yaml:"authors" validate:"required,min=1,dive,required"`
	Date               string   `yaml:"date" validate:"required,datetime=2006-01-02"`
	Added              string   `yaml:"added" validate:"omitempty,datetime=2006-01-02"`
	Image              string   `yaml:"image"`
	OriginalURL        string   `yaml:"original_url" validate:"omitempty,url"`
	OriginalSite       string   `yaml:"original_site"`
	Series             string   `yaml:"series" validate:"omitempty,excludesall=/?#%"`
	SeriesIndex        int      `yaml:"series_index" validate:"gte=0"`
	SeriesChapterTitle bool     `yaml:"series_chapter_title"`
}

// localeMatter holds the translated fields of one locale file.
type localeMatter struct {
	Title              string             `yaml:"title" validate:"required"`
	Excerpt            string             `yaml:"excerpt"`
	Slug               string             `yaml:"slug" validate:"omitempty,excludesall=/?#%"`
	ImageAlt           string             `yaml:"image_alt"`
	TranslationURL     string             `yaml:"translation_url" validate:"omitempty,url"`
	TranslationSite    string             `yaml:"translation_site"`
	TranslationSiteURL string             `yaml:"translation_site_url" validate:"omitempty,url"`
	Translators        []translatorMatter `yaml:"translators" validate:"dive"`
	SeriesTitle        string             `yaml:"series_title"`
}

type translatorMatter struct {
	Name string `yaml:"name" validate:"required"`
	URL  string `yaml:"url" validate:"omitempty,url"`
}

// Importer loads a markdown content tree into a Store. The tree holds one
// directory per post, named by post id, with one <locale>.md file per
// translation.
type Importer struct {
	store     *Store
	dir       string
	imagesDir string
	staticDir string
	canonical string
	locales   map[string]struct{}
	validate  *validator.Validate
}

// NewImporter creates an Importer reading cfg.ContentDir. The first
// configured locale is canonical. store may be nil when only Load is used.
func NewImporter(store *Store, cfg SiteConfig) *Importer {
	cfg.setDefaults()
	im := &Importer{
		store:     store,
		dir:       cfg.ContentDir,
		imagesDir: cfg.ImagesDir,
		staticDir: cfg.StaticDir,
		canonical: cfg.Locales[0],
		locales:   make(map[string]struct{}, len(cfg.Locales)),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, l := range cfg.Locales {
		im.locales[l] = struct{}{}
	}
	return im
}

// Import replaces the store content with the tree and returns the number of
// posts written.
func (im *Importer) Import(ctx context.Context) (int, error) {
	if im.store == nil {
		return 0, errors.New("import: no store")
	}
	records, images, err := im.load()
	if err != nil {
		return 0, err
	}
	for _, img := range images {
		if err := img.convert(); err != nil {
			return 0, fmt.Errorf("import: %w", err)
		}
	}
	if err := im.store.ReplaceAll(ctx, records); err != nil {
		return 0, fmt.Errorf("import: %w", err)
	}
	return len(records), nil
}

// Load parses and validates the tree. It writes neither the store nor
// converted images.
func (im *Importer) Load() ([]Record, error) {
	records, _, err := im.load()
	return records, err
}

func (im *Importer) load() ([]Record, []headerImage, error) {
	entries, err := os.ReadDir(im.dir)
	if err != nil {
		return nil, nil, fmt.Errorf("import: %w", err)
	}

	var (
		records []Record
		images  []headerImage
	)
	seen := make(map[mempool.Params]string)
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") || strings.HasPrefix(e.Name(), "_") {
			continue
		}
		recs, img, err := im.loadPost(e.Name())
		if err != nil {
			return nil, nil, err
		}
		for _, r := range recs {
			key := mempool.Params{Locale: r.Post.Locale, Slug: r.Post.Slug}
			if other, ok := seen[key]; ok {
				return nil, nil, fmt.Errorf("import: slug %q in locale %s used by posts %s and %s",
					key.Slug, key.Locale, other, r.PostID)
			}
			seen[key] = r.PostID
		}
		records = append(records, recs...)
		images = append(images, img)
	}
	return records, images, nil
}

func (im *Importer) loadPost(postID string) ([]Record, headerImage, error) {
	dir := filepath.Join(im.dir, postID)
	canonicalPath := filepath.Join(dir, im.canonical+".md")
	src, err := os.ReadFile(canonicalPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, headerImage{}, fmt.Errorf("import: post %s has no %s.md", postID, im.canonical)
	}
	if err != nil {
		return nil, headerImage{}, fmt.Errorf("import: %w", err)
	}

	var pm postMatter
	if _, err := markdown.ParseFrontMatter(string(src), &pm); err != nil {
		return nil, headerImage{}, fmt.Errorf("import: %s: %w", canonicalPath, err)
	}
	if err := im.validate.Struct(pm); err != nil {
		return nil, headerImage{}, fmt.Errorf("import: %s: %w", canonicalPath, err)
	}
	var cm localeMatter
	if _, err := markdown.ParseFrontMatter(string(src), &cm); err != nil {
		return nil, headerImage{}, fmt.Errorf("import: %s: %w", canonicalPath, err)
	}
	if err := im.validate.Var(cm.Excerpt, "required"); err != nil {
		return nil, headerImage{}, fmt.Errorf("import: %s: excerpt: %w", canonicalPath, err)
	}
	image, err := resolveHeaderImage(pm.Image, im.imagesDir, im.staticDir)
	if err != nil {
		return nil, headerImage{}, fmt.Errorf("import: %s: %w", canonicalPath, err)
	}
	authors := make([]mempool.Author, 0, len(pm.Authors))
	for _, name := range pm.Authors {
		authors = append(authors, mempool.Author{Name: name, Slug: Slugify(name)})
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, headerImage{}, fmt.Errorf("import: %w", err)
	}
	var records []Record
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".md" {
			continue
		}
		locale := strings.TrimSuffix(f.Name(), ".md")
		if _, ok := im.locales[locale]; !ok {
			slog.Warn("skipping unsupported locale", "post", postID, "locale", locale)
			continue
		}
		path := filepath.Join(dir, f.Name())
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, headerImage{}, fmt.Errorf("import: %w", err)
		}
		var lm localeMatter
		body, err := markdown.ParseFrontMatter(string(src), &lm)
		if err != nil {
			return nil, headerImage{}, fmt.Errorf("import: %s: %w", path, err)
		}
		if err := im.validate.Struct(lm); err != nil {
			return nil, headerImage{}, fmt.Errorf("import: %s: %w", path, err)
		}

		rendered := markdown.Render(body)
		post := mempool.Post{
			Locale:             locale,
			Title:              lm.Title,
			Slug:               lm.Slug,
			Excerpt:            lm.Excerpt,
			Content:            rendered.HTML,
			HasMath:            rendered.HasMath,
			Image:              image.Public,
			ImageAlt:           lm.ImageAlt,
			OriginalURL:        pm.OriginalURL,
			OriginalSite:       pm.OriginalSite,
			TranslationURL:     lm.TranslationURL,
			TranslationSite:    lm.TranslationSite,
			TranslationSiteURL: lm.TranslationSiteURL,
			Date:               pm.Date,
			Added:              pm.Added,
			Authors:            authors,
			SeriesIndex:        pm.SeriesIndex,
		}
		if post.Slug == "" {
			post.Slug = postID
		}
		if post.Excerpt == "" {
			post.Excerpt = cm.Excerpt
		}
		for _, t := range lm.Translators {
			post.Translators = append(post.Translators, mempool.Translator{
				Name: t.Name,
				Slug: Slugify(t.Name),
				URL:  t.URL,
			})
		}
		if pm.Series != "" {
			title := lm.SeriesTitle
			if title == "" {
				title = pm.Series
			}
			post.Series = &mempool.Series{
				Locale:       locale,
				Title:        title,
				Slug:         pm.Series,
				ChapterTitle: pm.SeriesChapterTitle,
			}
		}
		records = append(records, Record{PostID: postID, Post: post})
	}
	return records, image, nil
}
