// Package mempool holds the content types of the mempool blog section and the
// Source interface every content backend implements.
package mempool

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Source when no post exists for a slug/locale.
var ErrNotFound = errors.New("mempool: post not found")

// Post is a single localized mempool article.
type Post struct {
	Locale             string        `json:"locale"`
	Title              string        `json:"title"`
	Slug               string        `json:"slug"`
	Excerpt            string        `json:"excerpt"`
	Content            string        `json:"content"` // rendered HTML
	HasMath            bool          `json:"hasMath"`
	Image              string        `json:"image,omitempty"`
	ImageAlt           string        `json:"imageAlt,omitempty"`
	OriginalURL        string        `json:"originalUrl,omitempty"`
	OriginalSite       string        `json:"originalSite,omitempty"`
	TranslationURL     string        `json:"translationUrl,omitempty"`
	TranslationSite    string        `json:"translationSite,omitempty"`
	TranslationSiteURL string        `json:"translationSiteUrl,omitempty"`
	Date               string        `json:"date"`  // YYYY-MM-DD
	Added              string        `json:"added"` // YYYY-MM-DD
	Authors            []Author      `json:"authors"`
	Translators        []Translator  `json:"translators"`
	Translations       []Translation `json:"translations,omitempty"`
	Series             *Series       `json:"series,omitempty"`
	SeriesIndex        int           `json:"seriesIndex,omitempty"`
}

// Translation points at the same post in another locale.
type Translation struct {
	Locale string `json:"locale"`
	Title  string `json:"title"`
	Slug   string `json:"slug"`
}

// Author of the original text.
type Author struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Translator of a localized post.
type Translator struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	URL  string `json:"url,omitempty"`
}

// Series groups posts published as chapters.
type Series struct {
	Locale       string `json:"locale"`
	Title        string `json:"title"`
	Slug         string `json:"slug"`
	ChapterTitle bool   `json:"chapterTitle"`
}

// Params identifies one post route.
type Params struct {
	Slug   string `json:"slug"`
	Locale string `json:"locale"`
}

// Metadata is the document head data of a rendered post.
type Metadata struct {
	Title       string
	Description string
	Canonical   string
	Alternates  map[string]string // locale -> path
}

// Source fetches mempool content. Implementations return ErrNotFound
// (possibly wrapped) when a post does not exist.
type Source interface {
	GetPost(ctx context.Context, slug, locale string) (Post, error)
	GetParams(ctx context.Context) ([]Params, error)
	ListPosts(ctx context.Context, locale string) ([]Post, error)
}

// FindTranslation returns the first translation whose locale equals locale.
// Duplicate locales are not expected; the earliest entry wins if present.
func FindTranslation(translations []Translation, locale string) (Translation, bool) {
	for _, t := range translations {
		if t.Locale == locale {
			return t, true
		}
	}
	return Translation{}, false
}
