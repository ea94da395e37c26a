package sni

import (
	"context"
	"sort"

	"github.com/a-h/templ"

	"github.com/eringen/sni/i18n"
	"github.com/eringen/sni/mempool"
	"github.com/eringen/sni/richtext"
	"github.com/eringen/sni/urls"
	"github.com/eringen/sni/views"
)

// ContentRenderer turns stored post content into a component. The options
// carry the post's math hint.
type ContentRenderer func(content string, opts richtext.Options) templ.Component

// PostPage renders mempool post pages for a locale and slug.
type PostPage struct {
	source  mempool.Source
	locales *i18n.Locales
	site    SiteConfig
	content ContentRenderer
}

// NewPostPage creates a PostPage reading from src. A nil content renderer
// defaults to richtext.Render.
func NewPostPage(src mempool.Source, locales *i18n.Locales, site SiteConfig, content ContentRenderer) *PostPage {
	if content == nil {
		content = richtext.Render
	}
	return &PostPage{source: src, locales: locales, site: site, content: content}
}

// GenerateMetadata fetches the post and returns its head metadata. The
// title is the post title. Fetch errors are returned unchanged.
func (p *PostPage) GenerateMetadata(ctx context.Context, params mempool.Params) (mempool.Metadata, error) {
	post, err := p.source.GetPost(ctx, params.Slug, params.Locale)
	if err != nil {
		return mempool.Metadata{}, err
	}
	return postMetadata(params.Locale, post), nil
}

// Render fetches the post and composes its page: layout with locale
// switcher, post header and content rendered with the post's math hint.
// Nothing is rendered when the fetch fails.
func (p *PostPage) Render(ctx context.Context, params mempool.Params) (templ.Component, error) {
	post, err := p.source.GetPost(ctx, params.Slug, params.Locale)
	if err != nil {
		return nil, err
	}
	meta := postMetadata(params.Locale, post)
	body := p.content(post.Content, richtext.Options{Math: post.HasMath})
	return views.PostPage(p.page(params.Locale, meta), post, HrefGenerator(post), body), nil
}

// StaticParams returns every (slug, locale) pair the source reports.
func (p *PostPage) StaticParams(ctx context.Context) ([]mempool.Params, error) {
	return p.source.GetParams(ctx)
}

// RenderIndex composes the section index of locale.
func (p *PostPage) RenderIndex(ctx context.Context, locale string) (templ.Component, error) {
	posts, err := p.source.ListPosts(ctx, locale)
	if err != nil {
		return nil, err
	}
	meta := mempool.Metadata{
		Title:       i18n.T(locale, "Mempool"),
		Description: p.site.Description,
		Canonical:   urls.For(locale).Mempool.Index,
		Alternates:  make(map[string]string),
	}
	for _, l := range p.locales.Codes() {
		if l != locale {
			meta.Alternates[l] = urls.For(l).Mempool.Index
		}
	}
	return views.IndexPage(p.page(locale, meta), posts, indexHref), nil
}

// RenderNotFound composes the not-found page of locale.
func (p *PostPage) RenderNotFound(locale string) templ.Component {
	if !p.locales.Supported(locale) {
		locale = p.locales.Default()
	}
	page := p.page(locale, mempool.Metadata{Title: i18n.T(locale, "Page not found")})
	return views.NotFound(page, indexHref)
}

// HrefGenerator returns the locale switcher's link function for post: the
// translation in the target locale when the post has one, the target
// locale's section index otherwise.
func HrefGenerator(post mempool.Post) func(string) string {
	return func(locale string) string {
		if t, ok := mempool.FindTranslation(post.Translations, locale); ok {
			return urls.For(locale).Mempool.Post(t.Slug)
		}
		return urls.For(locale).Mempool.Index
	}
}

func indexHref(locale string) string {
	return urls.For(locale).Mempool.Index
}

func postMetadata(locale string, post mempool.Post) mempool.Metadata {
	meta := mempool.Metadata{
		Title:       post.Title,
		Description: post.Excerpt,
		Canonical:   urls.For(locale).Mempool.Post(post.Slug),
		Alternates:  make(map[string]string, len(post.Translations)),
	}
	for _, t := range post.Translations {
		if _, ok := meta.Alternates[t.Locale]; ok || t.Locale == locale {
			continue
		}
		meta.Alternates[t.Locale] = urls.For(t.Locale).Mempool.Post(t.Slug)
	}
	return meta
}

// page turns metadata into layout data with absolute URLs. The alternates
// list the page itself first, then the other locales in order.
func (p *PostPage) page(locale string, meta mempool.Metadata) views.Page {
	page := views.Page{
		SiteName:    p.site.Name,
		Locale:      locale,
		Locales:     p.locales.Codes(),
		Title:       meta.Title,
		Description: meta.Description,
	}
	if meta.Canonical == "" {
		return page
	}
	page.Canonical = urls.Absolute(p.site.URL, meta.Canonical)
	page.Alternates = append(page.Alternates, views.Alternate{Locale: locale, Href: page.Canonical})
	others := make([]string, 0, len(meta.Alternates))
	for l := range meta.Alternates {
		others = append(others, l)
	}
	sort.Strings(others)
	for _, l := range others {
		page.Alternates = append(page.Alternates, views.Alternate{
			Locale: l,
			Href:   urls.Absolute(p.site.URL, meta.Alternates[l]),
		})
	}
	return page
}
