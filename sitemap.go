package sni

import (
	"bytes"
	"context"
	"encoding/xml"

	"github.com/eringen/sni/urls"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	XHTML   string       `xml:"xmlns:xhtml,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string        `xml:"loc"`
	LastMod string        `xml:"lastmod,omitempty"`
	Links   []sitemapLink `xml:"xhtml:link"`
}

// sitemapLink is an hreflang alternate of a sitemap entry.
type sitemapLink struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// sitemap lists every section index and post of the supported locales. Each
// entry carries its own locale and its translations as alternates.
func (a *App) sitemap(ctx context.Context) ([]byte, error) {
	base := a.Config.URL
	locales := a.Locales.Codes()

	var entries []sitemapURL
	indexLinks := make([]sitemapLink, 0, len(locales))
	for _, l := range locales {
		indexLinks = append(indexLinks, sitemapLink{
			Rel:      "alternate",
			Hreflang: l,
			Href:     urls.Absolute(base, urls.For(l).Mempool.Index),
		})
	}
	for _, l := range locales {
		entries = append(entries, sitemapURL{
			Loc:   urls.Absolute(base, urls.For(l).Mempool.Index),
			Links: indexLinks,
		})
	}

	for _, l := range locales {
		posts, err := a.Cache.ListPosts(ctx, l)
		if err != nil {
			return nil, err
		}
		for _, p := range posts {
			loc := urls.Absolute(base, urls.For(l).Mempool.Post(p.Slug))
			links := []sitemapLink{{Rel: "alternate", Hreflang: l, Href: loc}}
			for _, t := range p.Translations {
				if !a.Locales.Supported(t.Locale) {
					continue
				}
				links = append(links, sitemapLink{
					Rel:      "alternate",
					Hreflang: t.Locale,
					Href:     urls.Absolute(base, urls.For(t.Locale).Mempool.Post(t.Slug)),
				})
			}
			lastMod := p.Added
			if lastMod == "" {
				lastMod = p.Date
			}
			entries = append(entries, sitemapURL{Loc: loc, LastMod: lastMod, Links: links})
		}
	}

	set := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		XHTML: "http://www.w3.org/1999/xhtml",
		URLs:  entries,
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(set); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
