package views

import (
	"net/url"
	"strings"

	"github.com/eringen/sni/i18n"
	"github.com/eringen/sni/mempool"
)

// LanguageLinks builds the locale switcher entries. Every locale gets the
// href produced by generateHref; the active one is flagged so the layout can
// render it without a link.
func LanguageLinks(active string, locales []string, generateHref func(string) string) []LanguageLink {
	links := make([]LanguageLink, 0, len(locales))
	for _, l := range locales {
		links = append(links, LanguageLink{
			Locale: l,
			Label:  i18n.Name(l),
			Href:   generateHref(l),
			Active: l == active,
		})
	}
	return links
}

func pageTitle(p Page) string {
	switch {
	case p.Title == "":
		return p.SiteName
	case p.SiteName == "":
		return p.Title
	default:
		return p.Title + " | " + p.SiteName
	}
}

// AuthorNames joins the author names with commas.
func AuthorNames(authors []mempool.Author) string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

func translatorNames(translators []mempool.Translator) string {
	names := make([]string, 0, len(translators))
	for _, t := range translators {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}

// siteLabel prefers the site name and falls back to the link's host.
func siteLabel(site, link string) string {
	if site != "" {
		return site
	}
	if u, err := url.Parse(link); err == nil && u.Host != "" {
		return u.Host
	}
	return link
}
