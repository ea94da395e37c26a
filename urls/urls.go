// Package urls builds site paths for a locale.
package urls

import (
	"net/url"
	"strings"
)

// URLs holds the paths of one locale.
type URLs struct {
	Home    string
	Mempool Mempool
}

// Mempool holds the paths of the mempool section.
type Mempool struct {
	locale string
	Index  string
	Feed   string
}

// Post returns the path of the post with slug.
func (m Mempool) Post(slug string) string {
	return "/" + m.locale + "/mempool/" + url.PathEscape(slug)
}

// For returns the paths for locale.
func For(locale string) URLs {
	home := "/" + locale
	return URLs{
		Home: home,
		Mempool: Mempool{
			locale: locale,
			Index:  home + "/mempool",
			Feed:   home + "/mempool/feed.xml",
		},
	}
}

// Absolute joins a site base URL with a path produced by For.
func Absolute(base, p string) string {
	return strings.TrimRight(base, "/") + p
}
