package sni

import (
	"bytes"
	"context"
	"encoding/xml"
	"time"

	"github.com/eringen/sni/i18n"
	"github.com/eringen/sni/urls"
	"github.com/eringen/sni/views"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Author      string `xml:"author,omitempty"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

// feed renders the RSS feed of one locale's section.
func (a *App) feed(ctx context.Context, locale string) ([]byte, error) {
	base := a.Config.URL
	posts, err := a.Cache.ListPosts(ctx, locale)
	if err != nil {
		return nil, err
	}
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		pubDate := ""
		if t, err := time.Parse("2006-01-02", p.Date); err == nil {
			pubDate = t.Format(time.RFC1123Z)
		}
		postURL := urls.Absolute(base, urls.For(locale).Mempool.Post(p.Slug))
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: p.Excerpt,
			Author:      views.AuthorNames(p.Authors),
			PubDate:     pubDate,
			GUID:        postURL,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name + " | " + i18n.T(locale, "Mempool"),
			Link:        urls.Absolute(base, urls.For(locale).Mempool.Index),
			Description: a.Config.Description,
			Language:    locale,
			Items:       items,
		},
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(feed); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
