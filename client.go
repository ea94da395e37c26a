package sni

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eringen/sni/mempool"
)

// Client reads mempool content from a remote content API. It implements
// mempool.Source.
type Client struct {
	base   string
	client *http.Client
}

var _ mempool.Source = (*Client)(nil)

// NewClient creates a Client for the API rooted at base. A nil client gets
// a default one with timeout.
func NewClient(base string, client *http.Client, timeout time.Duration) *Client {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		base:   strings.TrimRight(base, "/"),
		client: client,
	}
}

// GetPost fetches GET {base}/mempool/{locale}/{slug}. A 404 maps to
// mempool.ErrNotFound.
func (c *Client) GetPost(ctx context.Context, slug, locale string) (mempool.Post, error) {
	var post mempool.Post
	err := c.get(ctx, "/mempool/"+url.PathEscape(locale)+"/"+url.PathEscape(slug), &post)
	if err != nil {
		return mempool.Post{}, err
	}
	if post.Locale == "" {
		post.Locale = locale
	}
	return post, nil
}

// GetParams fetches GET {base}/mempool/params.
func (c *Client) GetParams(ctx context.Context) ([]mempool.Params, error) {
	var params []mempool.Params
	if err := c.get(ctx, "/mempool/params", &params); err != nil {
		return nil, err
	}
	return params, nil
}

// ListPosts fetches GET {base}/mempool/{locale}.
func (c *Client) ListPosts(ctx context.Context, locale string) ([]mempool.Post, error) {
	var posts []mempool.Post
	if err := c.get(ctx, "/mempool/"+url.PathEscape(locale), &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("build content request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("content request %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return mempool.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("content request %s returned %s", path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode content response %s: %w", path, err)
	}
	return nil
}
