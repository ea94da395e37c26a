package sni

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/eringen/sni/mempool"
)

// memSource is an in-memory mempool.Source that counts calls.
type memSource struct {
	mu      sync.Mutex
	posts   map[mempool.Params]mempool.Post
	err     error
	gets    int
	lists   int
	paramsN int
}

func newMemSource(posts ...mempool.Post) *memSource {
	s := &memSource{posts: make(map[mempool.Params]mempool.Post)}
	for _, p := range posts {
		s.posts[mempool.Params{Slug: p.Slug, Locale: p.Locale}] = p
	}
	return s
}

func (s *memSource) GetPost(_ context.Context, slug, locale string) (mempool.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.err != nil {
		return mempool.Post{}, s.err
	}
	p, ok := s.posts[mempool.Params{Slug: slug, Locale: locale}]
	if !ok {
		return mempool.Post{}, mempool.ErrNotFound
	}
	return p, nil
}

func (s *memSource) GetParams(context.Context) ([]mempool.Params, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paramsN++
	if s.err != nil {
		return nil, s.err
	}
	params := make([]mempool.Params, 0, len(s.posts))
	for k := range s.posts {
		params = append(params, k)
	}
	sort.Slice(params, func(i, j int) bool {
		if params[i].Locale != params[j].Locale {
			return params[i].Locale < params[j].Locale
		}
		return params[i].Slug < params[j].Slug
	})
	return params, nil
}

func (s *memSource) ListPosts(_ context.Context, locale string) ([]mempool.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	if s.err != nil {
		return nil, s.err
	}
	var posts []mempool.Post
	for k, p := range s.posts {
		if k.Locale == locale {
			posts = append(posts, p)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].Date > posts[j].Date })
	return posts, nil
}

var errUnavailable = errors.New("content service unavailable")

// blockFees is the post of the documented scenario and its translation.
func blockFees() []mempool.Post {
	return []mempool.Post{
		{
			Locale:       "en",
			Title:        "Block Fees",
			Slug:         "block-fees",
			Excerpt:      "Why fees matter",
			Content:      "<h2>Fees</h2><p>Miners collect fees.</p>",
			Date:         "2024-01-15",
			Authors:      []mempool.Author{{Name: "Satoshi Nakamoto", Slug: "satoshi-nakamoto"}},
			Translations: []mempool.Translation{{Locale: "es", Title: "Comisiones de bloque", Slug: "comisiones-de-bloque"}},
		},
		{
			Locale:       "es",
			Title:        "Comisiones de bloque",
			Slug:         "comisiones-de-bloque",
			Content:      `<p>La recompensa es <span class="language-math math-inline">2^{-n}</span>.</p>`,
			HasMath:      true,
			Date:         "2024-01-15",
			Authors:      []mempool.Author{{Name: "Satoshi Nakamoto", Slug: "satoshi-nakamoto"}},
			Translations: []mempool.Translation{{Locale: "en", Title: "Block Fees", Slug: "block-fees"}},
		},
	}
}
