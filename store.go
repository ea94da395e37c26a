package sni

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/eringen/sni/mempool"
)

// Record is a post row as written by the importer. PostID groups the
// translations of one article.
type Record struct {
	PostID string
	Post   mempool.Post
}

// Store wraps a SQLite database holding mempool posts. It implements
// mempool.Source.
type Store struct {
	db *sql.DB
}

var _ mempool.Source = (*Store)(nil)

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the server read while the importer writes.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    post_id TEXT NOT NULL,
    locale TEXT NOT NULL,
    slug TEXT NOT NULL,
    title TEXT NOT NULL,
    excerpt TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL,
    has_math INTEGER NOT NULL DEFAULT 0,
    image TEXT NOT NULL DEFAULT '',
    image_alt TEXT NOT NULL DEFAULT '',
    original_url TEXT NOT NULL DEFAULT '',
    original_site TEXT NOT NULL DEFAULT '',
    translation_url TEXT NOT NULL DEFAULT '',
    translation_site TEXT NOT NULL DEFAULT '',
    translation_site_url TEXT NOT NULL DEFAULT '',
    date TEXT NOT NULL,
    added TEXT NOT NULL DEFAULT '',
    authors TEXT NOT NULL DEFAULT '[]',
    translators TEXT NOT NULL DEFAULT '[]',
    series TEXT NOT NULL DEFAULT '',
    series_index INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (locale, slug),
    UNIQUE (post_id, locale)
);
CREATE INDEX IF NOT EXISTS posts_post_id ON posts (post_id);
`)
	return err
}

const postColumns = `post_id, locale, slug, title, excerpt, content, has_math, image, image_alt,
	original_url, original_site, translation_url, translation_site, translation_site_url,
	date, added, authors, translators, series, series_index`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (string, mempool.Post, error) {
	var (
		postID, authors, translators, series string
		hasMath                              int
		p                                    mempool.Post
	)
	err := row.Scan(&postID, &p.Locale, &p.Slug, &p.Title, &p.Excerpt, &p.Content, &hasMath,
		&p.Image, &p.ImageAlt, &p.OriginalURL, &p.OriginalSite, &p.TranslationURL,
		&p.TranslationSite, &p.TranslationSiteURL, &p.Date, &p.Added,
		&authors, &translators, &series, &p.SeriesIndex)
	if err != nil {
		return "", mempool.Post{}, err
	}
	p.HasMath = hasMath == 1
	if err := json.Unmarshal([]byte(authors), &p.Authors); err != nil {
		return "", mempool.Post{}, fmt.Errorf("decode authors of %s/%s: %w", p.Locale, p.Slug, err)
	}
	if err := json.Unmarshal([]byte(translators), &p.Translators); err != nil {
		return "", mempool.Post{}, fmt.Errorf("decode translators of %s/%s: %w", p.Locale, p.Slug, err)
	}
	if series != "" {
		p.Series = &mempool.Series{}
		if err := json.Unmarshal([]byte(series), p.Series); err != nil {
			return "", mempool.Post{}, fmt.Errorf("decode series of %s/%s: %w", p.Locale, p.Slug, err)
		}
	}
	return postID, p, nil
}

// GetPost returns the post with slug in locale together with its
// translations, ordered by locale. The post's own locale is never listed.
func (s *Store) GetPost(ctx context.Context, slug, locale string) (mempool.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE locale = ? AND slug = ?`, locale, slug)
	postID, post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return mempool.Post{}, mempool.ErrNotFound
	}
	if err != nil {
		return mempool.Post{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT locale, title, slug FROM posts WHERE post_id = ? AND locale <> ? ORDER BY locale`,
		postID, locale)
	if err != nil {
		return mempool.Post{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var t mempool.Translation
		if err := rows.Scan(&t.Locale, &t.Title, &t.Slug); err != nil {
			return mempool.Post{}, err
		}
		post.Translations = append(post.Translations, t)
	}
	return post, rows.Err()
}

// GetParams returns every (slug, locale) pair ordered by locale then slug.
func (s *Store) GetParams(ctx context.Context) ([]mempool.Params, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slug, locale FROM posts ORDER BY locale, slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var params []mempool.Params
	for rows.Next() {
		var p mempool.Params
		if err := rows.Scan(&p.Slug, &p.Locale); err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, rows.Err()
}

// ListPosts returns the posts of locale ordered by date descending, each
// with its translations.
func (s *Store) ListPosts(ctx context.Context, locale string) ([]mempool.Post, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE locale = ? ORDER BY date DESC, slug`, locale)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		posts []mempool.Post
		index = make(map[string]int)
	)
	for rows.Next() {
		postID, p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		index[postID] = len(posts)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	trows, err := s.db.QueryContext(ctx, `
SELECT p.post_id, t.locale, t.title, t.slug
FROM posts p JOIN posts t ON t.post_id = p.post_id AND t.locale <> p.locale
WHERE p.locale = ?
ORDER BY t.locale`, locale)
	if err != nil {
		return nil, err
	}
	defer trows.Close()
	for trows.Next() {
		var (
			postID string
			t      mempool.Translation
		)
		if err := trows.Scan(&postID, &t.Locale, &t.Title, &t.Slug); err != nil {
			return nil, err
		}
		if i, ok := index[postID]; ok {
			posts[i].Translations = append(posts[i].Translations, t)
		}
	}
	return posts, trows.Err()
}

// SavePost upserts one localized post. Translations on p are ignored; they
// are derived from sibling rows sharing postID.
func (s *Store) SavePost(ctx context.Context, postID string, p mempool.Post) error {
	return savePost(ctx, s.db, postID, p)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func savePost(ctx context.Context, db execer, postID string, p mempool.Post) error {
	authors, err := json.Marshal(nonNil(p.Authors))
	if err != nil {
		return err
	}
	translators, err := json.Marshal(nonNil(p.Translators))
	if err != nil {
		return err
	}
	var series []byte
	if p.Series != nil {
		if series, err = json.Marshal(p.Series); err != nil {
			return err
		}
	}
	hasMath := 0
	if p.HasMath {
		hasMath = 1
	}
	// A post may change slug between imports; drop the old row for this
	// post and locale first so UNIQUE(post_id, locale) holds.
	if _, err := db.ExecContext(ctx, `DELETE FROM posts WHERE post_id = ? AND locale = ? AND slug <> ?`,
		postID, p.Locale, p.Slug); err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `INSERT OR REPLACE INTO posts (`+postColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		postID, p.Locale, p.Slug, p.Title, p.Excerpt, p.Content, hasMath, p.Image, p.ImageAlt,
		p.OriginalURL, p.OriginalSite, p.TranslationURL, p.TranslationSite, p.TranslationSiteURL,
		p.Date, p.Added, string(authors), string(translators), string(series), p.SeriesIndex)
	if err != nil {
		return fmt.Errorf("save %s/%s: %w", p.Locale, p.Slug, err)
	}
	return nil
}

// ReplaceAll swaps the whole content of the store for records in one
// transaction.
func (s *Store) ReplaceAll(ctx context.Context, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM posts`); err != nil {
		return err
	}
	for _, r := range records {
		if err := savePost(ctx, tx, r.PostID, r.Post); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeletePost removes a post by locale and slug.
func (s *Store) DeletePost(ctx context.Context, locale, slug string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE locale = ? AND slug = ?`, locale, slug)
	return err
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
