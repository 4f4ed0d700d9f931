// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store maps posts and projects onto SQLite rows. ContentStore is the
// only component that reads or writes those tables.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"agencysite/internal/models"
)

// ContentStore handles all post and project database operations.
//
// Every mutating method runs its read-compute-write sequence inside writeMu
// and a single transaction, so two requests racing on the same key cannot
// lose an update or observe a half-replaced project set. The transaction
// commit is the durability point; it completes before writeMu is released.
// Reads are not serialized.
type ContentStore struct {
	db      *sql.DB
	writeMu sync.Mutex
	now     func() time.Time
}

// NewContentStore creates a new ContentStore with the given database
// connection. The schema must already be migrated.
func NewContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{db: db, now: time.Now}
}

const postColumns = `slug, lang, title, content_md, excerpt, tags_json,
	date_text, read_time_text, cover_url, created_at_ms, updated_at_ms`

const postMetaColumns = `slug, lang, title, excerpt, tags_json,
	date_text, read_time_text, cover_url, created_at_ms, updated_at_ms`

// GetPost retrieves a post by slug and language. Returns nil if not found.
func (s *ContentStore) GetPost(ctx context.Context, slug string, lang models.Lang) (*models.Post, error) {
	return getPost(ctx, s.db, slug, lang)
}

// rowQuerier is satisfied by *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getPost(ctx context.Context, q rowQuerier, slug string, lang models.Lang) (*models.Post, error) {
	p := &models.Post{}
	var tagsJSON string
	err := q.QueryRowContext(ctx, `
		SELECT `+postColumns+`
		FROM posts WHERE slug = ? AND lang = ?
	`, slug, lang).Scan(
		&p.Slug, &p.Lang, &p.Title, &p.Content, &p.Excerpt, &tagsJSON,
		&p.Date, &p.ReadTime, &p.CoverURL, &p.CreatedAtMs, &p.UpdatedAtMs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if p.Tags, err = decodeList(tagsJSON); err != nil {
		return nil, fmt.Errorf("get post %s/%s tags: %w", lang, slug, err)
	}
	return p, nil
}

// UpsertPost inserts or replaces the post keyed by (Slug, Lang) and returns
// the stored row. Missing fields are stored as empty values. CreatedAtMs of
// an existing row always survives; for a new row it is p.CreatedAtMs, or now
// when unset. UpdatedAtMs is p.UpdatedAtMs, or now when unset.
func (s *ContentStore) UpsertPost(ctx context.Context, p *models.Post) (*models.Post, error) {
	ctx = context.WithoutCancel(ctx)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tagsJSON, err := encodeList(p.Tags)
	if err != nil {
		return nil, fmt.Errorf("upsert post tags: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("upsert post begin: %w", err)
	}
	defer tx.Rollback()

	nowMs := s.now().UnixMilli()
	createdAt := p.CreatedAtMs
	if createdAt <= 0 {
		createdAt = nowMs
	}
	updatedAt := p.UpdatedAtMs
	if updatedAt <= 0 {
		updatedAt = nowMs
	}

	var existing int64
	err = tx.QueryRowContext(ctx,
		`SELECT created_at_ms FROM posts WHERE slug = ? AND lang = ?`, p.Slug, p.Lang,
	).Scan(&existing)
	switch {
	case err == nil:
		createdAt = existing
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("upsert post lookup: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO posts (`+postColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug, lang) DO UPDATE SET
			title = excluded.title,
			content_md = excluded.content_md,
			excerpt = excluded.excerpt,
			tags_json = excluded.tags_json,
			date_text = excluded.date_text,
			read_time_text = excluded.read_time_text,
			cover_url = excluded.cover_url,
			created_at_ms = excluded.created_at_ms,
			updated_at_ms = excluded.updated_at_ms
	`, p.Slug, p.Lang, p.Title, p.Content, p.Excerpt, tagsJSON,
		p.Date, p.ReadTime, p.CoverURL, createdAt, updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert post: %w", err)
	}

	stored, err := getPost(ctx, tx, p.Slug, p.Lang)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("upsert post commit: %w", err)
	}
	return stored, nil
}

// DeletePost removes a post by slug and language. It reports whether a row
// was removed.
func (s *ContentStore) DeletePost(ctx context.Context, slug string, lang models.Lang) (bool, error) {
	ctx = context.WithoutCancel(ctx)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE slug = ? AND lang = ?`, slug, lang)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete post rows affected: %w", err)
	}
	return n > 0, nil
}

// ListPostMetas returns the listing projection of every post in lang, most
// recently updated first. The Markdown body is never read.
func (s *ContentStore) ListPostMetas(ctx context.Context, lang models.Lang) ([]models.PostMeta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postMetaColumns+`
		FROM posts
		WHERE lang = ?
		ORDER BY updated_at_ms DESC, slug ASC
	`, lang)
	if err != nil {
		return nil, fmt.Errorf("list post metas: %w", err)
	}
	defer rows.Close()

	items := []models.PostMeta{}
	for rows.Next() {
		var m models.PostMeta
		var tagsJSON string
		if err := rows.Scan(
			&m.Slug, &m.Lang, &m.Title, &m.Excerpt, &tagsJSON,
			&m.Date, &m.ReadTime, &m.CoverURL, &m.CreatedAtMs, &m.UpdatedAtMs,
		); err != nil {
			return nil, fmt.Errorf("scan post meta: %w", err)
		}
		if m.Tags, err = decodeList(tagsJSON); err != nil {
			return nil, fmt.Errorf("post meta %s/%s tags: %w", m.Lang, m.Slug, err)
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// CountPosts returns the number of posts across all languages.
func (s *ContentStore) CountPosts(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

// encodeList stores a list column as JSON text. nil becomes "[]".
func encodeList(items []string) (string, error) {
	if items == nil {
		return "[]", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeList is the inverse of encodeList. Empty text decodes to an empty
// list so hand-edited rows still load.
func decodeList(raw string) ([]string, error) {
	items := []string{}
	if raw == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}
