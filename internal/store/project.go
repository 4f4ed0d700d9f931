// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"agencysite/internal/models"
	"agencysite/internal/slug"
)

const projectColumns = `project_id, lang, title, description, full_description_md,
	image_url, technologies_json, features_json, demo_url, github_url,
	created_at_ms, updated_at_ms`

// GetProjects returns every project in lang, most recently updated first.
// Projects written in the same batch keep their batch order.
func (s *ContentStore) GetProjects(ctx context.Context, lang models.Lang) ([]models.Project, error) {
	return getProjects(ctx, s.db, lang)
}

// rowsQuerier is satisfied by *sql.DB and *sql.Tx.
type rowsQuerier interface {
	rowQuerier
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func getProjects(ctx context.Context, q rowsQuerier, lang models.Lang) ([]models.Project, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE lang = ?
		ORDER BY updated_at_ms DESC, rowid ASC
	`, lang)
	if err != nil {
		return nil, fmt.Errorf("get projects: %w", err)
	}
	defer rows.Close()

	items := []models.Project{}
	for rows.Next() {
		var p models.Project
		var techJSON, featJSON string
		if err := rows.Scan(
			&p.ID, &p.Lang, &p.Title, &p.Description, &p.FullDescription,
			&p.Image, &techJSON, &featJSON, &p.DemoURL, &p.GithubURL,
			&p.CreatedAtMs, &p.UpdatedAtMs,
		); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		if p.Technologies, err = decodeList(techJSON); err != nil {
			return nil, fmt.Errorf("project %s/%s technologies: %w", p.Lang, p.ID, err)
		}
		if p.Features, err = decodeList(featJSON); err != nil {
			return nil, fmt.Errorf("project %s/%s features: %w", p.Lang, p.ID, err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// ReplaceProjects swaps the whole project set of lang for list and returns
// the stored set. The delete and the inserts share one transaction under the
// write lock. A project whose ID was already stored keeps its CreatedAtMs.
// Projects without an ID get one derived from the title, or a random UUID.
func (s *ContentStore) ReplaceProjects(ctx context.Context, lang models.Lang, list []models.Project) ([]models.Project, error) {
	ctx = context.WithoutCancel(ctx)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("replace projects begin: %w", err)
	}
	defer tx.Rollback()

	created, err := projectCreatedAt(ctx, tx, lang)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE lang = ?`, lang); err != nil {
		return nil, fmt.Errorf("replace projects delete: %w", err)
	}

	nowMs := s.now().UnixMilli()
	for i := range list {
		p := list[i]
		id := projectID(p)

		createdAt, ok := created[id]
		if !ok {
			createdAt = p.CreatedAtMs
			if createdAt <= 0 {
				createdAt = nowMs
			}
		}
		updatedAt := p.UpdatedAtMs
		if updatedAt <= 0 {
			updatedAt = nowMs
		}

		techJSON, err := encodeList(p.Technologies)
		if err != nil {
			return nil, fmt.Errorf("replace projects %s technologies: %w", id, err)
		}
		featJSON, err := encodeList(p.Features)
		if err != nil {
			return nil, fmt.Errorf("replace projects %s features: %w", id, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO projects (`+projectColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(project_id, lang) DO UPDATE SET
				title = excluded.title,
				description = excluded.description,
				full_description_md = excluded.full_description_md,
				image_url = excluded.image_url,
				technologies_json = excluded.technologies_json,
				features_json = excluded.features_json,
				demo_url = excluded.demo_url,
				github_url = excluded.github_url,
				updated_at_ms = excluded.updated_at_ms
		`, id, lang, p.Title, p.Description, p.FullDescription,
			p.Image, techJSON, featJSON, p.DemoURL, p.GithubURL,
			createdAt, updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("replace projects insert %s: %w", id, err)
		}
	}

	stored, err := getProjects(ctx, tx, lang)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("replace projects commit: %w", err)
	}
	return stored, nil
}

// CountProjects returns the number of projects across all languages.
func (s *ContentStore) CountProjects(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return count, nil
}

// projectCreatedAt maps project IDs currently stored for lang to their
// creation time.
func projectCreatedAt(ctx context.Context, q rowsQuerier, lang models.Lang) (map[string]int64, error) {
	rows, err := q.QueryContext(ctx, `SELECT project_id, created_at_ms FROM projects WHERE lang = ?`, lang)
	if err != nil {
		return nil, fmt.Errorf("replace projects lookup: %w", err)
	}
	defer rows.Close()

	created := make(map[string]int64)
	for rows.Next() {
		var id string
		var at int64
		if err := rows.Scan(&id, &at); err != nil {
			return nil, fmt.Errorf("replace projects scan: %w", err)
		}
		created[id] = at
	}
	return created, rows.Err()
}

// projectID returns p.ID, falling back to a slug of the title and then to a
// random UUID.
func projectID(p models.Project) string {
	if p.ID != "" {
		return p.ID
	}
	if id := slug.Generate(p.Title); id != "" {
		return id
	}
	return uuid.NewString()
}
