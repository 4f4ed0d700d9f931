// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
)

// ErrSchemaVersion is returned when the stored schema version cannot be
// interpreted. It is fatal: resetting it would re-run migrations against
// tables that already exist.
var ErrSchemaVersion = errors.New("unrecognized schema version")

// schemaVersionKey is the _meta key holding the applied schema version.
const schemaVersionKey = "schema_version"

// migration is one additive schema step. Steps never go down.
type migration struct {
	version int
	stmts   []string
}

// migrations are applied in order; LatestVersion is the last one.
var migrations = []migration{
	{
		version: 1,
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS posts (
				slug           TEXT    NOT NULL,
				lang           TEXT    NOT NULL,
				title          TEXT    NOT NULL DEFAULT '',
				content_md     TEXT    NOT NULL DEFAULT '',
				excerpt        TEXT    NOT NULL DEFAULT '',
				tags_json      TEXT    NOT NULL DEFAULT '[]',
				date_text      TEXT    NOT NULL DEFAULT '',
				read_time_text TEXT    NOT NULL DEFAULT '',
				created_at_ms  INTEGER NOT NULL,
				updated_at_ms  INTEGER NOT NULL,
				UNIQUE (slug, lang)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_posts_lang_updated ON posts (lang, updated_at_ms DESC)`,
		},
	},
	{
		version: 2,
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS projects (
				project_id          TEXT    NOT NULL,
				lang                TEXT    NOT NULL,
				title               TEXT    NOT NULL DEFAULT '',
				description         TEXT    NOT NULL DEFAULT '',
				full_description_md TEXT    NOT NULL DEFAULT '',
				image_url           TEXT    NOT NULL DEFAULT '',
				technologies_json   TEXT    NOT NULL DEFAULT '[]',
				features_json       TEXT    NOT NULL DEFAULT '[]',
				demo_url            TEXT    NOT NULL DEFAULT '',
				github_url          TEXT    NOT NULL DEFAULT '',
				created_at_ms       INTEGER NOT NULL,
				updated_at_ms       INTEGER NOT NULL,
				PRIMARY KEY (project_id, lang)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_projects_lang_updated ON projects (lang, updated_at_ms DESC)`,
		},
	},
	{
		version: 3,
		stmts: []string{
			`ALTER TABLE posts ADD COLUMN cover_url TEXT NOT NULL DEFAULT ''`,
		},
	},
}

// LatestVersion is the schema version Migrate brings a database to.
var LatestVersion = migrations[len(migrations)-1].version

// Migrate applies every pending schema step and records the new version in
// _meta, all in one transaction. It is safe to call on every start: a fresh
// file gets the full schema and an up-to-date file is left untouched.
func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migrate begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`CREATE TABLE IF NOT EXISTS _meta (key TEXT PRIMARY KEY, value TEXT)`); err != nil {
		return fmt.Errorf("migrate create _meta: %w", err)
	}

	current, err := schemaVersion(tx)
	if err != nil {
		return err
	}

	if current == LatestVersion {
		slog.Debug("database schema up to date", "version", current)
		return tx.Commit()
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		for _, stmt := range m.stmts {
			if _, err := tx.Exec(stmt); err != nil {
				return fmt.Errorf("migrate to v%d: %w", m.version, err)
			}
		}
		slog.Info("database migration applied", "version", m.version)
	}

	if _, err := tx.Exec(`
		INSERT INTO _meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, schemaVersionKey, strconv.Itoa(LatestVersion)); err != nil {
		return fmt.Errorf("migrate set version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate commit: %w", err)
	}

	slog.Info("database migrations applied", "from", current, "to", LatestVersion)
	return nil
}

// SchemaVersion returns the version recorded in _meta, 0 when nothing has
// been recorded yet.
func SchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = '_meta'`).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("schema version: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}
	return schemaVersion(db)
}

// querier is the part of *sql.DB and *sql.Tx that schemaVersion needs.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func schemaVersion(q querier) (int, error) {
	var raw sql.NullString
	err := q.QueryRow(`SELECT value FROM _meta WHERE key = ?`, schemaVersionKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if !raw.Valid {
		return 0, fmt.Errorf("%w: NULL", ErrSchemaVersion)
	}

	v, err := strconv.Atoi(raw.String)
	if err != nil || v < 0 || v > LatestVersion {
		return 0, fmt.Errorf("%w: %q", ErrSchemaVersion, raw.String)
	}
	return v, nil
}
