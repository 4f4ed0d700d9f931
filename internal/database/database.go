// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package database owns the SQLite file that backs the content store. Open
// returns a ready-to-use *sql.DB bound to a single connection and Migrate
// brings its schema up to date.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// dsnParams are go-sqlite3 connection parameters, applied to every
// connection the pool opens. The rollback journal keeps the database a
// single self-contained file, and synchronous=FULL makes every commit
// durable before it returns.
const dsnParams = "_journal_mode=DELETE&_sync=FULL&_busy_timeout=5000"

// Open opens the SQLite database at path, creating it (and its parent
// directories) when it does not exist yet. A path that exists but cannot be
// read, is a directory, or is not a SQLite database is an error: the caller
// is expected to abort startup instead of starting with an empty store.
func Open(path string) (*sql.DB, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("database create dir: %w", err)
			}
		}
		slog.Info("database file not found, creating a new one", "path", path)
	case err != nil:
		return nil, fmt.Errorf("database stat: %w", err)
	case info.IsDir():
		return nil, fmt.Errorf("database path %s is a directory", path)
	}

	db, err := sql.Open("sqlite3", path+"?"+dsnParams)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}

	// One connection for the lifetime of the process. Writers are serialized
	// by the store; readers queue behind them on the pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}

	// Touch the schema so a file that is not a database fails here rather
	// than on the first request.
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&n); err != nil {
		db.Close()
		return nil, fmt.Errorf("database read schema: %w", err)
	}

	slog.Info("database opened", "path", path)
	return db, nil
}
