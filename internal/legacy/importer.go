// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package legacy seeds an empty content store from the flat files the site
// used before it had a database: Markdown posts and per-language project
// JSON arrays.
package legacy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"

	"agencysite/internal/markdown"
	"agencysite/internal/models"
	"agencysite/internal/roots"
)

// PostsDir is the content directory legacy posts live in, relative to a root.
const PostsDir = "blog"

// Store is the part of the content store the importer writes through.
type Store interface {
	CountPosts(ctx context.Context) (int, error)
	CountProjects(ctx context.Context) (int, error)
	UpsertPost(ctx context.Context, p *models.Post) (*models.Post, error)
	ReplaceProjects(ctx context.Context, lang models.Lang, list []models.Project) ([]models.Project, error)
}

// Importer copies legacy files into a Store. It only ever fills empty
// tables; content already in the store is never touched.
type Importer struct {
	store Store
	roots roots.Roots
}

// NewImporter creates an Importer reading from r.
func NewImporter(store Store, r roots.Roots) *Importer {
	return &Importer{store: store, roots: r}
}

// Result counts what one run imported.
type Result struct {
	Posts    int
	Projects int
}

// Run imports posts, then projects.
func (im *Importer) Run(ctx context.Context) (Result, error) {
	var res Result
	posts, err := im.ImportPosts(ctx)
	if err != nil {
		return res, err
	}
	res.Posts = posts

	projects, err := im.ImportProjects(ctx)
	if err != nil {
		return res, err
	}
	res.Projects = projects
	return res, nil
}

// ImportPosts imports Markdown posts when the posts table is empty. Only the
// first candidate directory holding Markdown files is used.
func (im *Importer) ImportPosts(ctx context.Context) (int, error) {
	n, err := im.store.CountPosts(ctx)
	if err != nil {
		return 0, fmt.Errorf("checking posts: %w", err)
	}
	if n > 0 {
		slog.Debug("posts already present, skipping legacy import", "count", n)
		return 0, nil
	}

	for _, dir := range im.roots.ReadDirs(PostsDir) {
		files, err := markdownFiles(dir)
		if err != nil {
			return 0, err
		}
		if len(files) == 0 {
			continue
		}

		imported := 0
		for _, name := range files {
			post, err := readPost(dir, name)
			if err != nil {
				slog.Warn("skipping legacy post", "file", filepath.Join(dir, name), "error", err)
				continue
			}
			if _, err := im.store.UpsertPost(ctx, post); err != nil {
				return imported, fmt.Errorf("importing post %s: %w", filepath.Join(dir, name), err)
			}
			imported++
		}
		slog.Info("imported legacy posts", "dir", dir, "count", imported)
		return imported, nil
	}
	return 0, nil
}

// readPost builds the post record for one legacy file. Its errors mean the
// file is skipped; store errors are not its concern.
func readPost(dir, name string) (*models.Post, error) {
	slug, lang, _ := models.SplitFileName(name)
	path := filepath.Join(dir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading post: %w", err)
	}

	meta := markdown.Extract(string(data), markdown.ExtractOptions{
		Slug: slug,
		Lang: lang,
		Path: path,
	})
	ms := meta.ModTime.UnixMilli()

	return &models.Post{
		Slug:        slug,
		Lang:        lang,
		Title:       meta.Title,
		Content:     meta.Body,
		Excerpt:     meta.Excerpt,
		Tags:        meta.Tags,
		Date:        meta.Date,
		ReadTime:    meta.ReadTime,
		CoverURL:    meta.CoverURL,
		CreatedAtMs: ms,
		UpdatedAtMs: ms,
	}, nil
}

// markdownFiles lists the Markdown files directly inside dir. A missing
// directory has none.
func markdownFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, _, ok := models.SplitFileName(e.Name()); ok {
			files = append(files, e.Name())
		}
	}
	return files, nil
}

// ImportProjects imports each language's project list when the projects
// table is empty. Per language, the first candidate file that holds a JSON
// array wins.
func (im *Importer) ImportProjects(ctx context.Context) (int, error) {
	n, err := im.store.CountProjects(ctx)
	if err != nil {
		return 0, fmt.Errorf("checking projects: %w", err)
	}
	if n > 0 {
		slog.Debug("projects already present, skipping legacy import", "count", n)
		return 0, nil
	}

	total := 0
	for _, lang := range models.Langs {
		for _, path := range im.roots.ProjectFiles(lang) {
			list, err := readProjects(path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				slog.Warn("skipping legacy projects file", "file", path, "error", err)
				continue
			}

			stored, err := im.store.ReplaceProjects(ctx, lang, list)
			if err != nil {
				return total, fmt.Errorf("importing projects %s: %w", lang, err)
			}
			slog.Info("imported legacy projects", "file", path, "lang", lang, "count", len(stored))
			total += len(stored)
			break
		}
	}
	return total, nil
}

// readProjects parses a legacy project file. Comments and trailing commas
// are tolerated. Anything but a JSON array is an error.
func readProjects(path string) ([]models.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	var list []models.Project
	if err := json.Unmarshal(standardized, &list); err != nil {
		return nil, fmt.Errorf("decoding projects: %w", err)
	}
	if list == nil {
		return nil, errors.New("decoding projects: not an array")
	}
	return list, nil
}
