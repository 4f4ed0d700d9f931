// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package section serves content sections that stay on disk as per-language
// Markdown files instead of moving into the database.
package section

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/natefinch/atomic"

	"agencysite/internal/models"
)

// ErrInvalidSlug is returned for slugs that would escape the section directory.
var ErrInvalidSlug = errors.New("invalid slug")

const (
	dirPerms  = 0o755
	filePerms = 0o644
)

// Handler reads from the first directory that has a file and writes to all
// of its write directories.
type Handler struct {
	readDirs  []string
	writeDirs []string
}

// New creates a Handler. Both lists are in preference order.
func New(readDirs, writeDirs []string) *Handler {
	return &Handler{readDirs: readDirs, writeDirs: writeDirs}
}

// List returns the distinct slugs found across all read directories, sorted.
// Language variants ("x.en.md") share their slug with the primary file and
// are not listed separately.
func (h *Handler) List() ([]string, error) {
	seen := make(map[string]bool)
	for _, dir := range h.readDirs {
		entries, err := os.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("listing section %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			slug, lang, ok := models.SplitFileName(e.Name())
			if !ok || lang != models.LangRU {
				continue
			}
			seen[slug] = true
		}
	}

	slugs := make([]string, 0, len(seen))
	for s := range seen {
		slugs = append(slugs, s)
	}
	sort.Strings(slugs)
	return slugs, nil
}

// Read returns the document for slug in lang. ok is false when no read
// directory has it.
func (h *Handler) Read(slug string, lang models.Lang) (content string, ok bool, err error) {
	if err := validSlug(slug); err != nil {
		return "", false, err
	}
	name := lang.FileName(slug)
	for _, dir := range h.readDirs {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("reading section file: %w", err)
		}
		return string(data), true, nil
	}
	return "", false, nil
}

// Write stores content for slug in lang in every write directory. Each file
// is replaced atomically.
func (h *Handler) Write(slug string, lang models.Lang, content string) error {
	if err := validSlug(slug); err != nil {
		return err
	}
	name := lang.FileName(slug)
	for _, dir := range h.writeDirs {
		if err := os.MkdirAll(dir, dirPerms); err != nil {
			return fmt.Errorf("creating section dir: %w", err)
		}
		path := filepath.Join(dir, name)
		if err := atomic.WriteFile(path, strings.NewReader(content)); err != nil {
			return fmt.Errorf("writing section file: %w", err)
		}
		// atomic.WriteFile leaves new files with the temp file's mode.
		if err := os.Chmod(path, filePerms); err != nil {
			return fmt.Errorf("setting section file permissions: %w", err)
		}
	}
	return nil
}

// Delete removes slug in lang from every write directory. Directories that
// never had the file are fine.
func (h *Handler) Delete(slug string, lang models.Lang) error {
	if err := validSlug(slug); err != nil {
		return err
	}
	name := lang.FileName(slug)
	for _, dir := range h.writeDirs {
		err := os.Remove(filepath.Join(dir, name))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("deleting section file: %w", err)
		}
	}
	return nil
}

func validSlug(slug string) error {
	if slug == "" || slug == "." || strings.Contains(slug, "..") || strings.ContainsAny(slug, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	return nil
}
