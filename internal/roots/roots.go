// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package roots resolves where file-based content lives. A deployment may
// have a distribution root (the built site) next to the repository checkout;
// readers prefer the distribution root, writers keep both in sync.
package roots

import (
	"path/filepath"

	"agencysite/internal/models"
)

// Roots holds the filesystem bases content is resolved against.
type Roots struct {
	// Dist is the optional distribution root.
	Dist string
	// Repo is the repository checkout. Empty means the working directory.
	Repo string
}

// Bases returns the roots in preference order.
func (r Roots) Bases() []string {
	var bases []string
	if r.Dist != "" {
		bases = append(bases, filepath.Clean(r.Dist))
	}
	return appendUnique(bases, r.repo())
}

// ReadDirs returns the candidate directories for rel, most preferred first.
func (r Roots) ReadDirs(rel string) []string {
	var dirs []string
	for _, base := range r.Bases() {
		dirs = appendUnique(dirs,
			filepath.Join(base, "content", rel),
			filepath.Join(base, "public", "content", rel),
		)
	}
	return dirs
}

// WriteDirs returns every directory a write to rel must reach.
func (r Roots) WriteDirs(rel string) []string {
	var dirs []string
	if r.Dist != "" {
		dirs = append(dirs, filepath.Join(r.Dist, "content", rel))
	}
	return appendUnique(dirs, filepath.Join(r.repo(), "public", "content", rel))
}

// ProjectFiles returns the candidate legacy project files for lang.
func (r Roots) ProjectFiles(lang models.Lang) []string {
	name := "projects." + string(lang) + ".json"

	var files []string
	for _, base := range r.Bases() {
		files = appendUnique(files,
			filepath.Join(base, "content", name),
			filepath.Join(base, "public", "content", name),
		)
	}
	return files
}

func (r Roots) repo() string {
	if r.Repo == "" {
		return "."
	}
	return filepath.Clean(r.Repo)
}

func appendUnique(list []string, items ...string) []string {
next:
	for _, item := range items {
		for _, existing := range list {
			if existing == item {
				continue next
			}
		}
		list = append(list, item)
	}
	return list
}
