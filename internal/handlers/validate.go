// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for post and section fields.
const (
	maxTitleLen   = 300
	maxSlugLen    = 200
	maxContentLen = 1_000_000
	maxExcerptLen = 1_000
	maxTags       = 50
)

// validatePost checks post inputs and returns the first error found.
// Everything else is optional and filled in by the extractor.
func validatePost(title, slug, content, excerpt string, tags []string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if msg := validateSlug(slug); msg != "" {
		return msg
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return "Content is too long (max 1,000,000 characters)."
	}
	if utf8.RuneCountInString(excerpt) > maxExcerptLen {
		return "Excerpt is too long (max 1,000 characters)."
	}
	if len(tags) > maxTags {
		return "Too many tags (max 50)."
	}
	return ""
}

// validateSlug rejects slugs that cannot be used in URLs or file names.
func validateSlug(slug string) string {
	if slug == "" {
		return "Slug is required."
	}
	if utf8.RuneCountInString(slug) > maxSlugLen {
		return "Slug is too long (max 200 characters)."
	}
	if strings.ContainsAny(slug, "/\\?#") || strings.Contains(slug, "..") || strings.TrimSpace(slug) != slug {
		return "Slug contains invalid characters."
	}
	return ""
}
