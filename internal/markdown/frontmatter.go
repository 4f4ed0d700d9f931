// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"strings"
)

// frontMatterDelim opens and closes a front matter block.
const frontMatterDelim = "---"

// FrontMatter holds the key/value preamble of a Markdown document. Only the
// subset hand-written posts use is understood:
//
//	---
//	title: Hello
//	tags:
//	  - go
//	  - sqlite
//	---
//
// Inline lists ("tags: [go, sqlite]") are accepted as well.
type FrontMatter struct {
	Values map[string]string
	Lists  map[string][]string
}

// Get returns the first non-empty scalar among keys.
func (fm FrontMatter) Get(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(fm.Values[k]); v != "" {
			return v
		}
	}
	return ""
}

// List returns the list stored under key. A scalar value is split on commas
// so "tags: go, sqlite" works too.
func (fm FrontMatter) List(key string) []string {
	if items := fm.Lists[key]; len(items) > 0 {
		return items
	}
	if v := fm.Get(key); v != "" {
		return splitList(v)
	}
	return nil
}

// Empty reports whether no keys were parsed.
func (fm FrontMatter) Empty() bool {
	return len(fm.Values) == 0 && len(fm.Lists) == 0
}

// SplitFrontMatter separates a leading front matter block from the document
// body. When doc does not start with a delimiter line, or the block is never
// closed, the whole document is the body and ok is false.
func SplitFrontMatter(doc string) (fm FrontMatter, body string, ok bool) {
	doc = strings.TrimPrefix(doc, "\ufeff")
	lines := strings.Split(doc, "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != frontMatterDelim {
		return FrontMatter{}, doc, false
	}

	closing := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontMatterDelim {
			closing = i
			break
		}
	}
	if closing < 0 {
		return FrontMatter{}, doc, false
	}

	fm = parseFrontMatter(lines[1:closing])
	body = strings.Join(lines[closing+1:], "\n")
	return fm, body, true
}

func parseFrontMatter(lines []string) FrontMatter {
	fm := FrontMatter{
		Values: make(map[string]string),
		Lists:  make(map[string][]string),
	}

	var lastKey string
	for _, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if item, isItem := listItem(trimmed); isItem {
			if lastKey != "" && item != "" {
				fm.Lists[lastKey] = append(fm.Lists[lastKey], item)
			}
			continue
		}

		key, value, found := strings.Cut(trimmed, ":")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			continue
		}
		value = strings.TrimSpace(value)
		lastKey = key

		if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
			fm.Lists[key] = splitList(value[1 : len(value)-1])
			continue
		}
		fm.Values[key] = unquote(value)
	}
	return fm
}

// listItem recognises "- item" lines.
func listItem(line string) (string, bool) {
	if line == "-" {
		return "", true
	}
	rest, ok := strings.CutPrefix(line, "- ")
	if !ok {
		return "", false
	}
	return unquote(strings.TrimSpace(rest)), true
}

// splitList splits a comma separated list, dropping empty items.
func splitList(s string) []string {
	var items []string
	for _, part := range strings.Split(s, ",") {
		item := unquote(strings.Trim(strings.TrimSpace(part), "*_`"))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
