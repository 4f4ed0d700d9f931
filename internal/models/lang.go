// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "strings"

// Lang identifies the language variant of a post, project or section file.
// Every piece of content exists independently per language.
type Lang string

const (
	// LangRU is the primary language. Its files carry no language suffix.
	LangRU Lang = "ru"
	// LangEN is the secondary language, stored as "<slug>.en.md".
	LangEN Lang = "en"
)

// Langs lists the supported languages, primary first.
var Langs = []Lang{LangRU, LangEN}

// ParseLang maps a request or file value onto a supported language.
// An empty value selects the primary language.
func ParseLang(s string) (Lang, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(LangRU):
		return LangRU, true
	case string(LangEN):
		return LangEN, true
	}
	return "", false
}

// Valid reports whether l is one of the supported languages.
func (l Lang) Valid() bool {
	return l == LangRU || l == LangEN
}

// FileName returns the Markdown file name for slug in this language:
// "slug.md" for the primary language, "slug.en.md" otherwise.
func (l Lang) FileName(slug string) string {
	if l == LangRU || l == "" {
		return slug + ".md"
	}
	return slug + "." + string(l) + ".md"
}

// SplitFileName is the inverse of FileName. It returns false for files that
// are not Markdown.
func SplitFileName(name string) (slug string, lang Lang, ok bool) {
	base, found := strings.CutSuffix(name, ".md")
	if !found || base == "" {
		return "", "", false
	}
	if s, isEN := strings.CutSuffix(base, "."+string(LangEN)); isEN && s != "" {
		return s, LangEN, true
	}
	return base, LangRU, true
}
