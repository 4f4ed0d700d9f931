// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Post is a blog article. (Slug, Lang) is its identity; the "ru" and "en"
// variants of the same slug are unrelated rows.
type Post struct {
	Slug        string   `json:"slug"`
	Lang        Lang     `json:"lang"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Excerpt     string   `json:"excerpt"`
	Tags        []string `json:"tags"`
	Date        string   `json:"date"`     // display text, never parsed
	ReadTime    string   `json:"readTime"` // display text, e.g. "5 min"
	CoverURL    string   `json:"coverUrl"`
	CreatedAtMs int64    `json:"createdAtMs"`
	UpdatedAtMs int64    `json:"updatedAtMs"`
}

// PostMeta is the listing projection of a Post: everything except the body.
type PostMeta struct {
	Slug        string   `json:"slug"`
	Lang        Lang     `json:"lang"`
	Title       string   `json:"title"`
	Excerpt     string   `json:"excerpt"`
	Tags        []string `json:"tags"`
	Date        string   `json:"date"`
	ReadTime    string   `json:"readTime"`
	CoverURL    string   `json:"coverUrl"`
	CreatedAtMs int64    `json:"createdAtMs"`
	UpdatedAtMs int64    `json:"updatedAtMs"`
}

// Meta returns the listing projection of p.
func (p *Post) Meta() PostMeta {
	return PostMeta{
		Slug:        p.Slug,
		Lang:        p.Lang,
		Title:       p.Title,
		Excerpt:     p.Excerpt,
		Tags:        p.Tags,
		Date:        p.Date,
		ReadTime:    p.ReadTime,
		CoverURL:    p.CoverURL,
		CreatedAtMs: p.CreatedAtMs,
		UpdatedAtMs: p.UpdatedAtMs,
	}
}
