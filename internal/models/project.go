// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Project is a portfolio entry. Projects of one language are always written
// as a whole set, never one at a time.
type Project struct {
	ID              string   `json:"id"`
	Lang            Lang     `json:"lang"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	FullDescription string   `json:"fullDescription"`
	Image           string   `json:"image"`
	Technologies    []string `json:"technologies"`
	Features        []string `json:"features"`
	DemoURL         string   `json:"demoUrl,omitempty"`
	GithubURL       string   `json:"githubUrl,omitempty"`
	CreatedAtMs     int64    `json:"createdAtMs"`
	UpdatedAtMs     int64    `json:"updatedAtMs"`
}
