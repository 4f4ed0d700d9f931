// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"agencysite/internal/cache"
	"agencysite/internal/markdown"
	"agencysite/internal/models"
	"agencysite/internal/slug"
)

// postInput is the request body of post writes. Everything but the title
// may be omitted.
type postInput struct {
	Slug        string   `json:"slug"`
	Lang        string   `json:"lang"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Excerpt     string   `json:"excerpt"`
	Tags        []string `json:"tags"`
	Date        string   `json:"date"`
	ReadTime    string   `json:"readTime"`
	CoverURL    string   `json:"coverUrl"`
	CreatedAtMs int64    `json:"createdAtMs"`
	UpdatedAtMs int64    `json:"updatedAtMs"`
}

// toPost builds the record to store. Metadata the client left empty is
// derived from the Markdown content. Explicit excerpts are clamped like
// derived ones.
func (in postInput) toPost(postSlug string, lang models.Lang) *models.Post {
	p := &models.Post{
		Slug:        postSlug,
		Lang:        lang,
		Title:       strings.TrimSpace(in.Title),
		Content:     in.Content,
		Excerpt:     markdown.ClampExcerpt(in.Excerpt),
		Tags:        in.Tags,
		Date:        strings.TrimSpace(in.Date),
		ReadTime:    strings.TrimSpace(in.ReadTime),
		CoverURL:    strings.TrimSpace(in.CoverURL),
		CreatedAtMs: in.CreatedAtMs,
		UpdatedAtMs: in.UpdatedAtMs,
	}

	if p.Excerpt != "" && p.ReadTime != "" && len(p.Tags) > 0 && p.Date != "" && p.CoverURL != "" {
		return p
	}

	// The given title stands in when the content has no title of its own.
	meta := markdown.Extract(p.Content, markdown.ExtractOptions{
		Slug: p.Title,
		Lang: lang,
		Now:  time.Now(),
	})
	if p.Excerpt == "" {
		p.Excerpt = meta.Excerpt
	}
	if p.ReadTime == "" {
		p.ReadTime = meta.ReadTime
	}
	if len(p.Tags) == 0 {
		p.Tags = meta.Tags
	}
	if p.Date == "" {
		p.Date = meta.Date
	}
	if p.CoverURL == "" {
		p.CoverURL = meta.CoverURL
	}
	return p
}

// slugParam returns the decoded {slug} URL parameter.
func slugParam(r *http.Request) string {
	raw := chi.URLParam(r, "slug")
	if s, err := url.PathUnescape(raw); err == nil {
		return s
	}
	return raw
}

// ListPosts returns post metadata for a language, most recently updated first.
func (a *API) ListPosts(w http.ResponseWriter, r *http.Request) {
	lang, err := queryLang(r, "")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a.cachedJSON(w, r, cache.PostsKey(lang), func() (any, error) {
		return a.store.ListPostMetas(r.Context(), lang)
	})
}

// GetPost returns one post including its content.
func (a *API) GetPost(w http.ResponseWriter, r *http.Request) {
	lang, err := queryLang(r, "")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := a.store.GetPost(r.Context(), slugParam(r), lang)
	if err != nil {
		serverError(w, r, "get post failed", err)
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// GetPostHTML returns the post body rendered to an HTML fragment.
func (a *API) GetPostHTML(w http.ResponseWriter, r *http.Request) {
	lang, err := queryLang(r, "")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := a.store.GetPost(r.Context(), slugParam(r), lang)
	if err != nil {
		serverError(w, r, "get post failed", err)
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	rendered, err := markdown.ToHTML(post.Content)
	if err != nil {
		serverError(w, r, "render post failed", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(rendered))
}

// CreatePost stores a post whose slug comes from the body or, failing that,
// from its title.
func (a *API) CreatePost(w http.ResponseWriter, r *http.Request) {
	var in postInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	postSlug := strings.TrimSpace(in.Slug)
	if postSlug == "" {
		postSlug = slug.Generate(in.Title)
	}
	a.savePost(w, r, in, postSlug, http.StatusCreated)
}

// PutPost creates or replaces the post addressed by the URL.
func (a *API) PutPost(w http.ResponseWriter, r *http.Request) {
	var in postInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	a.savePost(w, r, in, slugParam(r), http.StatusOK)
}

func (a *API) savePost(w http.ResponseWriter, r *http.Request, in postInput, postSlug string, status int) {
	lang, err := queryLang(r, in.Lang)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validatePost(in.Title, postSlug, in.Content, in.Excerpt, in.Tags); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	stored, err := a.store.UpsertPost(r.Context(), in.toPost(postSlug, lang))
	if err != nil {
		serverError(w, r, "upsert post failed", err)
		return
	}
	a.cache.Invalidate(r.Context(), cache.PostsKey(lang))

	slog.Info("post saved", "slug", stored.Slug, "lang", stored.Lang)
	writeJSON(w, status, stored)
}

// DeletePost removes one language variant of a post.
func (a *API) DeletePost(w http.ResponseWriter, r *http.Request) {
	lang, err := queryLang(r, "")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	postSlug := slugParam(r)
	deleted, err := a.store.DeletePost(r.Context(), postSlug, lang)
	if err != nil {
		serverError(w, r, "delete post failed", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	a.cache.Invalidate(r.Context(), cache.PostsKey(lang))

	slog.Info("post deleted", "slug", postSlug, "lang", lang)
	w.WriteHeader(http.StatusNoContent)
}
