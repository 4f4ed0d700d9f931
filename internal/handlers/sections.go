// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"agencysite/internal/models"
	"agencysite/internal/section"
)

// sectionFile is the JSON shape of one section document.
type sectionFile struct {
	Slug    string      `json:"slug"`
	Lang    models.Lang `json:"lang"`
	Content string      `json:"content"`
}

// sectionFor resolves the {section} URL parameter. It writes a 404 and
// returns nil for sections that are not configured.
func (a *API) sectionFor(w http.ResponseWriter, r *http.Request) *section.Handler {
	h, ok := a.sections[chi.URLParam(r, "section")]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown section")
		return nil
	}
	return h
}

// ListSection returns the slugs of a section.
func (a *API) ListSection(w http.ResponseWriter, r *http.Request) {
	h := a.sectionFor(w, r)
	if h == nil {
		return
	}

	slugs, err := h.List()
	if err != nil {
		serverError(w, r, "list section failed", err)
		return
	}
	writeJSON(w, http.StatusOK, slugs)
}

// GetSectionFile returns one section document.
func (a *API) GetSectionFile(w http.ResponseWriter, r *http.Request) {
	h := a.sectionFor(w, r)
	if h == nil {
		return
	}
	lang, err := queryLang(r, "")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	fileSlug := slugParam(r)
	content, ok, err := h.Read(fileSlug, lang)
	if errors.Is(err, section.ErrInvalidSlug) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		serverError(w, r, "read section file failed", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	writeJSON(w, http.StatusOK, sectionFile{Slug: fileSlug, Lang: lang, Content: content})
}

// PutSectionFile writes one section document to every write root.
func (a *API) PutSectionFile(w http.ResponseWriter, r *http.Request) {
	h := a.sectionFor(w, r)
	if h == nil {
		return
	}
	lang, err := queryLang(r, "")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var in struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if utf8.RuneCountInString(in.Content) > maxContentLen {
		writeError(w, http.StatusBadRequest, "Content is too long (max 1,000,000 characters).")
		return
	}

	fileSlug := slugParam(r)
	err = h.Write(fileSlug, lang, in.Content)
	if errors.Is(err, section.ErrInvalidSlug) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		serverError(w, r, "write section file failed", err)
		return
	}

	slog.Info("section file saved", "section", chi.URLParam(r, "section"), "slug", fileSlug, "lang", lang)
	writeJSON(w, http.StatusOK, sectionFile{Slug: fileSlug, Lang: lang, Content: in.Content})
}

// DeleteSectionFile removes one section document from every write root.
func (a *API) DeleteSectionFile(w http.ResponseWriter, r *http.Request) {
	h := a.sectionFor(w, r)
	if h == nil {
		return
	}
	lang, err := queryLang(r, "")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	fileSlug := slugParam(r)
	err = h.Delete(fileSlug, lang)
	if errors.Is(err, section.ErrInvalidSlug) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		serverError(w, r, "delete section file failed", err)
		return
	}

	slog.Info("section file deleted", "section", chi.URLParam(r, "section"), "slug", fileSlug, "lang", lang)
	w.WriteHeader(http.StatusNoContent)
}
