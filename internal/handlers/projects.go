// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"agencysite/internal/cache"
	"agencysite/internal/models"
)

// maxProjects caps the size of one project set.
const maxProjects = 500

// GetProjects returns the project set of a language.
func (a *API) GetProjects(w http.ResponseWriter, r *http.Request) {
	lang, err := queryLang(r, "")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a.cachedJSON(w, r, cache.ProjectsKey(lang), func() (any, error) {
		return a.store.GetProjects(r.Context(), lang)
	})
}

// PutProjects replaces the whole project set of a language. The body must
// be a JSON array; an empty array clears the set.
func (a *API) PutProjects(w http.ResponseWriter, r *http.Request) {
	lang, err := queryLang(r, "")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var raw json.RawMessage
	if err := decodeJSON(w, r, &raw); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '[' {
		writeError(w, http.StatusBadRequest, "projects must be a JSON array")
		return
	}

	var list []models.Project
	if err := json.Unmarshal(raw, &list); err != nil {
		writeError(w, http.StatusBadRequest, "malformed project: "+err.Error())
		return
	}
	if len(list) > maxProjects {
		writeError(w, http.StatusBadRequest, "too many projects")
		return
	}

	stored, err := a.store.ReplaceProjects(r.Context(), lang, list)
	if err != nil {
		serverError(w, r, "replace projects failed", err)
		return
	}
	a.cache.Invalidate(r.Context(), cache.ProjectsKey(lang))

	slog.Info("projects replaced", "lang", lang, "count", len(stored))
	writeJSON(w, http.StatusOK, stored)
}
