// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// content API. Reads are public; every write sits behind the rate limiter
// and the API key check.
package router

import (
	"github.com/go-chi/chi/v5"

	"agencysite/internal/handlers"
	"agencysite/internal/middleware"
)

// Auth configures the write group. Limiter may be nil to disable rate
// limiting.
type Auth struct {
	APIKey     string
	APIKeyHash string
	Limiter    *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(api *handlers.API, auth Auth) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", api.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/posts", api.ListPosts)
		r.Get("/posts/{slug}", api.GetPost)
		r.Get("/posts/{slug}/html", api.GetPostHTML)
		r.Get("/projects", api.GetProjects)
		r.Get("/sections/{section}", api.ListSection)
		r.Get("/sections/{section}/{slug}", api.GetSectionFile)

		// Writes
		r.Group(func(r chi.Router) {
			if auth.Limiter != nil {
				r.Use(auth.Limiter.Middleware)
			}
			r.Use(middleware.APIKey(auth.APIKey, auth.APIKeyHash))

			r.Post("/posts", api.CreatePost)
			r.Put("/posts/{slug}", api.PutPost)
			r.Delete("/posts/{slug}", api.DeletePost)

			r.Put("/projects", api.PutProjects)

			r.Put("/sections/{section}/{slug}", api.PutSectionFile)
			r.Delete("/sections/{section}/{slug}", api.DeleteSectionFile)

			r.Post("/media", api.UploadMedia)
			r.Delete("/media", api.DeleteMedia)
		})
	})

	return r
}
