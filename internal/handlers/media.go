// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp" // register WebP decoder

	"agencysite/internal/storage"
)

const (
	// maxUploadSize is the maximum allowed file upload size (20 MB).
	maxUploadSize = 20 << 20

	// maxImagePixels caps the number of pixels to prevent memory bombs.
	// 10000x10000 = 100 million pixels, ~400 MB decoded in RGBA.
	maxImagePixels = 100_000_000
)

// allowedMediaTypes defines MIME types accepted for upload.
var allowedMediaTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

// UploadMedia stores a cover or project image and returns its public URL.
func (a *API) UploadMedia(w http.ResponseWriter, r *http.Request) {
	if a.media == nil {
		writeError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	// Limit request body to maxUploadSize + some overhead for form fields.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large, maximum size is 20 MB")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		serverError(w, r, "read upload failed", err)
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "empty file")
		return
	}

	contentType := detectMediaType(header.Filename, data)
	if !allowedMediaTypes[contentType] {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("file type %q is not allowed", contentType))
		return
	}
	if err := checkImage(contentType, data); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := header.Filename
	if filepath.Ext(name) == "" {
		name += extensionFromType(contentType)
	}
	key := storage.NewKey(name)

	url, err := a.media.Upload(r.Context(), key, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		serverError(w, r, "media upload failed", err)
		return
	}

	slog.Info("media uploaded", "key", key, "type", contentType, "size", len(data))
	writeJSON(w, http.StatusCreated, map[string]any{
		"url":  url,
		"key":  key,
		"type": contentType,
		"size": len(data),
	})
}

// DeleteMedia removes an uploaded object addressed by its public URL.
func (a *API) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	if a.media == nil {
		writeError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	key, ok := a.media.ExtractKey(r.URL.Query().Get("url"))
	if !ok {
		writeError(w, http.StatusBadRequest, "url does not point to uploaded media")
		return
	}

	if err := a.media.Delete(r.Context(), key); err != nil {
		serverError(w, r, "media delete failed", err)
		return
	}

	slog.Info("media deleted", "key", key)
	w.WriteHeader(http.StatusNoContent)
}

// detectMediaType sniffs the content type of an upload.
func detectMediaType(filename string, data []byte) string {
	contentType := http.DetectContentType(data)

	// DetectContentType returns text/xml or text/plain for SVGs.
	if strings.HasSuffix(strings.ToLower(filename), ".svg") &&
		(strings.Contains(contentType, "xml") || strings.Contains(contentType, "text/plain")) {
		return "image/svg+xml"
	}
	return contentType
}

// checkImage verifies that raster uploads decode and are not image bombs.
func checkImage(contentType string, data []byte) error {
	if contentType == "image/svg+xml" {
		return nil
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("unreadable image: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return fmt.Errorf("image too large: %dx%d exceeds %d pixels", cfg.Width, cfg.Height, maxImagePixels)
	}
	return nil
}

// extensionFromType returns a file extension for known MIME types.
func extensionFromType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	default:
		return ""
	}
}
