// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown reads post and section documents: it splits off front
// matter, derives post metadata (title, excerpt, tags, cover, read time) and
// renders bodies to HTML using goldmark. Raw HTML pass-through stays enabled
// because legacy articles embed <img> and <iframe> tags directly.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// md is the configured goldmark instance used for rendering, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,         // GitHub-Flavored Markdown: tables, strikethrough, autolinks, task lists
		extension.Typographer, // Smart quotes and dashes
		highlighting.NewHighlighting( // Syntax highlighting for fenced code blocks
			highlighting.WithStyle("monokai"),
			highlighting.WithFormatOptions(),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(), // Auto-generate heading IDs for anchors
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(),
	),
)

// analyzer parses documents for metadata extraction. It has no Typographer,
// which would turn quotes into HTML entities inside extracted text.
var analyzer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// ToHTML renders a Markdown document into HTML. A leading front matter block
// is not part of the output.
func ToHTML(source string) (string, error) {
	_, body, _ := SplitFrontMatter(source)

	var buf bytes.Buffer
	if err := md.Convert([]byte(body), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
