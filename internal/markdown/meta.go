// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"agencysite/internal/models"
)

const (
	// MaxExcerptLen is the excerpt length limit in characters.
	MaxExcerptLen = 180

	// wordsPerMinute drives the read time estimate.
	wordsPerMinute = 200
)

// Legacy posts carry their metadata as labelled lines under the title, e.g.
// "**Теги:** go, react" or "Read time: 5 min".
var (
	tagsLabel     = labelPattern("Теги", "Tags")
	dateLabel     = labelPattern("Дата публикации", "Publication Date")
	readTimeLabel = labelPattern("Время чтения", "Read time", "Reading time")
	legacyLabels  = []*regexp.Regexp{tagsLabel, dateLabel, readTimeLabel}
)

// labelPattern matches a whole line holding one of labels followed by a
// colon, with optional bold/italic markers around either part.
func labelPattern(labels ...string) *regexp.Regexp {
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = regexp.QuoteMeta(l)
	}
	return regexp.MustCompile(`(?im)^[^\p{L}\p{N}\n]*(?:` + strings.Join(quoted, "|") + `)[*_ \t]*:[*_ \t]*(.+?)[*_ \t\r]*$`)
}

// ExtractOptions are the inputs besides the document text.
type ExtractOptions struct {
	// Slug is the last-resort title.
	Slug string
	// Lang selects the read time wording.
	Lang models.Lang
	// Path, when set, supplies ModTime from the file's modification time.
	Path string
	// Now is used for ModTime when Path is empty or cannot be stat'ed.
	// The zero value means the wall clock.
	Now time.Time
}

// Meta is the metadata derived from one Markdown document.
type Meta struct {
	Title       string
	Excerpt     string
	Tags        []string
	Date        string
	ReadTime    string
	CoverURL    string
	ModTime     time.Time
	FrontMatter FrontMatter
	// Body is the document without its front matter block.
	Body string
}

// Extract derives post metadata from a Markdown document. Each field is
// resolved independently: explicit front matter first, then what the body
// itself shows, then a default. doc is never modified.
func Extract(doc string, opts ExtractOptions) Meta {
	fm, body, _ := SplitFrontMatter(doc)
	src := []byte(body)
	root := analyzer.Parser().Parse(text.NewReader(src))
	labels := paragraphLines(root, src)

	m := Meta{FrontMatter: fm, Body: body}

	m.Title = fm.Get("title")
	if m.Title == "" {
		m.Title = firstH1(root, src)
	}
	if m.Title == "" {
		m.Title = strings.TrimSpace(opts.Slug)
	}

	m.Excerpt = fm.Get("excerpt")
	if m.Excerpt == "" {
		m.Excerpt = paragraphAfterHeading(root, src)
	}
	if m.Excerpt == "" {
		m.Excerpt = m.Title
	}
	m.Excerpt = truncate(m.Excerpt, MaxExcerptLen)

	m.CoverURL = fm.Get("coverUrl", "cover_url", "cover")
	if m.CoverURL == "" {
		m.CoverURL = firstImage(root)
	}
	if m.CoverURL == "" {
		m.CoverURL = firstHTMLImage(body)
	}

	m.Tags = fm.List("tags")
	if len(m.Tags) == 0 {
		if v := labelValue(tagsLabel, labels); v != "" {
			m.Tags = splitList(v)
		}
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}

	m.Date = fm.Get("date")
	if m.Date == "" {
		m.Date = labelValue(dateLabel, labels)
	}

	m.ReadTime = fm.Get("readTime", "read_time")
	if m.ReadTime == "" {
		m.ReadTime = labelValue(readTimeLabel, labels)
	}
	if m.ReadTime == "" {
		m.ReadTime = EstimateReadTime(countWords(root, src), opts.Lang)
	}

	m.ModTime = modTime(opts)
	return m
}

// EstimateReadTime renders the reading time of words at 200 words per
// minute, never less than one minute.
func EstimateReadTime(words int, lang models.Lang) string {
	minutes := int(math.Round(float64(words) / wordsPerMinute))
	if minutes < 1 {
		minutes = 1
	}
	if lang == models.LangEN {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%d мин", minutes)
}

// ClampExcerpt cuts an excerpt to MaxExcerptLen characters.
func ClampExcerpt(s string) string {
	return truncate(strings.TrimSpace(s), MaxExcerptLen)
}

// PlainText returns the text of a Markdown body with its syntax stripped and
// whitespace collapsed. Fenced and indented code is left out.
func PlainText(body string) string {
	src := []byte(body)
	root := analyzer.Parser().Parse(text.NewReader(src))
	return collapse(nodeText(root, src))
}

func modTime(opts ExtractOptions) time.Time {
	if opts.Path != "" {
		if info, err := os.Stat(opts.Path); err == nil {
			return info.ModTime()
		}
	}
	if !opts.Now.IsZero() {
		return opts.Now
	}
	return time.Now()
}

// firstH1 returns the text of the first level-1 heading.
func firstH1(root ast.Node, src []byte) string {
	var title string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			title = collapse(nodeText(h, src))
			if title != "" {
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})
	return title
}

// paragraphAfterHeading returns the first paragraph with visible text that
// follows the first heading. Legacy metadata lines do not count as text.
func paragraphAfterHeading(root ast.Node, src []byte) string {
	var heading ast.Node
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if n.Kind() == ast.KindHeading {
			heading = n
			break
		}
	}
	if heading == nil {
		return ""
	}

	for n := heading.NextSibling(); n != nil; n = n.NextSibling() {
		if n.Kind() != ast.KindParagraph {
			continue
		}
		if t := collapse(visibleText(n, src, labelLines(n, src))); t != "" {
			return t
		}
	}
	return ""
}

// firstImage returns the destination of the first Markdown image.
func firstImage(root ast.Node) string {
	var dest string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if img, ok := n.(*ast.Image); ok && entering {
			dest = strings.TrimSpace(string(img.Destination))
			if dest != "" {
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})
	return dest
}

// firstHTMLImage returns the src of the first raw <img> tag in body.
func firstHTMLImage(body string) string {
	if !strings.Contains(strings.ToLower(body), "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return strings.TrimSpace(src)
}

// nodeText concatenates the visible text under n. Images, raw HTML and code
// blocks contribute nothing; block boundaries become spaces.
func nodeText(n ast.Node, src []byte) string {
	return visibleText(n, src, nil)
}

// visibleText is nodeText leaving out text that starts inside one of the
// skip segments.
func visibleText(n ast.Node, src []byte, skip []text.Segment) string {
	var b strings.Builder
	ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				b.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Text:
			if inSegments(v.Segment.Start, skip) {
				return ast.WalkContinue, nil
			}
			b.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.AutoLink:
			b.Write(v.Label(src))
			return ast.WalkSkipChildren, nil
		case *ast.Image, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func countWords(root ast.Node, src []byte) int {
	return len(strings.Fields(nodeText(root, src)))
}

// paragraphLines returns the source lines of every paragraph, one per line.
// Legacy labels are only recognised there, never inside code blocks or
// headings.
func paragraphLines(root ast.Node, src []byte) string {
	var b strings.Builder
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindParagraph, ast.KindTextBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.WriteString(strings.TrimRight(string(seg.Value(src)), "\r\n"))
				b.WriteByte('\n')
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// labelLines returns the lines of block n that hold legacy metadata.
func labelLines(n ast.Node, src []byte) []text.Segment {
	var out []text.Segment
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		if isLegacyMetaLine(string(seg.Value(src))) {
			out = append(out, seg)
		}
	}
	return out
}

func inSegments(pos int, segs []text.Segment) bool {
	for _, seg := range segs {
		if pos >= seg.Start && pos < seg.Stop {
			return true
		}
	}
	return false
}

func isLegacyMetaLine(line string) bool {
	for _, re := range legacyLabels {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// labelValue returns the value of the first line of lines matching re.
func labelValue(re *regexp.Regexp, lines string) string {
	match := re.FindStringSubmatch(lines)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to at most limit characters.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit]))
}
