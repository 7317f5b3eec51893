// Package render converts page Markdown to HTML and sanitizes the result
// before it can reach a client. The bluemonday policy is the XSS defense
// boundary for user-authored content: no tag or attribute outside its
// allow-lists survives, regardless of what the Markdown source or
// front-matter contained.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/nemo-olympiad/nemoweb/internal/content"
)

// markdown is the goldmark converter. Raw HTML is passed through here so
// that the sanitizer below is the single place allow-listing happens.
var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.Strikethrough,
		extension.Table,
	),
	goldmark.WithRendererOptions(
		goldmarkhtml.WithUnsafe(),
	),
)

// policy is shared by the post body and the solution fragment. Both passes
// must apply identical allow-lists; using one policy value makes a
// configuration drift between them impossible.
var policy = buildPolicy()

func buildPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	p.AllowElements(
		"h1", "h2", "h3", "p", "br", "img", "a", "ul", "li", "ol",
		"strong", "em", "u", "s", "blockquote", "pre", "code",
		"video", "iframe", "div",
	)

	p.AllowAttrs("src", "alt", "title", "width", "height").OnElements("img")
	p.AllowAttrs("src", "width", "height", "controls", "preload", "muted",
		"loop", "autoplay", "playsinline").OnElements("video")
	p.AllowAttrs("href", "title", "class").OnElements("a")
	p.AllowAttrs("src", "width", "height", "frameborder", "allow",
		"allowfullscreen", "title").OnElements("iframe")
	p.AllowAttrs("class").OnElements("div")

	p.AllowStandardURLs()
	return p
}

// Markdown converts raw Markdown to sanitized HTML.
func Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render: convert markdown: %w", err)
	}
	return template.HTML(policy.SanitizeBytes(buf.Bytes())), nil
}

// Sanitize applies the shared policy to already-rendered HTML.
// It is idempotent: sanitizing sanitized output is a no-op.
func Sanitize(html string) template.HTML {
	return template.HTML(policy.Sanitize(html))
}

// PostHTML renders and sanitizes a page's Markdown body.
func PostHTML(p *content.Page) (template.HTML, error) {
	return Markdown(p.Body)
}

// SolutionHTML renders the embedded solution fragment of a solved monthly
// problem through the exact same pipeline as the body. It returns empty
// HTML unless the page is a published, solved problem with solution text.
func SolutionHTML(p *content.Page) (template.HTML, error) {
	if !isSolvedProblem(p) || p.Meta.SolutionContent == "" {
		return "", nil
	}
	return Markdown(p.Meta.SolutionContent)
}

func isSolvedProblem(p *content.Page) bool {
	return p.Meta.Status == content.StatusPublished &&
		p.Meta.IsSolved &&
		strings.HasPrefix(p.Path, content.DirMonthsProblems+"/")
}
