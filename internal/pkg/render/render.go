package render

import (
	"bytes"
	"html"
	"html/template"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

// ExcerptLength is the rune length of derived excerpts.
const ExcerptLength = 160

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
		htmlrenderer.WithXHTML(),
	),
)

var (
	tagPattern        = regexp.MustCompile(`(?s)<[^>]*>`)
	scriptPattern     = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	whitespacePattern = regexp.MustCompile(`[\s\x{00a0}\x{3000}]+`)
)

// Markdown converts markdown text to HTML. Raw HTML inside the source is
// not passed through.
func Markdown(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	var out bytes.Buffer
	if err := markdownEngine.Convert([]byte(text), &out); err != nil {
		return template.HTMLEscapeString(text)
	}
	return out.String()
}

// StripTags removes markup, decodes entities and collapses whitespace.
func StripTags(s string) string {
	s = scriptPattern.ReplaceAllString(s, " ")
	s = tagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

// Excerpt returns the first n runes of the plain text of content.
func Excerpt(content string, n int) string {
	if n <= 0 {
		n = ExcerptLength
	}
	plain := []rune(StripTags(content))
	if len(plain) <= n {
		return string(plain)
	}
	return strings.TrimSpace(string(plain[:n]))
}
