// internal/app/system/htmlsanitize/htmlsanitize.go
//
// Package htmlsanitize cleans user-authored rich text (organization and
// event descriptions) before storage and display. Built on bluemonday's
// UGC policy, widened with the table markup the description editor emits.
package htmlsanitize

import (
	"html"
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = buildPolicy()

func buildPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("u", "s", "sub", "sup", "mark", "hr")
	p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tfoot", "tr", "th", "td")
	p.AllowAttrs("style").OnElements("table", "thead", "tbody", "tr", "th", "td")
	p.AllowAttrs("colspan", "rowspan").OnElements("th", "td")
	return p
}

// Sanitize strips unsafe markup from s, preserving the formatting subset
// the description editor produces.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}

// SanitizeToHTML sanitizes s and returns it as template.HTML for direct
// rendering.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// tagPattern matches anything that looks like an HTML tag open. A bare
// "<" followed by whitespace or a digit ("5 < 10") does not count.
var tagPattern = regexp.MustCompile(`<[a-zA-Z/!]`)

// IsPlainText reports whether s contains no HTML tags.
func IsPlainText(s string) bool {
	return !tagPattern.MatchString(s)
}

// PlainTextToHTML escapes s and converts newlines to <br>, wrapping the
// result in a paragraph.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := html.EscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return "<p>" + escaped + "</p>"
}

// PrepareForDisplay renders stored text for display: plain text gets
// escaped and paragraph-wrapped, anything with markup gets sanitized.
func PrepareForDisplay(s string) template.HTML {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return template.HTML(PlainTextToHTML(s))
	}
	return SanitizeToHTML(s)
}
