// Package security strips markup from user-authored strings before they are
// written into destination records.
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer removes all tags from a string. The output is HTML-escaped
// text, safe to embed in a record body.
type TextSanitizer struct {
	policy *bluemonday.Policy
}

func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{policy: bluemonday.StrictPolicy()}
}

// Line sanitizes single-line input: tags stripped, whitespace runs (line
// breaks included) collapsed to one space, ends trimmed.
func (s *TextSanitizer) Line(raw string) string {
	return strings.Join(strings.Fields(s.policy.Sanitize(raw)), " ")
}

// Block sanitizes multi-line input. Line breaks are kept, each line is
// trimmed of trailing whitespace and the block of surrounding blank lines.
func (s *TextSanitizer) Block(raw string) string {
	clean := s.policy.Sanitize(strings.ReplaceAll(raw, "\r\n", "\n"))

	lines := strings.Split(clean, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Plain is Line without HTML escaping, for values that are stored as plain
// text such as tag lists.
func (s *TextSanitizer) Plain(raw string) string {
	return html.UnescapeString(s.Line(raw))
}
