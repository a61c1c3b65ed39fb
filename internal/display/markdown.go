package display

import (
	"html"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
)

var (
	boldPattern   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.*?)\*`)
	codePattern   = regexp.MustCompile("`(.*?)`")
)

// FormatMarkdown decodes HTML entities and styles inline **bold**, *italic*
// and `code` spans for terminal output. Block-level markdown is left as is.
func FormatMarkdown(text string) string {
	out := html.UnescapeString(text)

	out = boldPattern.ReplaceAllStringFunc(out, func(m string) string {
		return boldText.Sprint(boldPattern.FindStringSubmatch(m)[1])
	})
	out = italicPattern.ReplaceAllStringFunc(out, func(m string) string {
		return italicText.Sprint(italicPattern.FindStringSubmatch(m)[1])
	})
	out = codePattern.ReplaceAllStringFunc(out, func(m string) string {
		return codeText.Sprint(codePattern.FindStringSubmatch(m)[1])
	})

	return out
}

// Renderer renders full markdown with glamour
type Renderer struct {
	term *glamour.TermRenderer
}

// NewRenderer creates a glamour renderer wrapping at width columns
func NewRenderer(width int) (*Renderer, error) {
	term, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{term: term}, nil
}

// Render returns the rendered markdown. On failure the entity-decoded
// source is returned unchanged.
func (r *Renderer) Render(text string) string {
	decoded := html.UnescapeString(text)
	if r == nil || r.term == nil {
		return decoded
	}
	out, err := r.term.Render(decoded)
	if err != nil {
		return decoded
	}
	return strings.TrimRight(out, "\n")
}
