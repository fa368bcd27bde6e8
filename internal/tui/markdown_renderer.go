package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const minDescriptionWrap = 24

type rendererKey struct {
	wrap int
	dark bool
}

// markdownRenderer renders task descriptions with glamour, keeping one renderer per wrap width and palette brightness.
type markdownRenderer struct {
	cache map[rendererKey]*glamour.TermRenderer
}

func (r *markdownRenderer) termRenderer(key rendererKey) (*glamour.TermRenderer, error) {
	if tr, ok := r.cache[key]; ok {
		return tr, nil
	}
	style := "light"
	if key.dark {
		style = "dark"
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(key.wrap),
	)
	if err != nil {
		return nil, err
	}
	if r.cache == nil {
		r.cache = make(map[rendererKey]*glamour.TermRenderer)
	}
	r.cache[key] = tr
	return tr, nil
}

// render returns the description as ANSI text, or the trimmed source when glamour fails.
func (r *markdownRenderer) render(description string, width int, dark bool) string {
	source := strings.TrimSpace(description)
	if source == "" {
		return ""
	}
	tr, err := r.termRenderer(rendererKey{wrap: max(width, minDescriptionWrap), dark: dark})
	if err != nil {
		return source
	}
	out, err := tr.Render(source)
	if err != nil {
		return source
	}
	return strings.TrimRight(out, "\n")
}
