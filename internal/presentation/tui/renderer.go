// Package tui holds the terminal presentation helpers of the honey CLI.
package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Renderer turns an executor reply into terminal output.
type Renderer func(string) (string, error)

// Plain returns replies unchanged.
func Plain(s string) (string, error) {
	return s, nil
}

// NewRenderer returns a Renderer that formats markdown with glamour.
// It falls back to Plain when the terminal renderer cannot be built.
func NewRenderer(width int) Renderer {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return Plain
	}

	return func(markdown string) (string, error) {
		out, err := r.Render(markdown)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(out, "\n") + "\n", nil
	}
}
