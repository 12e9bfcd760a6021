// Package render compiles and renders prompt templates.
//
// Templates use the Django/Jinja syntax understood by pongo2:
// {{ name }} substitution, {% if %} and {% for %} blocks and filters.
// Undefined variables render as empty text and never cause an error.
// Output is never HTML-escaped; prompts are plain text. Escaping is turned off
// per template, so other pongo2 users in the same binary keep the global default.
// Templates are self-contained: {% include %}, {% extends %} and {% import %}
// cannot read files.
package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/flosch/pongo2/v6"
)

var errNoLoader = errors.New("templates cannot load other templates")

const (
	rawOpen  = "{% autoescape off %}"
	rawClose = "{% endautoescape %}"
)

var set = pongo2.NewSet("honey", noLoader{})

type noLoader struct{}

func (noLoader) Abs(base, name string) string { return name }

func (noLoader) Get(path string) (io.Reader, error) {
	return nil, fmt.Errorf("%s: %w", path, errNoLoader)
}

// SyntaxError is returned when a template cannot be compiled.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("template syntax: %v", e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Template is a compiled prompt template. It is safe for concurrent use.
type Template struct {
	source string
	tpl    *pongo2.Template
}

// Compile parses text once so it can be rendered many times.
func Compile(text string) (*Template, error) {
	tpl, err := set.FromString(rawOpen + text + rawClose)
	if err != nil {
		return nil, &SyntaxError{Err: err}
	}
	return &Template{source: text, tpl: tpl}, nil
}

// Source returns the raw template text.
func (t *Template) Source() string {
	return t.source
}

// Render executes the template with vars.
func (t *Template) Render(vars domain.Vars) (string, error) {
	ctx := pongo2.Context{}
	for k, v := range vars {
		ctx[k] = v
	}
	out, err := t.tpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return out, nil
}

// String compiles and renders text in one step.
func String(text string, vars domain.Vars) (string, error) {
	t, err := Compile(text)
	if err != nil {
		return "", err
	}
	return t.Render(vars)
}
