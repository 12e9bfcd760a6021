package render_test

import (
	"testing"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/render"
	"github.com/flosch/pongo2/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Substitution(t *testing.T) {
	out, err := render.String("Hello, {{ name }}!", domain.Vars{"name": "World"})
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", out)
}

func TestRender_MissingVariableIsEmpty(t *testing.T) {
	out, err := render.String("Hello, {{ name }}!", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello, !", out)
}

func TestRender_NoEscaping(t *testing.T) {
	out, err := render.String("{{ code }}", domain.Vars{"code": "<b>a & b</b>"})
	require.NoError(t, err)
	assert.Equal(t, "<b>a & b</b>", out)
}

func TestRender_ControlFlow(t *testing.T) {
	tpl, err := render.Compile("{% if formal %}Dear{% else %}Hi{% endif %} {% for n in names %}{{ n }}{% if not forloop.Last %}, {% endif %}{% endfor %}")
	require.NoError(t, err)

	out, err := tpl.Render(domain.Vars{"formal": true, "names": []string{"Ann", "Bo"}})
	require.NoError(t, err)
	assert.Equal(t, "Dear Ann, Bo", out)

	out, err = tpl.Render(domain.Vars{"names": []string{"Cy"}})
	require.NoError(t, err)
	assert.Equal(t, "Hi Cy", out)
}

func TestCompile_SyntaxError(t *testing.T) {
	_, err := render.Compile("{% if x %}unterminated")
	require.Error(t, err)

	var syn *render.SyntaxError
	assert.ErrorAs(t, err, &syn)
}

func TestVariables(t *testing.T) {
	text := `Summarize {{ text }} in {{ words|default:"50" }} words.
{% if tone %}Tone: {{ tone }}{% endif %}
{% for item in items %}- {{ item }} ({{ forloop.Counter }}){% endfor %}`

	assert.Equal(t, []string{"items", "text", "tone", "words"}, render.Variables(text))
	assert.Empty(t, render.Variables("plain text"))
}

func TestRender_EscapingIsLocal(t *testing.T) {
	out, err := render.String("{{ code }}", domain.Vars{"code": "<i>"})
	require.NoError(t, err)
	assert.Equal(t, "<i>", out)

	// the package default stays untouched for other pongo2 users
	tpl, err := pongo2.FromString("{{ code }}")
	require.NoError(t, err)
	html, err := tpl.Execute(pongo2.Context{"code": "<i>"})
	require.NoError(t, err)
	assert.Equal(t, "&lt;i&gt;", html)
}

func TestCompile_IncludeCannotReadFiles(t *testing.T) {
	_, err := render.Compile(`{% include "/etc/hostname" %}`)
	require.Error(t, err)

	var syn *render.SyntaxError
	assert.ErrorAs(t, err, &syn)
}

func TestCompile_SourceIsUnwrapped(t *testing.T) {
	tpl, err := render.Compile("Hi {{ name }}")
	require.NoError(t, err)
	assert.Equal(t, "Hi {{ name }}", tpl.Source())
}
