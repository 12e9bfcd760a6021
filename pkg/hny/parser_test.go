package hny_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cookie-jar-solutions/honey/pkg/hny"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []hny.Section
	}{
		{
			name: "single section",
			in:   "greet\nHello, {{ name }}!\n",
			want: []hny.Section{{Name: "greet", Body: "Hello, {{ name }}!"}},
		},
		{
			name: "two sections",
			in:   "a\nfirst\n---\nb\nsecond\nline\n",
			want: []hny.Section{{Name: "a", Body: "first"}, {Name: "b", Body: "second\nline"}},
		},
		{
			name: "long separator and trailing spaces",
			in:   "a\nx\n-------   \nb\ny",
			want: []hny.Section{{Name: "a", Body: "x"}, {Name: "b", Body: "y"}},
		},
		{
			name: "empty sections skipped",
			in:   "---\n\n---\na\nx\n---\n   \n---\n",
			want: []hny.Section{{Name: "a", Body: "x"}},
		},
		{
			name: "single line section has empty body",
			in:   "only-name\n---\nb\nbody",
			want: []hny.Section{{Name: "only-name", Body: ""}, {Name: "b", Body: "body"}},
		},
		{
			name: "crlf line endings",
			in:   "a\r\nx\r\n---\r\nb\r\ny\r\n",
			want: []hny.Section{{Name: "a", Body: "x"}, {Name: "b", Body: "y"}},
		},
		{
			name: "inline dashes are not separators",
			in:   "a\nuse --- here\n--",
			want: []hny.Section{{Name: "a", Body: "use --- here\n--"}},
		},
		{
			name: "duplicate name keeps first position",
			in:   "a\nold\n---\nb\nmid\n---\na\nnew",
			want: []hny.Section{{Name: "a", Body: "new"}, {Name: "b", Body: "mid"}},
		},
		{
			name: "empty input",
			in:   "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hny.ParseString(tt.in))
		})
	}
}

func TestParse_Reader(t *testing.T) {
	sections, err := hny.Parse(strings.NewReader("x\n1\n---\ny\n2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, hny.Names(sections))
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts"+hny.Ext)
	require.NoError(t, os.WriteFile(path, []byte("summarize\nSummarize: {{ text }}\n"), 0644))

	sections, err := hny.ParseFile(path)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "Summarize: {{ text }}", sections[0].Body)

	_, err = hny.ParseFile(filepath.Join(t.TempDir(), "missing.hny"))
	assert.Error(t, err)
}
