package honey_test

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackageDoc(t *testing.T) {
	f, err := parser.ParseFile(token.NewFileSet(), "doc.go", nil, parser.ParseComments)
	require.NoError(t, err)
	require.NotNil(t, f.Doc)

	text := f.Doc.Text()
	assert.Contains(t, text, `honey.New("./prompts")`)
	assert.Contains(t, text, "reads every .hny file under ./prompts")
}
