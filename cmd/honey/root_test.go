package main

import (
	"bytes"
	"testing"

	"github.com/cookie-jar-solutions/honey/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"hello.hny": "greet\nHello, {{ name }}!\n",
	})

	assert.Contains(t, execute(t, "version"), "honey version ")
	assert.Equal(t, "hello.greet\n", execute(t, "list", "--dir", dir))
	assert.Equal(t, "Hello, Ada!\n", execute(t, "render", "greet", "--dir", dir, "--var", "name=Ada"))
	assert.Equal(t, "[MOCK RESPONSE]\nPrompt: Hello, Bo!...\n",
		execute(t, "run", "greet", "--dir", dir, "--var", "name=Bo"))
}
