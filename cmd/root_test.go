package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd("test")

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "capture", "export", "books", "sites", "mcp"} {
		assert.True(t, names[want], "missing %s command", want)
	}
}

func TestSitesCmd(t *testing.T) {
	root := NewRootCmd("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"sites", "--format", "json", "https://www.jstor.org/stable/41857568?read-now=1&seq=1"})

	require.NoError(t, root.Execute())
	assert.JSONEq(t, `{"url":"https://www.jstor.org/stable/41857568?read-now=1&seq=1","reader":true,"book_key":"www.jstor.org/stable/41857568"}`, out.String())
}

func TestBooksCmd_UsesConfiguredStore(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATABASE_PATH", dir+"/books.db")
	t.Setenv("EXPORT_DIR", dir+"/exports")
	t.Setenv("LOG_LEVEL", "error")

	root := NewRootCmd("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"books", "list"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "No books captured yet\n", out.String())
}
