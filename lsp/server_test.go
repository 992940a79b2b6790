package lsp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/packrat/project"
)

func newTestServer(t *testing.T, cfg project.Config) (*Server, string) {
	t.Helper()
	root := t.TempDir()
	grammar := `List = "[" [ Item { "," Item } ] "]" .
Item = IDENTIFIER | INTEGER | List .
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "list.ebnf"), []byte(grammar), 0o644))
	cfg.Grammar, cfg.Start = "list.ebnf", "List"
	p, err := project.New(root, cfg)
	require.NoError(t, err)

	ls := NewServer("test")
	ls.setProject(p)
	return ls, root
}

func fileURI(path string) protocol.DocumentUri {
	return "file://" + filepath.ToSlash(path)
}

func TestCheck(t *testing.T) {
	ls, root := newTestServer(t, project.Config{CompleteInput: true})

	diagnostics, ok := ls.Check(fileURI(filepath.Join(root, "a.list")), []byte("[a, [1]]"))
	require.True(t, ok)
	require.NotNil(t, diagnostics)
	require.Empty(t, diagnostics)

	diagnostics, ok = ls.Check(fileURI(filepath.Join(root, "a.list")), []byte("[a, 1 2]"))
	require.True(t, ok)
	require.Len(t, diagnostics, 1)
	d := diagnostics[0]
	require.Equal(t, protocol.Position{Line: 0, Character: 6}, d.Range.Start)
	require.Equal(t, protocol.Position{Line: 0, Character: 7}, d.Range.End)
	require.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
	require.Equal(t, "packrat", *d.Source)
	require.Contains(t, d.Message, "but was: 2 [INTEGER]")
}

func TestCheckAtEnd(t *testing.T) {
	ls, root := newTestServer(t, project.Config{})
	path := filepath.Join(root, "b.list")

	diagnostics, ok := ls.Check(fileURI(path), []byte("[\n  a"))
	require.True(t, ok)
	require.Len(t, diagnostics, 1)
	d := diagnostics[0]
	require.Equal(t, protocol.Position{Line: 1, Character: 3}, d.Range.Start)
	require.Equal(t, d.Range.Start, d.Range.End)
	require.Equal(t, `Expected: "," but was: EOF ('`+path+`')`, d.Message)
}

func TestCheckOutsideProject(t *testing.T) {
	ls := NewServer("test")
	_, ok := ls.Check("file:///tmp/x.list", []byte("[]"))
	require.False(t, ok, "no project")

	ls, root := newTestServer(t, project.Config{Include: []string{"src/**/*.list"}, Exclude: []string{"src/gen/**"}})
	_, ok = ls.Check(fileURI(filepath.Join(root, "a.list")), []byte("[]"))
	require.False(t, ok)
	_, ok = ls.Check(fileURI(filepath.Join(root, "src", "gen", "a.list")), []byte("[]"))
	require.False(t, ok)
	_, ok = ls.Check(fileURI(filepath.Join(filepath.Dir(root), "a.list")), []byte("[]"))
	require.False(t, ok)
	_, ok = ls.Check(fileURI(filepath.Join(root, "src", "x", "a.list")), []byte("[]"))
	require.True(t, ok)
}

func TestTokenRangeCountsUTF16(t *testing.T) {
	text := []byte("[a]\n[\"é😀\", x\n")

	r := tokenRange(text, 2, 11, 1)
	require.Equal(t, protocol.Position{Line: 1, Character: 8}, r.Start)
	require.Equal(t, protocol.Position{Line: 1, Character: 9}, r.End)

	r = tokenRange(text, 1, 1, 1)
	require.Equal(t, protocol.Position{Line: 0, Character: 1}, r.Start)

	r = tokenRange(text, 2, 12, 0)
	require.Equal(t, protocol.Position{Line: 1, Character: 9}, r.Start)

	r = tokenRange(text, 9, 3, 1)
	require.Equal(t, protocol.Position{Line: 8, Character: 3}, r.Start)
}

func TestURIToPath(t *testing.T) {
	path, err := uriToPath("file:///home/me/My%20Project/a.list")
	require.NoError(t, err)
	require.Equal(t, "/home/me/My Project/a.list", path)

	path, err = uriToPath("relative/a.list")
	require.NoError(t, err)
	require.Equal(t, "relative/a.list", path)
}
