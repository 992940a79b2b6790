// Package lsp publishes parse failures of a packrat project as editor
// diagnostics over the Language Server Protocol.
package lsp

import (
	"bytes"
	"errors"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/packrat/parser"
	"github.com/dhamidi/packrat/project"
)

const lsName = "packrat"

var log = commonlog.GetLogger("packrat.lsp")

type Server struct {
	handler protocol.Handler
	server  *server.Server
	version string

	mu      sync.Mutex
	project *project.Project
}

func NewServer(version string) *Server {
	ls := &Server{
		version: version,
	}

	ls.handler = protocol.Handler{
		Initialize:            ls.initialize,
		Initialized:           ls.initialized,
		Shutdown:              ls.shutdown,
		SetTrace:              ls.setTrace,
		TextDocumentDidOpen:   ls.textDocumentDidOpen,
		TextDocumentDidChange: ls.textDocumentDidChange,
		TextDocumentDidClose:  ls.textDocumentDidClose,
		TextDocumentDidSave:   ls.textDocumentDidSave,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	p, err := project.LoadFrom(rootDir)
	switch {
	case errors.Is(err, project.ErrNoConfig):
		log.Warningf("%s, diagnostics are disabled", err)
	case err != nil:
		return nil, err
	default:
		ls.setProject(p)
	}

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.project == nil {
		return nil
	}
	if _, err := ls.project.Start(); err != nil {
		log.Errorf("grammar: %s", err)
	}
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.publish(ctx, params.TextDocument.URI, []byte(params.TextDocument.Text))
	return nil
}

func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			ls.publish(ctx, params.TextDocument.URI, []byte(textChange.Text))
		}
	}
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ctx.Notify(string(protocol.ServerTextDocumentPublishDiagnostics), protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (ls *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		ls.publish(ctx, params.TextDocument.URI, []byte(*params.Text))
	}
	return nil
}

func (ls *Server) publish(ctx *glsp.Context, uri protocol.DocumentUri, text []byte) {
	diagnostics, ok := ls.Check(uri, text)
	if !ok {
		return
	}
	ctx.Notify(string(protocol.ServerTextDocumentPublishDiagnostics), protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// Check parses text and returns its diagnostics. ok is false when the
// document is not part of the project.
func (ls *Server) Check(uri protocol.DocumentUri, text []byte) (diagnostics []protocol.Diagnostic, ok bool) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	p := ls.project
	if p == nil {
		return nil, false
	}
	path, err := uriToPath(uri)
	if err != nil || !includes(p, path) {
		return nil, false
	}

	diagnostics = []protocol.Diagnostic{}
	_, _, err = p.Parse(path, text)
	var failure *parser.RecognitionFailure
	switch {
	case errors.As(err, &failure):
		diagnostics = append(diagnostics, Diagnostic(failure, text))
	case err != nil:
		log.Errorf("%s: %s", path, err)
	}
	return diagnostics, true
}

func (ls *Server) setProject(p *project.Project) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.project = p
}

// includes reports whether path is selected by the project's include
// patterns. A project without include patterns takes every file.
func includes(p *project.Project, path string) bool {
	rel, err := filepath.Rel(p.RootDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range p.Config.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	if len(p.Config.Include) == 0 {
		return true
	}
	for _, pattern := range p.Config.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Diagnostic turns a recognition failure into an error spanning the outpost
// token, or the end of the last token when the input ended early. text is
// the parsed source, needed to count columns in UTF-16 code units.
func Diagnostic(f *parser.RecognitionFailure, text []byte) protocol.Diagnostic {
	var r protocol.Range
	switch tok := f.Token; {
	case tok != nil:
		r = tokenRange(text, tok.Line, tok.Column, len(tok.Value))
	case f.State.Len() > 0:
		last := f.State.Token(f.State.Len() - 1)
		r = tokenRange(text, last.Line, last.Column+len(last.Value), 0)
	}
	return protocol.Diagnostic{
		Range:    r,
		Severity: severityPtr(protocol.DiagnosticSeverityError),
		Source:   strPtr(lsName),
		Message:  parser.Render(f.State),
	}
}

// tokenRange converts a 1-based line and a 0-based byte column spanning
// length bytes to an LSP range.
func tokenRange(text []byte, line, column, length int) protocol.Range {
	if line > 0 {
		line--
	}
	src := lineText(text, line)
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(line), Character: utf16Column(src, column)},
		End:   protocol.Position{Line: protocol.UInteger(line), Character: utf16Column(src, column+length)},
	}
}

// lineText returns the 0-based line of text without its newline.
func lineText(text []byte, line int) []byte {
	for ; line > 0; line-- {
		i := bytes.IndexByte(text, '\n')
		if i < 0 {
			return nil
		}
		text = text[i+1:]
	}
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return text
}

// utf16Column counts the UTF-16 code units of the first column bytes of
// line. Bytes past the end of line count one each.
func utf16Column(line []byte, column int) protocol.UInteger {
	var col int
	for i := 0; i < column; {
		if i >= len(line) {
			col += column - i
			break
		}
		r, size := utf8.DecodeRune(line[i:])
		col += utf16.RuneLen(r)
		i += size
	}
	return protocol.UInteger(col)
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func strPtr(s string) *string {
	return &s
}

func severityPtr(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
