// Package format writes parse results for people and tools.
package format

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/dhamidi/packrat/ast"
	"github.com/dhamidi/packrat/parser"
)

// Result is the outcome of parsing one source.
type Result struct {
	URI  string
	Node *ast.Node
	// Err is a *parser.RecognitionFailure when the input did not match, or
	// any other error that kept the source from being parsed.
	Err error
}

// Failure returns the recognition failure carried by r, if any.
func (r *Result) Failure() (*parser.RecognitionFailure, bool) {
	var f *parser.RecognitionFailure
	if errors.As(r.Err, &f) {
		return f, true
	}
	return nil, false
}

type Encoder interface {
	Encode(r *Result) error
}

type factory func(w io.Writer, contextLines int) Encoder

var encoders = map[string]factory{
	"tree": func(w io.Writer, n int) Encoder { return NewTreeEncoder(w, parser.WithContextLines(n)) },
	"line": func(w io.Writer, _ int) Encoder { return NewLineEncoder(w) },
	"json": func(w io.Writer, _ int) Encoder { return NewJSONEncoder(w) },
}

// Names lists the formats New accepts.
func Names() []string {
	names := make([]string, 0, len(encoders))
	for name := range encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New returns the encoder registered under name. contextLines is used by
// formats that show surrounding source.
func New(name string, w io.Writer, contextLines int) (Encoder, error) {
	f, ok := encoders[name]
	if !ok {
		return nil, fmt.Errorf("unknown format %q, want one of %v", name, Names())
	}
	return f(w, contextLines), nil
}
