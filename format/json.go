package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/packrat/ast"
)

// JSONEncoder writes one JSON object per result, one per line.
type JSONEncoder struct {
	enc *json.Encoder
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{enc: json.NewEncoder(w)}
}

func (e *JSONEncoder) Encode(r *Result) error {
	return e.enc.Encode(resultToJSON(r))
}

func (e *JSONEncoder) MarshalText(r *Result) ([]byte, error) {
	return json.MarshalIndent(resultToJSON(r), "", "  ")
}

type jsonResult struct {
	URI   string     `json:"uri"`
	OK    bool       `json:"ok"`
	Tree  *ast.Node  `json:"tree,omitempty"`
	Error *jsonError `json:"error,omitempty"`
}

type jsonError struct {
	Message  string `json:"message"`
	Expected string `json:"expected,omitempty"`
	Got      string `json:"got,omitempty"`
	Type     string `json:"type,omitempty"`
	Index    *int   `json:"index,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   *int   `json:"column,omitempty"`
	CopyBook string `json:"copyBook,omitempty"`
}

func resultToJSON(r *Result) *jsonResult {
	jr := &jsonResult{URI: r.URI, OK: r.Err == nil, Tree: r.Node}
	if r.Err == nil {
		return jr
	}
	jr.Tree = nil
	jr.Error = &jsonError{Message: r.Err.Error()}

	f, ok := r.Failure()
	if !ok {
		return jr
	}
	index := f.Index
	jr.Error.Index = &index
	jr.Error.Expected = expected(f.Matcher)
	jr.Error.Line = f.Line
	if f.AtEnd() {
		jr.Error.Got = "EOF"
		return jr
	}
	column := f.Token.Column
	jr.Error.Got = f.Token.Value
	jr.Error.Type = f.Token.Type.String()
	jr.Error.Column = &column
	if f.Token.IsCopyBook() {
		jr.Error.CopyBook = f.Token.URI
	}
	return jr
}
