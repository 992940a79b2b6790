package format

import (
	"fmt"
	"io"

	"github.com/dhamidi/packrat/parser"
)

// TreeEncoder writes the indented node tree of a successful parse and the
// full diagnostic of a failed one.
type TreeEncoder struct {
	w    io.Writer
	opts []parser.RenderOption
}

func NewTreeEncoder(w io.Writer, opts ...parser.RenderOption) *TreeEncoder {
	return &TreeEncoder{w: w, opts: opts}
}

func (e *TreeEncoder) Encode(r *Result) error {
	text, err := e.MarshalText(r)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TreeEncoder) MarshalText(r *Result) ([]byte, error) {
	if f, ok := r.Failure(); ok {
		return []byte(parser.RenderFull(f.State, e.opts...)), nil
	}
	if r.Err != nil {
		return []byte(fmt.Sprintf("%s: %v\n", r.URI, r.Err)), nil
	}
	if r.Node == nil {
		return nil, nil
	}
	return []byte(r.Node.StringTree()), nil
}
