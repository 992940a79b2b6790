package format

import (
	"fmt"
	"io"
	"strings"
)

// LineEncoder writes one line per result, in the file:line:column style
// editors and CI logs understand:
//
//	ok.java: ok
//	bad.java:3:11: Expected: ")" but was: ; [PUNCTUATOR]
type LineEncoder struct {
	w io.Writer
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(r *Result) error {
	text, err := e.MarshalText(r)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText(r *Result) ([]byte, error) {
	var sb strings.Builder
	f, failed := r.Failure()
	switch {
	case failed && f.AtEnd():
		fmt.Fprintf(&sb, "%s:%d: Expected: %s but was: EOF\n", r.URI, f.Line, expected(f.Matcher))
	case failed:
		fmt.Fprintf(&sb, "%s:%d:%d: Expected: %s but was: %s\n",
			f.Token.URI, f.Token.Line, f.Token.Column, expected(f.Matcher), f.Token.Description())
	case r.Err != nil:
		fmt.Fprintf(&sb, "%s: %v\n", r.URI, r.Err)
	default:
		fmt.Fprintf(&sb, "%s: ok\n", r.URI)
	}
	return []byte(sb.String()), nil
}

func expected(m fmt.Stringer) string {
	if m == nil {
		return "nothing"
	}
	return m.String()
}
