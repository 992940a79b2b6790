package parser

import (
	"fmt"
	"strings"

	"github.com/dhamidi/packrat/ast"
)

const (
	separator           = "------"
	defaultContextLines = 4
)

// RenderOption configures RenderFull.
type RenderOption func(*renderSettings)

type renderSettings struct {
	contextLines int
}

// WithContextLines sets how many source lines are shown before and after the
// failing line.
func WithContextLines(n int) RenderOption {
	return func(r *renderSettings) {
		if n >= 0 {
			r.contextLines = n
		}
	}
}

// Render describes the outpost of s in one line:
//
//	Expected: "class" but was: clas [IDENTIFIER] ('Test.java': Line 3 / Column 16)
func Render(s *State) string {
	snap := s.snapshot()
	expected := "nothing"
	if snap.Matcher != nil {
		expected = snap.Matcher.String()
	}
	if snap.AtEnd() {
		if len(s.tokens) == 0 {
			return fmt.Sprintf("Expected: %s but was: EOF", expected)
		}
		return fmt.Sprintf("Expected: %s but was: EOF ('%s')", expected, s.tokens[len(s.tokens)-1].URI)
	}
	return fmt.Sprintf("Expected: %s but was: %s (%s)", expected, snap.Token.Description(), locate(snap.Token))
}

func locate(tok *ast.Token) string {
	if tok.IsCopyBook() {
		return fmt.Sprintf("copy book '%s': Line %d / Column %d called from file '%s': Line %d",
			tok.URI, tok.Line, tok.Column, tok.CopyBookFile, tok.CopyBookLine)
	}
	return fmt.Sprintf("'%s': Line %d / Column %d", tok.URI, tok.Line, tok.Column)
}

// RenderFull is Render preceded by the source lines around the outpost, with
// the failing line marked by an arrow.
func RenderFull(s *State, opts ...RenderOption) string {
	rs := renderSettings{contextLines: defaultContextLines}
	for _, opt := range opts {
		opt(&rs)
	}

	var sb strings.Builder
	sb.WriteString(separator + "\n")
	if len(s.tokens) > 0 {
		failing := s.OutpostLine()
		first := max(s.tokens[0].Line, failing-rs.contextLines)
		last := min(s.tokens[len(s.tokens)-1].Line, failing+rs.contextLines)
		lines := sourceLines(s.tokens, first, last)
		for line := first; line <= last; line++ {
			prefix := fmt.Sprintf("%5d", line)
			if line == failing {
				prefix = "-->  "
			}
			sb.WriteString(strings.TrimRight(prefix+" "+lines[line], " "))
			sb.WriteByte('\n')
		}
	}
	sb.WriteString(separator + "\n")
	sb.WriteString(Render(s))
	sb.WriteByte('\n')
	return sb.String()
}

// sourceLines rebuilds the text of lines first..last from token positions.
func sourceLines(tokens []*ast.Token, first, last int) map[int]string {
	builders := make(map[int]*strings.Builder)
	for _, tok := range tokens {
		if tok.Line < first || tok.Line > last {
			continue
		}
		sb, ok := builders[tok.Line]
		if !ok {
			sb = &strings.Builder{}
			builders[tok.Line] = sb
		}
		if pad := tok.Column - sb.Len(); pad > 0 {
			sb.WriteString(strings.Repeat(" ", pad))
		} else if pad < 0 {
			sb.WriteByte(' ')
		}
		text := tok.OriginalValue
		if text == "" {
			text = tok.Value
		}
		sb.WriteString(text)
	}
	lines := make(map[int]string, len(builders))
	for line, sb := range builders {
		lines[line] = sb.String()
	}
	return lines
}

// RenderPath lists the rules that were active when the outpost was reached,
// outermost first. It is empty unless the parse ran WithPathTracking.
func RenderPath(s *State) string {
	return formatPath(s.outpostPath)
}
