package parser

import (
	"github.com/dhamidi/packrat/ast"
)

// Snapshot is the outpost of a finished parse.
type Snapshot struct {
	// Index is the farthest token index any matcher tried to read. It equals
	// the number of tokens when the input ended too early.
	Index   int
	Matcher Matcher
	// Token is nil at end of input.
	Token *ast.Token
	Line  int
	Path  []PathElement
}

// AtEnd reports whether the parse failed because the input ended.
func (s Snapshot) AtEnd() bool {
	return s.Token == nil
}

func (s *State) snapshot() Snapshot {
	index := s.outpost
	if index < 0 {
		index = 0
	}
	return Snapshot{
		Index:   index,
		Matcher: s.outpostMatcher,
		Token:   s.Token(index),
		Line:    s.OutpostLine(),
		Path:    append([]PathElement(nil), s.outpostPath...),
	}
}

// RecognitionFailure is returned when the start rule does not match. It keeps
// the State so the failure can be rendered with its surrounding source.
type RecognitionFailure struct {
	Snapshot
	State *State
}

func (f *RecognitionFailure) Error() string {
	return Render(f.State)
}

// Listener is told about every top-level recognition failure.
type Listener interface {
	RecognitionFailed(f *RecognitionFailure)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(f *RecognitionFailure)

func (fn ListenerFunc) RecognitionFailed(f *RecognitionFailure) {
	fn(f)
}
