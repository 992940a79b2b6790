package parser

import (
	"github.com/dhamidi/packrat/ast"
)

// InvalidationBound selects how far DeleteFrom purges memo slots.
type InvalidationBound int

const (
	// InvalidateThroughOutpost clears slots from the given position up to
	// and including the outpost index.
	InvalidateThroughOutpost InvalidationBound = iota
	// InvalidateThroughEnd clears every slot from the given position on.
	InvalidateThroughEnd
)

func (b InvalidationBound) String() string {
	switch b {
	case InvalidateThroughOutpost:
		return "outpost"
	case InvalidateThroughEnd:
		return "end"
	}
	return "unknown"
}

// Stats counts what happened during one parse.
type Stats struct {
	RuleAttempts     int // rule bodies actually evaluated
	MemoHits         int
	NegativeMemoHits int
	Invalidations    int
}

// State is the mutable context of one parse. It must not be shared between
// parses or goroutines.
type State struct {
	tokens []*ast.Token
	cursor int

	memoRule []*Rule
	memoNode []*ast.Node
	memoEnd  []int

	outpost        int
	outpostMatcher Matcher
	outpostPath    []PathElement

	path      []PathElement
	listeners []Listener
	settings  settings
	stats     Stats
}

// NewState creates the state for one parse over tokens.
func NewState(tokens []*ast.Token, opts ...Option) *State {
	s := &State{
		tokens:   tokens,
		memoRule: make([]*Rule, len(tokens)+1),
		memoNode: make([]*ast.Node, len(tokens)+1),
		memoEnd:  make([]int, len(tokens)+1),
		outpost:  -1,
		settings: defaultSettings(),
	}
	for _, opt := range opts {
		opt(&s.settings)
	}
	s.listeners = append(s.listeners, s.settings.listeners...)
	return s
}

func (s *State) Cursor() int {
	return s.cursor
}

// Restore moves the cursor back to pos. Custom matchers call it to undo a
// partial match before reporting failure.
func (s *State) Restore(pos int) {
	s.cursor = pos
}

func (s *State) Len() int {
	return len(s.tokens)
}

func (s *State) Tokens() []*ast.Token {
	return s.tokens
}

// Token returns the token at index, or nil past the end. It does not touch
// the outpost.
func (s *State) Token(index int) *ast.Token {
	if index < 0 || index >= len(s.tokens) {
		return nil
	}
	return s.tokens[index]
}

// PeekAt reports index to the outpost tracker on behalf of m and returns the
// token there. ok is false at end of input.
func (s *State) PeekAt(index int, m Matcher) (tok *ast.Token, ok bool) {
	s.report(index, m)
	if index >= len(s.tokens) {
		return nil, false
	}
	return s.tokens[index], true
}

// Peek is PeekAt at the cursor.
func (s *State) Peek(m Matcher) (*ast.Token, bool) {
	return s.PeekAt(s.cursor, m)
}

// Consume wraps the token at the cursor in a leaf node and advances.
func (s *State) Consume() Result {
	node := ast.NewTokenNode(s.tokens[s.cursor])
	node.FromIndex = s.cursor
	s.cursor++
	node.ToIndex = s.cursor
	return Result{Node: node, End: s.cursor, Ok: true}
}

func (s *State) report(index int, m Matcher) {
	if index <= s.outpost {
		return
	}
	s.outpost = index
	s.outpostMatcher = m
	if s.settings.trackPath {
		s.outpostPath = append(s.outpostPath[:0], s.path...)
		for i := range s.outpostPath {
			s.outpostPath[i].End = index
		}
	}
}

// Outpost returns the farthest index any matcher tried to read and the
// matcher that did. The index is -1 before anything was read.
func (s *State) Outpost() (int, Matcher) {
	return s.outpost, s.outpostMatcher
}

// OutpostToken returns the token at the outpost, or nil when the outpost is
// at or past the end of input.
func (s *State) OutpostToken() *ast.Token {
	if s.outpost < 0 {
		return nil
	}
	return s.Token(s.outpost)
}

// OutpostLine returns the line of the outpost token, or of the last token
// when the outpost is past the end of input.
func (s *State) OutpostLine() int {
	if tok := s.Token(max(s.outpost, 0)); tok != nil {
		return tok.Line
	}
	if len(s.tokens) == 0 {
		return 0
	}
	return s.tokens[len(s.tokens)-1].Line
}

// OutpostPath returns the rule frames that were active when the outpost was
// last moved. It is empty unless path tracking is enabled.
func (s *State) OutpostPath() []PathElement {
	return s.outpostPath
}

func (s *State) Stats() Stats {
	return s.stats
}

func (s *State) enter(r *Rule, start int) {
	if s.settings.trackPath {
		s.path = append(s.path, PathElement{Matcher: r, Start: start, End: start})
	}
}

func (s *State) leave() {
	if s.settings.trackPath {
		s.path = s.path[:len(s.path)-1]
	}
}

// lookup returns the slot at pos when it was written by r.
func (s *State) lookup(r *Rule, pos int) (node *ast.Node, end int, hit bool) {
	if !s.settings.memoize || s.memoRule[pos] != r {
		return nil, 0, false
	}
	return s.memoNode[pos], s.memoEnd[pos], true
}

func (s *State) memoize(r *Rule, pos int, node *ast.Node, end int) {
	if !s.settings.memoize {
		return
	}
	s.memoRule[pos] = r
	s.memoNode[pos] = node
	s.memoEnd[pos] = end
}

func (s *State) memoizeFailure(r *Rule, pos int) {
	s.memoize(r, pos, nil, -1)
}

// DeleteFrom purges memo slots starting at pos. The last purged slot is the
// outpost or the end of input, depending on the configured bound; slot pos is
// purged in any case.
func (s *State) DeleteFrom(pos int) {
	last := len(s.memoRule) - 1
	if s.settings.invalidation == InvalidateThroughOutpost {
		last = min(last, max(pos, s.outpost))
	}
	for i := pos; i <= last; i++ {
		s.memoRule[i] = nil
		s.memoNode[i] = nil
		s.memoEnd[i] = 0
	}
	s.stats.Invalidations++
}

// AddListener registers l for the recognition failure of this parse.
func (s *State) AddListener(l Listener) {
	s.listeners = append(s.listeners, l)
}

func (s *State) notify(f *RecognitionFailure) {
	for _, l := range s.listeners {
		l.RecognitionFailed(f)
	}
}
