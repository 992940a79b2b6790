package parser

import (
	"github.com/tliron/commonlog"

	"github.com/dhamidi/packrat/ast"
)

var log = commonlog.GetLogger("packrat.parser")

// Parser matches token sequences against a start rule. A Parser holds no
// per-parse state and can be reused, also from several goroutines.
type Parser struct {
	start *Rule
	opts  []Option
}

func New(start *Rule, opts ...Option) *Parser {
	return &Parser{start: start, opts: opts}
}

// Parse runs the start rule over tokens. On failure the error is a
// *RecognitionFailure.
func (p *Parser) Parse(tokens []*ast.Token) (*ast.Node, error) {
	_, node, err := p.ParseState(tokens)
	return node, err
}

// ParseState is Parse returning the State as well, for callers that want
// its Stats or outpost after a successful parse.
func (p *Parser) ParseState(tokens []*ast.Token) (*State, *ast.Node, error) {
	s := NewState(tokens, p.opts...)
	log.Debugf("parsing %d tokens with %s", len(tokens), p.start)

	res := p.start.Match(s)
	if res.Ok && s.settings.completeInput && !EndOfInput().Match(s).Ok {
		res = Failed
	}
	if !res.Ok {
		f := &RecognitionFailure{Snapshot: s.snapshot(), State: s}
		log.Infof("%s: %s", p.start, Render(s))
		s.notify(f)
		return s, nil, f
	}

	// memoized nodes may have been attached to abandoned alternatives too
	res.Node.Relink()
	log.Debugf("parsed %s: %d of %d tokens, %d rule attempts, %d memo hits",
		p.start, res.End, len(tokens), s.stats.RuleAttempts, s.stats.MemoHits+s.stats.NegativeMemoHits)
	return s, res.Node, nil
}

// Parse is New(start, opts...).Parse(tokens).
func Parse(start *Rule, tokens []*ast.Token, opts ...Option) (*ast.Node, error) {
	return New(start, opts...).Parse(tokens)
}
