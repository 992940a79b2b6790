// Package parser provides a memoizing, ordered-choice backtracking parser
// over a token sequence.
//
// # Overview
//
// A grammar is a tree of Matcher values. Named Rules are the memoized units;
// every other matcher (terminals, sequences, choices, lookahead, repetition)
// is a plain combinator. The parser asks the start rule to match at token 0
// and either returns the AST it built or a *RecognitionFailure describing
// the farthest point any matcher reached.
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Tokens    │────▶│   Matchers  │────▶│   ast.Node  │
//	│ (lexer pkg) │     │   + State   │     │             │
//	└─────────────┘     └─────────────┘     └─────────────┘
//	                           │
//	                           ▼
//	                    ┌─────────────┐     ┌─────────────┐
//	                    │   Outpost   │────▶│ RenderFull  │
//	                    │  (farthest) │     │ (diagnosis) │
//	                    └─────────────┘     └─────────────┘
//
// # Matching Protocol
//
// Every matcher implements
//
//	Match(s *State) Result
//
// A failed Result leaves the cursor exactly where it was before the call. A
// successful Result has the cursor at Result.End and may carry a node for
// the caller to attach. Backtracking is therefore an ordinary return value;
// nothing is allocated on the failure path.
//
// # Memoization
//
// The State keeps one memo slot per token position. A Rule that starts at
// position p records either its node and end position or a failure marker
// in slot p. A later attempt of the same Rule at p is answered from the
// slot, which bounds the work of grammars whose alternatives share long
// failing prefixes. Fresh wraps sub-grammars whose result depends on
// something other than the tokens (see Predicate) and purges the slots from
// its start position before matching.
//
// # Tree Construction
//
// Combinators build nodes of type ast.Anonymous, which are spliced into the
// enclosing rule node. Rules whose type has SkipFromTree set are spliced the
// same way, so only meaningful rules and tokens appear in the final tree.
//
// # Diagnostics
//
// Terminals report the index they are about to read. The State keeps the
// largest index and the matcher that reported it (the outpost).
// RenderFull prints the surrounding source lines and a message such as
//
//	Expected: "class" but was: clas [IDENTIFIER] ('Test.java': Line 3 / Column 16)
package parser
