package parser

type settings struct {
	listeners     []Listener
	trackPath     bool
	memoize       bool
	completeInput bool
	invalidation  InvalidationBound
}

func defaultSettings() settings {
	return settings{
		memoize:      true,
		invalidation: InvalidateThroughOutpost,
	}
}

// Option configures a Parser or a State.
type Option func(*settings)

// WithListener registers l to be told about the recognition failure of every
// parse.
func WithListener(l Listener) Option {
	return func(s *settings) {
		s.listeners = append(s.listeners, l)
	}
}

// WithCompleteInput makes a parse fail unless the start rule consumes every
// token.
func WithCompleteInput() Option {
	return func(s *settings) {
		s.completeInput = true
	}
}

// WithPathTracking records the rule stack each time the outpost moves.
func WithPathTracking() Option {
	return func(s *settings) {
		s.trackPath = true
	}
}

func WithInvalidation(bound InvalidationBound) Option {
	return func(s *settings) {
		s.invalidation = bound
	}
}

// WithMemoization turns rule memoization on or off. Turning it off is only
// useful for measuring what it saves.
func WithMemoization(enabled bool) Option {
	return func(s *settings) {
		s.memoize = enabled
	}
}
