package parser

import (
	"fmt"
	"strings"
)

// PathElement is one frame of the rule stack: the matcher, where it started
// and how far it got. It is used for diagnostics only.
type PathElement struct {
	Matcher Matcher
	Start   int
	End     int
}

func (e PathElement) String() string {
	return fmt.Sprintf("%s [%d, %d)", e.Matcher, e.Start, e.End)
}

func formatPath(path []PathElement) string {
	var sb strings.Builder
	for i, e := range path {
		sb.WriteString(strings.Repeat("  ", i))
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
