package session

import "fmt"

// Span is an opaque source-range token. Only the diagnostic
// emitter and the methods below interpret its fields; passes treat it as
// an inert tag to carry forward.
type Span struct {
	File        string
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// String renders a Span as "file:line:col" for diagnostic messages.
func (s Span) String() string {
	if s.File == "" && s.StartLine == 0 {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.StartLine, s.StartColumn)
}

// IsZero reports whether s carries no location information.
func (s Span) IsZero() bool {
	return s.File == "" && s.StartLine == 0 && s.StartColumn == 0
}

// Merge returns the smallest Span covering both s and other, preferring s's
// File. Used when a pass synthesizes a node from two existing ones (e.g. a
// flattened conditional's guard expression) and wants a span that still
// points somewhere sensible.
func (s Span) Merge(other Span) Span {
	if s.IsZero() {
		return other
	}
	if other.IsZero() {
		return s
	}
	out := s
	if other.StartLine < out.StartLine || (other.StartLine == out.StartLine && other.StartColumn < out.StartColumn) {
		out.StartLine, out.StartColumn = other.StartLine, other.StartColumn
	}
	if other.EndLine > out.EndLine || (other.EndLine == out.EndLine && other.EndColumn > out.EndColumn) {
		out.EndLine, out.EndColumn = other.EndLine, other.EndColumn
	}
	return out
}
