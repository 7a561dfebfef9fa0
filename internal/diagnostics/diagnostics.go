// Package diagnostics implements the error/warning accumulator. It
// mirrors a familiar compiler-frontend shape — NewError(code, token,
// message) plus a flat []*DiagnosticError accumulator — adapted to this
// core's Span type and error-code taxonomy.
package diagnostics

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/vinelang/vinec/internal/session"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Code namespaces errors by family:
//   Exxx  - name errors
//   Txxx  - type errors
//   Sxxx  - structural errors
//   Cxxx  - compile-time evaluation errors
//   Ixxx  - inliner pre-condition violations (fatal)
type Code string

const (
	ErrUndefinedSymbol       Code = "E001"
	ErrDuplicateDefinition   Code = "E002"
	ErrShadowsConst          Code = "E003"
	ErrShadowsInput          Code = "E004"
	ErrTypeMismatch          Code = "T001"
	ErrNonIntegerLoopVar     Code = "T002"
	ErrNonBooleanCondition   Code = "T003"
	ErrUnitAsValue           Code = "T004"
	ErrTupleTooSmall         Code = "T005"
	ErrCompositeHasTuple     Code = "T006"
	ErrCompositeHasFuture    Code = "T007"
	ErrRecordMissingOwner    Code = "T008"
	ErrTooManyMappings       Code = "T009"
	ErrTooManyTransitions    Code = "T010"
	ErrMissingTransition     Code = "T011"
	ErrMissingReturn         Code = "T012"
	ErrReassignConst         Code = "T013"
	ErrReassignFuture        Code = "T014"
	ErrInvalidCast           Code = "T015"
	ErrLiteralOutOfRange     Code = "T016"
	ErrAssignOutsideScope    Code = "T017"
	ErrCyclicStructs         Code = "S001"
	ErrCyclicCallGraph       Code = "S002"
	ErrLoopBodyControlFlow   Code = "S003"
	ErrAssertOutsideBlock    Code = "S004"
	ErrProgramNameMismatch   Code = "S005"
	ErrFinalizeNotCalled     Code = "S006"
	ErrIntegerOverflow       Code = "C001"
	ErrDivisionByZero        Code = "C002"
	ErrArrayIndexOutOfBounds Code = "C003"
	ErrCastOutOfRange        Code = "C004"
	ErrInlinerPrecondition   Code = "I001"
)

// Diagnostic is one accumulated error or warning, always carrying a Span so
// the driver can format it against a source map; every error carries a
// Span.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Span     session.Span
	Message  string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s[%s] %s: %s", d.Severity, d.Code, d.Span, d.Message)
}

// New builds an error-severity Diagnostic.
func New(code Code, span session.Span, message string, args ...any) *Diagnostic {
	return &Diagnostic{Severity: SeverityError, Code: code, Span: span, Message: fmt.Sprintf(message, args...)}
}

// NewWarning builds a warning-severity Diagnostic.
func NewWarning(code Code, span session.Span, message string, args ...any) *Diagnostic {
	return &Diagnostic{Severity: SeverityWarning, Code: code, Span: span, Message: fmt.Sprintf(message, args...)}
}

// Countf formats an integer count with thousands separators, for
// count-bearing summary messages.
func Countf(n int) string {
	return humanize.Comma(int64(n))
}

// Sink is the append-only diagnostic accumulator shared across passes.
// Passes continue after
// recoverable errors so the driver can report as many independent problems
// as possible per invocation.
type Sink struct {
	diagnostics []*Diagnostic
}

// NewSink returns an empty Sink.
func NewSink() *Sink { return &Sink{} }

// Report appends d to the sink. Reporting is the only mutation the sink
// supports; nothing is ever removed or edited once appended.
func (s *Sink) Report(d *Diagnostic) {
	s.diagnostics = append(s.diagnostics, d)
}

// Error is shorthand for Report(New(...)).
func (s *Sink) Error(code Code, span session.Span, message string, args ...any) {
	s.Report(New(code, span, message, args...))
}

// Warn is shorthand for Report(NewWarning(...)).
func (s *Sink) Warn(code Code, span session.Span, message string, args ...any) {
	s.Report(NewWarning(code, span, message, args...))
}

// All returns every diagnostic reported so far, in report order.
func (s *Sink) All() []*Diagnostic { return s.diagnostics }

// HasErrors reports whether any error-severity diagnostic has been reported.
// The driver checks this after each pass and may halt the pipeline.
func (s *Sink) HasErrors() bool {
	for _, d := range s.diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ErrorCount and WarningCount support driver-level summaries.
func (s *Sink) ErrorCount() int {
	n := 0
	for _, d := range s.diagnostics {
		if d.Severity == SeverityError {
			n++
		}
	}
	return n
}

func (s *Sink) WarningCount() int {
	return len(s.diagnostics) - s.ErrorCount()
}
