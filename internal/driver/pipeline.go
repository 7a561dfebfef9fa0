package driver

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/vinelang/vinec/internal/ast"
)

// Pipeline runs a fixed, driver-specified sequence of passes; each pass
// observes the full output of all preceding passes. Kept as a plain
// slice of stages run in order, with an explicit halt-after-pass-failure
// policy rather than "continue on errors to collect diagnostics from all
// stages".
type Pipeline struct {
	passes []Pass
	log    *logrus.Logger
}

// New builds a Pipeline over passes, run in the given order.
func New(passes ...Pass) *Pipeline {
	return &Pipeline{passes: passes, log: logrus.New()}
}

// Result is what Run returns: the final lowered Program (if a pass
// fatally errored, as opposed to merely reporting diagnostics, the
// program as it stood before that pass) plus the
// shared State carrying accumulated diagnostics, tables, and graphs.
type Result struct {
	Program *ast.Program
	State   *State
}

// Run executes every pass in order against prog and st, stopping early —
// after the current pass completes, to maximize reported diagnostics per
// run — the first time st.Diags.HasErrors() becomes true.
func (p *Pipeline) Run(prog *ast.Program, st *State) (Result, error) {
	for _, pass := range p.passes {
		start := time.Now()
		errsBefore := len(st.Diags.All())

		next, err := pass.Run(prog, st)
		if err != nil {
			p.log.WithFields(logrus.Fields{
				"pass":       pass.Name(),
				"session_id": st.Session.ID,
			}).Errorf("pass failed fatally: %v", err)
			return Result{Program: prog, State: st}, fmt.Errorf("pass %s: %w", pass.Name(), err)
		}
		prog = next

		statementCount := CountStatements(prog)
		p.log.WithFields(logrus.Fields{
			"pass":             pass.Name(),
			"session_id":       st.Session.ID,
			"input_statements": humanize.Comma(int64(statementCount)),
			"duration":         time.Since(start).String(),
		}).Info("pass complete")

		for _, d := range st.Diags.All()[errsBefore:] {
			entry := p.log.WithFields(logrus.Fields{"pass": pass.Name(), "code": d.Code, "span": d.Span.String()})
			if d.Severity.String() == "warning" {
				entry.Warn(d.Message)
			} else {
				entry.Error(d.Message)
			}
		}

		if st.Diags.HasErrors() {
			break
		}
	}
	return Result{Program: prog, State: st}, nil
}

// CountStatements is a cheap structural size metric logged after every
// pass, letting the driver's trace show how each pass grows (SSA's
// temporaries and phis) or shrinks (flattening, DCE) the program.
func CountStatements(prog *ast.Program) int {
	if prog == nil {
		return 0
	}
	count := 0
	var countBlock func(*ast.Block)
	countBlock = func(b *ast.Block) {
		if b == nil {
			return
		}
		for _, s := range b.Statements {
			count++
			switch n := s.(type) {
			case *ast.Block:
				countBlock(n)
			case *ast.Conditional:
				countBlock(n.Then)
				countBlock(n.Otherwise)
			case *ast.Iteration:
				countBlock(n.Body)
			}
		}
	}
	countFn := func(fn *ast.Function) {
		if fn != nil {
			countBlock(fn.Body)
		}
	}
	for _, scope := range prog.Scopes {
		for _, fn := range scope.Functions {
			countFn(fn)
		}
		if scope.Constructor != nil {
			countFn(scope.Constructor)
		}
	}
	for _, m := range prog.Modules {
		for _, fn := range m.Functions {
			countFn(fn)
		}
	}
	return count
}
