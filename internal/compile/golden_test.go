package compile_test

import (
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/compile"
	"github.com/vinelang/vinec/internal/session"
)

// golden fixtures can't hold DSL source text (parsing is an external
// collaborator to this module) and exact-text matching
// on a freshly-compiled program is something nobody here can verify
// without running the Go toolchain. So each .txtar archive instead
// stores a scenario's metadata and a structural expectation (a
// count over ast.Fold reducers), and the Go-literal program it
// exercises lives in the registry below, keyed by the archive's
// "name" field. On a mismatch the failing program is rendered with
// kr/pretty rather than diffed as text.

// scenario is one golden fixture: the program it runs through
// compile.Program, plus a check that inspects the result and fails the
// test (printing the tree with pretty.Formatter) if the archive's
// expectation isn't met.
type scenario struct {
	program func() *ast.Program
	check   func(t *testing.T, archive map[string]string, out *ast.Program)
}

var scenarios = map[string]scenario{
	"flatten-removes-conditional": {
		program: flattenRemovesConditionalProgram,
		check: func(t *testing.T, archive map[string]string, out *ast.Program) {
			want := mustAtoi(t, archive["conditional_count"])
			got := countNodes[*ast.Conditional](out)
			if got != want {
				t.Fatalf("conditional_count = %d, want %d\n%# v", got, want, pretty.Formatter(out))
			}
		},
	},
	"inline-removes-call": {
		program: inlineRemovesCallProgram,
		check: func(t *testing.T, archive map[string]string, out *ast.Program) {
			want := mustAtoi(t, archive["call_to_callee_count"])
			got := countCallsTo(out, archive["callee"])
			if got != want {
				t.Fatalf("call_to_callee_count = %d, want %d\n%# v", got, want, pretty.Formatter(out))
			}
		},
	},
	"dce-keeps-sideeffect": {
		program: dceKeepsSideEffectProgram,
		check: func(t *testing.T, archive map[string]string, out *ast.Program) {
			want := mustAtoi(t, archive["call_to_callee_count"])
			got := countCallsTo(out, archive["callee"])
			if got != want {
				t.Fatalf("call_to_callee_count = %d, want %d\n%# v", got, want, pretty.Formatter(out))
			}
		},
	},
}

// TestGolden runs every testdata/golden/*.txtar archive's registered
// program through the full pipeline and checks its structural
// expectation holds.
func TestGolden(t *testing.T) {
	paths, err := filepath.Glob("testdata/golden/*.txtar")
	require.NoError(t, err)
	require.NotEmpty(t, paths, "expected at least one golden fixture")

	for _, path := range paths {
		path := path
		t.Run(strings.TrimSuffix(filepath.Base(path), ".txtar"), func(t *testing.T) {
			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			arc := txtar.Parse(raw)

			meta := parseKV(findFile(arc, "meta"))
			expect := parseKV(findFile(arc, "expect"))
			name := meta["name"]
			// expect carries the fixture's own expectation keys; merge in
			// meta's callee (when present) so check funcs can read either.
			for k, v := range meta {
				if _, ok := expect[k]; !ok {
					expect[k] = v
				}
			}

			sc, ok := scenarios[name]
			require.Truef(t, ok, "no registered scenario for archive name %q", name)

			prog := sc.program()
			out, st, err := compile.Program(prog, session.NewCompilerSession())
			require.NoError(t, err)
			require.False(t, st.Diags.HasErrors(), "%v", st.Diags.All())

			sc.check(t, expect, out)
		})
	}
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	v, err := strconv.Atoi(strings.TrimSpace(s))
	require.NoError(t, err)
	return v
}

func findFile(arc *txtar.Archive, name string) []byte {
	for _, f := range arc.Files {
		if f.Name == name {
			return f.Data
		}
	}
	return nil
}

func parseKV(data []byte) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}

// countNodes folds prog with a reducer that counts every node of type N.
func countNodes[N ast.Node](prog *ast.Program) int {
	r := ast.DefaultReducer[int]{
		LeafFunc: func(n ast.Node) int {
			if _, ok := n.(N); ok {
				return 1
			}
			return 0
		},
		CombineFunc: func(results ...int) int {
			sum := 0
			for _, r := range results {
				sum += r
			}
			return sum
		},
	}
	return ast.Fold[int](r, prog)
}

// countCallsTo folds prog with a reducer that counts CallExpr nodes whose
// Callee is name itself or ends in "::"+name.
func countCallsTo(prog *ast.Program, name string) int {
	r := ast.DefaultReducer[int]{
		LeafFunc: func(n ast.Node) int {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return 0
			}
			if call.Callee == name || strings.HasSuffix(call.Callee, "::"+name) {
				return 1
			}
			return 0
		},
		CombineFunc: func(results ...int) int {
			sum := 0
			for _, r := range results {
				sum += r
			}
			return sum
		},
	}
	return ast.Fold[int](r, prog)
}

func fieldU32(v int64) *ast.IntegerLiteral {
	return &ast.IntegerLiteral{Value: big.NewInt(v), Width: 32, Signed: false}
}

// flattenRemovesConditionalProgram builds a
// transition branching on a public input, each arm asserting a different
// invariant before returning. After flatten runs, no ast.Conditional
// should remain anywhere in the compiled program.
func flattenRemovesConditionalProgram() *ast.Program {
	fn := &ast.Function{
		Name:    "main",
		Variant: ast.VariantTransition,
		Inputs:  []ast.Param{{Name: "x", Type: ast.IntegerType{Width: 32}, Mode: ast.ModePublic}},
		Output:  ast.IntegerType{Width: 32},
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.Conditional{
				Condition: &ast.BinaryExpr{Op: ast.OpGt, Left: &ast.Identifier{Name: "x"}, Right: fieldU32(0)},
				Then: &ast.Block{Statements: []ast.Statement{
					&ast.Assert{Condition: &ast.BinaryExpr{Op: ast.OpGt, Left: &ast.Identifier{Name: "x"}, Right: fieldU32(0)}},
					&ast.Return{Value: &ast.Identifier{Name: "x"}},
				}},
				Otherwise: &ast.Block{Statements: []ast.Statement{
					&ast.Return{Value: fieldU32(0)},
				}},
			},
		}},
	}
	return &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}
}

// inlineRemovesCallProgram calls an `inline`-variant function named
// "bump" from the transition body; inline should splice its body
// in and leave no CallExpr targeting it behind.
func inlineRemovesCallProgram() *ast.Program {
	bump := &ast.Function{
		Name:    "bump",
		Variant: ast.VariantInline,
		Inputs:  []ast.Param{{Name: "x", Type: ast.IntegerType{Width: 32}}},
		Output:  ast.IntegerType{Width: 32},
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.Return{Value: &ast.BinaryExpr{Op: ast.OpAdd, Left: &ast.Identifier{Name: "x"}, Right: fieldU32(1)}},
		}},
	}
	main := &ast.Function{
		Name:    "main",
		Variant: ast.VariantTransition,
		Inputs:  []ast.Param{{Name: "x", Type: ast.IntegerType{Width: 32}, Mode: ast.ModePublic}},
		Output:  ast.IntegerType{Width: 32},
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.Return{Value: &ast.CallExpr{Callee: "bump", Args: []ast.Expression{&ast.Identifier{Name: "x"}}}},
		}},
	}
	return &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{bump, main}}}}
}

// dceKeepsSideEffectProgram calls an ordinary `fn`-variant function named
// "record" as a bare ExpressionStatement and discards its result. DCE
// must keep the statement since ast.IsPure treats every CallExpr
// as impure (internal/ast/purity.go), regardless of whether the binding
// it would have produced is ever read. "record" carries @no_inline, since
// as a once-called fn the inliner would otherwise replace the call before
// DCE ever sees it.
func dceKeepsSideEffectProgram() *ast.Program {
	record := &ast.Function{
		Name:        "record",
		Variant:     ast.VariantFn,
		Annotations: ast.Annotations{NoInline: true},
		Inputs:  []ast.Param{{Name: "x", Type: ast.IntegerType{Width: 32}}},
		Output:  ast.UnitType{},
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.Return{Value: &ast.UnitExpr{}},
		}},
	}
	main := &ast.Function{
		Name:    "main",
		Variant: ast.VariantTransition,
		Inputs:  []ast.Param{{Name: "x", Type: ast.IntegerType{Width: 32}, Mode: ast.ModePublic}},
		Output:  ast.IntegerType{Width: 32},
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.ExpressionStatement{Value: &ast.CallExpr{Callee: "record", Args: []ast.Expression{&ast.Identifier{Name: "x"}}}},
			&ast.Return{Value: &ast.Identifier{Name: "x"}},
		}},
	}
	return &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{record, main}}}}
}
