package compile_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/compile"
	"github.com/vinelang/vinec/internal/session"
)

func u32(v int64) *ast.IntegerLiteral {
	return &ast.IntegerLiteral{Value: big.NewInt(v), Width: 32, Signed: false}
}

// TestUnrollAndFold runs `let mut s = 0u32; for i:
// u32 in 0u32..4u32 { s += i; } return s;` through the full fixed
// pipeline and checks it comes out the other end as the single folded
// statement `return 6u32;` — const-prop's unroller expands the loop, the
// second const-prop pass folds
// the resulting straight-line additions, and DCE drops every intermediate
// binding the final return no longer reads.
func TestUnrollAndFold(t *testing.T) {
	fn := &ast.Function{
		Name:    "main",
		Variant: ast.VariantTransition,
		Output:  ast.IntegerType{Width: 32},
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.Definition{Target: ast.SingleTarget{Name: "s"}, Kind: ast.DeclMut, Value: u32(0)},
			&ast.Iteration{
				Variable:  "i",
				VarType:   ast.IntegerType{Width: 32},
				Start:     u32(0),
				Stop:      u32(4),
				Inclusive: false,
				Body: &ast.Block{Statements: []ast.Statement{
					&ast.Assign{
						Place: &ast.Identifier{Name: "s"},
						Value: &ast.BinaryExpr{Op: ast.OpAdd, Left: &ast.Identifier{Name: "s"}, Right: &ast.Identifier{Name: "i"}},
					},
				}},
			},
			&ast.Return{Value: &ast.Identifier{Name: "s"}},
		}},
	}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}

	out, st, err := compile.Program(prog, session.NewCompilerSession())
	require.NoError(t, err)
	require.False(t, st.Diags.HasErrors(), "%v", st.Diags.All())
	require.NotNil(t, out)

	body := out.Scopes[0].Functions[0].Body
	require.Len(t, body.Statements, 1, "every intermediate binding should have been folded and DCE'd away")
	ret, ok := body.Statements[0].(*ast.Return)
	require.True(t, ok, "the sole surviving statement should be the synthesized return")
	lit, ok := ret.Value.(*ast.IntegerLiteral)
	require.True(t, ok, "the return's value should have fully const-folded to a literal")
	assert.Equal(t, int64(6), lit.Value.Int64())
}

// TestInlineEligibleTransitionFunctionCompiles is a smoke test over a
// slightly richer program (an inline helper called from the transition)
// to exercise the inliner and the re-SSA/CSE/DCE stages that follow it in
// the same run, without asserting on the exact folded shape.
func TestInlineEligibleTransitionFunctionCompiles(t *testing.T) {
	helper := &ast.Function{
		Name:    "add_one",
		Variant: ast.VariantInline,
		Inputs:  []ast.Param{{Name: "x", Type: ast.IntegerType{Width: 32}}},
		Output:  ast.IntegerType{Width: 32},
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.Return{Value: &ast.BinaryExpr{Op: ast.OpAdd, Left: &ast.Identifier{Name: "x"}, Right: u32(1)}},
		}},
	}
	main := &ast.Function{
		Name:    "main",
		Variant: ast.VariantTransition,
		Inputs:  []ast.Param{{Name: "x", Type: ast.IntegerType{Width: 32}, Mode: ast.ModePublic}},
		Output:  ast.IntegerType{Width: 32},
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.Return{Value: &ast.CallExpr{Callee: "add_one", Args: []ast.Expression{&ast.Identifier{Name: "x"}}}},
		}},
	}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{helper, main}}}}

	out, st, err := compile.Program(prog, session.NewCompilerSession())
	require.NoError(t, err)
	require.False(t, st.Diags.HasErrors(), "%v", st.Diags.All())
	require.NotNil(t, out)
}
