package interp_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/interp"
	"github.com/vinelang/vinec/internal/value"
)

func u8(v int64) *ast.IntegerLiteral {
	return &ast.IntegerLiteral{Value: big.NewInt(v), Width: 8, Signed: false}
}

// TestCallAddsInputs exercises the simplest possible frame: one Return
// evaluating a BinaryExpr over the function's two Inputs.
func TestCallAddsInputs(t *testing.T) {
	fn := &ast.Function{
		Name:   "add",
		Inputs: []ast.Param{{Name: "a", Type: ast.IntegerType{Width: 8}}, {Name: "b", Type: ast.IntegerType{Width: 8}}},
		Output: ast.IntegerType{Width: 8},
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.Return{Value: &ast.BinaryExpr{Op: ast.OpAdd, Left: &ast.Identifier{Name: "a"}, Right: &ast.Identifier{Name: "b"}}},
		}},
	}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}

	ip := interp.New(prog)
	got, err := ip.Call("foo.aleo::add", []value.Value{
		value.Int(big.NewInt(2), 8, false),
		value.Int(big.NewInt(3), 8, false),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Int.Int64())
}

// TestLoopAccumulates mirrors the unroll-and-fold result: a
// bounded for-loop summing 0..4 (exclusive) should evaluate to 6, matching
// what const-prop's unroller would fold the same source to at compile
// time.
func TestLoopAccumulates(t *testing.T) {
	fn := &ast.Function{
		Name:   "sum",
		Output: ast.IntegerType{Width: 32},
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.Definition{Target: ast.SingleTarget{Name: "s"}, Kind: ast.DeclMut, Value: &ast.IntegerLiteral{Value: big.NewInt(0), Width: 32}},
			&ast.Iteration{
				Variable: "i",
				VarType:  ast.IntegerType{Width: 32},
				Start:    &ast.IntegerLiteral{Value: big.NewInt(0), Width: 32},
				Stop:     &ast.IntegerLiteral{Value: big.NewInt(4), Width: 32},
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

	ip := interp.New(prog)
	got, err := ip.Call("foo.aleo::sum", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.Int.Int64())
}

// TestAssertFailureIsRuntimeError checks a false assertion halts Call with
// a reported error rather than silently continuing, matching how the
// target VM halts on a failing assert.
func TestAssertFailureIsRuntimeError(t *testing.T) {
	fn := &ast.Function{
		Name: "check",
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.Assert{Condition: &ast.BooleanLiteral{Value: false}},
		}},
	}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}

	ip := interp.New(prog)
	_, err := ip.Call("foo.aleo::check", nil)
	require.Error(t, err)
}

// TestCallInvokesCallee exercises the frame-stack push/pop path: a call
// from one function's body to another resolved directly through the
// Interp's qualified-name function table.
func TestCallInvokesCallee(t *testing.T) {
	callee := &ast.Function{
		Name:   "inc",
		Inputs: []ast.Param{{Name: "x", Type: ast.IntegerType{Width: 8}}},
		Output: ast.IntegerType{Width: 8},
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.Return{Value: &ast.BinaryExpr{Op: ast.OpAdd, Left: &ast.Identifier{Name: "x"}, Right: u8(1)}},
		}},
	}
	caller := &ast.Function{
		Name:   "twice",
		Inputs: []ast.Param{{Name: "x", Type: ast.IntegerType{Width: 8}}},
		Output: ast.IntegerType{Width: 8},
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.Return{Value: &ast.CallExpr{Callee: "foo.aleo::inc", Args: []ast.Expression{
				&ast.CallExpr{Callee: "foo.aleo::inc", Args: []ast.Expression{&ast.Identifier{Name: "x"}}},
			}}},
		}},
	}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{callee, caller}}}}

	ip := interp.New(prog)
	got, err := ip.Call("foo.aleo::twice", []value.Value{value.Int(big.NewInt(5), 8, false)})
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Int.Int64())
	assert.Empty(t, ip.Stack(), "Call must leave the stack empty once it returns")
}
