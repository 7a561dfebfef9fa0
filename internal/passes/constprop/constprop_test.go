package constprop_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/driver"
	"github.com/vinelang/vinec/internal/passes/constprop"
	"github.com/vinelang/vinec/internal/session"
)

// registerFunction seeds st.Symbols the way the type checker would
// have, without running the full check (which would also demand a
// transition and report unrelated diagnostics this test doesn't care
// about).
func registerFunction(st *driver.State, fn *ast.Function) {
	st.Symbols.DefineFunction(fn)
}

func u32(v int64) *ast.IntegerLiteral {
	return &ast.IntegerLiteral{Value: big.NewInt(v), Width: 32, Signed: false}
}

func newState() *driver.State {
	return driver.NewState(session.NewCompilerSession())
}

func TestConstDefinitionFoldsIntoUse(t *testing.T) {
	body := &ast.Block{Statements: []ast.Statement{
		&ast.Definition{Target: ast.SingleTarget{Name: "x"}, Kind: ast.DeclConst, Value: u32(2)},
		&ast.Return{Value: &ast.BinaryExpr{Op: ast.OpAdd, Left: &ast.Identifier{Name: "x"}, Right: u32(3)}},
	}}
	fn := &ast.Function{Name: "main", Output: ast.IntegerType{Width: 32}, Body: body}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}

	st := newState()
	out, err := constprop.Run(prog, st)
	require.NoError(t, err)

	ret := out.Scopes[0].Functions[0].Body.Statements[1].(*ast.Return)
	lit, ok := ret.Value.(*ast.IntegerLiteral)
	require.True(t, ok, "expected folded literal, got %T", ret.Value)
	assert.Equal(t, int64(5), lit.Value.Int64())
}

func TestBoundedLoopUnrolls(t *testing.T) {
	body := &ast.Block{Statements: []ast.Statement{
		&ast.Iteration{
			Variable: "i", VarType: ast.IntegerType{Width: 32},
			Start: u32(0), Stop: u32(3), Inclusive: false,
			Body: &ast.Block{Statements: []ast.Statement{
				&ast.ExpressionStatement{Value: &ast.Identifier{Name: "i"}},
			}},
		},
	}}
	fn := &ast.Function{Name: "main", Output: ast.UnitType{}, Body: body}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}

	st := newState()
	out, err := constprop.Run(prog, st)
	require.NoError(t, err)

	stmts := out.Scopes[0].Functions[0].Body.Statements
	require.Len(t, stmts, 3, "a 0..3 loop should unroll to 3 statements")
	for i, s := range stmts {
		es := s.(*ast.ExpressionStatement)
		lit := es.Value.(*ast.IntegerLiteral)
		assert.Equal(t, int64(i), lit.Value.Int64())
	}
}

func TestDivisionByZeroIsReported(t *testing.T) {
	body := &ast.Block{Statements: []ast.Statement{
		&ast.Return{Value: &ast.BinaryExpr{Op: ast.OpDiv, Left: u32(1), Right: u32(0)}},
	}}
	fn := &ast.Function{Name: "main", Output: ast.IntegerType{Width: 32}, Body: body}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}

	st := newState()
	_, err := constprop.Run(prog, st)
	require.NoError(t, err)
	assert.True(t, st.Diags.HasErrors())
}

func TestMonomorphizesConstGenericCall(t *testing.T) {
	callee := &ast.Function{
		Name:        "scale",
		ConstParams: []ast.Param{{Name: "FACTOR", Type: ast.IntegerType{Width: 32}, IsConst: true}},
		Output:      ast.IntegerType{Width: 32},
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.Return{Value: &ast.Identifier{Name: "FACTOR"}},
		}},
	}
	caller := &ast.Function{
		Name:   "main",
		Output: ast.IntegerType{Width: 32},
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.Return{Value: &ast.CallExpr{Callee: "scale", ConstArgs: []ast.Expression{u32(4)}}},
		}},
	}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{callee, caller}}}}

	st := newState()
	registerFunction(st, callee)
	registerFunction(st, caller)
	out, err := constprop.Run(prog, st)
	require.NoError(t, err)

	var mainFn *ast.Function
	for _, fn := range out.Scopes[0].Functions {
		if fn.Name == "main" {
			mainFn = fn
		}
	}
	require.NotNil(t, mainFn)
	call := mainFn.Body.Statements[0].(*ast.Return).Value.(*ast.CallExpr)
	assert.Empty(t, call.ConstArgs, "specialized call should carry no const args")
	assert.Equal(t, "scale$4", call.Callee)
	assert.Len(t, out.Scopes[0].Functions, 3, "specialized function should be appended to the scope")
}
