package typecheck_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/driver"
	"github.com/vinelang/vinec/internal/passes/typecheck"
	"github.com/vinelang/vinec/internal/session"
)

func u8(v int64) *ast.IntegerLiteral {
	return &ast.IntegerLiteral{Value: big.NewInt(v), Width: 8, Signed: false}
}

func transitionReturning(name string, body *ast.Block, output ast.Type) *ast.Function {
	return &ast.Function{
		Name:    name,
		Variant: ast.VariantTransition,
		Output:  output,
		Body:    body,
	}
}

func newState() *driver.State {
	return driver.NewState(session.NewCompilerSession())
}

func TestAssertBoolCondition(t *testing.T) {
	fn := transitionReturning("main", &ast.Block{Statements: []ast.Statement{
		&ast.Assert{Condition: &ast.BinaryExpr{Op: ast.OpGt, Left: u8(2), Right: u8(1)}},
		&ast.Return{Value: u8(0)},
	}}, ast.IntegerType{Width: 8})

	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}
	st := newState()
	_, err := typecheck.Run(prog, st)
	require.NoError(t, err)
	assert.False(t, st.Diags.HasErrors(), "%v", st.Diags.All())
}

func TestAssertNonBoolConditionIsRejected(t *testing.T) {
	fn := transitionReturning("main", &ast.Block{Statements: []ast.Statement{
		&ast.Assert{Condition: u8(1)},
		&ast.Return{Value: u8(0)},
	}}, ast.IntegerType{Width: 8})

	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}
	st := newState()
	_, err := typecheck.Run(prog, st)
	require.NoError(t, err)
	assert.True(t, st.Diags.HasErrors())
}

func TestMissingTransitionIsRejected(t *testing.T) {
	fn := &ast.Function{Name: "helper", Variant: ast.VariantInline, Output: ast.UnitType{}, Body: &ast.Block{}}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}
	st := newState()
	_, err := typecheck.Run(prog, st)
	require.NoError(t, err)
	assert.True(t, st.Diags.HasErrors())
}

func TestCallGraphEdgeRecorded(t *testing.T) {
	callee := &ast.Function{Name: "helper", Variant: ast.VariantInline, Output: ast.IntegerType{Width: 8}, Body: &ast.Block{
		Statements: []ast.Statement{&ast.Return{Value: u8(1)}},
	}}
	caller := transitionReturning("main", &ast.Block{Statements: []ast.Statement{
		&ast.Return{Value: &ast.CallExpr{Callee: "helper"}},
	}}, ast.IntegerType{Width: 8})

	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{callee, caller}}}}
	st := newState()
	_, err := typecheck.Run(prog, st)
	require.NoError(t, err)
	assert.False(t, st.Diags.HasErrors(), "%v", st.Diags.All())
	assert.Contains(t, st.CallGraph.Successors("foo.aleo/main"), "foo.aleo/helper")
}

func TestStructMissingOwnerIsRejectedForRecords(t *testing.T) {
	comp := &ast.Composite{Name: "Token", IsRecord: true, Members: []ast.Member{{Name: "amount", Type: ast.IntegerType{Width: 64}}}}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Structs: []*ast.Composite{comp}}}}
	st := newState()
	_, err := typecheck.Run(prog, st)
	require.NoError(t, err)
	assert.True(t, st.Diags.HasErrors())
}
