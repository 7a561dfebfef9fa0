package lowering_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/driver"
	"github.com/vinelang/vinec/internal/passes/lowering"
	"github.com/vinelang/vinec/internal/session"
)

func u32(v int64) *ast.IntegerLiteral {
	return &ast.IntegerLiteral{Value: big.NewInt(v), Width: 32, Signed: false}
}

func newState() *driver.State {
	return driver.NewState(session.NewCompilerSession())
}

func balancesMapping() *ast.Mapping {
	return &ast.Mapping{Name: "balances", Key: ast.AddressType{}, Value: ast.IntegerType{Width: 64}}
}

func TestMappingGetCallLowersToIntrinsic(t *testing.T) {
	fn := &ast.Function{
		Name:   "balance_of",
		Output: ast.IntegerType{Width: 64},
		Inputs: []ast.Param{{Name: "addr", Type: ast.AddressType{}}},
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.Return{Value: &ast.CallExpr{Callee: "balances.get", Args: []ast.Expression{&ast.Identifier{Name: "addr"}}}},
		}},
	}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Mappings: []*ast.Mapping{balancesMapping()}, Functions: []*ast.Function{fn}}}}

	st := newState()
	st.Symbols.DefineMapping(balancesMapping())
	out, err := lowering.Run(prog, st)
	require.NoError(t, err)

	ret := out.Scopes[0].Functions[0].Body.Statements[0].(*ast.Return)
	call, ok := ret.Value.(*ast.IntrinsicExpr)
	require.True(t, ok, "expected IntrinsicExpr, got %T", ret.Value)
	assert.Equal(t, ast.IntrinsicMappingGet, call.Op)
	require.Len(t, call.Args, 2)
	name := call.Args[0].(*ast.StringLiteral)
	assert.Equal(t, "balances", name.Value)
}

func TestMappingIndexReadLowersToIntrinsic(t *testing.T) {
	fn := &ast.Function{
		Name:   "balance_of",
		Output: ast.IntegerType{Width: 64},
		Inputs: []ast.Param{{Name: "addr", Type: ast.AddressType{}}},
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.Return{Value: &ast.ArrayAccessExpr{Array: &ast.Identifier{Name: "balances"}, Index: &ast.Identifier{Name: "addr"}}},
		}},
	}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Mappings: []*ast.Mapping{balancesMapping()}, Functions: []*ast.Function{fn}}}}

	st := newState()
	st.Symbols.DefineMapping(balancesMapping())
	out, err := lowering.Run(prog, st)
	require.NoError(t, err)

	ret := out.Scopes[0].Functions[0].Body.Statements[0].(*ast.Return)
	call, ok := ret.Value.(*ast.IntrinsicExpr)
	require.True(t, ok, "expected IntrinsicExpr, got %T", ret.Value)
	assert.Equal(t, ast.IntrinsicMappingGet, call.Op)
}

func TestMappingIndexWriteLowersToIntrinsicSet(t *testing.T) {
	fn := &ast.Function{
		Name:   "credit",
		Output: ast.UnitType{},
		Inputs: []ast.Param{{Name: "addr", Type: ast.AddressType{}}, {Name: "amt", Type: ast.IntegerType{Width: 64}}},
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.Assign{
				Place: &ast.ArrayAccessExpr{Array: &ast.Identifier{Name: "balances"}, Index: &ast.Identifier{Name: "addr"}},
				Value: &ast.Identifier{Name: "amt"},
			},
		}},
	}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Mappings: []*ast.Mapping{balancesMapping()}, Functions: []*ast.Function{fn}}}}

	st := newState()
	st.Symbols.DefineMapping(balancesMapping())
	out, err := lowering.Run(prog, st)
	require.NoError(t, err)

	stmts := out.Scopes[0].Functions[0].Body.Statements
	require.Len(t, stmts, 1)
	es, ok := stmts[0].(*ast.ExpressionStatement)
	require.True(t, ok, "expected ExpressionStatement, got %T", stmts[0])
	call, ok := es.Value.(*ast.IntrinsicExpr)
	require.True(t, ok, "expected IntrinsicExpr, got %T", es.Value)
	assert.Equal(t, ast.IntrinsicMappingSet, call.Op)
	require.Len(t, call.Args, 3)
}

func TestOptionalOutputSynthesizesSharedComposite(t *testing.T) {
	fnA := &ast.Function{
		Name:   "maybe_one",
		Output: ast.OptionalType{Inner: ast.IntegerType{Width: 32}},
		Body:   &ast.Block{Statements: []ast.Statement{&ast.Return{Value: u32(1)}}},
	}
	fnB := &ast.Function{
		Name:   "maybe_two",
		Output: ast.OptionalType{Inner: ast.IntegerType{Width: 32}},
		Body:   &ast.Block{Statements: []ast.Statement{&ast.Return{Value: u32(2)}}},
	}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fnA, fnB}}}}

	st := newState()
	out, err := lowering.Run(prog, st)
	require.NoError(t, err)

	scope := out.Scopes[0]
	require.Len(t, scope.Structs, 1, "both functions share Optional<u32>, so only one composite should be synthesized")
	comp := scope.Structs[0]
	assert.Equal(t, "Optional$u32", comp.Name)
	require.Len(t, comp.Members, 2)
	assert.Equal(t, "flag", comp.Members[0].Name)
	assert.Equal(t, "value", comp.Members[1].Name)

	for _, fn := range scope.Functions {
		ct, ok := fn.Output.(ast.CompositeType)
		require.True(t, ok, "expected Output rewritten to CompositeType, got %T", fn.Output)
		assert.Equal(t, "Optional$u32", ct.Path)
	}
}

func TestGetOrUseExpandsToTernary(t *testing.T) {
	fn := &ast.Function{
		Name:   "read_or",
		Output: ast.IntegerType{Width: 32},
		Inputs: []ast.Param{{Name: "opt", Type: ast.OptionalType{Inner: ast.IntegerType{Width: 32}}}},
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.Return{Value: &ast.CallExpr{Callee: "get_or_use", Args: []ast.Expression{&ast.Identifier{Name: "opt"}, u32(0)}}},
		}},
	}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}

	st := newState()
	out, err := lowering.Run(prog, st)
	require.NoError(t, err)

	ret := out.Scopes[0].Functions[0].Body.Statements[0].(*ast.Return)
	tern, ok := ret.Value.(*ast.TernaryExpr)
	require.True(t, ok, "expected TernaryExpr, got %T", ret.Value)
	cond := tern.Condition.(*ast.MemberAccessExpr)
	assert.Equal(t, "flag", cond.Field)
	then := tern.Then.(*ast.MemberAccessExpr)
	assert.Equal(t, "value", then.Field)
}
