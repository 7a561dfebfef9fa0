package destructure_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/driver"
	"github.com/vinelang/vinec/internal/passes/destructure"
	"github.com/vinelang/vinec/internal/session"
)

func newState() *driver.State {
	return driver.NewState(session.NewCompilerSession())
}

func u32(v int64) *ast.IntegerLiteral {
	return &ast.IntegerLiteral{Value: big.NewInt(v), Width: 32, Signed: false}
}

func TestTupleDefinitionSplitsIntoExtractions(t *testing.T) {
	body := &ast.Block{Statements: []ast.Statement{
		&ast.Definition{
			Target: ast.MultipleTarget{Names: []string{"a", "b"}},
			Kind:   ast.DeclMut,
			Value:  &ast.CallExpr{Callee: "split", Args: []ast.Expression{u32(1)}},
		},
		&ast.Return{Value: &ast.Identifier{Name: "a"}},
	}}
	fn := &ast.Function{Name: "main", Output: ast.IntegerType{Width: 32}, Body: body}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}

	st := newState()
	out, err := destructure.Run(prog, st)
	require.NoError(t, err)

	stmts := out.Scopes[0].Functions[0].Body.Statements
	require.Len(t, stmts, 4, "one tuple bind + two extractions + the original return")

	tupleDef := stmts[0].(*ast.Definition)
	tupleName := tupleDef.Target.(ast.SingleTarget).Name
	_, isCall := tupleDef.Value.(*ast.CallExpr)
	assert.True(t, isCall, "the tuple-producing call should be hoisted into its own binding")

	aDef := stmts[1].(*ast.Definition)
	assert.Equal(t, "a", aDef.Target.(ast.SingleTarget).Name)
	aAccess := aDef.Value.(*ast.TupleAccessExpr)
	assert.Equal(t, 0, aAccess.Index)
	assert.Equal(t, tupleName, aAccess.Tuple.(*ast.Identifier).Name)

	bDef := stmts[2].(*ast.Definition)
	assert.Equal(t, "b", bDef.Target.(ast.SingleTarget).Name)
	assert.Equal(t, 1, bDef.Value.(*ast.TupleAccessExpr).Index)
}

func TestNonTupleDefinitionIsUnaffected(t *testing.T) {
	body := &ast.Block{Statements: []ast.Statement{
		&ast.Definition{Target: ast.SingleTarget{Name: "x"}, Kind: ast.DeclMut, Value: u32(1)},
	}}
	fn := &ast.Function{Name: "main", Output: ast.UnitType{}, Body: body}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}

	st := newState()
	out, err := destructure.Run(prog, st)
	require.NoError(t, err)
	require.Len(t, out.Scopes[0].Functions[0].Body.Statements, 1)
}

func arrayStruct() *ast.Composite {
	return &ast.Composite{Name: "Point", Members: []ast.Member{
		{Name: "x", Type: ast.IntegerType{Width: 32}},
		{Name: "y", Type: ast.IntegerType{Width: 32}},
	}}
}

func TestWriteTransformDecomposesArrayWrite(t *testing.T) {
	arrTy := ast.ArrayType{Elem: ast.IntegerType{Width: 32}, Length: 3}
	body := &ast.Block{Statements: []ast.Statement{
		&ast.Assign{
			Place: &ast.ArrayAccessExpr{Array: &ast.Identifier{Name: "arr"}, Index: u32(1)},
			Value: u32(9),
		},
		&ast.Return{Value: &ast.Identifier{Name: "arr"}},
	}}
	fn := &ast.Function{
		Name:   "main",
		Inputs: []ast.Param{{Name: "arr", Type: arrTy}},
		Output: arrTy,
		Body:   body,
	}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}

	st := newState()
	out, err := destructure.RunWriteTransform(prog, st)
	require.NoError(t, err)

	stmts := out.Scopes[0].Functions[0].Body.Statements
	// $mem$N = 9;
	memDef := stmts[0].(*ast.Definition)
	memName := memDef.Target.(ast.SingleTarget).Name
	assert.Equal(t, int64(9), memDef.Value.(*ast.IntegerLiteral).Value.Int64())

	// the rematerializing Assign precedes the Return that reads "arr".
	rebuildAssign := stmts[1].(*ast.Assign)
	assert.Equal(t, "arr", rebuildAssign.Place.(*ast.Identifier).Name)
	rebuilt := rebuildAssign.Value.(*ast.ArrayExpr)
	require.Len(t, rebuilt.Elements, 3)
	assert.Equal(t, memName, rebuilt.Elements[1].(*ast.Identifier).Name)
	// untouched slots still read through the original binding.
	untouched := rebuilt.Elements[0].(*ast.ArrayAccessExpr)
	assert.Equal(t, "arr", untouched.Array.(*ast.Identifier).Name)

	ret := stmts[2].(*ast.Return)
	assert.Equal(t, "arr", ret.Value.(*ast.Identifier).Name)
}

func TestWriteTransformDecomposesStructWrite(t *testing.T) {
	composite := arrayStruct()
	ct := ast.CompositeType{Path: "Point"}
	body := &ast.Block{Statements: []ast.Statement{
		&ast.Assign{
			Place: &ast.MemberAccessExpr{Value: &ast.Identifier{Name: "p"}, Field: "x"},
			Value: u32(5),
		},
		&ast.Return{Value: &ast.Identifier{Name: "p"}},
	}}
	fn := &ast.Function{
		Name:   "main",
		Inputs: []ast.Param{{Name: "p", Type: ct}},
		Output: ct,
		Body:   body,
	}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}

	st := newState()
	st.Symbols.DefineStruct(composite)
	out, err := destructure.RunWriteTransform(prog, st)
	require.NoError(t, err)

	stmts := out.Scopes[0].Functions[0].Body.Statements
	memDef := stmts[0].(*ast.Definition)
	memName := memDef.Target.(ast.SingleTarget).Name

	rebuildAssign := stmts[1].(*ast.Assign)
	assert.Equal(t, "p", rebuildAssign.Place.(*ast.Identifier).Name)
	rebuilt := rebuildAssign.Value.(*ast.CompositeInitExpr)
	assert.Equal(t, "Point", rebuilt.Name)
	assert.Equal(t, memName, rebuilt.Fields["x"].(*ast.Identifier).Name)
	yField := rebuilt.Fields["y"].(*ast.MemberAccessExpr)
	assert.Equal(t, "p", yField.Value.(*ast.Identifier).Name)
}

func TestWriteTransformLeavesUnresolvableAggregateUntouched(t *testing.T) {
	// "arr" has no declared/inferable type, so its shape can't be resolved.
	body := &ast.Block{Statements: []ast.Statement{
		&ast.Assign{
			Place: &ast.ArrayAccessExpr{Array: &ast.Identifier{Name: "arr"}, Index: u32(0)},
			Value: u32(9),
		},
	}}
	fn := &ast.Function{Name: "main", Output: ast.UnitType{}, Body: body}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}

	st := newState()
	out, err := destructure.RunWriteTransform(prog, st)
	require.NoError(t, err)

	stmts := out.Scopes[0].Functions[0].Body.Statements
	require.Len(t, stmts, 1, "unresolvable write should pass through as a plain Assign")
	assign := stmts[0].(*ast.Assign)
	_, stillCompound := assign.Place.(*ast.ArrayAccessExpr)
	assert.True(t, stillCompound)
}

func TestWriteTransformForksConditionalBranches(t *testing.T) {
	arrTy := ast.ArrayType{Elem: ast.IntegerType{Width: 32}, Length: 2}
	body := &ast.Block{Statements: []ast.Statement{
		&ast.Conditional{
			Condition: &ast.Identifier{Name: "cond"},
			Then: &ast.Block{Statements: []ast.Statement{
				&ast.Assign{
					Place: &ast.ArrayAccessExpr{Array: &ast.Identifier{Name: "arr"}, Index: u32(0)},
					Value: u32(1),
				},
			}},
		},
	}}
	fn := &ast.Function{
		Name:   "main",
		Inputs: []ast.Param{{Name: "arr", Type: arrTy}, {Name: "cond", Type: ast.BoolType{}}},
		Output: ast.UnitType{},
		Body:   body,
	}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{fn}}}}

	st := newState()
	out, err := destructure.RunWriteTransform(prog, st)
	require.NoError(t, err)

	cond := out.Scopes[0].Functions[0].Body.Statements[0].(*ast.Conditional)
	thenStmts := cond.Then.Statements
	require.Len(t, thenStmts, 2, "the $mem binding plus a forced flush Assign for \"arr\" at branch close")
	flush := thenStmts[1].(*ast.Assign)
	assert.Equal(t, "arr", flush.Place.(*ast.Identifier).Name)
	_, isArrayExpr := flush.Value.(*ast.ArrayExpr)
	assert.True(t, isArrayExpr)
}
