package typeenv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/passes/typeenv"
	"github.com/vinelang/vinec/internal/symbols"
)

func TestInferArrayLiteral(t *testing.T) {
	e := typeenv.New(symbols.NewProgramScope())
	ty := e.Infer(&ast.ArrayExpr{Elements: []ast.Expression{
		&ast.BooleanLiteral{Value: true},
		&ast.BooleanLiteral{Value: false},
	}})
	at, ok := ty.(ast.ArrayType)
	require.True(t, ok)
	assert.Equal(t, uint32(2), at.Length)
	assert.Equal(t, ast.BoolType{}, at.Elem)
}

func TestInferArrayAccessUsesDeclaredElemType(t *testing.T) {
	e := typeenv.New(symbols.NewProgramScope())
	e.Declare("arr", ast.ArrayType{Elem: ast.IntegerType{Width: 32}, Length: 4})
	ty := e.Infer(&ast.ArrayAccessExpr{Array: &ast.Identifier{Name: "arr"}, Index: &ast.IntegerLiteral{Width: 32}})
	assert.Equal(t, ast.IntegerType{Width: 32}, ty)
}

func TestInferUnknownIdentifierIsNil(t *testing.T) {
	e := typeenv.New(symbols.NewProgramScope())
	assert.Nil(t, e.Infer(&ast.Identifier{Name: "ghost"}))
}

func TestStructMembersResolvesThroughSymbolTable(t *testing.T) {
	st := symbols.NewProgramScope()
	st.DefineStruct(&ast.Composite{Name: "Point", Members: []ast.Member{
		{Name: "x", Type: ast.IntegerType{Width: 32}},
		{Name: "y", Type: ast.IntegerType{Width: 32}},
	}})
	e := typeenv.New(st)
	members, ok := e.StructMembers(ast.CompositeType{Path: "Point"})
	require.True(t, ok)
	require.Len(t, members, 2)
	assert.Equal(t, "x", members[0].Name)
}

func TestSeedFunctionDeclaresParams(t *testing.T) {
	e := typeenv.New(symbols.NewProgramScope())
	fn := &ast.Function{
		ConstParams: []ast.Param{{Name: "N", Type: ast.IntegerType{Width: 32}, IsConst: true}},
		Inputs:      []ast.Param{{Name: "arr", Type: ast.ArrayType{Elem: ast.BoolType{}, Length: 3}}},
	}
	e.SeedFunction(fn)
	assert.Equal(t, ast.IntegerType{Width: 32}, e.Lookup("N"))
	assert.Equal(t, ast.ArrayType{Elem: ast.BoolType{}, Length: 3}, e.Lookup("arr"))
}
