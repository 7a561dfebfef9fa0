package inline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/passes/inline"
)

func TestAnalyzeMarksTrivialBodiesAsInlineHints(t *testing.T) {
	tiny := &ast.Function{
		Name:    "tiny",
		Variant: ast.VariantFn,
		Output:  ast.IntegerType{Width: 32},
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.Return{Value: u8(1)},
		}},
	}
	big := &ast.Function{
		Name:    "big",
		Variant: ast.VariantFn,
		Output:  ast.IntegerType{Width: 32},
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.Definition{Target: ast.SingleTarget{Name: "a"}, Kind: ast.DeclMut, Value: u8(1)},
			&ast.Definition{Target: ast.SingleTarget{Name: "b"}, Kind: ast.DeclMut, Value: u8(2)},
			&ast.Definition{Target: ast.SingleTarget{Name: "c"}, Kind: ast.DeclMut, Value: u8(3)},
			&ast.Definition{Target: ast.SingleTarget{Name: "d"}, Kind: ast.DeclMut, Value: u8(4)},
			&ast.Return{Value: &ast.Identifier{Name: "d"}},
		}},
	}
	prog := &ast.Program{Scopes: []*ast.ProgramScope{{ProgramID: "foo.aleo", Functions: []*ast.Function{tiny, big}}}}

	st := newState()
	out, err := inline.RunAnalyze(prog, st)
	require.NoError(t, err)
	assert.Same(t, prog, out, "the analysis pass never rewrites the program, only st.InlineHints")

	assert.True(t, st.InlineHints["foo.aleo/tiny"])
	assert.False(t, st.InlineHints["foo.aleo/big"])
}
