package value_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/value"
)

func TestBinaryIntOverflowRejected(t *testing.T) {
	max := value.Int(big.NewInt(255), 8, false)
	one := value.Int(big.NewInt(1), 8, false)
	_, err := value.Binary(ast.OpAdd, max, one)
	assert.Error(t, err)
	assert.Equal(t, diagCode(t, err), "C001")
}

func TestBinaryIntWithinRange(t *testing.T) {
	a := value.Int(big.NewInt(100), 8, false)
	b := value.Int(big.NewInt(50), 8, false)
	r, err := value.Binary(ast.OpAdd, a, b)
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(150), r.Int)
}

func TestBinaryDivisionByZero(t *testing.T) {
	a := value.Int(big.NewInt(10), 32, true)
	z := value.Int(big.NewInt(0), 32, true)
	_, err := value.Binary(ast.OpDiv, a, z)
	assert.Error(t, err)
}

func TestFieldRoundTrip(t *testing.T) {
	f := value.Field(big.NewInt(42))
	expr := f.ToExpression()
	lit, ok := expr.(*ast.FieldLiteral)
	assert.True(t, ok)
	assert.Equal(t, big.NewInt(42), lit.Value)
}

func TestToFieldsFlattensArray(t *testing.T) {
	arr := value.Array([]value.Value{
		value.Int(big.NewInt(1), 8, false),
		value.Int(big.NewInt(2), 8, false),
	})
	fields := arr.ToFields()
	assert.Len(t, fields, 2)
}

func TestCastBoolToInt(t *testing.T) {
	r, err := value.Cast(value.Bool(true), ast.IntegerType{Width: 8, Signed: false})
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(1), r.Int)
}

func diagCode(t *testing.T, err error) string {
	t.Helper()
	return string(value.Code(err))
}
