// Package lowering implements two targeted source-to-source
// rewrites: storage lowering (mapping reads/writes into explicit intrinsic
// calls) and optional lowering (Optional<T> into a {flag, value} composite
// plus get_or_use expansion). Both run as a single reconstructor pass over
// every function body, built on the same ast.Reconstructor framework
// constprop uses.
package lowering

import (
	"fmt"
	"math/big"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/driver"
)

// optionalCompositeName derives the synthesized struct name for
// Optional<inner>, stable across every occurrence of the same inner type
// so two functions both taking Optional<u64> share one composite.
func optionalCompositeName(inner ast.Type) string {
	return fmt.Sprintf("Optional$%s", inner)
}

// zeroValue builds the zero(type) literal expression for a given type:
// 0 for numerics, false for bool, a recursively-zeroed composite for
// structs (and for a lowered Optional, whose zero is {flag: false, value:
// zero(inner)}), and a repeat expression for arrays.
func zeroValue(t ast.Type, st *driver.State) ast.Expression {
	switch tt := t.(type) {
	case ast.IntegerType:
		return &ast.IntegerLiteral{Value: big.NewInt(0), Width: tt.Width, Signed: tt.Signed}
	case ast.FieldType:
		return &ast.FieldLiteral{Value: big.NewInt(0)}
	case ast.ScalarType:
		return &ast.ScalarLiteral{Value: big.NewInt(0)}
	case ast.GroupType:
		return &ast.GroupLiteral{Value: big.NewInt(0)}
	case ast.BoolType:
		return &ast.BooleanLiteral{Value: false}
	case ast.AddressType:
		// No canonical "zero address" in the source language; an empty
		// Raw is the documented placeholder a zeroed record/struct member
		// of this type gets until explicitly assigned.
		return &ast.AddressLiteral{Raw: ""}
	case ast.ArrayType:
		return &ast.RepeatExpr{
			Value: zeroValue(tt.Elem, st),
			Count: &ast.IntegerLiteral{Value: big.NewInt(int64(tt.Length)), Width: 32, Signed: false},
		}
	case ast.TupleType:
		elems := make([]ast.Expression, len(tt.Elems))
		for i, e := range tt.Elems {
			elems[i] = zeroValue(e, st)
		}
		return &ast.TupleExpr{Elements: elems}
	case ast.CompositeType:
		sym, ok := st.Symbols.Find(tt.Path)
		if !ok || sym.Composite == nil {
			return &ast.ErrExpr{}
		}
		order := make([]string, len(sym.Composite.Members))
		fields := make(map[string]ast.Expression, len(sym.Composite.Members))
		for i, m := range sym.Composite.Members {
			order[i] = m.Name
			fields[m.Name] = zeroValue(m.Type, st)
		}
		return &ast.CompositeInitExpr{Name: tt.Path, FieldOrder: order, Fields: fields}
	case ast.OptionalType:
		return &ast.CompositeInitExpr{
			Name:       optionalCompositeName(tt.Inner),
			FieldOrder: []string{"flag", "value"},
			Fields: map[string]ast.Expression{
				"flag":  &ast.BooleanLiteral{Value: false},
				"value": zeroValue(tt.Inner, st),
			},
		}
	default:
		return &ast.ErrExpr{}
	}
}
