// Package value implements the compile-time value algebra:
// the closed sum of values const-prop and the optional interpreter
// can fold and compare. Field/Group/Scalar arithmetic is delegated to
// gnark-crypto's BLS12-377 scalar-field implementation rather than
// hand-rolled modular arithmetic.
package value

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/vinelang/vinec/internal/ast"
)

// Kind tags which arm of the sum a Value occupies.
type Kind int

const (
	KindUnit Kind = iota
	KindBool
	KindInt
	KindField
	KindGroup
	KindScalar
	KindAddress
	KindArray
	KindTuple
	KindStruct
	KindFuture
)

// Value is a compile-time-evaluable constant. Exactly one of the typed
// fields is meaningful, selected by Kind — a plain Go sum-by-convention
// rather than an interface, since every arm needs the same handful of
// operations (Binary/Unary/Cast/Compare) dispatched centrally rather than
// through per-type methods.
type Value struct {
	Kind Kind

	Bool bool

	// Int holds every fixed-width integer kind; Width/Signed identify which.
	Int    *big.Int
	Width  int
	Signed bool

	Field  fr.Element
	Group  GroupElement
	Scalar fr.Element

	Address string

	Array  []Value
	Tuple  []Value
	Struct map[string]Value
	// FieldOrder preserves declaration order for Struct and to_fields().
	FieldOrder []string

	// Future is opaque to the value algebra: it only ever flows through
	// code untouched (no binary/unary op is defined over it), carrying the
	// resolved async-transition call awaiting its finalize.
	Future *FutureValue
}

// GroupElement is a point on the twisted Edwards curve associated with
// BLS12-377's scalar field, represented by its x-coordinate only: the
// language's group literals and generator() are affine points where only x
// is ever inspected by to_fields()/equality in this core (full point
// arithmetic — doubling, addition — is out of scope for a compile-time
// constant-folder, so this stores a group literal's value as x, and
// x = 1 for generator(), rather than a full curve point type).
type GroupElement struct {
	X fr.Element
}

// FutureValue names the async transition call a Future resolves to and its
// captured arguments, for diagnostics and for the code generator (which
// only ever threads it through opaquely).
type FutureValue struct {
	TransitionName string
	Args           []Value
}

func Unit() Value { return Value{Kind: KindUnit} }

func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

func Int(v *big.Int, width int, signed bool) Value {
	return Value{Kind: KindInt, Int: new(big.Int).Set(v), Width: width, Signed: signed}
}

func Field(v *big.Int) Value {
	var f fr.Element
	f.SetBigInt(v)
	return Value{Kind: KindField, Field: f}
}

func FieldElem(f fr.Element) Value { return Value{Kind: KindField, Field: f} }

func Scalar(v *big.Int) Value {
	var s fr.Element
	s.SetBigInt(v)
	return Value{Kind: KindScalar, Scalar: s}
}

func Address(raw string) Value { return Value{Kind: KindAddress, Address: raw} }

func Array(elems []Value) Value { return Value{Kind: KindArray, Array: elems} }

func Tuple(elems []Value) Value { return Value{Kind: KindTuple, Tuple: elems} }

func Struct(order []string, fields map[string]Value) Value {
	return Value{Kind: KindStruct, FieldOrder: order, Struct: fields}
}

// TypeOf reconstructs the static ast.Type of v, needed wherever a folded
// constant must be re-embedded as a literal expression with an explicit
// type annotation (const-prop's unroller, synthesizing loop-index constants).
func (v Value) TypeOf() ast.Type {
	switch v.Kind {
	case KindUnit:
		return ast.UnitType{}
	case KindBool:
		return ast.BoolType{}
	case KindInt:
		return ast.IntegerType{Width: v.Width, Signed: v.Signed}
	case KindField:
		return ast.FieldType{}
	case KindGroup:
		return ast.GroupType{}
	case KindScalar:
		return ast.ScalarType{}
	case KindAddress:
		return ast.AddressType{}
	case KindArray:
		var elemTy ast.Type = ast.ErrType{}
		if len(v.Array) > 0 {
			elemTy = v.Array[0].TypeOf()
		}
		return ast.ArrayType{Elem: elemTy, Length: uint32(len(v.Array))}
	case KindTuple:
		elems := make([]ast.Type, len(v.Tuple))
		for i, e := range v.Tuple {
			elems[i] = e.TypeOf()
		}
		return ast.TupleType{Elems: elems}
	default:
		return ast.ErrType{}
	}
}

// ToExpression converts v back into a literal AST node, the inverse of
// the constant-folder's literal-to-Value direction, used by const-prop to
// re-embed a folded result into the tree it's rewriting.
func (v Value) ToExpression() ast.Expression {
	switch v.Kind {
	case KindUnit:
		return &ast.UnitExpr{}
	case KindBool:
		return &ast.BooleanLiteral{Value: v.Bool}
	case KindInt:
		return &ast.IntegerLiteral{Value: new(big.Int).Set(v.Int), Width: v.Width, Signed: v.Signed}
	case KindField:
		return &ast.FieldLiteral{Value: v.Field.BigInt(new(big.Int))}
	case KindScalar:
		return &ast.ScalarLiteral{Value: v.Scalar.BigInt(new(big.Int))}
	case KindGroup:
		return &ast.GroupLiteral{Value: v.Group.X.BigInt(new(big.Int))}
	case KindAddress:
		return &ast.AddressLiteral{Raw: v.Address}
	case KindArray:
		elems := make([]ast.Expression, len(v.Array))
		for i, e := range v.Array {
			elems[i] = e.ToExpression()
		}
		return &ast.ArrayExpr{Elements: elems}
	case KindTuple:
		elems := make([]ast.Expression, len(v.Tuple))
		for i, e := range v.Tuple {
			elems[i] = e.ToExpression()
		}
		return &ast.TupleExpr{Elements: elems}
	case KindStruct:
		fields := make(map[string]ast.Expression, len(v.Struct))
		for name, f := range v.Struct {
			fields[name] = f.ToExpression()
		}
		return &ast.CompositeInitExpr{FieldOrder: append([]string{}, v.FieldOrder...), Fields: fields}
	default:
		return &ast.ErrExpr{}
	}
}

// Generator returns the canonical group generator value, surfaced through
// IntrinsicGroupGenerator.
func Generator() Value {
	var gen fr.Element
	gen.SetOne()
	return Value{Kind: KindGroup, Group: GroupElement{X: gen}}
}

func (v Value) String() string {
	switch v.Kind {
	case KindUnit:
		return "()"
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindInt:
		return v.Int.String()
	case KindField:
		return v.Field.BigInt(new(big.Int)).String() + "field"
	case KindScalar:
		return v.Scalar.BigInt(new(big.Int)).String() + "scalar"
	case KindGroup:
		return v.Group.X.BigInt(new(big.Int)).String() + "group"
	case KindAddress:
		return v.Address
	default:
		return fmt.Sprintf("<value kind=%d>", v.Kind)
	}
}
