package ast

import (
	"fmt"
	"strings"
)

// Type is the closed sum of every type the language can express:
//   Unit | Bool | Address | Field | Group | Scalar | Signature | String |
//   Integer(Width,Signed) | Array{elem,len} | Tuple(types) |
//   Composite(path, const_args) | Mapping{key,value} |
//   Future(inputs, origin) | Optional(inner) | Numeric | Err
//
// Unlike a general-purpose typesystem.Type (one supporting Hindley-Milner
// type variables and substitution for a language with real generics), this
// language has no type-level polymorphism — const-generic functions are
// specialized by value (const-prop's monomorphization), never by unifying type
// variables — so Type carries no Apply/FreeTypeVariables machinery.
type Type interface {
	isType()
	String() string
}

type (
	// UnitType is the type of the unit value, and of statements/functions
	// with no return.
	UnitType struct{}
	// BoolType is the boolean type.
	BoolType struct{}
	// AddressType is the VM's account/program address type.
	AddressType struct{}
	// FieldType is the base-field element type.
	FieldType struct{}
	// GroupType is the elliptic-curve group element type.
	GroupType struct{}
	// ScalarType is the curve's scalar field element type.
	ScalarType struct{}
	// SignatureType is an opaque signature value type.
	SignatureType struct{}
	// StringType is a (non-provable, host-only) string type.
	StringType struct{}
	// NumericType is a meta-type used only during type inference to mean
	// "some integer or field type, not yet pinned down"; it must never
	// survive into the type table after type checking completes.
	NumericType struct{}
	// ErrType is the poison type installed at a failing node so later
	// passes do not cascade further diagnostics from the same root cause.
	ErrType struct{}
)

func (UnitType) isType()      {}
func (BoolType) isType()      {}
func (AddressType) isType()   {}
func (FieldType) isType()     {}
func (GroupType) isType()     {}
func (ScalarType) isType()    {}
func (SignatureType) isType() {}
func (StringType) isType()    {}
func (NumericType) isType()   {}
func (ErrType) isType()       {}

func (UnitType) String() string      { return "()" }
func (BoolType) String() string      { return "bool" }
func (AddressType) String() string   { return "address" }
func (FieldType) String() string     { return "field" }
func (GroupType) String() string     { return "group" }
func (ScalarType) String() string    { return "scalar" }
func (SignatureType) String() string { return "signature" }
func (StringType) String() string    { return "string" }
func (NumericType) String() string   { return "<numeric>" }
func (ErrType) String() string       { return "<err>" }

// IntegerType is a fixed-width, signed or unsigned integer type (u8..u128,
// i8..i128).
type IntegerType struct {
	Width  int
	Signed bool
}

func (IntegerType) isType() {}
func (t IntegerType) String() string {
	if t.Signed {
		return fmt.Sprintf("i%d", t.Width)
	}
	return fmt.Sprintf("u%d", t.Width)
}

// ArrayType is a fixed-length homogeneous array.
type ArrayType struct {
	Elem   Type
	Length uint32
}

func (ArrayType) isType() {}
func (t ArrayType) String() string {
	return fmt.Sprintf("[%s; %d]", t.Elem, t.Length)
}

// TupleType requires at least two element types (a "tuple with <2
// elements" is a type error produced upstream; the AST representation does
// not itself forbid it so that the poisoned case can still be represented).
type TupleType struct {
	Elems []Type
}

func (TupleType) isType() {}
func (t TupleType) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// CompositeType names a struct or record, along with any const-generic
// arguments that were already resolved to values at the point this type was
// formed (post monomorphization, const args are always concrete).
type CompositeType struct {
	Path      string // "program.network/StructName" or "ModuleName.StructName"
	ConstArgs []ConstArg
}

// ConstArg is a single resolved const-generic argument attached to a
// composite or function instantiation.
type ConstArg struct {
	Name string
	// Value is left as `any` here (a *value.Value normally) to avoid a
	// package import cycle between ast and value; passes assert the
	// concrete type they expect.
	Value any
}

func (CompositeType) isType() {}
func (t CompositeType) String() string {
	if len(t.ConstArgs) == 0 {
		return t.Path
	}
	parts := make([]string, len(t.ConstArgs))
	for i, a := range t.ConstArgs {
		parts[i] = fmt.Sprintf("%v", a.Value)
	}
	return fmt.Sprintf("%s<%s>", t.Path, strings.Join(parts, ", "))
}

// MappingType binds a key type to a value type (neither may be
// future, tuple, record, or mapping — enforced by the type checker, not by
// this representation).
type MappingType struct {
	Key   Type
	Value Type
}

func (MappingType) isType() {}
func (t MappingType) String() string {
	return fmt.Sprintf("mapping[%s => %s]", t.Key, t.Value)
}

// FutureType is a typed handle to a pending asynchronous computation's
// inputs. Origin names the async transition that produces
// this future, for diagnostics.
type FutureType struct {
	Inputs []Type
	Origin string
}

func (FutureType) isType() {}
func (t FutureType) String() string {
	return fmt.Sprintf("Future<%s>", t.Origin)
}

// OptionalType wraps an inner type. Lowered away by the optional
// lowering pass before SSA formation.
type OptionalType struct {
	Inner Type
}

func (OptionalType) isType() {}
func (t OptionalType) String() string {
	return fmt.Sprintf("Optional<%s>", t.Inner)
}

// Equal is strict structural equality.
func Equal(a, b Type) bool {
	return equal(a, b, false)
}

// EqualRelaxed treats Err as matching anything, and ignores Future.Origin
// (used when matching a declared return type against an inferred one —
// declared against inferred return types).
func EqualRelaxed(a, b Type) bool {
	return equal(a, b, true)
}

func equal(a, b Type, relaxed bool) bool {
	if relaxed {
		if _, ok := a.(ErrType); ok {
			return true
		}
		if _, ok := b.(ErrType); ok {
			return true
		}
	}
	switch av := a.(type) {
	case UnitType:
		_, ok := b.(UnitType)
		return ok
	case BoolType:
		_, ok := b.(BoolType)
		return ok
	case AddressType:
		_, ok := b.(AddressType)
		return ok
	case FieldType:
		_, ok := b.(FieldType)
		return ok
	case GroupType:
		_, ok := b.(GroupType)
		return ok
	case ScalarType:
		_, ok := b.(ScalarType)
		return ok
	case SignatureType:
		_, ok := b.(SignatureType)
		return ok
	case StringType:
		_, ok := b.(StringType)
		return ok
	case NumericType:
		_, ok := b.(NumericType)
		return ok
	case ErrType:
		_, ok := b.(ErrType)
		return ok
	case IntegerType:
		bv, ok := b.(IntegerType)
		return ok && av.Width == bv.Width && av.Signed == bv.Signed
	case ArrayType:
		bv, ok := b.(ArrayType)
		return ok && av.Length == bv.Length && equal(av.Elem, bv.Elem, relaxed)
	case TupleType:
		bv, ok := b.(TupleType)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !equal(av.Elems[i], bv.Elems[i], relaxed) {
				return false
			}
		}
		return true
	case CompositeType:
		bv, ok := b.(CompositeType)
		if !ok || av.Path != bv.Path || len(av.ConstArgs) != len(bv.ConstArgs) {
			return false
		}
		for i := range av.ConstArgs {
			if av.ConstArgs[i].Name != bv.ConstArgs[i].Name {
				return false
			}
		}
		return true
	case MappingType:
		bv, ok := b.(MappingType)
		return ok && equal(av.Key, bv.Key, relaxed) && equal(av.Value, bv.Value, relaxed)
	case FutureType:
		bv, ok := b.(FutureType)
		if !ok || len(av.Inputs) != len(bv.Inputs) {
			return false
		}
		if !relaxed && av.Origin != bv.Origin {
			return false
		}
		for i := range av.Inputs {
			if !equal(av.Inputs[i], bv.Inputs[i], relaxed) {
				return false
			}
		}
		return true
	case OptionalType:
		bv, ok := b.(OptionalType)
		return ok && equal(av.Inner, bv.Inner, relaxed)
	default:
		return false
	}
}

// IsNumeric reports whether t is a Field or Integer type (the operand types
// accepted by arithmetic and comparison intrinsics).
func IsNumeric(t Type) bool {
	switch t.(type) {
	case FieldType, IntegerType:
		return true
	default:
		return false
	}
}
