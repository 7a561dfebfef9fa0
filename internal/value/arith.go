package value

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/diagnostics"
)

// asField coerces lhs/rhs of a field-involving binary op (or a unary
// field/scalar op's operand) to an fr.Element, treating a bare integer or
// bool operand as its field embedding. By the time Binary/Unary run,
// mixed-kind operands have already been rejected by the type checker, so
// this only ever widens a constant of the same underlying field.
func asField(v Value) fr.Element {
	switch v.Kind {
	case KindField, KindScalar:
		if v.Kind == KindScalar {
			return v.Scalar
		}
		return v.Field
	case KindInt:
		var f fr.Element
		f.SetBigInt(v.Int)
		return f
	case KindBool:
		var f fr.Element
		if v.Bool {
			f.SetOne()
		}
		return f
	default:
		return fr.Element{}
	}
}

// evalError is how Binary/Unary/Cast report a compile-time evaluation
// failure (overflow, division by zero, out-of-range cast) without forcing
// every caller to thread a *diagnostics.Sink through pure functions;
// the folder wraps the returned error into a Sink.Report at the call
// site, attaching the node's span.
type evalError struct {
	code diagnostics.Code
	msg  string
}

func (e *evalError) Error() string { return e.msg }

func errf(code diagnostics.Code, format string, args ...any) error {
	return &evalError{code: code, msg: fmt.Sprintf(format, args...)}
}

// Code extracts the diagnostics.Code from an error produced by this
// package, or "" if err did not originate here.
func Code(err error) diagnostics.Code {
	if ee, ok := err.(*evalError); ok {
		return ee.code
	}
	return ""
}

func intBounds(width int, signed bool) (min, max *big.Int) {
	max = new(big.Int).Lsh(big.NewInt(1), uint(width))
	if signed {
		half := new(big.Int).Lsh(big.NewInt(1), uint(width-1))
		min = new(big.Int).Neg(half)
		max = new(big.Int).Sub(half, big.NewInt(1))
		return min, max
	}
	max = new(big.Int).Sub(max, big.NewInt(1))
	return big.NewInt(0), max
}

func checkRange(v *big.Int, width int, signed bool) error {
	min, max := intBounds(width, signed)
	if v.Cmp(min) < 0 || v.Cmp(max) > 0 {
		return errf(diagnostics.ErrIntegerOverflow, "value %s out of range for %d-bit %s integer", v.String(), width, signString(signed))
	}
	return nil
}

func signString(signed bool) string {
	if signed {
		return "signed"
	}
	return "unsigned"
}

// Binary evaluates a BinaryOp over two already-folded constants, checking
// overflow/div-by-zero for integer ops the way the target VM's runtime
// would: compile-time evaluation must reject what the VM would reject, not
// silently wrap.
func Binary(op ast.BinaryOp, lhs, rhs Value) (Value, error) {
	switch op {
	case ast.OpBoolAnd:
		return Bool(lhs.Bool && rhs.Bool), nil
	case ast.OpBoolOr:
		return Bool(lhs.Bool || rhs.Bool), nil
	}

	if lhs.Kind == KindField || rhs.Kind == KindField {
		return binaryField(op, lhs, rhs)
	}
	if lhs.Kind == KindInt {
		return binaryInt(op, lhs, rhs)
	}
	if lhs.Kind == KindBool {
		return binaryBool(op, lhs, rhs)
	}
	return Value{}, errf(diagnostics.ErrIntegerOverflow, "binary op not defined for value kind %d", lhs.Kind)
}

func binaryBool(op ast.BinaryOp, lhs, rhs Value) (Value, error) {
	switch op {
	case ast.OpAnd:
		return Bool(lhs.Bool && rhs.Bool), nil
	case ast.OpOr:
		return Bool(lhs.Bool || rhs.Bool), nil
	case ast.OpXor:
		return Bool(lhs.Bool != rhs.Bool), nil
	case ast.OpEq:
		return Bool(lhs.Bool == rhs.Bool), nil
	case ast.OpNeq:
		return Bool(lhs.Bool != rhs.Bool), nil
	default:
		return Value{}, errf(diagnostics.ErrIntegerOverflow, "op not defined over bool")
	}
}

func binaryField(op ast.BinaryOp, lhs, rhs Value) (Value, error) {
	a, b := asField(lhs), asField(rhs)
	switch op {
	case ast.OpAdd:
		var r fr.Element
		r.Add(&a, &b)
		return FieldElem(r), nil
	case ast.OpSub:
		var r fr.Element
		r.Sub(&a, &b)
		return FieldElem(r), nil
	case ast.OpMul:
		var r fr.Element
		r.Mul(&a, &b)
		return FieldElem(r), nil
	case ast.OpDiv:
		if b.IsZero() {
			return Value{}, errf(diagnostics.ErrDivisionByZero, "division by zero field element")
		}
		var inv, r fr.Element
		inv.Inverse(&b)
		r.Mul(&a, &inv)
		return FieldElem(r), nil
	case ast.OpEq:
		return Bool(a.Equal(&b)), nil
	case ast.OpNeq:
		return Bool(!a.Equal(&b)), nil
	default:
		return Value{}, errf(diagnostics.ErrIntegerOverflow, "op not defined over field")
	}
}

func binaryInt(op ast.BinaryOp, lhs, rhs Value) (Value, error) {
	width, signed := lhs.Width, lhs.Signed
	a, b := lhs.Int, rhs.Int
	switch op {
	case ast.OpAdd:
		return checkedInt(new(big.Int).Add(a, b), width, signed)
	case ast.OpSub:
		return checkedInt(new(big.Int).Sub(a, b), width, signed)
	case ast.OpMul:
		return checkedInt(new(big.Int).Mul(a, b), width, signed)
	case ast.OpDiv:
		if b.Sign() == 0 {
			return Value{}, errf(diagnostics.ErrDivisionByZero, "division by zero")
		}
		return checkedInt(new(big.Int).Quo(a, b), width, signed)
	case ast.OpRem:
		if b.Sign() == 0 {
			return Value{}, errf(diagnostics.ErrDivisionByZero, "remainder by zero")
		}
		return checkedInt(new(big.Int).Rem(a, b), width, signed)
	case ast.OpPow:
		if b.Sign() < 0 {
			return Value{}, errf(diagnostics.ErrIntegerOverflow, "negative exponent")
		}
		return checkedInt(new(big.Int).Exp(a, b, nil), width, signed)
	case ast.OpAnd:
		return Int(new(big.Int).And(a, b), width, signed), nil
	case ast.OpOr:
		return Int(new(big.Int).Or(a, b), width, signed), nil
	case ast.OpXor:
		return Int(new(big.Int).Xor(a, b), width, signed), nil
	case ast.OpShl:
		if b.Sign() < 0 || b.Cmp(big.NewInt(int64(width))) >= 0 {
			return Value{}, errf(diagnostics.ErrIntegerOverflow, "shift amount out of range")
		}
		return checkedInt(new(big.Int).Lsh(a, uint(b.Int64())), width, signed)
	case ast.OpShr:
		if b.Sign() < 0 || b.Cmp(big.NewInt(int64(width))) >= 0 {
			return Value{}, errf(diagnostics.ErrIntegerOverflow, "shift amount out of range")
		}
		return Int(new(big.Int).Rsh(a, uint(b.Int64())), width, signed), nil
	case ast.OpEq:
		return Bool(a.Cmp(b) == 0), nil
	case ast.OpNeq:
		return Bool(a.Cmp(b) != 0), nil
	case ast.OpLt:
		return Bool(a.Cmp(b) < 0), nil
	case ast.OpLte:
		return Bool(a.Cmp(b) <= 0), nil
	case ast.OpGt:
		return Bool(a.Cmp(b) > 0), nil
	case ast.OpGte:
		return Bool(a.Cmp(b) >= 0), nil
	default:
		return Value{}, errf(diagnostics.ErrIntegerOverflow, "op not defined over integer")
	}
}

func checkedInt(v *big.Int, width int, signed bool) (Value, error) {
	if err := checkRange(v, width, signed); err != nil {
		return Value{}, err
	}
	return Int(v, width, signed), nil
}

// Unary evaluates a UnaryOp over a folded constant.
func Unary(op ast.UnaryOp, v Value) (Value, error) {
	switch op {
	case ast.OpNot:
		if v.Kind == KindBool {
			return Bool(!v.Bool), nil
		}
		return Value{}, errf(diagnostics.ErrIntegerOverflow, "not defined over non-bool")
	case ast.OpNegate:
		if v.Kind != KindInt || !v.Signed {
			return Value{}, errf(diagnostics.ErrIntegerOverflow, "negate only defined over signed integers")
		}
		return checkedInt(new(big.Int).Neg(v.Int), v.Width, v.Signed)
	case ast.OpAbs:
		if v.Kind != KindInt {
			return Value{}, errf(diagnostics.ErrIntegerOverflow, "abs only defined over integers")
		}
		return checkedInt(new(big.Int).Abs(v.Int), v.Width, v.Signed)
	case ast.OpInverse:
		a := asField(v)
		if a.IsZero() {
			return Value{}, errf(diagnostics.ErrDivisionByZero, "inverse of zero")
		}
		var r fr.Element
		r.Inverse(&a)
		return FieldElem(r), nil
	case ast.OpSquareRoot:
		a := asField(v)
		var r fr.Element
		if r.Sqrt(&a) == nil {
			return Value{}, errf(diagnostics.ErrIntegerOverflow, "value is not a quadratic residue")
		}
		return FieldElem(r), nil
	default:
		return Value{}, errf(diagnostics.ErrIntegerOverflow, "unknown unary op")
	}
}

// Cast converts v to target, following the target VM's checked casting
// rules: integer-to-integer casts range-check, everything else
// is either an identity or a documented widening.
func Cast(v Value, target ast.Type) (Value, error) {
	switch t := target.(type) {
	case ast.IntegerType:
		switch v.Kind {
		case KindInt:
			return checkedInt(new(big.Int).Set(v.Int), t.Width, t.Signed)
		case KindBool:
			i := int64(0)
			if v.Bool {
				i = 1
			}
			return checkedInt(big.NewInt(i), t.Width, t.Signed)
		case KindField:
			return checkedInt(v.Field.BigInt(new(big.Int)), t.Width, t.Signed)
		}
	case ast.FieldType:
		switch v.Kind {
		case KindInt:
			return Field(v.Int), nil
		case KindBool:
			if v.Bool {
				return Field(big.NewInt(1)), nil
			}
			return Field(big.NewInt(0)), nil
		}
	case ast.BoolType:
		if v.Kind == KindInt {
			return Bool(v.Int.Sign() != 0), nil
		}
	}
	return Value{}, errf(diagnostics.ErrTypeMismatch, "cannot cast value to target type")
}

// Equal compares two values outside of ast.BinaryOp dispatch, reporting
// false whenever Binary(OpEq) fails for the pair.
func Equal(a, b Value) bool {
	r, err := Binary(ast.OpEq, a, b)
	if err != nil {
		return false
	}
	return r.Bool
}
