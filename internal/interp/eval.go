package interp

import (
	"fmt"
	"math/big"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/value"
)

// evalStmt executes one statement against scope e, mutating frame only via
// frame.pending/frame.pendingSet (Return) — every other effect is confined
// to e, mirroring the flattener's own "a statement either defines, asserts,
// or returns" discipline even though the interpreter runs on
// pre-flatten ASTs too (it has no flattening precondition of its own).
func (ip *Interp) evalStmt(frame *Frame, stmt ast.Statement, e *env) error {
	switch s := stmt.(type) {
	case *ast.Definition:
		v, err := ip.evalExpr(e, s.Value)
		if err != nil {
			return err
		}
		return bindTarget(e, s.Target, v)

	case *ast.Const:
		v, err := ip.evalExpr(e, s.Value)
		if err != nil {
			return err
		}
		e.define(s.Name, v)
		return nil

	case *ast.Assign:
		v, err := ip.evalExpr(e, s.Value)
		if err != nil {
			return err
		}
		return ip.evalAssign(e, s.Place, v)

	case *ast.Assert:
		v, err := ip.evalExpr(e, s.Condition)
		if err != nil {
			return err
		}
		if v.Kind != value.KindBool {
			return fmt.Errorf("assert condition is not boolean")
		}
		if !v.Bool {
			return fmt.Errorf("assertion failed")
		}
		return nil

	case *ast.ExpressionStatement:
		_, err := ip.evalExpr(e, s.Value)
		return err

	case *ast.Block:
		return ip.runBlock(frame, s, newEnv(e))

	case *ast.Conditional:
		cond, err := ip.evalExpr(e, s.Condition)
		if err != nil {
			return err
		}
		if cond.Kind != value.KindBool {
			return fmt.Errorf("conditional condition is not boolean")
		}
		if cond.Bool {
			return ip.runBlock(frame, s.Then, newEnv(e))
		}
		if s.Otherwise != nil {
			return ip.runBlock(frame, s.Otherwise, newEnv(e))
		}
		return nil

	case *ast.Iteration:
		return ip.evalIteration(frame, s, e)

	case *ast.Return:
		if s.Value == nil {
			u := value.Unit()
			frame.pending = &u
			frame.pendingSet = true
			return nil
		}
		v, err := ip.evalExpr(e, s.Value)
		if err != nil {
			return err
		}
		frame.pending = &v
		frame.pendingSet = true
		return nil

	default:
		return fmt.Errorf("interp: unsupported statement %T", stmt)
	}
}

func bindTarget(e *env, target ast.DefinitionTarget, v value.Value) error {
	switch t := target.(type) {
	case ast.SingleTarget:
		e.define(t.Name, v)
		return nil
	case ast.MultipleTarget:
		if v.Kind != value.KindTuple || len(v.Tuple) != len(t.Names) {
			return fmt.Errorf("tuple-destructure arity mismatch")
		}
		for i, name := range t.Names {
			e.define(name, v.Tuple[i])
		}
		return nil
	default:
		return fmt.Errorf("interp: unsupported definition target %T", target)
	}
}

func (ip *Interp) evalIteration(frame *Frame, s *ast.Iteration, e *env) error {
	start, err := ip.evalExpr(e, s.Start)
	if err != nil {
		return err
	}
	stop, err := ip.evalExpr(e, s.Stop)
	if err != nil {
		return err
	}
	if start.Kind != value.KindInt || stop.Kind != value.KindInt {
		return fmt.Errorf("loop bounds must be integers")
	}
	cur := new(big.Int).Set(start.Int)
	one := big.NewInt(1)
	for {
		cmp := cur.Cmp(stop.Int)
		if s.Inclusive {
			if cmp > 0 {
				break
			}
		} else if cmp >= 0 {
			break
		}
		iterEnv := newEnv(e)
		iterEnv.define(s.Variable, value.Int(new(big.Int).Set(cur), start.Width, start.Signed))
		if err := ip.runBlock(frame, s.Body, iterEnv); err != nil {
			return err
		}
		if frame.pendingSet {
			return nil
		}
		cur.Add(cur, one)
	}
	return nil
}

func (ip *Interp) evalAssign(e *env, place ast.Expression, v value.Value) error {
	id, ok := place.(*ast.Identifier)
	if !ok {
		return fmt.Errorf("interp: assignment to non-identifier place is only valid after write-transform lowers it to a rebind, which this interpreter does not pre-run")
	}
	if !e.assign(id.Name, v) {
		return fmt.Errorf("assignment to undefined identifier %q", id.Name)
	}
	return nil
}

func (ip *Interp) evalExpr(e *env, expr ast.Expression) (value.Value, error) {
	switch n := expr.(type) {
	case *ast.UnitExpr:
		return value.Unit(), nil
	case *ast.BooleanLiteral:
		return value.Bool(n.Value), nil
	case *ast.IntegerLiteral:
		return value.Int(n.Value, n.Width, n.Signed), nil
	case *ast.FieldLiteral:
		return value.Field(n.Value), nil
	case *ast.ScalarLiteral:
		return value.Scalar(n.Value), nil
	case *ast.GroupLiteral:
		if n.IsGenerator {
			return value.Generator(), nil
		}
		x := value.Field(n.Value).Field // placeholder affine encoding, mirrors literalToValue's x-only GroupElement
		return value.Value{Kind: value.KindGroup, Group: value.GroupElement{X: x}}, nil
	case *ast.AddressLiteral:
		return value.Address(n.Raw), nil
	case *ast.StringLiteral:
		return value.Value{}, fmt.Errorf("interp: string literals are host-only, not representable as a value.Value")

	case *ast.Identifier:
		v, ok := e.lookup(n.Name)
		if !ok {
			return value.Value{}, fmt.Errorf("undefined identifier %q", n.Name)
		}
		return v, nil

	case *ast.BinaryExpr:
		lv, err := ip.evalExpr(e, n.Left)
		if err != nil {
			return value.Value{}, err
		}
		if n.Op == ast.OpBoolAnd && lv.Kind == value.KindBool && !lv.Bool {
			return value.Bool(false), nil
		}
		if n.Op == ast.OpBoolOr && lv.Kind == value.KindBool && lv.Bool {
			return value.Bool(true), nil
		}
		rv, err := ip.evalExpr(e, n.Right)
		if err != nil {
			return value.Value{}, err
		}
		return value.Binary(n.Op, lv, rv)

	case *ast.UnaryExpr:
		ov, err := ip.evalExpr(e, n.Operand)
		if err != nil {
			return value.Value{}, err
		}
		return value.Unary(n.Op, ov)

	case *ast.CastExpr:
		ov, err := ip.evalExpr(e, n.Operand)
		if err != nil {
			return value.Value{}, err
		}
		return value.Cast(ov, n.Target)

	case *ast.ArrayExpr:
		elems := make([]value.Value, len(n.Elements))
		for i, el := range n.Elements {
			v, err := ip.evalExpr(e, el)
			if err != nil {
				return value.Value{}, err
			}
			elems[i] = v
		}
		return value.Array(elems), nil

	case *ast.RepeatExpr:
		v, err := ip.evalExpr(e, n.Value)
		if err != nil {
			return value.Value{}, err
		}
		cv, err := ip.evalExpr(e, n.Count)
		if err != nil {
			return value.Value{}, err
		}
		if cv.Kind != value.KindInt {
			return value.Value{}, fmt.Errorf("repeat count must be an integer")
		}
		count := int(cv.Int.Int64())
		elems := make([]value.Value, count)
		for i := range elems {
			elems[i] = v
		}
		return value.Array(elems), nil

	case *ast.ArrayAccessExpr:
		av, err := ip.evalExpr(e, n.Array)
		if err != nil {
			return value.Value{}, err
		}
		iv, err := ip.evalExpr(e, n.Index)
		if err != nil {
			return value.Value{}, err
		}
		if av.Kind != value.KindArray || iv.Kind != value.KindInt {
			return value.Value{}, fmt.Errorf("array access on non-array or non-integer index")
		}
		idx := iv.Int.Int64()
		if idx < 0 || idx >= int64(len(av.Array)) {
			return value.Value{}, fmt.Errorf("array index %d out of bounds for length %d", idx, len(av.Array))
		}
		return av.Array[idx], nil

	case *ast.TupleExpr:
		elems := make([]value.Value, len(n.Elements))
		for i, el := range n.Elements {
			v, err := ip.evalExpr(e, el)
			if err != nil {
				return value.Value{}, err
			}
			elems[i] = v
		}
		return value.Tuple(elems), nil

	case *ast.TupleAccessExpr:
		tv, err := ip.evalExpr(e, n.Tuple)
		if err != nil {
			return value.Value{}, err
		}
		if tv.Kind != value.KindTuple || n.Index < 0 || n.Index >= len(tv.Tuple) {
			return value.Value{}, fmt.Errorf("tuple access index %d out of range", n.Index)
		}
		return tv.Tuple[n.Index], nil

	case *ast.CompositeInitExpr:
		fields := make(map[string]value.Value, len(n.Fields))
		for _, name := range n.FieldOrder {
			v, err := ip.evalExpr(e, n.Fields[name])
			if err != nil {
				return value.Value{}, err
			}
			fields[name] = v
		}
		return value.Struct(append([]string{}, n.FieldOrder...), fields), nil

	case *ast.MemberAccessExpr:
		sv, err := ip.evalExpr(e, n.Value)
		if err != nil {
			return value.Value{}, err
		}
		if sv.Kind != value.KindStruct {
			return value.Value{}, fmt.Errorf("member access on non-struct value")
		}
		fv, ok := sv.Struct[n.Field]
		if !ok {
			return value.Value{}, fmt.Errorf("no such member %q", n.Field)
		}
		return fv, nil

	case *ast.TernaryExpr:
		cv, err := ip.evalExpr(e, n.Condition)
		if err != nil {
			return value.Value{}, err
		}
		if cv.Kind != value.KindBool {
			return value.Value{}, fmt.Errorf("ternary condition is not boolean")
		}
		if cv.Bool {
			return ip.evalExpr(e, n.Then)
		}
		return ip.evalExpr(e, n.Otherwise)

	case *ast.CallExpr:
		return ip.evalCall(e, n)

	case *ast.IntrinsicExpr:
		return ip.evalIntrinsic(e, n)

	case *ast.AsyncBlockExpr:
		return value.Value{}, fmt.Errorf("interp: async/finalize blocks resolve through the host network, outside this interpreter's scope")

	case *ast.ErrExpr:
		return value.Value{}, fmt.Errorf("interp: encountered poison expression from an earlier type error")

	default:
		return value.Value{}, fmt.Errorf("interp: unsupported expression %T", expr)
	}
}

func (ip *Interp) evalCall(e *env, call *ast.CallExpr) (value.Value, error) {
	args := make([]value.Value, len(call.Args))
	for i, a := range call.Args {
		v, err := ip.evalExpr(e, a)
		if err != nil {
			return value.Value{}, err
		}
		args[i] = v
	}
	if _, ok := ip.funcs[call.Callee]; ok {
		return ip.Call(call.Callee, args)
	}
	return value.Value{}, fmt.Errorf("interp: call to unresolved or external callee %q", call.Callee)
}

func (ip *Interp) evalIntrinsic(e *env, n *ast.IntrinsicExpr) (value.Value, error) {
	switch n.Op {
	case ast.IntrinsicToFields:
		if len(n.Args) != 1 {
			return value.Value{}, fmt.Errorf("to_fields takes exactly one argument")
		}
		v, err := ip.evalExpr(e, n.Args[0])
		if err != nil {
			return value.Value{}, err
		}
		return value.Array(v.ToFields()), nil
	case ast.IntrinsicGroupGenerator:
		return value.Generator(), nil
	default:
		return value.Value{}, fmt.Errorf("interp: intrinsic %v requires on-chain program storage, out of this interpreter's scope", n.Op)
	}
}
