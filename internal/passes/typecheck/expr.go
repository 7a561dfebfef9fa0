package typecheck

import (
	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/diagnostics"
	"github.com/vinelang/vinec/internal/symbols"
)

// checkExpr infers and records e's type, recursing into children first.
// An ast.ErrType{} result is always already reported to
// st.Diags by the point it's returned, so callers never need to report it
// again — they only need to avoid cascading a second diagnostic from the
// same root cause.
func (c *checker) checkExpr(e ast.Expression) ast.Type {
	var t ast.Type
	switch n := e.(type) {
	case *ast.UnitExpr:
		t = ast.UnitType{}
	case *ast.BooleanLiteral:
		t = ast.BoolType{}
	case *ast.IntegerLiteral:
		t = ast.IntegerType{Width: n.Width, Signed: n.Signed}
	case *ast.FieldLiteral:
		t = ast.FieldType{}
	case *ast.GroupLiteral:
		t = ast.GroupType{}
	case *ast.ScalarLiteral:
		t = ast.ScalarType{}
	case *ast.AddressLiteral:
		t = ast.AddressType{}
	case *ast.StringLiteral:
		t = ast.StringType{}
	case *ast.Identifier:
		t = c.checkIdentifier(n)
	case *ast.BinaryExpr:
		t = c.checkBinary(n)
	case *ast.UnaryExpr:
		t = c.checkUnary(n)
	case *ast.CastExpr:
		t = c.checkCast(n)
	case *ast.CallExpr:
		t = c.checkCall(n)
	case *ast.IntrinsicExpr:
		t = c.checkIntrinsic(n)
	case *ast.ArrayExpr:
		t = c.checkArray(n)
	case *ast.RepeatExpr:
		t = c.checkRepeat(n)
	case *ast.ArrayAccessExpr:
		t = c.checkArrayAccess(n)
	case *ast.TupleExpr:
		t = c.checkTuple(n)
	case *ast.TupleAccessExpr:
		t = c.checkTupleAccess(n)
	case *ast.CompositeInitExpr:
		t = c.checkCompositeInit(n)
	case *ast.MemberAccessExpr:
		t = c.checkMemberAccess(n)
	case *ast.TernaryExpr:
		t = c.checkTernary(n)
	case *ast.AsyncBlockExpr:
		t = c.checkAsyncBlock(n)
	case *ast.ErrExpr:
		t = ast.ErrType{}
	default:
		t = ast.ErrType{}
	}
	c.st.Types.InsertNode(e, t)
	return t
}

func (c *checker) checkIdentifier(n *ast.Identifier) ast.Type {
	sym, ok := c.st.Symbols.Find(n.Name)
	if !ok {
		return c.errType(n.GetSpan(), diagnostics.ErrUndefinedSymbol, "undefined symbol %q", n.Name)
	}
	return sym.Type
}

func (c *checker) checkBinary(n *ast.BinaryExpr) ast.Type {
	lt := c.checkExpr(n.Left)
	rt := c.checkExpr(n.Right)
	if isErr(lt) || isErr(rt) {
		return ast.ErrType{}
	}
	switch n.Op {
	case ast.OpBoolAnd, ast.OpBoolOr:
		if !isBool(lt) || !isBool(rt) {
			return c.errType(n.GetSpan(), diagnostics.ErrTypeMismatch, "%s requires bool operands, got %s and %s", opName(n.Op), lt, rt)
		}
		return ast.BoolType{}
	case ast.OpEq, ast.OpNeq:
		if !ast.EqualRelaxed(lt, rt) {
			return c.errType(n.GetSpan(), diagnostics.ErrTypeMismatch, "cannot compare %s with %s", lt, rt)
		}
		return ast.BoolType{}
	case ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		if !ast.EqualRelaxed(lt, rt) || !(ast.IsNumeric(lt) || isGroupOrScalar(lt)) {
			return c.errType(n.GetSpan(), diagnostics.ErrTypeMismatch, "%s requires matching numeric operands, got %s and %s", opName(n.Op), lt, rt)
		}
		return ast.BoolType{}
	case ast.OpAnd, ast.OpOr, ast.OpXor:
		if isBool(lt) && isBool(rt) {
			return ast.BoolType{}
		}
		if !ast.EqualRelaxed(lt, rt) || !isIntegerType(lt) {
			return c.errType(n.GetSpan(), diagnostics.ErrTypeMismatch, "%s requires matching integer or bool operands, got %s and %s", opName(n.Op), lt, rt)
		}
		return lt
	case ast.OpShl, ast.OpShr:
		if !isIntegerType(lt) || !isIntegerType(rt) {
			return c.errType(n.GetSpan(), diagnostics.ErrTypeMismatch, "%s requires integer operands, got %s and %s", opName(n.Op), lt, rt)
		}
		return lt
	default: // arithmetic: Add/Sub/Mul/Div/Rem/Pow
		if !ast.EqualRelaxed(lt, rt) || !(ast.IsNumeric(lt)) {
			return c.errType(n.GetSpan(), diagnostics.ErrTypeMismatch, "%s requires matching numeric operands, got %s and %s", opName(n.Op), lt, rt)
		}
		return lt
	}
}

func (c *checker) checkUnary(n *ast.UnaryExpr) ast.Type {
	t := c.checkExpr(n.Operand)
	if isErr(t) {
		return ast.ErrType{}
	}
	switch n.Op {
	case ast.OpNot:
		if !isBool(t) {
			return c.errType(n.GetSpan(), diagnostics.ErrTypeMismatch, "! requires a bool operand, got %s", t)
		}
		return ast.BoolType{}
	case ast.OpNegate, ast.OpAbs:
		if !isIntegerType(t) {
			return c.errType(n.GetSpan(), diagnostics.ErrTypeMismatch, "negation/abs requires an integer operand, got %s", t)
		}
		return t
	case ast.OpInverse, ast.OpSquareRoot:
		if _, ok := t.(ast.FieldType); !ok {
			if _, ok := t.(ast.ScalarType); !ok {
				return c.errType(n.GetSpan(), diagnostics.ErrTypeMismatch, "inverse/square_root requires a field or scalar operand, got %s", t)
			}
		}
		return t
	default:
		return ast.ErrType{}
	}
}

func (c *checker) checkCast(n *ast.CastExpr) ast.Type {
	operandTy := c.checkExpr(n.Operand)
	if isErr(operandTy) {
		return ast.ErrType{}
	}
	switch n.Target.(type) {
	case ast.IntegerType, ast.FieldType, ast.BoolType, ast.GroupType, ast.ScalarType, ast.AddressType:
		return n.Target
	default:
		return c.errType(n.GetSpan(), diagnostics.ErrInvalidCast, "cannot cast to %s", n.Target)
	}
}

func (c *checker) checkCall(n *ast.CallExpr) ast.Type {
	for _, a := range n.ConstArgs {
		c.checkExpr(a)
	}
	argTypes := make([]ast.Type, len(n.Args))
	for i, a := range n.Args {
		argTypes[i] = c.checkExpr(a)
	}

	sym, ok := c.st.Symbols.Find(n.Callee)
	if !ok {
		return c.errType(n.GetSpan(), diagnostics.ErrUndefinedSymbol, "call to undefined function %q", n.Callee)
	}
	fn := sym.Function
	if fn != nil {
		if len(fn.Inputs) != len(argTypes) {
			c.st.Diags.Error(diagnostics.ErrTypeMismatch, n.GetSpan(), "call to %q expects %d arguments, got %d", n.Callee, len(fn.Inputs), len(argTypes))
		} else {
			for i, p := range fn.Inputs {
				if !ast.EqualRelaxed(p.Type, argTypes[i]) {
					c.st.Diags.Error(diagnostics.ErrTypeMismatch, n.GetSpan(), "argument %d to %q: expected %s, got %s", i, n.Callee, p.Type, argTypes[i])
				}
			}
		}
		if c.currentFn != nil && c.currentFn.FinalizeName == fn.Name {
			c.finalizeCalled = true
		}
	}

	if c.currentFn != nil {
		caller := qualify(c.currentProgramID, c.currentFn.Name)
		c.st.CallGraph.AddEdge(caller, qualify(c.currentProgramID, n.Callee))
		c.st.CallCounts[qualify(c.currentProgramID, n.Callee)]++
	}
	return sym.Type
}

func (c *checker) checkIntrinsic(n *ast.IntrinsicExpr) ast.Type {
	for _, a := range n.Args {
		c.checkExpr(a)
	}
	switch n.Op {
	case ast.IntrinsicMappingContains:
		return ast.BoolType{}
	case ast.IntrinsicGroupGenerator:
		return ast.GroupType{}
	case ast.IntrinsicToFields:
		return ast.ArrayType{Elem: ast.FieldType{}, Length: 0}
	case ast.IntrinsicHash, ast.IntrinsicCommit:
		return ast.FieldType{}
	default:
		// MappingGet/GetOrUse/Set/Remove and OptionalGetOrUse are typed by
		// storage/optional lowering, which runs after this pass and
		// installs the concrete value type once the mapping/optional is
		// known; leaving ErrType here would be wrong since these are legal
		// pre-lowering placeholders, so Unit stands in as "typed later".
		return ast.UnitType{}
	}
}

func (c *checker) checkArray(n *ast.ArrayExpr) ast.Type {
	if len(n.Elements) == 0 {
		return ast.ArrayType{Elem: ast.ErrType{}, Length: 0}
	}
	first := c.checkExpr(n.Elements[0])
	for _, el := range n.Elements[1:] {
		t := c.checkExpr(el)
		if !ast.EqualRelaxed(t, first) {
			c.st.Diags.Error(diagnostics.ErrTypeMismatch, n.GetSpan(), "array elements must share a type")
		}
	}
	return ast.ArrayType{Elem: first, Length: uint32(len(n.Elements))}
}

func (c *checker) checkRepeat(n *ast.RepeatExpr) ast.Type {
	elemTy := c.checkExpr(n.Value)
	countTy := c.checkExpr(n.Count)
	if !isIntegerType(countTy) && !isErr(countTy) {
		c.st.Diags.Error(diagnostics.ErrNonIntegerLoopVar, n.GetSpan(), "repeat count must be an integer")
	}
	length := uint32(0)
	if lit, ok := n.Count.(*ast.IntegerLiteral); ok {
		length = uint32(lit.Value.Int64())
	}
	return ast.ArrayType{Elem: elemTy, Length: length}
}

func (c *checker) checkArrayAccess(n *ast.ArrayAccessExpr) ast.Type {
	arrTy := c.checkExpr(n.Array)
	idxTy := c.checkExpr(n.Index)
	if !isIntegerType(idxTy) && !isErr(idxTy) {
		c.st.Diags.Error(diagnostics.ErrNonIntegerLoopVar, n.GetSpan(), "array index must be an integer")
	}
	arr, ok := arrTy.(ast.ArrayType)
	if !ok {
		if isErr(arrTy) {
			return ast.ErrType{}
		}
		return c.errType(n.GetSpan(), diagnostics.ErrTypeMismatch, "cannot index non-array type %s", arrTy)
	}
	return arr.Elem
}

func (c *checker) checkTuple(n *ast.TupleExpr) ast.Type {
	elems := make([]ast.Type, len(n.Elements))
	for i, e := range n.Elements {
		elems[i] = c.checkExpr(e)
	}
	if len(elems) < 2 {
		c.st.Diags.Error(diagnostics.ErrTupleTooSmall, n.GetSpan(), "tuple must have at least 2 elements")
	}
	return ast.TupleType{Elems: elems}
}

func (c *checker) checkTupleAccess(n *ast.TupleAccessExpr) ast.Type {
	t := c.checkExpr(n.Tuple)
	tup, ok := t.(ast.TupleType)
	if !ok {
		if isErr(t) {
			return ast.ErrType{}
		}
		return c.errType(n.GetSpan(), diagnostics.ErrTypeMismatch, "cannot project a non-tuple type %s", t)
	}
	if n.Index < 0 || n.Index >= len(tup.Elems) {
		return c.errType(n.GetSpan(), diagnostics.ErrTypeMismatch, "tuple index %d out of range for %s", n.Index, t)
	}
	return tup.Elems[n.Index]
}

func (c *checker) checkCompositeInit(n *ast.CompositeInitExpr) ast.Type {
	sym, ok := c.st.Symbols.Find(n.Name)
	if !ok || sym.Kind != symbols.StructSymbol {
		for _, name := range n.FieldOrder {
			c.checkExpr(n.Fields[name])
		}
		return c.errType(n.GetSpan(), diagnostics.ErrUndefinedSymbol, "undefined struct %q", n.Name)
	}
	comp := sym.Composite
	memberTy := make(map[string]ast.Type, len(comp.Members))
	for _, m := range comp.Members {
		memberTy[m.Name] = m.Type
	}
	for _, name := range n.FieldOrder {
		ft := c.checkExpr(n.Fields[name])
		declared, known := memberTy[name]
		if !known {
			c.st.Diags.Error(diagnostics.ErrUndefinedSymbol, n.GetSpan(), "struct %q has no member %q", n.Name, name)
			continue
		}
		if !ast.EqualRelaxed(ft, declared) {
			c.st.Diags.Error(diagnostics.ErrTypeMismatch, n.GetSpan(), "member %q of %q expects %s, got %s", name, n.Name, declared, ft)
		}
	}
	return ast.CompositeType{Path: n.Name}
}

func (c *checker) checkMemberAccess(n *ast.MemberAccessExpr) ast.Type {
	vt := c.checkExpr(n.Value)
	comp, ok := vt.(ast.CompositeType)
	if !ok {
		if isErr(vt) {
			return ast.ErrType{}
		}
		return c.errType(n.GetSpan(), diagnostics.ErrTypeMismatch, "cannot access member %q of non-composite type %s", n.Field, vt)
	}
	sym, ok := c.st.Symbols.Find(comp.Path)
	if !ok || sym.Composite == nil {
		return c.errType(n.GetSpan(), diagnostics.ErrUndefinedSymbol, "undefined struct %q", comp.Path)
	}
	for _, m := range sym.Composite.Members {
		if m.Name == n.Field {
			return m.Type
		}
	}
	return c.errType(n.GetSpan(), diagnostics.ErrUndefinedSymbol, "struct %q has no member %q", comp.Path, n.Field)
}

func (c *checker) checkTernary(n *ast.TernaryExpr) ast.Type {
	condTy := c.checkExpr(n.Condition)
	if !isBool(condTy) && !isErr(condTy) {
		c.st.Diags.Error(diagnostics.ErrNonBooleanCondition, n.GetSpan(), "ternary condition must be bool, got %s", condTy)
	}
	thenTy := c.checkExpr(n.Then)
	elseTy := c.checkExpr(n.Otherwise)
	if !ast.EqualRelaxed(thenTy, elseTy) {
		return c.errType(n.GetSpan(), diagnostics.ErrTypeMismatch, "ternary branches must share a type, got %s and %s", thenTy, elseTy)
	}
	return thenTy
}

func (c *checker) checkAsyncBlock(n *ast.AsyncBlockExpr) ast.Type {
	argTypes := make([]ast.Type, len(n.Args))
	for i, a := range n.Args {
		argTypes[i] = c.checkExpr(a)
	}
	if c.currentFn != nil && c.currentFn.FinalizeName == n.FinalizeCallee {
		c.finalizeCalled = true
	}
	origin := ""
	if c.currentFn != nil {
		origin = c.currentFn.Name
	}
	return ast.FutureType{Inputs: argTypes, Origin: origin}
}

func isErr(t ast.Type) bool       { _, ok := t.(ast.ErrType); return ok }
func isBool(t ast.Type) bool      { _, ok := t.(ast.BoolType); return ok }
func isIntegerType(t ast.Type) bool { _, ok := t.(ast.IntegerType); return ok }
func isGroupOrScalar(t ast.Type) bool {
	switch t.(type) {
	case ast.GroupType, ast.ScalarType:
		return true
	default:
		return false
	}
}

func opName(op ast.BinaryOp) string {
	names := map[ast.BinaryOp]string{
		ast.OpAdd: "+", ast.OpSub: "-", ast.OpMul: "*", ast.OpDiv: "/", ast.OpRem: "%",
		ast.OpPow: "**", ast.OpAnd: "&", ast.OpOr: "|", ast.OpXor: "^",
		ast.OpShl: "<<", ast.OpShr: ">>", ast.OpEq: "==", ast.OpNeq: "!=",
		ast.OpLt: "<", ast.OpLte: "<=", ast.OpGt: ">", ast.OpGte: ">=",
		ast.OpBoolAnd: "&&", ast.OpBoolOr: "||",
	}
	if s, ok := names[op]; ok {
		return s
	}
	return "<op>"
}
