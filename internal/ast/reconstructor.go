package ast

// Reconstructor is the rewrite-and-inject traversal:
// every hook returns a (possibly replacement) node plus a prefix of
// statements to splice in just before the current statement in the
// enclosing block. It is the mechanism every lowering/normalizing pass uses
// to turn `e` into `tmp = e'; tmp` without the pass itself having to walk
// and rebuild containing Blocks by hand.
//
// Unlike Visitor, Reconstructor does not ride Expression.Accept — the node
// set in this package is closed, so ReconstructExpr performs its own type
// switch and calls the matching hook, mirroring Fold's approach in
// reducer.go. This keeps every pass's hook set small (only override what
// you rewrite) without requiring Go's limited support for virtual dispatch
// through embedding to thread a generic Output type across ~25 methods.

// ExprResult is what one expression-rewrite hook produces.
type ExprResult struct {
	// Expr is the (possibly identical) replacement expression.
	Expr Expression
	// Prefix is zero or more statements that must run immediately before
	// the statement containing this expression. A pass that rewrites `e`
	// into a fresh temporary appends `tmp = e` here and returns an
	// Identifier for tmp as Expr.
	Prefix []Statement
	// Changed reports whether Expr (or anything in Prefix) differs from
	// the input; the default per-node reconstruction uses this to decide
	// whether to allocate a new wrapping node or return the original
	// pointer unchanged (a pass may reuse the original NodeID
	// when the substituted expression has the same type; Changed==false
	// always reuses it trivially by not rebuilding at all).
	Changed bool
	// Output carries pass-specific per-expression information (e.g.
	// const-prop's ConstPropOutput{Value, Changed}, or a rename record). Left
	// untyped so this single Reconstructor shape serves every pass.
	Output any
}

// ExprHook rewrites a single expression node. Implementations receive the
// node with its children already reconstructed: post-order, bottom-up, so
// a rewrite sees already-transformed subexpressions.
type ExprHook func(e Expression) ExprResult

// ReconstructExpr walks e post-order, letting hook see every node (already
// rewritten below it) and decide whether to further rewrite it. Prefix
// statements accumulate in source order across the whole subtree.
func ReconstructExpr(e Expression, hook ExprHook) ExprResult {
	rebuilt, prefix, changedBelow := reconstructChildren(e, hook)
	res := hook(rebuilt)
	if len(prefix) > 0 {
		res.Prefix = append(append([]Statement{}, prefix...), res.Prefix...)
	}
	res.Changed = res.Changed || changedBelow
	return res
}

// reconstructChildren rebuilds e's immediate children via ReconstructExpr
// and returns a new node of the same Go type if any child changed,
// otherwise e itself untouched (same NodeID, per the ID-reuse contract).
func reconstructChildren(e Expression, hook ExprHook) (Expression, []Statement, bool) {
	var prefix []Statement
	changed := false
	child := func(c Expression) Expression {
		r := ReconstructExpr(c, hook)
		prefix = append(prefix, r.Prefix...)
		if r.Changed {
			changed = true
		}
		return r.Expr
	}

	switch n := e.(type) {
	case *BinaryExpr:
		l, r := child(n.Left), child(n.Right)
		if !changed {
			return e, prefix, false
		}
		return &BinaryExpr{base: n.base, Op: n.Op, Left: l, Right: r}, prefix, true
	case *UnaryExpr:
		o := child(n.Operand)
		if !changed {
			return e, prefix, false
		}
		return &UnaryExpr{base: n.base, Op: n.Op, Operand: o}, prefix, true
	case *CastExpr:
		o := child(n.Operand)
		if !changed {
			return e, prefix, false
		}
		return &CastExpr{base: n.base, Operand: o, Target: n.Target}, prefix, true
	case *CallExpr:
		constArgs := make([]Expression, len(n.ConstArgs))
		for i, a := range n.ConstArgs {
			constArgs[i] = child(a)
		}
		args := make([]Expression, len(n.Args))
		for i, a := range n.Args {
			args[i] = child(a)
		}
		if !changed {
			return e, prefix, false
		}
		return &CallExpr{base: n.base, Callee: n.Callee, ConstArgs: constArgs, Args: args}, prefix, true
	case *IntrinsicExpr:
		args := make([]Expression, len(n.Args))
		for i, a := range n.Args {
			args[i] = child(a)
		}
		if !changed {
			return e, prefix, false
		}
		return &IntrinsicExpr{base: n.base, Op: n.Op, Args: args}, prefix, true
	case *ArrayExpr:
		elems := make([]Expression, len(n.Elements))
		for i, el := range n.Elements {
			elems[i] = child(el)
		}
		if !changed {
			return e, prefix, false
		}
		return &ArrayExpr{base: n.base, Elements: elems}, prefix, true
	case *RepeatExpr:
		v, c := child(n.Value), child(n.Count)
		if !changed {
			return e, prefix, false
		}
		return &RepeatExpr{base: n.base, Value: v, Count: c}, prefix, true
	case *ArrayAccessExpr:
		a, i := child(n.Array), child(n.Index)
		if !changed {
			return e, prefix, false
		}
		return &ArrayAccessExpr{base: n.base, Array: a, Index: i}, prefix, true
	case *TupleExpr:
		elems := make([]Expression, len(n.Elements))
		for i, el := range n.Elements {
			elems[i] = child(el)
		}
		if !changed {
			return e, prefix, false
		}
		return &TupleExpr{base: n.base, Elements: elems}, prefix, true
	case *TupleAccessExpr:
		t := child(n.Tuple)
		if !changed {
			return e, prefix, false
		}
		return &TupleAccessExpr{base: n.base, Tuple: t, Index: n.Index}, prefix, true
	case *CompositeInitExpr:
		fields := make(map[string]Expression, len(n.Fields))
		for _, name := range n.FieldOrder {
			fields[name] = child(n.Fields[name])
		}
		if !changed {
			return e, prefix, false
		}
		order := append([]string{}, n.FieldOrder...)
		return &CompositeInitExpr{base: n.base, Name: n.Name, FieldOrder: order, Fields: fields}, prefix, true
	case *MemberAccessExpr:
		v := child(n.Value)
		if !changed {
			return e, prefix, false
		}
		return &MemberAccessExpr{base: n.base, Value: v, Field: n.Field}, prefix, true
	case *TernaryExpr:
		c, t, o := child(n.Condition), child(n.Then), child(n.Otherwise)
		if !changed {
			return e, prefix, false
		}
		return &TernaryExpr{base: n.base, Condition: c, Then: t, Otherwise: o}, prefix, true
	case *AsyncBlockExpr:
		args := make([]Expression, len(n.Args))
		for i, a := range n.Args {
			args[i] = child(a)
		}
		if !changed {
			return e, prefix, false
		}
		return &AsyncBlockExpr{base: n.base, FinalizeCallee: n.FinalizeCallee, Args: args}, prefix, true
	default:
		// Leaves: UnitExpr, literals, Identifier, ErrExpr.
		return e, nil, false
	}
}

// StmtHook rewrites one statement into zero or more replacement statements.
// A hook returning (nil, false) asks ReconstructBlock to fall back to the
// default per-kind rewrite (apply exprHook to the statement's own
// expressions, recurse into nested blocks).
type StmtHook func(s Statement) (replacement []Statement, handled bool)

// ReconstructBlock rewrites every statement in blk. For each statement,
// stmtHook is tried first (full control, used by SSA/flatten/destructure/
// inline/write-transform); if it declines (handled==false), the default
// rewrite applies exprHook to the statement's expressions and recurses into
// any nested Block/Conditional/Iteration.
func ReconstructBlock(blk *Block, exprHook ExprHook, stmtHook StmtHook) *Block {
	if blk == nil {
		return nil
	}
	var out []Statement
	for _, stmt := range blk.Statements {
		out = append(out, reconstructStatement(stmt, exprHook, stmtHook)...)
	}
	return &Block{base: blk.base, Statements: out}
}

func reconstructStatement(s Statement, exprHook ExprHook, stmtHook StmtHook) []Statement {
	if stmtHook != nil {
		if repl, handled := stmtHook(s); handled {
			return repl
		}
	}
	switch n := s.(type) {
	case *Definition:
		r := ReconstructExpr(n.Value, exprHook)
		return append(r.Prefix, &Definition{base: n.base, Target: n.Target, TypeAnnotation: n.TypeAnnotation, Kind: n.Kind, Value: r.Expr})
	case *Assign:
		rp := ReconstructExpr(n.Place, exprHook)
		rv := ReconstructExpr(n.Value, exprHook)
		out := append(append([]Statement{}, rp.Prefix...), rv.Prefix...)
		return append(out, &Assign{base: n.base, Place: rp.Expr, Value: rv.Expr})
	case *Const:
		r := ReconstructExpr(n.Value, exprHook)
		return append(r.Prefix, &Const{base: n.base, Name: n.Name, TypeAnnotation: n.TypeAnnotation, Value: r.Expr})
	case *ExpressionStatement:
		r := ReconstructExpr(n.Value, exprHook)
		return append(r.Prefix, &ExpressionStatement{base: n.base, Value: r.Expr})
	case *Return:
		if n.Value == nil {
			return []Statement{n}
		}
		r := ReconstructExpr(n.Value, exprHook)
		return append(r.Prefix, &Return{base: n.base, Value: r.Expr})
	case *Assert:
		r := ReconstructExpr(n.Condition, exprHook)
		return append(r.Prefix, &Assert{base: n.base, Kind: n.Kind, Condition: r.Expr})
	case *Block:
		return []Statement{ReconstructBlock(n, exprHook, stmtHook)}
	case *Conditional:
		r := ReconstructExpr(n.Condition, exprHook)
		then := ReconstructBlock(n.Then, exprHook, stmtHook)
		var otherwise *Block
		if n.Otherwise != nil {
			otherwise = ReconstructBlock(n.Otherwise, exprHook, stmtHook)
		}
		return append(r.Prefix, &Conditional{base: n.base, Condition: r.Expr, Then: then, Otherwise: otherwise})
	case *Iteration:
		rs := ReconstructExpr(n.Start, exprHook)
		re := ReconstructExpr(n.Stop, exprHook)
		body := ReconstructBlock(n.Body, exprHook, stmtHook)
		out := append(append([]Statement{}, rs.Prefix...), re.Prefix...)
		return append(out, &Iteration{base: n.base, Variable: n.Variable, VarType: n.VarType, Start: rs.Expr, Stop: re.Expr, Inclusive: n.Inclusive, Body: body})
	default:
		return []Statement{s}
	}
}
