package typecheck

import (
	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/diagnostics"
	"github.com/vinelang/vinec/internal/symbols"
)

func (c *checker) checkBlock(b *ast.Block) {
	scope := symbols.NewEnclosed(c.st.Symbols, symbols.ScopeBlock)
	saved := c.st.Symbols
	c.st.Symbols = scope
	for _, s := range b.Statements {
		c.checkStmt(s)
	}
	c.st.Symbols = saved
}

func (c *checker) checkStmt(s ast.Statement) {
	switch n := s.(type) {
	case *ast.Definition:
		c.checkDefinition(n)
	case *ast.Assign:
		c.checkAssign(n)
	case *ast.Block:
		c.checkBlock(n)
	case *ast.Conditional:
		c.checkConditional(n)
	case *ast.Const:
		c.checkConst(n)
	case *ast.ExpressionStatement:
		c.checkExpr(n.Value)
	case *ast.Iteration:
		c.checkIteration(n)
	case *ast.Return:
		c.checkReturn(n)
	case *ast.Assert:
		c.checkAssert(n)
	}
}

func (c *checker) checkDefinition(n *ast.Definition) {
	t := c.checkExpr(n.Value)
	if n.TypeAnnotation != nil && !ast.EqualRelaxed(t, n.TypeAnnotation) {
		c.st.Diags.Error(diagnostics.ErrTypeMismatch, n.GetSpan(), "let-binding annotated %s but initializer has type %s", n.TypeAnnotation, t)
		t = ast.ErrType{}
	}
	switch target := n.Target.(type) {
	case ast.SingleTarget:
		c.st.Symbols.DefineVariable(target.Name, t, n.Kind)
	case ast.MultipleTarget:
		tup, ok := t.(ast.TupleType)
		if !ok {
			if _, isErr := t.(ast.ErrType); !isErr {
				c.st.Diags.Error(diagnostics.ErrTypeMismatch, n.GetSpan(), "tuple destructuring requires a tuple-typed initializer, got %s", t)
			}
			for _, name := range target.Names {
				c.st.Symbols.DefineVariable(name, ast.ErrType{}, n.Kind)
			}
			break
		}
		if len(tup.Elems) != len(target.Names) {
			c.st.Diags.Error(diagnostics.ErrTupleTooSmall, n.GetSpan(), "tuple destructuring binds %d names but initializer has %d elements", len(target.Names), len(tup.Elems))
		}
		for i, name := range target.Names {
			var elemTy ast.Type = ast.ErrType{}
			if i < len(tup.Elems) {
				elemTy = tup.Elems[i]
			}
			c.st.Symbols.DefineVariable(name, elemTy, n.Kind)
		}
	}
	c.st.Types.InsertNode(n, t)
}

func (c *checker) checkAssign(n *ast.Assign) {
	rhs := c.checkExpr(n.Value)
	placeTy, name, ok := c.resolvePlace(n.Place)
	if !ok {
		c.st.Diags.Error(diagnostics.ErrUndefinedSymbol, n.GetSpan(), "assignment target is not a mutable identifier or access chain")
		c.st.Types.InsertNode(n, ast.ErrType{})
		return
	}
	if sym, found := c.st.Symbols.Find(name); found {
		if sym.Kind == symbols.VariableSymbol && sym.DeclKind == ast.DeclConst {
			c.st.Diags.Error(diagnostics.ErrReassignConst, n.GetSpan(), "cannot reassign const %q", name)
		}
		if _, isFuture := sym.Type.(ast.FutureType); isFuture {
			c.st.Diags.Error(diagnostics.ErrReassignFuture, n.GetSpan(), "cannot reassign future %q", name)
		}
	}
	if !ast.EqualRelaxed(rhs, placeTy) {
		c.st.Diags.Error(diagnostics.ErrTypeMismatch, n.GetSpan(), "cannot assign value of type %s to %q of type %s", rhs, name, placeTy)
	}
	c.st.Types.InsertNode(n, placeTy)
}

// resolvePlace walks an Assign target down to its root identifier, as
// required of assignment targets (they must reduce to either
// an identifier or a chain of accesses whose base is an identifier").
func (c *checker) resolvePlace(e ast.Expression) (ast.Type, string, bool) {
	switch n := e.(type) {
	case *ast.Identifier:
		sym, ok := c.st.Symbols.Find(n.Name)
		if !ok {
			return nil, n.Name, false
		}
		c.st.Types.InsertNode(n, sym.Type)
		return sym.Type, n.Name, true
	case *ast.MemberAccessExpr:
		_, name, ok := c.resolvePlace(n.Value)
		if !ok {
			return nil, name, false
		}
		t := c.checkExpr(n)
		return t, name, true
	case *ast.ArrayAccessExpr:
		_, name, ok := c.resolvePlace(n.Array)
		if !ok {
			return nil, name, false
		}
		t := c.checkExpr(n)
		return t, name, true
	default:
		return nil, "", false
	}
}

func (c *checker) checkConditional(n *ast.Conditional) {
	condTy := c.checkExpr(n.Condition)
	if _, ok := condTy.(ast.BoolType); !ok {
		if _, isErr := condTy.(ast.ErrType); !isErr {
			c.st.Diags.Error(diagnostics.ErrNonBooleanCondition, n.GetSpan(), "if condition must be bool, got %s", condTy)
		}
	}
	c.checkBlock(n.Then)
	if n.Otherwise != nil {
		c.checkBlock(n.Otherwise)
	}
}

func (c *checker) checkIteration(n *ast.Iteration) {
	if _, ok := n.VarType.(ast.IntegerType); !ok {
		c.st.Diags.Error(diagnostics.ErrNonIntegerLoopVar, n.GetSpan(), "loop variable %q must have an integer type, got %s", n.Variable, n.VarType)
	}
	startTy := c.checkExpr(n.Start)
	stopTy := c.checkExpr(n.Stop)
	if !ast.EqualRelaxed(startTy, n.VarType) || !ast.EqualRelaxed(stopTy, n.VarType) {
		c.st.Diags.Error(diagnostics.ErrTypeMismatch, n.GetSpan(), "loop bounds must have type %s", n.VarType)
	}

	loopScope := symbols.NewEnclosed(c.st.Symbols, symbols.ScopeLoop)
	saved := c.st.Symbols
	c.st.Symbols = loopScope
	loopScope.DefineVariable(n.Variable, n.VarType, ast.DeclConst)

	if containsControlFlow(n.Body) {
		c.st.Diags.Error(diagnostics.ErrLoopBodyControlFlow, n.GetSpan(), "loop body must not contain return or finalize")
	}
	c.checkBlock(n.Body)

	c.st.Symbols = saved
}

// containsControlFlow reports whether b (transitively, excluding nested
// function bodies, of which there are none inside a block) contains a
// Return statement or a finalize-call AsyncBlockExpr, both forbidden inside
// loop bodies.
func containsControlFlow(b *ast.Block) bool {
	found := false
	var walk func(ast.Statement)
	walkExpr := func(e ast.Expression) {
		if ast.ContainsAsyncBlock(e) {
			found = true
		}
	}
	walk = func(s ast.Statement) {
		switch n := s.(type) {
		case *ast.Return:
			found = true
		case *ast.Block:
			for _, st := range n.Statements {
				walk(st)
			}
		case *ast.Conditional:
			walkExpr(n.Condition)
			for _, st := range n.Then.Statements {
				walk(st)
			}
			if n.Otherwise != nil {
				for _, st := range n.Otherwise.Statements {
					walk(st)
				}
			}
		case *ast.Iteration:
			for _, st := range n.Body.Statements {
				walk(st)
			}
		case *ast.Definition:
			walkExpr(n.Value)
		case *ast.Assign:
			walkExpr(n.Value)
		case *ast.ExpressionStatement:
			walkExpr(n.Value)
		case *ast.Assert:
			walkExpr(n.Condition)
		}
	}
	for _, s := range b.Statements {
		walk(s)
	}
	return found
}

func (c *checker) checkReturn(n *ast.Return) {
	var t ast.Type = ast.UnitType{}
	if n.Value != nil {
		t = c.checkExpr(n.Value)
	}
	if c.currentFn != nil && !ast.EqualRelaxed(t, c.currentFn.Output) {
		c.st.Diags.Error(diagnostics.ErrTypeMismatch, n.GetSpan(), "function %q returns %s but this return has type %s", c.currentFn.Name, c.currentFn.Output, t)
	}
	c.st.Types.InsertNode(n, t)
}

func (c *checker) checkAssert(n *ast.Assert) {
	condTy := c.checkExpr(n.Condition)
	if _, ok := condTy.(ast.BoolType); !ok {
		if _, isErr := condTy.(ast.ErrType); !isErr {
			c.st.Diags.Error(diagnostics.ErrNonBooleanCondition, n.GetSpan(), "assert condition must be bool, got %s", condTy)
		}
	}
	c.st.Types.InsertNode(n, ast.UnitType{})
}
