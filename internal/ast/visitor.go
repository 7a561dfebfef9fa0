package ast

// Visitor is the read-only descent pattern. Every
// AST variant has its own hook; DefaultVisitor supplies a default hook that
// simply recurses into children, the closed-hook translation of
// "trait-object visitors with default method recursion": override a hook to
// customize behavior for that variant, otherwise fall through to the
// embedded default.
//
// Because Go has no virtual dispatch through struct embedding, a concrete
// visitor that embeds DefaultVisitor must point DefaultVisitor.Self at
// itself once, at construction:
//
//	type CountCalls struct {
//	    ast.DefaultVisitor
//	    n int
//	}
//	func NewCountCalls() *CountCalls {
//	    c := &CountCalls{}
//	    c.Self = c // required: lets the default recursion call back into c's overrides
//	    return c
//	}
//	func (c *CountCalls) VisitCall(e *CallExpr) {
//	    c.n++
//	    c.DefaultVisitor.VisitCall(e) // still recurse into arguments
//	}
//
// Forgetting to set Self means the embedded default recurses into itself
// instead of the outer type, silently losing any overrides on descent.
type Visitor interface {
	VisitProgram(*Program)
	VisitProgramScope(*ProgramScope)
	VisitModule(*Module)
	VisitStub(*Stub)
	VisitFunction(*Function)
	VisitComposite(*Composite)
	VisitMapping(*Mapping)

	VisitDefinition(*Definition)
	VisitAssign(*Assign)
	VisitBlock(*Block)
	VisitConditional(*Conditional)
	VisitConst(*Const)
	VisitExpressionStatement(*ExpressionStatement)
	VisitIteration(*Iteration)
	VisitReturn(*Return)
	VisitAssert(*Assert)

	VisitUnit(*UnitExpr)
	VisitBooleanLiteral(*BooleanLiteral)
	VisitIntegerLiteral(*IntegerLiteral)
	VisitFieldLiteral(*FieldLiteral)
	VisitGroupLiteral(*GroupLiteral)
	VisitScalarLiteral(*ScalarLiteral)
	VisitAddressLiteral(*AddressLiteral)
	VisitStringLiteral(*StringLiteral)
	VisitIdentifier(*Identifier)
	VisitBinary(*BinaryExpr)
	VisitUnary(*UnaryExpr)
	VisitCast(*CastExpr)
	VisitCall(*CallExpr)
	VisitIntrinsic(*IntrinsicExpr)
	VisitArray(*ArrayExpr)
	VisitRepeat(*RepeatExpr)
	VisitArrayAccess(*ArrayAccessExpr)
	VisitTuple(*TupleExpr)
	VisitTupleAccess(*TupleAccessExpr)
	VisitCompositeInit(*CompositeInitExpr)
	VisitMemberAccess(*MemberAccessExpr)
	VisitTernary(*TernaryExpr)
	VisitAsyncBlock(*AsyncBlockExpr)
	VisitErr(*ErrExpr)
}

// DefaultVisitor recurses into every child of every node and otherwise does
// nothing. Embed it and override selected hooks; see the Visitor doc
// comment for the Self-pointer requirement.
type DefaultVisitor struct {
	// Self must be set to the outer, embedding visitor so that default
	// recursion dispatches through any overrides.
	Self Visitor
}

func (d *DefaultVisitor) self() Visitor {
	if d.Self != nil {
		return d.Self
	}
	return d
}

func (d *DefaultVisitor) VisitProgram(n *Program) {
	s := d.self()
	for _, scope := range n.Scopes {
		scope.Accept(s)
	}
	for _, m := range n.Modules {
		m.Accept(s)
	}
	for _, stub := range n.Stubs {
		stub.Accept(s)
	}
}

func (d *DefaultVisitor) VisitProgramScope(n *ProgramScope) {
	s := d.self()
	for _, c := range n.Consts {
		c.Accept(s)
	}
	for _, st := range n.Structs {
		st.Accept(s)
	}
	for _, m := range n.Mappings {
		m.Accept(s)
	}
	for _, fn := range n.Functions {
		fn.Accept(s)
	}
	if n.Constructor != nil {
		n.Constructor.Accept(s)
	}
}

func (d *DefaultVisitor) VisitModule(n *Module) {
	s := d.self()
	for _, c := range n.Consts {
		c.Accept(s)
	}
	for _, st := range n.Structs {
		st.Accept(s)
	}
	for _, fn := range n.Functions {
		fn.Accept(s)
	}
}

func (d *DefaultVisitor) VisitStub(n *Stub) {
	s := d.self()
	for _, fn := range n.Functions {
		if fn.Body != nil {
			fn.Accept(s)
		}
	}
}

func (d *DefaultVisitor) VisitFunction(n *Function) {
	if n.Body != nil {
		n.Body.Accept(d.self())
	}
}

func (d *DefaultVisitor) VisitComposite(n *Composite) {}

func (d *DefaultVisitor) VisitMapping(n *Mapping) {}

func (d *DefaultVisitor) VisitDefinition(n *Definition) {
	n.Value.Accept(d.self())
}

func (d *DefaultVisitor) VisitAssign(n *Assign) {
	s := d.self()
	n.Place.Accept(s)
	n.Value.Accept(s)
}

func (d *DefaultVisitor) VisitBlock(n *Block) {
	s := d.self()
	for _, stmt := range n.Statements {
		stmt.Accept(s)
	}
}

func (d *DefaultVisitor) VisitConditional(n *Conditional) {
	s := d.self()
	n.Condition.Accept(s)
	n.Then.Accept(s)
	if n.Otherwise != nil {
		n.Otherwise.Accept(s)
	}
}

func (d *DefaultVisitor) VisitConst(n *Const) {
	n.Value.Accept(d.self())
}

func (d *DefaultVisitor) VisitExpressionStatement(n *ExpressionStatement) {
	n.Value.Accept(d.self())
}

func (d *DefaultVisitor) VisitIteration(n *Iteration) {
	s := d.self()
	n.Start.Accept(s)
	n.Stop.Accept(s)
	n.Body.Accept(s)
}

func (d *DefaultVisitor) VisitReturn(n *Return) {
	if n.Value != nil {
		n.Value.Accept(d.self())
	}
}

func (d *DefaultVisitor) VisitAssert(n *Assert) {
	n.Condition.Accept(d.self())
}

func (d *DefaultVisitor) VisitUnit(n *UnitExpr)                      {}
func (d *DefaultVisitor) VisitBooleanLiteral(n *BooleanLiteral)      {}
func (d *DefaultVisitor) VisitIntegerLiteral(n *IntegerLiteral)      {}
func (d *DefaultVisitor) VisitFieldLiteral(n *FieldLiteral)          {}
func (d *DefaultVisitor) VisitGroupLiteral(n *GroupLiteral)          {}
func (d *DefaultVisitor) VisitScalarLiteral(n *ScalarLiteral)        {}
func (d *DefaultVisitor) VisitAddressLiteral(n *AddressLiteral)      {}
func (d *DefaultVisitor) VisitStringLiteral(n *StringLiteral)        {}
func (d *DefaultVisitor) VisitIdentifier(n *Identifier)              {}

func (d *DefaultVisitor) VisitBinary(n *BinaryExpr) {
	s := d.self()
	n.Left.Accept(s)
	n.Right.Accept(s)
}

func (d *DefaultVisitor) VisitUnary(n *UnaryExpr) {
	n.Operand.Accept(d.self())
}

func (d *DefaultVisitor) VisitCast(n *CastExpr) {
	n.Operand.Accept(d.self())
}

func (d *DefaultVisitor) VisitCall(n *CallExpr) {
	s := d.self()
	for _, a := range n.ConstArgs {
		a.Accept(s)
	}
	for _, a := range n.Args {
		a.Accept(s)
	}
}

func (d *DefaultVisitor) VisitIntrinsic(n *IntrinsicExpr) {
	s := d.self()
	for _, a := range n.Args {
		a.Accept(s)
	}
}

func (d *DefaultVisitor) VisitArray(n *ArrayExpr) {
	s := d.self()
	for _, e := range n.Elements {
		e.Accept(s)
	}
}

func (d *DefaultVisitor) VisitRepeat(n *RepeatExpr) {
	s := d.self()
	n.Value.Accept(s)
	n.Count.Accept(s)
}

func (d *DefaultVisitor) VisitArrayAccess(n *ArrayAccessExpr) {
	s := d.self()
	n.Array.Accept(s)
	n.Index.Accept(s)
}

func (d *DefaultVisitor) VisitTuple(n *TupleExpr) {
	s := d.self()
	for _, e := range n.Elements {
		e.Accept(s)
	}
}

func (d *DefaultVisitor) VisitTupleAccess(n *TupleAccessExpr) {
	n.Tuple.Accept(d.self())
}

func (d *DefaultVisitor) VisitCompositeInit(n *CompositeInitExpr) {
	s := d.self()
	for _, name := range n.FieldOrder {
		n.Fields[name].Accept(s)
	}
}

func (d *DefaultVisitor) VisitMemberAccess(n *MemberAccessExpr) {
	n.Value.Accept(d.self())
}

func (d *DefaultVisitor) VisitTernary(n *TernaryExpr) {
	s := d.self()
	n.Condition.Accept(s)
	n.Then.Accept(s)
	n.Otherwise.Accept(s)
}

func (d *DefaultVisitor) VisitAsyncBlock(n *AsyncBlockExpr) {
	s := d.self()
	for _, a := range n.Args {
		a.Accept(s)
	}
}

func (d *DefaultVisitor) VisitErr(n *ErrExpr) {}
