package ast

// DefinitionTarget is the left-hand side of a Definition statement: either
// a single identifier or a tuple-destructuring pattern.
type DefinitionTarget interface {
	isDefinitionTarget()
}

// SingleTarget binds one name.
type SingleTarget struct {
	Name string
}

func (SingleTarget) isDefinitionTarget() {}

// MultipleTarget is tuple-destructuring sugar: `let (a, b, c) = expr`.
type MultipleTarget struct {
	Names []string
}

func (MultipleTarget) isDefinitionTarget() {}

// DeclKind classifies how a Definition's binding may be used afterward
// (Const or Mut).
type DeclKind int

const (
	DeclMut DeclKind = iota
	DeclConst
)

// Definition introduces a new binding: `let x = expr;` or
// `let (a, b) = expr;`.
type Definition struct {
	base
	Target         DefinitionTarget
	TypeAnnotation Type // optional, nil if elided
	Kind           DeclKind
	Value          Expression
}

func (s *Definition) statementNode() {}
func (s *Definition) Accept(v Visitor) { v.VisitDefinition(s) }

// Assign rewrites an existing binding: `place = expr;`. Place must reduce,
// after path resolution, to an identifier or a chain of member/array
// accesses rooted at one — that invariant is enforced by the
// type checker, not by this representation.
type Assign struct {
	base
	Place Expression
	Value Expression
}

func (s *Assign) statementNode() {}
func (s *Assign) Accept(v Visitor) { v.VisitAssign(s) }

// Block is a braced sequence of statements introducing a new symbol-table
// scope.
type Block struct {
	base
	Statements []Statement
}

func (s *Block) statementNode() {}
func (s *Block) Accept(v Visitor) { v.VisitBlock(s) }

// Conditional is `if cond { then } else { otherwise }`; Otherwise may be
// nil (no else clause). Dissolved entirely by the flattener for
// synchronous functions.
type Conditional struct {
	base
	Condition Expression
	Then      *Block
	Otherwise *Block // nil, or wraps a single nested Conditional for else-if chains
}

func (s *Conditional) statementNode() {}
func (s *Conditional) Accept(v Visitor) { v.VisitConditional(s) }

// Const is a block-scoped constant declaration, distinct from Definition so
// that reassignment checks
// can distinguish it without consulting the symbol table's DeclKind.
type Const struct {
	base
	Name           string
	TypeAnnotation Type
	Value          Expression
}

func (s *Const) statementNode() {}
func (s *Const) Accept(v Visitor) { v.VisitConst(s) }

// ExpressionStatement discards an expression's value, retained only for
// its side effect (a call, typically; IsPure governs whether
// DCE may remove it).
type ExpressionStatement struct {
	base
	Value Expression
}

func (s *ExpressionStatement) statementNode() {}
func (s *ExpressionStatement) Accept(v Visitor) { v.VisitExpressionStatement(s) }

// Iteration is a bounded for-loop: `for name: ty in start..stop { body }`.
// Inclusive marks `..=`. Loop bodies must not contain return or finalize;
// unrolled away entirely by const-prop when Start/Stop are
// compile-time constants.
type Iteration struct {
	base
	Variable  string
	VarType   Type
	Start     Expression
	Stop      Expression
	Inclusive bool
	Body      *Block
}

func (s *Iteration) statementNode() {}
func (s *Iteration) Accept(v Visitor) { v.VisitIteration(s) }

// Return is a function's return statement. Value is nil for a unit-typed
// function. The flattener defers emission of all Returns within a
// synchronous function to a single synthesized one.
type Return struct {
	base
	Value Expression // nil for unit-returning functions
}

func (s *Return) statementNode() {}
func (s *Return) Accept(v Visitor) { v.VisitReturn(s) }

// AssertKind distinguishes a bare boolean assertion from the
// assert_eq/assert_neq sugar; both desugar to Assert with an
// equality/inequality Condition so the flattener's guard-rewriting rule
// stays uniform.
type AssertKind int

const (
	AssertPlain AssertKind = iota
	AssertEq
	AssertNeq
)

// Assert checks Condition at runtime and halts the VM if false. Must
// appear directly inside a Block (an "assert statement outside a
// block" is a structural error).
type Assert struct {
	base
	Kind      AssertKind
	Condition Expression
}

func (s *Assert) statementNode() {}
func (s *Assert) Accept(v Visitor) { v.VisitAssert(s) }
