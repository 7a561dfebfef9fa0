package ast

import "math/big"

// --- Literals -----------------------------------------------

// UnitExpr is the sole value of UnitType.
type UnitExpr struct{ base }

func (e *UnitExpr) expressionNode()   {}
func (e *UnitExpr) Accept(v Visitor)  { v.VisitUnit(e) }

// BooleanLiteral is `true` or `false`.
type BooleanLiteral struct {
	base
	Value bool
}

func (e *BooleanLiteral) expressionNode()  {}
func (e *BooleanLiteral) Accept(v Visitor) { v.VisitBooleanLiteral(e) }

// IntegerLiteral carries its textual suffix-implied type (Width/Signed) so
// later passes know its type without consulting the type table (useful
// during unrolling, where fresh literals are synthesized before a type
// table entry exists for them).
type IntegerLiteral struct {
	base
	Value  *big.Int
	Width  int
	Signed bool
}

func (e *IntegerLiteral) expressionNode()  {}
func (e *IntegerLiteral) Accept(v Visitor) { v.VisitIntegerLiteral(e) }

// FieldLiteral is a base-field element literal, e.g. `3field`.
type FieldLiteral struct {
	base
	Value *big.Int
}

func (e *FieldLiteral) expressionNode()  {}
func (e *FieldLiteral) Accept(v Visitor) { v.VisitFieldLiteral(e) }

// GroupLiteral is a group element literal, e.g. `2group` or the generator
// shorthand. IsGenerator distinguishes the latter, in which case Value is
// ignored.
type GroupLiteral struct {
	base
	Value       *big.Int
	IsGenerator bool
}

func (e *GroupLiteral) expressionNode()  {}
func (e *GroupLiteral) Accept(v Visitor) { v.VisitGroupLiteral(e) }

// ScalarLiteral is a scalar-field element literal, e.g. `7scalar`.
type ScalarLiteral struct {
	base
	Value *big.Int
}

func (e *ScalarLiteral) expressionNode()  {}
func (e *ScalarLiteral) Accept(v Visitor) { v.VisitScalarLiteral(e) }

// AddressLiteral is a bech32-shaped account/program address literal. The
// parser is responsible for validating the encoding; this core treats Raw
// as an opaque interned string.
type AddressLiteral struct {
	base
	Raw string
}

func (e *AddressLiteral) expressionNode()  {}
func (e *AddressLiteral) Accept(v Visitor) { v.VisitAddressLiteral(e) }

// StringLiteral is a host-only string literal (not representable inside a
// provable computation; used only in non-provable contexts like asserts'
// diagnostic messages, where the target VM supports them).
type StringLiteral struct {
	base
	Value string
}

func (e *StringLiteral) expressionNode()  {}
func (e *StringLiteral) Accept(v Visitor) { v.VisitStringLiteral(e) }

// --- Compound expressions ------------------------------------------------

// Identifier is a reference to a local variable, const, or function name
// (a "path" of length one in the grammar; multi-segment paths are resolved
// to Identifier + Path during the path-resolution pass, out of this core's
// scope, and arrive here pre-resolved by the parser).
type Identifier struct {
	base
	Name string
}

func (e *Identifier) expressionNode()  {}
func (e *Identifier) Accept(v Visitor) { v.VisitIdentifier(e) }

// BinaryOp enumerates the binary operators the value algebra understands.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpPow
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpBoolAnd
	OpBoolOr
)

// BinaryExpr is a two-operand operator application.
type BinaryExpr struct {
	base
	Op          BinaryOp
	Left, Right Expression
}

func (e *BinaryExpr) expressionNode()  {}
func (e *BinaryExpr) Accept(v Visitor) { v.VisitBinary(e) }

// UnaryOp enumerates the unary operators the value algebra understands.
type UnaryOp int

const (
	OpNegate UnaryOp = iota
	OpNot
	OpAbs
	OpInverse
	OpSquareRoot
)

// UnaryExpr is a single-operand operator application.
type UnaryExpr struct {
	base
	Op      UnaryOp
	Operand Expression
}

func (e *UnaryExpr) expressionNode()  {}
func (e *UnaryExpr) Accept(v Visitor) { v.VisitUnary(e) }

// CastExpr converts Operand to Target, following the target-VM's checked
// casting rules.
type CastExpr struct {
	base
	Operand Expression
	Target  Type
}

func (e *CastExpr) expressionNode()  {}
func (e *CastExpr) Accept(v Visitor) { v.VisitCast(e) }

// CallExpr invokes a user-defined function (possibly in another program,
// via Callee naming a fully-qualified path) or, after storage lowering,
// an intrinsic.
type CallExpr struct {
	base
	Callee    string
	ConstArgs []Expression
	Args      []Expression
}

func (e *CallExpr) expressionNode()  {}
func (e *CallExpr) Accept(v Visitor) { v.VisitCall(e) }

// Intrinsic enumerates built-in operations known to the value algebra and
// to storage/optional lowering (hashing, mapping get/set/contains/remove,
// Optional's get_or_use, to_fields, group generator, etc.).
type Intrinsic int

const (
	IntrinsicMappingGet Intrinsic = iota
	IntrinsicMappingGetOrUse
	IntrinsicMappingSet
	IntrinsicMappingContains
	IntrinsicMappingRemove
	IntrinsicOptionalGetOrUse
	IntrinsicToFields
	IntrinsicGroupGenerator
	IntrinsicHash
	IntrinsicCommit
)

// IntrinsicExpr is a call to a built-in whose semantics the value algebra
// (internal/value) and/or storage lowering (internal/passes/lowering) know
// directly, rather than being resolved through the symbol table.
type IntrinsicExpr struct {
	base
	Op   Intrinsic
	Args []Expression
}

func (e *IntrinsicExpr) expressionNode()  {}
func (e *IntrinsicExpr) Accept(v Visitor) { v.VisitIntrinsic(e) }

// ArrayExpr is an array literal `[e0, e1, ...]`.
type ArrayExpr struct {
	base
	Elements []Expression
}

func (e *ArrayExpr) expressionNode()  {}
func (e *ArrayExpr) Accept(v Visitor) { v.VisitArray(e) }

// RepeatExpr is `[value; count]`, used both directly and as the expansion
// target of zero(type) for array-typed zero values.
type RepeatExpr struct {
	base
	Value Expression
	Count Expression
}

func (e *RepeatExpr) expressionNode()  {}
func (e *RepeatExpr) Accept(v Visitor) { v.VisitRepeat(e) }

// ArrayAccessExpr is `array[index]`.
type ArrayAccessExpr struct {
	base
	Array Expression
	Index Expression
}

func (e *ArrayAccessExpr) expressionNode()  {}
func (e *ArrayAccessExpr) Accept(v Visitor) { v.VisitArrayAccess(e) }

// TupleExpr is a tuple literal `(e0, e1, ...)`.
type TupleExpr struct {
	base
	Elements []Expression
}

func (e *TupleExpr) expressionNode()  {}
func (e *TupleExpr) Accept(v Visitor) { v.VisitTuple(e) }

// TupleAccessExpr is `tuple.0`.
type TupleAccessExpr struct {
	base
	Tuple Expression
	Index int
}

func (e *TupleAccessExpr) expressionNode()  {}
func (e *TupleAccessExpr) Accept(v Visitor) { v.VisitTupleAccess(e) }

// CompositeInitExpr is a struct/record initializer `Name { field: value, ... }`.
// FieldOrder preserves source order for deterministic re-emission by the
// flattener and write-transformer.
type CompositeInitExpr struct {
	base
	Name       string
	FieldOrder []string
	Fields     map[string]Expression
}

func (e *CompositeInitExpr) expressionNode()  {}
func (e *CompositeInitExpr) Accept(v Visitor) { v.VisitCompositeInit(e) }

// MemberAccessExpr is `value.field`.
type MemberAccessExpr struct {
	base
	Value Expression
	Field string
}

func (e *MemberAccessExpr) expressionNode()  {}
func (e *MemberAccessExpr) Accept(v Visitor) { v.VisitMemberAccess(e) }

// TernaryExpr is `cond ? then : otherwise`. After the flattener runs
// on a synchronous function, every surviving TernaryExpr has scalar
// (non-composite) Then/Otherwise operands.
type TernaryExpr struct {
	base
	Condition Expression
	Then      Expression
	Otherwise Expression
}

func (e *TernaryExpr) expressionNode()  {}
func (e *TernaryExpr) Accept(v Visitor) { v.VisitTernary(e) }

// AsyncBlockExpr wraps the finalize-call portion of an async transition's
// body; it is opaque to the flattener, which never dissolves conditionals
// inside async bodies, and evaluates to a Future.
type AsyncBlockExpr struct {
	base
	FinalizeCallee string
	Args           []Expression
}

func (e *AsyncBlockExpr) expressionNode()  {}
func (e *AsyncBlockExpr) Accept(v Visitor) { v.VisitAsyncBlock(e) }

// ErrExpr is the poison expression installed by the type checker at a
// failing node. Downstream passes must not recurse into it for
// transformation, only preserve it.
type ErrExpr struct{ base }

func (e *ErrExpr) expressionNode()  {}
func (e *ErrExpr) Accept(v Visitor) { v.VisitErr(e) }
