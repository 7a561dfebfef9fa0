// Package ast defines the typed AST and the traversal framework built
// on top of it (Visitor, Reducer, Reconstructor). The shape follows a
// familiar sum-type-with-Accept(Visitor) style, generalized from a dynamic
// scripting language's expression/statement set to this core's typed,
// SSA-lowerable set.
//
// Every node carries a session.NodeID and a session.Span (the invariant
// "Every expression and statement carries a NodeID present in the type
// table after type checking"). Rather than expose those via embedding,
// each variant satisfies a small capability set through GetID/SetID/
// GetSpan/SetSpan methods — this is the Go analog of the source language's
// shared-attribute trait the variants would otherwise inherit.
package ast

import "github.com/vinelang/vinec/internal/session"

// Node is the base interface implemented by every AST node.
type Node interface {
	GetID() session.NodeID
	SetID(session.NodeID)
	GetSpan() session.Span
	Accept(v Visitor)
}

// Expression is a Node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is a Node that does not itself produce a value.
type Statement interface {
	Node
	statementNode()
}

// base is embedded by every concrete node to provide the ID/Span capability
// set without repeating four methods per variant.
type base struct {
	ID   session.NodeID
	Span session.Span
}

func (b *base) GetID() session.NodeID    { return b.ID }
func (b *base) SetID(id session.NodeID)  { b.ID = id }
func (b *base) GetSpan() session.Span    { return b.Span }
func (b *base) SetSpan(s session.Span)   { b.Span = s }
