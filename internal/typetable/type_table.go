// Package typetable stores the NodeID -> Type map the checker builds and
// every later pass consults: every expression and statement carries a
// NodeID present here after type checking. Kept as its own package,
// separate from both the AST and the checker, so passes can depend on it
// without importing the checker itself.
package typetable

import (
	"fmt"

	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/session"
)

// Table maps every type-checked node's ID to its resolved Type.
type Table struct {
	entries map[session.NodeID]ast.Type
}

func New() *Table {
	return &Table{entries: make(map[session.NodeID]ast.Type)}
}

// Insert records t as n's type. A pass substituting a same-shaped
// replacement node may reuse the original NodeID, in which case Insert
// simply overwrites the existing entry.
func (t *Table) Insert(id session.NodeID, ty ast.Type) {
	t.entries[id] = ty
}

// InsertNode is a convenience wrapper taking the node directly.
func (t *Table) InsertNode(n ast.Node, ty ast.Type) {
	t.Insert(n.GetID(), ty)
}

func (t *Table) Get(id session.NodeID) (ast.Type, bool) {
	ty, ok := t.entries[id]
	return ty, ok
}

// TypeOf looks up n's type, panicking if absent — every pass after the
// checker may
// assume this holds for every live expression node.
// A panic here means a pass introduced a node without registering its
// type, which is a bug in that pass, not a recoverable condition.
func (t *Table) TypeOf(n ast.Node) ast.Type {
	ty, ok := t.entries[n.GetID()]
	if !ok {
		panic(fmt.Sprintf("typetable: no entry for node %d", n.GetID()))
	}
	return ty
}

func (t *Table) Delete(id session.NodeID) {
	delete(t.entries, id)
}

func (t *Table) Len() int { return len(t.entries) }

// SideEffectFree reports whether e's shape makes it safe to drop without
// evaluating. It is exactly ast.IsPure; the table's entry for e's node is
// not consulted (used by DCE when deciding whether an
// ExpressionStatement with no uses is safe to remove).
func (t *Table) SideEffectFree(e ast.Expression) bool {
	return ast.IsPure(e)
}
