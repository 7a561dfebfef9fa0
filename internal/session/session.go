package session

import "github.com/google/uuid"

// CompilerSession is the explicit handle threaded through every pass API in
// place of the global/session-scoped interner and source map that the
// language this core is modeled on uses internally (see the note:
// "Global/session-scoped interner and source map"). There is exactly one
// CompilerSession per compilation; nothing here is package-level state.
type CompilerSession struct {
	// ID uniquely identifies this compilation run, for correlating driver
	// log lines (internal/driver) across passes.
	ID uuid.UUID

	Interner *Interner
	Nodes    *NodeBuilder
}

// NewCompilerSession creates a fresh session with its own interner and node
// builder.
func NewCompilerSession() *CompilerSession {
	return &CompilerSession{
		ID:       uuid.New(),
		Interner: NewInterner(),
		Nodes:    NewNodeBuilder(),
	}
}

// Intern is a convenience forwarding to the session's Interner.
func (s *CompilerSession) Intern(text string) Symbol { return s.Interner.Intern(text) }

// Text is a convenience forwarding to the session's Interner.
func (s *CompilerSession) Text(sym Symbol) string { return s.Interner.Text(sym) }

// FreshNode is a convenience forwarding to the session's NodeBuilder.
func (s *CompilerSession) FreshNode() NodeID { return s.Nodes.Fresh() }
