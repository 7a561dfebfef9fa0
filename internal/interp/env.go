package interp

import "github.com/vinelang/vinec/internal/value"

// env is one frame's name environment ("a name
// environment"), a simple parent-linked scope chain matching the shape
// internal/symbols.SymbolTable uses for compile-time name binding —
// generalized here to carry runtime value.Values instead of declaration
// metadata.
type env struct {
	vars   map[string]value.Value
	parent *env
}

func newEnv(parent *env) *env {
	return &env{vars: make(map[string]value.Value), parent: parent}
}

func (e *env) define(name string, v value.Value) {
	e.vars[name] = v
}

func (e *env) assign(name string, v value.Value) bool {
	for cur := e; cur != nil; cur = cur.parent {
		if _, ok := cur.vars[name]; ok {
			cur.vars[name] = v
			return true
		}
	}
	return false
}

func (e *env) lookup(name string) (value.Value, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return value.Value{}, false
}
