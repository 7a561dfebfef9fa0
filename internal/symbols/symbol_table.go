// Package symbols implements the scoped symbol table the type checker
// builds while walking a Program: variable/const/input bindings, struct and
// record definitions, and function signatures, each resolvable by name
// through an outer-scope chain: a store map plus an outer pointer and a
// ScopeType tag per node, generalized down to this core's closed set of
// symbol kinds.
package symbols

import (
	"github.com/vinelang/vinec/internal/ast"
)

// ScopeType classifies a SymbolTable node in the scope chain: program,
// function, block, or loop scope.
type ScopeType int

const (
	ScopeProgram ScopeType = iota
	ScopeFunction
	ScopeBlock
	ScopeLoop
)

// SymbolKind distinguishes what a name resolves to.
type SymbolKind int

const (
	VariableSymbol SymbolKind = iota
	ConstSymbol
	InputSymbol
	FunctionSymbol
	StructSymbol
	MappingSymbol
)

// Symbol is one bound name: a variable/const/input binding, a struct/record
// definition, a mapping, or a function signature.
type Symbol struct {
	Name string
	Kind SymbolKind
	Type ast.Type // declared/inferred type; for FunctionSymbol, the return type

	// Variable/const/input-only fields.
	DeclKind ast.DeclKind
	Mode     ast.Mode

	// Function-only fields.
	Function *ast.Function

	// Struct-only field.
	Composite *ast.Composite

	// Mapping-only field.
	Mapping *ast.Mapping
}

// SymbolTable is one scope. Block/loop/function scopes chain to an outer
// scope via outer (see Outer); lookups walk outward until found or exhausted.
type SymbolTable struct {
	scopeType ScopeType
	outer     *SymbolTable
	store     map[string]Symbol
}

// NewProgramScope creates the root scope for one ProgramScope/Module: no
// outer, holding consts/structs/mappings/functions visible program-wide.
func NewProgramScope() *SymbolTable {
	return &SymbolTable{scopeType: ScopeProgram, store: make(map[string]Symbol)}
}

// NewEnclosed opens a nested scope (function body, block, loop body) whose
// lookups fall through to outer when a name isn't defined locally.
func NewEnclosed(outer *SymbolTable, scopeType ScopeType) *SymbolTable {
	return &SymbolTable{scopeType: scopeType, outer: outer, store: make(map[string]Symbol)}
}

func (s *SymbolTable) Outer() *SymbolTable { return s.outer }

func (s *SymbolTable) IsFunctionScope() bool { return s.scopeType == ScopeFunction }
func (s *SymbolTable) IsLoopScope() bool     { return s.scopeType == ScopeLoop }

// InLoop reports whether this scope or any enclosing scope up to (but not
// past) the nearest function boundary is a loop body. The type checker
// does not call it: it rejects `return`/finalize-calls inside iteration
// bodies with its own containsControlFlow walk.
func (s *SymbolTable) InLoop() bool {
	for t := s; t != nil && !t.IsFunctionScope(); t = t.outer {
		if t.IsLoopScope() {
			return true
		}
	}
	return false
}

// Define binds name in the current scope. Redefinition in the same scope is
// a caller-level error (E-series diagnostic), not rejected here: the symbol
// table is a plain store, the checker owns the "already defined" decision
// so it can attach a span and suggestion.
func (s *SymbolTable) Define(name string, sym Symbol) {
	sym.Name = name
	s.store[name] = sym
}

func (s *SymbolTable) DefineVariable(name string, t ast.Type, kind ast.DeclKind) {
	s.Define(name, Symbol{Kind: VariableSymbol, Type: t, DeclKind: kind})
}

func (s *SymbolTable) DefineInput(name string, t ast.Type, mode ast.Mode) {
	s.Define(name, Symbol{Kind: InputSymbol, Type: t, Mode: mode, DeclKind: ast.DeclConst})
}

func (s *SymbolTable) DefineConst(name string, t ast.Type) {
	s.Define(name, Symbol{Kind: ConstSymbol, Type: t, DeclKind: ast.DeclConst})
}

func (s *SymbolTable) DefineFunction(fn *ast.Function) {
	s.Define(fn.Name, Symbol{Kind: FunctionSymbol, Type: fn.Output, Function: fn})
}

func (s *SymbolTable) DefineStruct(c *ast.Composite) {
	s.Define(c.Name, Symbol{Kind: StructSymbol, Composite: c})
}

func (s *SymbolTable) DefineMapping(m *ast.Mapping) {
	s.Define(m.Name, Symbol{Kind: MappingSymbol, Mapping: m})
}

// Find resolves name through the scope chain.
func (s *SymbolTable) Find(name string) (Symbol, bool) {
	if sym, ok := s.store[name]; ok {
		return sym, true
	}
	if s.outer != nil {
		return s.outer.Find(name)
	}
	return Symbol{}, false
}

// FindWithScope is Find plus the SymbolTable that owns the binding, which
// tells a local shadow from an outer reference. The checker's
// "reassigning a const" diagnostic uses plain Find and does not name the
// declaring scope.
func (s *SymbolTable) FindWithScope(name string) (Symbol, *SymbolTable, bool) {
	if sym, ok := s.store[name]; ok {
		return sym, s, true
	}
	if s.outer != nil {
		return s.outer.FindWithScope(name)
	}
	return Symbol{}, nil, false
}

func (s *SymbolTable) IsDefinedLocally(name string) bool {
	_, ok := s.store[name]
	return ok
}

func (s *SymbolTable) IsDefined(name string) bool {
	_, ok := s.Find(name)
	return ok
}

// Names returns every name bound in this scope only, in no particular
// order; no pass in this core calls it.
func (s *SymbolTable) Names() []string {
	names := make([]string, 0, len(s.store))
	for n := range s.store {
		names = append(names, n)
	}
	return names
}
