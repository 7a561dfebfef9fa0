// Package typeenv is a small best-effort type environment shared by the
// write-transformer and the flattener, both of which need to
// know an aggregate-typed identifier's shape (array length, or a struct's
// member layout) to decompose or reassemble it, at a point in the pipeline
// where the type checker's own scoped symbol table has long since
// closed. Follows the same precedent constprop's env.go and the
// SSA pass's scope.go already established: a pass-local name -> fact chain
// rebuilt fresh from the function signature and the statements walked so
// far, rather than trying to keep the checker's table alive past its scope.
package typeenv

import (
	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/symbols"
)

// Env tracks the best-known declared type of every name seen so far in one
// function body.
type Env struct {
	symbols  *symbols.SymbolTable
	declared map[string]ast.Type
}

// New builds an Env consulting st for struct-member layouts.
func New(st *symbols.SymbolTable) *Env {
	return &Env{symbols: st, declared: make(map[string]ast.Type)}
}

// Declare records t as name's static type, overwriting any previous fact —
// callers do this for every function Param and every Definition/Const with
// either an explicit annotation or an inferable initializer.
func (e *Env) Declare(name string, t ast.Type) {
	if t != nil {
		e.declared[name] = t
	}
}

// Lookup returns the best-known type for name, or nil if unknown.
func (e *Env) Lookup(name string) ast.Type {
	return e.declared[name]
}

// SeedFunction declares every const-parameter and input of fn.
func (e *Env) SeedFunction(fn *ast.Function) {
	for _, p := range fn.ConstParams {
		e.Declare(p.Name, p.Type)
	}
	for _, p := range fn.Inputs {
		e.Declare(p.Name, p.Type)
	}
}

// Infer makes a best-effort guess at expr's static type from its shape
// alone, falling back to nil (unknown) rather than guessing wrong — callers
// treat nil as "give up on this decomposition", never as an error.
func (e *Env) Infer(expr ast.Expression) ast.Type {
	switch n := expr.(type) {
	case *ast.Identifier:
		return e.Lookup(n.Name)
	case *ast.BooleanLiteral:
		return ast.BoolType{}
	case *ast.IntegerLiteral:
		return ast.IntegerType{Width: n.Width, Signed: n.Signed}
	case *ast.FieldLiteral:
		return ast.FieldType{}
	case *ast.ScalarLiteral:
		return ast.ScalarType{}
	case *ast.GroupLiteral:
		return ast.GroupType{}
	case *ast.AddressLiteral:
		return ast.AddressType{}
	case *ast.StringLiteral:
		return ast.StringType{}
	case *ast.ArrayExpr:
		if len(n.Elements) == 0 {
			return nil
		}
		elem := e.Infer(n.Elements[0])
		if elem == nil {
			return nil
		}
		return ast.ArrayType{Elem: elem, Length: uint32(len(n.Elements))}
	case *ast.RepeatExpr:
		elem := e.Infer(n.Value)
		lit, ok := n.Count.(*ast.IntegerLiteral)
		if elem == nil || !ok {
			return nil
		}
		return ast.ArrayType{Elem: elem, Length: uint32(lit.Value.Int64())}
	case *ast.TupleExpr:
		elems := make([]ast.Type, len(n.Elements))
		for i, el := range n.Elements {
			t := e.Infer(el)
			if t == nil {
				return nil
			}
			elems[i] = t
		}
		return ast.TupleType{Elems: elems}
	case *ast.CompositeInitExpr:
		return ast.CompositeType{Path: n.Name}
	case *ast.ArrayAccessExpr:
		arrTy := e.Infer(n.Array)
		at, ok := arrTy.(ast.ArrayType)
		if !ok {
			return nil
		}
		return at.Elem
	case *ast.MemberAccessExpr:
		vt := e.Infer(n.Value)
		ct, ok := vt.(ast.CompositeType)
		if !ok {
			return nil
		}
		members, ok := e.StructMembers(ct)
		if !ok {
			return nil
		}
		for _, m := range members {
			if m.Name == n.Field {
				return m.Type
			}
		}
		return nil
	case *ast.TupleAccessExpr:
		tt, ok := e.Infer(n.Tuple).(ast.TupleType)
		if !ok || n.Index < 0 || n.Index >= len(tt.Elems) {
			return nil
		}
		return tt.Elems[n.Index]
	case *ast.TernaryExpr:
		if t := e.Infer(n.Then); t != nil {
			return t
		}
		return e.Infer(n.Otherwise)
	case *ast.CastExpr:
		return n.Target
	default:
		return nil
	}
}

// StructMembers resolves t's member layout through the symbol table.
func (e *Env) StructMembers(t ast.Type) ([]ast.Member, bool) {
	ct, ok := t.(ast.CompositeType)
	if !ok || e.symbols == nil {
		return nil, false
	}
	sym, ok := e.symbols.Find(ct.Path)
	if !ok || sym.Composite == nil {
		return nil, false
	}
	return sym.Composite.Members, true
}
