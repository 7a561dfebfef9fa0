package lowering

import (
	"github.com/vinelang/vinec/internal/ast"
	"github.com/vinelang/vinec/internal/driver"
)

// New returns the storage/optional lowering pass.
func New() driver.Pass {
	return driver.PassFunc{NameStr: "lowering", Fn: Run}
}

// lowerer rewrites a whole Program in one pass: every OptionalType
// encountered in a signature/annotation is replaced by a synthesized
// {flag, value} composite (registered once per distinct inner type, kept
// in optionals so repeat occurrences share one definition), and every
// mapping read/write/get_or_use/contains/remove becomes an explicit
// IntrinsicExpr.
type lowerer struct {
	st        *driver.State
	optionals map[string]*ast.Composite
	byProgram map[string][]*ast.Composite

	activeProgramID string
}

func Run(prog *ast.Program, st *driver.State) (*ast.Program, error) {
	l := &lowerer{
		st:        st,
		optionals: make(map[string]*ast.Composite),
		byProgram: make(map[string][]*ast.Composite),
	}

	newScopes := make([]*ast.ProgramScope, len(prog.Scopes))
	for i, scope := range prog.Scopes {
		l.activeProgramID = scope.ProgramID
		newScopes[i] = l.lowerScope(scope)
	}
	for i, scope := range newScopes {
		if extra, ok := l.byProgram[scope.ProgramID]; ok {
			cp := *scope
			cp.Structs = append(append([]*ast.Composite{}, scope.Structs...), extra...)
			newScopes[i] = &cp
		}
	}

	newModules := make([]*ast.Module, len(prog.Modules))
	for i, m := range prog.Modules {
		l.activeProgramID = "module:" + m.Name
		newModules[i] = l.lowerModule(m)
	}
	for i, m := range newModules {
		key := "module:" + m.Name
		if extra, ok := l.byProgram[key]; ok {
			cp := *m
			cp.Structs = append(append([]*ast.Composite{}, m.Structs...), extra...)
			newModules[i] = &cp
		}
	}

	out := *prog
	out.Scopes = newScopes
	out.Modules = newModules
	return &out, nil
}

func (l *lowerer) lowerScope(scope *ast.ProgramScope) *ast.ProgramScope {
	newStructs := make([]*ast.Composite, len(scope.Structs))
	for i, c := range scope.Structs {
		newStructs[i] = l.lowerComposite(c)
	}
	newMappings := make([]*ast.Mapping, len(scope.Mappings))
	for i, m := range scope.Mappings {
		cp := *m
		cp.Key = l.rewriteType(m.Key)
		cp.Value = l.rewriteType(m.Value)
		newMappings[i] = &cp
	}
	newFns := make([]*ast.Function, len(scope.Functions))
	for i, fn := range scope.Functions {
		newFns[i] = l.lowerFunction(fn)
	}
	var newConstructor *ast.Function
	if scope.Constructor != nil {
		newConstructor = l.lowerFunction(scope.Constructor)
	}
	cp := *scope
	cp.Structs = newStructs
	cp.Mappings = newMappings
	cp.Functions = newFns
	cp.Constructor = newConstructor
	return &cp
}

func (l *lowerer) lowerModule(m *ast.Module) *ast.Module {
	newStructs := make([]*ast.Composite, len(m.Structs))
	for i, c := range m.Structs {
		newStructs[i] = l.lowerComposite(c)
	}
	newFns := make([]*ast.Function, len(m.Functions))
	for i, fn := range m.Functions {
		newFns[i] = l.lowerFunction(fn)
	}
	cp := *m
	cp.Structs = newStructs
	cp.Functions = newFns
	return &cp
}

func (l *lowerer) lowerComposite(c *ast.Composite) *ast.Composite {
	members := make([]ast.Member, len(c.Members))
	for i, m := range c.Members {
		members[i] = ast.Member{Name: m.Name, Type: l.rewriteType(m.Type)}
	}
	cp := *c
	cp.Members = members
	return &cp
}

func (l *lowerer) lowerFunction(fn *ast.Function) *ast.Function {
	constParams := make([]ast.Param, len(fn.ConstParams))
	for i, p := range fn.ConstParams {
		constParams[i] = ast.Param{Name: p.Name, Type: l.rewriteType(p.Type), Mode: p.Mode, IsConst: p.IsConst}
	}
	inputs := make([]ast.Param, len(fn.Inputs))
	for i, p := range fn.Inputs {
		inputs[i] = ast.Param{Name: p.Name, Type: l.rewriteType(p.Type), Mode: p.Mode, IsConst: p.IsConst}
	}
	cp := *fn
	cp.ConstParams = constParams
	cp.Inputs = inputs
	cp.Output = l.rewriteType(fn.Output)
	cp.Body = ast.ReconstructBlock(fn.Body, l.exprHook, l.stmtHook)
	return &cp
}

// rewriteType replaces every OptionalType reachable from t with the
// synthesized composite type backing it, registering that composite (once
// per distinct inner type) in the symbol table and in byProgram so Run's
// second pass attaches it to the owning scope/module.
func (l *lowerer) rewriteType(t ast.Type) ast.Type {
	switch tt := t.(type) {
	case ast.OptionalType:
		inner := l.rewriteType(tt.Inner)
		name := optionalCompositeName(inner)
		if _, exists := l.optionals[name]; !exists {
			comp := &ast.Composite{
				Name: name,
				Members: []ast.Member{
					{Name: "flag", Type: ast.BoolType{}},
					{Name: "value", Type: inner},
				},
			}
			l.optionals[name] = comp
			l.st.Symbols.DefineStruct(comp)
			l.byProgram[l.activeProgramID] = append(l.byProgram[l.activeProgramID], comp)
		}
		return ast.CompositeType{Path: name}
	case ast.ArrayType:
		return ast.ArrayType{Elem: l.rewriteType(tt.Elem), Length: tt.Length}
	case ast.TupleType:
		elems := make([]ast.Type, len(tt.Elems))
		for i, e := range tt.Elems {
			elems[i] = l.rewriteType(e)
		}
		return ast.TupleType{Elems: elems}
	default:
		return t
	}
}
