package ast

// Reducer is the monoidal-fold traversal: every node
// maps to a value of type T. Unlike Visitor/Reconstructor, a Reducer does
// not ride the Accept double-dispatch — the node set in this package is a
// closed sum, so Fold performs its own type switch and hands each hook its
// children's already-folded results, letting the hook combine them however
// the monoid requires (e.g. boolean OR for "does this subtree contain a
// finalize call").
//
// A Reducer implementation only needs to provide hooks for node kinds it
// cares about; embed DefaultReducer[T] (with a Combine function) to get
// "fold all children with Combine, ignore the node itself" for everything
// else.
type Reducer[T any] interface {
	Leaf(n Node) T
	Combine(results ...T) T
}

// DefaultReducer implements Reducer[T] by running CombineFunc over the
// children's results and LeafFunc for nodes with no children (or as the
// zero contribution of the node itself, combined with its children).
type DefaultReducer[T any] struct {
	LeafFunc    func(n Node) T
	CombineFunc func(results ...T) T
}

func (d DefaultReducer[T]) Leaf(n Node) T {
	if d.LeafFunc != nil {
		return d.LeafFunc(n)
	}
	var zero T
	return zero
}

func (d DefaultReducer[T]) Combine(results ...T) T {
	if d.CombineFunc != nil {
		return d.CombineFunc(results...)
	}
	var zero T
	if len(results) > 0 {
		return results[0]
	}
	return zero
}

// Fold walks n post-order: every child is folded first, then r.Combine
// merges the node's own Leaf(n) contribution with the folded children.
func Fold[T any](r Reducer[T], n Node) T {
	children := foldChildren(r, n)
	own := r.Leaf(n)
	return r.Combine(append([]T{own}, children...)...)
}

func foldChildren[T any](r Reducer[T], n Node) []T {
	var out []T
	fold1 := func(c Node) { out = append(out, Fold(r, c)) }

	switch node := n.(type) {
	case *Program:
		for _, s := range node.Scopes {
			fold1(s)
		}
		for _, m := range node.Modules {
			fold1(m)
		}
		for _, s := range node.Stubs {
			fold1(s)
		}
	case *ProgramScope:
		for _, c := range node.Consts {
			fold1(c)
		}
		for _, s := range node.Structs {
			fold1(s)
		}
		for _, f := range node.Functions {
			fold1(f)
		}
		if node.Constructor != nil {
			fold1(node.Constructor)
		}
	case *Module:
		for _, c := range node.Consts {
			fold1(c)
		}
		for _, s := range node.Structs {
			fold1(s)
		}
		for _, f := range node.Functions {
			fold1(f)
		}
	case *Stub:
		for _, f := range node.Functions {
			if f.Body != nil {
				fold1(f)
			}
		}
	case *Function:
		if node.Body != nil {
			fold1(node.Body)
		}
	case *Definition:
		fold1(node.Value)
	case *Assign:
		fold1(node.Place)
		fold1(node.Value)
	case *Block:
		for _, s := range node.Statements {
			fold1(s)
		}
	case *Conditional:
		fold1(node.Condition)
		fold1(node.Then)
		if node.Otherwise != nil {
			fold1(node.Otherwise)
		}
	case *Const:
		fold1(node.Value)
	case *ExpressionStatement:
		fold1(node.Value)
	case *Iteration:
		fold1(node.Start)
		fold1(node.Stop)
		fold1(node.Body)
	case *Return:
		if node.Value != nil {
			fold1(node.Value)
		}
	case *Assert:
		fold1(node.Condition)
	case *BinaryExpr:
		fold1(node.Left)
		fold1(node.Right)
	case *UnaryExpr:
		fold1(node.Operand)
	case *CastExpr:
		fold1(node.Operand)
	case *CallExpr:
		for _, a := range node.ConstArgs {
			fold1(a)
		}
		for _, a := range node.Args {
			fold1(a)
		}
	case *IntrinsicExpr:
		for _, a := range node.Args {
			fold1(a)
		}
	case *ArrayExpr:
		for _, e := range node.Elements {
			fold1(e)
		}
	case *RepeatExpr:
		fold1(node.Value)
		fold1(node.Count)
	case *ArrayAccessExpr:
		fold1(node.Array)
		fold1(node.Index)
	case *TupleExpr:
		for _, e := range node.Elements {
			fold1(e)
		}
	case *TupleAccessExpr:
		fold1(node.Tuple)
	case *CompositeInitExpr:
		for _, name := range node.FieldOrder {
			fold1(node.Fields[name])
		}
	case *MemberAccessExpr:
		fold1(node.Value)
	case *TernaryExpr:
		fold1(node.Condition)
		fold1(node.Then)
		fold1(node.Otherwise)
	case *AsyncBlockExpr:
		for _, a := range node.Args {
			fold1(a)
		}
	default:
		// Leaves: UnitExpr, literals, Identifier, Composite, Mapping, ErrExpr.
	}
	return out
}

// ContainsAsyncBlock is a ready-made boolean-OR reducer answering the
// question "does this contain a finalize call" as a one-call fold.
func ContainsAsyncBlock(n Node) bool {
	r := DefaultReducer[bool]{
		LeafFunc: func(n Node) bool {
			_, ok := n.(*AsyncBlockExpr)
			return ok
		},
		CombineFunc: func(results ...bool) bool {
			for _, r := range results {
				if r {
					return true
				}
			}
			return false
		},
	}
	return Fold[bool](r, n)
}
