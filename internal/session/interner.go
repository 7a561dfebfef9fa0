// Package session provides the compilation-session-scoped state shared by
// every pass: symbol interning, source spans, and node ID allocation.
package session

import "sync"

// Symbol is an interned string handle. Equality is by index, not by string
// comparison, so symbols can be used as cheap, comparable map keys.
type Symbol struct {
	id     int32
	minted bool
}

// Interner deduplicates strings into Symbols for the lifetime of a
// CompilerSession. The embedded mutex lets it be shared safely with a host
// (e.g. an LSP-style driver) that parses on a separate goroutine; the core
// passes themselves run single-threaded.
type Interner struct {
	mu      sync.Mutex
	strings []string
	index   map[string]int32
}

// NewInterner returns an empty interner.
func NewInterner() *Interner {
	return &Interner{index: make(map[string]int32)}
}

// Intern returns the Symbol for s, allocating a new one if s has not been
// seen before in this interner.
func (in *Interner) Intern(s string) Symbol {
	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.index[s]; ok {
		return Symbol{id: id, minted: true}
	}
	id := int32(len(in.strings))
	in.strings = append(in.strings, s)
	in.index[s] = id
	return Symbol{id: id, minted: true}
}

// Text returns the original string for a Symbol. Returns a placeholder for
// the zero Symbol or for an id this Interner never allocated; a Symbol
// minted by a different Interner whose id is in range is not detected.
func (in *Interner) Text(sym Symbol) string {
	if !sym.minted {
		return "<unbound-symbol>"
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	if int(sym.id) < 0 || int(sym.id) >= len(in.strings) {
		return "<invalid-symbol>"
	}
	return in.strings[sym.id]
}

// IsZero reports whether sym is the zero Symbol (never interned).
func (sym Symbol) IsZero() bool { return !sym.minted }
