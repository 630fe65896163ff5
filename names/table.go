// Package names builds the scope and symbol tables of a ChocoPy program.
//
// Scopes and symbols live in flat arenas owned by a Table and refer to each
// other through integer handles. A scope links to its lexically enclosing
// scope by handle, and lookup walks those links.
package names

import (
	"fmt"

	"github.com/smasher164/chocopy/ast"
	"github.com/smasher164/chocopy/types"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type ScopeID int

type SymbolID int

// NoScope is the parent of the global scope.
const NoScope ScopeID = -1

// NoSymbol is the zero binding.
const NoSymbol SymbolID = -1

type ScopeKind int

const (
	GlobalScope ScopeKind = iota
	ClassScope
	FuncScope
)

var scopeKindNames = [...]string{
	GlobalScope: "global",
	ClassScope:  "class",
	FuncScope:   "function",
}

func (k ScopeKind) String() string {
	if k >= 0 && int(k) < len(scopeKindNames) {
		return scopeKindNames[k]
	}
	return fmt.Sprintf("ScopeKind(%d)", int(k))
}

type Kind int

const (
	Var      Kind = iota // global or local variable
	Param                // function or method parameter
	Attr                 // class attribute
	Func                 // global or nested function
	Method               // class method
	Class                // class
	Global               // local alias created by a global declaration
	Nonlocal             // local alias created by a nonlocal declaration
)

var kindNames = [...]string{
	Var:      "variable",
	Param:    "parameter",
	Attr:     "attribute",
	Func:     "function",
	Method:   "method",
	Class:    "class",
	Global:   "global",
	Nonlocal: "nonlocal",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsVariable reports whether symbols of kind k can be read and assigned as
// plain names.
func (k Kind) IsVariable() bool {
	switch k {
	case Var, Param, Global, Nonlocal:
		return true
	}
	return false
}

type Signature struct {
	Params []types.Type
	Names  []string
	Return types.Type
}

func (sig *Signature) String() string {
	s := "("
	for i, p := range sig.Params {
		if i > 0 {
			s += ", "
		}
		if i < len(sig.Names) {
			s += sig.Names[i] + ": "
		}
		s += p.String()
	}
	return fmt.Sprintf("%s) -> %s", s, sig.Return)
}

type Symbol struct {
	Name  string
	Kind  Kind
	Scope ScopeID // declaring scope

	// Type is the declared type of a variable, parameter, or attribute.
	Type types.Type
	// Sig is set for functions and methods.
	Sig *Signature
	// Body is the scope introduced by a function, method, or class.
	Body ScopeID
	// Ref is the target of a Global or Nonlocal alias.
	Ref SymbolID

	Ident *ast.Ident // nil for built-ins
	Decl  ast.Node   // nil for built-ins
}

func (s *Symbol) IsBuiltin() bool {
	return s.Decl == nil
}

type Scope struct {
	Kind   ScopeKind
	Parent ScopeID
	Name   string   // class or function name
	Node   ast.Node // *ast.ClassDef or *ast.FuncDef

	symbols map[string]SymbolID
	order   []SymbolID
}

type Table struct {
	scopes  []Scope
	symbols []Symbol

	// Global is the handle of the global scope.
	Global ScopeID
	// Defs maps each declaring identifier to the symbol it declares.
	Defs map[*ast.Ident]SymbolID
	// FuncScopes and ClassScopes map declarations to the scopes of their
	// bodies.
	FuncScopes  map[*ast.FuncDef]ScopeID
	ClassScopes map[*ast.ClassDef]ScopeID
}

func NewTable() *Table {
	t := &Table{
		Defs:        make(map[*ast.Ident]SymbolID),
		FuncScopes:  make(map[*ast.FuncDef]ScopeID),
		ClassScopes: make(map[*ast.ClassDef]ScopeID),
	}
	t.Global = t.AddScope(NoScope, GlobalScope, "", nil)
	return t
}

func (t *Table) AddScope(parent ScopeID, kind ScopeKind, name string, node ast.Node) ScopeID {
	t.scopes = append(t.scopes, Scope{
		Kind:    kind,
		Parent:  parent,
		Name:    name,
		Node:    node,
		symbols: make(map[string]SymbolID),
	})
	return ScopeID(len(t.scopes) - 1)
}

// AddSymbol declares sym in scope. It reports false and leaves the table
// unchanged when the name is already declared there.
func (t *Table) AddSymbol(scope ScopeID, sym Symbol) (SymbolID, bool) {
	sc := &t.scopes[scope]
	if prev, ok := sc.symbols[sym.Name]; ok {
		return prev, false
	}
	sym.Scope = scope
	t.symbols = append(t.symbols, sym)
	id := SymbolID(len(t.symbols) - 1)
	sc.symbols[sym.Name] = id
	sc.order = append(sc.order, id)
	if sym.Ident != nil {
		t.Defs[sym.Ident] = id
	}
	return id, true
}

func (t *Table) Scope(id ScopeID) *Scope {
	return &t.scopes[id]
}

func (t *Table) Symbol(id SymbolID) *Symbol {
	return &t.symbols[id]
}

func (t *Table) NumScopes() int  { return len(t.scopes) }
func (t *Table) NumSymbols() int { return len(t.symbols) }

// Symbols returns the symbols of scope in declaration order.
func (t *Table) Symbols(scope ScopeID) []SymbolID {
	return t.scopes[scope].order
}

// Names returns the names declared in scope, sorted.
func (t *Table) Names(scope ScopeID) []string {
	names := maps.Keys(t.scopes[scope].symbols)
	slices.Sort(names)
	return names
}

func (t *Table) LookupLocal(scope ScopeID, name string) (SymbolID, bool) {
	id, ok := t.scopes[scope].symbols[name]
	return id, ok
}

// LookupStack searches scope and then its enclosing scopes.
func (t *Table) LookupStack(scope ScopeID, name string) (SymbolID, bool) {
	for s := scope; s != NoScope; s = t.scopes[s].Parent {
		if id, ok := t.LookupLocal(s, name); ok {
			return id, true
		}
	}
	return NoSymbol, false
}

// Resolve follows global and nonlocal aliases to the symbol they name.
func (t *Table) Resolve(id SymbolID) SymbolID {
	for {
		sym := &t.symbols[id]
		if sym.Kind != Global && sym.Kind != Nonlocal {
			return id
		}
		id = sym.Ref
	}
}

// LookupGlobal returns the global symbol named name.
func (t *Table) LookupGlobal(name string) (SymbolID, bool) {
	return t.LookupLocal(t.Global, name)
}

// IsClass reports whether name is declared as a class in the global scope.
func (t *Table) IsClass(name string) bool {
	id, ok := t.LookupGlobal(name)
	return ok && t.symbols[id].Kind == Class
}

// EnclosingFunc returns the nearest function scope at or above scope.
func (t *Table) EnclosingFunc(scope ScopeID) (ScopeID, bool) {
	for s := scope; s != NoScope; s = t.scopes[s].Parent {
		if t.scopes[s].Kind == FuncScope {
			return s, true
		}
	}
	return NoScope, false
}
