package check

import (
	"fmt"
	"io"

	"github.com/sanity-io/litter"
	"github.com/smasher164/chocopy/ast"
	"github.com/smasher164/chocopy/hierarchy"
	"github.com/smasher164/chocopy/names"
	"github.com/smasher164/chocopy/types"
	"golang.org/x/exp/slices"
)

// Info holds the annotations of a successfully checked program. Side tables
// are keyed by node identity.
type Info struct {
	// Types maps every value expression to its type. Callee names and the
	// member names of method calls are not values and have no entry.
	Types map[ast.Expr]types.Type
	// Uses maps each referring identifier to the symbol it denotes.
	// Identifiers bound through global or nonlocal declarations map to the
	// variable they name.
	Uses map[*ast.Ident]names.SymbolID
	// Defs maps each declaring identifier to the symbol it declares.
	Defs map[*ast.Ident]names.SymbolID
	// Returns records for every function and method whether each path
	// through its body ends in a return.
	Returns map[*ast.FuncDef]bool

	Scopes  *names.Table
	Classes *hierarchy.Hierarchy
}

func newInfo(tbl *names.Table, h *hierarchy.Hierarchy) *Info {
	return &Info{
		Types:   make(map[ast.Expr]types.Type),
		Uses:    make(map[*ast.Ident]names.SymbolID),
		Defs:    tbl.Defs,
		Returns: make(map[*ast.FuncDef]bool),
		Scopes:  tbl,
		Classes: h,
	}
}

func (info *Info) TypeOf(x ast.Expr) types.Type {
	return info.Types[x]
}

// SymbolOf returns the symbol that id declares or refers to.
func (info *Info) SymbolOf(id *ast.Ident) (*names.Symbol, bool) {
	sym, ok := info.Uses[id]
	if !ok {
		sym, ok = info.Defs[id]
	}
	if !ok {
		return nil, false
	}
	return info.Scopes.Symbol(sym), true
}

type exprEntry struct {
	Pos  string
	Expr string
	Type string
}

type memberEntry struct {
	Name  string
	Type  string
	Owner string
}

type classEntry struct {
	Name    string
	Super   string
	Attrs   []memberEntry
	Methods []memberEntry
}

type funcEntry struct {
	Pos     string
	Name    string
	Returns bool
}

type report struct {
	Classes   []classEntry
	Functions []funcEntry
	Exprs     []exprEntry
}

func (info *Info) report() report {
	var r report
	h := info.Classes
	for _, c := range h.Classes() {
		ce := classEntry{Name: c.Name}
		if c.Super != hierarchy.NoClass {
			ce.Super = h.Class(c.Super).Name
		}
		for _, a := range c.Attrs {
			ce.Attrs = append(ce.Attrs, memberEntry{a.Name, a.Type.String(), h.Class(a.Owner).Name})
		}
		for _, m := range c.Methods {
			ce.Methods = append(ce.Methods, memberEntry{m.Name, m.Sig.String(), h.Class(m.Owner).Name})
		}
		r.Classes = append(r.Classes, ce)
	}
	funcs := make([]*ast.FuncDef, 0, len(info.Returns))
	for f := range info.Returns {
		funcs = append(funcs, f)
	}
	slices.SortFunc(funcs, func(a, b *ast.FuncDef) bool { return a.Span().Start.Before(b.Span().Start) })
	for _, f := range funcs {
		r.Functions = append(r.Functions, funcEntry{f.Span().Start.String(), f.Name.Name.Data, info.Returns[f]})
	}
	type located struct {
		x ast.Expr
		t types.Type
	}
	var exprs []located
	for x, t := range info.Types {
		exprs = append(exprs, located{x, t})
	}
	slices.SortStableFunc(exprs, func(x, y located) bool {
		a, b := x.x.Span(), y.x.Span()
		if a.Start != b.Start {
			return a.Start.Before(b.Start)
		}
		if a.End != b.End {
			return b.End.Before(a.End)
		}
		return fmt.Sprintf("%T", x.x) < fmt.Sprintf("%T", y.x)
	})
	for _, e := range exprs {
		r.Exprs = append(r.Exprs, exprEntry{e.x.Span().String(), fmt.Sprintf("%T", e.x), e.t.String()})
	}
	return r
}

var dumpOptions = litter.Options{
	StripPackageNames: true,
	HidePrivateFields: true,
	Separator:         " ",
}

// Dump writes a readable listing of the class layouts, function return
// flags, and expression types in info.
func (info *Info) Dump(w io.Writer) error {
	_, err := io.WriteString(w, dumpOptions.Sdump(info.report()))
	return err
}
