package names_test

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/samber/lo"
	"github.com/smasher164/chocopy/ast"
	"github.com/smasher164/chocopy/diag"
	"github.com/smasher164/chocopy/fstest"
	. "github.com/smasher164/chocopy/names"
	"github.com/smasher164/chocopy/parser"
	"github.com/smasher164/chocopy/types"
)

func build(t *testing.T, src string) (*ast.Program, *Table, diag.List) {
	t.Helper()
	prog, err := parser.Parse(fstest.Dedent(src))
	if err != nil {
		t.Fatal(err)
	}
	var errs diag.List
	tbl := Build(prog, &errs)
	return prog, tbl, errs
}

func messages(errs diag.List) []string {
	return lo.Map(errs, func(d diag.Diagnostic, _ int) string { return d.Kind.String() + ": " + d.Msg })
}

func lookup(t *testing.T, tbl *Table, scope ScopeID, name string) *Symbol {
	t.Helper()
	id, ok := tbl.LookupLocal(scope, name)
	if !ok {
		t.Fatalf("%s not declared in scope %d", name, scope)
	}
	return tbl.Symbol(id)
}

func TestBuiltins(t *testing.T) {
	_, tbl, errs := build(t, "pass\n")
	if len(errs) > 0 {
		t.Fatal(errs)
	}
	if diff := deep.Equal(tbl.Names(tbl.Global), []string{"bool", "input", "int", "len", "object", "print", "str"}); diff != nil {
		t.Error(diff)
	}
	for _, name := range BuiltinClasses {
		if !tbl.IsClass(name) {
			t.Errorf("%s is not a class", name)
		}
	}
	object := lookup(t, tbl, tbl.Global, "object")
	ctor := lookup(t, tbl, object.Body, "__init__")
	if ctor.Kind != Method || !ctor.IsBuiltin() {
		t.Errorf("unexpected __init__: %+v", ctor)
	}
	printFn := lookup(t, tbl, tbl.Global, "print")
	if got := printFn.Sig.String(); got != "(arg: object) -> <None>" {
		t.Errorf("print has signature %s", got)
	}
}

func TestScopes(t *testing.T) {
	prog, tbl, errs := build(t, `
		x: int = 0
		def f(p: int) -> int:
		    y: [int] = None
		    global x
		    def g() -> int:
		        nonlocal y
		        def h() -> int:
		            nonlocal y
		            return p
		        return h()
		    return g()
		f(1)
		`)
	if len(errs) > 0 {
		t.Fatal(errs)
	}
	fdef := prog.Decls[1].(*ast.FuncDef)
	gdef := fdef.Decls[2].(*ast.FuncDef)
	hdef := gdef.Decls[1].(*ast.FuncDef)
	fs, gs, hs := tbl.FuncScopes[fdef], tbl.FuncScopes[gdef], tbl.FuncScopes[hdef]

	if p := tbl.Scope(fs).Parent; p != tbl.Global {
		t.Errorf("f is nested in scope %d", p)
	}
	if p := tbl.Scope(hs).Parent; p != gs {
		t.Errorf("h is nested in scope %d, want %d", p, gs)
	}
	if diff := deep.Equal(tbl.Names(fs), []string{"g", "p", "x", "y"}); diff != nil {
		t.Error(diff)
	}

	f := lookup(t, tbl, tbl.Global, "f")
	if f.Kind != Func || f.Body != fs || f.Sig.String() != "(p: int) -> int" {
		t.Errorf("unexpected symbol for f: %+v", f)
	}

	x := lookup(t, tbl, fs, "x")
	globalX, _ := tbl.LookupGlobal("x")
	if x.Kind != Global || tbl.Resolve(x.Ref) != globalX || x.Type != types.Int {
		t.Errorf("unexpected alias for x: %+v", x)
	}

	fy, _ := tbl.LookupLocal(fs, "y")
	for _, scope := range []ScopeID{gs, hs} {
		id, _ := tbl.LookupLocal(scope, "y")
		y := tbl.Symbol(id)
		if y.Kind != Nonlocal || tbl.Resolve(id) != fy {
			t.Errorf("y in scope %d resolves to %d, want %d", scope, tbl.Resolve(id), fy)
		}
		if y.Type != (types.List{Elem: types.Int}) {
			t.Errorf("y in scope %d has type %v", scope, y.Type)
		}
	}

	if id, ok := tbl.LookupStack(hs, "p"); !ok || tbl.Symbol(id).Kind != Param || tbl.Symbol(id).Scope != fs {
		t.Errorf("p is not visible from h")
	}
	if _, ok := tbl.LookupStack(gs, "nowhere"); ok {
		t.Error("found an undeclared name")
	}
	if s, ok := tbl.EnclosingFunc(hs); !ok || s != hs {
		t.Errorf("EnclosingFunc(h) = %d", s)
	}
	if _, ok := tbl.EnclosingFunc(tbl.Global); ok {
		t.Error("the global scope has an enclosing function")
	}
	if id := tbl.Defs[hdef.Name]; tbl.Symbol(id).Body != hs {
		t.Errorf("h is declared as %+v", tbl.Symbol(id))
	}
}

func TestClassScope(t *testing.T) {
	prog, tbl, errs := build(t, `
		class A(object):
		    a: int = 1
		    def m(self: "A") -> A:
		        return self
		`)
	if len(errs) > 0 {
		t.Fatal(errs)
	}
	cdef := prog.Decls[0].(*ast.ClassDef)
	cs := tbl.ClassScopes[cdef]
	if lookup(t, tbl, tbl.Global, "A").Body != cs {
		t.Error("class symbol does not point at its body")
	}
	if diff := deep.Equal(tbl.Names(cs), []string{"a", "m"}); diff != nil {
		t.Error(diff)
	}
	if a := lookup(t, tbl, cs, "a"); a.Kind != Attr || a.Type != types.Int {
		t.Errorf("unexpected attribute: %+v", a)
	}
	m := lookup(t, tbl, cs, "m")
	if m.Kind != Method || m.Sig.Return != (types.Class{Name: "A"}) {
		t.Errorf("unexpected method: %+v", m)
	}
	if p := tbl.Scope(m.Body).Parent; p != tbl.Global {
		t.Errorf("method body is nested in scope %d", p)
	}
	if self := lookup(t, tbl, m.Body, "self"); self.Kind != Param {
		t.Errorf("unexpected self: %+v", self)
	}
}

func TestNameErrors(t *testing.T) {
	_, _, errs := build(t, `
		x: int = 0
		x: bool = True
		class A(object):
		    a: int = 1
		    a: int = 2
		    def m(y: int):
		        pass
		def f(A: int) -> Q:
		    global y
		    global f
		    nonlocal x
		    z: int = 0
		    z: int = 1
		    return 0
		`)
	expected := []string{
		"NameError: Duplicate declaration of identifier in same scope: x",
		"NameError: Duplicate declaration of identifier in same scope: a",
		"NameError: First parameter of the following method must be of the enclosing class: m",
		"NameError: Invalid type annotation; there is no class named: Q",
		"NameError: Cannot shadow class name: A",
		"NameError: Not a global variable: y",
		"NameError: Not a global variable: f",
		"NameError: Not a nonlocal variable: x",
		"NameError: Duplicate declaration of identifier in same scope: z",
	}
	if diff := deep.Equal(messages(errs), expected); diff != nil {
		t.Error(diff)
	}
}

func TestNonlocalTargets(t *testing.T) {
	_, _, errs := build(t, `
		def f():
		    def g():
		        nonlocal h
		        pass
		    def h():
		        pass
		    pass
		`)
	if diff := deep.Equal(messages(errs), []string{"NameError: Not a nonlocal variable: h"}); diff != nil {
		t.Error(diff)
	}
}
