package hierarchy_test

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/samber/lo"
	"github.com/smasher164/chocopy/diag"
	"github.com/smasher164/chocopy/fstest"
	. "github.com/smasher164/chocopy/hierarchy"
	"github.com/smasher164/chocopy/names"
	"github.com/smasher164/chocopy/parser"
	"github.com/smasher164/chocopy/types"
)

func build(t *testing.T, src string) (*Hierarchy, diag.List) {
	t.Helper()
	prog, err := parser.Parse(fstest.Dedent(src))
	if err != nil {
		t.Fatal(err)
	}
	var errs diag.List
	tbl := names.Build(prog, &errs)
	if len(errs) > 0 {
		t.Fatal(errs)
	}
	return Build(tbl, prog, &errs), errs
}

func memberNames(ms []Member) []string {
	return lo.Map(ms, func(m Member, _ int) string { return m.Name })
}

func mustLookup(t *testing.T, h *Hierarchy, name string) *Class {
	t.Helper()
	c, ok := h.Lookup(name)
	if !ok {
		t.Fatalf("class %s not found", name)
	}
	return c
}

func TestInheritance(t *testing.T) {
	h, errs := build(t, `
		class A(object):
		    x: int = 1
		    def f(self: A) -> int:
		        return 1
		    def g(self: A):
		        pass
		class B(A):
		    y: str = ""
		    x: int = 2
		    def g(self: B):
		        pass
		    def h(self: B) -> bool:
		        return True
		`)
	if len(errs) > 0 {
		t.Fatal(errs)
	}
	a, b := mustLookup(t, h, "A"), mustLookup(t, h, "B")

	if diff := deep.Equal(h.Names(), []string{"object", "int", "bool", "str", "A", "B"}); diff != nil {
		t.Error(diff)
	}
	if diff := deep.Equal(memberNames(b.Attrs), []string{"x", "y"}); diff != nil {
		t.Error(diff)
	}
	if diff := deep.Equal(memberNames(b.Methods), []string{"__init__", "f", "g", "h"}); diff != nil {
		t.Error(diff)
	}
	if x, _ := b.Attr("x"); x.Owner != b.ID || x.Type != types.Int {
		t.Errorf("x is owned by %d", x.Owner)
	}
	if f, _ := b.Method("f"); f.Owner != a.ID {
		t.Errorf("f is owned by %d", f.Owner)
	}
	if g, _ := b.Method("g"); g.Owner != b.ID {
		t.Errorf("g is owned by %d", g.Owner)
	}
	as, _ := a.MethodSlot("g")
	bs, _ := b.MethodSlot("g")
	if as != bs || as != 2 {
		t.Errorf("g occupies slot %d in A and %d in B", as, bs)
	}
	if _, ok := a.Method("h"); ok {
		t.Error("A sees a method declared by its subclass")
	}
	if slot, ok := b.AttrSlot("y"); !ok || slot != 1 {
		t.Errorf("y occupies slot %d", slot)
	}

	if diff := deep.Equal(h.Chain(b.ID), []ClassID{b.ID, a.ID, 0}); diff != nil {
		t.Error(diff)
	}
	if diff := deep.Equal(h.Path(b.ID), []ClassID{0, a.ID, b.ID}); diff != nil {
		t.Error(diff)
	}
	if super, ok := h.Superclass("B"); !ok || super != "A" {
		t.Errorf("Superclass(B) = %q, %t", super, ok)
	}
	if _, ok := h.Superclass("object"); ok {
		t.Error("object has a superclass")
	}
	if c, ok := h.ClassOf(types.Str); !ok || c.Name != "str" || !c.IsBuiltin() {
		t.Errorf("ClassOf(str) = %v", c)
	}
	if _, ok := h.ClassOf(types.List{Elem: types.Int}); ok {
		t.Error("list types have no class")
	}
	if b.IsBuiltin() {
		t.Error("B is reported as built-in")
	}
}

func TestHierarchyErrors(t *testing.T) {
	h, errs := build(t, `
		x: int = 0
		class A(B):
		    pass
		class B(object):
		    pass
		class C(int):
		    pass
		class D(x):
		    pass
		class E(nope):
		    pass
		class F(A):
		    a: int = 1
		    def m(self: F, p: int) -> int:
		        return p
		class G(F):
		    a: str = ""
		    def m(self: G, p: bool) -> int:
		        return 1
		class H(F):
		    def a(self: H):
		        pass
		    m: int = 0
		`)
	expected := []string{
		"NameError: Super-class not defined: B",
		"NameError: Cannot extend special class: int",
		"NameError: Super-class must be a class: x",
		"NameError: Super-class not defined: nope",
		"OverrideError: Cannot re-define attribute: a",
		"OverrideError: Method overridden with different type signature: m",
		"NameError: Cannot re-define attribute: a",
		"NameError: Cannot re-define attribute: m",
	}
	got := lo.Map(errs, func(d diag.Diagnostic, _ int) string { return d.Kind.String() + ": " + d.Msg })
	if diff := deep.Equal(got, expected); diff != nil {
		t.Error(diff)
	}
	for _, name := range []string{"A", "C", "D", "E"} {
		if super, _ := h.Superclass(name); super != "object" {
			t.Errorf("%s falls back to %s", name, super)
		}
	}
	hc := mustLookup(t, h, "H")
	if diff := deep.Equal(memberNames(hc.Attrs), []string{"a"}); diff != nil {
		t.Error(diff)
	}
	if m, _ := hc.Method("m"); m.Owner != mustLookup(t, h, "F").ID {
		t.Errorf("m in H is owned by %d", m.Owner)
	}
}

func TestOverrideCompatible(t *testing.T) {
	a, b := types.Class{Name: "A"}, types.Class{Name: "B"}
	sig := func(ret types.Type, params ...types.Type) *names.Signature {
		return &names.Signature{Params: params, Return: ret}
	}
	tests := []struct {
		super, sub *names.Signature
		want       bool
	}{
		{sig(types.Int, a, types.Int), sig(types.Int, b, types.Int), true},
		{sig(types.None, a), sig(types.None, b), true},
		{sig(types.Int, a, types.Int), sig(types.Bool, b, types.Int), false},
		{sig(types.Int, a, types.Int), sig(types.Int, b), false},
		{sig(types.Object, a, a), sig(types.Object, b, b), false},
		{sig(a, a), sig(b, b), false},
	}
	for i, tt := range tests {
		if got := OverrideCompatible(tt.super, tt.sub); got != tt.want {
			t.Errorf("%d: OverrideCompatible(%v, %v) = %t", i, tt.super, tt.sub, got)
		}
	}
}
