package hierarchy

import (
	"github.com/smasher164/chocopy/ast"
	"github.com/smasher164/chocopy/diag"
	"github.com/smasher164/chocopy/names"
	"golang.org/x/exp/slices"
)

var specialClasses = []string{"int", "bool", "str"}

type builder struct {
	h    *Hierarchy
	t    *names.Table
	errs *diag.List
}

// Build resolves the superclass of every class declared in prog and computes
// effective member tables. A superclass must be declared before the classes
// that extend it. Classes whose superclass clause is invalid extend object so
// that their bodies can still be checked.
func Build(t *names.Table, prog *ast.Program, errs *diag.List) *Hierarchy {
	b := &builder{h: newHierarchy(), t: t, errs: errs}
	for _, name := range names.BuiltinClasses {
		id, _ := t.LookupGlobal(name)
		super := ClassID(0)
		if name == "object" {
			super = NoClass
		}
		c := b.h.add(&Class{Name: name, Super: super, Symbol: id, Scope: t.Symbol(id).Body})
		b.inherit(c)
	}
	for _, d := range prog.Decls {
		cd, ok := d.(*ast.ClassDef)
		if !ok {
			continue
		}
		id, ok := t.Defs[cd.Name]
		if !ok {
			continue
		}
		c := &Class{
			Name:   cd.Name.Name.Data,
			Super:  b.resolveSuper(cd),
			Symbol: id,
			Scope:  t.ClassScopes[cd],
			Decl:   cd,
		}
		b.h.add(c)
		if b.checkCycle(c) {
			c.Super = 0
		}
		b.inherit(c)
	}
	return b.h
}

func (b *builder) resolveSuper(cd *ast.ClassDef) ClassID {
	name := cd.Super.Name.Data
	if super, ok := b.h.Lookup(name); ok {
		if slices.Contains(specialClasses, name) {
			b.errs.Addf(diag.NameError, cd.Super.Span(), "Cannot extend special class: %s", name)
			return 0
		}
		return super.ID
	}
	if id, ok := b.t.LookupGlobal(name); ok && b.t.Symbol(id).Kind != names.Class {
		b.errs.Addf(diag.NameError, cd.Super.Span(), "Super-class must be a class: %s", name)
		return 0
	}
	b.errs.Addf(diag.NameError, cd.Super.Span(), "Super-class not defined: %s", name)
	return 0
}

// checkCycle walks the superclass chain of c with a visited set and reports
// whether it returns to a class already seen.
func (b *builder) checkCycle(c *Class) bool {
	visited := make(map[ClassID]bool)
	for id := c.ID; id != NoClass; id = b.h.classes[id].Super {
		if visited[id] {
			b.errs.Addf(diag.NameError, c.Decl.Super.Span(), "Cyclic inheritance involving class: %s", c.Name)
			return true
		}
		visited[id] = true
	}
	return false
}

// inherit copies the member tables of the superclass of c and layers the
// members declared by c on top.
func (b *builder) inherit(c *Class) {
	if c.Super != NoClass {
		super := b.h.classes[c.Super]
		c.Attrs = slices.Clone(super.Attrs)
		c.Methods = slices.Clone(super.Methods)
		for name, i := range super.attrIndex {
			c.attrIndex[name] = i
		}
		for name, i := range super.methodIndex {
			c.methodIndex[name] = i
		}
	}
	if c.Scope == names.NoScope {
		return
	}
	for _, id := range b.t.Symbols(c.Scope) {
		sym := b.t.Symbol(id)
		m := Member{Name: sym.Name, Kind: sym.Kind, Type: sym.Type, Sig: sym.Sig, Symbol: id, Owner: c.ID}
		switch sym.Kind {
		case names.Attr:
			b.addAttr(c, m, sym.Ident)
		case names.Method:
			b.addMethod(c, m, sym.Ident)
		}
	}
}

func (b *builder) addAttr(c *Class, m Member, id *ast.Ident) {
	if _, ok := c.methodIndex[m.Name]; ok {
		b.errs.Addf(diag.NameError, id.Span(), "Cannot re-define attribute: %s", m.Name)
		return
	}
	if i, ok := c.attrIndex[m.Name]; ok {
		if c.Attrs[i].Type != m.Type {
			b.errs.Addf(diag.OverrideError, id.Span(), "Cannot re-define attribute: %s", m.Name)
			return
		}
		c.Attrs[i] = m
		return
	}
	c.attrIndex[m.Name] = len(c.Attrs)
	c.Attrs = append(c.Attrs, m)
}

func (b *builder) addMethod(c *Class, m Member, id *ast.Ident) {
	if _, ok := c.attrIndex[m.Name]; ok {
		b.errs.Addf(diag.NameError, id.Span(), "Cannot re-define attribute: %s", m.Name)
		return
	}
	if i, ok := c.methodIndex[m.Name]; ok {
		if !OverrideCompatible(c.Methods[i].Sig, m.Sig) {
			b.errs.Addf(diag.OverrideError, id.Span(), "Method overridden with different type signature: %s", m.Name)
		}
		c.Methods[i] = m
		return
	}
	c.methodIndex[m.Name] = len(c.Methods)
	c.Methods = append(c.Methods, m)
}

// OverrideCompatible reports whether sub may override super: the same
// number of parameters, identical parameter types after the receiver, and an
// identical return type.
func OverrideCompatible(super, sub *names.Signature) bool {
	if len(super.Params) != len(sub.Params) || super.Return != sub.Return {
		return false
	}
	if len(sub.Params) == 0 {
		return true
	}
	return slices.Equal(super.Params[1:], sub.Params[1:])
}
