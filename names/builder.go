package names

import (
	"github.com/smasher164/chocopy/ast"
	"github.com/smasher164/chocopy/diag"
	"github.com/smasher164/chocopy/types"
)

// Builtin classes, in the order they are declared.
var BuiltinClasses = []string{"object", "int", "bool", "str"}

type builtinFunc struct {
	name   string
	params []types.Type
	ret    types.Type
}

var builtinFuncs = []builtinFunc{
	{"print", []types.Type{types.Object}, types.None},
	{"input", nil, types.Str},
	{"len", []types.Type{types.Object}, types.Int},
}

type builder struct {
	t    *Table
	errs *diag.List
}

// Build declares every name in prog and returns the resulting table. Name
// errors are appended to errs. A declaration that fails is left out of the
// table, but its body is still walked so that independent errors inside it
// are reported.
func Build(prog *ast.Program, errs *diag.List) *Table {
	b := &builder{t: NewTable(), errs: errs}
	b.addBuiltins()
	for _, d := range prog.Decls {
		b.declareGlobal(d)
	}
	for _, d := range prog.Decls {
		if d, ok := d.(*ast.VarDef); ok {
			t := b.resolveType(d.Var.Type)
			if id, ok := b.t.Defs[d.Var.Name]; ok {
				b.t.Symbol(id).Type = t
			}
		}
	}
	for _, d := range prog.Decls {
		switch d := d.(type) {
		case *ast.FuncDef:
			sig := b.signature(d)
			body := b.buildFunc(b.t.Global, d, sig)
			if id, ok := b.t.Defs[d.Name]; ok {
				sym := b.t.Symbol(id)
				sym.Sig, sym.Body = sig, body
			}
		case *ast.ClassDef:
			body := b.buildClass(d)
			if id, ok := b.t.Defs[d.Name]; ok {
				b.t.Symbol(id).Body = body
			}
		}
	}
	return b.t
}

func (b *builder) addBuiltins() {
	for _, name := range BuiltinClasses {
		scope := b.t.AddScope(b.t.Global, ClassScope, name, nil)
		b.t.AddSymbol(b.t.Global, Symbol{Name: name, Kind: Class, Body: scope, Ref: NoSymbol})
		if name == "object" {
			b.t.AddSymbol(scope, Symbol{
				Name: "__init__",
				Kind: Method,
				Sig:  &Signature{Params: []types.Type{types.Object}, Names: []string{"self"}, Return: types.None},
				Body: NoScope,
				Ref:  NoSymbol,
			})
		}
	}
	for _, f := range builtinFuncs {
		sig := &Signature{Params: f.params, Return: f.ret}
		for range f.params {
			sig.Names = append(sig.Names, "arg")
		}
		b.t.AddSymbol(b.t.Global, Symbol{Name: f.name, Kind: Func, Sig: sig, Body: NoScope, Ref: NoSymbol})
	}
}

func (b *builder) errorf(kind diag.Kind, n ast.Node, format string, args ...any) {
	b.errs.Addf(kind, n.Span(), format, args...)
}

func (b *builder) declare(scope ScopeID, kind Kind, id *ast.Ident, decl ast.Node) (SymbolID, bool) {
	sym, ok := b.t.AddSymbol(scope, Symbol{
		Name:  id.Name.Data,
		Kind:  kind,
		Ident: id,
		Decl:  decl,
		Body:  NoScope,
		Ref:   NoSymbol,
	})
	if !ok {
		b.errorf(diag.NameError, id, "Duplicate declaration of identifier in same scope: %s", id.Name.Data)
	}
	return sym, ok
}

func (b *builder) declareGlobal(d ast.Decl) {
	switch d := d.(type) {
	case *ast.VarDef:
		b.declare(b.t.Global, Var, d.Var.Name, d)
	case *ast.FuncDef:
		b.declare(b.t.Global, Func, d.Name, d)
	case *ast.ClassDef:
		b.declare(b.t.Global, Class, d.Name, d)
	}
}

// resolveType turns an annotation into a type. Annotations may name any
// class declared in the program, regardless of textual order.
func (b *builder) resolveType(ann ast.TypeAnnotation) types.Type {
	switch ann := ann.(type) {
	case *ast.ClassType:
		name := ann.Name.Data
		if !b.t.IsClass(name) {
			b.errorf(diag.NameError, ann, "Invalid type annotation; there is no class named: %s", name)
			return types.Object
		}
		return types.Named(name)
	case *ast.ListType:
		return types.List{Elem: b.resolveType(ann.Elem)}
	}
	return types.Object
}

func (b *builder) signature(f *ast.FuncDef) *Signature {
	sig := &Signature{Return: types.None}
	for _, p := range f.Params {
		sig.Params = append(sig.Params, b.resolveType(p.Type))
		sig.Names = append(sig.Names, p.Name.Name.Data)
	}
	if f.Return != nil {
		sig.Return = b.resolveType(f.Return)
	}
	return sig
}

func (b *builder) buildClass(c *ast.ClassDef) ScopeID {
	className := c.Name.Name.Data
	scope := b.t.AddScope(b.t.Global, ClassScope, className, c)
	b.t.ClassScopes[c] = scope
	for _, d := range c.Decls {
		switch d := d.(type) {
		case *ast.VarDef:
			t := b.resolveType(d.Var.Type)
			if id, ok := b.declare(scope, Attr, d.Var.Name, d); ok {
				b.t.Symbol(id).Type = t
			}
		case *ast.FuncDef:
			sig := b.signature(d)
			if !isSelfParam(d, className) {
				b.errorf(diag.NameError, d.Name, "First parameter of the following method must be of the enclosing class: %s", d.Name.Name.Data)
			}
			id, ok := b.declare(scope, Method, d.Name, d)
			body := b.buildFunc(b.t.Global, d, sig)
			if ok {
				sym := b.t.Symbol(id)
				sym.Sig, sym.Body = sig, body
			}
		}
	}
	return scope
}

func isSelfParam(f *ast.FuncDef, className string) bool {
	if len(f.Params) == 0 {
		return false
	}
	ct, ok := f.Params[0].Type.(*ast.ClassType)
	return ok && ct.Name.Data == className
}

// declareLocal declares a function-local name, which may not shadow a class.
func (b *builder) declareLocal(scope ScopeID, kind Kind, id *ast.Ident, decl ast.Node) (SymbolID, bool) {
	if b.t.IsClass(id.Name.Data) {
		b.errorf(diag.NameError, id, "Cannot shadow class name: %s", id.Name.Data)
		return NoSymbol, false
	}
	return b.declare(scope, kind, id, decl)
}

// buildFunc declares the parameters and local declarations of f in a new
// scope under parent. Nested function bodies are built once every local of
// f is declared, so nonlocal declarations may refer to locals declared
// later in the text.
func (b *builder) buildFunc(parent ScopeID, f *ast.FuncDef, sig *Signature) ScopeID {
	scope := b.t.AddScope(parent, FuncScope, f.Name.Name.Data, f)
	b.t.FuncScopes[f] = scope
	for i, p := range f.Params {
		if id, ok := b.declareLocal(scope, Param, p.Name, p); ok {
			b.t.Symbol(id).Type = sig.Params[i]
		}
	}
	type nested struct {
		f   *ast.FuncDef
		sig *Signature
		id  SymbolID
	}
	var funcs []nested
	for _, d := range f.Decls {
		switch d := d.(type) {
		case *ast.VarDef:
			t := b.resolveType(d.Var.Type)
			if id, ok := b.declareLocal(scope, Var, d.Var.Name, d); ok {
				b.t.Symbol(id).Type = t
			}
		case *ast.FuncDef:
			sig := b.signature(d)
			id, ok := b.declareLocal(scope, Func, d.Name, d)
			if !ok {
				id = NoSymbol
			}
			funcs = append(funcs, nested{d, sig, id})
		case *ast.GlobalDecl:
			b.declareGlobalRef(scope, d)
		case *ast.NonlocalDecl:
			b.declareNonlocalRef(scope, d)
		}
	}
	for _, n := range funcs {
		body := b.buildFunc(scope, n.f, n.sig)
		if n.id != NoSymbol {
			sym := b.t.Symbol(n.id)
			sym.Sig, sym.Body = n.sig, body
		}
	}
	return scope
}

func (b *builder) declareGlobalRef(scope ScopeID, d *ast.GlobalDecl) {
	name := d.Name.Name.Data
	target, ok := b.t.LookupGlobal(name)
	if !ok || b.t.Symbol(target).Kind != Var {
		b.errorf(diag.NameError, d.Name, "Not a global variable: %s", name)
		return
	}
	if id, ok := b.declare(scope, Global, d.Name, d); ok {
		sym := b.t.Symbol(id)
		sym.Ref, sym.Type = target, b.t.Symbol(target).Type
	}
}

func (b *builder) declareNonlocalRef(scope ScopeID, d *ast.NonlocalDecl) {
	name := d.Name.Name.Data
	target := NoSymbol
outer:
	for s := b.t.Scope(scope).Parent; s != NoScope && b.t.Scope(s).Kind == FuncScope; s = b.t.Scope(s).Parent {
		if id, ok := b.t.LookupLocal(s, name); ok {
			switch b.t.Symbol(id).Kind {
			case Var, Param, Nonlocal:
				target = id
			}
			break outer
		}
	}
	if target == NoSymbol {
		b.errorf(diag.NameError, d.Name, "Not a nonlocal variable: %s", name)
		return
	}
	if id, ok := b.declare(scope, Nonlocal, d.Name, d); ok {
		sym := b.t.Symbol(id)
		sym.Ref, sym.Type = target, b.t.Symbol(target).Type
	}
}
