// Package layout renders a checked class hierarchy as LLVM IR declarations:
// one object struct per class, one external function per method
// implementation, and one constant method table per class.
package layout

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/smasher164/chocopy/hierarchy"
	"github.com/smasher164/chocopy/names"
	"github.com/smasher164/chocopy/types"
)

var bytePtr = lltypes.NewPointer(lltypes.I8)

// VtableName is the name of the method table global of a class.
func VtableName(class string) string {
	return class + ".$vtable"
}

// MethodName is the name of the function implementing method in class.
func MethodName(class, method string) string {
	return class + "." + method
}

type builder struct {
	m       *ir.Module
	h       *hierarchy.Hierarchy
	structs map[string]*lltypes.StructType
	funcs   map[string]*ir.Func
}

// Build lays out every class of h. Field 0 of each object struct points at
// the method table; the remaining fields follow the attribute layout order,
// so a subclass struct begins with the fields of its superclass.
func Build(h *hierarchy.Hierarchy) *ir.Module {
	b := &builder{
		m:       ir.NewModule(),
		h:       h,
		structs: make(map[string]*lltypes.StructType),
		funcs:   make(map[string]*ir.Func),
	}
	classes := h.Classes()
	for _, c := range classes {
		st := lltypes.NewStruct()
		b.m.NewTypeDef(c.Name, st)
		b.structs[c.Name] = st
	}
	for _, c := range classes {
		st := b.structs[c.Name]
		st.Fields = []lltypes.Type{lltypes.NewPointer(bytePtr)}
		for _, a := range c.Attrs {
			st.Fields = append(st.Fields, b.valueType(a.Type))
		}
	}
	for _, c := range classes {
		for _, m := range c.Methods {
			if m.Owner == c.ID {
				b.declareMethod(c, m)
			}
		}
	}
	for _, c := range classes {
		b.defineVtable(c)
	}
	return b.m
}

// valueType maps a ChocoPy type to the LLVM type of a value of that type.
// Primitive values are unboxed; everything else is a pointer.
func (b *builder) valueType(t types.Type) lltypes.Type {
	switch t {
	case types.Int:
		return lltypes.I32
	case types.Bool:
		return lltypes.I1
	case types.Str:
		return lltypes.NewPointer(b.structs["str"])
	}
	if c, ok := t.(types.Class); ok {
		if st, ok := b.structs[c.Name]; ok {
			return lltypes.NewPointer(st)
		}
	}
	return bytePtr
}

func (b *builder) declareMethod(c *hierarchy.Class, m hierarchy.Member) {
	var params []*ir.Param
	for i, t := range m.Sig.Params {
		pt := b.valueType(t)
		if i == 0 {
			pt = lltypes.NewPointer(b.structs[c.Name])
		}
		params = append(params, ir.NewParam(paramName(m.Sig, i), pt))
	}
	var ret lltypes.Type = lltypes.Void
	if m.Sig.Return != types.None {
		ret = b.valueType(m.Sig.Return)
	}
	name := MethodName(c.Name, m.Name)
	b.funcs[name] = b.m.NewFunc(name, ret, params...)
}

func paramName(sig *names.Signature, i int) string {
	if i < len(sig.Names) {
		return sig.Names[i]
	}
	return ""
}

func (b *builder) defineVtable(c *hierarchy.Class) {
	entries := make([]constant.Constant, 0, len(c.Methods))
	for _, m := range c.Methods {
		fn := b.funcs[MethodName(b.h.Class(m.Owner).Name, m.Name)]
		entries = append(entries, constant.NewBitCast(fn, bytePtr))
	}
	arr := constant.NewArray(lltypes.NewArray(uint64(len(entries)), bytePtr), entries...)
	g := b.m.NewGlobalDef(VtableName(c.Name), arr)
	g.Immutable = true
}
