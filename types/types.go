// Package types defines the ChocoPy type values and the subtyping lattice
// over them.
package types

import "fmt"

// Type is one of Base, Class, List, NoneType, or EmptyType. Type values are
// comparable with ==.
type Type interface {
	fmt.Stringer
	isType()
}

var (
	_ Type = Base(0)
	_ Type = Class{}
	_ Type = List{}
	_ Type = NoneType{}
	_ Type = EmptyType{}
)

type Base int

const (
	Int Base = iota
	Bool
	Str
)

func (b Base) String() string {
	switch b {
	case Int:
		return "int"
	case Bool:
		return "bool"
	case Str:
		return "str"
	}
	return fmt.Sprintf("Base(%d)", int(b))
}

func (Base) isType() {}

// Class is a named class type. The root of the hierarchy is Object.
type Class struct {
	Name string
}

var Object = Class{Name: "object"}

func (c Class) String() string { return c.Name }
func (Class) isType()          {}

type List struct {
	Elem Type
}

func (l List) String() string { return fmt.Sprintf("[%s]", l.Elem) }
func (List) isType()          {}

// NoneType is the type of the None literal.
type NoneType struct{}

func (NoneType) String() string { return "<None>" }
func (NoneType) isType()        {}

// EmptyType is the type of the empty list literal.
type EmptyType struct{}

func (EmptyType) String() string { return "<Empty>" }
func (EmptyType) isType()        {}

var (
	None  Type = NoneType{}
	Empty Type = EmptyType{}
)

func IsPrimitive(t Type) bool {
	_, ok := t.(Base)
	return ok
}

// Elem returns the element type of a list type. The empty list has no
// element type.
func Elem(t Type) (Type, bool) {
	if l, ok := t.(List); ok {
		return l.Elem, true
	}
	return nil, false
}

// Named returns the type denoted by a class name in an annotation.
func Named(name string) Type {
	switch name {
	case "int":
		return Int
	case "bool":
		return Bool
	case "str":
		return Str
	}
	return Class{Name: name}
}

// ClassName returns the class that holds the members of t. Primitive types
// are classes too; lists and the bottom types are not.
func ClassName(t Type) (string, bool) {
	switch t := t.(type) {
	case Base:
		return t.String(), true
	case Class:
		return t.Name, true
	}
	return "", false
}
