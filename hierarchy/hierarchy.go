// Package hierarchy links class declarations into a single-rooted
// inheritance tree and derives each class's effective attributes and
// methods.
package hierarchy

import (
	"github.com/samber/lo"
	"github.com/smasher164/chocopy/ast"
	"github.com/smasher164/chocopy/names"
	"github.com/smasher164/chocopy/types"
	"golang.org/x/exp/slices"
)

type ClassID int

// NoClass is the superclass of object.
const NoClass ClassID = -1

// Member is an attribute or method as seen from a class. Owner is the class
// whose declaration supplies it.
type Member struct {
	Name   string
	Kind   names.Kind // names.Attr or names.Method
	Type   types.Type // attribute type
	Sig    *names.Signature
	Symbol names.SymbolID
	Owner  ClassID
}

type Class struct {
	ID     ClassID
	Name   string
	Super  ClassID
	Symbol names.SymbolID
	Scope  names.ScopeID
	Decl   *ast.ClassDef // nil for built-in classes

	// Attrs is the attribute layout: inherited attributes first, in their
	// superclass order, then new attributes in declaration order.
	Attrs []Member
	// Methods is the method table. An override keeps the slot of the method
	// it replaces.
	Methods []Member

	attrIndex   map[string]int
	methodIndex map[string]int
}

func (c *Class) Attr(name string) (Member, bool) {
	i, ok := c.attrIndex[name]
	if !ok {
		return Member{}, false
	}
	return c.Attrs[i], true
}

func (c *Class) Method(name string) (Member, bool) {
	i, ok := c.methodIndex[name]
	if !ok {
		return Member{}, false
	}
	return c.Methods[i], true
}

// AttrSlot returns the position of an attribute in the object layout.
func (c *Class) AttrSlot(name string) (int, bool) {
	i, ok := c.attrIndex[name]
	return i, ok
}

// MethodSlot returns the position of a method in the method table.
func (c *Class) MethodSlot(name string) (int, bool) {
	i, ok := c.methodIndex[name]
	return i, ok
}

func (c *Class) IsBuiltin() bool {
	return c.Decl == nil
}

// Hierarchy is an arena of class records. Superclass links are handles into
// the arena.
type Hierarchy struct {
	classes []*Class
	byName  map[string]ClassID
}

var _ types.Hierarchy = (*Hierarchy)(nil)

func newHierarchy() *Hierarchy {
	return &Hierarchy{byName: make(map[string]ClassID)}
}

func (h *Hierarchy) add(c *Class) *Class {
	c.ID = ClassID(len(h.classes))
	c.attrIndex = make(map[string]int)
	c.methodIndex = make(map[string]int)
	h.classes = append(h.classes, c)
	h.byName[c.Name] = c.ID
	return c
}

func (h *Hierarchy) Class(id ClassID) *Class {
	return h.classes[id]
}

func (h *Hierarchy) Lookup(name string) (*Class, bool) {
	id, ok := h.byName[name]
	if !ok {
		return nil, false
	}
	return h.classes[id], true
}

// Classes returns every class, each after its superclass.
func (h *Hierarchy) Classes() []*Class {
	return h.classes
}

func (h *Hierarchy) Superclass(name string) (string, bool) {
	c, ok := h.Lookup(name)
	if !ok || c.Super == NoClass {
		return "", false
	}
	return h.classes[c.Super].Name, true
}

// Chain returns the class followed by its ancestors, ending at object.
func (h *Hierarchy) Chain(id ClassID) []ClassID {
	var chain []ClassID
	for ; id != NoClass; id = h.classes[id].Super {
		if slices.Contains(chain, id) {
			break
		}
		chain = append(chain, id)
	}
	return chain
}

// Path returns the ancestors of a class from object down to the class
// itself.
func (h *Hierarchy) Path(id ClassID) []ClassID {
	return lo.Reverse(h.Chain(id))
}

// ClassOf returns the class holding the members of values of type t.
func (h *Hierarchy) ClassOf(t types.Type) (*Class, bool) {
	name, ok := types.ClassName(t)
	if !ok {
		return nil, false
	}
	return h.Lookup(name)
}

func (h *Hierarchy) Names() []string {
	return lo.Map(h.classes, func(c *Class, _ int) string { return c.Name })
}
