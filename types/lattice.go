package types

// Hierarchy supplies the superclass of each class. The root class and unknown
// classes report false.
type Hierarchy interface {
	Superclass(name string) (string, bool)
}

type Lattice struct {
	h Hierarchy
}

func NewLattice(h Hierarchy) Lattice {
	return Lattice{h: h}
}

// Ancestors returns name followed by its superclasses, ending at the root.
func (l Lattice) Ancestors(name string) []string {
	chain := []string{name}
	seen := map[string]bool{name: true}
	for {
		super, ok := l.h.Superclass(name)
		if !ok || seen[super] {
			return chain
		}
		seen[super] = true
		chain = append(chain, super)
		name = super
	}
}

func (l Lattice) inherits(sub, super string) bool {
	for _, name := range l.Ancestors(sub) {
		if name == super {
			return true
		}
	}
	return false
}

// IsSubtype reports whether a <= b. Every type is a subtype of object. None
// is a subtype of every class and list type, and the empty list of every
// list type. Lists are invariant in their element type.
func (l Lattice) IsSubtype(a, b Type) bool {
	if a == b || b == Object {
		return true
	}
	switch a.(type) {
	case NoneType:
		return !IsPrimitive(b) && b != Empty
	case EmptyType:
		_, ok := b.(List)
		return ok
	}
	ca, ok1 := a.(Class)
	cb, ok2 := b.(Class)
	return ok1 && ok2 && l.inherits(ca.Name, cb.Name)
}

// Assignable reports whether a value of type a may be stored in a location
// of type b. It extends IsSubtype with [<None>] <= [T] whenever None <= T.
func (l Lattice) Assignable(a, b Type) bool {
	if l.IsSubtype(a, b) {
		return true
	}
	la, ok1 := a.(List)
	lb, ok2 := b.(List)
	return ok1 && ok2 && la.Elem == None && l.Assignable(None, lb.Elem)
}

// Join returns the least upper bound of a and b. It reports false when a and
// b are list types with different element types, which do not join.
func (l Lattice) Join(a, b Type) (Type, bool) {
	switch {
	case l.IsSubtype(a, b):
		return b, true
	case l.IsSubtype(b, a):
		return a, true
	}
	ca, ok1 := a.(Class)
	cb, ok2 := b.(Class)
	if ok1 && ok2 {
		return l.commonAncestor(ca.Name, cb.Name), true
	}
	_, ok1 = a.(List)
	_, ok2 = b.(List)
	if ok1 && ok2 {
		return Object, false
	}
	return Object, true
}

func (l Lattice) commonAncestor(a, b string) Type {
	bs := l.Ancestors(b)
	for _, name := range l.Ancestors(a) {
		for _, other := range bs {
			if name == other {
				return Named(name)
			}
		}
	}
	return Object
}

// JoinAll folds Join over ts. The join of no types is the empty list type.
func (l Lattice) JoinAll(ts []Type) (Type, bool) {
	if len(ts) == 0 {
		return Empty, true
	}
	res, ok := ts[0], true
	for _, t := range ts[1:] {
		var joined bool
		res, joined = l.Join(res, t)
		ok = ok && joined
	}
	return res, ok
}
