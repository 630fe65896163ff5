package check

import (
	"github.com/samber/lo"
	"github.com/smasher164/chocopy/ast"
	"github.com/smasher164/chocopy/diag"
	"github.com/smasher164/chocopy/hierarchy"
	"github.com/smasher164/chocopy/lexer"
	"github.com/smasher164/chocopy/names"
	"github.com/smasher164/chocopy/types"
)

// checkExpr assigns a type to x and records it. An expression that fails to
// check reports one error and falls back to a type that keeps errors from
// cascading into its parent.
func (c *checker) checkExpr(e env, x ast.Expr) types.Type {
	t := c.exprType(e, x)
	c.info.Types[x] = t
	return t
}

func (c *checker) exprType(e env, x ast.Expr) types.Type {
	switch x := x.(type) {
	case *ast.IntLit:
		return types.Int
	case *ast.BoolLit:
		return types.Bool
	case *ast.StrLit:
		return types.Str
	case *ast.NoneLit:
		return types.None
	case *ast.Ident:
		return c.checkName(e, x)
	case *ast.ListExpr:
		return c.checkList(e, x)
	case *ast.UnaryExpr:
		return c.checkUnary(e, x)
	case *ast.BinaryExpr:
		return c.checkBinary(e, x)
	case *ast.IfExpr:
		return c.checkIfExpr(e, x)
	case *ast.CallExpr:
		return c.checkCall(e, x)
	case *ast.MethodCallExpr:
		return c.checkMethodCall(e, x)
	case *ast.MemberExpr:
		return c.checkMember(e, x)
	case *ast.IndexExpr:
		return c.checkIndex(e, x, c.checkExpr(e, x.X))
	}
	return types.Object
}

func (c *checker) checkName(e env, id *ast.Ident) types.Type {
	sym, ok := c.tbl.LookupStack(e.scope, id.Name.Data)
	if !ok || !c.tbl.Symbol(sym).Kind.IsVariable() {
		c.errorf(diag.NameError, id, "Not a variable: %s", id.Name.Data)
		return types.Object
	}
	return c.tbl.Symbol(c.bind(id, sym)).Type
}

func (c *checker) checkList(e env, x *ast.ListExpr) types.Type {
	if len(x.Elems) == 0 {
		return types.Empty
	}
	elem := c.checkExpr(e, x.Elems[0])
	failed := false
	for _, el := range x.Elems[1:] {
		t := c.checkExpr(e, el)
		joined, ok := c.lat.Join(elem, t)
		if !ok && !failed {
			c.errorf(diag.TypeError, x, "List elements have incompatible types `%s` and `%s`", elem, t)
			failed = true
		}
		elem = joined
	}
	return types.List{Elem: elem}
}

func (c *checker) checkUnary(e env, x *ast.UnaryExpr) types.Type {
	t := c.checkExpr(e, x.X)
	want := types.Int
	if x.Op.Type == lexer.Not {
		want = types.Bool
	}
	if t != want {
		c.errorf(diag.TypeError, x, "Cannot apply operator `%s` on type `%s`", x.Op.Type, t)
	}
	return want
}

func isListLike(t types.Type) bool {
	_, ok := t.(types.List)
	return ok || t == types.Empty
}

func (c *checker) checkBinary(e env, x *ast.BinaryExpr) types.Type {
	left := c.checkExpr(e, x.Left)
	right := c.checkExpr(e, x.Right)
	res, ok := c.binaryType(x.Op.Type, left, right)
	if !ok {
		c.errorf(diag.TypeError, x, "Cannot apply operator `%s` on types `%s` and `%s`", x.Op.Type, left, right)
	}
	return res
}

// binaryType returns the result type of applying op to operands of type
// left and right, and whether the operands are valid for op.
func (c *checker) binaryType(op lexer.TokenType, left, right types.Type) (types.Type, bool) {
	switch op {
	case lexer.Minus, lexer.Times, lexer.IntDiv, lexer.Remainder:
		return types.Int, left == types.Int && right == types.Int
	case lexer.LessThan, lexer.GreaterThan, lexer.LessThanEquals, lexer.GreaterThanEquals:
		return types.Bool, left == types.Int && right == types.Int
	case lexer.And, lexer.Or:
		return types.Bool, left == types.Bool && right == types.Bool
	case lexer.LogicalEquals, lexer.NotEquals:
		return types.Bool, c.lat.IsSubtype(left, right) || c.lat.IsSubtype(right, left)
	case lexer.Is:
		return types.Bool, !types.IsPrimitive(left) && !types.IsPrimitive(right)
	case lexer.Plus:
		switch {
		case left == types.Int || right == types.Int:
			return types.Int, left == right
		case left == types.Str:
			if right != types.Str {
				return types.Object, false
			}
			return types.Str, true
		case isListLike(left) && isListLike(right):
			return c.concatType(left, right)
		}
		return types.Object, false
	}
	return types.Object, false
}

// concatType types list concatenation. Element types join, and an empty
// operand contributes nothing. It reports false when the element types
// have no join.
func (c *checker) concatType(left, right types.Type) (types.Type, bool) {
	le, lok := types.Elem(left)
	re, rok := types.Elem(right)
	switch {
	case !lok && !rok:
		return types.Empty, true
	case !lok:
		return right, true
	case !rok:
		return left, true
	}
	elem, ok := c.lat.Join(le, re)
	if !ok {
		return types.Object, false
	}
	return types.List{Elem: elem}, true
}

func (c *checker) checkIfExpr(e env, x *ast.IfExpr) types.Type {
	cond := c.checkExpr(e, x.Cond)
	then := c.checkExpr(e, x.Then)
	els := c.checkExpr(e, x.Else)
	res, ok := c.lat.Join(then, els)
	switch {
	case cond != types.Bool:
		c.errorf(diag.TypeError, x, "Condition expression cannot be of type `%s`", cond)
	case !ok:
		c.errorf(diag.TypeError, x, "Branches have incompatible types `%s` and `%s`", then, els)
	}
	return res
}

// checkArgs checks args against params. The first offset parameters are
// implicit and reported positions count them.
func (c *checker) checkArgs(e env, call ast.Expr, params []types.Type, offset int, args []ast.Expr) {
	got := lo.Map(args, func(a ast.Expr, _ int) types.Type { return c.checkExpr(e, a) })
	if len(got) != len(params) {
		c.errorf(diag.TypeError, call, "Expected %d arguments; got %d", len(params), len(got))
		return
	}
	for i, t := range got {
		if !c.lat.Assignable(t, params[i]) {
			c.errorf(diag.TypeError, call, "Expected type `%s`; got type `%s` in parameter %d", params[i], t, i+offset)
			return
		}
	}
}

func (c *checker) checkCall(e env, x *ast.CallExpr) types.Type {
	name := x.Func.Name.Data
	id, ok := c.tbl.LookupStack(e.scope, name)
	if !ok {
		return c.notCallable(e, x)
	}
	sym := c.tbl.Symbol(id)
	switch sym.Kind {
	case names.Func:
		c.info.Uses[x.Func] = id
		c.checkArgs(e, x, sym.Sig.Params, 0, x.Args)
		return sym.Sig.Return
	case names.Class:
		c.info.Uses[x.Func] = id
		cls, ok := c.h.Lookup(name)
		if !ok {
			lo.ForEach(x.Args, func(a ast.Expr, _ int) { c.checkExpr(e, a) })
			return types.Object
		}
		init, _ := cls.Method("__init__")
		params := init.Sig.Params
		if len(params) > 0 {
			params = params[1:]
		}
		c.checkArgs(e, x, params, 1, x.Args)
		return types.Named(name)
	}
	return c.notCallable(e, x)
}

func (c *checker) notCallable(e env, x *ast.CallExpr) types.Type {
	lo.ForEach(x.Args, func(a ast.Expr, _ int) { c.checkExpr(e, a) })
	c.errorf(diag.NameError, x.Func, "Not a function or class: %s", x.Func.Name.Data)
	return types.Object
}

// receiver returns the class whose members are visible on values of type
// t, reporting an error on n when there is none.
func (c *checker) receiver(n ast.Node, t types.Type) (*hierarchy.Class, bool) {
	cls, ok := c.h.ClassOf(t)
	if !ok {
		c.errorf(diag.TypeError, n, "Cannot access member of non-class type `%s`", t)
	}
	return cls, ok
}

func (c *checker) checkMethodCall(e env, x *ast.MethodCallExpr) types.Type {
	m := x.Method
	recv := c.checkExpr(e, m.X)
	cls, ok := c.receiver(x, recv)
	if !ok {
		lo.ForEach(x.Args, func(a ast.Expr, _ int) { c.checkExpr(e, a) })
		return types.Object
	}
	method, ok := cls.Method(m.Name.Name.Data)
	if !ok {
		lo.ForEach(x.Args, func(a ast.Expr, _ int) { c.checkExpr(e, a) })
		c.errorf(diag.TypeError, x, "There is no method named `%s` in class `%s`", m.Name.Name.Data, recv)
		return types.Object
	}
	c.info.Uses[m.Name] = method.Symbol
	params := method.Sig.Params
	if len(params) > 0 {
		params = params[1:]
	}
	c.checkArgs(e, x, params, 1, x.Args)
	return method.Sig.Return
}

func (c *checker) checkMember(e env, x *ast.MemberExpr) types.Type {
	recv := c.checkExpr(e, x.X)
	cls, ok := c.receiver(x, recv)
	if !ok {
		return types.Object
	}
	attr, ok := cls.Attr(x.Name.Name.Data)
	if !ok {
		c.errorf(diag.TypeError, x, "There is no attribute named `%s` in class `%s`", x.Name.Name.Data, recv)
		return types.Object
	}
	c.info.Uses[x.Name] = attr.Symbol
	return attr.Type
}

// checkIndex types x given the already checked type of the indexed value.
func (c *checker) checkIndex(e env, x *ast.IndexExpr, t types.Type) types.Type {
	index := c.checkExpr(e, x.Index)
	elem, ok := types.Elem(t)
	if t == types.Str {
		elem, ok = types.Str, true
	}
	switch {
	case !ok:
		c.errorf(diag.TypeError, x, "Cannot index into type `%s`", t)
		return types.Object
	case index != types.Int:
		c.errorf(diag.TypeError, x, "Index is of non-integer type `%s`", index)
	}
	return elem
}
