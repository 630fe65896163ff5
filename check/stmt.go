package check

import (
	"github.com/smasher164/chocopy/ast"
	"github.com/smasher164/chocopy/diag"
	"github.com/smasher164/chocopy/names"
	"github.com/smasher164/chocopy/types"
)

var noneList = types.List{Elem: types.None}

func (c *checker) checkStmts(e env, stmts []ast.Stmt) {
	for _, s := range stmts {
		c.checkStmt(e, s)
	}
}

func (c *checker) checkStmt(e env, s ast.Stmt) {
	switch s := s.(type) {
	case *ast.ExprStmt:
		c.checkExpr(e, s.X)
	case *ast.AssignStmt:
		c.checkAssign(e, s)
	case *ast.IfStmt:
		c.checkCond(e, s.Cond)
		c.checkStmts(e, s.Then)
		c.checkStmts(e, s.Else)
	case *ast.WhileStmt:
		c.checkCond(e, s.Cond)
		c.checkStmts(e, s.Body)
	case *ast.ForStmt:
		c.checkFor(e, s)
	case *ast.ReturnStmt:
		c.checkReturn(e, s)
	case *ast.PassStmt, *ast.Illegal:
	}
}

func (c *checker) checkCond(e env, cond ast.Expr) {
	if t := c.checkExpr(e, cond); t != types.Bool {
		c.errorf(diag.TypeError, cond, "Condition expression cannot be of type `%s`", t)
	}
}

// checkAssign checks every target of a possibly chained assignment against
// the type of the value. Mismatches are reported once per statement.
func (c *checker) checkAssign(e env, s *ast.AssignStmt) {
	value := c.checkExpr(e, s.Value)
	reported := false
	for _, target := range s.Targets {
		want, ok := c.checkTarget(e, target)
		if ok && !reported && !c.lat.Assignable(value, want) {
			c.errorf(diag.TypeError, s, "Expected type `%s`; got type `%s`", want, value)
			reported = true
		}
	}
	if len(s.Targets) > 1 && value == noneList && !reported {
		c.errorf(diag.TypeError, s, "Right-hand side of multiple assignment may not be [<None>]")
	}
}

// checkTarget types an assignment target. It reports false when the target
// is invalid and an error has already been reported for it.
func (c *checker) checkTarget(e env, target ast.Expr) (types.Type, bool) {
	switch target := target.(type) {
	case *ast.Ident:
		return c.checkAssignableName(e, target)
	case *ast.IndexExpr:
		t := c.checkExpr(e, target.X)
		if t == types.Str {
			c.checkExpr(e, target.Index)
			c.info.Types[target] = types.Str
			c.errorf(diag.TypeError, target, "`str` is not a list type")
			return nil, false
		}
		elem := c.checkIndex(e, target, t)
		c.info.Types[target] = elem
		return elem, true
	}
	return c.checkExpr(e, target), true
}

// checkAssignableName resolves a name being assigned. Only variables
// declared in the current scope, directly or through global and nonlocal
// declarations, may be assigned.
func (c *checker) checkAssignableName(e env, id *ast.Ident) (types.Type, bool) {
	name := id.Name.Data
	if sym, ok := c.tbl.LookupLocal(e.scope, name); ok && c.tbl.Symbol(sym).Kind.IsVariable() {
		c.bind(id, sym)
		return c.info.Types[id], true
	}
	if sym, ok := c.tbl.LookupStack(e.scope, name); ok && c.tbl.Symbol(sym).Kind.IsVariable() {
		c.bind(id, sym)
		c.errorf(diag.NameError, id, "Cannot assign to variable that is not explicitly declared in this scope: %s", name)
		return nil, false
	}
	c.info.Types[id] = types.Object
	c.errorf(diag.NameError, id, "Not a variable: %s", name)
	return nil, false
}

func (c *checker) checkFor(e env, s *ast.ForStmt) {
	iter := c.checkExpr(e, s.Iter)
	elem, ok := types.Elem(iter)
	if iter == types.Str {
		elem, ok = types.Str, true
	}
	if !ok {
		c.errorf(diag.TypeError, s.Iter, "Cannot iterate over value of type `%s`", iter)
	}
	want, assignable := c.checkAssignableName(e, s.Var)
	if ok && assignable && !c.lat.Assignable(elem, want) {
		c.errorf(diag.TypeError, s.Var, "Expected type `%s`; got type `%s`", want, elem)
	}
	c.checkStmts(e, s.Body)
}

func (c *checker) checkReturn(e env, s *ast.ReturnStmt) {
	got := types.None
	if s.Value != nil {
		got = c.checkExpr(e, s.Value)
	}
	if e.ret == nil {
		c.errorf(diag.TypeError, s, "Return statement cannot appear at the top level")
		return
	}
	if c.lat.Assignable(got, e.ret) {
		return
	}
	if s.Value == nil {
		c.errorf(diag.TypeError, s, "Expected type `%s`; got `None`", e.ret)
		return
	}
	c.errorf(diag.TypeError, s, "Expected type `%s`; got type `%s`", e.ret, got)
}

// bind records the symbol an identifier refers to, seeing through global
// and nonlocal declarations, and types the identifier as that symbol.
func (c *checker) bind(id *ast.Ident, sym names.SymbolID) names.SymbolID {
	target := c.tbl.Resolve(sym)
	c.info.Uses[id] = target
	if t := c.tbl.Symbol(target).Type; t != nil {
		c.info.Types[id] = t
	}
	return target
}
