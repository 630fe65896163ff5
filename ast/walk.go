package ast

// Inspect traverses the tree rooted at n in depth-first order, calling f on
// each node. Children of a node are skipped when f returns false. Type
// annotations are not visited.
func Inspect(n Node, f func(Node) bool) {
	visit(n, func(n Node, rec func(Node)) {
		if f(n) {
			visit1(n, rec)
		}
	})
}

type visitorFunc func(n Node, rec func(Node))

func visit(n Node, f visitorFunc) {
	if n == nil || isNil(n) {
		return
	}
	f(n, func(x Node) { visit(x, f) })
}

func visitAll[T Node](nodes []T, rec func(Node)) {
	for _, n := range nodes {
		rec(n)
	}
}

func visit1(n Node, rec func(Node)) {
	switch n := n.(type) {
	case *Program:
		visitAll(n.Decls, rec)
		visitAll(n.Stmts, rec)
	case *VarDef:
		rec(n.Var)
		rec(n.Value)
	case *TypedVar:
		rec(n.Name)
	case *FuncDef:
		rec(n.Name)
		visitAll(n.Params, rec)
		visitAll(n.Decls, rec)
		visitAll(n.Body, rec)
	case *ClassDef:
		rec(n.Name)
		rec(n.Super)
		visitAll(n.Decls, rec)
	case *GlobalDecl:
		rec(n.Name)
	case *NonlocalDecl:
		rec(n.Name)
	case *ExprStmt:
		rec(n.X)
	case *AssignStmt:
		visitAll(n.Targets, rec)
		rec(n.Value)
	case *IfStmt:
		rec(n.Cond)
		visitAll(n.Then, rec)
		visitAll(n.Else, rec)
	case *WhileStmt:
		rec(n.Cond)
		visitAll(n.Body, rec)
	case *ForStmt:
		rec(n.Var)
		rec(n.Iter)
		visitAll(n.Body, rec)
	case *ReturnStmt:
		if n.Value != nil {
			rec(n.Value)
		}
	case *ListExpr:
		visitAll(n.Elems, rec)
	case *UnaryExpr:
		rec(n.X)
	case *BinaryExpr:
		rec(n.Left)
		rec(n.Right)
	case *IfExpr:
		rec(n.Cond)
		rec(n.Then)
		rec(n.Else)
	case *CallExpr:
		rec(n.Func)
		visitAll(n.Args, rec)
	case *MethodCallExpr:
		rec(n.Method)
		visitAll(n.Args, rec)
	case *MemberExpr:
		rec(n.X)
		rec(n.Name)
	case *IndexExpr:
		rec(n.X)
		rec(n.Index)
	}
}
