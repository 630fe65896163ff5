package ast

import (
	"fmt"
	"strings"

	"github.com/smasher164/chocopy/lexer"
)

type Node interface {
	Span() lexer.Span
	ASTString(depth int) string
}

// Expr is a node that produces a value. The checker assigns every Expr a type.
type Expr interface {
	Node
	isExpr()
}

type Stmt interface {
	Node
	isStmt()
}

// Decl is a declaration in a program, class, or function body.
type Decl interface {
	Node
	DeclName() *Ident
	isDecl()
}

// TypeAnnotation is a parsed but unresolved type expression.
type TypeAnnotation interface {
	Node
	isTypeAnnotation()
}

var (
	_ Node = (*Program)(nil)

	_ Decl = (*VarDef)(nil)
	_ Decl = (*FuncDef)(nil)
	_ Decl = (*ClassDef)(nil)
	_ Decl = (*GlobalDecl)(nil)
	_ Decl = (*NonlocalDecl)(nil)

	_ TypeAnnotation = (*ClassType)(nil)
	_ TypeAnnotation = (*ListType)(nil)

	_ Stmt = (*ExprStmt)(nil)
	_ Stmt = (*AssignStmt)(nil)
	_ Stmt = (*IfStmt)(nil)
	_ Stmt = (*WhileStmt)(nil)
	_ Stmt = (*ForStmt)(nil)
	_ Stmt = (*ReturnStmt)(nil)
	_ Stmt = (*PassStmt)(nil)
	_ Stmt = (*Illegal)(nil)

	_ Expr = (*Ident)(nil)
	_ Expr = (*IntLit)(nil)
	_ Expr = (*BoolLit)(nil)
	_ Expr = (*StrLit)(nil)
	_ Expr = (*NoneLit)(nil)
	_ Expr = (*ListExpr)(nil)
	_ Expr = (*UnaryExpr)(nil)
	_ Expr = (*BinaryExpr)(nil)
	_ Expr = (*IfExpr)(nil)
	_ Expr = (*CallExpr)(nil)
	_ Expr = (*MethodCallExpr)(nil)
	_ Expr = (*MemberExpr)(nil)
	_ Expr = (*IndexExpr)(nil)
	_ Expr = (*Illegal)(nil)
)

func spanOf(n any) lexer.Span {
	if n == nil {
		return lexer.Span{}
	}
	switch n := n.(type) {
	case lexer.Token:
		return n.Span
	case Node:
		if isNil(n) {
			return lexer.Span{}
		}
		return n.Span()
	}
	return lexer.Span{}
}

func isNil(n Node) bool {
	switch n := n.(type) {
	case *Ident:
		return n == nil
	case *TypedVar:
		return n == nil
	case *ClassType:
		return n == nil
	case *ListType:
		return n == nil
	}
	return false
}

func indent(depth int) string {
	return fmt.Sprintf("%*s", depth*2, "")
}

func astString(n Node, depth int) string {
	if n == nil || isNil(n) {
		return "<nil>"
	}
	return n.ASTString(depth)
}

func listString[T Node](depth int, nodes []T) string {
	if len(nodes) == 0 {
		return "[]"
	}
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString("\n")
		sb.WriteString(indent(depth + 1))
		sb.WriteString(n.ASTString(depth + 1))
	}
	return sb.String()
}

func PrintAST(root Node) {
	fmt.Println(root.ASTString(0))
}

// Program is a compilation unit: declarations followed by top-level statements.
type Program struct {
	Decls []Decl
	Stmts []Stmt
	EOF   lexer.Token
}

func (p *Program) ASTString(depth int) string {
	return fmt.Sprintf("Program\n%sDecls: %s\n%sStmts: %s",
		indent(depth+1), listString(depth+1, p.Decls),
		indent(depth+1), listString(depth+1, p.Stmts))
}

func (p *Program) Span() lexer.Span {
	span := p.EOF.Span
	if len(p.Decls) > 0 {
		span = span.Add(p.Decls[0].Span())
	}
	if len(p.Stmts) > 0 {
		span = span.Add(p.Stmts[0].Span())
	}
	return span
}

type Ident struct {
	Name lexer.Token
}

func (id *Ident) ASTString(depth int) string {
	return id.Name.String()
}

func (id *Ident) Span() lexer.Span {
	return id.Name.Span
}

func (id *Ident) isExpr() {}

// Illegal stands in for a statement or expression the parser could not make
// sense of.
type Illegal struct {
	Pos lexer.Span
	Msg string
}

func (ill *Illegal) ASTString(depth int) string {
	return fmt.Sprintf("Illegal %s %q", ill.Pos, ill.Msg)
}

func (ill *Illegal) Span() lexer.Span {
	return ill.Pos
}

func (ill *Illegal) isExpr() {}
func (ill *Illegal) isStmt() {}

// Type annotations

type ClassType struct {
	Name   lexer.Token // Data holds the class name, quotes removed
	Quoted bool
}

func (ct *ClassType) ASTString(depth int) string {
	if ct.Quoted {
		return fmt.Sprintf("ClassType %q", ct.Name.Data)
	}
	return fmt.Sprintf("ClassType %s", ct.Name.Data)
}

func (ct *ClassType) Span() lexer.Span {
	return ct.Name.Span
}

func (ct *ClassType) isTypeAnnotation() {}

type ListType struct {
	Lbrack lexer.Token
	Elem   TypeAnnotation
	Rbrack lexer.Token
}

func (lt *ListType) ASTString(depth int) string {
	return fmt.Sprintf("ListType\n%sElem: %s", indent(depth+1), astString(lt.Elem, depth+1))
}

func (lt *ListType) Span() lexer.Span {
	return lt.Lbrack.Span.Add(lt.Rbrack.Span)
}

func (lt *ListType) isTypeAnnotation() {}

// Declarations

type TypedVar struct {
	Name *Ident
	Type TypeAnnotation
}

func (tv *TypedVar) ASTString(depth int) string {
	return fmt.Sprintf("TypedVar\n%sName: %s\n%sType: %s",
		indent(depth+1), astString(tv.Name, depth+1),
		indent(depth+1), astString(tv.Type, depth+1))
}

func (tv *TypedVar) Span() lexer.Span {
	return spanOf(tv.Name).Add(spanOf(tv.Type))
}

type VarDef struct {
	Var   *TypedVar
	Value Expr
}

func (v *VarDef) ASTString(depth int) string {
	return fmt.Sprintf("VarDef\n%sVar: %s\n%sValue: %s",
		indent(depth+1), astString(v.Var, depth+1),
		indent(depth+1), astString(v.Value, depth+1))
}

func (v *VarDef) Span() lexer.Span {
	return spanOf(v.Var).Add(spanOf(v.Value))
}

func (v *VarDef) DeclName() *Ident { return v.Var.Name }
func (v *VarDef) isDecl()          {}

type FuncDef struct {
	Def    lexer.Token
	Name   *Ident
	Params []*TypedVar
	Return TypeAnnotation // nil when the function returns None
	Decls  []Decl
	Body   []Stmt
}

func (f *FuncDef) ASTString(depth int) string {
	return fmt.Sprintf("FuncDef\n%sName: %s\n%sParams: %s\n%sReturn: %s\n%sDecls: %s\n%sBody: %s",
		indent(depth+1), astString(f.Name, depth+1),
		indent(depth+1), listString(depth+1, f.Params),
		indent(depth+1), astString(f.Return, depth+1),
		indent(depth+1), listString(depth+1, f.Decls),
		indent(depth+1), listString(depth+1, f.Body))
}

func (f *FuncDef) Span() lexer.Span {
	span := f.Def.Span.Add(spanOf(f.Name))
	if n := len(f.Body); n > 0 {
		span = span.Add(f.Body[n-1].Span())
	}
	return span
}

func (f *FuncDef) DeclName() *Ident { return f.Name }
func (f *FuncDef) isDecl()          {}

type ClassDef struct {
	Class lexer.Token
	Name  *Ident
	Super *Ident
	Decls []Decl
}

func (c *ClassDef) ASTString(depth int) string {
	return fmt.Sprintf("ClassDef\n%sName: %s\n%sSuper: %s\n%sDecls: %s",
		indent(depth+1), astString(c.Name, depth+1),
		indent(depth+1), astString(c.Super, depth+1),
		indent(depth+1), listString(depth+1, c.Decls))
}

func (c *ClassDef) Span() lexer.Span {
	span := c.Class.Span.Add(spanOf(c.Super))
	if n := len(c.Decls); n > 0 {
		span = span.Add(c.Decls[n-1].Span())
	}
	return span
}

func (c *ClassDef) DeclName() *Ident { return c.Name }
func (c *ClassDef) isDecl()          {}

type GlobalDecl struct {
	Global lexer.Token
	Name   *Ident
}

func (g *GlobalDecl) ASTString(depth int) string {
	return fmt.Sprintf("GlobalDecl %s", astString(g.Name, depth+1))
}

func (g *GlobalDecl) Span() lexer.Span {
	return g.Global.Span.Add(spanOf(g.Name))
}

func (g *GlobalDecl) DeclName() *Ident { return g.Name }
func (g *GlobalDecl) isDecl()          {}

type NonlocalDecl struct {
	Nonlocal lexer.Token
	Name     *Ident
}

func (n *NonlocalDecl) ASTString(depth int) string {
	return fmt.Sprintf("NonlocalDecl %s", astString(n.Name, depth+1))
}

func (n *NonlocalDecl) Span() lexer.Span {
	return n.Nonlocal.Span.Add(spanOf(n.Name))
}

func (n *NonlocalDecl) DeclName() *Ident { return n.Name }
func (n *NonlocalDecl) isDecl()          {}

// Statements

type ExprStmt struct {
	X Expr
}

func (s *ExprStmt) ASTString(depth int) string {
	return fmt.Sprintf("ExprStmt\n%s%s", indent(depth+1), astString(s.X, depth+1))
}

func (s *ExprStmt) Span() lexer.Span { return spanOf(s.X) }
func (s *ExprStmt) isStmt()          {}

// AssignStmt is a possibly chained assignment: Targets[0] = Targets[1] = ... = Value.
type AssignStmt struct {
	Targets []Expr
	Value   Expr
}

func (s *AssignStmt) ASTString(depth int) string {
	return fmt.Sprintf("AssignStmt\n%sTargets: %s\n%sValue: %s",
		indent(depth+1), listString(depth+1, s.Targets),
		indent(depth+1), astString(s.Value, depth+1))
}

func (s *AssignStmt) Span() lexer.Span {
	span := spanOf(s.Value)
	if len(s.Targets) > 0 {
		span = span.Add(s.Targets[0].Span())
	}
	return span
}

func (s *AssignStmt) isStmt() {}

// IfStmt holds elif chains as a nested IfStmt in Else.
type IfStmt struct {
	If   lexer.Token
	Cond Expr
	Then []Stmt
	Else []Stmt
}

func (s *IfStmt) ASTString(depth int) string {
	return fmt.Sprintf("IfStmt\n%sCond: %s\n%sThen: %s\n%sElse: %s",
		indent(depth+1), astString(s.Cond, depth+1),
		indent(depth+1), listString(depth+1, s.Then),
		indent(depth+1), listString(depth+1, s.Else))
}

func (s *IfStmt) Span() lexer.Span {
	span := s.If.Span.Add(spanOf(s.Cond))
	if n := len(s.Else); n > 0 {
		return span.Add(s.Else[n-1].Span())
	}
	if n := len(s.Then); n > 0 {
		return span.Add(s.Then[n-1].Span())
	}
	return span
}

func (s *IfStmt) isStmt() {}

type WhileStmt struct {
	While lexer.Token
	Cond  Expr
	Body  []Stmt
}

func (s *WhileStmt) ASTString(depth int) string {
	return fmt.Sprintf("WhileStmt\n%sCond: %s\n%sBody: %s",
		indent(depth+1), astString(s.Cond, depth+1),
		indent(depth+1), listString(depth+1, s.Body))
}

func (s *WhileStmt) Span() lexer.Span {
	span := s.While.Span.Add(spanOf(s.Cond))
	if n := len(s.Body); n > 0 {
		span = span.Add(s.Body[n-1].Span())
	}
	return span
}

func (s *WhileStmt) isStmt() {}

type ForStmt struct {
	For  lexer.Token
	Var  *Ident
	Iter Expr
	Body []Stmt
}

func (s *ForStmt) ASTString(depth int) string {
	return fmt.Sprintf("ForStmt\n%sVar: %s\n%sIter: %s\n%sBody: %s",
		indent(depth+1), astString(s.Var, depth+1),
		indent(depth+1), astString(s.Iter, depth+1),
		indent(depth+1), listString(depth+1, s.Body))
}

func (s *ForStmt) Span() lexer.Span {
	span := s.For.Span.Add(spanOf(s.Iter))
	if n := len(s.Body); n > 0 {
		span = span.Add(s.Body[n-1].Span())
	}
	return span
}

func (s *ForStmt) isStmt() {}

type ReturnStmt struct {
	Return lexer.Token
	Value  Expr // nil for a bare return
}

func (s *ReturnStmt) ASTString(depth int) string {
	return fmt.Sprintf("ReturnStmt\n%sValue: %s", indent(depth+1), astString(s.Value, depth+1))
}

func (s *ReturnStmt) Span() lexer.Span { return s.Return.Span.Add(spanOf(s.Value)) }
func (s *ReturnStmt) isStmt()          {}

type PassStmt struct {
	Pass lexer.Token
}

func (s *PassStmt) ASTString(depth int) string { return "PassStmt" }
func (s *PassStmt) Span() lexer.Span           { return s.Pass.Span }
func (s *PassStmt) isStmt()                    {}

// Expressions

type IntLit struct {
	Tok   lexer.Token
	Value int32
}

func (e *IntLit) ASTString(depth int) string { return fmt.Sprintf("IntLit %d", e.Value) }
func (e *IntLit) Span() lexer.Span           { return e.Tok.Span }
func (e *IntLit) isExpr()                    {}

type BoolLit struct {
	Tok   lexer.Token
	Value bool
}

func (e *BoolLit) ASTString(depth int) string { return fmt.Sprintf("BoolLit %t", e.Value) }
func (e *BoolLit) Span() lexer.Span           { return e.Tok.Span }
func (e *BoolLit) isExpr()                    {}

type StrLit struct {
	Tok   lexer.Token
	Value string
}

func (e *StrLit) ASTString(depth int) string { return fmt.Sprintf("StrLit %q", e.Value) }
func (e *StrLit) Span() lexer.Span           { return e.Tok.Span }
func (e *StrLit) isExpr()                    {}

type NoneLit struct {
	Tok lexer.Token
}

func (e *NoneLit) ASTString(depth int) string { return "NoneLit" }
func (e *NoneLit) Span() lexer.Span           { return e.Tok.Span }
func (e *NoneLit) isExpr()                    {}

type ListExpr struct {
	Lbrack lexer.Token
	Elems  []Expr
	Rbrack lexer.Token
}

func (e *ListExpr) ASTString(depth int) string {
	return fmt.Sprintf("ListExpr\n%sElems: %s", indent(depth+1), listString(depth+1, e.Elems))
}

func (e *ListExpr) Span() lexer.Span { return e.Lbrack.Span.Add(e.Rbrack.Span) }
func (e *ListExpr) isExpr()          {}

type UnaryExpr struct {
	Op lexer.Token
	X  Expr
}

func (e *UnaryExpr) ASTString(depth int) string {
	return fmt.Sprintf("UnaryExpr\n%sOp: %s\n%sX: %s",
		indent(depth+1), e.Op.Type,
		indent(depth+1), astString(e.X, depth+1))
}

func (e *UnaryExpr) Span() lexer.Span { return e.Op.Span.Add(spanOf(e.X)) }
func (e *UnaryExpr) isExpr()          {}

type BinaryExpr struct {
	Left  Expr
	Op    lexer.Token
	Right Expr
}

func (e *BinaryExpr) ASTString(depth int) string {
	return fmt.Sprintf(
		"BinaryExpr\n%sLeft: %s\n%sOp: %s\n%sRight: %s",
		indent(depth+1), astString(e.Left, depth+1),
		indent(depth+1), e.Op.Type,
		indent(depth+1), astString(e.Right, depth+1))
}

func (e *BinaryExpr) Span() lexer.Span { return spanOf(e.Left).Add(spanOf(e.Right)) }
func (e *BinaryExpr) isExpr()          {}

// IfExpr is the conditional expression Then if Cond else Else.
type IfExpr struct {
	Then Expr
	Cond Expr
	Else Expr
}

func (e *IfExpr) ASTString(depth int) string {
	return fmt.Sprintf("IfExpr\n%sCond: %s\n%sThen: %s\n%sElse: %s",
		indent(depth+1), astString(e.Cond, depth+1),
		indent(depth+1), astString(e.Then, depth+1),
		indent(depth+1), astString(e.Else, depth+1))
}

func (e *IfExpr) Span() lexer.Span { return spanOf(e.Then).Add(spanOf(e.Else)) }
func (e *IfExpr) isExpr()          {}

// CallExpr calls a global function, a nested function, or a class constructor.
type CallExpr struct {
	Func   *Ident
	Args   []Expr
	Rparen lexer.Token
}

func (e *CallExpr) ASTString(depth int) string {
	return fmt.Sprintf("CallExpr\n%sFunc: %s\n%sArgs: %s",
		indent(depth+1), astString(e.Func, depth+1),
		indent(depth+1), listString(depth+1, e.Args))
}

func (e *CallExpr) Span() lexer.Span { return spanOf(e.Func).Add(e.Rparen.Span) }
func (e *CallExpr) isExpr()          {}

type MethodCallExpr struct {
	Method *MemberExpr
	Args   []Expr
	Rparen lexer.Token
}

func (e *MethodCallExpr) ASTString(depth int) string {
	return fmt.Sprintf("MethodCallExpr\n%sMethod: %s\n%sArgs: %s",
		indent(depth+1), astString(e.Method, depth+1),
		indent(depth+1), listString(depth+1, e.Args))
}

func (e *MethodCallExpr) Span() lexer.Span { return spanOf(e.Method).Add(e.Rparen.Span) }
func (e *MethodCallExpr) isExpr()          {}

type MemberExpr struct {
	X    Expr
	Name *Ident
}

func (e *MemberExpr) ASTString(depth int) string {
	return fmt.Sprintf("MemberExpr\n%sX: %s\n%sName: %s",
		indent(depth+1), astString(e.X, depth+1),
		indent(depth+1), astString(e.Name, depth+1))
}

func (e *MemberExpr) Span() lexer.Span { return spanOf(e.X).Add(spanOf(e.Name)) }
func (e *MemberExpr) isExpr()          {}

type IndexExpr struct {
	X      Expr
	Index  Expr
	Rbrack lexer.Token
}

func (e *IndexExpr) ASTString(depth int) string {
	return fmt.Sprintf("IndexExpr\n%sX: %s\n%sIndex: %s",
		indent(depth+1), astString(e.X, depth+1),
		indent(depth+1), astString(e.Index, depth+1))
}

func (e *IndexExpr) Span() lexer.Span { return spanOf(e.X).Add(e.Rbrack.Span) }
func (e *IndexExpr) isExpr()          {}
