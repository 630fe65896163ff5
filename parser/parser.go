package parser

import (
	"fmt"
	"io/fs"
	"strconv"

	"github.com/smasher164/chocopy/ast"
	"github.com/smasher164/chocopy/diag"
	"github.com/smasher164/chocopy/lexer"
)

const debug = false

type parser struct {
	l      Lexer
	tok    lexer.Token
	buf    []lexer.Token
	indent int
	errs   diag.List
}

type Lexer interface {
	Next() lexer.Token
}

// bailout unwinds the parse of a single declaration or statement after a
// syntax error has been recorded.
type bailout struct{}

func (p *parser) trace(msg string) func() {
	if debug {
		fmt.Printf("%*s%s\n", p.indent*2, "", msg)
		p.indent++
		return func() {
			p.indent--
		}
	}
	return func() {}
}

// ParseFile parses a ChocoPy source file. Syntax errors are returned as a
// diag.List alongside the partial program.
func ParseFile(fsys fs.FS, filename string) (*ast.Program, error) {
	l, err := lexer.NewLexer(fsys, filename)
	if err != nil {
		return nil, err
	}
	return parse(l)
}

func Parse(src string) (*ast.Program, error) {
	return parse(lexer.New(src))
}

func parse(l Lexer) (*ast.Program, error) {
	p := &parser{l: l}
	prog := p.parseProgram()
	return prog, p.errs.Err()
}

func (p *parser) next() {
	for {
		if len(p.buf) > 0 {
			p.tok = p.buf[0]
			p.buf = p.buf[1:]
		} else {
			p.tok = p.l.Next()
		}
		if p.tok.Type != lexer.Illegal {
			return
		}
		p.report(p.tok.Span, p.tok.Data)
	}
}

func (p *parser) peek() lexer.Token {
	for len(p.buf) == 0 {
		tok := p.l.Next()
		if tok.Type == lexer.Illegal {
			p.report(tok.Span, tok.Data)
			continue
		}
		p.buf = append(p.buf, tok)
	}
	return p.buf[0]
}

// report records a syntax error, keeping at most one per line.
func (p *parser) report(span lexer.Span, msg string) {
	if n := len(p.errs); n > 0 && p.errs[n-1].Span.Start.Line == span.Start.Line {
		return
	}
	p.errs.Add(diag.New(diag.SyntaxError, span, "%s", msg))
}

func (p *parser) errorf(format string, args ...any) {
	p.report(p.tok.Span, fmt.Sprintf(format, args...))
	panic(bailout{})
}

func (p *parser) unexpected(what string) {
	switch p.tok.Type {
	case lexer.Ident, lexer.Number:
		p.errorf("expected %s, found %s %s", what, p.tok.Type, p.tok.Data)
	case lexer.Reserved:
		p.errorf("expected %s, found reserved keyword %s", what, p.tok.Data)
	default:
		p.errorf("expected %s, found %s", what, p.tok.Type)
	}
}

func (p *parser) expect(ttype lexer.TokenType) lexer.Token {
	if p.tok.Type != ttype {
		p.unexpected(fmt.Sprintf("%q", ttype.String()))
	}
	tok := p.tok
	p.next()
	return tok
}

// sync skips the remainder of the current logical line along with any
// indented block that follows it.
func (p *parser) sync() {
	depth := 0
	for p.tok.Type != lexer.EOF {
		switch p.tok.Type {
		case lexer.Indent:
			depth++
		case lexer.Dedent:
			if depth == 0 {
				return
			}
			depth--
			if depth == 0 {
				p.next()
				return
			}
		case lexer.Newline:
			if depth == 0 {
				p.next()
				if p.tok.Type != lexer.Indent {
					return
				}
				continue
			}
		}
		p.next()
	}
}

// recovered resumes parsing after a bailout and returns a placeholder
// covering the abandoned construct.
func (p *parser) recovered(r any, start lexer.Token) *ast.Illegal {
	if _, ok := r.(bailout); !ok {
		panic(r)
	}
	msg := "syntax error"
	if n := len(p.errs); n > 0 {
		msg = p.errs[n-1].Msg
	}
	p.sync()
	return &ast.Illegal{Pos: start.Span, Msg: msg}
}

// Program = { VarDef | FuncDef | ClassDef } { Stmt } EOF
func (p *parser) parseProgram() *ast.Program {
	defer p.trace("parseProgram")()
	var prog ast.Program
	p.next()
	for p.beginsDecl(false) {
		if d := p.parseDecl(false); d != nil {
			prog.Decls = append(prog.Decls, d)
		}
	}
	for p.tok.Type != lexer.EOF {
		if p.tok.Type == lexer.Dedent {
			p.report(p.tok.Span, "unexpected dedent")
			p.next()
			continue
		}
		prog.Stmts = append(prog.Stmts, p.parseStmt())
	}
	prog.EOF = p.tok
	return &prog
}

func (p *parser) beginsVarDef() bool {
	return p.tok.Type == lexer.Ident && p.peek().Type == lexer.Colon
}

func (p *parser) beginsDecl(inFunc bool) bool {
	switch p.tok.Type {
	case lexer.Class:
		return !inFunc
	case lexer.Def:
		return true
	case lexer.Global, lexer.Nonlocal:
		return inFunc
	}
	return p.beginsVarDef()
}

func (p *parser) parseDecl(inFunc bool) (d ast.Decl) {
	defer p.trace("parseDecl")()
	start := p.tok
	defer func() {
		if r := recover(); r != nil {
			p.recovered(r, start)
			d = nil
		}
	}()
	switch p.tok.Type {
	case lexer.Class:
		return p.parseClassDef()
	case lexer.Def:
		return p.parseFuncDef()
	case lexer.Global:
		tok := p.tok
		p.next()
		d = &ast.GlobalDecl{Global: tok, Name: p.parseIdent()}
		p.expect(lexer.Newline)
		return d
	case lexer.Nonlocal:
		tok := p.tok
		p.next()
		d = &ast.NonlocalDecl{Nonlocal: tok, Name: p.parseIdent()}
		p.expect(lexer.Newline)
		return d
	}
	return p.parseVarDef()
}

func (p *parser) parseIdent() *ast.Ident {
	if p.tok.Type != lexer.Ident {
		p.unexpected("identifier")
	}
	id := &ast.Ident{Name: p.tok}
	p.next()
	return id
}

// TypedVar = ident ":" Type
func (p *parser) parseTypedVar() *ast.TypedVar {
	defer p.trace("parseTypedVar")()
	name := p.parseIdent()
	p.expect(lexer.Colon)
	return &ast.TypedVar{Name: name, Type: p.parseType()}
}

// Type = ident | string | "[" Type "]"
func (p *parser) parseType() ast.TypeAnnotation {
	defer p.trace("parseType")()
	switch tok := p.tok; tok.Type {
	case lexer.Ident:
		p.next()
		return &ast.ClassType{Name: tok}
	case lexer.String:
		p.next()
		return &ast.ClassType{Name: tok, Quoted: true}
	case lexer.LeftBracket:
		p.next()
		elem := p.parseType()
		return &ast.ListType{Lbrack: tok, Elem: elem, Rbrack: p.expect(lexer.RightBracket)}
	}
	p.unexpected("type")
	return nil
}

// VarDef = TypedVar "=" Literal NEWLINE
func (p *parser) parseVarDef() *ast.VarDef {
	defer p.trace("parseVarDef")()
	v := &ast.VarDef{Var: p.parseTypedVar()}
	p.expect(lexer.Equals)
	v.Value = p.parseLiteral()
	p.expect(lexer.Newline)
	return v
}

func (p *parser) parseLiteral() ast.Expr {
	switch p.tok.Type {
	case lexer.None, lexer.True, lexer.False, lexer.Number, lexer.String:
		return p.parseOperand()
	}
	p.unexpected("literal")
	return nil
}

// ClassDef = "class" ident "(" ident ")" ":" NEWLINE INDENT ClassBody DEDENT
func (p *parser) parseClassDef() *ast.ClassDef {
	defer p.trace("parseClassDef")()
	c := &ast.ClassDef{Class: p.tok}
	p.next()
	c.Name = p.parseIdent()
	p.expect(lexer.LeftParen)
	c.Super = p.parseIdent()
	p.expect(lexer.RightParen)
	p.expect(lexer.Colon)
	p.expect(lexer.Newline)
	p.expect(lexer.Indent)
	for p.tok.Type != lexer.Dedent && p.tok.Type != lexer.EOF {
		switch {
		case p.tok.Type == lexer.Pass:
			p.next()
			p.expect(lexer.Newline)
		case p.tok.Type == lexer.Def || p.beginsVarDef():
			if d := p.parseDecl(false); d != nil {
				c.Decls = append(c.Decls, d)
			}
		default:
			p.report(p.tok.Span, "expected attribute or method declaration")
			p.sync()
		}
	}
	p.expect(lexer.Dedent)
	return c
}

// FuncDef = "def" ident "(" [ TypedVar { "," TypedVar } ] ")" [ "->" Type ] ":" NEWLINE INDENT FuncBody DEDENT
func (p *parser) parseFuncDef() *ast.FuncDef {
	defer p.trace("parseFuncDef")()
	f := &ast.FuncDef{Def: p.tok}
	p.next()
	f.Name = p.parseIdent()
	p.expect(lexer.LeftParen)
	for p.tok.Type != lexer.RightParen {
		f.Params = append(f.Params, p.parseTypedVar())
		if p.tok.Type != lexer.Comma {
			break
		}
		p.next()
	}
	p.expect(lexer.RightParen)
	if p.tok.Type == lexer.RightArrow {
		p.next()
		f.Return = p.parseType()
	}
	p.expect(lexer.Colon)
	p.expect(lexer.Newline)
	p.expect(lexer.Indent)
	for p.beginsDecl(true) {
		if d := p.parseDecl(true); d != nil {
			f.Decls = append(f.Decls, d)
		}
	}
	f.Body = p.parseStmts()
	if len(f.Body) == 0 {
		p.report(p.tok.Span, "expected statement in function body")
	}
	p.expect(lexer.Dedent)
	return f
}

func (p *parser) parseStmts() []ast.Stmt {
	var stmts []ast.Stmt
	for p.tok.Type != lexer.Dedent && p.tok.Type != lexer.EOF {
		stmts = append(stmts, p.parseStmt())
	}
	return stmts
}

// Block = ":" NEWLINE INDENT Stmt { Stmt } DEDENT
func (p *parser) parseBlock() []ast.Stmt {
	defer p.trace("parseBlock")()
	p.expect(lexer.Colon)
	p.expect(lexer.Newline)
	p.expect(lexer.Indent)
	body := p.parseStmts()
	p.expect(lexer.Dedent)
	return body
}

func (p *parser) parseStmt() (s ast.Stmt) {
	defer p.trace("parseStmt")()
	start := p.tok
	defer func() {
		if r := recover(); r != nil {
			s = p.recovered(r, start)
		}
	}()
	switch p.tok.Type {
	case lexer.If:
		return p.parseIf()
	case lexer.While:
		w := &ast.WhileStmt{While: p.tok}
		p.next()
		w.Cond = p.parseExpr()
		w.Body = p.parseBlock()
		return w
	case lexer.For:
		f := &ast.ForStmt{For: p.tok}
		p.next()
		f.Var = p.parseIdent()
		p.expect(lexer.In)
		f.Iter = p.parseExpr()
		f.Body = p.parseBlock()
		return f
	case lexer.Indent:
		p.errorf("unexpected indent")
	case lexer.Def, lexer.Class, lexer.Global, lexer.Nonlocal:
		p.errorf("declarations must precede statements")
	}
	s = p.parseSimpleStmt()
	p.expect(lexer.Newline)
	return s
}

// If = "if" Expr Block { "elif" Expr Block } [ "else" Block ]
func (p *parser) parseIf() *ast.IfStmt {
	defer p.trace("parseIf")()
	s := &ast.IfStmt{If: p.tok}
	p.next()
	s.Cond = p.parseExpr()
	s.Then = p.parseBlock()
	switch p.tok.Type {
	case lexer.Elif:
		s.Else = []ast.Stmt{p.parseIf()}
	case lexer.Else:
		p.next()
		s.Else = p.parseBlock()
	}
	return s
}

func (p *parser) parseSimpleStmt() ast.Stmt {
	defer p.trace("parseSimpleStmt")()
	switch tok := p.tok; tok.Type {
	case lexer.Pass:
		p.next()
		return &ast.PassStmt{Pass: tok}
	case lexer.Return:
		p.next()
		r := &ast.ReturnStmt{Return: tok}
		if p.tok.BeginsExpr() {
			r.Value = p.parseExpr()
		}
		return r
	}
	x := p.parseExpr()
	if p.tok.Type != lexer.Equals {
		return &ast.ExprStmt{X: x}
	}
	assign := &ast.AssignStmt{}
	for p.tok.Type == lexer.Equals {
		switch x.(type) {
		case *ast.Ident, *ast.MemberExpr, *ast.IndexExpr:
		default:
			p.report(x.Span(), "cannot assign to expression")
			panic(bailout{})
		}
		assign.Targets = append(assign.Targets, x)
		p.next()
		x = p.parseExpr()
	}
	assign.Value = x
	return assign
}

// Expr = OrExpr [ "if" OrExpr "else" Expr ]
func (p *parser) parseExpr() ast.Expr {
	defer p.trace("parseExpr")()
	x := p.parseBinaryExpr(lexer.MinPrec)
	if p.tok.Type != lexer.If {
		return x
	}
	p.next()
	cond := p.parseBinaryExpr(lexer.MinPrec)
	p.expect(lexer.Else)
	return &ast.IfExpr{Then: x, Cond: cond, Else: p.parseExpr()}
}

const notPrec = 3

func (p *parser) parseBinaryExpr(minPrec int) ast.Expr {
	defer p.trace("parseBinaryExpr")()
	res := p.parseNotExpr(minPrec)
	lastCmp := false
	for p.tok.IsBinaryOp() && p.tok.Prec() >= minPrec {
		op := p.tok
		if op.IsComparison() && lastCmp {
			p.errorf("comparison operators cannot be chained")
		}
		lastCmp = op.IsComparison()
		p.next()
		res = &ast.BinaryExpr{Left: res, Op: op, Right: p.parseBinaryExpr(op.Prec() + 1)}
	}
	return res
}

// not binds looser than comparisons and tighter than and.
func (p *parser) parseNotExpr(minPrec int) ast.Expr {
	if p.tok.Type != lexer.Not {
		return p.parseUnaryExpr()
	}
	if minPrec > notPrec {
		p.unexpected("expression")
	}
	op := p.tok
	p.next()
	return &ast.UnaryExpr{Op: op, X: p.parseBinaryExpr(notPrec)}
}

func (p *parser) parseUnaryExpr() ast.Expr {
	defer p.trace("parseUnaryExpr")()
	if p.tok.Type == lexer.Minus {
		op := p.tok
		p.next()
		return &ast.UnaryExpr{Op: op, X: p.parseUnaryExpr()}
	}
	return p.parsePrimaryExpr()
}

func (p *parser) parseArgs() ([]ast.Expr, lexer.Token) {
	p.expect(lexer.LeftParen)
	var args []ast.Expr
	for p.tok.Type != lexer.RightParen {
		args = append(args, p.parseExpr())
		if p.tok.Type != lexer.Comma {
			break
		}
		p.next()
	}
	return args, p.expect(lexer.RightParen)
}

func (p *parser) parsePrimaryExpr() ast.Expr {
	defer p.trace("parsePrimaryExpr")()
	x := p.parseOperand()
	for {
		switch p.tok.Type {
		case lexer.Period:
			p.next()
			member := &ast.MemberExpr{X: x, Name: p.parseIdent()}
			if p.tok.Type != lexer.LeftParen {
				x = member
				continue
			}
			call := &ast.MethodCallExpr{Method: member}
			call.Args, call.Rparen = p.parseArgs()
			x = call
		case lexer.LeftBracket:
			p.next()
			index := &ast.IndexExpr{X: x, Index: p.parseExpr()}
			index.Rbrack = p.expect(lexer.RightBracket)
			x = index
		case lexer.LeftParen:
			id, ok := x.(*ast.Ident)
			if !ok {
				p.errorf("only functions and classes can be called")
			}
			call := &ast.CallExpr{Func: id}
			call.Args, call.Rparen = p.parseArgs()
			x = call
		default:
			return x
		}
	}
}

func (p *parser) parseOperand() ast.Expr {
	defer p.trace("parseOperand")()
	switch tok := p.tok; tok.Type {
	case lexer.Ident:
		p.next()
		return &ast.Ident{Name: tok}
	case lexer.Number:
		n, err := strconv.ParseInt(tok.Data, 10, 32)
		if err != nil {
			p.errorf("integer literal out of range: %s", tok.Data)
		}
		p.next()
		return &ast.IntLit{Tok: tok, Value: int32(n)}
	case lexer.String:
		p.next()
		return &ast.StrLit{Tok: tok, Value: tok.Data}
	case lexer.True, lexer.False:
		p.next()
		return &ast.BoolLit{Tok: tok, Value: tok.Type == lexer.True}
	case lexer.None:
		p.next()
		return &ast.NoneLit{Tok: tok}
	case lexer.LeftParen:
		p.next()
		x := p.parseExpr()
		p.expect(lexer.RightParen)
		return x
	case lexer.LeftBracket:
		list := &ast.ListExpr{Lbrack: tok}
		p.next()
		for p.tok.Type != lexer.RightBracket {
			list.Elems = append(list.Elems, p.parseExpr())
			if p.tok.Type != lexer.Comma {
				break
			}
			p.next()
		}
		list.Rbrack = p.expect(lexer.RightBracket)
		return list
	}
	p.unexpected("expression")
	return nil
}
