package parser_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/go-test/deep"
	"github.com/kr/pretty"
	"github.com/samber/lo"
	"github.com/smasher164/chocopy/ast"
	"github.com/smasher164/chocopy/diag"
	"github.com/smasher164/chocopy/fstest"
	"github.com/smasher164/chocopy/parser"
)

func parse(t *testing.T, src string) (*ast.Program, diag.List) {
	t.Helper()
	prog, err := parser.ParseFile(fstest.MapFS().Add("test.py", src), "test.py")
	if err == nil {
		return prog, nil
	}
	errs, ok := err.(diag.List)
	if !ok {
		t.Fatalf("unexpected error type %T: %v", err, err)
	}
	return prog, errs
}

func join[T ast.Node](nodes []T, sep string) string {
	return strings.Join(lo.Map(nodes, func(n T, _ int) string { return shape(n) }), sep)
}

func typeShape(t ast.TypeAnnotation) string {
	switch t := t.(type) {
	case *ast.ClassType:
		if t.Quoted {
			return fmt.Sprintf("%q", t.Name.Data)
		}
		return t.Name.Data
	case *ast.ListType:
		return "[" + typeShape(t.Elem) + "]"
	}
	return "None"
}

func block(stmts []ast.Stmt) string {
	return "{" + join(stmts, "; ") + "}"
}

func shape(n ast.Node) string {
	switch n := n.(type) {
	case *ast.Ident:
		return n.Name.Data
	case *ast.IntLit:
		return fmt.Sprint(n.Value)
	case *ast.BoolLit:
		if n.Value {
			return "True"
		}
		return "False"
	case *ast.StrLit:
		return fmt.Sprintf("%q", n.Value)
	case *ast.NoneLit:
		return "None"
	case *ast.ListExpr:
		return "[" + join(n.Elems, " ") + "]"
	case *ast.UnaryExpr:
		return fmt.Sprintf("(%s %s)", n.Op.Type, shape(n.X))
	case *ast.BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", n.Op.Type, shape(n.Left), shape(n.Right))
	case *ast.IfExpr:
		return fmt.Sprintf("(if %s %s %s)", shape(n.Cond), shape(n.Then), shape(n.Else))
	case *ast.CallExpr:
		return strings.TrimSpace(fmt.Sprintf("(call %s %s", shape(n.Func), join(n.Args, " "))) + ")"
	case *ast.MethodCallExpr:
		return strings.TrimSpace(fmt.Sprintf("(call %s %s", shape(n.Method), join(n.Args, " "))) + ")"
	case *ast.MemberExpr:
		return fmt.Sprintf("(. %s %s)", shape(n.X), shape(n.Name))
	case *ast.IndexExpr:
		return fmt.Sprintf("(index %s %s)", shape(n.X), shape(n.Index))
	case *ast.ExprStmt:
		return shape(n.X)
	case *ast.AssignStmt:
		return fmt.Sprintf("(= %s %s)", join(n.Targets, " "), shape(n.Value))
	case *ast.IfStmt:
		return fmt.Sprintf("(if %s %s %s)", shape(n.Cond), block(n.Then), block(n.Else))
	case *ast.WhileStmt:
		return fmt.Sprintf("(while %s %s)", shape(n.Cond), block(n.Body))
	case *ast.ForStmt:
		return fmt.Sprintf("(for %s %s %s)", shape(n.Var), shape(n.Iter), block(n.Body))
	case *ast.ReturnStmt:
		if n.Value == nil {
			return "return"
		}
		return fmt.Sprintf("(return %s)", shape(n.Value))
	case *ast.PassStmt:
		return "pass"
	case *ast.Illegal:
		return "illegal"
	case *ast.VarDef:
		return fmt.Sprintf("%s: %s = %s", shape(n.Var.Name), typeShape(n.Var.Type), shape(n.Value))
	case *ast.FuncDef:
		params := strings.Join(lo.Map(n.Params, func(p *ast.TypedVar, _ int) string {
			return shape(p.Name) + ": " + typeShape(p.Type)
		}), ", ")
		return fmt.Sprintf("def %s(%s) -> %s [%s] %s",
			shape(n.Name), params, typeShape(n.Return), join(n.Decls, "; "), block(n.Body))
	case *ast.ClassDef:
		return fmt.Sprintf("class %s(%s) [%s]", shape(n.Name), shape(n.Super), join(n.Decls, "; "))
	case *ast.GlobalDecl:
		return "global " + shape(n.Name)
	case *ast.NonlocalDecl:
		return "nonlocal " + shape(n.Name)
	}
	return fmt.Sprintf("<%T>", n)
}

func TestStatements(t *testing.T) {
	run := func(name, src string, expected ...string) {
		t.Run(name, func(t *testing.T) {
			prog, errs := parse(t, src)
			if len(errs) > 0 {
				t.Fatal(errs)
			}
			got := lo.Map(prog.Stmts, func(s ast.Stmt, _ int) string { return shape(s) })
			if diff := deep.Equal(got, expected); diff != nil {
				pretty.Ldiff(t, expected, got)
				t.Error(diff)
			}
		})
	}

	run("arithmetic", "x = 1 + 2 * 3 - 4\n", "(= x (- (+ 1 (* 2 3)) 4))")
	run("left_assoc", "1 // 2 % 3\n", "(% (// 1 2) 3)")
	run("logic", "not a == b and c or d\n", "(or (and (not (== a b)) c) d)")
	run("is", "print(x is None)\n", "(call print (is x None))")
	run("conditional", "a if b else c if d else e\n", "(if b a (if d c e))")
	run("unary", "-x.y[0]\n", "(- (index (. x y) 0))")
	run("double_negation", "--1\n", "(- (- 1))")
	run("method_call", "o.m(1, [2, 3])\n", "(call (. o m) 1 [2 3])")
	run("empty_list", "x = []\n", "(= x [])")
	run("call_no_args", "f()\n", "(call f)")
	run("chained_assign", "a[0] = b.c = 1\n", "(= (index a 0) (. b c) 1)")
	run("strings", "s = \"a\" + \"b\"\n", `(= s (+ "a" "b"))`)
	run("parens", "(1 + 2) * 3\n", "(* (+ 1 2) 3)")
	run("if", `
		if a:
		    pass
		elif b:
		    x = 1
		else:
		    return
		`, "(if a {pass} {(if b {(= x 1)} {return})})")
	run("loops", `
		while i < n:
		    i = i + 1
		for c in "abc":
		    print(c)
		`, "(while (< i n) {(= i (+ i 1))})", `(for c "abc" {(call print c)})`)
	run("comments", `
		# leading
		x = 1  # trailing

		# between
		y = 2
		`, "(= x 1)", "(= y 2)")
}

func TestDeclarations(t *testing.T) {
	prog, errs := parse(t, `
		x: int = 1
		class A(object):
		    a: [int] = None
		    def f(self: "A") -> int:
		        return self.a[0]
		def g(y: A) -> bool:
		    global x
		    z: str = "s"
		    def h():
		        nonlocal z
		        pass
		    return True
		print(g(A()))
		`)
	if len(errs) > 0 {
		t.Fatal(errs)
	}
	expected := []string{
		"x: int = 1",
		`class A(object) [a: [int] = None; def f(self: "A") -> int [] {(return (index (. self a) 0))}]`,
		`def g(y: A) -> bool [global x; z: str = "s"; def h() -> None [nonlocal z] {pass}] {(return True)}`,
		"(call print (call g (call A)))",
	}
	got := append(
		lo.Map(prog.Decls, func(d ast.Decl, _ int) string { return shape(d) }),
		lo.Map(prog.Stmts, func(s ast.Stmt, _ int) string { return shape(s) })...,
	)
	if diff := deep.Equal(got, expected); diff != nil {
		pretty.Ldiff(t, expected, got)
		t.Error(diff)
	}
}

func TestSyntaxErrors(t *testing.T) {
	run := func(name, src string, expected ...string) {
		t.Run(name, func(t *testing.T) {
			_, errs := parse(t, src)
			for _, d := range errs {
				if d.Kind != diag.SyntaxError {
					t.Errorf("%v: got kind %v", d, d.Kind)
				}
			}
			got := lo.Map(errs, func(d diag.Diagnostic, _ int) string { return d.Msg })
			if diff := deep.Equal(got, expected); diff != nil {
				t.Error(diff)
			}
		})
	}

	run("chained_comparison", "a < b < c\n", "comparison operators cannot be chained")
	run("bad_target", "1 = x\n", "cannot assign to expression")
	run("call_expression", "o.m(1)(2)\n", "only functions and classes can be called")
	run("reserved", "import x\n", "expected expression, found reserved keyword import")
	run("unclosed", "x = (1\n", `expected ")", found NEWLINE`)
	run("missing_indent", "def f():\npass\n", `expected "INDENT", found pass`)
	run("late_decl", `
		x = 1
		def f():
		    pass
		`, "declarations must precede statements")
	run("one_per_line", "x = 007\n", "leading zeros in integer literal are not permitted")
	run("class_body", `
		class A(object):
		    x = 1
		`, "expected attribute or method declaration")
}

func TestRecovery(t *testing.T) {
	prog, errs := parse(t, `
		1 = x
		y = 2
		z = = 3
		print(y)
		`)
	if diff := deep.Equal(lo.Map(errs, func(d diag.Diagnostic, _ int) string { return d.Error() }), []string{
		"1:1: SyntaxError: cannot assign to expression",
		"3:5: SyntaxError: expected expression, found =",
	}); diff != nil {
		t.Error(diff)
	}
	got := lo.Map(prog.Stmts, func(s ast.Stmt, _ int) string { return shape(s) })
	if diff := deep.Equal(got, []string{"illegal", "(= y 2)", "illegal", "(call print y)"}); diff != nil {
		t.Error(diff)
	}
}
