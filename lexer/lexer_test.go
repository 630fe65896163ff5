package lexer_test

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/kr/pretty"
	. "github.com/smasher164/chocopy/lexer"
	"golang.org/x/exp/slices"
)

func tok(ttyp TokenType) Token {
	return Token{Type: ttyp}
}

func data(ttyp TokenType, data string) Token {
	return Token{Type: ttyp, Data: data}
}

func ident(name string) Token {
	return data(Ident, name)
}

func unitSpan(pos Pos) Span {
	return Span{Start: pos, End: pos}
}

func lexAll(t *testing.T, name, src string) []Token {
	t.Helper()
	l, err := NewLexer(fstest.MapFS{name: &fstest.MapFile{Data: []byte(src)}}, name)
	if err != nil {
		t.Fatal(err)
	}
	var got []Token
	var tok Token
	for tok = l.Next(); tok.Type != EOF; tok = l.Next() {
		got = append(got, tok)
	}
	return append(got, tok)
}

func TestLexer(t *testing.T) {
	run := func(name, src string, expected []Token) {
		t.Run(name, func(t *testing.T) {
			got := lexAll(t, name, src)
			if !slices.EqualFunc(got, expected, Token.Eq) {
				t.Log(name)
				pretty.Ldiff(t, expected, got)
				t.Fail()
			}
		})
	}

	run("empty.py", "", []Token{tok(EOF)})

	run("operators.py", "+ - * // % < > <= >= == != = -> ( ) [ ] , : .", []Token{
		tok(Plus), tok(Minus), tok(Times), tok(IntDiv), tok(Remainder),
		tok(LessThan), tok(GreaterThan), tok(LessThanEquals), tok(GreaterThanEquals),
		tok(LogicalEquals), tok(NotEquals), tok(Equals), tok(RightArrow),
		tok(LeftParen), tok(RightParen), tok(LeftBracket), tok(RightBracket),
		tok(Comma), tok(Colon), tok(Period),
		tok(Newline), tok(EOF),
	})

	run("keywords.py", "class def import x None True is not", []Token{
		tok(Class), tok(Def), data(Reserved, "import"), ident("x"),
		tok(None), tok(True), tok(Is), tok(Not),
		tok(Newline), tok(EOF),
	})

	run("blocks.py", "if x:\n  y\nz", []Token{
		tok(If), ident("x"), tok(Colon), tok(Newline),
		tok(Indent), ident("y"), tok(Newline),
		tok(Dedent), ident("z"), tok(Newline),
		tok(EOF),
	})

	run("dedent_at_eof.py", "def f():\n    if x:\n        pass", []Token{
		tok(Def), ident("f"), tok(LeftParen), tok(RightParen), tok(Colon), tok(Newline),
		tok(Indent), tok(If), ident("x"), tok(Colon), tok(Newline),
		tok(Indent), tok(Pass), tok(Newline),
		tok(Dedent), tok(Dedent), tok(EOF),
	})

	run("blank_lines.py", "x = 1\n\n   # comment\ny = 2\n", []Token{
		ident("x"), tok(Equals), data(Number, "1"), tok(Newline),
		ident("y"), tok(Equals), data(Number, "2"), tok(Newline),
		tok(EOF),
	})

	run("brackets.py", "f(1,\n      2)\n", []Token{
		ident("f"), tok(LeftParen), data(Number, "1"), tok(Comma), data(Number, "2"), tok(RightParen), tok(Newline),
		tok(EOF),
	})

	run("bad_dedent.py", "if x:\n    y\n  z\n", []Token{
		tok(If), ident("x"), tok(Colon), tok(Newline),
		tok(Indent), ident("y"), tok(Newline),
		tok(Dedent), data(Illegal, "unindent does not match any outer indentation level"),
		ident("z"), tok(Newline),
		tok(EOF),
	})

	run("tabs.py", "if x:\n\ty\n", []Token{
		tok(If), ident("x"), tok(Colon), tok(Newline),
		tok(Indent), ident("y"), tok(Newline),
		tok(Dedent), tok(EOF),
	})

	run("strings.py", `"hi\n\"x\""`, []Token{
		data(String, "hi\n\"x\""), tok(Newline), tok(EOF),
	})

	run("bad_escape.py", `"a\qb"`, []Token{
		data(Illegal, `unrecognized escape sequence \q`), tok(Newline), tok(EOF),
	})

	run("numbers.py", "0 2147483647 2147483648 007", []Token{
		data(Number, "0"),
		data(Number, "2147483647"),
		data(Illegal, "integer literal out of range: 2147483648"),
		data(Illegal, "leading zeros in integer literal are not permitted"),
		tok(Newline), tok(EOF),
	})
}

func TestSpans(t *testing.T) {
	got := lexAll(t, "spans.py", "x = 1\nbc")
	expected := []Token{
		{Type: Ident, Span: unitSpan(Pos{0, 1, 1}), Data: "x"},
		{Type: Equals, Span: unitSpan(Pos{2, 1, 3})},
		{Type: Number, Span: unitSpan(Pos{4, 1, 5}), Data: "1"},
		{Type: Newline, Span: unitSpan(Pos{5, 1, 6})},
		{Type: Ident, Span: Span{Start: Pos{6, 2, 1}, End: Pos{7, 2, 2}}, Data: "bc"},
		{Type: Newline, Span: unitSpan(Pos{8, 2, 3})},
		{Type: EOF, Span: unitSpan(Pos{8, 2, 3})},
	}
	if !slices.EqualFunc(got, expected, Token.ExactEq) {
		pretty.Ldiff(t, expected, got)
		t.Fail()
	}
}

func TestNewLexer(t *testing.T) {
	fsys := fstest.MapFS{"a.txt": &fstest.MapFile{Data: []byte("x")}}
	if _, err := NewLexer(fsys, "a.txt"); err == nil {
		t.Error("expected an error for a file without the .py extension")
	}
	if _, err := NewLexer(fsys, "missing.py"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("got %v, want an error wrapping fs.ErrNotExist", err)
	}
}

func TestSpanAdd(t *testing.T) {
	a := Span{Start: Pos{4, 1, 5}, End: Pos{6, 1, 7}}
	b := Span{Start: Pos{0, 1, 1}, End: Pos{2, 1, 3}}
	want := Span{Start: Pos{0, 1, 1}, End: Pos{6, 1, 7}}
	if got := a.Add(b); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got := a.Add(Span{}); got != a {
		t.Errorf("adding the zero span changed %v to %v", a, got)
	}
}
