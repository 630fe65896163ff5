package lexer

import (
	"fmt"
)

type TokenType int

const (
	EOF TokenType = iota
	Newline
	Indent
	Dedent

	Plus
	Minus
	Times
	IntDiv
	Remainder
	LessThan
	GreaterThan
	LessThanEquals
	GreaterThanEquals
	LogicalEquals
	NotEquals
	Equals
	LeftParen
	RightParen
	LeftBracket
	RightBracket
	Comma
	Colon
	Period
	RightArrow

	False
	None
	True
	And
	Class
	Def
	Elif
	Else
	For
	Global
	If
	In
	Is
	Nonlocal
	Not
	Or
	Pass
	Return
	While
	Reserved

	Ident
	Number
	String
	Whitespace
	SingleLineComment
	Illegal
)

var tokenNames = [...]string{
	EOF:               "EOF",
	Newline:           "NEWLINE",
	Indent:            "INDENT",
	Dedent:            "DEDENT",
	Plus:              "+",
	Minus:             "-",
	Times:             "*",
	IntDiv:            "//",
	Remainder:         "%",
	LessThan:          "<",
	GreaterThan:       ">",
	LessThanEquals:    "<=",
	GreaterThanEquals: ">=",
	LogicalEquals:     "==",
	NotEquals:         "!=",
	Equals:            "=",
	LeftParen:         "(",
	RightParen:        ")",
	LeftBracket:       "[",
	RightBracket:      "]",
	Comma:             ",",
	Colon:             ":",
	Period:            ".",
	RightArrow:        "->",
	False:             "False",
	None:              "None",
	True:              "True",
	And:               "and",
	Class:             "class",
	Def:               "def",
	Elif:              "elif",
	Else:              "else",
	For:               "for",
	Global:            "global",
	If:                "if",
	In:                "in",
	Is:                "is",
	Nonlocal:          "nonlocal",
	Not:               "not",
	Or:                "or",
	Pass:              "pass",
	Return:            "return",
	While:             "while",
	Reserved:          "reserved keyword",
	Ident:             "identifier",
	Number:            "integer",
	String:            "string",
	Whitespace:        "whitespace",
	SingleLineComment: "comment",
	Illegal:           "illegal",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

var SingleCharTokens = map[rune]TokenType{
	'+': Plus,
	'-': Minus,
	'*': Times,
	'%': Remainder,
	'<': LessThan,
	'>': GreaterThan,
	'=': Equals,
	'(': LeftParen,
	')': RightParen,
	'[': LeftBracket,
	']': RightBracket,
	',': Comma,
	':': Colon,
	'.': Period,
}

var DoubleCharTokens = map[[2]rune]TokenType{
	{'/', '/'}: IntDiv,
	{'<', '='}: LessThanEquals,
	{'>', '='}: GreaterThanEquals,
	{'=', '='}: LogicalEquals,
	{'!', '='}: NotEquals,
	{'-', '>'}: RightArrow,
}

var Keywords = map[string]TokenType{
	"False":    False,
	"None":     None,
	"True":     True,
	"and":      And,
	"class":    Class,
	"def":      Def,
	"elif":     Elif,
	"else":     Else,
	"for":      For,
	"global":   Global,
	"if":       If,
	"in":       In,
	"is":       Is,
	"nonlocal": Nonlocal,
	"not":      Not,
	"or":       Or,
	"pass":     Pass,
	"return":   Return,
	"while":    While,

	// Python keywords that ChocoPy reserves but does not use.
	"as":       Reserved,
	"assert":   Reserved,
	"async":    Reserved,
	"await":    Reserved,
	"break":    Reserved,
	"continue": Reserved,
	"del":      Reserved,
	"except":   Reserved,
	"finally":  Reserved,
	"from":     Reserved,
	"import":   Reserved,
	"lambda":   Reserved,
	"raise":    Reserved,
	"try":      Reserved,
	"with":     Reserved,
	"yield":    Reserved,
}

type Pos struct {
	Offset int
	Line   int
	Column int
}

func (p Pos) Min(other Pos) Pos {
	if p.Column == 0 {
		return other
	}
	if other.Column == 0 {
		return p
	}
	if p.Offset < other.Offset {
		return p
	}
	return other
}

func (p Pos) Max(other Pos) Pos {
	if p.Column == 0 {
		return other
	}
	if other.Column == 0 {
		return p
	}
	if p.Offset > other.Offset {
		return p
	}
	return other
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Before reports whether p sorts strictly before other in the source.
func (p Pos) Before(other Pos) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

type Span struct {
	Start Pos
	End   Pos
}

func (span Span) Add(other Span) Span {
	return Span{span.Start.Min(other.Start), span.End.Max(other.End)}
}

func (s Span) String() string {
	if s.Start == s.End {
		return fmt.Sprintf("%d:%d", s.Start.Line, s.Start.Column)
	}
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%d:%d-%d", s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

type Token struct {
	Type TokenType
	Span Span
	Data string
}

func (t Token) String() string {
	if t.Data == "" {
		return fmt.Sprintf("%s:%s", t.Span, t.Type)
	}
	return fmt.Sprintf("%s:%s %q", t.Span, t.Type, t.Data)
}

func (b Token) Eq(a Token) bool {
	return a.Type == b.Type && a.Data == b.Data
}

func (a Token) ExactEq(b Token) bool {
	return a.Type == b.Type && a.Span == b.Span && a.Data == b.Data
}

func (t Token) IsBinaryOp() bool {
	switch t.Type {
	case Plus, Minus, Times, IntDiv, Remainder, LessThan, GreaterThan, LessThanEquals, GreaterThanEquals, LogicalEquals, NotEquals, Is, And, Or:
		return true
	}
	return false
}

const MinPrec = 1

// Prec follows Python: or < and < not < comparisons < + - < * // % < unary minus.
// The conditional expression and not are handled by the parser directly.
func (t Token) Prec() int {
	switch t.Type {
	case Times, IntDiv, Remainder:
		return 5
	case Plus, Minus:
		return 4
	case LogicalEquals, NotEquals, LessThan, GreaterThan, LessThanEquals, GreaterThanEquals, Is:
		return 3
	case And:
		return 2
	case Or:
		return 1
	}
	return 0
}

// IsComparison reports operators that do not associate: a < b < c is a syntax error.
func (t Token) IsComparison() bool {
	return t.Prec() == 3
}

func (t Token) BeginsExpr() bool {
	switch t.Type {
	case Ident, Number, String, True, False, None, LeftParen, LeftBracket, Minus, Not:
		return true
	}
	return false
}
