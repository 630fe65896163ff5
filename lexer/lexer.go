package lexer

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/smasher164/xid"
)

// Lexer turns ChocoPy source into tokens. Layout is made explicit: every
// logical line ends in a Newline token and changes in indentation produce
// Indent and Dedent tokens. Line breaks inside parentheses or brackets are
// ignored.
type Lexer struct {
	prev        Token
	ch          rune
	pos         int // offset of ch
	src         []rune
	lines       []int
	indents     []int
	pending     []Token
	atLineStart bool
	nesting     int
}

const eof = -1

const maxInt = 1<<31 - 1

func isLetter(ch rune) bool {
	return ch == '_' || xid.Start(ch)
}

func isDecimal(ch rune) bool { return '0' <= ch && ch <= '9' }

func (l *Lexer) next() {
	if l.ch == '\n' {
		l.lines = append(l.lines, l.pos+1)
	}
	l.pos++
	if l.pos >= len(l.src) {
		l.pos = len(l.src)
		l.ch = eof
		return
	}
	l.ch = l.src[l.pos]
}

func (l *Lexer) peek() rune {
	if l.pos+1 < len(l.src) {
		return l.src[l.pos+1]
	}
	return eof
}

func (l *Lexer) lineIndex(offset int) int {
	return sort.Search(len(l.lines), func(i int) bool { return l.lines[i] > offset }) - 1
}

func (l *Lexer) posOf(offset int) Pos {
	i := l.lineIndex(offset)
	return Pos{Offset: offset, Line: i + 1, Column: offset - l.lines[i] + 1}
}

func (l *Lexer) spanOf(off1, off2 int) Span {
	if off2 < off1 {
		off2 = off1
	}
	return Span{Start: l.posOf(off1), End: l.posOf(off2)}
}

func (l *Lexer) text(start int) string {
	return string(l.src[start:l.pos])
}

func (l *Lexer) lexIdentOrKeyword() Token {
	startPos := l.pos
	l.next()
	for xid.Continue(l.ch) {
		l.next()
	}
	ident := l.text(startPos)
	if ttyp, ok := Keywords[ident]; ok {
		if ttyp == Reserved {
			return Token{Type: Reserved, Span: l.spanOf(startPos, l.pos-1), Data: ident}
		}
		return Token{Type: ttyp, Span: l.spanOf(startPos, l.pos-1)}
	}
	return Token{Type: Ident, Span: l.spanOf(startPos, l.pos-1), Data: ident}
}

func (l *Lexer) lexNumber() Token {
	startPos := l.pos
	for isDecimal(l.ch) {
		l.next()
	}
	digits := l.text(startPos)
	span := l.spanOf(startPos, l.pos-1)
	if len(digits) > 1 && digits[0] == '0' {
		return Token{Type: Illegal, Span: span, Data: "leading zeros in integer literal are not permitted"}
	}
	if n, err := strconv.ParseInt(digits, 10, 64); err != nil || n > maxInt {
		return Token{Type: Illegal, Span: span, Data: fmt.Sprintf("integer literal out of range: %s", digits)}
	}
	return Token{Type: Number, Span: span, Data: digits}
}

func (l *Lexer) lexString() Token {
	startPos := l.pos
	l.next()
	var sb strings.Builder
	var msg string
	setErr := func(m string) {
		if msg == "" {
			msg = m
		}
	}
	for l.ch != '"' {
		switch {
		case l.ch == eof || l.ch == '\n':
			return Token{Type: Illegal, Span: l.spanOf(startPos, l.pos-1), Data: "unterminated string literal"}
		case l.ch == '\\':
			l.next()
			switch l.ch {
			case '"':
				sb.WriteRune('"')
			case '\\':
				sb.WriteRune('\\')
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case eof, '\n':
				continue
			default:
				setErr(fmt.Sprintf("unrecognized escape sequence \\%c", l.ch))
			}
		case l.ch < 32 || l.ch > 126:
			setErr(fmt.Sprintf("character %q is not permitted in string literals", l.ch))
		default:
			sb.WriteRune(l.ch)
		}
		l.next()
	}
	l.next()
	if msg != "" {
		return Token{Type: Illegal, Span: l.spanOf(startPos, l.pos-1), Data: msg}
	}
	return Token{Type: String, Span: l.spanOf(startPos, l.pos-1), Data: sb.String()}
}

func (l *Lexer) skipComment() {
	for l.ch != '\n' && l.ch != eof {
		l.next()
	}
}

// lexIndentation measures the indentation of a new logical line. Blank and
// comment-only lines are skipped entirely.
func (l *Lexer) lexIndentation() (Token, bool) {
	for {
		col := 0
		for {
			if l.ch == ' ' {
				col++
			} else if l.ch == '\t' {
				col = (col/8 + 1) * 8
			} else if l.ch != '\r' && l.ch != '\f' {
				break
			}
			l.next()
		}
		switch l.ch {
		case '#':
			l.skipComment()
			fallthrough
		case '\n':
			if l.ch == '\n' {
				l.next()
			}
			continue
		case eof:
			l.atLineStart = false
			return Token{}, false
		}
		l.atLineStart = false
		here := Span{Start: l.posOf(l.pos), End: l.posOf(l.pos)}
		top := l.indents[len(l.indents)-1]
		switch {
		case col > top:
			l.indents = append(l.indents, col)
			return Token{Type: Indent, Span: here}, true
		case col < top:
			for len(l.indents) > 1 && l.indents[len(l.indents)-1] > col {
				l.indents = l.indents[:len(l.indents)-1]
				l.pending = append(l.pending, Token{Type: Dedent, Span: here})
			}
			if l.indents[len(l.indents)-1] != col {
				l.pending = append(l.pending, Token{Type: Illegal, Span: here, Data: "unindent does not match any outer indentation level"})
			}
			tok := l.pending[0]
			l.pending = l.pending[1:]
			return tok, true
		}
		return Token{}, false
	}
}

func (l *Lexer) NextToken() Token {
	for {
		if l.atLineStart && l.nesting == 0 {
			if tok, ok := l.lexIndentation(); ok {
				return tok
			}
		}
		startPos := l.pos
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\f':
			l.next()
			continue
		case l.ch == '#':
			l.skipComment()
			continue
		case l.ch == '\n':
			l.next()
			if l.nesting > 0 {
				continue
			}
			l.atLineStart = true
			return Token{Type: Newline, Span: l.spanOf(startPos, startPos)}
		case l.ch == eof:
			here := Span{Start: l.posOf(l.pos), End: l.posOf(l.pos)}
			switch l.prev.Type {
			case EOF, Newline, Dedent:
			default:
				return Token{Type: Newline, Span: here}
			}
			if len(l.indents) > 1 {
				l.indents = l.indents[:len(l.indents)-1]
				return Token{Type: Dedent, Span: here}
			}
			return Token{Type: EOF, Span: here}
		case isLetter(l.ch):
			return l.lexIdentOrKeyword()
		case isDecimal(l.ch):
			return l.lexNumber()
		case l.ch == '"':
			return l.lexString()
		}
		if ttyp, ok := DoubleCharTokens[[2]rune{l.ch, l.peek()}]; ok {
			l.next()
			l.next()
			return Token{Type: ttyp, Span: l.spanOf(startPos, l.pos-1)}
		}
		if ttyp, ok := SingleCharTokens[l.ch]; ok {
			switch ttyp {
			case LeftParen, LeftBracket:
				l.nesting++
			case RightParen, RightBracket:
				if l.nesting > 0 {
					l.nesting--
				}
			}
			l.next()
			return Token{Type: ttyp, Span: l.spanOf(startPos, startPos)}
		}
		ch := l.ch
		l.next()
		return Token{Type: Illegal, Span: l.spanOf(startPos, startPos), Data: fmt.Sprintf("unexpected character %q", ch)}
	}
}

// Next returns the next token, draining queued Dedent tokens first.
func (l *Lexer) Next() Token {
	var t Token
	if len(l.pending) > 0 {
		t = l.pending[0]
		l.pending = l.pending[1:]
	} else {
		t = l.NextToken()
	}
	l.prev = t
	return t
}

// New returns a Lexer over src.
func New(src string) *Lexer {
	l := &Lexer{
		src:         []rune(src),
		pos:         -1,
		lines:       []int{0},
		indents:     []int{0},
		atLineStart: true,
	}
	l.next()
	return l
}

func NewLexer(fsys fs.FS, filename string) (*Lexer, error) {
	if filepath.Ext(filename) != ".py" {
		return nil, fmt.Errorf("invalid file extension %q, expected \".py\"", filepath.Ext(filename))
	}
	b, err := fs.ReadFile(fsys, filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return New(string(b)), nil
}
