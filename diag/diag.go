// Package diag holds the diagnostics reported while parsing and checking a
// program.
package diag

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/smasher164/chocopy/lexer"
	"golang.org/x/exp/slices"
)

type Kind int

const (
	SyntaxError Kind = iota
	NameError
	TypeError
	OverrideError
	ControlFlowError
)

var kindNames = [...]string{
	SyntaxError:      "SyntaxError",
	NameError:        "NameError",
	TypeError:        "TypeError",
	OverrideError:    "OverrideError",
	ControlFlowError: "ControlFlowError",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type Diagnostic struct {
	Kind Kind
	Span lexer.Span
	Msg  string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Span, d.Kind, d.Msg)
}

func New(kind Kind, span lexer.Span, format string, args ...any) Diagnostic {
	return Diagnostic{Kind: kind, Span: span, Msg: fmt.Sprintf(format, args...)}
}

// List is an ordered collection of diagnostics. It implements error so a
// failed analysis can be returned as a single value.
type List []Diagnostic

func (l *List) Add(d Diagnostic) {
	*l = append(*l, d)
}

func (l *List) Addf(kind Kind, span lexer.Span, format string, args ...any) {
	l.Add(New(kind, span, format, args...))
}

func (l List) Error() string {
	return strings.Join(lo.Map(l, func(d Diagnostic, _ int) string { return d.Error() }), "\n")
}

// Sorted returns a copy of l ordered by source position. Diagnostics at the
// same position keep the order in which they were reported.
func (l List) Sorted() List {
	out := make(List, len(l))
	copy(out, l)
	slices.SortStableFunc(out, func(a, b Diagnostic) bool {
		return a.Span.Start.Before(b.Span.Start)
	})
	return out
}

// Err returns nil for an empty list and the sorted list otherwise.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l.Sorted()
}

// Kinds reports the distinct kinds present in l, in order of first appearance.
func (l List) Kinds() []Kind {
	return lo.Uniq(lo.Map(l, func(d Diagnostic, _ int) Kind { return d.Kind }))
}

func (l List) Has(kind Kind) bool {
	return lo.ContainsBy(l, func(d Diagnostic) bool { return d.Kind == kind })
}
