// Package check type-checks a parsed ChocoPy program.
//
// Checking runs in a fixed order over one program: declarations are
// collected into scopes, classes are linked into a hierarchy, and then
// global variables, class bodies, global functions, and top-level
// statements are checked in turn. Every phase runs even when an earlier one
// reported diagnostics, so one pass reports as many independent errors as
// possible.
package check

import (
	"log/slog"

	"github.com/smasher164/chocopy/ast"
	"github.com/smasher164/chocopy/diag"
	"github.com/smasher164/chocopy/hierarchy"
	"github.com/smasher164/chocopy/logger"
	"github.com/smasher164/chocopy/names"
	"github.com/smasher164/chocopy/types"
)

type Config struct {
	// Logger receives phase progress at debug level. It defaults to the
	// package logger.
	Logger *slog.Logger
}

type Checker struct {
	log *slog.Logger
}

func New(cfg Config) *Checker {
	log := cfg.Logger
	if log == nil {
		log = logger.With("component", "check")
	}
	return &Checker{log: log}
}

// Check analyzes prog with a default Checker.
func Check(prog *ast.Program) (*Info, error) {
	return New(Config{}).Check(prog)
}

// Check analyzes prog. On success it returns the annotations of the
// program. Otherwise the Info is nil and the error is a diag.List holding
// every diagnostic, ordered by position.
//
// A Checker holds no per-program state, so Check may be called from
// several goroutines at once.
func (ch *Checker) Check(prog *ast.Program) (*Info, error) {
	c := &checker{log: ch.log}
	c.phase("declarations", func() {
		c.tbl = names.Build(prog, &c.errs)
	})
	c.phase("hierarchy", func() {
		c.h = hierarchy.Build(c.tbl, prog, &c.errs)
	})
	c.lat = types.NewLattice(c.h)
	c.info = newInfo(c.tbl, c.h)
	global := env{scope: c.tbl.Global}
	c.phase("globals", func() {
		for _, d := range prog.Decls {
			if v, ok := d.(*ast.VarDef); ok {
				c.checkVarDef(global, v)
			}
		}
	})
	c.phase("classes", func() {
		for _, d := range prog.Decls {
			if cd, ok := d.(*ast.ClassDef); ok {
				c.checkClass(cd)
			}
		}
	})
	c.phase("functions", func() {
		for _, d := range prog.Decls {
			if f, ok := d.(*ast.FuncDef); ok {
				c.checkFunc(f)
			}
		}
	})
	c.phase("statements", func() {
		c.checkStmts(global, prog.Stmts)
	})
	if err := c.errs.Err(); err != nil {
		return nil, err
	}
	return c.info, nil
}

type checker struct {
	log  *slog.Logger
	errs diag.List
	tbl  *names.Table
	h    *hierarchy.Hierarchy
	lat  types.Lattice
	info *Info
}

// env is the context of the statement or expression being checked.
type env struct {
	scope names.ScopeID
	ret   types.Type // nil outside functions
}

func (c *checker) phase(name string, f func()) {
	logger.LogPhase(c.log, name)
	f()
	logger.LogPhaseComplete(c.log, name, len(c.errs))
}

func (c *checker) errorf(kind diag.Kind, n ast.Node, format string, args ...any) {
	c.errs.Addf(kind, n.Span(), format, args...)
}

// annotationType resolves an annotation without reporting errors. Invalid
// annotations were reported when the declaration was collected.
func (c *checker) annotationType(ann ast.TypeAnnotation) types.Type {
	switch ann := ann.(type) {
	case *ast.ClassType:
		if !c.tbl.IsClass(ann.Name.Data) {
			return types.Object
		}
		return types.Named(ann.Name.Data)
	case *ast.ListType:
		return types.List{Elem: c.annotationType(ann.Elem)}
	}
	return types.Object
}

func (c *checker) returnType(f *ast.FuncDef) types.Type {
	if f.Return == nil {
		return types.None
	}
	return c.annotationType(f.Return)
}

func (c *checker) checkVarDef(e env, v *ast.VarDef) {
	want := c.annotationType(v.Var.Type)
	got := c.checkExpr(e, v.Value)
	if !c.lat.Assignable(got, want) {
		c.errorf(diag.TypeError, v, "Expected type `%s`; got type `%s`", want, got)
	}
}

func (c *checker) checkClass(cd *ast.ClassDef) {
	if _, ok := c.tbl.Defs[cd.Name]; !ok {
		return
	}
	scope := c.tbl.ClassScopes[cd]
	for _, d := range cd.Decls {
		switch d := d.(type) {
		case *ast.VarDef:
			c.checkVarDef(env{scope: scope}, d)
		case *ast.FuncDef:
			c.checkFunc(d)
		}
	}
}

// checkFunc checks the local declarations and body of f, then nested
// functions, and records whether f returns on every path.
func (c *checker) checkFunc(f *ast.FuncDef) {
	e := env{scope: c.tbl.FuncScopes[f], ret: c.returnType(f)}
	for _, d := range f.Decls {
		switch d := d.(type) {
		case *ast.VarDef:
			c.checkVarDef(e, d)
		case *ast.FuncDef:
			c.checkFunc(d)
		}
	}
	c.checkStmts(e, f.Body)
	returns := Returns(f.Body)
	c.info.Returns[f] = returns
	if e.ret != types.None && !returns {
		c.errorf(diag.ControlFlowError, f.Name, "All paths in this function/method must have a return statement: %s", f.Name.Name.Data)
	}
}
