package check

import "github.com/smasher164/chocopy/ast"

// Returns reports whether every path through stmts ends in a return
// statement. Statements after a definitely returning statement are
// unreachable, so a block returns as soon as one of its statements does.
// Loops never count, since their bodies may run zero times.
func Returns(stmts []ast.Stmt) bool {
	for _, s := range stmts {
		if stmtReturns(s) {
			return true
		}
	}
	return false
}

func stmtReturns(s ast.Stmt) bool {
	switch s := s.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.IfStmt:
		return Returns(s.Then) && Returns(s.Else)
	}
	return false
}
