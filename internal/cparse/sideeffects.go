// Package cparse - observable side-effect query.
package cparse

// HasSideEffects reports whether evaluating the expression could have an
// observable side effect. Assignments (plain and compound), increment and
// decrement operators, and function calls count; calls are conservatively
// impure because the frontend performs no interprocedural analysis. The
// query recurses through all children, so x + f(y) is impure.
//
// The identity comparator refuses to relate impure expressions, including
// an impure expression to itself, so effectful code is never deduplicated
// away.
func HasSideEffects(e Expr) bool {
	if e == nil {
		return false
	}
	switch n := e.(type) {
	case *BinaryExpr:
		if n.Op.IsAssign() {
			return true
		}
	case *UnaryExpr:
		if n.Op.IsIncDec() {
			return true
		}
	case *CallExpr:
		return true
	}
	for _, c := range Children(e) {
		if HasSideEffects(c) {
			return true
		}
	}
	return false
}
