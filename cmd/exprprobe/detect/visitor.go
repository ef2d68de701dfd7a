package detect

import (
	"github.com/kolkov/exprprobe/cmd/exprprobe/support"
	"github.com/kolkov/exprprobe/internal/cparse"
)

// selection runs the counting and selection pass over one translation
// unit. It tracks a governing statement while descending into expressions:
// children of a block govern themselves, a non-block body of an if/loop
// governs itself, and a control expression is governed by its owning
// statement. The governing statement is the insertion point candidate and
// the scope of the per-statement caches.
type selection struct {
	cfg  *Config
	info support.Info
	unit *cparse.TranslationUnit

	c *caches

	// count is the running total of eligible expressions.
	count int

	// The selected occurrence, set when count reaches cfg.Instance.
	fn   *cparse.FuncDecl
	stmt cparse.Stmt
	expr cparse.Expr

	cur *cparse.FuncDecl
}

func newSelection(cfg *Config, info support.Info, unit *cparse.TranslationUnit) *selection {
	return &selection{cfg: cfg, info: info, unit: unit}
}

// run performs the pass. Traversal order is source order over function
// definitions and pre-order within each body, so the K-th eligible
// expression is a stable property of the input text.
func (s *selection) run() {
	for _, d := range s.unit.Decls {
		fn, ok := d.(*cparse.FuncDecl)
		if !ok || !fn.IsDefinition() {
			continue
		}
		s.c = newCaches()
		s.c.recordTmpInits(s.cfg, fn)
		s.cur = fn
		s.visitStmt(fn.Body, fn.Body)
	}
}

// visitStmt visits one statement. governing is the statement the
// contained expressions belong to for eligibility purposes; for block
// children and free-standing bodies it is the statement itself, while
// loop and if statements pass themselves down to their control
// expressions.
func (s *selection) visitStmt(governing cparse.Stmt, stmt cparse.Stmt) {
	switch n := stmt.(type) {
	case *cparse.CompoundStmt:
		for _, child := range n.Stmts {
			s.visitStmt(child, child)
		}
	case *cparse.ExprStmt:
		s.visitExpr(governing, n.X)
	case *cparse.IfStmt:
		s.visitExpr(n, n.Cond)
		s.visitBody(n.Then)
		s.visitBody(n.Else)
	case *cparse.WhileStmt:
		s.visitExpr(n, n.Cond)
		s.visitBody(n.Body)
	case *cparse.DoStmt:
		s.visitBody(n.Body)
		s.visitExpr(n, n.Cond)
	case *cparse.ForStmt:
		switch init := n.Init.(type) {
		case *cparse.ExprStmt:
			s.visitExpr(n, init.X)
		case *cparse.DeclStmt:
			for _, d := range init.Decls {
				s.visitExpr(n, d.Init)
			}
		}
		s.visitExpr(n, n.Cond)
		s.visitExpr(n, n.Post)
		s.visitBody(n.Body)
	case *cparse.ReturnStmt:
		s.visitExpr(governing, n.X)
	case *cparse.DeclStmt:
		for _, d := range n.Decls {
			s.visitExpr(governing, d.Init)
		}
	}
}

// visitBody descends into the body of a control statement. A compound
// body hands governance to its children; any other body governs itself.
func (s *selection) visitBody(body cparse.Stmt) {
	if body == nil {
		return
	}
	if block, ok := body.(*cparse.CompoundStmt); ok {
		for _, child := range block.Stmts {
			s.visitStmt(child, child)
		}
		return
	}
	s.visitStmt(body, body)
}

// visitExpr visits an expression tree in pre-order under one governing
// statement, testing every node for eligibility.
func (s *selection) visitExpr(governing cparse.Stmt, e cparse.Expr) {
	if e == nil {
		return
	}
	s.checkExpr(governing, e)
	for _, child := range cparse.Children(e) {
		s.visitExpr(governing, child)
	}
}

// checkExpr applies the kind gate, the type gate and the exclusion rules,
// then counts the expression and captures it if it is the requested one.
func (s *selection) checkExpr(governing cparse.Stmt, e cparse.Expr) {
	if !eligibleKind(e) {
		return
	}
	t := e.Type()
	if t == nil || (!t.IsInteger() && !t.IsFloating()) {
		return
	}
	if !s.isEligible(governing, e) {
		return
	}
	s.count++
	if !s.cfg.CountOnly && s.count == s.cfg.Instance {
		s.fn = s.cur
		s.stmt = governing
		s.expr = e
	}
}
