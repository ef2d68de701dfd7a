package detect

import (
	"strings"

	"github.com/kolkov/exprprobe/cmd/exprprobe/support"
	"github.com/kolkov/exprprobe/internal/cparse"
)

// caches holds the per-function lookaside state of the selection pass.
// Everything here keys on node pointer identity, which is stable for the
// lifetime of one parsed translation unit. A fresh caches value is
// installed at every function-definition boundary so state never leaks
// between functions.
type caches struct {
	// writeTargets maps a statement to the set of expressions written
	// within it: operands of ++/--/& and left-hand sides of assignments,
	// with parentheses stripped. Computed lazily per statement.
	writeTargets map[cparse.Stmt]map[cparse.Expr]bool

	// occurrences maps a statement to the eligible expressions already
	// accepted inside it, in acceptance order.
	occurrences map[cparse.Stmt][]cparse.Expr

	// tmpRefs maps a statement to the synthesized-temporary objects it
	// references. Computed lazily per statement.
	tmpRefs map[cparse.Stmt][]*cparse.Object

	// tmpInits maps a synthesized-temporary object to its recorded
	// initializer, collected in a pre-pass over the function body.
	tmpInits map[*cparse.Object]cparse.Expr
}

func newCaches() *caches {
	return &caches{
		writeTargets: make(map[cparse.Stmt]map[cparse.Expr]bool),
		occurrences:  make(map[cparse.Stmt][]cparse.Expr),
		tmpRefs:      make(map[cparse.Stmt][]*cparse.Object),
		tmpInits:     make(map[*cparse.Object]cparse.Expr),
	}
}

// recordTmpInits walks a function definition and records the initializer of
// every declaration whose name carries the temporary prefix. These are the
// engine's own temporaries from earlier runs, and their initializers are
// the expressions already extracted once.
func (c *caches) recordTmpInits(cfg *Config, fn *cparse.FuncDecl) {
	cparse.Inspect(fn, func(n cparse.Node) bool {
		vd, ok := n.(*cparse.VarDecl)
		if !ok || vd.Obj == nil || vd.Init == nil {
			return true
		}
		if strings.HasPrefix(vd.Obj.Name, cfg.TmpPrefix) {
			c.tmpInits[vd.Obj] = vd.Init
		}
		return true
	})
}

// writeTargetsFor returns the written-expression set for stmt, computing
// and caching it on first use.
func (c *caches) writeTargetsFor(stmt cparse.Stmt) map[cparse.Expr]bool {
	if set, ok := c.writeTargets[stmt]; ok {
		return set
	}
	set := make(map[cparse.Expr]bool)
	cparse.Inspect(stmt, func(n cparse.Node) bool {
		switch e := n.(type) {
		case *cparse.UnaryExpr:
			if e.Op.IsIncDec() || e.Op == cparse.UnAddrOf {
				set[cparse.StripParens(e.X)] = true
			}
		case *cparse.BinaryExpr:
			if e.Op.IsAssign() {
				set[cparse.StripParens(e.L)] = true
			}
		}
		return true
	})
	c.writeTargets[stmt] = set
	return set
}

// tmpRefsFor returns the synthesized-temporary objects referenced in stmt,
// computing and caching the list on first use.
func (c *caches) tmpRefsFor(cfg *Config, stmt cparse.Stmt) []*cparse.Object {
	if refs, ok := c.tmpRefs[stmt]; ok {
		return refs
	}
	refs := []*cparse.Object{}
	cparse.Inspect(stmt, func(n cparse.Node) bool {
		if ref, ok := n.(*cparse.NameRef); ok && ref.Obj != nil {
			if strings.HasPrefix(ref.Obj.Name, cfg.TmpPrefix) {
				refs = append(refs, ref.Obj)
			}
		}
		return true
	})
	c.tmpRefs[stmt] = refs
	return refs
}

// eligibleKind reports whether the expression's kind tag is in the
// candidate set. Plain assignments count as binary expressions; the op=
// forms carry their own kind tag and fall outside the set.
func eligibleKind(e cparse.Expr) bool {
	switch e.Kind() {
	case cparse.KindSubscript, cparse.KindBinary, cparse.KindCall,
		cparse.KindNameRef, cparse.KindMember, cparse.KindUnary:
		return true
	}
	return false
}

// isEligible applies the exclusion rules to a kind- and type-qualified
// candidate expression. stmt is the governing statement established by the
// traversal. The rules run in a fixed order and the occurrence list for
// the statement is appended to before the cross-run temporary check, which
// keeps repeated counting runs stable.
func (s *selection) isEligible(stmt cparse.Stmt, e cparse.Expr) bool {
	if stmt == nil {
		return false
	}

	// Loop-header expressions stay untouched: extracting one would move
	// its evaluation out of the iteration.
	switch stmt.(type) {
	case *cparse.ForStmt, *cparse.WhileStmt, *cparse.DoStmt:
		return false
	}

	// The whole statement is not a candidate for wrapping in itself.
	if es, ok := stmt.(*cparse.ExprStmt); ok {
		if cparse.StripParenCasts(es.X) == e {
			return false
		}
	}

	if ds, ok := stmt.(*cparse.DeclStmt); ok {
		// Multi-declarator statements get no single insertion point for
		// the preamble.
		if len(ds.Decls) != 1 {
			return false
		}
		// A declaration of one of our own guards or temporaries is prior
		// output, not input.
		d := ds.Decls[0]
		if d.Obj == nil || s.cfg.isReservedName(d.Obj.Name) {
			return false
		}
	}

	// !guard is the shape of our emitted guard tests.
	if ue, ok := e.(*cparse.UnaryExpr); ok && ue.Op == cparse.UnLNot {
		if ref, ok := cparse.StripParenCasts(ue.X).(*cparse.NameRef); ok && ref.Obj != nil {
			if strings.HasPrefix(ref.Obj.Name, s.cfg.PrintedPrefix) ||
				strings.HasPrefix(ref.Obj.Name, s.cfg.CheckedPrefix) {
				return false
			}
		}
	}

	// tmp != literal under an if statement is our emitted check compare.
	if be, ok := e.(*cparse.BinaryExpr); ok && be.Op == cparse.OpNe {
		if _, isIf := stmt.(*cparse.IfStmt); isIf {
			if ref, ok := cparse.StripParenCasts(be.L).(*cparse.NameRef); ok && ref.Obj != nil {
				if strings.HasPrefix(ref.Obj.Name, s.cfg.TmpPrefix) {
					switch cparse.StripParenCasts(be.R).Kind() {
					case cparse.KindIntLit, cparse.KindFloatLit:
						return false
					}
				}
			}
		}
	}

	if ref, ok := e.(*cparse.NameRef); ok && ref.Obj != nil {
		// References to our own temporaries and guards are prior output.
		if s.cfg.isReservedName(ref.Obj.Name) {
			return false
		}
		// Arguments of an emitted report call are prior output too.
		if es, ok := stmt.(*cparse.ExprStmt); ok {
			if call, ok := es.X.(*cparse.CallExpr); ok && s.isReportCall(call) {
				return false
			}
		}
	}

	// Written expressions cannot be replaced by a temporary.
	if s.c.writeTargetsFor(stmt)[e] {
		return false
	}

	// One extraction per distinct computation per statement. The current
	// expression joins the occurrence list before the cross-run check so
	// the list reflects acceptance order regardless of the outcome below.
	occ := s.c.occurrences[stmt]
	for _, prev := range occ {
		if structurallyIdentical(prev, e) {
			return false
		}
	}
	s.c.occurrences[stmt] = append(occ, e)

	// An expression equal to the recorded initializer of a temporary the
	// statement references was already extracted by an earlier run.
	for _, obj := range s.c.tmpRefsFor(s.cfg, stmt) {
		if init, ok := s.c.tmpInits[obj]; ok && structurallyIdentical(init, e) {
			return false
		}
	}

	return true
}

// isReportCall reports whether the call invokes the print-mode report
// function directly by name. Prior print runs leave such call statements
// behind, and the exclusion keys on that binding in every mode so the
// eligible ordering stays identical across count, print and check runs.
// Check mode's abort takes no value arguments to screen.
func (s *selection) isReportCall(call *cparse.CallExpr) bool {
	ref, ok := cparse.StripParenCasts(call.Callee).(*cparse.NameRef)
	return ok && ref.Name == support.ForCheck(false).Function
}
