package detect

import (
	"strconv"
	"strings"

	"github.com/kolkov/exprprobe/cmd/exprprobe/support"
	"github.com/kolkov/exprprobe/internal/cparse"
	"github.com/kolkov/exprprobe/internal/rewrite"
)

// supportRecord captures where the support function and its header first
// appear in the translation unit, if at all. The planner prepends the
// forward declaration only when the insertion point precedes both.
type supportRecord struct {
	hasFunc   bool
	funcOff   int
	hasHeader bool
	headerOff int
}

// supportRecordFor scans the unit for the first declaration of the support
// function and the first inclusion of its header. Prototypes count the
// same as definitions; implicitly declared identifiers do not count.
func supportRecordFor(unit *cparse.TranslationUnit, info support.Info) supportRecord {
	var rec supportRecord
	for _, d := range unit.Decls {
		fn, ok := d.(*cparse.FuncDecl)
		if ok && fn.Name == info.Function {
			rec.hasFunc = true
			rec.funcOff = fn.Pos()
			break
		}
	}
	if inc, ok := unit.FirstInclude(info.Header); ok {
		rec.hasHeader = true
		rec.headerOff = inc.Off
	}
	return rec
}

// needsDecl reports whether an insertion at stmtOff would reference the
// support function before any declaration of it is in scope.
func (r supportRecord) needsDecl(stmtOff int) bool {
	if r.hasFunc && r.funcOff <= stmtOff {
		return false
	}
	if r.hasHeader && r.headerOff <= stmtOff {
		return false
	}
	return true
}

// planRewrite queues the mutation for the selected occurrence onto buf.
//
// In print and check mode the plan is a preamble block inserted before the
// governing statement plus a replacement of the expression with a
// reference to the new temporary:
//
//	<type> <tmp> = <expr>;
//	static int <guard> = 0;
//	if (<guard> == <N>) { <report>; }
//	++<guard>;
//
// In replace mode the plan is a single textual substitution.
func (s *selection) planRewrite(buf *rewrite.Buffer, rec supportRecord) error {
	if s.fn == nil || s.stmt == nil || s.expr == nil {
		return internalf("instance %d counted but not captured", s.cfg.Instance)
	}

	exprOff := s.expr.Pos()
	exprLen := s.expr.End() - exprOff

	if s.cfg.Mode == ModeReplace {
		buf.Replace(exprOff, exprLen, s.cfg.Replacement)
		return nil
	}

	t := s.expr.Type()
	code, err := support.FormatCode(t)
	if err != nil {
		return internalf("selected expression: %v", err)
	}

	stmtOff := s.stmt.Pos()
	if rec.needsDecl(stmtOff) {
		buf.Insert(0, s.info.Declaration+";\n")
	}

	tmp := s.cfg.TmpPrefix + strconv.Itoa(nextNameSuffix(s.fn, s.cfg.TmpPrefix))
	guard := s.cfg.guardPrefix() + strconv.Itoa(nextNameSuffix(s.fn, s.cfg.guardPrefix()))

	var b strings.Builder
	b.WriteString(t.String())
	b.WriteString(" ")
	b.WriteString(tmp)
	b.WriteString(" = ")
	b.WriteString(s.unit.Text(s.expr))
	b.WriteString(";\n")
	b.WriteString("static int ")
	b.WriteString(guard)
	b.WriteString(" = 0;\n")
	b.WriteString("if (")
	b.WriteString(guard)
	b.WriteString(" == ")
	b.WriteString(strconv.FormatInt(s.cfg.GlobalInstance, 10))
	b.WriteString(") {\n  ")
	if s.cfg.Mode == ModeCheck {
		b.WriteString("if (")
		b.WriteString(tmp)
		b.WriteString(" != ")
		b.WriteString(s.cfg.ReferenceValue)
		b.WriteString(") ")
		b.WriteString(s.info.Function)
		b.WriteString("();")
	} else {
		b.WriteString(s.info.Function)
		b.WriteString("(\"")
		b.WriteString(s.cfg.ValueTag)
		b.WriteString("(%")
		b.WriteString(code)
		b.WriteString(")\\n\", ")
		b.WriteString(tmp)
		b.WriteString(");")
	}
	b.WriteString("\n}\n++")
	b.WriteString(guard)
	b.WriteString(";\n")
	buf.Insert(stmtOff, b.String())

	// Declaration initializers get the bare name, everything else the
	// parenthesized form.
	replacement := "(" + tmp + ")"
	if _, ok := s.stmt.(*cparse.DeclStmt); ok {
		replacement = tmp
	}
	buf.Replace(exprOff, exprLen, replacement)
	return nil
}

// nextNameSuffix returns one more than the largest numeric suffix any
// declaration with the given prefix carries in the function, taking the
// largest as 0 when there is none. Repeated runs never collide with their
// own earlier output and the first synthesized name ends in 1.
func nextNameSuffix(fn *cparse.FuncDecl, prefix string) int {
	max := 0
	consider := func(name string) {
		if !strings.HasPrefix(name, prefix) {
			return
		}
		n, err := strconv.Atoi(name[len(prefix):])
		if err == nil && n > max {
			max = n
		}
	}
	for _, p := range fn.Params {
		consider(p.Name)
	}
	cparse.Inspect(fn, func(n cparse.Node) bool {
		if vd, ok := n.(*cparse.VarDecl); ok && vd.Obj != nil {
			consider(vd.Obj.Name)
		}
		return true
	})
	return max + 1
}
