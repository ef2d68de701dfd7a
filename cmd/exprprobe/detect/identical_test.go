package detect

import (
	"testing"

	"github.com/kolkov/exprprobe/internal/cparse"
)

// exprTwo parses two expression texts inside one translation unit and
// returns both nodes. Parsing once keeps name resolution shared, so two
// references to the same variable resolve to the same declaration.
func exprTwo(t *testing.T, ea, eb string) (cparse.Expr, cparse.Expr) {
	t.Helper()
	src := `struct S { int f; };
int g(int p) { return p; }
int main(void) {
    int a[4];
    int b;
    struct S s;
    int x;
    int y;
    x = ` + ea + `;
    y = ` + eb + `;
    return 0;
}
`
	unit, err := cparse.Parse("pair.c", src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	main := unit.Decls[len(unit.Decls)-1].(*cparse.FuncDecl)
	rhs := func(i int) cparse.Expr {
		return main.Body.Stmts[i].(*cparse.ExprStmt).X.(*cparse.BinaryExpr).R
	}
	return rhs(5), rhs(6)
}

// exprPair returns two occurrences of the same expression text.
func exprPair(t *testing.T, expr string) (cparse.Expr, cparse.Expr) {
	t.Helper()
	return exprTwo(t, expr, expr)
}

// TestIdentical_PureExpressions tests that two occurrences of the same
// pure expression compare identical, in both directions.
func TestIdentical_PureExpressions(t *testing.T) {
	for _, expr := range []string{
		"b",
		"a[0]",
		"a[0] + a[1]",
		"-b",
		"s.f",
		"(char)b",
		"'x'",
		"3 * b",
	} {
		e1, e2 := exprPair(t, expr)
		if !structurallyIdentical(e1, e2) {
			t.Errorf("%q should compare identical to its twin", expr)
		}
		if !structurallyIdentical(e2, e1) {
			t.Errorf("%q identity should be symmetric", expr)
		}
		if !structurallyIdentical(e1, e1) {
			t.Errorf("%q should be identical to itself", expr)
		}
	}
}

// TestIdentical_ImpureExpressions tests that side-effecting expressions
// never compare identical, not even to themselves.
func TestIdentical_ImpureExpressions(t *testing.T) {
	for _, expr := range []string{
		"g(b)",
		"b++",
		"b = 1",
		"a[0] + g(b)",
	} {
		e1, e2 := exprPair(t, expr)
		if structurallyIdentical(e1, e2) {
			t.Errorf("%q is impure and must not compare identical", expr)
		}
		if structurallyIdentical(e1, e1) {
			t.Errorf("%q is impure and must not be identical to itself", expr)
		}
	}
}

// TestIdentical_Distinct tests structurally different expressions.
func TestIdentical_Distinct(t *testing.T) {
	cases := []struct {
		a, b string
	}{
		{"a[0]", "a[1]"},        // differing index literal
		{"x", "y"},              // different declarations
		{"-b", "+b"},            // different operator code
		{"b + 1", "b - 1"},      // different operator code
		{"(char)b", "(short)b"}, // different written cast type
		{"'x'", "'y'"},          // different character value
		{"1", "b"},              // different kinds
		{"1.5f", "1.5"},         // same bit pattern, different literal type
	}
	for _, c := range cases {
		e1, e2 := exprTwo(t, c.a, c.b)
		if structurallyIdentical(e1, e2) {
			t.Errorf("%q and %q should not compare identical", c.a, c.b)
		}
	}
}

// TestIdentical_ParensTransparent tests that parenthesization does not
// affect identity.
func TestIdentical_ParensTransparent(t *testing.T) {
	e1, e2 := exprTwo(t, "a[0] + b", "((a[0]) + (b))")
	if !structurallyIdentical(e1, e2) {
		t.Errorf("parenthesization should be transparent to identity")
	}
}

// TestIdentical_IntLiteralWidth tests that equal values of different bit
// widths stay distinct.
func TestIdentical_IntLiteralWidth(t *testing.T) {
	e1, e2 := exprTwo(t, "1", "1LL")
	if structurallyIdentical(e1, e2) {
		t.Errorf("1 and 1LL differ in width and must not compare identical")
	}
}
