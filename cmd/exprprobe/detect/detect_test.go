// Package detect - engine test suite.
//
// The tests exercise the full pipeline against small C programs: counting,
// selection order, the exclusion rules, both instrumentation modes, and
// the behavior of repeated runs over already-instrumented output.
package detect

import (
	"errors"
	"strings"
	"testing"
)

// simpleProgram has exactly two eligible expressions in y = x + 2:
// the sum itself and the reference to x. The assignment is its own
// statement, and y is its write target, so neither counts.
const simpleProgram = `int printf(const char *format, ...);

int main(void) {
    int x = 1;
    int y;
    y = x + 2;
    return 0;
}
`

// TestCount_SimpleProgram tests the counting pass on a minimal program.
func TestCount_SimpleProgram(t *testing.T) {
	n, err := Count("test.c", simpleProgram, DefaultConfig())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
}

// TestCount_Deterministic tests that counting twice yields the same total.
func TestCount_Deterministic(t *testing.T) {
	cfg := DefaultConfig()
	first, err := Count("test.c", simpleProgram, cfg)
	if err != nil {
		t.Fatalf("first Count failed: %v", err)
	}
	second, err := Count("test.c", simpleProgram, cfg)
	if err != nil {
		t.Fatalf("second Count failed: %v", err)
	}
	if first != second {
		t.Errorf("counts differ across runs: %d then %d", first, second)
	}
}

// TestCount_SameStatementDedup tests that a repeated subexpression inside
// one statement is counted once.
//
// Test Case:
//
//	x = a[0] + a[0];   versus   x = a[0] + a[1];
//
// Expected:
//   - The duplicated a[0] is screened out, so the duplicated form counts
//     exactly one less than the non-duplicated form.
func TestCount_SameStatementDedup(t *testing.T) {
	dup := `int main(void) {
    int a[2];
    int x;
    x = a[0] + a[0];
    return 0;
}
`
	distinct := strings.Replace(dup, "a[0] + a[0]", "a[0] + a[1]", 1)

	nDup, err := Count("test.c", dup, DefaultConfig())
	if err != nil {
		t.Fatalf("Count(dup) failed: %v", err)
	}
	nDistinct, err := Count("test.c", distinct, DefaultConfig())
	if err != nil {
		t.Fatalf("Count(distinct) failed: %v", err)
	}
	// dup: the sum and the first a[0]. distinct: the sum and both elements.
	if nDup != 2 {
		t.Errorf("Count(dup) = %d, want 2", nDup)
	}
	if nDistinct != 3 {
		t.Errorf("Count(distinct) = %d, want 3", nDistinct)
	}
}

// TestCount_IncrementStatement tests that an increment statement
// contributes nothing.
//
// Test Case:
//
//	if (cond) { y++; }
//
// Expected:
//   - y++ is the whole statement (no self-wrapping) and y is its write
//     target, so only the condition reference counts.
func TestCount_IncrementStatement(t *testing.T) {
	input := `int main(void) {
    int cond = 1;
    int y = 0;
    if (cond) {
        y++;
    }
    return 0;
}
`
	n, err := Count("test.c", input, DefaultConfig())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1 (the condition only)", n)
	}
}

// TestCount_LoopHeaders tests that loop init/condition/post expressions
// are excluded while the loop body is not.
func TestCount_LoopHeaders(t *testing.T) {
	input := `int main(void) {
    int i;
    int total = 0;
    for (i = 0; i < 10; i++) {
        total = total + i;
    }
    return 0;
}
`
	n, err := Count("test.c", input, DefaultConfig())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	// Only the body statement counts: the sum, total and i.
	if n != 3 {
		t.Errorf("Count = %d, want 3 (loop header must contribute nothing)", n)
	}
}

// TestCount_WhileHeader tests the condition exclusion for while loops.
func TestCount_WhileHeader(t *testing.T) {
	input := `int main(void) {
    int n = 0;
    while (n < 10) {
        n = n + 1;
    }
    return 0;
}
`
	count, err := Count("test.c", input, DefaultConfig())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	// The body's sum and its n reference; nothing from the header.
	if count != 2 {
		t.Errorf("Count = %d, want 2", count)
	}
}

// TestCount_ExcludedDialect tests that C++ file names degrade to a zero
// count instead of being parsed.
func TestCount_ExcludedDialect(t *testing.T) {
	for _, name := range []string{"test.cpp", "test.cc", "test.cxx", "test.C", "test.hpp"} {
		n, err := Count(name, simpleProgram, DefaultConfig())
		if err != nil {
			t.Fatalf("Count(%s) failed: %v", name, err)
		}
		if n != 0 {
			t.Errorf("Count(%s) = %d, want 0", name, n)
		}
	}
}

// TestRun_PrintMode tests emit-mode instrumentation of an int expression.
//
// Test Case:
//
//	y = x + 2;  with instance 1 (the sum)
//
// Expected:
//   - a temporary initialized with the exact expression text
//   - a static guard counter gated on the global instance ordinal
//   - a printf using the signed-decimal format code
//   - the expression replaced by the parenthesized temporary
func TestRun_PrintMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Instance = 1

	res, err := Run("test.c", simpleProgram, cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Mutated {
		t.Fatalf("Run did not mutate")
	}

	for _, want := range []string{
		"int __probe_expr_tmp_1 = x + 2;",
		"static int __probe_printed_1 = 0;",
		"if (__probe_printed_1 == 0) {",
		`printf("probe_value(%d)\n", __probe_expr_tmp_1);`,
		"++__probe_printed_1;",
		"y = (__probe_expr_tmp_1);",
	} {
		if !strings.Contains(res.Output, want) {
			t.Errorf("Output missing %q", want)
		}
	}

	// Exactly one temporary, one guard, one replacement.
	if got := strings.Count(res.Output, "int __probe_expr_tmp_"); got != 1 {
		t.Errorf("found %d temporary declarations, want 1", got)
	}
	if got := strings.Count(res.Output, "static int __probe_printed_"); got != 1 {
		t.Errorf("found %d guard declarations, want 1", got)
	}

	// printf was already declared; no second declaration is prepended.
	if got := strings.Count(res.Output, "int printf("); got != 1 {
		t.Errorf("found %d printf declarations, want 1", got)
	}

	t.Logf("Instrumented output:\n%s", res.Output)
}

// TestRun_PrintMode_SecondInstance tests point replacement of a
// subexpression inside a larger expression.
func TestRun_PrintMode_SecondInstance(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Instance = 2 // the x reference inside x + 2

	res, err := Run("test.c", simpleProgram, cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(res.Output, "int __probe_expr_tmp_1 = x;") {
		t.Errorf("Output missing temporary for x:\n%s", res.Output)
	}
	if !strings.Contains(res.Output, "y = (__probe_expr_tmp_1) + 2;") {
		t.Errorf("Output missing in-place replacement:\n%s", res.Output)
	}
}

// TestRun_CheckMode tests check-mode instrumentation against a reference
// value.
//
// Expected:
//   - the check-mode guard prefix, not the print-mode one
//   - a mismatch test against the reference literal calling abort
//   - abort's declaration prepended since neither stdlib.h nor a
//     declaration precedes the insertion point
func TestRun_CheckMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Instance = 1
	cfg.Mode = ModeCheck
	cfg.ReferenceValue = "5"

	res, err := Run("test.c", simpleProgram, cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, want := range []string{
		"int __probe_expr_tmp_1 = x + 2;",
		"static int __probe_checked_1 = 0;",
		"if (__probe_expr_tmp_1 != 5) abort();",
	} {
		if !strings.Contains(res.Output, want) {
			t.Errorf("Output missing %q", want)
		}
	}
	if !strings.HasPrefix(res.Output, "void abort(void);\n") {
		t.Errorf("Output should start with the abort declaration:\n%s", res.Output)
	}
	if strings.Contains(res.Output, "__probe_printed_") {
		t.Errorf("check mode must not use the print-mode guard prefix")
	}

	t.Logf("Instrumented output:\n%s", res.Output)
}

// TestCount_ModeIndependentOrdering tests that eligibility does not
// depend on the mode, so an ordinal picked from a count run names the
// same expression in a later check run.
//
// Test Case: a printf call statement whose argument a is screened by the
// report-call rule.
//
// Expected:
//   - check mode counts the same 2 expressions (a + 2 and a) as print
//     mode
//   - a check run at the ordinal past the count fails rather than
//     instrumenting the printf argument
func TestCount_ModeIndependentOrdering(t *testing.T) {
	input := `int printf(const char *format, ...);

int main(void) {
    int a = 1;
    int b;
    b = a + 2;
    printf("%d\n", a);
    return 0;
}
`
	nPrint, err := Count("test.c", input, DefaultConfig())
	if err != nil {
		t.Fatalf("Count(print cfg) failed: %v", err)
	}

	checkCfg := DefaultConfig()
	checkCfg.Mode = ModeCheck
	checkCfg.ReferenceValue = "1"
	nCheck, err := Count("test.c", input, checkCfg)
	if err != nil {
		t.Fatalf("Count(check cfg) failed: %v", err)
	}
	if nPrint != 2 || nCheck != 2 {
		t.Errorf("Count = %d (print), %d (check), want 2 and 2", nPrint, nCheck)
	}

	checkCfg.Instance = nPrint + 1
	res, err := Run("test.c", input, checkCfg)
	if err == nil {
		t.Fatalf("check run past the counted total should fail, got:\n%s", res.Output)
	}
	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Max != nPrint {
		t.Errorf("expected a config error carrying max %d, got %v", nPrint, err)
	}
}

// TestRun_SupportDeclPrepended tests that print mode prepends a printf
// declaration when the input declares nothing.
func TestRun_SupportDeclPrepended(t *testing.T) {
	input := `int main(void) {
    int x = 1;
    int y;
    y = x + 2;
    return 0;
}
`
	cfg := DefaultConfig()
	cfg.Instance = 1

	res, err := Run("test.c", input, cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.HasPrefix(res.Output, "int printf(const char *format, ...);\n") {
		t.Errorf("Output should start with the printf declaration:\n%s", res.Output)
	}
}

// TestRun_HeaderSuppressesDecl tests that an existing stdio.h inclusion
// suppresses the synthesized printf declaration.
func TestRun_HeaderSuppressesDecl(t *testing.T) {
	input := `#include <stdio.h>

int main(void) {
    int x = 1;
    int y;
    y = x + 2;
    return 0;
}
`
	cfg := DefaultConfig()
	cfg.Instance = 1

	res, err := Run("test.c", input, cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if strings.Contains(res.Output, "int printf(const char *format, ...);") {
		t.Errorf("Output should not synthesize a printf declaration:\n%s", res.Output)
	}
}

// TestRun_DeclStmtReplacement tests that a replacement inside a
// declaration initializer uses the bare temporary name.
func TestRun_DeclStmtReplacement(t *testing.T) {
	input := `int main(void) {
    int x = 1;
    int z = x + 2;
    return z;
}
`
	cfg := DefaultConfig()
	cfg.Instance = 1

	res, err := Run("test.c", input, cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(res.Output, "int __probe_expr_tmp_1 = x + 2;") {
		t.Errorf("Output missing temporary declaration:\n%s", res.Output)
	}
	if !strings.Contains(res.Output, "int z = __probe_expr_tmp_1;") {
		t.Errorf("initializer replacement should not be parenthesized:\n%s", res.Output)
	}
}

// TestRun_InstanceExceedsCount tests the configuration error path.
//
// Expected:
//   - a *ConfigError carrying the actual maximum
//   - no output produced
func TestRun_InstanceExceedsCount(t *testing.T) {
	n, err := Count("test.c", simpleProgram, DefaultConfig())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Instance = n + 1
	res, err := Run("test.c", simpleProgram, cfg)
	if err == nil {
		t.Fatalf("Run should fail for instance %d of %d", cfg.Instance, n)
	}
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("error should be a *ConfigError, got %T: %v", err, err)
	}
	if ce.Max != n {
		t.Errorf("ConfigError.Max = %d, want %d", ce.Max, n)
	}
	if !strings.Contains(ce.Error(), "exceeds the maximum") {
		t.Errorf("error message should mention the maximum: %v", ce)
	}
	if res != nil {
		t.Errorf("no result should be produced on a config error")
	}
}

// TestRun_Reinstrument tests counting over already-instrumented output.
//
// Expected:
//   - the inserted temporary, its declaration statement, the guard
//     references and the report call are all screened out by the
//     reserved-prefix rules
//   - only the guard gate's comparison is newly visible
func TestRun_Reinstrument(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Instance = 1

	res, err := Run("test.c", simpleProgram, cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	n, err := Count("test.c", res.Output, DefaultConfig())
	if err != nil {
		t.Fatalf("Count on instrumented output failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Count on instrumented output = %d, want 1:\n%s", n, res.Output)
	}
}

// TestRun_FreshNameSuffixes tests that existing temporaries with the
// reserved prefix push the next suffix up.
func TestRun_FreshNameSuffixes(t *testing.T) {
	input := `int main(void) {
    int x = 1;
    int __probe_expr_tmp_3 = x + 2;
    int y;
    y = x + 3;
    return 0;
}
`
	cfg := DefaultConfig()
	cfg.Instance = 1

	res, err := Run("test.c", input, cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(res.Output, "int __probe_expr_tmp_4 = x + 3;") {
		t.Errorf("new temporary should take suffix 4:\n%s", res.Output)
	}
}

// TestCount_CrossRunDedup tests dedup against a temporary's recorded
// initializer.
//
// Test Case:
//
//	int __probe_expr_tmp_1 = x + 2;
//	y = __probe_expr_tmp_1 + (x + 2);
//
// Expected:
//   - the second occurrence of x + 2 matches the temporary's initializer
//     and is not counted again
func TestCount_CrossRunDedup(t *testing.T) {
	withDup := `int main(void) {
    int x = 1;
    int __probe_expr_tmp_1 = x + 2;
    int y;
    y = __probe_expr_tmp_1 + (x + 2);
    return 0;
}
`
	withoutDup := strings.Replace(withDup, "= x + 2;", "= x + 9;", 1)

	nDup, err := Count("test.c", withDup, DefaultConfig())
	if err != nil {
		t.Fatalf("Count(withDup) failed: %v", err)
	}
	nDistinct, err := Count("test.c", withoutDup, DefaultConfig())
	if err != nil {
		t.Fatalf("Count(withoutDup) failed: %v", err)
	}
	if nDistinct != nDup+1 {
		t.Errorf("initializer match should remove exactly one candidate: got %d with, %d without", nDup, nDistinct)
	}
}

// TestRun_ReplaceMode tests verbatim expression replacement.
func TestRun_ReplaceMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Instance = 1
	cfg.Mode = ModeReplace
	cfg.Replacement = "0"

	res, err := Run("test.c", simpleProgram, cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(res.Output, "y = 0;") {
		t.Errorf("Output missing replacement:\n%s", res.Output)
	}
	if strings.Contains(res.Output, "__probe_expr_tmp_") {
		t.Errorf("replace mode must not introduce a temporary:\n%s", res.Output)
	}
}

// TestRun_FloatFormat tests the format code chosen for a double
// expression.
func TestRun_FloatFormat(t *testing.T) {
	input := `int main(void) {
    double d = 1.5;
    double e;
    e = d * 2.0;
    return 0;
}
`
	cfg := DefaultConfig()
	cfg.Instance = 1

	res, err := Run("test.c", input, cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(res.Output, "double __probe_expr_tmp_1 = d * 2.0;") {
		t.Errorf("temporary should carry the expression's type:\n%s", res.Output)
	}
	if !strings.Contains(res.Output, `printf("probe_value(%f)\n", __probe_expr_tmp_1);`) {
		t.Errorf("double should use the %%f format code:\n%s", res.Output)
	}
}

// TestRun_GlobalInstance tests that the configured dynamic ordinal lands
// in the guard condition.
func TestRun_GlobalInstance(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Instance = 1
	cfg.GlobalInstance = 7

	res, err := Run("test.c", simpleProgram, cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(res.Output, "if (__probe_printed_1 == 7) {") {
		t.Errorf("guard should gate on the global instance ordinal:\n%s", res.Output)
	}
}

// TestRun_ValidatesConfig tests that a bad configuration is rejected
// before parsing.
func TestRun_ValidatesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Instance = 0
	if _, err := Run("test.c", simpleProgram, cfg); err == nil {
		t.Errorf("Run should reject a non-positive instance")
	}

	cfg = DefaultConfig()
	cfg.Mode = ModeCheck
	if _, err := Run("test.c", simpleProgram, cfg); err == nil {
		t.Errorf("Run should reject check mode without a reference value")
	}
}

// TestRun_ParseError tests that syntax errors surface with a position.
func TestRun_ParseError(t *testing.T) {
	input := `int main(void) { this is not C }`
	_, err := Count("bad.c", input, DefaultConfig())
	if err == nil {
		t.Fatalf("Count should fail on invalid input")
	}
	if !strings.Contains(err.Error(), "bad.c:") {
		t.Errorf("error should carry the file position: %v", err)
	}
}

// TestCount_FunctionBoundaries tests that dedup state never crosses
// function boundaries: the same statement text in two functions counts
// twice.
func TestCount_FunctionBoundaries(t *testing.T) {
	input := `int f(void) {
    int x = 1;
    int y;
    y = x + 2;
    return y;
}

int g(void) {
    int x = 1;
    int y;
    y = x + 2;
    return y;
}
`
	n, err := Count("test.c", input, DefaultConfig())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	// Each function: the sum, x, and the returned y.
	if n != 6 {
		t.Errorf("Count = %d, want 6", n)
	}
}
