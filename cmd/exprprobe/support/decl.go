// Package support describes the C support code that instrumented programs
// depend on.
//
// Instrumented output calls into the C standard library: printf in print
// mode, abort in check mode. This package knows, per mode, which function
// that is, which header declares it, and what a self-contained forward
// declaration looks like, so the engine can decide whether the output
// needs the declaration prepended. It also owns the printf format-code
// table for the builtin arithmetic types.
package support

import (
	"fmt"

	"github.com/kolkov/exprprobe/internal/cparse"
)

// Info identifies the support function one instrumentation mode relies on.
type Info struct {
	// Header is the standard header that declares the function.
	Header string

	// Function is the name of the support function.
	Function string

	// Declaration is a forward declaration of the function, without the
	// trailing semicolon. Prepended to the output when neither a prior
	// declaration nor the header inclusion precedes the insertion point.
	Declaration string
}

// printInfo and checkInfo are the two support bindings. Print mode reports
// values through printf; check mode aborts on a mismatch.
var (
	printInfo = Info{
		Header:      "stdio.h",
		Function:    "printf",
		Declaration: "int printf(const char *format, ...)",
	}
	checkInfo = Info{
		Header:      "stdlib.h",
		Function:    "abort",
		Declaration: "void abort(void)",
	}
)

// ForCheck returns the support binding for the given mode: check mode when
// check is true, print mode otherwise.
func ForCheck(check bool) Info {
	if check {
		return checkInfo
	}
	return printInfo
}

// FormatCode returns the printf conversion suffix for a builtin arithmetic
// type: "u"/"d" for int-width and narrower, "lu"/"ld" for long,
// "llu"/"lld" for long long, "f" for float and double, "Lf" for long
// double. Non-arithmetic types are a programmer error: the eligibility
// filter only admits integer and floating expressions.
func FormatCode(t *cparse.Type) (string, error) {
	if t == nil || t.Form != cparse.FormBuiltin {
		return "", fmt.Errorf("no format code for type %s", t)
	}
	switch t.Builtin {
	case cparse.Bool, cparse.UChar, cparse.UShort, cparse.UInt:
		return "u", nil
	case cparse.Char, cparse.SChar, cparse.Short, cparse.Int:
		return "d", nil
	case cparse.ULong:
		return "lu", nil
	case cparse.Long:
		return "ld", nil
	case cparse.ULongLong:
		return "llu", nil
	case cparse.LongLong:
		return "lld", nil
	case cparse.Float, cparse.Double:
		return "f", nil
	case cparse.LongDouble:
		return "Lf", nil
	}
	return "", fmt.Errorf("no format code for type %s", t)
}
