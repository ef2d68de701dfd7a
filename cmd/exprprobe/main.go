// Package main implements the exprprobe CLI tool.
//
// exprprobe is a source-to-source instrumentation pass for C test cases,
// built for automated program reduction. It enumerates the arithmetic
// expressions inside a file's function bodies and instruments exactly one
// of them:
//
//  1. Parsing the C file into a positioned syntax tree
//  2. Counting eligible expressions in a deterministic pre-order
//  3. Extracting the chosen occurrence into a temporary variable
//  4. Inserting a guarded report (print or check) of its value
//
// Usage:
//
//	exprprobe count file.c                         # Count eligible expressions
//	exprprobe print --instance 3 file.c            # Report the 3rd one at runtime
//	exprprobe check --instance 3 --value 5 file.c  # Abort when it diverges from 5
//	exprprobe replace --instance 3 --with 0 file.c # Substitute its text
//
// A reduction harness typically runs count first, picks an instance, runs
// print to learn the value, then re-runs check on every shrunken candidate
// to make sure the value survived.
package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "count":
		countCommand(os.Args[2:])
	case "print":
		printCommand(os.Args[2:])
	case "check":
		checkCommand(os.Args[2:])
	case "replace":
		replaceCommand(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("exprprobe version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`exprprobe - C expression instrumentation for program reduction

USAGE:
    exprprobe <command> [options] <file.c>

COMMANDS:
    count      Count the eligible expressions in the file
    print      Instrument one expression to print its runtime value
    check      Instrument one expression to abort when its value diverges
    replace    Replace one expression's source text verbatim
    version    Show version information
    help       Show this help message

OPTIONS:
    --instance N          1-based ordinal of the expression to transform
                          (pre-order; defaults to 1)
    --global-instance N   dynamic execution ordinal the guard fires on
                          (defaults to 0, the first execution)
    --value V             reference literal for check mode
    --with TEXT           replacement text for replace mode
    -o FILE               write the transformed source to FILE
                          (defaults to standard output)

EXAMPLES:
    # How many expressions can be probed?
    exprprobe count crash.c

    # Print the runtime value of the 7th one
    exprprobe print --instance 7 -o probed.c crash.c

    # Abort unless the 7th one still evaluates to 42
    exprprobe check --instance 7 --value 42 -o probed.c crash.c

ABOUT:
    exprprobe serves a reduction harness that shrinks a crashing C file
    while preserving one observed intermediate value. The instrumented
    site captures the expression into a temporary and reports it on one
    configured dynamic execution, so repeated reduction runs can verify
    the value survived each shrink.

    Instrumentation is idempotent under repetition: the reserved
    __probe_ name prefixes let later runs recognize and skip earlier
    output. C++ inputs are declined with a count of zero.

ENVIRONMENT:
    EXPRPROBE_TMP_PREFIX      temporary variable prefix
    EXPRPROBE_PRINTED_PREFIX  print-mode guard prefix
    EXPRPROBE_CHECKED_PREFIX  check-mode guard prefix
    EXPRPROBE_VALUE_TAG       marker around printed values

`)
}
