// Package detect implements expression counting and instrumentation for C
// source files.
//
// The engine parses one file, enumerates the expressions of integer or
// floating type that survive a fixed set of exclusion rules, and either
// reports their total or rewrites the K-th one. The rewrite extracts the
// expression into a temporary ahead of its statement and inserts a guarded
// report of the temporary's value, so a reduction harness can watch one
// intermediate value while it shrinks the program around it.
//
// The engine is stateless across invocations. Everything a repeated run
// needs to know about earlier runs it recovers from the output itself,
// through the reserved declaration-name prefixes.
package detect

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kolkov/exprprobe/cmd/exprprobe/support"
	"github.com/kolkov/exprprobe/internal/cparse"
	"github.com/kolkov/exprprobe/internal/rewrite"
)

// Result is the outcome of one invocation.
type Result struct {
	// EligibleCount is the total number of eligible expressions found.
	EligibleCount int

	// Output is the resulting source text. Equal to the input whenever
	// Mutated is false.
	Output string

	// Mutated reports whether a rewrite was performed.
	Mutated bool
}

// excludedExts are source extensions the engine declines to process.
// C++ constructs would parse wrong rather than fail cleanly, so these
// inputs degrade to a deterministic empty result instead.
var excludedExts = map[string]bool{
	".cpp": true,
	".cc":  true,
	".cxx": true,
	".hpp": true,
	".hh":  true,
	".hxx": true,
}

// excludedDialect reports whether the file name marks a C++ translation
// unit. The capital .C extension conventionally does too.
func excludedDialect(filename string) bool {
	ext := filepath.Ext(filename)
	return ext == ".C" || excludedExts[strings.ToLower(ext)]
}

// Count parses src and returns the number of eligible expressions.
// Excluded dialects count zero.
func Count(filename, src string, cfg *Config) (int, error) {
	c := *cfg
	c.CountOnly = true
	res, err := Run(filename, src, &c)
	if err != nil {
		return 0, err
	}
	return res.EligibleCount, nil
}

// Run executes one invocation of the engine.
//
// Algorithm:
//  1. Validate the configuration and screen out excluded dialects.
//  2. Parse the file into a positioned syntax tree.
//  3. Walk all function definitions counting eligible expressions and
//     capturing the cfg.Instance-th occurrence.
//  4. In count-only mode, stop here and report the total.
//  5. Plan the rewrite for the captured occurrence and render it.
//
// Errors:
//   - invalid configuration, reported before any parsing
//   - a parse failure, positioned as file:line:col
//   - *ConfigError when cfg.Instance exceeds the eligible count
//   - *InternalError when planning or rendering breaks an invariant
//
// The input text is never modified on any error path.
func Run(filename, src string, cfg *Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	info := support.ForCheck(cfg.Mode == ModeCheck)

	if excludedDialect(filename) {
		if cfg.CountOnly {
			return &Result{EligibleCount: 0, Output: src}, nil
		}
		return nil, &ConfigError{Instance: cfg.Instance, Max: 0}
	}

	unit, err := cparse.Parse(filename, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	sel := newSelection(cfg, info, unit)
	sel.run()

	if cfg.CountOnly {
		return &Result{EligibleCount: sel.count, Output: src}, nil
	}
	if cfg.Instance > sel.count {
		return nil, &ConfigError{Instance: cfg.Instance, Max: sel.count}
	}

	buf := rewrite.NewBuffer(src)
	if err := sel.planRewrite(buf, supportRecordFor(unit, info)); err != nil {
		return nil, err
	}
	out, err := buf.Render()
	if err != nil {
		return nil, internalf("render: %v", err)
	}
	return &Result{EligibleCount: sel.count, Output: out, Mutated: true}, nil
}
