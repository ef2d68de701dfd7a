// Package detect - per-invocation configuration.
package detect

import (
	"fmt"
	"strings"

	"github.com/xyproto/env/v2"
)

// Mode selects what the mutation step does with the selected expression.
type Mode int

const (
	// ModePrint instruments the expression with a guarded printf of its value.
	ModePrint Mode = iota
	// ModeCheck instruments the expression with a guarded compare-and-abort
	// against a reference value.
	ModeCheck
	// ModeReplace replaces the expression's source text verbatim.
	ModeReplace
)

// Config is the configuration for one invocation. Callers own the value;
// the engine never mutates it and keeps no state across invocations, so a
// harness can call the engine repeatedly on shrinking inputs without any
// synchronization.
type Config struct {
	// Mode selects print, check or replace behavior.
	Mode Mode

	// Instance is K, the 1-based ordinal of the eligible occurrence to
	// transform, in pre-order traversal order.
	Instance int

	// CountOnly skips the mutation step and reports the total eligible
	// count. Instance is ignored.
	CountOnly bool

	// GlobalInstance is the dynamic-execution ordinal embedded in the
	// emitted guard condition. The instrumented site fires its reporting
	// action the GlobalInstance-th time it executes (0-based).
	GlobalInstance int64

	// ReferenceValue is the literal the temporary is compared against in
	// check mode.
	ReferenceValue string

	// Replacement is the verbatim text substituted in replace mode.
	Replacement string

	// TmpPrefix names synthesized temporaries; PrintedPrefix and
	// CheckedPrefix name the guard counters of the two instrumentation
	// modes. The declaration-naming convention is load-bearing: the
	// engine recognizes its own prior output purely by these prefixes.
	TmpPrefix     string
	PrintedPrefix string
	CheckedPrefix string

	// ValueTag is the marker printed around reported values, so the
	// harness can grep them out of program output.
	ValueTag string
}

// DefaultConfig returns a configuration with the standard names. The name
// prefixes and the value tag honor environment overrides so that a harness
// running several reductions against the same tree can namespace them:
//
//	EXPRPROBE_TMP_PREFIX      (default "__probe_expr_tmp_")
//	EXPRPROBE_PRINTED_PREFIX  (default "__probe_printed_")
//	EXPRPROBE_CHECKED_PREFIX  (default "__probe_checked_")
//	EXPRPROBE_VALUE_TAG       (default "probe_value")
func DefaultConfig() *Config {
	return &Config{
		Instance:      1,
		TmpPrefix:     env.Str("EXPRPROBE_TMP_PREFIX", "__probe_expr_tmp_"),
		PrintedPrefix: env.Str("EXPRPROBE_PRINTED_PREFIX", "__probe_printed_"),
		CheckedPrefix: env.Str("EXPRPROBE_CHECKED_PREFIX", "__probe_checked_"),
		ValueTag:      env.Str("EXPRPROBE_VALUE_TAG", "probe_value"),
	}
}

// Validate reports the first problem with the configuration, or nil.
func (c *Config) Validate() error {
	if !c.CountOnly && c.Instance < 1 {
		return fmt.Errorf("instance number must be positive, got %d", c.Instance)
	}
	if c.Mode == ModeCheck && c.ReferenceValue == "" {
		return fmt.Errorf("check mode requires a reference value")
	}
	if c.Mode == ModeReplace && c.Replacement == "" {
		return fmt.Errorf("replace mode requires replacement text")
	}
	if c.GlobalInstance < 0 {
		return fmt.Errorf("global instance number must not be negative, got %d", c.GlobalInstance)
	}
	if c.TmpPrefix == "" || c.PrintedPrefix == "" || c.CheckedPrefix == "" {
		return fmt.Errorf("name prefixes must not be empty")
	}
	return nil
}

// guardPrefix returns the guard-counter prefix for the configured mode.
func (c *Config) guardPrefix() string {
	if c.Mode == ModeCheck {
		return c.CheckedPrefix
	}
	return c.PrintedPrefix
}

// isReservedName reports whether a declared name belongs to the engine's
// own prior output: a temporary or either mode's guard counter.
func (c *Config) isReservedName(name string) bool {
	return strings.HasPrefix(name, c.TmpPrefix) ||
		strings.HasPrefix(name, c.PrintedPrefix) ||
		strings.HasPrefix(name, c.CheckedPrefix)
}
