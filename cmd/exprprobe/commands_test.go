package main

import (
	"testing"

	"github.com/kolkov/exprprobe/cmd/exprprobe/detect"
)

// TestParseProbeArgs_Defaults tests the defaults with just a file.
func TestParseProbeArgs_Defaults(t *testing.T) {
	pc, err := parseProbeArgs(detect.ModePrint, false, []string{"crash.c"})
	if err != nil {
		t.Fatalf("parseProbeArgs failed: %v", err)
	}
	if pc.file != "crash.c" {
		t.Errorf("file = %q, want crash.c", pc.file)
	}
	if pc.cfg.Instance != 1 {
		t.Errorf("Instance = %d, want 1", pc.cfg.Instance)
	}
	if pc.cfg.GlobalInstance != 0 {
		t.Errorf("GlobalInstance = %d, want 0", pc.cfg.GlobalInstance)
	}
	if pc.output != "" {
		t.Errorf("output = %q, want stdout default", pc.output)
	}
}

// TestParseProbeArgs_AllFlags tests every flag in one invocation.
func TestParseProbeArgs_AllFlags(t *testing.T) {
	pc, err := parseProbeArgs(detect.ModeCheck, false, []string{
		"--instance", "7",
		"--global-instance", "3",
		"--value", "42",
		"-o", "probed.c",
		"crash.c",
	})
	if err != nil {
		t.Fatalf("parseProbeArgs failed: %v", err)
	}
	if pc.cfg.Instance != 7 {
		t.Errorf("Instance = %d, want 7", pc.cfg.Instance)
	}
	if pc.cfg.GlobalInstance != 3 {
		t.Errorf("GlobalInstance = %d, want 3", pc.cfg.GlobalInstance)
	}
	if pc.cfg.ReferenceValue != "42" {
		t.Errorf("ReferenceValue = %q, want 42", pc.cfg.ReferenceValue)
	}
	if pc.output != "probed.c" {
		t.Errorf("output = %q, want probed.c", pc.output)
	}
}

// TestParseProbeArgs_ShortFlags tests the short ordinal spellings.
func TestParseProbeArgs_ShortFlags(t *testing.T) {
	pc, err := parseProbeArgs(detect.ModePrint, false, []string{"-i", "2", "-g", "5", "crash.c"})
	if err != nil {
		t.Fatalf("parseProbeArgs failed: %v", err)
	}
	if pc.cfg.Instance != 2 || pc.cfg.GlobalInstance != 5 {
		t.Errorf("short flags parsed wrong: instance %d, global %d", pc.cfg.Instance, pc.cfg.GlobalInstance)
	}
}

// TestParseProbeArgs_Replace tests replace-mode argument handling.
func TestParseProbeArgs_Replace(t *testing.T) {
	pc, err := parseProbeArgs(detect.ModeReplace, false, []string{"--with", "0", "crash.c"})
	if err != nil {
		t.Fatalf("parseProbeArgs failed: %v", err)
	}
	if pc.cfg.Replacement != "0" {
		t.Errorf("Replacement = %q, want 0", pc.cfg.Replacement)
	}
}

// TestParseProbeArgs_Errors tests the rejection paths.
func TestParseProbeArgs_Errors(t *testing.T) {
	cases := []struct {
		name string
		mode detect.Mode
		args []string
	}{
		{"no file", detect.ModePrint, []string{}},
		{"two files", detect.ModePrint, []string{"a.c", "b.c"}},
		{"unknown flag", detect.ModePrint, []string{"--bogus", "a.c"}},
		{"missing instance value", detect.ModePrint, []string{"a.c", "--instance"}},
		{"non-integer instance", detect.ModePrint, []string{"--instance", "two", "a.c"}},
		{"zero instance", detect.ModePrint, []string{"--instance", "0", "a.c"}},
		{"check without value", detect.ModeCheck, []string{"a.c"}},
		{"replace without text", detect.ModeReplace, []string{"a.c"}},
	}
	for _, c := range cases {
		if _, err := parseProbeArgs(c.mode, false, c.args); err == nil {
			t.Errorf("%s: parseProbeArgs should fail", c.name)
		}
	}
}

// TestParseProbeArgs_CountIgnoresInstance tests that count mode accepts
// the bare file with no ordinal.
func TestParseProbeArgs_CountIgnoresInstance(t *testing.T) {
	pc, err := parseProbeArgs(detect.ModePrint, true, []string{"crash.c"})
	if err != nil {
		t.Fatalf("parseProbeArgs failed: %v", err)
	}
	if !pc.cfg.CountOnly {
		t.Errorf("CountOnly should be set")
	}
}
