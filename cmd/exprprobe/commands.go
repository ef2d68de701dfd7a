// commands.go implements the exprprobe subcommands.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/kolkov/exprprobe/cmd/exprprobe/detect"
)

// probeConfig holds the parsed arguments of one subcommand invocation.
type probeConfig struct {
	// Source file to process
	file string

	// Output path from -o; empty means standard output
	output string

	// Engine configuration assembled from the flags
	cfg *detect.Config
}

// parseProbeArgs parses the arguments shared by all subcommands.
//
// It separates:
//   - exactly one positional source file
//   - --instance and --global-instance ordinals
//   - --value (check mode) and --with (replace mode)
//   - the -o output path
func parseProbeArgs(mode detect.Mode, countOnly bool, args []string) (*probeConfig, error) {
	pc := &probeConfig{cfg: detect.DefaultConfig()}
	pc.cfg.Mode = mode
	pc.cfg.CountOnly = countOnly

	intValue := func(flag string, args []string, i int) (int64, error) {
		if i+1 >= len(args) {
			return 0, fmt.Errorf("%s requires an argument", flag)
		}
		n, err := strconv.ParseInt(args[i+1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s requires an integer, got %q", flag, args[i+1])
		}
		return n, nil
	}

	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "--instance", "-i":
			n, err := intValue(arg, args, i)
			if err != nil {
				return nil, err
			}
			pc.cfg.Instance = int(n)
			i++
		case "--global-instance", "-g":
			n, err := intValue(arg, args, i)
			if err != nil {
				return nil, err
			}
			pc.cfg.GlobalInstance = n
			i++
		case "--value":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--value requires an argument")
			}
			i++
			pc.cfg.ReferenceValue = args[i]
		case "--with":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--with requires an argument")
			}
			i++
			pc.cfg.Replacement = args[i]
		case "-o":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("-o requires an argument")
			}
			i++
			pc.output = args[i]
		default:
			if len(arg) > 1 && arg[0] == '-' {
				return nil, fmt.Errorf("unknown flag %s", arg)
			}
			if pc.file != "" {
				return nil, fmt.Errorf("multiple source files given: %s and %s", pc.file, arg)
			}
			pc.file = arg
		}
	}

	if pc.file == "" {
		return nil, fmt.Errorf("no source file given")
	}
	if err := pc.cfg.Validate(); err != nil {
		return nil, err
	}
	return pc, nil
}

// countCommand implements 'exprprobe count'.
//
// It prints the total number of eligible expressions, the number a
// harness needs to pick a valid --instance for the other commands.
func countCommand(args []string) {
	pc, err := parseProbeArgs(detect.ModePrint, true, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	src, err := os.ReadFile(pc.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	n, err := detect.Count(pc.file, string(src), pc.cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(n)
}

// printCommand implements 'exprprobe print'.
func printCommand(args []string) {
	mutateCommand(detect.ModePrint, args)
}

// checkCommand implements 'exprprobe check'.
func checkCommand(args []string) {
	mutateCommand(detect.ModeCheck, args)
}

// replaceCommand implements 'exprprobe replace'.
func replaceCommand(args []string) {
	mutateCommand(detect.ModeReplace, args)
}

// mutateCommand runs the engine in a mutation mode and writes the result.
//
// An instance past the eligible count exits with the count in the message
// so a caller scripting the tool can clamp and retry.
func mutateCommand(mode detect.Mode, args []string) {
	pc, err := parseProbeArgs(mode, false, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	src, err := os.ReadFile(pc.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	res, err := detect.Run(pc.file, string(src), pc.cfg)
	if err != nil {
		var ce *detect.ConfigError
		if errors.As(err, &ce) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", ce)
			fmt.Fprintf(os.Stderr, "Run 'exprprobe count %s' and pick an instance up to %d\n", pc.file, ce.Max)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	if err := writeOutput(pc.output, res.Output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// writeOutput writes the transformed source to the -o path or stdout.
func writeOutput(path, text string) error {
	if path == "" {
		_, err := os.Stdout.WriteString(text)
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}
