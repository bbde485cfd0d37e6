// Package output handles formatting CLI output as table, compact or JSON.
package output

import (
	"os"

	"golang.org/x/term"
)

// Format represents an output format.
type Format int

const (
	// FormatAuto detects based on TTY.
	FormatAuto Format = iota
	// FormatJSON outputs JSON.
	FormatJSON
	// FormatTable outputs a human-readable table.
	FormatTable
	// FormatCompact outputs one line per record.
	FormatCompact
)

// EnvOutput selects the format when no flag is given.
const EnvOutput = "TASKT_OUTPUT"

// isTerminalFn checks whether stdout is a terminal. Replaceable in tests.
var isTerminalFn = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsTerminal reports whether stdout is a terminal.
func IsTerminal() bool {
	return isTerminalFn()
}

// Detect returns the appropriate format based on flags, environment, and TTY.
// When no explicit format is set: TTY → table, piped → JSON.
func Detect(jsonFlag, tableFlag, compactFlag bool) Format {
	switch {
	case jsonFlag:
		return FormatJSON
	case tableFlag:
		return FormatTable
	case compactFlag:
		return FormatCompact
	}

	switch os.Getenv(EnvOutput) {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	case "compact", "oneline":
		return FormatCompact
	}

	if isTerminalFn() {
		return FormatTable
	}
	return FormatJSON
}
