// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color provides ANSI control codes for terminal output. Color is
// disabled when NO_COLOR is set, forced when FORCE_COLOR is set, and
// otherwise follows whether stdout is a terminal.
package color

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Code represents an ANSI control code for text formatting.
type Code int

// Control codes for text formatting.
const (
	Reset Code = iota
	Bold
	Faint
	Italic
	Underline
)

// Foreground text colors.
const (
	FgBlack Code = iota + 30
	FgRed
	FgGreen
	FgYellow
	FgBlue
	FgMagenta
	FgCyan
	FgWhite
)

// Foreground hi-intensity text colors.
const (
	FgHiBlack Code = iota + 90
	FgHiRed
	FgHiGreen
	FgHiYellow
	FgHiBlue
	FgHiMagenta
	FgHiCyan
	FgHiWhite
)

const (
	// NoColor is the environment variable that disables color output.
	NoColor = "NO_COLOR"
	// ForceColor is the environment variable that forces color output.
	ForceColor = "FORCE_COLOR"

	prefix = "\033["
	suffix = "m"
)

var enabled = isColorEnabled()

// ControlString generates the ANSI escape sequence for the given codes, or
// the empty string when color output is disabled.
func ControlString(codes ...Code) string {
	if !enabled {
		return ""
	}

	sb := strings.Builder{}
	writeCodes(&sb, codes)

	return sb.String()
}

// Colorize wraps str in the given control codes, appending a reset.
func Colorize(str string, codes ...Code) string {
	if !enabled {
		return str
	}

	sb := strings.Builder{}
	writeCodes(&sb, codes)
	sb.WriteString(str)
	writeCodes(&sb, []Code{Reset})

	return sb.String()
}

// ColorizeNoReset is Colorize without a trailing reset; the caller is
// responsible for resetting.
func ColorizeNoReset(str string, codes ...Code) string {
	if !enabled {
		return str
	}

	sb := strings.Builder{}
	writeCodes(&sb, codes)
	sb.WriteString(str)

	return sb.String()
}

// Enabled reports whether color output is active for this process.
func Enabled() bool {
	return enabled
}

func writeCodes(sb *strings.Builder, codes []Code) {
	sb.WriteString(prefix)

	for i, code := range codes {
		if i > 0 {
			sb.WriteString(";")
		}

		sb.WriteString(strconv.Itoa(int(code)))
	}

	sb.WriteString(suffix)
}

func isColorEnabled() bool {
	if os.Getenv(NoColor) != "" {
		return false
	}

	if os.Getenv(ForceColor) != "" {
		return true
	}

	return term.IsTerminal(int(os.Stdout.Fd()))
}
