package cmd

import (
	"fmt"
	"os"
	"regexp"
)

var (
	colorFlag   string
	noColorFlag bool
)

var ansiPattern = regexp.MustCompile("\033\\[[0-9;]*m")

// isStdoutTTY returns true if stdout is connected to a terminal.
func isStdoutTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// resolveColor determines whether to use color output based on flags, NO_COLOR
// and TTY status. colorFlag is "auto", "always", or "never".
func resolveColor(colorFlag string, noColorFlag bool) bool {
	if noColorFlag {
		return false
	}
	switch colorFlag {
	case "always":
		return true
	case "never":
		return false
	default: // "auto"
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		return isStdoutTTY()
	}
}

// stripANSI removes color escapes from s.
func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// render prints formatted output, dropping color when it is disabled.
func render(s string) {
	if !resolveColor(colorFlag, noColorFlag) {
		s = stripANSI(s)
	}
	fmt.Print(s)
}
