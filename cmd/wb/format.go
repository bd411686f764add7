package main

import (
	"os"

	"golang.org/x/term"
)

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// isTTY reports whether stdout is a terminal. Piped output gets full,
// untruncated columns.
func isTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// columnWidth picks a truncation width for free-text columns: tight on a
// terminal, unlimited when piped.
func columnWidth() int {
	if isTTY() {
		return 40
	}
	return 1 << 20
}

// dash substitutes "-" for an empty value in table cells.
func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// dashPtr renders an optional id cell.
func dashPtr(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
