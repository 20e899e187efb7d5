package common

import (
	"fmt"
	"strings"
	"time"
)

// DefaultWidth is the separator width used by the report commands.
const DefaultWidth = 80

// PrintHeader prints a formatted header with title and separators
func PrintHeader(title string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(title)
	fmt.Println(strings.Repeat("=", width))
}

// PrintFooter prints a formatted footer with message and separators
func PrintFooter(message string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(message)
	fmt.Println(strings.Repeat("=", width) + "\n")
}

// BoxPrefix returns the appropriate box-drawing prefix for list items
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}

// FormatDay renders a unix day index (days since epoch, UTC) as a calendar
// date. Day 0 means "never logged".
func FormatDay(day uint64) string {
	if day == 0 {
		return "never"
	}
	t := time.Unix(int64(day)*86400, 0).UTC()
	return t.Format("2006-01-02")
}

// ShortAddress abbreviates a hex address for report output.
func ShortAddress(address string) string {
	if len(address) <= 12 {
		return address
	}
	return address[:8] + "…" + address[len(address)-4:]
}
