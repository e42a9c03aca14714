package usage

import (
	"regexp"
	"strconv"
	"strings"
)

var freedPattern = regexp.MustCompile(`(?i)([\d.]+)\s*(GB|MB)`)

// ParseFreedMB extracts a freed-space magnitude from a result message,
// normalized to megabytes. Messages like "Freed 1.2 GB" yield 1228.8;
// messages with no recognizable magnitude contribute 0.
func ParseFreedMB(message string) float64 {
	if message == "" {
		return 0
	}
	match := freedPattern.FindStringSubmatch(message)
	if match == nil {
		return 0
	}
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0
	}
	if strings.EqualFold(match[2], "GB") {
		return value * 1024
	}
	return value
}
