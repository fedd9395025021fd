package util

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]+`)

// SanitizeForLog removes control characters and newlines from user content before logging.
func SanitizeForLog(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return controlChars.ReplaceAllString(s, " ")
}

// Truncate cuts s to at most max bytes without splitting a UTF-8 sequence.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
