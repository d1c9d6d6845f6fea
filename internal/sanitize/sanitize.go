// Package sanitize normalizes raw text before it is used as an identity key
// or handed to the analysis layer.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	controlRegex    = regexp.MustCompile("[\x00-\x1f\x7f]")
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// Clean replaces ASCII control characters (including DEL) with a space,
// collapses whitespace runs to a single space, and trims the ends.
// It never fails and is idempotent.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	s = controlRegex.ReplaceAllString(s, " ")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
