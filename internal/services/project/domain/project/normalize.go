package project

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalizeText trims surrounding space and applies NFC so visually equal
// names compare equal in update no-op checks.
func normalizeText(value string) string {
	return norm.NFC.String(strings.TrimSpace(value))
}

func normalizeID(value string) string {
	return strings.TrimSpace(value)
}
