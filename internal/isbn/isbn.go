package isbn

import "strings"

// placeholders are the sentinel values some catalog pages carry when no
// ISBN has been assigned to an edition, keyed by normalized form. They must
// never become usable keys. The catalog renders its sentinel as
// 000-00-0000-00-0; the all-zero ISBN-13 shows up too.
var placeholders = map[string]bool{
	"000000000000":  true,
	"0000000000000": true,
}

// Normalize reduces a raw ISBN-like string to its canonical comparison form:
// hyphens and inner whitespace removed, surrounding whitespace trimmed.
// It is pure and total; Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	s := strings.ReplaceAll(raw, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	return strings.TrimSpace(s)
}

// IsPlaceholder reports whether raw is a known "no ISBN assigned" sentinel,
// in any hyphenation variant.
func IsPlaceholder(raw string) bool {
	return placeholders[Normalize(raw)]
}

// Key normalizes raw and returns the resulting identity key, or "" when the
// input is empty or a placeholder sentinel.
func Key(raw string) string {
	if raw == "" || IsPlaceholder(raw) {
		return ""
	}
	return Normalize(raw)
}
