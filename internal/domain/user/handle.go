package user

import (
	"strings"
	"unicode"
)

const maxHandleLen = 24

// NormalizeHandle lowercases s and keeps letters, digits and underscores.
// It returns "" when nothing usable remains.
func NormalizeHandle(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == '.' || r == '-' || unicode.IsSpace(r):
			b.WriteRune('_')
		}
		if b.Len() >= maxHandleLen {
			break
		}
	}
	return strings.Trim(b.String(), "_")
}

// DeriveHandle picks the base handle for a new account.
func DeriveHandle(id Identity) string {
	if h := NormalizeHandle(id.Username); h != "" {
		return h
	}
	if h := NormalizeHandle(id.DisplayName); h != "" {
		return h
	}
	return "user"
}
