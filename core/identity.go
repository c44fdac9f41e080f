package core

import "strings"

// FallbackIdentity is the well-known identity substituted whenever no token
// is supplied. The engine never operates with a truly anonymous scoped
// context; unknown callers share this partition.
const FallbackIdentity = "00000000-0000-0000-0000-000000000000"

// ParseIdentityToken reports whether msg consists solely of an identity token
// and returns the canonical (lowercased, trimmed) form.
//
// A token is recognized only when the entire trimmed message has canonical
// UUID shape: 36 characters, hyphens at positions 8, 13, 18 and 23, and
// alphanumeric characters everywhere else. Tokens are never extracted from
// substrings, so "please use <token>" does not resolve; this avoids false
// positives on messages that merely mention a token.
func ParseIdentityToken(msg string) (string, bool) {
	s := strings.TrimSpace(msg)
	if len(s) != 36 {
		return "", false
	}
	for i, r := range s {
		switch i {
		case 8, 13, 18, 23:
			if r != '-' {
				return "", false
			}
		default:
			if !isTokenRune(r) {
				return "", false
			}
		}
	}
	return strings.ToLower(s), true
}

func isTokenRune(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
