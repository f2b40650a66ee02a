package core

import (
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// MatchesQuery reports whether query is a case-insensitive substring of the
// name or email. An empty query matches everything.
func MatchesQuery(name, email, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(name), q) || strings.Contains(strings.ToLower(email), q)
}

// IsValidEmail applies the loose address check used when adding contacts.
func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

type blockEntry struct {
	substr  string
	matcher glob.Glob
}

// Blocklist filters candidates by name or email. Plain entries match as
// case-insensitive substrings; entries with glob metacharacters match as
// patterns against the lowercased name and email.
type Blocklist struct {
	entries []blockEntry
}

// CompileBlocklist prepares entries for matching. Empty entries are ignored;
// a pattern that fails to compile falls back to substring matching.
func CompileBlocklist(entries []string) Blocklist {
	var list Blocklist
	for _, entry := range entries {
		lower := strings.ToLower(strings.TrimSpace(entry))
		if lower == "" {
			continue
		}
		if strings.ContainsAny(lower, "*?[") {
			if matcher, err := glob.Compile(lower); err == nil {
				list.entries = append(list.entries, blockEntry{matcher: matcher})
				continue
			}
		}
		list.entries = append(list.entries, blockEntry{substr: lower})
	}
	return list
}

// Blocked reports whether any entry matches the name or email.
func (b Blocklist) Blocked(name, email string) bool {
	if len(b.entries) == 0 {
		return false
	}
	name = strings.ToLower(name)
	email = strings.ToLower(email)
	for _, entry := range b.entries {
		if entry.matcher != nil {
			if entry.matcher.Match(name) || entry.matcher.Match(email) {
				return true
			}
			continue
		}
		if strings.Contains(name, entry.substr) || strings.Contains(email, entry.substr) {
			return true
		}
	}
	return false
}

// Len returns the number of usable entries.
func (b Blocklist) Len() int {
	return len(b.entries)
}
