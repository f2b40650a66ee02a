package core

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const (
	guidAlphabet  = "0123456789abcdefghijklmnopqrstuvwxyz"
	guidLength    = 8
	shortIDLength = 4
)

// GenerateGUID creates a short GUID with the provided prefix, e.g. "abk-3k9x0q2z".
func GenerateGUID(prefix string) (string, error) {
	normalized := strings.TrimSuffix(prefix, "-")

	buf := make([]byte, guidLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate guid: %w", err)
	}

	id := make([]byte, guidLength)
	for i := 0; i < guidLength; i++ {
		id[i] = guidAlphabet[int(buf[i])%len(guidAlphabet)]
	}

	return fmt.Sprintf("%s-%s", normalized, string(id)), nil
}

// ShortID returns the display form of a GUID: the first characters after the prefix.
func ShortID(guid string) string {
	base := guid
	if idx := strings.Index(base, "-"); idx != -1 {
		base = base[idx+1:]
	}
	if len(base) > shortIDLength {
		base = base[:shortIDLength]
	}
	return base
}

// MatchesGUID reports whether ref names guid, either in full or by short prefix.
func MatchesGUID(guid, ref string) bool {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "#")
	if ref == "" {
		return false
	}
	if guid == ref {
		return true
	}
	base := guid
	if idx := strings.Index(base, "-"); idx != -1 {
		base = base[idx+1:]
	}
	return strings.HasPrefix(base, ref)
}
