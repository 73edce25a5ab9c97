package textutil

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// dropped characters vanish instead of becoming separators ("Don't" -> "dont").
var dropped = map[rune]struct{}{
	'\'': {},
	'’':  {},
	'`':  {},
	'"':  {},
}

// Slug derives a deterministic, lowercase, URL- and filesystem-safe identifier
// from name. Accents are folded to their base letters, every run of other
// characters collapses to a single hyphen, and leading/trailing hyphens are
// trimmed. Names with no ASCII letters or digits fall back to "video-" plus a
// short digest of the name so the result is never empty.
func Slug(name string) string {
	folded := foldAccents(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(folded))
	pendingDash := false
	for _, r := range folded {
		if _, ok := dropped[r]; ok {
			continue
		}
		r = unicode.ToLower(r)
		switch {
		case r == '&':
			writeSeparated(&b, "and", &pendingDash)
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
	}

	if slug := b.String(); slug != "" {
		return slug
	}
	sum := sha1.Sum([]byte(name))
	return "video-" + hex.EncodeToString(sum[:4])
}

func writeSeparated(b *strings.Builder, word string, pendingDash *bool) {
	if b.Len() > 0 {
		b.WriteByte('-')
	}
	b.WriteString(word)
	*pendingDash = true
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
