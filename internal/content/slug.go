package content

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify turns arbitrary heading text into a lowercased, URL-safe
// anchor: diacritics are stripped, and any run of characters that
// isn't a letter or digit collapses to a single hyphen.
func Slugify(s string) string {
	lowered := strings.ToLower(s)

	stripped, _, err := transform.String(stripDiacritics, lowered)
	if err != nil {
		stripped = lowered
	}

	var b strings.Builder
	lastWasHyphen := true // suppress a leading hyphen

	for _, r := range stripped {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastWasHyphen = false
			continue
		}
		if !lastWasHyphen {
			b.WriteByte('-')
			lastWasHyphen = true
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
