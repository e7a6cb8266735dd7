package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds a name for comparison: lowercase, no accents, single spaces
func Normalize(s string) string {
	s = strings.ToLower(s)

	// Remove accents
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, _ = transform.String(t, s)

	return strings.Join(strings.Fields(s), " ")
}

// Key is the dedupe key of a vehicle inside one result set. Punctuation
// is ignored, so "Golf-GTI" and "Golf GTI" share a key.
func Key(brand, model string) string {
	return Slug(brand) + "|" + Slug(model)
}

// Slug builds a URL-safe id fragment ("Mercedes-Benz", "GLE 450" -> "mercedes-benz-gle-450")
func Slug(parts ...string) string {
	var b strings.Builder
	dash := false
	for _, p := range parts {
		for _, r := range Normalize(p) {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
				dash = false
				continue
			}
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Canonical is the display form of brand and model names
func Canonical(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// ContainsWord reports whether the padded, folded name contains keyword.
// Keywords may carry their own spaces to anchor on word boundaries (" rs").
func ContainsWord(name, keyword string) bool {
	return strings.Contains(" "+Normalize(name)+" ", keyword)
}
