package spotify

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName decomposes s into canonical decomposed form (NFD) and drops
// every nonspacing combining mark, leaving the base letters: "Café" becomes
// "Cafe" and "Mötley Crüe" becomes "Motley Crue". Case is preserved.
func NormalizeName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// matchKey is the form used when comparing names: normalized and lowercased.
func matchKey(s string) string {
	return strings.ToLower(NormalizeName(s))
}
