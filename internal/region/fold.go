package region

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var upper = cases.Upper(language.Und)

// fold produces the comparison key for a region identifier: diacritics
// stripped, upper-cased, whitespace collapsed.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.Join(strings.Fields(upper.String(stripped)), " ")
}

// stripQualifier removes the "PROVINSI" qualifier that province datasets
// often carry ("PROVINSI ACEH", "ACEH PROVINSI").
func stripQualifier(key string) string {
	const q = "PROVINSI"
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(key, q), q))
	if trimmed == "" {
		return key
	}
	return trimmed
}
