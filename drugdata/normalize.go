// Package drugdata provides loading and lookup structures for the drug
// interaction and synonym datasets. It builds the synonym index and the
// interaction table consumed by the rest of the API.
package drugdata

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nameNormalizer strips combining marks so that accented and unaccented
// spellings of the same drug name resolve to the same index entry.
var nameNormalizer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName canonicalizes a free-text drug name for index lookups:
// lowercase, trimmed, diacritics removed.
func NormalizeName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	if normalized, _, err := transform.String(nameNormalizer, name); err == nil {
		return normalized
	}
	return name
}
