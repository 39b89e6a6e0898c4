package models

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalid   = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSeparator = regexp.MustCompile(`[-\s]+`)
)

// Slugify converts s to a lowercase ASCII slug: accents are stripped,
// characters other than letters, digits, spaces and hyphens are dropped and
// runs of whitespace or hyphens collapse into a single hyphen.
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(t, s)
	if err != nil {
		ascii = s
	}
	ascii = strings.ToLower(ascii)
	ascii = slugInvalid.ReplaceAllString(ascii, "")
	ascii = slugSeparator.ReplaceAllString(strings.TrimSpace(ascii), "-")
	return strings.Trim(ascii, "-_")
}

// ScopedSlug appends the owning entity's id to the slug of name.
func ScopedSlug(name string, ownerID uint) string {
	return fmt.Sprintf("%s-%d", Slugify(name), ownerID)
}
