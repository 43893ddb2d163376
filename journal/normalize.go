package journal

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize cleans scraped text for display: non-breaking spaces become
// regular spaces, whitespace runs collapse to one space, edges are trimmed.
func Normalize(input string) string {
	s := strings.ReplaceAll(input, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}

var quoteFolds = strings.NewReplacer(
	"’", "'", // right single quote
	"‘", "'", // left single quote
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"«", `"`, // «
	"»", `"`, // »
)

var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// NormalizeKey folds text into the canonical form used for identity keys and
// rule matching: Unicode decomposition with combining marks removed,
// typographic quotes folded to ASCII, whitespace collapsed, lowercased.
// The page re-renders identical facts with varying incidental formatting, so
// two surface variants of the same text must fold to the same string.
// Never use the result for display.
func NormalizeKey(input string) string {
	s, _, err := transform.String(stripMarks, input)
	if err != nil {
		// transform.String only fails on a misbehaving transformer; fall
		// back to the raw input rather than dropping the text.
		s = input
	}
	s = quoteFolds.Replace(s)
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(s)
}
