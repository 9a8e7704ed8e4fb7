package title

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Variant selects which tracker's normalization rules apply.
type Variant int

const (
	// Series applies the series tracker's rules.
	Series Variant = iota
	// Movie applies the movie tracker's rules, which add a diacritic
	// expansion step ahead of stop-word stripping.
	Movie
)

// Stop words in the tracker's alternation order. The first match at a
// position wins, so order is part of the contract.
var stopWords = []string{"a", "à", "an", "the", "and", "or", "of"}

// The movie tracker spells out umlauts and the sharp s before it strips
// punctuation, so "Müller" keys as "mueller" rather than "muller".
var movieExpansions = strings.NewReplacer(
	"ä", "ae",
	"ö", "oe",
	"ü", "ue",
	"Ä", "Ae",
	"Ö", "Oe",
	"Ü", "Ue",
	"ß", "ss",
)

var markRemover = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Key derives the canonical matching key for a title. It is total: empty or
// all-digit input passes through unchanged, everything else normalizes. The
// result is not reversible.
func Key(raw string, v Variant) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}
	if allDigits(raw) {
		return raw
	}

	s := strings.ReplaceAll(raw, "%", "percent")
	if v == Movie {
		s = movieExpansions.Replace(s)
	}
	s = stripStopWords(s)
	s = stripNonAlphanumeric(s)
	s = strings.ToLower(s)
	return removeMarks(s)
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// stripStopWords removes stop words that sit between word boundaries or
// underscores. A stop word anchored at the start or end of the string is
// kept, because release names carry leading articles too.
func stripStopWords(s string) string {
	r := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(r); {
		if n := stopWordAt(r, i); n > 0 {
			i += n
			continue
		}
		b.WriteRune(r[i])
		i++
	}
	return b.String()
}

// stopWordAt returns the length in runes of a strippable stop word starting
// at i, or 0 when none matches there.
func stopWordAt(r []rune, i int) int {
	if i == 0 {
		return 0
	}
	if isWordRune(r[i-1]) {
		return 0
	}
	for _, w := range stopWords {
		n := matchFold(r, i, w)
		if n == 0 {
			continue
		}
		if i+n >= len(r) {
			continue
		}
		if isWordRune(r[i+n]) {
			continue
		}
		return n
	}
	return 0
}

// isWordRune mirrors the tracker regex's \w minus underscore: underscores
// count as boundaries for stop-word stripping even though \w includes them.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func matchFold(r []rune, i int, word string) int {
	n := 0
	for _, wr := range word {
		if i+n >= len(r) {
			return 0
		}
		if unicode.ToLower(r[i+n]) != wr {
			return 0
		}
		n++
	}
	return n
}

func stripNonAlphanumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func removeMarks(s string) string {
	out, _, err := transform.String(markRemover, s)
	if err != nil {
		return s
	}
	return out
}
