// Package normalize turns raw posting fields into comparable tokens.
//
// All functions are pure: trimmed, lowercased output for identical input.
package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// multiSep splits a delimited field on a comma plus any following whitespace.
var multiSep = regexp.MustCompile(`,\s*`)

// punctuation is the ASCII punctuation set removed from free text.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var stripPunct = strings.NewReplacer(punctPairs()...)

func punctPairs() []string {
	pairs := make([]string, 0, 2*len(punctuation))
	for _, c := range punctuation {
		pairs = append(pairs, string(c), "")
	}
	return pairs
}

// Scalar trims and lowercases a single-valued field. It returns false when
// nothing is left.
func Scalar(raw string) (string, bool) {
	tok := strings.ToLower(strings.TrimSpace(raw))
	return tok, tok != ""
}

// Multi splits a comma-delimited field into trimmed, lowercased tokens,
// dropping parts that are empty after trimming.
func Multi(raw string) []string {
	parts := multiSep.Split(raw, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if tok, ok := Scalar(p); ok {
			out = append(out, tok)
		}
	}
	return out
}

// Text lowercases free text, removes punctuation and splits on whitespace.
// Words of minLength runes or fewer, and words in stopwords, are dropped.
func Text(raw string, stopwords map[string]struct{}, minLength int) []string {
	words := strings.Fields(stripPunct.Replace(strings.ToLower(raw)))
	out := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) <= minLength {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}
