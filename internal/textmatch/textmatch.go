// Package textmatch holds the string comparison rules shared by matching,
// verification and extraction.
package textmatch

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinFuzzyLength is the shortest term allowed to match by containment.
// Shorter terms ("C", "Go", "IT") only match exactly.
const MinFuzzyLength = 3

// MinTaskWordLength excludes short filler words from task comparison
const MinTaskWordLength = 4

// MinTaskOverlap is the number of shared significant words for a task match
const MinTaskOverlap = 2

// Normalize lowercases s, trims it and collapses inner whitespace
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Equal reports case-insensitive equality of two non-empty terms
func Equal(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	return na != "" && na == nb
}

// Fuzzy reports whether either term contains the other, ignoring case.
// Empty terms never match.
func Fuzzy(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	if utf8.RuneCountInString(na) < MinFuzzyLength || utf8.RuneCountInString(nb) < MinFuzzyLength {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// Words splits s into distinct lowercase words of at least MinTaskWordLength runes
func Words(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(fields))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < MinTaskWordLength || seen[f] {
			continue
		}
		seen[f] = true
		words = append(words, f)
	}
	return words
}

// Overlap counts pairs of required and candidate words that share a stem,
// using each candidate word at most once. Two words share a stem when one
// contains the other ("monitor", "monitoring").
func Overlap(required, candidate []string) int {
	owner := make([]int, len(candidate))
	for i := range owner {
		owner[i] = -1
	}

	count := 0
	for r := range required {
		if assignWord(r, required, candidate, owner, make([]bool, len(candidate))) {
			count++
		}
	}
	return count
}

// assignWord finds a candidate word for required[r], moving earlier
// assignments to another stem-sharing word when that frees one up
func assignWord(r int, required, candidate []string, owner []int, tried []bool) bool {
	for c, word := range candidate {
		if tried[c] || !shareStem(required[r], word) {
			continue
		}
		tried[c] = true
		if owner[c] < 0 || assignWord(owner[c], required, candidate, owner, tried) {
			owner[c] = r
			return true
		}
	}
	return false
}

func shareStem(a, b string) bool {
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

// TaskMatch reports whether a candidate task phrase covers a required one.
// Phrases with two or more significant words need MinTaskOverlap shared words;
// shorter phrases fall back to Fuzzy.
func TaskMatch(required, candidate string) bool {
	rw := Words(required)
	if len(rw) >= MinTaskOverlap {
		return Overlap(rw, Words(candidate)) >= MinTaskOverlap
	}
	if len(rw) == 1 && Overlap(rw, Words(candidate)) == 1 {
		return true
	}
	return Fuzzy(required, candidate)
}

// ContainsTerm reports whether term occurs in text on word boundaries, ignoring case
func ContainsTerm(text, term string) bool {
	nt, nterm := Normalize(text), Normalize(term)
	if nterm == "" {
		return false
	}
	for offset := 0; offset <= len(nt)-len(nterm); {
		idx := strings.Index(nt[offset:], nterm)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(nterm)
		if boundaryBefore(nt, start) && boundaryAfter(nt, end) {
			return true
		}
		offset = start + 1
	}
	return false
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Dedupe drops empty and case-insensitively repeated terms, keeping first spelling
func Dedupe(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		key := Normalize(t)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(t))
	}
	return out
}
