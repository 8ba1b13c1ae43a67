// Package fuzzy resolves raw, possibly OCR-damaged subject tokens to the
// closest canonical vocabulary entry.
package fuzzy

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/Veraticus/saenggibu/internal/vocab"
)

// Confidence levels for the fixed-score steps.
const (
	ScoreExact     = 100
	ScoreSubstring = 80
	ScoreNoMatch   = 50
)

// MinQueryLength is the shortest query, in runes, the matcher will consider.
const MinQueryLength = 2

// DefaultThreshold is the similarity acceptance threshold used when none is configured.
const DefaultThreshold = 70

// NoMatchPolicy decides what a failed match returns.
type NoMatchPolicy int

const (
	// KeepRaw returns the original token with ScoreNoMatch.
	KeepRaw NoMatchPolicy = iota
	// Reject returns an empty subject with a zero score.
	Reject
)

// ParsePolicy maps a configuration value ("raw" or "reject") to a policy.
func ParsePolicy(s string) (NoMatchPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "raw", "keep", "keep_raw":
		return KeepRaw, true
	case "reject", "null", "none":
		return Reject, true
	}
	return KeepRaw, false
}

// Method records which precedence step produced a match.
type Method string

// Match methods in precedence order.
const (
	MethodExact      Method = "exact"
	MethodStripped   Method = "stripped"
	MethodSimilarity Method = "similarity"
	MethodSubstring  Method = "substring"
	MethodNone       Method = "none"
)

// Match is the outcome of resolving one token.
type Match struct {
	Subject string
	Method  Method
	Score   int
}

// Matched reports whether the token resolved to a vocabulary entry.
func (m Match) Matched() bool {
	return m.Method != MethodNone
}

// Matcher resolves tokens against a vocabulary. It holds no mutable state.
type Matcher struct {
	vocab    *vocab.Vocabulary
	subjects []string
	keys     []string
	policy   NoMatchPolicy
}

// NewMatcher creates a matcher over v with the given no-match policy.
func NewMatcher(v *vocab.Vocabulary, policy NoMatchPolicy) *Matcher {
	subjects := v.Subjects()
	keys := make([]string, len(subjects))
	for i, s := range subjects {
		keys[i] = sortedTokens(s)
	}
	return &Matcher{vocab: v, subjects: subjects, keys: keys, policy: policy}
}

// Vocabulary returns the vocabulary the matcher resolves against.
func (m *Matcher) Vocabulary() *vocab.Vocabulary {
	return m.vocab
}

// Policy returns the matcher's no-match policy.
func (m *Matcher) Policy() NoMatchPolicy {
	return m.policy
}

// Match resolves query. Steps are tried in order and the first success wins:
// exact equality, equality after noise removal, best token-sort similarity at
// or above threshold, substring containment in either direction.
func (m *Matcher) Match(query string, threshold int) Match {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return Match{Method: MethodNone}
	}

	if m.vocab.Contains(query) {
		return Match{Subject: query, Score: ScoreExact, Method: MethodExact}
	}

	if subject, ok := m.vocab.LookupStripped(query); ok {
		return Match{Subject: subject, Score: ScoreExact, Method: MethodStripped}
	}

	if key := sortedTokens(query); key != "" {
		best, bestScore := -1, -1
		for i, candidate := range m.keys {
			score := ratio(key, candidate)
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best >= 0 && bestScore >= threshold {
			return Match{Subject: m.subjects[best], Score: bestScore, Method: MethodSimilarity}
		}
	}

	for _, s := range m.subjects {
		if strings.Contains(s, query) || strings.Contains(query, s) {
			return Match{Subject: s, Score: ScoreSubstring, Method: MethodSubstring}
		}
	}

	if m.policy == Reject {
		return Match{Method: MethodNone}
	}
	return Match{Subject: query, Score: ScoreNoMatch, Method: MethodNone}
}

// Similarity is the token-order-insensitive similarity of two strings, 0-100.
func Similarity(a, b string) int {
	ka, kb := sortedTokens(a), sortedTokens(b)
	if ka == "" || kb == "" {
		return 0
	}
	return ratio(ka, kb)
}

// sortedTokens lowercases s, turns every non letter/number rune into a
// separator, and joins the remaining tokens in sorted order.
func sortedTokens(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	sort.Strings(fields)
	return strings.Join(fields, " ")
}

// ratio is the normalized edit similarity of two strings, 0-100.
func ratio(a, b string) int {
	if a == b {
		return 100
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * float64(longest-dist) / float64(longest)))
}
