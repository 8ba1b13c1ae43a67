// Package vocab holds the controlled subject vocabulary, the subject-to-group
// table, the narrative keyword families and the achievement severity scale.
//
// A Vocabulary is built once and never mutated afterwards, so it can be shared
// by any number of concurrent extractors without locking.
package vocab

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// noise matches the whitespace and punctuation OCR passes scatter inside subject names.
var noise = regexp.MustCompile(`[\s./·]+`)

// StripNoise removes spacing and punctuation noise from a subject token.
func StripNoise(s string) string {
	return noise.ReplaceAllString(s, "")
}

// Vocabulary is an immutable subject list with its group mapping.
type Vocabulary struct {
	groups   map[string]string
	stripped map[string]string
	keywords Keywords
	subjects []string
}

// New builds a vocabulary. Groups for subjects missing from overrides are
// derived from the marker rules; anything unmatched falls into GroupGeneral.
func New(subjects []string, overrides map[string]string, keywords Keywords) *Vocabulary {
	v := &Vocabulary{
		groups:   make(map[string]string, len(subjects)),
		stripped: make(map[string]string, len(subjects)),
		keywords: keywords.clone(),
	}
	for _, s := range subjects {
		if s == "" {
			continue
		}
		if _, dup := v.groups[s]; dup {
			continue
		}
		v.subjects = append(v.subjects, s)
		if g, ok := overrides[s]; ok && g != "" {
			v.groups[s] = g
		} else {
			v.groups[s] = deriveGroup(s)
		}
		// First entry wins so lookups follow vocabulary order.
		key := StripNoise(s)
		if _, ok := v.stripped[key]; !ok {
			v.stripped[key] = s
		}
	}
	return v
}

var (
	defaultOnce  sync.Once
	defaultVocab *Vocabulary
)

// Default returns the process-wide built-in vocabulary.
func Default() *Vocabulary {
	defaultOnce.Do(func() {
		defaultVocab = New(defaultSubjects, nil, defaultKeywords)
	})
	return defaultVocab
}

func deriveGroup(subject string) string {
	for _, rule := range groupRules {
		for _, marker := range rule.markers {
			if strings.Contains(subject, marker) {
				return rule.group
			}
		}
	}
	return GroupGeneral
}

// Subjects returns a copy of the canonical subject names in vocabulary order.
func (v *Vocabulary) Subjects() []string {
	return append([]string(nil), v.subjects...)
}

// Len is the number of canonical subjects.
func (v *Vocabulary) Len() int {
	return len(v.subjects)
}

// Contains reports whether s is a canonical subject name.
func (v *Vocabulary) Contains(s string) bool {
	_, ok := v.groups[s]
	return ok
}

// LookupStripped finds the first subject equal to s once noise is removed from both.
func (v *Vocabulary) LookupStripped(s string) (string, bool) {
	subject, ok := v.stripped[StripNoise(s)]
	return subject, ok
}

// Group returns the subject group. Names outside the vocabulary go to GroupGeneral.
func (v *Vocabulary) Group(subject string) string {
	if g, ok := v.groups[subject]; ok {
		return g
	}
	return GroupGeneral
}

// ByGroup returns the subjects of each group, sorted by name.
func (v *Vocabulary) ByGroup() map[string][]string {
	out := make(map[string][]string)
	for _, s := range v.subjects {
		g := v.groups[s]
		out[g] = append(out[g], s)
	}
	for _, list := range out {
		sort.Strings(list)
	}
	return out
}

// Keywords returns a copy of the keyword families.
func (v *Vocabulary) Keywords() Keywords {
	return v.keywords.clone()
}
