package extract

import (
	"strings"

	"github.com/Veraticus/saenggibu/internal/model"
	"github.com/Veraticus/saenggibu/internal/vocab"
)

// KeywordScorer counts keyword-family hits in narrative text.
type KeywordScorer struct {
	keywords vocab.Keywords
}

// NewKeywordScorer creates a scorer over the given keyword families.
func NewKeywordScorer(k vocab.Keywords) *KeywordScorer {
	return &KeywordScorer{keywords: k}
}

// Score counts, per family, how many distinct keywords occur in content.
func (s *KeywordScorer) Score(content string) model.KeywordCounts {
	return model.KeywordCounts{
		Exploration: countContained(content, s.keywords.Exploration),
		Online:      countContained(content, s.keywords.Online),
		Qualitative: countContained(content, s.keywords.Qualitative),
	}
}

func countContained(content string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(content, w) {
			n++
		}
	}
	return n
}
