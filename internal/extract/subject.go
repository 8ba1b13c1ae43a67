package extract

import (
	"strings"

	"github.com/Veraticus/saenggibu/internal/fuzzy"
)

// maxSubjectTokens bounds how many trailing words of a captured cell can
// name a subject.
const maxSubjectTokens = 4

// resolveSubject matches a captured subject cell. Captures can carry table
// headers, the area column or other free text ahead of the subject, so only
// trailing runs of at most maxSubjectTokens words are considered. The longest
// exact vocabulary hit wins; otherwise the best-scoring run, the shortest on
// ties. The returned raw text is the run that was matched, never the whole
// cell.
func resolveSubject(m *fuzzy.Matcher, cell string, threshold int) (string, fuzzy.Match) {
	tokens := strings.Fields(cell)
	if len(tokens) == 0 {
		return "", m.Match("", threshold)
	}
	first := max(0, len(tokens)-maxSubjectTokens)

	for i := first; i < len(tokens); i++ {
		run := strings.Join(tokens[i:], " ")
		if match := m.Match(run, threshold); match.Method == fuzzy.MethodExact || match.Method == fuzzy.MethodStripped {
			return run, match
		}
	}

	raw := tokens[len(tokens)-1]
	best := m.Match(raw, threshold)
	for i := len(tokens) - 2; i >= first; i-- {
		run := strings.Join(tokens[i:], " ")
		if match := m.Match(run, threshold); match.Score > best.Score {
			raw, best = run, match
		}
	}
	return raw, best
}
