package cohort

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/Veraticus/saenggibu/internal/model"
)

// FallbackMode selects how the year-mention fallback picks the first grade year.
type FallbackMode string

const (
	// FallbackLowest anchors grade 1 at the earliest year mentioned.
	FallbackLowest FallbackMode = "lowest"
	// FallbackFrequent anchors grade 1 at the earliest of the three most frequent years.
	FallbackFrequent FallbackMode = "frequent"
)

// YearRange bounds plausible academic years.
type YearRange struct {
	Min int
	Max int
}

// Contains reports whether year lies inside the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.Min && year <= r.Max
}

// YearStrategy infers grade years from document text. An empty map means the
// strategy found nothing and the next one should be tried.
type YearStrategy interface {
	Name() string
	Infer(text string) model.YearMap
}

// pairPattern matches a year and a grade on one line. yearFirst says which
// submatch holds the year.
type pairPattern struct {
	re        *regexp.Regexp
	yearFirst bool
}

var pairPatterns = []pairPattern{
	{regexp.MustCompile(`(20\d{2})\s*[./-]\s*\d{1,2}\s*[./-]\s*\d{1,2}.*?(\d)\s*학년`), true},
	{regexp.MustCompile(`(\d)\s*학년.*?(20\d{2})`), false},
}

// ExplicitPairs reads "date ... N학년" and "N학년 ... year" co-occurrences,
// as found in award and activity listings. The first year seen for a grade wins.
type ExplicitPairs struct {
	Range YearRange
}

// Name implements YearStrategy.
func (ExplicitPairs) Name() string { return "explicit" }

// Infer implements YearStrategy.
func (s ExplicitPairs) Infer(text string) model.YearMap {
	years := make(model.YearMap)
	for _, p := range pairPatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			yearStr, gradeStr := m[1], m[2]
			if !p.yearFirst {
				yearStr, gradeStr = m[2], m[1]
			}
			year, err1 := strconv.Atoi(yearStr)
			grade, err2 := strconv.Atoi(gradeStr)
			if err1 != nil || err2 != nil {
				continue
			}
			if grade < 1 || grade > model.GradeLevels || !s.Range.Contains(year) {
				continue
			}
			if _, seen := years[grade]; !seen {
				years[grade] = year
			}
		}
	}
	return years
}

var mentionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(20\d{2})[.,\-/]\s*\d{1,2}[.,\-/]\s*\d{1,2}`),
	regexp.MustCompile(`\((20\d{2})\)`),
	regexp.MustCompile(`(20\d{2})년`),
	regexp.MustCompile(`(20\d{2})학년`),
}

// YearMentions returns every plausible year mentioned in text, in pattern order.
func YearMentions(text string, r YearRange) []int {
	var years []int
	for _, re := range mentionPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if year, err := strconv.Atoi(m[1]); err == nil && r.Contains(year) {
				years = append(years, year)
			}
		}
	}
	return years
}

// MentionFallback assigns consecutive years to grades 1-3 starting from an
// anchor year chosen among all year mentions in the document.
type MentionFallback struct {
	Mode  FallbackMode
	Range YearRange
}

// Name implements YearStrategy.
func (s MentionFallback) Name() string { return "mentions-" + string(s.Mode) }

// Infer implements YearStrategy.
func (s MentionFallback) Infer(text string) model.YearMap {
	mentions := YearMentions(text, s.Range)
	if len(mentions) == 0 {
		return model.YearMap{}
	}

	base := anchorYear(mentions, s.Mode)
	years := make(model.YearMap, model.GradeLevels)
	for grade := 1; grade <= model.GradeLevels; grade++ {
		years[grade] = base + grade - 1
	}
	return years
}

func anchorYear(mentions []int, mode FallbackMode) int {
	counts := make(map[int]int)
	for _, y := range mentions {
		counts[y]++
	}
	distinct := make([]int, 0, len(counts))
	for y := range counts {
		distinct = append(distinct, y)
	}
	sort.Ints(distinct)

	if mode != FallbackFrequent {
		return distinct[0]
	}

	sort.SliceStable(distinct, func(i, j int) bool {
		return counts[distinct[i]] > counts[distinct[j]]
	})
	top := distinct
	if len(top) > model.GradeLevels {
		top = top[:model.GradeLevels]
	}
	base := top[0]
	for _, y := range top[1:] {
		base = min(base, y)
	}
	return base
}

// InferYears runs strategies in order and returns the first non-empty result
// with the name of the strategy that produced it.
func InferYears(text string, strategies []YearStrategy) (model.YearMap, string) {
	for _, s := range strategies {
		if years := s.Infer(text); len(years) > 0 {
			return years, s.Name()
		}
	}
	return model.YearMap{}, ""
}
