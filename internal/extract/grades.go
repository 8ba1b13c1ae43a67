// Package extract turns segmented transcript text into grade and narrative
// records.
package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/saenggibu/internal/fuzzy"
	"github.com/Veraticus/saenggibu/internal/model"
	"github.com/Veraticus/saenggibu/internal/segment"
	"github.com/Veraticus/saenggibu/internal/vocab"
)

// PEArtsYear selects the grade level assigned to physical-education/arts rows.
type PEArtsYear string

const (
	// PEArtsSection tags each row with the grade section it appears in.
	PEArtsSection PEArtsYear = "section"
	// PEArtsFirst tags every row as grade 1.
	PEArtsFirst PEArtsYear = "first"
)

// ParsePEArtsYear validates a configured PE/arts year policy.
func ParsePEArtsYear(s string) (PEArtsYear, bool) {
	switch PEArtsYear(strings.ToLower(strings.TrimSpace(s))) {
	case PEArtsSection, "":
		return PEArtsSection, true
	case PEArtsFirst:
		return PEArtsFirst, true
	}
	return "", false
}

// StrategyPEArts names records produced by the two-term PE/arts layout.
const StrategyPEArts = "pe-arts"

var (
	peArtsHeader = regexp.MustCompile(`<\s*체육\s*[.·]\s*예술.*?>`)
	peArtsRow    = regexp.MustCompile(`(체육|예술(?:\([가-힣]+\))?)\s+([가-힣A-Za-z][가-힣A-Za-z\s]*?)\s+(\d+)\s+([A-EP])\s+(\d+)\s+([A-EP])`)
)

// GradeConfig tunes grade extraction.
type GradeConfig struct {
	PEArtsYear PEArtsYear
	Threshold  int
}

// DefaultGradeConfig returns the default grade extraction settings.
func DefaultGradeConfig() GradeConfig {
	return GradeConfig{Threshold: fuzzy.DefaultThreshold, PEArtsYear: PEArtsSection}
}

// GradeExtractor recognizes per-subject grade rows.
type GradeExtractor struct {
	matcher    *fuzzy.Matcher
	strategies []GradeStrategy
	cfg        GradeConfig
}

// NewGradeExtractor creates an extractor using the default strategy chain.
func NewGradeExtractor(m *fuzzy.Matcher, cfg GradeConfig) *GradeExtractor {
	return NewGradeExtractorWithStrategies(m, cfg, DefaultGradeStrategies())
}

// NewGradeExtractorWithStrategies creates an extractor with a custom strategy chain.
func NewGradeExtractorWithStrategies(m *fuzzy.Matcher, cfg GradeConfig, strategies []GradeStrategy) *GradeExtractor {
	if cfg.Threshold <= 0 {
		cfg.Threshold = fuzzy.DefaultThreshold
	}
	if cfg.PEArtsYear == "" {
		cfg.PEArtsYear = PEArtsSection
	}
	return &GradeExtractor{matcher: m, cfg: cfg, strategies: strategies}
}

// Extract returns every grade record of a segmented document.
func (e *GradeExtractor) Extract(layout segment.Layout, years model.YearMap, studentID string) []model.Grade {
	var grades []model.Grade
	for _, section := range layout.Sections {
		grades = append(grades, e.ExtractSection(section, years, studentID)...)
	}
	return append(grades, e.extractPEArts(layout, years, studentID)...)
}

// ExtractSection applies the strategy chain to one grade section. Every
// strategy runs over the whole section; a row is kept when it builds a valid
// record and overlaps no span claimed by an earlier record, so looser layouts
// only fill in rows the stricter ones missed. Records are returned in section
// order.
func (e *GradeExtractor) ExtractSection(section segment.Section, years model.YearMap, studentID string) []model.Grade {
	type claimed struct {
		grade      model.Grade
		start, end int
	}
	var rows []claimed
	overlaps := func(start, end int) bool {
		for _, c := range rows {
			if start < c.end && c.start < end {
				return true
			}
		}
		return false
	}

	for _, strategy := range e.strategies {
		for _, row := range strategy.Rows(section.Text) {
			if overlaps(row.Start, row.End) {
				continue
			}
			g, ok := e.build(row, strategy.Name(), section.Grade, years, studentID)
			if !ok {
				continue
			}
			rows = append(rows, claimed{grade: g, start: row.Start, end: row.End})
		}
	}
	if len(rows) == 0 {
		return nil
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].start < rows[j].start })
	grades := make([]model.Grade, len(rows))
	for i, c := range rows {
		grades[i] = c.grade
	}
	return grades
}

func (e *GradeExtractor) build(row Row, strategy string, gradeYear int, years model.YearMap, studentID string) (model.Grade, bool) {
	severity, ok := vocab.Severity(row.Achievement)
	if !ok {
		return model.Grade{}, false
	}
	raw, match := resolveSubject(e.matcher, row.Subject, e.cfg.Threshold)
	group := e.matcher.Vocabulary().Group(match.Subject)
	if !match.Matched() && row.Area != "" {
		group = e.matcher.Vocabulary().Group(row.Area)
	}
	return model.Grade{
		StudentID:     studentID,
		GradeYear:     gradeYear,
		Year:          years.Lookup(gradeYear),
		Term:          1,
		Subject:       match.Subject,
		SubjectRaw:    raw,
		SubjectGroup:  group,
		Achievement:   row.Achievement,
		Severity:      severity,
		GradeType:     vocab.GradeTypeOf(row.Achievement),
		MatchScore:    match.Score,
		Strategy:      strategy,
		Units:         row.Units,
		RawScore:      row.RawScore,
		CohortAverage: row.CohortAverage,
		StdDev:        row.StdDev,
		CohortSize:    row.CohortSize,
		Rank:          row.Rank,
	}, true
}

// extractPEArts finds the two-term PE/arts rows. The search covers the text
// after each PE/arts header, or every section when no header is present.
// Rows under a header placed before the first grade section count as grade 1.
func (e *GradeExtractor) extractPEArts(layout segment.Layout, years model.YearMap, studentID string) []model.Grade {
	type scope struct {
		text  string
		grade int
	}
	var scopes []scope
	switch {
	case len(layout.Sections) == 0:
		scopes = append(scopes, scope{text: afterPEArtsHeader(layout.Text), grade: 1})
	default:
		if prefix := layout.Text[:layout.Sections[0].Start]; peArtsHeader.MatchString(prefix) {
			scopes = append(scopes, scope{text: afterPEArtsHeader(prefix), grade: 1})
		}
		for _, s := range layout.Sections {
			scopes = append(scopes, scope{text: afterPEArtsHeader(s.Text), grade: s.Grade})
		}
	}

	var grades []model.Grade
	for _, sc := range scopes {
		gradeYear := sc.grade
		if e.cfg.PEArtsYear == PEArtsFirst {
			gradeYear = 1
		}
		for _, m := range peArtsRow.FindAllStringSubmatch(sc.text, -1) {
			group := vocab.GroupArts
			if strings.Contains(m[1], "체육") {
				group = vocab.GroupPhysical
			}
			subject, match := resolveSubject(e.matcher, cleanSubject(m[2]), e.cfg.Threshold)
			for term, cols := range [][2]string{{m[3], m[4]}, {m[5], m[6]}} {
				severity, ok := vocab.Severity(cols[1])
				if !ok {
					continue
				}
				grades = append(grades, model.Grade{
					StudentID:    studentID,
					GradeYear:    gradeYear,
					Year:         years.Lookup(gradeYear),
					Term:         term + 1,
					Subject:      match.Subject,
					SubjectRaw:   subject,
					SubjectGroup: group,
					Achievement:  cols[1],
					Severity:     severity,
					GradeType:    model.GradeTypeAchievement,
					MatchScore:   match.Score,
					Strategy:     StrategyPEArts,
					Units:        parseInt(cols[0]),
				})
			}
		}
	}
	return grades
}

// afterPEArtsHeader returns the text following PE/arts headers, or all of
// text when it has none.
func afterPEArtsHeader(text string) string {
	locs := peArtsHeader.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text
	}
	parts := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		parts = append(parts, text[loc[1]:end])
	}
	return strings.Join(parts, " ")
}
