package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Row is one structurally matched grade line before subject resolution.
// Start and End are the byte offsets of the line within the section.
type Row struct {
	Units         *int
	RawScore      *float64
	CohortAverage *float64
	StdDev        *float64
	CohortSize    *int
	Rank          *int
	Area          string
	Subject       string
	Achievement   string
	Start         int
	End           int
}

// GradeStrategy finds grade rows in a section. Strategies are tried in order;
// a row is kept only when no earlier strategy produced a record overlapping
// its span.
type GradeStrategy interface {
	Name() string
	Rows(section string) []Row
}

// Building blocks for the row layout
// "subject units raw/average(stddev) achievement(cohort) [rank]".
const (
	subjectExpr = `(?P<subject>[가-힣A-Za-zⅠⅡⅢ·][가-힣A-Za-z\s./ⅠⅡⅢ·]*?)`
	areaExpr    = `(?P<area>국어|수학|영어|한국사|사회(?:\([^)]*\))?|과학|체육|예술|기술\s*[·.]?\s*가정(?:/[가-힣]+)?|제2외국어(?:/한문)?|한문|교양)`
	decimalExpr = `\d+\.?\s*\d*`
	statsExpr   = `(?P<units>\d+)\s+(?P<raw>\d+(?:\.\d+)?)\s*/\s*(?P<avg>` + decimalExpr + `)\s*\(\s*(?P<std>` + decimalExpr + `)\s*\)`
	cohortExpr  = `\s*\(\s*(?P<size>\d+)\s*\)`
	rankExpr    = `(?:\s+(?P<rank>[1-9])(?:\s|$))?`
)

// patternStrategy extracts rows with a single regular expression using named groups.
type patternStrategy struct {
	re   *regexp.Regexp
	name string
}

func newPatternStrategy(name, expr string) *patternStrategy {
	return &patternStrategy{name: name, re: regexp.MustCompile(expr)}
}

func (p *patternStrategy) Name() string { return p.name }

func (p *patternStrategy) Rows(section string) []Row {
	names := p.re.SubexpNames()
	var rows []Row
	for _, loc := range p.re.FindAllStringSubmatchIndex(section, -1) {
		row := Row{Start: loc[0], End: loc[1]}
		for i, name := range names {
			if name == "" || loc[2*i] < 0 {
				continue
			}
			v := section[loc[2*i]:loc[2*i+1]]
			if v == "" {
				continue
			}
			switch name {
			case "subject":
				row.Subject = cleanSubject(v)
			case "area":
				row.Area = cleanSubject(v)
			case "ach":
				row.Achievement = strings.ToUpper(v)
			case "units":
				row.Units = parseInt(v)
			case "size":
				row.CohortSize = parseInt(v)
			case "rank":
				row.Rank = parseInt(v)
			case "raw":
				row.RawScore = parseFloat(v)
			case "avg":
				row.CohortAverage = parseFloat(v)
			case "std":
				row.StdDev = parseFloat(v)
			}
		}
		if row.Subject == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// DefaultGradeStrategies returns the grade row layouts, most specific first.
func DefaultGradeStrategies() []GradeStrategy {
	return []GradeStrategy{
		// Curriculum area column before the subject.
		newPatternStrategy("area-subject",
			areaExpr+`\s+`+subjectExpr+`\s+`+statsExpr+`\s+(?P<ach>[A-EP])`+cohortExpr+rankExpr),
		// Subject, statistics, letter achievement and optional rank.
		newPatternStrategy("standard",
			subjectExpr+`\s+`+statsExpr+`\s+(?P<ach>[A-EP])`+cohortExpr+rankExpr),
		// Relative rank grade in place of an achievement letter.
		newPatternStrategy("rank-grade",
			subjectExpr+`\s+`+statsExpr+`\s+(?P<ach>[1-9])`+cohortExpr),
		// OCR-damaged rows: slash read as l/I/|, brackets swapped, comma decimals,
		// lowercase or descriptive achievement symbols.
		newPatternStrategy("ocr-loose",
			subjectExpr+`\s+(?P<units>\d+)\s+(?P<raw>\d+(?:[.,]\d+)?)\s*[/lI|]\s*(?P<avg>\d+[.,]?\s*\d*)\s*[(\[{]\s*(?P<std>\d+[.,]?\s*\d*)\s*[)\]}]\s*(?P<ach>[A-EPa-ep수우미양가1-9])\s*[(\[{]\s*(?P<size>\d+)\s*[)\]}]`),
		// Older transcripts: subject, units and a descriptive grade only.
		newPatternStrategy("descriptive",
			`(?P<subject>[가-힣][가-힣ⅠⅡⅢ·]*)\s+(?P<units>\d)\s+(?P<ach>[수우미양가])(?:\s|$)`),
	}
}

var spaces = regexp.MustCompile(`\s+`)

func cleanSubject(s string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

func parseInt(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

// parseFloat reads an OCR number: inner spaces are dropped and a comma is a decimal point.
func parseFloat(s string) *float64 {
	s = strings.ReplaceAll(spaces.ReplaceAllString(s, ""), ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
