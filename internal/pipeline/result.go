package pipeline

import (
	"sort"

	"github.com/Veraticus/saenggibu/internal/model"
)

// Result is the merged output of a run.
type Result struct {
	Students      []model.Student
	Grades        []model.Grade
	Narratives    []model.Narrative
	Volatility    []model.Volatility
	YearlyCovid   []model.YearlyCovid
	KeywordTotals []model.KeywordTotal
	Failures      []*DocumentError
	Documents     int
}

func (r *Result) add(doc *DocumentResult) {
	r.Students = append(r.Students, doc.Student)
	r.Grades = append(r.Grades, doc.Grades...)
	r.Narratives = append(r.Narratives, doc.Narratives...)
	r.Volatility = append(r.Volatility, doc.Volatility)
}

// Succeeded is the number of documents that produced a student record.
func (r *Result) Succeeded() int {
	return len(r.Students)
}

// YearlyCovid projects students into one row per grade level with a known year.
func YearlyCovid(students []model.Student) []model.YearlyCovid {
	var rows []model.YearlyCovid
	for _, s := range students {
		for grade := 1; grade <= model.GradeLevels; grade++ {
			year, ok := s.YearOf(grade)
			if !ok {
				continue
			}
			rows = append(rows, model.YearlyCovid{
				AnonymousID:   s.AnonymousID,
				Grade:         grade,
				Year:          year,
				IsCovidPeriod: s.Covid[grade-1],
			})
		}
	}
	return rows
}

// KeywordTotals sums keyword counts per student, ordered by anonymized id.
func KeywordTotals(narratives []model.Narrative) []model.KeywordTotal {
	sums := make(map[string]model.KeywordCounts)
	for _, n := range narratives {
		sums[n.StudentID] = sums[n.StudentID].Add(n.Counts)
	}

	totals := make([]model.KeywordTotal, 0, len(sums))
	for id, counts := range sums {
		totals = append(totals, model.KeywordTotal{AnonymousID: id, KeywordCounts: counts})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].AnonymousID < totals[j].AnonymousID })
	return totals
}
