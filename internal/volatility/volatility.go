// Package volatility summarizes the dispersion of a student's grade severities.
package volatility

import (
	"math"

	"github.com/Veraticus/saenggibu/internal/model"
)

// MinGradeRecords is the fewest records a grade level needs for its own statistics.
const MinGradeRecords = 2

// Summarize computes overall and per-grade statistics over the severities of
// grades. Grade levels with fewer than MinGradeRecords records report zeros.
func Summarize(studentID string, grades []model.Grade) model.Volatility {
	v := model.Volatility{StudentID: studentID}

	all := make([]float64, 0, len(grades))
	var byGrade [model.GradeLevels][]float64
	for _, g := range grades {
		s := float64(g.Severity)
		all = append(all, s)
		if g.GradeYear >= 1 && g.GradeYear <= model.GradeLevels {
			byGrade[g.GradeYear-1] = append(byGrade[g.GradeYear-1], s)
		}
	}

	v.Overall = describe(all)
	for i, values := range byGrade {
		if len(values) >= MinGradeRecords {
			v.ByGrade[i] = describe(values)
		}
	}
	return v
}

// describe returns the mean and sample standard deviation of values.
// The deviation is zero for fewer than two values.
func describe(values []float64) model.Stats {
	n := len(values)
	if n == 0 {
		return model.Stats{}
	}
	var sum float64
	for _, x := range values {
		sum += x
	}
	mean := sum / float64(n)

	stats := model.Stats{Mean: mean, Count: n}
	if n > 1 {
		var sq float64
		for _, x := range values {
			sq += (x - mean) * (x - mean)
		}
		stats.StdDev = math.Sqrt(sq / float64(n-1))
	}
	return stats
}
