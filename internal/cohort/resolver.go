// Package cohort derives the de-identified student record from a transcript:
// anonymized identity, per-grade academic years, pandemic exposure and
// remote-instruction day counts.
package cohort

import (
	"github.com/Veraticus/saenggibu/internal/model"
	"github.com/Veraticus/saenggibu/internal/segment"
)

// Config controls year inference and the pandemic window.
type Config struct {
	Fallback   FallbackMode
	Years      YearRange
	CovidStart int
	CovidEnd   int
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Years:      YearRange{Min: 2010, Max: 2025},
		CovidStart: 2020,
		CovidEnd:   2022,
		Fallback:   FallbackLowest,
	}
}

// Resolver builds Student records. It is stateless and safe for concurrent use.
type Resolver struct {
	strategies []YearStrategy
	cfg        Config
}

// NewResolver creates a resolver with the explicit-pair strategy followed by
// the year-mention fallback.
func NewResolver(cfg Config) *Resolver {
	return &Resolver{
		cfg: cfg,
		strategies: []YearStrategy{
			ExplicitPairs{Range: cfg.Years},
			MentionFallback{Mode: cfg.Fallback, Range: cfg.Years},
		},
	}
}

// Resolution is a Student record plus the diagnostics behind it.
type Resolution struct {
	Years        model.YearMap
	YearStrategy string
	Student      model.Student
}

// Resolve derives the student record for doc. layout must be the
// segmentation of doc.Text.
func (r *Resolver) Resolve(doc model.Document, layout segment.Layout) Resolution {
	id := ParseFilename(doc.Filename)
	years, strategy := InferYears(doc.Text, r.strategies)

	student := model.Student{
		AnonymousID:   AnonymousID(id.Name, id.StudentID),
		NameHash:      NameHash(id.Name),
		Major:         id.Major,
		AdmissionType: id.AdmissionType,
		CurrentGrade:  id.CurrentGrade,
	}

	for grade := 1; grade <= model.GradeLevels; grade++ {
		student.GradeYears[grade-1] = years.Lookup(grade)
		if year, ok := years[grade]; ok && r.InCovidWindow(year) {
			student.Covid[grade-1] = true
			student.CovidIntensity++
		}
	}

	for grade, n := range RemoteDays(layout.Text, layout.Sections) {
		student.RemoteDays[grade-1] = &n
	}

	return Resolution{Student: student, Years: years, YearStrategy: strategy}
}

// InCovidWindow reports whether year falls inside the pandemic window.
func (r *Resolver) InCovidWindow(year int) bool {
	return year >= r.cfg.CovidStart && year <= r.cfg.CovidEnd
}
