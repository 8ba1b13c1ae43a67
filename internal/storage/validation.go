package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/saenggibu/internal/model"
	"github.com/Veraticus/saenggibu/internal/pipeline"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrNilParameter    = errors.New("parameter cannot be nil")
	ErrInvalidStudent  = errors.New("invalid student")
	ErrInvalidGrade    = errors.New("invalid grade")
	ErrUnknownStudent  = errors.New("record references unknown student")
	ErrInvalidRunTable = errors.New("unknown run table")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateResult checks that every record of res belongs to one of its students.
func validateResult(res *pipeline.Result) error {
	if res == nil {
		return fmt.Errorf("%w: result", ErrNilParameter)
	}

	students := make(map[string]bool, len(res.Students))
	for i := range res.Students {
		if err := validateStudent(&res.Students[i]); err != nil {
			return err
		}
		students[res.Students[i].AnonymousID] = true
	}

	for i := range res.Grades {
		g := &res.Grades[i]
		if err := validateGrade(g); err != nil {
			return err
		}
		if !students[g.StudentID] {
			return fmt.Errorf("%w: grade for %s", ErrUnknownStudent, g.StudentID)
		}
	}
	for _, n := range res.Narratives {
		if !students[n.StudentID] {
			return fmt.Errorf("%w: narrative for %s", ErrUnknownStudent, n.StudentID)
		}
	}
	return nil
}

func validateStudent(s *model.Student) error {
	if s.AnonymousID == "" {
		return fmt.Errorf("%w: anonymous id is required", ErrInvalidStudent)
	}
	if s.CovidIntensity < 0 || s.CovidIntensity > model.GradeLevels {
		return fmt.Errorf("%w: covid intensity %d out of range", ErrInvalidStudent, s.CovidIntensity)
	}
	return nil
}

func validateGrade(g *model.Grade) error {
	if g.Achievement == "" {
		return fmt.Errorf("%w: achievement is required", ErrInvalidGrade)
	}
	if g.GradeYear < 0 || g.GradeYear > model.GradeLevels {
		return fmt.Errorf("%w: grade year %d out of range", ErrInvalidGrade, g.GradeYear)
	}
	return nil
}
