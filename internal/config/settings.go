package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/saenggibu/internal/cohort"
	"github.com/Veraticus/saenggibu/internal/common"
	"github.com/Veraticus/saenggibu/internal/extract"
	"github.com/Veraticus/saenggibu/internal/fuzzy"
)

// EnvPrefix is the prefix of environment variables overriding configuration keys.
const EnvPrefix = "SAENGGIBU"

// Settings is the resolved configuration of a parsing run.
type Settings struct {
	InputPattern       string
	OutputDir          string
	Database           string
	VocabularyFile     string
	GradeNoMatch       string
	NarrativeNoMatch   string
	Fallback           string
	PEArtsYear         string
	Workers            int
	GradeThreshold     int
	NarrativeThreshold int
	MinNarrativeLength int
	MinYear            int
	MaxYear            int
	CovidStart         int
	CovidEnd           int
	WriteBOM           bool
	Checkpoint         bool
	AllNarrativeBlocks bool
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	cohortDefaults := cohort.DefaultConfig()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("input.pattern", "*.txt")
	v.SetDefault("output.dir", "data/processed")
	v.SetDefault("output.database", "")
	v.SetDefault("output.bom", true)
	v.SetDefault("output.checkpoint", false)
	v.SetDefault("pipeline.workers", runtime.NumCPU())
	v.SetDefault("matcher.grade_threshold", fuzzy.DefaultThreshold)
	v.SetDefault("matcher.narrative_threshold", fuzzy.DefaultThreshold)
	v.SetDefault("matcher.grade_no_match", "raw")
	v.SetDefault("matcher.narrative_no_match", "raw")
	v.SetDefault("narrative.min_length", extract.DefaultMinNarrativeLength)
	v.SetDefault("narrative.all_blocks", false)
	v.SetDefault("cohort.min_year", cohortDefaults.Years.Min)
	v.SetDefault("cohort.max_year", cohortDefaults.Years.Max)
	v.SetDefault("cohort.covid_start", cohortDefaults.CovidStart)
	v.SetDefault("cohort.covid_end", cohortDefaults.CovidEnd)
	v.SetDefault("cohort.fallback", string(cohortDefaults.Fallback))
	v.SetDefault("grades.pe_arts_year", string(extract.PEArtsSection))
	v.SetDefault("vocabulary.file", "")
}

// Load reads Settings from v after applying defaults. Paths are expanded.
func Load(v *viper.Viper) (*Settings, error) {
	SetDefaults(v)

	s := &Settings{
		InputPattern:       v.GetString("input.pattern"),
		OutputDir:          ExpandPath(v.GetString("output.dir")),
		Database:           ExpandPath(v.GetString("output.database")),
		WriteBOM:           v.GetBool("output.bom"),
		Checkpoint:         v.GetBool("output.checkpoint"),
		Workers:            v.GetInt("pipeline.workers"),
		GradeThreshold:     v.GetInt("matcher.grade_threshold"),
		NarrativeThreshold: v.GetInt("matcher.narrative_threshold"),
		GradeNoMatch:       v.GetString("matcher.grade_no_match"),
		NarrativeNoMatch:   v.GetString("matcher.narrative_no_match"),
		MinNarrativeLength: v.GetInt("narrative.min_length"),
		AllNarrativeBlocks: v.GetBool("narrative.all_blocks"),
		MinYear:            v.GetInt("cohort.min_year"),
		MaxYear:            v.GetInt("cohort.max_year"),
		CovidStart:         v.GetInt("cohort.covid_start"),
		CovidEnd:           v.GetInt("cohort.covid_end"),
		Fallback:           v.GetString("cohort.fallback"),
		PEArtsYear:         v.GetString("grades.pe_arts_year"),
		VocabularyFile:     ExpandPath(v.GetString("vocabulary.file")),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks ranges and enumerated values.
func (s *Settings) Validate() error {
	var problems []string

	if s.Workers < 1 {
		problems = append(problems, fmt.Sprintf("pipeline.workers must be at least 1, got %d", s.Workers))
	}
	for key, threshold := range map[string]int{
		"matcher.grade_threshold":     s.GradeThreshold,
		"matcher.narrative_threshold": s.NarrativeThreshold,
	} {
		if threshold < 0 || threshold > fuzzy.ScoreExact {
			problems = append(problems, fmt.Sprintf("%s must be between 0 and %d, got %d", key, fuzzy.ScoreExact, threshold))
		}
	}
	if _, ok := fuzzy.ParsePolicy(s.GradeNoMatch); !ok {
		problems = append(problems, fmt.Sprintf("matcher.grade_no_match must be raw or reject, got %q", s.GradeNoMatch))
	}
	if _, ok := fuzzy.ParsePolicy(s.NarrativeNoMatch); !ok {
		problems = append(problems, fmt.Sprintf("matcher.narrative_no_match must be raw or reject, got %q", s.NarrativeNoMatch))
	}
	if s.MinNarrativeLength < 1 {
		problems = append(problems, fmt.Sprintf("narrative.min_length must be positive, got %d", s.MinNarrativeLength))
	}
	if s.MinYear > s.MaxYear {
		problems = append(problems, fmt.Sprintf("cohort.min_year %d is after cohort.max_year %d", s.MinYear, s.MaxYear))
	}
	if s.CovidStart > s.CovidEnd {
		problems = append(problems, fmt.Sprintf("cohort.covid_start %d is after cohort.covid_end %d", s.CovidStart, s.CovidEnd))
	}
	if _, ok := s.FallbackMode(); !ok {
		problems = append(problems, fmt.Sprintf("cohort.fallback must be lowest or frequent, got %q", s.Fallback))
	}
	if _, ok := extract.ParsePEArtsYear(s.PEArtsYear); !ok {
		problems = append(problems, fmt.Sprintf("grades.pe_arts_year must be section or first, got %q", s.PEArtsYear))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", common.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// FallbackMode returns the configured year-mention fallback.
func (s *Settings) FallbackMode() (cohort.FallbackMode, bool) {
	switch mode := cohort.FallbackMode(strings.ToLower(strings.TrimSpace(s.Fallback))); mode {
	case cohort.FallbackLowest, cohort.FallbackFrequent:
		return mode, true
	case "":
		return cohort.FallbackLowest, true
	}
	return "", false
}

// CohortConfig converts the settings into resolver settings.
func (s *Settings) CohortConfig() cohort.Config {
	mode, _ := s.FallbackMode()
	return cohort.Config{
		Years:      cohort.YearRange{Min: s.MinYear, Max: s.MaxYear},
		CovidStart: s.CovidStart,
		CovidEnd:   s.CovidEnd,
		Fallback:   mode,
	}
}

// GradeConfig converts the settings into grade extractor settings.
func (s *Settings) GradeConfig() extract.GradeConfig {
	year, _ := extract.ParsePEArtsYear(s.PEArtsYear)
	return extract.GradeConfig{Threshold: s.GradeThreshold, PEArtsYear: year}
}

// NarrativeConfig converts the settings into narrative extractor settings.
func (s *Settings) NarrativeConfig() extract.NarrativeConfig {
	return extract.NarrativeConfig{Threshold: s.NarrativeThreshold, MinLength: s.MinNarrativeLength}
}

// GradePolicy is the no-match policy for grade subjects.
func (s *Settings) GradePolicy() fuzzy.NoMatchPolicy {
	p, _ := fuzzy.ParsePolicy(s.GradeNoMatch)
	return p
}

// NarrativePolicy is the no-match policy for narrative labels.
func (s *Settings) NarrativePolicy() fuzzy.NoMatchPolicy {
	p, _ := fuzzy.ParsePolicy(s.NarrativeNoMatch)
	return p
}
