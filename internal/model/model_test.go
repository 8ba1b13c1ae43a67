package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestStudent_Years(t *testing.T) {
	s := Student{GradeYears: [GradeLevels]*int{intPtr(2019), nil, intPtr(2021)}, CovidIntensity: 1}

	assert.Equal(t, YearMap{1: 2019, 3: 2021}, s.Years())
	_, ok := s.YearOf(2)
	assert.False(t, ok)
	_, ok = s.YearOf(4)
	assert.False(t, ok)

	grad := s.GraduationYear()
	require.NotNil(t, grad)
	assert.Equal(t, 2022, *grad)
	assert.True(t, s.AnyCovid())

	assert.Nil(t, Student{}.GraduationYear())
	assert.False(t, Student{}.AnyCovid())
}

func TestYearMap_Lookup(t *testing.T) {
	m := YearMap{2: 2020}

	got := m.Lookup(2)
	require.NotNil(t, got)
	assert.Equal(t, 2020, *got)
	assert.Nil(t, m.Lookup(1))
	assert.Nil(t, YearMap(nil).Lookup(1))
}

func TestNarrative_Frequencies(t *testing.T) {
	n := Narrative{ContentLength: 250, Counts: KeywordCounts{Exploration: 2, Online: 1, Qualitative: 5}}

	assert.InDelta(t, 8.0, n.ExplorationFreq(), 1e-9)
	assert.InDelta(t, 4.0, n.OnlineFreq(), 1e-9)
	assert.InDelta(t, 20.0, n.QualitativeFreq(), 1e-9)
	assert.Zero(t, PerThousand(3, 0))
}

func TestKeywordCounts_Add(t *testing.T) {
	got := KeywordCounts{Exploration: 1, Online: 2}.Add(KeywordCounts{Online: 1, Qualitative: 4})
	assert.Equal(t, KeywordCounts{Exploration: 1, Online: 3, Qualitative: 4}, got)
}
