package cohort

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/saenggibu/internal/model"
	"github.com/Veraticus/saenggibu/internal/segment"
)

func TestParseFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     Identity
	}{
		{
			name:     "all fields",
			filename: "data/raw/S001_1학년_CS_Kim_early.txt",
			want: Identity{
				StudentID:     "S001",
				GradeToken:    "1학년",
				Major:         "CS",
				Name:          "Kim",
				AdmissionType: "early",
				CurrentGrade:  1,
			},
		},
		{
			name:     "missing trailing fields default to unknown",
			filename: "S002_3학년.txt",
			want: Identity{
				StudentID:     "S002",
				GradeToken:    "3학년",
				Major:         model.Unknown,
				Name:          model.Unknown,
				AdmissionType: model.Unknown,
				CurrentGrade:  3,
			},
		},
		{
			name:     "empty fields default to unknown",
			filename: "_.txt",
			want: Identity{
				StudentID:     model.Unknown,
				GradeToken:    model.Unknown,
				Major:         model.Unknown,
				Name:          model.Unknown,
				AdmissionType: model.Unknown,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFilename(tt.filename))
		})
	}
}

func TestAnonymousID(t *testing.T) {
	a := AnonymousID("Kim", "S001")
	assert.Len(t, a, AnonymousIDLength)
	assert.Equal(t, a, AnonymousID("Kim", "S001"), "hash must be stable")
	assert.NotEqual(t, a, AnonymousID("Kim", "S002"))
	assert.NotEqual(t, a, AnonymousID("Lee", "S001"))
	assert.NotContains(t, a, "Kim")

	// sha256("Kim_S001") and sha256("Kim"), truncated.
	assert.Equal(t, "b2fb6a6be3e7b274", a)
	assert.Equal(t, "d25949ef", NameHash("Kim"))
}

func TestExplicitPairs(t *testing.T) {
	s := ExplicitPairs{Range: YearRange{Min: 2010, Max: 2025}}

	text := "교내 과학경진대회 2021.05.03 1학년 금상\n" +
		"교내 토론대회 2022.06.01 2학년 은상\n" +
		"교내 글쓰기대회 2021.09.10 1학년 동상\n" +
		"3학년 진로활동 2023년 참여\n" +
		"2040.01.01 2학년 오류\n"

	got := s.Infer(text)
	assert.Equal(t, model.YearMap{1: 2021, 2: 2022, 3: 2023}, got)
}

func TestExplicitPairs_FirstSeenWins(t *testing.T) {
	s := ExplicitPairs{Range: YearRange{Min: 2010, Max: 2025}}
	got := s.Infer("2020.03.02 1학년\n2019.03.02 1학년")
	assert.Equal(t, model.YearMap{1: 2020}, got)
}

func TestMentionFallback(t *testing.T) {
	r := YearRange{Min: 2010, Max: 2025}

	t.Run("lowest", func(t *testing.T) {
		s := MentionFallback{Mode: FallbackLowest, Range: r}
		got := s.Infer("수상 (2019) 2019년 2020.05.01 2021년 2030년")
		assert.Equal(t, model.YearMap{1: 2019, 2: 2020, 3: 2021}, got)
	})

	t.Run("frequent", func(t *testing.T) {
		text := "(2015) 2020년 2020년 2020년 2021년 2021년 2022년 2022년"
		lowest := MentionFallback{Mode: FallbackLowest, Range: r}.Infer(text)
		frequent := MentionFallback{Mode: FallbackFrequent, Range: r}.Infer(text)
		assert.Equal(t, model.YearMap{1: 2015, 2: 2016, 3: 2017}, lowest)
		assert.Equal(t, model.YearMap{1: 2020, 2: 2021, 3: 2022}, frequent)
	})

	t.Run("no mentions", func(t *testing.T) {
		s := MentionFallback{Mode: FallbackLowest, Range: r}
		assert.Empty(t, s.Infer("연도 없음"))
	})
}

func TestInferYears_Precedence(t *testing.T) {
	cfg := DefaultConfig()
	strategies := []YearStrategy{
		ExplicitPairs{Range: cfg.Years},
		MentionFallback{Mode: cfg.Fallback, Range: cfg.Years},
	}

	years, name := InferYears("2018년 입학 2021.03.02 1학년", strategies)
	assert.Equal(t, "explicit", name)
	assert.Equal(t, model.YearMap{1: 2021}, years)

	years, name = InferYears("2018년 입학", strategies)
	assert.Equal(t, "mentions-lowest", name)
	assert.Equal(t, model.YearMap{1: 2018, 2: 2019, 3: 2020}, years)

	years, name = InferYears("아무것도 없음", strategies)
	assert.Empty(t, name)
	assert.Empty(t, years)
}

func TestRemoteDays(t *testing.T) {
	text := segment.Normalize("요약: 3학년 원격수업 40일\n" +
		"[1학년] 원격수업 일수: 35일 원격 수업 35일\n" +
		"[2학년] 윈격수업 12일 온라인수업(250일)")

	got := RemoteDays(text, segment.Sections(text))
	assert.Equal(t, map[int]int{1: 35, 2: 12, 3: 40}, got)
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(DefaultConfig())
	doc := model.Document{
		Filename: "S001_1학년_CS_Kim_early.txt",
		Text:     "2021.03.02 1학년\n[1학년]\n국어 3 88/75.2(10.1) B(120)\n",
	}

	res := r.Resolve(doc, segment.Analyze(doc.Text, false))
	s := res.Student

	year, ok := s.YearOf(1)
	require.True(t, ok)
	assert.Equal(t, 2021, year)
	_, ok = s.YearOf(2)
	assert.False(t, ok)

	assert.True(t, s.Covid[0])
	assert.Equal(t, 1, s.CovidIntensity)
	assert.True(t, s.AnyCovid())
	assert.Equal(t, "explicit", res.YearStrategy)

	assert.Equal(t, AnonymousID("Kim", "S001"), s.AnonymousID)
	assert.Equal(t, "CS", s.Major)
	assert.Equal(t, "early", s.AdmissionType)
	assert.Equal(t, 1, s.CurrentGrade)
	assert.Nil(t, s.GraduationYear())
}

func TestResolver_CovidIntensityBound(t *testing.T) {
	r := NewResolver(DefaultConfig())

	texts := []string{
		"",
		"2016년",
		"2019년",
		"2020년",
		"2021.03.02 1학년\n2022.03.02 2학년\n2020.03.02 3학년",
		"2023.03.02 1학년",
	}
	for _, text := range texts {
		s := r.Resolve(model.Document{Filename: "x_1학년_a_b_c.txt", Text: text}, segment.Analyze(text, false)).Student
		sum := 0
		for _, c := range s.Covid {
			if c {
				sum++
			}
		}
		assert.GreaterOrEqual(t, s.CovidIntensity, 0)
		assert.LessOrEqual(t, s.CovidIntensity, 3)
		assert.Equal(t, sum, s.CovidIntensity, text)
	}
}

func TestResolver_FallbackYearsAndGraduation(t *testing.T) {
	r := NewResolver(DefaultConfig())
	text := "봉사활동 2019.04.01 ~ 2019.04.02\n2021년 졸업예정"
	s := r.Resolve(model.Document{Filename: "S9_3학년_인문_Lee_수시.txt", Text: text}, segment.Analyze(text, false)).Student

	assert.Equal(t, model.YearMap{1: 2019, 2: 2020, 3: 2021}, s.Years())
	assert.Equal(t, [3]bool{false, true, true}, s.Covid)
	assert.Equal(t, 2, s.CovidIntensity)
	require.NotNil(t, s.GraduationYear())
	assert.Equal(t, 2022, *s.GraduationYear())
}
