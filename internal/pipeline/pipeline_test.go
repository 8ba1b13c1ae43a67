package pipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/text/encoding/korean"

	"github.com/Veraticus/saenggibu/internal/cohort"
	"github.com/Veraticus/saenggibu/internal/common"
	"github.com/Veraticus/saenggibu/internal/extract"
	"github.com/Veraticus/saenggibu/internal/fuzzy"
	"github.com/Veraticus/saenggibu/internal/model"
	"github.com/Veraticus/saenggibu/internal/testutil"
	"github.com/Veraticus/saenggibu/internal/vocab"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func scenarioTranscript() string {
	return testutil.NewTranscript().
		WithYear(1, 2021).
		WithGrades(1, "국어 3 88/75.2(10.1) B(120)").
		WithNarrative(1, "수학", "수업에 적극적으로 참여하며 탐구 활동을 수행함.").
		String()
}

func TestDecode(t *testing.T) {
	t.Run("utf-8 with byte order mark", func(t *testing.T) {
		text, enc, err := Decode(append([]byte{0xEF, 0xBB, 0xBF}, []byte("[1학년] 국어")...))
		require.NoError(t, err)
		assert.Equal(t, "[1학년] 국어", text)
		assert.Equal(t, EncodingUTF8, enc)
	})

	t.Run("cp949 fallback", func(t *testing.T) {
		encoded, err := korean.EUCKR.NewEncoder().Bytes([]byte("세부능력 및 특기사항"))
		require.NoError(t, err)

		text, enc, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, "세부능력 및 특기사항", text)
		assert.Equal(t, EncodingCP949, enc)
	})

	t.Run("undecodable", func(t *testing.T) {
		_, _, err := Decode([]byte{0xFF, 0xFF, 0xFF, 0xFF})
		require.ErrorIs(t, err, common.ErrUndecodable)
	})
}

func TestDriver_ProcessScenario(t *testing.T) {
	d := New(DefaultConfig())

	res, err := d.Process(model.Document{Filename: "S001_1학년_CS_Kim_early.txt", Text: scenarioTranscript()})
	require.NoError(t, err)

	s := res.Student
	assert.Equal(t, "b2fb6a6be3e7b274", s.AnonymousID)
	year, ok := s.YearOf(1)
	require.True(t, ok)
	assert.Equal(t, 2021, year)
	assert.True(t, s.Covid[0])
	assert.Equal(t, 1, s.CovidIntensity)
	assert.Equal(t, 1, s.CurrentGrade)

	require.Len(t, res.Grades, 1)
	g := res.Grades[0]
	assert.Equal(t, "국어", g.Subject)
	assert.Equal(t, "B", g.Achievement)
	assert.Equal(t, 2, g.Severity)
	assert.Equal(t, s.AnonymousID, g.StudentID)

	require.Len(t, res.Narratives, 1)
	n := res.Narratives[0]
	assert.Equal(t, "수학", n.Subject)
	assert.GreaterOrEqual(t, n.Counts.Exploration, 1)
	assert.Equal(t, 0, n.Counts.Online)

	assert.Equal(t, s.AnonymousID, res.Volatility.StudentID)
	assert.Equal(t, 1, res.Volatility.Overall.Count)
}

func TestDriver_ProcessWithoutGrades(t *testing.T) {
	d := New(DefaultConfig())

	res, err := d.Process(model.Document{Filename: "S002_2학년_EE_Lee_regular.txt", Text: "출결 상황 특이사항 없음"})
	require.NoError(t, err)

	assert.NotEmpty(t, res.Student.AnonymousID)
	assert.Empty(t, res.Grades)
	assert.Empty(t, res.Narratives)
	assert.Equal(t, model.Volatility{StudentID: res.Student.AnonymousID}, res.Volatility)
	assert.Equal(t, 0, res.Student.CovidIntensity)
}

func TestDriver_ProcessEmpty(t *testing.T) {
	_, err := New(DefaultConfig()).Process(model.Document{Filename: "S003.txt", Text: " \n\t"})
	require.ErrorIs(t, err, common.ErrEmptyDocument)
}

type panickingStrategy struct{}

func (panickingStrategy) Name() string { return "panics" }
func (panickingStrategy) Rows(string) []extract.Row {
	panic("index out of range")
}

func TestDriver_ProcessRecoversPanics(t *testing.T) {
	d := New(DefaultConfig())
	d.grades = extract.NewGradeExtractorWithStrategies(
		fuzzy.NewMatcher(vocab.Default(), fuzzy.KeepRaw),
		extract.DefaultGradeConfig(),
		[]extract.GradeStrategy{panickingStrategy{}},
	)

	res, err := d.Process(model.Document{Filename: "S004.txt", Text: scenarioTranscript()})
	require.ErrorIs(t, err, ErrPanic)
	assert.Nil(t, res)
}

func writeCorpus(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()

	second := testutil.NewTranscript().
		WithYear(1, 2019).
		WithYear(2, 2020).
		WithGrades(1, "국어 4 수 수학 4 우").
		WithNarrative(1, "영어", "원격수업 기간에도 온라인 토론에 성실하게 참여함").
		String()

	return []string{
		testutil.WriteDocumentBytes(t, dir, "S009_3학년_ME_Choi_early.txt", []byte{0xFF, 0xFE, 0xFF, 0xFE}),
		testutil.WriteCP949Document(t, dir, "S002_2학년_EE_Lee_regular.txt", second),
		testutil.WriteDocument(t, dir, "S001_1학년_CS_Kim_early.txt", scenarioTranscript()),
	}
}

func TestDriver_Run(t *testing.T) {
	paths := writeCorpus(t)

	cfg := DefaultConfig()
	cfg.Workers = 2
	d := New(cfg)

	var mu sync.Mutex
	var seen []string
	d.OnProgress(func(done, total int, file string) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 3, total)
		assert.LessOrEqual(t, done, total)
		seen = append(seen, file)
	})

	res, err := d.Run(context.Background(), paths)
	require.NoError(t, err)

	assert.Len(t, seen, 3)
	assert.Equal(t, 3, res.Documents)
	assert.Equal(t, 2, res.Succeeded())

	require.Len(t, res.Failures, 1)
	assert.Equal(t, 2, res.Failures[0].Index)
	assert.Equal(t, cohort.AnonymousID("Choi", "S009"), res.Failures[0].StudentID)
	assert.NotContains(t, res.Failures[0].Error(), "Choi")
	assert.ErrorIs(t, res.Failures[0], common.ErrUndecodable)

	require.Len(t, res.Students, 2)
	assert.Equal(t, "b2fb6a6be3e7b274", res.Students[0].AnonymousID, "students follow sorted file order")
	assert.Len(t, res.Volatility, 2)

	second := res.Students[1]
	assert.Equal(t, 1, second.CovidIntensity)
	assert.Len(t, res.Grades, 3)
	assert.Len(t, res.Narratives, 2)

	assert.Equal(t, []model.YearlyCovid{
		{AnonymousID: res.Students[0].AnonymousID, Grade: 1, Year: 2021, IsCovidPeriod: true},
		{AnonymousID: second.AnonymousID, Grade: 1, Year: 2019},
		{AnonymousID: second.AnonymousID, Grade: 2, Year: 2020, IsCovidPeriod: true},
	}, res.YearlyCovid)
	assert.Len(t, res.KeywordTotals, 2)
}

func TestDriver_RunIsIdempotent(t *testing.T) {
	paths := writeCorpus(t)
	cfg := DefaultConfig()
	cfg.Workers = 3

	first, err := New(cfg).Run(context.Background(), paths)
	require.NoError(t, err)
	reversed := []string{paths[2], paths[1], paths[0]}
	second, err := New(cfg).Run(context.Background(), reversed)
	require.NoError(t, err)

	for name, pair := range map[string][2]any{
		"students":   {first.Students, second.Students},
		"grades":     {first.Grades, second.Grades},
		"narratives": {first.Narratives, second.Narratives},
		"volatility": {first.Volatility, second.Volatility},
		"covid":      {first.YearlyCovid, second.YearlyCovid},
		"keywords":   {first.KeywordTotals, second.KeywordTotals},
	} {
		if diff := cmp.Diff(pair[0], pair[1]); diff != "" {
			t.Errorf("%s differ between runs (-first +second):\n%s", name, diff)
		}
	}
}

func TestDriver_RunErrors(t *testing.T) {
	_, err := New(DefaultConfig()).Run(context.Background(), nil)
	require.ErrorIs(t, err, common.ErrNoDocuments)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(DefaultConfig()).Run(ctx, writeCorpus(t))
	require.ErrorIs(t, err, context.Canceled)
}

func TestYearlyCovid(t *testing.T) {
	y2020, y2021 := 2020, 2021
	students := []model.Student{
		{AnonymousID: "a", GradeYears: [3]*int{&y2020, nil, &y2021}, Covid: [3]bool{true, false, true}},
		{AnonymousID: "b"},
	}

	assert.Equal(t, []model.YearlyCovid{
		{AnonymousID: "a", Grade: 1, Year: 2020, IsCovidPeriod: true},
		{AnonymousID: "a", Grade: 3, Year: 2021, IsCovidPeriod: true},
	}, YearlyCovid(students))
	assert.Empty(t, YearlyCovid(nil))
}

func TestKeywordTotals(t *testing.T) {
	narratives := []model.Narrative{
		{StudentID: "b", Counts: model.KeywordCounts{Exploration: 1}},
		{StudentID: "a", Counts: model.KeywordCounts{Online: 2, Qualitative: 1}},
		{StudentID: "b", Counts: model.KeywordCounts{Exploration: 2, Qualitative: 3}},
	}

	assert.Equal(t, []model.KeywordTotal{
		{AnonymousID: "a", KeywordCounts: model.KeywordCounts{Online: 2, Qualitative: 1}},
		{AnonymousID: "b", KeywordCounts: model.KeywordCounts{Exploration: 3, Qualitative: 3}},
	}, KeywordTotals(narratives))
	assert.Empty(t, KeywordTotals(nil))
}
