package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/saenggibu/internal/fuzzy"
	"github.com/Veraticus/saenggibu/internal/model"
	"github.com/Veraticus/saenggibu/internal/segment"
	"github.com/Veraticus/saenggibu/internal/vocab"
)

func newNarrativeExtractor(policy fuzzy.NoMatchPolicy) *NarrativeExtractor {
	v := vocab.Default()
	return NewNarrativeExtractor(fuzzy.NewMatcher(v, policy), NewKeywordScorer(v.Keywords()), DefaultNarrativeConfig())
}

func TestEntries(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Entry
	}{
		{
			name: "two subjects with ascii and fullwidth colons",
			text: " 국어: 문학 작품을 깊이 있게 읽고 비평문을 작성함. 영어 Ⅰ： 영어 발표에 적극적으로 참여함",
			want: []Entry{
				{Label: "국어", Content: "문학 작품을 깊이 있게 읽고 비평문을 작성함."},
				{Label: "영어 Ⅰ", Content: "영어 발표에 적극적으로 참여함"},
			},
		},
		{
			name: "label keeps at most four words",
			text: "A: 가 나 다 라 마 바: 내용",
			want: []Entry{
				{Label: "A", Content: "가 나"},
				{Label: "다 라 마 바", Content: "내용"},
			},
		},
		{
			name: "colon after digits is content",
			text: "수학 : 10:30 부터 보충 수업을 들음",
			want: []Entry{
				{Label: "수학", Content: "10:30 부터 보충 수업을 들음"},
			},
		},
		{
			name: "no labels",
			text: "특기사항 없음",
			want: []Entry{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Entries(tt.text))
		})
	}
}

func TestNarrativeExtractor_Extract(t *testing.T) {
	e := newNarrativeExtractor(fuzzy.KeepRaw)
	layout := segment.Analyze("[1학년] 세부능력 및 특기사항 수학 : 수업에 적극적으로 참여하며 탐구 활동을 수행함.", false)

	got := e.Extract(layout, model.YearMap{1: 2021}, "sid")

	require.Len(t, got, 1)
	n := got[0]
	assert.Equal(t, "수학", n.Subject)
	assert.Equal(t, "수학", n.SubjectRaw)
	assert.Equal(t, fuzzy.ScoreExact, n.MatchScore)
	assert.Equal(t, 1, n.GradeYear)
	require.NotNil(t, n.Year)
	assert.Equal(t, 2021, *n.Year)
	assert.Equal(t, 26, n.ContentLength)
	assert.GreaterOrEqual(t, n.Counts.Exploration, 1)
	assert.Equal(t, 0, n.Counts.Online)
	assert.Equal(t, 1, n.Counts.Qualitative)
	assert.InDelta(t, 1000.0/26, n.QualitativeFreq(), 1e-9)
}

func TestNarrativeExtractor_ExtractBlock(t *testing.T) {
	t.Run("short content is dropped", func(t *testing.T) {
		got := newNarrativeExtractor(fuzzy.KeepRaw).ExtractBlock("국어: 짧은 내용", 1, nil, "sid")
		assert.Empty(t, got)
	})

	t.Run("block outside grade sections has no year", func(t *testing.T) {
		got := newNarrativeExtractor(fuzzy.KeepRaw).
			ExtractBlock("영어: 원격수업 기간에도 온라인 토론에 성실하게 참여함", 0, model.YearMap{1: 2020}, "sid")
		require.Len(t, got, 1)
		assert.Nil(t, got[0].Year)
		assert.Equal(t, 0, got[0].GradeYear)
		assert.Equal(t, 3, got[0].Counts.Online)
	})

	t.Run("label keeps only the matched subject words", func(t *testing.T) {
		got := newNarrativeExtractor(fuzzy.KeepRaw).
			ExtractBlock("성명 홍길동 국어: 문학 작품을 깊이 있게 읽고 비평문을 작성함.", 1, nil, "sid")
		require.Len(t, got, 1)
		assert.Equal(t, "국어", got[0].SubjectRaw)
		assert.Equal(t, "국어", got[0].Subject)
	})

	t.Run("unmatched label under reject", func(t *testing.T) {
		got := newNarrativeExtractor(fuzzy.Reject).
			ExtractBlock("천문관측학: 망원경으로 별자리를 관찰하고 관측 일지를 꾸준히 작성함", 2, nil, "sid")
		require.Len(t, got, 1)
		assert.Empty(t, got[0].Subject)
		assert.Equal(t, "천문관측학", got[0].SubjectRaw)
		assert.Equal(t, 0, got[0].MatchScore)
	})
}

func TestKeywordScorer_Score(t *testing.T) {
	s := NewKeywordScorer(vocab.Keywords{
		Exploration: []string{"실험", "탐구"},
		Online:      []string{"zoom"},
		Qualitative: []string{"노력"},
	})

	got := s.Score("실험 실험 실험 그리고 ZOOM 노력")

	assert.Equal(t, model.KeywordCounts{Exploration: 1, Online: 0, Qualitative: 1}, got)
}
