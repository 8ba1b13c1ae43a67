package segment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	// "국어" in decomposed jamo form.
	decomposed := "\u1100\u116e\u11a8\u110b\u1165"
	assert.Equal(t, "국어", Normalize(decomposed))

	assert.Equal(t, "a b c", Normalize("\ufeff  a\n\n b\t\r\nc  "))
}

func TestSections(t *testing.T) {
	text := "머리말 [1학년] 국어 3 88/75.2(10.1) B(120) [ 2 학년] 수학 4 [3학년] 영어"
	sections := Sections(text)
	require.Len(t, sections, 3)

	assert.Equal(t, 1, sections[0].Grade)
	assert.Equal(t, " 국어 3 88/75.2(10.1) B(120) ", sections[0].Text)
	assert.Equal(t, 2, sections[1].Grade)
	assert.Equal(t, " 수학 4 ", sections[1].Text)
	assert.Equal(t, 3, sections[2].Grade)
	assert.Equal(t, " 영어", sections[2].Text)

	for _, s := range sections {
		assert.Equal(t, s.Text, text[s.Start:s.End])
	}
}

func TestSections_NoHeaders(t *testing.T) {
	assert.Empty(t, Sections("성적 없음"))
}

func TestGradeAt(t *testing.T) {
	text := "앞 [1학년] 가나다 [2학년] 라마바"
	sections := Sections(text)

	assert.Equal(t, 0, GradeAt(sections, 0))
	assert.Equal(t, 1, GradeAt(sections, strings.Index(text, "가나다")))
	assert.Equal(t, 2, GradeAt(sections, strings.Index(text, "라마바")))
	assert.Equal(t, 0, GradeAt(nil, 5))
}

func TestNarrativeBlock(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{
			name:   "standard header bounded by numbered item",
			text:   "세부능력 및 특기사항 수학 : 탐구 활동을 수행함. 7. 독서활동상황",
			want:   " 수학 : 탐구 활동을 수행함. ",
			wantOK: true,
		},
		{
			name:   "ocr spaced header",
			text:   "세 부 능 력 및 특 기 사 항 국어 : 발표함",
			want:   " 국어 : 발표함",
			wantOK: true,
		},
		{
			name:   "compact header bounded by pe header",
			text:   "세부능력특기사항 영어 : 토론함 <체육·예술>",
			want:   " 영어 : 토론함 ",
			wantOK: true,
		},
		{
			name:   "bounded by next grade header",
			text:   "세부능력 및 특기사항 과학 : 실험함 [2학년] 국어",
			want:   " 과학 : 실험함 ",
			wantOK: true,
		},
		{
			name:   "earliest terminator wins",
			text:   "세부능력 및 특기사항 가 <체육 나 [2학년] 다 3. 라",
			want:   " 가 ",
			wantOK: true,
		},
		{
			name:   "no header",
			text:   "국어 : 발표함",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NarrativeBlock(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got.Text)
		})
	}
}

func TestNarrativeBlocks(t *testing.T) {
	text := "[1학년] 세부능력 및 특기사항 국어 : 하나 [2학년] 세부능력 및 특기사항 수학 : 둘"
	blocks := NarrativeBlocks(text)
	require.Len(t, blocks, 2)
	assert.Equal(t, " 국어 : 하나 ", blocks[0].Text)
	assert.Equal(t, " 수학 : 둘", blocks[1].Text)

	sections := Sections(text)
	assert.Equal(t, 1, GradeAt(sections, blocks[0].Start))
	assert.Equal(t, 2, GradeAt(sections, blocks[1].Start))
}

func TestAnalyze(t *testing.T) {
	raw := "[1학년]\n세부능력 및 특기사항\n국어 : 하나\n[2학년]\n세부능력 및 특기사항\n수학 : 둘"

	first := Analyze(raw, false)
	assert.Len(t, first.Sections, 2)
	require.Len(t, first.Narratives, 1)
	assert.Equal(t, " 국어 : 하나 ", first.Narratives[0].Text)

	all := Analyze(raw, true)
	assert.Len(t, all.Narratives, 2)

	empty := Analyze("아무 내용 없음", true)
	assert.Empty(t, empty.Sections)
	assert.Empty(t, empty.Narratives)
}
