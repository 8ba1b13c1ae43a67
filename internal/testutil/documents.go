package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/korean"
)

// Transcript builds the body of a synthetic transcript document.
//
// Example:
//
//	body := testutil.NewTranscript().
//		WithYear(1, 2021).
//		WithGrades(1, "국어 3 88/75.2(10.1) B(120)").
//		WithNarrative(1, "수학", "수업에 적극적으로 참여하며 탐구 활동을 수행함.").
//		String()
type Transcript struct {
	header     []string
	sections   map[int][]string
	narratives map[int][]string
}

// NewTranscript starts an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{
		sections:   make(map[int][]string),
		narratives: make(map[int][]string),
	}
}

// WithYear adds an attendance line pairing a calendar year with a grade level.
func (tr *Transcript) WithYear(grade, year int) *Transcript {
	tr.header = append(tr.header, fmt.Sprintf("%d.03.02 %d학년 진급", year, grade))
	return tr
}

// WithLine adds a free-form line before the grade sections.
func (tr *Transcript) WithLine(line string) *Transcript {
	tr.header = append(tr.header, line)
	return tr
}

// WithGrades adds grade rows to a grade section.
func (tr *Transcript) WithGrades(grade int, rows ...string) *Transcript {
	tr.sections[grade] = append(tr.sections[grade], rows...)
	return tr
}

// WithNarrative adds a "subject : comment" entry to a grade section's narrative block.
func (tr *Transcript) WithNarrative(grade int, subject, comment string) *Transcript {
	tr.narratives[grade] = append(tr.narratives[grade], subject+" : "+comment)
	if _, ok := tr.sections[grade]; !ok {
		tr.sections[grade] = nil
	}
	return tr
}

// String renders the transcript.
func (tr *Transcript) String() string {
	var b strings.Builder
	for _, line := range tr.header {
		b.WriteString(line)
		b.WriteString("\n")
	}
	for grade := 1; grade <= 3; grade++ {
		rows, ok := tr.sections[grade]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "[%d학년]\n", grade)
		for _, row := range rows {
			b.WriteString(row)
			b.WriteString("\n")
		}
		if entries := tr.narratives[grade]; len(entries) > 0 {
			b.WriteString("세부능력 및 특기사항\n")
			for _, e := range entries {
				b.WriteString(e)
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

// WriteDocument writes body as UTF-8 into dir and returns the path.
func WriteDocument(t *testing.T, dir, name, body string) string {
	t.Helper()
	return WriteDocumentBytes(t, dir, name, []byte(body))
}

// WriteCP949Document writes body encoded as CP949 into dir and returns the path.
func WriteCP949Document(t *testing.T, dir, name, body string) string {
	t.Helper()
	encoded, err := korean.EUCKR.NewEncoder().Bytes([]byte(body))
	if err != nil {
		t.Fatalf("failed to encode %s as cp949: %v", name, err)
	}
	return WriteDocumentBytes(t, dir, name, encoded)
}

// WriteDocumentBytes writes raw bytes into dir and returns the path.
func WriteDocumentBytes(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("failed to write document %s: %v", name, err)
	}
	return path
}
