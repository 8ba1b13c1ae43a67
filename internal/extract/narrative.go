package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Veraticus/saenggibu/internal/fuzzy"
	"github.com/Veraticus/saenggibu/internal/model"
	"github.com/Veraticus/saenggibu/internal/segment"
)

// DefaultMinNarrativeLength is the shortest comment, in characters, kept as a record.
const DefaultMinNarrativeLength = 20

// maxLabelTokens bounds how many words before a colon can form a subject label.
const maxLabelTokens = 4

// NarrativeConfig tunes narrative extraction.
type NarrativeConfig struct {
	Threshold int
	MinLength int
}

// DefaultNarrativeConfig returns the default narrative extraction settings.
func DefaultNarrativeConfig() NarrativeConfig {
	return NarrativeConfig{Threshold: fuzzy.DefaultThreshold, MinLength: DefaultMinNarrativeLength}
}

// NarrativeExtractor splits narrative blocks into "subject: comment" entries.
type NarrativeExtractor struct {
	matcher *fuzzy.Matcher
	scorer  *KeywordScorer
	cfg     NarrativeConfig
}

// NewNarrativeExtractor creates a narrative extractor.
func NewNarrativeExtractor(m *fuzzy.Matcher, scorer *KeywordScorer, cfg NarrativeConfig) *NarrativeExtractor {
	if cfg.Threshold <= 0 {
		cfg.Threshold = fuzzy.DefaultThreshold
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultMinNarrativeLength
	}
	return &NarrativeExtractor{matcher: m, scorer: scorer, cfg: cfg}
}

// Extract returns the narrative records of every located block.
func (e *NarrativeExtractor) Extract(layout segment.Layout, years model.YearMap, studentID string) []model.Narrative {
	var out []model.Narrative
	for _, block := range layout.Narratives {
		gradeYear := segment.GradeAt(layout.Sections, block.Start)
		out = append(out, e.ExtractBlock(block.Text, gradeYear, years, studentID)...)
	}
	return out
}

// ExtractBlock segments one block. Entries with content shorter than the
// configured minimum are dropped.
func (e *NarrativeExtractor) ExtractBlock(text string, gradeYear int, years model.YearMap, studentID string) []model.Narrative {
	var out []model.Narrative
	for _, entry := range Entries(text) {
		length := utf8.RuneCountInString(entry.Content)
		if length < e.cfg.MinLength {
			continue
		}
		raw, match := resolveSubject(e.matcher, entry.Label, e.cfg.Threshold)
		n := model.Narrative{
			StudentID:     studentID,
			GradeYear:     gradeYear,
			Subject:       match.Subject,
			SubjectRaw:    raw,
			MatchScore:    match.Score,
			ContentLength: length,
			Counts:        e.scorer.Score(entry.Content),
		}
		if gradeYear > 0 {
			n.Year = years.Lookup(gradeYear)
		}
		out = append(out, n)
	}
	return out
}

// Entry is one labelled comment inside a narrative block.
type Entry struct {
	Label   string
	Content string
}

type labelSpan struct {
	start int // first byte of the label
	colon int // byte offset of the colon
	width int // byte width of the colon rune
}

// Entries splits text into label/content pairs. A label is the run of up to
// four words made of Hangul, Latin letters or Roman numerals that ends at a
// colon; the content runs until the next label.
func Entries(text string) []Entry {
	spans := labelSpans(text)
	entries := make([]Entry, 0, len(spans))
	for i, sp := range spans {
		end := len(text)
		if i+1 < len(spans) {
			end = spans[i+1].start
		}
		entries = append(entries, Entry{
			Label:   strings.Join(strings.Fields(text[sp.start:sp.colon]), " "),
			Content: strings.TrimSpace(text[sp.colon+sp.width : end]),
		})
	}
	return entries
}

func labelSpans(text string) []labelSpan {
	var spans []labelSpan
	for i, r := range text {
		if r != ':' && r != '：' {
			continue
		}
		start, ok := labelStart(text, i)
		if !ok {
			continue
		}
		// A label cannot begin inside the previous label.
		if n := len(spans); n > 0 && start <= spans[n-1].colon {
			continue
		}
		spans = append(spans, labelSpan{start: start, colon: i, width: utf8.RuneLen(r)})
	}
	return spans
}

// labelStart walks back from the colon at byte offset colon over label
// characters, keeping at most maxLabelTokens words.
func labelStart(text string, colon int) (int, bool) {
	pos := colon
	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:pos])
		if !isLabelRune(r) {
			break
		}
		pos -= size
	}
	run := text[pos:colon]
	if strings.TrimSpace(run) == "" {
		return 0, false
	}

	// Keep only the trailing words.
	tokens := 0
	inWord := false
	for j := len(run); j > 0; {
		r, size := utf8.DecodeLastRuneInString(run[:j])
		if unicode.IsSpace(r) {
			if inWord {
				tokens++
				inWord = false
				if tokens == maxLabelTokens {
					return pos + j, true
				}
			}
		} else {
			inWord = true
		}
		j -= size
	}
	return pos + len(run) - len(strings.TrimLeftFunc(run, unicode.IsSpace)), true
}

func isLabelRune(r rune) bool {
	switch {
	case r >= '가' && r <= '힣':
		return true
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		return true
	case r == 'Ⅰ' || r == 'Ⅱ':
		return true
	}
	return unicode.IsSpace(r)
}
