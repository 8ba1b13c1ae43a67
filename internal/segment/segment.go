// Package segment splits transcript text into grade-level sections and
// locates the subject narrative (세부능력 및 특기사항) blocks.
//
// Headers are matched loosely: OCR passes insert spaces between Hangul
// syllables and drop or double punctuation, so every header pattern allows
// optional whitespace between its characters.
package segment

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	whitespace = regexp.MustCompile(`\s+`)

	// gradeHeader matches "[N학년]" section headers.
	gradeHeader = regexp.MustCompile(`\[\s*(\d)\s*학\s*년\s*\]`)

	// narrativeHeaders are tried in order; the first one found starts the block.
	narrativeHeaders = []*regexp.Regexp{
		regexp.MustCompile(`세\s*부\s*능\s*력\s*및\s*특\s*기\s*사\s*항`),
		regexp.MustCompile(`세부\s*능력\s*및\s*특기사항`),
		regexp.MustCompile(`세부능력특기사항`),
		regexp.MustCompile(`세부능력\s*및\s*특기\s*사항`),
	}

	// narrativeTerminators bound a block: a numbered list item, the
	// physical-education/arts header, or the next grade header.
	narrativeTerminators = []*regexp.Regexp{
		regexp.MustCompile(`\d+\.\s*[가-힣]+`),
		regexp.MustCompile(`<\s*체육`),
		gradeHeader,
	}
)

// Normalize composes Hangul to NFC and collapses every whitespace run,
// including line breaks, into a single space.
func Normalize(text string) string {
	text = norm.NFC.String(text)
	text = strings.TrimPrefix(text, "\ufeff")
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

// Section is the text following one grade-level header up to the next one.
type Section struct {
	Text  string
	Grade int
	Start int
	End   int
}

// Sections splits text on grade headers. Text before the first header is not
// part of any section.
func Sections(text string) []Section {
	locs := gradeHeader.FindAllStringSubmatchIndex(text, -1)
	sections := make([]Section, 0, len(locs))
	for i, loc := range locs {
		grade, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		sections = append(sections, Section{
			Grade: grade,
			Start: loc[1],
			End:   end,
			Text:  text[loc[1]:end],
		})
	}
	return sections
}

// GradeAt returns the grade of the section containing offset, or 0.
func GradeAt(sections []Section, offset int) int {
	i := sort.Search(len(sections), func(i int) bool { return sections[i].End > offset })
	if i < len(sections) && sections[i].Start <= offset {
		return sections[i].Grade
	}
	return 0
}

// Block is a located narrative-comment block.
type Block struct {
	Text  string
	Start int
	End   int
}

// NarrativeBlock returns the first narrative block in text.
func NarrativeBlock(text string) (Block, bool) {
	return nextBlock(text, 0)
}

// NarrativeBlocks returns every narrative block in text, in order.
func NarrativeBlocks(text string) []Block {
	var blocks []Block
	for pos := 0; pos < len(text); {
		b, ok := nextBlock(text, pos)
		if !ok {
			break
		}
		blocks = append(blocks, b)
		if b.End <= pos {
			break
		}
		pos = b.End
	}
	return blocks
}

func nextBlock(text string, from int) (Block, bool) {
	rest := text[from:]
	start := -1
	for _, header := range narrativeHeaders {
		if loc := header.FindStringIndex(rest); loc != nil {
			start = from + loc[1]
			break
		}
	}
	if start < 0 {
		return Block{}, false
	}

	end := len(text)
	for _, term := range narrativeTerminators {
		if loc := term.FindStringIndex(text[start:]); loc != nil && start+loc[0] < end {
			end = start + loc[0]
		}
	}
	return Block{Start: start, End: end, Text: text[start:end]}, true
}

// Layout is the segmentation of one normalized document.
type Layout struct {
	Text       string
	Sections   []Section
	Narratives []Block
}

// Analyze normalizes raw text and segments it. When allBlocks is false only
// the first narrative block is located.
func Analyze(raw string, allBlocks bool) Layout {
	text := Normalize(raw)
	layout := Layout{Text: text, Sections: Sections(text)}
	if allBlocks {
		layout.Narratives = NarrativeBlocks(text)
	} else if b, ok := NarrativeBlock(text); ok {
		layout.Narratives = []Block{b}
	}
	return layout
}
