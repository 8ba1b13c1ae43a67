package cohort

import (
	"regexp"
	"strconv"

	"github.com/Veraticus/saenggibu/internal/model"
	"github.com/Veraticus/saenggibu/internal/segment"
)

// MaxRemoteDays is the largest plausible remote-instruction day count for one year.
const MaxRemoteDays = 200

// Remote-instruction phrases. OCR commonly reads 원 as 윈 and 일 as 읠, so
// both spellings are accepted.
const (
	remoteWord = `(?:[원윈]\s*격|온\s*라\s*인|비\s*대\s*면)\s*수\s*업`
	dayCount   = `(\d{1,3})\s*[일읠]`
)

// sectionRemotePatterns are matched inside a grade section.
var sectionRemotePatterns = []*regexp.Regexp{
	regexp.MustCompile(remoteWord + `\s*(?:일\s*수)?\s*[:：]?\s*` + dayCount),
	regexp.MustCompile(remoteWord + `\s*\(\s*` + dayCount + `\s*\)`),
}

// gradeRemotePattern carries its own grade, so it is matched across the whole document.
var gradeRemotePattern = regexp.MustCompile(`([1-3])\s*학\s*년[^\[\]\d]{0,30}?` + remoteWord + `[^\d]{0,10}?` + dayCount)

// RemoteDays extracts remote-instruction day counts per grade. Repeated
// mentions of the same figure are reduced by maximum so they never add up;
// values outside 0-MaxRemoteDays are discarded.
func RemoteDays(text string, sections []segment.Section) map[int]int {
	days := make(map[int]int)
	record := func(grade int, raw string) {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > MaxRemoteDays || grade < 1 || grade > model.GradeLevels {
			return
		}
		if cur, ok := days[grade]; !ok || n > cur {
			days[grade] = n
		}
	}

	for _, s := range sections {
		for _, re := range sectionRemotePatterns {
			for _, m := range re.FindAllStringSubmatch(s.Text, -1) {
				record(s.Grade, m[1])
			}
		}
	}
	for _, m := range gradeRemotePattern.FindAllStringSubmatch(text, -1) {
		grade, _ := strconv.Atoi(m[1])
		record(grade, m[2])
	}
	return days
}
