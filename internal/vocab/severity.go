package vocab

import "github.com/Veraticus/saenggibu/internal/model"

// PassSeverity is the sentinel severity of a pass-only symbol.
const PassSeverity = 0

// severities maps every recognized achievement symbol to its severity.
// Lower is better; the order within each scale is strictly increasing.
var severities = map[string]int{
	"A": 1, "B": 2, "C": 3, "D": 4, "E": 5,
	"1": 1, "2": 2, "3": 3, "4": 4, "5": 5,
	"6": 6, "7": 7, "8": 8, "9": 9,
	"수": 1, "우": 2, "미": 3, "양": 4, "가": 5,
	"P": PassSeverity,
}

// Severity returns the normalized severity of an achievement symbol.
func Severity(symbol string) (int, bool) {
	s, ok := severities[symbol]
	return s, ok
}

// GradeTypeOf classifies a recognized symbol. Numerals are relative rank grades.
func GradeTypeOf(symbol string) model.GradeType {
	if len(symbol) == 1 && symbol[0] >= '1' && symbol[0] <= '9' {
		return model.GradeTypeRank
	}
	return model.GradeTypeAchievement
}
