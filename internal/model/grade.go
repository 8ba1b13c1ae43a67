package model

// GradeType distinguishes achievement symbols from relative rank grades.
type GradeType string

const (
	// GradeTypeAchievement covers letter (A-E, P) and descriptive (수우미양가) symbols.
	GradeTypeAchievement GradeType = "achievement"
	// GradeTypeRank covers numeral rank grades 1-9.
	GradeTypeRank GradeType = "rank"
)

// Grade is one extracted subject-term grade entry.
type Grade struct {
	Year          *int
	Units         *int
	RawScore      *float64
	CohortAverage *float64
	StdDev        *float64
	CohortSize    *int
	Rank          *int
	StudentID     string
	Subject       string
	SubjectRaw    string
	SubjectGroup  string
	Achievement   string
	GradeType     GradeType
	Strategy      string
	GradeYear     int
	Term          int
	Severity      int
	MatchScore    int
}
