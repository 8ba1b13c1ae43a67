package model

// GradeLevels is the number of academic years a transcript covers.
const GradeLevels = 3

// Unknown is the sentinel used for identity fields the filename does not carry.
const Unknown = "unknown"

// Document is a single transcript as read from disk. It is never mutated.
type Document struct {
	Filename string
	Text     string
}

// YearMap maps an academic grade level (1-3) to the calendar year it was attended.
type YearMap map[int]int

// Lookup returns the calendar year for a grade level, or nil when unknown.
func (m YearMap) Lookup(grade int) *int {
	year, ok := m[grade]
	if !ok {
		return nil
	}
	return &year
}

// Student is the de-identified record derived from one document.
type Student struct {
	GradeYears     [GradeLevels]*int
	RemoteDays     [GradeLevels]*int
	AnonymousID    string
	NameHash       string
	Major          string
	AdmissionType  string
	CurrentGrade   int
	CovidIntensity int
	Covid          [GradeLevels]bool
}

// YearOf returns the calendar year inferred for a grade level.
func (s Student) YearOf(grade int) (int, bool) {
	if grade < 1 || grade > GradeLevels || s.GradeYears[grade-1] == nil {
		return 0, false
	}
	return *s.GradeYears[grade-1], true
}

// Years returns the inferred years as a YearMap.
func (s Student) Years() YearMap {
	years := make(YearMap, GradeLevels)
	for grade := 1; grade <= GradeLevels; grade++ {
		if year, ok := s.YearOf(grade); ok {
			years[grade] = year
		}
	}
	return years
}

// AnyCovid reports whether at least one grade year overlapped the pandemic window.
func (s Student) AnyCovid() bool {
	return s.CovidIntensity > 0
}

// GraduationYear is the year after grade 3, when grade 3 is known.
func (s Student) GraduationYear() *int {
	year, ok := s.YearOf(3)
	if !ok {
		return nil
	}
	grad := year + 1
	return &grad
}

// YearlyCovid is one row of the per-(student, grade) exposure long table.
type YearlyCovid struct {
	AnonymousID   string
	Grade         int
	Year          int
	IsCovidPeriod bool
}
