// Package export renders run results as CSV tables.
package export

import (
	"strconv"

	"github.com/Veraticus/saenggibu/internal/model"
	"github.com/Veraticus/saenggibu/internal/pipeline"
)

// Output table file names.
const (
	StudentInfoFile        = "student_info.csv"
	StudentsAnonymizedFile = "students_anonymized.csv"
	GradesFile             = "grades.csv"
	NarrativesFile         = "seteuk.csv"
	VolatilityFile         = "volatility.csv"
	YearlyCovidFile        = "yearly_covid.csv"
	KeywordsFile           = "keywords.csv"
)

// Table is a named header plus rows of cell values.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Tables builds every output table of a run. The student table is emitted
// under both of its file names.
func Tables(res *pipeline.Result) []Table {
	students := StudentTable(res.Students)
	alias := students
	alias.Name = StudentsAnonymizedFile

	return []Table{
		students,
		alias,
		GradeTable(res.Grades),
		NarrativeTable(res.Narratives),
		VolatilityTable(res.Volatility),
		YearlyCovidTable(res.YearlyCovid),
		KeywordTable(res.KeywordTotals),
	}
}

// StudentTable renders student records. Raw identifiers and names are never included.
func StudentTable(students []model.Student) Table {
	t := Table{
		Name: StudentInfoFile,
		Header: []string{
			"student_id", "anonymous_id", "name_hash", "major", "admission_type", "current_grade",
			"grade_year_1", "grade_year_2", "grade_year_3", "graduation_year",
			"grade1_covid", "grade2_covid", "grade3_covid", "covid_intensity", "any_covid",
			"grade1_remote_days", "grade2_remote_days", "grade3_remote_days",
		},
	}
	for _, s := range students {
		row := []string{
			s.AnonymousID, s.AnonymousID, s.NameHash, s.Major, s.AdmissionType, strconv.Itoa(s.CurrentGrade),
			optInt(s.GradeYears[0]), optInt(s.GradeYears[1]), optInt(s.GradeYears[2]), optInt(s.GraduationYear()),
			flag(s.Covid[0]), flag(s.Covid[1]), flag(s.Covid[2]), strconv.Itoa(s.CovidIntensity), flag(s.AnyCovid()),
			optInt(s.RemoteDays[0]), optInt(s.RemoteDays[1]), optInt(s.RemoteDays[2]),
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// GradeTable renders grade records.
func GradeTable(grades []model.Grade) Table {
	t := Table{
		Name: GradesFile,
		Header: []string{
			"student_id", "grade_year", "year", "term", "subject", "subject_raw", "subject_group",
			"achievement", "grade_numeric", "grade_type", "match_score",
			"units", "raw_score", "cohort_average", "std_dev", "cohort_size", "rank", "strategy",
		},
	}
	for _, g := range grades {
		t.Rows = append(t.Rows, []string{
			g.StudentID, strconv.Itoa(g.GradeYear), optInt(g.Year), strconv.Itoa(g.Term),
			g.Subject, g.SubjectRaw, g.SubjectGroup,
			g.Achievement, strconv.Itoa(g.Severity), string(g.GradeType), strconv.Itoa(g.MatchScore),
			optInt(g.Units), optFloat(g.RawScore), optFloat(g.CohortAverage), optFloat(g.StdDev),
			optInt(g.CohortSize), optInt(g.Rank), g.Strategy,
		})
	}
	return t
}

// NarrativeTable renders narrative records with per-1000-character frequencies.
func NarrativeTable(narratives []model.Narrative) Table {
	t := Table{
		Name: NarrativesFile,
		Header: []string{
			"student_id", "grade_year", "year", "subject", "subject_raw", "match_score", "content_length",
			"kw_count_exploration", "kw_count_online", "kw_count_qualitative",
			"kw_freq_exploration", "kw_freq_online", "kw_freq_qualitative",
		},
	}
	for _, n := range narratives {
		t.Rows = append(t.Rows, []string{
			n.StudentID, strconv.Itoa(n.GradeYear), optInt(n.Year), n.Subject, n.SubjectRaw,
			strconv.Itoa(n.MatchScore), strconv.Itoa(n.ContentLength),
			strconv.Itoa(n.Counts.Exploration), strconv.Itoa(n.Counts.Online), strconv.Itoa(n.Counts.Qualitative),
			formatFloat(n.ExplorationFreq()), formatFloat(n.OnlineFreq()), formatFloat(n.QualitativeFreq()),
		})
	}
	return t
}

// VolatilityTable renders one summary row per student.
func VolatilityTable(summaries []model.Volatility) Table {
	t := Table{
		Name:   VolatilityFile,
		Header: []string{"student_id", "overall_volatility", "overall_mean", "overall_count"},
	}
	for grade := 1; grade <= model.GradeLevels; grade++ {
		p := "grade" + strconv.Itoa(grade)
		t.Header = append(t.Header, p+"_volatility", p+"_mean", p+"_count")
	}
	for _, v := range summaries {
		row := append([]string{v.StudentID}, stats(v.Overall)...)
		for _, s := range v.ByGrade {
			row = append(row, stats(s)...)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// YearlyCovidTable renders the per-(student, grade) exposure table.
func YearlyCovidTable(rows []model.YearlyCovid) Table {
	t := Table{
		Name:   YearlyCovidFile,
		Header: []string{"anonymous_id", "student_id", "grade", "year", "is_covid_period"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.AnonymousID, r.AnonymousID, strconv.Itoa(r.Grade), strconv.Itoa(r.Year), flag(r.IsCovidPeriod),
		})
	}
	return t
}

// KeywordTable renders per-student keyword totals.
func KeywordTable(totals []model.KeywordTotal) Table {
	t := Table{
		Name:   KeywordsFile,
		Header: []string{"anonymous_id", "exploration_total", "remote_total", "qualitative_total"},
	}
	for _, k := range totals {
		t.Rows = append(t.Rows, []string{
			k.AnonymousID, strconv.Itoa(k.Exploration), strconv.Itoa(k.Online), strconv.Itoa(k.Qualitative),
		})
	}
	return t
}

func stats(s model.Stats) []string {
	return []string{formatFloat(s.StdDev), formatFloat(s.Mean), strconv.Itoa(s.Count)}
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
