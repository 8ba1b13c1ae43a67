package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/saenggibu/internal/common"
	"github.com/Veraticus/saenggibu/internal/model"
	"github.com/Veraticus/saenggibu/internal/pipeline"
)

// Run is one persisted parsing run.
type Run struct {
	StartedAt  time.Time
	FinishedAt time.Time
	ID         string
	Documents  int
	Succeeded  int
	Failures   int
}

// runTables lists the tables keyed by run_id, in insertion order.
var runTables = []string{
	"students",
	"grades",
	"narratives",
	"volatility",
	"yearly_covid",
	"keyword_totals",
	"run_failures",
}

var countQueries = map[string]string{
	"students":       "SELECT COUNT(*) FROM students WHERE run_id = ?",
	"grades":         "SELECT COUNT(*) FROM grades WHERE run_id = ?",
	"narratives":     "SELECT COUNT(*) FROM narratives WHERE run_id = ?",
	"volatility":     "SELECT COUNT(*) FROM volatility WHERE run_id = ?",
	"yearly_covid":   "SELECT COUNT(*) FROM yearly_covid WHERE run_id = ?",
	"keyword_totals": "SELECT COUNT(*) FROM keyword_totals WHERE run_id = ?",
	"run_failures":   "SELECT COUNT(*) FROM run_failures WHERE run_id = ?",
}

var saveRetry = common.RetryOptions{
	MaxAttempts:  5,
	InitialDelay: 50 * time.Millisecond,
	MaxDelay:     2 * time.Second,
	Multiplier:   2,
}

// SaveRun stores every table of res under a new run id. The write happens in
// a single transaction and is retried while the database is locked.
func (s *SQLiteStorage) SaveRun(ctx context.Context, res *pipeline.Result, startedAt time.Time) (*Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateResult(res); err != nil {
		return nil, err
	}

	run := &Run{
		ID:         uuid.NewString(),
		StartedAt:  startedAt.UTC(),
		FinishedAt: time.Now().UTC(),
		Documents:  res.Documents,
		Succeeded:  res.Succeeded(),
		Failures:   len(res.Failures),
	}

	err := common.WithRetry(ctx, func() error {
		return classify(s.saveRun(ctx, run, res))
	}, saveRetry)
	if err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}
	return run, nil
}

func (s *SQLiteStorage) saveRun(ctx context.Context, run *Run, res *pipeline.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, documents, succeeded, failures) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.FinishedAt, run.Documents, run.Succeeded, run.Failures,
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	writers := []func(context.Context, *sql.Tx, string, *pipeline.Result) error{
		insertStudents,
		insertGrades,
		insertNarratives,
		insertVolatility,
		insertYearlyCovid,
		insertKeywordTotals,
		insertFailures,
	}
	for _, write := range writers {
		if err = write(ctx, tx, run.ID, res); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

func insertStudents(ctx context.Context, tx *sql.Tx, runID string, res *pipeline.Result) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO students (
			run_id, anonymous_id, name_hash, major, admission_type, current_grade,
			grade1_year, grade2_year, grade3_year, graduation_year,
			grade1_covid, grade2_covid, grade3_covid, covid_intensity,
			grade1_remote_days, grade2_remote_days, grade3_remote_days
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare student statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, st := range res.Students {
		var currentGrade *int
		if st.CurrentGrade > 0 {
			currentGrade = &st.CurrentGrade
		}
		if _, err := stmt.ExecContext(ctx,
			runID, st.AnonymousID, st.NameHash, st.Major, st.AdmissionType, currentGrade,
			st.GradeYears[0], st.GradeYears[1], st.GradeYears[2], st.GraduationYear(),
			st.Covid[0], st.Covid[1], st.Covid[2], st.CovidIntensity,
			st.RemoteDays[0], st.RemoteDays[1], st.RemoteDays[2],
		); err != nil {
			return fmt.Errorf("failed to insert student %s: %w", st.AnonymousID, err)
		}
	}
	return nil
}

func insertGrades(ctx context.Context, tx *sql.Tx, runID string, res *pipeline.Result) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO grades (
			run_id, anonymous_id, grade_year, year, term, subject, subject_raw, subject_group,
			achievement, severity, grade_type, match_score, strategy,
			units, raw_score, cohort_average, std_dev, cohort_size, rank
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare grade statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range res.Grades {
		g := &res.Grades[i]
		if _, err := stmt.ExecContext(ctx,
			runID, g.StudentID, g.GradeYear, g.Year, g.Term, g.Subject, g.SubjectRaw, g.SubjectGroup,
			g.Achievement, g.Severity, string(g.GradeType), g.MatchScore, g.Strategy,
			g.Units, g.RawScore, g.CohortAverage, g.StdDev, g.CohortSize, g.Rank,
		); err != nil {
			return fmt.Errorf("failed to insert grade: %w", err)
		}
	}
	return nil
}

func insertNarratives(ctx context.Context, tx *sql.Tx, runID string, res *pipeline.Result) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO narratives (
			run_id, anonymous_id, grade_year, year, subject, subject_raw, match_score,
			content_length, exploration, online, qualitative
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare narrative statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, n := range res.Narratives {
		if _, err := stmt.ExecContext(ctx,
			runID, n.StudentID, n.GradeYear, n.Year, n.Subject, n.SubjectRaw, n.MatchScore,
			n.ContentLength, n.Counts.Exploration, n.Counts.Online, n.Counts.Qualitative,
		); err != nil {
			return fmt.Errorf("failed to insert narrative: %w", err)
		}
	}
	return nil
}

// insertVolatility stores the overall statistics as grade_year 0.
func insertVolatility(ctx context.Context, tx *sql.Tx, runID string, res *pipeline.Result) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO volatility (run_id, anonymous_id, grade_year, std_dev, mean, count)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare volatility statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, v := range res.Volatility {
		stats := append([]model.Stats{v.Overall}, v.ByGrade[:]...)
		for grade, st := range stats {
			if _, err := stmt.ExecContext(ctx, runID, v.StudentID, grade, st.StdDev, st.Mean, st.Count); err != nil {
				return fmt.Errorf("failed to insert volatility for %s: %w", v.StudentID, err)
			}
		}
	}
	return nil
}

func insertYearlyCovid(ctx context.Context, tx *sql.Tx, runID string, res *pipeline.Result) error {
	for _, row := range res.YearlyCovid {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO yearly_covid (run_id, anonymous_id, grade, year, is_covid_period) VALUES (?, ?, ?, ?, ?)`,
			runID, row.AnonymousID, row.Grade, row.Year, row.IsCovidPeriod,
		); err != nil {
			return fmt.Errorf("failed to insert yearly covid row: %w", err)
		}
	}
	return nil
}

func insertKeywordTotals(ctx context.Context, tx *sql.Tx, runID string, res *pipeline.Result) error {
	for _, kt := range res.KeywordTotals {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO keyword_totals (run_id, anonymous_id, exploration, online, qualitative) VALUES (?, ?, ?, ?, ?)`,
			runID, kt.AnonymousID, kt.Exploration, kt.Online, kt.Qualitative,
		); err != nil {
			return fmt.Errorf("failed to insert keyword totals: %w", err)
		}
	}
	return nil
}

func insertFailures(ctx context.Context, tx *sql.Tx, runID string, res *pipeline.Result) error {
	for _, f := range res.Failures {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_failures (run_id, document, anonymous_id, reason) VALUES (?, ?, ?, ?)`,
			runID, f.Index+1, f.StudentID, f.Err.Error(),
		); err != nil {
			return fmt.Errorf("failed to insert run failure: %w", err)
		}
	}
	return nil
}

// GetRun returns a stored run by id.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var run Run
	err := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, documents, succeeded, failures FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Documents, &run.Succeeded, &run.Failures)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns returns every stored run, newest first.
func (s *SQLiteStorage) ListRuns(ctx context.Context) ([]Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, documents, succeeded, failures FROM runs ORDER BY started_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Documents, &run.Succeeded, &run.Failures); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run and all of its rows.
func (s *SQLiteStorage) DeleteRun(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// CountRows returns the number of rows a run stored in each table.
func (s *SQLiteStorage) CountRows(ctx context.Context, runID string) (map[string]int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(runID, "runID"); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(runTables))
	for _, table := range runTables {
		query, ok := countQueries[table]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRunTable, table)
		}
		var n int
		if err := s.db.QueryRowContext(ctx, query, runID).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// Grades reads back the grade records of a run in insertion order.
func (s *SQLiteStorage) Grades(ctx context.Context, runID string) ([]model.Grade, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(runID, "runID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT anonymous_id, grade_year, year, term, subject, subject_raw, subject_group,
			achievement, severity, grade_type, match_score, strategy,
			units, raw_score, cohort_average, std_dev, cohort_size, rank
		FROM grades WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query grades: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var grades []model.Grade
	for rows.Next() {
		var (
			g         model.Grade
			gradeType string
			year      sql.NullInt64
			units     sql.NullInt64
			size      sql.NullInt64
			rank      sql.NullInt64
			rawScore  sql.NullFloat64
			average   sql.NullFloat64
			stdDev    sql.NullFloat64
		)
		if err := rows.Scan(&g.StudentID, &g.GradeYear, &year, &g.Term, &g.Subject, &g.SubjectRaw, &g.SubjectGroup,
			&g.Achievement, &g.Severity, &gradeType, &g.MatchScore, &g.Strategy,
			&units, &rawScore, &average, &stdDev, &size, &rank); err != nil {
			return nil, fmt.Errorf("failed to scan grade: %w", err)
		}
		g.GradeType = model.GradeType(gradeType)
		g.Year = nullInt(year)
		g.Units = nullInt(units)
		g.CohortSize = nullInt(size)
		g.Rank = nullInt(rank)
		g.RawScore = nullFloat(rawScore)
		g.CohortAverage = nullFloat(average)
		g.StdDev = nullFloat(stdDev)
		grades = append(grades, g)
	}
	return grades, rows.Err()
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
