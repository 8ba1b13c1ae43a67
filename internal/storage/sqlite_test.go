package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Veraticus/saenggibu/internal/common"
	"github.com/Veraticus/saenggibu/internal/model"
	"github.com/Veraticus/saenggibu/internal/pipeline"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return store
}

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

func testResult() *pipeline.Result {
	student := model.Student{
		AnonymousID:    "b2fb6a6be3e7b274",
		NameHash:       "a1b2c3d4",
		Major:          "공학",
		AdmissionType:  "학생부종합",
		CurrentGrade:   3,
		GradeYears:     [model.GradeLevels]*int{intPtr(2020), intPtr(2021), nil},
		Covid:          [model.GradeLevels]bool{true, true, false},
		CovidIntensity: 2,
	}
	grades := []model.Grade{
		{
			StudentID: student.AnonymousID, GradeYear: 1, Year: intPtr(2020), Term: 1,
			Subject: "국어", SubjectRaw: "국어", SubjectGroup: "국어", Achievement: "B", Severity: 2,
			GradeType: model.GradeTypeAchievement, MatchScore: 100, Strategy: "standard",
			Units: intPtr(3), RawScore: floatPtr(88), CohortAverage: floatPtr(75.2), StdDev: floatPtr(10.1), CohortSize: intPtr(120),
		},
		{
			StudentID: student.AnonymousID, GradeYear: 2, Term: 2,
			Subject: "체육", SubjectRaw: "체육", SubjectGroup: "체육", Achievement: "A", Severity: 1,
			GradeType: model.GradeTypeAchievement, MatchScore: 100, Strategy: "pe-arts", Rank: intPtr(2),
		},
	}
	narratives := []model.Narrative{{
		StudentID: student.AnonymousID, GradeYear: 1, Year: intPtr(2020), Subject: "수학", SubjectRaw: "수학",
		MatchScore: 100, ContentLength: 26, Counts: model.KeywordCounts{Exploration: 1, Qualitative: 1},
	}}
	res := &pipeline.Result{
		Students:   []model.Student{student},
		Grades:     grades,
		Narratives: narratives,
		Volatility: []model.Volatility{{
			StudentID: student.AnonymousID,
			Overall:   model.Stats{StdDev: 0.7071, Mean: 1.5, Count: 2},
		}},
		YearlyCovid:   pipeline.YearlyCovid([]model.Student{student}),
		KeywordTotals: pipeline.KeywordTotals(narratives),
		Failures:      []*pipeline.DocumentError{{Index: 1, StudentID: "0f3c2a9d8e7b6a51", Err: common.ErrUndecodable}},
		Documents:     2,
	}
	return res
}

func TestSQLiteStorage_Migrate(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if version != ExpectedSchemaVersion {
		t.Errorf("SchemaVersion() = %d, want %d", version, ExpectedSchemaVersion)
	}

	// Running again is a no-op.
	if err := store.Migrate(ctx); err != nil {
		t.Errorf("second Migrate() error = %v", err)
	}
}

func TestSQLiteStorage_SaveRun(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	res := testResult()
	started := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	run, err := store.SaveRun(ctx, res, started)
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if run.ID == "" {
		t.Fatal("SaveRun() returned an empty run id")
	}
	if run.Documents != 2 || run.Succeeded != 1 || run.Failures != 1 {
		t.Errorf("run counts = %d/%d/%d, want 2/1/1", run.Documents, run.Succeeded, run.Failures)
	}

	counts, err := store.CountRows(ctx, run.ID)
	if err != nil {
		t.Fatalf("CountRows() error = %v", err)
	}
	want := map[string]int{
		"students":       1,
		"grades":         2,
		"narratives":     1,
		"volatility":     1 + model.GradeLevels,
		"yearly_covid":   2,
		"keyword_totals": 1,
		"run_failures":   1,
	}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("CountRows() mismatch (-want +got):\n%s", diff)
	}

	grades, err := store.Grades(ctx, run.ID)
	if err != nil {
		t.Fatalf("Grades() error = %v", err)
	}
	if diff := cmp.Diff(res.Grades, grades); diff != "" {
		t.Errorf("Grades() mismatch (-want +got):\n%s", diff)
	}

	got, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("GetRun().StartedAt = %v, want %v", got.StartedAt, started)
	}
}

func TestSQLiteStorage_RunsAreIsolated(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	first, err := store.SaveRun(ctx, testResult(), time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("first SaveRun() error = %v", err)
	}
	second, err := store.SaveRun(ctx, testResult(), time.Now())
	if err != nil {
		t.Fatalf("second SaveRun() error = %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("runs share an id")
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 || runs[0].ID != second.ID {
		t.Fatalf("ListRuns() = %+v, want newest run %s first", runs, second.ID)
	}

	if err := store.DeleteRun(ctx, first.ID); err != nil {
		t.Fatalf("DeleteRun() error = %v", err)
	}
	counts, err := store.CountRows(ctx, first.ID)
	if err != nil {
		t.Fatalf("CountRows() error = %v", err)
	}
	for table, n := range counts {
		if n != 0 {
			t.Errorf("%s still has %d rows for a deleted run", table, n)
		}
	}
	remaining, err := store.CountRows(ctx, second.ID)
	if err != nil {
		t.Fatalf("CountRows() error = %v", err)
	}
	if remaining["grades"] != 2 {
		t.Errorf("second run grades = %d, want 2", remaining["grades"])
	}
}

func TestSQLiteStorage_NotFound(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	if _, err := store.GetRun(ctx, "missing"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetRun() error = %v, want ErrNotFound", err)
	}
	if err := store.DeleteRun(ctx, "missing"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("DeleteRun() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStorage_SaveRunValidation(t *testing.T) {
	store := createTestStorage(t)

	orphan := testResult()
	orphan.Grades[0].StudentID = "somebody-else"

	noAchievement := testResult()
	noAchievement.Grades[1].Achievement = ""

	tests := []struct {
		ctx     context.Context
		res     *pipeline.Result
		wantErr error
		name    string
	}{
		{name: "nil context", ctx: nil, res: testResult(), wantErr: ErrNilContext},
		{name: "nil result", ctx: context.Background(), res: nil, wantErr: ErrNilParameter},
		{name: "grade for unknown student", ctx: context.Background(), res: orphan, wantErr: ErrUnknownStudent},
		{name: "grade without achievement", ctx: context.Background(), res: noAchievement, wantErr: ErrInvalidGrade},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.SaveRun(tt.ctx, tt.res, time.Now())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SaveRun() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name    string
		str     string
		wantErr bool
	}{
		{name: "valid string", str: "run", wantErr: false},
		{name: "empty string", str: "", wantErr: true},
		{name: "whitespace only", str: " \t", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, "param")
			if (err != nil) != tt.wantErr {
				t.Errorf("validateString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrEmptyString) {
				t.Errorf("validateString() error = %v, want ErrEmptyString", err)
			}
		})
	}
}
