// Package pipeline runs the transcript extraction over a set of documents and
// assembles the output tables.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/Veraticus/saenggibu/internal/cohort"
	"github.com/Veraticus/saenggibu/internal/common"
	"github.com/Veraticus/saenggibu/internal/extract"
	"github.com/Veraticus/saenggibu/internal/fuzzy"
	"github.com/Veraticus/saenggibu/internal/model"
	"github.com/Veraticus/saenggibu/internal/segment"
	"github.com/Veraticus/saenggibu/internal/vocab"
	"github.com/Veraticus/saenggibu/internal/volatility"
)

// ErrPanic marks a document whose extraction panicked.
var ErrPanic = errors.New("extraction panicked")

// Config wires the extraction components of a run.
type Config struct {
	Vocabulary         *vocab.Vocabulary
	Grades             extract.GradeConfig
	Narratives         extract.NarrativeConfig
	Cohort             cohort.Config
	Workers            int
	GradePolicy        fuzzy.NoMatchPolicy
	NarrativePolicy    fuzzy.NoMatchPolicy
	AllNarrativeBlocks bool
}

// DefaultConfig returns a configuration using the built-in vocabulary.
func DefaultConfig() Config {
	return Config{
		Vocabulary: vocab.Default(),
		Grades:     extract.DefaultGradeConfig(),
		Narratives: extract.DefaultNarrativeConfig(),
		Cohort:     cohort.DefaultConfig(),
		Workers:    runtime.NumCPU(),
	}
}

// ProgressFunc is called once per finished document. It may be called from
// several goroutines at once.
type ProgressFunc func(done, total int, file string)

// DocumentError records a document excluded from the output. The document
// is identified by its position in the sorted run and the anonymized id
// derived from its filename; the filename is not kept.
type DocumentError struct {
	Err       error
	StudentID string
	Index     int
}

func newDocumentError(index int, path string, err error) *DocumentError {
	id := cohort.ParseFilename(path)
	return &DocumentError{
		Index:     index,
		StudentID: cohort.AnonymousID(id.Name, id.StudentID),
		Err:       err,
	}
}

// Key names the document in logs, summaries and stored failures.
func (e *DocumentError) Key() string {
	return fmt.Sprintf("document %d (%s)", e.Index+1, e.StudentID)
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Key(), e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// DocumentResult holds every record extracted from one document.
type DocumentResult struct {
	Student      model.Student
	Years        model.YearMap
	YearStrategy string
	Encoding     string
	Grades       []model.Grade
	Narratives   []model.Narrative
	Volatility   model.Volatility
}

// Driver extracts records from documents. It holds no per-document state and
// is safe for concurrent use.
type Driver struct {
	resolver   *cohort.Resolver
	grades     *extract.GradeExtractor
	narratives *extract.NarrativeExtractor
	progress   ProgressFunc
	cfg        Config
}

// New creates a driver.
func New(cfg Config) *Driver {
	if cfg.Vocabulary == nil {
		cfg.Vocabulary = vocab.Default()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	scorer := extract.NewKeywordScorer(cfg.Vocabulary.Keywords())
	return &Driver{
		cfg:        cfg,
		resolver:   cohort.NewResolver(cfg.Cohort),
		grades:     extract.NewGradeExtractor(fuzzy.NewMatcher(cfg.Vocabulary, cfg.GradePolicy), cfg.Grades),
		narratives: extract.NewNarrativeExtractor(fuzzy.NewMatcher(cfg.Vocabulary, cfg.NarrativePolicy), scorer, cfg.Narratives),
	}
}

// OnProgress registers a callback invoked as documents finish.
func (d *Driver) OnProgress(fn ProgressFunc) {
	d.progress = fn
}

// Process extracts every record from one decoded document. A panic during
// extraction is returned as an error wrapping ErrPanic.
func (d *Driver) Process(doc model.Document) (result *DocumentResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			common.LogDebug("Recovered extraction panic", common.Fields{"stack": string(debug.Stack())})
			result, err = nil, fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	if strings.TrimSpace(doc.Text) == "" {
		return nil, common.ErrEmptyDocument
	}

	layout := segment.Analyze(doc.Text, d.cfg.AllNarrativeBlocks)
	resolution := d.resolver.Resolve(doc, layout)
	id := resolution.Student.AnonymousID

	grades := d.grades.Extract(layout, resolution.Years, id)
	return &DocumentResult{
		Student:      resolution.Student,
		Years:        resolution.Years,
		YearStrategy: resolution.YearStrategy,
		Grades:       grades,
		Narratives:   d.narratives.Extract(layout, resolution.Years, id),
		Volatility:   volatility.Summarize(id, grades),
	}, nil
}

// ProcessFile reads, decodes and processes one document.
func (d *Driver) ProcessFile(path string) (*DocumentResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// The path carries the student's name; keep only the cause.
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			err = pathErr.Err
		}
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	text, encoding, err := Decode(data)
	if err != nil {
		return nil, err
	}
	result, err := d.Process(model.Document{Filename: filepath.Base(path), Text: norm.NFC.String(text)})
	if err != nil {
		return nil, err
	}
	result.Encoding = encoding
	return result, nil
}

// Run processes paths with a bounded worker pool. Failed documents are
// collected in the result and never abort the run. Output order follows the
// sorted file paths, independent of scheduling.
func (d *Driver) Run(ctx context.Context, paths []string) (*Result, error) {
	if len(paths) == 0 {
		return nil, common.ErrNoDocuments
	}

	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	type outcome struct {
		result *DocumentResult
		err    error
	}
	outcomes := make([]outcome, len(sorted))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Workers)
	for i, path := range sorted {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := d.ProcessFile(path)
			outcomes[i] = outcome{result: result, err: err}
			if d.progress != nil {
				d.progress(int(done.Add(1)), len(sorted), filepath.Base(path))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("run interrupted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run interrupted: %w", err)
	}

	res := &Result{Documents: len(sorted)}
	for i, o := range outcomes {
		if o.err != nil {
			docErr := newDocumentError(i, sorted[i], o.err)
			common.LogWarn("Skipping document", common.Fields{"document": docErr.Key(), "reason": o.err.Error()})
			res.Failures = append(res.Failures, docErr)
			continue
		}
		common.LogDebug("Parsed document", common.Fields{
			"document":   i + 1,
			"student":    o.result.Student.AnonymousID,
			"encoding":   o.result.Encoding,
			"years":      o.result.YearStrategy,
			"grades":     len(o.result.Grades),
			"narratives": len(o.result.Narratives),
		})
		res.add(o.result)
	}
	res.YearlyCovid = YearlyCovid(res.Students)
	res.KeywordTotals = KeywordTotals(res.Narratives)
	return res, nil
}
