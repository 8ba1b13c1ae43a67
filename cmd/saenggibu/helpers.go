package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Veraticus/saenggibu/internal/common"
	"github.com/Veraticus/saenggibu/internal/config"
	"github.com/Veraticus/saenggibu/internal/pipeline"
	"github.com/Veraticus/saenggibu/internal/storage"
	"github.com/Veraticus/saenggibu/internal/vocab"
)

// pipelineConfig builds the driver configuration from settings, loading the
// vocabulary extension file when one is configured.
func pipelineConfig(s *config.Settings) (pipeline.Config, error) {
	v, err := vocab.Load(s.VocabularyFile)
	if err != nil {
		return pipeline.Config{}, common.NewUserError("could not load vocabulary file", err)
	}
	return pipeline.Config{
		Vocabulary:         v,
		Grades:             s.GradeConfig(),
		Narratives:         s.NarrativeConfig(),
		Cohort:             s.CohortConfig(),
		Workers:            s.Workers,
		GradePolicy:        s.GradePolicy(),
		NarrativePolicy:    s.NarrativePolicy(),
		AllNarrativeBlocks: s.AllNarrativeBlocks,
	}, nil
}

// discoverDocuments expands directory arguments with pattern and keeps file
// arguments as given. The result is sorted and free of duplicates.
func discoverDocuments(args []string, pattern string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, arg := range args {
		arg = config.ExpandPath(arg)
		info, err := os.Stat(arg)
		if err != nil {
			return nil, common.NewUserError(fmt.Sprintf("cannot read input %s", arg), err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(arg, pattern))
		if err != nil {
			return nil, common.NewUserError(fmt.Sprintf("invalid input pattern %q", pattern), err)
		}
		for _, m := range matches {
			if fi, err := os.Stat(m); err == nil && !fi.IsDir() {
				add(m)
			}
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// initStorage opens and migrates the dataset database.
func initStorage(ctx context.Context, dbPath string) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(config.ExpandPath(dbPath))
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}
