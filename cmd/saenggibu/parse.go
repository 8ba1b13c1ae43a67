package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/saenggibu/internal/cli"
	"github.com/Veraticus/saenggibu/internal/common"
	"github.com/Veraticus/saenggibu/internal/config"
	"github.com/Veraticus/saenggibu/internal/export"
	"github.com/Veraticus/saenggibu/internal/pipeline"
	"github.com/Veraticus/saenggibu/internal/storage"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [dir|file]...",
		Short: "Parse transcripts into the analysis tables",
		Long: `Parse every transcript in the given directories (matched by input.pattern)
or files, then write the output tables as CSV files. Documents that cannot be
decoded or parsed are skipped and listed in the run summary.

When output.database is set, the run is also stored in SQLite.`,
		Example: `  # Parse a directory of transcripts
  saenggibu parse data/raw

  # Write tables elsewhere and keep the run in SQLite
  saenggibu parse data/raw -o out --database out/saenggibu.db`,
		Args: cobra.MinimumNArgs(1),
		RunE: runParse,
	}

	cmd.Flags().StringP("output", "o", "", "output directory for CSV tables (default: data/processed)")
	cmd.Flags().String("pattern", "", "file pattern used inside directories (default: *.txt)")
	cmd.Flags().String("database", "", "SQLite database to store the run in")
	cmd.Flags().Int("workers", 0, "number of documents parsed in parallel (default: number of CPUs)")
	cmd.Flags().Bool("bom", true, "write a UTF-8 byte order mark in CSV files")
	cmd.Flags().Bool("checkpoint", false, "snapshot the database before storing the run")
	cmd.Flags().Bool("all-blocks", false, "read every narrative block instead of the first one")
	cmd.Flags().BoolP("quiet", "q", false, "hide the progress bar")

	_ = viper.BindPFlag("output.dir", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("input.pattern", cmd.Flags().Lookup("pattern"))
	_ = viper.BindPFlag("output.database", cmd.Flags().Lookup("database"))
	_ = viper.BindPFlag("pipeline.workers", cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("output.bom", cmd.Flags().Lookup("bom"))
	_ = viper.BindPFlag("output.checkpoint", cmd.Flags().Lookup("checkpoint"))
	_ = viper.BindPFlag("narrative.all_blocks", cmd.Flags().Lookup("all-blocks"))

	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return common.NewUserError("invalid configuration", err)
	}

	paths, err := discoverDocuments(args, settings.InputPattern)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return common.NewUserError(fmt.Sprintf("no files matching %q", settings.InputPattern), common.ErrNoDocuments)
	}

	cfg, err := pipelineConfig(settings)
	if err != nil {
		return err
	}
	driver := pipeline.New(cfg)

	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		driver.OnProgress(cli.NewProgressReporter(cmd.ErrOrStderr(), len(paths)).Report)
	}

	started := time.Now()
	res, err := driver.Run(ctx, paths)
	if err != nil {
		return err
	}

	written, err := export.WriteDir(settings.OutputDir, export.Tables(res), settings.WriteBOM)
	if err != nil {
		return fmt.Errorf("failed to write output tables: %w", err)
	}

	var run *storage.Run
	if settings.Database != "" {
		run, err = storeRun(ctx, settings, res, started)
		if err != nil {
			return err
		}
	}

	common.LogInfo("Run complete", common.Fields{
		"documents": res.Documents,
		"parsed":    res.Succeeded(),
		"skipped":   len(res.Failures),
	})
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatRunSummary(cli.RunSummary{
		Result:  res,
		Run:     run,
		Written: written,
		Elapsed: time.Since(started),
	}))

	if res.Succeeded() == 0 {
		return common.NewUserError(fmt.Sprintf("none of the %d documents could be parsed", res.Documents), common.ErrNoDocuments)
	}
	return nil
}

func storeRun(ctx context.Context, settings *config.Settings, res *pipeline.Result, started time.Time) (*storage.Run, error) {
	store, err := initStorage(ctx, settings.Database)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	if settings.Checkpoint {
		manager, err := storage.NewCheckpointManager(store)
		if err != nil {
			return nil, fmt.Errorf("failed to create checkpoint manager: %w", err)
		}
		if _, err := manager.AutoCheckpoint(ctx, "parse"); err != nil {
			return nil, err
		}
	}

	return store.SaveRun(ctx, res, started)
}
