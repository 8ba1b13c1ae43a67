package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/saenggibu/internal/cli"
	"github.com/Veraticus/saenggibu/internal/common"
	"github.com/Veraticus/saenggibu/internal/config"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Manage runs stored in the SQLite database",
	}
	cmd.PersistentFlags().String("database", "", "SQLite database (default: output.database)")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbPath, err := runsDatabase(cmd)
			if err != nil {
				return err
			}
			store, err := initStorage(cmd.Context(), dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			runs, err := store.ListRuns(cmd.Context())
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No runs stored yet"))
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					r.ID,
					r.StartedAt.Local().Format("2006-01-02 15:04"),
					strconv.Itoa(r.Documents),
					strconv.Itoa(r.Succeeded),
					strconv.Itoa(r.Failures),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"Run", "Started", "Documents", "Parsed", "Skipped"}, rows))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete RUN_ID",
		Short: "Delete a stored run and all of its rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := runsDatabase(cmd)
			if err != nil {
				return err
			}
			store, err := initStorage(cmd.Context(), dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteRun(cmd.Context(), args[0]); err != nil {
				return common.NewUserError(fmt.Sprintf("could not delete run %s", args[0]), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted run "+args[0]))
			return nil
		},
	})

	return cmd
}

func runsDatabase(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("database"); path != "" {
		return path, nil
	}
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return "", common.NewUserError("invalid configuration", err)
	}
	if settings.Database == "" {
		return "", common.NewUserError("no database configured; set output.database or pass --database", common.ErrMissingConfig)
	}
	return settings.Database, nil
}
