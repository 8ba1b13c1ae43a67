package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/saenggibu/internal/cli"
	"github.com/Veraticus/saenggibu/internal/common"
	"github.com/Veraticus/saenggibu/internal/config"
	"github.com/Veraticus/saenggibu/internal/fuzzy"
	"github.com/Veraticus/saenggibu/internal/vocab"
)

func matchCmd() *cobra.Command {
	var threshold int
	var policy string

	cmd := &cobra.Command{
		Use:     "match SUBJECT...",
		Short:   "Resolve subject names against the vocabulary",
		Example: `  saenggibu match "수 학Ⅰ" 확률통계 천문학`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(viper.GetViper())
			if err != nil {
				return common.NewUserError("invalid configuration", err)
			}
			v, err := vocab.Load(settings.VocabularyFile)
			if err != nil {
				return common.NewUserError("could not load vocabulary file", err)
			}

			if threshold < 0 {
				threshold = settings.GradeThreshold
			}
			noMatch := settings.GradePolicy()
			if policy != "" {
				p, ok := fuzzy.ParsePolicy(policy)
				if !ok {
					return common.NewUserError(fmt.Sprintf("unknown no-match policy %q", policy), common.ErrInvalidConfig)
				}
				noMatch = p
			}

			matcher := fuzzy.NewMatcher(v, noMatch)
			rows := make([][]string, 0, len(args))
			for _, q := range args {
				m := matcher.Match(q, threshold)
				group := "-"
				if m.Subject != "" {
					group = v.Group(m.Subject)
				}
				rows = append(rows, []string{q, orDash(m.Subject), string(m.Method), strconv.Itoa(m.Score), group})
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"Query", "Subject", "Method", "Score", "Group"}, rows))
			return nil
		},
	}

	cmd.Flags().IntVar(&threshold, "threshold", -1, "similarity threshold 0-100 (default: matcher.grade_threshold)")
	cmd.Flags().StringVar(&policy, "no-match", "", "no-match policy: raw or reject (default: matcher.grade_no_match)")

	return cmd
}
