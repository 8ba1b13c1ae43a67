package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/saenggibu/internal/cli"
	"github.com/Veraticus/saenggibu/internal/common"
	"github.com/Veraticus/saenggibu/internal/config"
	"github.com/Veraticus/saenggibu/internal/vocab"
)

func vocabCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vocab",
		Short: "List the subject vocabulary by group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := config.Load(viper.GetViper())
			if err != nil {
				return common.NewUserError("invalid configuration", err)
			}
			v, err := vocab.Load(settings.VocabularyFile)
			if err != nil {
				return common.NewUserError("could not load vocabulary file", err)
			}

			w := cmd.OutOrStdout()
			byGroup := v.ByGroup()
			for _, group := range groupOrder(byGroup) {
				subjects := byGroup[group]
				if len(subjects) == 0 {
					continue
				}
				fmt.Fprintf(w, "%s %s\n", cli.BoldStyle.Render(group), cli.SubtleStyle.Render(fmt.Sprintf("(%d)", len(subjects))))
				fmt.Fprintf(w, "  %s\n", strings.Join(subjects, ", "))
			}
			fmt.Fprintf(w, "\n%d subjects\n", v.Len())
			return nil
		},
	}
}

// groupOrder lists the built-in groups first, then groups introduced by a
// vocabulary file in name order.
func groupOrder(byGroup map[string][]string) []string {
	order := vocab.Groups()
	known := make(map[string]bool, len(order))
	for _, g := range order {
		known[g] = true
	}
	var extra []string
	for g := range byGroup {
		if !known[g] {
			extra = append(extra, g)
		}
	}
	sort.Strings(extra)
	return append(order, extra...)
}
