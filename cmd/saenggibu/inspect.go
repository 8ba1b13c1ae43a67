package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/unicode/norm"

	"github.com/Veraticus/saenggibu/internal/cli"
	"github.com/Veraticus/saenggibu/internal/common"
	"github.com/Veraticus/saenggibu/internal/config"
	"github.com/Veraticus/saenggibu/internal/model"
	"github.com/Veraticus/saenggibu/internal/pipeline"
	"github.com/Veraticus/saenggibu/internal/segment"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show how one transcript is segmented and resolved",
		Long: `Decode one transcript and print its grade sections, narrative blocks,
inferred academic years, pandemic exposure and record counts. Only the
anonymized student id is shown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(viper.GetViper())
			if err != nil {
				return common.NewUserError("invalid configuration", err)
			}
			cfg, err := pipelineConfig(settings)
			if err != nil {
				return err
			}

			path := config.ExpandPath(args[0])
			data, err := os.ReadFile(path) //nolint:gosec // path is the user's argument
			if err != nil {
				return common.NewUserError("cannot read document", err)
			}
			text, encoding, err := pipeline.Decode(data)
			if err != nil {
				return common.NewUserError("cannot decode document", err)
			}
			doc := model.Document{Filename: filepath.Base(path), Text: norm.NFC.String(text)}

			result, err := pipeline.New(cfg).Process(doc)
			if err != nil {
				return common.NewUserError("cannot parse document", err)
			}
			layout := segment.Analyze(doc.Text, settings.AllNarrativeBlocks)

			writeInspection(cmd.OutOrStdout(), result, encoding, layout)
			return nil
		},
	}
}

func writeInspection(w io.Writer, result *pipeline.DocumentResult, encoding string, layout segment.Layout) {
	s := result.Student

	fmt.Fprintln(w, cli.FormatTitle("Student "+s.AnonymousID))
	fmt.Fprintf(w, "Encoding:   %s\n", encoding)
	fmt.Fprintf(w, "Years from: %s\n", orDash(result.YearStrategy))

	sections := make([]string, 0, len(layout.Sections))
	for _, sec := range layout.Sections {
		sections = append(sections, fmt.Sprintf("%d학년 (%d chars)", sec.Grade, utf8.RuneCountInString(sec.Text)))
	}
	fmt.Fprintf(w, "Sections:   %s\n", orDash(strings.Join(sections, ", ")))

	blockChars := 0
	for _, b := range layout.Narratives {
		blockChars += utf8.RuneCountInString(b.Text)
	}
	fmt.Fprintf(w, "Narratives: %d block(s), %d chars\n\n", len(layout.Narratives), blockChars)

	rows := make([][]string, 0, model.GradeLevels)
	for grade := 1; grade <= model.GradeLevels; grade++ {
		year := "-"
		if y, ok := s.YearOf(grade); ok {
			year = strconv.Itoa(y)
		}
		remote := "-"
		if d := s.RemoteDays[grade-1]; d != nil {
			remote = strconv.Itoa(*d)
		}
		covid := "no"
		if s.Covid[grade-1] {
			covid = "yes"
		}
		rows = append(rows, []string{strconv.Itoa(grade), year, covid, remote})
	}
	fmt.Fprintln(w, cli.RenderTable([]string{"Grade", "Year", "Covid", "Remote days"}, rows))

	fmt.Fprintf(w, "\nCovid intensity: %d\n", s.CovidIntensity)
	fmt.Fprintf(w, "Grade records: %d\n", len(result.Grades))
	fmt.Fprintf(w, "Narrative records: %d\n", len(result.Narratives))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
