package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/saenggibu/internal/pipeline"
	"github.com/Veraticus/saenggibu/internal/storage"
)

// maxListedFailures bounds how many skipped documents the summary names.
const maxListedFailures = 10

// RunSummary is what a finished parse run reports to the user.
type RunSummary struct {
	Result  *pipeline.Result
	Run     *storage.Run
	Written []string
	Elapsed time.Duration
}

// FormatRunSummary renders the run summary box.
func FormatRunSummary(s RunSummary) string {
	res := s.Result
	var b strings.Builder

	fmt.Fprintf(&b, "%s Documents: %d\n", ChartIcon, res.Documents)
	fmt.Fprintf(&b, "  • Parsed: %d\n", res.Succeeded())
	fmt.Fprintf(&b, "  • Skipped: %d\n", len(res.Failures))
	fmt.Fprintf(&b, "  • Grade records: %d\n", len(res.Grades))
	fmt.Fprintf(&b, "  • Narrative records: %d\n", len(res.Narratives))
	fmt.Fprintf(&b, "  • Time taken: %s\n", s.Elapsed.Round(time.Millisecond))

	if len(s.Written) > 0 {
		fmt.Fprintf(&b, "\n%s Output:\n", FolderIcon)
		for _, path := range s.Written {
			fmt.Fprintf(&b, "  • %s\n", path)
		}
	}
	if s.Run != nil {
		fmt.Fprintf(&b, "  • database run %s\n", s.Run.ID)
	}

	if len(res.Failures) > 0 {
		b.WriteString("\n" + FormatWarning("Skipped documents:") + "\n")
		for i, f := range res.Failures {
			if i == maxListedFailures {
				fmt.Fprintf(&b, "  … and %d more\n", len(res.Failures)-maxListedFailures)
				break
			}
			fmt.Fprintf(&b, "  • %s\n", f)
		}
	}

	title := "Parsing Complete"
	if res.Succeeded() == 0 {
		title = "No Documents Parsed"
	}
	return RenderBox(title, strings.TrimRight(b.String(), "\n"))
}
