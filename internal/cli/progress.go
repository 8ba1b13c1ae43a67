package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// ProgressReporter renders a document progress bar. Report matches the
// pipeline's progress callback and is safe for concurrent use.
type ProgressReporter struct {
	writer io.Writer
	bar    *progressbar.ProgressBar
	mu     sync.Mutex
	done   int
}

// NewProgressReporter creates a reporter for total documents.
func NewProgressReporter(writer io.Writer, total int) *ProgressReporter {
	r := &ProgressReporter{writer: writer}
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Parsing transcripts...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return r
}

// Report advances the bar by one finished document.
func (r *ProgressReporter) Report(_, _ int, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done++
	if err := r.bar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Done returns how many documents have been reported.
func (r *ProgressReporter) Done() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}
