package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
)

// ProgressBar renders percentage progress reports on a terminal.
type ProgressBar struct {
	bar     *progressbar.ProgressBar
	writer  io.Writer
	current int
}

// NewProgressBar creates a bar over [0, 100] with the given description.
func NewProgressBar(writer io.Writer, description string) *ProgressBar {
	if writer == nil {
		writer = os.Stderr
	}
	p := &ProgressBar{writer: writer}
	p.bar = progressbar.NewOptions(100,
		progressbar.OptionSetWriter(writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
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
	return p
}

// Report moves the bar to percent. Reports that would move it backwards
// are ignored. It matches importer.ProgressFunc.
func (p *ProgressBar) Report(percent int) {
	percent = min(max(percent, 0), 100)
	if percent <= p.current {
		return
	}
	p.current = percent
	if err := p.bar.Set(percent); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Current is the last reported percentage.
func (p *ProgressBar) Current() int {
	return p.current
}
