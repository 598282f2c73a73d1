package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/forPelevin/vidfill/internal/types"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	cyan   = color.New(color.FgCyan)
	faint  = color.New(color.Faint)
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

// Logf prints one progress line, colored by its leading word.
func (f *Formatter) Logf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	switch {
	case strings.HasPrefix(line, "skip"), strings.HasPrefix(line, "warning"), strings.HasPrefix(line, "cancelled"):
		yellow.Fprintln(f.w, line)
	case strings.HasPrefix(line, "failed"), strings.HasPrefix(line, "cleanup"):
		red.Fprintln(f.w, line)
	case strings.HasPrefix(line, "done"):
		green.Fprintln(f.w, line)
	case strings.HasPrefix(line, "---"):
		cyan.Fprintln(f.w, line)
	case strings.HasPrefix(line, "  "):
		faint.Fprintln(f.w, line)
	default:
		fmt.Fprintln(f.w, line)
	}
}

func (f *Formatter) Progress(current, total int) {
	cyan.Fprintf(f.w, "[%d/%d]\n", current, total)
}

func (f *Formatter) Finish(ok bool, summary string) {
	if ok {
		green.Fprintf(f.w, "✓ %s\n", summary)
		return
	}
	red.Fprintf(f.w, "✗ %s\n", summary)
}

// Jobs prints one line per job outcome.
func (f *Formatter) Jobs(sum types.RunSummary) {
	for _, j := range sum.Jobs {
		c := yellow
		switch j.Outcome {
		case types.OutcomeSucceeded:
			c = green
		case types.OutcomeFailedConcat, types.OutcomeFailedMerge:
			c = red
		}
		c.Fprintf(f.w, "  %-26s %s\n", j.Outcome, j.AudioPath)
	}
}

func (f *Formatter) Error(msg string) {
	red.Fprintf(f.w, "✗ %s\n", msg)
}

func (f *Formatter) SetupCheck(name string, ok bool, detail string) {
	if ok {
		green.Fprintf(f.w, "  ✓ %s: %s\n", name, detail)
	} else {
		red.Fprintf(f.w, "  ✗ %s: %s\n", name, detail)
	}
}
