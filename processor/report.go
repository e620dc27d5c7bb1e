package processor

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// reporter writes the user-facing console lines.
type reporter struct {
	out     io.Writer
	errOut  io.Writer
	red     *color.Color
	yellow  *color.Color
	green   *color.Color
	colored bool
}

func newReporter(out, errOut io.Writer) *reporter {
	r := &reporter{
		out:    out,
		errOut: errOut,
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
		green:  color.New(color.FgGreen),
	}
	r.colored = isTerminal(out)
	for _, c := range []*color.Color{r.red, r.yellow, r.green} {
		if r.colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// isTerminal reports whether w is a TTY that should get colors.
// NO_COLOR disables colors regardless.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (r *reporter) invalidFile(path string) {
	r.red.Fprintf(r.out, "Invalid line ending in file: %s", path)
	fmt.Fprintln(r.out)
}

func (r *reporter) fileError(path string, err error) {
	r.yellow.Fprintf(r.errOut, "Error processing file %s: %v", path, err)
	fmt.Fprintln(r.errOut)
}

func (r *reporter) summary(action Action, stats Stats) {
	c := r.green
	if stats.Invalid > 0 || stats.Failed > 0 {
		c = r.red
	}
	c.Fprintf(r.errOut, "%s: %d checked (%d cached, %d skipped), %d fixed, %d invalid, %d failed",
		action, stats.Checked(), stats.Cached, stats.Skipped, stats.Fixed, stats.Invalid, stats.Failed)
	fmt.Fprintln(r.errOut)
}
