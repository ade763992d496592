package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const ruleWidth = 70

// Console writes benchmark progress and summaries to a terminal or plain
// writer. Color is applied only when the writer is a real TTY and has not
// been disabled explicitly.
type Console struct {
	w       io.Writer
	scheme  *ColorScheme
	noColor bool
}

// NewConsole creates a console writer. Passing noColor forces plain output;
// otherwise color is enabled when w is a terminal.
func NewConsole(w io.Writer, noColor bool) *Console {
	if !noColor && !isTerminal(w) {
		noColor = true
	}
	scheme := DefaultColorScheme()
	if noColor {
		scheme = NoColorScheme()
	}
	return &Console{w: w, scheme: scheme, noColor: noColor}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Rule prints a horizontal separator line.
func (c *Console) Rule() {
	fmt.Fprintln(c.w, c.scheme.Banner.Sprint(strings.Repeat("=", ruleWidth)))
}

// Banner prints a rule-framed title block.
func (c *Console) Banner(title string) {
	fmt.Fprintln(c.w)
	c.Rule()
	fmt.Fprintln(c.w, c.scheme.Banner.Sprint(title))
	c.Rule()
}

// Field prints an aligned "Label: value" line inside a banner block.
func (c *Console) Field(label, format string, args ...any) {
	fmt.Fprintf(c.w, "%s %s\n",
		c.scheme.Label.Sprintf("%-15s", label+":"),
		fmt.Sprintf(format, args...))
}

// Stepf prints a numbered phase marker, e.g. "[2/4] Running benchmark...".
func (c *Console) Stepf(step, total int, format string, args ...any) {
	fmt.Fprintf(c.w, "\n%s %s\n",
		c.scheme.Highlight.Sprintf("[%d/%d]", step, total),
		fmt.Sprintf(format, args...))
}

// Printf writes a plain formatted line.
func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.w, format+"\n", args...)
}

// Successf writes a checkmarked line.
func (c *Console) Successf(format string, args ...any) {
	fmt.Fprintf(c.w, "%s %s\n", SuccessIcon(c.noColor), fmt.Sprintf(format, args...))
}

// Warnf writes a warning line.
func (c *Console) Warnf(format string, args ...any) {
	fmt.Fprintf(c.w, "%s %s\n", WarningIcon(c.noColor), c.scheme.Warn.Sprintf(format, args...))
}

// Errorf writes an error line.
func (c *Console) Errorf(format string, args ...any) {
	fmt.Fprintf(c.w, "%s %s\n", ErrorIcon(c.noColor), c.scheme.Error.Sprintf(format, args...))
}

// Logf adapts the console to the plain logging callback used by executors
// and the monitor.
func (c *Console) Logf(format string, args ...any) {
	c.Printf(format, args...)
}
