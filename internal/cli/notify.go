package cli

import (
	"io"

	"github.com/fatih/color"
)

// ColorNotifier prints notifications to a terminal: green for success,
// yellow for warnings, red for errors.
type ColorNotifier struct {
	w       io.Writer
	success *color.Color
	warning *color.Color
	failure *color.Color
}

func NewColorNotifier(w io.Writer) *ColorNotifier {
	return &ColorNotifier{
		w:       w,
		success: color.New(color.FgGreen),
		warning: color.New(color.FgYellow),
		failure: color.New(color.FgRed, color.Bold),
	}
}

func (n *ColorNotifier) Success(msg string) {
	_, _ = n.success.Fprintln(n.w, "ok: "+msg)
}

func (n *ColorNotifier) Warning(msg string) {
	_, _ = n.warning.Fprintln(n.w, "warning: "+msg)
}

func (n *ColorNotifier) Error(msg string) {
	_, _ = n.failure.Fprintln(n.w, "error: "+msg)
}
