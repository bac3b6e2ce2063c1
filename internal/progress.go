package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// UIManager handles all user interface concerns (spinners, status output)
type UIManager interface {
	NewSpinner(description string) ProgressBar

	// Status messages go to stderr so stdout stays pipeable
	Printf(format string, args ...any)
}

// ProgressBar interface abstracts progress bar operations
type ProgressBar interface {
	Finish()
}

// StandardUIManager handles normal UI operations
type StandardUIManager struct {
	quiet    bool
	spinners bool
	out      io.Writer
}

// NewUIManager returns a UI writing to stderr. Spinners are silent when
// quiet is set or stderr is not a terminal.
func NewUIManager(quiet bool) UIManager {
	interactive := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	return &StandardUIManager{
		quiet:    quiet,
		spinners: !quiet && interactive,
		out:      os.Stderr,
	}
}

func (ui *StandardUIManager) NewSpinner(description string) ProgressBar {
	if !ui.spinners {
		return &SilentProgressBar{}
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(ui.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &VisibleProgressBar{bar: bar}
}

func (ui *StandardUIManager) Printf(format string, args ...any) {
	if !ui.quiet {
		fmt.Fprintf(ui.out, format, args...)
	}
}

// VisibleProgressBar wraps the actual progress bar
type VisibleProgressBar struct {
	bar *progressbar.ProgressBar
}

func (v *VisibleProgressBar) Finish() {
	_ = v.bar.Finish()
}

// SilentProgressBar implements a silent progress bar
type SilentProgressBar struct{}

func (SilentProgressBar) Finish() {}
