package cmd

import (
	"github.com/rtzll/transcriptgrab/internal"
)

// newApp builds the App for a command. Long-running commands log at
// info; one-shot commands only surface warnings unless --verbose.
func newApp(longRunning bool, options ...internal.AppOption) *internal.App {
	log := internal.NewLogger(config, longRunning)
	return internal.NewApp(config, append([]internal.AppOption{internal.WithLogger(log)}, options...)...)
}
