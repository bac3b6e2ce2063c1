package main

import (
	"os"

	"github.com/rtzll/transcriptgrab/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
