package main

import (
	"os"

	"github.com/chaspy/toeic-assessment-poc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
