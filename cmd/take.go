package cmd

import (
	"github.com/spf13/cobra"

	"github.com/chaspy/toeic-assessment-poc/internal/tui"
)

var takeCmd = &cobra.Command{
	Use:   "take",
	Short: "Take the assessment in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Logs would corrupt the screen, so they only go to the log file.
		rt, err := newRuntime(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer rt.Close()
		return tui.Run(cmd.Context(), rt.engine)
	},
}
