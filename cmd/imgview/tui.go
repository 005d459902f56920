package main

import (
	"io"

	"imgview/internal/tui"

	"github.com/spf13/cobra"
)

// newTUICmd creates the terminal viewer command
func newTUICmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "tui [path]",
		Short: "Preview images in the terminal",
		Long: `Preview the images of a directory in the terminal using coloured
half blocks. Press o to open another directory and ? for all keys.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Log lines would tear the alternate screen; keep only the file
			s.configureLogging(io.Discard)
			return tui.Run(s.cfg, tui.Options{
				FS:    s.fs,
				Path:  firstArg(args),
				Watch: s.cfg.Watch.Enabled,
			})
		},
	}
}
