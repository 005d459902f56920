package main

import (
	"imgview/internal/errors"
	"imgview/internal/gui"

	"github.com/spf13/cobra"
)

// newGUICmd creates the GUI command for the CLI
func newGUICmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "gui [path]",
		Short: "Open the graphical viewer",
		Long: `Open the graphical viewer on a directory, or on the directory of an
image. Left and Right step through the images, Escape leaves full screen
or closes the window.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(s, firstArg(args))
		},
	}
}

// runGUI launches the GUI directly
func runGUI(s *session, path string) error {
	if !gui.IsGUIAvailable() {
		return errors.New("this build has no GUI, use 'imgview tui'")
	}
	return gui.Run(s.cfg, gui.Options{
		FS:    s.fs,
		Path:  path,
		Watch: s.cfg.Watch.Enabled,
	})
}
