package main

import (
	"fmt"
	"io"
	"strings"

	"imgview/internal/config"
	"imgview/internal/log"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// session holds what the persistent flags and the config file resolve to.
// Every subcommand shares one.
type session struct {
	cfgFile string
	debug   bool
	logFile string
	theme   string
	watch   bool

	cfg *config.Config
	fs  afero.Fs
}

// NewRootCmd creates the root command. Without a subcommand it opens the
// GUI on the optional path argument.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&session{fs: afero.NewOsFs()})
}

func newRootCmd(s *session) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "imgview [path]",
		Short: "A small image viewer",
		Long: `imgview shows the images of one directory and lets you step through
them with the arrow keys. JPEG, PNG, BMP and GIF files are listed in name
order; everything else is ignored.

Run it without a subcommand to open the graphical viewer, or use
'imgview tui' for a terminal preview.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(s, firstArg(args))
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&s.cfgFile, "config", "", "config file (default is $HOME/.config/imgview/config.yaml)")
	flags.BoolVar(&s.debug, "debug", false, "enable debug logging")
	flags.StringVar(&s.logFile, "log-file", "", "also write logs to this rotating file")
	flags.StringVar(&s.theme, "theme", "", "colour theme (light, dark or a configured palette)")
	flags.BoolVar(&s.watch, "watch", false, "rescan when the directory changes")

	rootCmd.AddCommand(newGUICmd(s))
	rootCmd.AddCommand(newTUICmd(s))
	rootCmd.AddCommand(newScanCmd(s))
	rootCmd.AddCommand(newConfigCmd(s))

	return rootCmd
}

// load reads the config file, applies flag overrides and configures logging
func (s *session) load(cmd *cobra.Command) error {
	var err error
	if s.cfgFile != "" {
		s.cfg, err = config.LoadConfigFile(s.cfgFile)
	} else {
		s.cfg, err = config.LoadConfig()
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		fmt.Fprintln(cmd.ErrOrStderr(), "Using default settings. Run 'imgview config init' to write a fresh config.")
		s.cfg = config.New()
	}

	if s.theme != "" {
		s.cfg.Theme = s.theme
	}
	if s.watch {
		s.cfg.Watch.Enabled = true
	}
	if s.logFile != "" {
		s.cfg.Log.File = s.logFile
	}
	if s.debug {
		s.cfg.Log.Level = "debug"
	}
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	s.configureLogging(cmd.ErrOrStderr())
	return nil
}

// configureLogging points the global logger at out plus the configured file
func (s *session) configureLogging(out io.Writer) {
	opts := []log.Option{
		log.WithOutput(out),
		log.WithLevel(s.cfg.Log.Level),
	}
	if strings.EqualFold(s.cfg.Log.Format, "json") {
		opts = append(opts, log.WithJSON())
	}
	if s.cfg.Log.File != "" {
		opts = append(opts,
			log.WithFile(s.cfg.Log.File),
			log.WithRotation(log.Rotation{
				MaxSizeMB:  s.cfg.Log.MaxSizeMB,
				MaxBackups: s.cfg.Log.MaxBackups,
				MaxAgeDays: s.cfg.Log.MaxAgeDays,
			}),
		)
	}
	log.Configure(opts...)
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
