package main

import (
	"fmt"
	"os"
	"strings"

	"imgview/internal/config"
	"imgview/internal/errors"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// newConfigCmd creates the config command and its subcommands
func newConfigCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(newConfigInitCmd(s))
	cmd.AddCommand(newConfigShowCmd(s))
	cmd.AddCommand(newConfigThemesCmd(s))
	return cmd
}

func newConfigInitCmd(s *session) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := s.configPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.NewFileError("config file already exists, use --force to overwrite", path, errors.InvalidPath, nil)
			}
			if err := config.SaveConfig(config.New(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func newConfigShowCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long:  `Print the configuration after defaults and command line flags are applied.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(s.cfg)
			if err != nil {
				return errors.Wrap(err, "failed to marshal config")
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigThemesCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List the available themes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range s.cfg.ListThemes() {
				marker := " "
				if strings.EqualFold(name, s.cfg.Theme) {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
			}
		},
	}
}

// configPath is the --config flag or the default location
func (s *session) configPath() (string, error) {
	if s.cfgFile != "" {
		return s.cfgFile, nil
	}
	return config.DefaultPath()
}
