// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Show the effective configuration.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/juwamardott/chatbot/internal/config"
)

func newConfigCommand(env Environment, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with the API key masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if cfg == nil {
				return NewCommandError("config", "load config", err)
			}

			path := flags.configPath
			if path == "" {
				if p, perr := config.ConfigPath(); perr == nil {
					path = p
				}
			}

			out := env.Stdout
			fmt.Fprintf(out, "# file: %s\n", path)
			if err != nil {
				fmt.Fprintf(out, "# warning: %v\n", err)
			}
			fmt.Fprint(out, cfg.String())
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.configPath != "" {
				fmt.Fprintln(env.Stdout, flags.configPath)
				return nil
			}
			path, err := config.ConfigPath()
			if err != nil {
				return NewCommandError("config", "resolve path", err)
			}
			fmt.Fprintln(env.Stdout, path)
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flags.configPath
			if path == "" {
				p, err := config.ConfigPath()
				if err != nil {
					return NewCommandError("config", "resolve path", err)
				}
				path = p
			}

			cfg := config.Default()
			flags.apply(cfg)
			cfg.SetDefaults()
			if err := config.Save(cfg, path, force); err != nil {
				return NewCommandError("config", "write file", err)
			}
			fmt.Fprintf(env.Stdout, "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)

	return cmd
}
