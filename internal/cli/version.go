// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/juwamardott/chatbot/internal/cloud"
)

// Version information (set at build time via -ldflags)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func newVersionCommand(env Environment) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(env.Stdout, "chatbot %s\n", Version)
			fmt.Fprintf(env.Stdout, "  commit:  %s\n", GitCommit)
			fmt.Fprintf(env.Stdout, "  built:   %s\n", BuildDate)
			fmt.Fprintf(env.Stdout, "  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			fmt.Fprintf(env.Stdout, "  model:   %s\n", cloud.DefaultModel)
		},
	}
}
