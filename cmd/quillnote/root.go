// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillNote Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the QuillNote CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quillnote",
		Short: "QuillNote - a personal notes service",
		Long: `QuillNote is a multi-user personal notes service with account
management, persistent sessions, and password recovery over email.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
