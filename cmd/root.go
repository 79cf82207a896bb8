// Package cmd holds the miniblog command line: serving the API and managing
// the database schema.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cppla/miniblog/config"
)

var flagConfigDir string

// NewRootCmd builds the command tree. Running the bare command serves the API.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "miniblog",
		Short:         "Blogging REST backend for posts and comments",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, serveOptions{migrate: true})
		},
	}

	root.PersistentFlags().StringVar(&flagConfigDir, "config", "config", "directory holding config.yaml (optional)")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
	)
	return root
}

func loadConfig() (config.AppConfig, error) {
	return config.Load(flagConfigDir)
}
