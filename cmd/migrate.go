package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/cppla/miniblog/config"
	"github.com/cppla/miniblog/migrations"
	"github.com/cppla/miniblog/utils"
)

var errNotPostgres = errors.New("migrations apply to the postgres storage driver only")

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := migrationConfig()
			if err != nil {
				return err
			}
			return migrations.Up(cfg.DatabaseURL, utils.Logger)
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := migrationConfig()
			if err != nil {
				return err
			}
			return migrations.Down(cfg.DatabaseURL, steps, utils.Logger)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}

func migrationConfig() (config.AppConfig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, err
	}
	if cfg.StorageDriver != config.DriverPostgres {
		return cfg, errNotPostgres
	}
	if err := utils.InitLogger(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
