package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kaiunlab/kaiun/internal/config"
	"github.com/kaiunlab/kaiun/internal/db"
	"github.com/kaiunlab/kaiun/internal/version"
)

func main() {
	root := &cobra.Command{
		Use:   "kaiun",
		Short: "Kaiun LINE advice bot server",
	}

	var migrationsDir string
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return db.Migrate(cfg.Postgres, "file://"+migrationsDir)
		},
	}
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "migrations", "migrations directory")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the webhook server",
			Run:   func(cmd *cobra.Command, args []string) { runServe() },
		},
		migrateCmd,
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Println(version.GetInfo())
			},
		},
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
