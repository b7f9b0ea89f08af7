package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/twinzy/goals/internal/db"
)

type sqlFlags struct {
	driver     string
	connection string
	timeout    time.Duration
}

func (f *sqlFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.driver, "driver", envOr("DB_DRIVER", "sqlite"), "database driver (sqlite or pgx)")
	cmd.PersistentFlags().StringVar(&f.connection, "connection", envOr("DB_CONNECTION", "./data/goals.db"), "database connection string")
	cmd.PersistentFlags().DurationVar(&f.timeout, "timeout", 5*time.Second, "connection timeout")
}

// MigrateCmd manages the relational schema used by STORAGE_BACKEND=sql.
func MigrateCmd() *cobra.Command {
	flags := &sqlFlags{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the SQL backend schema",
	}
	flags.register(cmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.OpenSQL(cmd.Context(), flags.driver, flags.connection, flags.timeout)
			if err != nil {
				return err
			}
			defer database.Close()
			return db.RunMigrations(database.DB, flags.driver)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.OpenSQL(cmd.Context(), flags.driver, flags.connection, flags.timeout)
			if err != nil {
				return err
			}
			defer database.Close()
			return db.MigrateDown(database.DB, flags.driver)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.OpenSQL(cmd.Context(), flags.driver, flags.connection, flags.timeout)
			if err != nil {
				return err
			}
			defer database.Close()

			version, err := db.MigrationVersion(database.DB, flags.driver)
			if err != nil {
				return err
			}
			fmt.Printf("schema version: %d\n", version)
			return nil
		},
	})

	return cmd
}
