package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/twinzy/goals/internal/db"
)

// IndexesCmd creates the MongoDB indexes without starting the server.
func IndexesCmd() *cobra.Command {
	var (
		uri      string
		database string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "indexes",
		Short: "Ensure MongoDB indexes on users and goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := db.ConnectMongo(ctx, db.MongoOptions{
				URI:            uri,
				ConnectTimeout: timeout,
				SocketTimeout:  timeout,
			})
			if err != nil {
				return err
			}
			defer func() { _ = client.Disconnect(ctx) }()

			err = db.EnsureIndexes(ctx, client.Database(database))
			if err != nil {
				return err
			}
			fmt.Printf("indexes ready on %s\n", database)
			return nil
		},
	}

	cmd.Flags().StringVar(&uri, "uri", os.Getenv("MONGODB_URI"), "MongoDB connection string")
	cmd.Flags().StringVar(&database, "database", envOr("MONGODB_DATABASE", "goals"), "database name")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "connection timeout")
	return cmd
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
