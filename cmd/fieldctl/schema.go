package main

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	"github.com/planactions/customfields/internal/infrastructure/db/mongo"
	"github.com/planactions/customfields/internal/pkg/config"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the stored schema using the service configuration (MONGO_URI, MONGO_DB)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Process(cmd.Context(), envconfig.OsLookuper())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, AppName: "fieldctl"})
			if err != nil {
				return err
			}
			defer func() { _ = client.Disconnect(context.Background()) }()

			schema, err := mongo.NewFieldRepository(db).FetchSchema(ctx)
			if err != nil {
				return err
			}
			return writeJSON(cmd, schema)
		},
	}
}
