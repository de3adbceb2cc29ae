package cmd

import (
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/qrave1/RoomSignal/internal/application/config"
	"github.com/qrave1/RoomSignal/internal/infra/adapters/sqlstore"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate <command> [args]",
	Short: "Run key-value store migrations (goose commands: up, down, status, ...)",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.New()
		if err != nil {
			log.Fatalf("could not load config: %v", err)
		}

		ctx := cmd.Context()

		var (
			db     *sqlx.DB
			driver string
		)

		switch cfg.Store.Driver {
		case config.StorePostgres:
			driver = sqlstore.DriverPostgres
			db, err = sqlstore.NewPostgres(ctx, cfg.Postgres.DSN())
		case config.StoreSQLite:
			driver = sqlstore.DriverSQLite
			db, err = sqlstore.NewSQLite(ctx, cfg.Store.SQLitePath)
		default:
			log.Fatalf("store driver %q has no schema to migrate", cfg.Store.Driver)
		}
		if err != nil {
			log.Fatalf("goose: failed to open DB: %v", err)
		}

		defer func() {
			if err := db.Close(); err != nil {
				log.Fatalf("goose: failed to close DB: %v", err)
			}
		}()

		if err := sqlstore.Migrate(ctx, db.DB, driver, args[0], args[1:]...); err != nil {
			log.Fatalf("%v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
