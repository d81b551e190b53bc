package main

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/2beens/gymdash/internal/config"
	"github.com/2beens/gymdash/internal/db"
	"github.com/2beens/gymdash/internal/gymstats/records"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <export.json>",
	Short: "Import an export file into the configured records store",
	Long: `Import replaces every stored collection of the exported user
with the content of the file.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the records schema to postgres",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pool, err := newDBPool(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := db.ApplySchema(cmd.Context(), pool); err != nil {
			return err
		}
		log.Infof("schema applied to [%s]", cfg.PostgresDB)
		return nil
	},
}

func newDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	return db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDB,
		DBUser:     cfg.PostgresUser,
		DBPassword: os.Getenv("POSTGRES_PASSWORD"),
	})
}

// newStore returns the configured store and a func releasing its connections.
func newStore(ctx context.Context, cfg *config.Config) (records.Store, func(), error) {
	switch cfg.RecordsStore {
	case config.RecordsStorePostgres:
		pool, err := newDBPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return records.NewPsqlStore(pool), pool.Close, nil
	case config.RecordsStoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: os.Getenv("REDIS_PASS"),
		})
		return records.NewRedisStore(rdb), func() { _ = rdb.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown records store: %s", cfg.RecordsStore)
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	export, err := readExport(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, closeStore, err := newStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Import(cmd.Context(), *export); err != nil {
		return fmt.Errorf("import [%s]: %w", export.UserID, err)
	}

	log.Infof("imported [%s]: %d workouts, %d sessions, %d schedules, %d routines",
		export.UserID, len(export.Workouts), len(export.Sessions), len(export.Schedules), len(export.Routines))
	fmt.Fprintf(cmd.OutOrStdout(), "imported %s\n", export.UserID)
	return nil
}
