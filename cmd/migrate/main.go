package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"go-hrdesk/db/migrations"
	"go-hrdesk/internal/config"
	"go-hrdesk/internal/shared/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateRollback bool

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "apply the embedded sql migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if migrateRollback {
			return run(cmd.Context(), "down")
		}
		return run(cmd.Context(), "up")
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "print the applied version of every migration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context(), "status")
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "roll back the latest migration")
	rootCmd.AddCommand(statusCmd)
}

func run(ctx context.Context, command string) error {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}

	log, restore := logger.Setup(cfg.Log.Level, cfg.Log.Format)
	defer restore()

	db, err := sql.Open("pgx", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	goose.SetTableName("schema_migrations")
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	log.Info("running migrations", zap.String("command", command))
	if err := goose.RunContext(ctx, command, db, "."); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
