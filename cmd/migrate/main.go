// Command migrate applies, inspects and rolls back the Foodgram schema.
//
//	migrate up             apply pending SQL migrations (Postgres)
//	migrate auto           run GORM AutoMigrate (development, SQLite)
//	migrate status         list applied and pending migrations
//	migrate check          exit non-zero when migrations are pending
//	migrate down <version> roll back one migration
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/YURESSA/foodgram-st/internal/config"
	"github.com/YURESSA/foodgram-st/internal/database"

	"gorm.io/gorm"
)

type command func(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string) error

var commands = map[string]command{
	"up":     up,
	"auto":   auto,
	"status": status,
	"check":  check,
	"down":   down,
}

var errPending = errors.New("pending migrations")

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: migrate <up|auto|status|check|down> [version]")
	}
	flag.Parse()

	if err := run(flag.Args()); err != nil {
		if errors.Is(err, errPending) {
			log.Println(err)
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		flag.Usage()
		return errors.New("missing command")
	}
	cmd, ok := commands[strings.ToLower(strings.TrimSpace(args[0]))]
	if !ok {
		flag.Usage()
		return fmt.Errorf("unknown command %q", args[0])
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.Open(database.Dialector(cfg))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	return cmd(context.Background(), db, cfg, args[1:])
}

func up(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	if cfg.DBDriver == "sqlite" {
		return errors.New("SQL migrations target Postgres; use 'migrate auto' with DB_DRIVER=sqlite")
	}
	ran, err := database.NewMigrator(db).Up(ctx)
	if err != nil {
		return fmt.Errorf("sql migrations failed: %w", err)
	}
	log.Printf("applied %d sql migrations", ran)
	return nil
}

func auto(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	cfg.DBSchemaMode = database.SchemaModeAuto
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return fmt.Errorf("auto schema apply failed: %w", err)
	}
	log.Printf("automigrated %d models", len(database.PersistentModels()))
	return nil
}

func status(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	st, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return fmt.Errorf("schema status failed: %w", err)
	}
	log.Printf("driver=%s mode=%s env=%s run_sql=%t run_auto=%t",
		cfg.DBDriver, st.Mode, st.Environment, st.SQL, st.AutoMigrate)
	for _, v := range st.AppliedVersions {
		if m := database.GetMigrationByVersion(v); m != nil {
			log.Printf("applied: %s", m)
		} else {
			log.Printf("applied: %06d (unknown to this build)", v)
		}
	}
	for _, m := range st.PendingMigrations {
		log.Printf("pending: %s", &m)
	}
	return nil
}

func check(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	st, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return fmt.Errorf("schema status failed: %w", err)
	}
	if st.SQL && len(st.PendingMigrations) > 0 {
		return fmt.Errorf("%w: %d", errPending, len(st.PendingMigrations))
	}
	log.Println("schema is up to date")
	return nil
}

func down(ctx context.Context, db *gorm.DB, _ *config.Config, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: migrate down <version>")
	}
	version, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", args[0], err)
	}
	if err := database.RollbackMigration(ctx, db, version); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	log.Printf("rolled back migration %d", version)
	return nil
}
