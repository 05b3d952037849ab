package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"runtime"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tonearm/internal/shared"
	"github.com/desertthunder/tonearm/internal/subsonic"
)

// Setup writes the example config when none exists, then initializes the database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		r.logger.Info("config file created", "path", configPath)
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("initializing database", "path", config.Database.Path)
	db, err := r.openDatabase(ctx, config)
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("%s\n", palette.ok.Render("✓ Database ready"))
	r.writePlainln("%s", palette.help.Render("Next steps:"))
	r.writePlain("1. Set library.music_dir in %s\n", configPath)
	r.writePlain("2. Run 'tonearm scan' to import your music\n")
	r.writePlain("3. Run 'tonearm serve' and point a Subsonic client at %s\n", config.Server.Address())
	if len(config.Users) == 0 {
		r.writePlain("%s\n", palette.warn.Render("No [users] configured: every request will be accepted."))
	}
	return nil
}

// MigrateUp applies pending migrations.
func (r *Runner) MigrateUp(ctx context.Context, cmd *cli.Command) error {
	db, err := r.migrationDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return r.printMigrations(ctx, db)
}

// MigrateStatus lists every known migration and whether it has been applied.
func (r *Runner) MigrateStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := r.migrationDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()
	return r.printMigrations(ctx, db)
}

// migrationDatabase opens the configured database without touching its schema.
func (r *Runner) migrationDatabase(cmd *cli.Command) (*sql.DB, error) {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	return db, nil
}

func (r *Runner) printMigrations(ctx context.Context, db *sql.DB) error {
	statuses, err := shared.Migrations(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	r.writePlainHeader("Migrations")
	for _, s := range statuses {
		state := palette.warn.Render("pending")
		if s.Applied {
			state = palette.ok.Render("applied")
		}
		r.writePlain("%04d  %-32s %s\n", s.Version, s.Name, state)
	}
	return nil
}

// MigrateRollback undoes the most recently applied migration.
func (r *Runner) MigrateRollback(ctx context.Context, cmd *cli.Command) error {
	db, err := r.migrationDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RollbackMigration(ctx, db); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	r.writePlain("%s\n", palette.ok.Render("✓ Rolled back latest migration"))
	return nil
}

// Version prints the server, protocol and Go versions.
func (r *Runner) Version(ctx context.Context, cmd *cli.Command) error {
	info := map[string]string{
		"server":   subsonic.ServerType,
		"version":  version,
		"protocol": subsonic.Version,
		"go":       runtime.Version(),
	}
	if cmd.Bool("json") {
		return r.writeJSON(info, true)
	}
	return r.writePlain("%s %s (Subsonic API %s, %s)\n", info["server"], info["version"], info["protocol"], info["go"])
}
