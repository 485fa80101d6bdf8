package main

import (
	"context"
	"fmt"

	"github.com/nclalperen/game-tracker-mvp/internal/shared"
	"github.com/nclalperen/game-tracker-mvp/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		path = "config.toml"
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)

	r.writePlain("✓ Config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Add Steam and IGDB credentials (or STEAM_API_KEY, IGDB_CLIENT_ID, ... in .env)\n")
	r.writePlain("2. Run 'gametracker setup database'\n")
	return nil
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	engine, err := r.Engine()
	if err != nil {
		return err
	}

	statuses, err := shared.Migrations(engine.Store().DB())
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	r.writePlainHeader("Database: " + r.config.Database.Path)
	for _, s := range statuses {
		mark := "✗"
		if s.Applied {
			mark = "✓"
		}
		r.writePlain("%s %04d %s\n", mark, s.Version, s.Name)
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return nil
}

// SetupSeed writes the demo library. Running it twice leaves the same four items.
func (r *Runner) SetupSeed(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.Engine()
	if err != nil {
		return err
	}

	progress, wait := r.progressPrinter()
	summary, err := tasks.SeedLibrary(ctx, progress, engine.Store())
	wait()
	if err != nil {
		return err
	}

	r.writePlainln("✓ Demo library loaded. %s", summary)
	return nil
}
