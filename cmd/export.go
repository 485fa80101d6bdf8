package main

import (
	"context"

	"github.com/nclalperen/game-tracker-mvp/internal/formatter"
	"github.com/nclalperen/game-tracker-mvp/internal/library"
	"github.com/urfave/cli/v3"
)

// Export writes the library in the format named by the subcommand.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.Name)
	if err != nil {
		return err
	}
	path := cmd.String("output")

	engine, err := r.Engine()
	if err != nil {
		return err
	}

	snap, err := engine.Store().Snapshot(ctx)
	if err != nil {
		return err
	}

	rows := library.Join(snap)
	if err := formatter.WriteExport(path, format, snap, library.Records(rows)); err != nil {
		return err
	}

	r.logger.Info("exported library", "format", format, "path", path, "items", len(rows))
	r.writePlain("✓ Exported %d items to %s\n", len(rows), path)
	return nil
}
