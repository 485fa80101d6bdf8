package main

import (
	"context"
	"fmt"
	"maps"
	"os"

	"github.com/nclalperen/game-tracker-mvp/internal/formatter"
	"github.com/nclalperen/game-tracker-mvp/internal/importer"
	"github.com/nclalperen/game-tracker-mvp/internal/shared"
	"github.com/nclalperen/game-tracker-mvp/internal/tasks"
	"github.com/urfave/cli/v3"
)

// importReport is the --json shape of an import run.
type importReport struct {
	Rows      int               `json:"rows"`
	Malformed int               `json:"malformed"`
	Rejected  int               `json:"rejected"`
	Reused    int               `json:"reused"`
	Nothing   bool              `json:"nothing"`
	DryRun    bool              `json:"dryRun"`
	Mapping   importer.FieldMap `json:"mapping,omitempty"`
	Summary   *tasks.Summary    `json:"summary,omitempty"`
}

// ImportCSV imports rows from a CSV file.
func (r *Runner) ImportCSV(ctx context.Context, cmd *cli.Command) error {
	return r.importTable(ctx, cmd, formatter.FormatCSV)
}

// ImportXLSX imports rows from the first sheet of a workbook.
func (r *Runner) ImportXLSX(ctx context.Context, cmd *cli.Command) error {
	return r.importTable(ctx, cmd, formatter.FormatXLSX)
}

func (r *Runner) importTable(ctx context.Context, cmd *cli.Command, format formatter.Format) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: file path is required", shared.ErrMissingArgument)
	}

	table, err := readTable(path, format)
	if err != nil {
		return err
	}
	r.logger.Info("read import file", "path", path, "rows", len(table.Records), "malformed", table.Malformed)

	overrides, err := r.overrides(cmd)
	if err != nil {
		return err
	}
	mapping, err := importer.ResolveFieldMap(table.Headers, overrides)
	if err != nil {
		return err
	}

	engine, err := r.Engine()
	if err != nil {
		return err
	}

	asJSON := cmd.Bool("json")
	progress, wait := r.quietProgress(asJSON)

	if cmd.Bool("dry-run") {
		plan, err := engine.Plan(ctx, progress, table, mapping)
		wait()
		if err != nil {
			return err
		}
		return r.printImport(plan.Result, plan.Batch, asJSON)
	}

	result, err := engine.Run(ctx, progress, table, mapping)
	wait()
	if err != nil {
		return err
	}
	return r.printImport(result, nil, asJSON)
}

// ImportJSON imports a whole-library export.
func (r *Runner) ImportJSON(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: file path is required", shared.ErrMissingArgument)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	snap, err := formatter.ParseJSON(data)
	if err != nil {
		return err
	}

	engine, err := r.Engine()
	if err != nil {
		return err
	}

	asJSON := cmd.Bool("json")
	progress, wait := r.quietProgress(asJSON)
	result, err := engine.ImportSnapshot(ctx, progress, snap)
	wait()
	if err != nil {
		return err
	}
	return r.printImport(result, nil, asJSON)
}

// ImportSteam imports the owned games of the configured Steam account.
func (r *Runner) ImportSteam(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.gameLibrary()
	if err != nil {
		return err
	}

	engine, err := r.Engine()
	if err != nil {
		return err
	}

	asJSON := cmd.Bool("json")
	progress, wait := r.quietProgress(asJSON)
	result, err := engine.ImportSteam(ctx, progress, lib)
	wait()
	if err != nil {
		return err
	}
	return r.printImport(result, nil, asJSON)
}

func readTable(path string, format formatter.Format) (*formatter.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return formatter.ReadTable(f, format)
}

// overrides merges the mapping file (--mapping, else import.mapping_file) with --map pairs; pairs win.
func (r *Runner) overrides(cmd *cli.Command) (map[string]string, error) {
	merged := make(map[string]string)

	file := r.config.Import.MappingFile
	if cmd.IsSet("mapping") {
		file = cmd.String("mapping")
	}
	if file != "" {
		fromFile, err := importer.LoadFieldMapOverrides(file)
		if err != nil {
			return nil, err
		}
		maps.Copy(merged, fromFile)
	}

	pairs, err := importer.ParseOverrides(cmd.StringSlice("map"))
	if err != nil {
		return nil, err
	}
	maps.Copy(merged, pairs)
	return merged, nil
}

// quietProgress discards updates when the output is JSON.
func (r *Runner) quietProgress(quiet bool) (chan tasks.ProgressUpdate, func()) {
	if quiet {
		return nil, func() {}
	}
	return r.progressPrinter()
}

func (r *Runner) printImport(result *tasks.ImportResult, planned *tasks.Batch, asJSON bool) error {
	if asJSON {
		report := importReport{
			Rows:      result.Rows,
			Malformed: result.Malformed,
			Rejected:  result.Rejected,
			Reused:    result.Reused,
			Nothing:   result.Nothing,
			DryRun:    planned != nil,
			Mapping:   result.Mapping,
			Summary:   result.Summary,
		}
		return r.writeJSON(report, true)
	}

	r.writePlain("\n")
	if planned != nil {
		r.writePlainHeader("Import Plan (dry run)")
	} else {
		r.writePlainHeader("Import Complete")
	}

	if result.Mapping != nil {
		r.writePlain("Mapping: %s\n", result.Mapping)
	}
	r.writePlain("Rows: %d (malformed %d, rejected %d)\n", result.Rows, result.Malformed, result.Rejected)

	switch {
	case result.Nothing:
		r.writePlain("Nothing to import.\n")
	case planned != nil:
		r.writePlain("Would write %d games, %d members, %d accounts and %d items (%d attached to existing games)\n",
			len(planned.Identities), len(planned.Members), len(planned.Accounts), len(planned.Items), result.Reused)
	case result.Summary != nil:
		r.writePlain("%s\n", result.Summary)
		if result.Reused > 0 {
			r.writePlain("%d items attached to games already in the library\n", result.Reused)
		}
	}
	return nil
}
