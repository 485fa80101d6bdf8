package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nclalperen/game-tracker-mvp/internal/formatter"
	"github.com/nclalperen/game-tracker-mvp/internal/importer"
	"github.com/nclalperen/game-tracker-mvp/internal/shared"
	"github.com/nclalperen/game-tracker-mvp/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive library browser. With a file argument it opens
// the import wizard on that file first.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	engine, err := r.Engine()
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, engine, r.weights())

	if path := cmd.StringArg("path"); path != "" {
		format := formatter.FormatCSV
		if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
			format = formatter.FormatXLSX
		}

		table, err := readTable(path, format)
		if err != nil {
			return err
		}
		overrides, err := r.overrides(cmd)
		if err != nil {
			return err
		}
		mapping := importer.GuessFieldMap(table.Headers)
		if err := mapping.Apply(overrides); err != nil {
			return err
		}
		model = model.WithImport(path, table, mapping)
	}

	p := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
