package main

import (
	"context"

	"github.com/nclalperen/game-tracker-mvp/internal/library"
	"github.com/urfave/cli/v3"
)

func filtersFrom(cmd *cli.Command) library.Filters {
	return library.Filters{
		Platform: cmd.String("platform"),
		Status:   cmd.String("status"),
		Member:   cmd.String("member"),
		Account:  cmd.String("account"),
		Service:  cmd.String("service"),
		Score:    cmd.String("score"),
		Duration: cmd.String("duration"),
		Value:    cmd.String("value"),
	}
}

// LibraryList prints library rows that pass the filter flags.
func (r *Runner) LibraryList(ctx context.Context, cmd *cli.Command) error {
	filters := filtersFrom(cmd)
	if err := filters.Validate(); err != nil {
		return err
	}

	rows, err := r.rows(ctx)
	if err != nil {
		return err
	}
	rows = filters.Apply(rows)

	if cmd.Bool("json") {
		if cmd.Bool("group") {
			return r.writeJSON(library.GroupByMember(rows), cmd.Bool("pretty"))
		}
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	if len(rows) == 0 {
		r.writePlain("No games match.\n")
		return nil
	}

	if cmd.Bool("group") {
		for _, g := range library.GroupByMember(rows) {
			r.writePlainHeader(g.Member)
			r.writeRows(g.Rows)
			r.writePlain("\n")
		}
	} else {
		r.writeRows(rows)
	}

	r.writePlainln("%s", library.Summary(rows))
	return nil
}

func (r *Runner) rows(ctx context.Context) ([]library.Row, error) {
	engine, err := r.Engine()
	if err != nil {
		return nil, err
	}
	snap, err := engine.Store().Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return library.Join(snap), nil
}

func (r *Runner) writeRows(rows []library.Row) {
	for _, row := range rows {
		r.writePlain("%-32s %-8s %-10s %-10s", row.Title(), row.Platform(), row.Status, row.MemberName())
		if pph := row.PricePerHour(); pph != nil {
			r.writePlain(" ₺/h %s", pph.StringFixed(2))
		}
		r.writePlain("\n")
	}
}
