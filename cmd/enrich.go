package main

import (
	"context"

	"github.com/nclalperen/game-tracker-mvp/internal/tasks"
	"github.com/urfave/cli/v3"
)

// EnrichPrices fills missing prices from the Steam store.
func (r *Runner) EnrichPrices(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.Engine()
	if err != nil {
		return err
	}

	asJSON := cmd.Bool("json")
	progress, wait := r.quietProgress(asJSON)
	result, err := engine.EnrichPrices(ctx, progress, r.priceSource(), r.enrichOpts(cmd))
	wait()
	if err != nil {
		return err
	}
	return r.printEnrich("Price Enrichment", result, asJSON)
}

// EnrichTTB fills missing time to beat from IGDB.
func (r *Runner) EnrichTTB(ctx context.Context, cmd *cli.Command) error {
	src, err := r.timingSource(ctx)
	if err != nil {
		return err
	}

	engine, err := r.Engine()
	if err != nil {
		return err
	}

	asJSON := cmd.Bool("json")
	progress, wait := r.quietProgress(asJSON)
	result, err := engine.EnrichTTB(ctx, progress, src, r.enrichOpts(cmd))
	wait()
	if err != nil {
		return err
	}
	return r.printEnrich("Time To Beat Enrichment", result, asJSON)
}

type enrichReport struct {
	Total    int               `json:"total"`
	Found    int               `json:"found"`
	Updated  int               `json:"updated"`
	Failures map[string]string `json:"failures,omitempty"`
}

func (r *Runner) printEnrich(title string, result *tasks.EnrichResult, asJSON bool) error {
	if asJSON {
		report := enrichReport{Total: result.Total, Found: result.Found, Updated: result.Updated}
		if len(result.Failures) > 0 {
			report.Failures = make(map[string]string, len(result.Failures))
			for _, f := range result.Failures {
				report.Failures[f.IdentityID] = f.Err.Error()
			}
		}
		return r.writeJSON(report, true)
	}

	r.writePlain("\n")
	r.writePlainHeader(title + " Complete")
	r.writePlain("Looked up: %d, found: %d, items updated: %d\n", result.Total, result.Found, result.Updated)

	if len(result.Failures) > 0 {
		r.writePlain("\nNo value for %d games:\n", len(result.Failures))
		for _, f := range result.Failures {
			r.writePlain("  - %s: %v\n", f.Title, f.Err)
		}
	}
	return nil
}
