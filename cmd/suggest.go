package main

import (
	"context"
	"strings"

	"github.com/nclalperen/game-tracker-mvp/internal/suggest"
	"github.com/urfave/cli/v3"
)

// Suggest prints the top ranked games per kind.
func (r *Runner) Suggest(ctx context.Context, cmd *cli.Command) error {
	kinds := []suggest.Kind{suggest.PlayNext, suggest.BuyClaim}
	if v := cmd.String("kind"); v != "" {
		kind, err := suggest.ParseKind(v)
		if err != nil {
			return err
		}
		kinds = []suggest.Kind{kind}
	}

	w := r.weights()
	if cmd.IsSet("backlog-boost") {
		w.BacklogBoost = cmd.Float("backlog-boost")
	}
	if cmd.IsSet("value-weight") {
		w.ValueWeight = cmd.Float("value-weight")
	}
	if cmd.IsSet("score-weight") {
		w.ScoreWeight = cmd.Float("score-weight")
	}

	rows, err := r.rows(ctx)
	if err != nil {
		return err
	}
	ranked := suggest.Compute(rows, w)
	limit := cmd.Int("limit")

	if cmd.Bool("json") {
		out := []suggest.Suggestion{}
		for _, k := range kinds {
			out = append(out, suggest.Top(ranked, k, limit)...)
		}
		return r.writeJSON(out, true)
	}

	for i, k := range kinds {
		if i > 0 {
			r.writePlain("\n")
		}
		r.writePlainHeader(kindTitle(k))
		top := suggest.Top(ranked, k, limit)
		if len(top) == 0 {
			r.writePlain("Nothing to suggest.\n")
			continue
		}
		for n, s := range top {
			r.writePlain("%d. %-32s %.3f  %s\n", n+1, s.Row.Title(), s.Score, strings.Join(s.Reasons, " · "))
		}
	}
	return nil
}

func kindTitle(k suggest.Kind) string {
	if k == suggest.BuyClaim {
		return "Buy / Claim"
	}
	return "Play Next"
}
