// package suggest ranks library items into what to play next and what to buy or claim.
package suggest

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/nclalperen/game-tracker-mvp/internal/library"
	"github.com/nclalperen/game-tracker-mvp/internal/models"
	"github.com/nclalperen/game-tracker-mvp/internal/shared"
)

// Kind separates games already playable from games to acquire.
type Kind string

const (
	PlayNext Kind = "PlayNext"
	BuyClaim Kind = "BuyClaim"
)

// ParseKind accepts a kind name, case-insensitively, or the short forms "play" and "buy".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "play", strings.ToLower(string(PlayNext)):
		return PlayNext, nil
	case "buy", "claim", strings.ToLower(string(BuyClaim)):
		return BuyClaim, nil
	}
	return "", fmt.Errorf("%w: unknown suggestion kind %q", shared.ErrInvalidFlag, s)
}

// Weights tune the ranking.
//
// DurationWeight is accepted for configuration compatibility and does not
// affect the score yet.
type Weights struct {
	BacklogBoost   float64 `json:"backlogBoost"`
	ValueWeight    float64 `json:"valueWeight"`
	ScoreWeight    float64 `json:"scoreWeight"`
	DurationWeight float64 `json:"durationWeight"`
}

// DefaultWeights weighs backlog, value and score equally.
func DefaultWeights() Weights {
	return Weights{BacklogBoost: 1, ValueWeight: 1, ScoreWeight: 1}
}

// WeightsFromConfig converts the [suggest] config section.
func WeightsFromConfig(c shared.SuggestConfig) Weights {
	return Weights{
		BacklogBoost:   c.BacklogBoost,
		ValueWeight:    c.ValueWeight,
		ScoreWeight:    c.ScoreWeight,
		DurationWeight: c.DurationWeight,
	}
}

// Suggestion is one ranked library row with the reasons that contributed to its score.
type Suggestion struct {
	ID      string      `json:"id"`
	Kind    Kind        `json:"kind"`
	Reasons []string    `json:"reason"`
	Row     library.Row `json:"item"`
	Score   float64     `json:"score"`
}

// Compute scores every row and returns suggestions sorted by descending score.
// Ties keep library order.
//
//	score = backlogBoost (Backlog only)
//	      + scoreWeight * ocScore / 100
//	      + valueWeight / (1 + priceTRY / ttbMedianMainH)
func Compute(rows []library.Row, w Weights) []Suggestion {
	out := make([]Suggestion, 0, len(rows))
	for _, r := range rows {
		var (
			s   float64
			why []string
		)

		if r.Status == models.StatusBacklog {
			s += w.BacklogBoost
			why = append(why, "Backlog")
		}
		if r.OCScore != nil {
			s += w.ScoreWeight * (*r.OCScore / 100)
			why = append(why, "Score "+strconv.FormatFloat(*r.OCScore, 'f', -1, 64))
		}
		if r.PriceTRY != nil && !r.PriceTRY.IsZero() && r.TTBMedianMainH != nil && *r.TTBMedianMainH != 0 {
			pph := r.PriceTRY.InexactFloat64() / *r.TTBMedianMainH
			s += w.ValueWeight * (1 / (1 + pph))
			why = append(why, fmt.Sprintf("₺/h ~ %.2f", pph))
		}

		kind := PlayNext
		if r.Status == models.StatusWishlist || len(r.Services) > 0 {
			kind = BuyClaim
		}

		out = append(out, Suggestion{
			ID:      r.ID,
			Kind:    kind,
			Reasons: why,
			Row:     r,
			Score:   math.Round(s*1000) / 1000,
		})
	}

	slices.SortStableFunc(out, func(a, b Suggestion) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out
}

// Top returns at most n suggestions of the given kind, keeping rank order.
func Top(suggestions []Suggestion, kind Kind, n int) []Suggestion {
	var out []Suggestion
	for _, s := range suggestions {
		if len(out) == n {
			break
		}
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}
