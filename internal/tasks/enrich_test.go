package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nclalperen/game-tracker-mvp/internal/formatter"
	"github.com/nclalperen/game-tracker-mvp/internal/services"
	"github.com/nclalperen/game-tracker-mvp/internal/shared"
	"github.com/shopspring/decimal"
)

type mockPrices struct {
	mu     sync.Mutex
	prices map[int]decimal.Decimal
	calls  []int
}

func (m *mockPrices) PriceTRY(ctx context.Context, appID int) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, appID)
	p, ok := m.prices[appID]
	if !ok {
		return decimal.Zero, shared.ErrNoPrice
	}
	return p, nil
}

type mockTimings map[string]float64

func (m mockTimings) TimeToBeat(ctx context.Context, title string) (*services.GameTiming, error) {
	h, ok := m[title]
	if !ok {
		return nil, shared.ErrGameNotFound
	}
	return &services.GameTiming{IGDBID: len(title), Name: title, Hours: h}, nil
}

var fastEnrich = EnrichOpts{NumWorkers: 2, RateLimit: 1000}

func TestEnrichOpts(t *testing.T) {
	tests := []struct {
		name string
		in   EnrichOpts
		want EnrichOpts
	}{
		{"Defaults", EnrichOpts{}, EnrichOpts{NumWorkers: 4, RateLimit: 1.5}},
		{"Caps Workers", EnrichOpts{NumWorkers: 50, RateLimit: 3}, EnrichOpts{NumWorkers: 10, RateLimit: 3}},
		{"Keeps Valid Values", EnrichOpts{NumWorkers: 2, RateLimit: 0.5}, EnrichOpts{NumWorkers: 2, RateLimit: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.withDefaults(); got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestEnrichPrices(t *testing.T) {
	ctx := context.Background()

	t.Run("Fills Missing Prices", func(t *testing.T) {
		e := setupEngine(t, true)
		lib := &mockLibrary{games: []services.OwnedGame{
			{AppID: 1145360, Name: "Hades"},
			{AppID: 413150, Name: "Stardew Valley"},
			{AppID: 99, Name: "Delisted"},
		}}
		if _, err := e.ImportSteam(ctx, nil, lib); err != nil {
			t.Fatalf("steam import failed: %v", err)
		}
		// no app id, never looked up
		if _, err := e.Run(ctx, nil, formatter.ParseCSV("Title\nCeleste\n"), nil); err != nil {
			t.Fatalf("csv import failed: %v", err)
		}

		src := &mockPrices{prices: map[int]decimal.Decimal{
			1145360: decimal.RequireFromString("249.50"),
			413150:  decimal.Zero,
		}}
		progress := make(chan ProgressUpdate, 16)

		result, err := e.EnrichPrices(ctx, progress, src, fastEnrich)
		if err != nil {
			t.Fatalf("enrich failed: %v", err)
		}
		if result.Total != 3 || result.Found != 2 || result.Updated != 2 {
			t.Errorf("unexpected result %+v", result)
		}
		if len(result.Failures) != 1 || result.Failures[0].Title != "Delisted" || !errors.Is(result.Failures[0].Err, shared.ErrNoPrice) {
			t.Errorf("unexpected failures %+v", result.Failures)
		}
		if len(src.calls) != 3 {
			t.Errorf("expected 3 lookups, got %v", src.calls)
		}

		snap := mustSnapshot(t, e.Store())
		priced := 0
		for _, item := range snap.Library {
			if item.PriceTRY == nil {
				continue
			}
			priced++
			identity, _ := snap.Identity(item.IdentityID)
			switch identity.Title {
			case "Hades":
				if !item.PriceTRY.Equal(decimal.RequireFromString("249.5")) {
					t.Errorf("expected 249.50, got %s", item.PriceTRY)
				}
			case "Stardew Valley":
				if !item.PriceTRY.IsZero() {
					t.Errorf("expected free game at zero, got %s", item.PriceTRY)
				}
			default:
				t.Errorf("unexpected price on %s", identity.Title)
			}
		}
		if priced != 2 {
			t.Errorf("expected 2 priced items, got %d", priced)
		}

		close(progress)
		if len(progress) == 0 {
			t.Error("expected progress updates")
		}

		again, err := e.EnrichPrices(ctx, nil, src, fastEnrich)
		if err != nil {
			t.Fatalf("second enrich failed: %v", err)
		}
		if again.Total != 1 {
			t.Errorf("expected only the unpriced game to be retried, got %+v", again)
		}
	})

	t.Run("Nothing To Look Up", func(t *testing.T) {
		e := setupEngine(t, true)
		src := &mockPrices{}

		result, err := e.EnrichPrices(ctx, nil, src, fastEnrich)
		if err != nil {
			t.Fatalf("enrich failed: %v", err)
		}
		if result.Total != 0 || len(src.calls) != 0 {
			t.Errorf("expected no lookups, got %+v", result)
		}
	})

	t.Run("Nil Source", func(t *testing.T) {
		e := setupEngine(t, true)
		if _, err := e.EnrichPrices(ctx, nil, nil, fastEnrich); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestEnrichTTB(t *testing.T) {
	ctx := context.Background()

	t.Run("Fills Missing Hours And IGDB Ids", func(t *testing.T) {
		e := setupEngine(t, true)
		csv := "Title,Platform,TTB\nHades,PC,\nHades,Switch,\nUnknown Game,PC,\nCeleste,PC,8\n"
		if _, err := e.Run(ctx, nil, formatter.ParseCSV(csv), nil); err != nil {
			t.Fatalf("import failed: %v", err)
		}

		result, err := e.EnrichTTB(ctx, nil, mockTimings{"Hades": 22.5, "Celeste": 11}, fastEnrich)
		if err != nil {
			t.Fatalf("enrich failed: %v", err)
		}
		if result.Total != 3 || result.Found != 2 || result.Updated != 2 {
			t.Errorf("unexpected result %+v", result)
		}
		if len(result.Failures) != 1 || result.Failures[0].Title != "Unknown Game" {
			t.Errorf("unexpected failures %+v", result.Failures)
		}

		snap := mustSnapshot(t, e.Store())
		for _, item := range snap.Library {
			identity, _ := snap.Identity(item.IdentityID)
			switch identity.Title {
			case "Hades":
				if item.TTBMedianMainH == nil || *item.TTBMedianMainH != 22.5 {
					t.Errorf("expected 22.5h on %s, got %v", identity.Platform, item.TTBMedianMainH)
				}
				if identity.IGDBID == nil || *identity.IGDBID != len("Hades") {
					t.Errorf("expected igdb id on %s", identity.Platform)
				}
			case "Celeste":
				if *item.TTBMedianMainH != 8 {
					t.Errorf("expected existing hours kept, got %v", *item.TTBMedianMainH)
				}
			case "Unknown Game":
				if item.TTBMedianMainH != nil || identity.IGDBID != nil {
					t.Error("expected failed lookup to leave the game untouched")
				}
			}
		}
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		e := setupEngine(t, true)
		if _, err := e.Run(ctx, nil, formatter.ParseCSV("Title\nHades\n"), nil); err != nil {
			t.Fatalf("import failed: %v", err)
		}
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := e.EnrichTTB(cancelled, nil, mockTimings{"Hades": 20}, fastEnrich)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("Nil Source", func(t *testing.T) {
		e := setupEngine(t, true)
		if _, err := e.EnrichTTB(ctx, nil, nil, fastEnrich); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}
