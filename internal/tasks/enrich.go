package tasks

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nclalperen/game-tracker-mvp/internal/models"
	"github.com/nclalperen/game-tracker-mvp/internal/repositories"
	"github.com/nclalperen/game-tracker-mvp/internal/services"
	"github.com/nclalperen/game-tracker-mvp/internal/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// EnrichOpts contains configuration for enrichment runs.
type EnrichOpts struct {
	NumWorkers int     // Concurrent lookups (default: 4)
	RateLimit  float64 // Requests per second (default: 1.5)
}

func (o EnrichOpts) withDefaults() EnrichOpts {
	if o.NumWorkers <= 0 {
		o.NumWorkers = 4
	}
	if o.NumWorkers > 10 {
		o.NumWorkers = 10
	}
	if o.RateLimit <= 0 {
		o.RateLimit = 1.5
	}
	return o
}

// EnrichFailure records one lookup that did not produce a value.
type EnrichFailure struct {
	IdentityID string
	Title      string
	Err        error
}

// EnrichResult summarizes an enrichment run. Failed lookups do not fail the run.
type EnrichResult struct {
	Total    int // games looked up
	Found    int // lookups that produced a value
	Updated  int // library items written
	Failures []EnrichFailure
}

type priceResult struct {
	identity models.Identity
	price    decimal.Decimal
	err      error
}

// EnrichPrices fills missing prices from the Steam store for every game with a known app id.
//
// Lookups run on a worker pool fed at opts.RateLimit requests per second.
// All found prices are written in one transaction at the end.
func (e *ImportEngine) EnrichPrices(ctx context.Context, progress chan<- ProgressUpdate, src services.PriceSource, opts EnrichOpts) (*EnrichResult, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: price source not initialized", shared.ErrServiceUnavailable)
	}
	opts = opts.withDefaults()

	identities, err := e.store.Identities.ListMissingSteamPrice(ctx)
	if err != nil {
		return nil, err
	}

	total := len(identities)
	result := &EnrichResult{Total: total}
	if total == 0 {
		return result, nil
	}
	sendProgress(progress, enrichStartUpdate(EnrichPrices, total))

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan models.Identity, total)
	results := make(chan priceResult, total)

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go priceWorker(ctx, &wg, src, jobs, results)
	}

	go func() {
		defer close(jobs)
		for _, identity := range identities {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			jobs <- identity
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	prices := make(map[string]decimal.Decimal, total)
	completed := 0
	for res := range results {
		completed++
		if res.err != nil {
			result.Failures = append(result.Failures, EnrichFailure{IdentityID: res.identity.ID, Title: res.identity.Title, Err: res.err})
			sendProgress(progress, enrichFailedUpdate(EnrichPrices, completed, total, res.identity.Title, res.err))
			continue
		}
		prices[res.identity.ID] = res.price
		result.Found++
		sendProgress(progress, enrichDoneUpdate(EnrichPrices, completed, total, res.identity.Title, "₺"+res.price.StringFixed(2)))
	}

	result.Updated, err = e.fillItems(ctx, nil, func(item *models.LibraryItem) bool {
		p, ok := prices[item.IdentityID]
		if !ok || item.PriceTRY != nil {
			return false
		}
		item.PriceTRY = &p
		return true
	})
	if err != nil {
		return result, err
	}

	e.logger.Info("price enrichment complete", "games", total, "found", result.Found, "updated", result.Updated)
	return result, ctx.Err()
}

// priceWorker looks up prices for identities from the jobs channel.
func priceWorker(ctx context.Context, wg *sync.WaitGroup, src services.PriceSource, jobs <-chan models.Identity, results chan<- priceResult) {
	defer wg.Done()

	for identity := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		price, err := src.PriceTRY(ctx, *identity.SteamAppID)
		results <- priceResult{identity: identity, price: price, err: err}
	}
}

// EnrichTTB fills missing main-story time to beat from IGDB and records each game's IGDB id.
//
// At most opts.NumWorkers lookups are in flight, started at opts.RateLimit per second.
func (e *ImportEngine) EnrichTTB(ctx context.Context, progress chan<- ProgressUpdate, src services.TimingSource, opts EnrichOpts) (*EnrichResult, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: timing source not initialized", shared.ErrServiceUnavailable)
	}
	opts = opts.withDefaults()

	identities, err := e.store.Identities.ListMissingTTB(ctx)
	if err != nil {
		return nil, err
	}

	total := len(identities)
	result := &EnrichResult{Total: total}
	if total == 0 {
		return result, nil
	}
	sendProgress(progress, enrichStartUpdate(EnrichTTB, total))

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	timings := make([]*services.GameTiming, total)
	errs := make([]error, total)
	var completed atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.NumWorkers)
	for i, identity := range identities {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}
			timings[i], errs[i] = src.TimeToBeat(gctx, identity.Title)

			step := int(completed.Add(1))
			if errs[i] != nil {
				sendProgress(progress, enrichFailedUpdate(EnrichTTB, step, total, identity.Title, errs[i]))
			} else {
				sendProgress(progress, enrichDoneUpdate(EnrichTTB, step, total, identity.Title, fmt.Sprintf("%.1fh", timings[i].Hours)))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	byIdentity := make(map[string]*services.GameTiming, total)
	var changed []models.Identity
	for i, identity := range identities {
		if errs[i] != nil {
			result.Failures = append(result.Failures, EnrichFailure{IdentityID: identity.ID, Title: identity.Title, Err: errs[i]})
			continue
		}
		result.Found++
		byIdentity[identity.ID] = timings[i]
		if identity.IGDBID == nil {
			id := timings[i].IGDBID
			identity.IGDBID = &id
			changed = append(changed, identity)
		}
	}

	result.Updated, err = e.fillItems(ctx, changed, func(item *models.LibraryItem) bool {
		t, ok := byIdentity[item.IdentityID]
		if !ok || item.TTBMedianMainH != nil {
			return false
		}
		h := t.Hours
		item.TTBMedianMainH = &h
		return true
	})
	if err != nil {
		return result, err
	}

	e.logger.Info("time to beat enrichment complete", "games", total, "found", result.Found, "updated", result.Updated)
	return result, nil
}

// fillItems applies update to every library item and writes the changed ones,
// together with identities, in one transaction. Lookups already paid for are
// kept even when ctx was cancelled meanwhile.
func (e *ImportEngine) fillItems(ctx context.Context, identities []models.Identity, update func(*models.LibraryItem) bool) (int, error) {
	ctx = context.WithoutCancel(ctx)
	items, err := e.store.Library.List(ctx)
	if err != nil {
		return 0, err
	}

	var changed []models.LibraryItem
	for _, item := range items {
		if update(&item) {
			changed = append(changed, item)
		}
	}
	if len(changed) == 0 && len(identities) == 0 {
		return 0, nil
	}

	err = e.store.RunTransaction(ctx, []repositories.Collection{repositories.Identities, repositories.Library}, func(tx *repositories.Tx) error {
		if len(identities) > 0 {
			if err := tx.PutIdentities(ctx, identities...); err != nil {
				return err
			}
		}
		if len(changed) > 0 {
			return tx.PutLibrary(ctx, changed...)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to save enrichment: %w", err)
	}
	return len(changed), nil
}
