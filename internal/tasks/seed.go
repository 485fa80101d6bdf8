package tasks

import (
	"context"

	"github.com/nclalperen/game-tracker-mvp/internal/models"
	"github.com/nclalperen/game-tracker-mvp/internal/repositories"
	"github.com/shopspring/decimal"
)

func price(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func num(v float64) *float64 { return &v }

// SeedBatch returns the demo library. Ids are fixed so seeding twice overwrites in place.
func SeedBatch() *Batch {
	return &Batch{
		Members: []models.Member{
			{ID: "everyone", Name: "Everyone"},
			{ID: "you", Name: "You"},
			{ID: "hatice", Name: "Hatice"},
		},
		Accounts: []models.Account{
			{ID: "acc-steam", Label: "Steam", Platform: models.PlatformPC},
			{ID: "acc-xbox", Label: "Xbox", Platform: models.PlatformXbox},
			{ID: "acc-psn", Label: "PSN", Platform: models.PlatformPlayStation},
		},
		Identities: []models.Identity{
			{ID: "id-hades", Title: "Hades", Platform: models.PlatformPC},
			{ID: "id-stardew", Title: "Stardew Valley", Platform: models.PlatformSwitch},
			{ID: "id-ds", Title: "Death Stranding", Platform: models.PlatformPC},
			{ID: "id-fifa25", Title: "EA Sports FC 25", Platform: models.PlatformPlayStation},
		},
		Items: []models.LibraryItem{
			{
				ID: "lib-hades", IdentityID: "id-hades", AccountID: "acc-steam", MemberID: "you",
				Status: models.StatusPlaying, PriceTRY: price(300), AcquiredAt: "2025-01-11",
				OCScore: num(92), TTBMedianMainH: num(20),
			},
			{
				ID: "lib-stardew", IdentityID: "id-stardew", MemberID: "everyone",
				Status: models.StatusBeaten, PriceTRY: price(150), AcquiredAt: "2024-08-10",
				OCScore: num(89), TTBMedianMainH: num(50),
			},
			{
				ID: "lib-ds", IdentityID: "id-ds", AccountID: "acc-steam", MemberID: "you",
				Status: models.StatusBacklog, PriceTRY: price(0), Services: []string{models.ServiceGamePass},
				OCScore: num(85), TTBMedianMainH: num(35),
			},
			{
				ID: "lib-fifa25", IdentityID: "id-fifa25", AccountID: "acc-psn", MemberID: "hatice",
				Status: models.StatusOwned, PriceTRY: price(1800), AcquiredAt: "2025-09-20",
				OCScore: num(76), TTBMedianMainH: num(25),
			},
		},
	}
}

// SeedLibrary writes the demo library in one transaction.
func SeedLibrary(ctx context.Context, progress chan<- ProgressUpdate, store *repositories.Store) (*Summary, error) {
	batch := SeedBatch()
	sendProgress(progress, ProgressUpdate{Phase: SeedData, Step: 0, Total: 1, Message: "Seeding demo library..."})

	summary, err := Commit(ctx, store, batch)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, ProgressUpdate{Phase: SeedData, Step: 1, Total: 1, Message: summary.String(), Data: summary})
	return summary, nil
}
