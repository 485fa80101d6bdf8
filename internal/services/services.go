// package services defines the interfaces used to enrich the library from external catalogs
//
// Steam, IGDB
package services

import (
	"context"

	"github.com/shopspring/decimal"
)

// GameLibrary lists the games a user owns on a storefront.
type GameLibrary interface {
	OwnedGames(ctx context.Context) ([]OwnedGame, error)
}

// PriceSource looks up the current store price of an app.
type PriceSource interface {
	PriceTRY(ctx context.Context, appID int) (decimal.Decimal, error)
}

// TimingSource looks up how long a game takes to beat.
type TimingSource interface {
	TimeToBeat(ctx context.Context, title string) (*GameTiming, error)
}

// OwnedGame is one entry of a Steam library
type OwnedGame struct {
	AppID           int    `json:"appid"`
	Name            string `json:"name"`
	PlaytimeForever int    `json:"playtime_forever,omitempty"` // minutes
	ImgIconURL      string `json:"img_icon_url,omitempty"`
}

// GameTiming is the result of a time-to-beat lookup
type GameTiming struct {
	IGDBID int
	Name   string
	Hours  float64 // main story, rounded to one decimal
}
