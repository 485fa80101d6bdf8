package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nclalperen/game-tracker-mvp/internal/shared"
	"github.com/shopspring/decimal"
)

const (
	steamAPIBaseURL   = "https://api.steampowered.com"
	steamStoreBaseURL = "https://store.steampowered.com"
	steamOwnedGames   = "/IPlayerService/GetOwnedGames/v1/"
	steamAppDetails   = "/api/appdetails"
	defaultCountry    = "tr"
)

// SteamService reads owned games from the Steam Web API and prices from the storefront.
type SteamService struct {
	api     *APIService
	store   *APIService
	apiKey  string
	steamID string
	country string
}

// NewSteamService creates a Steam client from config. The API key and Steam id are
// only needed for [SteamService.OwnedGames]; price lookups are anonymous.
func NewSteamService(cfg shared.SteamConfig, client *http.Client) *SteamService {
	country := cfg.Country
	if country == "" {
		country = defaultCountry
	}

	return &SteamService{
		api:     NewAPIService(steamAPIBaseURL, client),
		store:   NewAPIService(steamStoreBaseURL, client),
		apiKey:  cfg.APIKey,
		steamID: cfg.SteamID,
		country: country,
	}
}

// WithBaseURLs points the service at other hosts, e.g. a test server.
func (s *SteamService) WithBaseURLs(apiURL, storeURL string) *SteamService {
	s.api.baseURL = apiURL
	s.store.baseURL = storeURL
	return s
}

type steamOwnedGamesResponse struct {
	Response struct {
		GameCount int         `json:"game_count"`
		Games     []OwnedGame `json:"games"`
	} `json:"response"`
}

// OwnedGames lists the games owned by the configured Steam account, free-to-play titles included.
func (s *SteamService) OwnedGames(ctx context.Context) ([]OwnedGame, error) {
	if s.apiKey == "" || s.steamID == "" {
		return nil, fmt.Errorf("%w: steam api_key and steam_id are required", shared.ErrMissingCredentials)
	}

	query := url.Values{}
	query.Set("key", s.apiKey)
	query.Set("steamid", s.steamID)
	query.Set("include_appinfo", "1")
	query.Set("include_played_free_games", "1")

	resp, err := s.api.Get(ctx, steamOwnedGames, query)
	if err != nil {
		return nil, err
	}

	var payload steamOwnedGamesResponse
	if err := resp.Decode(&payload); err != nil {
		return nil, fmt.Errorf("steam owned games: %w", err)
	}
	return payload.Response.Games, nil
}

type steamAppDetailsEntry struct {
	Success bool `json:"success"`
	Data    struct {
		Name          string `json:"name"`
		IsFree        bool   `json:"is_free"`
		PriceOverview *struct {
			Currency string `json:"currency"`
			Final    int64  `json:"final"`
		} `json:"price_overview"`
	} `json:"data"`
}

// PriceTRY returns the current store price of appID in lira.
// Free apps report zero; apps without a listed price report [shared.ErrNoPrice].
func (s *SteamService) PriceTRY(ctx context.Context, appID int) (decimal.Decimal, error) {
	id := strconv.Itoa(appID)

	query := url.Values{}
	query.Set("appids", id)
	query.Set("cc", s.country)

	resp, err := s.store.Get(ctx, steamAppDetails, query)
	if err != nil {
		return decimal.Zero, err
	}

	var payload map[string]json.RawMessage
	if err := resp.Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("steam app %d: %w", appID, err)
	}

	raw, ok := payload[id]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: app %d", shared.ErrGameNotFound, appID)
	}

	var entry steamAppDetailsEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode app %d: %w", appID, err)
	}
	if !entry.Success {
		return decimal.Zero, fmt.Errorf("%w: app %d", shared.ErrGameNotFound, appID)
	}

	switch {
	case entry.Data.PriceOverview != nil:
		// Minor units (kuruş).
		return decimal.New(entry.Data.PriceOverview.Final, -2), nil
	case entry.Data.IsFree:
		return decimal.Zero, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: app %d", shared.ErrNoPrice, appID)
	}
}
