package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/nclalperen/game-tracker-mvp/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	igdbBaseURL     = "https://api.igdb.com/v4"
	twitchTokenURL  = "https://id.twitch.tv/oauth2/token"
	igdbGames       = "/games"
	igdbTimeToBeats = "/game_time_to_beats"
)

// IGDBService looks up game metadata and time to beat from IGDB.
type IGDBService struct {
	api *APIService
}

// NewIGDBService creates an IGDB client authenticated with a Twitch app token.
//
// tokenURL and baseURL default to the public endpoints when empty. base is the
// transport the token source and API calls go through (nil for the default).
func NewIGDBService(ctx context.Context, cfg shared.IGDBConfig, tokenURL, baseURL string, base *http.Client) (*IGDBService, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: igdb client_id and client_secret are required", shared.ErrMissingCredentials)
	}
	if tokenURL == "" {
		tokenURL = twitchTokenURL
	}
	if baseURL == "" {
		baseURL = igdbBaseURL
	}
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}

	conf := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	api := NewAPIService(baseURL, conf.Client(ctx))
	api.SetHeader("Client-ID", cfg.ClientID)
	return &IGDBService{api: api}, nil
}

// IGDBGame is a search hit.
type IGDBGame struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type igdbTimeToBeat struct {
	GameID   int `json:"game_id"`
	Normally int `json:"normally"` // seconds
}

func (s *IGDBService) query(ctx context.Context, endpoint, body string, out any) error {
	resp, err := s.api.Post(ctx, endpoint, "text/plain", []byte(body))
	if err != nil {
		var tokenErr *oauth2.RetrieveError
		if errors.As(err, &tokenErr) {
			return fmt.Errorf("%w: twitch token: %w", shared.ErrAuthFailed, err)
		}
		return err
	}
	if err := resp.Decode(out); err != nil {
		return fmt.Errorf("igdb %s: %w", endpoint, err)
	}
	return nil
}

// SearchGame returns the best IGDB match for title.
func (s *IGDBService) SearchGame(ctx context.Context, title string) (*IGDBGame, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: empty title", shared.ErrInvalidInput)
	}

	body := fmt.Sprintf(`search "%s"; fields id,name; limit 1;`, strings.ReplaceAll(title, `"`, `\"`))

	var games []IGDBGame
	if err := s.query(ctx, igdbGames, body, &games); err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrGameNotFound, title)
	}
	return &games[0], nil
}

// TimeToBeat searches for title and returns its main-story time to beat in hours.
func (s *IGDBService) TimeToBeat(ctx context.Context, title string) (*GameTiming, error) {
	game, err := s.SearchGame(ctx, title)
	if err != nil {
		return nil, err
	}

	var timings []igdbTimeToBeat
	body := fmt.Sprintf(`fields game_id,normally; where game_id = %d;`, game.ID)
	if err := s.query(ctx, igdbTimeToBeats, body, &timings); err != nil {
		return nil, err
	}
	if len(timings) == 0 || timings[0].Normally <= 0 {
		return nil, fmt.Errorf("%w: no time to beat for %s", shared.ErrGameNotFound, game.Name)
	}

	hours := math.Round(float64(timings[0].Normally)/3600*10) / 10
	return &GameTiming{IGDBID: game.ID, Name: game.Name, Hours: hours}, nil
}
