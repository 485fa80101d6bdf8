// Package services implements clients for the external catalogs the library is enriched from.
//
// # Steam
//
// [SteamService] reads a user's owned games from the Steam Web API (API key
// required, profile game details public) and looks up store prices from the
// storefront appdetails endpoint. Prices arrive in minor units and are
// returned as [decimal.Decimal] lira.
//
// # IGDB
//
// [IGDBService] authenticates with a Twitch app token obtained through the
// OAuth2 client credentials flow; the [clientcredentials] token source
// refreshes it automatically. Games are searched by title and time to beat
// is read from game_time_to_beats, converting seconds to hours.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingCredentials] : key or client secret not configured
//   - [shared.ErrAPIRequest] : HTTP request failed or returned non-2xx
//   - [shared.ErrGameNotFound] : search returned no match
//   - [shared.ErrNoPrice] : the store lists no price for the app
package services
