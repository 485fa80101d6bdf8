package importer

import (
	"fmt"
	"strings"

	"github.com/nclalperen/game-tracker-mvp/internal/formatter"
	"github.com/nclalperen/game-tracker-mvp/internal/services"
)

// SteamTitleColumn is the single column of rows built from a Steam library.
const SteamTitleColumn = "Title"

// SteamRows shapes owned games into rows the builder understands. The store
// URL appended to each title lets the builder infer the Steam account and app id.
func SteamRows(games []services.OwnedGame) ([]formatter.Record, FieldMap) {
	records := make([]formatter.Record, 0, len(games))
	for _, g := range games {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			name = fmt.Sprintf("App %d", g.AppID)
		}
		records = append(records, formatter.NewRecord(SteamTitleColumn, fmt.Sprintf("%s https://store.steampowered.com/app/%d", name, g.AppID)))
	}
	return records, FieldMap{FieldTitle: SteamTitleColumn}
}
