package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nclalperen/game-tracker-mvp/internal/models"
)

var styles = newTheme()

// theme is the set of [lipgloss.Style] values every view renders with.
type theme struct {
	title  lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	help   lipgloss.Style
	status map[models.Status]lipgloss.Style
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func newTheme() theme {
	return theme{
		title: fg("#10B981").Bold(true).MarginBottom(1),
		ok:    fg("#04B575").Bold(true),
		err:   fg("#EF4444").Bold(true),
		warn:  fg("#F59E0B"),
		help:  fg("#6B7280").Italic(true),
		status: map[models.Status]lipgloss.Style{
			models.StatusBacklog:   fg("#60A5FA"),
			models.StatusPlaying:   fg("#10B981").Bold(true),
			models.StatusBeaten:    fg("#A78BFA"),
			models.StatusAbandoned: fg("#9CA3AF"),
			models.StatusWishlist:  fg("#F472B6"),
			models.StatusOwned:     fg("#FBBF24"),
		},
	}
}

// statusCounts renders e.g. "Backlog 2 · Playing 1" in status order.
func statusCounts(items []models.LibraryItem) string {
	counts := make(map[models.Status]int)
	for _, item := range items {
		counts[item.Status]++
	}

	var parts []string
	for _, s := range models.Statuses {
		if n := counts[s]; n > 0 {
			parts = append(parts, styles.status[s].Render(fmt.Sprintf("%s %d", s, n)))
		}
	}
	return strings.Join(parts, " · ")
}
