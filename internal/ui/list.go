package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/nclalperen/game-tracker-mvp/internal/library"
	"github.com/nclalperen/game-tracker-mvp/internal/suggest"
)

var (
	_ list.Item = rowItem{}
	_ list.Item = suggestionItem{}
)

// rowItem wraps [library.Row] to implement [list.Item].
type rowItem struct {
	row library.Row
}

func (i rowItem) FilterValue() string { return i.row.Title() }
func (i rowItem) Title() string       { return i.row.Title() }
func (i rowItem) Description() string {
	parts := []string{string(i.row.Platform())}
	if label := i.row.AccountLabel(); label != "" {
		parts = append(parts, label)
	}
	parts = append(parts, string(i.row.Status), i.row.MemberName())
	if pph := i.row.PricePerHour(); pph != nil {
		parts = append(parts, "₺/h "+pph.StringFixed(2))
	}
	return strings.Join(parts, " • ")
}

// suggestionItem wraps [suggest.Suggestion] to implement [list.Item].
type suggestionItem struct {
	s suggest.Suggestion
}

func (i suggestionItem) FilterValue() string { return i.s.Row.Title() }
func (i suggestionItem) Title() string {
	return fmt.Sprintf("%s  [%s %.3f]", i.s.Row.Title(), i.s.Kind, i.s.Score)
}
func (i suggestionItem) Description() string {
	if len(i.s.Reasons) == 0 {
		return "—"
	}
	return strings.Join(i.s.Reasons, " · ")
}
