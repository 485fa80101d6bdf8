// package library joins library items with their game, owner and account for
// listing, filtering and flat export.
package library

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nclalperen/game-tracker-mvp/internal/formatter"
	"github.com/nclalperen/game-tracker-mvp/internal/models"
	"github.com/nclalperen/game-tracker-mvp/internal/normalize"
	"github.com/shopspring/decimal"
)

// Row is a library item with its references resolved. Missing references are nil.
type Row struct {
	models.LibraryItem
	Identity *models.Identity `json:"identity,omitempty"`
	Member   *models.Member   `json:"member,omitempty"`
	Account  *models.Account  `json:"account,omitempty"`
}

// Title returns the game title, or the identity id when the identity is missing.
func (r Row) Title() string {
	if r.Identity == nil {
		return r.IdentityID
	}
	return r.Identity.Title
}

func (r Row) Platform() models.Platform {
	if r.Identity == nil {
		return ""
	}
	return r.Identity.Platform
}

// MemberName falls back to the everyone member's name for unowned items.
func (r Row) MemberName() string {
	if r.Member == nil || r.Member.Name == "" {
		return normalize.EveryoneMemberName
	}
	return r.Member.Name
}

func (r Row) AccountLabel() string {
	if r.Account == nil {
		return ""
	}
	return r.Account.Label
}

// PricePerHour is the price in TRY per main-story hour, nil when unknown.
func (r Row) PricePerHour() *decimal.Decimal {
	return normalize.PricePerHour(r.PriceTRY, r.TTBMedianMainH)
}

// Join resolves every library item in snap, preserving library order.
func Join(snap *models.Snapshot) []Row {
	identities := make(map[string]*models.Identity, len(snap.Identities))
	for i := range snap.Identities {
		identities[snap.Identities[i].ID] = &snap.Identities[i]
	}
	members := make(map[string]*models.Member, len(snap.Members))
	for i := range snap.Members {
		members[snap.Members[i].ID] = &snap.Members[i]
	}
	accounts := make(map[string]*models.Account, len(snap.Accounts))
	for i := range snap.Accounts {
		accounts[snap.Accounts[i].ID] = &snap.Accounts[i]
	}

	rows := make([]Row, len(snap.Library))
	for i, item := range snap.Library {
		rows[i] = Row{
			LibraryItem: item,
			Identity:    identities[item.IdentityID],
			Member:      members[item.MemberID],
			Account:     accounts[item.AccountID],
		}
	}
	return rows
}

// Group is the rows owned by one member.
type Group struct {
	Member string `json:"member"`
	Rows   []Row  `json:"rows"`
}

// GroupByMember buckets rows by member name in first-seen order.
func GroupByMember(rows []Row) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, r := range rows {
		name := r.MemberName()
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, Group{Member: name})
		}
		groups[i].Rows = append(groups[i].Rows, r)
	}
	return groups
}

// Records flattens rows into records whose columns map back onto import
// fields, so an export can be imported again as is.
func Records(rows []Row) []formatter.Record {
	records := make([]formatter.Record, len(rows))
	for i, r := range rows {
		var price string
		if r.PriceTRY != nil {
			price = r.PriceTRY.String()
		}
		records[i] = formatter.NewRecord(
			"id", r.ID,
			"title", r.Title(),
			"platform", string(r.Platform()),
			"status", string(r.Status),
			"member", r.MemberName(),
			"account", r.AccountLabel(),
			"price", price,
			"acquired", r.AcquiredAt,
			"oc", optional(r.OCScore),
			"ttb", optional(r.TTBMedianMainH),
			"services", strings.Join(r.Services, "; "),
		)
	}
	return records
}

func optional(v *float64) string {
	if v == nil {
		return ""
	}
	return decimal.NewFromFloat(*v).String()
}

// Services lists the distinct availability tags across rows, sorted.
func Services(rows []Row) []string {
	var out []string
	for _, r := range rows {
		for _, s := range r.Services {
			if !slices.Contains(out, s) {
				out = append(out, s)
			}
		}
	}
	slices.Sort(out)
	return out
}

// Summary describes rows in one line.
func Summary(rows []Row) string {
	return fmt.Sprintf("%d games across %d members", len(rows), len(GroupByMember(rows)))
}
