// package models defines the data model for the game library
package models

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, matching exports from earlier versions.
	decimal.MarshalJSONWithoutQuotes = true
}

// Platform is the hardware family an identity belongs to.
type Platform string

const (
	PlatformPC          Platform = "PC"
	PlatformXbox        Platform = "Xbox"
	PlatformPlayStation Platform = "PlayStation"
	PlatformSwitch      Platform = "Switch"
	PlatformAndroid     Platform = "Android"
)

// Platforms lists every known platform in display order.
var Platforms = []Platform{PlatformPC, PlatformXbox, PlatformPlayStation, PlatformSwitch, PlatformAndroid}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// Status is the play state of a library item.
type Status string

const (
	StatusBacklog   Status = "Backlog"
	StatusPlaying   Status = "Playing"
	StatusBeaten    Status = "Beaten"
	StatusAbandoned Status = "Abandoned"
	StatusWishlist  Status = "Wishlist"
	StatusOwned     Status = "Owned"
)

// Statuses lists every known status in display order.
var Statuses = []Status{StatusBacklog, StatusPlaying, StatusBeaten, StatusAbandoned, StatusWishlist, StatusOwned}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Availability service tags. Tags are free text on import; these are the ones the app knows about.
const (
	ServiceGamePass  = "Game Pass"
	ServiceEAPlayPro = "EA Play Pro"
)

// Identity is a game concept, unique by normalized title and platform.
type Identity struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Platform     Platform `json:"platform"`
	OpenCriticID *int     `json:"openCriticId,omitempty"`
	IGDBID       *int     `json:"igdbId,omitempty"`
	SteamAppID   *int     `json:"steamAppId,omitempty"`
}

// Validate checks required fields.
func (i Identity) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("identity id is required")
	}
	if strings.TrimSpace(i.Title) == "" {
		return fmt.Errorf("identity %s: title is required", i.ID)
	}
	if !i.Platform.Valid() {
		return fmt.Errorf("identity %s: invalid platform %q", i.ID, i.Platform)
	}
	return nil
}

// LibraryItem is one ownership or record-of-interest row.
type LibraryItem struct {
	ID             string           `json:"id"`
	IdentityID     string           `json:"identityId"`
	AccountID      string           `json:"accountId,omitempty"`
	MemberID       string           `json:"memberId,omitempty"`
	Status         Status           `json:"status"`
	PriceTRY       *decimal.Decimal `json:"priceTRY,omitempty"`
	AcquiredAt     string           `json:"acquiredAt,omitempty"`
	Services       []string         `json:"services,omitempty"`
	OCScore        *float64         `json:"ocScore,omitempty"`
	TTBMedianMainH *float64         `json:"ttbMedianMainH,omitempty"`
}

// Validate checks required fields and value ranges.
func (l LibraryItem) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("library item id is required")
	}
	if l.IdentityID == "" {
		return fmt.Errorf("library item %s: identity reference is required", l.ID)
	}
	if !l.Status.Valid() {
		return fmt.Errorf("library item %s: invalid status %q", l.ID, l.Status)
	}
	if l.PriceTRY != nil && l.PriceTRY.IsNegative() {
		return fmt.Errorf("library item %s: price must be non-negative", l.ID)
	}
	if l.OCScore != nil && (*l.OCScore < 0 || *l.OCScore > 100) {
		return fmt.Errorf("library item %s: score must be within 0-100", l.ID)
	}
	if l.TTBMedianMainH != nil && *l.TTBMedianMainH < 0 {
		return fmt.Errorf("library item %s: time to beat must be non-negative", l.ID)
	}
	return nil
}

// Account is a platform-specific store or login, resolved by label.
type Account struct {
	ID         string   `json:"id"`
	Platform   Platform `json:"platform"`
	Label      string   `json:"label"`
	IdentityID string   `json:"identityId,omitempty"`
}

// Validate checks required fields.
func (a Account) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("account id is required")
	}
	if strings.TrimSpace(a.Label) == "" {
		return fmt.Errorf("account %s: label is required", a.ID)
	}
	if !a.Platform.Valid() {
		return fmt.Errorf("account %s: invalid platform %q", a.ID, a.Platform)
	}
	return nil
}

// Member is a household user.
type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Validate checks required fields.
func (m Member) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("member id is required")
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("member %s: name is required", m.ID)
	}
	return nil
}

// Snapshot holds every persisted collection.
//
// It doubles as the whole-database JSON document; absent arrays decode as nil.
type Snapshot struct {
	Identities []Identity    `json:"identities"`
	Library    []LibraryItem `json:"library"`
	Accounts   []Account     `json:"accounts"`
	Members    []Member      `json:"members"`
}

// Empty reports whether the snapshot holds no records at all.
func (s *Snapshot) Empty() bool {
	return len(s.Identities) == 0 && len(s.Library) == 0 && len(s.Accounts) == 0 && len(s.Members) == 0
}

// Identity returns the identity with the given id.
func (s *Snapshot) Identity(id string) (Identity, bool) {
	for _, i := range s.Identities {
		if i.ID == id {
			return i, true
		}
	}
	return Identity{}, false
}

// Validatable is implemented by every persisted entity.
type Validatable interface {
	Validate() error
}

// Repository defines the storage operations for one collection.
// Put inserts or replaces by id.
type Repository[T Validatable] interface {
	Get(ctx context.Context, id string) (T, error)
	List(ctx context.Context) ([]T, error)
	Put(ctx context.Context, records ...T) error
	Delete(ctx context.Context, id string) error
}
