package importer

import (
	"github.com/nclalperen/game-tracker-mvp/internal/formatter"
	"github.com/nclalperen/game-tracker-mvp/internal/models"
	"github.com/nclalperen/game-tracker-mvp/internal/normalize"
	"github.com/nclalperen/game-tracker-mvp/internal/shared"
	"github.com/shopspring/decimal"
)

// Candidate is a library item whose member and account are still raw labels.
//
// Item.MemberID and Item.AccountID stay empty until [Resolve] fills them.
type Candidate struct {
	Item         models.LibraryItem
	MemberLabel  string
	AccountLabel string
}

// BuildResult holds the buffers produced from one batch of rows.
type BuildResult struct {
	Identities []models.Identity // minted by this batch only
	Linked     []models.Identity // persisted identities that gained a Steam app id
	Candidates []Candidate
	Rejected   int // rows without a usable title
	Reused     int // candidates attached to a pre-existing identity
}

// Build converts mapped rows into identities and item candidates.
//
// Identities are keyed by normalized title and platform. existing seeds the
// key index so rows matching a persisted identity attach to it instead of
// minting a duplicate; pass nil to scope deduplication to the batch alone.
func Build(records []formatter.Record, m FieldMap, existing []models.Identity) *BuildResult {
	result := &BuildResult{}
	byKey := make(map[string]string, len(existing)+len(records))
	persisted := make(map[string]models.Identity, len(existing))
	minted := make(map[string]int)
	linked := make(map[string]bool)

	for _, i := range existing {
		key := normalize.IdentityKey(i.Title, i.Platform)
		if _, ok := byKey[key]; !ok {
			byKey[key] = i.ID
			persisted[i.ID] = i
		}
	}

	for _, r := range records {
		raw := m.Value(r, FieldTitle)
		title := normalize.ExtractTitle(raw)
		if title == "" {
			result.Rejected++
			continue
		}

		platform := normalize.PlatformOrDefault(m.Value(r, FieldPlatform))
		hint, hinted := normalize.DetectAccount(raw)

		key := normalize.IdentityKey(title, platform)
		identityID, ok := byKey[key]
		if !ok {
			identity := models.Identity{ID: shared.NewNanoID("id-"), Title: title, Platform: platform}
			if hinted {
				identity.SteamAppID = hint.AppID
			}
			identityID = identity.ID
			byKey[key] = identityID
			minted[identityID] = len(result.Identities)
			result.Identities = append(result.Identities, identity)
		} else if i, ok := minted[identityID]; ok {
			if hinted && result.Identities[i].SteamAppID == nil {
				result.Identities[i].SteamAppID = hint.AppID
			}
		} else if identity, ok := persisted[identityID]; ok {
			result.Reused++
			if hinted && hint.AppID != nil && identity.SteamAppID == nil && !linked[identityID] {
				identity.SteamAppID = hint.AppID
				linked[identityID] = true
				result.Linked = append(result.Linked, identity)
			}
		}

		accountLabel := m.Value(r, FieldAccount)
		if accountLabel == "" && hinted {
			accountLabel = hint.Label
		}

		id := m.Value(r, FieldID)
		if id == "" {
			id = shared.NewNanoID("")
		}

		result.Candidates = append(result.Candidates, Candidate{
			Item: models.LibraryItem{
				ID:             id,
				IdentityID:     identityID,
				Status:         normalize.StatusOrDefault(m.Value(r, FieldStatus)),
				PriceTRY:       price(m.Value(r, FieldPrice)),
				AcquiredAt:     m.Value(r, FieldAcquired),
				Services:       normalize.Services(m.Value(r, FieldServices)),
				OCScore:        score(m.Value(r, FieldOCScore)),
				TTBMedianMainH: hours(m.Value(r, FieldTTB)),
			},
			MemberLabel:  m.Value(r, FieldMember),
			AccountLabel: accountLabel,
		})
	}

	return result
}

// Out of range values are treated like unparseable ones: unset.

func price(s string) *decimal.Decimal {
	p := normalize.OptionalDecimal(s)
	if p == nil || p.IsNegative() {
		return nil
	}
	return p
}

func score(s string) *float64 {
	v := normalize.OptionalNumber(s)
	if v == nil || *v < 0 || *v > 100 {
		return nil
	}
	return v
}

func hours(s string) *float64 {
	v := normalize.OptionalNumber(s)
	if v == nil || *v < 0 {
		return nil
	}
	return v
}
