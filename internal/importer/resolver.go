package importer

import (
	"strings"

	"github.com/nclalperen/game-tracker-mvp/internal/models"
	"github.com/nclalperen/game-tracker-mvp/internal/normalize"
	"github.com/nclalperen/game-tracker-mvp/internal/shared"
)

// Resolution is the output of [Resolve]: items with real references plus the
// members and accounts that must be created alongside them.
type Resolution struct {
	Items       []models.LibraryItem
	NewMembers  []models.Member
	NewAccounts []models.Account
}

// Resolve replaces candidate labels with member and account ids.
//
// Lookups compare trimmed, lowercased labels against the snapshot plus
// everything minted earlier in the same pass, so one label never yields two
// entities and the first-seen casing is kept. An empty member label resolves
// to the everyone sentinel, which is added to NewMembers when referenced but
// not yet persisted. batch supplies identities minted by the current build;
// a new account takes its platform from the item's identity, else PC.
func Resolve(candidates []Candidate, snap *models.Snapshot, batch []models.Identity) *Resolution {
	if snap == nil {
		snap = &models.Snapshot{}
	}

	platforms := make(map[string]models.Platform, len(snap.Identities)+len(batch))
	for _, i := range snap.Identities {
		platforms[i.ID] = i.Platform
	}
	for _, i := range batch {
		platforms[i.ID] = i.Platform
	}

	memberByName := make(map[string]string, len(snap.Members))
	sentinelPersisted := false
	for _, m := range snap.Members {
		if m.ID == normalize.EveryoneMemberID {
			sentinelPersisted = true
		}
		if key := normalize.Label(m.Name); key != "" {
			if _, ok := memberByName[key]; !ok {
				memberByName[key] = m.ID
			}
		}
	}

	accountByLabel := make(map[string]string, len(snap.Accounts))
	for _, a := range snap.Accounts {
		if key := normalize.Label(a.Label); key != "" {
			if _, ok := accountByLabel[key]; !ok {
				accountByLabel[key] = a.ID
			}
		}
	}

	res := &Resolution{Items: make([]models.LibraryItem, 0, len(candidates))}
	sentinelUsed := false

	for _, c := range candidates {
		item := c.Item

		key := normalize.Label(c.MemberLabel)
		switch id, ok := memberByName[key]; {
		case key == "" || key == normalize.EveryoneMemberID:
			item.MemberID = normalize.EveryoneMemberID
			sentinelUsed = true
		case ok:
			item.MemberID = id
		default:
			m := models.Member{ID: shared.GenerateID("m-"), Name: strings.TrimSpace(c.MemberLabel)}
			memberByName[key] = m.ID
			res.NewMembers = append(res.NewMembers, m)
			item.MemberID = m.ID
		}

		if key := normalize.Label(c.AccountLabel); key != "" {
			if id, ok := accountByLabel[key]; ok {
				item.AccountID = id
			} else {
				platform, ok := platforms[item.IdentityID]
				if !ok {
					platform = normalize.DefaultPlatform
				}
				a := models.Account{ID: shared.GenerateID("a-"), Platform: platform, Label: strings.TrimSpace(c.AccountLabel)}
				accountByLabel[key] = a.ID
				res.NewAccounts = append(res.NewAccounts, a)
				item.AccountID = a.ID
			}
		}

		res.Items = append(res.Items, item)
	}

	if sentinelUsed && !sentinelPersisted {
		res.NewMembers = append([]models.Member{{ID: normalize.EveryoneMemberID, Name: normalize.EveryoneMemberName}}, res.NewMembers...)
	}
	return res
}
