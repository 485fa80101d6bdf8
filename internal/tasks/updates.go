package tasks

import (
	"fmt"

	"github.com/nclalperen/game-tracker-mvp/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ParseRows Phase = iota
	MapFields
	LoadSnapshot
	BuildEntities
	ResolveOwners
	CommitBatch
	FetchLibrary
	EnrichPrices
	EnrichTTB
	SeedData
)

func (p Phase) String() string {
	switch p {
	case ParseRows:
		return "parse"
	case MapFields:
		return "map"
	case LoadSnapshot:
		return "snapshot"
	case BuildEntities:
		return "build"
	case ResolveOwners:
		return "resolve"
	case CommitBatch:
		return "commit"
	case FetchLibrary:
		return "fetch_library"
	case EnrichPrices:
		return "enrich_prices"
	case EnrichTTB:
		return "enrich_ttb"
	case SeedData:
		return "seed"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
		// Channel full, skip this update
	}
}

// Import runs in six fixed steps.
const importSteps = 6

func parsedUpdate(rows, malformed int) ProgressUpdate {
	msg := fmt.Sprintf("Parsed %d rows", rows)
	if malformed > 0 {
		msg += fmt.Sprintf(" (%d malformed)", malformed)
	}
	return ProgressUpdate{Phase: ParseRows, Step: 1, Total: importSteps, Message: msg}
}

func mappedUpdate(mapping fmt.Stringer) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MapFields,
		Step:    2,
		Total:   importSteps,
		Message: fmt.Sprintf("Mapped columns: %s", mapping),
		Data:    mapping,
	}
}

func snapshotUpdate(snap *models.Snapshot) ProgressUpdate {
	return ProgressUpdate{
		Phase: LoadSnapshot,
		Step:  3,
		Total: importSteps,
		Message: fmt.Sprintf("Loaded %d identities, %d members, %d accounts",
			len(snap.Identities), len(snap.Members), len(snap.Accounts)),
	}
}

func builtUpdate(identities, candidates, rejected int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BuildEntities,
		Step:    4,
		Total:   importSteps,
		Message: fmt.Sprintf("Built %d items, %d new games, %d rows skipped", candidates, identities, rejected),
	}
}

func resolvedUpdate(members, accounts int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveOwners,
		Step:    5,
		Total:   importSteps,
		Message: fmt.Sprintf("Resolved owners: %d new members, %d new accounts", members, accounts),
	}
}

func committingUpdate(batch *Batch) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CommitBatch,
		Step:    6,
		Total:   importSteps,
		Message: fmt.Sprintf("Writing %d records...", len(batch.IDs())),
	}
}

func committedUpdate(summary *Summary) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CommitBatch,
		Step:    6,
		Total:   importSteps,
		Message: fmt.Sprintf("✓ %s", summary),
		Data:    summary,
	}
}

func fetchLibraryUpdate(name string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLibrary,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetched %d games from %s", count, name),
	}
}

func enrichStartUpdate(phase Phase, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Looking up %d games...", total),
	}
}

func enrichDoneUpdate(phase Phase, step, total int, title, value string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s: %s", step, total, title, value),
	}
}

func enrichFailedUpdate(phase Phase, step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}
