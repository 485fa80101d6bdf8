package tasks

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/nclalperen/game-tracker-mvp/internal/formatter"
	"github.com/nclalperen/game-tracker-mvp/internal/importer"
	"github.com/nclalperen/game-tracker-mvp/internal/models"
	"github.com/nclalperen/game-tracker-mvp/internal/normalize"
	"github.com/nclalperen/game-tracker-mvp/internal/repositories"
	"github.com/nclalperen/game-tracker-mvp/internal/services"
	"github.com/nclalperen/game-tracker-mvp/internal/shared"
)

// ImportResult describes one import run.
//
// Nothing is an outcome, not an error: it is set when no row produced an item.
type ImportResult struct {
	Mapping   importer.FieldMap
	Rows      int      // rows read
	Malformed int      // rows the parser had to repair
	Rejected  int      // rows dropped for lack of a title
	Reused    int      // items attached to games already in the library
	Summary   *Summary // nil unless committed
	Nothing   bool
}

// Plan is a fully resolved import that has not been written yet.
type Plan struct {
	Result *ImportResult
	Batch  *Batch
}

// ImportOpts tunes an import run.
type ImportOpts struct {
	// ReuseIdentities seeds the builder with persisted identities so a
	// re-import attaches to existing games instead of minting duplicates.
	ReuseIdentities bool
}

// ImportEngine implements the import pipeline over a [repositories.Store].
type ImportEngine struct {
	store  *repositories.Store
	logger *log.Logger
	opts   ImportOpts
}

// NewImportEngine creates a new ImportEngine. A nil logger discards output.
func NewImportEngine(store *repositories.Store, logger *log.Logger, opts ImportOpts) *ImportEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &ImportEngine{store: store, logger: logger, opts: opts}
}

// Store returns the store the engine writes to.
func (e *ImportEngine) Store() *repositories.Store {
	return e.store
}

// Plan maps, builds and resolves table against a fresh snapshot without writing anything.
// A nil mapping is guessed from the table headers.
func (e *ImportEngine) Plan(ctx context.Context, progress chan<- ProgressUpdate, table *formatter.Table, mapping importer.FieldMap) (*Plan, error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: store not initialized", shared.ErrServiceUnavailable)
	}

	result := &ImportResult{Rows: len(table.Records), Malformed: table.Malformed}
	sendProgress(progress, parsedUpdate(result.Rows, result.Malformed))

	if mapping == nil {
		mapping = importer.GuessFieldMap(table.Headers)
	}
	result.Mapping = mapping
	sendProgress(progress, mappedUpdate(mapping))
	e.logger.Debug("field mapping", "mapping", mapping.String(), "rows", result.Rows)

	snap, err := e.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read library: %w", err)
	}
	sendProgress(progress, snapshotUpdate(snap))

	var existing []models.Identity
	if e.opts.ReuseIdentities {
		existing = snap.Identities
	}

	built := importer.Build(table.Records, mapping, existing)
	result.Rejected = built.Rejected
	result.Reused = built.Reused
	sendProgress(progress, builtUpdate(len(built.Identities), len(built.Candidates), built.Rejected))

	resolved := importer.Resolve(built.Candidates, snap, built.Identities)
	sendProgress(progress, resolvedUpdate(len(resolved.NewMembers), len(resolved.NewAccounts)))

	batch := &Batch{
		Identities: built.Identities,
		Linked:     built.Linked,
		Members:    resolved.NewMembers,
		Accounts:   resolved.NewAccounts,
		Items:      resolved.Items,
	}
	result.Nothing = len(batch.Items) == 0
	if len(batch.Linked) > 0 {
		e.logger.Debug("linking steam app ids", "identities", len(batch.Linked))
	}
	return &Plan{Result: result, Batch: batch}, nil
}

// Run imports table: plan, then commit in one transaction.
func (e *ImportEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, table *formatter.Table, mapping importer.FieldMap) (*ImportResult, error) {
	plan, err := e.Plan(ctx, progress, table, mapping)
	if err != nil {
		return nil, err
	}
	return e.Apply(ctx, progress, plan)
}

// Apply commits a plan produced by [ImportEngine.Plan].
func (e *ImportEngine) Apply(ctx context.Context, progress chan<- ProgressUpdate, plan *Plan) (*ImportResult, error) {
	result := plan.Result
	if result.Nothing {
		e.logger.Info("nothing to import", "rows", result.Rows, "rejected", result.Rejected)
		return result, nil
	}

	sendProgress(progress, committingUpdate(plan.Batch))
	summary, err := Commit(ctx, e.store, plan.Batch)
	if err != nil {
		e.logger.Error("import failed", "records", len(plan.Batch.IDs()), "error", err)
		return result, err
	}

	result.Summary = summary
	sendProgress(progress, committedUpdate(summary))
	e.logger.Info("import complete",
		"items", summary.Items,
		"identities", summary.Identities,
		"members", summary.Members,
		"accounts", summary.Accounts,
		"rejected", result.Rejected,
	)
	return result, nil
}

// ImportSteam imports every game owned on the configured Steam account.
func (e *ImportEngine) ImportSteam(ctx context.Context, progress chan<- ProgressUpdate, lib services.GameLibrary) (*ImportResult, error) {
	if lib == nil {
		return nil, fmt.Errorf("%w: Steam service not initialized", shared.ErrServiceUnavailable)
	}

	games, err := lib.OwnedGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch owned games: %w", err)
	}
	sendProgress(progress, fetchLibraryUpdate("Steam", len(games)))

	records, mapping := importer.SteamRows(games)
	table := &formatter.Table{Headers: []string{importer.SteamTitleColumn}, Records: records}
	return e.Run(ctx, progress, table, mapping)
}

// ImportSnapshot writes a whole-library document verbatim, ids included, in one transaction.
//
// The everyone member is added when items reference it and neither the
// document nor the store has it.
func (e *ImportEngine) ImportSnapshot(ctx context.Context, progress chan<- ProgressUpdate, snap *models.Snapshot) (*ImportResult, error) {
	result := &ImportResult{Rows: len(snap.Library)}
	if snap.Empty() {
		result.Nothing = true
		return result, nil
	}

	batch := &Batch{
		Identities: snap.Identities,
		Members:    snap.Members,
		Accounts:   snap.Accounts,
		Items:      snap.Library,
	}

	if referencesEveryone(snap.Library) && !hasEveryone(snap.Members) {
		persisted, err := e.store.Snapshot(ctx, repositories.Members)
		if err != nil {
			return nil, fmt.Errorf("failed to read members: %w", err)
		}
		if !hasEveryone(persisted.Members) {
			batch.Members = append([]models.Member{{ID: normalize.EveryoneMemberID, Name: normalize.EveryoneMemberName}}, batch.Members...)
		}
	}

	sendProgress(progress, committingUpdate(batch))
	summary, err := Commit(ctx, e.store, batch)
	if err != nil {
		return result, err
	}

	result.Summary = summary
	sendProgress(progress, committedUpdate(summary))
	e.logger.Info("snapshot imported", "items", summary.Items, "identities", summary.Identities)
	return result, nil
}

func referencesEveryone(items []models.LibraryItem) bool {
	for _, item := range items {
		if item.MemberID == normalize.EveryoneMemberID {
			return true
		}
	}
	return false
}

func hasEveryone(members []models.Member) bool {
	for _, m := range members {
		if m.ID == normalize.EveryoneMemberID {
			return true
		}
	}
	return false
}
