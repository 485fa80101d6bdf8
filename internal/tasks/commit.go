package tasks

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/nclalperen/game-tracker-mvp/internal/models"
	"github.com/nclalperen/game-tracker-mvp/internal/repositories"
	"github.com/nclalperen/game-tracker-mvp/internal/shared"
)

// Batch is the complete set of writes produced by one import.
type Batch struct {
	Identities []models.Identity
	Linked     []models.Identity // existing identities updated in place
	Members    []models.Member
	Accounts   []models.Account
	Items      []models.LibraryItem
}

// Empty reports whether the batch holds nothing to write.
func (b *Batch) Empty() bool {
	return len(b.Identities) == 0 && len(b.Linked) == 0 && len(b.Members) == 0 && len(b.Accounts) == 0 && len(b.Items) == 0
}

// IDs lists every record id in the batch, in write order.
func (b *Batch) IDs() []string {
	ids := make([]string, 0, len(b.Identities)+len(b.Linked)+len(b.Members)+len(b.Accounts)+len(b.Items))
	for _, m := range b.Members {
		ids = append(ids, m.ID)
	}
	for _, a := range b.Accounts {
		ids = append(ids, a.ID)
	}
	for _, i := range b.Identities {
		ids = append(ids, i.ID)
	}
	for _, i := range b.Linked {
		ids = append(ids, i.ID)
	}
	for _, item := range b.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

// Summary counts the records written per kind.
type Summary struct {
	Identities int `json:"identities"`
	Members    int `json:"members"`
	Accounts   int `json:"accounts"`
	Items      int `json:"items"`
}

func (s *Summary) String() string {
	return fmt.Sprintf("Imported %d items (%d new games, %d new members, %d new accounts)",
		s.Items, s.Identities, s.Members, s.Accounts)
}

// CommitError reports a failed commit. Nothing from the batch was written.
type CommitError struct {
	IDs []string // ids the batch attempted to write
	Err error
}

func (e *CommitError) Error() string {
	ids := e.IDs
	suffix := ""
	if len(ids) > 5 {
		ids, suffix = ids[:5], fmt.Sprintf(", and %d more", len(e.IDs)-5)
	}
	return fmt.Sprintf("%v: %d records (%s%s): %v", shared.ErrCommitFailed, len(e.IDs), strings.Join(ids, ", "), suffix, e.Err)
}

func (e *CommitError) Unwrap() []error {
	return []error{shared.ErrCommitFailed, e.Err}
}

// Commit writes batch in a single transaction over the collections it touches.
//
// Empty buffers are skipped. Once started the write is not cancelled by ctx:
// it either lands completely or fails with a [*CommitError] and leaves the
// store exactly as it was.
func Commit(ctx context.Context, store *repositories.Store, batch *Batch) (*Summary, error) {
	summary := &Summary{
		Identities: len(batch.Identities),
		Members:    len(batch.Members),
		Accounts:   len(batch.Accounts),
		Items:      len(batch.Items),
	}
	if batch.Empty() {
		return summary, nil
	}

	var scope []repositories.Collection
	if len(batch.Members) > 0 {
		scope = append(scope, repositories.Members)
	}
	if len(batch.Accounts) > 0 {
		scope = append(scope, repositories.Accounts)
	}
	if len(batch.Identities) > 0 || len(batch.Linked) > 0 {
		scope = append(scope, repositories.Identities)
	}
	if len(batch.Items) > 0 {
		scope = append(scope, repositories.Library)
	}

	ctx = context.WithoutCancel(ctx)
	err := store.RunTransaction(ctx, scope, func(tx *repositories.Tx) error {
		return tx.PutSnapshot(ctx, &models.Snapshot{
			Members:    batch.Members,
			Accounts:   batch.Accounts,
			Identities: append(slices.Clip(batch.Identities), batch.Linked...),
			Library:    batch.Items,
		})
	})
	if err != nil {
		return nil, &CommitError{IDs: batch.IDs(), Err: err}
	}
	return summary, nil
}
