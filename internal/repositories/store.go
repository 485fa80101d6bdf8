package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/nclalperen/game-tracker-mvp/internal/models"
	"github.com/nclalperen/game-tracker-mvp/internal/shared"
)

var (
	_ models.Repository[models.Identity]    = (*IdentityRepository)(nil)
	_ models.Repository[models.LibraryItem] = (*LibraryRepository)(nil)
	_ models.Repository[models.Account]     = (*AccountRepository)(nil)
	_ models.Repository[models.Member]      = (*MemberRepository)(nil)
)

// Store bundles the four repositories over one database.
type Store struct {
	db         *sql.DB
	Identities *IdentityRepository
	Library    *LibraryRepository
	Accounts   *AccountRepository
	Members    *MemberRepository
}

// NewStore creates a new Store with the given database connection
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:         db,
		Identities: NewIdentityRepository(db),
		Library:    NewLibraryRepository(db),
		Accounts:   NewAccountRepository(db),
		Members:    NewMemberRepository(db),
	}
}

// DB returns the underlying connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Snapshot lists the named collections, or all of them when none are given.
func (s *Store) Snapshot(ctx context.Context, collections ...Collection) (*models.Snapshot, error) {
	if len(collections) == 0 {
		collections = Collections
	}
	return snapshot(ctx, s.db, collections)
}

// RunTransaction runs work inside one transaction scoped to collections.
//
// Either every write made through tx is committed or none is: an error from
// work, a write outside the scope or a failed commit all roll back.
func (s *Store) RunTransaction(ctx context.Context, collections []Collection, work func(tx *Tx) error) error {
	for _, c := range collections {
		if !slices.Contains(Collections, c) {
			return fmt.Errorf("%w: %q", shared.ErrUnknownCollection, c)
		}
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := work(&Tx{tx: sqlTx, scope: collections}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// BulkUpsert writes every non-empty collection of snap in one transaction.
func (s *Store) BulkUpsert(ctx context.Context, snap *models.Snapshot) error {
	var scope []Collection
	if len(snap.Members) > 0 {
		scope = append(scope, Members)
	}
	if len(snap.Accounts) > 0 {
		scope = append(scope, Accounts)
	}
	if len(snap.Identities) > 0 {
		scope = append(scope, Identities)
	}
	if len(snap.Library) > 0 {
		scope = append(scope, Library)
	}
	if len(scope) == 0 {
		return nil
	}

	return s.RunTransaction(ctx, scope, func(tx *Tx) error {
		return tx.PutSnapshot(ctx, snap)
	})
}

// Tx is a transaction limited to a declared set of collections.
type Tx struct {
	tx    *sql.Tx
	scope []Collection
}

func (t *Tx) check(c Collection) error {
	if !slices.Contains(t.scope, c) {
		return fmt.Errorf("%w: %s", shared.ErrOutOfScope, c)
	}
	return nil
}

// Snapshot reads the collections in scope as seen by this transaction.
func (t *Tx) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	return snapshot(ctx, t.tx, t.scope)
}

// PutMembers upserts members within the transaction.
func (t *Tx) PutMembers(ctx context.Context, members ...models.Member) error {
	if err := t.check(Members); err != nil {
		return err
	}
	return NewMemberRepository(t.tx).Put(ctx, members...)
}

// PutAccounts upserts accounts within the transaction.
func (t *Tx) PutAccounts(ctx context.Context, accounts ...models.Account) error {
	if err := t.check(Accounts); err != nil {
		return err
	}
	return NewAccountRepository(t.tx).Put(ctx, accounts...)
}

// PutIdentities upserts identities within the transaction.
func (t *Tx) PutIdentities(ctx context.Context, identities ...models.Identity) error {
	if err := t.check(Identities); err != nil {
		return err
	}
	return NewIdentityRepository(t.tx).Put(ctx, identities...)
}

// PutLibrary upserts library items within the transaction.
func (t *Tx) PutLibrary(ctx context.Context, items ...models.LibraryItem) error {
	if err := t.check(Library); err != nil {
		return err
	}
	return NewLibraryRepository(t.tx).Put(ctx, items...)
}

// PutSnapshot upserts every non-empty collection of snap, referenced tables first.
func (t *Tx) PutSnapshot(ctx context.Context, snap *models.Snapshot) error {
	if len(snap.Members) > 0 {
		if err := t.PutMembers(ctx, snap.Members...); err != nil {
			return err
		}
	}
	if len(snap.Accounts) > 0 {
		if err := t.PutAccounts(ctx, snap.Accounts...); err != nil {
			return err
		}
	}
	if len(snap.Identities) > 0 {
		if err := t.PutIdentities(ctx, snap.Identities...); err != nil {
			return err
		}
	}
	if len(snap.Library) > 0 {
		if err := t.PutLibrary(ctx, snap.Library...); err != nil {
			return err
		}
	}
	return nil
}

// snapshot reads each collection fully before the next query runs;
// in-memory databases are limited to a single connection.
func snapshot(ctx context.Context, q Querier, collections []Collection) (*models.Snapshot, error) {
	snap := &models.Snapshot{}
	for _, c := range collections {
		var err error
		switch c {
		case Members:
			snap.Members, err = NewMemberRepository(q).List(ctx)
		case Accounts:
			snap.Accounts, err = NewAccountRepository(q).List(ctx)
		case Identities:
			snap.Identities, err = NewIdentityRepository(q).List(ctx)
		case Library:
			snap.Library, err = NewLibraryRepository(q).List(ctx)
		default:
			err = fmt.Errorf("%w: %q", shared.ErrUnknownCollection, c)
		}
		if err != nil {
			return nil, err
		}
	}
	return snap, nil
}
