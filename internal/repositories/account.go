package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nclalperen/game-tracker-mvp/internal/models"
)

// AccountRepository implements models.Repository[models.Account].
type AccountRepository struct {
	q Querier
}

// NewAccountRepository creates a new AccountRepository over db or a transaction.
func NewAccountRepository(q Querier) *AccountRepository {
	return &AccountRepository{q: q}
}

const accountColumns = `id, platform, label, identity_id`

// Get retrieves an account by ID
func (r *AccountRepository) Get(ctx context.Context, id string) (models.Account, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	a, err := r.scan(row)
	if err != nil {
		return models.Account{}, notFound(err, Accounts, id)
	}
	return a, nil
}

// List retrieves every account in insertion order
func (r *AccountRepository) List(ctx context.Context) ([]models.Account, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return accounts, nil
}

// Put inserts accounts or replaces them by id
func (r *AccountRepository) Put(ctx context.Context, accounts ...models.Account) error {
	if err := validateAll(accounts); err != nil {
		return err
	}

	query := `
		INSERT INTO accounts (id, platform, label, identity_id) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			platform = excluded.platform,
			label = excluded.label,
			identity_id = excluded.identity_id,
			updated_at = CURRENT_TIMESTAMP
	`
	for _, a := range accounts {
		if _, err := r.q.ExecContext(ctx, query, a.ID, a.Platform, a.Label, nullString(a.IdentityID)); err != nil {
			return fmt.Errorf("failed to upsert account %s: %w", a.ID, err)
		}
	}
	return nil
}

// Delete removes an account by ID
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.q, Accounts, id)
}

func (r *AccountRepository) scan(s scanner) (models.Account, error) {
	var (
		a          models.Account
		identityID sql.NullString
	)
	if err := s.Scan(&a.ID, &a.Platform, &a.Label, &identityID); err != nil {
		return models.Account{}, err
	}
	a.IdentityID = identityID.String
	return a, nil
}
