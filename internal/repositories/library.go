package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nclalperen/game-tracker-mvp/internal/models"
)

// LibraryRepository implements models.Repository[models.LibraryItem].
type LibraryRepository struct {
	q Querier
}

// NewLibraryRepository creates a new LibraryRepository over db or a transaction.
func NewLibraryRepository(q Querier) *LibraryRepository {
	return &LibraryRepository{q: q}
}

const libraryColumns = `id, identity_id, account_id, member_id, status, price_try, acquired_at, services, oc_score, ttb_median_main_h`

// Get retrieves a library item by ID
func (r *LibraryRepository) Get(ctx context.Context, id string) (models.LibraryItem, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+libraryColumns+` FROM library WHERE id = ?`, id)
	item, err := r.scan(row)
	if err != nil {
		return models.LibraryItem{}, notFound(err, Library, id)
	}
	return item, nil
}

// List retrieves every library item in insertion order
func (r *LibraryRepository) List(ctx context.Context) ([]models.LibraryItem, error) {
	return r.ListBy(ctx, nil)
}

// ListBy retrieves library items matching the given criteria.
//
// Supported keys: identity_id, member_id, account_id, status. Empty values are ignored.
func (r *LibraryRepository) ListBy(ctx context.Context, criteria map[string]any) ([]models.LibraryItem, error) {
	query := `SELECT ` + libraryColumns + ` FROM library WHERE 1 = 1`
	args := []any{}

	for _, column := range []string{"identity_id", "member_id", "account_id", "status"} {
		if v, ok := criteria[column]; ok && fmt.Sprint(v) != "" {
			query += " AND " + column + " = ?"
			args = append(args, fmt.Sprint(v))
		}
	}

	query += " ORDER BY rowid ASC"

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query library: %w", err)
	}
	defer rows.Close()

	var items []models.LibraryItem
	for rows.Next() {
		item, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan library item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}

// Put inserts library items or replaces them by id
func (r *LibraryRepository) Put(ctx context.Context, items ...models.LibraryItem) error {
	if err := validateAll(items); err != nil {
		return err
	}

	query := `
		INSERT INTO library (` + libraryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			identity_id = excluded.identity_id,
			account_id = excluded.account_id,
			member_id = excluded.member_id,
			status = excluded.status,
			price_try = excluded.price_try,
			acquired_at = excluded.acquired_at,
			services = excluded.services,
			oc_score = excluded.oc_score,
			ttb_median_main_h = excluded.ttb_median_main_h,
			updated_at = CURRENT_TIMESTAMP
	`
	for _, item := range items {
		services, err := encodeServices(item.Services)
		if err != nil {
			return err
		}

		_, err = r.q.ExecContext(ctx, query,
			item.ID,
			item.IdentityID,
			nullString(item.AccountID),
			nullString(item.MemberID),
			item.Status,
			nullDecimal(item.PriceTRY),
			nullString(item.AcquiredAt),
			services,
			nullFloat(item.OCScore),
			nullFloat(item.TTBMedianMainH),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert library item %s: %w", item.ID, err)
		}
	}
	return nil
}

// Delete removes a library item by ID
func (r *LibraryRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.q, Library, id)
}

func (r *LibraryRepository) scan(s scanner) (models.LibraryItem, error) {
	var (
		item                            models.LibraryItem
		accountID, memberID, acquiredAt sql.NullString
		price, services                 sql.NullString
		ocScore, ttb                    sql.NullFloat64
	)

	err := s.Scan(&item.ID, &item.IdentityID, &accountID, &memberID, &item.Status, &price, &acquiredAt, &services, &ocScore, &ttb)
	if err != nil {
		return models.LibraryItem{}, err
	}

	item.AccountID = accountID.String
	item.MemberID = memberID.String
	item.AcquiredAt = acquiredAt.String
	item.OCScore = floatPtr(ocScore)
	item.TTBMedianMainH = floatPtr(ttb)

	if item.PriceTRY, err = decimalPtr(price); err != nil {
		return models.LibraryItem{}, err
	}
	if item.Services, err = decodeServices(services); err != nil {
		return models.LibraryItem{}, err
	}
	return item, nil
}
