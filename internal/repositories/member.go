package repositories

import (
	"context"
	"fmt"

	"github.com/nclalperen/game-tracker-mvp/internal/models"
)

// MemberRepository implements models.Repository[models.Member].
type MemberRepository struct {
	q Querier
}

// NewMemberRepository creates a new MemberRepository over db or a transaction.
func NewMemberRepository(q Querier) *MemberRepository {
	return &MemberRepository{q: q}
}

// Get retrieves a member by ID
func (r *MemberRepository) Get(ctx context.Context, id string) (models.Member, error) {
	var m models.Member
	err := r.q.QueryRowContext(ctx, `SELECT id, name FROM members WHERE id = ?`, id).Scan(&m.ID, &m.Name)
	if err != nil {
		return models.Member{}, notFound(err, Members, id)
	}
	return m, nil
}

// List retrieves every member in insertion order
func (r *MemberRepository) List(ctx context.Context) ([]models.Member, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, name FROM members ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return members, nil
}

// Put inserts members or replaces them by id
func (r *MemberRepository) Put(ctx context.Context, members ...models.Member) error {
	if err := validateAll(members); err != nil {
		return err
	}

	query := `
		INSERT INTO members (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, updated_at = CURRENT_TIMESTAMP
	`
	for _, m := range members {
		if _, err := r.q.ExecContext(ctx, query, m.ID, m.Name); err != nil {
			return fmt.Errorf("failed to upsert member %s: %w", m.ID, err)
		}
	}
	return nil
}

// Delete removes a member by ID
func (r *MemberRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.q, Members, id)
}
