package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nclalperen/game-tracker-mvp/internal/models"
)

// IdentityRepository implements models.Repository[models.Identity].
type IdentityRepository struct {
	q Querier
}

// NewIdentityRepository creates a new IdentityRepository over db or a transaction.
func NewIdentityRepository(q Querier) *IdentityRepository {
	return &IdentityRepository{q: q}
}

const identityColumns = `id, title, platform, open_critic_id, igdb_id, steam_app_id`

// Get retrieves an identity by ID
func (r *IdentityRepository) Get(ctx context.Context, id string) (models.Identity, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+identityColumns+` FROM identities WHERE id = ?`, id)
	i, err := r.scan(row)
	if err != nil {
		return models.Identity{}, notFound(err, Identities, id)
	}
	return i, nil
}

// List retrieves every identity in insertion order
func (r *IdentityRepository) List(ctx context.Context) ([]models.Identity, error) {
	return r.query(ctx, `SELECT `+identityColumns+` FROM identities ORDER BY rowid ASC`)
}

// ListMissingSteamPrice retrieves identities that carry a Steam app id and
// back at least one library item without a price.
func (r *IdentityRepository) ListMissingSteamPrice(ctx context.Context) ([]models.Identity, error) {
	return r.query(ctx, `
		SELECT `+identityColumns+` FROM identities
		WHERE steam_app_id IS NOT NULL
		AND id IN (SELECT identity_id FROM library WHERE price_try IS NULL)
		ORDER BY rowid ASC
	`)
}

// ListMissingTTB retrieves identities that back at least one library item without a time to beat.
func (r *IdentityRepository) ListMissingTTB(ctx context.Context) ([]models.Identity, error) {
	return r.query(ctx, `
		SELECT `+identityColumns+` FROM identities
		WHERE id IN (SELECT identity_id FROM library WHERE ttb_median_main_h IS NULL)
		ORDER BY rowid ASC
	`)
}

// Put inserts identities or replaces them by id
func (r *IdentityRepository) Put(ctx context.Context, identities ...models.Identity) error {
	if err := validateAll(identities); err != nil {
		return err
	}

	query := `
		INSERT INTO identities (id, title, platform, open_critic_id, igdb_id, steam_app_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			platform = excluded.platform,
			open_critic_id = excluded.open_critic_id,
			igdb_id = excluded.igdb_id,
			steam_app_id = excluded.steam_app_id,
			updated_at = CURRENT_TIMESTAMP
	`
	for _, i := range identities {
		_, err := r.q.ExecContext(ctx, query,
			i.ID,
			i.Title,
			i.Platform,
			nullInt(i.OpenCriticID),
			nullInt(i.IGDBID),
			nullInt(i.SteamAppID),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert identity %s: %w", i.ID, err)
		}
	}
	return nil
}

// Delete removes an identity by ID. Fails while library items still reference it.
func (r *IdentityRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.q, Identities, id)
}

func (r *IdentityRepository) query(ctx context.Context, query string, args ...any) ([]models.Identity, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query identities: %w", err)
	}
	defer rows.Close()

	var identities []models.Identity
	for rows.Next() {
		i, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan identity: %w", err)
		}
		identities = append(identities, i)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return identities, nil
}

func (r *IdentityRepository) scan(s scanner) (models.Identity, error) {
	var (
		i                             models.Identity
		openCriticID, igdbID, steamID sql.NullInt64
	)
	if err := s.Scan(&i.ID, &i.Title, &i.Platform, &openCriticID, &igdbID, &steamID); err != nil {
		return models.Identity{}, err
	}
	i.OpenCriticID = intPtr(openCriticID)
	i.IGDBID = intPtr(igdbID)
	i.SteamAppID = intPtr(steamID)
	return i, nil
}
