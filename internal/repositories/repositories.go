package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/nclalperen/game-tracker-mvp/internal/models"
	"github.com/nclalperen/game-tracker-mvp/internal/shared"
	"github.com/shopspring/decimal"
)

// Querier is satisfied by both [sql.DB] and [sql.Tx].
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// Collection names one persisted table.
type Collection string

const (
	Members    Collection = "members"
	Accounts   Collection = "accounts"
	Identities Collection = "identities"
	Library    Collection = "library"
)

// Collections lists every collection in write order: referenced tables first.
var Collections = []Collection{Members, Accounts, Identities, Library}

// ParseCollection resolves a collection name.
func ParseCollection(s string) (Collection, error) {
	c := Collection(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Collections, c) {
		return "", fmt.Errorf("%w: %q", shared.ErrUnknownCollection, s)
	}
	return c, nil
}

// deleteByID removes one row from table, reporting [shared.ErrNotFound] when nothing matched.
func deleteByID(ctx context.Context, q Querier, table Collection, id string) error {
	result, err := q.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s %s", shared.ErrNotFound, table, id)
	}
	return nil
}

func notFound(err error, table Collection, id string) error {
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s %s", shared.ErrNotFound, table, id)
	}
	return fmt.Errorf("failed to scan %s: %w", table, err)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullDecimal(v *decimal.Decimal) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: v.String(), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func decimalPtr(v sql.NullString) (*decimal.Decimal, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v.String)
	if err != nil {
		return nil, fmt.Errorf("invalid stored price %q: %w", v.String, err)
	}
	return &d, nil
}

// Services are stored as a JSON array.

func encodeServices(services []string) (sql.NullString, error) {
	if len(services) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(services)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode services: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeServices(v sql.NullString) ([]string, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	var services []string
	if err := json.Unmarshal([]byte(v.String), &services); err != nil {
		return nil, fmt.Errorf("invalid stored services %q: %w", v.String, err)
	}
	return services, nil
}

func validateAll[T models.Validatable](records []T) error {
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
	}
	return nil
}
