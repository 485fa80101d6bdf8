// package formatter parses delimited rows and exports the game library to CSV, JSON and XLSX
package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/nclalperen/game-tracker-mvp/internal/models"
	"github.com/nclalperen/game-tracker-mvp/internal/shared"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, s)
	}
}

// ReadTable parses tabular input in the given format. JSON is not tabular; use [ParseJSON].
func ReadTable(r io.Reader, format Format) (*Table, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatXLSX:
		return ReadXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %s input is not tabular", shared.ErrInvalidArgument, format)
	}
}

// LibraryRecords converts library items to records with the stored field names as columns.
// Unset optional fields become empty cells and services are joined with "; ".
func LibraryRecords(items []models.LibraryItem) []Record {
	records := make([]Record, len(items))
	for i, it := range items {
		var price string
		if it.PriceTRY != nil {
			price = it.PriceTRY.String()
		}
		records[i] = NewRecord(
			"id", it.ID,
			"identityId", it.IdentityID,
			"accountId", it.AccountID,
			"memberId", it.MemberID,
			"status", string(it.Status),
			"priceTRY", price,
			"acquiredAt", it.AcquiredAt,
			"services", strings.Join(it.Services, "; "),
			"ocScore", formatOptional(it.OCScore),
			"ttbMedianMainH", formatOptional(it.TTBMedianMainH),
		)
	}
	return records
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// ExportJSON encodes the whole database. Missing collections are written as empty arrays.
func ExportJSON(snap *models.Snapshot, pretty bool) ([]byte, error) {
	out := models.Snapshot{
		Identities: snap.Identities,
		Library:    snap.Library,
		Accounts:   snap.Accounts,
		Members:    snap.Members,
	}
	if out.Identities == nil {
		out.Identities = []models.Identity{}
	}
	if out.Library == nil {
		out.Library = []models.LibraryItem{}
	}
	if out.Accounts == nil {
		out.Accounts = []models.Account{}
	}
	if out.Members == nil {
		out.Members = []models.Member{}
	}
	return shared.MarshalJSON(out, pretty)
}

// ParseJSON decodes a whole-database document. Every collection key is optional.
func ParseJSON(data []byte) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON export: %v", shared.ErrInvalidInput, err)
	}
	return &snap, nil
}

// WriteExport renders records (CSV/XLSX) or the snapshot (JSON) to path in the given format.
func WriteExport(path string, format Format, snap *models.Snapshot, records []Record) error {
	var (
		data []byte
		err  error
	)

	switch format {
	case FormatCSV:
		data, err = ToCSV(records)
	case FormatXLSX:
		data, err = ToXLSX(records, "Library")
	case FormatJSON:
		data, err = ExportJSON(snap, true)
	default:
		return fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return fmt.Errorf("failed to generate %s export: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return nil
}
