package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kiosco-inc/kiosco-engine/pkg/database"
	"github.com/kiosco-inc/kiosco-engine/pkg/models"
)

// AllergenRepository provides data access for the allergen catalog.
// The matching engine only ever reads the active subset; Upsert exists for
// the catalog seeding tooling.
type AllergenRepository interface {
	// GetActive returns all active allergens in catalog order (by name).
	GetActive(ctx context.Context) ([]*models.Allergen, error)
	Upsert(ctx context.Context, allergen *models.Allergen) error
}

type allergenRepository struct {
	db *database.DB
}

// NewAllergenRepository creates a new AllergenRepository.
func NewAllergenRepository(db *database.DB) AllergenRepository {
	return &allergenRepository{db: db}
}

var _ AllergenRepository = (*allergenRepository)(nil)

func (r *allergenRepository) GetActive(ctx context.Context) ([]*models.Allergen, error) {
	query := `
		SELECT id, name, icon, severity, keywords, active, created_at, updated_at
		FROM engine_allergens
		WHERE active
		ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active allergens: %w", err)
	}
	defer rows.Close()

	var allergens []*models.Allergen
	for rows.Next() {
		allergen, err := scanAllergen(rows)
		if err != nil {
			return nil, err
		}
		allergens = append(allergens, allergen)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allergens: %w", err)
	}

	return allergens, nil
}

func (r *allergenRepository) Upsert(ctx context.Context, allergen *models.Allergen) error {
	now := time.Now()

	query := `
		INSERT INTO engine_allergens (name, icon, severity, keywords, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (name) DO UPDATE
		SET icon = EXCLUDED.icon, severity = EXCLUDED.severity,
		    keywords = EXCLUDED.keywords, active = EXCLUDED.active,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		allergen.Name,
		nullString(allergen.Icon),
		allergen.Severity.String(),
		jsonbStrings(allergen.Keywords),
		allergen.Active,
		now,
	).Scan(&allergen.ID, &allergen.CreatedAt, &allergen.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert allergen %q: %w", allergen.Name, err)
	}

	return nil
}

// ============================================================================
// Helper Functions
// ============================================================================

func scanAllergen(row pgx.Row) (*models.Allergen, error) {
	var a models.Allergen
	var icon *string
	var severity string
	var keywords []byte

	err := row.Scan(
		&a.ID,
		&a.Name,
		&icon,
		&severity,
		&keywords,
		&a.Active,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan allergen: %w", err)
	}

	if icon != nil {
		a.Icon = *icon
	}

	tier, err := models.ParseSeverityTier(severity)
	if err != nil {
		return nil, fmt.Errorf("allergen %q: %w", a.Name, err)
	}
	a.Severity = tier

	// Keywords are stored as JSONB and parsed exactly once here; matching
	// works off the typed slice.
	if len(keywords) > 0 && string(keywords) != "null" {
		if err := json.Unmarshal(keywords, &a.Keywords); err != nil {
			return nil, fmt.Errorf("failed to unmarshal keywords for allergen %q: %w", a.Name, err)
		}
	}

	return &a, nil
}

// nullString returns nil if the string is empty, otherwise returns the string pointer.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// jsonbStrings converts a string slice to JSONB format for database insertion.
// Returns nil for empty slices to store NULL in the database.
func jsonbStrings(values []string) any {
	if len(values) == 0 {
		return nil
	}
	return values
}
