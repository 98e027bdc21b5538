package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kiosco-inc/kiosco-engine/pkg/apperrors"
	"github.com/kiosco-inc/kiosco-engine/pkg/database"
	"github.com/kiosco-inc/kiosco-engine/pkg/models"
)

// AssociationRepository provides data access for explicit product↔allergen
// associations.
type AssociationRepository interface {
	// GetByProduct returns all associations for a product, in catalog order
	// (by allergen name).
	GetByProduct(ctx context.Context, productID uuid.UUID) ([]*models.ProductAllergenAssociation, error)
	// Upsert records an association. At most one row exists per
	// (product, allergen) pair; re-recording overwrites presence and
	// observation.
	Upsert(ctx context.Context, assoc *models.ProductAllergenAssociation) error
	Delete(ctx context.Context, productID, allergenID uuid.UUID) error
}

type associationRepository struct {
	db *database.DB
}

// NewAssociationRepository creates a new AssociationRepository.
func NewAssociationRepository(db *database.DB) AssociationRepository {
	return &associationRepository{db: db}
}

var _ AssociationRepository = (*associationRepository)(nil)

func (r *associationRepository) GetByProduct(ctx context.Context, productID uuid.UUID) ([]*models.ProductAllergenAssociation, error) {
	query := `
		SELECT pa.id, pa.product_id, pa.allergen_id, pa.presence,
		       pa.observation, pa.recorded_by, pa.created_at, pa.updated_at
		FROM engine_product_allergens pa
		JOIN engine_allergens a ON a.id = pa.allergen_id
		WHERE pa.product_id = $1
		ORDER BY a.name`

	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query product associations: %w", err)
	}
	defer rows.Close()

	var assocs []*models.ProductAllergenAssociation
	for rows.Next() {
		assoc, err := scanAssociation(rows)
		if err != nil {
			return nil, err
		}
		assocs = append(assocs, assoc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product associations: %w", err)
	}

	return assocs, nil
}

func (r *associationRepository) Upsert(ctx context.Context, assoc *models.ProductAllergenAssociation) error {
	if assoc.Presence != models.PresenceContains && assoc.Presence != models.PresenceTraces {
		return fmt.Errorf("%w: unknown presence kind %q", apperrors.ErrInvalidInput, assoc.Presence)
	}

	now := time.Now()

	query := `
		INSERT INTO engine_product_allergens (
			product_id, allergen_id, presence, observation, recorded_by,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (product_id, allergen_id) DO UPDATE
		SET presence = EXCLUDED.presence, observation = EXCLUDED.observation,
		    recorded_by = EXCLUDED.recorded_by, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		assoc.ProductID,
		assoc.AllergenID,
		assoc.Presence,
		nullString(assoc.Observation),
		nullString(assoc.RecordedBy),
		now,
	).Scan(&assoc.ID, &assoc.CreatedAt, &assoc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert association: %w", err)
	}

	return nil
}

func (r *associationRepository) Delete(ctx context.Context, productID, allergenID uuid.UUID) error {
	query := `DELETE FROM engine_product_allergens WHERE product_id = $1 AND allergen_id = $2`

	result, err := r.db.Exec(ctx, query, productID, allergenID)
	if err != nil {
		return fmt.Errorf("failed to delete association: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func scanAssociation(row pgx.Row) (*models.ProductAllergenAssociation, error) {
	var a models.ProductAllergenAssociation
	var observation, recordedBy *string

	err := row.Scan(
		&a.ID,
		&a.ProductID,
		&a.AllergenID,
		&a.Presence,
		&observation,
		&recordedBy,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan association: %w", err)
	}

	if observation != nil {
		a.Observation = *observation
	}
	if recordedBy != nil {
		a.RecordedBy = *recordedBy
	}

	return &a, nil
}
