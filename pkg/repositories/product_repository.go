package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kiosco-inc/kiosco-engine/pkg/apperrors"
	"github.com/kiosco-inc/kiosco-engine/pkg/database"
	"github.com/kiosco-inc/kiosco-engine/pkg/models"
)

// ProductRepository provides read access to the product store. Products are
// owned by the POS layer; the engine only consumes descriptions and
// barcodes.
type ProductRepository interface {
	// Get returns the product or apperrors.ErrNotFound if the identifier
	// does not resolve.
	Get(ctx context.Context, productID uuid.UUID) (*models.Product, error)
}

type productRepository struct {
	db *database.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *database.DB) ProductRepository {
	return &productRepository{db: db}
}

var _ ProductRepository = (*productRepository)(nil)

func (r *productRepository) Get(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	query := `
		SELECT id, description, barcode
		FROM engine_products
		WHERE id = $1`

	var p models.Product
	var barcode *string

	err := r.db.QueryRow(ctx, query, productID).Scan(&p.ID, &p.Description, &barcode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	if barcode != nil {
		p.Barcode = *barcode
	}

	return &p, nil
}
