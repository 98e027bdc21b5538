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

// AuditRepository provides data access for gate decision audit entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *models.GateAuditEntry) error
	GetRecent(ctx context.Context, limit int) ([]*models.GateAuditEntry, error)
}

type auditRepository struct {
	db *database.DB
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *database.DB) AuditRepository {
	return &auditRepository{db: db}
}

var _ AuditRepository = (*auditRepository)(nil)

func (r *auditRepository) Create(ctx context.Context, entry *models.GateAuditEntry) error {
	now := time.Now()

	query := `
		INSERT INTO engine_gate_audit (
			outcome, max_severity, item_count, products, message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	var products any
	if len(entry.Products) > 0 {
		products = entry.Products
	}

	err := r.db.QueryRow(ctx, query,
		string(entry.Outcome),
		entry.MaxSeverity.String(),
		entry.ItemCount,
		products,
		entry.Message,
		now,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create gate audit entry: %w", err)
	}

	return nil
}

func (r *auditRepository) GetRecent(ctx context.Context, limit int) ([]*models.GateAuditEntry, error) {
	query := `
		SELECT id, outcome, max_severity, item_count, products, message, created_at
		FROM engine_gate_audit
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query gate audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.GateAuditEntry
	for rows.Next() {
		entry, err := scanGateAuditEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating gate audit entries: %w", err)
	}

	return entries, nil
}

func scanGateAuditEntry(row pgx.Row) (*models.GateAuditEntry, error) {
	var e models.GateAuditEntry
	var outcome, severity string
	var products []byte

	err := row.Scan(
		&e.ID,
		&outcome,
		&severity,
		&e.ItemCount,
		&products,
		&e.Message,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan gate audit entry: %w", err)
	}

	e.Outcome = models.GateOutcome(outcome)

	tier, err := models.ParseSeverityTier(severity)
	if err != nil {
		return nil, fmt.Errorf("gate audit entry %s: %w", e.ID, err)
	}
	e.MaxSeverity = tier

	if len(products) > 0 && string(products) != "null" {
		if err := json.Unmarshal(products, &e.Products); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit products: %w", err)
		}
	}

	return &e, nil
}
