package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kiosco-inc/kiosco-engine/pkg/models"
)

// catalogCacheKey holds the JSON-encoded active allergen list.
const catalogCacheKey = "kiosco:catalog:active"

// cachedAllergenRepository is a read-through cache over an
// AllergenRepository. The catalog is read on every sale but edited rarely,
// so the whole active list is kept under a single key with a short TTL.
// Cache failures degrade to direct reads: a safety check must never be
// blocked on Redis.
type cachedAllergenRepository struct {
	inner  AllergenRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedAllergenRepository wraps repo with a Redis read-through cache.
// If client is nil the repo is returned unwrapped.
func NewCachedAllergenRepository(repo AllergenRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) AllergenRepository {
	if client == nil {
		return repo
	}
	return &cachedAllergenRepository{
		inner:  repo,
		client: client,
		ttl:    ttl,
		logger: logger.Named("catalog-cache"),
	}
}

var _ AllergenRepository = (*cachedAllergenRepository)(nil)

func (r *cachedAllergenRepository) GetActive(ctx context.Context) ([]*models.Allergen, error) {
	payload, err := r.client.Get(ctx, catalogCacheKey).Bytes()
	if err == nil {
		var allergens []*models.Allergen
		if err := json.Unmarshal(payload, &allergens); err == nil {
			return allergens, nil
		}
		// Undecodable payload: drop it and fall through to Postgres.
		r.logger.Warn("Dropping undecodable catalog cache entry")
		r.client.Del(ctx, catalogCacheKey)
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("Catalog cache read failed, falling back to database", zap.Error(err))
	}

	allergens, err := r.inner.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(allergens); err == nil {
		if err := r.client.Set(ctx, catalogCacheKey, encoded, r.ttl).Err(); err != nil {
			r.logger.Warn("Catalog cache write failed", zap.Error(err))
		}
	}

	return allergens, nil
}

// Upsert writes through to the database and invalidates the cached list so
// catalog edits are visible on the next sale, not after TTL expiry.
func (r *cachedAllergenRepository) Upsert(ctx context.Context, allergen *models.Allergen) error {
	if err := r.inner.Upsert(ctx, allergen); err != nil {
		return err
	}

	if err := r.client.Del(ctx, catalogCacheKey).Err(); err != nil {
		return fmt.Errorf("allergen saved but cache invalidation failed: %w", err)
	}

	return nil
}
