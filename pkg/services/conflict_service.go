package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kiosco-inc/kiosco-engine/pkg/apperrors"
	"github.com/kiosco-inc/kiosco-engine/pkg/logging"
	"github.com/kiosco-inc/kiosco-engine/pkg/matching"
	"github.com/kiosco-inc/kiosco-engine/pkg/models"
	"github.com/kiosco-inc/kiosco-engine/pkg/repositories"
)

// summaryNameLimit is how many allergen names a multi-conflict summary lists
// before truncating with a count suffix.
const summaryNameLimit = 3

// ConflictService analyzes products and carts against a student's free-text
// dietary restriction description.
//
// Business conditions (missing product, blank restriction text, empty
// catalog) are always represented as result states, never as errors. An
// error from either method wraps apperrors.ErrDataSourceUnavailable and
// means the safety check could not be performed at all; callers must not
// treat it as "no conflict".
type ConflictService interface {
	AnalyzeProduct(ctx context.Context, productID uuid.UUID, restrictionText string) (*models.ProductConflictResult, error)
	AnalyzeCart(ctx context.Context, items []models.CartItem, restrictionText string) (*models.CartConflictResult, error)
}

type conflictService struct {
	allergens    repositories.AllergenRepository
	associations repositories.AssociationRepository
	products     repositories.ProductRepository
	maxParallel  int
	logger       *zap.Logger
}

// NewConflictService creates a new ConflictService. maxParallel caps the
// per-item fan-out during a cart scan; values below 1 fall back to serial
// analysis.
func NewConflictService(
	allergens repositories.AllergenRepository,
	associations repositories.AssociationRepository,
	products repositories.ProductRepository,
	maxParallel int,
	logger *zap.Logger,
) ConflictService {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &conflictService{
		allergens:    allergens,
		associations: associations,
		products:     products,
		maxParallel:  maxParallel,
		logger:       logger.Named("conflict-service"),
	}
}

var _ ConflictService = (*conflictService)(nil)

func (s *conflictService) AnalyzeProduct(ctx context.Context, productID uuid.UUID, restrictionText string) (*models.ProductConflictResult, error) {
	result := &models.ProductConflictResult{
		ProductID: productID,
		Sellable:  true,
	}

	if strings.TrimSpace(restrictionText) == "" {
		result.Summary = "no dietary restrictions declared"
		return result, nil
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Soft fail: an unknown product must not halt an otherwise
			// valid cart scan.
			result.Summary = "product not found"
			return result, nil
		}
		return nil, unavailable("load product", err)
	}

	catalog, err := s.allergens.GetActive(ctx)
	if err != nil {
		return nil, unavailable("load allergen catalog", err)
	}

	associations, err := s.associations.GetByProduct(ctx, productID)
	if err != nil {
		return nil, unavailable("load product associations", err)
	}

	byID := make(map[uuid.UUID]*models.Allergen, len(catalog))
	for _, allergen := range catalog {
		byID[allergen.ID] = allergen
	}

	matched := make(map[uuid.UUID]bool)

	// Pass 1: curated associations whose allergen name appears in the
	// restriction text.
	for _, assoc := range associations {
		allergen, ok := byID[assoc.AllergenID]
		if !ok {
			// Inactive or deleted allergen: excluded from matching.
			continue
		}
		if !matching.Contains(restrictionText, allergen.Name) {
			continue
		}

		confidence := models.ConfidenceContains
		if assoc.Presence == models.PresenceTraces {
			confidence = models.ConfidenceTraces
		}

		result.Matches = append(result.Matches, models.ConflictMatch{
			AllergenID:   allergen.ID,
			AllergenName: allergen.Name,
			Icon:         allergen.Icon,
			Label:        models.PresenceLabel(assoc.Presence),
			Severity:     allergen.Severity,
			Confidence:   confidence,
			Origin:       models.OriginDirectAssociation,
		})
		matched[allergen.ID] = true
	}

	// Pass 2: keyword inference over the whole catalog. A keyword counts
	// only when it appears in both the restriction text and the product
	// description. First keyword wins; one match per allergen.
	for _, allergen := range catalog {
		if matched[allergen.ID] {
			continue
		}
		for _, keyword := range allergen.Keywords {
			if !matching.Contains(restrictionText, keyword) || !matching.Contains(product.Description, keyword) {
				continue
			}
			result.Matches = append(result.Matches, models.ConflictMatch{
				AllergenID:   allergen.ID,
				AllergenName: allergen.Name,
				Icon:         allergen.Icon,
				Label:        fmt.Sprintf("description mentions %q", keyword),
				Severity:     allergen.Severity,
				Confidence:   models.ConfidenceInferred,
				Origin:       models.OriginKeywordInference,
			})
			matched[allergen.ID] = true
			break
		}
	}

	// Highest confidence first; stable so ties keep catalog order.
	sort.SliceStable(result.Matches, func(i, j int) bool {
		return result.Matches[i].Confidence > result.Matches[j].Confidence
	})

	if len(result.Matches) == 0 {
		result.Summary = "no conflicts detected"
		return result, nil
	}

	result.Conflict = true
	for _, match := range result.Matches {
		result.MaxSeverity = matching.MaxSeverity(result.MaxSeverity, match.Severity)
	}
	result.Sellable = result.MaxSeverity != models.SeverityCritical
	result.Summary = summarize(result.Matches)

	s.logger.Debug("Product conflict detected",
		zap.String("product_id", productID.String()),
		zap.String("max_severity", result.MaxSeverity.String()),
		zap.Int("matches", len(result.Matches)),
		zap.String("restriction", logging.SanitizeRestriction(restrictionText)))

	return result, nil
}

func (s *conflictService) AnalyzeCart(ctx context.Context, items []models.CartItem, restrictionText string) (*models.CartConflictResult, error) {
	for i, item := range items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %d has non-positive quantity %d", apperrors.ErrInvalidInput, i, item.Quantity)
		}
	}

	result := &models.CartConflictResult{SafeCount: len(items)}
	if len(items) == 0 || strings.TrimSpace(restrictionText) == "" {
		return result, nil
	}

	// Fan out per item; each analysis is independent and read-only. Results
	// land in their input slot so the per-product list keeps cart order.
	perItem := make([]*models.ProductConflictResult, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)

	for i, item := range items {
		g.Go(func() error {
			itemResult, err := s.AnalyzeProduct(gctx, item.ProductID, restrictionText)
			if err != nil {
				return err
			}
			perItem[i] = itemResult
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("cart scan aborted: %w", err)
	}

	result.SafeCount = 0
	for _, itemResult := range perItem {
		if !itemResult.Conflict {
			result.SafeCount++
			continue
		}
		result.Conflict = true
		result.Products = append(result.Products, *itemResult)
		result.MaxSeverity = matching.MaxSeverity(result.MaxSeverity, itemResult.MaxSeverity)
	}

	return result, nil
}

// summarize builds the human-readable summary for a set of matches, highest
// confidence first.
func summarize(matches []models.ConflictMatch) string {
	if len(matches) == 1 {
		m := matches[0]
		if m.Icon != "" {
			return fmt.Sprintf("%s %s: %s", m.Icon, m.AllergenName, m.Label)
		}
		return fmt.Sprintf("%s: %s", m.AllergenName, m.Label)
	}

	names := make([]string, 0, summaryNameLimit)
	for i, m := range matches {
		if i == summaryNameLimit {
			break
		}
		names = append(names, m.AllergenName)
	}

	summary := fmt.Sprintf("%d conflicts: %s", len(matches), strings.Join(names, ", "))
	if extra := len(matches) - summaryNameLimit; extra > 0 {
		summary += fmt.Sprintf(" (+%d more)", extra)
	}
	return summary
}

// unavailable tags an infrastructure failure so callers can tell "cannot
// determine safety" apart from a legitimate no-conflict result.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(apperrors.ErrDataSourceUnavailable, err))
}
