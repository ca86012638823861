package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/ceylonharvest/spicetrade-backend/pkg/db/models"
	"github.com/ceylonharvest/spicetrade-backend/pkg/enums"
	pkgerrors "github.com/ceylonharvest/spicetrade-backend/pkg/errors"
	"github.com/ceylonharvest/spicetrade-backend/pkg/metrics"
	"github.com/google/uuid"
)

// UnitsPerKilogram converts an ordered kilogram to retail packaging units.
const UnitsPerKilogram = 10

// ItemChange describes one order line item before and after a mutation.
// A brand-new item carries OldQuantityKg zero.
type ItemChange struct {
	SpiceID       uuid.UUID
	SpiceName     string
	OldQuantityKg int
	NewQuantityKg int
}

// Result reports how one positive reduction landed on stock. Callers decide
// what a shortfall means; the reconciler never blocks on it.
type Result struct {
	SpiceID        uuid.UUID
	SpiceName      string
	ReductionKg    int
	RequestedUnits int
	ConsumedUnits  int
	ShortfallUnits int
}

// Short reports whether packaged stock ran out before the reduction was met.
func (r Result) Short() bool {
	return r.ShortfallUnits > 0
}

// Reconciler cascades order item changes into packaged-batch consumption and
// raw-stock decrements. Each reduction is journaled as an adjustment intent
// before any stock row is touched; the cascade itself is deliberately not
// wrapped in a transaction.
type Reconciler struct {
	repo    Repository
	metrics *metrics.Registry
}

// NewReconciler builds the reconciler with its required dependencies.
func NewReconciler(repo Repository, m *metrics.Registry) (*Reconciler, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &Reconciler{repo: repo, metrics: m}, nil
}

// Apply computes the reduction for every change and consumes stock for the
// positive ones. Decreases never restock; untouched items contribute nothing.
func (s *Reconciler) Apply(ctx context.Context, orderID uuid.UUID, changes []ItemChange) ([]Result, error) {
	results := make([]Result, 0, len(changes))
	for _, change := range changes {
		reduction := change.NewQuantityKg - change.OldQuantityKg
		if reduction <= 0 {
			continue
		}

		adjustment := &models.InventoryAdjustment{
			ID:         uuid.New(),
			OrderID:    orderID,
			SpiceID:    change.SpiceID,
			SpiceName:  change.SpiceName,
			QuantityKg: reduction,
			Units:      reduction * UnitsPerKilogram,
			Status:     enums.AdjustmentStatusPending,
		}
		if err := s.repo.CreateAdjustment(ctx, adjustment); err != nil {
			return results, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "journal inventory adjustment")
		}

		result, err := s.applyAdjustment(ctx, adjustment)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// Resume finishes a previously journaled adjustment, picking up from the
// consumed-units watermark. Used by the sweep job after a crash.
func (s *Reconciler) Resume(ctx context.Context, adjustment *models.InventoryAdjustment) (Result, error) {
	if adjustment == nil {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "adjustment required")
	}
	return s.applyAdjustment(ctx, adjustment)
}

func (s *Reconciler) applyAdjustment(ctx context.Context, adjustment *models.InventoryAdjustment) (Result, error) {
	result := Result{
		SpiceID:        adjustment.SpiceID,
		SpiceName:      adjustment.SpiceName,
		ReductionKg:    adjustment.QuantityKg,
		RequestedUnits: adjustment.Units,
		ConsumedUnits:  adjustment.ConsumedUnits,
	}

	remaining := adjustment.Units - adjustment.ConsumedUnits
	if remaining > 0 {
		batches, err := s.repo.FindBatchesBySpice(ctx, adjustment.SpiceID)
		if err != nil {
			return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load packaged batches")
		}

		for _, batch := range batches {
			if remaining == 0 {
				break
			}
			take := batch.Quantity
			if take > remaining {
				take = remaining
			}
			if err := s.repo.UpdateBatchQuantity(ctx, batch.ID, batch.Quantity-take); err != nil {
				return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume packaged batch")
			}
			remaining -= take
			result.ConsumedUnits += take
			if err := s.repo.UpdateAdjustment(ctx, adjustment.ID, map[string]any{
				"consumed_units": result.ConsumedUnits,
			}); err != nil {
				return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance adjustment watermark")
			}
		}
	}
	result.ShortfallUnits = remaining

	// Raw stock always drops by the full kilograms, even when batches ran dry.
	if !adjustment.RawApplied {
		if err := s.repo.DecrementRawStock(ctx, adjustment.SpiceID, adjustment.QuantityKg); err != nil {
			return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement raw stock")
		}
		if err := s.repo.UpdateAdjustment(ctx, adjustment.ID, map[string]any{
			"raw_applied": true,
		}); err != nil {
			return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record raw decrement")
		}
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateAdjustment(ctx, adjustment.ID, map[string]any{
		"status":          enums.AdjustmentStatusApplied,
		"shortfall_units": result.ShortfallUnits,
		"applied_at":      &now,
	}); err != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize adjustment")
	}

	if result.Short() {
		s.metrics.IncShortfall(adjustment.SpiceName)
	}
	return result, nil
}
