package inventory

import (
	"context"
	"time"

	"github.com/ceylonharvest/spicetrade-backend/pkg/db/models"
	"github.com/ceylonharvest/spicetrade-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes the stock and adjustment-intent writes the reconciler needs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindBatchesBySpice(ctx context.Context, spiceID uuid.UUID) ([]models.PackagedProduct, error)
	UpdateBatchQuantity(ctx context.Context, batchID uuid.UUID, quantity int) error
	DecrementRawStock(ctx context.Context, spiceID uuid.UUID, kg int) error
	CreateAdjustment(ctx context.Context, adjustment *models.InventoryAdjustment) error
	UpdateAdjustment(ctx context.Context, adjustmentID uuid.UUID, updates map[string]any) error
	ListPendingAdjustments(ctx context.Context, olderThan time.Time) ([]models.InventoryAdjustment, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindBatchesBySpice returns packaged batches ordered ascending by remaining
// quantity so consumption drains the smallest batches first.
func (r *repository) FindBatchesBySpice(ctx context.Context, spiceID uuid.UUID) ([]models.PackagedProduct, error) {
	var batches []models.PackagedProduct
	err := r.db.WithContext(ctx).
		Where("spice_id = ? AND quantity > 0", spiceID).
		Order("quantity ASC").
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	return batches, nil
}

func (r *repository) UpdateBatchQuantity(ctx context.Context, batchID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.PackagedProduct{}).
		Where("id = ?", batchID).
		Update("quantity", quantity).Error
}

func (r *repository) DecrementRawStock(ctx context.Context, spiceID uuid.UUID, kg int) error {
	return r.db.WithContext(ctx).
		Model(&models.Spice{}).
		Where("id = ?", spiceID).
		Update("current_stock_kg", gorm.Expr("current_stock_kg - ?", kg)).Error
}

func (r *repository) CreateAdjustment(ctx context.Context, adjustment *models.InventoryAdjustment) error {
	return r.db.WithContext(ctx).Create(adjustment).Error
}

func (r *repository) UpdateAdjustment(ctx context.Context, adjustmentID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.InventoryAdjustment{}).
		Where("id = ?", adjustmentID).
		Updates(updates).Error
}

func (r *repository) ListPendingAdjustments(ctx context.Context, olderThan time.Time) ([]models.InventoryAdjustment, error) {
	var adjustments []models.InventoryAdjustment
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.AdjustmentStatusPending, olderThan).
		Order("created_at ASC").
		Find(&adjustments).Error
	if err != nil {
		return nil, err
	}
	return adjustments, nil
}
