package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ceylonharvest/spicetrade-backend/pkg/db/models"
	pkgerrors "github.com/ceylonharvest/spicetrade-backend/pkg/errors"
)

// Repository exposes read access to the spice catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Spice, error)
	FindByName(ctx context.Context, name string) (*models.Spice, error)
	FindByNames(ctx context.Context, names []string) ([]models.Spice, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Spice, error) {
	var spice models.Spice
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&spice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "spice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load spice")
	}
	return &spice, nil
}

func (r *repository) FindByName(ctx context.Context, name string) (*models.Spice, error) {
	var spice models.Spice
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&spice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "spice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load spice")
	}
	return &spice, nil
}

func (r *repository) FindByNames(ctx context.Context, names []string) ([]models.Spice, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var spices []models.Spice
	err := r.db.WithContext(ctx).
		Where("name IN ?", names).
		Order("name ASC").
		Find(&spices).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load spices")
	}
	return spices, nil
}
