package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ceylonharvest/spicetrade-backend/internal/catalog"
	"github.com/ceylonharvest/spicetrade-backend/internal/inventory"
	"github.com/ceylonharvest/spicetrade-backend/pkg/db/models"
	"github.com/ceylonharvest/spicetrade-backend/pkg/enums"
	pkgerrors "github.com/ceylonharvest/spicetrade-backend/pkg/errors"
	"github.com/ceylonharvest/spicetrade-backend/pkg/logger"
	"github.com/ceylonharvest/spicetrade-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stockReconciler interface {
	Apply(ctx context.Context, orderID uuid.UUID, changes []inventory.ItemChange) ([]inventory.Result, error)
}

type ServiceParams struct {
	Repo       Repository
	Catalog    catalog.Repository
	Tx         txRunner
	Reconciler stockReconciler
	Logger     *logger.Logger
}

// Service owns the cart-style order aggregate and its status lifecycle.
type Service struct {
	repo       Repository
	catalog    catalog.Repository
	tx         txRunner
	reconciler stockReconciler
	logg       *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders: repo is required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("orders: catalog repo is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("orders: tx runner is required")
	}
	if params.Reconciler == nil {
		return nil, fmt.Errorf("orders: reconciler is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("orders: logger is required")
	}
	return &Service{
		repo:       params.Repo,
		catalog:    params.Catalog,
		tx:         params.Tx,
		reconciler: params.Reconciler,
		logg:       params.Logger,
	}, nil
}

type AddItemInput struct {
	CustomerID uuid.UUID
	SpiceID    uuid.UUID
	QuantityKg int
	UnitPrice  decimal.Decimal
}

// AddOrUpdateItem merges a spice into the customer's single pending local
// order, creating the order if none exists. After the commit the inventory
// cascade runs outside the transaction; a cascade failure never rolls the
// order back.
func (s *Service) AddOrUpdateItem(ctx context.Context, input AddItemInput) (*models.Order, error) {
	if input.QuantityKg < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1 kg")
	}
	if input.UnitPrice.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must be positive")
	}

	spice, err := s.catalog.FindByID(ctx, input.SpiceID)
	if err != nil {
		return nil, err
	}

	var (
		order  *models.Order
		change inventory.ItemChange
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindPendingLocalOrder(ctx, input.CustomerID)
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			order = &models.Order{
				CustomerID: input.CustomerID,
				Type:       enums.OrderTypeLocal,
				Status:     enums.OrderStatusPending,
				TotalPrice: input.UnitPrice.Mul(decimal.NewFromInt(int64(input.QuantityKg))),
				Items: []models.OrderItem{{
					SpiceID:    spice.ID,
					SpiceName:  spice.Name,
					QuantityKg: input.QuantityKg,
					UnitPrice:  input.UnitPrice,
				}},
			}
			change = inventory.ItemChange{
				SpiceID:       spice.ID,
				SpiceName:     spice.Name,
				OldQuantityKg: 0,
				NewQuantityKg: input.QuantityKg,
			}
			return repo.CreateOrder(ctx, order)
		}
		if err != nil {
			return err
		}

		merged := false
		for i := range existing.Items {
			item := &existing.Items[i]
			if item.SpiceID != spice.ID {
				continue
			}
			change = inventory.ItemChange{
				SpiceID:       spice.ID,
				SpiceName:     spice.Name,
				OldQuantityKg: item.QuantityKg,
				NewQuantityKg: item.QuantityKg + input.QuantityKg,
			}
			item.QuantityKg += input.QuantityKg
			item.UnitPrice = input.UnitPrice
			if err := repo.UpdateItem(ctx, item.ID, map[string]any{
				"quantity_kg": item.QuantityKg,
				"unit_price":  item.UnitPrice,
			}); err != nil {
				return err
			}
			merged = true
			break
		}
		if !merged {
			item := models.OrderItem{
				OrderID:    existing.ID,
				SpiceID:    spice.ID,
				SpiceName:  spice.Name,
				QuantityKg: input.QuantityKg,
				UnitPrice:  input.UnitPrice,
			}
			if err := repo.CreateItem(ctx, &item); err != nil {
				return err
			}
			existing.Items = append(existing.Items, item)
			change = inventory.ItemChange{
				SpiceID:       spice.ID,
				SpiceName:     spice.Name,
				OldQuantityKg: 0,
				NewQuantityKg: input.QuantityKg,
			}
		}

		existing.TotalPrice = itemsTotal(existing.Items)
		if err := repo.UpdateOrder(ctx, existing.ID, map[string]any{
			"total_price": existing.TotalPrice,
		}); err != nil {
			return err
		}
		order = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.applyStockCascade(ctx, order.ID, []inventory.ItemChange{change})
	return order, nil
}

// applyStockCascade runs the inventory reduction after the order write has
// committed. Failures and shortfalls are logged, never surfaced to the caller.
func (s *Service) applyStockCascade(ctx context.Context, orderID uuid.UUID, changes []inventory.ItemChange) {
	ctx = s.logg.WithOrderID(ctx, orderID.String())
	results, err := s.reconciler.Apply(ctx, orderID, changes)
	if err != nil {
		s.logg.Error(ctx, "inventory cascade failed", err)
	}
	for _, res := range results {
		if res.Short() {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"spice":           res.SpiceName,
				"shortfall_units": res.ShortfallUnits,
			}), "packaged stock exhausted during order reduction")
		}
	}
}

// DeleteItem removes one line item from the customer's pending order. Removing
// the last item deletes the order itself. Consumed stock is not restored.
func (s *Service) DeleteItem(ctx context.Context, customerID, orderID, itemID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if err := s.guardPendingOwner(order, customerID); err != nil {
			return err
		}

		var remaining []models.OrderItem
		found := false
		for _, item := range order.Items {
			if item.ID == itemID {
				found = true
				continue
			}
			remaining = append(remaining, item)
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
		}

		if len(remaining) == 0 {
			return repo.DeleteOrder(ctx, order.ID)
		}
		if err := repo.DeleteItem(ctx, itemID); err != nil {
			return err
		}
		return repo.UpdateOrder(ctx, order.ID, map[string]any{
			"total_price": itemsTotal(remaining),
		})
	})
}

// DeleteOrder removes a whole pending order. Consumed stock is not restored.
func (s *Service) DeleteOrder(ctx context.Context, customerID, orderID uuid.UUID) error {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if err := s.guardPendingOwner(order, customerID); err != nil {
		return err
	}
	return s.repo.DeleteOrder(ctx, order.ID)
}

// ClearCart drops the customer's pending local order if one exists.
func (s *Service) ClearCart(ctx context.Context, customerID uuid.UUID) error {
	order, err := s.repo.FindPendingLocalOrder(ctx, customerID)
	if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	return s.repo.DeleteOrder(ctx, order.ID)
}

// Pending returns the customer's single open local order.
func (s *Service) Pending(ctx context.Context, customerID uuid.UUID) (*models.Order, error) {
	return s.repo.FindPendingLocalOrder(ctx, customerID)
}

// History lists the customer's orders except the open cart, newest first.
func (s *Service) History(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {
	return s.repo.ListHistory(ctx, customerID)
}

// Get loads one order and enforces ownership for customer callers.
func (s *Service) Get(ctx context.Context, actor enums.Actor, customerID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actor == enums.ActorCustomer && order.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
	}
	return order, nil
}

// Sales is the staff listing across all customers, cursor-paged.
func (s *Service) Sales(ctx context.Context, params pagination.Params, filters SalesFilters) (*SalesList, error) {
	if filters.Type != "" && !filters.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order type filter")
	}
	return s.repo.ListSales(ctx, params, filters)
}

// UpdateStatus moves an order through the lifecycle, rejecting any move the
// transition table does not allow for the acting role.
func (s *Service) UpdateStatus(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus, actor enums.Actor) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if err := Transition(existing.Status, to, actor); err != nil {
			return err
		}
		if err := repo.UpdateOrder(ctx, existing.ID, map[string]any{
			"status": to,
		}); err != nil {
			return err
		}
		existing.Status = to
		order = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) guardPendingOwner(order *models.Order, customerID uuid.UUID) error {
	if order.CustomerID != customerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
	}
	if order.Status != enums.OrderStatusPending {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is no longer pending")
	}
	return nil
}

func itemsTotal(items []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.QuantityKg))))
	}
	return total
}
