package quotations

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ceylonharvest/spicetrade-backend/internal/catalog"
	"github.com/ceylonharvest/spicetrade-backend/internal/orders"
	"github.com/ceylonharvest/spicetrade-backend/pkg/db/models"
	"github.com/ceylonharvest/spicetrade-backend/pkg/enums"
	pkgerrors "github.com/ceylonharvest/spicetrade-backend/pkg/errors"
	"github.com/ceylonharvest/spicetrade-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	Repo    Repository
	Orders  orders.Repository
	Catalog catalog.Repository
	Tx      txRunner
	Logger  *logger.Logger
}

// Service bridges customer quotation requests and the global order channel.
type Service struct {
	repo    Repository
	orders  orders.Repository
	catalog catalog.Repository
	tx      txRunner
	logg    *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("quotations: repo is required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("quotations: orders repo is required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("quotations: catalog repo is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("quotations: tx runner is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("quotations: logger is required")
	}
	return &Service{
		repo:    params.Repo,
		orders:  params.Orders,
		catalog: params.Catalog,
		tx:      params.Tx,
		logg:    params.Logger,
	}, nil
}

type SubmitInput struct {
	CustomerID         uuid.UUID
	CompanyName        string
	ContactName        string
	ContactEmail       string
	ContactPhone       string
	Country            string
	DeliveryWindow     string
	InterestedSpices   []string
	RequiredQuantityKg int
}

// Submit creates the global order and its paired quotation, both in status
// requested. The order total is a provisional catalog sum; staff overwrite it
// at quoting time. The two writes are sequential, not transactional: a crash
// in between leaves an order without a quotation.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*models.Quotation, error) {
	if input.RequiredQuantityKg < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "required quantity must be at least 1 kg")
	}
	if len(input.InterestedSpices) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one spice is required")
	}

	names := make([]string, 0, len(input.InterestedSpices))
	seen := make(map[string]struct{}, len(input.InterestedSpices))
	for _, name := range input.InterestedSpices {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	spices, err := s.catalog.FindByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	if len(spices) != len(names) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "one or more spices are not in the catalog")
	}

	quantity := decimal.NewFromInt(int64(input.RequiredQuantityKg))
	provisional := decimal.Zero
	items := make([]models.OrderItem, 0, len(spices))
	for _, spice := range spices {
		provisional = provisional.Add(spice.PricePerKg.Mul(quantity))
		items = append(items, models.OrderItem{
			SpiceID:    spice.ID,
			SpiceName:  spice.Name,
			QuantityKg: input.RequiredQuantityKg,
			UnitPrice:  spice.PricePerKg,
		})
	}

	order := &models.Order{
		CustomerID: input.CustomerID,
		Type:       enums.OrderTypeGlobal,
		Status:     enums.OrderStatusRequested,
		TotalPrice: provisional,
		Items:      items,
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	quotation := &models.Quotation{
		OrderID:            order.ID,
		CustomerID:         input.CustomerID,
		CompanyName:        input.CompanyName,
		ContactName:        input.ContactName,
		ContactEmail:       input.ContactEmail,
		ContactPhone:       input.ContactPhone,
		Country:            input.Country,
		DeliveryWindow:     input.DeliveryWindow,
		InterestedSpices:   names,
		RequiredQuantityKg: input.RequiredQuantityKg,
		Status:             enums.QuotationStatusRequested,
	}
	if err := s.repo.Create(ctx, quotation); err != nil {
		s.logg.Error(s.logg.WithOrderID(ctx, order.ID.String()),
			"quotation write failed after order creation, order is orphaned", err)
		return nil, err
	}
	return quotation, nil
}

// Get loads one quotation. Customers only see their own.
func (s *Service) Get(ctx context.Context, actor enums.Actor, customerID, id uuid.UUID) (*models.Quotation, error) {
	quotation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor == enums.ActorCustomer && quotation.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "quotation belongs to another customer")
	}
	return quotation, nil
}

// ListMine returns the customer's quotations, newest first.
func (s *Service) ListMine(ctx context.Context, customerID uuid.UUID) ([]models.Quotation, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// ListAll is the staff view across customers.
func (s *Service) ListAll(ctx context.Context) ([]models.Quotation, error) {
	return s.repo.List(ctx)
}

type StaffFieldsInput struct {
	ExportDuties       decimal.Decimal
	ShippingPartner    string
	PackagingMaterials string
	StaffNotes         string
	LocalBasePrice     decimal.Decimal
	TotalCost          decimal.Decimal
	PreferredCurrency  string
	ExchangeRate       decimal.Decimal
}

// UpdateStaffFields writes the staff pricing block and moves the pair to
// quoted: the order total becomes exactly TotalCost. Approved quotations are
// immutable; the call is rejected before anything is touched.
func (s *Service) UpdateStaffFields(ctx context.Context, id uuid.UUID, input StaffFieldsInput) (*models.Quotation, error) {
	if input.TotalCost.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total cost must be positive")
	}
	if input.ExchangeRate.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exchange rate must be positive")
	}
	if input.ExportDuties.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "export duties cannot be negative")
	}

	var quotation *models.Quotation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ordersRepo := s.orders.WithTx(tx)

		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if existing.Status == enums.QuotationStatusApproved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "approved quotations are immutable")
		}

		order, err := ordersRepo.FindOrder(ctx, existing.OrderID)
		if err != nil {
			return err
		}
		if err := orders.Transition(order.Status, enums.OrderStatusQuoted, enums.ActorStaff); err != nil {
			return err
		}

		if err := repo.Update(ctx, existing.ID, map[string]any{
			"export_duties":       input.ExportDuties,
			"shipping_partner":    input.ShippingPartner,
			"packaging_materials": input.PackagingMaterials,
			"staff_notes":         input.StaffNotes,
			"local_base_price":    input.LocalBasePrice,
			"total_cost":          input.TotalCost,
			"preferred_currency":  input.PreferredCurrency,
			"exchange_rate":       input.ExchangeRate,
			"status":              enums.QuotationStatusPending,
		}); err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := ordersRepo.UpdateOrder(ctx, order.ID, map[string]any{
			"total_price": input.TotalCost,
			"status":      enums.OrderStatusQuoted,
			"quoted_at":   &now,
		}); err != nil {
			return err
		}

		existing.ExportDuties = &input.ExportDuties
		existing.ShippingPartner = &input.ShippingPartner
		existing.PackagingMaterials = &input.PackagingMaterials
		existing.StaffNotes = &input.StaffNotes
		existing.LocalBasePrice = &input.LocalBasePrice
		existing.TotalCost = &input.TotalCost
		existing.PreferredCurrency = &input.PreferredCurrency
		existing.ExchangeRate = &input.ExchangeRate
		existing.Status = enums.QuotationStatusPending
		quotation = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quotation, nil
}

// Approve marks the quotation approved and resets the linked order to
// pending, opening it for payment.
func (s *Service) Approve(ctx context.Context, customerID, id uuid.UUID) (*models.Quotation, error) {
	var quotation *models.Quotation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ordersRepo := s.orders.WithTx(tx)

		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if existing.CustomerID != customerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "quotation belongs to another customer")
		}
		if existing.Status != enums.QuotationStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only staff-quoted quotations can be approved")
		}

		order, err := ordersRepo.FindOrder(ctx, existing.OrderID)
		if err != nil {
			return err
		}
		if err := orders.Transition(order.Status, enums.OrderStatusPending, enums.ActorCustomer); err != nil {
			return err
		}

		if err := repo.Update(ctx, existing.ID, map[string]any{
			"status": enums.QuotationStatusApproved,
		}); err != nil {
			return err
		}
		if err := ordersRepo.UpdateOrder(ctx, order.ID, map[string]any{
			"status": enums.OrderStatusPending,
		}); err != nil {
			return err
		}

		existing.Status = enums.QuotationStatusApproved
		quotation = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quotation, nil
}

// Reject deletes the quotation and cascades deletion of the linked order.
// Only the owning customer may reject, and only before approval.
func (s *Service) Reject(ctx context.Context, customerID, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ordersRepo := s.orders.WithTx(tx)

		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if existing.CustomerID != customerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "quotation belongs to another customer")
		}
		if existing.Status == enums.QuotationStatusApproved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "approved quotations cannot be rejected")
		}

		if err := repo.Delete(ctx, existing.ID); err != nil {
			return err
		}
		return ordersRepo.DeleteOrder(ctx, existing.OrderID)
	})
}
