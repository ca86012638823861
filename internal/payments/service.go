package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ceylonharvest/spicetrade-backend/internal/orders"
	"github.com/ceylonharvest/spicetrade-backend/pkg/db/models"
	"github.com/ceylonharvest/spicetrade-backend/pkg/enums"
	pkgerrors "github.com/ceylonharvest/spicetrade-backend/pkg/errors"
	"github.com/ceylonharvest/spicetrade-backend/pkg/gateway"
	"github.com/ceylonharvest/spicetrade-backend/pkg/logger"
)

type checkoutGateway interface {
	CreateCheckoutSession(ctx context.Context, input gateway.CheckoutSessionInput) (string, error)
}

type ServiceParams struct {
	Repo    Repository
	Orders  orders.Repository
	Gateway checkoutGateway
	Logger  *logger.Logger
}

// Service opens hosted checkout sessions for pending orders.
type Service struct {
	repo    Repository
	orders  orders.Repository
	gateway checkoutGateway
	logg    *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payments: repo is required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("payments: orders repo is required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payments: gateway is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("payments: logger is required")
	}
	return &Service{
		repo:    params.Repo,
		orders:  params.Orders,
		gateway: params.Gateway,
		logg:    params.Logger,
	}, nil
}

// CreateCheckoutSession opens a gateway session for the caller's pending
// order. The order id travels in session metadata so the webhook listener can
// correlate the completed payment back.
func (s *Service) CreateCheckoutSession(ctx context.Context, customerID, orderID uuid.UUID) (string, error) {
	order, err := s.orders.FindOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order.CustomerID != customerID {
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
	}
	if order.Status != enums.OrderStatusPending {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "only pending orders can be paid")
	}
	if order.TotalPrice.LessThanOrEqual(decimal.Zero) {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "order total must be positive")
	}

	sessionID, err := s.gateway.CreateCheckoutSession(ctx, gateway.CheckoutSessionInput{
		OrderID:     order.ID.String(),
		Description: fmt.Sprintf("Spice order %s", order.ID),
		Amount:      order.TotalPrice,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "gateway checkout session failed")
	}

	s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "checkout session created")
	return sessionID, nil
}

// History lists the customer's payment ledger entries.
func (s *Service) History(ctx context.Context, customerID uuid.UUID) ([]models.Payment, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}
