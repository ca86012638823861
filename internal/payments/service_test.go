package payments

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ceylonharvest/spicetrade-backend/internal/orders"
	"github.com/ceylonharvest/spicetrade-backend/pkg/db/models"
	"github.com/ceylonharvest/spicetrade-backend/pkg/enums"
	pkgerrors "github.com/ceylonharvest/spicetrade-backend/pkg/errors"
	"github.com/ceylonharvest/spicetrade-backend/pkg/gateway"
	"github.com/ceylonharvest/spicetrade-backend/pkg/logger"
	"github.com/ceylonharvest/spicetrade-backend/pkg/pagination"
)

type stubPaymentsRepo struct {
	created []models.Payment
}

func (s *stubPaymentsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubPaymentsRepo) Create(ctx context.Context, payment *models.Payment) error {
	s.created = append(s.created, *payment)
	return nil
}

func (s *stubPaymentsRepo) FindByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
}

func (s *stubPaymentsRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Payment, error) {
	return nil, nil
}

type stubOrdersRepo struct {
	order *models.Order
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubOrdersRepo) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != orderID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return s.order, nil
}

func (s *stubOrdersRepo) FindPendingLocalOrder(ctx context.Context, customerID uuid.UUID) (*models.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no pending order")
}

func (s *stubOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) error { return nil }

func (s *stubOrdersRepo) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubOrdersRepo) DeleteOrder(ctx context.Context, orderID uuid.UUID) error { return nil }

func (s *stubOrdersRepo) CreateItem(ctx context.Context, item *models.OrderItem) error { return nil }

func (s *stubOrdersRepo) UpdateItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubOrdersRepo) DeleteItem(ctx context.Context, itemID uuid.UUID) error { return nil }

func (s *stubOrdersRepo) ListHistory(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrdersRepo) ListSales(ctx context.Context, params pagination.Params, filters orders.SalesFilters) (*orders.SalesList, error) {
	return &orders.SalesList{}, nil
}

type stubGateway struct {
	input     gateway.CheckoutSessionInput
	sessionID string
	err       error
}

func (s *stubGateway) CreateCheckoutSession(ctx context.Context, input gateway.CheckoutSessionInput) (string, error) {
	s.input = input
	if s.err != nil {
		return "", s.err
	}
	return s.sessionID, nil
}

func newTestService(t *testing.T, ordersRepo orders.Repository, gw checkoutGateway) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:    &stubPaymentsRepo{},
		Orders:  ordersRepo,
		Gateway: gw,
		Logger:  logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return svc
}

func TestCreateCheckoutSession(t *testing.T) {
	customerID := uuid.New()
	orderID := uuid.New()
	ordersRepo := &stubOrdersRepo{order: &models.Order{
		ID:         orderID,
		CustomerID: customerID,
		Status:     enums.OrderStatusPending,
		TotalPrice: decimal.NewFromInt(1500),
	}}
	gw := &stubGateway{sessionID: "cs_test_123"}
	svc := newTestService(t, ordersRepo, gw)

	sessionID, err := svc.CreateCheckoutSession(context.Background(), customerID, orderID)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if sessionID != "cs_test_123" {
		t.Fatalf("unexpected session id %s", sessionID)
	}
	if gw.input.OrderID != orderID.String() {
		t.Fatalf("order id must travel in metadata, got %s", gw.input.OrderID)
	}
	if !gw.input.Amount.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("expected amount 1500 got %s", gw.input.Amount)
	}
}

func TestCreateCheckoutSessionRejectsNonPendingOrder(t *testing.T) {
	customerID := uuid.New()
	orderID := uuid.New()
	ordersRepo := &stubOrdersRepo{order: &models.Order{
		ID:         orderID,
		CustomerID: customerID,
		Status:     enums.OrderStatusPaid,
		TotalPrice: decimal.NewFromInt(1500),
	}}
	svc := newTestService(t, ordersRepo, &stubGateway{})

	_, err := svc.CreateCheckoutSession(context.Background(), customerID, orderID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestCreateCheckoutSessionRejectsForeignOrder(t *testing.T) {
	orderID := uuid.New()
	ordersRepo := &stubOrdersRepo{order: &models.Order{
		ID:         orderID,
		CustomerID: uuid.New(),
		Status:     enums.OrderStatusPending,
		TotalPrice: decimal.NewFromInt(100),
	}}
	svc := newTestService(t, ordersRepo, &stubGateway{})

	_, err := svc.CreateCheckoutSession(context.Background(), uuid.New(), orderID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("unexpected error %v", err)
	}
}
