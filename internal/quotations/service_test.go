package quotations

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ceylonharvest/spicetrade-backend/internal/catalog"
	"github.com/ceylonharvest/spicetrade-backend/internal/orders"
	"github.com/ceylonharvest/spicetrade-backend/pkg/db/models"
	"github.com/ceylonharvest/spicetrade-backend/pkg/enums"
	pkgerrors "github.com/ceylonharvest/spicetrade-backend/pkg/errors"
	"github.com/ceylonharvest/spicetrade-backend/pkg/logger"
	"github.com/ceylonharvest/spicetrade-backend/pkg/pagination"
)

type stubQuotationsRepo struct {
	quotations map[uuid.UUID]*models.Quotation
	createErr  error
	updates    map[uuid.UUID]map[string]any
	deleted    []uuid.UUID
}

func newStubQuotationsRepo() *stubQuotationsRepo {
	return &stubQuotationsRepo{
		quotations: make(map[uuid.UUID]*models.Quotation),
		updates:    make(map[uuid.UUID]map[string]any),
	}
}

func (s *stubQuotationsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubQuotationsRepo) Create(ctx context.Context, quotation *models.Quotation) error {
	if s.createErr != nil {
		return s.createErr
	}
	if quotation.ID == uuid.Nil {
		quotation.ID = uuid.New()
	}
	s.quotations[quotation.ID] = quotation
	return nil
}

func (s *stubQuotationsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
	if q, ok := s.quotations[id]; ok {
		return q, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
}

func (s *stubQuotationsRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Quotation, error) {
	return nil, nil
}

func (s *stubQuotationsRepo) List(ctx context.Context) ([]models.Quotation, error) {
	return nil, nil
}

func (s *stubQuotationsRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if _, ok := s.quotations[id]; !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
	}
	s.updates[id] = updates
	if v, ok := updates["status"].(enums.QuotationStatus); ok {
		s.quotations[id].Status = v
	}
	return nil
}

func (s *stubQuotationsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.quotations[id]; !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
	}
	delete(s.quotations, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type stubOrdersRepo struct {
	orders  map[uuid.UUID]*models.Order
	created *models.Order
	updates map[uuid.UUID]map[string]any
	deleted []uuid.UUID
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{
		orders:  make(map[uuid.UUID]*models.Order),
		updates: make(map[uuid.UUID]map[string]any),
	}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubOrdersRepo) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if order, ok := s.orders[orderID]; ok {
		return order, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (s *stubOrdersRepo) FindPendingLocalOrder(ctx context.Context, customerID uuid.UUID) (*models.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no pending order")
}

func (s *stubOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders[order.ID] = order
	s.created = order
	return nil
}

func (s *stubOrdersRepo) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	order, ok := s.orders[orderID]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	s.updates[orderID] = updates
	if v, ok := updates["status"].(enums.OrderStatus); ok {
		order.Status = v
	}
	if v, ok := updates["total_price"].(decimal.Decimal); ok {
		order.TotalPrice = v
	}
	return nil
}

func (s *stubOrdersRepo) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	if _, ok := s.orders[orderID]; !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	delete(s.orders, orderID)
	s.deleted = append(s.deleted, orderID)
	return nil
}

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

type stubCatalogRepo struct {
	spices []models.Spice
}

func (s *stubCatalogRepo) WithTx(tx *gorm.DB) catalog.Repository { return s }

func (s *stubCatalogRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Spice, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "spice not found")
}

func (s *stubCatalogRepo) FindByName(ctx context.Context, name string) (*models.Spice, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "spice not found")
}

func (s *stubCatalogRepo) FindByNames(ctx context.Context, names []string) ([]models.Spice, error) {
	var out []models.Spice
	for _, name := range names {
		for _, spice := range s.spices {
			if spice.Name == name {
				out = append(out, spice)
			}
		}
	}
	return out, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo Repository, ordersRepo orders.Repository, cat catalog.Repository) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:    repo,
		Orders:  ordersRepo,
		Catalog: cat,
		Tx:      stubTxRunner{},
		Logger:  logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return svc
}

func submitInput(customerID uuid.UUID) SubmitInput {
	return SubmitInput{
		CustomerID:         customerID,
		CompanyName:        "Baltic Imports OU",
		ContactName:        "M. Tamm",
		ContactEmail:       "imports@baltic.example",
		Country:            "Estonia",
		InterestedSpices:   []string{"Ceylon Cinnamon", "Cloves"},
		RequiredQuantityKg: 100,
	}
}

func TestSubmitCreatesOrderThenQuotation(t *testing.T) {
	customerID := uuid.New()
	repo := newStubQuotationsRepo()
	ordersRepo := newStubOrdersRepo()
	cat := &stubCatalogRepo{spices: []models.Spice{
		{ID: uuid.New(), Name: "Ceylon Cinnamon", PricePerKg: decimal.NewFromInt(500)},
		{ID: uuid.New(), Name: "Cloves", PricePerKg: decimal.NewFromInt(300)},
	}}
	svc := newTestService(t, repo, ordersRepo, cat)

	quotation, err := svc.Submit(context.Background(), submitInput(customerID))
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if quotation.Status != enums.QuotationStatusRequested {
		t.Fatalf("expected requested got %s", quotation.Status)
	}

	order, err := ordersRepo.FindOrder(context.Background(), quotation.OrderID)
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if order.Type != enums.OrderTypeGlobal || order.Status != enums.OrderStatusRequested {
		t.Fatalf("unexpected order %s/%s", order.Type, order.Status)
	}
	// provisional total: (500 + 300) x 100
	if !order.TotalPrice.Equal(decimal.NewFromInt(80000)) {
		t.Fatalf("expected provisional total 80000 got %s", order.TotalPrice)
	}
}

func TestSubmitDeduplicatesInterestedSpices(t *testing.T) {
	customerID := uuid.New()
	repo := newStubQuotationsRepo()
	ordersRepo := newStubOrdersRepo()
	cat := &stubCatalogRepo{spices: []models.Spice{
		{ID: uuid.New(), Name: "Ceylon Cinnamon", PricePerKg: decimal.NewFromInt(500)},
	}}
	svc := newTestService(t, repo, ordersRepo, cat)

	input := submitInput(customerID)
	input.InterestedSpices = []string{"Ceylon Cinnamon", "Ceylon Cinnamon"}

	quotation, err := svc.Submit(context.Background(), input)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(quotation.InterestedSpices) != 1 {
		t.Fatalf("expected deduplicated spices, got %v", quotation.InterestedSpices)
	}
	order := ordersRepo.created
	if len(order.Items) != 1 {
		t.Fatalf("expected a single line item, got %d", len(order.Items))
	}
	// 500 x 100, counted once
	if !order.TotalPrice.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("expected provisional total 50000 got %s", order.TotalPrice)
	}
}

func TestSubmitRejectsUnknownSpices(t *testing.T) {
	svc := newTestService(t, newStubQuotationsRepo(), newStubOrdersRepo(), &stubCatalogRepo{})
	_, err := svc.Submit(context.Background(), submitInput(uuid.New()))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error %v", err)
	}
}

func seedQuotedPair(repo *stubQuotationsRepo, ordersRepo *stubOrdersRepo, customerID uuid.UUID, qStatus enums.QuotationStatus, oStatus enums.OrderStatus) *models.Quotation {
	orderID := uuid.New()
	ordersRepo.orders[orderID] = &models.Order{
		ID:         orderID,
		CustomerID: customerID,
		Type:       enums.OrderTypeGlobal,
		Status:     oStatus,
		TotalPrice: decimal.NewFromInt(80000),
	}
	duties := decimal.NewFromInt(10)
	rate := decimal.NewFromFloat(0.5)
	total := decimal.NewFromInt(110000)
	quotation := &models.Quotation{
		ID:                 uuid.New(),
		OrderID:            orderID,
		CustomerID:         customerID,
		CompanyName:        "Baltic Imports OU",
		Country:            "Estonia",
		InterestedSpices:   []string{"Ceylon Cinnamon"},
		RequiredQuantityKg: 100,
		ExportDuties:       &duties,
		ExchangeRate:       &rate,
		TotalCost:          &total,
		Status:             qStatus,
	}
	repo.quotations[quotation.ID] = quotation
	return quotation
}

func TestUpdateStaffFieldsMovesPairToQuoted(t *testing.T) {
	customerID := uuid.New()
	repo := newStubQuotationsRepo()
	ordersRepo := newStubOrdersRepo()
	quotation := seedQuotedPair(repo, ordersRepo, customerID, enums.QuotationStatusRequested, enums.OrderStatusRequested)
	svc := newTestService(t, repo, ordersRepo, &stubCatalogRepo{})

	updated, err := svc.UpdateStaffFields(context.Background(), quotation.ID, StaffFieldsInput{
		ExportDuties:      decimal.NewFromInt(10),
		ShippingPartner:   "Maersk",
		TotalCost:         decimal.NewFromInt(120000),
		PreferredCurrency: "USD",
		ExchangeRate:      decimal.NewFromFloat(0.5),
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if updated.Status != enums.QuotationStatusPending {
		t.Fatalf("expected pending got %s", updated.Status)
	}
	order := ordersRepo.orders[quotation.OrderID]
	if order.Status != enums.OrderStatusQuoted {
		t.Fatalf("expected quoted order got %s", order.Status)
	}
	if !order.TotalPrice.Equal(decimal.NewFromInt(120000)) {
		t.Fatalf("order total must be overwritten to total cost, got %s", order.TotalPrice)
	}
}

func TestUpdateStaffFieldsAllowsRepricingBeforeApproval(t *testing.T) {
	customerID := uuid.New()
	repo := newStubQuotationsRepo()
	ordersRepo := newStubOrdersRepo()
	quotation := seedQuotedPair(repo, ordersRepo, customerID, enums.QuotationStatusPending, enums.OrderStatusQuoted)
	svc := newTestService(t, repo, ordersRepo, &stubCatalogRepo{})

	updated, err := svc.UpdateStaffFields(context.Background(), quotation.ID, StaffFieldsInput{
		ExportDuties:      decimal.NewFromInt(12),
		ShippingPartner:   "Maersk",
		TotalCost:         decimal.NewFromInt(125000),
		PreferredCurrency: "USD",
		ExchangeRate:      decimal.NewFromFloat(0.5),
	})
	if err != nil {
		t.Fatalf("re-pricing before approval must succeed, got %v", err)
	}
	if updated.Status != enums.QuotationStatusPending {
		t.Fatalf("expected pending got %s", updated.Status)
	}
	order := ordersRepo.orders[quotation.OrderID]
	if order.Status != enums.OrderStatusQuoted {
		t.Fatalf("expected quoted order got %s", order.Status)
	}
	if !order.TotalPrice.Equal(decimal.NewFromInt(125000)) {
		t.Fatalf("order total must follow the revised cost, got %s", order.TotalPrice)
	}
}

func TestUpdateStaffFieldsRejectsApprovedQuotation(t *testing.T) {
	customerID := uuid.New()
	repo := newStubQuotationsRepo()
	ordersRepo := newStubOrdersRepo()
	quotation := seedQuotedPair(repo, ordersRepo, customerID, enums.QuotationStatusApproved, enums.OrderStatusPending)
	svc := newTestService(t, repo, ordersRepo, &stubCatalogRepo{})

	_, err := svc.UpdateStaffFields(context.Background(), quotation.ID, StaffFieldsInput{
		ExportDuties: decimal.NewFromInt(5),
		TotalCost:    decimal.NewFromInt(999),
		ExchangeRate: decimal.NewFromInt(1),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error %v", err)
	}
	if len(repo.updates) != 0 || len(ordersRepo.updates) != 0 {
		t.Fatal("immutable quotation must not be touched")
	}
}

func TestApproveResetsOrderToPending(t *testing.T) {
	customerID := uuid.New()
	repo := newStubQuotationsRepo()
	ordersRepo := newStubOrdersRepo()
	quotation := seedQuotedPair(repo, ordersRepo, customerID, enums.QuotationStatusPending, enums.OrderStatusQuoted)
	svc := newTestService(t, repo, ordersRepo, &stubCatalogRepo{})

	approved, err := svc.Approve(context.Background(), customerID, quotation.ID)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if approved.Status != enums.QuotationStatusApproved {
		t.Fatalf("expected approved got %s", approved.Status)
	}
	if ordersRepo.orders[quotation.OrderID].Status != enums.OrderStatusPending {
		t.Fatalf("expected pending order got %s", ordersRepo.orders[quotation.OrderID].Status)
	}
}

func TestRejectDeletesQuotationAndOrder(t *testing.T) {
	customerID := uuid.New()
	repo := newStubQuotationsRepo()
	ordersRepo := newStubOrdersRepo()
	quotation := seedQuotedPair(repo, ordersRepo, customerID, enums.QuotationStatusPending, enums.OrderStatusQuoted)
	svc := newTestService(t, repo, ordersRepo, &stubCatalogRepo{})

	if err := svc.Reject(context.Background(), customerID, quotation.ID); err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if _, err := repo.FindByID(context.Background(), quotation.ID); pkgerrors.As(err) == nil {
		t.Fatal("expected quotation to be gone")
	}
	if _, err := ordersRepo.FindOrder(context.Background(), quotation.OrderID); pkgerrors.As(err) == nil {
		t.Fatal("expected cascaded order deletion")
	}
}

func TestRejectRequiresOwnership(t *testing.T) {
	repo := newStubQuotationsRepo()
	ordersRepo := newStubOrdersRepo()
	quotation := seedQuotedPair(repo, ordersRepo, uuid.New(), enums.QuotationStatusPending, enums.OrderStatusQuoted)
	svc := newTestService(t, repo, ordersRepo, &stubCatalogRepo{})

	err := svc.Reject(context.Background(), uuid.New(), quotation.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("unexpected error %v", err)
	}
	if len(repo.deleted) != 0 || len(ordersRepo.deleted) != 0 {
		t.Fatal("nothing may be deleted on a forbidden reject")
	}
}

func TestBreakdownDerivesSubtotalFromStoredTotal(t *testing.T) {
	customerID := uuid.New()
	repo := newStubQuotationsRepo()
	ordersRepo := newStubOrdersRepo()
	quotation := seedQuotedPair(repo, ordersRepo, customerID, enums.QuotationStatusPending, enums.OrderStatusQuoted)
	cat := &stubCatalogRepo{spices: []models.Spice{
		{ID: uuid.New(), Name: "Ceylon Cinnamon", PricePerKg: decimal.NewFromInt(500)},
	}}
	svc := newTestService(t, repo, ordersRepo, cat)

	doc, err := svc.Breakdown(context.Background(), enums.ActorCustomer, customerID, quotation.ID)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	// 110000 / 1.10
	if !doc.Subtotal.Equal(decimal.NewFromInt(100000)) {
		t.Fatalf("expected subtotal 100000 got %s", doc.Subtotal)
	}
	if len(doc.Lines) != 1 {
		t.Fatalf("expected one line got %d", len(doc.Lines))
	}
	// 500 / 0.5
	if !doc.Lines[0].UnitPrice.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected unit price 1000 got %s", doc.Lines[0].UnitPrice)
	}
}

func TestBreakdownRejectsUnpricedQuotation(t *testing.T) {
	customerID := uuid.New()
	repo := newStubQuotationsRepo()
	ordersRepo := newStubOrdersRepo()
	quotation := seedQuotedPair(repo, ordersRepo, customerID, enums.QuotationStatusRequested, enums.OrderStatusRequested)
	quotation.TotalCost = nil
	svc := newTestService(t, repo, ordersRepo, &stubCatalogRepo{})

	_, err := svc.Breakdown(context.Background(), enums.ActorCustomer, customerID, quotation.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error %v", err)
	}
}
