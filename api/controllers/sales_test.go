package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	orderssvc "github.com/ceylonharvest/spicetrade-backend/internal/orders"
	"github.com/ceylonharvest/spicetrade-backend/pkg/db/models"
	"github.com/ceylonharvest/spicetrade-backend/pkg/enums"
)

func withRouteParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestSalesListOrdersSuccess(t *testing.T) {
	order := models.Order{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		Type:       enums.OrderTypeGlobal,
		Status:     enums.OrderStatusQuoted,
		TotalPrice: decimal.NewFromInt(110000),
	}
	svc := &stubOrdersService{list: &orderssvc.SalesList{
		Orders:     []models.Order{order},
		NextCursor: "next",
	}}
	handler := SalesListOrders(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales/orders?type=global&search=cinnamon", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data salesListResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Orders) != 1 || envelope.Data.Orders[0].ID != order.ID {
		t.Fatalf("unexpected orders: %+v", envelope.Data.Orders)
	}
	if envelope.Data.NextCursor != "next" {
		t.Fatalf("unexpected cursor: %q", envelope.Data.NextCursor)
	}
}

func TestSalesListOrdersRejectsUnknownType(t *testing.T) {
	handler := SalesListOrders(&stubOrdersService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales/orders?type=wholesale", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSalesUpdateOrderStatusActsAsStaff(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrdersService{order: &models.Order{
		ID:     orderID,
		Status: enums.OrderStatusShipped,
	}}
	handler := SalesUpdateOrderStatus(svc, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/sales/orders/"+orderID.String()+"/status",
		strings.NewReader(`{"status":"shipped"}`))
	req.Header.Set("Content-Type", "application/json")
	req = withRouteParam(req, "orderId", orderID.String())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	if svc.statusOrderID != orderID || svc.statusTo != enums.OrderStatusShipped {
		t.Fatalf("unexpected status call: %s -> %s", svc.statusOrderID, svc.statusTo)
	}
	if svc.statusActor != enums.ActorStaff {
		t.Fatalf("expected staff actor, got %s", svc.statusActor)
	}
}

func TestSalesUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	orderID := uuid.New()
	handler := SalesUpdateOrderStatus(&stubOrdersService{}, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/sales/orders/"+orderID.String()+"/status",
		strings.NewReader(`{"status":"teleported"}`))
	req.Header.Set("Content-Type", "application/json")
	req = withRouteParam(req, "orderId", orderID.String())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
