package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ceylonharvest/spicetrade-backend/pkg/db/models"
	"github.com/ceylonharvest/spicetrade-backend/pkg/enums"
	pkgerrors "github.com/ceylonharvest/spicetrade-backend/pkg/errors"
)

type stubPaymentsService struct {
	sessionID string
	payments  []models.Payment
	err       error

	orderID uuid.UUID
}

func (s *stubPaymentsService) CreateCheckoutSession(ctx context.Context, customerID, orderID uuid.UUID) (string, error) {
	s.orderID = orderID
	return s.sessionID, s.err
}

func (s *stubPaymentsService) History(ctx context.Context, customerID uuid.UUID) ([]models.Payment, error) {
	return s.payments, s.err
}

func TestPaymentCreateCheckoutSessionSuccess(t *testing.T) {
	orderID := uuid.New()
	svc := &stubPaymentsService{sessionID: "cs_test_123"}
	handler := PaymentCreateCheckoutSession(svc, nil)

	body := `{"order_id":"` + orderID.String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/create-checkout-session", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withCustomer(req, uuid.New())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	if svc.orderID != orderID {
		t.Fatalf("order id not forwarded")
	}

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data["session_id"] != "cs_test_123" {
		t.Fatalf("unexpected session id: %q", envelope.Data["session_id"])
	}
}

func TestPaymentCreateCheckoutSessionNonPending(t *testing.T) {
	handler := PaymentCreateCheckoutSession(&stubPaymentsService{
		err: pkgerrors.New(pkgerrors.CodeStateConflict, "order is not payable"),
	}, nil)

	body := `{"order_id":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/create-checkout-session", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withCustomer(req, uuid.New())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestPaymentHistorySuccess(t *testing.T) {
	payment := models.Payment{
		ID:            uuid.New(),
		OrderID:       uuid.New(),
		Amount:        decimal.NewFromInt(1500),
		TransactionID: "evt_1",
		Status:        enums.PaymentStatusSucceeded,
	}
	handler := PaymentHistory(&stubPaymentsService{payments: []models.Payment{payment}}, nil)

	req := withCustomer(httptest.NewRequest(http.MethodGet, "/api/v1/payments/history", nil), uuid.New())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data []paymentResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].TransactionID != "evt_1" {
		t.Fatalf("unexpected payments: %+v", envelope.Data)
	}
}
