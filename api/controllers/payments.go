package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ceylonharvest/spicetrade-backend/api/responses"
	"github.com/ceylonharvest/spicetrade-backend/api/validators"
	"github.com/ceylonharvest/spicetrade-backend/pkg/db/models"
	pkgerrors "github.com/ceylonharvest/spicetrade-backend/pkg/errors"
	"github.com/ceylonharvest/spicetrade-backend/pkg/logger"
)

// PaymentsService is the slice of the payments service the HTTP layer
// consumes.
type PaymentsService interface {
	CreateCheckoutSession(ctx context.Context, customerID, orderID uuid.UUID) (string, error)
	History(ctx context.Context, customerID uuid.UUID) ([]models.Payment, error)
}

// PaymentCreateCheckoutSession opens a gateway checkout session for the
// caller's pending order.
func PaymentCreateCheckoutSession(svc PaymentsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		customerID, err := callerCustomerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createCheckoutSessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID, err := svc.CreateCheckoutSession(r.Context(), customerID, payload.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"session_id": sessionID})
	}
}

// PaymentHistory lists the caller's payment ledger entries.
func PaymentHistory(svc PaymentsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		customerID, err := callerCustomerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payments, err := svc.History(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]paymentResponse, 0, len(payments))
		for _, payment := range payments {
			out = append(out, newPaymentResponse(payment))
		}
		responses.WriteSuccess(w, out)
	}
}

type createCheckoutSessionRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
}

type paymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	OrderID       uuid.UUID       `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

func newPaymentResponse(payment models.Payment) paymentResponse {
	return paymentResponse{
		ID:            payment.ID,
		OrderID:       payment.OrderID,
		Amount:        payment.Amount,
		TransactionID: payment.TransactionID,
		Status:        string(payment.Status),
		CreatedAt:     payment.CreatedAt,
	}
}
