package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ceylonharvest/spicetrade-backend/api/middleware"
	"github.com/ceylonharvest/spicetrade-backend/api/responses"
	"github.com/ceylonharvest/spicetrade-backend/api/validators"
	orderssvc "github.com/ceylonharvest/spicetrade-backend/internal/orders"
	"github.com/ceylonharvest/spicetrade-backend/pkg/db/models"
	"github.com/ceylonharvest/spicetrade-backend/pkg/enums"
	pkgerrors "github.com/ceylonharvest/spicetrade-backend/pkg/errors"
	"github.com/ceylonharvest/spicetrade-backend/pkg/logger"
	"github.com/ceylonharvest/spicetrade-backend/pkg/pagination"
)

// OrdersService is the slice of the orders service the HTTP layer consumes.
type OrdersService interface {
	AddOrUpdateItem(ctx context.Context, input orderssvc.AddItemInput) (*models.Order, error)
	DeleteItem(ctx context.Context, customerID, orderID, itemID uuid.UUID) error
	DeleteOrder(ctx context.Context, customerID, orderID uuid.UUID) error
	ClearCart(ctx context.Context, customerID uuid.UUID) error
	Pending(ctx context.Context, customerID uuid.UUID) (*models.Order, error)
	History(ctx context.Context, customerID uuid.UUID) ([]models.Order, error)
	Sales(ctx context.Context, params pagination.Params, filters orderssvc.SalesFilters) (*orderssvc.SalesList, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus, actor enums.Actor) (*models.Order, error)
}

// OrderUpsertItem merges a spice into the caller's pending local order,
// creating the order on first add.
func OrderUpsertItem(svc OrdersService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		customerID, err := callerCustomerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload upsertItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.AddOrUpdateItem(r.Context(), orderssvc.AddItemInput{
			CustomerID: customerID,
			SpiceID:    payload.SpiceID,
			QuantityKg: payload.Quantity,
			UnitPrice:  payload.Price,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrderPending returns the caller's open cart order.
func OrderPending(svc OrdersService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		customerID, err := callerCustomerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Pending(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrderHistory lists the caller's past orders, newest first.
func OrderHistory(svc OrdersService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		customerID, err := callerCustomerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.History(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orderResponse, 0, len(orders))
		for i := range orders {
			out = append(out, newOrderResponse(&orders[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// OrderDeleteItem removes one line item; removing the last item drops the
// whole order.
func OrderDeleteItem(svc OrdersService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		customerID, err := callerCustomerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteItem(r.Context(), customerID, orderID, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// OrderDelete removes a whole pending order.
func OrderDelete(svc OrdersService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		customerID, err := callerCustomerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteOrder(r.Context(), customerID, orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// OrderClearCart drops the caller's pending local order; clearing an empty
// cart is a no-op.
func OrderClearCart(svc OrdersService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		customerID, err := callerCustomerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ClearCart(r.Context(), customerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

type upsertItemRequest struct {
	SpiceID  uuid.UUID       `json:"spice_id" validate:"required"`
	Quantity int             `json:"quantity" validate:"required,min=1"`
	Price    decimal.Decimal `json:"price" validate:"required"`
}

type orderResponse struct {
	ID         uuid.UUID           `json:"id"`
	CustomerID uuid.UUID           `json:"customer_id"`
	Type       string              `json:"type"`
	Status     string              `json:"status"`
	TotalPrice decimal.Decimal     `json:"total_price"`
	QuotedAt   *time.Time          `json:"quoted_at,omitempty"`
	Items      []orderItemResponse `json:"items"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

type orderItemResponse struct {
	ID         uuid.UUID       `json:"id"`
	SpiceID    uuid.UUID       `json:"spice_id"`
	SpiceName  string          `json:"spice_name"`
	QuantityKg int             `json:"quantity_kg"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

func newOrderResponse(order *models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:         item.ID,
			SpiceID:    item.SpiceID,
			SpiceName:  item.SpiceName,
			QuantityKg: item.QuantityKg,
			UnitPrice:  item.UnitPrice,
		})
	}

	return orderResponse{
		ID:         order.ID,
		CustomerID: order.CustomerID,
		Type:       string(order.Type),
		Status:     string(order.Status),
		TotalPrice: order.TotalPrice,
		QuotedAt:   order.QuotedAt,
		Items:      items,
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
}

func callerCustomerID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.CustomerIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid customer id")
	}
	return id, nil
}

func callerActor(r *http.Request) enums.Actor {
	actor, err := enums.ParseActor(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return enums.ActorCustomer
	}
	return actor
}

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, key))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+key)
	}
	return id, nil
}
