package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/ceylonharvest/spicetrade-backend/internal/orders"
	"github.com/ceylonharvest/spicetrade-backend/internal/payments"
	"github.com/ceylonharvest/spicetrade-backend/pkg/db/models"
	"github.com/ceylonharvest/spicetrade-backend/pkg/enums"
	pkgerrors "github.com/ceylonharvest/spicetrade-backend/pkg/errors"
	pkggateway "github.com/ceylonharvest/spicetrade-backend/pkg/gateway"
	"github.com/ceylonharvest/spicetrade-backend/pkg/logger"
	"github.com/ceylonharvest/spicetrade-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	OrdersRepo   orders.Repository
	PaymentsRepo payments.Repository
	Tx           txRunner
	Guard        *IdempotencyGuard
	Metrics      *metrics.Registry
	Logger       *logger.Logger
}

// Service turns confirmed gateway checkouts into paid orders and ledger rows.
type Service struct {
	ordersRepo   orders.Repository
	paymentsRepo payments.Repository
	tx           txRunner
	guard        *IdempotencyGuard
	metrics      *metrics.Registry
	logg         *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.OrdersRepo == nil {
		return nil, fmt.Errorf("gateway webhook: orders repo is required")
	}
	if params.PaymentsRepo == nil {
		return nil, fmt.Errorf("gateway webhook: payments repo is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("gateway webhook: tx runner is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("gateway webhook: logger is required")
	}
	return &Service{
		ordersRepo:   params.OrdersRepo,
		paymentsRepo: params.PaymentsRepo,
		tx:           params.Tx,
		guard:        params.Guard,
		metrics:      params.Metrics,
		logg:         params.Logger,
	}, nil
}

// HandleEvent processes one verified gateway event. Missing or non-pending
// orders are logged no-ops: the caller acknowledges regardless, so the
// gateway never retries into a storm.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "gateway event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		return s.handleCheckoutCompleted(ctx, event)
	default:
		return nil
	}
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, event *stripe.Event) error {
	eventID := event.ID
	ctx = s.logg.WithField(ctx, "event_id", eventID)

	if !s.guard.CheckAndMark(ctx, eventID) {
		s.logg.Info(ctx, "duplicate gateway event skipped")
		s.metrics.IncWebhook("duplicate")
		return nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session event")
	}

	rawOrderID := session.Metadata[pkggateway.MetadataOrderID]
	if rawOrderID == "" {
		s.logg.Warn(ctx, "checkout session carries no order id, skipping")
		s.metrics.IncWebhook("missing_metadata")
		return nil
	}
	orderID, err := uuid.Parse(rawOrderID)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "order_id", rawOrderID),
			"checkout session carries a malformed order id, skipping")
		s.metrics.IncWebhook("malformed_metadata")
		return nil
	}
	ctx = s.logg.WithOrderID(ctx, orderID.String())

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)
		paymentsRepo := s.paymentsRepo.WithTx(tx)

		order, err := ordersRepo.FindOrder(ctx, orderID)
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			s.logg.Warn(ctx, "gateway event references an unknown order, skipping")
			s.metrics.IncWebhook("unknown_order")
			return nil
		}
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusPending {
			s.logg.Info(s.logg.WithField(ctx, "status", order.Status.String()),
				"order is not pending, event skipped")
			s.metrics.IncWebhook("stale")
			return nil
		}

		if err := orders.Transition(order.Status, enums.OrderStatusPaid, enums.ActorGateway); err != nil {
			return err
		}
		if err := ordersRepo.UpdateOrder(ctx, order.ID, map[string]any{
			"status": enums.OrderStatusPaid,
		}); err != nil {
			return err
		}
		if err := paymentsRepo.Create(ctx, &models.Payment{
			CustomerID:    order.CustomerID,
			OrderID:       order.ID,
			Amount:        order.TotalPrice,
			TransactionID: eventID,
			Status:        enums.PaymentStatusSucceeded,
		}); err != nil {
			return err
		}

		s.metrics.IncOrderPaid()
		s.metrics.IncWebhook("paid")
		s.logg.Info(ctx, "order marked paid from gateway event")
		return nil
	})
	if err != nil {
		// let the marker go so a later redelivery can retry the write
		s.guard.Release(ctx, eventID)
		return err
	}
	return nil
}
