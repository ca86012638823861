package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ceylonharvest/spicetrade-backend/api/controllers"
	webhookcontrollers "github.com/ceylonharvest/spicetrade-backend/api/controllers/webhooks"
	"github.com/ceylonharvest/spicetrade-backend/api/middleware"
	orderssvc "github.com/ceylonharvest/spicetrade-backend/internal/orders"
	paymentssvc "github.com/ceylonharvest/spicetrade-backend/internal/payments"
	quotationssvc "github.com/ceylonharvest/spicetrade-backend/internal/quotations"
	gatewaywebhook "github.com/ceylonharvest/spicetrade-backend/internal/webhooks/gateway"
	"github.com/ceylonharvest/spicetrade-backend/pkg/config"
	"github.com/ceylonharvest/spicetrade-backend/pkg/db"
	"github.com/ceylonharvest/spicetrade-backend/pkg/enums"
	pkggateway "github.com/ceylonharvest/spicetrade-backend/pkg/gateway"
	"github.com/ceylonharvest/spicetrade-backend/pkg/logger"
	"github.com/ceylonharvest/spicetrade-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	gatewayClient *pkggateway.Client,
	ordersService *orderssvc.Service,
	quotationsService *quotationssvc.Service,
	paymentsService *paymentssvc.Service,
	webhookService *gatewaywebhook.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbClient, redisClient, logg))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/gateway", webhookcontrollers.GatewayWebhook(webhookService, gatewayClient, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderUpsertItem(ordersService, logg))
			r.Get("/pending", controllers.OrderPending(ordersService, logg))
			r.Get("/history", controllers.OrderHistory(ordersService, logg))
			r.Put("/clear-cart", controllers.OrderClearCart(ordersService, logg))
			r.Delete("/{orderId}", controllers.OrderDelete(ordersService, logg))
			r.Delete("/{orderId}/{itemId}", controllers.OrderDeleteItem(ordersService, logg))
		})

		r.Route("/quotations", func(r chi.Router) {
			r.Post("/", controllers.QuotationSubmit(quotationsService, logg))
			r.Get("/", controllers.QuotationList(quotationsService, logg))
			r.Get("/{quotationId}", controllers.QuotationGet(quotationsService, logg))
			r.Get("/{quotationId}/pdf", controllers.QuotationPDF(quotationsService, logg))
			r.Put("/{quotationId}/approve", controllers.QuotationApprove(quotationsService, logg))
			r.Put("/{quotationId}/reject", controllers.QuotationReject(quotationsService, logg))
			r.With(middleware.RequireRole(string(enums.ActorStaff), logg)).
				Put("/{quotationId}/update-staff-fields", controllers.QuotationUpdateStaffFields(quotationsService, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/create-checkout-session", controllers.PaymentCreateCheckoutSession(paymentsService, logg))
			r.Get("/history", controllers.PaymentHistory(paymentsService, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.ActorStaff), logg))
			r.Get("/orders", controllers.SalesListOrders(ordersService, logg))
			r.Put("/orders/{orderId}/status", controllers.SalesUpdateOrderStatus(ordersService, logg))
		})
	})

	return r
}
