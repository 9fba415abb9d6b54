package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stockroomhq/stockroom-backend/api/controllers"
	"github.com/stockroomhq/stockroom-backend/api/middleware"
	"github.com/stockroomhq/stockroom-backend/internal/inventory"
	"github.com/stockroomhq/stockroom-backend/internal/orders"
	"github.com/stockroomhq/stockroom-backend/internal/payments"
	"github.com/stockroomhq/stockroom-backend/internal/reservations"
	"github.com/stockroomhq/stockroom-backend/internal/shipments"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/redis"
)

// NewRouter assembles the HTTP surface of the record service.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	ordersService orders.Service,
	inventoryService inventory.Service,
	reservationsService reservations.Service,
	paymentsService payments.Service,
	shipmentsService shipments.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Get("/health", controllers.Health(cfg, logg, dbP, redisClient))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(ordersService, logg))
			r.Get("/", controllers.OrderList(ordersService, logg))
			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", controllers.OrderDetail(ordersService, logg))
				r.Put("/", controllers.OrderUpdate(ordersService, logg))
				r.Delete("/", controllers.OrderDelete(ordersService, logg))
				r.Post("/refund-metadata", controllers.OrderRefundMetadata(ordersService, logg))
			})
		})

		// Static mount; takes /inventory/reserve ahead of the {sku} wildcard.
		r.Route("/inventory/reserve", func(r chi.Router) {
			r.Post("/", controllers.ReservationCreate(reservationsService, logg))
			r.Get("/", controllers.ReservationList(reservationsService, logg))
			r.Route("/{reservationId}", func(r chi.Router) {
				r.Get("/", controllers.ReservationDetail(reservationsService, logg))
				r.Put("/", controllers.ReservationUpdate(reservationsService, logg))
				r.Delete("/", controllers.ReservationDelete(reservationsService, logg))
			})
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Post("/", controllers.InventoryUpsert(inventoryService, logg))
			r.Get("/", controllers.InventoryList(inventoryService, logg))

			r.Route("/{sku}", func(r chi.Router) {
				r.Get("/", controllers.InventoryDetail(inventoryService, logg))
				r.Put("/", controllers.InventorySetQuantity(inventoryService, logg))
				r.Delete("/", controllers.InventoryDelete(inventoryService, logg))
				r.Post("/adjust", controllers.InventoryAdjust(inventoryService, logg))
				r.Get("/movements", controllers.InventoryMovements(inventoryService, logg))
			})
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/", controllers.PaymentCreate(paymentsService, logg))
			r.Get("/", controllers.PaymentList(paymentsService, logg))
			r.Route("/{paymentId}", func(r chi.Router) {
				r.Get("/", controllers.PaymentDetail(paymentsService, logg))
				r.Put("/", controllers.PaymentReplace(paymentsService, logg))
				r.Delete("/", controllers.PaymentDelete(paymentsService, logg))
			})
		})

		r.Route("/shipments", func(r chi.Router) {
			r.Post("/", controllers.ShipmentCreate(shipmentsService, logg))
			r.Get("/", controllers.ShipmentList(shipmentsService, logg))
			r.Route("/{shipmentId}", func(r chi.Router) {
				r.Get("/", controllers.ShipmentDetail(shipmentsService, logg))
				r.Put("/", controllers.ShipmentReplace(shipmentsService, logg))
				r.Delete("/", controllers.ShipmentDelete(shipmentsService, logg))
			})
		})
	})

	return r
}
