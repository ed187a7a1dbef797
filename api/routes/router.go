package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heatparts/storefront/api/controllers"
	"github.com/heatparts/storefront/api/middleware"
	"github.com/heatparts/storefront/pkg/config"
	"github.com/heatparts/storefront/pkg/db"
	"github.com/heatparts/storefront/pkg/logger"
)

// Deps are the services the HTTP surface dispatches to. Redis is optional.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    db.Pinger
	Metrics  prometheus.Gatherer
	Search   controllers.SearchService
	History  controllers.SearchHistory
	Basket   controllers.BasketService
	Items    controllers.BasketItems
	Cart     controllers.CartService
	Checkout controllers.CheckoutService
	Orders   controllers.OrdersService
	Catalog  controllers.CatalogService
	Flags    controllers.FlagService
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis))
	})

	gatherer := d.Metrics
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", controllers.SearchParts(d.Search, logg))
		r.Route("/search/history", func(r chi.Router) {
			r.Get("/", controllers.SearchHistoryList(d.History, logg))
			r.Delete("/", controllers.SearchHistoryClear(d.History, logg))
			r.Post("/delete", controllers.SearchHistoryDelete(d.History, logg))
		})

		r.Route("/basket", func(r chi.Router) {
			r.Get("/", controllers.BasketGet(d.Basket, logg))
			r.Delete("/", controllers.BasketClear(d.Basket, logg))
			r.Get("/count", controllers.BasketCount(d.Basket, logg))
			r.Post("/items", controllers.BasketAdd(d.Basket, d.Catalog, logg))
			r.Patch("/items/{productId}", controllers.BasketUpdate(d.Basket, logg))
			r.Delete("/items/{productId}", controllers.BasketRemove(d.Basket, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(d.Cart, logg))
			r.Delete("/", controllers.CartClear(d.Cart, logg))
			r.Post("/sync", controllers.CartSync(d.Cart, d.Items, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/totals", controllers.CheckoutTotals(d.Checkout, logg))
			r.Post("/payment-sheet", controllers.PaymentSheetStart(d.Checkout, logg))
			r.Post("/payment-sheet/complete", controllers.PaymentSheetComplete(d.Checkout, logg))
			r.Post("/payment-sheet/cancel", controllers.PaymentSheetCancel(d.Checkout, logg))
			r.Post("/web", controllers.WebCheckoutStart(d.Checkout, logg))
			r.Post("/web/complete", controllers.WebCheckoutComplete(d.Checkout, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(d.Orders, logg))
			r.Get("/{orderId}", controllers.OrderGet(d.Orders, logg))
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", controllers.CatalogProducts(d.Catalog, logg))
			r.Get("/products/by-sku", controllers.CatalogProductBySKU(d.Catalog, logg))
			r.Get("/products/{productId}", controllers.CatalogProduct(d.Catalog, logg))
			r.Get("/categories", controllers.CatalogCategories(d.Catalog, logg))
			r.Get("/categories/{categoryId}/appliances", controllers.CatalogAppliances(d.Catalog, logg))
			r.Get("/manufacturers", controllers.CatalogManufacturers(d.Catalog, logg))
			r.Post("/refresh", controllers.CatalogRefresh(d.Catalog))
		})

		r.Route("/settings/flags", func(r chi.Router) {
			r.Get("/", controllers.FlagsGet(d.Flags, logg))
			r.Put("/{key}", controllers.FlagSet(d.Flags, logg))
		})
	})

	return r
}
