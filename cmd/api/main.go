package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/heatparts/storefront/api/routes"
	"github.com/heatparts/storefront/internal/basket"
	"github.com/heatparts/storefront/internal/cartsync"
	"github.com/heatparts/storefront/internal/carttoken"
	"github.com/heatparts/storefront/internal/catalog"
	"github.com/heatparts/storefront/internal/checkout"
	"github.com/heatparts/storefront/internal/checkout/pricing"
	"github.com/heatparts/storefront/internal/customers"
	"github.com/heatparts/storefront/internal/orders"
	"github.com/heatparts/storefront/internal/search"
	"github.com/heatparts/storefront/internal/searchhistory"
	"github.com/heatparts/storefront/internal/settings"
	"github.com/heatparts/storefront/internal/woocommerce"
	"github.com/heatparts/storefront/pkg/cache"
	"github.com/heatparts/storefront/pkg/config"
	"github.com/heatparts/storefront/pkg/db"
	"github.com/heatparts/storefront/pkg/logger"
	"github.com/heatparts/storefront/pkg/metrics"
	"github.com/heatparts/storefront/pkg/migrate"
	"github.com/heatparts/storefront/pkg/redis"
	pkgstripe "github.com/heatparts/storefront/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeAutoRun(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run migrations", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	remoteMetrics := metrics.NewRemoteCallMetrics(registry)

	store, err := woocommerce.NewClient(cfg.Store,
		woocommerce.WithMetrics(remoteMetrics),
		woocommerce.WithLogger(logg),
	)
	if err != nil {
		logg.WarnErr(ctx, "store platform not configured; remote calls will fail", err)
		store = woocommerce.Unavailable(err)
	}

	settingsRepo := settings.NewRepository(dbClient.DB())

	var (
		tokenStore  carttoken.Store = carttoken.NewSettingsStore(settingsRepo)
		redisPinger db.Pinger
	)
	if cfg.CartToken.UsesRedis() {
		redisClient, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		tokenStore = carttoken.NewRedisStore(redisClient, cfg.CartToken.DeviceID, cfg.CartToken.RedisTTL)
		redisPinger = redisClient
	}

	tokens, err := carttoken.NewManager(tokenStore, remoteMetrics)
	requireService(ctx, logg, "cart tokens", err)

	cartSvc, err := cartsync.NewService(store, tokens, nil, logg)
	requireService(ctx, logg, "cart sync", err)

	rates, err := pricing.RatesFromConfig(cfg.Pricing)
	requireService(ctx, logg, "pricing", err)

	basketSvc, err := basket.NewService(basket.ServiceParams{
		Repo:   basket.NewRepository(dbClient.DB()),
		Mirror: cartSvc,
		Rates:  rates,
		Logger: logg,
	})
	requireService(ctx, logg, "basket", err)
	cartSvc.SetKeyWriter(basketSvc)

	history := searchhistory.NewRepository(dbClient.DB(), time.Now)
	searchSvc, err := search.NewService(store, history, logg)
	requireService(ctx, logg, "search", err)

	catalogSvc, err := catalog.NewService(store, catalog.NewCache(cfg.Cache.CatalogTTL, cache.SystemClock))
	requireService(ctx, logg, "catalog", err)

	guests, err := customers.NewService(settingsRepo, store, cfg.Checkout.GuestEmailDomain, logg)
	requireService(ctx, logg, "customers", err)

	ordersSvc, err := orders.NewService(store, guests)
	requireService(ctx, logg, "orders", err)

	flags, err := settings.NewFlags(settingsRepo)
	requireService(ctx, logg, "settings", err)

	checkoutParams := checkout.ServiceParams{
		Basket:    basketSvc,
		Guests:    guests,
		Orders:    store,
		Cart:      cartSvc,
		Tokens:    tokens,
		Preflight: store,
		Web: checkout.WebSettings{
			BaseURL:   store.BaseURL(),
			Path:      cfg.Checkout.WebCheckoutPath,
			Preflight: cfg.Checkout.WebPreflight,
		},
		Logger: logg,
	}
	if cfg.Stripe.Enabled() {
		stripeClient, err := pkgstripe.NewClient(ctx, cfg.Stripe, logg)
		if err != nil {
			logg.Error(ctx, "failed to configure payments", err)
			os.Exit(1)
		}
		checkoutParams.Payments = pkgstripe.NewPaymentIntents(stripeClient)
		checkoutParams.Payment = checkout.PaymentSettings{
			PublishableKey: stripeClient.PublishableKey(),
			Currency:       stripeClient.Currency(),
		}
	} else {
		logg.Warn(ctx, "payments not configured; payment sheet checkout disabled")
	}
	checkoutSvc, err := checkout.NewService(checkoutParams)
	requireService(ctx, logg, "checkout", err)

	handler := routes.NewRouter(routes.Deps{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Redis:    redisPinger,
		Metrics:  registry,
		Search:   searchSvc,
		History:  history,
		Basket:   basketSvc,
		Items:    basketSvc,
		Cart:     cartSvc,
		Checkout: checkoutSvc,
		Orders:   ordersSvc,
		Catalog:  catalogSvc,
		Flags:    flags,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"addr":        addr,
		"token_store": cfg.CartToken.Backend,
	})
	logg.Info(serverCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(serverCtx, "api server shutdown failed", err)
		}
		logg.Info(serverCtx, "api server stopped")
	}
}

func requireService(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "failed to build "+name+" service", err)
	os.Exit(1)
}
