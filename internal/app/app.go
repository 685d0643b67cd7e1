package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/glowmart/glowmart-api/internal/domain/auth"
	"github.com/glowmart/glowmart-api/internal/domain/checkout"
	"github.com/glowmart/glowmart-api/internal/domain/order"
	"github.com/glowmart/glowmart-api/internal/domain/promo"
	"github.com/glowmart/glowmart-api/internal/domain/review"
	"github.com/glowmart/glowmart-api/internal/domain/stats"
	"github.com/glowmart/glowmart-api/internal/handler"
	"github.com/glowmart/glowmart-api/internal/payment"
	"github.com/glowmart/glowmart-api/internal/realtime"
	"github.com/glowmart/glowmart-api/internal/storage/postgres"
	"github.com/glowmart/glowmart-api/pkg/health"
	"github.com/glowmart/glowmart-api/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles
// graceful shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.PingCheck(pool))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	// Realtime events. Without Redis the API still works; dashboards just
	// don't live-update.
	var (
		events realtime.Publisher = realtime.Nop{}
		stream handler.EventSource
	)
	if cfg.Redis.Addr != "" {
		pub := realtime.NewRedisPublisher(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := pub.Ping(ctx); err != nil {
			return errors.Wrap(err, "connect redis")
		}
		defer func() { _ = pub.Close() }()
		events = pub
		stream = pub
		healthSvc.AddReadinessCheck("redis", 5*time.Second, health.PingCheck(pub))
	}
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	userRepo := postgres.NewUserRepository(pool)
	addressRepo := postgres.NewAddressRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	cartRepo := postgres.NewCartRepository(pool)
	wishlistRepo := postgres.NewWishlistRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	reviewRepo := postgres.NewReviewRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)
	promoRepo := postgres.NewPromoRepository(pool)

	// Domain services.
	tokens := auth.NewTokens([]byte(cfg.JWTSecret), cfg.TokenTTL)
	gateway := payment.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.KeyID, cfg.Gateway.Secret)
	promoValidator := promo.NewRepoValidator(promoRepo)
	checkoutSvc := checkout.NewService(
		cartRepo, productRepo, settingsRepo, promoValidator, orderRepo,
		gateway, []byte(cfg.Gateway.Secret), events,
	)
	orderSvc := order.NewService(orderRepo, events)
	reviewSvc := review.NewService(reviewRepo, orderRepo, events)
	aggregator := stats.NewAggregator(orderRepo)

	// HTTP surface.
	h := handler.New(handler.Deps{
		Users:     userRepo,
		Addresses: addressRepo,
		Tokens:    tokens,
		Products:  productRepo,
		Carts:     cartRepo,
		Wishlist:  wishlistRepo,
		Checkout:  checkoutSvc,
		Orders:    orderSvc,
		OrderRepo: orderRepo,
		Reviews:   reviewRepo,
		ReviewSvc: reviewSvc,
		Settings:  settingsRepo,
		Stats:     aggregator,
		Events:    events,
		Stream:    stream,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", h.Routes())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("glowmart-api"),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	// WriteTimeout stays unset: the admin event stream holds its response
	// open for the life of the connection.
	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
