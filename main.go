package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carbonlens/web/backend"
	"carbonlens/web/config"
	"carbonlens/web/controllers"
	"carbonlens/web/database"
	"carbonlens/web/dispatcher"
	"carbonlens/web/middlewares"
	"carbonlens/web/routes"
	"carbonlens/web/sessions"
	"carbonlens/web/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := utils.NewLogger(cfg.Production())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api, err := backend.NewClient(
		backend.Config{BaseURL: cfg.BackendURL, Timeout: cfg.BackendTimeout},
		backend.Credentials{AccessToken: cfg.BackendAccessToken},
	)
	if err != nil {
		logger.Fatal("backend client", zap.Error(err))
	}

	deps := controllers.Deps{
		Config:   cfg,
		Log:      logger,
		Sessions: sessions.NewStore(cfg.SessionTTL),
		Tiers:    api,
	}
	var recorder dispatcher.Recorder
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database", zap.Error(err))
		}
		defer pool.Close()
		if err := database.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal("schema", zap.Error(err))
		}
		store := database.NewSignupStore(pool)
		recorder = store
		deps.Signups = store
	} else {
		logger.Warn("DATABASE_URL not set, signup log disabled")
	}
	if cfg.PaymentsPublishableKey == "" {
		logger.Warn("PAYMENTS_PUBLISHABLE_KEY not set, paid checkouts will fail")
	}
	deps.Dispatcher = dispatcher.New(api, recorder, dispatcher.Options{
		LoginURL:                cfg.LoginURL,
		CheckoutSuccessURL:      cfg.CheckoutSuccessURL,
		CheckoutCancelURL:       cfg.CheckoutCancelURL,
		SalesEmail:              cfg.SalesEmail,
		PaymentsPublishableKey:  cfg.PaymentsPublishableKey,
		PaymentsCheckoutBaseURL: cfg.PaymentsCheckoutBaseURL,
	}, logger.Named("dispatcher"))

	go sweep(ctx, deps.Sessions, logger)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.Logger(logger), middlewares.CORS(cfg.AllowedOrigin))
	routes.Register(r, deps)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func sweep(ctx context.Context, store *sessions.Store, logger *zap.Logger) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := store.Sweep(); n > 0 {
				logger.Debug("expired onboarding sessions", zap.Int("count", n))
			}
		}
	}
}
