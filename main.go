package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boubamga9/Pattyly-sub000/cache"
	"github.com/boubamga9/Pattyly-sub000/config"
	"github.com/boubamga9/Pattyly-sub000/controllers"
	"github.com/boubamga9/Pattyly-sub000/database"
	"github.com/boubamga9/Pattyly-sub000/middleware"
	"github.com/boubamga9/Pattyly-sub000/models"
	"github.com/boubamga9/Pattyly-sub000/repository"
	"github.com/boubamga9/Pattyly-sub000/routes"
	"github.com/boubamga9/Pattyly-sub000/sender"
	"github.com/boubamga9/Pattyly-sub000/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Unpaid pending orders older than this are garbage-collected.
const pendingOrderTTL = 48 * time.Hour

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Config load failed", zap.Error(err))
	}

	// Database
	db, err := database.Connect(cfg, logger,
		&models.Order{},
		&models.PendingOrder{},
		&models.StripeEvent{},
		&models.PayPalEvent{},
		&models.UserProduct{},
		&models.StripeConnectAccount{},
		&models.PayPalAccount{},
		&models.PaymentLink{},
		&models.Shop{},
	)
	if err != nil {
		logger.Fatal("DB connection failed", zap.Error(err))
	}

	// Senders
	emailSender, err := sender.NewHTTPSender(cfg.EmailAPIURL, cfg.EmailAPIKey, cfg.EmailFromName, cfg.EmailFromAddr)
	if err != nil {
		logger.Fatal("Failed to init email sender", zap.Error(err))
	}
	notifier := services.NewNotifier(emailSender)

	// Provider clients
	stripeService := services.NewStripeService(cfg.StripeSecretKey)
	paypalClient := services.NewPayPalClient(cfg)

	// Dependency injection
	orderRepo := repository.NewGormOrderRepo(db)
	pendingRepo := repository.NewGormPendingOrderRepo(db)
	shopRepo := repository.NewGormShopRepo(db)
	userProductRepo := repository.NewGormUserProductRepo(db)
	stripeAccountRepo := repository.NewGormStripeConnectAccountRepo(db)
	paypalAccountRepo := repository.NewGormPayPalAccountRepo(db)
	paymentLinkRepo := repository.NewGormPaymentLinkRepo(db)

	storefrontCache := cache.NewRedisStorefrontCache(cfg.RedisAddr, cfg.RedisPassword)

	reconciler := services.NewOrderReconciler(orderRepo, pendingRepo, shopRepo, notifier, logger)
	subscriptions := services.NewSubscriptionService(userProductRepo, shopRepo, storefrontCache, notifier, logger, cfg.PremiumProductID)
	accounts := services.NewAccountService(stripeAccountRepo, paypalAccountRepo, paymentLinkRepo, logger)

	webhookController := &controllers.WebhookController{
		Stripe:         stripeService,
		PayPal:         paypalClient,
		StripeLedger:   repository.NewStripeEventLedger(db),
		PayPalLedger:   repository.NewPayPalEventLedger(db),
		Reconciler:     reconciler,
		Subscriptions:  subscriptions,
		Accounts:       accounts,
		Logger:         logger,
		GeneralSecret:  cfg.StripeWebhookSecret,
		AccountsSecret: cfg.StripeAccountsWebhookSecret,
		PaymentsSecret: cfg.StripePaymentsWebhookSecret,
	}
	checkoutController := &controllers.CheckoutController{
		Shops:        shopRepo,
		PaymentLinks: paymentLinkRepo,
		Pending:      pendingRepo,
		Stripe:       stripeService,
		PayPal:       paypalClient,
		Config:       cfg,
		Logger:       logger,
	}

	// Router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.RequestTimeout(30 * time.Second))

	routes.RegisterRoutes(r, webhookController, checkoutController)

	// Pending-order janitor
	janitorCtx, janitorCancel := context.WithCancel(context.Background())
	defer janitorCancel()
	go runPendingOrderJanitor(janitorCtx, pendingRepo, logger)

	// HTTP server
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Info("Payment service started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Initiating graceful shutdown...")
	janitorCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	if err := database.Close(db); err != nil {
		logger.Error("Database close error", zap.Error(err))
	}

	logger.Info("Payment service stopped gracefully")
}

// runPendingOrderJanitor clears pending orders whose checkout was abandoned.
func runPendingOrderJanitor(ctx context.Context, pending repository.PendingOrderRepository, logger *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := pending.DeleteExpired(ctx, time.Now().Add(-pendingOrderTTL))
			if err != nil {
				logger.Error("Pending order cleanup failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				logger.Info("Expired pending orders removed", zap.Int64("count", removed))
			}
		}
	}
}
