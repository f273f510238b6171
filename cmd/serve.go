package cmd

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sigmora-labs/ms-go-orders/app/controller"
	"github.com/sigmora-labs/ms-go-orders/app/provider"
	"github.com/sigmora-labs/ms-go-orders/app/repository"
	"github.com/sigmora-labs/ms-go-orders/app/service"
	"github.com/sigmora-labs/ms-go-orders/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the Echo HTTP server for checkout, webhooks, catalog reads, and order admin endpoints.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, orderService, providerRegistry, cleanup := mustCreateOrderService()
	defer cleanup()

	orderController := controller.NewOrderController(orderService, providerRegistry)
	e := setupHTTPServer(orderController)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}

	logrus.Info("Server stopped")
}

func setupHTTPServer(orderController *controller.OrderController) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
				"request_id": v.RequestID,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.GET("/health", orderController.Health)

	products := e.Group("/products")
	products.GET("", orderController.ListProducts)
	products.GET("/:id", orderController.GetProduct)
	products.POST("/:product_id/tiers/:tier_id/checkout", orderController.Checkout)

	orders := e.Group("/orders")
	orders.GET("", orderController.ListOrders)
	orders.GET("/:order_id", orderController.GetOrder)

	payments := e.Group("/payments")
	payments.GET("/success", orderController.PaymentSuccess)
	payments.GET("/cancel", orderController.PaymentCancel)

	webhooks := e.Group("/webhooks")
	webhooks.POST("/:provider", orderController.HandleWebhook)

	return e
}

func mustCreateOrderService() (*config.Config, *service.OrderService, *provider.Registry, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	orderRepo := repository.NewOrderRepository(db)
	eventRepo := repository.NewOrderEventRepository(db)
	webhookRepo := repository.NewWebhookLogRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	nowPayments := provider.NewNowPaymentsProvider(provider.NowPaymentsConfig{
		APIKey:       cfg.NowPayments.APIKey,
		IPNSecretKey: cfg.NowPayments.IPNSecretKey,
		BaseURL:      cfg.NowPayments.BaseURL,
		HTTPTimeout:  cfg.NowPayments.HTTPTimeout,
	})

	providerRegistry := provider.NewRegistry(nowPayments)
	orderService := service.NewOrderService(
		orderRepo,
		eventRepo,
		webhookRepo,
		catalogRepo,
		providerRegistry,
		cfg.Checkout,
		cfg.Orders,
	)

	cleanup := func() {
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	return cfg, orderService, providerRegistry, cleanup
}
