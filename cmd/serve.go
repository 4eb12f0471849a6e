package cmd

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/SwayEquilibrium/pos-payments/app/controller"
	"github.com/SwayEquilibrium/pos-payments/app/factory"
	"github.com/SwayEquilibrium/pos-payments/app/provider"
	"github.com/SwayEquilibrium/pos-payments/app/repository"
	"github.com/SwayEquilibrium/pos-payments/app/service"
	"github.com/SwayEquilibrium/pos-payments/app/types"
	"github.com/SwayEquilibrium/pos-payments/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the HTTP server exposing payment, refund, status, webhook, and health endpoints.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	_, cfg, paymentService, cleanup := mustCreatePaymentService()
	defer cleanup()

	paymentController := controller.NewPaymentController(paymentService)
	e := setupHTTPServer(paymentController)

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

func setupHTTPServer(paymentController *controller.PaymentController) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

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
	e.Use(requireRequestID())

	e.GET("/health", paymentController.Health)

	payments := e.Group("/payments")
	payments.POST("", paymentController.ProcessPayment)
	payments.GET("/:provider/:id/status", paymentController.GetTransactionStatus)

	e.POST("/refunds", paymentController.ProcessRefund)

	webhooks := e.Group("/webhooks/providers")
	webhooks.POST("/:provider", paymentController.HandleProviderWebhook)

	return e
}

// requireRequestID makes X-Request-ID mandatory; it becomes the correlation
// id propagated through every payment context.
func requireRequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			requestID := strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderXRequestID))
			if requestID == "" {
				return ctx.JSON(http.StatusBadRequest, &types.ErrorResponse{Error: "x-request-id header is required"})
			}
			ctx.Response().Header().Set(echo.HeaderXRequestID, requestID)
			return next(ctx)
		}
	}
}

// mustCreatePaymentService loads configuration, opens the legacy store when
// the bridge is enabled, and performs the explicit, centralized provider
// registration for this deployment.
func mustCreatePaymentService() (*provider.Registry, *config.Config, *service.PaymentService, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := factory.ConfigureLogging(cfg.Log.Level); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	registry := provider.NewRegistry(factory.NewModuleLogger("provider-registry"))
	registry.SetHealthCheckTimeout(cfg.Registry.HealthCheckTimeout)

	if err := registry.Register(provider.NewCashProvider(), &types.ProviderConfig{
		Enabled:  true,
		Priority: 10,
	}); err != nil {
		logrus.WithError(err).Fatal("Failed to register cash provider")
	}

	cleanup := func() {}
	legacyName := ""
	if cfg.Registry.LegacyBridgeEnabled {
		db, err := sql.Open("mysql", cfg.MySQL.DSN)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to legacy database")
		}

		db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

		if err := db.Ping(); err != nil {
			_ = db.Close()
			logrus.WithError(err).Fatal("Failed to ping legacy database")
		}

		legacyProvider := provider.NewLegacyProvider(repository.NewLegacySaleRepository(db))
		if err := registry.Register(legacyProvider, &types.ProviderConfig{
			Enabled:  true,
			Priority: 100,
		}); err != nil {
			_ = db.Close()
			logrus.WithError(err).Fatal("Failed to register legacy bridge")
		}
		legacyName = legacyProvider.Name()

		cleanup = func() {
			if err := db.Close(); err != nil {
				logrus.WithError(err).Warn("Failed to close legacy database")
			}
		}
	}

	if err := registry.SetDefault(cfg.Registry.DefaultProvider); err != nil {
		logrus.WithError(err).Fatal("Failed to set default provider")
	}

	migrations := make([]provider.MigrationConfig, 0, len(cfg.Rollout.Entries))
	for _, entry := range cfg.Rollout.Entries {
		migrations = append(migrations, provider.MigrationConfig{
			Method:            entry.Method,
			TenantIDs:         entry.TenantIDs,
			RolloutPercentage: entry.RolloutPercentage,
		})
	}

	paymentService := service.NewPaymentService(registry, migrations, legacyName, factory.NewModuleLogger("payments-service"))

	return registry, cfg, paymentService, cleanup
}
