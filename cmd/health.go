package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/SwayEquilibrium/pos-payments/app/provider"
)

var workerMode bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe the health of every registered payment provider",
	Run: func(_ *cobra.Command, _ []string) {
		registry, cfg, _, cleanup := mustCreatePaymentService()
		defer cleanup()

		if workerMode {
			runHealthWorker(registry, cfg.Registry.HealthProbeInterval)
			return
		}
		runHealthProbe(registry)
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().BoolVar(&workerMode, "worker", false, "Run continuously using the configured probe interval")
}

func runHealthWorker(registry *provider.Registry, interval time.Duration) {
	if interval <= 0 {
		logrus.Fatal("invalid health probe interval")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runHealthProbe(registry)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	for {
		select {
		case <-quit:
			logrus.Info("Health worker shutdown requested")
			return
		case <-ticker.C:
			runHealthProbe(registry)
		}
	}
}

func runHealthProbe(registry *provider.Registry) {
	start := time.Now()
	results := registry.HealthCheck(context.Background(), nil)
	latency := time.Since(start)

	healthy := true
	for name, status := range results {
		entry := logrus.WithFields(logrus.Fields{
			"provider":  name,
			"healthy":   status.Healthy,
			"can_query": status.Capabilities.CanQuery,
		})
		if status.Details != "" {
			entry = entry.WithField("details", status.Details)
		}
		if status.Healthy {
			entry.Info("provider_health")
		} else {
			healthy = false
			entry.Warn("provider_health")
		}
	}

	logrus.WithFields(logrus.Fields{
		"job":       "health",
		"providers": len(results),
		"healthy":   healthy,
		"latency":   latency.String(),
	}).Info("job_completed")
}
