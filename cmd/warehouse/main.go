package main

import (
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"FoodStore/internal/warehouse"
	"FoodStore/pkg/kit"
)

func main() {
	service := "warehouse"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "8000")

	catalog := warehouse.NewCatalog(log)

	reg := prometheus.NewRegistry()
	s := &warehouse.Server{
		Catalog: catalog,
		Log:     log,
		Metrics: warehouse.NewStockMetrics(reg),
	}

	h := warehouse.NewHandler(s, warehouse.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   os.Getenv("METRICS_TOKEN"),
		MutationLimit:  getenvInt("ORDER_RATE_LIMIT", 0, log),
		MutationWindow: getenvDuration("ORDER_RATE_WINDOW", 0, log),
	})

	if err := kit.RunHTTPServer(":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int, log *zap.Logger) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatal("invalid integer env var", zap.String("key", k), zap.String("value", v))
	}
	return n
}

func getenvDuration(k string, def time.Duration, log *zap.Logger) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatal("invalid duration env var", zap.String("key", k), zap.String("value", v))
	}
	return d
}
