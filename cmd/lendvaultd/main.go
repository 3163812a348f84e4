package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lendvault/config"
	"lendvault/crypto"
	"lendvault/gateway/middleware"
	"lendvault/gateway/routes"
	"lendvault/native/lending"
	"lendvault/observability"
	"lendvault/observability/logging"
	"lendvault/storage/memory"
)

// moduleAddress derives the protocol-owned account for a named role. The
// payload is the role name padded to the fixed address width, so the same
// role always maps to the same address.
func moduleAddress(name string) crypto.Address {
	raw := make([]byte, 20)
	copy(raw, name)
	return crypto.NewAddress(crypto.ModulePrefix, raw)
}

func main() {
	configPath := flag.String("config", "", "path to the TOML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup("lendvaultd", cfg.Environment)

	vault := moduleAddress("lending/vault")
	reserve := moduleAddress("lending/reserve")
	treasury, err := cfg.Treasury(moduleAddress("lending/treasury"))
	if err != nil {
		logger.Error("resolve treasury address", "error", err)
		os.Exit(1)
	}

	store := memory.NewStore()
	oracle := lending.NewManualOracle()
	seeds, err := cfg.SeedPrices()
	if err != nil {
		logger.Error("parse price seeds", "error", err)
		os.Exit(1)
	}
	for token, price := range seeds {
		oracle.SetPrice(token, price)
	}

	engine := lending.NewEngine(vault, reserve, treasury, cfg.Lending.RiskParameters())
	engine.SetState(store)
	engine.SetOracle(oracle)
	engine.SetEmitter(observability.NewMetricsEmitter(nil))
	for _, token := range cfg.CollateralTokens {
		if err := engine.AddCollateralToken(token); err != nil {
			logger.Error("register collateral token", "token", token, "error", err)
			os.Exit(1)
		}
	}
	for _, token := range cfg.LendingTokens {
		if err := engine.AddLendingToken(token); err != nil {
			logger.Error("register lending token", "token", token, "error", err)
			os.Exit(1)
		}
	}

	limiter := middleware.NewRateLimiter(middleware.RateLimit{
		RequestsPerMinute: float64(cfg.RateLimit.RequestsPerMinute),
		Burst:             cfg.RateLimit.Burst,
	})
	handler, err := routes.New(routes.Config{
		Engine:      engine,
		Oracle:      oracle,
		RateLimiter: limiter,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("configure routes", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddress,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("metrics listening", "address", cfg.MetricsAddress)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()
	go func() {
		logger.Info("gateway listening", "address", cfg.ListenAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("gateway server", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("gateway shutdown", "error", err)
	}
	if err := metricsServer.Shutdown(ctx); err != nil {
		logger.Error("metrics shutdown", "error", err)
	}
}
