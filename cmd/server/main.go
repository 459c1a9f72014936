// Package main is the entry point for the Vantage portfolio risk analytics
// service. It exposes an HTTP API that fetches historical prices, converts
// them to a common reference currency, and computes portfolio-level risk
// metrics: correlation, value at risk, and Sharpe ratios.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/vantagefin/vantage/internal/clientdata"
	"github.com/vantagefin/vantage/internal/clients/exchangerate"
	"github.com/vantagefin/vantage/internal/clients/yahoo"
	"github.com/vantagefin/vantage/internal/config"
	"github.com/vantagefin/vantage/internal/database"
	currencyhandlers "github.com/vantagefin/vantage/internal/modules/currency/handlers"
	"github.com/vantagefin/vantage/internal/modules/portfolio"
	portfoliohandlers "github.com/vantagefin/vantage/internal/modules/portfolio/handlers"
	"github.com/vantagefin/vantage/internal/modules/risk"
	riskhandlers "github.com/vantagefin/vantage/internal/modules/risk/handlers"
	"github.com/vantagefin/vantage/internal/modules/series"
	"github.com/vantagefin/vantage/internal/scheduler"
	"github.com/vantagefin/vantage/internal/server"
	"github.com/vantagefin/vantage/internal/services"
	"github.com/vantagefin/vantage/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting Vantage")

	// Cache database for exchange rates, price history, and asset metadata
	db, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "client_data.db"),
		Name: "client_data",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate cache database")
	}

	cacheRepo := clientdata.NewRepository(db.Conn())

	// Clients
	rateClient := exchangerate.NewClient(cfg.ExchangeRateURL, cacheRepo, log)
	yahooClient := yahoo.NewClient(cfg.YahooChartURL, cacheRepo, log)

	// Services
	rateService := services.NewRateService(rateClient, yahooClient, cfg.ReferenceCurrency, log)
	pipeline := services.NewPipeline(
		yahooClient,
		rateService,
		series.NewNormalizer(log),
		portfolio.NewAggregator(log),
		risk.NewAnalytics(log),
		cfg.RiskFreeRatePct,
		log,
	)

	// HTTP server
	srv := server.New(server.Config{
		Log:               log,
		Port:              cfg.Port,
		DevMode:           cfg.DevMode,
		PortfolioHandlers: portfoliohandlers.NewHandler(pipeline, log),
		CurrencyHandlers:  currencyhandlers.NewHandler(rateService, log),
		RiskHandlers:      riskhandlers.NewHandler(pipeline, log),
	})

	// Background jobs
	sched := scheduler.New(log)
	if err := sched.AddJob("@hourly", scheduler.NewRatesSyncJob(rateService, log)); err != nil {
		log.Error().Err(err).Msg("Failed to register rates sync job")
	}
	if err := sched.AddJob("@daily", clientdata.NewCleanupJob(cacheRepo, log)); err != nil {
		log.Error().Err(err).Msg("Failed to register cache cleanup job")
	}
	sched.Start()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Shutdown complete")
}
