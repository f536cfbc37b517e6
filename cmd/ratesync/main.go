// Command ratesync fetches the current USD exchange rate from the central
// bank feed and stores it. It is meant to run once a day from cron or a
// scheduler; re-running on the same day overwrites that day's rate.
package main

import (
	"context"
	"fmt"
	"os"

	"hamyon/internal/config"
	"hamyon/internal/database"
	"hamyon/internal/logger"
	"hamyon/internal/services"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Rate sync error: %v", err)
	}
}

func run() error {
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	exchangeService := services.NewExchangeService(dbManager.DB())
	updater := services.NewCBUService(appConfig.RatesURL, appConfig.PrimaryCurrency, appConfig.RatesTimeout, exchangeService)

	ctx, cancel := context.WithTimeout(context.Background(), appConfig.RatesTimeout)
	defer cancel()

	rate, err := updater.UpdateUSDRate(ctx)
	if err != nil {
		return fmt.Errorf("failed to update USD rate: %w", err)
	}

	logger.Get().Infof("Stored %s/%s rate %s for %s",
		rate.Base, rate.Quote, rate.Rate.String(), rate.Date.Format("2006-01-02"))
	return nil
}
