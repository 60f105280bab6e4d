package main

import (
	"context"
	"fmt"
	"os"

	"cryptosage/algo"
	"cryptosage/api"
	"cryptosage/assistant"
	"cryptosage/config"
	"cryptosage/logging"
	"cryptosage/models"
	"cryptosage/storage"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Printf("Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := storage.Open(context.Background(), cfg.Store)
	if err != nil {
		fmt.Printf("Error opening %s store: %v\n", cfg.Store.Backend, err)
		os.Exit(1)
	}

	model := models.NewAppModel(models.Deps{
		Config:    cfg,
		Store:     store,
		Klines:    api.NewBinanceClient(cfg.API.BinanceURL, cfg.API.BinanceFallbackURL, cfg.API.Timeout, logger),
		Markets:   api.NewCoinGeckoClient(cfg.API.CoinGeckoURL, cfg.API.Timeout, logger),
		Sentiment: api.NewSentimentClient(cfg.API.FearGreedURL, cfg.API.Timeout, logger),
		News:      api.NewNewsClient(cfg.API.CryptoCompareURL, cfg.API.Timeout, logger),
		NewStream: func(symbol string) models.TickStream {
			return api.NewTradeStream(cfg.API.BinanceStreamURL, symbol, logger)
		},
		Bots:      algo.NewManager(store, cfg.Bots.MaxExposure, logger),
		Assistant: assistant.New(store, logger),
		Logger:    logger,
	})

	logger.Info("starting", zap.String("store", cfg.Store.Backend), zap.String("symbol", cfg.Chart.Symbol))
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v", err)
		os.Exit(1)
	}
}
