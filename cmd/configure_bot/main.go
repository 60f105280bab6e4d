package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strconv"
	"time"

	"cryptosage/algo"
	"cryptosage/config"
	"cryptosage/logging"
	"cryptosage/storage"
)

func main() {
	var (
		kind      = flag.String("kind", "dca", "Bot kind: dca, grid, signal")
		name      = flag.String("name", "", "Bot name (required when creating)")
		exchange  = flag.String("exchange", "Binance", "Exchange: Binance, Coinbase, KuCoin, Bitfinex")
		pair      = flag.String("pair", "BTC_USDT", "Trading pair for DCA and grid bots")
		pairs     = flag.String("pairs", "BTC_USDT", "Comma-separated pairs for signal bots")
		preset    = flag.String("preset", "conservative", "Risk preset: conservative, moderate, aggressive")
		base      = flag.Float64("base", 100, "DCA base order size")
		averaging = flag.Float64("averaging", 50, "DCA averaging order size")
		lower     = flag.Float64("lower", 0, "Grid lower price")
		upper     = flag.Float64("upper", 0, "Grid upper price")
		levels    = flag.Int("levels", 0, "Grid levels (overrides preset)")
		volume    = flag.Float64("volume", 10, "Grid order volume")
		usage     = flag.Float64("usage", 500, "Signal bot max investment usage")
		show      = flag.Bool("show", false, "Show saved bots")
		stop      = flag.String("stop", "", "Stop the bot with this id or name")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		fmt.Println("CryptoSage Trading Bot Configuration Tool")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  ./configure_bot -kind=dca -name=\"BTC DCA\" -preset=moderate")
		fmt.Println("  ./configure_bot -kind=grid -name=\"ETH range\" -pair=ETH_USDT -lower=2800 -upper=3600")
		fmt.Println("  ./configure_bot -kind=signal -name=Signals -pairs=BTC_USDT,SOL_USDT")
		fmt.Println("  ./configure_bot -show")
		fmt.Println("  ./configure_bot -stop=<id or name>")
		fmt.Println()
		fmt.Println("Presets:")
		for _, p := range algo.PresetNames() {
			s := algo.PresetRiskSettings()[p]
			fmt.Printf("  %-13s %.1f%% take profit, %.1f%% stop loss, %d averaging orders, %d grid levels\n",
				p+":", s.TakeProfit, s.StopLoss, s.MaxAveragingOrders, s.GridLevels)
		}
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("❌ Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("❌ Failed to open store: %v", err)
	}
	manager := algo.NewManager(store, cfg.Bots.MaxExposure, logger)

	switch {
	case *show:
		showBots(ctx, manager)
	case *stop != "":
		stopBot(ctx, manager, *stop)
	default:
		k, err := algo.ParseKind(*kind)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		f := algo.NewForm(k)
		values := map[string]string{
			"name":     *name,
			"exchange": *exchange,
		}
		switch k {
		case algo.KindDCA:
			values["pair"] = *pair
			values["base_order_size"] = formatFloat(*base)
			values["averaging_order_size"] = formatFloat(*averaging)
		case algo.KindGrid:
			values["pair"] = *pair
			values["lower_price"] = formatFloat(*lower)
			values["upper_price"] = formatFloat(*upper)
			values["order_volume"] = formatFloat(*volume)
		case algo.KindSignal:
			values["pairs"] = *pairs
			values["max_usage"] = formatFloat(*usage)
		}
		createBot(ctx, manager, f, *preset, values, *levels)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func showBots(ctx context.Context, m *algo.Manager) {
	fmt.Println("🤖 Saved Trading Bots")
	fmt.Println("═════════════════════")

	bots, err := m.List(ctx)
	if err != nil {
		fmt.Printf("❌ Error loading bots: %v\n", err)
		return
	}
	if len(bots) == 0 {
		fmt.Println("No bots saved yet.")
		return
	}

	for i, b := range bots {
		status := "🟢 Active"
		if b.Status == algo.StatusStopped {
			status = "⚪ Stopped"
		}
		fmt.Printf("%d. %s (%s, %s on %s) %s\n", i+1, b.Name, b.Kind.Title(), b.Pair, b.Exchange, status)
		fmt.Printf("   ID:           %s\n", b.ID)
		fmt.Printf("   Take Profit:  %.2f%%\n", b.Exit.TakeProfit)
		if b.Exit.StopLossEnabled {
			fmt.Printf("   Stop Loss:    %.2f%%\n", b.Exit.StopLoss)
		}
		fmt.Printf("   Exposure:     $%.2f\n", b.Exposure())
		fmt.Printf("   Created:      %s\n", b.CreatedAt.Format(time.RFC1123))
		fmt.Println()
	}

	fmt.Printf("💡 Total Active Exposure: $%.2f\n", algo.CalculateTotalExposure(bots))
}

func stopBot(ctx context.Context, m *algo.Manager, ref string) {
	bot, err := m.Find(ctx, ref)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	bot, err = m.Stop(ctx, bot.ID)
	if err != nil {
		log.Fatalf("❌ Failed to stop bot: %v", err)
	}
	fmt.Printf("⏹  Stopped %s (%s)\n", bot.Name, bot.ID)
}

func createBot(ctx context.Context, m *algo.Manager, f *algo.Form, preset string, values map[string]string, levels int) {
	fmt.Printf("🛠️  Creating %s with the '%s' preset...\n", f.Kind.Title(), preset)

	if err := algo.ApplyPreset(f, preset); err != nil {
		log.Fatalf("❌ %v", err)
	}
	if levels > 0 {
		values["levels"] = strconv.Itoa(levels)
	}
	for k, v := range values {
		if err := f.Set(k, v); err != nil {
			log.Fatalf("❌ %v", err)
		}
	}

	cfg, err := algo.ParseForm(f, time.Now())
	var verr *algo.ValidationError
	if errors.As(err, &verr) {
		fmt.Println("❌ Invalid configuration:")
		for _, p := range verr.Problems {
			fmt.Printf("   %s: %s\n", p.Label, p.Message)
		}
		log.Fatal("Fix the flags above and try again")
	}
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	bot, err := m.Create(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to save bot: %v", err)
	}

	fmt.Println("✅ Bot created successfully!")
	fmt.Println()
	fmt.Printf("📋 %s\n", bot.Name)
	fmt.Printf("   ID:          %s\n", bot.ID)
	fmt.Printf("   Pair:        %s on %s\n", bot.Pair, bot.Exchange)
	fmt.Printf("   Take Profit: %.2f%%\n", bot.Exit.TakeProfit)
	switch {
	case bot.DCA != nil:
		fmt.Printf("   Averaging:   %v%% deviations\n", bot.DCA.AveragingDeviations())
		fmt.Printf("   Budget:      $%.2f\n", bot.DCA.RequiredBudget())
	case bot.Grid != nil:
		fmt.Printf("   Grid:        %d levels, %.2f%% apart\n", bot.Grid.Levels, bot.Grid.StepPercent())
	case bot.Signal != nil:
		fmt.Printf("   Pairs:       %v\n", bot.Signal.Pairs)
	}
	fmt.Println()
	fmt.Println("⚠️  Bots are saved configurations only; no orders are placed.")
}
