package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"step-strategy-backtester/internal/config"
	"step-strategy-backtester/internal/history"
	"step-strategy-backtester/internal/params"
	"step-strategy-backtester/internal/strategy"
	"step-strategy-backtester/pkg/logger"
	"step-strategy-backtester/pkg/utils"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Не удалось загрузить конфигурацию: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Некорректная конфигурация: %v", err)
	}

	// Инициализируем логгер
	if err := logger.InitGlobal(cfg.LogFile, cfg.LogLevel, cfg.Debug); err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer logger.GetLogger().Close()

	printHeader("БЭКТЕСТЕР СТРАТЕГИИ STEP")
	fmt.Printf("🔧 Конфигурация:\n")
	fmt.Printf("   Символ: %s\n", cfg.Symbol)
	fmt.Printf("   Таймфрейм свечей: %d мин\n", cfg.CandleTimeframe)
	fmt.Printf("   Таймфрейм тиков: %d мин\n", cfg.TickTimeframe)
	fmt.Printf("   Период: %s - %s\n", cfg.StartDate.Format("2006-01-02"), cfg.EndDate.Format("2006-01-02"))
	fmt.Printf("   Стартовый баланс: %.2f\n", cfg.InitialBalance)
	fmt.Printf("   Спред: %v (%.5f)\n", cfg.UseSpread, cfg.Spread)
	if cfg.OptimizationMode {
		fmt.Printf("   Режим: ОПТИМИЗАЦИЯ 🚀\n")
	}
	fmt.Println()

	// Загружаем параметры стратегии
	strategyParams, err := params.LoadCSV(cfg.ParamsFile)
	if err != nil {
		log.Fatalf("Не удалось загрузить параметры стратегии: %v", err)
	}

	logger.Info("Strategy parameters loaded from %s", cfg.ParamsFile)

	// Подключаемся к базе исторических данных
	db, err := history.ConnectPostgres(cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("Не удалось подключиться к базе исторических данных: %v", err)
	}
	defer db.Close()

	logger.Info("Connected to historical data database")

	cache := history.NewCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	service := history.NewService(history.NewPostgresRepository(db), cache, cfg.CacheTTL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fmt.Println("📈 Загрузка исторических данных...")

	data, err := service.LoadHistoricalData(ctx, history.LoadRequest{
		Symbol:          cfg.Symbol,
		CandleTimeframe: cfg.CandleTimeframe,
		TickTimeframe:   cfg.TickTimeframe,
		From:            cfg.StartDate,
		To:              cfg.EndDate,
	})
	if err != nil {
		log.Fatalf("Не удалось загрузить исторические данные: %v", err)
	}

	logger.Info("Historical data loaded: %d candles, %d ticks", len(data.Candles), len(data.Ticks))

	fmt.Println("⚙️  Прогон стратегии...")

	startTime := time.Now()

	report, err := strategy.Run(data, strategyParams, strategy.RunConfig{
		CandleTimeframe:  cfg.CandleTimeframe,
		TickTimeframe:    cfg.TickTimeframe,
		InitialBalance:   cfg.InitialBalance,
		Spread:           cfg.Spread,
		UseSpread:        cfg.UseSpread,
		OptimizationMode: cfg.OptimizationMode,
		Holidays:         utils.DefaultHolidays,
	})
	if err != nil {
		log.Fatalf("Ошибка прогона стратегии: %v", err)
	}

	logger.Info("Backtest finished in %v", time.Since(startTime).Round(time.Millisecond))

	logger.Summary(report.Results())

	printHeader("Завершение работы")
}

func printHeader(text string) {
	width := 80
	padding := (width - len(text)) / 2

	if padding < 0 {
		padding = 0
	}

	fmt.Println(strings.Repeat("═", width))
	fmt.Printf("%s%s%s\n",
		strings.Repeat(" ", padding),
		text,
		strings.Repeat(" ", width-len(text)-padding))
	fmt.Println(strings.Repeat("═", width))
}
