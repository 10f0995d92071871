// internal/strategy/runner.go
package strategy

import (
	"errors"
	"fmt"

	"step-strategy-backtester/internal/charts"
	"step-strategy-backtester/internal/core/domain/entities"
	"step-strategy-backtester/internal/core/domain/store"
	"step-strategy-backtester/internal/history"
	"step-strategy-backtester/internal/params"
	"step-strategy-backtester/internal/stats"
	"step-strategy-backtester/internal/trading"
	"step-strategy-backtester/pkg/logger"
	"step-strategy-backtester/pkg/utils"
)

var ErrInvalidTimeframes = errors.New("candle timeframe must be a positive multiple of tick timeframe")

// RunConfig - настройки прогона бэктеста
type RunConfig struct {
	CandleTimeframe  int // В минутах
	TickTimeframe    int // В минутах
	InitialBalance   float64
	Spread           float64 // Полный спред в ценовом выражении
	UseSpread        bool
	OptimizationMode bool // Без трасс графика
	Holidays         []utils.Holiday
}

// Report - итог прогона бэктеста
type Report struct {
	Statistics  *stats.Statistics
	Balances    trading.Balances
	Trades      int
	Performance float64 // Доходность в процентах от стартового баланса
	Traces      *charts.Traces
}

// Results готовит итог прогона для вывода
func (r *Report) Results() map[string]string {
	return map[string]string{
		"Initial balance":    fmt.Sprintf("%.2f", r.Balances.Initial),
		"Final balance":      fmt.Sprintf("%.2f", r.Balances.Real),
		"Performance":        fmt.Sprintf("%.2f%%", r.Performance),
		"Trades":             fmt.Sprintf("%d", r.Trades),
		"Working levels":     fmt.Sprintf("%d", r.Statistics.NumberOfWorkingLevels),
		"Tendency changes":   fmt.Sprintf("%d", r.Statistics.NumberOfTendencyChanges),
		"Deleted by expiry":  fmt.Sprintf("%d", r.Statistics.DeletedByExpirationByDistance+r.Statistics.DeletedByExpirationByTime),
		"Deleted by targets": fmt.Sprintf("%d", r.Statistics.DeletedByPriceBeingBeyondStopLoss),
	}
}

// Run проигрывает исторические данные через стратегию.
// Тики идут сплошным потоком, свеча подаётся на первом тике её интервала.
func Run(data *history.HistoricalData, strategyParams *params.Params, cfg RunConfig) (*Report, error) {
	if cfg.TickTimeframe < 1 || cfg.CandleTimeframe < 1 || cfg.CandleTimeframe%cfg.TickTimeframe != 0 {
		return nil, ErrInvalidTimeframes
	}

	iterationsPerCandle := cfg.CandleTimeframe / cfg.TickTimeframe

	var traces *charts.Traces
	if !cfg.OptimizationMode {
		traces = charts.NewTraces(len(data.Candles))
	}

	st := store.NewStore()
	statistics := stats.New()
	engine := trading.NewEngine(st, trading.NewConfig(cfg.InitialBalance, cfg.Spread, cfg.UseSpread))

	strategy := New(st, strategyParams, statistics, engine, cfg.Holidays, traces)

	for i, tick := range data.Ticks {
		candleIndex := i / iterationsPerCandle
		if candleIndex >= len(data.Candles) {
			break
		}

		var candle *entities.Candle
		if i%iterationsPerCandle == 0 {
			candle = data.Candles[candleIndex]
		}

		if err := strategy.RunIteration(tick, candle, candleIndex); err != nil {
			if errors.Is(err, trading.ErrNonPositiveBalance) {
				logger.Warn("Backtest stopped at tick %s: %v", tick.Time, err)
				break
			}

			return nil, err
		}
	}

	balances := engine.Config().Balances

	return &Report{
		Statistics:  statistics,
		Balances:    balances,
		Trades:      engine.Config().Trades,
		Performance: utils.RoundValue((balances.Real - balances.Initial) / balances.Initial * 100),
		Traces:      traces,
	}, nil
}
