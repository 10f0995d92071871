// internal/history/service.go
package history

import (
	"context"
	"errors"
	"math"
	"time"

	"step-strategy-backtester/internal/core/domain/entities"
	"step-strategy-backtester/pkg/logger"
	"step-strategy-backtester/pkg/utils"
)

var (
	ErrNoCandles        = errors.New("no candles for the requested period")
	ErrNoTicks          = errors.New("no ticks for the requested period")
	ErrDataNotOverlap   = errors.New("candles and ticks do not overlap in time")
	ErrNonPositiveRange = errors.New("period end must be after period start")
)

// Количество дней, по которым считается волатильность свечи
const daysForVolatility = 7

// HistoricalData - синхронизированные свечи и тики периода бэктестинга
type HistoricalData struct {
	Candles []*entities.Candle
	Ticks   []*entities.Tick
}

// LoadRequest - параметры загрузки исторических данных
type LoadRequest struct {
	Symbol          string
	CandleTimeframe int // В минутах
	TickTimeframe   int // В минутах
	From            time.Time
	To              time.Time
}

// Service загружает исторические котировки из базы, кэшируя их в Redis,
// и готовит их к проигрыванию: считает волатильность свечей и
// синхронизирует свечи с тиками
type Service struct {
	repo     Repository
	cache    *Cache // nil - без кэширования
	cacheTTL time.Duration
}

// NewService создаёт сервис исторических данных
func NewService(repo Repository, cache *Cache, cacheTTL time.Duration) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// LoadHistoricalData загружает и синхронизирует котировки периода
func (s *Service) LoadHistoricalData(ctx context.Context, req LoadRequest) (*HistoricalData, error) {
	if !req.To.After(req.From) {
		return nil, ErrNonPositiveRange
	}

	candleRows, err := s.loadCandles(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(candleRows) == 0 {
		return nil, ErrNoCandles
	}

	tickRows, err := s.loadTicks(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(tickRows) == 0 {
		return nil, ErrNoTicks
	}

	candles := candlesWithVolatility(candleRows, req.CandleTimeframe)

	ticks := make([]*entities.Tick, 0, len(tickRows))
	for _, row := range tickRows {
		ticks = append(ticks, entities.NewTick(row.Time, row.High, row.Low, row.Close))
	}

	return syncCandlesAndTicks(candles, ticks, req.CandleTimeframe)
}

func (s *Service) loadCandles(ctx context.Context, req LoadRequest) ([]CandleRow, error) {
	if s.cache != nil {
		candles, found, err := s.cache.GetCandles(ctx, req.Symbol, req.CandleTimeframe, req.From, req.To)
		if err != nil {
			logger.Warn("Failed to read candles from cache: %v", err)
		} else if found {
			return candles, nil
		}
	}

	candles, err := s.repo.GetCandles(ctx, req.Symbol, req.CandleTimeframe, req.From, req.To)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(candles) > 0 {
		if err := s.cache.SetCandles(ctx, req.Symbol, req.CandleTimeframe, req.From, req.To, candles, s.cacheTTL); err != nil {
			logger.Warn("Failed to cache candles: %v", err)
		}
	}

	return candles, nil
}

func (s *Service) loadTicks(ctx context.Context, req LoadRequest) ([]TickRow, error) {
	if s.cache != nil {
		ticks, found, err := s.cache.GetTicks(ctx, req.Symbol, req.TickTimeframe, req.From, req.To)
		if err != nil {
			logger.Warn("Failed to read ticks from cache: %v", err)
		} else if found {
			return ticks, nil
		}
	}

	ticks, err := s.repo.GetTicks(ctx, req.Symbol, req.TickTimeframe, req.From, req.To)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(ticks) > 0 {
		if err := s.cache.SetTicks(ctx, req.Symbol, req.TickTimeframe, req.From, req.To, ticks, s.cacheTTL); err != nil {
			logger.Warn("Failed to cache ticks: %v", err)
		}
	}

	return ticks, nil
}

// candlesWithVolatility строит свечи, вычисляя волатильность каждой как
// среднюю высоту свечей за предыдущие daysForVolatility дней.
// Пока окно не накопилось, берутся все предыдущие свечи.
func candlesWithVolatility(rows []CandleRow, candleTimeframe int) []*entities.Candle {
	window := daysForVolatility * 24 * 60 / candleTimeframe
	if window < 1 {
		window = 1
	}

	sizes := make([]float64, 0, len(rows))
	candles := make([]*entities.Candle, 0, len(rows))

	for i, row := range rows {
		from := i - window
		if from < 0 {
			from = 0
		}

		previousSizes := sizes[from:i]
		if len(previousSizes) == 0 {
			previousSizes = []float64{utils.PriceToPoints(row.High - row.Low)}
		}

		volatility := math.Round(utils.Mean(previousSizes))

		candles = append(candles, entities.NewCandle(row.Time, entities.CandlePrices{
			Open:  row.Open,
			High:  row.High,
			Low:   row.Low,
			Close: row.Close,
		}, volatility))

		sizes = append(sizes, utils.PriceToPoints(row.High-row.Low))
	}

	return candles
}

// syncCandlesAndTicks обрезает края данных так, чтобы тики не выходили
// за пределы свечей, а свечи были покрыты тиками
func syncCandlesAndTicks(candles []*entities.Candle, ticks []*entities.Tick, candleTimeframe int) (*HistoricalData, error) {
	candleDuration := time.Duration(candleTimeframe) * time.Minute

	// Тики до открытия первой свечи
	for len(ticks) > 0 && ticks[0].Time.Before(candles[0].Time) {
		ticks = ticks[1:]
	}

	if len(ticks) == 0 {
		return nil, ErrDataNotOverlap
	}

	// Свечи после последнего тика
	for len(candles) > 0 && candles[len(candles)-1].Time.After(ticks[len(ticks)-1].Time) {
		candles = candles[:len(candles)-1]
	}

	if len(candles) == 0 {
		return nil, ErrDataNotOverlap
	}

	// Тики после закрытия последней свечи
	lastCandleClose := candles[len(candles)-1].Time.Add(candleDuration)
	for len(ticks) > 0 && !ticks[len(ticks)-1].Time.Before(lastCandleClose) {
		ticks = ticks[:len(ticks)-1]
	}

	if len(ticks) == 0 {
		return nil, ErrDataNotOverlap
	}

	return &HistoricalData{Candles: candles, Ticks: ticks}, nil
}
