// internal/strategy/strategy.go
package strategy

import (
	"errors"

	"step-strategy-backtester/internal/charts"
	"step-strategy-backtester/internal/core/domain/angles"
	"step-strategy-backtester/internal/core/domain/corridors"
	"step-strategy-backtester/internal/core/domain/entities"
	"step-strategy-backtester/internal/core/domain/levels"
	"step-strategy-backtester/internal/core/domain/orders"
	"step-strategy-backtester/internal/core/domain/store"
	"step-strategy-backtester/internal/params"
	"step-strategy-backtester/internal/stats"
	"step-strategy-backtester/internal/trading"
	"step-strategy-backtester/pkg/utils"
)

// Strategy объединяет компоненты стратегии и проводит через них
// поток тиков и свечей
type Strategy struct {
	store      *store.Store
	params     *params.Params
	statistics *stats.Statistics
	engine     *trading.Engine
	levels     *levels.LevelUtils
	orders     *orders.OrderUtils
	corridors  *corridors.Corridors
	traces     *charts.Traces // nil в режиме оптимизации
}

// New собирает стратегию из общего хранилища и торгового движка
func New(
	st *store.Store,
	strategyParams *params.Params,
	statistics *stats.Statistics,
	engine *trading.Engine,
	holidays []utils.Holiday,
	traces *charts.Traces,
) *Strategy {
	conditions := levels.NewDefaultConditions()

	return &Strategy{
		store:      st,
		params:     strategyParams,
		statistics: statistics,
		engine:     engine,
		levels:     levels.NewLevelUtils(st, statistics, conditions, holidays),
		orders:     orders.NewOrderUtils(st, statistics, engine, conditions, traces),
		corridors:  corridors.New(st, corridors.NewDefaultPolicy()),
		traces:     traces,
	}
}

// RunIteration обрабатывает очередной тик. Свеча передаётся только на
// первом тике её интервала, на остальных тиках она равна nil.
// chartIndex - индекс текущей свечи для трасс графика.
func (s *Strategy) RunIteration(tick *entities.Tick, candle *entities.Candle, chartIndex int) error {
	s.store.CreateTick(tick)
	if err := s.store.UpdateCurrentTick(tick.ID); err != nil {
		return err
	}

	if candle != nil {
		if err := s.handleNewCandle(candle, chartIndex); err != nil {
			return err
		}
	}

	if err := s.handleCrossedLevel(tick); err != nil {
		return err
	}

	currentCandle, err := s.store.GetCurrentCandle()
	if err != nil {
		return err
	}

	volatility := currentCandle.Volatility

	if err := s.orders.UpdateOrders(tick, s.params, chartIndex); err != nil {
		return err
	}

	if err := s.levels.RemoveInvalidWorkingLevels(tick, s.params, volatility); err != nil {
		return err
	}

	if err := s.levels.UpdateMaxCrossingValueOfActiveLevels(tick); err != nil {
		return err
	}

	if err := s.levels.MoveTakeProfits(tick, s.params, volatility); err != nil {
		return err
	}

	if err := s.levels.RemoveActiveWorkingLevelsWithClosedOrders(); err != nil {
		return err
	}

	s.store.RemoveUnusedEntities()

	return nil
}

// handleNewCandle обновляет углы, коридоры и тенденцию по закрывшейся свече
func (s *Strategy) handleNewCandle(candle *entities.Candle, chartIndex int) error {
	previousCandle, err := s.store.GetCurrentCandle()
	if err != nil && !errors.Is(err, store.ErrNoCurrentCandle) {
		return err
	}

	s.store.CreateCandle(candle)
	if err := s.store.UpdateCurrentCandle(candle.ID); err != nil {
		return err
	}

	if previousCandle != nil {
		s.store.UpdateDiffs(angles.GetDiff(candle, previousCandle))
	}

	if err := s.updateAngles(candle, previousCandle); err != nil {
		return err
	}

	maxPinsDeviationPct := s.params.GetPoint(params.MaxDistanceFromCorridorLeadingCandlePinsPct)

	if err := s.corridors.UpdateGeneralCorridor(candle, maxPinsDeviationPct); err != nil {
		return err
	}

	if err := s.corridors.UpdateCorridorsNearWorkingLevels(candle, s.params); err != nil {
		return err
	}

	return s.updateTendency(candle, chartIndex)
}

// updateAngles ищет новый угол на предыдущей свече по паре разниц
// ведущих цен и помещает его в соответствующий слот
func (s *Strategy) updateAngles(candle, previousCandle *entities.Candle) error {
	if previousCandle == nil {
		return nil
	}

	currentDiff, ok := s.store.CurrentDiff()
	if !ok {
		return nil
	}

	previousDiff, ok := s.store.PreviousDiff()
	if !ok {
		return nil
	}

	minAngle, maxAngle := angles.AngleSlots(s.store)

	candidate := angles.GetNewAngle(
		previousCandle,
		currentDiff,
		previousDiff,
		maxAngle,
		minAngle,
		s.params.GetRatio(params.MinDistanceBetweenNewAndCurrentMaxMinAngles, candle.Volatility),
		s.params.GetRatio(params.MinDistanceBetweenCurrentMaxAndMinAnglesForNewInnerAngleToAppear, candle.Volatility),
	)

	if candidate == nil {
		return nil
	}

	return angles.UpdateAngles(candidate, s.store)
}

// updateTendency обрабатывает пересечение угла свечой: обновляет тенденцию
// и при необходимости создаёт новый рабочий уровень с цепочкой ордеров
func (s *Strategy) updateTendency(candle *entities.Candle, chartIndex int) error {
	minAngle, maxAngle := angles.AngleSlots(s.store)

	crossed := angles.GetCrossedAngle(candle, minAngle, maxAngle)
	if crossed == nil {
		return nil
	}

	shouldCreateLevel, err := s.levels.UpdateTendency(crossed, candle, s.params)
	if err != nil {
		return err
	}

	if !shouldCreateLevel {
		return nil
	}

	level := s.levels.CreateWorkingLevel(crossed)

	if s.traces != nil {
		s.traces.AddWorkingLevel(level.Price, chartIndex)
	}

	return nil
}

// handleCrossedLevel строит цепочку отложенных ордеров уровня,
// цену которого пересёк текущий тик
func (s *Strategy) handleCrossedLevel(tick *entities.Tick) error {
	crossed := s.levels.GetCrossedLevel(tick.Close)
	if crossed == nil {
		return nil
	}

	chain, err := s.store.GetWorkingLevelChainOfOrders(crossed.ID)
	if err != nil {
		return err
	}

	if len(chain) > 0 {
		return nil
	}

	// Одновременно торгует только одна цепочка ордеров
	if s.store.HasOpenedOrders() {
		if err := s.store.RemoveWorkingLevel(crossed.ID); err != nil {
			return err
		}

		s.statistics.DeletedByAnotherActiveChainOfOrders++
		s.statistics.NumberOfWorkingLevels--

		return nil
	}

	currentCandle, err := s.store.GetCurrentCandle()
	if err != nil {
		return err
	}

	newChain, err := s.orders.GetNewChainOfOrders(
		crossed,
		s.params,
		currentCandle.Volatility,
		s.engine.Config().Balances.Real,
	)
	if err != nil {
		return err
	}

	for _, order := range newChain {
		if err := s.store.CreateOrder(order); err != nil {
			return err
		}
	}

	return nil
}
