// internal/core/domain/orders/orders.go

package orders

import (
	"errors"

	"step-strategy-backtester/internal/charts"
	"step-strategy-backtester/internal/core/domain/entities"
	"step-strategy-backtester/internal/core/domain/levels"
	"step-strategy-backtester/internal/core/domain/store"
	"step-strategy-backtester/internal/params"
	"step-strategy-backtester/internal/stats"
	"step-strategy-backtester/internal/trading"
	"step-strategy-backtester/pkg/utils"
)

var ErrNonPositiveBalance = errors.New("balance is not positive")

// OrderUtils управляет цепочками ордеров рабочих уровней
type OrderUtils struct {
	store      *store.Store
	statistics *stats.Statistics
	engine     *trading.Engine
	conditions levels.Conditions
	traces     *charts.Traces // nil в режиме оптимизации
}

// NewOrderUtils создаёт менеджер цепочек ордеров
func NewOrderUtils(st *store.Store, statistics *stats.Statistics, engine *trading.Engine, conditions levels.Conditions, traces *charts.Traces) *OrderUtils {
	return &OrderUtils{
		store:      st,
		statistics: statistics,
		engine:     engine,
		conditions: conditions,
		traces:     traces,
	}
}

// GetNewChainOfOrders строит цепочку отложенных ордеров уровня.
// Объём подбирается так, чтобы при срабатывании всей цепочки по stop loss
// убыток не превысил допустимую долю баланса.
func (u *OrderUtils) GetNewChainOfOrders(
	level *entities.WorkingLevel,
	strategyParams *params.Params,
	volatility float64,
	balance float64,
) ([]*entities.Order, error) {
	if balance <= 0 {
		return nil, ErrNonPositiveBalance
	}

	distanceToFirstOrder := utils.PointsToPrice(strategyParams.GetRatio(params.DistanceFromLevelToFirstOrder, volatility))
	distanceToStopLoss := utils.PointsToPrice(strategyParams.GetRatio(params.DistanceFromLevelToStopLoss, volatility))

	amountOfOrders := int(strategyParams.GetPoint(params.AmountOfOrders))
	maxLossPct := strategyParams.GetPoint(params.MaxLossPerOneChainOfOrdersPctOfBalance)

	distanceBetweenOrders := (distanceToStopLoss - distanceToFirstOrder) / float64(amountOfOrders)

	maxLoss := utils.RoundValue(balance * maxLossPct / 100)

	// Суммарный убыток цепочки по stop loss равен сумме арифметической
	// прогрессии расстояний от ордеров до stop loss
	volume := utils.RoundValue(
		maxLoss * 2 / (float64(amountOfOrders) * (2 + float64(amountOfOrders) - 1) * distanceBetweenOrders * utils.LOT),
	)

	chain := make([]*entities.Order, 0, amountOfOrders)

	for i := 0; i < amountOfOrders; i++ {
		var prices entities.OrderPrices

		if level.Direction == entities.OrderDirectionBuy {
			prices = entities.OrderPrices{
				Open:       utils.RoundPrice(level.Price - distanceToFirstOrder - float64(i)*distanceBetweenOrders),
				StopLoss:   utils.RoundPrice(level.Price - distanceToStopLoss),
				TakeProfit: level.Price,
			}
		} else {
			prices = entities.OrderPrices{
				Open:       utils.RoundPrice(level.Price + distanceToFirstOrder + float64(i)*distanceBetweenOrders),
				StopLoss:   utils.RoundPrice(level.Price + distanceToStopLoss),
				TakeProfit: level.Price,
			}
		}

		chain = append(chain, entities.NewOrder(level.Direction, volume, prices, level.ID))
	}

	return chain, nil
}

// UpdateOrders проводит текущий тик через цепочки всех уровней: активирует
// уровни, открывает и закрывает позиции, удаляет уровни с цепочками,
// попавшими в консолидацию
func (u *OrderUtils) UpdateOrders(tick *entities.Tick, strategyParams *params.Params, chartIndex int) error {
	allLevels := append(u.store.GetCreatedWorkingLevels(), u.store.GetActiveWorkingLevels()...)

	for _, level := range allLevels {
		chain, err := u.store.GetWorkingLevelChainOfOrders(level.ID)
		if err != nil {
			return err
		}

		if _, err := u.updateChain(level, chain, tick, strategyParams, chartIndex); err != nil {
			return err
		}
	}

	return nil
}

// updateChain обрабатывает цепочку одного уровня. Возвращает true,
// если уровень был удалён.
func (u *OrderUtils) updateChain(
	level *entities.WorkingLevel,
	chain []*entities.Order,
	tick *entities.Tick,
	strategyParams *params.Params,
	chartIndex int,
) (bool, error) {
	for _, order := range chain {
		switch order.Status {
		case entities.OrderStatusPending:
			if !orderIsCrossed(order, tick.Close) {
				continue
			}

			status, err := u.store.WorkingLevelStatus(level.ID)
			if err != nil {
				return false, err
			}

			if status == entities.LevelStatusCreated {
				removed, err := u.activateLevelOrRemoveIt(level, strategyParams)
				if err != nil || removed {
					return removed, err
				}
			}

			removed, err := u.openOrderOrRemoveLevel(level, chain, order, tick, chartIndex)
			if err != nil || removed {
				return removed, err
			}

		case entities.OrderStatusOpened:
			if err := u.closeOrderByTargets(order, tick); err != nil {
				return false, err
			}
		}
	}

	return false, nil
}

// activateLevelOrRemoveIt активирует созданный уровень при срабатывании
// первого ордера либо удаляет уровень, чья цепочка попала в консолидацию.
// Открытие позиции идёт общим путём активного уровня, включая проверку
// ухода цены за stop loss.
func (u *OrderUtils) activateLevelOrRemoveIt(level *entities.WorkingLevel, strategyParams *params.Params) (bool, error) {
	smallCorridor, err := u.store.GetWorkingLevelCorridor(level.ID, entities.CorridorTypeSmall)
	if err != nil {
		return false, err
	}

	minSmallCorridorLen := int(strategyParams.GetPoint(params.MinAmountOfCandlesInSmallCorridorBeforeActivationCrossingOfLevel))

	if len(smallCorridor) >= minSmallCorridorLen {
		if err := u.removeLevel(level.ID, &u.statistics.DeletedByExceedingAmountOfCandlesInSmallCorridor); err != nil {
			return false, err
		}

		return true, nil
	}

	bigCorridor, err := u.store.GetWorkingLevelCorridor(level.ID, entities.CorridorTypeBig)
	if err != nil {
		return false, err
	}

	minBigCorridorLen := int(strategyParams.GetPoint(params.MinAmountOfCandlesInBigCorridorBeforeActivationCrossingOfLevel))

	if len(bigCorridor) >= minBigCorridorLen {
		if err := u.removeLevel(level.ID, &u.statistics.DeletedByExceedingAmountOfCandlesInBigCorridor); err != nil {
			return false, err
		}

		return true, nil
	}

	return false, u.store.MoveWorkingLevelToActive(level.ID)
}

// openOrderOrRemoveLevel открывает сработавший ордер активного уровня.
// Уровень без открытых позиций, чья цена ушла за stop loss, удаляется.
func (u *OrderUtils) openOrderOrRemoveLevel(level *entities.WorkingLevel, chain []*entities.Order, order *entities.Order, tick *entities.Tick, chartIndex int) (bool, error) {
	beyondStopLoss := priceIsBeyondStopLoss(order, tick.Close)

	if beyondStopLoss && u.conditions.LevelHasNoActiveOrders(chain) {
		if err := u.removeLevel(level.ID, &u.statistics.DeletedByPriceBeingBeyondStopLoss); err != nil {
			return false, err
		}

		return true, nil
	}

	if err := u.engine.OpenPosition(order); err != nil {
		return false, err
	}

	if u.traces != nil {
		u.traces.AddTakeProfit(order.Prices.TakeProfit, chartIndex)
		u.traces.AddStopLoss(order.Prices.StopLoss, chartIndex)
	}

	if beyondStopLoss {
		if err := u.engine.ClosePosition(order, order.Prices.StopLoss); err != nil {
			return false, err
		}
	}

	return false, nil
}

// closeOrderByTargets закрывает открытый ордер по take profit или stop loss
func (u *OrderUtils) closeOrderByTargets(order *entities.Order, tick *entities.Tick) error {
	if order.Direction == entities.OrderDirectionBuy {
		if tick.Close >= order.Prices.TakeProfit {
			return u.engine.ClosePosition(order, order.Prices.TakeProfit)
		}

		if tick.Close <= order.Prices.StopLoss {
			return u.engine.ClosePosition(order, order.Prices.StopLoss)
		}

		return nil
	}

	if tick.Close <= order.Prices.TakeProfit {
		return u.engine.ClosePosition(order, order.Prices.TakeProfit)
	}

	if tick.Close >= order.Prices.StopLoss {
		return u.engine.ClosePosition(order, order.Prices.StopLoss)
	}

	return nil
}

func (u *OrderUtils) removeLevel(levelID string, counter *int) error {
	if err := u.store.RemoveWorkingLevel(levelID); err != nil {
		return err
	}

	*counter++
	u.statistics.NumberOfWorkingLevels--

	return nil
}

// orderIsCrossed - цена тика пересекла цену открытия отложенного ордера
func orderIsCrossed(order *entities.Order, tickPrice float64) bool {
	if order.Direction == entities.OrderDirectionBuy {
		return tickPrice <= order.Prices.Open
	}

	return tickPrice >= order.Prices.Open
}

// priceIsBeyondStopLoss - цена тика ушла за stop loss ордера
func priceIsBeyondStopLoss(order *entities.Order, tickPrice float64) bool {
	if order.Direction == entities.OrderDirectionBuy {
		return tickPrice <= order.Prices.StopLoss
	}

	return tickPrice >= order.Prices.StopLoss
}
