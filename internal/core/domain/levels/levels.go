// internal/core/domain/levels/levels.go

package levels

import (
	"step-strategy-backtester/internal/core/domain/angles"
	"step-strategy-backtester/internal/core/domain/entities"
	"step-strategy-backtester/internal/core/domain/store"
	"step-strategy-backtester/internal/params"
	"step-strategy-backtester/internal/stats"
	"step-strategy-backtester/pkg/utils"
)

// LevelUtils управляет жизненным циклом рабочих уровней
type LevelUtils struct {
	store      *store.Store
	statistics *stats.Statistics
	conditions Conditions
	holidays   []utils.Holiday
}

// NewLevelUtils создаёт менеджер рабочих уровней
func NewLevelUtils(st *store.Store, statistics *stats.Statistics, conditions Conditions, holidays []utils.Holiday) *LevelUtils {
	return &LevelUtils{
		store:      st,
		statistics: statistics,
		conditions: conditions,
		holidays:   holidays,
	}
}

// GetCrossedLevel возвращает первый созданный уровень, цена которого
// пересечена тиком
func (u *LevelUtils) GetCrossedLevel(tickPrice float64) *entities.WorkingLevel {
	for _, level := range u.store.GetCreatedWorkingLevels() {
		if level.Direction == entities.OrderDirectionBuy && tickPrice < level.Price {
			return level
		}

		if level.Direction == entities.OrderDirectionSell && tickPrice > level.Price {
			return level
		}
	}

	return nil
}

// UpdateTendency обновляет тенденцию по пересечённому углу и сообщает,
// нужно ли создавать новый рабочий уровень
func (u *LevelUtils) UpdateTendency(crossed *angles.AngleWithCandle, candle *entities.Candle, strategyParams *params.Params) (bool, error) {
	tendency := u.store.Tendency()
	crossedTendency := tendencyForAngle(crossed.Angle.Type)

	if tendency == entities.TendencyUnknown {
		u.store.UpdateTendency(crossedTendency)
		return false, nil
	}

	// Ожидание второго уровня после смены тенденции в торговом коридоре:
	// тенденция уже сменилась на направление пересечённого угла, поэтому
	// ветка проверяется до отсечения пересечений по текущей тенденции
	if u.isSecondLevelAfterBargainingTendencyChange(crossed) {
		pending, ok := u.store.AngleInSlot(store.SlotAngleOfSecondLevelAfterBargainingTendencyChange)

		if !ok {
			if err := u.store.UpdateAngleSlot(store.SlotAngleOfSecondLevelAfterBargainingTendencyChange, crossed.Angle.ID); err != nil {
				return false, err
			}

			return u.appropriateForNewLevel(crossed, candle, strategyParams), nil
		}

		if pending.ID == crossed.Angle.ID {
			return u.appropriateForNewLevel(crossed, candle, strategyParams), nil
		}

		return false, nil
	}

	if tendency == crossedTendency {
		return false, nil
	}

	u.store.UpdateTendency(crossedTendency)
	u.statistics.NumberOfTendencyChanges++

	if err := u.store.UpdateAngleSlot(store.SlotTendencyChangeAngle, crossed.Angle.ID); err != nil {
		return false, err
	}

	u.store.UpdateTendencyChangedOnCrossingBargainingCorridor(false)
	u.store.UpdateSecondLevelAfterBargainingTendencyChangeIsCreated(false)

	minCorridorLen := int(strategyParams.GetPoint(params.MinAmountOfCandlesInCorridorDefiningEdgeBargaining))

	if u.conditions.LevelComesOutOfBargainingCorridor(crossed, u.store, minCorridorLen) {
		if err := u.restoreAngleBeforeBargaining(crossed.Angle.Type); err != nil {
			return false, err
		}

		u.store.UpdateTendencyChangedOnCrossingBargainingCorridor(true)

		return false, nil
	}

	return u.appropriateForNewLevel(crossed, candle, strategyParams), nil
}

// isSecondLevelAfterBargainingTendencyChange - пересечён новый угол после
// смены тенденции на выходе из торгового коридора, пока второй уровень
// не создан. Повторное пересечение самого угла смены тенденции
// подтверждением не считается.
func (u *LevelUtils) isSecondLevelAfterBargainingTendencyChange(crossed *angles.AngleWithCandle) bool {
	if !u.store.TendencyChangedOnCrossingBargainingCorridor() ||
		u.store.SecondLevelAfterBargainingTendencyChangeIsCreated() {
		return false
	}

	changeAngle, ok := u.store.AngleInSlot(store.SlotTendencyChangeAngle)

	return !ok || changeAngle.ID != crossed.Angle.ID
}

// appropriateForNewLevel объединяет проверки пригодности угла для уровня
func (u *LevelUtils) appropriateForNewLevel(crossed *angles.AngleWithCandle, candle *entities.Candle, strategyParams *params.Params) bool {
	if !u.conditions.AppropriateWorkingLevel(crossed, candle, u.store, strategyParams) ||
		u.conditions.WorkingLevelExists(crossed, u.store) {
		return false
	}

	maxDistance := strategyParams.GetRatio(params.DistanceDefiningNearbyLevelsOfTheSameType, candle.Volatility)

	if u.conditions.WorkingLevelIsCloseToAnotherOne(crossed, u.store, maxDistance) {
		u.statistics.DeletedByBeingCloseToAnotherOne++
		return false
	}

	return true
}

// restoreAngleBeforeBargaining возвращает в основной слот угол,
// заархивированный при входе в торговый коридор
func (u *LevelUtils) restoreAngleBeforeBargaining(angleType entities.AngleType) error {
	if angleType == entities.AngleTypeMax {
		archived, ok := u.store.AngleInSlot(store.SlotMaxAngleBeforeBargainingCorridor)
		if !ok {
			return nil
		}

		return u.store.UpdateAngleSlot(store.SlotMaxAngle, archived.ID)
	}

	archived, ok := u.store.AngleInSlot(store.SlotMinAngleBeforeBargainingCorridor)
	if !ok {
		return nil
	}

	return u.store.UpdateAngleSlot(store.SlotMinAngle, archived.ID)
}

// CreateWorkingLevel создаёт уровень на ведущей цене пересечённого угла
func (u *LevelUtils) CreateWorkingLevel(crossed *angles.AngleWithCandle) *entities.WorkingLevel {
	level := entities.NewWorkingLevel(
		DirectionForAngle(crossed.Angle.Type),
		crossed.Candle.LeadingPrice(),
		crossed.Candle.Time,
	)

	u.store.CreateWorkingLevel(level)
	u.statistics.NumberOfWorkingLevels++

	if u.store.TendencyChangedOnCrossingBargainingCorridor() &&
		!u.store.SecondLevelAfterBargainingTendencyChangeIsCreated() {
		u.store.UpdateSecondLevelAfterBargainingTendencyChangeIsCreated(true)
	}

	return level
}

// RemoveInvalidWorkingLevels удаляет уровни, истёкшие по расстоянию, времени
// или возврату цены после значимого пересечения
func (u *LevelUtils) RemoveInvalidWorkingLevels(tick *entities.Tick, strategyParams *params.Params, volatility float64) error {
	maxDistance := strategyParams.GetRatio(params.DistanceFromLevelForItsDeletion, volatility)
	expirationDays := strategyParams.GetPoint(params.LevelExpirationDays)
	minCrossing := strategyParams.GetRatio(
		params.MinDistanceOfActivationCrossingOfLevelWhenReturningToLevelForItsDeletion,
		volatility,
	)

	for _, level := range u.store.GetCreatedWorkingLevels() {
		if u.conditions.LevelExpiredByDistance(level.Price, tick, maxDistance) {
			if err := u.removeLevel(level.ID, &u.statistics.DeletedByExpirationByDistance); err != nil {
				return err
			}

			continue
		}

		if u.conditions.LevelExpiredByTime(level.Time, tick.Time, expirationDays, u.holidays) {
			if err := u.removeLevel(level.ID, &u.statistics.DeletedByExpirationByTime); err != nil {
				return err
			}
		}
	}

	for _, level := range u.store.GetActiveWorkingLevels() {
		chain, err := u.store.GetWorkingLevelChainOfOrders(level.ID)
		if err != nil {
			return err
		}

		if !u.conditions.LevelHasNoActiveOrders(chain) {
			continue
		}

		if u.conditions.LevelExpiredByDistance(level.Price, tick, maxDistance) {
			if err := u.removeLevel(level.ID, &u.statistics.DeletedByExpirationByDistance); err != nil {
				return err
			}

			continue
		}

		if u.conditions.LevelExpiredByTime(level.Time, tick.Time, expirationDays, u.holidays) {
			if err := u.removeLevel(level.ID, &u.statistics.DeletedByExpirationByTime); err != nil {
				return err
			}

			continue
		}

		maxCrossing, ok := u.store.MaxCrossingValue(level.ID)
		if ok && u.conditions.LevelExceedsActivationCrossing(level, tick, maxCrossing, minCrossing) {
			if err := u.removeLevel(level.ID, &u.statistics.DeletedByExceedingActivationCrossingDistance); err != nil {
				return err
			}
		}
	}

	return nil
}

// UpdateMaxCrossingValueOfActiveLevels запоминает наибольшую глубину
// пересечения активных уровней текущим тиком
func (u *LevelUtils) UpdateMaxCrossingValueOfActiveLevels(tick *entities.Tick) error {
	for _, level := range u.store.GetActiveWorkingLevels() {
		var crossing float64
		if level.Direction == entities.OrderDirectionBuy {
			crossing = utils.PriceToPoints(level.Price - tick.Low)
		} else {
			crossing = utils.PriceToPoints(tick.High - level.Price)
		}

		if crossing < 0 {
			continue
		}

		if err := u.store.UpdateMaxCrossingValue(level.ID, crossing); err != nil {
			return err
		}
	}

	return nil
}

// MoveTakeProfits сдвигает take profit цепочек уровней, от которых цена
// ушла достаточно далеко в сторону прибыли
func (u *LevelUtils) MoveTakeProfits(tick *entities.Tick, strategyParams *params.Params, volatility float64) error {
	signalDistance := strategyParams.GetRatio(params.DistanceFromLevelForSignalingOfMovingTakeProfits, volatility)
	moveDistance := utils.PointsToPrice(strategyParams.GetRatio(params.DistanceToMoveTakeProfits, volatility))

	for _, level := range u.store.GetActiveWorkingLevels() {
		if u.store.TakeProfitsMoved(level.ID) {
			continue
		}

		var distance float64
		if level.Direction == entities.OrderDirectionBuy {
			distance = utils.PriceToPoints(level.Price - tick.Low)
		} else {
			distance = utils.PriceToPoints(tick.High - level.Price)
		}

		if distance < signalDistance {
			continue
		}

		chain, err := u.store.GetWorkingLevelChainOfOrders(level.ID)
		if err != nil {
			return err
		}

		for _, order := range chain {
			prices := order.Prices

			if level.Direction == entities.OrderDirectionBuy {
				prices.TakeProfit = utils.RoundPrice(prices.TakeProfit - moveDistance)
			} else {
				prices.TakeProfit = utils.RoundPrice(prices.TakeProfit + moveDistance)
			}

			if err := u.store.UpdateOrderPrices(order.ID, prices); err != nil {
				return err
			}
		}

		if err := u.store.MarkTakeProfitsMoved(level.ID); err != nil {
			return err
		}
	}

	return nil
}

// RemoveActiveWorkingLevelsWithClosedOrders удаляет активные уровни,
// цепочки которых завершили торговлю
func (u *LevelUtils) RemoveActiveWorkingLevelsWithClosedOrders() error {
	for _, level := range u.store.GetActiveWorkingLevels() {
		chain, err := u.store.GetWorkingLevelChainOfOrders(level.ID)
		if err != nil {
			return err
		}

		for _, order := range chain {
			if order.Status == entities.OrderStatusClosed {
				if err := u.store.RemoveWorkingLevel(level.ID); err != nil {
					return err
				}

				u.statistics.NumberOfWorkingLevels--

				break
			}
		}
	}

	return nil
}

func (u *LevelUtils) removeLevel(levelID string, counter *int) error {
	if err := u.store.RemoveWorkingLevel(levelID); err != nil {
		return err
	}

	*counter++
	u.statistics.NumberOfWorkingLevels--

	return nil
}

// tendencyForAngle - пересечение минимума задаёт нисходящую тенденцию,
// максимума - восходящую
func tendencyForAngle(angleType entities.AngleType) entities.Tendency {
	if angleType == entities.AngleTypeMin {
		return entities.TendencyDown
	}

	return entities.TendencyUp
}
