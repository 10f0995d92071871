// internal/core/domain/levels/conditions.go

package levels

import (
	"math"
	"time"

	"step-strategy-backtester/internal/core/domain/angles"
	"step-strategy-backtester/internal/core/domain/entities"
	"step-strategy-backtester/internal/core/domain/store"
	"step-strategy-backtester/internal/params"
	"step-strategy-backtester/pkg/utils"
)

// Conditions - правила создания и удаления рабочих уровней
type Conditions interface {
	// AppropriateWorkingLevel проверяет, подходит ли пересечённый угол
	// для создания рабочего уровня
	AppropriateWorkingLevel(crossed *angles.AngleWithCandle, candle *entities.Candle, st *store.Store, strategyParams *params.Params) bool

	// WorkingLevelExists проверяет, существует ли уровень с теми же ценой и временем
	WorkingLevelExists(crossed *angles.AngleWithCandle, st *store.Store) bool

	// WorkingLevelIsCloseToAnotherOne проверяет, есть ли рядом уровень того же направления
	WorkingLevelIsCloseToAnotherOne(crossed *angles.AngleWithCandle, st *store.Store, maxDistance float64) bool

	// LevelComesOutOfBargainingCorridor проверяет выход уровня из торгового коридора
	LevelComesOutOfBargainingCorridor(crossed *angles.AngleWithCandle, st *store.Store, minCorridorLen int) bool

	// LevelExpiredByDistance проверяет, ушла ли цена от уровня слишком далеко
	LevelExpiredByDistance(levelPrice float64, tick *entities.Tick, maxDistance float64) bool

	// LevelExpiredByTime проверяет истечение уровня по торговым дням
	LevelExpiredByTime(levelTime, tickTime time.Time, expirationDays float64, holidays []utils.Holiday) bool

	// LevelHasNoActiveOrders проверяет, что в цепочке нет открытых
	// или закрытых ордеров
	LevelHasNoActiveOrders(chain []*entities.Order) bool

	// LevelExceedsActivationCrossing проверяет возврат цены к уровню после
	// достаточно глубокого пересечения
	LevelExceedsActivationCrossing(level *entities.WorkingLevel, tick *entities.Tick, maxCrossing float64, minCrossing float64) bool
}

// DefaultConditions - стандартные правила жизненного цикла уровней
type DefaultConditions struct{}

// NewDefaultConditions создаёт стандартные правила
func NewDefaultConditions() DefaultConditions {
	return DefaultConditions{}
}

// DirectionForAngle возвращает направление уровня, создаваемого на угле:
// пересечение минимума создаёт уровень на покупку, максимума - на продажу
func DirectionForAngle(angleType entities.AngleType) entities.OrderDirection {
	if angleType == entities.AngleTypeMin {
		return entities.OrderDirectionBuy
	}

	return entities.OrderDirectionSell
}

// AppropriateWorkingLevel - угол подходит для уровня, если тело свечи пробило
// его ведущую цену достаточно глубоко и структура углов подтверждает движение
func (DefaultConditions) AppropriateWorkingLevel(crossed *angles.AngleWithCandle, candle *entities.Candle, st *store.Store, strategyParams *params.Params) bool {
	minAngle, maxAngle := angles.AngleSlots(st)
	if minAngle == nil || maxAngle == nil {
		return false
	}

	virtualMin, virtualMax := angles.VirtualAngleSlots(st)

	minBreakDistance := strategyParams.GetRatio(params.MinBreakDistance, candle.Volatility)
	minAngleDistance := strategyParams.GetRatio(params.MinDistanceBetweenNewAndCurrentMaxMinAngles, candle.Volatility)

	crossedLeading := crossed.Candle.LeadingPrice()

	if crossed.Angle.Type == entities.AngleTypeMin {
		breakDistance := utils.PriceToPoints(crossedLeading - math.Min(candle.Prices.Open, candle.Prices.Close))
		if breakDistance < minBreakDistance {
			return false
		}

		if maxAngle.Candle.Time.After(minAngle.Candle.Time) {
			return true
		}

		if virtualMax != nil && virtualMax.Candle.Time.After(minAngle.Candle.Time) {
			return true
		}

		return utils.PriceToPoints(candle.Prices.High-minAngle.Candle.LeadingPrice()) >= minAngleDistance
	}

	breakDistance := utils.PriceToPoints(math.Max(candle.Prices.Open, candle.Prices.Close) - crossedLeading)
	if breakDistance < minBreakDistance {
		return false
	}

	if minAngle.Candle.Time.After(maxAngle.Candle.Time) {
		return true
	}

	if virtualMin != nil && virtualMin.Candle.Time.After(maxAngle.Candle.Time) {
		return true
	}

	return utils.PriceToPoints(maxAngle.Candle.LeadingPrice()-candle.Prices.Low) >= minAngleDistance
}

// WorkingLevelExists - уровень с ценой и временем пересечённого угла уже создан
func (DefaultConditions) WorkingLevelExists(crossed *angles.AngleWithCandle, st *store.Store) bool {
	price := crossed.Candle.LeadingPrice()
	t := crossed.Candle.Time

	for _, level := range append(st.GetCreatedWorkingLevels(), st.GetActiveWorkingLevels()...) {
		if level.Price == price && level.Time.Equal(t) {
			return true
		}
	}

	return false
}

// WorkingLevelIsCloseToAnotherOne - рядом уже есть уровень того же направления
func (DefaultConditions) WorkingLevelIsCloseToAnotherOne(crossed *angles.AngleWithCandle, st *store.Store, maxDistance float64) bool {
	direction := DirectionForAngle(crossed.Angle.Type)
	price := crossed.Candle.LeadingPrice()

	for _, level := range append(st.GetCreatedWorkingLevels(), st.GetActiveWorkingLevels()...) {
		if level.Direction != direction {
			continue
		}

		var distance float64
		if direction == entities.OrderDirectionBuy {
			distance = utils.PriceToPoints(price - level.Price)
		} else {
			distance = utils.PriceToPoints(level.Price - price)
		}

		if distance >= 0 && distance <= maxDistance {
			return true
		}
	}

	return false
}

// LevelComesOutOfBargainingCorridor - оба угла лежат в достаточно длинном
// общем коридоре, а архивный угол подтверждает выход за его границу
func (DefaultConditions) LevelComesOutOfBargainingCorridor(crossed *angles.AngleWithCandle, st *store.Store, minCorridorLen int) bool {
	corridor := st.GetGeneralCorridor()
	if len(corridor) < minCorridorLen {
		return false
	}

	minAngle, maxAngle := angles.AngleSlots(st)
	if minAngle == nil || maxAngle == nil {
		return false
	}

	if !candleInCorridor(corridor, minAngle.Candle.ID) || !candleInCorridor(corridor, maxAngle.Candle.ID) {
		return false
	}

	if crossed.Angle.Type == entities.AngleTypeMin {
		archived, ok := st.AngleInSlot(store.SlotMaxAngleBeforeBargainingCorridor)
		if !ok {
			return false
		}

		return st.AngleCandle(archived).LeadingPrice() < maxAngle.Candle.LeadingPrice()
	}

	archived, ok := st.AngleInSlot(store.SlotMinAngleBeforeBargainingCorridor)
	if !ok {
		return false
	}

	return st.AngleCandle(archived).LeadingPrice() > minAngle.Candle.LeadingPrice()
}

// LevelExpiredByDistance - цена ушла от уровня дальше допустимого
func (DefaultConditions) LevelExpiredByDistance(levelPrice float64, tick *entities.Tick, maxDistance float64) bool {
	distance := math.Max(
		utils.PriceToPoints(math.Abs(levelPrice-tick.Low)),
		utils.PriceToPoints(math.Abs(levelPrice-tick.High)),
	)

	return distance >= maxDistance
}

// LevelExpiredByTime - прошло слишком много торговых дней с момента
// создания уровня
func (DefaultConditions) LevelExpiredByTime(levelTime, tickTime time.Time, expirationDays float64, holidays []utils.Holiday) bool {
	days := int(tickTime.Sub(levelTime).Hours() / 24)
	tradingDays := days - utils.ExcludeWeekendAndHolidays(levelTime, tickTime, holidays)

	return float64(tradingDays) >= expirationDays
}

// LevelHasNoActiveOrders - вся цепочка уровня в статусе Pending
func (DefaultConditions) LevelHasNoActiveOrders(chain []*entities.Order) bool {
	for _, order := range chain {
		if order.Status != entities.OrderStatusPending {
			return false
		}
	}

	return true
}

// LevelExceedsActivationCrossing - цена вернулась к уровню после пересечения
// глубже минимально значимого
func (DefaultConditions) LevelExceedsActivationCrossing(level *entities.WorkingLevel, tick *entities.Tick, maxCrossing float64, minCrossing float64) bool {
	var returned bool
	if level.Direction == entities.OrderDirectionBuy {
		returned = tick.High >= level.Price
	} else {
		returned = tick.Low <= level.Price
	}

	return returned && maxCrossing >= minCrossing
}

func candleInCorridor(corridor []*entities.Candle, candleID string) bool {
	for _, candle := range corridor {
		if candle.ID == candleID {
			return true
		}
	}

	return false
}
