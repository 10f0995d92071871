// internal/core/domain/corridors/corridors.go

package corridors

import (
	"step-strategy-backtester/internal/core/domain/entities"
	"step-strategy-backtester/internal/core/domain/store"
	"step-strategy-backtester/internal/params"
	"step-strategy-backtester/pkg/utils"
)

// Corridors отслеживает коридоры свечей: общий и коридоры около рабочих уровней
type Corridors struct {
	store  *store.Store
	policy MembershipPolicy
}

// New создаёт трекер коридоров
func New(st *store.Store, policy MembershipPolicy) *Corridors {
	return &Corridors{
		store:  st,
		policy: policy,
	}
}

// UpdateGeneralCorridor накапливает свечи в общем коридоре и перестраивает его,
// когда новая свеча выходит за пределы коридора лидера
func (c *Corridors) UpdateGeneralCorridor(candle *entities.Candle, maxPinsDeviationPct float64) error {
	corridor := c.store.GetGeneralCorridor()

	if len(corridor) == 0 {
		if c.policy.CandleCanBeCorridorLeader(candle) {
			return c.store.AddCandleToGeneralCorridor(candle.ID)
		}

		return nil
	}

	if c.policy.CandleIsInCorridor(candle, corridor[0], maxPinsDeviationPct) {
		return c.store.AddCandleToGeneralCorridor(candle.ID)
	}

	cropped := c.policy.CropCorridorToClosestLeader(corridor, candle, maxPinsDeviationPct, c.policy.CandleCanBeCorridorLeader)

	c.store.ClearGeneralCorridor()

	if cropped != nil {
		for _, corridorCandle := range cropped {
			if err := c.store.AddCandleToGeneralCorridor(corridorCandle.ID); err != nil {
				return err
			}
		}

		return nil
	}

	if c.policy.CandleCanBeCorridorLeader(candle) {
		return c.store.AddCandleToGeneralCorridor(candle.ID)
	}

	return nil
}

// UpdateCorridorsNearWorkingLevels обновляет малые и большие коридоры
// около созданных рабочих уровней
func (c *Corridors) UpdateCorridorsNearWorkingLevels(candle *entities.Candle, strategyParams *params.Params) error {
	for _, level := range c.store.GetCreatedWorkingLevels() {
		if err := c.updateSmallCorridorNearLevel(level, candle, strategyParams); err != nil {
			return err
		}

		if err := c.updateBigCorridorNearLevel(level, candle, strategyParams); err != nil {
			return err
		}
	}

	return nil
}

// updateSmallCorridorNearLevel ведёт малый коридор у цены уровня.
// Лидером может стать только свеча, расположенная достаточно близко к уровню.
func (c *Corridors) updateSmallCorridorNearLevel(level *entities.WorkingLevel, candle *entities.Candle, strategyParams *params.Params) error {
	maxPinsDeviationPct := strategyParams.GetPoint(params.MaxDistanceFromCorridorLeadingCandlePinsPct)
	maxDistanceToLevel := strategyParams.GetRatio(
		params.DistanceFromLevelToCorridorBeforeActivationCrossingOfLevel,
		candle.Volatility,
	)
	minCorridorLen := int(strategyParams.GetPoint(params.MinAmountOfCandlesInSmallCorridorBeforeActivationCrossingOfLevel))

	distanceToLevel := distanceFromCandleToLevel(level, candle)

	// Лидер малого коридора дополнительно ограничен расстоянием от текущей
	// свечи до уровня. Та же проверка передаётся в перестройку коридора.
	canLeadNearLevel := func(leader *entities.Candle) bool {
		return c.policy.CandleCanBeCorridorLeader(leader) && distanceToLevel <= maxDistanceToLevel
	}

	candleCanBeLeader := canLeadNearLevel(candle)

	corridor, err := c.store.GetWorkingLevelCorridor(level.ID, entities.CorridorTypeSmall)
	if err != nil {
		return err
	}

	if len(corridor) == 0 {
		if candleCanBeLeader {
			return c.store.AddCandleToWorkingLevelCorridor(level.ID, entities.CorridorTypeSmall, candle.ID)
		}

		return nil
	}

	if c.policy.CandleIsInCorridor(candle, corridor[0], maxPinsDeviationPct) {
		return c.store.AddCandleToWorkingLevelCorridor(level.ID, entities.CorridorTypeSmall, candle.ID)
	}

	corridorIsImmature := distanceToLevel <= maxDistanceToLevel && len(corridor) < minCorridorLen

	if corridorIsImmature || distanceToLevel > maxDistanceToLevel {
		cropped := c.policy.CropCorridorToClosestLeader(corridor, candle, maxPinsDeviationPct, canLeadNearLevel)

		if err := c.store.ClearWorkingLevelCorridor(level.ID, entities.CorridorTypeSmall); err != nil {
			return err
		}

		if cropped != nil {
			for _, corridorCandle := range cropped {
				if err := c.store.AddCandleToWorkingLevelCorridor(level.ID, entities.CorridorTypeSmall, corridorCandle.ID); err != nil {
					return err
				}
			}

			return nil
		}

		if candleCanBeLeader {
			return c.store.AddCandleToWorkingLevelCorridor(level.ID, entities.CorridorTypeSmall, candle.ID)
		}
	}

	return nil
}

// updateBigCorridorNearLevel ведёт большой коридор в заданном диапазоне
// от уровня. Выход тела свечи за диапазон очищает коридор целиком.
func (c *Corridors) updateBigCorridorNearLevel(level *entities.WorkingLevel, candle *entities.Candle, strategyParams *params.Params) error {
	corridorRange := strategyParams.GetRatio(params.RangeOfBigCorridorNearLevel, candle.Volatility)

	if candleIsInRangeOfBigCorridor(level, candle, corridorRange) {
		return c.store.AddCandleToWorkingLevelCorridor(level.ID, entities.CorridorTypeBig, candle.ID)
	}

	return c.store.ClearWorkingLevelCorridor(level.ID, entities.CorridorTypeBig)
}

// distanceFromCandleToLevel - расстояние в пунктах от тела свечи до цены уровня
func distanceFromCandleToLevel(level *entities.WorkingLevel, candle *entities.Candle) float64 {
	if level.Direction == entities.OrderDirectionBuy {
		return utils.PriceToPoints(candle.Prices.Low - level.Price)
	}

	return utils.PriceToPoints(level.Price - candle.Prices.High)
}

// candleIsInRangeOfBigCorridor проверяет, что край тела свечи не вышел
// за границу большого коридора
func candleIsInRangeOfBigCorridor(level *entities.WorkingLevel, candle *entities.Candle, corridorRange float64) bool {
	if level.Direction == entities.OrderDirectionBuy {
		corridorEdge := level.Price + utils.PointsToPrice(corridorRange)

		candleEdge := candle.Prices.Close
		if candle.Type == entities.CandleTypeRed {
			candleEdge = candle.Prices.Open
		}

		return candleEdge <= corridorEdge
	}

	corridorEdge := level.Price - utils.PointsToPrice(corridorRange)

	candleEdge := candle.Prices.Open
	if candle.Type == entities.CandleTypeRed {
		candleEdge = candle.Prices.Close
	}

	return candleEdge >= corridorEdge
}
