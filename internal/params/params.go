// internal/params/params.go

package params

import (
	"errors"
	"fmt"
)

var ErrParamNotFound = errors.New("param not found")

// PointParam - параметр стратегии, заданный напрямую в пунктах или штуках
type PointParam string

const (
	MaxDistanceFromCorridorLeadingCandlePinsPct                      PointParam = "max_distance_from_corridor_leading_candle_pins_pct"
	AmountOfOrders                                                   PointParam = "amount_of_orders"
	LevelExpirationDays                                              PointParam = "level_expiration_days"
	MinAmountOfCandlesInSmallCorridorBeforeActivationCrossingOfLevel PointParam = "min_amount_of_candles_in_small_corridor_before_activation_crossing_of_level"
	MinAmountOfCandlesInBigCorridorBeforeActivationCrossingOfLevel   PointParam = "min_amount_of_candles_in_big_corridor_before_activation_crossing_of_level"
	MinAmountOfCandlesInCorridorDefiningEdgeBargaining               PointParam = "min_amount_of_candles_in_corridor_defining_edge_bargaining"
	MaxLossPerOneChainOfOrdersPctOfBalance                           PointParam = "max_loss_per_one_chain_of_orders_pct_of_balance"
)

// RatioParam - параметр стратегии, заданный как множитель волатильности.
// Итоговое значение в пунктах получается умножением на текущую волатильность.
type RatioParam string

const (
	MinDistanceBetweenNewAndCurrentMaxMinAngles                               RatioParam = "min_distance_between_new_and_current_max_min_angles"
	MinDistanceBetweenCurrentMaxAndMinAnglesForNewInnerAngleToAppear          RatioParam = "min_distance_between_current_max_and_min_angles_for_new_inner_angle_to_appear"
	MinBreakDistance                                                          RatioParam = "min_break_distance"
	DistanceFromLevelToFirstOrder                                             RatioParam = "distance_from_level_to_first_order"
	DistanceFromLevelToStopLoss                                               RatioParam = "distance_from_level_to_stop_loss"
	DistanceFromLevelForSignalingOfMovingTakeProfits                          RatioParam = "distance_from_level_for_signaling_of_moving_take_profits"
	DistanceToMoveTakeProfits                                                 RatioParam = "distance_to_move_take_profits"
	DistanceFromLevelForItsDeletion                                           RatioParam = "distance_from_level_for_its_deletion"
	DistanceFromLevelToCorridorBeforeActivationCrossingOfLevel                RatioParam = "distance_from_level_to_corridor_before_activation_crossing_of_level"
	DistanceDefiningNearbyLevelsOfTheSameType                                 RatioParam = "distance_defining_nearby_levels_of_the_same_type"
	MinDistanceOfActivationCrossingOfLevelWhenReturningToLevelForItsDeletion  RatioParam = "min_distance_of_activation_crossing_of_level_when_returning_to_level_for_its_deletion"
	RangeOfBigCorridorNearLevel                                               RatioParam = "range_of_big_corridor_near_level"
)

var allPointParams = []PointParam{
	MaxDistanceFromCorridorLeadingCandlePinsPct,
	AmountOfOrders,
	LevelExpirationDays,
	MinAmountOfCandlesInSmallCorridorBeforeActivationCrossingOfLevel,
	MinAmountOfCandlesInBigCorridorBeforeActivationCrossingOfLevel,
	MinAmountOfCandlesInCorridorDefiningEdgeBargaining,
	MaxLossPerOneChainOfOrdersPctOfBalance,
}

var allRatioParams = []RatioParam{
	MinDistanceBetweenNewAndCurrentMaxMinAngles,
	MinDistanceBetweenCurrentMaxAndMinAnglesForNewInnerAngleToAppear,
	MinBreakDistance,
	DistanceFromLevelToFirstOrder,
	DistanceFromLevelToStopLoss,
	DistanceFromLevelForSignalingOfMovingTakeProfits,
	DistanceToMoveTakeProfits,
	DistanceFromLevelForItsDeletion,
	DistanceFromLevelToCorridorBeforeActivationCrossingOfLevel,
	DistanceDefiningNearbyLevelsOfTheSameType,
	MinDistanceOfActivationCrossingOfLevelWhenReturningToLevelForItsDeletion,
	RangeOfBigCorridorNearLevel,
}

// Params - набор параметров стратегии
type Params struct {
	point map[PointParam]float64
	ratio map[RatioParam]float64
}

// New создаёт пустой набор параметров
func New() *Params {
	return &Params{
		point: make(map[PointParam]float64),
		ratio: make(map[RatioParam]float64),
	}
}

// SetPoint устанавливает значение точечного параметра
func (p *Params) SetPoint(param PointParam, value float64) {
	p.point[param] = value
}

// SetRatio устанавливает множитель параметра-отношения
func (p *Params) SetRatio(param RatioParam, value float64) {
	p.ratio[param] = value
}

// GetPoint возвращает значение точечного параметра
func (p *Params) GetPoint(param PointParam) float64 {
	return p.point[param]
}

// GetRatio возвращает значение параметра-отношения в пунктах
// для заданной волатильности
func (p *Params) GetRatio(param RatioParam, volatility float64) float64 {
	return p.ratio[param] * volatility
}

// Validate проверяет, что заданы все параметры стратегии
func (p *Params) Validate() error {
	for _, param := range allPointParams {
		if _, ok := p.point[param]; !ok {
			return fmt.Errorf("%w: %s", ErrParamNotFound, param)
		}
	}

	for _, param := range allRatioParams {
		if _, ok := p.ratio[param]; !ok {
			return fmt.Errorf("%w: %s", ErrParamNotFound, param)
		}
	}

	return nil
}
