// internal/core/domain/corridors/policy.go

package corridors

import (
	"math"

	"step-strategy-backtester/internal/core/domain/entities"
	"step-strategy-backtester/pkg/utils"
)

// MembershipPolicy - правила принадлежности свечей коридору
type MembershipPolicy interface {
	// CandleCanBeCorridorLeader сообщает, может ли свеча возглавить коридор
	CandleCanBeCorridorLeader(candle *entities.Candle) bool

	// CandleIsInCorridor сообщает, входит ли свеча в коридор лидера
	CandleIsInCorridor(candle, leader *entities.Candle, maxPinsDeviationPct float64) bool

	// CropCorridorToClosestLeader перестраивает коридор вокруг ближайшего
	// к текущей свече лидера, проходящего переданную проверку canLead.
	// Возвращает nil, если лидера нет.
	CropCorridorToClosestLeader(corridor []*entities.Candle, current *entities.Candle, maxPinsDeviationPct float64, canLead func(*entities.Candle) bool) []*entities.Candle
}

// DefaultPolicy - стандартные правила принадлежности коридору
type DefaultPolicy struct{}

// NewDefaultPolicy создаёт стандартные правила
func NewDefaultPolicy() DefaultPolicy {
	return DefaultPolicy{}
}

// CandleCanBeCorridorLeader - свеча может возглавить коридор, если её размер
// не превышает текущую волатильность
func (DefaultPolicy) CandleCanBeCorridorLeader(candle *entities.Candle) bool {
	return utils.PriceToPoints(candle.Size) <= candle.Volatility
}

// CandleIsInCorridor - свеча входит в коридор, если отклонение её теней
// от теней лидера не превышает заданную долю размера лидера
func (DefaultPolicy) CandleIsInCorridor(candle, leader *entities.Candle, maxPinsDeviationPct float64) bool {
	maxDeviation := leader.Size * maxPinsDeviationPct / 100

	return math.Abs(candle.Prices.High-leader.Prices.High) <= maxDeviation &&
		math.Abs(candle.Prices.Low-leader.Prices.Low) <= maxDeviation
}

// CropCorridorToClosestLeader ищет ближайшего к текущей свече лидера среди
// свечей коридора, просматривая их от самой новой к самой старой, и собирает
// новый коридор из него, подходящих последующих свечей и текущей свечи
func (p DefaultPolicy) CropCorridorToClosestLeader(corridor []*entities.Candle, current *entities.Candle, maxPinsDeviationPct float64, canLead func(*entities.Candle) bool) []*entities.Candle {
	for i := len(corridor) - 1; i >= 0; i-- {
		leader := corridor[i]

		if !canLead(leader) ||
			!p.CandleIsInCorridor(current, leader, maxPinsDeviationPct) {
			continue
		}

		cropped := []*entities.Candle{leader}
		for _, candle := range corridor[i+1:] {
			if p.CandleIsInCorridor(candle, leader, maxPinsDeviationPct) {
				cropped = append(cropped, candle)
			}
		}

		return append(cropped, current)
	}

	return nil
}
