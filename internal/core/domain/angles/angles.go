// internal/core/domain/angles/angles.go

package angles

import (
	"math"

	"step-strategy-backtester/internal/core/domain/entities"
	"step-strategy-backtester/internal/core/domain/store"
	"step-strategy-backtester/pkg/utils"
)

// AngleWithCandle - угол вместе со свечой, к которой он привязан
type AngleWithCandle struct {
	Angle  *entities.Angle
	Candle *entities.Candle
}

// Candidate - найденный кандидат в новые углы
type Candidate struct {
	Type   entities.AngleType
	State  entities.AngleState
	Candle *entities.Candle
}

// GetDiff определяет направление изменения ведущей цены между текущей
// и предыдущей свечами. При равенстве ведущих цен направление определяется
// стороной ведущей цены текущей свечи.
func GetDiff(current, previous *entities.Candle) entities.Diff {
	currentLeading := current.LeadingPrice()
	previousLeading := previous.LeadingPrice()

	switch {
	case currentLeading > previousLeading:
		return entities.DiffGreater
	case currentLeading < previousLeading:
		return entities.DiffLess
	default:
		if currentLeading == current.Prices.High {
			return entities.DiffGreater
		}

		return entities.DiffLess
	}
}

// GetNewAngle ищет новый угол на предыдущей свече по паре разниц ведущих цен.
// Сначала проверяется максимум, затем минимум.
func GetNewAngle(
	previousCandle *entities.Candle,
	currentDiff, previousDiff entities.Diff,
	maxAngle, minAngle *AngleWithCandle,
	minDistanceBetweenNewAndCurrentAngles float64,
	minDistanceBetweenMaxAndMinAnglesForInnerAngle float64,
) *Candidate {
	leading := previousCandle.LeadingPrice()

	// Максимум: рост сменился падением, ведущая цена свечи-кандидата - её high
	if previousDiff == entities.DiffGreater && currentDiff == entities.DiffLess &&
		leading == previousCandle.Prices.High {
		return classifyCandidate(
			entities.AngleTypeMax,
			previousCandle,
			maxAngle,
			minAngle,
			minDistanceBetweenNewAndCurrentAngles,
			minDistanceBetweenMaxAndMinAnglesForInnerAngle,
		)
	}

	// Минимум: падение сменилось ростом, ведущая цена свечи-кандидата - её low
	if previousDiff == entities.DiffLess && currentDiff == entities.DiffGreater &&
		leading == previousCandle.Prices.Low {
		return classifyCandidate(
			entities.AngleTypeMin,
			previousCandle,
			minAngle,
			maxAngle,
			minDistanceBetweenNewAndCurrentAngles,
			minDistanceBetweenMaxAndMinAnglesForInnerAngle,
		)
	}

	return nil
}

// classifyCandidate определяет состояние кандидата относительно текущих углов
// того же и противоположного типа
func classifyCandidate(
	angleType entities.AngleType,
	candle *entities.Candle,
	sameType, oppositeType *AngleWithCandle,
	minDistanceBetweenNewAndCurrentAngles float64,
	minDistanceBetweenMaxAndMinAnglesForInnerAngle float64,
) *Candidate {
	real := &Candidate{Type: angleType, State: entities.AngleStateReal, Candle: candle}

	if sameType == nil && oppositeType == nil {
		return real
	}

	if sameType != nil && oppositeType == nil {
		if angleIsCrossed(angleType, candle.LeadingPrice(), sameType) {
			return real
		}

		return nil
	}

	if sameType == nil {
		if distanceInPoints(candle.LeadingPrice(), oppositeType.Candle.LeadingPrice()) >=
			minDistanceBetweenNewAndCurrentAngles {
			return real
		}

		return nil
	}

	if angleIsCrossed(angleType, candle.LeadingPrice(), sameType) {
		return real
	}

	if distanceInPoints(candle.LeadingPrice(), oppositeType.Candle.LeadingPrice()) <
		minDistanceBetweenNewAndCurrentAngles {
		return nil
	}

	if distanceInPoints(sameType.Candle.LeadingPrice(), oppositeType.Candle.LeadingPrice()) >=
		minDistanceBetweenMaxAndMinAnglesForInnerAngle {
		return real
	}

	return &Candidate{Type: angleType, State: entities.AngleStateVirtual, Candle: candle}
}

// angleIsCrossed проверяет, вышла ли ведущая цена кандидата за ведущую цену
// текущего угла того же типа
func angleIsCrossed(angleType entities.AngleType, leading float64, current *AngleWithCandle) bool {
	if angleType == entities.AngleTypeMax {
		return leading > current.Candle.LeadingPrice()
	}

	return leading < current.Candle.LeadingPrice()
}

func distanceInPoints(a, b float64) float64 {
	return utils.PriceToPoints(math.Abs(a - b))
}

// UpdateAngles сохраняет угол-кандидат и раскладывает его по слотам.
// Реальный угол, появившийся внутри общего коридора, архивирует прежний угол
// того же типа, если тот находился вне коридора.
func UpdateAngles(candidate *Candidate, st *store.Store) error {
	angle := entities.NewAngle(candidate.Type, candidate.State, candidate.Candle.ID)
	if err := st.CreateAngle(angle); err != nil {
		return err
	}

	if candidate.State == entities.AngleStateVirtual {
		return st.UpdateAngleSlot(virtualSlot(candidate.Type), angle.ID)
	}

	slot := mainSlot(candidate.Type)

	if previous, ok := st.AngleInSlot(slot); ok {
		corridor := st.GetGeneralCorridor()

		if candleInCorridor(corridor, candidate.Candle.ID) &&
			!candleInCorridor(corridor, previous.CandleID) {
			if err := st.UpdateAngleSlot(bargainingSlot(candidate.Type), previous.ID); err != nil {
				return err
			}
		}
	}

	return st.UpdateAngleSlot(slot, angle.ID)
}

// GetCrossedAngle возвращает угол, ведущая цена которого пересечена телом свечи.
// Минимум проверяется первым.
func GetCrossedAngle(candle *entities.Candle, minAngle, maxAngle *AngleWithCandle) *AngleWithCandle {
	body := struct{ low, high float64 }{
		low:  math.Min(candle.Prices.Open, candle.Prices.Close),
		high: math.Max(candle.Prices.Open, candle.Prices.Close),
	}

	if minAngle != nil && body.low <= minAngle.Candle.LeadingPrice() {
		return minAngle
	}

	if maxAngle != nil && body.high >= maxAngle.Candle.LeadingPrice() {
		return maxAngle
	}

	return nil
}

// AngleSlots возвращает углы из основных слотов вместе с их свечами
func AngleSlots(st *store.Store) (minAngle, maxAngle *AngleWithCandle) {
	if angle, ok := st.AngleInSlot(store.SlotMinAngle); ok {
		minAngle = &AngleWithCandle{Angle: angle, Candle: st.AngleCandle(angle)}
	}

	if angle, ok := st.AngleInSlot(store.SlotMaxAngle); ok {
		maxAngle = &AngleWithCandle{Angle: angle, Candle: st.AngleCandle(angle)}
	}

	return minAngle, maxAngle
}

// VirtualAngleSlots возвращает углы из виртуальных слотов вместе с их свечами
func VirtualAngleSlots(st *store.Store) (virtualMin, virtualMax *AngleWithCandle) {
	if angle, ok := st.AngleInSlot(store.SlotVirtualMinAngle); ok {
		virtualMin = &AngleWithCandle{Angle: angle, Candle: st.AngleCandle(angle)}
	}

	if angle, ok := st.AngleInSlot(store.SlotVirtualMaxAngle); ok {
		virtualMax = &AngleWithCandle{Angle: angle, Candle: st.AngleCandle(angle)}
	}

	return virtualMin, virtualMax
}

func mainSlot(angleType entities.AngleType) store.AngleSlot {
	if angleType == entities.AngleTypeMax {
		return store.SlotMaxAngle
	}

	return store.SlotMinAngle
}

func virtualSlot(angleType entities.AngleType) store.AngleSlot {
	if angleType == entities.AngleTypeMax {
		return store.SlotVirtualMaxAngle
	}

	return store.SlotVirtualMinAngle
}

func bargainingSlot(angleType entities.AngleType) store.AngleSlot {
	if angleType == entities.AngleTypeMax {
		return store.SlotMaxAngleBeforeBargainingCorridor
	}

	return store.SlotMinAngleBeforeBargainingCorridor
}

func candleInCorridor(corridor []*entities.Candle, candleID string) bool {
	for _, candle := range corridor {
		if candle.ID == candleID {
			return true
		}
	}

	return false
}
