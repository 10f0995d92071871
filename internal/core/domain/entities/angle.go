// internal/core/domain/entities/angle.go

package entities

import "github.com/google/uuid"

// AngleType - тип угла: локальный минимум или максимум
type AngleType int

const (
	AngleTypeMin AngleType = iota
	AngleTypeMax
)

func (t AngleType) String() string {
	if t == AngleTypeMax {
		return "max"
	}

	return "min"
}

// AngleState - состояние угла. Виртуальный угол найден, но не подтверждён
// достаточным расстоянием до соседних углов.
type AngleState int

const (
	AngleStateReal AngleState = iota
	AngleStateVirtual
)

func (s AngleState) String() string {
	if s == AngleStateVirtual {
		return "virtual"
	}

	return "real"
}

// Angle - разворотная точка, привязанная к свече
type Angle struct {
	ID       string
	Type     AngleType
	State    AngleState
	CandleID string
}

// NewAngle создаёт угол с новым идентификатором
func NewAngle(angleType AngleType, state AngleState, candleID string) *Angle {
	return &Angle{
		ID:       uuid.NewString(),
		Type:     angleType,
		State:    state,
		CandleID: candleID,
	}
}
