// internal/core/domain/entities/level.go

package entities

import (
	"time"

	"github.com/google/uuid"
)

// OrderDirection - направление торговли рабочего уровня и его ордеров
type OrderDirection int

const (
	OrderDirectionBuy OrderDirection = iota
	OrderDirectionSell
)

func (d OrderDirection) String() string {
	if d == OrderDirectionSell {
		return "sell"
	}

	return "buy"
}

// LevelStatus - статус рабочего уровня
type LevelStatus int

const (
	LevelStatusCreated LevelStatus = iota // Создан, цена ещё не возвращалась к уровню
	LevelStatusActive                     // Активирован пересечением цены
)

func (s LevelStatus) String() string {
	if s == LevelStatusActive {
		return "active"
	}

	return "created"
}

// WorkingLevel - рабочий уровень, около которого выставляется цепочка ордеров
type WorkingLevel struct {
	ID        string
	Direction OrderDirection
	Price     float64
	Time      time.Time
}

// NewWorkingLevel создаёт рабочий уровень с новым идентификатором
func NewWorkingLevel(direction OrderDirection, price float64, t time.Time) *WorkingLevel {
	return &WorkingLevel{
		ID:        uuid.NewString(),
		Direction: direction,
		Price:     price,
		Time:      t,
	}
}
