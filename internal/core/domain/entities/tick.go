// internal/core/domain/entities/tick.go

package entities

import (
	"time"

	"github.com/google/uuid"
)

// Tick - исторический тик. В режиме бэктестинга тик представляет собой
// диапазон цен внутри интервала тикового таймфрейма.
type Tick struct {
	ID    string
	Time  time.Time
	High  float64
	Low   float64
	Close float64
}

// NewTick создаёт тик с новым идентификатором
func NewTick(t time.Time, high, low, close float64) *Tick {
	return &Tick{
		ID:    uuid.NewString(),
		Time:  t,
		High:  high,
		Low:   low,
		Close: close,
	}
}
