// internal/history/models.go
package history

import "time"

// CandleRow - строка таблицы candles
type CandleRow struct {
	Time  time.Time `db:"time" json:"time"`
	Open  float64   `db:"open" json:"open"`
	High  float64   `db:"high" json:"high"`
	Low   float64   `db:"low" json:"low"`
	Close float64   `db:"close" json:"close"`
}

// TickRow - строка таблицы ticks. Исторический тик хранится как диапазон
// цен bid внутри интервала тикового таймфрейма.
type TickRow struct {
	Time  time.Time `db:"time" json:"time"`
	High  float64   `db:"high" json:"high"`
	Low   float64   `db:"low" json:"low"`
	Close float64   `db:"close" json:"close"`
}
