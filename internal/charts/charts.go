// internal/charts/charts.go

package charts

import "math"

// Traces - ценовые линии для графика результатов бэктеста.
// Каждая линия - массив цен по индексам свечей, NaN до момента появления.
type Traces struct {
	amountOfCandles int

	WorkingLevels [][]float64
	TakeProfits   [][]float64
	StopLosses    [][]float64
}

// NewTraces создаёт набор линий для графика с заданным количеством свечей
func NewTraces(amountOfCandles int) *Traces {
	return &Traces{amountOfCandles: amountOfCandles}
}

// AmountOfCandles возвращает количество свечей графика
func (t *Traces) AmountOfCandles() int {
	return t.amountOfCandles
}

// AddWorkingLevel добавляет линию рабочего уровня, начиная с индекса свечи
func (t *Traces) AddWorkingLevel(price float64, fromIndex int) {
	t.WorkingLevels = append(t.WorkingLevels, t.trace(price, fromIndex))
}

// AddTakeProfit добавляет линию take profit, начиная с индекса свечи
func (t *Traces) AddTakeProfit(price float64, fromIndex int) {
	t.TakeProfits = append(t.TakeProfits, t.trace(price, fromIndex))
}

// AddStopLoss добавляет линию stop loss, начиная с индекса свечи
func (t *Traces) AddStopLoss(price float64, fromIndex int) {
	t.StopLosses = append(t.StopLosses, t.trace(price, fromIndex))
}

func (t *Traces) trace(price float64, fromIndex int) []float64 {
	trace := make([]float64, t.amountOfCandles)

	for i := range trace {
		if i < fromIndex {
			trace[i] = math.NaN()
		} else {
			trace[i] = price
		}
	}

	return trace
}
