// pkg/utils/price.go

package utils

import "math"

// LOT - количество единиц инструмента в одном лоте
const LOT = 100_000

// Точность цен и расчётных значений
const (
	PriceDecimalPlaces = 5 // Знаков после запятой в цене
	ValueDecimalPlaces = 2 // Знаков после запятой в объёмах и балансах
)

// PointsToPrice переводит расстояние в пунктах в ценовое расстояние
func PointsToPrice(points float64) float64 {
	return points / LOT
}

// PriceToPoints переводит ценовое расстояние в пункты
func PriceToPoints(price float64) float64 {
	return price * LOT
}

// RoundPrice округляет цену до стандартной точности
func RoundPrice(price float64) float64 {
	return roundTo(price, PriceDecimalPlaces)
}

// RoundValue округляет объём/баланс до стандартной точности
func RoundValue(value float64) float64 {
	return roundTo(value, ValueDecimalPlaces)
}

// Mean возвращает среднее арифметическое
func Mean(numbers []float64) float64 {
	if len(numbers) == 0 {
		return 0
	}

	var sum float64
	for _, n := range numbers {
		sum += n
	}

	return sum / float64(len(numbers))
}

func roundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
