// internal/core/domain/entities/candle.go

package entities

import (
	"time"

	"github.com/google/uuid"
)

// CandleType - цвет свечи, определяется соотношением цен открытия и закрытия
type CandleType int

const (
	CandleTypeGreen   CandleType = iota // Закрытие выше открытия
	CandleTypeRed                       // Закрытие ниже открытия
	CandleTypeNeutral                   // Закрытие равно открытию
)

func (t CandleType) String() string {
	switch t {
	case CandleTypeGreen:
		return "green"
	case CandleTypeRed:
		return "red"
	case CandleTypeNeutral:
		return "neutral"
	default:
		return "unknown"
	}
}

// CandlePrices - крайние цены свечи
type CandlePrices struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// Candle - историческая свеча с производными свойствами
type Candle struct {
	ID         string
	Time       time.Time
	Type       CandleType
	Prices     CandlePrices
	Size       float64 // Высота свечи в ценовом выражении (high - low)
	Volatility float64 // Волатильность на момент свечи в пунктах
}

// NewCandle создаёт свечу, вычисляя цвет и размер по крайним ценам
func NewCandle(t time.Time, prices CandlePrices, volatility float64) *Candle {
	candleType := CandleTypeNeutral
	switch {
	case prices.Close > prices.Open:
		candleType = CandleTypeGreen
	case prices.Close < prices.Open:
		candleType = CandleTypeRed
	}

	return &Candle{
		ID:         uuid.NewString(),
		Time:       t,
		Type:       candleType,
		Prices:     prices,
		Size:       prices.High - prices.Low,
		Volatility: volatility,
	}
}

// LeadingPrice - ведущая цена свечи: high для зелёной, low для красной,
// для нейтральной - сторона с большей тенью (при равенстве - high)
func (c *Candle) LeadingPrice() float64 {
	switch c.Type {
	case CandleTypeGreen:
		return c.Prices.High
	case CandleTypeRed:
		return c.Prices.Low
	default:
		upperWick := c.Prices.High - c.Prices.Close
		lowerWick := c.Prices.Close - c.Prices.Low

		if upperWick >= lowerWick {
			return c.Prices.High
		}

		return c.Prices.Low
	}
}
