// internal/core/domain/entities/order.go

package entities

import "github.com/google/uuid"

// OrderStatus - статус ордера в цепочке
type OrderStatus int

const (
	OrderStatusPending OrderStatus = iota // Ожидает пересечения цены открытия
	OrderStatusOpened                     // Открыт
	OrderStatusClosed                     // Закрыт по take profit или stop loss
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusOpened:
		return "opened"
	case OrderStatusClosed:
		return "closed"
	default:
		return "pending"
	}
}

// OrderPrices - цены ордера
type OrderPrices struct {
	Open       float64
	StopLoss   float64
	TakeProfit float64
}

// Order - отложенный ордер цепочки рабочего уровня
type Order struct {
	ID             string
	Direction      OrderDirection
	Status         OrderStatus
	Volume         float64 // Объём в лотах
	Prices         OrderPrices
	WorkingLevelID string
}

// NewOrder создаёт ордер в статусе Pending
func NewOrder(direction OrderDirection, volume float64, prices OrderPrices, workingLevelID string) *Order {
	return &Order{
		ID:             uuid.NewString(),
		Direction:      direction,
		Status:         OrderStatusPending,
		Volume:         volume,
		Prices:         prices,
		WorkingLevelID: workingLevelID,
	}
}
