// internal/core/domain/store/orders.go

package store

import (
	"step-strategy-backtester/internal/core/domain/entities"
)

// CreateOrder сохраняет ордер и добавляет его в цепочку своего уровня
func (s *Store) CreateOrder(order *entities.Order) error {
	if _, ok := s.levels[order.WorkingLevelID]; !ok {
		return ErrWorkingLevelNotFound
	}

	s.orders[order.ID] = order
	s.levelChains[order.WorkingLevelID] = append(s.levelChains[order.WorkingLevelID], order.ID)

	return nil
}

// GetOrderByID возвращает ордер по идентификатору
func (s *Store) GetOrderByID(id string) (*entities.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}

	return order, nil
}

// GetWorkingLevelChainOfOrders возвращает цепочку ордеров уровня
// в порядке создания
func (s *Store) GetWorkingLevelChainOfOrders(levelID string) ([]*entities.Order, error) {
	if _, ok := s.levels[levelID]; !ok {
		return nil, ErrWorkingLevelNotFound
	}

	chain := make([]*entities.Order, 0, len(s.levelChains[levelID]))
	for _, orderID := range s.levelChains[levelID] {
		chain = append(chain, s.orders[orderID])
	}

	return chain, nil
}

// UpdateOrderStatus обновляет статус ордера
func (s *Store) UpdateOrderStatus(id string, status entities.OrderStatus) error {
	order, ok := s.orders[id]
	if !ok {
		return ErrOrderNotFound
	}

	order.Status = status

	return nil
}

// UpdateOrderPrices обновляет цены ордера
func (s *Store) UpdateOrderPrices(id string, prices entities.OrderPrices) error {
	order, ok := s.orders[id]
	if !ok {
		return ErrOrderNotFound
	}

	order.Prices = prices

	return nil
}

// HasOpenedOrders сообщает, есть ли открытые ордера хотя бы у одного уровня
func (s *Store) HasOpenedOrders() bool {
	for _, order := range s.orders {
		if order.Status == entities.OrderStatusOpened {
			return true
		}
	}

	return false
}
