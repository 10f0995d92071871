// internal/trading/engine.go

package trading

import (
	"errors"
	"math"

	"step-strategy-backtester/internal/core/domain/entities"
	"step-strategy-backtester/internal/core/domain/store"
	"step-strategy-backtester/pkg/utils"
)

var (
	ErrOrderNotPending    = errors.New("order is not pending")
	ErrOrderNotOpened     = errors.New("order is not opened")
	ErrNonPositiveBalance = errors.New("real balance is not positive")
)

// Balances - балансы прогона бэктеста.
// Processing меняется на каждой сделке, Real фиксируется только
// в моменты, когда нет ни одной открытой позиции.
type Balances struct {
	Initial    float64
	Processing float64
	Real       float64
}

// Config - состояние торгового движка
type Config struct {
	Balances  Balances
	Spread    float64 // Полный спред в ценовом выражении
	UseSpread bool
	Units     int // Текущая позиция в единицах инструмента
	Trades    int
}

// NewConfig создаёт состояние движка со стартовым балансом
func NewConfig(initialBalance, spread float64, useSpread bool) *Config {
	return &Config{
		Balances: Balances{
			Initial:    initialBalance,
			Processing: initialBalance,
			Real:       initialBalance,
		},
		Spread:    spread,
		UseSpread: useSpread,
	}
}

// Engine - торговый движок бэктеста: исполняет ордера цепочек
// и ведёт балансы
type Engine struct {
	store  *store.Store
	config *Config
}

// NewEngine создаёт торговый движок
func NewEngine(st *store.Store, config *Config) *Engine {
	return &Engine{
		store:  st,
		config: config,
	}
}

// Config возвращает состояние движка
func (e *Engine) Config() *Config {
	return e.config
}

// OpenPosition открывает отложенный ордер по его цене открытия
func (e *Engine) OpenPosition(order *entities.Order) error {
	if order.Status != entities.OrderStatusPending {
		return ErrOrderNotPending
	}

	if order.Direction == entities.OrderDirectionBuy {
		e.buy(order.Prices.Open, order.Volume)
	} else {
		e.sell(order.Prices.Open, order.Volume)
	}

	return e.store.UpdateOrderStatus(order.ID, entities.OrderStatusOpened)
}

// ClosePosition закрывает открытый ордер по заданной цене.
// Когда открытых позиций не остаётся, processing-баланс фиксируется
// в real-баланс.
func (e *Engine) ClosePosition(order *entities.Order, price float64) error {
	if order.Status != entities.OrderStatusOpened {
		return ErrOrderNotOpened
	}

	if order.Direction == entities.OrderDirectionBuy {
		e.sell(price, order.Volume)
	} else {
		e.buy(price, order.Volume)
	}

	if err := e.store.UpdateOrderStatus(order.ID, entities.OrderStatusClosed); err != nil {
		return err
	}

	if !e.store.HasOpenedOrders() {
		e.config.Balances.Real = e.config.Balances.Processing

		if e.config.Balances.Real <= 0 {
			return ErrNonPositiveBalance
		}
	}

	return nil
}

func (e *Engine) buy(price, volume float64) {
	if e.config.UseSpread {
		price = utils.RoundPrice(price + e.config.Spread/2)
	}

	units := int(math.Trunc(volume * utils.LOT))

	e.config.Balances.Processing -= utils.RoundValue(float64(units) * price)
	e.config.Units += units
	e.config.Trades++
}

func (e *Engine) sell(price, volume float64) {
	if e.config.UseSpread {
		price = utils.RoundPrice(price - e.config.Spread/2)
	}

	units := int(math.Trunc(volume * utils.LOT))

	e.config.Balances.Processing += utils.RoundValue(float64(units) * price)
	e.config.Units -= units
	e.config.Trades++
}
