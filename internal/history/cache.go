// internal/history/cache.go
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache кэширует исторические котировки в Redis, чтобы не ходить в базу
// при повторных запусках с теми же настройками
type Cache struct {
	client *redis.Client
	prefix string
}

// NewCache создаёт кэш исторических котировок
func NewCache(addr, password string, db int) *Cache {
	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		prefix: "backtester:",
	}
}

// Set устанавливает значение в Redis с TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	fullKey := c.prefix + key

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, fullKey, data, ttl).Err()
}

// Get получает значение из Redis. Возвращает false, если ключа нет.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	fullKey := c.prefix + key

	data, err := c.client.Get(ctx, fullKey).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}

	return true, json.Unmarshal([]byte(data), dest)
}

// Delete удаляет ключ из Redis
func (c *Cache) Delete(ctx context.Context, key string) error {
	fullKey := c.prefix + key
	return c.client.Del(ctx, fullKey).Err()
}

// SetCandles кэширует свечи символа за период
func (c *Cache) SetCandles(ctx context.Context, symbol string, timeframe int, from, to time.Time, candles []CandleRow, ttl time.Duration) error {
	return c.Set(ctx, candlesKey(symbol, timeframe, from, to), candles, ttl)
}

// GetCandles получает свечи символа за период из кэша
func (c *Cache) GetCandles(ctx context.Context, symbol string, timeframe int, from, to time.Time) ([]CandleRow, bool, error) {
	var candles []CandleRow

	found, err := c.Get(ctx, candlesKey(symbol, timeframe, from, to), &candles)
	if err != nil || !found {
		return nil, false, err
	}

	return candles, true, nil
}

// SetTicks кэширует тики символа за период
func (c *Cache) SetTicks(ctx context.Context, symbol string, timeframe int, from, to time.Time, ticks []TickRow, ttl time.Duration) error {
	return c.Set(ctx, ticksKey(symbol, timeframe, from, to), ticks, ttl)
}

// GetTicks получает тики символа за период из кэша
func (c *Cache) GetTicks(ctx context.Context, symbol string, timeframe int, from, to time.Time) ([]TickRow, bool, error) {
	var ticks []TickRow

	found, err := c.Get(ctx, ticksKey(symbol, timeframe, from, to), &ticks)
	if err != nil || !found {
		return nil, false, err
	}

	return ticks, true, nil
}

const cacheTimePattern = "2006-01-02_15-04"

func candlesKey(symbol string, timeframe int, from, to time.Time) string {
	return fmt.Sprintf("candles:%s:%d:%s:%s", symbol, timeframe, from.Format(cacheTimePattern), to.Format(cacheTimePattern))
}

func ticksKey(symbol string, timeframe int, from, to time.Time) string {
	return fmt.Sprintf("ticks:%s:%d:%s:%s", symbol, timeframe, from.Format(cacheTimePattern), to.Format(cacheTimePattern))
}
