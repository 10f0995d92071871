// internal/history/repository.go
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrTableNotFound = errors.New("historical data table does not exist")

// Код ошибки Postgres undefined_table
const pqUndefinedTable = "42P01"

// Repository - интерфейс доступа к историческим котировкам
type Repository interface {
	GetCandles(ctx context.Context, symbol string, timeframe int, from, to time.Time) ([]CandleRow, error)
	GetTicks(ctx context.Context, symbol string, timeframe int, from, to time.Time) ([]TickRow, error)
}

// PostgresRepository - реализация репозитория исторических котировок
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository создаёт новый репозиторий исторических котировок
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetCandles получает свечи символа за период в хронологическом порядке
func (r *PostgresRepository) GetCandles(ctx context.Context, symbol string, timeframe int, from, to time.Time) ([]CandleRow, error) {
	query := `
		SELECT time, open, high, low, close
		FROM candles
		WHERE symbol = $1 AND timeframe = $2 AND time >= $3 AND time < $4
		ORDER BY time
	`

	var candles []CandleRow
	if err := r.db.SelectContext(ctx, &candles, query, symbol, timeframe, from, to); err != nil {
		return nil, fmt.Errorf("failed to select candles: %w", wrapTableError(err))
	}

	return candles, nil
}

// GetTicks получает тики символа за период в хронологическом порядке
func (r *PostgresRepository) GetTicks(ctx context.Context, symbol string, timeframe int, from, to time.Time) ([]TickRow, error) {
	query := `
		SELECT time, high, low, close
		FROM ticks
		WHERE symbol = $1 AND timeframe = $2 AND time >= $3 AND time < $4
		ORDER BY time
	`

	var ticks []TickRow
	if err := r.db.SelectContext(ctx, &ticks, query, symbol, timeframe, from, to); err != nil {
		return nil, fmt.Errorf("failed to select ticks: %w", wrapTableError(err))
	}

	return ticks, nil
}

// wrapTableError подменяет ошибку Postgres об отсутствующей таблице
// на доменную, чтобы вызывающий мог отличить пустую базу от прочих сбоев
func wrapTableError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pqUndefinedTable {
		return ErrTableNotFound
	}

	return err
}
