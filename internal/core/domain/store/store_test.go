// internal/core/domain/store/store_test.go

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"step-strategy-backtester/internal/core/domain/entities"
)

func newTestCandle() *entities.Candle {
	return entities.NewCandle(
		time.Now(),
		entities.CandlePrices{Open: 1.30000, High: 1.30100, Low: 1.29900, Close: 1.30050},
		150,
	)
}

func TestUpdateCurrentTick_ShiftsPrevious(t *testing.T) {
	s := NewStore()

	first := entities.NewTick(time.Now(), 1.30010, 1.29990, 1.30000)
	second := entities.NewTick(time.Now(), 1.30020, 1.30000, 1.30010)

	s.CreateTick(first)
	s.CreateTick(second)

	_, err := s.GetCurrentTick()
	assert.ErrorIs(t, err, ErrNoCurrentTick)

	require.NoError(t, s.UpdateCurrentTick(first.ID))
	require.NoError(t, s.UpdateCurrentTick(second.ID))

	current, err := s.GetCurrentTick()
	require.NoError(t, err)
	assert.Equal(t, second.ID, current.ID)

	previous, err := s.GetPreviousTick()
	require.NoError(t, err)
	assert.Equal(t, first.ID, previous.ID)
}

func TestUpdateCurrentTick_NotFound(t *testing.T) {
	s := NewStore()

	assert.ErrorIs(t, s.UpdateCurrentTick("missing"), ErrTickNotFound)
}

func TestRemoveUnusedEntities_KeepsCurrentAndPrevious(t *testing.T) {
	s := NewStore()

	first := entities.NewTick(time.Now(), 1.30010, 1.29990, 1.30000)
	second := entities.NewTick(time.Now(), 1.30020, 1.30000, 1.30010)
	third := entities.NewTick(time.Now(), 1.30030, 1.30010, 1.30020)

	s.CreateTick(first)
	s.CreateTick(second)
	s.CreateTick(third)

	require.NoError(t, s.UpdateCurrentTick(first.ID))
	require.NoError(t, s.UpdateCurrentTick(second.ID))
	require.NoError(t, s.UpdateCurrentTick(third.ID))

	s.RemoveUnusedEntities()

	_, err := s.GetTickByID(first.ID)
	assert.ErrorIs(t, err, ErrTickNotFound)

	_, err = s.GetTickByID(second.ID)
	assert.NoError(t, err)

	_, err = s.GetTickByID(third.ID)
	assert.NoError(t, err)
}

func TestRemoveUnusedEntities_AngleHoldsCandle(t *testing.T) {
	s := NewStore()

	candle := newTestCandle()
	s.CreateCandle(candle)

	angle := entities.NewAngle(entities.AngleTypeMin, entities.AngleStateReal, candle.ID)
	require.NoError(t, s.CreateAngle(angle))
	require.NoError(t, s.UpdateAngleSlot(SlotMinAngle, angle.ID))

	s.RemoveUnusedEntities()

	_, err := s.GetCandleByID(candle.ID)
	assert.NoError(t, err)

	_, err = s.GetAngleByID(angle.ID)
	assert.NoError(t, err)
}

func TestRemoveUnusedEntities_ReleasedAngleFreesCandle(t *testing.T) {
	s := NewStore()

	firstCandle := newTestCandle()
	secondCandle := newTestCandle()
	s.CreateCandle(firstCandle)
	s.CreateCandle(secondCandle)

	firstAngle := entities.NewAngle(entities.AngleTypeMin, entities.AngleStateReal, firstCandle.ID)
	secondAngle := entities.NewAngle(entities.AngleTypeMin, entities.AngleStateReal, secondCandle.ID)
	require.NoError(t, s.CreateAngle(firstAngle))
	require.NoError(t, s.CreateAngle(secondAngle))

	require.NoError(t, s.UpdateAngleSlot(SlotMinAngle, firstAngle.ID))
	require.NoError(t, s.UpdateAngleSlot(SlotMinAngle, secondAngle.ID))

	s.RemoveUnusedEntities()

	_, err := s.GetAngleByID(firstAngle.ID)
	assert.ErrorIs(t, err, ErrAngleNotFound)

	_, err = s.GetCandleByID(firstCandle.ID)
	assert.ErrorIs(t, err, ErrCandleNotFound)

	_, err = s.GetAngleByID(secondAngle.ID)
	assert.NoError(t, err)

	_, err = s.GetCandleByID(secondCandle.ID)
	assert.NoError(t, err)
}

func TestGeneralCorridor_ClearReleasesCandles(t *testing.T) {
	s := NewStore()

	candle := newTestCandle()
	s.CreateCandle(candle)

	require.NoError(t, s.AddCandleToGeneralCorridor(candle.ID))
	require.Len(t, s.GetGeneralCorridor(), 1)

	s.RemoveUnusedEntities()

	_, err := s.GetCandleByID(candle.ID)
	require.NoError(t, err)

	s.ClearGeneralCorridor()
	s.RemoveUnusedEntities()

	_, err = s.GetCandleByID(candle.ID)
	assert.ErrorIs(t, err, ErrCandleNotFound)
}

func TestAddCandleToCorridor_SecondAddFails(t *testing.T) {
	t.Run("general corridor", func(t *testing.T) {
		s := NewStore()

		candle := newTestCandle()
		s.CreateCandle(candle)

		require.NoError(t, s.AddCandleToGeneralCorridor(candle.ID))

		err := s.AddCandleToGeneralCorridor(candle.ID)
		assert.ErrorIs(t, err, ErrCandleAlreadyInCorridor)
		assert.Len(t, s.GetGeneralCorridor(), 1)
	})

	t.Run("working level corridor", func(t *testing.T) {
		s := NewStore()

		level := entities.NewWorkingLevel(entities.OrderDirectionBuy, 1.30000, time.Now())
		s.CreateWorkingLevel(level)

		candle := newTestCandle()
		s.CreateCandle(candle)

		require.NoError(t, s.AddCandleToWorkingLevelCorridor(level.ID, entities.CorridorTypeSmall, candle.ID))

		err := s.AddCandleToWorkingLevelCorridor(level.ID, entities.CorridorTypeSmall, candle.ID)
		assert.ErrorIs(t, err, ErrCandleAlreadyInCorridor)

		// Повторная регистрация не удерживает свечу лишний раз
		require.NoError(t, s.ClearWorkingLevelCorridor(level.ID, entities.CorridorTypeSmall))
		s.RemoveUnusedEntities()

		_, getErr := s.GetCandleByID(candle.ID)
		assert.ErrorIs(t, getErr, ErrCandleNotFound)
	})
}

func TestUpdateDiffs_ShiftsCurrentToPrevious(t *testing.T) {
	s := NewStore()

	_, ok := s.CurrentDiff()
	assert.False(t, ok)

	s.UpdateDiffs(entities.DiffGreater)
	s.UpdateDiffs(entities.DiffLess)

	current, ok := s.CurrentDiff()
	require.True(t, ok)
	assert.Equal(t, entities.DiffLess, current)

	previous, ok := s.PreviousDiff()
	require.True(t, ok)
	assert.Equal(t, entities.DiffGreater, previous)
}

func TestWorkingLevelLifecycle(t *testing.T) {
	s := NewStore()

	level := entities.NewWorkingLevel(entities.OrderDirectionBuy, 1.30000, time.Now())
	s.CreateWorkingLevel(level)

	created := s.GetCreatedWorkingLevels()
	require.Len(t, created, 1)
	assert.Empty(t, s.GetActiveWorkingLevels())

	require.NoError(t, s.MoveWorkingLevelToActive(level.ID))

	assert.Empty(t, s.GetCreatedWorkingLevels())
	require.Len(t, s.GetActiveWorkingLevels(), 1)

	require.NoError(t, s.RemoveWorkingLevel(level.ID))

	_, err := s.GetWorkingLevelByID(level.ID)
	assert.ErrorIs(t, err, ErrWorkingLevelNotFound)
}

func TestRemoveWorkingLevel_ReleasesCorridorsAndOrders(t *testing.T) {
	s := NewStore()

	level := entities.NewWorkingLevel(entities.OrderDirectionBuy, 1.30000, time.Now())
	s.CreateWorkingLevel(level)

	candle := newTestCandle()
	s.CreateCandle(candle)
	require.NoError(t, s.AddCandleToWorkingLevelCorridor(level.ID, entities.CorridorTypeSmall, candle.ID))

	order := entities.NewOrder(entities.OrderDirectionBuy, 0.03, entities.OrderPrices{
		Open:       1.29874,
		StopLoss:   1.29352,
		TakeProfit: 1.30000,
	}, level.ID)
	require.NoError(t, s.CreateOrder(order))

	require.NoError(t, s.RemoveWorkingLevel(level.ID))

	_, err := s.GetOrderByID(order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	s.RemoveUnusedEntities()

	_, err = s.GetCandleByID(candle.ID)
	assert.ErrorIs(t, err, ErrCandleNotFound)
}

func TestAngleInSlot_EmptySlot(t *testing.T) {
	s := NewStore()

	_, ok := s.AngleInSlot(SlotMaxAngle)
	assert.False(t, ok)
}

func TestUpdateMaxCrossingValue_KeepsMaximum(t *testing.T) {
	s := NewStore()

	level := entities.NewWorkingLevel(entities.OrderDirectionBuy, 1.30000, time.Now())
	s.CreateWorkingLevel(level)

	require.NoError(t, s.UpdateMaxCrossingValue(level.ID, 50))
	require.NoError(t, s.UpdateMaxCrossingValue(level.ID, 30))

	value, ok := s.MaxCrossingValue(level.ID)
	require.True(t, ok)
	assert.InDelta(t, 50, value, 1e-9)

	require.NoError(t, s.UpdateMaxCrossingValue(level.ID, 80))

	value, _ = s.MaxCrossingValue(level.ID)
	assert.InDelta(t, 80, value, 1e-9)
}

func TestMarkTakeProfitsMoved_SecondMoveFails(t *testing.T) {
	s := NewStore()

	level := entities.NewWorkingLevel(entities.OrderDirectionSell, 1.30000, time.Now())
	s.CreateWorkingLevel(level)

	assert.False(t, s.TakeProfitsMoved(level.ID))

	require.NoError(t, s.MarkTakeProfitsMoved(level.ID))
	assert.True(t, s.TakeProfitsMoved(level.ID))

	assert.ErrorIs(t, s.MarkTakeProfitsMoved(level.ID), ErrTakeProfitsAlreadyMoved)
}

func TestGetWorkingLevelChainOfOrders(t *testing.T) {
	s := NewStore()

	level := entities.NewWorkingLevel(entities.OrderDirectionSell, 1.30000, time.Now())
	s.CreateWorkingLevel(level)

	first := entities.NewOrder(entities.OrderDirectionSell, 0.03, entities.OrderPrices{Open: 1.30126}, level.ID)
	second := entities.NewOrder(entities.OrderDirectionSell, 0.03, entities.OrderPrices{Open: 1.30252}, level.ID)

	require.NoError(t, s.CreateOrder(first))
	require.NoError(t, s.CreateOrder(second))

	chain, err := s.GetWorkingLevelChainOfOrders(level.ID)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, first.ID, chain[0].ID)
	assert.Equal(t, second.ID, chain[1].ID)
}
