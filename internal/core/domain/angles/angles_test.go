// internal/core/domain/angles/angles_test.go

package angles

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"step-strategy-backtester/internal/core/domain/entities"
	"step-strategy-backtester/internal/core/domain/store"
)

func greenCandle(high float64) *entities.Candle {
	return entities.NewCandle(
		time.Now(),
		entities.CandlePrices{Open: high - 0.00150, High: high, Low: high - 0.00200, Close: high - 0.00050},
		160,
	)
}

func redCandle(low float64) *entities.Candle {
	return entities.NewCandle(
		time.Now(),
		entities.CandlePrices{Open: low + 0.00150, High: low + 0.00200, Low: low, Close: low + 0.00050},
		160,
	)
}

func angleWithCandle(t *testing.T, st *store.Store, angleType entities.AngleType, candle *entities.Candle) *AngleWithCandle {
	t.Helper()

	st.CreateCandle(candle)

	angle := entities.NewAngle(angleType, entities.AngleStateReal, candle.ID)
	require.NoError(t, st.CreateAngle(angle))

	return &AngleWithCandle{Angle: angle, Candle: candle}
}

func TestGetDiff(t *testing.T) {
	t.Run("leading price grows", func(t *testing.T) {
		assert.Equal(t, entities.DiffGreater, GetDiff(greenCandle(1.30200), greenCandle(1.30100)))
	})

	t.Run("leading price falls", func(t *testing.T) {
		assert.Equal(t, entities.DiffLess, GetDiff(redCandle(1.29900), greenCandle(1.30100)))
	})

	t.Run("equal leading prices and current leads with high", func(t *testing.T) {
		assert.Equal(t, entities.DiffGreater, GetDiff(greenCandle(1.30100), greenCandle(1.30100)))
	})

	t.Run("equal leading prices and current leads with low", func(t *testing.T) {
		assert.Equal(t, entities.DiffLess, GetDiff(redCandle(1.29900), redCandle(1.29900)))
	})
}

func TestGetNewAngle_NoPivot(t *testing.T) {
	candidate := GetNewAngle(greenCandle(1.30200), entities.DiffGreater, entities.DiffGreater, nil, nil, 160, 240)
	assert.Nil(t, candidate)
}

func TestGetNewAngle_MaxPivotRequiresHighLeading(t *testing.T) {
	// Красная свеча ведёт low, максимум на ней не образуется
	candidate := GetNewAngle(redCandle(1.30000), entities.DiffLess, entities.DiffGreater, nil, nil, 160, 240)
	assert.Nil(t, candidate)
}

func TestGetNewAngle_FirstAngleIsReal(t *testing.T) {
	candidate := GetNewAngle(greenCandle(1.30200), entities.DiffLess, entities.DiffGreater, nil, nil, 160, 240)

	require.NotNil(t, candidate)
	assert.Equal(t, entities.AngleTypeMax, candidate.Type)
	assert.Equal(t, entities.AngleStateReal, candidate.State)
}

func TestGetNewAngle_MinPivot(t *testing.T) {
	candidate := GetNewAngle(redCandle(1.29900), entities.DiffGreater, entities.DiffLess, nil, nil, 160, 240)

	require.NotNil(t, candidate)
	assert.Equal(t, entities.AngleTypeMin, candidate.Type)
	assert.Equal(t, entities.AngleStateReal, candidate.State)
}

func TestGetNewAngle_SameTypeOnly(t *testing.T) {
	st := store.NewStore()
	maxAngle := angleWithCandle(t, st, entities.AngleTypeMax, greenCandle(1.30300))

	t.Run("crossed current max gives real angle", func(t *testing.T) {
		candidate := GetNewAngle(greenCandle(1.30400), entities.DiffLess, entities.DiffGreater, maxAngle, nil, 160, 240)

		require.NotNil(t, candidate)
		assert.Equal(t, entities.AngleStateReal, candidate.State)
	})

	t.Run("not crossed current max gives no angle", func(t *testing.T) {
		candidate := GetNewAngle(greenCandle(1.30200), entities.DiffLess, entities.DiffGreater, maxAngle, nil, 160, 240)
		assert.Nil(t, candidate)
	})
}

func TestGetNewAngle_OppositeTypeOnly(t *testing.T) {
	st := store.NewStore()
	minAngle := angleWithCandle(t, st, entities.AngleTypeMin, redCandle(1.30000))

	t.Run("far enough from current min gives real angle", func(t *testing.T) {
		candidate := GetNewAngle(greenCandle(1.30200), entities.DiffLess, entities.DiffGreater, nil, minAngle, 160, 240)

		require.NotNil(t, candidate)
		assert.Equal(t, entities.AngleStateReal, candidate.State)
	})

	t.Run("too close to current min gives no angle", func(t *testing.T) {
		candidate := GetNewAngle(greenCandle(1.30100), entities.DiffLess, entities.DiffGreater, nil, minAngle, 160, 240)
		assert.Nil(t, candidate)
	})
}

func TestGetNewAngle_BothAnglesExist(t *testing.T) {
	st := store.NewStore()
	minAngle := angleWithCandle(t, st, entities.AngleTypeMin, redCandle(1.30000))
	maxAngle := angleWithCandle(t, st, entities.AngleTypeMax, greenCandle(1.30400))

	t.Run("wide range between max and min gives real inner angle", func(t *testing.T) {
		candidate := GetNewAngle(greenCandle(1.30200), entities.DiffLess, entities.DiffGreater, maxAngle, minAngle, 160, 240)

		require.NotNil(t, candidate)
		assert.Equal(t, entities.AngleStateReal, candidate.State)
	})

	t.Run("narrow range between max and min gives virtual inner angle", func(t *testing.T) {
		candidate := GetNewAngle(greenCandle(1.30200), entities.DiffLess, entities.DiffGreater, maxAngle, minAngle, 160, 500)

		require.NotNil(t, candidate)
		assert.Equal(t, entities.AngleStateVirtual, candidate.State)
	})

	t.Run("too close to opposite angle gives no angle", func(t *testing.T) {
		candidate := GetNewAngle(greenCandle(1.30100), entities.DiffLess, entities.DiffGreater, maxAngle, minAngle, 160, 240)
		assert.Nil(t, candidate)
	})
}

func TestUpdateAngles_RealAngleTakesMainSlot(t *testing.T) {
	st := store.NewStore()

	candle := greenCandle(1.30200)
	st.CreateCandle(candle)

	require.NoError(t, UpdateAngles(&Candidate{
		Type:   entities.AngleTypeMax,
		State:  entities.AngleStateReal,
		Candle: candle,
	}, st))

	angle, ok := st.AngleInSlot(store.SlotMaxAngle)
	require.True(t, ok)
	assert.Equal(t, candle.ID, angle.CandleID)

	_, ok = st.AngleInSlot(store.SlotVirtualMaxAngle)
	assert.False(t, ok)
}

func TestUpdateAngles_VirtualAngleTakesVirtualSlot(t *testing.T) {
	st := store.NewStore()

	candle := greenCandle(1.30200)
	st.CreateCandle(candle)

	require.NoError(t, UpdateAngles(&Candidate{
		Type:   entities.AngleTypeMax,
		State:  entities.AngleStateVirtual,
		Candle: candle,
	}, st))

	angle, ok := st.AngleInSlot(store.SlotVirtualMaxAngle)
	require.True(t, ok)
	assert.Equal(t, candle.ID, angle.CandleID)

	_, ok = st.AngleInSlot(store.SlotMaxAngle)
	assert.False(t, ok)
}

func TestUpdateAngles_ArchivesPreviousAngleOnEnteringCorridor(t *testing.T) {
	st := store.NewStore()

	previousCandle := greenCandle(1.30300)
	st.CreateCandle(previousCandle)

	previousAngle := entities.NewAngle(entities.AngleTypeMax, entities.AngleStateReal, previousCandle.ID)
	require.NoError(t, st.CreateAngle(previousAngle))
	require.NoError(t, st.UpdateAngleSlot(store.SlotMaxAngle, previousAngle.ID))

	newCandle := greenCandle(1.30400)
	st.CreateCandle(newCandle)
	require.NoError(t, st.AddCandleToGeneralCorridor(newCandle.ID))

	require.NoError(t, UpdateAngles(&Candidate{
		Type:   entities.AngleTypeMax,
		State:  entities.AngleStateReal,
		Candle: newCandle,
	}, st))

	archived, ok := st.AngleInSlot(store.SlotMaxAngleBeforeBargainingCorridor)
	require.True(t, ok)
	assert.Equal(t, previousAngle.ID, archived.ID)

	current, ok := st.AngleInSlot(store.SlotMaxAngle)
	require.True(t, ok)
	assert.Equal(t, newCandle.ID, current.CandleID)
}

func TestUpdateAngles_NoArchiveWhenPreviousAngleInsideCorridor(t *testing.T) {
	st := store.NewStore()

	previousCandle := greenCandle(1.30300)
	st.CreateCandle(previousCandle)
	require.NoError(t, st.AddCandleToGeneralCorridor(previousCandle.ID))

	previousAngle := entities.NewAngle(entities.AngleTypeMax, entities.AngleStateReal, previousCandle.ID)
	require.NoError(t, st.CreateAngle(previousAngle))
	require.NoError(t, st.UpdateAngleSlot(store.SlotMaxAngle, previousAngle.ID))

	newCandle := greenCandle(1.30400)
	st.CreateCandle(newCandle)
	require.NoError(t, st.AddCandleToGeneralCorridor(newCandle.ID))

	require.NoError(t, UpdateAngles(&Candidate{
		Type:   entities.AngleTypeMax,
		State:  entities.AngleStateReal,
		Candle: newCandle,
	}, st))

	_, ok := st.AngleInSlot(store.SlotMaxAngleBeforeBargainingCorridor)
	assert.False(t, ok)
}

func TestGetCrossedAngle(t *testing.T) {
	st := store.NewStore()
	minAngle := angleWithCandle(t, st, entities.AngleTypeMin, redCandle(1.30000))
	maxAngle := angleWithCandle(t, st, entities.AngleTypeMax, greenCandle(1.30400))

	t.Run("min angle crossed by candle body", func(t *testing.T) {
		candle := entities.NewCandle(time.Now(), entities.CandlePrices{
			Open: 1.30050, High: 1.30080, Low: 1.29900, Close: 1.29950,
		}, 160)

		crossed := GetCrossedAngle(candle, minAngle, maxAngle)
		require.NotNil(t, crossed)
		assert.Equal(t, minAngle.Angle.ID, crossed.Angle.ID)
	})

	t.Run("max angle crossed by candle body", func(t *testing.T) {
		candle := entities.NewCandle(time.Now(), entities.CandlePrices{
			Open: 1.30300, High: 1.30500, Low: 1.30250, Close: 1.30450,
		}, 160)

		crossed := GetCrossedAngle(candle, minAngle, maxAngle)
		require.NotNil(t, crossed)
		assert.Equal(t, maxAngle.Angle.ID, crossed.Angle.ID)
	})

	t.Run("no angle crossed", func(t *testing.T) {
		candle := entities.NewCandle(time.Now(), entities.CandlePrices{
			Open: 1.30150, High: 1.30250, Low: 1.30100, Close: 1.30200,
		}, 160)

		assert.Nil(t, GetCrossedAngle(candle, minAngle, maxAngle))
	})
}
