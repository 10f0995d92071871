// internal/params/params_test.go

package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRatio_ScalesByVolatility(t *testing.T) {
	p := New()
	p.SetRatio(MinBreakDistance, 0.3)

	assert.InDelta(t, 48, p.GetRatio(MinBreakDistance, 160), 1e-9)
}

func TestValidate_MissingParam(t *testing.T) {
	p := New()
	p.SetPoint(AmountOfOrders, 5)

	err := p.Validate()
	assert.ErrorIs(t, err, ErrParamNotFound)
}

func TestSplitRatioSuffix(t *testing.T) {
	isRatio, numeric := splitRatioSuffix("1.5k")
	assert.True(t, isRatio)
	assert.Equal(t, "1.5", numeric)

	isRatio, numeric = splitRatioSuffix("25")
	assert.False(t, isRatio)
	assert.Equal(t, "25", numeric)
}

func TestLoadCSV(t *testing.T) {
	content := "max_distance_from_corridor_leading_candle_pins_pct,15\n" +
		"amount_of_orders,5\n" +
		"level_expiration_days,30\n" +
		"min_amount_of_candles_in_small_corridor_before_activation_crossing_of_level,3\n" +
		"min_amount_of_candles_in_big_corridor_before_activation_crossing_of_level,6\n" +
		"min_amount_of_candles_in_corridor_defining_edge_bargaining,5\n" +
		"max_loss_per_one_chain_of_orders_pct_of_balance,10\n" +
		"min_distance_between_new_and_current_max_min_angles,1.0k\n" +
		"min_distance_between_current_max_and_min_angles_for_new_inner_angle_to_appear,1.5k\n" +
		"min_break_distance,0.3k\n" +
		"distance_from_level_to_first_order,0.7k\n" +
		"distance_from_level_to_stop_loss,3.6k\n" +
		"distance_from_level_for_signaling_of_moving_take_profits,0.5k\n" +
		"distance_to_move_take_profits,0.2k\n" +
		"distance_from_level_for_its_deletion,2.0k\n" +
		"distance_from_level_to_corridor_before_activation_crossing_of_level,0.2k\n" +
		"distance_defining_nearby_levels_of_the_same_type,1.0k\n" +
		"min_distance_of_activation_crossing_of_level_when_returning_to_level_for_its_deletion,0.5k\n" +
		"range_of_big_corridor_near_level,2.0k\n"

	path := filepath.Join(t.TempDir(), "params.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := LoadCSV(path)
	require.NoError(t, err)

	assert.InDelta(t, 5, p.GetPoint(AmountOfOrders), 1e-9)
	assert.InDelta(t, 0.3*160, p.GetRatio(MinBreakDistance, 160), 1e-9)
	assert.NoError(t, p.Validate())
}

func TestLoadCSV_MissingFile(t *testing.T) {
	_, err := LoadCSV("/nonexistent/params.csv")
	assert.Error(t, err)
}
