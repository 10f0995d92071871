// internal/core/domain/store/errors.go

package store

import "errors"

var (
	ErrTickNotFound         = errors.New("tick not found")
	ErrCandleNotFound       = errors.New("candle not found")
	ErrAngleNotFound        = errors.New("angle not found")
	ErrWorkingLevelNotFound = errors.New("working level not found")
	ErrOrderNotFound        = errors.New("order not found")

	ErrNoCurrentTick    = errors.New("current tick is not set")
	ErrNoPreviousTick   = errors.New("previous tick is not set")
	ErrNoCurrentCandle  = errors.New("current candle is not set")
	ErrNoPreviousCandle = errors.New("previous candle is not set")

	ErrTakeProfitsAlreadyMoved = errors.New("take profits of the working level are already moved")
	ErrCandleAlreadyInCorridor = errors.New("candle is already in the corridor")
)
