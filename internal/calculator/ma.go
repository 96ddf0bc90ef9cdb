package calculator

import (
	"errors"

	"cryptodash/internal/model"
)

// RollingSMA computes the simple moving average of values over the
// given window at every index. Positions with fewer than window values
// at or before them are left invalid rather than zero-filled.
func RollingSMA(values []float64, window int) ([]model.Indicator, error) {
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}
	out := make([]model.Indicator, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = model.Indicator{Value: sum / float64(window), Valid: true}
		}
	}
	return out, nil
}

// Closes extracts the close column from a candle slice.
func Closes(candles []model.Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return closes
}
