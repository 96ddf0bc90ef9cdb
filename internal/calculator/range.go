package calculator

import (
	"errors"
	"math"

	"cryptodash/internal/model"
)

// HighestHigh scans the candles and returns the maximum high.
func HighestHigh(candles []model.Candle) (float64, error) {
	if len(candles) == 0 {
		return 0, errors.New("no candles provided")
	}
	high := math.Inf(-1)
	for _, c := range candles {
		if c.High > high {
			high = c.High
		}
	}
	return high, nil
}
