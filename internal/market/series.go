package market

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cryptodash/internal/calculator"
	"cryptodash/internal/gateway"
	"cryptodash/internal/model"
)

// maxSeriesCandles bounds one historical fetch.
const maxSeriesCandles = 1000

// MAWindows are the rolling moving-average windows computed on every
// series.
var MAWindows = []int{20, 50, 200}

// Builder fetches a historical candle range and normalizes it into a
// time-ordered Series with moving-average columns.
type Builder struct {
	gw gateway.Gateway
}

// NewBuilder creates a Builder.
func NewBuilder(gw gateway.Gateway) *Builder {
	return &Builder{gw: gw}
}

// ResolveRange applies the interval-implied lookback: weekly candles
// always cover the trailing 52 weeks and monthly candles the trailing
// 12 months (of 30 days), ending at end, overriding any supplied
// start. Other intervals keep the requested span.
func ResolveRange(interval model.Interval, start, end time.Time) (time.Time, time.Time) {
	if lookback, ok := interval.Lookback(); ok {
		return end.Add(-lookback), end
	}
	return start, end
}

// Build fetches, normalizes, and decorates the candle series for
// [start, end]. Any fetch or parse error voids the whole series; an
// empty result returns ErrNoData.
func (b *Builder) Build(ctx context.Context, symbol string, interval model.Interval, start, end time.Time) (*model.Series, error) {
	start, end = ResolveRange(interval, start, end)

	candles, err := b.gw.GetHistoricalCandles(ctx, symbol, interval, start, end, maxSeriesCandles)
	if err != nil {
		return nil, fmt.Errorf("build series %s %s: %w", symbol, interval, err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("build series %s %s: %w", symbol, interval, ErrNoData)
	}

	candles, err = normalize(candles)
	if err != nil {
		return nil, fmt.Errorf("build series %s %s: %w", symbol, interval, err)
	}

	series := &model.Series{
		Symbol:   symbol,
		Interval: interval,
		Candles:  candles,
	}
	closes := calculator.Closes(candles)
	for _, window := range MAWindows {
		col, err := calculator.RollingSMA(closes, window)
		if err != nil {
			return nil, fmt.Errorf("build series %s %s: ma%d: %w", symbol, interval, window, err)
		}
		switch window {
		case 20:
			series.MA20 = col
		case 50:
			series.MA50 = col
		case 200:
			series.MA200 = col
		}
	}
	return series, nil
}

// normalize orders candles by timestamp ascending and drops duplicate
// timestamps, keeping the first occurrence. The result is strictly
// increasing.
func normalize(candles []model.Candle) ([]model.Candle, error) {
	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].Time.Before(candles[j].Time)
	})
	out := candles[:0]
	for i, c := range candles {
		if i > 0 && !c.Time.After(out[len(out)-1].Time) {
			continue
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, &IntegrityError{Reason: "all candles dropped as duplicates"}
	}
	return out, nil
}
