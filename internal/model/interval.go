package model

import (
	"fmt"
	"time"
)

// Interval is a candlestick bucket size in the exchange's notation.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval4h  Interval = "4h"
	Interval1d  Interval = "1d"
	Interval1w  Interval = "1w"
	Interval1M  Interval = "1M"
)

// Intervals lists all supported candlestick intervals.
var Intervals = []Interval{
	Interval1m, Interval5m, Interval15m, Interval30m,
	Interval1h, Interval4h, Interval1d, Interval1w, Interval1M,
}

// ParseInterval validates s against the supported interval set.
func ParseInterval(s string) (Interval, error) {
	for _, iv := range Intervals {
		if string(iv) == s {
			return iv, nil
		}
	}
	return "", fmt.Errorf("unsupported interval %q", s)
}

// Lookback returns the implied lookback duration for intervals that
// override any requested span: 52 weeks for weekly candles, 12 months
// (of 30 days) for monthly. All other intervals return false.
func (i Interval) Lookback() (time.Duration, bool) {
	switch i {
	case Interval1w:
		return 52 * 7 * 24 * time.Hour, true
	case Interval1M:
		return 12 * 30 * 24 * time.Hour, true
	default:
		return 0, false
	}
}
