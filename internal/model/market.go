package model

import "time"

// Candle represents a single OHLCV bar keyed by its open time.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Ticker holds the exchange's rolling 24h statistics for a symbol.
type Ticker struct {
	Symbol             string
	LastPrice          float64
	LowPrice           float64
	HighPrice          float64
	Volume             float64
	WeightedAvgPrice   float64
	PriceChangePercent float64
}

// Indicator is a derived value that may be undefined, e.g. a moving
// average before its window has filled or market cap for a symbol
// without supply data.
type Indicator struct {
	Value float64
	Valid bool
}

// Series is one refresh cycle's normalized candle history for a
// (symbol, interval) pair plus rolling moving-average columns aligned
// index-for-index with Candles. A Series is built fresh every cycle
// and never mutated afterward.
type Series struct {
	Symbol   string
	Interval Interval
	Candles  []Candle
	MA20     []Indicator
	MA50     []Indicator
	MA200    []Indicator
}

// LatestClose returns the close of the most recent candle.
func (s *Series) LatestClose() (float64, bool) {
	if s == nil || len(s.Candles) == 0 {
		return 0, false
	}
	return s.Candles[len(s.Candles)-1].Close, true
}

// MarketSnapshot is a point-in-time aggregate of market statistics for
// one symbol. Supply-derived fields are absent for symbols without a
// reference table entry.
type MarketSnapshot struct {
	Symbol            string
	Low24h            float64
	High24h           float64
	PriceChange1h     float64
	PriceChange24h    float64
	PriceChange7d     float64
	Volume24h         float64 // quote-currency notional turnover
	AllTimeHigh       float64
	MarketCap         Indicator
	CirculationSupply Indicator
	MaxSupply         Indicator
	FetchedAt         time.Time
}

// SupplyInfo is a static reference entry for a symbol.
type SupplyInfo struct {
	MaxSupply         float64 `yaml:"max_supply"`
	CirculationSupply float64 `yaml:"circulation_supply"`
}

// AlertConfig is an optional price-threshold alert. Zero TargetPrice or
// empty Email disables evaluation entirely.
type AlertConfig struct {
	TargetPrice float64 `yaml:"target_price"`
	Email       string  `yaml:"email"`
}

// Enabled reports whether the alert should be evaluated at all.
func (a AlertConfig) Enabled() bool {
	return a.TargetPrice > 0 && a.Email != ""
}
