package gateway

import (
	"context"
	"time"

	"cryptodash/internal/model"
)

// MockGateway returns controllable fixed data for development and
// testing. Unset candle sets fall back to generated bars around Price.
type MockGateway struct {
	Price      float64
	Ticker     model.Ticker
	TickerErr  error
	Candles    map[model.Interval][]model.Candle
	CandlesErr error

	Historical    []model.Candle
	HistoricalErr error

	// Arguments of the last historical call, for assertions.
	LastStart time.Time
	LastEnd   time.Time
	LastLimit int
}

func (m *MockGateway) Name() string { return "mock" }

func (m *MockGateway) GetTicker(_ context.Context, symbol string) (model.Ticker, error) {
	if m.TickerErr != nil {
		return model.Ticker{}, m.TickerErr
	}
	if m.Ticker != (model.Ticker{}) {
		return m.Ticker, nil
	}
	return model.Ticker{
		Symbol:           symbol,
		LastPrice:        m.Price,
		LowPrice:         m.Price * 0.98,
		HighPrice:        m.Price * 1.02,
		Volume:           1000,
		WeightedAvgPrice: m.Price,
	}, nil
}

func (m *MockGateway) GetCandles(_ context.Context, _ string, interval model.Interval, limit int) ([]model.Candle, error) {
	if m.CandlesErr != nil {
		return nil, m.CandlesErr
	}
	candles, ok := m.Candles[interval]
	if !ok {
		candles = GenerateCandles(m.Price, limit, 24*time.Hour)
	}
	if len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}

func (m *MockGateway) GetHistoricalCandles(_ context.Context, _ string, _ model.Interval, start, end time.Time, limit int) ([]model.Candle, error) {
	m.LastStart, m.LastEnd, m.LastLimit = start, end, limit
	if m.HistoricalErr != nil {
		return nil, m.HistoricalErr
	}
	if m.Historical != nil {
		return m.Historical, nil
	}
	return GenerateCandles(m.Price, limit, 24*time.Hour), nil
}

// GenerateCandles produces count synthetic bars ending now, spaced by
// step, drifting around basePrice.
func GenerateCandles(basePrice float64, count int, step time.Duration) []model.Candle {
	now := time.Now().UTC().Truncate(step)
	candles := make([]model.Candle, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		candles[i] = model.Candle{
			Time:   now.Add(-time.Duration(count-i) * step),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return candles
}
