package market

import (
	"context"
	"fmt"
	"time"

	"cryptodash/internal/calculator"
	"cryptodash/internal/gateway"
	"cryptodash/internal/model"
)

// athWindow is the number of daily candles scanned for the all-time
// high, the deepest history the exchange returns in one call.
const athWindow = 1000

// Aggregator combines the ticker and several kline queries into one
// MarketSnapshot. Any failure voids the whole snapshot; partial
// snapshots are never returned.
type Aggregator struct {
	gw     gateway.Gateway
	supply map[string]model.SupplyInfo
}

// NewAggregator creates an Aggregator. The supply table is read-only
// reference data shared across cycles.
func NewAggregator(gw gateway.Gateway, supply map[string]model.SupplyInfo) *Aggregator {
	return &Aggregator{gw: gw, supply: supply}
}

// Snapshot fetches and aggregates the current market statistics for a
// symbol. Gateway calls are issued sequentially; the snapshot reflects
// the moment of the calls, with no cross-call atomicity at the
// exchange.
func (a *Aggregator) Snapshot(ctx context.Context, symbol string) (*model.MarketSnapshot, error) {
	ticker, err := a.gw.GetTicker(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", symbol, err)
	}

	change1h, err := a.fetchChange(ctx, symbol, model.Interval1h, 2)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s 1h change: %w", symbol, err)
	}
	change7d, err := a.fetchChange(ctx, symbol, model.Interval1d, 8)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s 7d change: %w", symbol, err)
	}

	dailyAll, err := a.gw.GetCandles(ctx, symbol, model.Interval1d, athWindow)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s ath: %w", symbol, err)
	}
	ath, err := calculator.HighestHigh(dailyAll)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s ath: %w", symbol, &IntegrityError{Reason: err.Error()})
	}

	snap := &model.MarketSnapshot{
		Symbol:         symbol,
		Low24h:         ticker.LowPrice,
		High24h:        ticker.HighPrice,
		PriceChange1h:  change1h,
		PriceChange24h: ticker.PriceChangePercent,
		PriceChange7d:  change7d,
		Volume24h:      ticker.Volume * ticker.WeightedAvgPrice,
		AllTimeHigh:    ath,
		FetchedAt:      time.Now().UTC(),
	}

	if info, ok := a.supply[symbol]; ok {
		snap.CirculationSupply = model.Indicator{Value: info.CirculationSupply, Valid: true}
		snap.MaxSupply = model.Indicator{Value: info.MaxSupply, Valid: true}
		snap.MarketCap = model.Indicator{Value: ticker.LastPrice * info.CirculationSupply, Valid: true}
	}
	return snap, nil
}

// fetchChange computes the percentage move between the first and last
// close of the most recent limit candles of an interval.
func (a *Aggregator) fetchChange(ctx context.Context, symbol string, interval model.Interval, limit int) (float64, error) {
	candles, err := a.gw.GetCandles(ctx, symbol, interval, limit)
	if err != nil {
		return 0, err
	}
	if len(candles) < 2 {
		return 0, &IntegrityError{Reason: fmt.Sprintf("need 2 %s candles for change, got %d", interval, len(candles))}
	}
	first := candles[0].Close
	last := candles[len(candles)-1].Close
	change, err := calculator.PercentChange(first, last)
	if err != nil {
		return 0, &IntegrityError{Reason: err.Error()}
	}
	return change, nil
}
