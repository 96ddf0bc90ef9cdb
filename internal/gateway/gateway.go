package gateway

import (
	"context"
	"fmt"
	"time"

	"cryptodash/internal/model"
)

// Gateway defines the exchange data capability consumed by the
// aggregation pipeline. Implementations must bound every call with a
// timeout; callers treat any returned error as a gateway failure.
type Gateway interface {
	// GetTicker returns the rolling 24h statistics for a symbol.
	GetTicker(ctx context.Context, symbol string) (model.Ticker, error)
	// GetCandles returns the most recent candles for an interval,
	// oldest first, at most limit entries.
	GetCandles(ctx context.Context, symbol string, interval model.Interval, limit int) ([]model.Candle, error)
	// GetHistoricalCandles returns candles in [start, end], oldest
	// first, at most limit entries.
	GetHistoricalCandles(ctx context.Context, symbol string, interval model.Interval, start, end time.Time, limit int) ([]model.Candle, error)
	Name() string
}

// Error wraps any network, HTTP, or decode failure from the exchange.
// The core does not distinguish further; rate limits and auth errors
// surface the same way.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
