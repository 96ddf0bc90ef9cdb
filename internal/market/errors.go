package market

import "errors"

// ErrNoData marks an empty candle result for a requested range. It is
// distinct from a fetch or integrity failure: the exchange answered,
// there was just nothing in the window.
var ErrNoData = errors.New("no candle data in range")

// IntegrityError reports data that cannot support a required
// calculation: too few candles for a change window, or duplicate
// timestamps from the gateway.
type IntegrityError struct {
	Reason string
}

func (e *IntegrityError) Error() string {
	return "data integrity: " + e.Reason
}
