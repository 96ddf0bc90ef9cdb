package recorder

import "cryptodash/internal/model"

// CycleRecord holds the output of one successful refresh cycle.
type CycleRecord struct {
	Snapshot    *model.MarketSnapshot
	Interval    model.Interval
	LatestClose float64
	CandleCount int
	MA20        model.Indicator
	MA50        model.Indicator
	MA200       model.Indicator
}

// Recorder journals refresh cycles for offline inspection. Nothing in
// the pipeline reads the journal back.
type Recorder interface {
	RecordCycle(rec *CycleRecord) error
	Close() error
}
