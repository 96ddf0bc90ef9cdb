package scheduler

import (
	"context"
	"sync"
	"time"

	"cryptodash/internal/alert"
	"cryptodash/internal/market"
	"cryptodash/internal/model"
	"cryptodash/internal/recorder"

	"go.uber.org/zap"
)

// Clock abstracts time so the refresh loop can be tested without real
// delays.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// RealClock delegates to the time package.
type RealClock struct{}

func (RealClock) Now() time.Time                         { return time.Now() }
func (RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Publisher consumes each successful cycle's output. The presentation
// layer sits behind this seam.
type Publisher interface {
	Publish(snap *model.MarketSnapshot, series *model.Series)
}

// Options configures the refresh loop.
type Options struct {
	Symbol       string
	Interval     model.Interval
	PeriodDays   int
	AutoRefresh  bool
	RefreshEvery time.Duration
	Backoff      time.Duration
	Alert        model.AlertConfig
}

// Runner drives the poll-compute-publish cycle. One cycle runs to
// completion before the next begins; on failure the runner logs, waits
// the (shorter) backoff, and retries. It never terminates the process.
type Runner struct {
	opts    Options
	builder *market.Builder
	agg     *market.Aggregator
	eval    *alert.Evaluator
	pub     Publisher
	rec     recorder.Recorder
	clock   Clock
	log     *zap.Logger

	mu         sync.RWMutex
	lastSnap   *model.MarketSnapshot
	lastSeries *model.Series
}

// NewRunner creates a Runner. A nil clock defaults to real time.
func NewRunner(opts Options, builder *market.Builder, agg *market.Aggregator, eval *alert.Evaluator, pub Publisher, rec recorder.Recorder, clock Clock, log *zap.Logger) *Runner {
	if clock == nil {
		clock = RealClock{}
	}
	return &Runner{
		opts:    opts,
		builder: builder,
		agg:     agg,
		eval:    eval,
		pub:     pub,
		rec:     rec,
		clock:   clock,
		log:     log,
	}
}

// RunCycle executes one full refresh cycle. Any gateway or integrity
// failure in the series or snapshot voids the cycle; alert and journal
// failures are logged but do not.
func (r *Runner) RunCycle(ctx context.Context) error {
	end := r.clock.Now().UTC()
	start := end.AddDate(0, 0, -r.opts.PeriodDays)

	series, err := r.builder.Build(ctx, r.opts.Symbol, r.opts.Interval, start, end)
	if err != nil {
		return err
	}
	snap, err := r.agg.Snapshot(ctx, r.opts.Symbol)
	if err != nil {
		return err
	}

	r.pub.Publish(snap, series)
	r.setLatest(snap, series)

	if fired, err := r.eval.Evaluate(ctx, r.opts.Alert, series); err != nil {
		r.log.Warn("price alert delivery failed", zap.Error(err))
	} else if fired {
		r.log.Info("price alert email sent", zap.String("recipient", r.opts.Alert.Email))
	}

	n := len(series.Candles)
	close, _ := series.LatestClose()
	if err := r.rec.RecordCycle(&recorder.CycleRecord{
		Snapshot:    snap,
		Interval:    series.Interval,
		LatestClose: close,
		CandleCount: n,
		MA20:        series.MA20[n-1],
		MA50:        series.MA50[n-1],
		MA200:       series.MA200[n-1],
	}); err != nil {
		r.log.Error("record cycle", zap.Error(err))
	}
	return nil
}

// Run loops RunCycle until ctx is cancelled. With auto-refresh off it
// returns after the first successful cycle; failures still back off
// and retry in either mode.
func (r *Runner) Run(ctx context.Context) {
	for {
		var wait time.Duration
		if err := r.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			r.log.Error("refresh cycle failed", zap.Error(err))
			wait = r.opts.Backoff
		} else {
			if !r.opts.AutoRefresh {
				return
			}
			wait = r.opts.RefreshEvery
		}
		select {
		case <-ctx.Done():
			return
		case <-r.clock.After(wait):
		}
	}
}

// Latest returns the output of the most recent successful cycle, or
// nils before the first success.
func (r *Runner) Latest() (*model.MarketSnapshot, *model.Series) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastSnap, r.lastSeries
}

func (r *Runner) setLatest(snap *model.MarketSnapshot, series *model.Series) {
	r.mu.Lock()
	r.lastSnap, r.lastSeries = snap, series
	r.mu.Unlock()
}
