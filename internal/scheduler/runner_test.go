package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"cryptodash/internal/alert"
	"cryptodash/internal/gateway"
	"cryptodash/internal/market"
	"cryptodash/internal/model"
	"cryptodash/internal/recorder"

	"go.uber.org/zap"
)

// fakeClock records requested waits. After returns a ready channel for
// the first maxReady calls and a never-firing channel after that, so
// loop tests terminate deterministically.
type fakeClock struct {
	now      time.Time
	waits    []time.Duration
	maxReady int
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.waits = append(c.waits, d)
	ch := make(chan time.Time, 1)
	if len(c.waits) <= c.maxReady {
		ch <- c.now
	}
	return ch
}

type capturePublisher struct {
	published []*model.MarketSnapshot
	onPublish func()
}

func (p *capturePublisher) Publish(snap *model.MarketSnapshot, _ *model.Series) {
	p.published = append(p.published, snap)
	if p.onPublish != nil {
		p.onPublish()
	}
}

type noopNotifier struct{}

func (noopNotifier) SendAlert(context.Context, string, float64, float64, string) error { return nil }

// flakyGateway fails the first failures historical fetches, then
// behaves like the embedded mock.
type flakyGateway struct {
	gateway.MockGateway
	failures int
}

func (f *flakyGateway) GetHistoricalCandles(ctx context.Context, symbol string, interval model.Interval, start, end time.Time, limit int) ([]model.Candle, error) {
	if f.failures > 0 {
		f.failures--
		return nil, &gateway.Error{Op: "klines", Err: errors.New("rate limited")}
	}
	return f.MockGateway.GetHistoricalCandles(ctx, symbol, interval, start, end, limit)
}

func newTestRunner(gw gateway.Gateway, opts Options, clock Clock, pub Publisher) *Runner {
	log := zap.NewNop()
	return NewRunner(opts,
		market.NewBuilder(gw),
		market.NewAggregator(gw, nil),
		alert.NewEvaluator(noopNotifier{}, log),
		pub, recorder.NewNoopRecorder(), clock, log)
}

func baseOptions() Options {
	return Options{
		Symbol:       "BTCUSDT",
		Interval:     model.Interval1d,
		PeriodDays:   30,
		RefreshEvery: 60 * time.Second,
		Backoff:      5 * time.Second,
	}
}

func TestRun_SingleShotSuccess(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	pub := &capturePublisher{}
	r := newTestRunner(&gateway.MockGateway{Price: 100}, baseOptions(), clock, pub)

	r.Run(context.Background())

	if len(pub.published) != 1 {
		t.Fatalf("expected one publish, got %d", len(pub.published))
	}
	if len(clock.waits) != 0 {
		t.Errorf("single-shot success must not wait, got %v", clock.waits)
	}
	snap, series := r.Latest()
	if snap == nil || series == nil {
		t.Error("latest cycle output not retained")
	}
}

func TestRun_BackoffThenRetry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), maxReady: 1}
	pub := &capturePublisher{}
	gw := &flakyGateway{MockGateway: gateway.MockGateway{Price: 100}, failures: 1}
	opts := baseOptions()
	r := newTestRunner(gw, opts, clock, pub)

	r.Run(context.Background())

	// First cycle fails, waits the short backoff, second succeeds and
	// single-shot mode exits.
	if len(clock.waits) != 1 || clock.waits[0] != opts.Backoff {
		t.Fatalf("expected one backoff wait of %v, got %v", opts.Backoff, clock.waits)
	}
	if len(pub.published) != 1 {
		t.Errorf("expected one publish after retry, got %d", len(pub.published))
	}
}

func TestRun_AutoRefreshLoop(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), maxReady: 2}
	ctx, cancel := context.WithCancel(context.Background())
	pub := &capturePublisher{}
	pub.onPublish = func() {
		if len(pub.published) == 2 {
			cancel()
		}
	}
	gw := &flakyGateway{MockGateway: gateway.MockGateway{Price: 100}, failures: 1}
	opts := baseOptions()
	opts.AutoRefresh = true
	r := newTestRunner(gw, opts, clock, pub)

	r.Run(ctx)

	// fail → backoff, success → refresh wait, success → cancelled.
	want := []time.Duration{opts.Backoff, opts.RefreshEvery, opts.RefreshEvery}
	if len(clock.waits) != len(want) {
		t.Fatalf("expected waits %v, got %v", want, clock.waits)
	}
	for i := range want {
		if clock.waits[i] != want[i] {
			t.Errorf("wait %d: expected %v, got %v", i, want[i], clock.waits[i])
		}
	}
	if len(pub.published) != 2 {
		t.Errorf("expected 2 publishes, got %d", len(pub.published))
	}
}

func TestRunCycle_FailureLeavesNoOutput(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	pub := &capturePublisher{}
	gw := &flakyGateway{failures: 1}
	r := newTestRunner(gw, baseOptions(), clock, pub)

	if err := r.RunCycle(context.Background()); err == nil {
		t.Fatal("expected cycle failure")
	}
	if len(pub.published) != 0 {
		t.Error("failed cycle must not publish")
	}
	snap, series := r.Latest()
	if snap != nil || series != nil {
		t.Error("failed cycle must not retain output")
	}
}
