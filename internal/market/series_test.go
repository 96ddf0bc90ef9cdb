package market

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"cryptodash/internal/gateway"
	"cryptodash/internal/model"
)

func dailyCandles(start time.Time, closes ...float64) []model.Candle {
	candles := make([]model.Candle, len(closes))
	for i, c := range closes {
		candles[i] = model.Candle{
			Time:   start.AddDate(0, 0, i),
			Open:   c * 0.99,
			High:   c * 1.01,
			Low:    c * 0.98,
			Close:  c,
			Volume: 1000,
		}
	}
	return candles
}

func TestBuild_StrictlyIncreasingTimestamps(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	shuffled := dailyCandles(base, 100, 101, 102, 103, 104)
	// Out of order plus a duplicated timestamp from the gateway.
	shuffled[0], shuffled[3] = shuffled[3], shuffled[0]
	shuffled = append(shuffled, model.Candle{Time: base.AddDate(0, 0, 2), Close: 999})

	gw := &gateway.MockGateway{Historical: shuffled}
	series, err := NewBuilder(gw).Build(context.Background(), "BTCUSDT", model.Interval1d, base, base.AddDate(0, 0, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series.Candles) != 5 {
		t.Fatalf("expected duplicate dropped, got %d candles", len(series.Candles))
	}
	for i := 0; i+1 < len(series.Candles); i++ {
		if !series.Candles[i].Time.Before(series.Candles[i+1].Time) {
			t.Errorf("timestamps not strictly increasing at %d: %v >= %v",
				i, series.Candles[i].Time, series.Candles[i+1].Time)
		}
	}
	// First occurrence wins over the duplicate.
	if series.Candles[2].Close == 999 {
		t.Error("duplicate timestamp replaced the original candle")
	}
}

func TestBuild_MAColumns(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	gw := &gateway.MockGateway{Historical: dailyCandles(base, closes...)}
	series, err := NewBuilder(gw).Build(context.Background(), "BTCUSDT", model.Interval1d, base, base.AddDate(0, 0, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series.MA20) != 30 || len(series.MA50) != 30 || len(series.MA200) != 30 {
		t.Fatal("MA columns must align with candles")
	}
	if series.MA20[18].Valid {
		t.Error("MA20 defined before 20 candles")
	}
	if !series.MA20[19].Valid {
		t.Error("MA20 undefined at index 19")
	}
	// Mean of closes[0..19] = 100 + 19/2.
	want := 109.5
	if got := series.MA20[19].Value; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("MA20[19]: expected %v, got %v", want, got)
	}
	// 30-candle series never fills the 50 and 200 windows.
	for i := range series.MA50 {
		if series.MA50[i].Valid || series.MA200[i].Valid {
			t.Fatalf("index %d: MA50/MA200 must stay undefined", i)
		}
	}
}

func TestBuild_EmptyIsNoData(t *testing.T) {
	gw := &gateway.MockGateway{Historical: []model.Candle{}}
	_, err := NewBuilder(gw).Build(context.Background(), "BTCUSDT", model.Interval1d, time.Now().AddDate(0, 0, -7), time.Now())
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestBuild_GatewayErrorVoidsSeries(t *testing.T) {
	gwErr := &gateway.Error{Op: "klines", Err: errors.New("rate limited")}
	gw := &gateway.MockGateway{HistoricalErr: gwErr}
	series, err := NewBuilder(gw).Build(context.Background(), "BTCUSDT", model.Interval1d, time.Now().AddDate(0, 0, -7), time.Now())
	if err == nil {
		t.Fatal("expected error")
	}
	if series != nil {
		t.Fatal("expected no partial series on fetch error")
	}
	var ge *gateway.Error
	if !errors.As(err, &ge) {
		t.Errorf("expected gateway error in chain, got %v", err)
	}
}

func TestBuild_IntervalLookbackOverride(t *testing.T) {
	end := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	// A supplied span must be ignored for weekly and monthly candles.
	suppliedStart := end.AddDate(0, 0, -3)

	tests := []struct {
		interval model.Interval
		want     time.Duration
	}{
		{model.Interval1w, 52 * 7 * 24 * time.Hour},
		{model.Interval1M, 12 * 30 * 24 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(string(tt.interval), func(t *testing.T) {
			gw := &gateway.MockGateway{Price: 100}
			if _, err := NewBuilder(gw).Build(context.Background(), "BTCUSDT", tt.interval, suppliedStart, end); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !gw.LastEnd.Equal(end) {
				t.Errorf("end moved: %v", gw.LastEnd)
			}
			if got := gw.LastEnd.Sub(gw.LastStart); got != tt.want {
				t.Errorf("lookback: expected %v, got %v", tt.want, got)
			}
		})
	}

	// Other intervals keep the requested span.
	gw := &gateway.MockGateway{Price: 100}
	if _, err := NewBuilder(gw).Build(context.Background(), "BTCUSDT", model.Interval1h, suppliedStart, end); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !gw.LastStart.Equal(suppliedStart) {
		t.Errorf("1h start overridden: %v", gw.LastStart)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 200 + float64(i%7)*1.25
	}
	raw := dailyCandles(base, closes...)

	build := func() *model.Series {
		candles := make([]model.Candle, len(raw))
		copy(candles, raw)
		gw := &gateway.MockGateway{Historical: candles}
		s, err := NewBuilder(gw).Build(context.Background(), "BTCUSDT", model.Interval1d, base, base.AddDate(0, 0, 60))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return s
	}
	a, b := build(), build()
	if !reflect.DeepEqual(a.MA20, b.MA20) || !reflect.DeepEqual(a.MA50, b.MA50) || !reflect.DeepEqual(a.MA200, b.MA200) {
		t.Error("identical raw gateway output produced different derived columns")
	}
}
