package calculator

import (
	"math"
	"reflect"
	"testing"
)

func TestRollingSMA_WindowSemantics(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50}
	out, err := RollingSMA(values, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != len(values) {
		t.Fatalf("expected %d entries, got %d", len(values), len(out))
	}
	// First window-1 positions are undefined, not zero.
	for i := 0; i < 2; i++ {
		if out[i].Valid {
			t.Errorf("index %d: expected invalid before window fills, got %v", i, out[i].Value)
		}
	}
	want := []float64{20, 30, 40}
	for i, w := range want {
		got := out[i+2]
		if !got.Valid {
			t.Fatalf("index %d: expected valid", i+2)
		}
		if math.Abs(got.Value-w) > 1e-9 {
			t.Errorf("index %d: expected %.2f, got %.10f", i+2, w, got.Value)
		}
	}
}

func TestRollingSMA_ExactMean(t *testing.T) {
	values := []float64{100.5, 101.25, 99.75, 100.0, 102.5, 98.0}
	window := 4
	out, err := RollingSMA(values, window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		for j := i - window + 1; j <= i; j++ {
			sum += values[j]
		}
		want := sum / float64(window)
		if math.Abs(out[i].Value-want) > 1e-9 {
			t.Errorf("index %d: expected %.10f, got %.10f", i, want, out[i].Value)
		}
	}
}

func TestRollingSMA_ShortSeries(t *testing.T) {
	out, err := RollingSMA([]float64{1, 2}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, ind := range out {
		if ind.Valid {
			t.Errorf("index %d: expected invalid for series shorter than window", i)
		}
	}
}

func TestRollingSMA_InvalidWindow(t *testing.T) {
	if _, err := RollingSMA([]float64{1, 2, 3}, 0); err == nil {
		t.Fatal("expected error for zero window")
	}
	if _, err := RollingSMA([]float64{1, 2, 3}, -1); err == nil {
		t.Fatal("expected error for negative window")
	}
}

func TestRollingSMA_Deterministic(t *testing.T) {
	values := []float64{5, 7, 11, 13, 17, 19, 23}
	a, err := RollingSMA(values, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := RollingSMA(values, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("identical input produced different MA columns")
	}
}
