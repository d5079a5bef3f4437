package luxpwm

import (
	"errors"
	"math"
	"testing"
)

func TestAdaptiveRangeUpdate(t *testing.T) {
	r, err := NewAdaptiveRange(Bounds{Min: 0, Max: 1000}, 0.05)
	if err != nil {
		t.Fatal(err)
	}

	got := r.Update(Bounds{Min: 100, Max: 200})
	if !approx(got.Min, 5) || !approx(got.Max, 960) {
		t.Errorf("Update() = %+v, want {5 960}", got)
	}
	if r.Bounds() != got {
		t.Errorf("Bounds() = %+v, want %+v", r.Bounds(), got)
	}
}

func TestAdaptiveRangeIdempotent(t *testing.T) {
	start := Bounds{Min: 12.5, Max: 480}
	r, err := NewAdaptiveRange(start, 0.05)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		got := r.Update(start)
		if !approx(got.Min, start.Min) || !approx(got.Max, start.Max) {
			t.Fatalf("update %d: %+v, want %+v", i, got, start)
		}
	}
}

func TestAdaptiveRangeMinimumSpan(t *testing.T) {
	r, err := NewAdaptiveRange(Bounds{Min: 0, Max: 1000}, 0.05)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2000; i++ {
		got := r.Update(Bounds{Min: 5, Max: 5})
		if !(got.Max > got.Min) {
			t.Fatalf("update %d: degenerate range %+v", i, got)
		}
	}

	// The span decays by the blend factor and is pushed back to minSpan
	// whenever it collapses.
	got := r.Bounds()
	if !approx(got.Min, 5) || got.Span() > minSpan+tolerance {
		t.Errorf("converged range = %+v, want min 5 and span <= %v", got, minSpan)
	}
}

func TestAdaptiveRangeInverted(t *testing.T) {
	r, err := NewAdaptiveRange(Bounds{Min: 0, Max: 10}, 1)
	if err != nil {
		t.Fatal(err)
	}
	got := r.Update(Bounds{Min: 8, Max: 2})
	if got != (Bounds{Min: 8, Max: 9}) {
		t.Errorf("Update() = %+v, want {8 9}", got)
	}
}

func TestNewAdaptiveRangeInvalid(t *testing.T) {
	if _, err := NewAdaptiveRange(Bounds{Min: 0, Max: 1}, 0); !errors.Is(err, ErrInvalidAlpha) {
		t.Errorf("error = %v, want %v", err, ErrInvalidAlpha)
	}
	if _, err := NewAdaptiveRange(Bounds{Min: 1, Max: 1}, 0.05); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("error = %v, want %v", err, ErrInvalidRange)
	}
}

func TestMapDuty(t *testing.T) {
	b := Bounds{Min: 100, Max: 200}

	tests := []struct {
		x    float64
		want int
	}{
		{x: -50, want: 0},
		{x: 100, want: 0},
		{x: 150.1, want: 513},
		{x: 200, want: 1023},
		{x: 1e9, want: 1023},
		{x: math.NaN(), want: 0},
	}
	for _, tt := range tests {
		if got := MapDuty(tt.x, b, 1023); got != tt.want {
			t.Errorf("MapDuty(%v) = %d, want %d", tt.x, got, tt.want)
		}
	}

	if got := MapDuty(5, Bounds{Min: 5, Max: 5}, 1023); got != 0 {
		t.Errorf("MapDuty on empty range = %d, want 0", got)
	}
}

func TestMapDutyMonotonic(t *testing.T) {
	b := Bounds{Min: 12, Max: 840}
	prev := -1
	for x := -100.0; x < 1000; x += 0.5 {
		d := MapDuty(x, b, 1023)
		if d < prev {
			t.Fatalf("MapDuty(%v) = %d, lower than previous %d", x, d, prev)
		}
		if d < 0 || d > 1023 {
			t.Fatalf("MapDuty(%v) = %d out of range", x, d)
		}
		prev = d
	}
}

func TestScaleADC(t *testing.T) {
	tests := []struct {
		raw, rawMax, want int
	}{
		{raw: 0, rawMax: 4095, want: 0},
		{raw: 2048, rawMax: 4095, want: 511},
		{raw: 4095, rawMax: 4095, want: 1023},
		{raw: 5000, rawMax: 4095, want: 1023},
		{raw: -3, rawMax: 4095, want: 0},
		{raw: 10, rawMax: 0, want: 0},
	}
	for _, tt := range tests {
		if got := ScaleADC(tt.raw, tt.rawMax, 1023); got != tt.want {
			t.Errorf("ScaleADC(%d, %d) = %d, want %d", tt.raw, tt.rawMax, got, tt.want)
		}
	}
}
