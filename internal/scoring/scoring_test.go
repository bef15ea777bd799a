package scoring

import "testing"

func TestScaleReading_Endpoints(t *testing.T) {
	if got := ScaleReading(0); got != 5 {
		t.Fatalf("ScaleReading(0) = %d, want 5", got)
	}
	if got := ScaleReading(20); got != 495 {
		t.Fatalf("ScaleReading(20) = %d, want 495", got)
	}
}

func TestScaleReading_CeilingSteps(t *testing.T) {
	tests := []struct {
		raw  int
		want int
	}{
		{1, 30},   // ceil(4.9) = 5 steps
		{5, 130},  // ceil(24.5) = 25 steps
		{10, 250}, // exactly 49 steps
		{12, 300}, // ceil(58.8) = 59 steps
		{15, 375}, // ceil(73.5) = 74 steps
		{19, 475}, // ceil(93.1) = 94 steps
	}
	for _, tt := range tests {
		if got := ScaleReading(tt.raw); got != tt.want {
			t.Errorf("ScaleReading(%d) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestScaleReading_ClampsRaw(t *testing.T) {
	if got := ScaleReading(-3); got != 5 {
		t.Errorf("ScaleReading(-3) = %d, want 5", got)
	}
	if got := ScaleReading(42); got != 495 {
		t.Errorf("ScaleReading(42) = %d, want 495", got)
	}
}

func TestScaleReading_MonotoneMultipleOfFive(t *testing.T) {
	prev := 0
	for raw := 0; raw <= 20; raw++ {
		got := ScaleReading(raw)
		if got < prev {
			t.Fatalf("not monotone: ScaleReading(%d) = %d < %d", raw, got, prev)
		}
		if got%5 != 0 {
			t.Fatalf("ScaleReading(%d) = %d is not a multiple of 5", raw, got)
		}
		if got < 5 || got > 495 {
			t.Fatalf("ScaleReading(%d) = %d out of range", raw, got)
		}
		if raw > 0 && got == 5 {
			t.Fatalf("non-zero raw %d mapped to the minimum", raw)
		}
		prev = got
	}
}

func TestScale_CustomItemCount(t *testing.T) {
	s := DefaultScale()
	s.ItemCount = 40
	if got := s.Scaled(40); got != 495 {
		t.Errorf("Scaled(40) = %d, want 495", got)
	}
	if got := s.Scaled(20); got != 250 {
		t.Errorf("Scaled(20) = %d, want 250", got)
	}
}

func TestConfidenceInterval(t *testing.T) {
	tests := []struct {
		scaled   int
		low, high int
	}{
		{5, 5, 65},
		{30, 5, 90},
		{300, 240, 360},
		{470, 410, 495},
		{495, 435, 495},
	}
	for _, tt := range tests {
		low, high := ConfidenceInterval(tt.scaled)
		if low != tt.low || high != tt.high {
			t.Errorf("ConfidenceInterval(%d) = (%d, %d), want (%d, %d)", tt.scaled, low, high, tt.low, tt.high)
		}
	}
}

func TestConfidenceInterval_Bounds(t *testing.T) {
	for raw := 0; raw <= 20; raw++ {
		scaled := ScaleReading(raw)
		low, high := ConfidenceInterval(scaled)
		if low < 5 || high > 495 {
			t.Fatalf("interval (%d, %d) escapes range for %d", low, high, scaled)
		}
		if low > scaled || scaled > high {
			t.Fatalf("interval (%d, %d) does not contain %d", low, high, scaled)
		}
	}
}
