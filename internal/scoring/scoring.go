package scoring

// Scale maps a raw correct count onto the scaled reading range.
type Scale struct {
	// ItemCount is the number of items in the assessment.
	ItemCount int

	// MinScore and MaxScore bound the scaled range (inclusive).
	MinScore int
	MaxScore int

	// StepSize is the scaled increment. MaxScore-MinScore must be a multiple of it.
	StepSize int

	// Margin is the half-width of the provisional confidence interval.
	Margin int
}

// DefaultScale returns the 20-item reading scale: 5..495 in steps of 5,
// with a ±60 provisional interval.
func DefaultScale() Scale {
	return Scale{
		ItemCount: 20,
		MinScore:  5,
		MaxScore:  495,
		StepSize:  5,
		Margin:    60,
	}
}

// MaxSteps returns the number of StepSize increments between MinScore and MaxScore.
func (s Scale) MaxSteps() int {
	return (s.MaxScore - s.MinScore) / s.StepSize
}

// Scaled converts a raw correct count into a scaled score.
//
// The step count is rounded up, not to nearest: any partial progress toward
// the next increment claims it, so a non-zero raw score never maps to MinScore.
func (s Scale) Scaled(rawCorrect int) int {
	raw := clamp(0, s.ItemCount, rawCorrect)
	if s.ItemCount <= 0 {
		return s.MinScore
	}
	steps := ceilDiv(raw*s.MaxSteps(), s.ItemCount)
	return clamp(s.MinScore, s.MaxScore, s.MinScore+steps*s.StepSize)
}

// ConfidenceInterval returns scaled ± Margin with each bound clamped to the
// scaled range independently, so the interval is asymmetric near the edges.
func (s Scale) ConfidenceInterval(scaled int) (low, high int) {
	return clamp(s.MinScore, s.MaxScore, scaled-s.Margin),
		clamp(s.MinScore, s.MaxScore, scaled+s.Margin)
}

var defaultScale = DefaultScale()

// ScaleReading maps a raw correct count on the default 20-item scale.
func ScaleReading(rawCorrect int) int {
	return defaultScale.Scaled(rawCorrect)
}

// ConfidenceInterval returns the provisional interval on the default scale.
func ConfidenceInterval(scaled int) (low, high int) {
	return defaultScale.ConfidenceInterval(scaled)
}

func clamp(lo, hi, v int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
