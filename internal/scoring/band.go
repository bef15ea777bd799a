package scoring

// Band is a proficiency category derived from the scaled reading score.
type Band string

const (
	BandBelowA1 Band = "Below A1"
	BandA1      Band = "A1"
	BandA2      Band = "A2"
	BandB1      Band = "B1"
	BandB2      Band = "B2"
	BandC1      Band = "C1"
)

// BandThreshold is the inclusive lower bound of a band.
type BandThreshold struct {
	Band     Band
	MinScore int
}

// bandThresholds is ordered from the highest band down.
var bandThresholds = []BandThreshold{
	{Band: BandC1, MinScore: 455},
	{Band: BandB2, MinScore: 385},
	{Band: BandB1, MinScore: 275},
	{Band: BandA2, MinScore: 115},
	{Band: BandA1, MinScore: 60},
}

// AllBands returns the bands from lowest to highest.
func AllBands() []Band {
	return []Band{BandBelowA1, BandA1, BandA2, BandB1, BandB2, BandC1}
}

// Thresholds returns a copy of the band thresholds, highest first.
// BandBelowA1 has no threshold; it covers everything under A1.
func Thresholds() []BandThreshold {
	out := make([]BandThreshold, len(bandThresholds))
	copy(out, bandThresholds)
	return out
}

// BandFromScore returns the band for a scaled score. Thresholds are checked
// from the top so higher scores claim the higher band.
func BandFromScore(scaled int) Band {
	for _, t := range bandThresholds {
		if scaled >= t.MinScore {
			return t.Band
		}
	}
	return BandBelowA1
}
