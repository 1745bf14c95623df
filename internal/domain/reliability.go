package domain

import (
	"fmt"
	"math"
)

// Confidence tiers.
const (
	ReliabilityLow    = "low"
	ReliabilityMedium = "medium"
	ReliabilityHigh   = "high"
)

// Divergence classifications.
const (
	DivergenceTemp    = "temp"
	DivergenceRain    = "rain"
	DivergenceGeneral = "general"
	DivergenceOK      = "ok"
)

// ReliabilityResult summarizes how much the comparison models disagree.
type ReliabilityResult struct {
	Level string  `json:"level"`
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// ReliabilityVariant selects the precipitation metric compared across models.
type ReliabilityVariant struct {
	Name  string
	Field string
	// Spread at or above which confidence drops to low or medium.
	LowAt        float64
	MediumAt     float64
	TempLowAt    float64
	TempMediumAt float64
}

var (
	// VariantProbabilitySpread compares daily maximum precipitation probability.
	VariantProbabilitySpread = ReliabilityVariant{
		Name: "probability", Field: "precipitation_probability_max",
		LowAt: 40, MediumAt: 25, TempLowAt: 4, TempMediumAt: 2.5,
	}
	// VariantPrecipitationSum compares daily precipitation totals in mm.
	VariantPrecipitationSum = ReliabilityVariant{
		Name: "sum", Field: "precipitation_sum",
		LowAt: 10, MediumAt: 5, TempLowAt: 4, TempMediumAt: 2.5,
	}
)

// ParseReliabilityVariant maps a configuration name onto a variant.
func ParseReliabilityVariant(name string) (ReliabilityVariant, error) {
	switch name {
	case "", VariantProbabilitySpread.Name:
		return VariantProbabilitySpread, nil
	case VariantPrecipitationSum.Name:
		return VariantPrecipitationSum, nil
	default:
		return ReliabilityVariant{}, fmt.Errorf("unknown reliability variant %q", name)
	}
}

var neutralReliability = ReliabilityResult{Level: ReliabilityMedium, Type: DivergenceGeneral}

// ScoreReliability grades agreement between models on day. A missing model
// series or an unknown maximum temperature yields a neutral medium result.
func ScoreReliability(bundle ModelBundle, models []ModelID, day int, variant ReliabilityVariant) ReliabilityResult {
	if len(models) == 0 {
		return neutralReliability
	}

	temps := make([]float64, 0, len(models))
	precip := make([]float64, 0, len(models))
	for _, id := range models {
		series := bundle.Model(id)
		if series == nil || len(series.Daily) == 0 {
			return neutralReliability
		}
		t := SafeNumber(series.DailyValue("temperature_2m_max", day), math.NaN())
		if math.IsNaN(t) {
			return neutralReliability
		}
		temps = append(temps, t)
		precip = append(precip, SafeNumber(series.DailyValue(variant.Field, day), 0))
	}

	tempSpread := spread(temps)
	precipSpread := spread(precip)

	switch {
	case tempSpread >= variant.TempLowAt:
		return ReliabilityResult{Level: ReliabilityLow, Type: DivergenceTemp, Value: round1(tempSpread)}
	case precipSpread >= variant.LowAt:
		return ReliabilityResult{Level: ReliabilityLow, Type: DivergenceRain, Value: round1(precipSpread)}
	case tempSpread >= variant.TempMediumAt:
		return ReliabilityResult{Level: ReliabilityMedium, Type: DivergenceGeneral, Value: round1(tempSpread)}
	case precipSpread >= variant.MediumAt:
		return ReliabilityResult{Level: ReliabilityMedium, Type: DivergenceGeneral, Value: round1(precipSpread)}
	default:
		return ReliabilityResult{Level: ReliabilityHigh, Type: DivergenceOK, Value: round1(tempSpread)}
	}
}

func spread(values []float64) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if len(values) == 0 {
		return 0
	}
	return hi - lo
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
