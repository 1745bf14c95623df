package domain

import (
	"fmt"
	"math"
)

// Magnus–Tetens coefficients over water, valid roughly from -45°C to 60°C.
const (
	magnusA = 17.27
	magnusB = 237.7
)

// Unit selects how temperatures are rendered. Inputs are always metric.
type Unit string

const (
	UnitCelsius    Unit = "celsius"
	UnitFahrenheit Unit = "fahrenheit"
)

// ParseUnit maps a free-form unit string onto a Unit, defaulting to Celsius.
func ParseUnit(s string) Unit {
	switch s {
	case "fahrenheit", "F", "f", "imperial":
		return UnitFahrenheit
	default:
		return UnitCelsius
	}
}

// SafeNumber returns *v, or fallback when v is nil, NaN or infinite.
func SafeNumber(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return SafeFloat(*v, fallback)
}

// SafeFloat returns v, or fallback when v is NaN or infinite.
func SafeFloat(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// DewPoint approximates the dew point in °C from air temperature (°C) and
// relative humidity (%).
func DewPoint(tempC, humidity float64) float64 {
	rh := clamp(humidity, 1, 100)
	gamma := math.Log(rh/100) + (magnusA*tempC)/(magnusB+tempC)
	return (magnusB * gamma) / (magnusA - gamma)
}

// EffectiveCloudCover weights the cloud layers by how much each hides the sky
// from the ground: low 1.0, mid 0.6, high 0.3. Result is a percentage.
func EffectiveCloudCover(low, mid, high float64) float64 {
	return clamp(low+0.6*mid+0.3*high, 0, 100)
}

// SnowLinePossible reports whether precipitation reaching the site is likely
// to fall as snow. freezeLevel and elevation are metres above sea level and
// may be unknown.
func SnowLinePossible(tempC float64, freezeLevel, elevation *float64) bool {
	if tempC <= 1 {
		return true
	}
	if tempC > 4 || freezeLevel == nil || elevation == nil {
		return false
	}
	fl := SafeNumber(freezeLevel, math.Inf(1))
	el := SafeNumber(elevation, 0)
	return fl-el <= 300
}

// CelsiusToFahrenheit converts a temperature.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// FormatTemperature renders a metric temperature in the display unit.
func FormatTemperature(c float64, unit Unit) string {
	// +0 folds negative zero so -0.3°C renders as "0°C".
	if unit == UnitFahrenheit {
		return fmt.Sprintf("%.0f°F", math.Round(CelsiusToFahrenheit(c))+0)
	}
	return fmt.Sprintf("%.0f°C", math.Round(c)+0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
