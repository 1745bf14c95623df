package domain

import (
	"math"
	"time"
)

// DefaultLocalSource is the high-resolution regional model whose nowcast is
// trusted enough to override a dry code.
const DefaultLocalSource = "italia_meteo_arpae_icon_2i"

const (
	traceThreshold     = 0.1
	capeConvective     = 1200
	capeSevere         = 2000
	fogSpreadC         = 1.2
	fogHumidity        = 96
	hazeHumidity       = 92
	fogVisibilityM     = 1000
	defaultVisibilityM = 10000
)

// Signals are the raw inputs of the code corrector. Nil values are unknown.
type Signals struct {
	Code        int
	Source      string
	Temperature *float64
	Humidity    *float64
	CloudCover  *float64
	CloudLow    *float64
	CloudMid    *float64
	CloudHigh   *float64
	Visibility  *float64
	// Nowcast is the next hour of 15-minute precipitation totals.
	Nowcast Series
	// RainProbability is carried for callers but no rule reads it yet.
	RainProbability *float64
	FreezingLevel   *float64
	Elevation       *float64
	CAPE            *float64
}

// SignalsAt extracts corrector inputs from a snapshot at now.
func SignalsAt(s Snapshot, now time.Time) Signals {
	h := s.HourIndex(now)
	return Signals{
		Code:            roundCode(SafeNumber(s.Current.WeatherCode, 0)),
		Source:          s.Current.Source,
		Temperature:     s.Current.Temperature,
		Humidity:        s.Current.RelativeHumidity,
		CloudCover:      s.Current.CloudCover,
		CloudLow:        s.Current.CloudCoverLow,
		CloudMid:        s.Current.CloudCoverMid,
		CloudHigh:       s.Current.CloudCoverHigh,
		Visibility:      s.Current.Visibility,
		Nowcast:         s.NowcastWindow(now),
		RainProbability: s.Hourly.PrecipitationProbability.At(h),
		FreezingLevel:   s.Hourly.FreezingLevelHeight.At(h),
		Elevation:       s.Elevation,
		CAPE:            s.Hourly.CAPE.At(h),
	}
}

// derived holds the coerced quantities every rule reads.
type derived struct {
	source       string
	tempC        float64
	humidity     float64
	cloudCover   float64
	dewSpread    float64
	nowcastPeak  float64
	cape         float64
	visibility   float64
	snowPossible bool
}

func derive(s Signals) derived {
	temp := SafeNumber(s.Temperature, 15)
	rh := SafeNumber(s.Humidity, 50)

	ecc := SafeNumber(s.CloudCover, 0)
	if s.CloudLow != nil || s.CloudMid != nil || s.CloudHigh != nil {
		ecc = EffectiveCloudCover(SafeNumber(s.CloudLow, 0), SafeNumber(s.CloudMid, 0), SafeNumber(s.CloudHigh, 0))
	}

	return derived{
		source:       s.Source,
		tempC:        temp,
		humidity:     rh,
		cloudCover:   ecc,
		dewSpread:    temp - DewPoint(temp, rh),
		nowcastPeak:  s.Nowcast.Peak(),
		cape:         SafeNumber(s.CAPE, 0),
		visibility:   SafeNumber(s.Visibility, defaultVisibilityM),
		snowPossible: SnowLinePossible(temp, s.FreezingLevel, s.Elevation),
	}
}

// CorrectionRule rewrites a weather code from derived signals. Rules are pure.
type CorrectionRule struct {
	Name  string
	Apply func(code int, d derived) int
}

// Corrector applies its rules in order; later rules see earlier results.
type Corrector struct {
	rules []CorrectionRule
}

// NewCorrector returns the standard rule chain. localSource names the model
// whose nowcast may force rain on a dry code.
func NewCorrector(localSource string) Corrector {
	return Corrector{
		rules: []CorrectionRule{
			{Name: "cloud_reclassification", Apply: reclassifyClouds},
			{Name: "nowcast_override", Apply: nowcastOverride(localSource)},
			{Name: "dew_point_fog", Apply: dewPointFog},
			{Name: "convective_override", Apply: convectiveOverride},
			{Name: "snow_line", Apply: snowLine},
			{Name: "visibility_fog", Apply: visibilityFog},
			{Name: "intensity_leveling", Apply: levelIntensity},
		},
	}
}

// Rules returns the rule names in application order.
func (c Corrector) Rules() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.Name
	}
	return names
}

// Correct returns the effective weather code for s.
func (c Corrector) Correct(s Signals) int {
	code, _ := c.Trace(s)
	return code
}

// Trace returns the effective code plus the names of the rules that changed it.
func (c Corrector) Trace(s Signals) (int, []string) {
	d := derive(s)
	code := s.Code
	var fired []string
	for _, r := range c.rules {
		next := r.Apply(code, d)
		if next != code {
			fired = append(fired, r.Name)
		}
		code = next
	}
	return code, fired
}

// EffectiveWeatherCode corrects s with the default local model.
func EffectiveWeatherCode(s Signals) int {
	return NewCorrector(DefaultLocalSource).Correct(s)
}

func reclassifyClouds(code int, d derived) int {
	if code > CodeOvercast {
		return code
	}
	switch {
	case d.cloudCover > 85:
		return CodeOvercast
	case d.cloudCover > 45:
		return CodePartlyCloudy
	case d.cloudCover > 15:
		return CodeMainlyClear
	default:
		return CodeClear
	}
}

func nowcastOverride(localSource string) func(int, derived) int {
	return func(code int, d derived) int {
		if localSource == "" || d.source != localSource {
			return code
		}
		if d.nowcastPeak > traceThreshold && code < CodeDrizzleLight {
			return CodeRainLight
		}
		return code
	}
}

func dewPointFog(code int, d derived) int {
	if code >= CodeFog {
		return code
	}
	if d.dewSpread < fogSpreadC && d.humidity > fogHumidity && d.cloudCover > 50 {
		return CodeFog
	}
	if code == CodeClear && d.humidity > hazeHumidity {
		return CodeMainlyClear
	}
	return code
}

func convectiveOverride(code int, d derived) int {
	if d.cape <= capeConvective || d.cloudCover <= 60 {
		return code
	}
	if IsSnow(code) || IsStorm(code) {
		return code
	}
	if IsRain(code) || d.nowcastPeak > traceThreshold {
		return CodeStorm
	}
	if d.cape > capeSevere {
		return CodePartlyCloudy
	}
	return code
}

func snowLine(code int, d derived) int {
	if !d.snowPossible || IsSnow(code) {
		return code
	}
	active := IsRain(code) || IsStorm(code)
	if !active && d.nowcastPeak <= 0 {
		return code
	}
	switch {
	case isHeavyRainEquivalent(code) || d.nowcastPeak > 1.5:
		return CodeSnowHeavy
	case isModerateRainEquivalent(code) || d.nowcastPeak >= 0.5:
		return CodeSnow
	default:
		return CodeSnowLight
	}
}

func visibilityFog(code int, d derived) int {
	if !IsFog(code) && d.visibility >= fogVisibilityM {
		return code
	}
	if d.nowcastPeak >= traceThreshold {
		return code
	}
	if code == CodeRimeFog {
		return code
	}
	return CodeFog
}

// levelIntensity leaves storm and snow codes alone so the snow line holds.
func levelIntensity(code int, d derived) int {
	if d.nowcastPeak <= traceThreshold || IsStorm(code) || IsSnow(code) {
		return code
	}
	switch {
	case d.nowcastPeak > 4.0:
		return CodeRainHeavy
	case d.nowcastPeak >= 1.0:
		return CodeRain
	default:
		return CodeRainLight
	}
}

// roundCode guards float-encoded codes such as 2.9999 from truncation.
func roundCode(v float64) int {
	return int(math.Round(v))
}
