package domain

import (
	"strings"
	"time"
)

// Advisory sources.
const (
	SourceRules      = "rules"
	SourceAIEnhanced = "ai-enhanced"
)

// Alert severities.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityHigh    = "high"
)

const maxTips = 4

// Alert is a threshold-triggered warning shown alongside the summary.
type Alert struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// AdvisoryResult is the user-facing advisory. Text, Tips and Source may later
// be replaced by an enhancement; nothing else changes.
type AdvisoryResult struct {
	Text            string   `json:"text"`
	Tips            []string `json:"tips"`
	Alerts          []Alert  `json:"alerts"`
	ConfidenceLabel string   `json:"confidence_label"`
	ConfidenceLevel string   `json:"confidence_level"`
	Source          string   `json:"source"`
}

// AdvisoryInput is everything the advisory is derived from.
type AdvisoryInput struct {
	Snapshot Snapshot
	Now      time.Time
	// Code is the corrected weather code.
	Code        int
	Reliability *ReliabilityResult
	// AQI is the European air quality index, when known.
	AQI       *float64
	Lang      string
	Unit      Unit
	Localizer Localizer
}

// conditions are the coerced values the advisory rules read.
type conditions struct {
	hour        int
	isDay       bool
	temp        float64
	apparent    float64
	humidity    float64
	wind        float64
	gusts       float64
	cloud       float64
	nowcastPeak float64
	rainProb    float64
	cape        float64
	todayMin    float64
	precipSum   float64
	uv          float64
	raining     bool
}

func readConditions(in AdvisoryInput) conditions {
	s := in.Snapshot
	local := s.LocalTime(in.Now)
	h := s.HourIndex(in.Now)
	d := s.DayIndex(in.Now)
	hour := local.Hour()

	temp := SafeNumber(s.Current.Temperature, 15)
	wind := SafeNumber(s.Current.WindSpeed, 0)
	peak := s.NowcastWindow(in.Now).Peak()
	prob := SafeNumber(s.Hourly.PrecipitationProbability.At(h),
		SafeNumber(s.Daily.PrecipitationProbabilityMax.At(d), 0))

	return conditions{
		hour:        hour,
		isDay:       SafeNumber(s.Current.IsDay, boolToFloat(hour >= 6 && hour < 20)) >= 1,
		temp:        temp,
		apparent:    SafeNumber(s.Current.ApparentTemperature, temp),
		humidity:    SafeNumber(s.Current.RelativeHumidity, 50),
		wind:        wind,
		gusts:       SafeNumber(s.Current.WindGusts, wind),
		cloud:       SafeNumber(s.Current.CloudCover, 0),
		nowcastPeak: peak,
		rainProb:    prob,
		cape:        SafeNumber(s.Hourly.CAPE.At(h), 0),
		todayMin:    SafeNumber(s.Daily.TemperatureMin.At(d), temp),
		precipSum:   SafeNumber(s.Daily.PrecipitationSum.At(d), 0),
		uv:          SafeNumber(s.Daily.UVIndexMax.At(d), 0),
		raining:     IsPrecipitation(in.Code),
	}
}

// GenerateAdvisory builds the rules-based advisory. It is a pure function of
// its input.
func GenerateAdvisory(in AdvisoryInput) AdvisoryResult {
	loc := in.Localizer
	if loc == nil {
		loc = DefaultCatalog
	}
	lang := loc.Resolve(in.Lang)
	c := readConditions(in)
	a := advisory{loc: loc, lang: lang, unit: in.Unit, code: in.Code, c: c}

	parts := []string{
		a.greeting(),
		a.sky(),
		a.wind(),
		a.thermal(),
		a.heatCaveat(),
		a.rainOutlook(),
	}
	text := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			text = append(text, p)
		}
	}

	label, level := a.confidence(in.Reliability)
	return AdvisoryResult{
		Text:            strings.Join(text, " "),
		Tips:            a.tips(),
		Alerts:          a.alerts(in.AQI),
		ConfidenceLabel: label,
		ConfidenceLevel: level,
		Source:          SourceRules,
	}
}

type advisory struct {
	loc  Localizer
	lang string
	unit Unit
	code int
	c    conditions
}

func (a advisory) phrase(key string, args ...any) string {
	return a.loc.Phrase(a.lang, key, args...)
}

func (a advisory) greeting() string {
	switch h := a.c.hour; {
	case h >= 5 && h < 12:
		return a.phrase("greeting.morning")
	case h >= 12 && h < 18:
		return a.phrase("greeting.afternoon")
	case h >= 18 && h < 22:
		return a.phrase("greeting.evening")
	default:
		return a.phrase("greeting.night")
	}
}

func (a advisory) sky() string {
	code := a.code
	if !IsPrecipitation(code) && !IsFog(code) && a.c.nowcastPeak > traceThreshold {
		return a.phrase("sky.rain_incoming")
	}
	switch {
	case code == CodeClear:
		if !a.c.isDay {
			return a.phrase("sky.clear_night")
		}
		return a.phrase("sky.clear")
	case code == CodeMainlyClear:
		return a.phrase("sky.mainly_clear")
	case code == CodePartlyCloudy:
		return a.phrase("sky.partly_cloudy")
	case code == CodeOvercast:
		return a.phrase("sky.overcast")
	case IsFog(code):
		return a.phrase("sky.fog")
	case code == CodeFrzDrizzle || code == CodeFrzDrizzleHvy || code == CodeFrzRain || code == CodeFrzRainHeavy:
		return a.phrase("sky.freezing")
	case code >= CodeDrizzleLight && code <= CodeDrizzleDense:
		return a.phrase("sky.drizzle")
	case code == CodeRainHeavy:
		return a.phrase("sky.heavy_rain")
	case code == CodeRainLight || code == CodeRain:
		return a.phrase("sky.rain")
	case IsSnow(code):
		return a.phrase("sky.snow")
	case code >= CodeShowersLight && code <= CodeShowersHeavy:
		return a.phrase("sky.showers")
	case IsStorm(code):
		return a.phrase("sky.storm")
	default:
		return a.loc.CodeLabel(a.lang, code) + "."
	}
}

func (a advisory) wind() string {
	switch {
	case a.c.wind > 50:
		return a.phrase("wind.strong", a.c.wind)
	case a.c.wind > 30:
		return a.phrase("wind.moderate", a.c.wind)
	default:
		return ""
	}
}

func (a advisory) thermal() string {
	t := a.c.apparent
	shown := FormatTemperature(t, a.unit)

	// Mild afternoon after a cold night: warn that the evening will cool fast.
	if a.c.hour >= 16 && a.c.hour < 19 && a.c.todayMin < 8 && t >= 14 && t < 20 {
		return a.phrase("thermal.evening_chill", shown)
	}

	switch {
	case t < 0:
		return a.phrase("thermal.freezing", shown)
	case t < 8:
		return a.phrase("thermal.cold", shown)
	case t < 14:
		return a.phrase("thermal.cool", shown)
	case t < 20:
		return a.phrase("thermal.mild", shown)
	case t < 26:
		return a.phrase("thermal.pleasant", shown)
	case t < 32:
		return a.phrase("thermal.warm", shown)
	default:
		return a.phrase("thermal.hot", shown)
	}
}

func (a advisory) heatCaveat() string {
	if a.c.temp >= 27 && a.c.humidity >= 60 {
		return a.phrase("heat.caveat")
	}
	return ""
}

func (a advisory) rainOutlook() string {
	c := a.c
	switch {
	case c.nowcastPeak >= 0.2 && !c.raining:
		return a.phrase("outlook.imminent")
	case c.raining:
		return ""
	case c.rainProb >= 60:
		return a.phrase("outlook.likely", c.rainProb)
	case c.rainProb >= 30:
		return a.phrase("outlook.possible", c.rainProb)
	case c.cloud >= 70:
		return a.phrase("outlook.grey_dry")
	case c.humidity >= 85 || c.cloud >= 40:
		return a.phrase("outlook.unlikely")
	default:
		return ""
	}
}

func (a advisory) alerts(aqi *float64) []Alert {
	c := a.c
	alerts := make([]Alert, 0, 4)
	add := func(kind, severity, key string, args ...any) {
		alerts = append(alerts, Alert{Type: kind, Severity: severity, Message: a.phrase(key, args...)})
	}

	switch {
	case IsStorm(a.code):
		add("storm", SeverityHigh, "alert.storm")
	case c.cape > capeSevere:
		add("storm", SeverityWarning, "alert.storm_risk")
	case c.cape > capeConvective:
		add("storm", SeverityInfo, "alert.storm_risk")
	}

	if IsSnow(a.code) {
		severity := SeverityWarning
		if a.code == CodeSnowHeavy || a.code == CodeSnowShowerHvy {
			severity = SeverityHigh
		}
		add("snow", severity, "alert.snow")
	}

	switch {
	case c.precipSum >= 60:
		add("heavy_rain", SeverityHigh, "alert.heavy_rain", c.precipSum)
	case c.precipSum >= 30 || a.code == CodeRainHeavy || a.code == CodeShowersHeavy:
		add("heavy_rain", SeverityWarning, "alert.heavy_rain", c.precipSum)
	}

	switch {
	case c.gusts >= 90 || c.wind >= 60:
		add("wind", SeverityHigh, "alert.wind_extreme", max(c.gusts, c.wind))
	case c.gusts >= 60 || c.wind >= 40:
		add("wind", SeverityWarning, "alert.wind_strong", max(c.gusts, c.wind))
	}

	switch {
	case c.apparent <= -15:
		add("cold", SeverityHigh, "alert.cold", FormatTemperature(c.apparent, a.unit))
	case c.apparent <= -5:
		add("cold", SeverityWarning, "alert.cold", FormatTemperature(c.apparent, a.unit))
	}

	switch {
	case c.apparent >= 40:
		add("heat", SeverityHigh, "alert.heat_extreme", FormatTemperature(c.apparent, a.unit))
	case c.apparent >= 35:
		add("heat", SeverityWarning, "alert.heat", FormatTemperature(c.apparent, a.unit))
	}

	switch {
	case c.uv >= 11:
		add("uv", SeverityHigh, "alert.uv", c.uv)
	case c.uv >= 8:
		add("uv", SeverityWarning, "alert.uv", c.uv)
	}

	if aqi != nil {
		v := SafeFloat(*aqi, 0)
		switch {
		case v > 80:
			add("air_quality", SeverityHigh, "alert.air_quality", v)
		case v > 60:
			add("air_quality", SeverityWarning, "alert.air_quality", v)
		}
	}
	return alerts
}

func (a advisory) tips() []string {
	c := a.c
	var keys []string
	switch {
	case c.apparent < 10:
		keys = append(keys, "tip.coat")
	case c.apparent <= 16:
		keys = append(keys, "tip.layers")
	}
	if (c.raining && !IsSnow(a.code)) || c.rainProb >= 50 || c.nowcastPeak >= 0.2 {
		keys = append(keys, "tip.umbrella")
	}
	if c.uv >= 6 {
		keys = append(keys, "tip.sunscreen")
	}
	if c.apparent >= 30 {
		keys = append(keys, "tip.hydration")
	}
	if c.wind >= 30 {
		keys = append(keys, "tip.windbreaker")
	}
	if len(keys) == 0 {
		keys = append(keys, "tip.calm")
	}

	seen := make(map[string]struct{}, len(keys))
	tips := make([]string, 0, maxTips)
	for _, k := range keys {
		tip := a.phrase(k)
		if _, dup := seen[tip]; dup {
			continue
		}
		seen[tip] = struct{}{}
		tips = append(tips, tip)
		if len(tips) == maxTips {
			break
		}
	}
	return tips
}

func (a advisory) confidence(r *ReliabilityResult) (label, level string) {
	if r == nil {
		return a.phrase("confidence.unknown"), ReliabilityMedium
	}
	switch r.Level {
	case ReliabilityHigh:
		return a.phrase("confidence.high"), r.Level
	case ReliabilityLow:
		if r.Type == DivergenceRain {
			return a.phrase("confidence.low_rain", r.Value), r.Level
		}
		return a.phrase("confidence.low_temp", r.Value), r.Level
	default:
		return a.phrase("confidence.medium"), ReliabilityMedium
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
