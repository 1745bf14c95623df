package domain

// WMO weather interpretation codes as reported by Open-Meteo compatible models.
const (
	CodeClear         = 0
	CodeMainlyClear   = 1
	CodePartlyCloudy  = 2
	CodeOvercast      = 3
	CodeFog           = 45
	CodeRimeFog       = 48
	CodeDrizzleLight  = 51
	CodeDrizzle       = 53
	CodeDrizzleDense  = 55
	CodeFrzDrizzle    = 56
	CodeFrzDrizzleHvy = 57
	CodeRainLight     = 61
	CodeRain          = 63
	CodeRainHeavy     = 65
	CodeFrzRain       = 66
	CodeFrzRainHeavy  = 67
	CodeSnowLight     = 71
	CodeSnow          = 73
	CodeSnowHeavy     = 75
	CodeSnowGrains    = 77
	CodeShowersLight  = 80
	CodeShowers       = 81
	CodeShowersHeavy  = 82
	CodeSnowShowers   = 85
	CodeSnowShowerHvy = 86
	CodeStorm         = 95
	CodeStormHail     = 96
	CodeStormHailHvy  = 99
)

// IsFog reports whether code is one of the fog codes.
func IsFog(code int) bool {
	return code == CodeFog || code == CodeRimeFog
}

// IsSnow reports whether code describes snowfall of any intensity.
func IsSnow(code int) bool {
	return (code >= CodeSnowLight && code <= CodeSnowGrains) || code == CodeSnowShowers || code == CodeSnowShowerHvy
}

// IsStorm reports whether code is a thunderstorm code.
func IsStorm(code int) bool {
	return code >= CodeStorm
}

// IsRain reports whether code is liquid precipitation: drizzle, rain, freezing
// rain or rain showers.
func IsRain(code int) bool {
	return (code >= CodeDrizzleLight && code <= CodeFrzRainHeavy) ||
		(code >= CodeShowersLight && code <= CodeShowersHeavy)
}

// IsPrecipitation reports whether any precipitation is falling, storms included.
func IsPrecipitation(code int) bool {
	return IsRain(code) || IsSnow(code) || IsStorm(code)
}

// isHeavyRainEquivalent groups the codes that map onto heavy snowfall when
// the snow line drops to the site.
func isHeavyRainEquivalent(code int) bool {
	switch code {
	case CodeDrizzleDense, CodeFrzDrizzleHvy, CodeRainHeavy, CodeFrzRainHeavy, CodeShowersHeavy, CodeStormHailHvy:
		return true
	}
	return false
}

func isModerateRainEquivalent(code int) bool {
	switch code {
	case CodeDrizzle, CodeRain, CodeShowers, CodeStormHail:
		return true
	}
	return false
}
