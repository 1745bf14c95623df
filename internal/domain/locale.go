package domain

import (
	"fmt"

	"golang.org/x/text/language"
)

// Localizer supplies advisory phrases and weather code labels per language.
type Localizer interface {
	// Phrase formats the phrase for key with args, falling back to English
	// and then to the key itself.
	Phrase(lang, key string, args ...any) string
	CodeLabel(lang string, code int) string
	// Resolve maps a requested language onto a supported one.
	Resolve(lang string) string
}

// Catalog is the built-in English and Italian phrase table.
type Catalog struct {
	langs   []string
	matcher language.Matcher
	phrases map[string]map[string]string
	labels  map[string]map[int]string
}

// DefaultCatalog is shared by callers that do not inject a Localizer.
var DefaultCatalog = NewCatalog()

// NewCatalog builds the built-in catalog. English comes first and is the
// fallback for unmatched languages.
func NewCatalog() *Catalog {
	return &Catalog{
		langs:   []string{"en", "it"},
		matcher: language.NewMatcher([]language.Tag{language.English, language.Italian}),
		phrases: map[string]map[string]string{"en": phrasesEN, "it": phrasesIT},
		labels:  map[string]map[int]string{"en": labelsEN, "it": labelsIT},
	}
}

func (c *Catalog) Resolve(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return c.langs[0]
	}
	_, index, confidence := c.matcher.Match(tag)
	if confidence == language.No {
		return c.langs[0]
	}
	return c.langs[index]
}

func (c *Catalog) Phrase(lang, key string, args ...any) string {
	text, ok := c.phrases[c.Resolve(lang)][key]
	if !ok {
		text, ok = c.phrases[c.langs[0]][key]
	}
	if !ok {
		return key
	}
	if len(args) == 0 {
		return text
	}
	return fmt.Sprintf(text, args...)
}

func (c *Catalog) CodeLabel(lang string, code int) string {
	if label, ok := c.labels[c.Resolve(lang)][code]; ok {
		return label
	}
	if label, ok := c.labels[c.langs[0]][code]; ok {
		return label
	}
	return fmt.Sprintf("code %d", code)
}

var phrasesEN = map[string]string{
	"greeting.morning":   "Good morning.",
	"greeting.afternoon": "Good afternoon.",
	"greeting.evening":   "Good evening.",
	"greeting.night":     "Good night.",

	"sky.clear":         "The sky is clear and sunny.",
	"sky.clear_night":   "The sky is clear and starry.",
	"sky.mainly_clear":  "Mostly clear skies with a few clouds.",
	"sky.partly_cloudy": "Clouds and sunny spells alternate.",
	"sky.overcast":      "The sky is overcast.",
	"sky.fog":           "Fog is limiting visibility.",
	"sky.drizzle":       "Light drizzle is falling.",
	"sky.freezing":      "Freezing rain is falling, surfaces may be icy.",
	"sky.rain":          "It is raining.",
	"sky.heavy_rain":    "Heavy rain is falling.",
	"sky.showers":       "Rain showers are passing through.",
	"sky.snow":          "It is snowing.",
	"sky.storm":         "A thunderstorm is in progress.",
	"sky.rain_incoming": "Rain is about to start.",

	"wind.moderate": "A moderate wind is blowing at %.0f km/h.",
	"wind.strong":   "A strong wind is blowing at %.0f km/h.",

	"thermal.freezing":      "It feels freezing (%s).",
	"thermal.cold":          "It feels cold (%s).",
	"thermal.cool":          "It feels cool (%s).",
	"thermal.mild":          "It feels mild (%s).",
	"thermal.pleasant":      "The temperature is pleasant (%s).",
	"thermal.warm":          "It feels warm (%s).",
	"thermal.hot":           "It feels hot (%s).",
	"thermal.evening_chill": "It is mild now (%s) but the evening will turn chilly.",

	"heat.caveat": "Humidity makes the heat feel heavier.",

	"outlook.imminent": "Rain is expected within the hour.",
	"outlook.likely":   "Rain is likely later (%.0f%%).",
	"outlook.possible": "Some rain is possible later (%.0f%%).",
	"outlook.grey_dry": "Despite the grey sky, rain is very unlikely.",
	"outlook.unlikely": "Rain is unlikely.",

	"alert.storm":         "Thunderstorm in progress.",
	"alert.storm_risk":    "Atmosphere unstable: thunderstorms may develop.",
	"alert.snow":          "Snowfall in progress.",
	"alert.heavy_rain":    "Heavy rain expected today (%.0f mm).",
	"alert.wind_strong":   "Strong wind, gusts up to %.0f km/h.",
	"alert.wind_extreme":  "Extreme wind, gusts up to %.0f km/h.",
	"alert.cold":          "Extreme cold (%s).",
	"alert.heat":          "High heat (%s).",
	"alert.heat_extreme":  "Extreme heat (%s).",
	"alert.uv":            "High UV index (%.0f).",
	"alert.air_quality":   "Poor air quality (AQI %.0f).",
	"tip.coat":            "Wear a warm coat.",
	"tip.layers":          "Dress in layers.",
	"tip.umbrella":        "Take an umbrella.",
	"tip.sunscreen":       "Use sunscreen.",
	"tip.hydration":       "Drink plenty of water.",
	"tip.windbreaker":     "A windbreaker will help.",
	"tip.calm":            "Nothing special to watch out for, enjoy your day.",
	"confidence.high":     "Models agree: reliable forecast.",
	"confidence.medium":   "Models partly disagree: fairly reliable forecast.",
	"confidence.low_temp": "Models disagree on temperatures (%.1f° spread).",
	"confidence.low_rain": "Models disagree on rain (%.0f spread).",
	"confidence.unknown":  "Forecast reliability not available.",
}

var phrasesIT = map[string]string{
	"greeting.morning":   "Buongiorno.",
	"greeting.afternoon": "Buon pomeriggio.",
	"greeting.evening":   "Buonasera.",
	"greeting.night":     "Buonanotte.",

	"sky.clear":         "Il cielo è sereno e soleggiato.",
	"sky.clear_night":   "Il cielo è sereno e stellato.",
	"sky.mainly_clear":  "Cielo per lo più sereno con qualche nuvola.",
	"sky.partly_cloudy": "Nuvole e schiarite si alternano.",
	"sky.overcast":      "Il cielo è coperto.",
	"sky.fog":           "La nebbia riduce la visibilità.",
	"sky.drizzle":       "Cade una pioggerella leggera.",
	"sky.freezing":      "Pioggia gelata, le superfici possono essere ghiacciate.",
	"sky.rain":          "Sta piovendo.",
	"sky.heavy_rain":    "Piove forte.",
	"sky.showers":       "Passano rovesci di pioggia.",
	"sky.snow":          "Sta nevicando.",
	"sky.storm":         "È in corso un temporale.",
	"sky.rain_incoming": "Sta per iniziare a piovere.",

	"wind.moderate": "Soffia un vento moderato a %.0f km/h.",
	"wind.strong":   "Soffia un vento forte a %.0f km/h.",

	"thermal.freezing":      "Si percepisce un freddo gelido (%s).",
	"thermal.cold":          "Fa freddo (%s).",
	"thermal.cool":          "Fa fresco (%s).",
	"thermal.mild":          "Il clima è mite (%s).",
	"thermal.pleasant":      "La temperatura è piacevole (%s).",
	"thermal.warm":          "Fa caldo (%s).",
	"thermal.hot":           "Fa molto caldo (%s).",
	"thermal.evening_chill": "Ora è mite (%s) ma la sera farà fresco.",

	"heat.caveat": "L'umidità rende il caldo più afoso.",

	"outlook.imminent": "Pioggia attesa entro l'ora.",
	"outlook.likely":   "Pioggia probabile più tardi (%.0f%%).",
	"outlook.possible": "Possibile qualche pioggia più tardi (%.0f%%).",
	"outlook.grey_dry": "Nonostante il cielo grigio, la pioggia è molto improbabile.",
	"outlook.unlikely": "La pioggia è improbabile.",

	"alert.storm":         "Temporale in corso.",
	"alert.storm_risk":    "Atmosfera instabile: possibili temporali.",
	"alert.snow":          "Nevicata in corso.",
	"alert.heavy_rain":    "Piogge intense previste oggi (%.0f mm).",
	"alert.wind_strong":   "Vento forte, raffiche fino a %.0f km/h.",
	"alert.wind_extreme":  "Vento estremo, raffiche fino a %.0f km/h.",
	"alert.cold":          "Freddo estremo (%s).",
	"alert.heat":          "Caldo intenso (%s).",
	"alert.heat_extreme":  "Caldo estremo (%s).",
	"alert.uv":            "Indice UV elevato (%.0f).",
	"alert.air_quality":   "Qualità dell'aria scarsa (AQI %.0f).",
	"tip.coat":            "Indossa un cappotto pesante.",
	"tip.layers":          "Vestiti a strati.",
	"tip.umbrella":        "Porta l'ombrello.",
	"tip.sunscreen":       "Usa la crema solare.",
	"tip.hydration":       "Bevi molta acqua.",
	"tip.windbreaker":     "Una giacca a vento sarà utile.",
	"tip.calm":            "Nulla di particolare da segnalare, buona giornata.",
	"confidence.high":     "I modelli concordano: previsione affidabile.",
	"confidence.medium":   "I modelli divergono in parte: previsione abbastanza affidabile.",
	"confidence.low_temp": "I modelli divergono sulle temperature (scarto %.1f°).",
	"confidence.low_rain": "I modelli divergono sulla pioggia (scarto %.0f).",
	"confidence.unknown":  "Affidabilità della previsione non disponibile.",
}

var labelsEN = map[int]string{
	CodeClear:         "Clear sky",
	CodeMainlyClear:   "Mainly clear",
	CodePartlyCloudy:  "Partly cloudy",
	CodeOvercast:      "Overcast",
	CodeFog:           "Fog",
	CodeRimeFog:       "Depositing rime fog",
	CodeDrizzleLight:  "Light drizzle",
	CodeDrizzle:       "Drizzle",
	CodeDrizzleDense:  "Dense drizzle",
	CodeFrzDrizzle:    "Freezing drizzle",
	CodeFrzDrizzleHvy: "Dense freezing drizzle",
	CodeRainLight:     "Light rain",
	CodeRain:          "Rain",
	CodeRainHeavy:     "Heavy rain",
	CodeFrzRain:       "Freezing rain",
	CodeFrzRainHeavy:  "Heavy freezing rain",
	CodeSnowLight:     "Light snow",
	CodeSnow:          "Snow",
	CodeSnowHeavy:     "Heavy snow",
	CodeSnowGrains:    "Snow grains",
	CodeShowersLight:  "Light rain showers",
	CodeShowers:       "Rain showers",
	CodeShowersHeavy:  "Violent rain showers",
	CodeSnowShowers:   "Snow showers",
	CodeSnowShowerHvy: "Heavy snow showers",
	CodeStorm:         "Thunderstorm",
	CodeStormHail:     "Thunderstorm with hail",
	CodeStormHailHvy:  "Thunderstorm with heavy hail",
}

var labelsIT = map[int]string{
	CodeClear:         "Sereno",
	CodeMainlyClear:   "Poco nuvoloso",
	CodePartlyCloudy:  "Parzialmente nuvoloso",
	CodeOvercast:      "Coperto",
	CodeFog:           "Nebbia",
	CodeRimeFog:       "Nebbia con brina",
	CodeDrizzleLight:  "Pioggerella leggera",
	CodeDrizzle:       "Pioggerella",
	CodeDrizzleDense:  "Pioggerella intensa",
	CodeFrzDrizzle:    "Pioggerella gelata",
	CodeFrzDrizzleHvy: "Pioggerella gelata intensa",
	CodeRainLight:     "Pioggia debole",
	CodeRain:          "Pioggia",
	CodeRainHeavy:     "Pioggia forte",
	CodeFrzRain:       "Pioggia gelata",
	CodeFrzRainHeavy:  "Pioggia gelata forte",
	CodeSnowLight:     "Neve debole",
	CodeSnow:          "Neve",
	CodeSnowHeavy:     "Neve forte",
	CodeSnowGrains:    "Neve granulosa",
	CodeShowersLight:  "Rovesci deboli",
	CodeShowers:       "Rovesci",
	CodeShowersHeavy:  "Rovesci violenti",
	CodeSnowShowers:   "Rovesci di neve",
	CodeSnowShowerHvy: "Forti rovesci di neve",
	CodeStorm:         "Temporale",
	CodeStormHail:     "Temporale con grandine",
	CodeStormHailHvy:  "Temporale con grandine forte",
}
