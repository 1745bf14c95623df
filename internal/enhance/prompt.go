package enhance

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/couchcryptid/weather-fusion-service/internal/domain"
)

// PromptInput is everything the proxy needs to rewrite an advisory.
type PromptInput struct {
	Place      string
	Lang       string
	Unit       domain.Unit
	Condition  string
	Conditions domain.Conditions
	Alerts     []domain.Alert
	Confidence string
	RulesText  string
}

// PromptFromReport collects the prompt input from a rules-based report.
func PromptFromReport(r domain.FusionReport) PromptInput {
	place := r.Location.Name
	if place == "" {
		place = r.Location.Key
	}
	return PromptInput{
		Place:      place,
		Lang:       r.Lang,
		Unit:       r.Unit,
		Condition:  r.Condition,
		Conditions: r.Conditions,
		Alerts:     r.Advisory.Alerts,
		Confidence: r.Advisory.ConfidenceLabel,
		RulesText:  r.Advisory.Text,
	}
}

// BuildPrompt renders the free-text prompt. The reply is expected to embed a
// JSON object {"text": string, "tips": [string]}.
func BuildPrompt(in PromptInput) string {
	c := in.Conditions
	temp := func(v float64) string { return domain.FormatTemperature(v, in.Unit) }

	var b strings.Builder
	fmt.Fprintf(&b, "You are a friendly local weather presenter. Write a short advisory for %s in %s.\n", in.Place, languageName(in.Lang))
	b.WriteString("Current conditions:\n")
	fmt.Fprintf(&b, "- sky: %s\n", in.Condition)
	fmt.Fprintf(&b, "- temperature: %s (feels like %s)\n", temp(c.Temperature), temp(c.ApparentTemperature))
	fmt.Fprintf(&b, "- today: min %s, max %s\n", temp(c.TemperatureMin), temp(c.TemperatureMax))
	fmt.Fprintf(&b, "- humidity: %.0f%%\n", c.Humidity)
	fmt.Fprintf(&b, "- wind: %.0f km/h\n", c.WindSpeed)
	fmt.Fprintf(&b, "- rain probability: %.0f%%\n", c.RainProbability)
	fmt.Fprintf(&b, "- UV index: %.0f\n", c.UVIndex)
	if len(in.Alerts) > 0 {
		b.WriteString("Active alerts:\n")
		for _, a := range in.Alerts {
			fmt.Fprintf(&b, "- [%s] %s\n", a.Severity, a.Message)
		}
	}
	if in.Confidence != "" {
		fmt.Fprintf(&b, "Forecast confidence: %s\n", in.Confidence)
	}
	fmt.Fprintf(&b, "Draft advisory: %s\n", in.RulesText)
	b.WriteString("Keep every fact from the draft and do not invent new ones. ")
	b.WriteString("Use at most three sentences and up to four practical tips.\n")
	b.WriteString(`Reply with only a JSON object: {"text": "...", "tips": ["..."]}`)
	return b.String()
}

func languageName(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return "English"
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return "English"
}
