package domain

import "encoding/json"

// ModelID names a numerical weather model, e.g. "best_match" or "gfs_seamless".
type ModelID string

// Section is one temporal resolution of a provider payload: a flat map of
// field name to JSON value (a scalar for current, an array for series).
type Section map[string]json.RawMessage

// RawModelBundle is the unprocessed multi-model response. Per-model fields
// carry a "_<model>" suffix; all arrays of one resolution share the length of
// that resolution's "time" array and are ordered by ascending time.
type RawModelBundle struct {
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	Elevation        *float64 `json:"elevation,omitempty"`
	Timezone         string   `json:"timezone,omitempty"`
	UTCOffsetSeconds int      `json:"utc_offset_seconds"`

	Current    Section `json:"current,omitempty"`
	Hourly     Section `json:"hourly,omitempty"`
	Daily      Section `json:"daily,omitempty"`
	Minutely15 Section `json:"minutely_15,omitempty"`
}

// Step holds one model's numeric fields at a single time index.
type Step map[string]*float64

// ModelSeries is the comparison record of one secondary model. Hourly and
// Daily are pre-sized to the primary time axis so index i lines up across
// models.
type ModelSeries struct {
	Current    Step
	Hourly     []Step
	Daily      []Step
	Minutely15 []Step
}

// DailyValue returns the model's value of field on day i, or nil when unknown.
func (s *ModelSeries) DailyValue(field string, i int) *float64 {
	if s == nil || i < 0 || i >= len(s.Daily) || s.Daily[i] == nil {
		return nil
	}
	return s.Daily[i][field]
}

// HourlyValue returns the model's value of field at hour index i, or nil.
func (s *ModelSeries) HourlyValue(field string, i int) *float64 {
	if s == nil || i < 0 || i >= len(s.Hourly) || s.Hourly[i] == nil {
		return nil
	}
	return s.Hourly[i][field]
}

// ModelBundle is a normalized bundle: canonical sections holding the primary
// model's data under plain field names, plus one comparison record per
// secondary model. It is built once by NormalizeBundle and never re-parsed.
type ModelBundle struct {
	RawModelBundle

	Primary    ModelID
	Comparison map[ModelID]*ModelSeries
}

// Model returns the comparison record for id, or nil when that model is absent.
func (b ModelBundle) Model(id ModelID) *ModelSeries {
	return b.Comparison[id]
}

// ModelSet configures which suffixes identify the primary model and the
// secondary models used for divergence scoring.
type ModelSet struct {
	Primary   ModelID
	Secondary []ModelID
	// Exclude lists unsuffixed fields dropped from the canonical sections.
	Exclude []string
}

// DefaultModelSet is the Open-Meteo multi-model configuration the service
// requests: best_match as primary, three global models for comparison.
func DefaultModelSet() ModelSet {
	return ModelSet{
		Primary:   "best_match",
		Secondary: []ModelID{"ecmwf_ifs025", "gfs_seamless", "icon_seamless"},
		Exclude:   []string{"interval"},
	}
}
