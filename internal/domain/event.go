package domain

import (
	"context"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Location identifies the place a bundle was fetched for. Key is the stable
// identifier advisories are published and looked up under.
type Location struct {
	Key  string  `json:"key"`
	Name string  `json:"name,omitempty"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// FusionRequest is the message the fetch collaborator publishes: one
// multi-model bundle plus the display preferences of the requester.
type FusionRequest struct {
	RequestID string         `json:"request_id,omitempty"`
	Location  Location       `json:"location"`
	Lang      string         `json:"lang,omitempty"`
	Unit      Unit           `json:"unit,omitempty"`
	AQI       *float64       `json:"aqi,omitempty"`
	Bundle    RawModelBundle `json:"bundle"`
}

// Conditions echoes the current values the advisory was derived from.
type Conditions struct {
	Temperature         float64 `json:"temperature"`
	ApparentTemperature float64 `json:"apparent_temperature"`
	Humidity            float64 `json:"humidity"`
	WindSpeed           float64 `json:"wind_speed"`
	RainProbability     float64 `json:"rain_probability"`
	UVIndex             float64 `json:"uv_index"`
	TemperatureMax      float64 `json:"temperature_max"`
	TemperatureMin      float64 `json:"temperature_min"`
}

// FusionReport is the published result for one request.
type FusionReport struct {
	ID            string             `json:"id"`
	RequestID     string             `json:"request_id,omitempty"`
	Location      Location           `json:"location"`
	Lang          string             `json:"lang"`
	Unit          Unit               `json:"unit"`
	ObservedAt    string             `json:"observed_at,omitempty"`
	ReportedCode  int                `json:"reported_code"`
	EffectiveCode int                `json:"effective_code"`
	Condition     string             `json:"condition"`
	Corrections   []string           `json:"corrections,omitempty"`
	Reliability   *ReliabilityResult `json:"reliability,omitempty"`
	Conditions    Conditions         `json:"conditions"`
	Advisory      AdvisoryResult     `json:"advisory"`
	ProcessedAt   time.Time          `json:"processed_at"`
}
