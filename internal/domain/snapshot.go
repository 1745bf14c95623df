package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNoPrimaryModel is returned when a bundle carries no current conditions
// under canonical names.
var ErrNoPrimaryModel = errors.New("bundle has no primary current conditions")

// Series is a time-indexed numeric array. Nil entries are unknown, not zero.
type Series []*float64

// At returns entry i, or nil when out of range.
func (s Series) At(i int) *float64 {
	if i < 0 || i >= len(s) {
		return nil
	}
	return s[i]
}

// Current holds instantaneous conditions.
type Current struct {
	Time                string   `json:"time"`
	Temperature         *float64 `json:"temperature_2m"`
	ApparentTemperature *float64 `json:"apparent_temperature"`
	RelativeHumidity    *float64 `json:"relative_humidity_2m"`
	WindSpeed           *float64 `json:"wind_speed_10m"`
	WindGusts           *float64 `json:"wind_gusts_10m"`
	CloudCover          *float64 `json:"cloud_cover"`
	CloudCoverLow       *float64 `json:"cloud_cover_low"`
	CloudCoverMid       *float64 `json:"cloud_cover_mid"`
	CloudCoverHigh      *float64 `json:"cloud_cover_high"`
	Precipitation       *float64 `json:"precipitation"`
	Visibility          *float64 `json:"visibility"`
	WeatherCode         *float64 `json:"weather_code"`
	IsDay               *float64 `json:"is_day"`
	// Source tags the model that produced the values, when the fetcher knows it.
	Source string `json:"source,omitempty"`
}

// Hourly holds hourly series.
type Hourly struct {
	Time                     []string `json:"time"`
	Temperature              Series   `json:"temperature_2m"`
	Precipitation            Series   `json:"precipitation"`
	PrecipitationProbability Series   `json:"precipitation_probability"`
	WindSpeed                Series   `json:"wind_speed_10m"`
	CAPE                     Series   `json:"cape"`
	SnowDepth                Series   `json:"snow_depth"`
	RelativeHumidity         Series   `json:"relative_humidity_2m"`
	FreezingLevelHeight      Series   `json:"freezing_level_height"`
	WeatherCode              Series   `json:"weather_code"`
	CloudCover               Series   `json:"cloud_cover"`
}

// Daily holds per-day series.
type Daily struct {
	Time                        []string `json:"time"`
	TemperatureMax              Series   `json:"temperature_2m_max"`
	TemperatureMin              Series   `json:"temperature_2m_min"`
	PrecipitationSum            Series   `json:"precipitation_sum"`
	PrecipitationProbabilityMax Series   `json:"precipitation_probability_max"`
	UVIndexMax                  Series   `json:"uv_index_max"`
	WindSpeedMax                Series   `json:"wind_speed_10m_max"`
	Sunrise                     []string `json:"sunrise"`
	Sunset                      []string `json:"sunset"`
	WeatherCode                 Series   `json:"weather_code"`
}

// Nowcast is the 15-minute precipitation series.
type Nowcast struct {
	Time          []string `json:"time"`
	Precipitation Series   `json:"precipitation"`
}

// Snapshot is the typed, immutable view of a normalized bundle.
type Snapshot struct {
	Latitude         float64
	Longitude        float64
	Elevation        *float64
	Timezone         string
	UTCOffsetSeconds int

	Current Current
	Hourly  Hourly
	Daily   Daily
	Nowcast Nowcast

	Comparison map[ModelID]*ModelSeries
}

// DecodeSnapshot converts the canonical sections of a bundle into typed records.
func DecodeSnapshot(b ModelBundle) (Snapshot, error) {
	if len(b.Current) == 0 {
		return Snapshot{}, ErrNoPrimaryModel
	}

	s := Snapshot{
		Latitude:         b.Latitude,
		Longitude:        b.Longitude,
		Elevation:        b.Elevation,
		Timezone:         b.Timezone,
		UTCOffsetSeconds: b.UTCOffsetSeconds,
		Comparison:       b.Comparison,
	}
	if err := decodeSection(b.Current, &s.Current); err != nil {
		return Snapshot{}, fmt.Errorf("decode current: %w", err)
	}
	if err := decodeSection(b.Hourly, &s.Hourly); err != nil {
		return Snapshot{}, fmt.Errorf("decode hourly: %w", err)
	}
	if err := decodeSection(b.Daily, &s.Daily); err != nil {
		return Snapshot{}, fmt.Errorf("decode daily: %w", err)
	}
	if err := decodeSection(b.Minutely15, &s.Nowcast); err != nil {
		return Snapshot{}, fmt.Errorf("decode minutely_15: %w", err)
	}
	return s, nil
}

// decodeSection re-marshals a section into dst. Fields whose value does not
// fit the typed record are left at their zero value instead of failing the
// whole section.
func decodeSection(sec Section, dst any) error {
	if len(sec) == 0 {
		return nil
	}
	data, err := json.Marshal(sec)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil
		}
		return err
	}
	return nil
}

const (
	hourLayout   = "2006-01-02T15:04"
	dateLayout   = "2006-01-02"
	nowcastSlots = 4
)

// LocalTime shifts now into the location's wall-clock time using the bundle's
// UTC offset. The returned time is expressed in UTC so its fields read as
// local wall-clock values.
func (s Snapshot) LocalTime(now time.Time) time.Time {
	return now.UTC().Add(time.Duration(s.UTCOffsetSeconds) * time.Second)
}

// HourIndex returns the index of the hourly step covering now: an exact match
// on the hour, else the last step not after it, else 0. It returns -1 when
// there is no hourly axis.
func (s Snapshot) HourIndex(now time.Time) int {
	return stepIndex(s.Hourly.Time, s.LocalTime(now).Truncate(time.Hour))
}

// DayIndex returns the index of today's daily step, or 0 when not found.
func (s Snapshot) DayIndex(now time.Time) int {
	today := s.LocalTime(now).Format(dateLayout)
	for i, d := range s.Daily.Time {
		if len(d) >= len(dateLayout) && d[:len(dateLayout)] == today {
			return i
		}
	}
	return 0
}

// NowcastWindow returns up to one hour of 15-minute precipitation values
// starting at the slot containing now.
func (s Snapshot) NowcastWindow(now time.Time) Series {
	start := stepIndex(s.Nowcast.Time, s.LocalTime(now).Truncate(15*time.Minute))
	if start < 0 {
		return nil
	}
	end := min(start+nowcastSlots, len(s.Nowcast.Precipitation))
	if start >= end {
		return nil
	}
	return s.Nowcast.Precipitation[start:end]
}

func stepIndex(axis []string, target time.Time) int {
	if len(axis) == 0 {
		return -1
	}
	key := target.Format(hourLayout)
	last := -1
	for i, t := range axis {
		if t == key {
			return i
		}
		ts, err := time.Parse(hourLayout, t)
		if err != nil {
			continue
		}
		if !ts.After(target) {
			last = i
		}
	}
	if last < 0 {
		return 0
	}
	return last
}

// Peak returns the largest known value in s, or 0 when none is known.
func (s Series) Peak() float64 {
	peak := 0.0
	for _, v := range s {
		if v == nil {
			continue
		}
		peak = max(peak, SafeFloat(*v, 0))
	}
	return peak
}
