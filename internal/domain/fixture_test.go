package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// multiModelJSON is a trimmed Open-Meteo multi-model response for Milan.
// Local time is UTC+2; fixtureNow is 10:00 local.
const multiModelJSON = `{
  "latitude": 45.46, "longitude": 9.19, "elevation": 120,
  "timezone": "Europe/Rome", "utc_offset_seconds": 7200,
  "current": {
    "time": "2026-10-16T10:00", "interval": 900,
    "temperature_2m_best_match": 18, "apparent_temperature_best_match": 17,
    "relative_humidity_2m_best_match": 60, "wind_speed_10m_best_match": 12,
    "wind_gusts_10m_best_match": 20, "cloud_cover_best_match": 10,
    "cloud_cover_low_best_match": 5, "cloud_cover_mid_best_match": 5,
    "cloud_cover_high_best_match": 0, "precipitation_best_match": 0,
    "visibility_best_match": 20000, "weather_code_best_match": 0,
    "is_day_best_match": 1,
    "temperature_2m_gfs_seamless": 17.5
  },
  "hourly": {
    "time": ["2026-10-16T09:00", "2026-10-16T10:00", "2026-10-16T11:00"],
    "temperature_2m_best_match": [17, 18, 19],
    "precipitation_probability_best_match": [5, 10, 20],
    "cape_best_match": [0, 0, null],
    "freezing_level_height_best_match": [3000, 3000, 3000],
    "temperature_2m_ecmwf_ifs025": [16.5, 17.5, 18.5],
    "temperature_2m_gfs_seamless": [17, null, 19]
  },
  "daily": {
    "time": ["2026-10-16", "2026-10-17"],
    "temperature_2m_max_best_match": [21, 22],
    "temperature_2m_min_best_match": [11, 12],
    "precipitation_sum_best_match": [0, 1],
    "precipitation_probability_max_best_match": [10, 30],
    "uv_index_max_best_match": [4, 3],
    "sunrise_best_match": ["2026-10-16T07:30", "2026-10-17T07:31"],
    "temperature_2m_max_ecmwf_ifs025": [21, 22],
    "temperature_2m_max_gfs_seamless": [21.5, 22],
    "temperature_2m_max_icon_seamless": [20.5, 21],
    "precipitation_probability_max_ecmwf_ifs025": [10, 30],
    "precipitation_probability_max_gfs_seamless": [20, 30],
    "precipitation_probability_max_icon_seamless": [5, 20],
    "sunrise_gfs_seamless": ["2026-10-16T07:30", "2026-10-17T07:31"]
  },
  "minutely_15": {
    "time": ["2026-10-16T10:00", "2026-10-16T10:15", "2026-10-16T10:30", "2026-10-16T10:45", "2026-10-16T11:00"],
    "precipitation_best_match": [0, 0, 0, 0, 0]
  }
}`

var fixtureNow = time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)

func loadFixture(t *testing.T) RawModelBundle {
	t.Helper()
	var raw RawModelBundle
	require.NoError(t, json.Unmarshal([]byte(multiModelJSON), &raw))
	return raw
}

func fixtureSnapshot(t *testing.T) (ModelBundle, Snapshot) {
	t.Helper()
	bundle := NormalizeBundle(loadFixture(t), DefaultModelSet())
	snap, err := DecodeSnapshot(bundle)
	require.NoError(t, err)
	return bundle, snap
}
