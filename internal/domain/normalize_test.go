package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBundle_SplitsModels(t *testing.T) {
	out := NormalizeBundle(loadFixture(t), DefaultModelSet())

	assert.Equal(t, ModelID("best_match"), out.Primary)
	assert.Equal(t, 45.46, out.Latitude)
	require.NotNil(t, out.Elevation)
	assert.Equal(t, 120.0, *out.Elevation)

	t.Run("primary suffix stripped", func(t *testing.T) {
		assert.JSONEq(t, `18`, string(out.Current["temperature_2m"]))
		assert.JSONEq(t, `[17, 18, 19]`, string(out.Hourly["temperature_2m"]))
		assert.NotContains(t, out.Current, "temperature_2m_best_match")
	})

	t.Run("shared fields pass through", func(t *testing.T) {
		assert.JSONEq(t, `"2026-10-16T10:00"`, string(out.Current["time"]))
		assert.Contains(t, out.Daily, "time")
	})

	t.Run("excluded fields dropped", func(t *testing.T) {
		assert.NotContains(t, out.Current, "interval")
	})

	t.Run("secondary fields leave the canonical sections", func(t *testing.T) {
		for key := range out.Hourly {
			assert.NotContains(t, key, "_ecmwf_ifs025")
			assert.NotContains(t, key, "_gfs_seamless")
		}
	})

	t.Run("secondary current values", func(t *testing.T) {
		gfs := out.Model("gfs_seamless")
		require.NotNil(t, gfs)
		require.NotNil(t, gfs.Current["temperature_2m"])
		assert.Equal(t, 17.5, *gfs.Current["temperature_2m"])
	})

	t.Run("secondary hourly scattered per step", func(t *testing.T) {
		ecmwf := out.Model("ecmwf_ifs025")
		require.NotNil(t, ecmwf)
		require.Len(t, ecmwf.Hourly, 3)
		assert.Equal(t, 17.5, *ecmwf.HourlyValue("temperature_2m", 1))

		gfs := out.Model("gfs_seamless")
		assert.Nil(t, gfs.HourlyValue("temperature_2m", 1), "null stays unknown")
		assert.Equal(t, 19.0, *gfs.HourlyValue("temperature_2m", 2))
	})

	t.Run("secondary daily pre-sized to the time axis", func(t *testing.T) {
		icon := out.Model("icon_seamless")
		require.NotNil(t, icon)
		assert.Len(t, icon.Daily, 2)
		assert.Equal(t, 20.5, *icon.DailyValue("temperature_2m_max", 0))
		assert.Nil(t, icon.DailyValue("temperature_2m_max", 5))
	})

	t.Run("non-numeric secondary fields dropped", func(t *testing.T) {
		gfs := out.Model("gfs_seamless")
		_, ok := gfs.Daily[0]["sunrise"]
		assert.False(t, ok)
	})
}

func TestNormalizeBundle_IdentityOnSingleModel(t *testing.T) {
	raw := RawModelBundle{
		Latitude:  41.9,
		Longitude: 12.5,
		Current: Section{
			"time":           json.RawMessage(`"2026-10-16T10:00"`),
			"interval":       json.RawMessage(`900`),
			"temperature_2m": json.RawMessage(`19.2`),
		},
		Hourly: Section{
			"time":           json.RawMessage(`["2026-10-16T10:00"]`),
			"temperature_2m": json.RawMessage(`[19.2]`),
		},
	}

	out := NormalizeBundle(raw, DefaultModelSet())

	if diff := cmp.Diff(raw, out.RawModelBundle); diff != "" {
		t.Errorf("bundle changed (-want +got):\n%s", diff)
	}
	assert.Empty(t, out.Comparison)
}

func TestNormalizeBundle_CustomModelSet(t *testing.T) {
	raw := RawModelBundle{
		Current: Section{
			"temperature_2m_icon_d2":     json.RawMessage(`7`),
			"temperature_2m_meteofrance": json.RawMessage(`8`),
			"temperature_2m_unknown":     json.RawMessage(`9`),
		},
	}
	models := ModelSet{Primary: "icon_d2", Secondary: []ModelID{"meteofrance"}}

	out := NormalizeBundle(raw, models)

	assert.JSONEq(t, `7`, string(out.Current["temperature_2m"]))
	assert.Equal(t, 8.0, *out.Model("meteofrance").Current["temperature_2m"])
	assert.Contains(t, out.Current, "temperature_2m_unknown", "unrecognized suffixes pass through")
}

func TestDecodeSnapshot(t *testing.T) {
	_, snap := fixtureSnapshot(t)

	assert.Equal(t, "2026-10-16T10:00", snap.Current.Time)
	assert.Equal(t, 18.0, *snap.Current.Temperature)
	assert.Equal(t, 0.0, *snap.Current.WeatherCode)
	assert.Len(t, snap.Hourly.Time, 3)
	assert.Nil(t, snap.Hourly.CAPE.At(2))
	assert.Equal(t, 22.0, *snap.Daily.TemperatureMax.At(1))
	assert.Equal(t, []string{"2026-10-16T07:30", "2026-10-17T07:31"}, snap.Daily.Sunrise)
	assert.Len(t, snap.Nowcast.Precipitation, 5)
	assert.Len(t, snap.Comparison, 3)
}

func TestDecodeSnapshot_NoCurrent(t *testing.T) {
	_, err := DecodeSnapshot(ModelBundle{})
	assert.ErrorIs(t, err, ErrNoPrimaryModel)
}

func TestDecodeSnapshot_MistypedFieldIgnored(t *testing.T) {
	b := ModelBundle{RawModelBundle: RawModelBundle{Current: Section{
		"temperature_2m": json.RawMessage(`"warm"`),
		"weather_code":   json.RawMessage(`3`),
	}}}

	snap, err := DecodeSnapshot(b)

	require.NoError(t, err)
	assert.Nil(t, snap.Current.Temperature)
	assert.Equal(t, 3.0, *snap.Current.WeatherCode)
}
