package enhance

import (
	"fmt"
	"math"
	"strconv"

	"github.com/couchcryptid/weather-fusion-service/internal/domain"
)

// Fingerprint identifies one enhancement request. Two reports with the same
// fingerprint would produce the same prompt, so they share a cache entry and
// at most one network call.
type Fingerprint struct {
	Lat    float64
	Lon    float64
	Signal string
	Lang   string
	Unit   domain.Unit
}

// FingerprintOf derives the fingerprint of a report. Coordinates are rounded
// to two decimals; the signal is the observation time plus the effective code.
func FingerprintOf(r domain.FusionReport) Fingerprint {
	signal := strconv.Itoa(r.EffectiveCode)
	if r.ObservedAt != "" {
		signal = r.ObservedAt + "/" + signal
	}
	return Fingerprint{
		Lat:    round2(r.Location.Lat),
		Lon:    round2(r.Location.Lon),
		Signal: signal,
		Lang:   r.Lang,
		Unit:   r.Unit,
	}
}

// Key is the cache key for the fingerprint.
func (f Fingerprint) Key() string {
	return fmt.Sprintf("ai:%.2f:%.2f:%s:%s:%s", f.Lat, f.Lon, f.Signal, f.Lang, f.Unit)
}

func round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0 // drop negative zero so keys stay stable
	}
	return r
}
