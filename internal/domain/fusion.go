package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// FusionOptions configures the fusion engine.
type FusionOptions struct {
	Models      ModelSet
	LocalSource string
	Variant     ReliabilityVariant
	Localizer   Localizer
}

// DefaultFusionOptions returns the Open-Meteo model set with the
// probability-spread reliability variant.
func DefaultFusionOptions() FusionOptions {
	return FusionOptions{
		Models:      DefaultModelSet(),
		LocalSource: DefaultLocalSource,
		Variant:     VariantProbabilitySpread,
		Localizer:   DefaultCatalog,
	}
}

// Fuser turns fusion requests into reports.
type Fuser struct {
	opts      FusionOptions
	corrector Corrector
}

// NewFuser creates a Fuser. A nil Localizer falls back to DefaultCatalog.
func NewFuser(opts FusionOptions) *Fuser {
	if opts.Localizer == nil {
		opts.Localizer = DefaultCatalog
	}
	return &Fuser{opts: opts, corrector: NewCorrector(opts.LocalSource)}
}

// ParseFusionRequest deserializes a RawEvent's value into a FusionRequest and
// fills in defaults for the location key, language and unit.
func ParseFusionRequest(raw RawEvent) (FusionRequest, error) {
	var req FusionRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return FusionRequest{}, fmt.Errorf("parse fusion request: %w", err)
	}
	if req.Location.Key == "" {
		if len(raw.Key) > 0 {
			req.Location.Key = string(raw.Key)
		} else {
			req.Location.Key = LocationKey(req.Location.Lat, req.Location.Lon)
		}
	}
	if req.Lang == "" {
		req.Lang = "en"
	}
	req.Unit = ParseUnit(string(req.Unit))
	return req, nil
}

// LocationKey derives a stable key from coordinates rounded to ~1 km.
func LocationKey(lat, lon float64) string {
	return fmt.Sprintf("%.2f,%.2f", lat, lon)
}

// Fuse runs the full rules pipeline for one request at the current clock time.
func (f *Fuser) Fuse(req FusionRequest) (FusionReport, error) {
	now := clock.Now()

	bundle := NormalizeBundle(req.Bundle, f.opts.Models)
	snap, err := DecodeSnapshot(bundle)
	if err != nil {
		return FusionReport{}, fmt.Errorf("fuse %s: %w", req.Location.Key, err)
	}

	signals := SignalsAt(snap, now)
	code, fired := f.corrector.Trace(signals)

	var reliability *ReliabilityResult
	if len(bundle.Comparison) > 0 {
		r := ScoreReliability(bundle, f.opts.Models.Secondary, snap.DayIndex(now), f.opts.Variant)
		reliability = &r
	}

	lang := f.opts.Localizer.Resolve(req.Lang)
	advisory := GenerateAdvisory(AdvisoryInput{
		Snapshot:    snap,
		Now:         now,
		Code:        code,
		Reliability: reliability,
		AQI:         req.AQI,
		Lang:        lang,
		Unit:        req.Unit,
		Localizer:   f.opts.Localizer,
	})

	return FusionReport{
		ID:            generateID(req.Location.Key, snap.Current.Time, lang, req.Unit),
		RequestID:     req.RequestID,
		Location:      req.Location,
		Lang:          lang,
		Unit:          req.Unit,
		ObservedAt:    snap.Current.Time,
		ReportedCode:  signals.Code,
		EffectiveCode: code,
		Condition:     f.opts.Localizer.CodeLabel(lang, code),
		Corrections:   fired,
		Reliability:   reliability,
		Conditions:    conditionsOf(snap, now, signals.RainProbability),
		Advisory:      advisory,
		ProcessedAt:   now,
	}, nil
}

func conditionsOf(s Snapshot, now time.Time, rainProb *float64) Conditions {
	d := s.DayIndex(now)
	temp := SafeNumber(s.Current.Temperature, 0)
	return Conditions{
		Temperature:         temp,
		ApparentTemperature: SafeNumber(s.Current.ApparentTemperature, temp),
		Humidity:            SafeNumber(s.Current.RelativeHumidity, 0),
		WindSpeed:           SafeNumber(s.Current.WindSpeed, 0),
		RainProbability:     SafeNumber(rainProb, SafeNumber(s.Daily.PrecipitationProbabilityMax.At(d), 0)),
		UVIndex:             SafeNumber(s.Daily.UVIndexMax.At(d), 0),
		TemperatureMax:      SafeNumber(s.Daily.TemperatureMax.At(d), temp),
		TemperatureMin:      SafeNumber(s.Daily.TemperatureMin.At(d), temp),
	}
}

// WithEnhancement returns a copy of r whose advisory text and tips come from
// the text-generation service. Alerts and confidence are kept.
func (r FusionReport) WithEnhancement(text string, tips []string) FusionReport {
	r.Advisory.Text = text
	if len(tips) > 0 {
		r.Advisory.Tips = append([]string(nil), tips...)
	}
	r.Advisory.Source = SourceAIEnhanced
	return r
}

// SerializeReport marshals a report into an OutputEvent keyed by location.
func SerializeReport(r FusionReport) (OutputEvent, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize fusion report: %w", err)
	}
	return OutputEvent{
		Key:   []byte(r.Location.Key),
		Value: data,
		Headers: map[string]string{
			"location":     r.Location.Key,
			"source":       r.Advisory.Source,
			"processed_at": r.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}

// generateID hashes the inputs that make a report distinct so that replays of
// the same observation produce the same ID.
func generateID(locationKey, observedAt, lang string, unit Unit) string {
	input := fmt.Sprintf("%s|%s|%s|%s", locationKey, observedAt, lang, unit)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:8])
}
