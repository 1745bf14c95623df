package domain

import (
	"encoding/json"
	"strings"
)

type resolution int

const (
	resCurrent resolution = iota
	resHourly
	resDaily
	resMinutely15
)

// NormalizeBundle splits a multi-model payload into the primary model's
// canonical sections and per-model comparison records.
//
// Primary-suffixed fields lose their suffix. Secondary-suffixed fields are
// scattered into that model's pre-sized step slices. Unsuffixed fields pass
// through unless excluded. When no primary current field is present the
// payload is not a multi-model response and is returned unmodified.
func NormalizeBundle(raw RawModelBundle, models ModelSet) ModelBundle {
	primarySuffix := "_" + string(models.Primary)
	if !hasSuffixedField(raw.Current, primarySuffix) {
		return ModelBundle{RawModelBundle: raw, Primary: models.Primary}
	}

	exclude := make(map[string]struct{}, len(models.Exclude))
	for _, f := range models.Exclude {
		exclude[f] = struct{}{}
	}

	out := ModelBundle{
		RawModelBundle: RawModelBundle{
			Latitude:         raw.Latitude,
			Longitude:        raw.Longitude,
			Elevation:        raw.Elevation,
			Timezone:         raw.Timezone,
			UTCOffsetSeconds: raw.UTCOffsetSeconds,
		},
		Primary:    models.Primary,
		Comparison: make(map[ModelID]*ModelSeries, len(models.Secondary)),
	}

	n := normalizer{models: models, primarySuffix: primarySuffix, exclude: exclude, comparison: out.Comparison}
	out.Current = n.section(raw.Current, resCurrent)
	out.Hourly = n.section(raw.Hourly, resHourly)
	out.Daily = n.section(raw.Daily, resDaily)
	out.Minutely15 = n.section(raw.Minutely15, resMinutely15)
	return out
}

type normalizer struct {
	models        ModelSet
	primarySuffix string
	exclude       map[string]struct{}
	comparison    map[ModelID]*ModelSeries
}

func (n normalizer) section(in Section, res resolution) Section {
	if in == nil {
		return nil
	}
	steps := timeAxisLength(in)
	canonical := make(Section, len(in))

	for key, value := range in {
		if name, ok := strings.CutSuffix(key, n.primarySuffix); ok {
			canonical[name] = value
			continue
		}
		if model, name, ok := n.secondary(key); ok {
			n.scatter(model, name, value, res, steps)
			continue
		}
		if _, skip := n.exclude[key]; skip {
			continue
		}
		canonical[key] = value
	}
	return canonical
}

// secondary matches key against the configured secondary model suffixes.
func (n normalizer) secondary(key string) (ModelID, string, bool) {
	for _, m := range n.models.Secondary {
		if name, ok := strings.CutSuffix(key, "_"+string(m)); ok && name != "" {
			return m, name, true
		}
	}
	return "", "", false
}

func (n normalizer) series(model ModelID) *ModelSeries {
	s, ok := n.comparison[model]
	if !ok {
		s = &ModelSeries{}
		n.comparison[model] = s
	}
	return s
}

// scatter stores a secondary model's field. Non-numeric values (sunrise
// strings, for example) carry no divergence signal and are dropped.
func (n normalizer) scatter(model ModelID, name string, value json.RawMessage, res resolution, steps int) {
	s := n.series(model)

	if res == resCurrent {
		var v *float64
		if err := json.Unmarshal(value, &v); err != nil {
			return
		}
		if s.Current == nil {
			s.Current = make(Step)
		}
		s.Current[name] = v
		return
	}

	var values []*float64
	if err := json.Unmarshal(value, &values); err != nil {
		return
	}
	if steps < 0 {
		steps = len(values)
	}

	var target *[]Step
	switch res {
	case resHourly:
		target = &s.Hourly
	case resDaily:
		target = &s.Daily
	default:
		target = &s.Minutely15
	}
	if *target == nil {
		*target = make([]Step, steps)
	}
	for i, v := range values {
		if i >= len(*target) {
			break
		}
		if (*target)[i] == nil {
			(*target)[i] = make(Step)
		}
		(*target)[i][name] = v
	}
}

func hasSuffixedField(s Section, suffix string) bool {
	for key := range s {
		if strings.HasSuffix(key, suffix) {
			return true
		}
	}
	return false
}

// timeAxisLength returns the length of the section's "time" array, or -1 when
// the section has no time axis.
func timeAxisLength(s Section) int {
	raw, ok := s["time"]
	if !ok {
		return -1
	}
	var times []json.RawMessage
	if err := json.Unmarshal(raw, &times); err != nil {
		return -1
	}
	return len(times)
}
