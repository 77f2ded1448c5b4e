package engine

import (
	"math"
	"sort"
)

// Source field aliases per canonical field, in preference order. Enhanced
// variants carry wider ranges on modern devices and win when both exist.
var fieldAliases = [fieldCount][]string{
	FieldHeartRate: {"heart_rate"},
	FieldSpeed:     {"enhanced_speed", "speed"},
	FieldAltitude:  {"enhanced_altitude", "altitude"},
	FieldDistance:  {"distance"},
	FieldCadence:   {"cadence"},
	FieldGrade:     {"grade"},
}

// normalizeSamples projects raw records onto the canonical schema, applying
// unit conversion and range checks. A value that fails conversion marks the
// field absent for that sample rather than failing the run. Output length
// equals input length; ordering is ascending by timestamp.
func normalizeSamples(raw []RawSample, cfg Config) ([]CanonicalSample, []Warning) {
	var warnings []Warning
	if len(raw) == 0 {
		return nil, nil
	}

	ordered := raw
	if !timestampsSorted(raw) {
		ordered = make([]RawSample, len(raw))
		copy(ordered, raw)
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Timestamp.Before(ordered[j].Timestamp)
		})
		warnings = append(warnings, warnf(WarnReordered, len(raw),
			"input timestamps were not sorted ascending; samples reordered"))
	}

	speedFactor := speedToKMH(cfg.Units.Speed)
	distFactor := distanceToMeters(cfg.Units.Distance)

	var present [fieldCount]int
	out := make([]CanonicalSample, 0, len(ordered))
	for _, r := range ordered {
		c := CanonicalSample{Timestamp: r.Timestamp}
		for f := Field(0); f < fieldCount; f++ {
			v, ok := aliasValue(r.Fields, fieldAliases[f])
			if !ok {
				continue
			}
			cv, ok := convertField(f, v, speedFactor, distFactor)
			if !ok {
				continue
			}
			c.setField(f, &cv)
			present[f]++
		}
		out = append(out, c)
	}

	if doubled := normalizeCadenceSPM(out); doubled > 0 {
		warnings = append(warnings, warnf(WarnCadenceDoubled, doubled,
			"median cadence below 100; values doubled from rpm to spm"))
	}

	for f := Field(0); f < fieldCount; f++ {
		if present[f] == 0 {
			warnings = append(warnings, warnf(WarnFieldMissing, 0,
				"field %s absent for the entire recording", f))
		}
	}
	return out, warnings
}

func timestampsSorted(raw []RawSample) bool {
	for i := 1; i < len(raw); i++ {
		if raw[i].Timestamp.Before(raw[i-1].Timestamp) {
			return false
		}
	}
	return true
}

func aliasValue(fields map[string]float64, aliases []string) (float64, bool) {
	for _, name := range aliases {
		if v, ok := fields[name]; ok {
			return v, true
		}
	}
	return 0, false
}

// convertField converts v to canonical units and rejects values outside
// physical range.
func convertField(f Field, v, speedFactor, distFactor float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	switch f {
	case FieldHeartRate:
		if v <= 0 || v >= 255 {
			return 0, false
		}
		return v, true
	case FieldSpeed:
		if v < 0 {
			return 0, false
		}
		return v * speedFactor, true
	case FieldDistance:
		if v < 0 {
			return 0, false
		}
		return v * distFactor, true
	case FieldCadence:
		if v < 0 {
			return 0, false
		}
		return v, true
	case FieldAltitude, FieldGrade:
		return v, true
	default:
		return 0, false
	}
}

func speedToKMH(unit string) float64 {
	switch unit {
	case SpeedUnitKMH:
		return 1
	case SpeedUnitMPH:
		return 1.609344
	default: // m/s, the native recording unit
		return 3.6
	}
}

func distanceToMeters(unit string) float64 {
	switch unit {
	case DistanceUnitKM:
		return 1000
	case DistanceUnitMI:
		return 1609.344
	default:
		return 1
	}
}

// normalizeCadenceSPM doubles cadence when the recording reports revolutions
// rather than steps (running cadence from most devices is per-leg). Returns
// the number of samples adjusted, zero when no adjustment was made.
func normalizeCadenceSPM(samples []CanonicalSample) int {
	values := make([]float64, 0, len(samples))
	for i := range samples {
		if samples[i].Cadence != nil {
			values = append(values, *samples[i].Cadence)
		}
	}
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	median := values[len(values)/2]
	if median >= 100 || median <= 0 {
		return 0
	}
	doubled := 0
	for i := range samples {
		if samples[i].Cadence != nil {
			v := *samples[i].Cadence * 2
			samples[i].Cadence = &v
			doubled++
		}
	}
	return doubled
}
