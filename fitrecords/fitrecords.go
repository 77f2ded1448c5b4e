// Package fitrecords adapts a decoded FIT activity file into the flat record
// sequence the analysis engine consumes. It is the only place that knows
// about the binary recording format; the engine sees field-name/value maps.
package fitrecords

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/tormoder/fit"

	"trail-engine/engine"
)

// Load decodes the FIT file at path into raw samples.
func Load(path string) ([]engine.RawSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FIT file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a FIT activity stream and returns its record messages as raw
// samples, timestamp-ordered as stored. Sentinel-invalid field values are
// omitted from the sample rather than carried as magic numbers.
func Decode(r io.Reader) ([]engine.RawSample, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}

	samples := make([]engine.RawSample, 0, len(activity.Records))
	for _, rec := range activity.Records {
		if rec == nil || rec.Timestamp.IsZero() || fit.IsBaseTime(rec.Timestamp) {
			continue
		}
		fields := make(map[string]float64, 8)

		if rec.HeartRate != math.MaxUint8 {
			fields["heart_rate"] = float64(rec.HeartRate)
		}
		if v := rec.GetEnhancedSpeedScaled(); isFinite(v) && v >= 0 {
			fields["enhanced_speed"] = v
		} else if v := rec.GetSpeedScaled(); isFinite(v) && v >= 0 {
			fields["speed"] = v
		}
		if v := rec.GetEnhancedAltitudeScaled(); isFinite(v) {
			fields["enhanced_altitude"] = v
		} else if v := rec.GetAltitudeScaled(); isFinite(v) {
			fields["altitude"] = v
		}
		if v := rec.GetDistanceScaled(); isFinite(v) && v >= 0 {
			fields["distance"] = v
		}
		if v := rec.GetCadence256Scaled(); isFinite(v) && v > 0 {
			fields["cadence"] = v
		} else if rec.Cadence != math.MaxUint8 {
			fields["cadence"] = float64(rec.Cadence)
		}
		if v := rec.GetGradeScaled(); isFinite(v) {
			fields["grade"] = v
		}

		samples = append(samples, engine.RawSample{Timestamp: rec.Timestamp, Fields: fields})
	}
	return samples, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
