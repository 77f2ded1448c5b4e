// Package engine analyzes one activity recording: it takes the flat record
// sequence produced by a decoder and turns it into a cleaned, regularized,
// annotated series plus zone distributions and summary statistics.
package engine

import "time"

// Field identifies one canonical measurement the engine understands.
type Field uint8

const (
	FieldHeartRate Field = iota
	FieldSpeed
	FieldAltitude
	FieldDistance
	FieldCadence
	FieldGrade

	fieldCount
)

func (f Field) String() string {
	switch f {
	case FieldHeartRate:
		return "heart_rate"
	case FieldSpeed:
		return "speed"
	case FieldAltitude:
		return "altitude"
	case FieldDistance:
		return "distance"
	case FieldCadence:
		return "cadence"
	case FieldGrade:
		return "grade"
	default:
		return "unknown"
	}
}

// FieldSet is a bitmask over canonical fields.
type FieldSet uint8

// Has reports whether f is in the set.
func (s FieldSet) Has(f Field) bool { return s&(1<<f) != 0 }

func (s *FieldSet) add(f Field) { *s |= 1 << f }

// Dimension selects which sample value a zone distribution is built over.
type Dimension string

const (
	DimensionHeartRate Dimension = "heart_rate"
	DimensionPace      Dimension = "pace"
	DimensionGrade     Dimension = "grade"
)

// RawSample is one decoded record: a timestamp plus whatever numeric fields
// the recording carried at that instant, keyed by source field name. The
// engine never mutates raw samples.
type RawSample struct {
	Timestamp time.Time          `json:"timestamp"`
	Fields    map[string]float64 `json:"fields"`
}

// CanonicalSample is a RawSample projected onto the fixed canonical schema.
// A nil pointer means the source lacked the field or its value failed unit
// conversion. Canonical units: speed km/h, distance and altitude meters,
// cadence steps per minute, grade percent.
type CanonicalSample struct {
	Timestamp time.Time `json:"timestamp"`
	HeartRate *float64  `json:"heart_rate,omitempty"`
	Speed     *float64  `json:"speed,omitempty"`
	Altitude  *float64  `json:"altitude,omitempty"`
	Distance  *float64  `json:"distance,omitempty"`
	Cadence   *float64  `json:"cadence,omitempty"`
	Grade     *float64  `json:"grade,omitempty"`
}

func (c *CanonicalSample) field(f Field) *float64 {
	switch f {
	case FieldHeartRate:
		return c.HeartRate
	case FieldSpeed:
		return c.Speed
	case FieldAltitude:
		return c.Altitude
	case FieldDistance:
		return c.Distance
	case FieldCadence:
		return c.Cadence
	case FieldGrade:
		return c.Grade
	default:
		return nil
	}
}

func (c *CanonicalSample) setField(f Field, v *float64) {
	switch f {
	case FieldHeartRate:
		c.HeartRate = v
	case FieldSpeed:
		c.Speed = v
	case FieldAltitude:
		c.Altitude = v
	case FieldDistance:
		c.Distance = v
	case FieldCadence:
		c.Cadence = v
	case FieldGrade:
		c.Grade = v
	}
}

// RegularSample is a CanonicalSample after gap repair. Interpolated records
// which fields were synthesized rather than measured. Discontinuity marks the
// first real sample after a gap too large to interpolate across.
type RegularSample struct {
	CanonicalSample
	Interpolated  FieldSet `json:"interpolated,omitempty"`
	Discontinuity bool     `json:"discontinuity,omitempty"`
}

// DerivedSample is a RegularSample plus computed per-sample metrics. The
// cumulative fields are monotonically non-decreasing across the sequence.
type DerivedSample struct {
	RegularSample
	ElapsedS         float64  `json:"elapsed_s"`
	ElevationGainCum float64  `json:"elevation_gain_cum"`
	ElevationLossCum float64  `json:"elevation_loss_cum"`
	DistanceCum      float64  `json:"distance_cum"`
	SpeedSmooth      *float64 `json:"speed_smooth,omitempty"`
	GradeSmooth      *float64 `json:"grade_smooth,omitempty"`
	// Pace is minutes per kilometer derived from SpeedSmooth.
	Pace *float64 `json:"pace,omitempty"`
	// GradeAdjustedSpeed scales SpeedSmooth by the energy cost of the
	// current grade so uphill and flat efforts compare directly.
	GradeAdjustedSpeed *float64 `json:"grade_adjusted_speed,omitempty"`
}

// ZoneDistribution is time spent per zone for one dimension. Zone i covers
// [Boundaries[i-1], Boundaries[i]), so there is one more zone than boundary.
type ZoneDistribution struct {
	Dimension    Dimension `json:"dimension"`
	Boundaries   []float64 `json:"boundaries"`
	Seconds      []float64 `json:"seconds"`
	TotalSeconds float64   `json:"total_seconds"`
}

// FieldStats summarizes the present values of one field. A field with zero
// present samples reports no FieldStats at all rather than zeros.
type FieldStats struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
}

// Summary holds per-field statistics over present values plus recording
// totals taken from the final cumulative sample.
type Summary struct {
	HeartRate *FieldStats `json:"heart_rate,omitempty"`
	Speed     *FieldStats `json:"speed,omitempty"`
	Altitude  *FieldStats `json:"altitude,omitempty"`
	Cadence   *FieldStats `json:"cadence,omitempty"`
	Grade     *FieldStats `json:"grade,omitempty"`
	Pace      *FieldStats `json:"pace,omitempty"`

	ElapsedSeconds    float64 `json:"elapsed_seconds"`
	DistanceM         float64 `json:"distance_m"`
	ElevationGainM    float64 `json:"elevation_gain_m"`
	ElevationLossM    float64 `json:"elevation_loss_m"`
	DistanceEstimated bool    `json:"distance_estimated,omitempty"`
}

// AnalysisResult is the terminal artifact of one analysis run: the enriched
// series, one zone distribution per classified dimension, summary statistics
// and any data-quality warnings raised along the way.
type AnalysisResult struct {
	Samples  []DerivedSample                `json:"samples,omitempty"`
	Zones    map[Dimension]ZoneDistribution `json:"zones"`
	Summary  Summary                        `json:"summary"`
	Warnings []Warning                      `json:"warnings,omitempty"`
}
