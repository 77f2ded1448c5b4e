package engine

import (
	"math"
	"time"
)

// Grade clipping bounds for altitude-derived grade. GPS altitude over short
// distance deltas produces wild slopes; real terrain stays inside these.
const (
	minDerivedGrade = -50.0
	maxDerivedGrade = 30.0
)

// Minimum smoothed speed, km/h, below which pace is reported absent instead
// of diverging toward infinity.
const minPaceSpeedKMH = 0.1

// deriveMetrics computes the per-sample and cumulative metrics of the
// regularized sequence: elevation gain/loss with noise filtering, trailing
// moving averages for speed and grade, pace, grade-adjusted speed and
// cumulative distance.
func deriveMetrics(samples []RegularSample, cfg Config) ([]DerivedSample, []Warning) {
	var warnings []Warning
	if len(samples) == 0 {
		return nil, nil
	}

	out := make([]DerivedSample, len(samples))
	start := samples[0].Timestamp
	for i := range samples {
		out[i].RegularSample = samples[i]
		out[i].ElapsedS = samples[i].Timestamp.Sub(start).Seconds()
	}

	if filtered := accumulateElevation(out, cfg.ElevationNoiseThreshold); filtered > 0 {
		warnings = append(warnings, warnf(WarnElevationFiltered, filtered,
			"%d altitude deltas below %.2g m discarded as sensor noise", filtered, cfg.ElevationNoiseThreshold))
	}

	window := time.Duration(cfg.SmoothingWindowSeconds * float64(time.Second))
	ts := make([]time.Time, len(out))
	speeds := make([]*float64, len(out))
	for i := range out {
		ts[i] = out[i].Timestamp
		speeds[i] = out[i].Speed
	}
	for i, v := range trailingMean(ts, speeds, window) {
		out[i].SpeedSmooth = v
	}
	for i, v := range trailingMean(ts, rawGrades(out), window) {
		out[i].GradeSmooth = v
	}

	for i := range out {
		if sp := out[i].SpeedSmooth; sp != nil && *sp >= minPaceSpeedKMH {
			p := 60 / *sp
			out[i].Pace = &p
		}
		if sp, g := out[i].SpeedSmooth, out[i].GradeSmooth; sp != nil && g != nil {
			v := *sp * energyCostFactor(*g)
			out[i].GradeAdjustedSpeed = &v
		}
	}

	if accumulateDistance(out) {
		warnings = append(warnings, warnf(WarnDistanceEstimated, 0,
			"distance field absent; cumulative distance integrated from smoothed speed"))
	}
	return out, warnings
}

// accumulateElevation fills the cumulative gain/loss fields and returns the
// number of noise-filtered deltas. The reference altitude advances only when
// a delta is accepted, so sub-threshold drift keeps measuring against the
// last accepted altitude until it crosses the threshold. A discontinuity
// resets the reference to the new segment's first altitude.
func accumulateElevation(out []DerivedSample, threshold float64) int {
	var gain, loss kahanSum
	var ref float64
	haveRef := false
	filtered := 0

	for i := range out {
		s := &out[i]
		if s.Discontinuity {
			haveRef = false
		}
		if alt := s.Altitude; alt != nil {
			if !haveRef {
				ref = *alt
				haveRef = true
			} else if delta := *alt - ref; math.Abs(delta) >= threshold {
				if delta > 0 {
					gain.add(delta)
				} else {
					loss.add(-delta)
				}
				ref = *alt
			} else if delta != 0 {
				filtered++
			}
		}
		s.ElevationGainCum = gain.value()
		s.ElevationLossCum = loss.value()
	}
	return filtered
}

// trailingMean computes, per sample, the mean of present values inside the
// trailing wall-clock window (t-window, t]. An empty window yields nil. A
// non-positive window passes values through unsmoothed.
func trailingMean(ts []time.Time, values []*float64, window time.Duration) []*float64 {
	out := make([]*float64, len(values))
	if window <= 0 {
		for i, v := range values {
			if v != nil {
				u := *v
				out[i] = &u
			}
		}
		return out
	}

	sum := 0.0
	count := 0
	j := 0
	for i := range values {
		if values[i] != nil {
			sum += *values[i]
			count++
		}
		cutoff := ts[i].Add(-window)
		for j <= i && !ts[j].After(cutoff) {
			if values[j] != nil {
				sum -= *values[j]
				count--
			}
			j++
		}
		if count > 0 {
			v := sum / float64(count)
			out[i] = &v
		}
	}
	return out
}

// rawGrades returns the per-sample instantaneous grade: the canonical grade
// field when the recording carries one, otherwise altitude change over
// distance change between consecutive samples, clipped to plausible terrain.
func rawGrades(out []DerivedSample) []*float64 {
	grades := make([]*float64, len(out))
	for i := range out {
		if g := out[i].Grade; g != nil {
			v := *g
			grades[i] = &v
			continue
		}
		if i == 0 || out[i].Discontinuity {
			continue
		}
		alt, prevAlt := out[i].Altitude, out[i-1].Altitude
		dist, prevDist := out[i].Distance, out[i-1].Distance
		if alt == nil || prevAlt == nil || dist == nil || prevDist == nil {
			continue
		}
		dd := *dist - *prevDist
		if dd <= 0 {
			continue
		}
		v := math.Min(math.Max((*alt-*prevAlt)/dd*100, minDerivedGrade), maxDerivedGrade)
		grades[i] = &v
	}
	return grades
}

// energyCostFactor is the metabolic cost of running at the given grade
// relative to flat ground, from the Minetti cost-of-transport polynomial.
func energyCostFactor(gradePct float64) float64 {
	g := gradePct / 100
	cost := 155.4*math.Pow(g, 5) - 30.4*math.Pow(g, 4) - 43.3*math.Pow(g, 3) +
		46.3*g*g + 19.5*g + 3.6
	return cost / 3.6
}

// accumulateDistance fills DistanceCum, preferring the recording's own
// distance field. When the field is absent for the whole recording the
// distance is integrated from smoothed speed over elapsed time; the return
// value reports that fallback so it can be surfaced as metadata. Cumulative
// distance never decreases and accumulates straight through discontinuities.
func accumulateDistance(out []DerivedSample) bool {
	hasDistance := false
	for i := range out {
		if out[i].Distance != nil {
			hasDistance = true
			break
		}
	}

	if hasDistance {
		var base float64
		haveBase := false
		cum := 0.0
		for i := range out {
			if d := out[i].Distance; d != nil {
				if !haveBase {
					base = *d
					haveBase = true
				}
				if v := *d - base; v > cum {
					cum = v
				}
			}
			out[i].DistanceCum = cum
		}
		return false
	}

	var acc kahanSum
	for i := range out {
		if i > 0 {
			dt := out[i].Timestamp.Sub(out[i-1].Timestamp).Seconds()
			if sp := out[i-1].SpeedSmooth; sp != nil && dt > 0 {
				acc.add(*sp / 3.6 * dt)
			}
		}
		out[i].DistanceCum = acc.value()
	}
	return true
}

// kahanSum is a compensated accumulator; one running total per cumulative
// metric keeps multi-hour recordings from drifting.
type kahanSum struct {
	sum  float64
	comp float64
}

func (k *kahanSum) add(v float64) {
	y := v - k.comp
	t := k.sum + y
	k.comp = (t - k.sum) - y
	k.sum = t
}

func (k *kahanSum) value() float64 { return k.sum }
