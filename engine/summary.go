package engine

// aggregate composes the final analysis result. It computes per-field
// statistics over present values only and copies recording totals from the
// final cumulative sample; no values are transformed here.
func aggregate(derived []DerivedSample, zones map[Dimension]ZoneDistribution, warnings []Warning) *AnalysisResult {
	res := &AnalysisResult{
		Samples:  derived,
		Zones:    zones,
		Warnings: warnings,
	}

	res.Summary.HeartRate = fieldStats(derived, func(s *DerivedSample) *float64 { return s.HeartRate })
	res.Summary.Speed = fieldStats(derived, func(s *DerivedSample) *float64 { return s.Speed })
	res.Summary.Altitude = fieldStats(derived, func(s *DerivedSample) *float64 { return s.Altitude })
	res.Summary.Cadence = fieldStats(derived, func(s *DerivedSample) *float64 { return s.Cadence })
	res.Summary.Grade = fieldStats(derived, func(s *DerivedSample) *float64 { return s.GradeSmooth })
	res.Summary.Pace = fieldStats(derived, func(s *DerivedSample) *float64 { return s.Pace })

	if len(derived) > 0 {
		last := derived[len(derived)-1]
		res.Summary.ElapsedSeconds = last.ElapsedS
		res.Summary.DistanceM = last.DistanceCum
		res.Summary.ElevationGainM = last.ElevationGainCum
		res.Summary.ElevationLossM = last.ElevationLossCum
	}
	for _, w := range warnings {
		if w.Code == WarnDistanceEstimated {
			res.Summary.DistanceEstimated = true
		}
	}
	return res
}

// fieldStats summarizes present values; nil when the field has no data,
// distinguishing "no data" from "all zero".
func fieldStats(derived []DerivedSample, value func(*DerivedSample) *float64) *FieldStats {
	var stats FieldStats
	sum := 0.0
	for i := range derived {
		v := value(&derived[i])
		if v == nil {
			continue
		}
		if stats.Count == 0 || *v < stats.Min {
			stats.Min = *v
		}
		if stats.Count == 0 || *v > stats.Max {
			stats.Max = *v
		}
		sum += *v
		stats.Count++
	}
	if stats.Count == 0 {
		return nil
	}
	stats.Mean = sum / float64(stats.Count)
	return &stats
}
