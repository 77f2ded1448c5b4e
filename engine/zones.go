package engine

import "sort"

// classifyZones buckets elapsed time by zone for one dimension. Each present
// sample contributes the time since the previous present sample to its zone;
// the first present sample has no prior reference and contributes zero.
// Absent samples contribute to no zone and are excluded from the total.
func classifyZones(samples []DerivedSample, boundaries []float64, dim Dimension) (ZoneDistribution, error) {
	if err := checkBoundaries(string("zones."+dim), boundaries); err != nil {
		return ZoneDistribution{}, err
	}

	dist := ZoneDistribution{
		Dimension:  dim,
		Boundaries: boundaries,
		Seconds:    make([]float64, len(boundaries)+1),
	}

	var prev *DerivedSample
	for i := range samples {
		v := dimensionValue(&samples[i], dim)
		if v == nil {
			continue
		}
		if prev != nil {
			dt := samples[i].Timestamp.Sub(prev.Timestamp).Seconds()
			dist.Seconds[zoneIndex(boundaries, *v)] += dt
			dist.TotalSeconds += dt
		}
		prev = &samples[i]
	}
	return dist, nil
}

func dimensionValue(s *DerivedSample, dim Dimension) *float64 {
	switch dim {
	case DimensionHeartRate:
		return s.HeartRate
	case DimensionPace:
		return s.Pace
	case DimensionGrade:
		return s.GradeSmooth
	default:
		return nil
	}
}

// zoneIndex is the number of boundaries at or below v, so zone i covers
// [boundaries[i-1], boundaries[i]).
func zoneIndex(boundaries []float64, v float64) int {
	return sort.Search(len(boundaries), func(i int) bool { return boundaries[i] > v })
}
