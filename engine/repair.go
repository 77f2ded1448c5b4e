package engine

import "time"

// repairGaps regularizes the canonical sequence: duplicate timestamps are
// dropped (first occurrence wins), small gaps are filled with synthetic
// samples at the recording's modal interval, and gaps beyond MaxGapSeconds
// are marked as discontinuities on the next real sample. The output is
// strictly increasing in timestamp.
func repairGaps(samples []CanonicalSample, cfg Config) ([]RegularSample, []Warning) {
	var warnings []Warning
	if len(samples) == 0 {
		return nil, nil
	}

	deduped := make([]CanonicalSample, 0, len(samples))
	dropped := 0
	for i, s := range samples {
		if i > 0 && !s.Timestamp.After(deduped[len(deduped)-1].Timestamp) {
			dropped++
			continue
		}
		deduped = append(deduped, s)
	}
	if dropped > 0 {
		warnings = append(warnings, warnf(WarnDuplicateDropped, dropped,
			"%d duplicate-timestamp samples dropped, first occurrence kept", dropped))
	}

	if len(deduped) <= 1 {
		out := make([]RegularSample, 0, len(deduped))
		for _, s := range deduped {
			out = append(out, RegularSample{CanonicalSample: s})
		}
		return out, warnings
	}

	modal := modalInterval(deduped)
	maxGap := time.Duration(cfg.MaxGapSeconds * float64(time.Second))

	out := make([]RegularSample, 0, len(deduped))
	out = append(out, RegularSample{CanonicalSample: deduped[0]})
	for i := 1; i < len(deduped); i++ {
		prev, next := deduped[i-1], deduped[i]
		gap := next.Timestamp.Sub(prev.Timestamp)

		if gap > maxGap {
			out = append(out, RegularSample{CanonicalSample: next, Discontinuity: true})
			continue
		}
		if modal > 0 && gap > modal {
			for ts := prev.Timestamp.Add(modal); ts.Before(next.Timestamp); ts = ts.Add(modal) {
				out = append(out, synthesize(prev, next, ts, cfg.GapFill))
			}
		}
		out = append(out, RegularSample{CanonicalSample: next})
	}
	return out, warnings
}

// modalInterval is the most frequent delta between consecutive timestamps,
// smallest value winning a tie.
func modalInterval(samples []CanonicalSample) time.Duration {
	counts := make(map[time.Duration]int)
	for i := 1; i < len(samples); i++ {
		counts[samples[i].Timestamp.Sub(samples[i-1].Timestamp)]++
	}
	var best time.Duration
	bestCount := 0
	for d, n := range counts {
		if n > bestCount || (n == bestCount && d < best) {
			best = d
			bestCount = n
		}
	}
	return best
}

// synthesize builds one synthetic sample at ts between the two bounding real
// samples. Field values follow the configured fill policy; a field absent on
// either bound under interpolation stays absent.
func synthesize(prev, next CanonicalSample, ts time.Time, policy string) RegularSample {
	s := RegularSample{CanonicalSample: CanonicalSample{Timestamp: ts}}
	if policy == GapFillNone {
		return s
	}
	frac := float64(ts.Sub(prev.Timestamp)) / float64(next.Timestamp.Sub(prev.Timestamp))
	for f := Field(0); f < fieldCount; f++ {
		pv := prev.field(f)
		if pv == nil {
			continue
		}
		switch policy {
		case GapFillCarry:
			v := *pv
			s.setField(f, &v)
			s.Interpolated.add(f)
		default: // interpolate
			nv := next.field(f)
			if nv == nil {
				continue
			}
			v := *pv + (*nv-*pv)*frac
			s.setField(f, &v)
			s.Interpolated.add(f)
		}
	}
	return s
}
