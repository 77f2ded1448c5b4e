package engine

// Analyze runs the full pipeline over one recording: normalize, gap-repair,
// derive, classify, aggregate. It is a pure function of (raw, cfg) with no
// shared state, so callers may run analyses concurrently. The only error
// condition is invalid configuration, reported before any sample processing;
// data anomalies are repaired or surfaced as warnings on the result instead.
func Analyze(raw []RawSample, cfg Config) (*AnalysisResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	canonical, warnings := normalizeSamples(raw, cfg)
	regular, repairWarnings := repairGaps(canonical, cfg)
	warnings = append(warnings, repairWarnings...)
	derived, deriveWarnings := deriveMetrics(regular, cfg)
	warnings = append(warnings, deriveWarnings...)

	zones := make(map[Dimension]ZoneDistribution, 3)
	for dim, boundaries := range map[Dimension][]float64{
		DimensionHeartRate: cfg.Zones.HeartRate,
		DimensionPace:      cfg.Zones.Pace,
		DimensionGrade:     cfg.Zones.Grade,
	} {
		dist, err := classifyZones(derived, boundaries, dim)
		if err != nil {
			return nil, err
		}
		zones[dim] = dist
	}

	return aggregate(derived, zones, warnings), nil
}
