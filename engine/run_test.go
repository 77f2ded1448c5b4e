package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completeRecording builds a gap-free 1 Hz recording with every canonical
// field present.
func completeRecording(n int) []RawSample {
	samples := make([]RawSample, 0, n)
	for i := 0; i < n; i++ {
		samples = append(samples, rawAt(time.Duration(i)*time.Second, map[string]float64{
			"heart_rate":        120 + float64(i%30),
			"enhanced_speed":    3.0,
			"enhanced_altitude": 250,
			"distance":          float64(i) * 3,
			"cadence":           170,
			"grade":             2,
		}))
	}
	return samples
}

func TestAnalyzeRoundTripCleanRecording(t *testing.T) {
	res, err := Analyze(completeRecording(60), DefaultConfig())
	require.NoError(t, err)
	require.Len(t, res.Samples, 60)
	assert.Empty(t, res.Warnings, "clean input produces zero data-quality warnings")

	for _, s := range res.Samples {
		assert.Zero(t, s.Interpolated)
		assert.False(t, s.Discontinuity)
	}

	assert.Equal(t, 59.0, res.Summary.ElapsedSeconds)
	assert.InDelta(t, 177.0, res.Summary.DistanceM, 1e-9)
	assert.False(t, res.Summary.DistanceEstimated)

	require.NotNil(t, res.Summary.HeartRate)
	assert.Equal(t, 60, res.Summary.HeartRate.Count)
	assert.Equal(t, 120.0, res.Summary.HeartRate.Min)
	assert.Equal(t, 149.0, res.Summary.HeartRate.Max)

	require.NotNil(t, res.Summary.Speed)
	assert.InDelta(t, 10.8, res.Summary.Speed.Mean, 1e-9)

	require.Len(t, res.Zones, 3)
	hr := res.Zones[DimensionHeartRate]
	assert.InDelta(t, 59.0, hr.TotalSeconds, 1e-9, "every sample has heart rate, so all elapsed time is classified")
}

func TestAnalyzeEmptyInput(t *testing.T) {
	res, err := Analyze(nil, DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, res.Samples)
	assert.Nil(t, res.Summary.HeartRate)
	assert.Nil(t, res.Summary.Speed)
	assert.Zero(t, res.Summary.ElapsedSeconds)
	require.Len(t, res.Zones, 3)
	assert.Zero(t, res.Zones[DimensionHeartRate].TotalSeconds)
}

func TestAnalyzeInvalidConfigHaltsBeforeProcessing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Zones.Grade = []float64{10, -10}
	res, err := Analyze(completeRecording(5), cfg)
	require.Error(t, err)
	assert.Nil(t, res, "no partial results on configuration errors")
	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestAnalyzeAbsentHeartRate(t *testing.T) {
	samples := completeRecording(20)
	for i := range samples {
		delete(samples[i].Fields, "heart_rate")
	}
	res, err := Analyze(samples, DefaultConfig())
	require.NoError(t, err)

	assert.Nil(t, res.Summary.HeartRate, "absent-summary, not zero")
	hr := res.Zones[DimensionHeartRate]
	assert.Zero(t, hr.TotalSeconds)
	for _, s := range hr.Seconds {
		assert.Zero(t, s)
	}
	assert.True(t, hasWarning(res.Warnings, WarnFieldMissing))
}

func TestAnalyzeDiscontinuityKeepsDistanceTimeBase(t *testing.T) {
	samples := []RawSample{
		rawAt(0, map[string]float64{"distance": 0, "enhanced_altitude": 100}),
		rawAt(time.Second, map[string]float64{"distance": 3, "enhanced_altitude": 100}),
		rawAt(61*time.Second, map[string]float64{"distance": 200, "enhanced_altitude": 140}),
		rawAt(62*time.Second, map[string]float64{"distance": 203, "enhanced_altitude": 142}),
	}
	res, err := Analyze(samples, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, res.Samples, 4)

	assert.True(t, res.Samples[2].Discontinuity)
	assert.Equal(t, 62.0, res.Summary.ElapsedSeconds, "elapsed time runs through the gap")
	assert.InDelta(t, 203.0, res.Summary.DistanceM, 1e-9, "distance accumulates through the gap")
	assert.InDelta(t, 2.0, res.Summary.ElevationGainM, 1e-9, "elevation reference reset, only post-gap climb counts")
}

func TestAnalyzeConcurrentInvocationsIndependent(t *testing.T) {
	samples := completeRecording(200)
	cfg := DefaultConfig()

	results := make(chan *AnalysisResult, 8)
	for i := 0; i < 8; i++ {
		go func() {
			res, err := Analyze(samples, cfg)
			assert.NoError(t, err)
			results <- res
		}()
	}
	first := <-results
	for i := 1; i < 8; i++ {
		res := <-results
		assert.Equal(t, first.Summary, res.Summary)
		assert.Equal(t, first.Zones, res.Zones)
	}
}
