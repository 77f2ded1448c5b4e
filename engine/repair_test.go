package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func canonAt(offset time.Duration, speed *float64) CanonicalSample {
	return CanonicalSample{Timestamp: t0.Add(offset), Speed: speed}
}

func fptr(v float64) *float64 { return &v }

func TestRepairSmallGapNoIntermediateInterval(t *testing.T) {
	// Two samples 3s apart with max gap 5s: the only delta is the gap
	// itself, so there is nothing to fill and no discontinuity.
	out, warnings := repairGaps([]CanonicalSample{
		canonAt(0, fptr(10)),
		canonAt(3*time.Second, fptr(12)),
	}, DefaultConfig())
	require.Len(t, out, 2)
	assert.False(t, out[1].Discontinuity)
	assert.Zero(t, out[1].Interpolated)
	assert.Empty(t, warnings)
}

func TestRepairDiscontinuity(t *testing.T) {
	out, _ := repairGaps([]CanonicalSample{
		canonAt(0, fptr(10)),
		canonAt(30*time.Second, fptr(12)),
	}, DefaultConfig())
	require.Len(t, out, 2, "no synthesis across a discontinuity")
	assert.True(t, out[1].Discontinuity)
}

func TestRepairFillsSmallGap(t *testing.T) {
	out, _ := repairGaps([]CanonicalSample{
		canonAt(0, fptr(10)),
		canonAt(1*time.Second, fptr(10)),
		canonAt(2*time.Second, fptr(10)),
		canonAt(5*time.Second, fptr(16)),
	}, DefaultConfig())
	require.Len(t, out, 6, "samples at 3s and 4s synthesized at the modal 1s interval")

	assert.Equal(t, t0.Add(3*time.Second), out[3].Timestamp)
	assert.Equal(t, t0.Add(4*time.Second), out[4].Timestamp)
	assert.True(t, out[3].Interpolated.Has(FieldSpeed))
	assert.True(t, out[4].Interpolated.Has(FieldSpeed))
	require.NotNil(t, out[3].Speed)
	assert.InDelta(t, 12.0, *out[3].Speed, 1e-9)
	assert.InDelta(t, 14.0, *out[4].Speed, 1e-9)
	assert.False(t, out[5].Discontinuity)
}

func TestRepairInterpolationNeedsBothBounds(t *testing.T) {
	samples := []CanonicalSample{
		canonAt(0, fptr(10)),
		canonAt(1*time.Second, fptr(10)),
		{Timestamp: t0.Add(4 * time.Second)}, // speed absent on the right bound
	}
	out, _ := repairGaps(samples, DefaultConfig())
	require.Len(t, out, 5)
	assert.Nil(t, out[2].Speed, "one bound missing the field leaves it absent")
	assert.Zero(t, out[2].Interpolated)
}

func TestRepairCarryPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GapFill = GapFillCarry
	out, _ := repairGaps([]CanonicalSample{
		canonAt(0, fptr(10)),
		canonAt(1*time.Second, fptr(10)),
		canonAt(4*time.Second, fptr(16)),
	}, cfg)
	require.Len(t, out, 5)
	require.NotNil(t, out[2].Speed)
	assert.Equal(t, 10.0, *out[2].Speed, "carry-forward keeps the left bound value")
	assert.True(t, out[2].Interpolated.Has(FieldSpeed))
}

func TestRepairNonePolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GapFill = GapFillNone
	out, _ := repairGaps([]CanonicalSample{
		canonAt(0, fptr(10)),
		canonAt(1*time.Second, fptr(10)),
		canonAt(4*time.Second, fptr(16)),
	}, cfg)
	require.Len(t, out, 5)
	assert.Nil(t, out[2].Speed)
}

func TestRepairDeduplicatesKeepingFirst(t *testing.T) {
	out, warnings := repairGaps([]CanonicalSample{
		canonAt(0, fptr(10)),
		canonAt(time.Second, fptr(11)),
		canonAt(time.Second, fptr(99)),
		canonAt(2*time.Second, fptr(12)),
	}, DefaultConfig())
	require.Len(t, out, 3)
	assert.Equal(t, 11.0, *out[1].Speed)
	require.True(t, hasWarning(warnings, WarnDuplicateDropped))
}

func TestRepairShortSequencesPassThrough(t *testing.T) {
	out, warnings := repairGaps(nil, DefaultConfig())
	assert.Empty(t, out)
	assert.Empty(t, warnings)

	out, _ = repairGaps([]CanonicalSample{canonAt(0, fptr(10))}, DefaultConfig())
	require.Len(t, out, 1)
	assert.Equal(t, t0, out[0].Timestamp)
}

func TestRepairNeverRemovesSamples(t *testing.T) {
	// Repair only adds, outside the documented dedup case.
	in := make([]CanonicalSample, 0, 40)
	offset := time.Duration(0)
	for i := 0; i < 40; i++ {
		in = append(in, canonAt(offset, fptr(float64(i))))
		if i%7 == 3 {
			offset += 4 * time.Second
		} else {
			offset += time.Second
		}
	}
	out, _ := repairGaps(in, DefaultConfig())
	assert.GreaterOrEqual(t, len(out), len(in))
	for i := 1; i < len(out); i++ {
		assert.True(t, out[i].Timestamp.After(out[i-1].Timestamp), "output strictly increasing")
	}
}

func TestModalIntervalTieBreaksSmallest(t *testing.T) {
	samples := []CanonicalSample{
		canonAt(0, nil),
		canonAt(1*time.Second, nil),
		canonAt(3*time.Second, nil),
		canonAt(4*time.Second, nil),
		canonAt(6*time.Second, nil),
	}
	// deltas 1s,2s,1s,2s: tied counts, smallest interval wins
	assert.Equal(t, time.Second, modalInterval(samples))
}
