// Package export writes analysis artifacts for the presentation layer: the
// enriched sample series as parquet or CSV and the full analysis result as
// JSON. It performs no computation of its own.
package export

import (
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"trail-engine/engine"
)

type derivedParquetRow struct {
	TSUTCISO           string  `parquet:"name=ts_utc_iso, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ElapsedS           float64 `parquet:"name=elapsed_s, type=DOUBLE"`
	HeartRateBPM       float64 `parquet:"name=heart_rate_bpm, type=DOUBLE"`
	SpeedKMH           float64 `parquet:"name=speed_kmh, type=DOUBLE"`
	AltitudeM          float64 `parquet:"name=altitude_m, type=DOUBLE"`
	DistanceM          float64 `parquet:"name=distance_m, type=DOUBLE"`
	CadenceSPM         float64 `parquet:"name=cadence_spm, type=DOUBLE"`
	GradePct           float64 `parquet:"name=grade_pct, type=DOUBLE"`
	SpeedSmoothKMH     float64 `parquet:"name=speed_smooth_kmh, type=DOUBLE"`
	GradeSmoothPct     float64 `parquet:"name=grade_smooth_pct, type=DOUBLE"`
	PaceMinKM          float64 `parquet:"name=pace_min_km, type=DOUBLE"`
	GradeAdjSpeedKMH   float64 `parquet:"name=grade_adj_speed_kmh, type=DOUBLE"`
	ElevationGainCumM  float64 `parquet:"name=elevation_gain_cum_m, type=DOUBLE"`
	ElevationLossCumM  float64 `parquet:"name=elevation_loss_cum_m, type=DOUBLE"`
	DistanceCumM       float64 `parquet:"name=distance_cum_m, type=DOUBLE"`
	InterpolatedFields int32   `parquet:"name=interpolated_fields, type=INT32"`
	Discontinuity      bool    `parquet:"name=discontinuity, type=BOOLEAN"`
}

// WriteDerivedParquet writes the derived series as snappy-compressed parquet.
// Absent optional fields become NaN, matching columnar-reader conventions.
func WriteDerivedParquet(path string, samples []engine.DerivedSample) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, new(derivedParquetRow), 4)
	if err != nil {
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, s := range samples {
		row := derivedParquetRow{
			TSUTCISO:           s.Timestamp.UTC().Format(time.RFC3339),
			ElapsedS:           s.ElapsedS,
			HeartRateBPM:       valueOrNaN(s.HeartRate),
			SpeedKMH:           valueOrNaN(s.Speed),
			AltitudeM:          valueOrNaN(s.Altitude),
			DistanceM:          valueOrNaN(s.Distance),
			CadenceSPM:         valueOrNaN(s.Cadence),
			GradePct:           valueOrNaN(s.Grade),
			SpeedSmoothKMH:     valueOrNaN(s.SpeedSmooth),
			GradeSmoothPct:     valueOrNaN(s.GradeSmooth),
			PaceMinKM:          valueOrNaN(s.Pace),
			GradeAdjSpeedKMH:   valueOrNaN(s.GradeAdjustedSpeed),
			ElevationGainCumM:  s.ElevationGainCum,
			ElevationLossCumM:  s.ElevationLossCum,
			DistanceCumM:       s.DistanceCum,
			InterpolatedFields: int32(s.Interpolated),
			Discontinuity:      s.Discontinuity,
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

// WriteDerivedCSV writes the derived series as CSV with one header row.
// Absent optional fields become empty cells.
func WriteDerivedCSV(path string, samples []engine.DerivedSample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"ts_utc_iso", "elapsed_s", "heart_rate_bpm", "speed_kmh", "altitude_m", "distance_m",
		"cadence_spm", "grade_pct", "speed_smooth_kmh", "grade_smooth_pct", "pace_min_km",
		"grade_adj_speed_kmh", "elevation_gain_cum_m", "elevation_loss_cum_m", "distance_cum_m",
		"interpolated_fields", "discontinuity",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			s.Timestamp.UTC().Format(time.RFC3339),
			formatFloat(s.ElapsedS),
			formatFloatPtr(s.HeartRate),
			formatFloatPtr(s.Speed),
			formatFloatPtr(s.Altitude),
			formatFloatPtr(s.Distance),
			formatFloatPtr(s.Cadence),
			formatFloatPtr(s.Grade),
			formatFloatPtr(s.SpeedSmooth),
			formatFloatPtr(s.GradeSmooth),
			formatFloatPtr(s.Pace),
			formatFloatPtr(s.GradeAdjustedSpeed),
			formatFloat(s.ElevationGainCum),
			formatFloat(s.ElevationLossCum),
			formatFloat(s.DistanceCum),
			strconv.Itoa(int(s.Interpolated)),
			strconv.FormatBool(s.Discontinuity),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteAnalysisJSON writes the analysis result, samples excluded, as indented
// JSON. The series itself goes to parquet/CSV where columnar tools read it.
func WriteAnalysisJSON(path string, res *engine.AnalysisResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	trimmed := *res
	trimmed.Samples = nil
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(trimmed)
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
