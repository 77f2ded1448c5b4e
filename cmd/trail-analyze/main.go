package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"trail-engine/engine"
	"trail-engine/export"
	"trail-engine/fitrecords"
)

func main() {
	var (
		fitPath    = flag.String("fit", "", "Path to input .fit file")
		outDir     = flag.String("out", "", "Output directory")
		configPath = flag.String("config", "", "Optional YAML config file")
		format     = flag.String("format", "parquet", "Derived sample format: parquet|csv")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --fit input.fit --out outdir [--config engine.yaml] [--format parquet|csv]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	if strings.TrimSpace(*fitPath) == "" || strings.TrimSpace(*outDir) == "" {
		flag.Usage()
		os.Exit(2)
	}
	fmtName := strings.ToLower(strings.TrimSpace(*format))
	if fmtName != "parquet" && fmtName != "csv" {
		log.Fatal().Str("format", *format).Msg("unsupported format (expected parquet|csv)")
	}

	cfg := engine.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = engine.LoadConfig(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("config", *configPath).Msg("load config")
		}
	}

	raw, err := fitrecords.Load(*fitPath)
	if err != nil {
		log.Fatal().Err(err).Str("fit", *fitPath).Msg("decode recording")
	}
	log.Info().Int("records", len(raw)).Msg("recording decoded")

	result, err := engine.Analyze(raw, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("analyze recording")
	}
	for _, w := range result.Warnings {
		log.Warn().Str("code", string(w.Code)).Int("count", w.Count).Msg(w.Message)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("out", *outDir).Msg("create output directory")
	}

	samplesPath := filepath.Join(*outDir, "derived_samples."+fmtName)
	switch fmtName {
	case "csv":
		err = export.WriteDerivedCSV(samplesPath, result.Samples)
	default:
		err = export.WriteDerivedParquet(samplesPath, result.Samples)
	}
	if err != nil {
		log.Fatal().Err(err).Str("path", samplesPath).Msg("write derived samples")
	}

	analysisPath := filepath.Join(*outDir, "analysis.json")
	if err := export.WriteAnalysisJSON(analysisPath, result); err != nil {
		log.Fatal().Err(err).Str("path", analysisPath).Msg("write analysis")
	}

	log.Info().
		Str("samples", samplesPath).
		Str("analysis", analysisPath).
		Float64("distance_m", result.Summary.DistanceM).
		Float64("elevation_gain_m", result.Summary.ElevationGainM).
		Msg("analysis complete")
}
