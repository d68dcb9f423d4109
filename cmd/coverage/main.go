package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/veteranop/vetrender/core"
	"github.com/veteranop/vetrender/internal/logging"
	"github.com/veteranop/vetrender/model"
	"github.com/veteranop/vetrender/pkg/antenna"
	"github.com/veteranop/vetrender/pkg/elevation"
	"github.com/veteranop/vetrender/pkg/rf"
)

// output is the JSON document written for one computed field.
type output struct {
	Config model.TransmitterConfig `json:"Config"`

	Resolution    int       `json:"Resolution"`
	AxisKm        []float64 `json:"AxisKm"`
	PowerDBm      []float64 `json:"PowerDBm"`
	TerrainLossDB []float64 `json:"TerrainLossDB,omitempty"`

	Degraded bool    `json:"Degraded"`
	EIRPdBm  float64 `json:"EIRPdBm"`
}

func main() {
	scenarioPath := flag.String("scenario", "", "Path to a JSON transmitter scenario file (required)")
	outPath := flag.String("out", "", "Destination for the computed field JSON; stdout when empty")
	patternPath := flag.String("antenna-pattern", "", "Path to an antenna pattern XML file; omit for an isotropic antenna")
	elevationURL := flag.String("elevation-url", "https://api.open-elevation.com", "Base URL of the Open-Elevation service")
	workers := flag.Int("workers", 4, "Concurrent elevation ray fetches")
	timeout := flag.Duration("timeout", 5*time.Minute, "Overall computation deadline")
	flag.Parse()

	log := logging.NewFromEnv()

	if *scenarioPath == "" {
		fmt.Fprintln(os.Stderr, "usage: coverage -scenario scenario.json [-out field.json]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := loadScenario(*scenarioPath)
	if err != nil {
		fatal(log, "failed to load scenario", err)
	}

	pattern := antenna.NewOmni()
	if *patternPath != "" {
		pattern, err = antenna.LoadXML(*patternPath)
		if err != nil {
			fatal(log, "failed to load antenna pattern", err)
		}
	}

	elev := elevation.NewClient(elevation.WithBaseURL(*elevationURL))

	engine := core.NewEngine(pattern, elev, rf.KnifeEdgeModel{}, rf.ERPToEIRP,
		core.WithLogger(log),
		core.WithElevationWorkers(*workers),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	res, err := engine.Compute(ctx, cfg)
	if err != nil {
		fatal(log, "coverage computation failed", err)
	}

	doc := output{
		Config:        res.Config,
		Resolution:    res.Grid.Resolution,
		AxisKm:        res.Grid.Axis(),
		PowerDBm:      res.PowerDBm,
		TerrainLossDB: res.TerrainLossDB,
		Degraded:      res.Degraded,
		EIRPdBm:       res.EIRPdBm,
	}

	if err := writeOutput(*outPath, doc); err != nil {
		fatal(log, "failed to write output", err)
	}

	if res.Degraded {
		log.Warn(ctx, "field computed with degraded terrain rays")
	}
}

func loadScenario(path string) (model.TransmitterConfig, error) {
	var cfg model.TransmitterConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func writeOutput(path string, doc output) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func fatal(log logging.Logger, msg string, err error) {
	log.Error(context.Background(), msg, logging.String("error", err.Error()))
	os.Exit(1)
}
