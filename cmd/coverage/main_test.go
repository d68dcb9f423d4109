package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/veteranop/vetrender/model"
)

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.json")
	doc := `{"LatitudeDeg":40.0,"LongitudeDeg":-105.0,"ERPdBm":30,"FrequencyMHz":450,"AntennaHeightM":30,"MaxDistanceKm":20,"Resolution":101,"UseTerrain":true}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}

	cfg, err := loadScenario(path)
	if err != nil {
		t.Fatalf("loadScenario: %v", err)
	}
	if cfg.FrequencyMHz != 450 {
		t.Fatalf("frequency = %v, want 450", cfg.FrequencyMHz)
	}
	if !cfg.UseTerrain {
		t.Fatal("UseTerrain not parsed")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("scenario should validate: %v", err)
	}
}

func TestLoadScenarioErrors(t *testing.T) {
	if _, err := loadScenario(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := loadScenario(path); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestWriteOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field.json")
	doc := output{
		Config:     model.TransmitterConfig{Resolution: 3, MaxDistanceKm: 5, FrequencyMHz: 100},
		Resolution: 3,
		AxisKm:     []float64{-5, 0, 5},
		PowerDBm:   []float64{-999, -70, -999},
		EIRPdBm:    32.15,
	}
	if err := writeOutput(path, doc); err != nil {
		t.Fatalf("writeOutput: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var got output
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Resolution != 3 || len(got.PowerDBm) != 3 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.TerrainLossDB != nil {
		t.Fatal("terrain loss should be omitted when absent")
	}
}
