package model

import (
	"errors"
	"testing"
)

func validConfig() TransmitterConfig {
	return TransmitterConfig{
		LatitudeDeg:   40,
		LongitudeDeg:  -105,
		ERPdBm:        30,
		FrequencyMHz:  100,
		MaxDistanceKm: 10,
		Resolution:    5,
	}
}

func TestValidateBounds(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*TransmitterConfig)
		ok     bool
	}{
		{"baseline", func(c *TransmitterConfig) {}, true},
		{"resolution too small", func(c *TransmitterConfig) { c.Resolution = 1 }, false},
		{"zero max distance", func(c *TransmitterConfig) { c.MaxDistanceKm = 0 }, false},
		{"zero frequency", func(c *TransmitterConfig) { c.FrequencyMHz = 0 }, false},
		{"latitude out of range", func(c *TransmitterConfig) { c.LatitudeDeg = 91 }, false},
		{"longitude out of range", func(c *TransmitterConfig) { c.LongitudeDeg = -181 }, false},
		{"terrain defaults pending", func(c *TransmitterConfig) { c.UseTerrain = true }, true},
		{"single-sample lattice", func(c *TransmitterConfig) {
			c.UseTerrain = true
			c.AzimuthSamples = 4
			c.DistanceSamples = 1
		}, true},
		{"negative azimuth samples", func(c *TransmitterConfig) {
			c.UseTerrain = true
			c.AzimuthSamples = -1
		}, false},
		{"negative distance samples", func(c *TransmitterConfig) {
			c.UseTerrain = true
			c.DistanceSamples = -1
		}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if !tc.ok {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("error = %v, want ErrInvalidConfig", err)
				}
			}
		})
	}
}

func TestWithTerrainDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.UseTerrain = true

	got := cfg.WithTerrainDefaults()
	if got.AzimuthSamples != DefaultAzimuthSamples || got.DistanceSamples != DefaultDistanceSamples {
		t.Fatalf("defaults = %d/%d, want %d/%d",
			got.AzimuthSamples, got.DistanceSamples, DefaultAzimuthSamples, DefaultDistanceSamples)
	}

	// Explicit counts survive untouched, including the one-sample minimum.
	cfg.AzimuthSamples = 4
	cfg.DistanceSamples = 1
	got = cfg.WithTerrainDefaults()
	if got.AzimuthSamples != 4 || got.DistanceSamples != 1 {
		t.Fatalf("explicit counts changed: %d/%d", got.AzimuthSamples, got.DistanceSamples)
	}
	if cfg.AzimuthSamples != 4 {
		t.Fatal("receiver modified")
	}
}

func TestKeyIdentity(t *testing.T) {
	a := validConfig()
	b := validConfig()
	if a.Key() != b.Key() {
		t.Fatal("identical configs must share a key")
	}

	b.ERPdBm = 50
	if a.Key() == b.Key() {
		t.Fatal("power change must change the key")
	}

	c := validConfig()
	c.UseTerrain = true
	if a.Key() == c.Key() {
		t.Fatal("terrain toggle must change the key")
	}
}
