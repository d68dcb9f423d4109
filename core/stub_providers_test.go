package core

import (
	"context"
	"errors"
	"sync"

	"github.com/paulmach/orb"
)

// stubAntenna returns a fixed gain, or an error when failAt matches the
// requested azimuth bucket.
type stubAntenna struct {
	gain float64
	err  error
}

func (s *stubAntenna) Gain(azimuthDeg, elevationDeg float64) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.gain, nil
}

// directionalStubAntenna returns the azimuth itself as gain so tests can
// verify which direction was sampled.
type directionalStubAntenna struct{}

func (directionalStubAntenna) Gain(azimuthDeg, elevationDeg float64) (float64, error) {
	return azimuthDeg, nil
}

// stubElevation answers every point with a fixed elevation, optionally
// failing for a chosen set of first-point azimuth rays. It records each
// batch it served.
type stubElevation struct {
	mu        sync.Mutex
	elevation float64
	failCalls map[int]bool // fail the nth call (0-based)
	calls     int
	batches   [][]orb.Point
}

var errStubElevation = errors.New("stub elevation outage")

func (s *stubElevation) Elevations(ctx context.Context, points []orb.Point) ([]float64, error) {
	s.mu.Lock()
	call := s.calls
	s.calls++
	s.batches = append(s.batches, points)
	fail := s.failCalls[call]
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fail {
		return nil, errStubElevation
	}
	out := make([]float64, len(points))
	for i := range out {
		out[i] = s.elevation
	}
	return out, nil
}

func (s *stubElevation) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// stubDiffraction returns a fixed loss and records the inputs it saw.
type stubDiffraction struct {
	mu       sync.Mutex
	loss     float64
	profiles [][]float64
	axes     [][]float64
}

func (s *stubDiffraction) Loss(txHeightM, rxHeightM float64, profileM []float64, frequencyMHz float64, distanceAxisKm []float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = append(s.profiles, append([]float64(nil), profileM...))
	s.axes = append(s.axes, append([]float64(nil), distanceAxisKm...))
	return s.loss
}

func identityEIRP(erp float64) float64 { return erp + 2.15 }
