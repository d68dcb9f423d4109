package core

import (
	"errors"
	"math"
	"testing"

	"github.com/veteranop/vetrender/model"
)

func TestBuildGridMaskMatchesDistance(t *testing.T) {
	cfg := &model.TransmitterConfig{MaxDistanceKm: 10, Resolution: 21}
	grid, err := BuildGrid(cfg)
	if err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}

	for i := range grid.DistKm {
		inRange := grid.DistKm[i] <= cfg.MaxDistanceKm
		if inRange == grid.OutOfRange[i] {
			t.Fatalf("cell %d: dist %.3f km, OutOfRange=%v", i, grid.DistKm[i], grid.OutOfRange[i])
		}
	}
}

func TestBuildGridAzimuthRangeAndDirections(t *testing.T) {
	grid, err := BuildGrid(&model.TransmitterConfig{MaxDistanceKm: 10, Resolution: 5})
	if err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}

	for i, az := range grid.AzimuthDeg {
		if az < 0 || az >= 360 {
			t.Fatalf("cell %d: azimuth %.3f outside [0,360)", i, az)
		}
	}

	// Azimuth is clockwise from north: due north is 0, due east 90,
	// due south 180, due west 270. Centre row/col index is 2.
	checks := []struct {
		row, col int
		want     float64
	}{
		{4, 2, 0},   // +y, north
		{2, 4, 90},  // +x, east
		{0, 2, 180}, // -y, south
		{2, 0, 270}, // -x, west
	}
	for _, c := range checks {
		got := grid.AzimuthDeg[grid.Index(c.row, c.col)]
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("azimuth at (%d,%d) = %.3f, want %.0f", c.row, c.col, got, c.want)
		}
	}
}

func TestBuildGridSymmetricAboutOrigin(t *testing.T) {
	grid, err := BuildGrid(&model.TransmitterConfig{MaxDistanceKm: 25, Resolution: 9})
	if err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}

	n := grid.Resolution
	centre := grid.Index(n/2, n/2)
	if grid.XKm[centre] != 0 || grid.YKm[centre] != 0 {
		t.Fatalf("centre cell offset = (%v, %v), want origin", grid.XKm[centre], grid.YKm[centre])
	}

	// Mirrored cells carry mirrored offsets and equal distances.
	a := grid.Index(1, 2)
	b := grid.Index(n-2, n-3)
	if grid.XKm[a] != -grid.XKm[b] || grid.YKm[a] != -grid.YKm[b] {
		t.Errorf("mirror offsets: (%v,%v) vs (%v,%v)", grid.XKm[a], grid.YKm[a], grid.XKm[b], grid.YKm[b])
	}
	if math.Abs(grid.DistKm[a]-grid.DistKm[b]) > 1e-12 {
		t.Errorf("mirror distances differ: %v vs %v", grid.DistKm[a], grid.DistKm[b])
	}

	axis := grid.Axis()
	if axis[0] != -25 || axis[len(axis)-1] != 25 {
		t.Errorf("axis spans [%v, %v], want [-25, 25]", axis[0], axis[len(axis)-1])
	}
}

func TestBuildGridRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  model.TransmitterConfig
	}{
		{"resolution too small", model.TransmitterConfig{MaxDistanceKm: 10, Resolution: 1}},
		{"zero max distance", model.TransmitterConfig{MaxDistanceKm: 0, Resolution: 10}},
		{"negative max distance", model.TransmitterConfig{MaxDistanceKm: -5, Resolution: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := BuildGrid(&tc.cfg); !errors.Is(err, model.ErrInvalidConfig) {
				t.Fatalf("BuildGrid error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestCornerCellsAreMasked(t *testing.T) {
	grid, err := BuildGrid(&model.TransmitterConfig{MaxDistanceKm: 10, Resolution: 5})
	if err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}
	// Corners sit at hypot(10,10) ≈ 14.1 km, beyond the 10 km circle.
	for _, idx := range []int{grid.Index(0, 0), grid.Index(0, 4), grid.Index(4, 0), grid.Index(4, 4)} {
		if !grid.OutOfRange[idx] {
			t.Errorf("corner cell %d not masked", idx)
		}
	}
}
