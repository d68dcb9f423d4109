package core

import (
	"math"
	"testing"

	"github.com/veteranop/vetrender/model"
)

func TestFreeSpaceLossReferenceValue(t *testing.T) {
	// FSPL(10 km, 100 MHz) = 20 log10(10) + 20 log10(100) + 32.44 = 92.44 dB.
	got := FreeSpaceLossDB(10, 100)
	want := 20*math.Log10(10) + 20*math.Log10(100) + 32.44
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("FSPL(10 km, 100 MHz) = %v, want %v", got, want)
	}
	if math.Abs(got-92.44) > 1e-9 {
		t.Fatalf("FSPL(10 km, 100 MHz) = %v, want 92.44", got)
	}
}

func TestFreeSpaceLossMonotonicInDistance(t *testing.T) {
	prev := FreeSpaceLossDB(0.02, 450)
	for d := 0.05; d <= 100; d *= 1.5 {
		cur := FreeSpaceLossDB(d, 450)
		if cur <= prev {
			t.Fatalf("FSPL not increasing: %.4f dB at %.3f km after %.4f dB", cur, d, prev)
		}
		prev = cur
	}
}

func TestFreeSpaceLossFloorsNearFieldDistance(t *testing.T) {
	floored := FreeSpaceLossDB(0.01, 100)
	for _, d := range []float64{0, 1e-9, 0.005} {
		got := FreeSpaceLossDB(d, 100)
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("FSPL(%v) = %v", d, got)
		}
		if got != floored {
			t.Errorf("FSPL(%v) = %v, want floored value %v", d, got, floored)
		}
	}
}

func TestComputePathLossZeroesMaskedCells(t *testing.T) {
	grid, err := BuildGrid(&model.TransmitterConfig{MaxDistanceKm: 10, Resolution: 7})
	if err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}

	loss := ComputePathLoss(grid, 100)
	for i := range loss {
		if grid.OutOfRange[i] {
			if loss[i] != 0 {
				t.Fatalf("masked cell %d has loss %v, want 0", i, loss[i])
			}
			continue
		}
		if loss[i] <= 0 {
			t.Fatalf("in-range cell %d has non-positive loss %v", i, loss[i])
		}
	}
}
