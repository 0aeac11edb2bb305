package visualization

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestSaveLayoutPlot(t *testing.T) {
	ring := make([]r3.Vec, 8)
	names := make([]string, len(ring))
	for i := range ring {
		a := float64(i) * math.Pi / 4
		ring[i] = r3.Vec{X: math.Cos(a), Y: math.Sin(a)}
		names[i] = string(rune('a' + i))
	}

	path := filepath.Join(t.TempDir(), "plots", "layout.png")
	err := SaveLayoutPlot(path, "test layout",
		Layout{Name: "source", Positions: ring, Labels: names},
		Layout{Name: "destination", Positions: []r3.Vec{{}, {X: 0.5, Y: 0.5}}},
	)
	if err != nil {
		t.Fatalf("SaveLayoutPlot failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("plot not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("plot file is empty")
	}
}

func TestSaveLayoutPlotNeedsLayouts(t *testing.T) {
	if err := SaveLayoutPlot(filepath.Join(t.TempDir(), "x.png"), "empty"); err == nil {
		t.Error("expected an error without layouts")
	}
}
