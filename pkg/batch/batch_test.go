package batch

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"trackinterp/internal/models"
	"trackinterp/pkg/electrodes"
	"trackinterp/pkg/interpolation"
	"trackinterp/pkg/tracks"
)

func TestMain(m *testing.M) {
	interpolation.SetLogger(nil)
	os.Exit(m.Run())
}

func createAxes(t *testing.T, dir string) string {
	t.Helper()
	set := models.NewPointSet([]models.Point{
		{Name: "Xp", Pos: r3.Vec{X: 1}},
		{Name: "Xm", Pos: r3.Vec{X: -1}},
		{Name: "Yp", Pos: r3.Vec{Y: 1}},
		{Name: "Ym", Pos: r3.Vec{Y: -1}},
		{Name: "Zp", Pos: r3.Vec{Z: 1}},
		{Name: "Zm", Pos: r3.Vec{Z: -1}},
	})
	path := filepath.Join(dir, "axes.xyz")
	if err := electrodes.WriteFile(path, set); err != nil {
		t.Fatalf("writing layout: %v", err)
	}
	return path
}

func createRecording(t *testing.T, path string, frames int) {
	t.Helper()
	data := mat.NewDense(frames, 6, nil)
	for f := 0; f < frames; f++ {
		scale := float64(f + 1)
		data.SetRow(f, []float64{scale, -scale, 2 * scale, -2 * scale, 0, 0})
	}
	ts := &models.TimeSeries{Data: data, Auxiliary: make([]bool, 6)}
	if err := tracks.Write(path, ts); err != nil {
		t.Fatalf("writing recording: %v", err)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	layout := createAxes(t, dir)

	good1 := filepath.Join(dir, "first.ep")
	good2 := filepath.Join(dir, "second.ep")
	createRecording(t, good1, 3)
	createRecording(t, good2, 3)
	missing := filepath.Join(dir, "missing.ep")

	var reported []string
	sink := interpolation.ErrorSinkFunc(func(title, message string) {
		reported = append(reported, title)
	})

	r := NewRunner(interpolation.Options{NumWorkers: 2}, "copy", "", sink)
	spec := interpolation.PointSpec{Path: layout}
	if err := r.Engine().Set(interpolation.SphericalSpline, 2, interpolation.TargetNormalized, spec, spec, "", sink); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	results, summary := r.Run([]string{good1, missing, good2})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[1].Err == nil {
		t.Error("missing file should fail")
	}
	if len(reported) != 1 {
		t.Errorf("expected one reported failure, got %d", len(reported))
	}

	for _, i := range []int{0, 2} {
		res := results[i]
		if res.Err != nil {
			t.Fatalf("%s failed: %v", res.Input, res.Err)
		}
		if _, err := os.Stat(res.Output); err != nil {
			t.Errorf("output %s not written: %v", res.Output, err)
		}
		// Frame t has GFP (t+1)*sqrt(10/6)
		unit := math.Sqrt(10.0 / 6)
		got := []float64{float64(res.Frames), res.GFPMean, res.GFPStdDev}
		want := []float64{3, 2 * unit, unit}
		if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
			t.Errorf("%s statistics mismatch (-want +got):\n%s", res.Input, diff)
		}
	}

	if summary.Files != 3 || summary.Failed != 1 || summary.Frames != 6 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if math.Abs(summary.GFPMean-2*math.Sqrt(10.0/6)) > 1e-6 {
		t.Errorf("expected mean GFP %v, got %v", 2*math.Sqrt(10.0/6), summary.GFPMean)
	}
}

func TestSummarize(t *testing.T) {
	results := []Result{
		{Frames: 100, Duration: time.Second, GFPMean: 1},
		{Frames: 300, Duration: time.Second, GFPMean: 3},
		{Err: os.ErrNotExist},
	}

	s := Summarize(results, 3*time.Second)
	got := []float64{float64(s.Files), float64(s.Failed), float64(s.Frames), s.FramesPerSecond, s.GFPMean}
	want := []float64{3, 1, 400, 200, 2.5}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	if s.String() == "" {
		t.Error("summary should print")
	}
}

func TestSummarizeSingleFile(t *testing.T) {
	s := Summarize([]Result{{Frames: 10, Duration: time.Second}}, time.Second)
	if s.FramesPerSecondStdDev != 0 {
		t.Errorf("expected no spread for one file, got %v", s.FramesPerSecondStdDev)
	}
}
