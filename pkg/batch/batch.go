// Package batch runs one configured interpolation over a list of recordings.
// A failing file is reported and skipped; the others are still processed.
package batch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"trackinterp/internal/models"
	"trackinterp/pkg/interpolation"
	"trackinterp/pkg/progress"
	"trackinterp/pkg/tracks"
)

// Result describes the processing of one input file
type Result struct {
	Input    string
	Output   string
	Frames   int
	Duration time.Duration

	// GFPMean and GFPStdDev summarize the global field power of the output,
	// the spatial standard deviation of each time frame.
	GFPMean   float64
	GFPStdDev float64

	Err error
}

// Summary aggregates the results of a run
type Summary struct {
	Files  int
	Failed int
	Frames int

	Duration time.Duration

	// FramesPerSecond over the successful files
	FramesPerSecond       float64
	FramesPerSecondStdDev float64

	// GFPMean is the frame-weighted mean global field power
	GFPMean float64
}

// Runner owns an interpolation engine and feeds it files
type Runner struct {
	engine   *interpolation.Engine
	recorder *gfpRecorder
	progress progress.Reporter

	infix string
	ext   string
	sink  interpolation.ErrorSink
}

// NewRunner creates the engine from opts. The track writer is wrapped to
// collect output statistics.
func NewRunner(opts interpolation.Options, infix, ext string, sink interpolation.ErrorSink) *Runner {
	if opts.Writer == nil {
		opts.Writer = tracks.Codec{}
	}
	if opts.Progress == nil {
		opts.Progress = progress.Discard{}
	}

	recorder := &gfpRecorder{
		next:  opts.Writer,
		stats: make(map[string]gfpStats),
	}
	opts.Writer = recorder

	return &Runner{
		engine:   interpolation.NewEngine(opts),
		recorder: recorder,
		progress: opts.Progress,
		infix:    infix,
		ext:      ext,
		sink:     sink,
	}
}

// Engine returns the engine to configure before Run
func (r *Runner) Engine() *interpolation.Engine {
	return r.engine
}

// Run interpolates every file in order
func (r *Runner) Run(files []string) ([]Result, Summary) {
	results := make([]Result, 0, len(files))
	start := time.Now()

	for i, file := range files {
		r.progress.Outer(i, len(files), filepath.Base(file))

		t0 := time.Now()
		out, err := r.engine.InterpolateTracks(file, r.infix, r.ext, r.sink)
		res := Result{Input: file, Output: out, Duration: time.Since(t0), Err: err}

		if err == nil {
			st := r.recorder.take(out)
			res.Frames = st.frames
			res.GFPMean = st.mean
			res.GFPStdDev = st.stdDev
		} else {
			interpolation.Logf("skipping %s: %v", file, err)
		}
		results = append(results, res)
	}
	r.progress.Outer(len(files), len(files), "done")

	return results, Summarize(results, time.Since(start))
}

// Summarize aggregates results over a run that lasted elapsed
func Summarize(results []Result, elapsed time.Duration) Summary {
	s := Summary{Files: len(results), Duration: elapsed}

	var rates, gfp, weights []float64
	for _, res := range results {
		if res.Err != nil {
			s.Failed++
			continue
		}
		s.Frames += res.Frames
		if res.Duration > 0 {
			rates = append(rates, float64(res.Frames)/res.Duration.Seconds())
		}
		gfp = append(gfp, res.GFPMean)
		weights = append(weights, float64(res.Frames))
	}

	if len(rates) > 0 {
		s.FramesPerSecond, s.FramesPerSecondStdDev = stat.MeanStdDev(rates, nil)
		if len(rates) == 1 {
			s.FramesPerSecondStdDev = 0
		}
	}
	if len(gfp) > 0 {
		s.GFPMean = stat.Mean(gfp, weights)
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d files (%d failed), %d frames in %v, %.0f ± %.0f frames/s, mean GFP %.4g",
		s.Files, s.Failed, s.Frames, s.Duration.Round(time.Millisecond),
		s.FramesPerSecond, s.FramesPerSecondStdDev, s.GFPMean)
}

type gfpStats struct {
	frames int
	mean   float64
	stdDev float64
}

// gfpRecorder computes the global field power of each written recording
// before passing it on.
type gfpRecorder struct {
	next interpolation.TrackWriter

	mu    sync.Mutex
	stats map[string]gfpStats
}

func (g *gfpRecorder) WriteTracks(path string, ts *models.TimeSeries) error {
	st := globalFieldPower(ts.Data)
	if err := g.next.WriteTracks(path, ts); err != nil {
		return err
	}

	g.mu.Lock()
	g.stats[path] = st
	g.mu.Unlock()
	return nil
}

func (g *gfpRecorder) take(path string) gfpStats {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := g.stats[path]
	delete(g.stats, path)
	return st
}

// globalFieldPower returns the mean and spread of the per-frame spatial
// standard deviation.
func globalFieldPower(data *mat.Dense) gfpStats {
	frames, channels := data.Dims()
	if frames == 0 || channels < 2 {
		return gfpStats{frames: frames}
	}

	gfp := make([]float64, frames)
	for t := range gfp {
		gfp[t] = stat.PopStdDev(data.RawRowView(t), nil)
	}

	st := gfpStats{frames: frames}
	if frames == 1 {
		st.mean = gfp[0]
		return st
	}
	st.mean, st.stdDev = stat.MeanStdDev(gfp, nil)
	return st
}
