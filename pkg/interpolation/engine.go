package interpolation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"trackinterp/internal/models"
	"trackinterp/pkg/electrodes"
	"trackinterp/pkg/fiducial"
	"trackinterp/pkg/progress"
	"trackinterp/pkg/selection"
	"trackinterp/pkg/tracks"
	"trackinterp/pkg/visualization"
)

// State is the configuration state of an Engine
type State int

const (
	Unconfigured State = iota
	Configured
	Ready
	Applying
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case Configured:
		return "configured"
	case Ready:
		return "ready"
	case Applying:
		return "applying"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// PointSpec describes one side of an interpolation
type PointSpec struct {
	// Path is the coordinates file
	Path string

	// Landmarks are the fiducial groups, all five or none
	Landmarks models.Landmarks

	// BadChannels is a selection of channels to leave out. Source only.
	BadChannels string
}

// PointReader loads a coordinates file
type PointReader interface {
	ReadPoints(path string) (*models.PointSet, error)
}

// ChannelSelector turns a selection string into a mask over names
type ChannelSelector interface {
	Select(expr string, names []string) ([]bool, error)
}

// TrackReader loads a whole recording
type TrackReader interface {
	ReadTracks(path string) (*models.TimeSeries, error)
}

// TrackWriter saves a whole recording
type TrackWriter interface {
	WriteTracks(path string, ts *models.TimeSeries) error
}

// Options holds the collaborators and tuning of an Engine. Zero fields get
// the file-based defaults.
type Options struct {
	// NumWorkers is the number of goroutines sharing the time frames
	NumWorkers int

	Points   PointReader
	Selector ChannelSelector
	Reader   TrackReader
	Writer   TrackWriter
	Progress progress.Reporter

	// PlotLayout adds a picture of the projected layouts to the exports
	PlotLayout bool

	// ProgressInterval is the refresh period of the time-frame progress
	ProgressInterval time.Duration
}

// frameFunc computes one output time frame from one input time frame
type frameFunc func(in, out []float64, s *scratch) error

// scratch is the private per-worker storage of the solve path
type scratch struct {
	rhs *mat.VecDense
	x   *mat.VecDense
}

// Engine remaps recordings from a source electrode layout to a destination
// layout. Set builds everything once; InterpolateTracks then reuses it
// read-only for any number of files.
type Engine struct {
	opts Options

	mu    sync.Mutex
	state State

	strategy Strategy
	mode     TargetMode
	from     *models.PointSet
	to       *models.PointSet
	bad      []bool
	good     []int
	solver   *Solver
	cache    *DestinationCache
	match    MatchTable
	frame    frameFunc

	tempFiles []string
}

// NewEngine returns an unconfigured engine
func NewEngine(opts Options) *Engine {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = runtime.NumCPU()
	}
	if opts.Points == nil {
		opts.Points = electrodes.Reader{}
	}
	if opts.Selector == nil {
		opts.Selector = selection.Selector{}
	}
	if opts.Reader == nil {
		opts.Reader = tracks.Codec{}
	}
	if opts.Writer == nil {
		opts.Writer = tracks.Codec{}
	}
	if opts.Progress == nil {
		opts.Progress = progress.Discard{}
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = 500 * time.Millisecond
	}
	return &Engine{opts: opts}
}

// State returns the current state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Method returns the configured method
func (e *Engine) Method() Method {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.strategy == nil {
		return 0
	}
	return e.strategy.Method()
}

// Degree returns the configured (clamped) degree, 0 when unconfigured
func (e *Engine) Degree() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.strategy == nil {
		return 0
	}
	return e.strategy.Degree()
}

// Reset drops the configuration. Exported files are kept until FilesCleanUp.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

func (e *Engine) reset() {
	e.state = Unconfigured
	e.strategy = nil
	e.from, e.to = nil, nil
	e.bad, e.good = nil, nil
	e.solver = nil
	e.cache = nil
	e.match = nil
	e.frame = nil
}

// Set configures the engine to map recordings of the from layout onto the
// to layout. A degree outside [1, MaxDegree] is clamped. When tempPath is
// not empty, the reduced and projected layouts are exported there.
// Failures are reported to sink, if any, and returned.
func (e *Engine) Set(method Method, degree int, mode TargetMode, from, to PointSpec, tempPath string, sink ErrorSink) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reset()
	if err := e.configure(method, degree, mode, from, to, tempPath); err != nil {
		e.reset()
		return report(sink, "Interpolation setup", err)
	}
	return nil
}

func (e *Engine) configure(method Method, degree int, mode TargetMode, from, to PointSpec, tempPath string) error {
	strategy, err := NewStrategy(method, degree)
	if err != nil {
		return err
	}

	if err := fiducial.CheckLandmarks(from.Landmarks); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := fiducial.CheckLandmarks(to.Landmarks); err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if mode == TargetFiducial {
		if from.Landmarks.Count() == 0 {
			return fmt.Errorf("source: %w", fiducial.ErrMissingLandmarks)
		}
		if to.Landmarks.Count() == 0 {
			return fmt.Errorf("destination: %w", fiducial.ErrMissingLandmarks)
		}
	}

	fromSet, err := e.opts.Points.ReadPoints(from.Path)
	if err != nil {
		return fmt.Errorf("%w %s: %v", ErrPointsFile, from.Path, err)
	}
	toSet, err := e.opts.Points.ReadPoints(to.Path)
	if err != nil {
		return fmt.Errorf("%w %s: %v", ErrPointsFile, to.Path, err)
	}
	if toSet.Len() == 0 {
		return fmt.Errorf("%w %s: no electrodes", ErrPointsFile, to.Path)
	}

	bad := make([]bool, fromSet.Len())
	if strings.TrimSpace(from.BadChannels) != "" {
		bad, err = e.opts.Selector.Select(from.BadChannels, fromSet.Names())
		if err != nil {
			return fmt.Errorf("%w: %v", ErrChannelSelection, err)
		}
		if len(bad) != fromSet.Len() {
			return fmt.Errorf("%w: selection covers %d channels, layout has %d", ErrChannelCount, len(bad), fromSet.Len())
		}
	}

	good := make([]int, 0, fromSet.Len())
	for i, b := range bad {
		if !b {
			good = append(good, i)
		}
	}
	if len(good) <= strategy.TermCount() {
		return fmt.Errorf("%w: %d usable electrodes, %s degree %d needs more than %d",
			ErrTooFewPoints, len(good), strategy.Method(), strategy.Degree(), strategy.TermCount())
	}

	e.state = Configured

	fromT, err := fiducial.ComputeTransform(fromSet, from.Landmarks, mode == TargetNormalized)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	toT, err := fiducial.ComputeTransform(toSet, to.Landmarks, mode == TargetNormalized)
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}

	fromFid := fromT.ApplyAll(fromSet.Positions())
	toFid := toT.ApplyAll(toSet.Positions())

	srcProj := make([]r3.Vec, len(good))
	for i, k := range good {
		srcProj[i] = strategy.Project(fromFid[k])
	}
	dstProj := ProjectAll(strategy, toFid)

	goodFid := make([]r3.Vec, len(good))
	for i, k := range good {
		goodFid[i] = fromFid[k]
	}
	if i, j, dup := FindDuplicates(goodFid); dup {
		return fmt.Errorf("%w: electrodes %s and %s share the same position",
			ErrIllConditioned, fromSet.At(good[i]).Name, fromSet.At(good[j]).Name)
	}

	solver, err := Factorize(BuildSystem(strategy, srcProj))
	if err != nil {
		return err
	}

	var eligible []bool
	if strategy.PreservesIdentity() {
		eligible = make([]bool, len(bad))
		for i, b := range bad {
			eligible[i] = !b
		}
	}

	e.strategy = strategy
	e.mode = mode
	e.from, e.to = fromSet, toSet
	e.bad, e.good = bad, good
	e.solver = solver
	e.cache = NewDestinationCache(strategy, srcProj, dstProj)
	e.match = BuildMatchTable(fromFid, toFid, eligible)
	e.frame = e.resolveFrameFunc()

	if tempPath != "" {
		if err := e.export(tempPath, from.Path, to.Path, srcProj, dstProj); err != nil {
			return fmt.Errorf("%w: %v", ErrExport, err)
		}
	}

	e.state = Ready
	Logf("interpolation ready: %s degree %d, %d -> %d electrodes (%d bad, %d exact), cond %.3g",
		strategy.Method(), strategy.Degree(), fromSet.Len(), toSet.Len(),
		fromSet.Len()-len(good), e.match.Count(), solver.Cond())

	return nil
}

// resolveFrameFunc picks the per-frame computation once for all frames
func (e *Engine) resolveFrameFunc() frameFunc {
	if e.match.All() {
		return e.copyFrame
	}
	return e.solveFrame
}

// copyFrame serves layouts where every destination sits on a source
func (e *Engine) copyFrame(in, out []float64, _ *scratch) error {
	for j, k := range e.match {
		out[j] = in[k]
	}
	return nil
}

func (e *Engine) solveFrame(in, out []float64, s *scratch) error {
	rhs := s.rhs.RawVector().Data
	for i, k := range e.good {
		rhs[i] = in[k]
	}
	for i := len(e.good); i < len(rhs); i++ {
		rhs[i] = 0
	}

	if err := e.solver.SolveTo(s.x, s.rhs); err != nil {
		return err
	}
	weights := s.x.RawVector().Data

	for j, k := range e.match {
		if k >= 0 {
			out[j] = in[k]
			continue
		}
		out[j] = e.cache.Evaluate(weights, j)
	}
	return nil
}

func (e *Engine) newScratch() *scratch {
	n := e.solver.Size()
	return &scratch{
		rhs: mat.NewVecDense(n, nil),
		x:   mat.NewVecDense(n, nil),
	}
}

// InterpolateTracks remaps the recording in file and writes it next to it,
// named "<base>.<infix>.<ext>". An empty ext keeps the input extension.
// The output keeps the sampling rate, timestamp and markers of the input.
func (e *Engine) InterpolateTracks(file, infix, ext string, sink ErrorSink) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Ready {
		return "", report(sink, "Interpolating tracks", ErrNotReady)
	}

	path, err := e.apply(file, infix, ext)
	if err != nil {
		return "", report(sink, "Interpolating "+filepath.Base(file), err)
	}
	return path, nil
}

func (e *Engine) apply(file, infix, ext string) (string, error) {
	ts, err := e.opts.Reader.ReadTracks(file)
	if err != nil {
		return "", fmt.Errorf("%w %s: %v", ErrTracksFile, file, err)
	}
	if n := ts.NumAuxiliary(); n > 0 {
		return "", fmt.Errorf("%w: %s has %d", ErrAuxiliaryChannels, file, n)
	}
	if ts.NumChannels() != e.from.Len() {
		return "", fmt.Errorf("%w: %s has %d channels, %d electrodes expected", ErrChannelCount, file, ts.NumChannels(), e.from.Len())
	}
	if ts.NumFrames() == 0 {
		return "", fmt.Errorf("%w: %s", ErrEmptyTracks, file)
	}

	e.state = Applying
	out, err := e.run(ts.Data)
	e.state = Ready
	if err != nil {
		return "", err
	}

	result := &models.TimeSeries{
		Data:         out,
		Names:        e.to.Names(),
		Auxiliary:    make([]bool, e.to.Len()),
		SamplingRate: ts.SamplingRate,
		Timestamp:    ts.Timestamp,
		Markers:      append([]models.Marker(nil), ts.Markers...),
	}

	path := OutputPath(file, infix, ext)
	if err := e.opts.Writer.WriteTracks(path, result); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// run maps every time frame of in, splitting frames into contiguous ranges
// over the workers. Workers write disjoint rows of the output.
func (e *Engine) run(in *mat.Dense) (*mat.Dense, error) {
	frames, _ := in.Dims()
	out := mat.NewDense(frames, e.to.Len(), nil)

	numWorkers := e.opts.NumWorkers
	if numWorkers > frames {
		numWorkers = frames
	}
	framesPerWorker := (frames + numWorkers - 1) / numWorkers

	needSolve := !e.match.All()

	var completed atomic.Int64
	var firstErr error
	var errOnce sync.Once

	stop := make(chan struct{})
	var reporter sync.WaitGroup
	reporter.Add(1)
	go func() {
		defer reporter.Done()
		ticker := time.NewTicker(e.opts.ProgressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				e.opts.Progress.Inner(int(completed.Load()), frames)
			case <-stop:
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		startIdx := w * framesPerWorker
		endIdx := min(startIdx+framesPerWorker, frames)
		if startIdx >= endIdx {
			continue
		}

		wg.Add(1)
		go func(startIdx, endIdx int) {
			defer wg.Done()

			var s *scratch
			if needSolve {
				s = e.newScratch()
			}
			for t := startIdx; t < endIdx; t++ {
				if err := e.frame(in.RawRowView(t), out.RawRowView(t), s); err != nil {
					errOnce.Do(func() { firstErr = fmt.Errorf("time frame %d: %w", t, err) })
					return
				}
				completed.Add(1)
			}
		}(startIdx, endIdx)
	}

	wg.Wait()
	close(stop)
	reporter.Wait()
	e.opts.Progress.Inner(int(completed.Load()), frames)

	return out, firstErr
}

// OutputPath names the output of file: "<dir>/<base>[.<infix>].<ext>".
// An empty ext keeps the input extension. The input itself is never named.
func OutputPath(file, infix, ext string) string {
	dir := filepath.Dir(file)
	base := filepath.Base(file)
	inExt := filepath.Ext(base)
	stem := strings.TrimSuffix(base, inExt)

	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = strings.TrimPrefix(inExt, ".")
	}

	name := stem
	if infix != "" {
		name += "." + infix
	}
	if ext != "" {
		name += "." + ext
	}

	path := filepath.Join(dir, name)
	if path == filepath.Clean(file) {
		path = filepath.Join(dir, stem+".interpolated."+ext)
	}
	return path
}

// export writes the intermediate layouts: the source set without its bad
// channels, both sets in kernel space, and optionally a plot of the latter.
func (e *Engine) export(dir, fromPath, toPath string, srcProj, dstProj []r3.Vec) error {
	fromStem := strings.TrimSuffix(filepath.Base(fromPath), filepath.Ext(fromPath))
	toStem := strings.TrimSuffix(filepath.Base(toPath), filepath.Ext(toPath))

	keep := make([]bool, len(e.bad))
	for i, b := range e.bad {
		keep[i] = !b
	}
	reduced := e.from.Subset(keep)

	write := func(name string, set *models.PointSet) error {
		path := electrodes.UniqueName(filepath.Join(dir, name))
		if err := electrodes.WriteFile(path, set); err != nil {
			return err
		}
		e.tempFiles = append(e.tempFiles, path)
		return nil
	}

	if reduced.Len() != e.from.Len() {
		if err := write(fromStem+".reduced.xyz", reduced); err != nil {
			return err
		}
	}
	method := e.strategy.Method().String()
	if err := write(fromStem+"."+method+".xyz", reduced.WithPositions(srcProj)); err != nil {
		return err
	}
	if err := write(toStem+"."+method+".xyz", e.to.WithPositions(dstProj)); err != nil {
		return err
	}

	if e.opts.PlotLayout {
		path := electrodes.UniqueName(filepath.Join(dir, fromStem+"_to_"+toStem+"."+method+".png"))
		err := visualization.SaveLayoutPlot(path, fmt.Sprintf("%s spline layouts", method),
			visualization.Layout{Name: fromStem, Positions: srcProj, Labels: reduced.Names()},
			visualization.Layout{Name: toStem, Positions: dstProj},
		)
		if err != nil {
			return err
		}
		e.tempFiles = append(e.tempFiles, path)
	}

	return nil
}

// FilesCleanUp deletes the files exported by Set
func (e *Engine) FilesCleanUp() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var errs []error
	for _, path := range e.tempFiles {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	e.tempFiles = nil
	return errors.Join(errs...)
}

// TempFiles returns the files exported by Set so far
func (e *Engine) TempFiles() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.tempFiles...)
}
