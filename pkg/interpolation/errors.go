package interpolation

import (
	"errors"
	"log"
)

var (
	ErrNotReady          = errors.New("interpolation is not configured")
	ErrPointsFile        = errors.New("cannot read coordinates file")
	ErrTracksFile        = errors.New("cannot read tracks file")
	ErrChannelSelection  = errors.New("invalid bad channels selection")
	ErrChannelCount      = errors.New("channel count does not match the source electrodes")
	ErrAuxiliaryChannels = errors.New("auxiliary channels are not supported")
	ErrTooFewPoints      = errors.New("not enough source electrodes for the spline degree")
	ErrIllConditioned    = errors.New("interpolation system is singular or ill-conditioned")
	ErrEmptyTracks       = errors.New("tracks file has no time frames")
	ErrExport            = errors.New("cannot export intermediate coordinates")
)

// ErrorSink receives user-facing failure reports. Engines never decide on
// their own whether a failure is shown to someone; a nil sink is silent.
type ErrorSink interface {
	ReportError(title, message string)
}

// ErrorSinkFunc adapts a function to ErrorSink
type ErrorSinkFunc func(title, message string)

// ReportError calls f(title, message)
func (f ErrorSinkFunc) ReportError(title, message string) { f(title, message) }

// report forwards err to sink, if any, and returns it unchanged
func report(sink ErrorSink, title string, err error) error {
	if sink != nil && err != nil {
		sink.ReportError(title, err.Error())
	}
	return err
}

// Logf is the package diagnostic logger. It defaults to log.Printf.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil mutes it.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
