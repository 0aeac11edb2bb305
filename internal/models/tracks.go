package models

import (
	"time"

	"gonum.org/v1/gonum/mat"
)

// Marker is a discrete event attached to a recording, in time frames
type Marker struct {
	From int64
	To   int64
	Name string
}

// TimeSeries is a full multi-channel recording held in memory
type TimeSeries struct {
	// Data holds one row per time frame and one column per channel
	Data *mat.Dense

	// Names are the channel labels, one per column of Data
	Names []string

	// Auxiliary flags non-electrode channels (ECG, triggers, ...)
	Auxiliary []bool

	// SamplingRate is in Hz, 0 when unknown
	SamplingRate float64

	// Timestamp is the recording start, zero when unknown
	Timestamp time.Time

	// Markers are carried through processing unchanged
	Markers []Marker
}

// NumFrames returns the number of time frames
func (ts *TimeSeries) NumFrames() int {
	if ts.Data == nil {
		return 0
	}
	r, _ := ts.Data.Dims()
	return r
}

// NumChannels returns the number of channels, auxiliaries included
func (ts *TimeSeries) NumChannels() int {
	if ts.Data == nil {
		return len(ts.Names)
	}
	_, c := ts.Data.Dims()
	return c
}

// NumAuxiliary returns how many channels are flagged auxiliary
func (ts *TimeSeries) NumAuxiliary() int {
	n := 0
	for _, aux := range ts.Auxiliary {
		if aux {
			n++
		}
	}
	return n
}
