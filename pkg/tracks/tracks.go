// Package tracks reads and writes multi-channel recordings.
//
// Supported formats are chosen by file extension:
//
//	.ep   plain text, one time frame per line, no metadata
//	.sef  binary "simple EEG format" with names, sampling rate and timestamp
//
// Markers are kept in a "<file>.mrk" sidecar next to either format.
package tracks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"trackinterp/internal/models"
)

// ErrUnsupported is returned for unknown file extensions
var ErrUnsupported = errors.New("unsupported tracks file type")

// Codec reads and writes tracks files on disk
type Codec struct{}

// ReadTracks reads the recording at path and its marker sidecar
func (Codec) ReadTracks(path string) (*models.TimeSeries, error) { return Read(path) }

// WriteTracks writes ts to path and its marker sidecar
func (Codec) WriteTracks(path string, ts *models.TimeSeries) error { return Write(path, ts) }

// Read reads the recording at path and its marker sidecar, if any
func Read(path string) (*models.TimeSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ts *models.TimeSeries
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".ep":
		ts, err = readEP(f)
	case ".sef":
		ts, err = readSEF(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	markers, err := ReadMarkers(MarkersPath(path))
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	ts.Markers = markers

	return ts, nil
}

// Write writes ts to path, plus a marker sidecar when ts has markers
func Write(path string, ts *models.TimeSeries) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".ep" && ext != ".sef" {
		return fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if ext == ".ep" {
		err = writeEP(f, ts)
	} else {
		err = writeSEF(f, ts)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	if len(ts.Markers) > 0 {
		return WriteMarkers(MarkersPath(path), ts.Markers)
	}
	return nil
}

// MarkersPath returns the sidecar marker file of a recording
func MarkersPath(path string) string {
	return path + ".mrk"
}

// auxiliaryPrefixes are lower-case name prefixes of non-electrode channels
var auxiliaryPrefixes = []string{
	"ecg", "ekg", "eog", "heog", "veog", "emg", "resp", "pulse",
	"gsr", "trig", "status", "aux", "mkr", "mark",
}

// IsAuxiliaryName reports whether a channel name denotes a non-electrode signal
func IsAuxiliaryName(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, prefix := range auxiliaryPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func defaultNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("e%d", i+1)
	}
	return names
}
