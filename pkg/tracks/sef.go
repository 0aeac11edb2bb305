package tracks

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"trackinterp/internal/models"
)

const sefNameSize = 8

var sefMagic = [4]byte{'S', 'E', '0', '1'}

// sefHeader is the fixed little-endian header of a .sef file
type sefHeader struct {
	Magic        [4]byte
	NumChannels  int32
	NumAuxiliary int32
	NumFrames    int32
	SamplingRate float32
	Year         int16
	Month        int16
	Day          int16
	Hour         int16
	Minute       int16
	Second       int16
	Millisecond  int16
}

func readSEF(r io.Reader) (*models.TimeSeries, error) {
	br := bufio.NewReader(r)

	var h sefHeader
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if h.Magic != sefMagic {
		return nil, fmt.Errorf("bad magic %q", h.Magic[:])
	}
	if h.NumChannels <= 0 || h.NumFrames <= 0 || h.NumAuxiliary < 0 || h.NumAuxiliary > h.NumChannels {
		return nil, fmt.Errorf("bad dimensions: %d channels, %d auxiliary, %d frames", h.NumChannels, h.NumAuxiliary, h.NumFrames)
	}

	channels, frames := int(h.NumChannels), int(h.NumFrames)

	names := make([]string, channels)
	var raw [sefNameSize]byte
	for i := range names {
		if _, err := io.ReadFull(br, raw[:]); err != nil {
			return nil, fmt.Errorf("reading channel names: %w", err)
		}
		names[i] = strings.TrimSpace(strings.TrimRight(string(raw[:]), "\x00"))
	}

	values := make([]float32, channels*frames)
	if err := binary.Read(br, binary.LittleEndian, values); err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}
	data := make([]float64, len(values))
	for i, v := range values {
		data[i] = float64(v)
	}

	ts := &models.TimeSeries{
		Data:         mat.NewDense(frames, channels, data),
		Names:        names,
		Auxiliary:    make([]bool, channels),
		SamplingRate: float64(h.SamplingRate),
	}

	for i, name := range names {
		ts.Auxiliary[i] = IsAuxiliaryName(name)
	}
	// The header count wins when names do not tell; the convention is to
	// store auxiliaries last.
	for i := channels - 1; ts.NumAuxiliary() < int(h.NumAuxiliary) && i >= 0; i-- {
		ts.Auxiliary[i] = true
	}

	if h.Year > 0 {
		ts.Timestamp = time.Date(int(h.Year), time.Month(h.Month), int(h.Day),
			int(h.Hour), int(h.Minute), int(h.Second), int(h.Millisecond)*int(time.Millisecond), time.UTC)
	}

	return ts, nil
}

func writeSEF(w io.Writer, ts *models.TimeSeries) error {
	bw := bufio.NewWriter(w)
	frames, channels := ts.NumFrames(), ts.NumChannels()

	h := sefHeader{
		Magic:        sefMagic,
		NumChannels:  int32(channels),
		NumAuxiliary: int32(ts.NumAuxiliary()),
		NumFrames:    int32(frames),
		SamplingRate: float32(ts.SamplingRate),
	}
	if !ts.Timestamp.IsZero() {
		t := ts.Timestamp
		h.Year, h.Month, h.Day = int16(t.Year()), int16(t.Month()), int16(t.Day())
		h.Hour, h.Minute, h.Second = int16(t.Hour()), int16(t.Minute()), int16(t.Second())
		h.Millisecond = int16(t.Nanosecond() / int(time.Millisecond))
	}
	if err := binary.Write(bw, binary.LittleEndian, &h); err != nil {
		return err
	}

	names := ts.Names
	if len(names) != channels {
		names = defaultNames(channels)
	}
	for _, name := range names {
		var raw [sefNameSize]byte
		copy(raw[:], name)
		if _, err := bw.Write(raw[:]); err != nil {
			return err
		}
	}

	row32 := make([]float32, channels)
	for t := 0; t < frames; t++ {
		for c, v := range ts.Data.RawRowView(t) {
			row32[c] = float32(v)
		}
		if err := binary.Write(bw, binary.LittleEndian, row32); err != nil {
			return err
		}
	}

	return bw.Flush()
}
