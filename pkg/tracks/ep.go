package tracks

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"trackinterp/internal/models"
)

// readEP parses a text recording. Values are parsed at single precision,
// which is the precision the format is written at.
func readEP(r io.Reader) (*models.TimeSeries, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var data []float64
	channels := -1
	frames := 0

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if channels < 0 {
			channels = len(fields)
		} else if len(fields) != channels {
			return nil, fmt.Errorf("time frame %d has %d values, expected %d", frames+1, len(fields), channels)
		}

		for _, field := range fields {
			v, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, fmt.Errorf("time frame %d: %w", frames+1, err)
			}
			data = append(data, v)
		}
		frames++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if frames == 0 {
		return nil, fmt.Errorf("no time frames")
	}

	return &models.TimeSeries{
		Data:      mat.NewDense(frames, channels, data),
		Names:     defaultNames(channels),
		Auxiliary: make([]bool, channels),
	}, nil
}

func writeEP(w io.Writer, ts *models.TimeSeries) error {
	bw := bufio.NewWriter(w)
	frames, channels := ts.NumFrames(), ts.NumChannels()

	for t := 0; t < frames; t++ {
		row := ts.Data.RawRowView(t)
		for c := 0; c < channels; c++ {
			if c > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(strconv.FormatFloat(row[c], 'g', -1, 32))
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}
