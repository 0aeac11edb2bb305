package tracks

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"trackinterp/internal/models"
)

const markersMagic = "TL02"

// ReadMarkers reads a marker file: a "TL02" line then `from to "name"` lines
func ReadMarkers(path string) ([]models.Marker, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var markers []models.Marker
	line := 0

	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if line == 1 {
			if text != markersMagic {
				return nil, fmt.Errorf("%s: not a marker file", path)
			}
			continue
		}

		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%s: line %d: expected from and to", path, line)
		}
		from, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", path, line, err)
		}
		to, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", path, line, err)
		}

		name := ""
		if quote := strings.Index(text, "\""); quote >= 0 {
			name = strings.Trim(text[quote:], "\"")
		} else if len(fields) > 2 {
			name = strings.Join(fields[2:], " ")
		}

		markers = append(markers, models.Marker{From: from, To: to, Name: name})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return markers, nil
}

// WriteMarkers writes markers in the format read by ReadMarkers
func WriteMarkers(path string, markers []models.Marker) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(f)
	fmt.Fprintln(bw, markersMagic)
	for _, m := range markers {
		fmt.Fprintf(bw, "%12d\t%12d\t\"%s\"\n", m.From, m.To, m.Name)
	}

	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
