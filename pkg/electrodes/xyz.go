// Package electrodes reads and writes electrode coordinate files.
//
// The .xyz text format starts with a header line holding the number of
// electrodes and a radius, followed by one "x y z name" line per electrode.
// Line order is the channel order of every recording made with the layout.
package electrodes

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"trackinterp/internal/models"
)

// ErrFormat is returned for malformed coordinate files
var ErrFormat = errors.New("malformed coordinates file")

// Reader reads coordinate files from disk
type Reader struct{}

// ReadPoints reads the coordinate file at path
func (Reader) ReadPoints(path string) (*models.PointSet, error) {
	return ReadFile(path)
}

// ReadFile reads a .xyz file
func ReadFile(path string) (*models.PointSet, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".xyz" {
		return nil, fmt.Errorf("unsupported coordinates file type %q", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	set, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Read parses .xyz content
func Read(r io.Reader) (*models.PointSet, error) {
	scanner := bufio.NewScanner(r)

	var count int
	header := false
	var points []models.Point
	line := 0

	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)

		if !header {
			n, err := strconv.Atoi(fields[0])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: line %d: bad electrode count %q", ErrFormat, line, fields[0])
			}
			count = n
			points = make([]models.Point, 0, count)
			header = true
			continue
		}

		if len(points) == count {
			break
		}
		if len(fields) < 3 {
			return nil, fmt.Errorf("%w: line %d: expected x y z [name]", ErrFormat, line)
		}

		var xyz [3]float64
		for i := range xyz {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, line, err)
			}
			xyz[i] = v
		}

		name := fmt.Sprintf("e%d", len(points)+1)
		if len(fields) > 3 {
			name = strings.Join(fields[3:], " ")
		}

		points = append(points, models.Point{
			Name: name,
			Pos:  r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if !header {
		return nil, fmt.Errorf("%w: missing header", ErrFormat)
	}
	if len(points) != count {
		return nil, fmt.Errorf("%w: header announces %d electrodes, found %d", ErrFormat, count, len(points))
	}

	return models.NewPointSet(points), nil
}

// Write writes set in .xyz format. The header radius is the mean distance
// of the points to the origin.
func Write(w io.Writer, set *models.PointSet) error {
	bw := bufio.NewWriter(w)

	radii := make([]float64, set.Len())
	for i := 0; i < set.Len(); i++ {
		radii[i] = r3.Norm(set.At(i).Pos)
	}
	radius := 0.0
	if len(radii) > 0 {
		radius = floats.Sum(radii) / float64(len(radii))
	}

	fmt.Fprintf(bw, "%d\t%s\n", set.Len(), formatFloat(radius))
	for i := 0; i < set.Len(); i++ {
		p := set.At(i)
		fmt.Fprintf(bw, "%s\t%s\t%s\t%s\n",
			formatFloat(p.Pos.X), formatFloat(p.Pos.Y), formatFloat(p.Pos.Z), p.Name)
	}

	return bw.Flush()
}

// WriteFile writes set to path, creating the parent directory
func WriteFile(path string, set *models.PointSet) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, set); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// UniqueName returns path if nothing exists there, otherwise the first free
// "name (n).ext" variant. Exported artifacts never overwrite existing files.
func UniqueName(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
