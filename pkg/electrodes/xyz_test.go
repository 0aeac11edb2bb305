package electrodes

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"trackinterp/internal/models"
)

func TestReadParsesNamesAndDefaults(t *testing.T) {
	input := `3 8.5
# comment
 1.5  0   0   Fpz
 0    2   0.25
-1.5  0   3   Left Ear
`
	set, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	want := []string{"Fpz", "e2", "Left Ear"}
	got := set.Names()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("name %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	if p := set.At(2).Pos; p != (r3.Vec{X: -1.5, Y: 0, Z: 3}) {
		t.Errorf("unexpected position %v", p)
	}
}

func TestReadRejectsShortFile(t *testing.T) {
	_, err := Read(strings.NewReader("4 1\n0 0 1 a\n"))
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}

func TestWriteThenReadKeepsPositions(t *testing.T) {
	set := models.NewPointSet([]models.Point{
		{Name: "Cz", Pos: r3.Vec{X: 0.1, Y: -0.2, Z: 0.3333333333333333}},
		{Name: "Oz", Pos: r3.Vec{X: -1e-9, Y: 7, Z: 0}},
	})

	var buf bytes.Buffer
	if err := Write(&buf, set); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	back, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	for i := 0; i < set.Len(); i++ {
		if back.At(i) != set.At(i) {
			t.Errorf("point %d: expected %v, got %v", i, set.At(i), back.At(i))
		}
	}
}

func TestUniqueNameDoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.xyz")

	if got := UniqueName(path); got != path {
		t.Fatalf("expected %s for a free name, got %s", path, got)
	}

	if err := os.WriteFile(path, []byte("0 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	second := UniqueName(path)
	if second != filepath.Join(dir, "layout (2).xyz") {
		t.Errorf("unexpected unique name %s", second)
	}
}

func TestReadFileRejectsOtherExtensions(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "layout.els")); err == nil {
		t.Error("expected an error for .els files")
	}
}
