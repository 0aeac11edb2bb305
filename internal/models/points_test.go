package models

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestPointSetLookupIsCaseInsensitive(t *testing.T) {
	s := NewPointSet([]Point{
		{Name: "Fpz", Pos: r3.Vec{X: 1}},
		{Name: "Cz", Pos: r3.Vec{Z: 1}},
	})

	i, ok := s.Lookup("cz")
	if !ok || i != 1 {
		t.Fatalf("Lookup(cz) = %d, %v; want 1, true", i, ok)
	}
	if _, ok := s.Lookup("Oz"); ok {
		t.Error("Lookup(Oz) should fail")
	}
}

func TestPointSetSubsetKeepsOrder(t *testing.T) {
	s := NewPointSet([]Point{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}})
	sub := s.Subset([]bool{true, false, true, true})

	want := []string{"a", "c", "d"}
	got := sub.Names()
	if len(got) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("name %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestLandmarksCount(t *testing.T) {
	testCases := []struct {
		lm   Landmarks
		want int
	}{
		{Landmarks{}, 0},
		{Landmarks{Front: []string{"Fpz"}}, 1},
		{Landmarks{Front: []string{" "}, Top: []string{"Cz"}}, 1},
		{Landmarks{
			Front: []string{"Fpz"}, Left: []string{"T7"}, Top: []string{"Cz"},
			Right: []string{"T8"}, Rear: []string{"Oz"},
		}, 5},
	}

	for i, tc := range testCases {
		if got := tc.lm.Count(); got != tc.want {
			t.Errorf("case %d: expected %d groups, got %d", i, tc.want, got)
		}
	}
}
