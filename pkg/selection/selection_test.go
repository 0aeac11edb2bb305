package selection

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var testNames = []string{"Fp1", "Fp2", "F3", "F4", "C3", "C4", "A1-A2", "Oz"}

func TestParse(t *testing.T) {
	testCases := []struct {
		expr string
		want []string
	}{
		{"", nil},
		{"Fp1", []string{"Fp1"}},
		{"fp2, oz", []string{"Fp2", "Oz"}},
		{"F3-C4", []string{"F3", "F4", "C3", "C4"}},
		{"C4-F3", []string{"F3", "F4", "C3", "C4"}},
		{"2-3", []string{"Fp2", "F3"}},
		{"* !C3 !A1-A2", []string{"Fp1", "Fp2", "F3", "F4", "C4", "Oz"}},
		{"A1-A2", []string{"A1-A2"}},
		{"8;1", []string{"Fp1", "Oz"}},
	}

	for _, tc := range testCases {
		mask, err := Parse(tc.expr, testNames)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", tc.expr, err)
			continue
		}
		if diff := cmp.Diff(tc.want, Names(mask, testNames)); diff != "" {
			t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tc.expr, diff)
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, expr := range []string{"Cz", "9", "F3-Pz", "0"} {
		if _, err := Parse(expr, testNames); !errors.Is(err, ErrUnknownChannel) {
			t.Errorf("Parse(%q): expected ErrUnknownChannel, got %v", expr, err)
		}
	}

	if _, err := Parse("!", testNames); err == nil {
		t.Error("expected an error for a dangling '!'")
	}
}
