package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"trackinterp/internal/models"
	"trackinterp/pkg/interpolation"
)

func TestLoadMissingConfigGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("expected defaults (-want +got):\n%s", diff)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "trackinterp.yaml")

	cfg := DefaultConfig()
	cfg.Processing.NumCores = 3
	cfg.Processing.ProgressInterval = 2 * time.Second
	cfg.Interpolation.Method = "planar"
	cfg.Interpolation.Degree = 4
	cfg.Interpolation.From = Layout{
		File:        "/caps/hd128.xyz",
		BadChannels: "E12 E47-E49",
		Landmarks: models.Landmarks{
			Front: []string{"Fpz"},
			Left:  []string{"T7"},
			Top:   []string{"Cz"},
			Right: []string{"T8"},
			Rear:  []string{"Oz", "Iz"},
		},
	}
	cfg.Interpolation.To.File = "/caps/1020.xyz"
	cfg.Output.TempDir = "/tmp/trackinterp"
	cfg.Output.PlotLayout = true

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	back, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if diff := cmp.Diff(cfg, back); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestPartialConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte(`interpolation:
  method: volumetric
  from:
    file: a.xyz
  to:
    file: b.xyz
processing:
  progressInterval: 250ms
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Interpolation.Degree != interpolation.DefaultDegree {
		t.Errorf("expected default degree, got %d", cfg.Interpolation.Degree)
	}
	if cfg.Processing.ProgressInterval != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", cfg.Processing.ProgressInterval)
	}

	s, err := cfg.Settings()
	if err != nil {
		t.Fatalf("Settings failed: %v", err)
	}
	if s.Method != interpolation.VolumetricSpline || s.Target != interpolation.TargetFiducial {
		t.Errorf("unexpected settings %+v", s)
	}
	if s.From.Path != "a.xyz" || s.To.Path != "b.xyz" {
		t.Errorf("unexpected layouts %q %q", s.From.Path, s.To.Path)
	}
}

func TestSettingsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Interpolation.From.File = "a.xyz"
	if _, err := cfg.Settings(); !errors.Is(err, ErrMissingLayout) {
		t.Errorf("expected ErrMissingLayout, got %v", err)
	}

	cfg.Interpolation.To.File = "b.xyz"
	cfg.Interpolation.Method = "bilinear"
	if _, err := cfg.Settings(); err == nil {
		t.Error("expected an error for an unknown method")
	}

	cfg.Interpolation.Method = "csd"
	cfg.Interpolation.Target = "mni"
	if _, err := cfg.Settings(); err == nil {
		t.Error("expected an error for an unknown target")
	}
}

func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.yaml")
	if err := CreateDefaultConfigFile(path); err != nil {
		t.Fatalf("CreateDefaultConfigFile failed: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Interpolation.Method != "spherical" {
		t.Errorf("expected spherical method, got %q", cfg.Interpolation.Method)
	}
}
