package interpolation

import (
	"fmt"
	"strings"
)

// Method selects the interpolation kernel family
type Method int

const (
	// PlanarSpline unfolds the layout onto a disc and uses a thin-plate kernel
	PlanarSpline Method = iota
	// SphericalSpline projects onto the unit sphere and uses a Legendre series
	SphericalSpline
	// SphericalCurrentDensitySpline evaluates the surface Laplacian of the
	// spherical spline, i.e. a current source density estimate
	SphericalCurrentDensitySpline
	// VolumetricSpline uses a 3D thin-plate kernel on fiducial coordinates
	VolumetricSpline
)

const (
	// MaxDegree is the highest spline degree accepted; larger values are clamped
	MaxDegree = 6

	// DefaultDegree is the degree used when none is configured
	DefaultDegree = 3
)

var methodNames = map[Method]string{
	PlanarSpline:                  "planar",
	SphericalSpline:               "spherical",
	SphericalCurrentDensitySpline: "current-density",
	VolumetricSpline:              "volumetric",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod accepts the names printed by Method.String plus a few aliases
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "planar", "2d", "thin-plate":
		return PlanarSpline, nil
	case "spherical", "sphere":
		return SphericalSpline, nil
	case "current-density", "csd", "spherical-csd", "laplacian":
		return SphericalCurrentDensitySpline, nil
	case "volumetric", "3d":
		return VolumetricSpline, nil
	}
	return 0, fmt.Errorf("unknown interpolation method %q", s)
}

// ClampDegree brings degree into [1, MaxDegree]
func ClampDegree(degree int) int {
	if degree < 1 {
		return 1
	}
	if degree > MaxDegree {
		return MaxDegree
	}
	return degree
}

// TargetMode tells how the two point sets relate to fiducial space
type TargetMode int

const (
	// TargetFiducial normalizes each set with its own landmarks
	TargetFiducial TargetMode = iota
	// TargetNormalized takes both sets as already coregistered
	TargetNormalized
)

func (m TargetMode) String() string {
	switch m {
	case TargetFiducial:
		return "fiducial"
	case TargetNormalized:
		return "normalized"
	}
	return fmt.Sprintf("TargetMode(%d)", int(m))
}

// ParseTargetMode parses the names printed by TargetMode.String
func ParseTargetMode(s string) (TargetMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fiducial", "landmarks":
		return TargetFiducial, nil
	case "normalized", "none":
		return TargetNormalized, nil
	}
	return 0, fmt.Errorf("unknown target mode %q", s)
}
