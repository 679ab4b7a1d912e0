// Package vectorize runs the full raster-to-vector pipeline: preprocessing,
// one of four feature-extraction backends, path construction and curve
// fitting, and multipass merge with color annotation.
package vectorize

import (
	"fmt"
	"time"

	"github.com/robmcdonald5/vec2art-sub004/pkg/preprocess"
	"github.com/robmcdonald5/vec2art-sub004/pkg/skeleton"
	"github.com/robmcdonald5/vec2art-sub004/pkg/superpixel"
)

// Backend selects the feature-extraction strategy.
type Backend int

const (
	EdgeBackend Backend = iota
	CenterlineBackend
	SuperpixelBackend
	DotBackend
)

func (b Backend) String() string {
	switch b {
	case EdgeBackend:
		return "edge"
	case CenterlineBackend:
		return "centerline"
	case SuperpixelBackend:
		return "superpixel"
	case DotBackend:
		return "dots"
	}
	return "unknown"
}

// ParseBackend maps the external configuration string to a Backend.
func ParseBackend(s string) (Backend, error) {
	switch s {
	case "edge":
		return EdgeBackend, nil
	case "centerline":
		return CenterlineBackend, nil
	case "superpixel":
		return SuperpixelBackend, nil
	case "dots":
		return DotBackend, nil
	}
	return 0, &ConfigError{Field: "backend", Reason: fmt.Sprintf("unknown backend %q", s)}
}

// SimplifyAlgorithm selects the polyline simplification strategy.
type SimplifyAlgorithm int

const (
	RDP SimplifyAlgorithm = iota
	Visvalingam
)

func (a SimplifyAlgorithm) String() string {
	if a == Visvalingam {
		return "visvalingam"
	}
	return "rdp"
}

// BackgroundConfig controls the preprocessing stage.
type BackgroundConfig struct {
	Enabled   bool
	Algorithm preprocess.Algorithm
	Strength  float64 // 0..1, adaptive aggressiveness
	Tolerance float64 // Lab distance for the auto policy; 0 picks a default
	Window    int     // adaptive neighborhood; 0 picks a default
}

// SimplifyConfig selects the simplifier and its tolerance in pixels.
type SimplifyConfig struct {
	Algorithm SimplifyAlgorithm
	Epsilon   float64
}

// CurveConfig controls Bezier fitting of simplified paths.
type CurveConfig struct {
	Enabled  bool
	MaxError float64 // max deviation in pixels
}

// Config is the immutable parameter bundle for one vectorization call.
// Validate it before use; the zero value is not valid.
type Config struct {
	Backend Backend
	// Detail scales backend sensitivity, 0 (coarse) to 1 (fine).
	Detail float64

	Multipass bool
	// PassCount is the number of detail levels run in multipass mode, 1-10.
	PassCount    int
	ReversePass  bool
	DiagonalPass bool
	// DirectionalStrengthThreshold gates whether a directional pass's output
	// is merged, compared against the pass's mean response strength.
	DirectionalStrengthThreshold float64

	Background BackgroundConfig
	Simplify   SimplifyConfig
	Curve      CurveConfig

	// MaxProcessingTime bounds wall-clock time, checked at pass boundaries.
	// Zero means no budget.
	MaxProcessingTime time.Duration

	// MergeTolerance is the positional tolerance in pixels within which a
	// later-pass primitive counts as a duplicate of an earlier one.
	MergeTolerance float64

	// MinBranchLength prunes skeleton spurs shorter than this many pixels.
	MinBranchLength int
	// MinRegionArea clears foreground speckles below this area before
	// tracing. Zero disables speckle suppression.
	MinRegionArea int
	// Quality selects the centerline extraction strategy.
	Quality skeleton.Quality

	NumSuperpixels int
	Compactness    float64
	SeedPattern    superpixel.SeedPattern

	DotMinRadius      float64
	DotMaxRadius      float64
	DotJitter         float64
	DotGradientSizing bool

	// Workers caps parallelism; 0 means GOMAXPROCS.
	Workers int
	// Seed drives every randomized choice (Poisson seeding, dot placement).
	Seed int64
}

// DefaultConfig returns a working configuration for the edge backend.
func DefaultConfig() Config {
	return Config{
		Backend:                      EdgeBackend,
		Detail:                       0.5,
		PassCount:                    2,
		DirectionalStrengthThreshold: 0.05,
		Background: BackgroundConfig{
			Algorithm: preprocess.Auto,
			Strength:  0.5,
		},
		Simplify:        SimplifyConfig{Algorithm: RDP, Epsilon: 1.0},
		Curve:           CurveConfig{Enabled: true, MaxError: 1.0},
		MergeTolerance:  2.0,
		MinBranchLength: 8,
		MinRegionArea:   4,
		NumSuperpixels:  150,
		Compactness:     10,
		DotMinRadius:    1,
		DotMaxRadius:    3,
		Seed:            1,
	}
}

// Validate checks the configuration before any processing begins. Invalid
// combinations are rejected immediately and never retried.
func (c Config) Validate() error {
	if c.Backend < EdgeBackend || c.Backend > DotBackend {
		return &ConfigError{Field: "Backend", Reason: "unknown backend"}
	}
	if c.Detail < 0 || c.Detail > 1 {
		return &ConfigError{Field: "Detail", Reason: "must be in [0, 1]"}
	}
	if c.Multipass && (c.PassCount < 1 || c.PassCount > 10) {
		return &ConfigError{Field: "PassCount", Reason: "must be in [1, 10]"}
	}
	if c.Simplify.Epsilon <= 0 {
		return &ConfigError{Field: "Simplify.Epsilon", Reason: "must be positive"}
	}
	if c.Curve.Enabled && c.Curve.MaxError <= 0 {
		return &ConfigError{Field: "Curve.MaxError", Reason: "must be positive when curve fitting is enabled"}
	}
	if c.MergeTolerance < 0 {
		return &ConfigError{Field: "MergeTolerance", Reason: "must not be negative"}
	}
	if c.MaxProcessingTime < 0 {
		return &ConfigError{Field: "MaxProcessingTime", Reason: "must not be negative"}
	}
	if c.Background.Enabled {
		if c.Background.Strength < 0 || c.Background.Strength > 1 {
			return &ConfigError{Field: "Background.Strength", Reason: "must be in [0, 1]"}
		}
		if c.Background.Tolerance < 0 {
			return &ConfigError{Field: "Background.Tolerance", Reason: "must not be negative"}
		}
	}
	switch c.Backend {
	case CenterlineBackend:
		if c.MinBranchLength < 0 {
			return &ConfigError{Field: "MinBranchLength", Reason: "must not be negative"}
		}
	case SuperpixelBackend:
		if c.NumSuperpixels < 1 {
			return &ConfigError{Field: "NumSuperpixels", Reason: "must be at least 1"}
		}
		if c.Compactness <= 0 {
			return &ConfigError{Field: "Compactness", Reason: "must be positive"}
		}
	case DotBackend:
		if c.DotMinRadius <= 0 {
			return &ConfigError{Field: "DotMinRadius", Reason: "must be positive"}
		}
		if c.DotMaxRadius < c.DotMinRadius {
			return &ConfigError{Field: "DotMaxRadius", Reason: "must be at least DotMinRadius"}
		}
		if c.DotJitter < 0 || c.DotJitter > 1 {
			return &ConfigError{Field: "DotJitter", Reason: "must be in [0, 1]"}
		}
	}
	if c.Workers < 0 {
		return &ConfigError{Field: "Workers", Reason: "must not be negative"}
	}
	return nil
}

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("vectorize: invalid config: %s %s", e.Field, e.Reason)
}
