package vectorize

import (
	"image/color"
	"time"

	"github.com/robmcdonald5/vec2art-sub004/pkg/geometry"
)

// Kind tags the primitive variant.
type Kind int

const (
	KindPolyline Kind = iota
	KindFill
	KindDot
)

func (k Kind) String() string {
	switch k {
	case KindPolyline:
		return "polyline"
	case KindFill:
		return "fill"
	case KindDot:
		return "dot"
	}
	return "unknown"
}

// Gradient is a linear color ramp between two path endpoints, attached when
// the colors at the ends of a path diverge perceptibly.
type Gradient struct {
	From, To color.RGBA
	X1, Y1   float64
	X2, Y2   float64
}

// Primitive is one tagged output element. Which fields are meaningful depends
// on Kind: polylines use Points/Curves/Width, fills use Rings (outer ring
// first, holes after, drawn even-odd), dots use X/Y/Radius/Opacity.
type Primitive struct {
	Kind Kind

	Points geometry.Polyline
	Curves []geometry.CubicBezier
	Closed bool
	Width  float64

	Rings   []geometry.Polyline
	EvenOdd bool
	Area    float64

	X, Y    float64
	Radius  float64
	Opacity float64

	Color    color.RGBA
	Gradient *Gradient
}

// Stats summarizes one vectorization call.
type Stats struct {
	Passes   int
	Duration time.Duration
	// Report is the profiler's per-stage timing report, empty when no
	// profiler was attached.
	Report string
}

// Result is the outcome of a vectorization call. Primitives are in
// deterministic emission order; Skipped counts features abandoned by tracing
// or backend-local failures; Truncated reports that the wall-clock budget cut
// the run short and the sequence is the best partial result.
type Result struct {
	Primitives  []Primitive
	Skipped     int
	Truncated   bool
	Diagnostics []string
	Stats       Stats
}
