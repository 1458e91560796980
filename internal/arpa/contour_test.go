package arpa

import (
	"testing"

	"github.com/banshee-data/radar-core/internal/state"
)

// buildRectangleBuffer creates a history buffer with a solid rectangular
// target region spanning angles [aMin,aMax] and radii [rMin,rMax].
func buildRectangleBuffer(spokesPerRevolution, maxRadius int, aMin, aMax, rMin, rMax int) *HistoryBuffer {
	h := NewHistoryBuffer(spokesPerRevolution, DefaultThreshold)
	for a := 0; a < spokesPerRevolution; a++ {
		returns := make([]byte, maxRadius)
		if a >= aMin && a <= aMax {
			for r := rMin; r <= rMax; r++ {
				returns[r] = 200
			}
		}
		h.OnSpoke(state.Spoke{SpokeIndex: a, TimestampMs: int64(a), RangeM: 1000, Returns: returns}, nil, Track{})
	}
	return h
}

func TestTraceContourFindsRectangleBoundary(t *testing.T) {
	h := buildRectangleBuffer(16, 20, 4, 8, 5, 10)
	start := state.Polar{Angle: 4, Radius: 5}

	contour, err := TraceContour(h, DopplerStateAny, start)
	if err != nil {
		t.Fatalf("TraceContour: %v", err)
	}
	if len(contour) < MinContourLength {
		t.Errorf("contour length = %d, want >= %d", len(contour), MinContourLength)
	}
	if len(contour) >= MaxContourLength-2 {
		t.Errorf("contour length = %d, want < %d", len(contour), MaxContourLength-2)
	}
	for _, p := range contour {
		sp, ok := h.At(p.Angle)
		if !ok || p.Radius < 0 || p.Radius >= len(sp.Pixels) || !sp.Pixels[p.Radius].IsTarget() {
			t.Errorf("contour point %+v is not a target pixel", p)
		}
	}
}

func TestTraceContourFailsOnNoEchoAtStart(t *testing.T) {
	h := buildRectangleBuffer(16, 20, 4, 8, 5, 10)
	start := state.Polar{Angle: 0, Radius: 0}
	_, err := TraceContour(h, DopplerStateAny, start)
	ce, ok := err.(*ContourError)
	if !ok || ce.Kind != ErrNoEchoAtStart {
		t.Fatalf("err = %v, want ErrNoEchoAtStart", err)
	}
}

func TestCentroidOfSquare(t *testing.T) {
	contour := []state.Polar{
		{Angle: 0, Radius: 0},
		{Angle: 0, Radius: 4},
		{Angle: 4, Radius: 4},
		{Angle: 4, Radius: 0},
	}
	c := Centroid(contour)
	if c.Angle != 2 || c.Radius != 2 {
		t.Errorf("centroid = %+v, want {2,2}", c)
	}
}

func TestCountDopplerPixels(t *testing.T) {
	h := NewHistoryBuffer(4, DefaultThreshold)
	h.OnSpoke(state.Spoke{SpokeIndex: 0, Returns: []byte{200, 200, 200}}, SliceDopplerBins{DopplerApproaching, DopplerReceding, DopplerNone}, Track{})
	contour := []state.Polar{{Angle: 0, Radius: 0}, {Angle: 0, Radius: 1}, {Angle: 0, Radius: 2}}
	counts := CountDopplerPixels(h, contour)
	if counts.Total != 3 || counts.Approaching != 1 || counts.Receding != 1 {
		t.Errorf("counts = %+v, want {Total:3 Approaching:1 Receding:1}", counts)
	}
}
