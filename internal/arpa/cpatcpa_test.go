package arpa

import (
	"math"
	"testing"
)

func TestComputeCPAHeadOnCollisionCourse(t *testing.T) {
	own := Track{LatDeg: 0, LonDeg: 0, SOGms: 5, COGrad: 0} // heading due north
	target := Track{LatDeg: 0.01, LonDeg: 0, SOGms: 5, COGrad: math.Pi}
	r := ComputeCPA(own, target)
	if r.DistanceM > 5 {
		t.Errorf("distance = %v, want near 0 (head-on collision course)", r.DistanceM)
	}
	if r.TCPASec <= 0 {
		t.Errorf("tcpa = %v, want positive", r.TCPASec)
	}
}

func TestComputeCPAParallelCoursesNeverConverge(t *testing.T) {
	own := Track{LatDeg: 0, LonDeg: 0, SOGms: 5, COGrad: 0}
	target := Track{LatDeg: 0, LonDeg: 0.01, SOGms: 5, COGrad: 0}
	r := ComputeCPA(own, target)
	// Parallel, equal-speed courses: the separation at t=0 is the
	// permanent CPA distance and TCPA is ~0.
	if math.Abs(r.TCPASec) > 1 {
		t.Errorf("tcpa = %v, want near 0 for parallel courses", r.TCPASec)
	}
}

func TestIsCollisionWarningGating(t *testing.T) {
	r := CPAResult{DistanceM: 100, TCPASec: 120}
	if !IsCollisionWarning(r, 300, 500) {
		t.Error("expected warning within time/distance gates")
	}
	if IsCollisionWarning(r, 60, 500) {
		t.Error("should not warn when TCPA exceeds warning time")
	}
	if IsCollisionWarning(r, 300, 50) {
		t.Error("should not warn when distance exceeds warning distance")
	}
	past := CPAResult{DistanceM: 10, TCPASec: -5}
	if IsCollisionWarning(past, 300, 500) {
		t.Error("should not warn once TCPA has already passed")
	}
}
