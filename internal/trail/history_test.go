package trail

import "testing"

func TestAppendAndRetrieve(t *testing.T) {
	s := New(Settings{MaxPoints: 3, MaxAgeSecs: 0})
	for i := 0; i < 5; i++ {
		s.Append(1, Point{TimestampMs: int64(i * 1000), BearingDeg: float64(i), DistanceM: 100})
	}
	got := s.Trail(1)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3 (max-points bound)", len(got))
	}
	// Oldest-first, trimmed from the front.
	if got[0].BearingDeg != 2 || got[2].BearingDeg != 4 {
		t.Errorf("trail = %+v, want bearings [2,3,4]", got)
	}
}

func TestAppendAgeBound(t *testing.T) {
	s := New(Settings{MaxPoints: 0, MaxAgeSecs: 10})
	s.Append(1, Point{TimestampMs: 0})
	s.Append(1, Point{TimestampMs: 5_000})
	s.Append(1, Point{TimestampMs: 20_000}) // now - 10s = 10_000, drops the first two entries older than that cutoff

	got := s.Trail(1)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 (age bound drops stale points)", len(got))
	}
	if got[0].TimestampMs != 20_000 {
		t.Errorf("surviving point = %+v", got[0])
	}
}

func TestClearAndClearAll(t *testing.T) {
	s := New(DefaultSettings())
	s.Append(1, Point{TimestampMs: 0})
	s.Append(2, Point{TimestampMs: 0})
	s.Clear(1)
	if got := s.Trail(1); got != nil {
		t.Errorf("cleared trail = %v, want nil", got)
	}
	if got := s.Trail(2); len(got) != 1 {
		t.Errorf("trail 2 = %v, want 1 point", got)
	}
	s.ClearAll()
	if got := s.Trail(2); got != nil {
		t.Errorf("trail 2 after ClearAll = %v, want nil", got)
	}
}

func TestIndependentTargets(t *testing.T) {
	s := New(DefaultSettings())
	s.Append(1, Point{TimestampMs: 1, BearingDeg: 10})
	s.Append(2, Point{TimestampMs: 1, BearingDeg: 20})
	if got := s.Trail(1); len(got) != 1 || got[0].BearingDeg != 10 {
		t.Errorf("trail 1 = %+v", got)
	}
	if got := s.Trail(2); len(got) != 1 || got[0].BearingDeg != 20 {
		t.Errorf("trail 2 = %+v", got)
	}
}
