// Package trail implements the per-target position-history ring buffer
// (spec.md §3 TrailPoint, §4.8): bounded by whichever of max-points or
// max-age-seconds is hit first, with explicit clearing. Modeled on the
// original's TrailStore (_examples/original_source/mayara-core/src/
// trails/mod.rs).
package trail

// Point is one recorded target position (spec.md §3 TrailPoint).
type Point struct {
	TimestampMs int64
	BearingDeg  float64
	DistanceM   float64
	HasLatLon   bool
	LatDeg      float64
	LonDeg      float64
}

// Settings bounds one target's trail (spec.md §4.8: "Configurable as
// max-points or max-age-seconds (whichever hits first is authoritative)").
type Settings struct {
	MaxPoints  int
	MaxAgeSecs float64
}

// DefaultSettings matches a typical chartplotter trail length.
func DefaultSettings() Settings {
	return Settings{MaxPoints: 200, MaxAgeSecs: 600}
}

// trail is one target's ring buffer. Implemented as an append-and-trim
// slice rather than a fixed-capacity ring array since MaxPoints can be
// reconfigured at runtime (spec.md §4.9 "installation-config ... CRUD").
type trail struct {
	points []Point
}

// Store owns every tracked target's trail (spec.md §4.8, owned
// exclusively by the provider's RadarInfo per spec.md §3 ownership
// notes).
type Store struct {
	settings Settings
	trails   map[int]*trail
}

// New allocates a trail store with the given bounds.
func New(settings Settings) *Store {
	return &Store{settings: settings, trails: make(map[int]*trail)}
}

// SetSettings updates the bounds applied to every target's trail on
// subsequent appends (existing points are trimmed to the new bound on
// the next Append call, not retroactively).
func (s *Store) SetSettings(settings Settings) { s.settings = settings }

// Append records targetID's current position, then trims the trail to
// satisfy both bounds (spec.md §4.8: "two independent checks evaluated
// on every append", SPEC_FULL.md §12).
func (s *Store) Append(targetID int, p Point) {
	t, ok := s.trails[targetID]
	if !ok {
		t = &trail{}
		s.trails[targetID] = t
	}
	t.points = append(t.points, p)
	s.trim(t, p.TimestampMs)
}

func (s *Store) trim(t *trail, nowMs int64) {
	if s.settings.MaxPoints > 0 && len(t.points) > s.settings.MaxPoints {
		excess := len(t.points) - s.settings.MaxPoints
		t.points = t.points[excess:]
	}
	if s.settings.MaxAgeSecs > 0 {
		cutoffMs := nowMs - int64(s.settings.MaxAgeSecs*1000)
		i := 0
		for i < len(t.points) && t.points[i].TimestampMs < cutoffMs {
			i++
		}
		if i > 0 {
			t.points = t.points[i:]
		}
	}
}

// Trail returns a snapshot of targetID's recorded points, oldest first.
func (s *Store) Trail(targetID int) []Point {
	t, ok := s.trails[targetID]
	if !ok {
		return nil
	}
	out := make([]Point, len(t.points))
	copy(out, t.points)
	return out
}

// Clear removes targetID's trail entirely (spec.md §4.8: "Clearing is
// explicit").
func (s *Store) Clear(targetID int) {
	delete(s.trails, targetID)
}

// ClearAll removes every target's trail.
func (s *Store) ClearAll() {
	s.trails = make(map[int]*trail)
}
