package arpa

import "github.com/banshee-data/radar-core/internal/state"

// TargetStatus is the ArpaTarget lifecycle (spec.md §3 ArpaTarget,
// §4.6).
type TargetStatus int

const (
	StatusAcquire0 TargetStatus = iota
	StatusAcquire1
	StatusAcquire2
	StatusAcquire3
	StatusTracking
	StatusLost
)

// MaxLostCount is the lost-count ceiling past which a target is marked
// Lost (spec.md §3: "lost-count <= MAX_LOST_COUNT=3").
const MaxLostCount = 3

// acquireSuccessesToTrack is K in "acquiring -> tracking after K=2
// successful refreshes" (spec.md §3).
const acquireSuccessesToTrack = 2

// Target is one tracked (or still-acquiring) ARPA contact.
type Target struct {
	ID     int
	Status TargetStatus

	Position state.Polar
	Doppler  DopplerState

	kalman *Kalman

	successfulRefreshes int
	lostCount           int

	lastOwnShip Track
	lastTarget  Track

	// Origin is the own-ship position the Kalman filter's local-tangent
	// plane is centred on (spec.md §4.6: Kalman "Positions are in a
	// local-tangent-plane metres frame centred on own-ship at the time
	// of target acquisition"); zero-value until SetOrigin is called by
	// whatever owns own-ship position (the provider facade).
	Origin Track

	refreshedThisRevolution Pass
}

// SetOrigin records the own-ship fix in effect when this target was
// acquired, so WorldTrack can project the Kalman filter's local (x,y)
// state back to lat/lon for CPA/TCPA and trail sampling.
func (t *Target) SetOrigin(origin Track) { t.Origin = origin }

// SeedLocalPosition overwrites the Kalman filter's initial (x,y) state,
// leaving velocity and covariance untouched. The processor calls this
// once at acquisition time with the target's polar position already
// converted to the Origin-centred local-tangent-plane metres frame
// (spec.md §4.6), since NewTarget itself has no metres-per-bin scale to
// do that conversion with.
func (t *Target) SeedLocalPosition(x, y float64) { t.kalman.SetPosition(x, y) }

// WorldTrack projects the target's current Kalman state through Origin
// into a world (lat, lon, speed, course) Track suitable for
// ComputeCPA (spec.md §3 ArpaTarget "filtered world position (lat, lon,
// speed, course, timestamp)").
func (t *Target) WorldTrack(nowMs int64) Track {
	x, y := t.kalman.Position()
	lat, lon := fromLocalMeters(t.Origin, x, y)
	vx, vy := t.kalman.Velocity()
	return Track{
		LatDeg: lat,
		LonDeg: lon,
		SOGms:  speedOf(vx, vy),
		COGrad: courseOf(vx, vy),
	}
}

// Pass distinguishes which of the two per-revolution refresh passes
// last touched a target (spec.md §4.6: "A target refreshed in First
// skips Second").
type Pass int

const (
	PassNone Pass = iota
	PassFirst
	PassSecond
)

// NewTarget creates an acquiring target at a starting polar position,
// seeding its Kalman filter at the local-plane origin (spec.md §4.6).
func NewTarget(id int, pos state.Polar, processNoise, measurementNoise float64) *Target {
	return &Target{
		ID:       id,
		Status:   StatusAcquire0,
		Position: pos,
		Doppler:  DopplerStateAny,
		kalman:   NewKalman(0, 0, processNoise, measurementNoise),
	}
}

// OnRefreshFound advances the lifecycle after a successful contour find:
// resets lost-count, promotes acquiring targets, and counts toward the
// K=2 threshold (spec.md §3).
func (t *Target) OnRefreshFound(centroid state.Polar, nextDoppler DopplerState) {
	t.Position = centroid
	t.Doppler = nextDoppler
	t.lostCount = 0

	switch t.Status {
	case StatusAcquire0, StatusAcquire1, StatusAcquire2, StatusAcquire3:
		t.successfulRefreshes++
		if t.successfulRefreshes >= acquireSuccessesToTrack {
			t.Status = StatusTracking
		} else {
			t.Status = t.Status + 1
		}
	case StatusTracking:
		// already tracking; nothing further to promote.
	case StatusLost:
		// A previously lost target being refound restarts acquisition
		// rather than silently resuming tracking.
		t.Status = StatusAcquire0
		t.successfulRefreshes = 1
	}
}

// OnRefreshMissed advances the lifecycle after a failed contour search
// (spec.md §4.6: "else increment lost-count and on > MAX_LOST_COUNT mark
// Lost").
func (t *Target) OnRefreshMissed() {
	t.lostCount++
	if t.lostCount > MaxLostCount {
		t.Status = StatusLost
	}
}

// Kalman exposes the target's filter for predict/update by the
// processor.
func (t *Target) Kalman() *Kalman { return t.kalman }
