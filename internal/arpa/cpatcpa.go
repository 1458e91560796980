package arpa

import "math"

// Track is a constant-velocity (lat, lon, sog-in-m/s, cog-in-radians)
// snapshot used by CPA/TCPA (spec.md §4.6).
type Track struct {
	LatDeg float64
	LonDeg float64
	SOGms  float64
	COGrad float64
}

const metersPerDegreeLat = 111_320.0

// toLocalMeters projects a lat/lon to a flat local-tangent-plane
// (east, north) in meters centred on origin, accurate enough at the
// scale of a CPA calculation (a few nautical miles).
func toLocalMeters(origin, p Track) (east, north float64) {
	north = (p.LatDeg - origin.LatDeg) * metersPerDegreeLat
	metersPerDegreeLon := metersPerDegreeLat * math.Cos(origin.LatDeg*math.Pi/180)
	east = (p.LonDeg - origin.LonDeg) * metersPerDegreeLon
	return
}

// fromLocalMeters is the inverse of toLocalMeters: projects a local-
// tangent-plane (east, north) offset from origin back to lat/lon.
func fromLocalMeters(origin Track, east, north float64) (latDeg, lonDeg float64) {
	latDeg = origin.LatDeg + north/metersPerDegreeLat
	metersPerDegreeLon := metersPerDegreeLat * math.Cos(origin.LatDeg*math.Pi/180)
	if metersPerDegreeLon == 0 {
		return latDeg, origin.LonDeg
	}
	lonDeg = origin.LonDeg + east/metersPerDegreeLon
	return
}

// speedOf and courseOf invert the (vx, vy) = (sog*sin(cog), sog*cos(cog))
// convention ComputeCPA uses, so a Kalman velocity estimate can be
// reported back as a Track's SOG/COG.
func speedOf(vx, vy float64) float64 { return math.Hypot(vx, vy) }
func courseOf(vx, vy float64) float64 {
	if vx == 0 && vy == 0 {
		return 0
	}
	return math.Atan2(vx, vy)
}

// CPAResult is the closest-point-of-approach outcome (spec.md §4.6).
type CPAResult struct {
	DistanceM float64
	TCPASec   float64 // negative means CPA already occurred in the past
}

// ComputeCPA finds the closest-point-of-approach distance and time
// between own-ship and a target under the constant-velocity assumption
// (spec.md §4.6).
func ComputeCPA(ownShip, target Track) CPAResult {
	ox, oy := 0.0, 0.0
	tx, ty := toLocalMeters(ownShip, target)

	ovx := ownShip.SOGms * math.Sin(ownShip.COGrad)
	ovy := ownShip.SOGms * math.Cos(ownShip.COGrad)
	tvx := target.SOGms * math.Sin(target.COGrad)
	tvy := target.SOGms * math.Cos(target.COGrad)

	// Relative position and velocity of target w.r.t. own-ship.
	rx, ry := tx-ox, ty-oy
	rvx, rvy := tvx-ovx, tvy-ovy

	speed2 := rvx*rvx + rvy*rvy
	if speed2 < 1e-9 {
		// No relative motion: CPA is now, at current separation.
		return CPAResult{DistanceM: math.Hypot(rx, ry), TCPASec: 0}
	}

	tcpa := -(rx*rvx + ry*rvy) / speed2
	cx := rx + rvx*tcpa
	cy := ry + rvy*tcpa
	return CPAResult{DistanceM: math.Hypot(cx, cy), TCPASec: tcpa}
}

// IsCollisionWarning reports whether a CPA result should surface a
// collision warning: TCPA in (0, warningTimeSec] and distance within
// warningDistanceM (spec.md §4.6).
func IsCollisionWarning(r CPAResult, warningTimeSec, warningDistanceM float64) bool {
	return r.TCPASec > 0 && r.TCPASec <= warningTimeSec && r.DistanceM <= warningDistanceM
}
