package arpa

import (
	"math"

	"github.com/banshee-data/radar-core/internal/state"
)

// Config tunes one radar's ARPA processing (spec.md §4.6 ArpaSettings).
type Config struct {
	Threshold          byte
	SearchRadius       int // pixels, in both angle and range dimensions
	AcquireDistance    int // pixels; minimum separation for auto-acquire
	ProcessNoise       float64
	MeasurementNoise   float64
	WarningTimeSec     float64
	WarningDistanceM   float64
	AutoAcquireEnabled bool
}

// DefaultConfig matches the values exercised by spec.md §8's scenarios.
func DefaultConfig() Config {
	return Config{
		Threshold:          DefaultThreshold,
		SearchRadius:       8,
		AcquireDistance:    16,
		ProcessNoise:       0.05,
		MeasurementNoise:   25,
		WarningTimeSec:     300,
		WarningDistanceM:   1852,
		AutoAcquireEnabled: true,
	}
}

// Processor owns one radar's history buffer and target set and performs
// the two-pass per-revolution refresh (spec.md §4.6).
type Processor struct {
	cfg     Config
	history *HistoryBuffer
	targets map[int]*Target
	nextID  int

	pendingDoppler SliceDopplerBins

	// ownShip is the own-ship track in effect for this revolution,
	// supplied by the provider facade before Refresh (spec.md §4.6 CPA/
	// TCPA needs "own ship (lat, lon, sog, cog)"); newly acquired
	// targets capture it as their Kalman local-plane origin.
	ownShip Track
}

// SetOwnShipTrack records the current own-ship position/course/speed,
// used as the local-tangent-plane origin for any target acquired from
// this point on (spec.md §3 HistoryBuffer invariant: own-ship position
// "at the spoke's timestamp, not the current one" applies equally to
// target acquisition).
func (p *Processor) SetOwnShipTrack(t Track) { p.ownShip = t }

// NewProcessor allocates a processor sized to one radar's spoke
// resolution.
func NewProcessor(spokesPerRevolution int, cfg Config) *Processor {
	return &Processor{
		cfg:     cfg,
		history: NewHistoryBuffer(spokesPerRevolution, cfg.Threshold),
		targets: make(map[int]*Target),
	}
}

// OnSpoke implements spoke.Consumer, folding the spoke into the history
// buffer. Doppler classification for the spoke, if any, must be set via
// SetPendingDoppler immediately before the spoke arrives (the spoke
// receiver and Doppler decode share the same incoming datagram).
func (p *Processor) OnSpoke(sp state.Spoke) {
	var doppler DopplerBins
	if p.pendingDoppler != nil {
		doppler = p.pendingDoppler
	}
	p.history.OnSpoke(sp, doppler, p.ownShip)
	p.pendingDoppler = nil
}

// SetPendingDoppler supplies the per-bin Doppler classification for the
// next OnSpoke call.
func (p *Processor) SetPendingDoppler(bins SliceDopplerBins) { p.pendingDoppler = bins }

// Targets returns a snapshot of every current target.
func (p *Processor) Targets() []*Target {
	out := make([]*Target, 0, len(p.targets))
	for _, t := range p.targets {
		out = append(out, t)
	}
	return out
}

// AcquireTarget creates an operator-commanded target at the given polar
// position (spec.md §4.9: "acquire_target(bearing, distance)").
func (p *Processor) AcquireTarget(pos state.Polar) *Target {
	p.nextID++
	t := NewTarget(p.nextID, pos, p.cfg.ProcessNoise, p.cfg.MeasurementNoise)
	t.SetOrigin(p.ownShip)
	east, north := p.localMeters(pos)
	t.SeedLocalPosition(east, north)
	p.targets[t.ID] = t
	return t
}

// localMeters projects a radar-native polar position to the (east,
// north) local-tangent-plane metres frame the Kalman filter works in,
// using the range-in-effect recorded on whatever HistorySpoke the angle
// last saw (spec.md §4.6: Kalman positions are a local-tangent-plane
// metres frame).
func (p *Processor) localMeters(pos state.Polar) (east, north float64) {
	mpb := p.metersPerBin(pos.Angle)
	return polarToLocalMeters(pos, p.history.SpokesPerRevolution(), mpb)
}

func (p *Processor) metersPerBin(angle int) float64 {
	sp, ok := p.history.At(angle)
	if !ok || len(sp.Pixels) == 0 || sp.RangeM <= 0 {
		return 1
	}
	return sp.RangeM / float64(len(sp.Pixels))
}

// polarToLocalMeters converts a spoke-angle/pixel-radius polar position
// to an (east, north) metres offset: angle maps to bearing in radians
// (a full revolution is 2*pi), radius scales by metersPerBin.
func polarToLocalMeters(p state.Polar, spokesPerRevolution int, metersPerBin float64) (east, north float64) {
	if spokesPerRevolution <= 0 {
		return 0, 0
	}
	bearingRad := float64(p.Angle) * 2 * math.Pi / float64(spokesPerRevolution)
	distanceM := float64(p.Radius) * metersPerBin
	return distanceM * math.Sin(bearingRad), distanceM * math.Cos(bearingRad)
}

// TargetBearingDistance converts t's polar position to the bearing
// (degrees) and distance (metres) a TrailPoint records (spec.md §3
// TrailPoint: "{timestamp, bearing°, distanceMeters, optional lat/lon}").
func (p *Processor) TargetBearingDistance(t *Target) (bearingDeg, distanceM float64) {
	spokesPerRevolution := p.history.SpokesPerRevolution()
	if spokesPerRevolution <= 0 {
		return 0, 0
	}
	bearingDeg = float64(t.Position.Angle) * 360.0 / float64(spokesPerRevolution)
	distanceM = float64(t.Position.Radius) * p.metersPerBin(t.Position.Angle)
	return bearingDeg, distanceM
}

// CancelTarget destroys a target (spec.md §3: "destroyed on cancel").
func (p *Processor) CancelTarget(id int) {
	delete(p.targets, id)
}

// Refresh runs one revolution's two-pass target refresh and auto-acquire
// (spec.md §4.6). dtSeconds is the elapsed time since the last refresh,
// fed to every target's Kalman predict step.
func (p *Processor) Refresh(dtSeconds float64) {
	for _, t := range p.targets {
		if t.Status == StatusLost {
			continue
		}
		t.refreshedThisRevolution = PassNone
		t.Kalman().Predict(dtSeconds)
	}

	for _, t := range p.targets {
		if t.Status == StatusLost {
			continue
		}
		p.refreshOne(t, DopplerState(t.Doppler))
		t.refreshedThisRevolution = PassFirst
	}

	// Second pass: widen to AnyPlus for targets the first pass missed,
	// to recover a target that briefly dropped below threshold (spec.md
	// §4.6).
	for _, t := range p.targets {
		if t.Status == StatusLost || t.refreshedThisRevolution != PassFirst {
			continue
		}
		if t.lostCount == 0 {
			continue // first pass already found it; skip Second.
		}
		p.refreshOne(t, DopplerStateAnyPlus)
		t.refreshedThisRevolution = PassSecond
	}

	if p.cfg.AutoAcquireEnabled {
		p.autoAcquire()
	}
}

func (p *Processor) refreshOne(t *Target, ds DopplerState) {
	start, found := p.findStartPixel(t.Position, ds, p.cfg.SearchRadius)
	if !found {
		t.OnRefreshMissed()
		return
	}
	// TraceContour needs a boundary start: step counter-clockwise until
	// the next pixel no longer matches.
	for i := 0; i < p.history.SpokesPerRevolution(); i++ {
		prev := state.Polar{
			Angle:  state.NormalizeAngle(start.Angle-1, p.history.SpokesPerRevolution()),
			Radius: start.Radius,
		}
		if !traceMatch(p.history, ds, prev) {
			break
		}
		start = prev
	}
	contour, err := TraceContour(p.history, ds, start)
	if err != nil {
		t.OnRefreshMissed()
		return
	}
	centroid := Centroid(contour)
	counts := CountDopplerPixels(p.history, contour)
	next := NextDopplerState(t.Doppler, counts)
	east, north := p.localMeters(centroid)
	t.OnRefreshFound(centroid, next)
	t.Kalman().Update(east, north)
}

// findStartPixel searches a disk of radius searchRadius centred on
// center for the first pixel matching ds, scanning nearest-first (spec.md
// §4.6: "search the history buffer in a disk of radius search_radius").
func (p *Processor) findStartPixel(center state.Polar, ds DopplerState, searchRadius int) (state.Polar, bool) {
	for r := 0; r <= searchRadius; r++ {
		for da := -r; da <= r; da++ {
			for dr := -r; dr <= r; dr++ {
				if abs(da) != r && abs(dr) != r {
					continue // only examine the current ring's perimeter
				}
				cand := state.Polar{
					Angle:  state.NormalizeAngle(center.Angle+da, p.history.SpokesPerRevolution()),
					Radius: center.Radius + dr,
				}
				if traceMatch(p.history, ds, cand) {
					return cand, true
				}
			}
		}
	}
	return state.Polar{}, false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// autoAcquire scans for Doppler-approaching clusters not within
// acquire_distance of any existing target (spec.md §4.6).
func (p *Processor) autoAcquire() {
	spokesPerRevolution := p.history.SpokesPerRevolution()
	for a := 0; a < spokesPerRevolution; a++ {
		sp, ok := p.history.At(a)
		if !ok {
			continue
		}
		for r, px := range sp.Pixels {
			if !px.IsTarget() || !px.IsApproaching() {
				continue
			}
			cand := state.Polar{Angle: a, Radius: r}
			if p.nearExistingTarget(cand) {
				continue
			}
			p.AcquireTarget(cand)
		}
	}
}

func (p *Processor) nearExistingTarget(cand state.Polar) bool {
	for _, t := range p.targets {
		if abs(t.Position.Radius-cand.Radius) <= p.cfg.AcquireDistance &&
			abs(t.Position.Angle-cand.Angle) <= p.cfg.AcquireDistance {
			return true
		}
	}
	return false
}
