// Package guardzone implements the arc-zone intrusion detector (spec.md
// §4.7, §3 GuardZone): per radar, a list of enabled arc zones is scanned
// against every incoming spoke, latching at most one alert per zone per
// revolution (SPEC_FULL.md §12). Modeled on the original's
// GuardZoneProcessor (_examples/original_source/mayara-core/src/
// guard_zones/mod.rs) in the teacher's poll-consumer idiom
// (internal/spoke.Consumer).
package guardzone

import "github.com/banshee-data/radar-core/internal/state"

// Zone is one arc-shaped guard zone (spec.md §3 GuardZone).
type Zone struct {
	ID      int
	Enabled bool

	StartBearingDeg float64
	EndBearingDeg   float64
	InnerMeters     float64
	OuterMeters     float64
	Sensitivity     byte

	// alertedThisRevolution latches so at most one Alert fires per zone
	// per revolution (spec.md §4.7); cleared by Processor.NewRevolution.
	alertedThisRevolution bool
}

// Alert is emitted the first time a revolution's scan finds an intrusion
// in a zone (spec.md §4.7, §6 "guard-zone alerts").
type Alert struct {
	ZoneID      int
	BearingDeg  float64
	DistanceM   float64
	Intensity   byte
	TimestampMs int64
}

// Processor owns one radar's guard zones and evaluates every incoming
// spoke against them (spec.md §4.7). It implements spoke.Consumer
// indirectly via OnSpoke so the spoke receiver can fan spokes out to it
// directly, alongside ARPA and trails.
type Processor struct {
	spokesPerRevolution int
	zones               map[int]*Zone
	pending             []Alert
}

// New allocates a guard-zone processor sized to one radar's spoke
// resolution (bearing-to-spoke-index conversion needs it).
func New(spokesPerRevolution int) *Processor {
	return &Processor{spokesPerRevolution: spokesPerRevolution, zones: make(map[int]*Zone)}
}

// AddZone creates or replaces a zone by id (spec.md §4.9 "guard-zone
// CRUD").
func (p *Processor) AddZone(z Zone) {
	cp := z
	cp.alertedThisRevolution = false
	p.zones[z.ID] = &cp
}

// RemoveZone deletes a zone by id.
func (p *Processor) RemoveZone(id int) {
	delete(p.zones, id)
}

// Zone returns a copy of the named zone, if it exists.
func (p *Processor) Zone(id int) (Zone, bool) {
	z, ok := p.zones[id]
	if !ok {
		return Zone{}, false
	}
	return *z, true
}

// Zones returns a snapshot of every configured zone.
func (p *Processor) Zones() []Zone {
	out := make([]Zone, 0, len(p.zones))
	for _, z := range p.zones {
		out = append(out, *z)
	}
	return out
}

// NewRevolution resets every zone's per-revolution alert latch (spec.md
// §4.7: "at most one alert per zone per revolution", reset at top of
// each revolution per SPEC_FULL.md §12). Callers invoke this once when
// spoke index wraps back to 0.
func (p *Processor) NewRevolution() {
	for _, z := range p.zones {
		z.alertedThisRevolution = false
	}
}

// OnSpoke implements spoke.Consumer: scans every enabled zone whose
// bearing range covers this spoke's angle for an intrusion (spec.md
// §4.7).
func (p *Processor) OnSpoke(sp state.Spoke) {
	bearing := spokeAngleToBearing(sp.SpokeIndex, p.spokesPerRevolution)
	metersPerBin := 0.0
	if len(sp.Returns) > 0 {
		metersPerBin = sp.RangeM / float64(len(sp.Returns))
	}
	for _, z := range p.zones {
		if !z.Enabled || z.alertedThisRevolution {
			continue
		}
		if !bearingInArc(bearing, z.StartBearingDeg, z.EndBearingDeg) {
			continue
		}
		if alert, ok := scanZone(sp, z, bearing, metersPerBin); ok {
			z.alertedThisRevolution = true
			p.pending = append(p.pending, alert)
		}
	}
}

// scanZone checks sp's returns between z.InnerMeters and z.OuterMeters
// for a sample exceeding sensitivity (spec.md §4.7, §8 scenario 9).
func scanZone(sp state.Spoke, z *Zone, bearing, metersPerBin float64) (Alert, bool) {
	if metersPerBin <= 0 {
		return Alert{}, false
	}
	innerBin := int(z.InnerMeters / metersPerBin)
	outerBin := int(z.OuterMeters / metersPerBin)
	if outerBin >= len(sp.Returns) {
		outerBin = len(sp.Returns) - 1
	}
	for bin := innerBin; bin <= outerBin; bin++ {
		if bin < 0 || bin >= len(sp.Returns) {
			continue
		}
		if sp.Returns[bin] >= z.Sensitivity {
			return Alert{
				ZoneID:      z.ID,
				BearingDeg:  bearing,
				DistanceM:   float64(bin) * metersPerBin,
				Intensity:   sp.Returns[bin],
				TimestampMs: sp.TimestampMs,
			}, true
		}
	}
	return Alert{}, false
}

// DrainAlerts returns and clears every alert produced since the last
// call (spec.md §4.9 "the runtime receives ... guard-zone alerts").
func (p *Processor) DrainAlerts() []Alert {
	out := p.pending
	p.pending = nil
	return out
}

func spokeAngleToBearing(spokeIndex, spokesPerRevolution int) float64 {
	if spokesPerRevolution <= 0 {
		return 0
	}
	return float64(spokeIndex) * 360.0 / float64(spokesPerRevolution)
}

// bearingInArc reports whether bearing falls within [start, end],
// wrapping through 0/360 when start > end (e.g. a zone spanning 350..10).
func bearingInArc(bearing, start, end float64) bool {
	if start <= end {
		return bearing >= start && bearing <= end
	}
	return bearing >= start || bearing <= end
}
