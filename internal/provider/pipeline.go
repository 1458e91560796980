package provider

import (
	"github.com/banshee-data/radar-core/internal/arpa"
	"github.com/banshee-data/radar-core/internal/guardzone"
	"github.com/banshee-data/radar-core/internal/state"
	"github.com/banshee-data/radar-core/internal/trail"
)

// pipeline is the per-radar spoke.Consumer that drives everything a
// completed revolution triggers: the ARPA two-pass refresh, guard-zone
// alert latch reset, trail sampling, and collision-warning evaluation
// (spec.md §4.6, §4.7, §4.8, §6). It is fed every output spoke alongside
// the ARPA processor and guard-zone processor themselves.
type pipeline struct {
	radarID string
	arpa    *arpa.Processor
	guard   *guardzone.Processor
	trails  *trail.Store
	cfg     arpa.Config

	ownShip arpaTrack

	lastSpokeIndex int
	lastRevMs      int64
	warnings       []CollisionWarning
}

// arpaTrack aliases arpa.Track so this file reads without repeating the
// import qualifier at every use.
type arpaTrack = arpa.Track

func newPipeline(radarID string, arpaProc *arpa.Processor, guardProc *guardzone.Processor, trails *trail.Store, cfg arpa.Config) *pipeline {
	return &pipeline{
		radarID:        radarID,
		arpa:           arpaProc,
		guard:          guardProc,
		trails:         trails,
		cfg:            cfg,
		lastSpokeIndex: -1,
	}
}

func (pl *pipeline) setOwnShip(t arpaTrack) { pl.ownShip = t }

// OnSpoke implements spoke.Consumer. It only watches for the spoke-index
// wraparound that marks a completed revolution (spec.md §4.6: "per-
// revolution two-pass refresh"); the ARPA history buffer and guard-zone
// processor are registered as independent consumers on the same
// receiver and see every spoke directly.
func (pl *pipeline) OnSpoke(sp state.Spoke) {
	if pl.lastSpokeIndex >= 0 && sp.SpokeIndex < pl.lastSpokeIndex {
		pl.onRevolution(sp.TimestampMs)
	}
	pl.lastSpokeIndex = sp.SpokeIndex
}

// onRevolution runs once per completed sweep: refresh every target,
// reset guard-zone alert latches, sample trail points, and evaluate
// CPA/TCPA for a collision warning (spec.md §4.6, §4.7, §4.8, §6).
func (pl *pipeline) onRevolution(nowMs int64) {
	dt := 0.0
	if pl.lastRevMs != 0 {
		dt = float64(nowMs-pl.lastRevMs) / 1000.0
	}
	pl.lastRevMs = nowMs

	pl.arpa.Refresh(dt)
	pl.guard.NewRevolution()

	for _, t := range pl.arpa.Targets() {
		if t.Status == arpa.StatusLost {
			continue
		}
		world := t.WorldTrack(nowMs)
		bearingDeg, distanceM := pl.arpa.TargetBearingDistance(t)
		pl.trails.Append(t.ID, trail.Point{
			TimestampMs: nowMs,
			BearingDeg:  bearingDeg,
			DistanceM:   distanceM,
			HasLatLon:   true,
			LatDeg:      world.LatDeg,
			LonDeg:      world.LonDeg,
		})

		if t.Status != arpa.StatusTracking {
			continue
		}
		cpa := arpa.ComputeCPA(pl.ownShip, world)
		if arpa.IsCollisionWarning(cpa, pl.cfg.WarningTimeSec, pl.cfg.WarningDistanceM) {
			pl.warnings = append(pl.warnings, CollisionWarning{
				RadarID:   pl.radarID,
				TargetID:  t.ID,
				Status:    t.Status,
				CPAMeters: cpa.DistanceM,
				TCPASec:   cpa.TCPASec,
			})
		}
	}
}

func (pl *pipeline) drainWarnings() []CollisionWarning {
	out := pl.warnings
	pl.warnings = nil
	return out
}
