// Package arpa implements the ARPA (Automatic Radar Plotting Aid) target
// tracking subsystem (spec.md §4.6): a ring history buffer of decoded
// spoke bits, Doppler-state classification, square-tracing contour
// extraction, a constant-velocity Kalman filter, target lifecycle
// management, and CPA/TCPA collision math.
package arpa

import "github.com/banshee-data/radar-core/internal/state"

// DefaultThreshold is the minimum return intensity a bin must reach to count as
// a target pixel (spec.md §4.6).
const DefaultThreshold byte = 50

// HistoryPixel packs the four per-bin bits spec.md §4.6 names:
// bit0 target, bit1 backup (previous-scan target), bit2 Doppler
// approaching, bit3 Doppler receding.
type HistoryPixel byte

const (
	bitTarget HistoryPixel = 1 << iota
	bitBackup
	bitApproaching
	bitReceding
)

func (p HistoryPixel) IsTarget() bool      { return p&bitTarget != 0 }
func (p HistoryPixel) IsBackup() bool      { return p&bitBackup != 0 }
func (p HistoryPixel) IsApproaching() bool { return p&bitApproaching != 0 }
func (p HistoryPixel) IsReceding() bool    { return p&bitReceding != 0 }

// HistorySpoke is one angular slice of classified bins.
//
// OwnLatDeg/OwnLonDeg are own-ship's position at the moment this spoke
// was received, not the position at read time (spec.md §3 HistoryBuffer
// invariant: "a spoke's lat/lon is the own-ship position at the spoke's
// timestamp, not the current one"). A later Kalman update for a target
// whose contour touches this spoke must project through this fix, not
// whatever own-ship reports now.
type HistorySpoke struct {
	TimestampMs int64
	RangeM      float64
	OwnLatDeg   float64
	OwnLonDeg   float64
	Pixels      []HistoryPixel
}

// HistoryBuffer is a ring of HistorySpoke indexed by spoke angle
// (spec.md §4.6 "ring of (spoke-index -> HistorySpoke)").
type HistoryBuffer struct {
	spokesPerRevolution int
	threshold           byte
	spokes              []HistorySpoke
}

// NewHistoryBuffer allocates a ring sized to spokesPerRevolution.
func NewHistoryBuffer(spokesPerRevolution int, threshold byte) *HistoryBuffer {
	return &HistoryBuffer{
		spokesPerRevolution: spokesPerRevolution,
		threshold:           threshold,
		spokes:              make([]HistorySpoke, spokesPerRevolution),
	}
}

// OnSpoke classifies one incoming spoke's bins and stores it, carrying
// the prior scan's target bit forward into bit1 "backup" (spec.md
// §4.6: "enables AnyPlus searches that rediscover a target that just
// dropped below threshold").
//
// doppler supplies, per bin, whether the bin's Doppler reading indicates
// approach/recession; nil means no Doppler data for this spoke (the
// bit simply stays clear). ownShip is own-ship's position at the moment
// this spoke arrived, stored verbatim on the HistorySpoke (spec.md §3
// HistoryBuffer invariant).
func (h *HistoryBuffer) OnSpoke(sp state.Spoke, doppler DopplerBins, ownShip Track) {
	idx := state.NormalizeAngle(sp.SpokeIndex, h.spokesPerRevolution)
	prev := h.spokes[idx]

	pixels := make([]HistoryPixel, len(sp.Returns))
	for i, v := range sp.Returns {
		var p HistoryPixel
		if v >= h.threshold {
			p |= bitTarget
		}
		if i < len(prev.Pixels) && prev.Pixels[i].IsTarget() {
			p |= bitBackup
		}
		if doppler != nil {
			switch doppler.At(i) {
			case DopplerApproaching:
				p |= bitApproaching
			case DopplerReceding:
				p |= bitReceding
			}
		}
		pixels[i] = p
	}
	h.spokes[idx] = HistorySpoke{
		TimestampMs: sp.TimestampMs,
		RangeM:      sp.RangeM,
		OwnLatDeg:   ownShip.LatDeg,
		OwnLonDeg:   ownShip.LonDeg,
		Pixels:      pixels,
	}
}

// At returns the stored spoke at angle (normalized) and whether it has
// ever been written.
func (h *HistoryBuffer) At(angle int) (HistorySpoke, bool) {
	idx := state.NormalizeAngle(angle, h.spokesPerRevolution)
	sp := h.spokes[idx]
	return sp, sp.Pixels != nil
}

// SpokesPerRevolution reports the ring's fixed size.
func (h *HistoryBuffer) SpokesPerRevolution() int { return h.spokesPerRevolution }

// DopplerSample is one bin's raw Doppler classification.
type DopplerSample int

const (
	DopplerNone DopplerSample = iota
	DopplerApproaching
	DopplerReceding
)

// DopplerBins supplies a per-bin Doppler classification for one spoke.
type DopplerBins interface {
	At(bin int) DopplerSample
}

// SliceDopplerBins adapts a plain slice to DopplerBins.
type SliceDopplerBins []DopplerSample

func (s SliceDopplerBins) At(bin int) DopplerSample {
	if bin < 0 || bin >= len(s) {
		return DopplerNone
	}
	return s[bin]
}
