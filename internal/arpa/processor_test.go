package arpa

import (
	"testing"

	"github.com/banshee-data/radar-core/internal/state"
)

// feedRectangle writes a solid rectangular target region into p's history
// buffer spanning angles [aMin,aMax] and radii [rMin,rMax], optionally
// tagging every bin in the region as Doppler-approaching.
func feedRectangle(p *Processor, maxRadius, aMin, aMax, rMin, rMax int, approaching bool) {
	spokesPerRevolution := p.history.SpokesPerRevolution()
	for a := 0; a < spokesPerRevolution; a++ {
		returns := make([]byte, maxRadius)
		var doppler SliceDopplerBins
		if approaching {
			doppler = make(SliceDopplerBins, maxRadius)
		}
		if a >= aMin && a <= aMax {
			for r := rMin; r <= rMax; r++ {
				returns[r] = 200
				if approaching {
					doppler[r] = DopplerApproaching
				}
			}
		}
		if doppler != nil {
			p.SetPendingDoppler(doppler)
		}
		p.OnSpoke(state.Spoke{SpokeIndex: a, TimestampMs: int64(a), RangeM: 1000, Returns: returns})
	}
}

func TestProcessorRefreshFindsAndPromotesTarget(t *testing.T) {
	p := NewProcessor(16, DefaultConfig())
	feedRectangle(p, 20, 4, 8, 5, 10, false)

	tg := p.AcquireTarget(state.Polar{Angle: 6, Radius: 7})
	if tg.Status != StatusAcquire0 {
		t.Fatalf("initial status = %v, want Acquire0", tg.Status)
	}

	p.Refresh(1.0)
	if tg.Status != StatusAcquire1 {
		t.Fatalf("status after 1 refresh = %v, want Acquire1", tg.Status)
	}

	p.Refresh(1.0)
	if tg.Status != StatusTracking {
		t.Fatalf("status after 2 refreshes = %v, want Tracking", tg.Status)
	}
}

func TestProcessorRefreshMissesWhenRegionVanishes(t *testing.T) {
	p := NewProcessor(16, DefaultConfig())
	feedRectangle(p, 20, 4, 8, 5, 10, false)
	tg := p.AcquireTarget(state.Polar{Angle: 6, Radius: 7})
	p.Refresh(1.0)
	if tg.lostCount != 0 {
		t.Fatalf("lostCount after a found refresh = %d, want 0", tg.lostCount)
	}

	// The region disappears entirely; the target should accumulate
	// misses and eventually go Lost.
	p2 := NewProcessor(16, DefaultConfig())
	tg2 := p2.AcquireTarget(state.Polar{Angle: 6, Radius: 7})
	for i := 0; i < MaxLostCount+1; i++ {
		p2.Refresh(1.0)
	}
	if tg2.Status != StatusLost {
		t.Fatalf("status after %d empty refreshes = %v, want Lost", MaxLostCount+1, tg2.Status)
	}
}

func TestProcessorAutoAcquireCreatesNewTargetFromApproachingCluster(t *testing.T) {
	cfg := DefaultConfig()
	p := NewProcessor(16, cfg)
	feedRectangle(p, 20, 4, 8, 5, 10, true)

	if len(p.Targets()) != 0 {
		t.Fatalf("targets before refresh = %d, want 0", len(p.Targets()))
	}
	p.Refresh(1.0)
	if len(p.Targets()) == 0 {
		t.Fatalf("expected auto-acquire to create at least one target")
	}
}

func TestProcessorAutoAcquireSkipsNearExistingTarget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoAcquireEnabled = true
	cfg.AcquireDistance = 20 // larger than the rectangle's span
	p := NewProcessor(16, cfg)
	feedRectangle(p, 20, 4, 8, 5, 10, true)
	p.AcquireTarget(state.Polar{Angle: 6, Radius: 7})

	p.Refresh(1.0)
	if len(p.Targets()) != 1 {
		t.Fatalf("targets after refresh = %d, want 1 (auto-acquire should skip the existing target's cluster)", len(p.Targets()))
	}
}

func TestProcessorCancelTargetRemovesIt(t *testing.T) {
	p := NewProcessor(16, DefaultConfig())
	tg := p.AcquireTarget(state.Polar{Angle: 0, Radius: 0})
	p.CancelTarget(tg.ID)
	if len(p.Targets()) != 0 {
		t.Fatalf("targets after cancel = %d, want 0", len(p.Targets()))
	}
}
