package arpa

import (
	"testing"

	"github.com/banshee-data/radar-core/internal/state"
)

func TestTargetPromotesThroughAcquireStagesToTracking(t *testing.T) {
	tg := NewTarget(1, state.Polar{Angle: 10, Radius: 100}, 0.05, 25)
	if tg.Status != StatusAcquire0 {
		t.Fatalf("initial status = %v, want Acquire0", tg.Status)
	}

	tg.OnRefreshFound(state.Polar{Angle: 10, Radius: 100}, DopplerStateAny)
	if tg.Status != StatusAcquire1 {
		t.Fatalf("status after 1st refresh = %v, want Acquire1", tg.Status)
	}
	tg.OnRefreshFound(state.Polar{Angle: 10, Radius: 100}, DopplerStateAny)
	if tg.Status != StatusTracking {
		t.Fatalf("status after K=2 refreshes = %v, want Tracking", tg.Status)
	}
}

func TestTargetPromotesOneStageAtATimeBelowK(t *testing.T) {
	tg := NewTarget(2, state.Polar{Angle: 0, Radius: 50}, 0.05, 25)
	// acquireSuccessesToTrack is 2; a fresh target starts with zero
	// successful refreshes, so the very first OnRefreshFound should only
	// advance one stage (to Acquire1), still below the K threshold.
	tg.successfulRefreshes = 0
	tg.Status = StatusAcquire0

	tg.OnRefreshFound(state.Polar{Angle: 0, Radius: 50}, DopplerStateAny)
	if tg.successfulRefreshes != 1 || tg.Status != StatusAcquire1 {
		t.Fatalf("after 1st refresh: successfulRefreshes=%d status=%v, want 1,Acquire1", tg.successfulRefreshes, tg.Status)
	}

	tg.OnRefreshFound(state.Polar{Angle: 0, Radius: 50}, DopplerStateAny)
	if tg.Status != StatusTracking {
		t.Fatalf("after 2nd refresh: status=%v, want Tracking", tg.Status)
	}
}

func TestTargetGoesLostAfterExceedingMaxLostCount(t *testing.T) {
	tg := NewTarget(3, state.Polar{Angle: 0, Radius: 50}, 0.05, 25)
	tg.Status = StatusTracking

	for i := 0; i < MaxLostCount; i++ {
		tg.OnRefreshMissed()
		if tg.Status == StatusLost {
			t.Fatalf("went Lost after only %d misses, want after %d", i+1, MaxLostCount+1)
		}
	}
	tg.OnRefreshMissed()
	if tg.Status != StatusLost {
		t.Fatalf("status = %v, want Lost after %d misses", tg.Status, MaxLostCount+1)
	}
}

func TestTargetRefreshFoundResetsLostCount(t *testing.T) {
	tg := NewTarget(4, state.Polar{Angle: 0, Radius: 50}, 0.05, 25)
	tg.Status = StatusTracking
	tg.OnRefreshMissed()
	tg.OnRefreshMissed()
	if tg.lostCount != 2 {
		t.Fatalf("lostCount = %d, want 2", tg.lostCount)
	}
	tg.OnRefreshFound(state.Polar{Angle: 0, Radius: 50}, DopplerStateAny)
	if tg.lostCount != 0 {
		t.Fatalf("lostCount after refind = %d, want 0", tg.lostCount)
	}
}

func TestTargetReacquisitionFromLostRestartsAcquireSequence(t *testing.T) {
	tg := NewTarget(5, state.Polar{Angle: 0, Radius: 50}, 0.05, 25)
	tg.Status = StatusLost
	tg.successfulRefreshes = 2

	tg.OnRefreshFound(state.Polar{Angle: 0, Radius: 50}, DopplerStateAny)
	if tg.Status != StatusAcquire0 {
		t.Fatalf("status after refind-from-Lost = %v, want Acquire0", tg.Status)
	}
	if tg.successfulRefreshes != 1 {
		t.Fatalf("successfulRefreshes after refind-from-Lost = %d, want 1", tg.successfulRefreshes)
	}
}
