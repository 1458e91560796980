package arpa

import "testing"

// TestPixelMatchTruthTable covers spec.md §8 scenario 7.
func TestPixelMatchTruthTable(t *testing.T) {
	target := HistoryPixel(bitTarget)
	targetApproaching := HistoryPixel(bitTarget | bitApproaching)
	targetReceding := HistoryPixel(bitTarget | bitReceding)
	targetBackupOnly := HistoryPixel(bitBackup)

	if !PixelMatch(DopplerStateAnyDoppler, targetApproaching) {
		t.Error("AnyDoppler should match approaching target")
	}
	if !PixelMatch(DopplerStateAnyDoppler, targetReceding) {
		t.Error("AnyDoppler should match receding target")
	}
	if PixelMatch(DopplerStateAnyDoppler, target) {
		t.Error("AnyDoppler should not match plain target with no doppler")
	}
	if !PixelMatch(DopplerStateNotReceding, target) {
		t.Error("NotReceding should match plain target")
	}
	if PixelMatch(DopplerStateNotReceding, targetReceding) {
		t.Error("NotReceding should not match receding target")
	}
	if !PixelMatch(DopplerStateAnyPlus, targetBackupOnly) {
		t.Error("AnyPlus should match backup-only pixel")
	}
	if !PixelMatch(DopplerStateAnyPlus, target) {
		t.Error("AnyPlus should also match a plain target pixel")
	}
}

// TestDopplerTransitionEntersApproaching covers spec.md §8 scenario 5.
func TestDopplerTransitionEntersApproaching(t *testing.T) {
	next := NextDopplerState(DopplerStateAny, ContourPixelCounts{Total: 100, Approaching: 90, Receding: 2})
	if next != DopplerStateApproaching {
		t.Errorf("next = %v, want Approaching", next)
	}
}

func TestDopplerTransitionStaysAnyBelowThreshold(t *testing.T) {
	next := NextDopplerState(DopplerStateAny, ContourPixelCounts{Total: 100, Approaching: 80, Receding: 2})
	if next != DopplerStateAny {
		t.Errorf("next = %v, want Any (below 85%% threshold)", next)
	}
}

// TestDopplerTransitionExitsApproaching covers spec.md §8 scenario 6.
func TestDopplerTransitionExitsApproaching(t *testing.T) {
	// total=100, receding=0, remainder=100; exit threshold = 80.
	next := NextDopplerState(DopplerStateApproaching, ContourPixelCounts{Total: 100, Approaching: 70, Receding: 0})
	if next != DopplerStateAny {
		t.Errorf("next = %v, want Any (dropped below 80%% remainder)", next)
	}
}

func TestDopplerTransitionStaysApproachingAboveThreshold(t *testing.T) {
	next := NextDopplerState(DopplerStateApproaching, ContourPixelCounts{Total: 100, Approaching: 85, Receding: 0})
	if next != DopplerStateApproaching {
		t.Errorf("next = %v, want Approaching (still above 80%% remainder)", next)
	}
}

func TestDopplerOtherStatesDoNotAutoTransition(t *testing.T) {
	next := NextDopplerState(DopplerStateNoDoppler, ContourPixelCounts{Total: 100, Approaching: 99, Receding: 0})
	if next != DopplerStateNoDoppler {
		t.Errorf("next = %v, want NoDoppler unchanged", next)
	}
}
