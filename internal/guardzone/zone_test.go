package guardzone

import (
	"testing"

	"github.com/banshee-data/radar-core/internal/state"
)

// TestZoneAlertScenario reproduces spec.md §8 scenario 9: a zone
// (0..90deg, inner 500m, outer 1000m, sensitivity 128), a spoke at 45deg
// with a return of 200 at 750m MUST produce exactly one alert.
func TestZoneAlertScenario(t *testing.T) {
	const spokesPerRevolution = 8
	p := New(spokesPerRevolution)
	p.AddZone(Zone{
		ID: 1, Enabled: true,
		StartBearingDeg: 0, EndBearingDeg: 90,
		InnerMeters: 500, OuterMeters: 1000,
		Sensitivity: 128,
	})

	// 8 spokes per revolution -> 45 deg is spoke index 1 (360/8 = 45).
	returns := make([]byte, 100)
	binMeters := 1000.0 / float64(len(returns)) // RangeM=1000 over 100 bins
	binAt750 := int(750.0 / binMeters)
	returns[binAt750] = 200

	p.OnSpoke(state.Spoke{SpokeIndex: 1, RangeM: 1000, Returns: returns, TimestampMs: 42})

	alerts := p.DrainAlerts()
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts))
	}
	if alerts[0].ZoneID != 1 {
		t.Errorf("zone id = %d, want 1", alerts[0].ZoneID)
	}

	// A second spoke at the same bearing within the same revolution must
	// not produce a second alert (latch, spec.md §4.7).
	p.OnSpoke(state.Spoke{SpokeIndex: 1, RangeM: 1000, Returns: returns, TimestampMs: 43})
	if alerts := p.DrainAlerts(); len(alerts) != 0 {
		t.Fatalf("second alert in same revolution = %d, want 0", len(alerts))
	}

	// After NewRevolution the latch resets.
	p.NewRevolution()
	p.OnSpoke(state.Spoke{SpokeIndex: 1, RangeM: 1000, Returns: returns, TimestampMs: 44})
	if alerts := p.DrainAlerts(); len(alerts) != 1 {
		t.Fatalf("alert after NewRevolution = %d, want 1", len(alerts))
	}
}

func TestZoneDisabledNeverAlerts(t *testing.T) {
	p := New(8)
	p.AddZone(Zone{ID: 1, Enabled: false, StartBearingDeg: 0, EndBearingDeg: 90, InnerMeters: 0, OuterMeters: 1000, Sensitivity: 1})
	returns := make([]byte, 10)
	for i := range returns {
		returns[i] = 255
	}
	p.OnSpoke(state.Spoke{SpokeIndex: 0, RangeM: 1000, Returns: returns})
	if alerts := p.DrainAlerts(); len(alerts) != 0 {
		t.Fatalf("disabled zone alerts = %d, want 0", len(alerts))
	}
}

func TestZoneOutsideBearingNoAlert(t *testing.T) {
	p := New(8)
	p.AddZone(Zone{ID: 1, Enabled: true, StartBearingDeg: 0, EndBearingDeg: 10, InnerMeters: 0, OuterMeters: 1000, Sensitivity: 1})
	returns := make([]byte, 10)
	for i := range returns {
		returns[i] = 255
	}
	// spoke index 4 of 8 -> bearing 180deg, outside [0,10].
	p.OnSpoke(state.Spoke{SpokeIndex: 4, RangeM: 1000, Returns: returns})
	if alerts := p.DrainAlerts(); len(alerts) != 0 {
		t.Fatalf("out-of-arc alerts = %d, want 0", len(alerts))
	}
}

func TestBearingInArcWraps(t *testing.T) {
	if !bearingInArc(355, 350, 10) {
		t.Error("355 should be in wrapping arc [350,10]")
	}
	if !bearingInArc(5, 350, 10) {
		t.Error("5 should be in wrapping arc [350,10]")
	}
	if bearingInArc(180, 350, 10) {
		t.Error("180 should not be in wrapping arc [350,10]")
	}
}

func TestRemoveZone(t *testing.T) {
	p := New(8)
	p.AddZone(Zone{ID: 1, Enabled: true})
	if _, ok := p.Zone(1); !ok {
		t.Fatal("zone 1 should exist")
	}
	p.RemoveZone(1)
	if _, ok := p.Zone(1); ok {
		t.Fatal("zone 1 should be removed")
	}
}
