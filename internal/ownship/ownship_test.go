package ownship

import "testing"

func TestParseGGA(t *testing.T) {
	m := &MockSource{}
	m.Feed(1000, "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47")
	f := m.Fix()
	if !f.Valid {
		t.Fatal("fix should be valid after GGA")
	}
	wantLat := 48 + 7.038/60
	wantLon := 11 + 31.0/60
	if diff := f.LatDeg - wantLat; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("lat = %v, want %v", f.LatDeg, wantLat)
	}
	if diff := f.LonDeg - wantLon; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("lon = %v, want %v", f.LonDeg, wantLon)
	}
}

func TestParseRMCSouthWest(t *testing.T) {
	m := &MockSource{}
	m.Feed(2000, "$GPRMC,123519,A,4807.038,S,01131.000,W,22.4,084.4,230394,003.1,W*6A")
	f := m.Fix()
	if !f.Valid {
		t.Fatal("fix should be valid after RMC")
	}
	if f.LatDeg >= 0 {
		t.Errorf("south latitude should be negative, got %v", f.LatDeg)
	}
	if f.LonDeg >= 0 {
		t.Errorf("west longitude should be negative, got %v", f.LonDeg)
	}
	if f.SOGKnots != 22.4 {
		t.Errorf("sog = %v, want 22.4", f.SOGKnots)
	}
	if f.COGDeg != 84.4 {
		t.Errorf("cog = %v, want 84.4", f.COGDeg)
	}
}

func TestRMCVoidFixIgnored(t *testing.T) {
	m := &MockSource{}
	m.Feed(1000, "$GPRMC,123519,V,4807.038,N,01131.000,E,22.4,084.4,230394,003.1,W*6A")
	if m.Fix().Valid {
		t.Fatal("void RMC fix should not update the held fix")
	}
}

func TestGGAThenRMCMerge(t *testing.T) {
	m := &MockSource{}
	m.Feed(1000, "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47")
	m.Feed(1200, "$GPRMC,123519,A,4807.038,N,01131.000,E,22.4,084.4,230394,003.1,W*6A")
	f := m.Fix()
	if f.SOGKnots != 22.4 || f.COGDeg != 84.4 {
		t.Errorf("merged fix missing RMC speed/course: %+v", f)
	}
	if f.LatDeg == 0 {
		t.Error("merged fix should retain position")
	}
}

func TestUnknownSentenceIgnored(t *testing.T) {
	m := &MockSource{}
	m.Feed(1000, "$GPGSV,3,1,09,...")
	if m.Fix().Valid {
		t.Fatal("unrecognized sentence should not produce a fix")
	}
}
