package capability

import (
	"testing"

	"github.com/banshee-data/radar-core/internal/state"
)

func TestFurunoRangeTable(t *testing.T) {
	if got := FurunoMetersToIndex(1852); got != 4 {
		t.Errorf("FurunoMetersToIndex(1852) = %d, want 4", got)
	}
	if got, ok := FurunoIndexToMeters(21); !ok || got != 116 {
		t.Errorf("FurunoIndexToMeters(21) = %v,%v, want 116,true", got, ok)
	}
	if got, ok := FurunoIndexToMeters(19); !ok || got != 66672 {
		t.Errorf("FurunoIndexToMeters(19) = %v,%v, want 66672,true", got, ok)
	}
}

func TestFurunoRangeTableHasSeventeenEntries(t *testing.T) {
	if len(furunoRangeTableM) != 17 {
		t.Errorf("furuno range table has %d entries, want 17", len(furunoRangeTableM))
	}
}

func TestFurunoModelManifest(t *testing.T) {
	m := Lookup(state.BrandFuruno, "DRS4D-NXT")
	if m.DecimationFactor() != 4 {
		t.Errorf("Furuno decimation factor = %d, want 4", m.DecimationFactor())
	}
	if !m.IsSupportedRange(1852) {
		t.Error("1852 should be a supported Furuno range")
	}
	if m.IsSupportedRange(1853) {
		t.Error("1853 should not be an exact supported Furuno range")
	}
	if got := m.NearestSupportedRange(1860); got != 1852 {
		t.Errorf("NearestSupportedRange(1860) = %v, want 1852", got)
	}
}

func TestNavicoHaloPromotion(t *testing.T) {
	if !isHaloModel("HALO24") {
		t.Error("HALO24 should be recognized as a HALO model")
	}
	if isHaloModel("BR24") {
		t.Error("BR24 should not be recognized as a HALO model")
	}
}
