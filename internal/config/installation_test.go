package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestGetSetDefaults(t *testing.T) {
	c := New()
	if got := c.GetBearingAlignmentDeg("radar-1"); got != 0 {
		t.Errorf("default bearing alignment = %v, want 0", got)
	}
	if got := c.GetAntennaHeightM("radar-1"); got != 0 {
		t.Errorf("default antenna height = %v, want 0", got)
	}

	c.SetBearingAlignmentDeg("radar-1", 5.5)
	c.SetAntennaHeightM("radar-1", 3.2)
	if got := c.GetBearingAlignmentDeg("radar-1"); got != 5.5 {
		t.Errorf("bearing alignment = %v, want 5.5", got)
	}
	if got := c.GetAntennaHeightM("radar-1"); got != 3.2 {
		t.Errorf("antenna height = %v, want 3.2", got)
	}

	// A second radar id stays independent.
	if got := c.GetBearingAlignmentDeg("radar-2"); got != 0 {
		t.Errorf("radar-2 bearing alignment = %v, want 0 (unaffected by radar-1)", got)
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	c := New()
	c.SetBearingAlignmentDeg("radar-1", -12.5)
	c.SetAntennaHeightM("radar-1", 4.0)

	data, err := c.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	path := filepath.Join(t.TempDir(), "installation.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	loaded, err := LoadInstallationConfig(path)
	if err != nil {
		t.Fatalf("LoadInstallationConfig: %v", err)
	}
	if diff := cmp.Diff(c, loaded, cmpopts.IgnoreFields(InstallationConfig{}, "ID")); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "installation.txt")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadInstallationConfig(path); err == nil {
		t.Fatal("expected error for non-.json extension")
	}
}

func TestLoadPartialDocumentLeavesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "installation.json")
	// Only bearing alignment set; antenna height must stay at its default.
	if err := os.WriteFile(path, []byte(`{"radars":{"radar-1":{"bearing_alignment_deg":7}}}`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	c, err := LoadInstallationConfig(path)
	if err != nil {
		t.Fatalf("LoadInstallationConfig: %v", err)
	}
	if got := c.GetBearingAlignmentDeg("radar-1"); got != 7 {
		t.Errorf("bearing alignment = %v, want 7", got)
	}
	if got := c.GetAntennaHeightM("radar-1"); got != 0 {
		t.Errorf("antenna height = %v, want default 0", got)
	}
}

func TestNewMintsUniqueID(t *testing.T) {
	a, b := New(), New()
	if a.ID == "" || b.ID == "" {
		t.Fatal("New should mint a non-empty ID")
	}
	if a.ID == b.ID {
		t.Error("each New document should get a distinct ID")
	}
}
