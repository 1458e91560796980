// Package config holds the installation-settings JSON document spec.md
// §6 names ("bearing alignment, antenna height, per radar-id"). The core
// only reads/writes the in-memory struct and its JSON shape; persisting
// it to disk or a KV store is the external runtime's job (spec.md §1
// excludes "configuration persistence" from the core).
//
// Modeled directly on the teacher's internal/config/tuning.go: optional-
// pointer fields so a partial JSON document leaves defaults untouched, a
// loader with the same .json-extension/max-size guards, and GetXxx
// accessors that bake in defaults. The original Rust core's
// InstallationConfig (a map keyed by radar serial, per SPEC_FULL.md §12)
// is reproduced as RadarInstallation keyed by radar id.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// maxInstallationConfigBytes mirrors the teacher's 1MB guard
// (tuning.go's LoadTuningConfig); an installation document is a handful
// of floats per radar and will never legitimately approach this.
const maxInstallationConfigBytes = 1 * 1024 * 1024

// RadarInstallation is one radar's installation-time settings (spec.md
// §6). Pointer fields distinguish "not present in the JSON" from
// "explicitly zero", the same convention the teacher's TuningConfig uses.
type RadarInstallation struct {
	BearingAlignmentDeg *float64 `json:"bearing_alignment_deg,omitempty"`
	AntennaHeightM      *float64 `json:"antenna_height_m,omitempty"`
}

// GetBearingAlignmentDeg returns the configured value or 0.
func (r *RadarInstallation) GetBearingAlignmentDeg() float64 {
	if r == nil || r.BearingAlignmentDeg == nil {
		return 0
	}
	return *r.BearingAlignmentDeg
}

// GetAntennaHeightM returns the configured value or 0.
func (r *RadarInstallation) GetAntennaHeightM() float64 {
	if r == nil || r.AntennaHeightM == nil {
		return 0
	}
	return *r.AntennaHeightM
}

// InstallationConfig is the single JSON document spec.md §6 names: a map
// from radar id (the discovery/provisioning identity, not necessarily
// the hardware serial) to that radar's installation settings.
type InstallationConfig struct {
	// ID is a process-local correlation tag minted once per loaded/
	// created document, the same way the teacher mints track ids
	// (internal/lidar/l5tracks/tracking.go: fmt.Sprintf("trk_%s",
	// uuid.NewString())) — useful for the demo runtime's log lines when
	// more than one document is in flight, never persisted.
	ID     string                        `json:"-"`
	Radars map[string]*RadarInstallation `json:"radars,omitempty"`
}

// New returns an empty installation-settings document.
func New() *InstallationConfig {
	return &InstallationConfig{ID: "cfg_" + uuid.NewString(), Radars: make(map[string]*RadarInstallation)}
}

// LoadInstallationConfig loads an InstallationConfig from a JSON file,
// validated the same way the teacher validates tuning.json (extension,
// max size) so a malformed or oversized file fails fast rather than
// partially loading (tuning.go: LoadTuningConfig).
func LoadInstallationConfig(path string) (*InstallationConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("installation config file must have .json extension, got %q", ext)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat installation config file: %w", err)
	}
	if info.Size() > maxInstallationConfigBytes {
		return nil, fmt.Errorf("installation config file too large: %d bytes (max %d)", info.Size(), maxInstallationConfigBytes)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read installation config file: %w", err)
	}
	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse installation config JSON: %w", err)
	}
	if cfg.Radars == nil {
		cfg.Radars = make(map[string]*RadarInstallation)
	}
	return cfg, nil
}

// Marshal renders the document to JSON for the runtime's KV store to
// persist (spec.md §6: "the core reads/writes a single JSON document").
func (c *InstallationConfig) Marshal() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Unmarshal replaces c's Radars map with the document decoded from data,
// the inverse of Marshal, for a runtime KV store handing a previously
// persisted document back to the core.
func (c *InstallationConfig) Unmarshal(data []byte) error {
	if err := json.Unmarshal(data, c); err != nil {
		return err
	}
	if c.Radars == nil {
		c.Radars = make(map[string]*RadarInstallation)
	}
	return nil
}

// radar returns (creating if necessary) the per-radar settings block.
func (c *InstallationConfig) radar(radarID string) *RadarInstallation {
	if c.Radars == nil {
		c.Radars = make(map[string]*RadarInstallation)
	}
	r, ok := c.Radars[radarID]
	if !ok {
		r = &RadarInstallation{}
		c.Radars[radarID] = r
	}
	return r
}

// GetBearingAlignmentDeg returns radarID's configured bearing alignment,
// or 0 if unset (spec.md §6 control surface "bearingAlignment: -180..180
// degrees").
func (c *InstallationConfig) GetBearingAlignmentDeg(radarID string) float64 {
	return c.Radars[radarID].GetBearingAlignmentDeg()
}

// SetBearingAlignmentDeg sets radarID's bearing alignment.
func (c *InstallationConfig) SetBearingAlignmentDeg(radarID string, deg float64) {
	c.radar(radarID).BearingAlignmentDeg = &deg
}

// GetAntennaHeightM returns radarID's configured antenna height, or 0 if
// unset (spec.md §6 control surface "antennaHeight: 0..100 meters").
func (c *InstallationConfig) GetAntennaHeightM(radarID string) float64 {
	return c.Radars[radarID].GetAntennaHeightM()
}

// SetAntennaHeightM sets radarID's antenna height.
func (c *InstallationConfig) SetAntennaHeightM(radarID string, meters float64) {
	c.radar(radarID).AntennaHeightM = &meters
}
