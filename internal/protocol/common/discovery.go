// Package common holds the wire-independent types every brand's protocol
// codec produces, so discovery, controllers and the provider facade never
// need to import a specific brand package just to pass a discovery record
// around (spec.md §3 RadarDiscovery).
package common

import "github.com/banshee-data/radar-core/internal/state"

// RadarDiscovery is the ephemeral record produced by a brand beacon
// parser and emitted by the locator (spec.md §3). Identity for
// deduplication purposes is (Brand, Name).
type RadarDiscovery struct {
	Brand  state.Brand
	Model  string // optional; "" until known
	Name   string
	Serial string // optional; "" until known

	Address string // IPv4 as dotted-quad, no port
	CommandPort int
	DataPort    int

	SpokesPerRevolution int
	MaxSpokeLength      int

	LastSeenMs int64
}

// Identity returns the (brand, name) dedup key spec.md §3 specifies.
func (d RadarDiscovery) Identity() (state.Brand, string) {
	return d.Brand, d.Name
}

// Aged reports whether the discovery has not been refreshed for at least
// maxAgeMs; the locator uses this to age out stale discoveries (spec.md
// §3 recommends 60s, not asserted by the core).
func (d RadarDiscovery) Aged(nowMs, maxAgeMs int64) bool {
	return nowMs-d.LastSeenMs >= maxAgeMs
}

// ProtocolError is a malformed-frame error (spec.md §7): the frame is
// dropped, state stays untouched, and a debug line is emitted. It is
// shared across brand packages so controllers/locators can type-switch on
// it uniformly.
type ProtocolError struct {
	Brand  state.Brand
	Reason string
}

func (e *ProtocolError) Error() string {
	return e.Brand.String() + " protocol error: " + e.Reason
}

func NewProtocolError(brand state.Brand, reason string) *ProtocolError {
	return &ProtocolError{Brand: brand, Reason: reason}
}
