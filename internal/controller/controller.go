// Package controller holds the generic per-brand controller contract
// (spec.md §4.4) and the four brand implementations. Every controller is
// a poll-driven state machine; none spawns a background task.
package controller

import "github.com/banshee-data/radar-core/internal/state"

// ConnectionState is the three-state machine every controller cycles
// through (spec.md §4.4).
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
)

func (s ConnectionState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// ControlValue is the dynamically-typed value a generic set_control call
// carries; the controller is responsible for converting it to the wire
// shape its brand expects.
type ControlValue struct {
	Bool       *bool
	Number     *float64
	Adjustable *state.Adjustable
	Doppler    *state.Doppler
	Zone       *state.NoTransmitZone
	ZoneIndex  int
}

// Controller is the generic per-radar southbound session every brand
// implements (spec.md §4.4). Poll drives every transition; SetControl
// only ever enqueues a wire packet (spec.md §5: "enqueue... and return
// success if the packet left the socket").
type Controller interface {
	// Poll advances the connection state machine and drains/dispatches
	// any pending input. Never blocks except the bounded Furuno TCP
	// connect step, which Poll treats as a single atomic transition.
	Poll()

	State() ConnectionState

	// SetControl translates id/value to the brand's wire formatter and
	// sends it. Returns an error if the controller is not Connected, the
	// control id is unknown to this brand, the value has the wrong shape
	// for the control, or the underlying send failed.
	SetControl(id string, value ControlValue) error

	// RadarState returns the live, brand-independent state record this
	// controller maintains (spec.md §3 RadarState).
	RadarState() state.RadarState

	// Shutdown releases any held sockets.
	Shutdown()
}

// Generic control ids (spec.md §4.4) shared by every brand's dispatch
// table; not every brand recognizes every id.
const (
	ControlPower                 = "power"
	ControlRange                 = "range"
	ControlGain                  = "gain"
	ControlSea                   = "sea"
	ControlRain                  = "rain"
	ControlNoiseReduction        = "noiseReduction"
	ControlInterferenceRejection = "interferenceRejection"
	ControlBeamSharpening        = "beamSharpening"
	ControlBirdMode              = "birdMode"
	ControlDopplerMode           = "dopplerMode"
	ControlScanSpeed             = "scanSpeed"
	ControlBearingAlignment      = "bearingAlignment"
	ControlAntennaHeight         = "antennaHeight"
	ControlMainBangSuppression   = "mainBangSuppression"
	ControlTxChannel             = "txChannel"
	ControlAutoAcquire           = "autoAcquire"
	ControlNoTransmitZone        = "noTransmitZone"
)

// ErrUnknownControl is returned by SetControl for an id the brand's
// dispatch table does not recognize.
type ErrUnknownControl struct {
	Brand state.Brand
	ID    string
}

func (e *ErrUnknownControl) Error() string {
	return e.Brand.String() + ": unknown control " + e.ID
}
