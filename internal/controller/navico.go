package controller

import (
	"fmt"

	"github.com/banshee-data/radar-core/internal/capability"
	"github.com/banshee-data/radar-core/internal/ioprovider"
	"github.com/banshee-data/radar-core/internal/protocol/navico"
	"github.com/banshee-data/radar-core/internal/state"
)

const requestIntervalMs = 5_000

// Navico is the UDP multicast controller shared by BR24 and Gen3+/HALO
// units (spec.md §4.4). Dual-range radars are represented by two logical
// Navico controllers pointed at the same command address (SPEC_FULL.md
// §12).
type Navico struct {
	io       ioprovider.IoProvider
	manifest capability.CapabilityManifest

	// SubRadarIndex identifies which of a dual-range device's two logical
	// sub-radars this controller instance speaks for (0 or 1); single-
	// range devices always use 0 (SPEC_FULL.md §12: "dual-range Navico
	// sub-radars sharing one device").
	SubRadarIndex int

	commandAddr string
	commandPort int

	sock ioprovider.UDPSocket
	st   ConnectionState

	radarState      state.RadarState
	lastRequestMs   int64
}

// NewNavico constructs a Navico (or HALO) controller addressing one
// logical sub-radar's command endpoint. A dual-range device is
// represented by instantiating two Navico controllers, one per
// subRadarIndex, both pointed at the same beacon-derived command address.
func NewNavico(io ioprovider.IoProvider, model string, isHalo bool, subRadarIndex int, commandAddr string, commandPort int) *Navico {
	return &Navico{
		io:            io,
		manifest:      capability.Lookup(state.BrandNavico, model),
		SubRadarIndex: subRadarIndex,
		commandAddr:   commandAddr,
		commandPort:   commandPort,
		st:            Disconnected,
	}
}

func (n *Navico) State() ConnectionState       { return n.st }
func (n *Navico) RadarState() state.RadarState { return n.radarState.Clone() }

func (n *Navico) Shutdown() {
	if n.sock != nil {
		n.sock.Close()
	}
	n.st = Disconnected
}

// Poll has no handshake: bind once, then periodically request reports
// and drain whatever arrived (spec.md §4.4).
func (n *Navico) Poll() {
	if n.sock == nil {
		sock, err := n.io.Bind(0)
		if err != nil {
			n.io.Warnf("navico: bind failed: %v", err)
			return
		}
		n.sock = sock
		n.st = Connected
	}
	now := n.io.NowMs()
	if now-n.lastRequestMs >= requestIntervalMs {
		if _, err := n.sock.SendTo(navico.FormatRequestAll(), n.commandAddr, n.commandPort); err != nil {
			n.io.Warnf("navico: request-all send failed: %v", err)
		}
		n.lastRequestMs = now
	}
	n.drain(now)
}

func (n *Navico) drain(now int64) {
	buf := make([]byte, 1500)
	for {
		nbytes, _, _, ok, err := n.sock.RecvFrom(buf)
		if err != nil {
			n.io.Warnf("navico: recv failed: %v", err)
			return
		}
		if !ok {
			return
		}
		n.dispatch(buf[:nbytes], now)
	}
}

func (n *Navico) dispatch(data []byte, now int64) {
	report, err := navico.ParseStatusReport(data)
	if err != nil {
		n.io.Debugf("navico: unhandled/malformed frame: %v", err)
		return
	}
	n.radarState.Power = report.Power
	n.radarState.RangeM = report.RangeM
	n.radarState.Gain = report.Gain
	n.radarState.Sea = report.Sea
	n.radarState.Rain = report.Rain
	n.radarState.TimestampMs = now
}

// SetControl translates a generic control id/value to a Navico binary
// frame and sends it immediately.
func (n *Navico) SetControl(id string, v ControlValue) error {
	if n.st != Connected {
		return &ErrNotConnected{Brand: state.BrandNavico}
	}
	frame, err := n.formatControl(id, v)
	if err != nil {
		return err
	}
	_, err = n.sock.SendTo(frame, n.commandAddr, n.commandPort)
	return err
}

func (n *Navico) formatControl(id string, v ControlValue) ([]byte, error) {
	switch id {
	case ControlPower:
		if v.Number == nil {
			return nil, fmt.Errorf("navico: power requires a numeric value")
		}
		return navico.FormatPowerCommand(state.Power(int(*v.Number))), nil
	case ControlRange:
		if v.Number == nil {
			return nil, fmt.Errorf("navico: range requires a numeric value")
		}
		return navico.FormatRangeCommand(*v.Number), nil
	case ControlGain:
		if v.Adjustable == nil {
			return nil, fmt.Errorf("navico: gain requires an adjustable value")
		}
		return navico.FormatAdjustableCommand(navico.SubtypeGain, *v.Adjustable), nil
	case ControlSea:
		if v.Adjustable == nil {
			return nil, fmt.Errorf("navico: sea requires an adjustable value")
		}
		return navico.FormatAdjustableCommand(navico.SubtypeSea, *v.Adjustable), nil
	case ControlRain:
		if v.Adjustable == nil {
			return nil, fmt.Errorf("navico: rain requires an adjustable value")
		}
		return navico.FormatAdjustableCommand(navico.SubtypeRain, *v.Adjustable), nil
	case ControlDopplerMode:
		if !n.manifest.Doppler {
			return nil, fmt.Errorf("navico: doppler is HALO-only, not supported on %s", n.manifest.Model)
		}
		if v.Doppler == nil {
			return nil, fmt.Errorf("navico: dopplerMode requires a doppler value")
		}
		return navico.FormatDopplerCommand(*v.Doppler), nil
	default:
		return nil, &ErrUnknownControl{Brand: state.BrandNavico, ID: id}
	}
}

// Manifest exposes the looked-up capability manifest.
func (n *Navico) Manifest() capability.CapabilityManifest { return n.manifest }
