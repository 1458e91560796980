package controller

import (
	"fmt"

	"github.com/banshee-data/radar-core/internal/capability"
	"github.com/banshee-data/radar-core/internal/ioprovider"
	"github.com/banshee-data/radar-core/internal/protocol/raymarine"
	"github.com/banshee-data/radar-core/internal/state"
)

// Raymarine is structurally identical to Navico: UDP, periodic report
// requests, binary commands, differing only in opcodes (spec.md §4.4).
type Raymarine struct {
	io       ioprovider.IoProvider
	manifest capability.CapabilityManifest
	family   raymarine.Family

	commandAddr string
	commandPort int

	sock          ioprovider.UDPSocket
	st            ConnectionState
	radarState    state.RadarState
	lastRequestMs int64
}

// NewRaymarine constructs a controller for either the Quantum or RD
// family (spec.md §4.2).
func NewRaymarine(io ioprovider.IoProvider, model string, isRD bool, commandAddr string, commandPort int) *Raymarine {
	fam := raymarine.FamilyQuantum
	if isRD {
		fam = raymarine.FamilyRD
	}
	return &Raymarine{
		io:          io,
		manifest:    capability.Lookup(state.BrandRaymarine, model),
		family:      fam,
		commandAddr: commandAddr,
		commandPort: commandPort,
		st:          Disconnected,
	}
}

func (r *Raymarine) State() ConnectionState       { return r.st }
func (r *Raymarine) RadarState() state.RadarState { return r.radarState.Clone() }

func (r *Raymarine) Shutdown() {
	if r.sock != nil {
		r.sock.Close()
	}
	r.st = Disconnected
}

func (r *Raymarine) Poll() {
	if r.sock == nil {
		sock, err := r.io.Bind(0)
		if err != nil {
			r.io.Warnf("raymarine: bind failed: %v", err)
			return
		}
		r.sock = sock
		r.st = Connected
	}
	now := r.io.NowMs()
	if now-r.lastRequestMs >= requestIntervalMs {
		if _, err := r.sock.SendTo(raymarine.FormatRequestAll(r.family), r.commandAddr, r.commandPort); err != nil {
			r.io.Warnf("raymarine: request-all send failed: %v", err)
		}
		r.lastRequestMs = now
	}
	r.drain(now)
}

func (r *Raymarine) drain(now int64) {
	buf := make([]byte, 1500)
	for {
		n, _, _, ok, err := r.sock.RecvFrom(buf)
		if err != nil {
			r.io.Warnf("raymarine: recv failed: %v", err)
			return
		}
		if !ok {
			return
		}
		r.dispatch(buf[:n], now)
	}
}

func (r *Raymarine) dispatch(data []byte, now int64) {
	report, err := raymarine.ParseStatusReport(data)
	if err != nil {
		r.io.Debugf("raymarine: unhandled/malformed frame: %v", err)
		return
	}
	r.radarState.Power = report.Power
	r.radarState.RangeM = report.RangeM
	r.radarState.TimestampMs = now
}

// SetControl translates a generic control id/value to a Raymarine binary
// frame and sends it immediately.
func (r *Raymarine) SetControl(id string, v ControlValue) error {
	if r.st != Connected {
		return &ErrNotConnected{Brand: state.BrandRaymarine}
	}
	frame, err := r.formatControl(id, v)
	if err != nil {
		return err
	}
	_, err = r.sock.SendTo(frame, r.commandAddr, r.commandPort)
	return err
}

func (r *Raymarine) formatControl(id string, v ControlValue) ([]byte, error) {
	switch id {
	case ControlPower:
		if v.Number == nil {
			return nil, fmt.Errorf("raymarine: power requires a numeric value")
		}
		return raymarine.FormatPowerCommand(r.family, state.Power(int(*v.Number))), nil
	case ControlRange:
		if v.Number == nil {
			return nil, fmt.Errorf("raymarine: range requires a numeric value")
		}
		return raymarine.FormatRangeCommand(r.family, *v.Number), nil
	case ControlGain:
		if v.Adjustable == nil {
			return nil, fmt.Errorf("raymarine: gain requires an adjustable value")
		}
		return raymarine.FormatAdjustableCommand(r.family, raymarine.SubGain, *v.Adjustable), nil
	case ControlSea:
		if v.Adjustable == nil {
			return nil, fmt.Errorf("raymarine: sea requires an adjustable value")
		}
		return raymarine.FormatAdjustableCommand(r.family, raymarine.SubSea, *v.Adjustable), nil
	case ControlRain:
		if v.Adjustable == nil {
			return nil, fmt.Errorf("raymarine: rain requires an adjustable value")
		}
		return raymarine.FormatAdjustableCommand(r.family, raymarine.SubRain, *v.Adjustable), nil
	default:
		return nil, &ErrUnknownControl{Brand: state.BrandRaymarine, ID: id}
	}
}

// Manifest exposes the looked-up capability manifest.
func (r *Raymarine) Manifest() capability.CapabilityManifest { return r.manifest }
