package controller

import (
	"fmt"

	"github.com/banshee-data/radar-core/internal/capability"
	"github.com/banshee-data/radar-core/internal/ioprovider"
	"github.com/banshee-data/radar-core/internal/protocol/garmin"
	"github.com/banshee-data/radar-core/internal/state"
)

// Garmin is structurally identical to Navico/Raymarine (spec.md §4.4).
type Garmin struct {
	io       ioprovider.IoProvider
	manifest capability.CapabilityManifest

	commandAddr string
	commandPort int

	sock          ioprovider.UDPSocket
	st            ConnectionState
	radarState    state.RadarState
	lastRequestMs int64
}

func NewGarmin(io ioprovider.IoProvider, model, commandAddr string, commandPort int) *Garmin {
	return &Garmin{
		io:          io,
		manifest:    capability.Lookup(state.BrandGarmin, model),
		commandAddr: commandAddr,
		commandPort: commandPort,
		st:          Disconnected,
	}
}

func (g *Garmin) State() ConnectionState       { return g.st }
func (g *Garmin) RadarState() state.RadarState { return g.radarState.Clone() }

func (g *Garmin) Shutdown() {
	if g.sock != nil {
		g.sock.Close()
	}
	g.st = Disconnected
}

func (g *Garmin) Poll() {
	if g.sock == nil {
		sock, err := g.io.Bind(0)
		if err != nil {
			g.io.Warnf("garmin: bind failed: %v", err)
			return
		}
		g.sock = sock
		g.st = Connected
	}
	now := g.io.NowMs()
	if now-g.lastRequestMs >= requestIntervalMs {
		if _, err := g.sock.SendTo(garmin.FormatRequestAll(), g.commandAddr, g.commandPort); err != nil {
			g.io.Warnf("garmin: request-all send failed: %v", err)
		}
		g.lastRequestMs = now
	}
	g.drain(now)
}

func (g *Garmin) drain(now int64) {
	buf := make([]byte, 1500)
	for {
		n, _, _, ok, err := g.sock.RecvFrom(buf)
		if err != nil {
			g.io.Warnf("garmin: recv failed: %v", err)
			return
		}
		if !ok {
			return
		}
		g.dispatch(buf[:n], now)
	}
}

func (g *Garmin) dispatch(data []byte, now int64) {
	report, err := garmin.ParseReport(data)
	if err != nil {
		g.io.Debugf("garmin: unhandled/malformed frame: %v", err)
		return
	}
	g.radarState.Power = report.Power
	g.radarState.RangeM = report.RangeM
	g.radarState.TimestampMs = now
}

// SetControl translates a generic control id/value to a Garmin binary
// frame and sends it immediately.
func (g *Garmin) SetControl(id string, v ControlValue) error {
	if g.st != Connected {
		return &ErrNotConnected{Brand: state.BrandGarmin}
	}
	frame, err := g.formatControl(id, v)
	if err != nil {
		return err
	}
	_, err = g.sock.SendTo(frame, g.commandAddr, g.commandPort)
	return err
}

func (g *Garmin) formatControl(id string, v ControlValue) ([]byte, error) {
	switch id {
	case ControlPower:
		if v.Number == nil {
			return nil, fmt.Errorf("garmin: power requires a numeric value")
		}
		return garmin.FormatPowerCommand(state.Power(int(*v.Number))), nil
	case ControlRange:
		if v.Number == nil {
			return nil, fmt.Errorf("garmin: range requires a numeric value")
		}
		return garmin.FormatRangeCommand(*v.Number), nil
	case ControlGain:
		if v.Adjustable == nil {
			return nil, fmt.Errorf("garmin: gain requires an adjustable value")
		}
		return garmin.FormatAdjustableCommand(garmin.SubGain, *v.Adjustable), nil
	case ControlSea:
		if v.Adjustable == nil {
			return nil, fmt.Errorf("garmin: sea requires an adjustable value")
		}
		return garmin.FormatAdjustableCommand(garmin.SubSea, *v.Adjustable), nil
	case ControlRain:
		if v.Adjustable == nil {
			return nil, fmt.Errorf("garmin: rain requires an adjustable value")
		}
		return garmin.FormatAdjustableCommand(garmin.SubRain, *v.Adjustable), nil
	default:
		return nil, &ErrUnknownControl{Brand: state.BrandGarmin, ID: id}
	}
}

// Manifest exposes the looked-up capability manifest.
func (g *Garmin) Manifest() capability.CapabilityManifest { return g.manifest }
