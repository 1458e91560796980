package controller

import (
	"fmt"
	"time"

	"github.com/banshee-data/radar-core/internal/capability"
	"github.com/banshee-data/radar-core/internal/ioprovider"
	"github.com/banshee-data/radar-core/internal/protocol/furuno"
	"github.com/banshee-data/radar-core/internal/state"
)

// connectTimeout bounds the one permitted blocking call (spec.md §5).
const connectTimeout = 5 * time.Second

const keepaliveIntervalMs = 5_000

// backoff bounds (spec.md §4.4: "bounded, e.g., 1 s -> 30 s").
const (
	minBackoffMs = 1_000
	maxBackoffMs = 30_000
)

// loginResponseLen is the fixed Furuno login reply size (spec.md §4.2).
const loginResponseLen = 12

// ErrNotConnected is returned by SetControl when the session is not
// currently Connected; the caller enqueues nothing and should surface
// ControllerNotAvailable (spec.md §7).
type ErrNotConnected struct{ Brand state.Brand }

func (e *ErrNotConnected) Error() string { return e.Brand.String() + ": controller not connected" }

// Furuno is the TCP login/keepalive controller (spec.md §4.4).
type Furuno struct {
	io         ioprovider.IoProvider
	address    string
	manifest   capability.CapabilityManifest
	st         ConnectionState
	radarState state.RadarState

	controlConn ioprovider.TCPConn
	sessionConn ioprovider.TCPConn

	loginBuf        []byte
	connectingSince int64

	sessionPort int

	lastKeepaliveMs int64
	nextAttemptMs   int64
	backoffMs       int64
}

// NewFuruno constructs a Furuno controller targeting address (the
// discovery-reported IP). model is used to look up the capability
// manifest.
func NewFuruno(io ioprovider.IoProvider, address, model string) *Furuno {
	return &Furuno{
		io:        io,
		address:   address,
		manifest:  capability.Lookup(state.BrandFuruno, model),
		st:        Disconnected,
		backoffMs: minBackoffMs,
	}
}

func (f *Furuno) State() ConnectionState { return f.st }

func (f *Furuno) RadarState() state.RadarState { return f.radarState.Clone() }

func (f *Furuno) Shutdown() {
	if f.controlConn != nil {
		f.controlConn.Close()
	}
	if f.sessionConn != nil {
		f.sessionConn.Close()
	}
	f.st = Disconnected
}

// Poll drives the connection state machine (spec.md §4.4).
func (f *Furuno) Poll() {
	switch f.st {
	case Disconnected:
		f.pollDisconnected()
	case Connecting:
		f.pollConnecting()
	case Connected:
		f.pollConnected()
	}
}

func (f *Furuno) pollDisconnected() {
	now := f.io.NowMs()
	if now < f.nextAttemptMs {
		return
	}
	conn := f.io.NewTCP()
	if err := conn.Connect(f.address, furuno.ControlPort, connectTimeout); err != nil {
		f.io.Warnf("furuno: login connect failed: %v", err)
		f.scheduleRetry(now)
		return
	}
	if _, err := conn.Send(furuno.LoginPayload()); err != nil {
		f.io.Warnf("furuno: login send failed: %v", err)
		conn.Close()
		f.scheduleRetry(now)
		return
	}
	f.controlConn = conn
	f.loginBuf = nil
	f.connectingSince = now
	f.st = Connecting
}

func (f *Furuno) pollConnecting() {
	now := f.io.NowMs()
	if now-f.connectingSince > connectTimeout.Milliseconds() {
		f.io.Warnf("furuno: login response timed out")
		f.controlConn.Close()
		f.st = Disconnected
		f.scheduleRetry(now)
		return
	}
	buf := make([]byte, loginResponseLen)
	n, ok, err := f.controlConn.RecvRaw(buf)
	if err != nil {
		f.io.Warnf("furuno: login recv failed: %v", err)
		f.controlConn.Close()
		f.st = Disconnected
		f.scheduleRetry(now)
		return
	}
	if !ok {
		return
	}
	f.loginBuf = append(f.loginBuf, buf[:n]...)
	if len(f.loginBuf) < loginResponseLen {
		return
	}
	port, err := furuno.ParseLoginResponse(f.loginBuf[:loginResponseLen])
	f.controlConn.Close()
	if err != nil {
		f.io.Warnf("furuno: login response malformed: %v", err)
		f.st = Disconnected
		f.scheduleRetry(now)
		return
	}
	f.sessionPort = port

	session := f.io.NewTCP()
	if err := session.Connect(f.address, port, connectTimeout); err != nil {
		f.io.Warnf("furuno: session connect failed: %v", err)
		f.st = Disconnected
		f.scheduleRetry(now)
		return
	}
	f.sessionConn = session
	f.lastKeepaliveMs = now
	f.backoffMs = minBackoffMs
	f.st = Connected
}

func (f *Furuno) pollConnected() {
	now := f.io.NowMs()
	if now-f.lastKeepaliveMs >= keepaliveIntervalMs {
		if _, err := f.sessionConn.Send([]byte(furuno.Keepalive)); err != nil {
			f.io.Warnf("furuno: keepalive send failed: %v", err)
			f.dropConnection(now)
			return
		}
		f.lastKeepaliveMs = now
	}
	for {
		line, ok, err := f.sessionConn.RecvLine()
		if err != nil {
			f.io.Warnf("furuno: session recv failed: %v", err)
			f.dropConnection(now)
			return
		}
		if !ok {
			return
		}
		f.dispatch(line)
	}
}

func (f *Furuno) dropConnection(now int64) {
	f.sessionConn.Close()
	f.st = Disconnected
	f.scheduleRetry(now)
}

func (f *Furuno) scheduleRetry(now int64) {
	f.nextAttemptMs = now + f.backoffMs
	f.backoffMs *= 2
	if f.backoffMs > maxBackoffMs {
		f.backoffMs = maxBackoffMs
	}
}

// dispatch parses one report line and folds it into radarState.
// Malformed frames are logged and discarded without touching prior state
// (spec.md §7).
func (f *Furuno) dispatch(line string) {
	cmd, err := furuno.ParseCommand(line)
	if err != nil {
		f.io.Debugf("furuno: malformed frame %q: %v", line, err)
		return
	}
	f.radarState.TimestampMs = f.io.NowMs()
	switch cmd.ID {
	case furuno.IDStatus:
		if power, err := furuno.ParseStatusReport(cmd.Args); err == nil {
			f.radarState.Power = power
		}
	case furuno.IDGain:
		if adj, err := furuno.ParseAdjustableReport(cmd.Args); err == nil {
			f.radarState.Gain = adj
		}
	case furuno.IDSea:
		if adj, err := furuno.ParseAdjustableReport(cmd.Args); err == nil {
			f.radarState.Sea = adj
		}
	case furuno.IDRain:
		if adj, err := furuno.ParseAdjustableReport(cmd.Args); err == nil {
			f.radarState.Rain = adj
		}
	default:
		f.io.Debugf("furuno: unhandled report id %#x", cmd.ID)
	}
}

// SetControl translates a generic control id/value to a Furuno ASCII
// frame and sends it immediately (spec.md §5: enqueue and return success
// if the packet left the socket).
func (f *Furuno) SetControl(id string, v ControlValue) error {
	if f.st != Connected {
		return &ErrNotConnected{Brand: state.BrandFuruno}
	}
	line, err := f.formatControl(id, v)
	if err != nil {
		return err
	}
	_, err = f.sessionConn.Send([]byte(line))
	return err
}

func (f *Furuno) formatControl(id string, v ControlValue) (string, error) {
	switch id {
	case ControlPower:
		if v.Number == nil {
			return "", fmt.Errorf("furuno: power requires a numeric value")
		}
		return furuno.FormatPowerCommand(state.Power(int(*v.Number))), nil
	case ControlRange:
		if v.Number == nil {
			return "", fmt.Errorf("furuno: range requires a numeric value")
		}
		idx := capability.FurunoMetersToIndex(*v.Number)
		return furuno.FormatRangeCommand(idx), nil
	case ControlGain:
		if v.Adjustable == nil {
			return "", fmt.Errorf("furuno: gain requires an adjustable value")
		}
		return furuno.FormatGainCommand(v.Adjustable.Value, v.Adjustable.Mode == state.ModeAuto), nil
	case ControlSea:
		if v.Adjustable == nil {
			return "", fmt.Errorf("furuno: sea requires an adjustable value")
		}
		return furuno.FormatSeaCommand(v.Adjustable.Value, v.Adjustable.Mode == state.ModeAuto), nil
	case ControlRain:
		if v.Adjustable == nil {
			return "", fmt.Errorf("furuno: rain requires an adjustable value")
		}
		return furuno.FormatRainCommand(v.Adjustable.Value, v.Adjustable.Mode == state.ModeAuto), nil
	case ControlNoiseReduction:
		return furuno.FormatBooleanCommand(furuno.IDNoiseReduction, boolOf(v)), nil
	case ControlInterferenceRejection:
		return furuno.FormatBooleanCommand(furuno.IDInterferenceRejection, boolOf(v)), nil
	case ControlBeamSharpening:
		return furuno.FormatNumberCommand(furuno.IDBeamSharpening, numberOf(v)), nil
	case ControlBirdMode:
		return furuno.FormatBooleanCommand(furuno.IDBirdMode, boolOf(v)), nil
	case ControlScanSpeed:
		return furuno.FormatNumberCommand(furuno.IDScanSpeed, numberOf(v)), nil
	case ControlBearingAlignment:
		return furuno.FormatNumberCommand(furuno.IDBearingAlignment, numberOf(v)), nil
	case ControlAntennaHeight:
		return furuno.FormatNumberCommand(furuno.IDAntennaHeight, numberOf(v)), nil
	case ControlMainBangSuppression:
		return furuno.FormatNumberCommand(furuno.IDMainBangSuppression, numberOf(v)), nil
	case ControlTxChannel:
		return furuno.FormatNumberCommand(furuno.IDTxChannel, numberOf(v)), nil
	case ControlDopplerMode:
		if v.Doppler == nil {
			return "", fmt.Errorf("furuno: dopplerMode requires a doppler value")
		}
		return furuno.FormatDopplerCommand(*v.Doppler), nil
	case ControlNoTransmitZone:
		if v.Zone == nil {
			return "", fmt.Errorf("furuno: noTransmitZone requires a zone value")
		}
		return furuno.FormatNoTransmitZoneCommand(v.ZoneIndex, *v.Zone), nil
	case ControlAutoAcquire:
		return furuno.FormatAutoAcquireCommand(boolOf(v)), nil
	default:
		return "", &ErrUnknownControl{Brand: state.BrandFuruno, ID: id}
	}
}

func boolOf(v ControlValue) bool {
	return v.Bool != nil && *v.Bool
}

func numberOf(v ControlValue) int {
	if v.Number == nil {
		return 0
	}
	return int(*v.Number)
}

// Manifest exposes the looked-up capability manifest for the provider
// facade's get_capabilities.
func (f *Furuno) Manifest() capability.CapabilityManifest { return f.manifest }
