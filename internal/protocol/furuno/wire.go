// Package furuno is the pure, I/O-free Furuno protocol codec: beacon
// recognition, TCP login handshake, ASCII command formatting/parsing, and
// report parsing (spec.md §4.2 "Key Furuno facts", §6 "Southbound wire
// formats"). No function here opens a socket or retains state.
package furuno

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/banshee-data/radar-core/internal/state"
)

// ControlPort is the Furuno radar's well-known TCP login port.
const ControlPort = 10000

// BeaconPort is the UDP port the locator both listens and announces on
// (spec.md §4.3).
const BeaconPort = 10010

// BeaconAddress is the Furuno discovery broadcast address (spec.md §6).
const BeaconAddress = "172.31.255.255"

// loginMagic is the fixed 56-byte login payload sent to ControlPort. The
// radar only accepts it verbatim; padded with zero bytes to the full 56.
var loginMagic = padTo56("COPYRIGHT (C) 2001 FURUNO ELECTRIC CO., LTD.")

func padTo56(s string) []byte {
	b := make([]byte, 56)
	copy(b, s)
	return b
}

// LoginPayload returns the fixed 56-byte login packet sent to
// ControlPort.
func LoginPayload() []byte {
	out := make([]byte, 56)
	copy(out, loginMagic)
	return out
}

// ParseLoginResponse decodes the radar's 12-byte login reply. Bytes 0-7
// are a fixed header (not validated beyond length); bytes 8-9 are a
// big-endian port offset P, and the session command/report port is
// 10000+P (spec.md §8 scenario 1).
func ParseLoginResponse(data []byte) (sessionPort int, err error) {
	if len(data) != 12 {
		return 0, fmt.Errorf("furuno: login response must be 12 bytes, got %d", len(data))
	}
	offset := binary.BigEndian.Uint16(data[8:10])
	return ControlPort + int(offset), nil
}

// Keepalive is sent every 5s while connected (spec.md §4.4).
const Keepalive = "$RE3\r\n"

// Mode is the command-frame verb: Set, Request, or New/response.
type Mode byte

const (
	ModeSet     Mode = 'S'
	ModeRequest Mode = 'R'
	ModeNew     Mode = 'N'
)

// Command ids used by the generic control dispatch (spec.md §4.4). Exact
// vendor-internal numbering beyond the two wire scenarios spec.md fixes
// (status 0x69, gain 0x63) is not otherwise constrained; the remaining
// ids are assigned sequentially and are internally consistent for
// round-tripping.
const (
	IDStatus                = 0x69
	IDGain                  = 0x63
	IDSea                   = 0x64
	IDRain                  = 0x65
	IDRange                 = 0x52
	IDBearingAlignment      = 0x53
	IDAntennaHeight         = 0x54
	IDNoiseReduction        = 0x66
	IDInterferenceRejection = 0x67
	IDBeamSharpening        = 0x68
	IDBirdMode              = 0x6A
	IDScanSpeed             = 0x6B
	IDMainBangSuppression   = 0x6C
	IDTxChannel             = 0x6D
	IDDopplerMode           = 0x6E
	IDNoTransmitZone        = 0x6F
	IDAutoAcquire           = 0x70
	IDModelReport           = 0x96
)

// FormatCommand builds `${mode}{id-hex},{arg},{arg}…\r\n`. id is rendered
// as an upper-case hex byte (spec.md §6).
func FormatCommand(mode Mode, id int, args ...int) string {
	var sb strings.Builder
	sb.WriteByte('$')
	sb.WriteByte(byte(mode))
	sb.WriteString(strings.ToUpper(fmt.Sprintf("%02x", id)))
	for _, a := range args {
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(a))
	}
	sb.WriteString("\r\n")
	return sb.String()
}

// ParsedCommand is one decoded `${mode}{id},{args...}` frame.
type ParsedCommand struct {
	Mode Mode
	ID   int
	Args []int
}

// ParseCommand decodes a command or response frame. It is tolerant of a
// missing trailing `\r` (response frames omit it, spec.md §4.2) and of
// trailing commas (spec.md §6: "parsing MUST be tolerant of trailing
// commas and missing \r").
func ParseCommand(line string) (ParsedCommand, error) {
	line = strings.TrimRight(line, "\r\n")
	if len(line) < 3 || line[0] != '$' {
		return ParsedCommand{}, fmt.Errorf("furuno: malformed frame %q", line)
	}
	mode := Mode(line[1])
	switch mode {
	case ModeSet, ModeRequest, ModeNew:
	default:
		return ParsedCommand{}, fmt.Errorf("furuno: unknown mode %q", string(mode))
	}
	rest := line[2:]
	parts := strings.Split(rest, ",")
	if len(parts) == 0 || len(parts[0]) != 2 {
		return ParsedCommand{}, fmt.Errorf("furuno: malformed id in frame %q", line)
	}
	id64, err := strconv.ParseInt(parts[0], 16, 32)
	if err != nil {
		return ParsedCommand{}, fmt.Errorf("furuno: malformed id %q: %w", parts[0], err)
	}
	var args []int
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if p == "" {
			continue // tolerate trailing/repeated commas
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return ParsedCommand{}, fmt.Errorf("furuno: malformed arg %q: %w", p, err)
		}
		args = append(args, n)
	}
	return ParsedCommand{Mode: mode, ID: int(id64), Args: args}, nil
}

// FormatGainCommand builds the exact gain-set frame spec.md §8 scenario 3
// requires: FormatGainCommand(50, false) == "$S63,0,50,0,80,0\r\n".
func FormatGainCommand(value int, auto bool) string {
	return FormatCommand(ModeSet, IDGain, boolArg(auto), value, 0, 80, 0)
}

func boolArg(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ParseAdjustableReport extracts {auto, value} from a gain/sea/rain
// report's args: arg[0] is the auto/manual flag, arg[1] is the value
// (spec.md §8 scenario 3: "$N63,0,50,0,80,0" -> {auto:false, value:50}).
func ParseAdjustableReport(args []int) (state.Adjustable, error) {
	if len(args) < 2 {
		return state.Adjustable{}, fmt.Errorf("furuno: adjustable report needs >=2 args, got %d", len(args))
	}
	mode := state.ModeManual
	if args[0] != 0 {
		mode = state.ModeAuto
	}
	return state.Adjustable{Mode: mode, Value: args[1]}, nil
}

// FormatSeaCommand / FormatRainCommand follow the same shape as gain.
func FormatSeaCommand(value int, auto bool) string {
	return FormatCommand(ModeSet, IDSea, boolArg(auto), value, 0, 80, 0)
}

func FormatRainCommand(value int, auto bool) string {
	return FormatCommand(ModeSet, IDRain, boolArg(auto), value, 0, 80, 0)
}

// FormatRangeCommand encodes the wire range index for meters (spec.md
// §4.2: "Range is set by wire index into a non-contiguous table").
func FormatRangeCommand(index int) string {
	return FormatCommand(ModeSet, IDRange, index)
}

// ParseStatusReport extracts Power from a status report's first arg
// (spec.md §8 scenario 2: arg 1=standby, 2=transmit; arg 0 is reserved as
// 0=off in the core's own encoding since Furuno's wire report only
// distinguishes standby/transmit once already powered on).
func ParseStatusReport(args []int) (state.Power, error) {
	if len(args) < 1 {
		return state.PowerOff, fmt.Errorf("furuno: status report needs >=1 arg")
	}
	switch args[0] {
	case 1:
		return state.PowerStandby, nil
	case 2:
		return state.PowerTransmit, nil
	default:
		return state.PowerOff, nil
	}
}

// FormatPowerCommand encodes a power-set command; arg mirrors the report
// encoding (1=standby, 2=transmit).
func FormatPowerCommand(p state.Power) string {
	arg := 0
	switch p {
	case state.PowerStandby:
		arg = 1
	case state.PowerTransmit:
		arg = 2
	}
	return FormatCommand(ModeSet, IDStatus, arg)
}

// FormatBooleanCommand/FormatNumberCommand cover the remaining simple
// generic controls (noiseReduction, interferenceRejection,
// beamSharpening, birdMode, scanSpeed, mainBangSuppression, txChannel,
// bearingAlignment, antennaHeight) which all share the one-arg shape.
func FormatBooleanCommand(id int, on bool) string {
	return FormatCommand(ModeSet, id, boolArg(on))
}

func FormatNumberCommand(id int, value int) string {
	return FormatCommand(ModeSet, id, value)
}

// FormatDopplerCommand encodes the compound {enabled, mode} control.
func FormatDopplerCommand(d state.Doppler) string {
	mode := 0
	if d.Mode == state.DopplerModeRain {
		mode = 1
	}
	return FormatCommand(ModeSet, IDDopplerMode, boolArg(d.Enabled), mode)
}

// FormatNoTransmitZoneCommand encodes one zone's {enabled,start,end} at
// the given zone index (0 or 1, spec.md: "up to 2").
func FormatNoTransmitZoneCommand(zoneIndex int, z state.NoTransmitZone) string {
	return FormatCommand(ModeSet, IDNoTransmitZone, zoneIndex, boolArg(z.Enabled), int(z.StartDeg), int(z.EndDeg))
}

// FormatAutoAcquireCommand encodes the autoAcquire on/off toggle (spec.md
// §4.4 generic control dispatch).
func FormatAutoAcquireCommand(on bool) string {
	return FormatBooleanCommand(IDAutoAcquire, on)
}

// IsModelReport reports whether a UDP datagram is the asynchronous model-
// discovery report (170 bytes, id 0x96 response, spec.md §4.2).
func IsModelReport(data []byte) bool {
	return len(data) == 170 && data[0] == IDModelReport
}

// ParseModelReport extracts the model name from a model-discovery report.
// The model name occupies the ASCII tail of the 170-byte payload,
// NUL-padded.
func ParseModelReport(data []byte) (model string, err error) {
	if !IsModelReport(data) {
		return "", fmt.Errorf("furuno: not a model report (len=%d)", len(data))
	}
	tail := data[2:]
	end := len(tail)
	for i, b := range tail {
		if b == 0 {
			end = i
			break
		}
	}
	return strings.TrimSpace(string(tail[:end])), nil
}

// AnnouncePackets are the three fixed-content packets the locator must
// emit periodically (beacon request, model request, announce) so the
// radar accepts a later TCP login from this client (spec.md §4.3).
func AnnouncePackets() [3][]byte {
	return [3][]byte{
		[]byte{0x00, 0x01}, // beacon request
		[]byte{0x00, 0x02}, // model request
		[]byte{0x00, 0x03}, // announce
	}
}

// IsBeacon reports whether a datagram looks like a Furuno beacon reply
// (as opposed to a model report or another brand's traffic on a shared
// segment): a beacon carries a 2-byte header distinct from the model
// report's 0x96 id and is shorter than the 170-byte model report.
func IsBeacon(data []byte) bool {
	return len(data) >= 12 && len(data) != 170 && data[0] == 0x00 && data[1] <= 0x03
}

// ParseBeacon decodes the command port from a beacon reply.
// The beacon identifies the radar by its source IP (passed in by the
// locator, which reads it off the UDP packet) rather than by payload
// content, since the 12-byte beacon body here only carries the command
// port offset, the same field the TCP login response carries.
func ParseBeacon(data []byte) (commandPort int, err error) {
	if !IsBeacon(data) {
		return 0, fmt.Errorf("furuno: not a beacon frame")
	}
	if len(data) < 10 {
		return 0, fmt.Errorf("furuno: beacon frame too short")
	}
	offset := binary.BigEndian.Uint16(data[8:10])
	return ControlPort + int(offset), nil
}
