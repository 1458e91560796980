// Package raymarine is the pure, I/O-free Raymarine protocol codec
// (spec.md §4.2 "Key Raymarine facts", §6). UDP-only; Quantum and RD
// families speak different 2-byte family prefixes but share most of the
// control surface.
package raymarine

import (
	"encoding/binary"

	"github.com/banshee-data/radar-core/internal/protocol/common"
	"github.com/banshee-data/radar-core/internal/state"
)

// BeaconAddress/BeaconPort is the Raymarine discovery multicast group.
// CommandAddress/CommandPort is the control-frame multicast group every
// Quantum/RD unit listens on (spec.md §4.2: "UDP-only"), used by the
// provider facade when a beacon's own report hasn't yet supplied a more
// specific per-unit command endpoint.
const (
	BeaconAddress  = "224.0.0.2"
	BeaconPort     = 5800
	CommandAddress = "224.0.0.2"
	CommandPort    = 5801
)

// Family distinguishes the two opcode-prefix families sharing the core's
// control surface (spec.md §4.2, §6).
type Family int

const (
	FamilyUnknown Family = iota
	FamilyQuantum
	FamilyRD
)

var (
	prefixQuantum = [2]byte{0x28, 0x00}
	prefixRD      = [2]byte{0x01, 0x00}
)

func familyOf(prefix []byte) Family {
	if len(prefix) < 2 {
		return FamilyUnknown
	}
	switch [2]byte{prefix[0], prefix[1]} {
	case prefixQuantum:
		return FamilyQuantum
	case prefixRD:
		return FamilyRD
	default:
		return FamilyUnknown
	}
}

// Opcode is the 2-byte little-endian command/report id that precedes the
// family prefix in every frame.
type Opcode uint16

const (
	OpcodeBeacon       Opcode = 0x0001
	OpcodeSetControl   Opcode = 0x0501
	OpcodeStatusReport Opcode = 0x0601
	OpcodeRequestAll   Opcode = 0x0701
)

// frame layout: [opcode LE uint16][family prefix 2 bytes][payload...]
const headerLen = 4

func readHeader(data []byte) (Opcode, Family, error) {
	if len(data) < headerLen {
		return 0, FamilyUnknown, common.NewProtocolError(state.BrandRaymarine, "frame too short")
	}
	op := Opcode(binary.LittleEndian.Uint16(data[0:2]))
	fam := familyOf(data[2:4])
	return op, fam, nil
}

// IsBeacon reports whether data is a Raymarine beacon frame.
func IsBeacon(data []byte) bool {
	op, fam, err := readHeader(data)
	return err == nil && op == OpcodeBeacon && fam != FamilyUnknown
}

// Beacon is a parsed Raymarine beacon.
type Beacon struct {
	Family  Family
	Name    string
	Serial  string
	Address string
}

// ParseBeacon decodes a Raymarine beacon frame. name/serial occupy a
// fixed 16+16 byte ASCII block following the header; address is supplied
// by the locator from the UDP source, since the beacon body does not
// repeat it.
func ParseBeacon(data []byte) (Beacon, error) {
	op, fam, err := readHeader(data)
	if err != nil {
		return Beacon{}, err
	}
	if op != OpcodeBeacon || fam == FamilyUnknown {
		return Beacon{}, common.NewProtocolError(state.BrandRaymarine, "not a beacon frame")
	}
	if len(data) < headerLen+32 {
		return Beacon{}, common.NewProtocolError(state.BrandRaymarine, "beacon frame too short")
	}
	name := trimNul(data[headerLen : headerLen+16])
	serial := trimNul(data[headerLen+16 : headerLen+32])
	return Beacon{Family: fam, Name: name, Serial: serial}, nil
}

func trimNul(b []byte) string {
	end := len(b)
	for i, c := range b {
		if c == 0 {
			end = i
			break
		}
	}
	return string(b[:end])
}

func familyPrefix(f Family) [2]byte {
	if f == FamilyQuantum {
		return prefixQuantum
	}
	return prefixRD
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func formatFrame(op Opcode, f Family, payload ...byte) []byte {
	buf := make([]byte, headerLen+len(payload))
	binary.LittleEndian.PutUint16(buf[0:2], uint16(op))
	prefix := familyPrefix(f)
	buf[2], buf[3] = prefix[0], prefix[1]
	copy(buf[headerLen:], payload)
	return buf
}

// FormatRequestAll builds the periodic "request all reports" frame.
func FormatRequestAll(f Family) []byte {
	return formatFrame(OpcodeRequestAll, f)
}

// FormatPowerCommand encodes a power-set frame; shared by both families.
func FormatPowerCommand(f Family, p state.Power) []byte {
	arg := byte(0)
	switch p {
	case state.PowerStandby:
		arg = 1
	case state.PowerTransmit:
		arg = 2
	}
	return formatFrame(OpcodeSetControl, f, 0x01, arg)
}

// FormatAdjustableCommand encodes gain/sea/rain, identified by sub.
func FormatAdjustableCommand(f Family, sub byte, a state.Adjustable) []byte {
	return formatFrame(OpcodeSetControl, f, sub, boolByte(a.Mode == state.ModeAuto), byte(a.Value))
}

// Shared control subtypes (spec.md §4.2: "power, range, gain, sea, rain,
// IR, target expansion, bearing alignment").
const (
	SubRange              = 0x02
	SubGain               = 0x03
	SubSea                = 0x04
	SubRain               = 0x05
	SubInterferenceReject = 0x06
	SubTargetExpansion    = 0x07
	SubBearingAlignment   = 0x08
	// RD-only.
	SubFTC  = 0x10
	SubTune = 0x11
	// Quantum-only.
	SubMode      = 0x20
	SubColorGain = 0x21
)

// FormatRangeCommand encodes a range-set frame; range is a little-endian
// uint32 in decimeters.
func FormatRangeCommand(f Family, meters float64) []byte {
	dm := uint32(meters * 10)
	payload := make([]byte, 5)
	payload[0] = SubRange
	binary.LittleEndian.PutUint32(payload[1:5], dm)
	return formatFrame(OpcodeSetControl, f, payload...)
}

// StatusReport is the decoded periodic status frame.
type StatusReport struct {
	Family Family
	Power  state.Power
	RangeM float64
}

// ParseStatusReport decodes a status report frame.
func ParseStatusReport(data []byte) (StatusReport, error) {
	op, fam, err := readHeader(data)
	if err != nil {
		return StatusReport{}, err
	}
	if op != OpcodeStatusReport {
		return StatusReport{}, common.NewProtocolError(state.BrandRaymarine, "not a status report")
	}
	if len(data) < headerLen+5 {
		return StatusReport{}, common.NewProtocolError(state.BrandRaymarine, "status report too short")
	}
	body := data[headerLen:]
	power := decodePower(body[0])
	rangeDm := binary.LittleEndian.Uint32(body[1:5])
	return StatusReport{Family: fam, Power: power, RangeM: float64(rangeDm) / 10}, nil
}

func decodePower(b byte) state.Power {
	switch b {
	case 1:
		return state.PowerStandby
	case 2:
		return state.PowerTransmit
	default:
		return state.PowerOff
	}
}
