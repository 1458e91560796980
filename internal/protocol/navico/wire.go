// Package navico is the pure, I/O-free Navico/Lowrance/Simrad/B&G protocol
// codec (spec.md §4.2 "Key Navico facts", §6). Commands are binary UDP
// multicast frames with a 2-byte little-endian opcode prefix; beacons and
// reports share the same framing.
package navico

import (
	"encoding/binary"
	"fmt"

	"github.com/banshee-data/radar-core/internal/protocol/common"
	"github.com/banshee-data/radar-core/internal/state"
)

// Multicast groups: BR24 is legacy, Gen3+/HALO is the current generation
// (spec.md §4.2, §6).
const (
	BR24BeaconAddress   = "236.6.7.5"
	BR24BeaconPort      = 6878
	Gen3BeaconAddress   = "236.6.7.8"
	Gen3BeaconPort      = 6878
)

// Opcode is a 2-byte little-endian command/report identifier.
type Opcode uint16

const (
	OpcodeBeacon       Opcode = 0xB201 // wire bytes 0x01,0xB2 (spec.md §6)
	OpcodeSetControl   Opcode = 0xC106 // wire bytes 0x06,0xC1
	OpcodeStatusReport Opcode = 0xC101
	OpcodeRequestAll   Opcode = 0xC102
)

// Subtype identifies which control a set-control frame addresses, the
// byte following the 0x06,0xC1 opcode prefix (spec.md §4.2).
type Subtype byte

const (
	SubtypeStatus      Subtype = 0x01
	SubtypeRange       Subtype = 0x03
	SubtypeGain        Subtype = 0x04
	SubtypeSea         Subtype = 0x05
	SubtypeRain        Subtype = 0x06
	SubtypeDoppler     Subtype = 0x23
	SubtypeNoTransmit  Subtype = 0x24
)

func readOpcode(data []byte) (Opcode, error) {
	if len(data) < 2 {
		return 0, fmt.Errorf("navico: frame too short for opcode")
	}
	return Opcode(binary.LittleEndian.Uint16(data[0:2])), nil
}

// IsBeacon reports whether data is a Navico beacon frame.
func IsBeacon(data []byte) bool {
	op, err := readOpcode(data)
	return err == nil && op == OpcodeBeacon
}

// SubRadar is one logical radar exposed by a beacon: dual-range HALO
// units report two (spec.md §4.2 "possibly dual-range = two logical
// sub-radars").
type SubRadar struct {
	Index           int
	DataAddress     string
	DataPort        int
	ReportAddress   string
	ReportPort      int
	CommandAddress  string
	CommandPort     int
}

// Beacon is a parsed Navico beacon: a radar base address, serial, and one
// or two logical sub-radars.
type Beacon struct {
	Serial    string
	IsHalo    bool
	SubRadars []SubRadar
}

// beaconFixedLen is the minimum frame length this parser requires: 2-byte
// opcode + 1-byte halo flag + 16-byte serial + at least one 12-byte
// sub-radar endpoint record (4-byte addr + 2-byte port, x3 endpoints).
const beaconFixedLen = 2 + 1 + 16 + 36

// ParseBeacon decodes a Navico beacon into a Beacon record. Dual-range
// units carry a second 36-byte sub-radar block immediately following the
// first; a second block whose data port is zero is treated as absent.
func ParseBeacon(data []byte) (Beacon, error) {
	if !IsBeacon(data) {
		return Beacon{}, common.NewProtocolError(state.BrandNavico, "not a beacon frame")
	}
	if len(data) < beaconFixedLen {
		return Beacon{}, common.NewProtocolError(state.BrandNavico, "beacon frame too short")
	}
	isHalo := data[2] != 0
	serial := trimNulString(data[3:19])

	sub, err := parseSubRadar(0, data[19:55])
	if err != nil {
		return Beacon{}, err
	}
	subs := []SubRadar{sub}

	if len(data) >= 19+72 {
		sub2, err := parseSubRadar(1, data[55:91])
		if err == nil && sub2.DataPort != 0 {
			subs = append(subs, sub2)
		}
	}

	return Beacon{Serial: serial, IsHalo: isHalo, SubRadars: subs}, nil
}

func parseSubRadar(index int, block []byte) (SubRadar, error) {
	if len(block) < 36 {
		return SubRadar{}, common.NewProtocolError(state.BrandNavico, "sub-radar block too short")
	}
	return SubRadar{
		Index:          index,
		DataAddress:    formatIPv4(block[0:4]),
		DataPort:       int(binary.LittleEndian.Uint16(block[4:6])),
		ReportAddress:  formatIPv4(block[12:16]),
		ReportPort:     int(binary.LittleEndian.Uint16(block[16:18])),
		CommandAddress: formatIPv4(block[24:28]),
		CommandPort:    int(binary.LittleEndian.Uint16(block[28:30])),
	}, nil
}

func formatIPv4(b []byte) string {
	return fmt.Sprintf("%d.%d.%d.%d", b[0], b[1], b[2], b[3])
}

func trimNulString(b []byte) string {
	end := len(b)
	for i, c := range b {
		if c == 0 {
			end = i
			break
		}
	}
	return string(b[:end])
}

func writeOpcode(buf []byte, op Opcode) {
	binary.LittleEndian.PutUint16(buf, uint16(op))
}

// FormatSetControl builds a `0x06,0xC1,{subtype},{payload...}` command
// frame (spec.md §4.2).
func FormatSetControl(sub Subtype, payload ...byte) []byte {
	buf := make([]byte, 3+len(payload))
	writeOpcode(buf, OpcodeSetControl)
	buf[2] = byte(sub)
	copy(buf[3:], payload)
	return buf
}

// FormatRequestAll builds the periodic "request all reports" frame the
// controller sends every ~5s (spec.md §4.4).
func FormatRequestAll() []byte {
	buf := make([]byte, 2)
	writeOpcode(buf, OpcodeRequestAll)
	return buf
}

// FormatRangeCommand encodes a range-set frame; range is a little-endian
// uint32 in decimeters, the same unit ParseStatusReport decodes.
func FormatRangeCommand(meters float64) []byte {
	dm := uint32(meters * 10)
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, dm)
	return FormatSetControl(SubtypeRange, payload...)
}

// FormatPowerCommand encodes a power-set frame.
func FormatPowerCommand(p state.Power) []byte {
	arg := byte(0)
	switch p {
	case state.PowerStandby:
		arg = 1
	case state.PowerTransmit:
		arg = 2
	}
	return FormatSetControl(SubtypeStatus, arg)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// FormatAdjustableCommand encodes the gain/sea/rain compound control.
func FormatAdjustableCommand(sub Subtype, a state.Adjustable) []byte {
	mode := boolByte(a.Mode == state.ModeAuto)
	return FormatSetControl(sub, mode, byte(a.Value))
}

// FormatDopplerCommand encodes the {enabled, mode} compound control
// (HALO only, spec.md §4.2).
func FormatDopplerCommand(d state.Doppler) []byte {
	mode := byte(0)
	if d.Mode == state.DopplerModeRain {
		mode = 1
	}
	return FormatSetControl(SubtypeDoppler, boolByte(d.Enabled), mode)
}

// StatusReport is the decoded periodic status/report frame.
type StatusReport struct {
	Power  state.Power
	RangeM float64
	Gain   state.Adjustable
	Sea    state.Adjustable
	Rain   state.Adjustable
}

// ParseStatusReport decodes a status report frame (opcode 0xC101,
// subtype, then a fixed payload: power byte, range in decimeters as a
// little-endian uint32, and three {mode,value} pairs for gain/sea/rain).
func ParseStatusReport(data []byte) (StatusReport, error) {
	op, err := readOpcode(data)
	if err != nil || op != OpcodeStatusReport {
		return StatusReport{}, common.NewProtocolError(state.BrandNavico, "not a status report")
	}
	if len(data) < 2+1+1+4+2+2+2 {
		return StatusReport{}, common.NewProtocolError(state.BrandNavico, "status report too short")
	}
	body := data[3:]
	power := decodePower(body[0])
	rangeDm := binary.LittleEndian.Uint32(body[1:5])
	gain := decodeAdjustable(body[5:7])
	sea := decodeAdjustable(body[7:9])
	rain := decodeAdjustable(body[9:11])
	return StatusReport{
		Power:  power,
		RangeM: float64(rangeDm) / 10,
		Gain:   gain,
		Sea:    sea,
		Rain:   rain,
	}, nil
}

func decodePower(b byte) state.Power {
	switch b {
	case 1:
		return state.PowerStandby
	case 2:
		return state.PowerWarming
	case 3:
		return state.PowerTransmit
	default:
		return state.PowerOff
	}
}

func decodeAdjustable(b []byte) state.Adjustable {
	mode := state.ModeManual
	if b[0] != 0 {
		mode = state.ModeAuto
	}
	return state.Adjustable{Mode: mode, Value: int(b[1])}
}
