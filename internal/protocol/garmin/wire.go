// Package garmin is the pure, I/O-free Garmin radar protocol codec
// (spec.md §4.2 "Key Garmin facts", §6). Garmin has no dedicated beacon;
// the radar announces itself by emitting ordinary report packets on a
// multicast group the locator listens on, so discovery and status
// parsing share one entry point.
package garmin

import (
	"encoding/binary"

	"github.com/banshee-data/radar-core/internal/protocol/common"
	"github.com/banshee-data/radar-core/internal/state"
)

// ReportAddress/ReportPort is the multicast group Garmin radars report
// (and are discovered) on. CommandPort is the port on the same group
// commands are sent to (spec.md §4.2: "structurally identical to Navico:
// UDP, periodic report requests, binary commands").
const (
	ReportAddress = "239.254.2.0"
	ReportPort    = 50100
	CommandPort   = 50101
)

// Opcode is the 2-byte little-endian report/command id.
type Opcode uint16

const (
	OpcodeStatusReport Opcode = 0x1000
	OpcodeSetControl   Opcode = 0x1001
	OpcodeRequestAll   Opcode = 0x1002
)

func readOpcode(data []byte) (Opcode, error) {
	if len(data) < 2 {
		return 0, common.NewProtocolError(state.BrandGarmin, "frame too short for opcode")
	}
	return Opcode(binary.LittleEndian.Uint16(data[0:2])), nil
}

// IsReport reports whether data is a Garmin status report, the only
// frame that can serve as a discovery trigger (spec.md §4.2).
func IsReport(data []byte) bool {
	op, err := readOpcode(data)
	return err == nil && op == OpcodeStatusReport
}

// Discovery is the minimal identity a Garmin report carries: Garmin has
// no model/serial field on the wire, only a report-derived range and
// power, so Name is synthesized by the locator from the source address.
type Discovery struct {
	Address string
	Power   state.Power
	RangeM  float64
}

// ParseReport decodes a Garmin status report into a StatusReport (power
// and range). It does not build a Discovery record.
func ParseReport(data []byte) (StatusReport, error) {
	op, err := readOpcode(data)
	if err != nil || op != OpcodeStatusReport {
		return StatusReport{}, common.NewProtocolError(state.BrandGarmin, "not a status report")
	}
	if len(data) < 2+1+4 {
		return StatusReport{}, common.NewProtocolError(state.BrandGarmin, "status report too short")
	}
	body := data[2:]
	power := decodePower(body[0])
	rangeDm := binary.LittleEndian.Uint32(body[1:5])
	return StatusReport{Power: power, RangeM: float64(rangeDm) / 10}, nil
}

// StatusReport is the decoded periodic report.
type StatusReport struct {
	Power  state.Power
	RangeM float64
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

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// FormatRequestAll builds the periodic "request all reports" frame.
func FormatRequestAll() []byte {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, uint16(OpcodeRequestAll))
	return buf
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
	buf := make([]byte, 3)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(OpcodeSetControl))
	buf[2] = arg
	return buf
}

// FormatAdjustableCommand encodes the gain/sea/rain compound control;
// sub identifies which one.
func FormatAdjustableCommand(sub byte, a state.Adjustable) []byte {
	buf := make([]byte, 5)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(OpcodeSetControl))
	buf[2] = sub
	buf[3] = boolByte(a.Mode == state.ModeAuto)
	buf[4] = byte(a.Value)
	return buf
}

// FormatRangeCommand encodes a range-set frame; range is a little-endian
// uint32 in decimeters, the same unit ParseReport decodes.
func FormatRangeCommand(meters float64) []byte {
	dm := uint32(meters * 10)
	buf := make([]byte, 7)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(OpcodeSetControl))
	buf[2] = SubRange
	binary.LittleEndian.PutUint32(buf[3:7], dm)
	return buf
}

// Adjustable control subtypes.
const (
	SubRange = 0x00
	SubGain  = 0x01
	SubSea   = 0x02
	SubRain  = 0x03
)
