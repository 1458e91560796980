package garmin

import (
	"encoding/binary"
	"testing"

	"github.com/banshee-data/radar-core/internal/state"
)

func TestIsReport(t *testing.T) {
	buf := make([]byte, 7)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(OpcodeStatusReport))
	if !IsReport(buf) {
		t.Fatal("expected IsReport true")
	}
}

func TestParseReport(t *testing.T) {
	buf := make([]byte, 7)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(OpcodeStatusReport))
	buf[2] = 2 // transmit
	binary.LittleEndian.PutUint32(buf[3:7], 7408) // 740.8 m
	got, err := ParseReport(buf)
	if err != nil {
		t.Fatalf("ParseReport: %v", err)
	}
	if got.Power != state.PowerTransmit {
		t.Errorf("power = %v, want transmit", got.Power)
	}
	if got.RangeM != 740.8 {
		t.Errorf("range = %v, want 740.8", got.RangeM)
	}
}

func TestFormatPowerCommand(t *testing.T) {
	frame := FormatPowerCommand(state.PowerStandby)
	if len(frame) != 3 {
		t.Fatalf("len = %d, want 3", len(frame))
	}
	if frame[2] != 1 {
		t.Errorf("arg = %d, want 1", frame[2])
	}
}
