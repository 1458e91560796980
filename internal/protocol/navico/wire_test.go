package navico

import (
	"encoding/binary"
	"testing"

	"github.com/banshee-data/radar-core/internal/state"
)

func buildBeacon(halo bool, serial string) []byte {
	buf := make([]byte, 91)
	writeOpcode(buf, OpcodeBeacon)
	if halo {
		buf[2] = 1
	}
	copy(buf[3:19], serial)
	// sub-radar 0 at offset 19
	copy(buf[19:23], []byte{10, 0, 0, 1})
	binary.LittleEndian.PutUint16(buf[23:25], 6678)
	copy(buf[31:35], []byte{10, 0, 0, 1})
	binary.LittleEndian.PutUint16(buf[35:37], 6679)
	copy(buf[43:47], []byte{10, 0, 0, 1})
	binary.LittleEndian.PutUint16(buf[47:49], 6680)
	return buf
}

func TestParseBeaconSingleRange(t *testing.T) {
	data := buildBeacon(false, "SERIAL123")
	if !IsBeacon(data) {
		t.Fatal("expected IsBeacon true")
	}
	b, err := ParseBeacon(data)
	if err != nil {
		t.Fatalf("ParseBeacon: %v", err)
	}
	if b.Serial != "SERIAL123" {
		t.Errorf("serial = %q, want SERIAL123", b.Serial)
	}
	if b.IsHalo {
		t.Error("should not be halo")
	}
	if len(b.SubRadars) != 1 {
		t.Fatalf("sub radars = %d, want 1", len(b.SubRadars))
	}
	if b.SubRadars[0].DataAddress != "10.0.0.1" || b.SubRadars[0].DataPort != 6678 {
		t.Errorf("sub radar 0 = %+v", b.SubRadars[0])
	}
}

func TestFormatGainCommandShape(t *testing.T) {
	got := FormatAdjustableCommand(SubtypeGain, state.Adjustable{Mode: state.ModeManual, Value: 60})
	want := []byte{0x06, 0xC1, byte(SubtypeGain), 0x00, 60}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("byte %d = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestStatusReportRoundTrip(t *testing.T) {
	body := make([]byte, 14)
	writeOpcode(body, OpcodeStatusReport)
	body[2] = 0x01 // subtype
	body[3] = 3    // transmit
	binary.LittleEndian.PutUint32(body[4:8], 18520) // 1852.0 m
	body[8], body[9] = 0, 60   // gain manual 60
	body[10], body[11] = 1, 0  // sea auto
	body[12], body[13] = 0, 30 // rain manual 30

	got, err := ParseStatusReport(body)
	if err != nil {
		t.Fatalf("ParseStatusReport: %v", err)
	}
	if got.Power != state.PowerTransmit {
		t.Errorf("power = %v, want transmit", got.Power)
	}
	if got.RangeM != 1852 {
		t.Errorf("range = %v, want 1852", got.RangeM)
	}
	if got.Gain.Value != 60 || got.Gain.Mode != state.ModeManual {
		t.Errorf("gain = %+v", got.Gain)
	}
	if got.Sea.Mode != state.ModeAuto {
		t.Errorf("sea mode = %v, want auto", got.Sea.Mode)
	}
}
