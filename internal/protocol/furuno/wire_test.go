package furuno

import (
	"testing"

	"github.com/banshee-data/radar-core/internal/state"
)

// TestParseLoginResponse covers spec.md §8 scenario 1.
func TestParseLoginResponse(t *testing.T) {
	resp := []byte{0x09, 0x01, 0x00, 0x0C, 0x01, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00}
	port, err := ParseLoginResponse(resp)
	if err != nil {
		t.Fatalf("ParseLoginResponse: %v", err)
	}
	if port != 10001 {
		t.Errorf("session port = %d, want 10001", port)
	}
}

func TestParseLoginResponseWrongLength(t *testing.T) {
	if _, err := ParseLoginResponse([]byte{0x01, 0x02}); err == nil {
		t.Error("expected error for short login response")
	}
}

// TestStatusReportParsesTransmit covers spec.md §8 scenario 2.
func TestStatusReportParsesTransmit(t *testing.T) {
	cmd, err := ParseCommand("$N69,2,0,0,60,300,0\r\n")
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if cmd.Mode != ModeNew || cmd.ID != IDStatus {
		t.Fatalf("got mode=%c id=%#x, want N/0x69", cmd.Mode, cmd.ID)
	}
	power, err := ParseStatusReport(cmd.Args)
	if err != nil {
		t.Fatalf("ParseStatusReport: %v", err)
	}
	if power != state.PowerTransmit {
		t.Errorf("power = %v, want transmit", power)
	}
}

// TestFormatGainCommandExact covers spec.md §8 scenario 3.
func TestFormatGainCommandExact(t *testing.T) {
	got := FormatGainCommand(50, false)
	want := "$S63,0,50,0,80,0\r\n"
	if got != want {
		t.Errorf("FormatGainCommand(50,false) = %q, want %q", got, want)
	}
}

func TestGainReportRoundTrip(t *testing.T) {
	cmd, err := ParseCommand("$N63,0,50,0,80,0")
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	adj, err := ParseAdjustableReport(cmd.Args)
	if err != nil {
		t.Fatalf("ParseAdjustableReport: %v", err)
	}
	if adj.Mode != state.ModeManual || adj.Value != 50 {
		t.Errorf("adjustable = %+v, want {ModeManual 50}", adj)
	}
}

func TestParseCommandTolerance(t *testing.T) {
	// Missing trailing \r, and a trailing comma.
	cmd, err := ParseCommand("$N69,2,0,0,60,300,0,\n")
	if err != nil {
		t.Fatalf("ParseCommand tolerant form: %v", err)
	}
	if len(cmd.Args) != 6 {
		t.Errorf("args = %v, want 6 entries (trailing comma ignored)", cmd.Args)
	}
}

func TestParseCommandRejectsMalformed(t *testing.T) {
	cases := []string{"", "N69,1", "$Z69,1", "$N6,1"}
	for _, c := range cases {
		if _, err := ParseCommand(c); err == nil {
			t.Errorf("ParseCommand(%q) should have failed", c)
		}
	}
}

func TestKeepaliveConstant(t *testing.T) {
	if Keepalive != "$RE3\r\n" {
		t.Errorf("Keepalive = %q, want %q", Keepalive, "$RE3\r\n")
	}
}

func TestLoginPayloadLength(t *testing.T) {
	if len(LoginPayload()) != 56 {
		t.Errorf("login payload length = %d, want 56", len(LoginPayload()))
	}
}

func TestModelReportRoundTrip(t *testing.T) {
	data := make([]byte, 170)
	data[0] = IDModelReport
	copy(data[2:], "DRS4D-NXT")
	if !IsModelReport(data) {
		t.Fatal("expected IsModelReport true")
	}
	model, err := ParseModelReport(data)
	if err != nil {
		t.Fatalf("ParseModelReport: %v", err)
	}
	if model != "DRS4D-NXT" {
		t.Errorf("model = %q, want DRS4D-NXT", model)
	}
}

func TestFormatPowerCommandRoundTrip(t *testing.T) {
	line := FormatPowerCommand(state.PowerTransmit)
	cmd, err := ParseCommand(line)
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	power, err := ParseStatusReport(cmd.Args)
	if err != nil {
		t.Fatalf("ParseStatusReport: %v", err)
	}
	if power != state.PowerTransmit {
		t.Errorf("power = %v, want transmit", power)
	}
}
