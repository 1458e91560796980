package controller

import (
	"testing"

	"github.com/banshee-data/radar-core/internal/ioprovider"
	"github.com/banshee-data/radar-core/internal/protocol/furuno"
	"github.com/banshee-data/radar-core/internal/state"
)

func TestFurunoLoginAndKeepalive(t *testing.T) {
	mock := ioprovider.NewMock()
	conn := mock.MockTCPProvider.Conn
	c := NewFuruno(mock, "10.0.0.5", "DRS4D-NXT")

	c.Poll() // Disconnected -> Connecting (dials + sends login)
	if c.State() != Connecting {
		t.Fatalf("state = %v, want Connecting", c.State())
	}
	if len(conn.Sent) != 1 || string(conn.Sent[0]) != string(furuno.LoginPayload()) {
		t.Fatalf("expected login payload sent, got %v", conn.Sent)
	}

	resp := []byte{0x09, 0x01, 0x00, 0x0C, 0x01, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00}
	conn.Arrive(resp)
	c.Poll() // Connecting -> Connected (parses login, reopens to session port)
	if c.State() != Connected {
		t.Fatalf("state = %v, want Connected", c.State())
	}
	if conn.ConnectPort != 10001 {
		t.Errorf("session connect port = %d, want 10001", conn.ConnectPort)
	}

	mock.Advance(6_000 * 1_000_000) // 6s in ns, Advance converts via Milliseconds()
	c.Poll()
	if last := conn.Sent[len(conn.Sent)-1]; string(last) != furuno.Keepalive {
		t.Errorf("sent %q after 6s, want keepalive %q", last, furuno.Keepalive)
	}
}

func TestFurunoDispatchesStatusReport(t *testing.T) {
	mock := ioprovider.NewMock()
	conn := mock.MockTCPProvider.Conn
	c := NewFuruno(mock, "10.0.0.5", "DRS4D-NXT")
	c.Poll()
	resp := []byte{0x09, 0x01, 0x00, 0x0C, 0x01, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00}
	conn.Arrive(resp)
	c.Poll()

	conn.Arrive([]byte("$N69,2,0,0,60,300,0\n"))
	c.Poll()

	got := c.RadarState()
	if got.Power != state.PowerTransmit {
		t.Errorf("power = %v, want transmit", got.Power)
	}
}

func TestFurunoSetControlRequiresConnected(t *testing.T) {
	mock := ioprovider.NewMock()
	c := NewFuruno(mock, "10.0.0.5", "DRS4D-NXT")
	err := c.SetControl(ControlGain, ControlValue{Adjustable: &state.Adjustable{Value: 50}})
	if err == nil {
		t.Fatal("expected error before connected")
	}
}

func TestFurunoFormatGainControlMatchesWireSpec(t *testing.T) {
	mock := ioprovider.NewMock()
	conn := mock.MockTCPProvider.Conn
	c := NewFuruno(mock, "10.0.0.5", "DRS4D-NXT")
	c.Poll()
	resp := []byte{0x09, 0x01, 0x00, 0x0C, 0x01, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00}
	conn.Arrive(resp)
	c.Poll()

	if err := c.SetControl(ControlGain, ControlValue{Adjustable: &state.Adjustable{Mode: state.ModeManual, Value: 50}}); err != nil {
		t.Fatalf("SetControl: %v", err)
	}
	last := conn.Sent[len(conn.Sent)-1]
	want := "$S63,0,50,0,80,0\r\n"
	if string(last) != want {
		t.Errorf("sent %q, want %q", last, want)
	}
}
