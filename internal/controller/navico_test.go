package controller

import (
	"encoding/binary"
	"testing"

	"github.com/banshee-data/radar-core/internal/ioprovider"
	"github.com/banshee-data/radar-core/internal/protocol/navico"
	"github.com/banshee-data/radar-core/internal/state"
)

func TestNavicoPollBindsAndRequestsReports(t *testing.T) {
	mock := ioprovider.NewMock()
	c := NewNavico(mock, "HALO24", true, 0, "236.6.7.9", 10010)
	c.Poll()
	if c.State() != Connected {
		t.Fatalf("state = %v, want Connected", c.State())
	}
	sock := mock.Sockets[0]
	if len(sock.Sent) != 1 {
		t.Fatalf("sent %d request frames, want 1", len(sock.Sent))
	}
}

func TestNavicoDispatchesStatusReport(t *testing.T) {
	mock := ioprovider.NewMock()
	c := NewNavico(mock, "HALO24", true, 0, "236.6.7.9", 10010)
	c.Poll()
	sock := mock.Sockets[0]

	body := make([]byte, 14)
	binary.LittleEndian.PutUint16(body[0:2], uint16(navico.OpcodeStatusReport))
	body[2] = 0x01
	body[3] = 3
	binary.LittleEndian.PutUint32(body[4:8], 18520)
	body[8], body[9] = 0, 60
	body[10], body[11] = 1, 0
	body[12], body[13] = 0, 30
	sock.Enqueue(body, "10.0.0.9", 10010)

	c.Poll()
	got := c.RadarState()
	if got.Power != state.PowerTransmit {
		t.Errorf("power = %v, want transmit", got.Power)
	}
	if got.RangeM != 1852 {
		t.Errorf("range = %v, want 1852", got.RangeM)
	}
}

func TestNavicoDopplerRejectedOnNonHalo(t *testing.T) {
	mock := ioprovider.NewMock()
	c := NewNavico(mock, "BR24", false, 0, "236.6.7.9", 10010)
	c.Poll()
	err := c.SetControl(ControlDopplerMode, ControlValue{Doppler: &state.Doppler{Enabled: true}})
	if err == nil {
		t.Fatal("expected doppler to be rejected on non-HALO model")
	}
}
