package controller

import (
	"encoding/binary"
	"testing"

	"github.com/banshee-data/radar-core/internal/ioprovider"
	"github.com/banshee-data/radar-core/internal/protocol/garmin"
	"github.com/banshee-data/radar-core/internal/state"
)

func TestGarminDispatchesStatusReport(t *testing.T) {
	mock := ioprovider.NewMock()
	c := NewGarmin(mock, "GMR Fantom 24", "239.254.2.0", 50100)
	c.Poll()
	sock := mock.Sockets[0]

	body := make([]byte, 7)
	binary.LittleEndian.PutUint16(body[0:2], uint16(garmin.OpcodeStatusReport))
	body[2] = 2
	binary.LittleEndian.PutUint32(body[3:7], 7408)
	sock.Enqueue(body, "10.0.0.11", 50100)

	c.Poll()
	got := c.RadarState()
	if got.Power != state.PowerTransmit {
		t.Errorf("power = %v, want transmit", got.Power)
	}
	if got.RangeM != 740.8 {
		t.Errorf("range = %v, want 740.8", got.RangeM)
	}
}
