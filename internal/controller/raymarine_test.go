package controller

import (
	"encoding/binary"
	"testing"

	"github.com/banshee-data/radar-core/internal/ioprovider"
	"github.com/banshee-data/radar-core/internal/protocol/raymarine"
	"github.com/banshee-data/radar-core/internal/state"
)

func TestRaymarineDispatchesStatusReport(t *testing.T) {
	mock := ioprovider.NewMock()
	c := NewRaymarine(mock, "Quantum Q24C", false, "224.0.0.5", 5801)
	c.Poll()
	sock := mock.Sockets[0]

	body := make([]byte, 9)
	binary.LittleEndian.PutUint16(body[0:2], uint16(raymarine.OpcodeStatusReport))
	body[2], body[3] = 0x28, 0x00
	body[4] = 2
	binary.LittleEndian.PutUint32(body[5:9], 18520)
	sock.Enqueue(body, "10.0.0.7", 5801)

	c.Poll()
	got := c.RadarState()
	if got.Power != state.PowerTransmit {
		t.Errorf("power = %v, want transmit", got.Power)
	}
	if got.RangeM != 1852 {
		t.Errorf("range = %v, want 1852", got.RangeM)
	}
}
