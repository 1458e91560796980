package spoke

import (
	"testing"

	"github.com/banshee-data/radar-core/internal/capability"
	"github.com/banshee-data/radar-core/internal/ioprovider"
	"github.com/banshee-data/radar-core/internal/state"
)

type recordingConsumer struct {
	spokes []state.Spoke
}

func (c *recordingConsumer) OnSpoke(s state.Spoke) { c.spokes = append(c.spokes, s) }

func buildDatagram(nativeIndex int, rangeDm uint32, returns []byte) []byte {
	buf := make([]byte, rawHeaderLen+len(returns))
	buf[0] = byte(nativeIndex)
	buf[1] = byte(nativeIndex >> 8)
	buf[2] = byte(rangeDm)
	buf[3] = byte(rangeDm >> 8)
	buf[4] = byte(rangeDm >> 16)
	buf[5] = byte(rangeDm >> 24)
	copy(buf[rawHeaderLen:], returns)
	return buf
}

func TestReceiverDecimatesFurunoFourToOne(t *testing.T) {
	mock := ioprovider.NewMock()
	manifest := capability.Lookup(state.BrandFuruno, "DRS4D-NXT")
	consumer := &recordingConsumer{}
	r := New(mock, manifest, "239.255.0.1", 10100, consumer)
	if err := r.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	sock := mock.Sockets[10100]

	returns := [][]byte{
		{10, 20, 5},
		{30, 5, 5},
		{5, 5, 40},
		{5, 5, 5},
	}
	for i, ret := range returns {
		sock.Enqueue(buildDatagram(i, 18520, ret), "10.0.0.5", 10100)
	}
	r.Poll()

	if len(consumer.spokes) != 1 {
		t.Fatalf("emitted %d spokes, want 1 (one decimated group)", len(consumer.spokes))
	}
	got := consumer.spokes[0]
	if got.SpokeIndex != 0 {
		t.Errorf("output spoke index = %d, want 0", got.SpokeIndex)
	}
	want := []byte{30, 20, 40}
	for i := range want {
		if got.Returns[i] != want[i] {
			t.Errorf("returns[%d] = %d, want %d", i, got.Returns[i], want[i])
		}
	}
}

func TestReceiverNoDecimationForNonFuruno(t *testing.T) {
	mock := ioprovider.NewMock()
	manifest := capability.Lookup(state.BrandNavico, "HALO24")
	consumer := &recordingConsumer{}
	r := New(mock, manifest, "236.6.7.10", 10110, consumer)
	_ = r.Open()
	sock := mock.Sockets[10110]
	sock.Enqueue(buildDatagram(5, 5000, []byte{1, 2, 3}), "10.0.0.9", 10110)
	r.Poll()

	if len(consumer.spokes) != 1 {
		t.Fatalf("emitted %d spokes, want 1", len(consumer.spokes))
	}
	if consumer.spokes[0].SpokeIndex != 5 {
		t.Errorf("spoke index = %d, want 5 (no decimation)", consumer.spokes[0].SpokeIndex)
	}
}

func TestReceiverValidatesPayloadLength(t *testing.T) {
	mock := ioprovider.NewMock()
	manifest := capability.Lookup(state.BrandNavico, "HALO24")
	consumer := &recordingConsumer{}
	r := New(mock, manifest, "236.6.7.10", 10110, consumer)
	_ = r.Open()
	sock := mock.Sockets[10110]
	oversized := make([]byte, manifest.MaxSpokeLength+50)
	sock.Enqueue(buildDatagram(0, 5000, oversized), "10.0.0.9", 10110)
	r.Poll()

	if len(consumer.spokes[0].Returns) != manifest.MaxSpokeLength {
		t.Errorf("returns length = %d, want truncated to %d", len(consumer.spokes[0].Returns), manifest.MaxSpokeLength)
	}
}
